package taskpool

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type JobQueueTestSuite struct {
	suite.Suite
}

func TestJobQueueTestSuite(t *testing.T) {
	suite.Run(t, new(JobQueueTestSuite))
}

func (ts *JobQueueTestSuite) TestEnqueueOrdinaryOnly() {
	var q JobQueue[int]
	q.enqueue(0, 1)
	q.enqueue(0, 2)
	q.enqueue(0, 3)

	ts.Equal(3, q.len())
	ts.Nil(q.firstPrio)
	ts.Equal(1, q.head.Data)
	ts.Equal(3, q.tail.Data)
}

func (ts *JobQueueTestSuite) TestFirstPrioTracksOldestPriorityJob() {
	var q JobQueue[int]
	q.enqueue(0, 1)
	q.enqueue(1, 2)
	q.enqueue(0, 3)
	q.enqueue(1, 4)

	ts.NotNil(q.firstPrio)
	ts.Equal(2, q.firstPrio.Data)
}

func (ts *JobQueueTestSuite) TestPopOldestFIFO() {
	var q JobQueue[int]
	q.enqueue(0, 1)
	q.enqueue(0, 2)
	q.enqueue(0, 3)

	ts.Equal(1, q.popOldest().Data)
	ts.Equal(2, q.popOldest().Data)
	ts.Equal(3, q.popOldest().Data)
	ts.Equal(0, q.len())
	ts.Nil(q.head)
	ts.Nil(q.tail)
}

func (ts *JobQueueTestSuite) TestPopOldestOnEmptyPanics() {
	var q JobQueue[int]
	ts.Panics(func() { q.popOldest() })
}

func (ts *JobQueueTestSuite) TestPopFirstPrioOnEmptyPanics() {
	var q JobQueue[int]
	ts.Panics(func() { q.popFirstPrio() })
}

func (ts *JobQueueTestSuite) TestPopFirstPrioAdvancesCursor() {
	var q JobQueue[int]
	q.enqueue(1, 1)
	q.enqueue(1, 2)
	q.enqueue(0, 3)

	first := q.popFirstPrio()
	ts.Equal(1, first.Data)
	ts.NotNil(q.firstPrio)
	ts.Equal(2, q.firstPrio.Data)

	second := q.popFirstPrio()
	ts.Equal(2, second.Data)
	ts.Nil(q.firstPrio)
}

func (ts *JobQueueTestSuite) TestUnlinkInteriorAdvancesFirstPrioByScan() {
	var q JobQueue[int]
	q.enqueue(0, 0)
	a := q.enqueue(1, 1)
	q.enqueue(0, 2)
	q.enqueue(1, 3)

	ts.Equal(a, q.firstPrio)

	q.unlink(a)
	ts.Equal(3, q.len())
	ts.NotNil(q.firstPrio)
	ts.Equal(3, q.firstPrio.Data)
}

func (ts *JobQueueTestSuite) TestDrainEmptiesQueue() {
	var q JobQueue[int]
	q.enqueue(0, 1)
	q.enqueue(1, 2)
	q.enqueue(0, 3)

	q.drain()

	ts.Equal(0, q.len())
	ts.Nil(q.head)
	ts.Nil(q.tail)
	ts.Nil(q.firstPrio)
}

func (ts *JobQueueTestSuite) TestPopOldestSkipsFirstPrioWhenNotHead() {
	var q JobQueue[int]
	q.enqueue(0, 1)
	p := q.enqueue(1, 2)

	ts.Equal(p, q.firstPrio)
	oldest := q.popOldest()
	ts.Equal(1, oldest.Data)
	ts.Equal(p, q.firstPrio)
}
