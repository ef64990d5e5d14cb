package taskpool

import "github.com/sirupsen/logrus"

// defaultLogger is used by New when no WithLogger option is supplied.
func defaultLogger() *logrus.Logger {
	return logrus.StandardLogger()
}

// logFields returns the structured fields every pool log line carries —
// funcName stands in for the OS thread name a spawned worker would
// otherwise be given, since goroutines have no portable OS thread name.
func (p *Pool[T]) logFields() logrus.Fields {
	return logrus.Fields{"pool": p.funcName}
}
