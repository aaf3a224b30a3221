package log

// nullLogger discards everything, used when a front end supplies no
// logger.
type nullLogger struct{}

// NewNullLogger returns a Logger that discards all output.
func NewNullLogger() Logger {
	return nullLogger{}
}

func (nullLogger) Infof(format string, args ...interface{})  {}
func (nullLogger) Errorf(format string, args ...interface{}) {}
func (nullLogger) Debugf(format string, args ...interface{}) {}
