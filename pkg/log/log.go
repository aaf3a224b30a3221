// Package log provides the front-end-supplied structured logger
// interface, per spec §4/§6's ambient logging surface.
package log

import "github.com/sirupsen/logrus"

// Logger is the minimal interface a front end supplies to a Machine.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type logger struct {
	*logrus.Logger
}

// New returns a logrus-backed Logger writing text-formatted lines at
// debug level, matching the verbosity the teacher's own MMU/IO
// construction enables.
func New() Logger {
	l := logrus.New()
	l.SetLevel(logrus.DebugLevel)
	l.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	return &logger{l}
}

func (l *logger) Infof(format string, args ...interface{})  { l.Logger.Infof(format, args...) }
func (l *logger) Errorf(format string, args ...interface{}) { l.Logger.Errorf(format, args...) }
func (l *logger) Debugf(format string, args ...interface{}) { l.Logger.Debugf(format, args...) }
