package whatsapp

import (
	"github.com/sirupsen/logrus"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// logrusLogger bridges whatsmeow logging onto logrus
type logrusLogger struct {
	module string
	entry  *logrus.Entry
}

var _ waLog.Logger = (*logrusLogger)(nil)

// NewLogger returns a whatsmeow logger writing through logrus with a module field
func NewLogger(module string) waLog.Logger {
	return &logrusLogger{
		module: module,
		entry:  logrus.WithField("module", module),
	}
}

func (l *logrusLogger) Errorf(msg string, args ...interface{}) { l.entry.Errorf(msg, args...) }
func (l *logrusLogger) Warnf(msg string, args ...interface{})  { l.entry.Warnf(msg, args...) }
func (l *logrusLogger) Infof(msg string, args ...interface{})  { l.entry.Infof(msg, args...) }
func (l *logrusLogger) Debugf(msg string, args ...interface{}) { l.entry.Debugf(msg, args...) }

func (l *logrusLogger) Sub(module string) waLog.Logger {
	return NewLogger(l.module + "/" + module)
}
