package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/checkcache"
)

var _ checkcache.Logger = LogrusLogger{}

type LogrusLogger struct{ E *logrus.Entry }

// New tags every entry of l with component=checkcache.
func New(l *logrus.Logger) LogrusLogger {
	return LogrusLogger{E: l.WithField("component", "checkcache")}
}

func (l LogrusLogger) Debug(msg string, f checkcache.Fields) { l.entry(f).Debug(msg) }
func (l LogrusLogger) Info(msg string, f checkcache.Fields)  { l.entry(f).Info(msg) }
func (l LogrusLogger) Warn(msg string, f checkcache.Fields)  { l.entry(f).Warn(msg) }
func (l LogrusLogger) Error(msg string, f checkcache.Fields) { l.entry(f).Error(msg) }

func (l LogrusLogger) entry(f checkcache.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	e := l.E
	if err, ok := f["err"].(error); ok {
		e = e.WithError(err)
	}
	fields := make(logrus.Fields, len(f))
	for k, v := range f {
		if k == "err" {
			continue
		}
		fields[k] = v
	}
	return e.WithFields(fields)
}
