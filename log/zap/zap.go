package zap

import (
	"sort"

	"go.uber.org/zap"

	"github.com/unkn0wn-root/checkcache"
)

var _ checkcache.Logger = ZapLogger{}

type ZapLogger struct{ L *zap.Logger }

// New returns an adapter that logs through l under the "checkcache" name.
func New(l *zap.Logger) ZapLogger { return ZapLogger{L: l.Named("checkcache")} }

func (z ZapLogger) Debug(msg string, f checkcache.Fields) { z.L.Debug(msg, zf(f)...) }
func (z ZapLogger) Info(msg string, f checkcache.Fields)  { z.L.Info(msg, zf(f)...) }
func (z ZapLogger) Warn(msg string, f checkcache.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z ZapLogger) Error(msg string, f checkcache.Fields) { z.L.Error(msg, zf(f)...) }

// zf converts fields in key order; "err" becomes a zap error field.
func zf(f checkcache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(f))
	for _, k := range keys {
		if err, ok := f[k].(error); ok && k == "err" {
			out = append(out, zap.Error(err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
