package middleware

import "go.uber.org/zap"

// ZapLogger adapts a *zap.Logger to Logger.
type ZapLogger struct {
	log *zap.Logger
}

// NewZapLogger wraps l. A nil l yields a no-op logger.
func NewZapLogger(l *zap.Logger) *ZapLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapLogger{log: l}
}

// Zap returns the underlying logger.
func (z *ZapLogger) Zap() *zap.Logger { return z.log }

func (z *ZapLogger) Info(msg string, fields ...Field)  { z.log.Info(msg, zapFields(fields)...) }
func (z *ZapLogger) Error(msg string, fields ...Field) { z.log.Error(msg, zapFields(fields)...) }
func (z *ZapLogger) Debug(msg string, fields ...Field) { z.log.Debug(msg, zapFields(fields)...) }
func (z *ZapLogger) Warn(msg string, fields ...Field)  { z.log.Warn(msg, zapFields(fields)...) }

func zapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = zap.Any(f.Key, f.Value)
	}
	return out
}
