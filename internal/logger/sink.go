package logger

import "go.uber.org/zap"

// Sink is the logging surface handed to engine components.
// *zap.Logger satisfies it directly.
type Sink interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
}

// Nop returns a sink that discards everything.
func Nop() Sink {
	return zap.NewNop()
}

// Default returns a sink that forwards to the global logger at call time,
// so it can be created before Init runs.
func Default(component string) Sink {
	return globalSink{component: component}
}

// OrNop returns s, or a discarding sink when s is nil.
func OrNop(s Sink) Sink {
	if s == nil {
		return Nop()
	}
	return s
}

type globalSink struct {
	component string
}

func (g globalSink) logger() *zap.Logger {
	return Named(g.component).WithOptions(zap.AddCallerSkip(1))
}

func (g globalSink) Debug(msg string, fields ...zap.Field) { g.logger().Debug(msg, fields...) }
func (g globalSink) Info(msg string, fields ...zap.Field)  { g.logger().Info(msg, fields...) }
func (g globalSink) Warn(msg string, fields ...zap.Field)  { g.logger().Warn(msg, fields...) }

// NewZapSink wraps an explicit zap logger.
func NewZapSink(l *zap.Logger) Sink {
	if l == nil {
		return Nop()
	}
	return l
}
