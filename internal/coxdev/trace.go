package coxdev

import "github.com/sirupsen/logrus"

// Tracer receives intermediate vectors from the kernels when debug
// tracing is enabled. The C++ origin of this package prints such
// vectors to stderr unconditionally under a DEBUG build flag; this
// package routes the same observability through a pluggable callback
// so it stays usable from contexts where writing to the console is
// inappropriate.
type Tracer interface {
	TraceVector(op, name string, v []float64)
	TraceScalar(op, name string, v float64)
}

// logrusTracer is the default Tracer, backed by a logrus.FieldLogger at
// Debug level. It is a no-op whenever that level is disabled, so wiring
// it in costs nothing on the hot path in production use.
type logrusTracer struct {
	log logrus.FieldLogger
}

// NewLogrusTracer wraps log as a Tracer. Pass logrus.StandardLogger()
// to trace through the package-global logger.
func NewLogrusTracer(log logrus.FieldLogger) Tracer {
	return &logrusTracer{log: log}
}

func (t *logrusTracer) TraceVector(op, name string, v []float64) {
	t.log.WithField("op", op).Debugf("%s = %v", name, v)
}

func (t *logrusTracer) TraceScalar(op, name string, v float64) {
	t.log.WithField("op", op).Debugf("%s = %v", name, v)
}

// noopTracer discards everything; it is the zero-cost default when no
// Tracer is supplied.
type noopTracer struct{}

func (noopTracer) TraceVector(string, string, []float64) {}
func (noopTracer) TraceScalar(string, string, float64)   {}
