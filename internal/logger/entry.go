package logger

import "context"

// Entry is a one-off set of metric fields (duration_ms, count, size) logged
// on top of the context logger.
//
//	logger.With(logger.Fields{logger.FieldCount: n}).WithDuration(ms).Info(ctx, "Seeded")
type Entry struct {
	fields Fields
}

// With starts an Entry.
func With(fields Fields) *Entry {
	return &Entry{fields: fields}
}

// With returns a copy of e with fields merged in.
func (e *Entry) With(fields Fields) *Entry {
	merged := make(Fields, len(e.fields)+len(fields))
	for k, v := range e.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Entry{fields: merged}
}

func (e *Entry) WithField(key string, value interface{}) *Entry {
	return e.With(Fields{key: value})
}

func (e *Entry) WithDuration(ms int64) *Entry {
	return e.WithField(FieldDurationMs, ms)
}

func (e *Entry) WithCount(n int) *Entry {
	return e.WithField(FieldCount, n)
}

func (e *Entry) Debug(ctx context.Context, format string, args ...interface{}) {
	FromContext(ctx).WithFields(e.fields).Debugf(format, args...)
}

func (e *Entry) Info(ctx context.Context, format string, args ...interface{}) {
	FromContext(ctx).WithFields(e.fields).Infof(format, args...)
}

func (e *Entry) Warn(ctx context.Context, format string, args ...interface{}) {
	FromContext(ctx).WithFields(e.fields).Warnf(format, args...)
}

func (e *Entry) Error(ctx context.Context, format string, args ...interface{}) {
	FromContext(ctx).WithFields(e.fields).Errorf(format, args...)
}
