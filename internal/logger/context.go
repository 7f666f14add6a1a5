package logger

import (
	"context"
	"sync/atomic"
)

type ctxKey struct{}

var fallback atomic.Pointer[Logger]

func init() {
	fallback.Store(New(nil))
}

// Default returns the logger used when a context carries none.
func Default() *Logger {
	return fallback.Load()
}

// SetDefault replaces the fallback logger. nil is ignored.
func SetDefault(l *Logger) {
	if l != nil {
		fallback.Store(l)
	}
}

// WithContext attaches l to ctx.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// Lookup returns the logger attached to ctx, if any.
func Lookup(ctx context.Context) (*Logger, bool) {
	if ctx == nil {
		return nil, false
	}
	l, ok := ctx.Value(ctxKey{}).(*Logger)
	return l, ok && l != nil
}

// FromContext returns the logger attached to ctx, or Default.
func FromContext(ctx context.Context) *Logger {
	if l, ok := Lookup(ctx); ok {
		return l
	}
	return Default()
}

// WithField returns a context whose logger carries key=value.
func WithField(ctx context.Context, key string, value interface{}) context.Context {
	return FromContext(ctx).WithField(key, value).WithContext(ctx)
}

// WithFields returns a context whose logger carries fields.
func WithFields(ctx context.Context, fields Fields) context.Context {
	return FromContext(ctx).WithFields(fields).WithContext(ctx)
}

func SetRequestID(ctx context.Context, id string) context.Context {
	return WithField(ctx, FieldRequestID, id)
}

func SetUserID(ctx context.Context, id string) context.Context {
	return WithField(ctx, FieldUserID, id)
}

func SetMemeID(ctx context.Context, id string) context.Context {
	return WithField(ctx, FieldMemeID, id)
}

// GetRequestID returns the request_id attached to ctx, or "".
func GetRequestID(ctx context.Context) string {
	return stringField(ctx, FieldRequestID)
}

// GetUserID returns the user_id attached to ctx, or "".
func GetUserID(ctx context.Context) string {
	return stringField(ctx, FieldUserID)
}

func stringField(ctx context.Context, key string) string {
	s, _ := FromContext(ctx).Data[key].(string)
	return s
}

// Info logs through the default logger.
func Info(format string, args ...interface{}) {
	Default().Infof(format, args...)
}

// CtxDebug logs with the fields attached to ctx.
func CtxDebug(ctx context.Context, format string, args ...interface{}) {
	FromContext(ctx).Debugf(format, args...)
}

// CtxInfo logs with the fields attached to ctx.
func CtxInfo(ctx context.Context, format string, args ...interface{}) {
	FromContext(ctx).Infof(format, args...)
}

// CtxWarn logs with the fields attached to ctx.
func CtxWarn(ctx context.Context, format string, args ...interface{}) {
	FromContext(ctx).Warnf(format, args...)
}

// CtxError logs with the fields attached to ctx.
func CtxError(ctx context.Context, format string, args ...interface{}) {
	FromContext(ctx).Errorf(format, args...)
}
