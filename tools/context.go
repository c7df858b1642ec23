package tools

import "context"

type threadIDKey struct{}

// WithThreadID tags ctx with the thread whose run requested the tool call.
func WithThreadID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, threadIDKey{}, id)
}

// ThreadIDFromContext returns the thread id set by WithThreadID, if any.
func ThreadIDFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(threadIDKey{}).(string)
	return s, ok && s != ""
}
