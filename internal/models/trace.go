package models

import "context"

// traceIDKey 上下文中追踪ID的键类型
type traceIDKey struct{}

// WithTraceID 将追踪ID放入上下文
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceIDFromContext 从上下文中取出追踪ID，没有时返回空串
func TraceIDFromContext(ctx context.Context) string {
	if traceID, ok := ctx.Value(traceIDKey{}).(string); ok {
		return traceID
	}
	return ""
}
