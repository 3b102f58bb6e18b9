package auth

import "context"

type callerContextKey struct{}

// ContextWithCaller attaches the resolved caller to a request context.
func ContextWithCaller(ctx context.Context, caller *Caller) context.Context {
	return context.WithValue(ctx, callerContextKey{}, caller)
}

// CallerFromContext returns the caller resolved by the request filter.
func CallerFromContext(ctx context.Context) (*Caller, bool) {
	caller, ok := ctx.Value(callerContextKey{}).(*Caller)
	if !ok || caller == nil || caller.Identity == nil {
		return nil, false
	}
	return caller, true
}
