package middleware

import (
	"context"

	"github.com/bedtex/dispatch-backend/pkg/auth"
)

type contextKey string

const ctxActor contextKey = "actor"

// ActorFromContext returns the authenticated actor seeded by Auth, or false
// when the request was not authenticated.
func ActorFromContext(ctx context.Context) (auth.Actor, bool) {
	if ctx == nil {
		return auth.Actor{}, false
	}
	if v, ok := ctx.Value(ctxActor).(auth.Actor); ok {
		return v, true
	}
	return auth.Actor{}, false
}

// WithActor injects the actor into the context. Tests use it to call
// controllers without the full middleware chain.
func WithActor(ctx context.Context, actor auth.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, actor)
}
