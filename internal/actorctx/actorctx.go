// Package actorctx carries the authenticated actor through a request's
// context so lower layers can stamp audit fields without reaching back into
// the HTTP layer.
package actorctx

import "context"

type ctxKey struct{}

func WithActor(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, ctxKey{}, email)
}

func ActorFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKey{}).(string)

	return v, ok && v != ""
}
