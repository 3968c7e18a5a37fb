package auth

import (
	"context"

	"drivehub/internal/db"
)

// Actor is the authenticated principal behind a request. It is carried
// explicitly on the request context, never in package state.
type Actor struct {
	UserID int
	Role   db.Role
}

func (a Actor) IsAdmin() bool { return a.Role == db.RoleAdmin }

type ctxKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(Actor)
	return a, ok
}
