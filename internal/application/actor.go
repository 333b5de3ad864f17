package application

import (
	"context"

	"github.com/ericfisherdev/liveconfig/internal/domain/model"
)

type actorKey struct{}

// WithActor returns a context carrying the calling user.
func WithActor(ctx context.Context, actor model.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the calling user carried by ctx, if any.
func ActorFrom(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(model.Actor)
	return actor, ok
}
