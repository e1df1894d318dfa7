package delivery

import (
	"context"

	"github.com/google/uuid"
)

type idKey struct{}

// WithID tags ctx with the delivery id of one validated draft.  The
// controller keeps the id until the draft is delivered, so a user retry
// carries the same id as the failed attempt.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, idKey{}, id)
}

// IDFromContext returns the id set by WithID, or "" when none was set.
func IDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(idKey{}).(string)
	return id
}

// idOrNew returns the context id, or a fresh one for callers that did not
// set it.
func idOrNew(ctx context.Context) string {
	if id := IDFromContext(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
