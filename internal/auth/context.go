package auth

import (
	"context"

	"github.com/google/uuid"
)

type authUserKey struct{}

// ContextWithUserID stamps the authenticated user onto the request
// context. Handlers read it back with UserIDFromContext.
func ContextWithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, authUserKey{}, id)
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(authUserKey{}).(uuid.UUID)
	return id, ok
}
