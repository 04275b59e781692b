package api

import (
	"context"

	"github.com/rpupo63/portfolio-backend/services"
)

type keyType string

const identityKey keyType = "identity"

// ctxWithIdentity adds a resolved identity to the context
func ctxWithIdentity(ctx context.Context, identity *services.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// ctxGetIdentity retrieves the identity from the context; nil means the
// request is anonymous.
func ctxGetIdentity(ctx context.Context) *services.Identity {
	if value := ctx.Value(identityKey); value != nil {
		if identity, ok := value.(*services.Identity); ok {
			return identity
		}
	}
	return nil
}
