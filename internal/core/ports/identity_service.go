package ports

import (
	"context"

	"github.com/harvestlink/marketplace-api/internal/core/domain"
)

// Session is an actor together with the bearer token that was just issued
// for it. The token is only available at issue time.
type Session struct {
	Token string
	Actor domain.Actor
}

// ActorDirectory resolves actors by ID.
type ActorDirectory interface {
	GetActor(ctx context.Context, id string) (*domain.Actor, error)
}

// IdentityService registers actors and manages their session tokens.
type IdentityService interface {
	ActorDirectory
	Register(ctx context.Context, displayName string, role domain.Role) (*Session, error)
	Authenticate(ctx context.Context, displayName string, role domain.Role) (*Session, error)
	ResolveToken(ctx context.Context, token string) (*domain.Actor, error)
}
