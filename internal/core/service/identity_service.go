package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/blake2b"

	"github.com/harvestlink/marketplace-api/internal/core/domain"
	"github.com/harvestlink/marketplace-api/internal/core/ports"
	"github.com/harvestlink/marketplace-api/internal/pkg/metrics"
)

// sessionIDBytes is the entropy of a token's jti: 128 bits.
const sessionIDBytes = 16

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IdentityService keeps every registered actor in memory, backed by a durable
// ActorStore, and issues rotating session tokens.
//
// writeMu serialises writers across their store I/O; mu only guards the maps
// and is never held while talking to the store.
type IdentityService struct {
	store  ports.ActorStore
	secret []byte
	log    zerolog.Logger
	now    func() time.Time

	writeMu sync.Mutex
	mu      sync.RWMutex
	byID    map[string]domain.Actor
	byKey   map[string]string
	byToken map[string]string
}

func NewIdentityService(store ports.ActorStore, tokenSecret string, log zerolog.Logger) *IdentityService {
	return &IdentityService{
		store:   store,
		secret:  []byte(tokenSecret),
		log:     log,
		now:     time.Now,
		byID:    make(map[string]domain.Actor),
		byKey:   make(map[string]string),
		byToken: make(map[string]string),
	}
}

// Load rebuilds the in-memory indexes from the durable store.
func (s *IdentityService) Load(ctx context.Context) error {
	actors, err := s.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load actors: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range actors {
		s.index(a)
	}
	s.log.Info().Int("actors", len(actors)).Msg("identity store loaded")
	return nil
}

// Register creates a new actor and issues its first session token.
func (s *IdentityService) Register(ctx context.Context, displayName string, role domain.Role) (*ports.Session, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, domain.InvalidInputf("display name is required")
	}
	if !role.Valid() {
		return nil, domain.InvalidInputf("role must be %q or %q", domain.RoleProducer, domain.RoleConsumer)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, exists := s.lookupKey(displayName, role); exists {
		return nil, domain.ErrDuplicateActor
	}

	now := stamp(s.now())
	actor := domain.Actor{
		ID:          uuid.NewString(),
		DisplayName: displayName,
		Role:        role,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	token, err := s.issueToken(actor)
	if err != nil {
		return nil, err
	}
	actor.TokenHash = tokenDigest(token)

	if err := s.store.Append(context.WithoutCancel(ctx), actor); err != nil {
		return nil, fmt.Errorf("register actor: %w", err)
	}

	s.mu.Lock()
	s.index(actor)
	s.mu.Unlock()

	metrics.SessionsIssuedTotal.WithLabelValues("register").Inc()
	s.log.Info().Str("actor_id", actor.ID).Str("role", string(role)).Msg("actor registered")

	return &ports.Session{Token: token, Actor: actor}, nil
}

// Authenticate looks up an actor by display name and role and rotates its
// session token. The previous token stops resolving once this returns.
func (s *IdentityService) Authenticate(ctx context.Context, displayName string, role domain.Role) (*ports.Session, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" || !role.Valid() {
		return nil, domain.ErrActorNotFound
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	actor, ok := s.lookupKey(displayName, role)
	if !ok {
		return nil, domain.ErrActorNotFound
	}

	token, err := s.issueToken(actor)
	if err != nil {
		return nil, err
	}
	previous := actor.TokenHash
	actor.TokenHash = tokenDigest(token)
	actor.UpdatedAt = stamp(s.now())

	if err := s.store.Replace(context.WithoutCancel(ctx), actor); err != nil {
		return nil, fmt.Errorf("rotate session: %w", err)
	}

	s.mu.Lock()
	delete(s.byToken, previous)
	s.index(actor)
	s.mu.Unlock()

	metrics.SessionsIssuedTotal.WithLabelValues("login").Inc()
	s.log.Info().Str("actor_id", actor.ID).Msg("session rotated")

	return &ports.Session{Token: token, Actor: actor}, nil
}

// ResolveToken returns the actor currently holding token.
func (s *IdentityService) ResolveToken(_ context.Context, token string) (*domain.Actor, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, domain.ErrUnauthenticated
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byToken[tokenDigest(token)]
	if !ok || id != claims.Subject {
		return nil, domain.ErrUnauthenticated
	}
	actor := s.byID[id]
	return &actor, nil
}

// GetActor returns the actor with the given ID.
func (s *IdentityService) GetActor(_ context.Context, id string) (*domain.Actor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	actor, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrActorNotFound
	}
	return &actor, nil
}

func (s *IdentityService) lookupKey(displayName string, role domain.Role) (domain.Actor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byKey[domain.IdentityKey(displayName, role)]
	if !ok {
		return domain.Actor{}, false
	}
	return s.byID[id], true
}

// index must be called with mu held for writing.
func (s *IdentityService) index(a domain.Actor) {
	s.byID[a.ID] = a
	s.byKey[domain.IdentityKey(a.DisplayName, a.Role)] = a.ID
	if a.TokenHash != "" {
		s.byToken[a.TokenHash] = a.ID
	}
}

func (s *IdentityService) issueToken(a domain.Actor) (string, error) {
	jti := make([]byte, sessionIDBytes)
	if _, err := rand.Read(jti); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}

	claims := sessionClaims{
		Role: string(a.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  a.ID,
			ID:       hex.EncodeToString(jti),
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func tokenDigest(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
