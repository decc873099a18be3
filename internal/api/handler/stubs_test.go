package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/harvestlink/marketplace-api/internal/api/middleware"
	"github.com/harvestlink/marketplace-api/internal/core/domain"
	"github.com/harvestlink/marketplace-api/internal/core/ports"
)

type stubIdentity struct {
	registerFn     func(ctx context.Context, displayName string, role domain.Role) (*ports.Session, error)
	authenticateFn func(ctx context.Context, displayName string, role domain.Role) (*ports.Session, error)
}

func (s *stubIdentity) Register(ctx context.Context, displayName string, role domain.Role) (*ports.Session, error) {
	return s.registerFn(ctx, displayName, role)
}

func (s *stubIdentity) Authenticate(ctx context.Context, displayName string, role domain.Role) (*ports.Session, error) {
	return s.authenticateFn(ctx, displayName, role)
}

func (s *stubIdentity) ResolveToken(context.Context, string) (*domain.Actor, error) {
	return nil, domain.ErrUnauthenticated
}

func (s *stubIdentity) GetActor(context.Context, string) (*domain.Actor, error) {
	return nil, domain.ErrActorNotFound
}

type stubCatalog struct {
	createFn func(ctx context.Context, in ports.CreateListingInput) (*domain.Listing, error)
	getFn    func(ctx context.Context, id string) (*ports.ListingDetail, error)
	listFn   func(ctx context.Context) ([]ports.ListingDetail, error)
	checkFn  func(ctx context.Context, id string, qty int64) (*ports.AvailabilityResult, error)
}

func (s *stubCatalog) CreateListing(ctx context.Context, in ports.CreateListingInput) (*domain.Listing, error) {
	return s.createFn(ctx, in)
}

func (s *stubCatalog) GetListing(ctx context.Context, id string) (*ports.ListingDetail, error) {
	return s.getFn(ctx, id)
}

func (s *stubCatalog) ListCatalog(ctx context.Context) ([]ports.ListingDetail, error) {
	return s.listFn(ctx)
}

func (s *stubCatalog) CheckAvailability(ctx context.Context, id string, qty int64) (*ports.AvailabilityResult, error) {
	return s.checkFn(ctx, id, qty)
}

type stubOrders struct {
	placeFn func(ctx context.Context, in ports.PlaceOrderInput) (*ports.PlaceOrderResult, error)
	listFn  func(ctx context.Context, actor domain.Actor) ([]ports.OrderView, error)
}

func (s *stubOrders) PlaceOrder(ctx context.Context, in ports.PlaceOrderInput) (*ports.PlaceOrderResult, error) {
	return s.placeFn(ctx, in)
}

func (s *stubOrders) ListOrders(ctx context.Context, actor domain.Actor) ([]ports.OrderView, error) {
	return s.listFn(ctx, actor)
}

type stubTrends struct {
	trends map[string]domain.Trend
	err    error
}

func (s *stubTrends) ComputeTrends(context.Context) (map[string]domain.Trend, error) {
	return s.trends, s.err
}

// newContext builds a JSON request context with the validator installed and,
// when actor is non-nil, the values Auth would have set.
func newContext(method, target, body string, actor *domain.Actor) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if actor != nil {
		c.Set(middleware.ContextActor, *actor)
		c.Set(middleware.ContextRole, actor.Role)
	}
	return c, rec
}
