package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/harvestlink/marketplace-api/internal/core/domain"
	"github.com/harvestlink/marketplace-api/internal/core/ports"
	"github.com/harvestlink/marketplace-api/internal/pkg/metrics"
)

// OrderPlacedPayload is the body of an order.placed.v1 event.
type OrderPlacedPayload struct {
	OrderID   string    `json:"order_id"`
	ListingID string    `json:"listing_id"`
	BuyerID   string    `json:"buyer_id"`
	Quantity  int64     `json:"quantity"`
	Remaining int64     `json:"remaining"`
	PlacedAt  time.Time `json:"placed_at"`
}

// OrderService places orders against listings without ever overselling.
type OrderService struct {
	actors       ports.ActorDirectory
	catalog      *Catalog
	ledger       *Ledger
	availability *Availability
	locks        *listingLocks
	idempotency  ports.IdempotencyStore
	events       ports.EventPublisher
	log          zerolog.Logger
	now          func() time.Time
}

// NewOrderService wires an OrderService. idempotency and events may be nil.
func NewOrderService(
	actors ports.ActorDirectory,
	catalog *Catalog,
	ledger *Ledger,
	idempotency ports.IdempotencyStore,
	events ports.EventPublisher,
	log zerolog.Logger,
) *OrderService {
	return &OrderService{
		actors:       actors,
		catalog:      catalog,
		ledger:       ledger,
		availability: NewAvailability(catalog, ledger),
		locks:        newListingLocks(),
		idempotency:  idempotency,
		events:       events,
		log:          log,
		now:          time.Now,
	}
}

// PlaceOrder commits an order if the listing still has enough stock.
//
// The remaining quantity is recomputed and the record appended while the
// listing's section is held, so two placements on the same listing are
// always decided one after the other.
func (s *OrderService) PlaceOrder(ctx context.Context, in ports.PlaceOrderInput) (*ports.PlaceOrderResult, error) {
	start := time.Now()

	if in.Quantity <= 0 {
		return nil, s.reject("invalid_input", start, domain.InvalidInputf("quantity must be greater than 0"))
	}

	buyer, err := s.actors.GetActor(ctx, in.BuyerID)
	if err != nil || buyer.Role != domain.RoleConsumer {
		return nil, s.reject("forbidden", start, fmt.Errorf("place order: %w", domain.ErrForbidden))
	}

	if _, err := s.catalog.GetListing(ctx, in.ListingID); err != nil {
		return nil, s.reject("listing_not_found", start, err)
	}

	waitStart := time.Now()
	release, contended, err := s.locks.acquire(ctx, in.ListingID)
	metrics.ListingLockWaitDuration.Observe(time.Since(waitStart).Seconds())
	if contended {
		metrics.ListingLockContentionTotal.Inc()
	}
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}
	defer release()

	scope := idempotencyScope(buyer.ID, in.ListingID)
	if replay, ok := s.replay(ctx, scope, in.IdempotencyKey); ok {
		metrics.OrdersReplayedTotal.Inc()
		metrics.OrderPlacementDuration.WithLabelValues("replayed").Observe(time.Since(start).Seconds())
		s.log.Info().Str("idempotency_key", in.IdempotencyKey).Str("order_id", replay.Order.ID).Msg("idempotent replay")
		return replay, nil
	}

	ok, remaining, err := s.availability.IsAvailableFor(ctx, in.ListingID, in.Quantity)
	if err != nil {
		return nil, s.reject("listing_not_found", start, err)
	}
	if !ok {
		return nil, s.reject("insufficient_quantity", start, &domain.InsufficientQuantityError{
			Requested: in.Quantity,
			Available: remaining,
		})
	}

	rec := domain.OrderRecord{
		ID:        uuid.NewString(),
		ListingID: in.ListingID,
		BuyerID:   buyer.ID,
		Quantity:  in.Quantity,
		PlacedAt:  stamp(s.now()),
	}
	if err := s.ledger.Append(ctx, rec); err != nil {
		s.log.Error().Err(err).Str("listing_id", in.ListingID).Msg("failed to append order")
		return nil, s.reject("store_error", start, err)
	}
	remaining -= rec.Quantity

	if in.IdempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.Remember(context.WithoutCancel(ctx), scope, in.IdempotencyKey, rec.ID); err != nil {
			s.log.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("failed to remember idempotency key")
		}
	}

	s.publish(ctx, ports.DomainEvent{
		ID:         uuid.NewString(),
		Type:       ports.EventOrderPlaced,
		Key:        rec.ListingID,
		OccurredAt: rec.PlacedAt,
		Payload: OrderPlacedPayload{
			OrderID:   rec.ID,
			ListingID: rec.ListingID,
			BuyerID:   rec.BuyerID,
			Quantity:  rec.Quantity,
			Remaining: remaining,
			PlacedAt:  rec.PlacedAt,
		},
	})

	metrics.OrdersPlacedTotal.Inc()
	metrics.OrderedQuantityTotal.Add(float64(rec.Quantity))
	metrics.OrderPlacementDuration.WithLabelValues("committed").Observe(time.Since(start).Seconds())
	s.log.Info().
		Str("order_id", rec.ID).
		Str("listing_id", rec.ListingID).
		Str("buyer_id", rec.BuyerID).
		Int64("quantity", rec.Quantity).
		Int64("remaining", remaining).
		Msg("order placed")

	return &ports.PlaceOrderResult{Order: rec, Remaining: remaining}, nil
}

// ListOrders returns a consumer's own orders, or every order against a
// producer's listings, oldest first.
func (s *OrderService) ListOrders(ctx context.Context, actor domain.Actor) ([]ports.OrderView, error) {
	var records []domain.OrderRecord
	switch actor.Role {
	case domain.RoleConsumer:
		records = s.ledger.ForBuyer(actor.ID)
	case domain.RoleProducer:
		for _, l := range s.catalog.ListByOwner(ctx, actor.ID) {
			records = append(records, s.ledger.ForListing(l.ID)...)
		}
	default:
		return nil, domain.ErrForbidden
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].PlacedAt.Equal(records[j].PlacedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].PlacedAt.Before(records[j].PlacedAt)
	})

	names := make(map[string]string)
	actorName := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		var n string
		if a, err := s.actors.GetActor(ctx, id); err == nil {
			n = a.DisplayName
		}
		names[id] = n
		return n
	}

	views := make([]ports.OrderView, 0, len(records))
	for _, rec := range records {
		v := ports.OrderView{Order: rec, BuyerName: actorName(rec.BuyerID)}
		if l, err := s.catalog.GetListing(ctx, rec.ListingID); err == nil {
			v.ListingName = l.Name
			v.ProducerID = l.OwnerID
			v.ProducerName = actorName(l.OwnerID)
		}
		views = append(views, v)
	}
	return views, nil
}

// replay returns the order an earlier request with the same key produced.
// Lookup failures are logged and treated as a miss.
func (s *OrderService) replay(ctx context.Context, scope, key string) (*ports.PlaceOrderResult, bool) {
	if key == "" || s.idempotency == nil {
		return nil, false
	}
	orderID, found, err := s.idempotency.Lookup(ctx, scope, key)
	if err != nil {
		s.log.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed, placing anyway")
		return nil, false
	}
	if !found {
		return nil, false
	}
	rec, ok := s.ledger.Get(orderID)
	if !ok {
		s.log.Warn().Str("idempotency_key", key).Str("order_id", orderID).Msg("idempotency key points at unknown order")
		return nil, false
	}
	remaining, err := s.availability.Remaining(ctx, rec.ListingID)
	if err != nil {
		return nil, false
	}
	return &ports.PlaceOrderResult{Order: rec, Remaining: remaining, AlreadyExisted: true}, true
}

func (s *OrderService) publish(ctx context.Context, ev ports.DomainEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(context.WithoutCancel(ctx), ev); err != nil {
		s.log.Warn().Err(err).Str("event_type", ev.Type).Str("event_id", ev.ID).Msg("failed to publish event")
	}
}

func (s *OrderService) reject(reason string, start time.Time, err error) error {
	metrics.OrdersRejectedTotal.WithLabelValues(reason).Inc()
	metrics.OrderPlacementDuration.WithLabelValues("rejected").Observe(time.Since(start).Seconds())
	var insufficient *domain.InsufficientQuantityError
	if errors.As(err, &insufficient) {
		s.log.Info().
			Int64("requested", insufficient.Requested).
			Int64("available", insufficient.Available).
			Msg("order rejected")
	}
	return err
}

func idempotencyScope(buyerID, listingID string) string {
	return buyerID + ":" + listingID
}
