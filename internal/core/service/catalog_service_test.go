package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/harvestlink/marketplace-api/internal/core/domain"
	"github.com/harvestlink/marketplace-api/internal/core/ports"
)

func validListingInput(ownerID string) ports.CreateListingInput {
	return ports.CreateListingInput{
		OwnerID:       ownerID,
		Name:          "Tomato",
		Description:   "vine ripened",
		UnitPrice:     decimal.RequireFromString("2.50"),
		TotalQuantity: 40,
	}
}

func TestCatalogService_CreateListing_Success(t *testing.T) {
	f := newMarketFixture()
	farmer := f.register("Farmer", domain.RoleProducer)

	l, err := f.listings.CreateListing(context.Background(), validListingInput(farmer.Actor.ID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.ID == "" || l.CreatedAt.IsZero() {
		t.Error("expected generated ID and timestamp")
	}
	if l.OwnerID != farmer.Actor.ID {
		t.Errorf("owner = %q, want %q", l.OwnerID, farmer.Actor.ID)
	}
	if got := f.events.types(); len(got) != 1 || got[0] != ports.EventListingCreated {
		t.Errorf("expected one listing.created event, got %v", got)
	}
}

func TestCatalogService_CreateListing_Validation(t *testing.T) {
	f := newMarketFixture()
	farmer := f.register("Farmer", domain.RoleProducer)

	cases := map[string]func(*ports.CreateListingInput){
		"blank name":     func(in *ports.CreateListingInput) { in.Name = "  " },
		"zero price":     func(in *ports.CreateListingInput) { in.UnitPrice = decimal.Zero },
		"negative price": func(in *ports.CreateListingInput) { in.UnitPrice = decimal.NewFromInt(-1) },
		"zero quantity":  func(in *ports.CreateListingInput) { in.TotalQuantity = 0 },
		"unknown owner":  func(in *ports.CreateListingInput) { in.OwnerID = "ghost" },
	}
	for name, mutate := range cases {
		in := validListingInput(farmer.Actor.ID)
		mutate(&in)
		if _, err := f.listings.CreateListing(context.Background(), in); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
	if n := len(f.catalog.ListAll(context.Background())); n != 0 {
		t.Errorf("expected empty catalog, got %d listings", n)
	}
}

func TestCatalogService_CreateListing_ConsumerForbidden(t *testing.T) {
	f := newMarketFixture()
	buyer := f.register("Buyer", domain.RoleConsumer)

	_, err := f.listings.CreateListing(context.Background(), validListingInput(buyer.Actor.ID))
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCatalogService_ListCatalog_HidesSoldOut(t *testing.T) {
	f := newMarketFixture()
	ctx := context.Background()
	farmer := f.register("Sunny Farm", domain.RoleProducer)
	buyer := f.register("Buyer", domain.RoleConsumer)

	first := f.listing(t, farmer, "Garlic", "1", 2)
	second := f.listing(t, farmer, "Onion", "1", 5)
	if _, err := f.order(buyer, first.ID, 2); err != nil {
		t.Fatalf("order: %v", err)
	}

	got, err := f.listings.ListCatalog(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Listing.ID != second.ID {
		t.Fatalf("expected only %q, got %+v", second.Name, got)
	}
	if got[0].OwnerName != "Sunny Farm" || got[0].Remaining != 5 {
		t.Errorf("unexpected detail %+v", got[0])
	}

	detail, err := f.listings.GetListing(ctx, first.ID)
	if err != nil {
		t.Fatalf("sold out listing must stay readable: %v", err)
	}
	if detail.Remaining != 0 {
		t.Errorf("remaining = %d, want 0", detail.Remaining)
	}
}

func TestCatalogService_GetListing_NotFound(t *testing.T) {
	f := newMarketFixture()
	if _, err := f.listings.GetListing(context.Background(), "nope"); !errors.Is(err, domain.ErrListingNotFound) {
		t.Errorf("expected ErrListingNotFound, got %v", err)
	}
}

func TestCatalogService_CheckAvailability(t *testing.T) {
	f := newMarketFixture()
	ctx := context.Background()
	farmer := f.register("Farmer", domain.RoleProducer)
	buyer := f.register("Buyer", domain.RoleConsumer)
	l := f.listing(t, farmer, "Basil", "0.99", 10)
	_, _ = f.order(buyer, l.ID, 4)

	res, err := f.listings.CheckAvailability(ctx, l.ID, 6)
	if err != nil || !res.Available || res.Remaining != 6 {
		t.Errorf("CheckAvailability(6) = %+v, %v", res, err)
	}
	res, err = f.listings.CheckAvailability(ctx, l.ID, 7)
	if err != nil || res.Available {
		t.Errorf("CheckAvailability(7) = %+v, %v", res, err)
	}
	if _, err := f.listings.CheckAvailability(ctx, l.ID, 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := f.listings.CheckAvailability(ctx, "nope", 1); !errors.Is(err, domain.ErrListingNotFound) {
		t.Errorf("expected ErrListingNotFound, got %v", err)
	}
}

func TestCatalog_Load_RestoresOrder(t *testing.T) {
	f := newMarketFixture()
	farmer := f.register("Farmer", domain.RoleProducer)
	store := &stubListingStore{}
	catalog := NewCatalog(store, f.identity, zerolog.Nop())
	catalog.now = tickingClock()

	for _, name := range []string{"A", "B", "C"} {
		in := validListingInput(farmer.Actor.ID)
		in.Name = name
		if _, err := catalog.CreateListing(context.Background(), in); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	// Stores make no ordering promise.
	store.listings[0], store.listings[2] = store.listings[2], store.listings[0]

	restarted := NewCatalog(store, f.identity, zerolog.Nop())
	if err := restarted.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	all := restarted.ListAll(context.Background())
	if len(all) != 3 || all[0].Name != "A" || all[2].Name != "C" {
		t.Errorf("unexpected order after load: %+v", all)
	}
	if got := restarted.ListByOwner(context.Background(), farmer.Actor.ID); len(got) != 3 {
		t.Errorf("ListByOwner returned %d listings", len(got))
	}
}
