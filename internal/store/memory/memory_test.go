package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lead-Studios/veritix-backend-sub009/internal/status"
	"github.com/Lead-Studios/veritix-backend-sub009/models"
)

func newTicket(id string, st models.AssetStatus) *models.TicketAsset {
	return &models.TicketAsset{
		ID:              id,
		EventID:         "evt-1",
		PurchaserID:     "user-1",
		Platform:        "polygon",
		Status:          st,
		TransferHistory: []models.TransferRecord{},
		PricePaid:       decimal.NewFromInt(10),
		PurchaseDate:    time.Now().UTC(),
	}
}

func TestTicketStore_TransitionStatus(t *testing.T) {
	store := NewTicketStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newTicket("tkt-1", models.AssetStatusPending)))

	err := store.TransitionStatus(ctx, "tkt-1",
		[]models.AssetStatus{models.AssetStatusPending, models.AssetStatusFailed},
		models.AssetStatusMinting)
	require.NoError(t, err)

	got, err := store.Get(ctx, "tkt-1")
	require.NoError(t, err)
	assert.Equal(t, models.AssetStatusMinting, got.Status)

	// Already minting: the same transition now loses.
	err = store.TransitionStatus(ctx, "tkt-1",
		[]models.AssetStatus{models.AssetStatusPending, models.AssetStatusFailed},
		models.AssetStatusMinting)
	assert.ErrorIs(t, err, status.ErrInvalidState)

	err = store.TransitionStatus(ctx, "missing",
		[]models.AssetStatus{models.AssetStatusPending}, models.AssetStatusMinting)
	assert.ErrorIs(t, err, status.ErrNotFound)
}

func TestTicketStore_CopiesOnReadAndWrite(t *testing.T) {
	store := NewTicketStore()
	ctx := context.Background()

	ticket := newTicket("tkt-1", models.AssetStatusMinted)
	require.NoError(t, store.Create(ctx, ticket))

	// Mutating the original after Create must not leak into the store.
	ticket.Status = models.AssetStatusBurned

	got, err := store.Get(ctx, "tkt-1")
	require.NoError(t, err)
	assert.Equal(t, models.AssetStatusMinted, got.Status)

	// Nor must mutating a read copy.
	got.TransferHistory = append(got.TransferHistory, models.TransferRecord{From: "a", To: "b"})
	again, err := store.Get(ctx, "tkt-1")
	require.NoError(t, err)
	assert.Empty(t, again.TransferHistory)
}

func TestTicketStore_ListsAndCounts(t *testing.T) {
	store := NewTicketStore()
	ctx := context.Background()

	early := newTicket("tkt-1", models.AssetStatusMinted)
	early.PurchaseDate = time.Now().UTC().Add(-time.Hour)
	late := newTicket("tkt-2", models.AssetStatusFailed)

	require.NoError(t, store.Create(ctx, late))
	require.NoError(t, store.Create(ctx, early))

	byEvent, err := store.ListByEvent(ctx, "evt-1")
	require.NoError(t, err)
	require.Len(t, byEvent, 2)
	assert.Equal(t, "tkt-1", byEvent[0].ID, "ordered by purchase date")

	byPurchaser, err := store.ListByPurchaser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, byPurchaser, 2)

	counts, err := store.CountByStatus(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, 1, counts[models.AssetStatusMinted])
	assert.Equal(t, 1, counts[models.AssetStatusFailed])
}

func TestConfigStore(t *testing.T) {
	store := NewConfigStore()
	ctx := context.Background()

	_, err := store.GetByEvent(ctx, "evt-1")
	assert.ErrorIs(t, err, status.ErrNotFound)

	cfg := models.DefaultMintingConfig("evt-1", "polygon")
	require.NoError(t, store.Create(ctx, cfg))
	assert.Error(t, store.Create(ctx, cfg), "duplicate create must fail")

	got, err := store.GetByEvent(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, got.NFTEnabled)

	got.NFTEnabled = true
	require.NoError(t, store.Update(ctx, got))

	again, err := store.GetByEvent(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, again.NFTEnabled)

	missing := models.DefaultMintingConfig("evt-2", "polygon")
	assert.ErrorIs(t, store.Update(ctx, missing), status.ErrNotFound)
}

func TestEventStore(t *testing.T) {
	store := NewEventStore()

	_, err := store.Get(context.Background(), "evt-1")
	assert.ErrorIs(t, err, status.ErrNotFound)

	store.Put(&models.Event{ID: "evt-1", Name: "Summer Jam"})

	got, err := store.Get(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.Equal(t, "Summer Jam", got.Name)
}
