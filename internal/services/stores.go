package services

import (
	"context"

	"github.com/Lead-Studios/veritix-backend-sub009/models"
)

// TicketStore is the persistence contract for ticket assets. The
// lifecycle service is the only writer.
type TicketStore interface {
	Create(ctx context.Context, ticket *models.TicketAsset) error
	Get(ctx context.Context, id string) (*models.TicketAsset, error)
	Update(ctx context.Context, ticket *models.TicketAsset) error

	// TransitionStatus conditionally moves the ticket to the target status
	// only while its current status is one of from. Returns
	// status.ErrNotFound for an unknown id and status.ErrInvalidState when
	// the row exists but its status lost the race.
	TransitionStatus(ctx context.Context, id string, from []models.AssetStatus, to models.AssetStatus) error

	ListByEvent(ctx context.Context, eventID string) ([]*models.TicketAsset, error)
	ListByPurchaser(ctx context.Context, purchaserID string) ([]*models.TicketAsset, error)
	CountByStatus(ctx context.Context, eventID string) (map[models.AssetStatus]int, error)
}

// MintingConfigStore persists per-event minting policy records.
type MintingConfigStore interface {
	// GetByEvent returns status.ErrNotFound when the event has no config.
	GetByEvent(ctx context.Context, eventID string) (*models.MintingConfig, error)
	Create(ctx context.Context, cfg *models.MintingConfig) error
	Update(ctx context.Context, cfg *models.MintingConfig) error
}

// EventStore reads events owned by the wider ticketing system.
type EventStore interface {
	// Get returns status.ErrNotFound for an unknown event.
	Get(ctx context.Context, id string) (*models.Event, error)
}

// TicketLocker serializes lifecycle mutations per ticket identity. The
// returned func releases the lock.
type TicketLocker interface {
	Acquire(ctx context.Context, ticketID string) (func(), error)
}

// Notifier pushes lifecycle events to purchasers. Implementations log
// delivery failures and never propagate them; notification is a side
// channel, not part of the operation.
type Notifier interface {
	Publish(ctx context.Context, purchaserID string, payload map[string]any)
}
