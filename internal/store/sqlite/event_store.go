package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/shopspring/decimal"

	"github.com/Lead-Studios/veritix-backend-sub009/internal/status"
	"github.com/Lead-Studios/veritix-backend-sub009/models"
)

// EventStore reads event rows owned by the wider ticketing system,
// including the resale-policy columns the transfer validator consults.
type EventStore struct {
	db dbx.Builder
}

func NewEventStore(db dbx.Builder) *EventStore {
	return &EventStore{db: db}
}

type eventRow struct {
	ID               string         `db:"id"`
	Name             string         `db:"name"`
	Description      string         `db:"description"`
	Venue            string         `db:"venue"`
	StartTime        string         `db:"start_time"`
	EndTime          string         `db:"end_time"`
	Status           string         `db:"status"`
	ResaleLocked     bool           `db:"resale_locked"`
	TransferDeadline sql.NullString `db:"transfer_deadline"`
	MaxResalePrice   sql.NullString `db:"max_resale_price"`
}

func (s *EventStore) Get(ctx context.Context, id string) (*models.Event, error) {
	var row eventRow
	err := s.db.Select("*").
		From("events").
		Where(dbx.HashExp{"id": id}).
		WithContext(ctx).
		One(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: event %s", status.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("select event: %w", err)
	}

	event := &models.Event{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Venue:       row.Venue,
		Status:      row.Status,
		ResalePolicy: models.ResalePolicy{
			ResaleLocked: row.ResaleLocked,
		},
	}

	if event.StartTime, err = time.Parse(time.RFC3339Nano, row.StartTime); err != nil {
		return nil, fmt.Errorf("parse start_time %q: %w", row.StartTime, err)
	}
	if event.EndTime, err = time.Parse(time.RFC3339Nano, row.EndTime); err != nil {
		return nil, fmt.Errorf("parse end_time %q: %w", row.EndTime, err)
	}

	if event.ResalePolicy.TransferDeadline, err = parseNullTime(row.TransferDeadline); err != nil {
		return nil, err
	}
	if row.MaxResalePrice.Valid && row.MaxResalePrice.String != "" {
		maxPrice, perr := decimal.NewFromString(row.MaxResalePrice.String)
		if perr != nil {
			return nil, fmt.Errorf("parse max_resale_price %q: %w", row.MaxResalePrice.String, perr)
		}
		event.ResalePolicy.MaxResalePrice = &maxPrice
	}

	return event, nil
}
