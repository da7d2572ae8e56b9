package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Venue       string    `json:"venue"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Status      string    `json:"status"` // upcoming, ongoing, completed

	ResalePolicy ResalePolicy `json:"resale_policy"`
}

// ResalePolicy holds the organizer-configured constraints consulted
// before any resale-triggered transfer.
type ResalePolicy struct {
	ResaleLocked     bool             `json:"resale_locked"`
	TransferDeadline *time.Time       `json:"transfer_deadline,omitempty"`
	MaxResalePrice   *decimal.Decimal `json:"max_resale_price,omitempty"`
}
