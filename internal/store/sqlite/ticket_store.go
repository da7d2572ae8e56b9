// Package sqlite persists the engine's records through dbx on the
// application's SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/shopspring/decimal"

	"github.com/Lead-Studios/veritix-backend-sub009/internal/status"
	"github.com/Lead-Studios/veritix-backend-sub009/models"
)

type TicketStore struct {
	db dbx.Builder
}

func NewTicketStore(db dbx.Builder) *TicketStore {
	return &TicketStore{db: db}
}

// ticketRow mirrors the ticket_assets table.
type ticketRow struct {
	ID              string         `db:"id"`
	EventID         string         `db:"event_id"`
	PurchaserID     string         `db:"purchaser_id"`
	PurchaserName   string         `db:"purchaser_name"`
	PurchaserEmail  string         `db:"purchaser_email"`
	Tier            string         `db:"tier"`
	PurchaserWallet string         `db:"purchaser_wallet"`
	OwnerWallet     string         `db:"owner_wallet"`
	PreviousOwner   string         `db:"previous_owner"`
	TransferHistory string         `db:"transfer_history"`
	Platform        string         `db:"platform"`
	ContractAddress string         `db:"contract_address"`
	TokenID         string         `db:"token_id"`
	TokenURI        string         `db:"token_uri"`
	TxRef           string         `db:"tx_ref"`
	Status          string         `db:"status"`
	ErrorMessage    string         `db:"error_message"`
	RetryCount      int            `db:"retry_count"`
	LastRetryAt     sql.NullString `db:"last_retry_at"`
	PricePaid       string         `db:"price_paid"`
	PurchaseDate    string         `db:"purchase_date"`
	MintedAt        sql.NullString `db:"minted_at"`
	TransferredAt   sql.NullString `db:"transferred_at"`
}

func (s *TicketStore) Create(ctx context.Context, ticket *models.TicketAsset) error {
	params, err := ticketParams(ticket)
	if err != nil {
		return err
	}
	params["id"] = ticket.ID

	_, err = s.db.Insert("ticket_assets", params).WithContext(ctx).Execute()
	if err != nil {
		return fmt.Errorf("insert ticket asset: %w", err)
	}
	return nil
}

func (s *TicketStore) Get(ctx context.Context, id string) (*models.TicketAsset, error) {
	var row ticketRow
	err := s.db.Select("*").
		From("ticket_assets").
		Where(dbx.HashExp{"id": id}).
		WithContext(ctx).
		One(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: ticket asset %s", status.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("select ticket asset: %w", err)
	}
	return rowToTicket(&row)
}

func (s *TicketStore) Update(ctx context.Context, ticket *models.TicketAsset) error {
	params, err := ticketParams(ticket)
	if err != nil {
		return err
	}

	res, err := s.db.Update("ticket_assets", params, dbx.HashExp{"id": ticket.ID}).
		WithContext(ctx).
		Execute()
	if err != nil {
		return fmt.Errorf("update ticket asset: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: ticket asset %s", status.ErrNotFound, ticket.ID)
	}
	return nil
}

// TransitionStatus performs the conditional status move guarding the
// state machine against concurrent requests: the update lands only while
// the current status is one of from.
func (s *TicketStore) TransitionStatus(ctx context.Context, id string, from []models.AssetStatus, to models.AssetStatus) error {
	fromVals := make([]any, len(from))
	for i, st := range from {
		fromVals[i] = string(st)
	}

	res, err := s.db.Update("ticket_assets",
		dbx.Params{"status": string(to)},
		dbx.And(dbx.HashExp{"id": id}, dbx.In("status", fromVals...)),
	).WithContext(ctx).Execute()
	if err != nil {
		return fmt.Errorf("transition ticket status: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish a missing row from a lost race.
		current, gerr := s.Get(ctx, id)
		if gerr != nil {
			return gerr
		}
		return fmt.Errorf("%w: ticket %s is %s, expected one of %v",
			status.ErrInvalidState, id, current.Status, from)
	}
	return nil
}

func (s *TicketStore) ListByEvent(ctx context.Context, eventID string) ([]*models.TicketAsset, error) {
	return s.list(ctx, dbx.HashExp{"event_id": eventID})
}

func (s *TicketStore) ListByPurchaser(ctx context.Context, purchaserID string) ([]*models.TicketAsset, error) {
	return s.list(ctx, dbx.HashExp{"purchaser_id": purchaserID})
}

func (s *TicketStore) list(ctx context.Context, cond dbx.Expression) ([]*models.TicketAsset, error) {
	var rows []ticketRow
	err := s.db.Select("*").
		From("ticket_assets").
		Where(cond).
		OrderBy("purchase_date ASC").
		WithContext(ctx).
		All(&rows)
	if err != nil {
		return nil, fmt.Errorf("select ticket assets: %w", err)
	}

	tickets := make([]*models.TicketAsset, 0, len(rows))
	for i := range rows {
		ticket, err := rowToTicket(&rows[i])
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, nil
}

func (s *TicketStore) CountByStatus(ctx context.Context, eventID string) (map[models.AssetStatus]int, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"cnt"`
	}
	err := s.db.Select("status", "COUNT(*) AS cnt").
		From("ticket_assets").
		Where(dbx.HashExp{"event_id": eventID}).
		GroupBy("status").
		WithContext(ctx).
		All(&rows)
	if err != nil {
		return nil, fmt.Errorf("count ticket assets: %w", err)
	}

	counts := make(map[models.AssetStatus]int, len(rows))
	for _, row := range rows {
		counts[models.AssetStatus(row.Status)] = row.Count
	}
	return counts, nil
}

func ticketParams(ticket *models.TicketAsset) (dbx.Params, error) {
	history, err := json.Marshal(ticket.TransferHistory)
	if err != nil {
		return nil, fmt.Errorf("marshal transfer history: %w", err)
	}

	return dbx.Params{
		"event_id":         ticket.EventID,
		"purchaser_id":     ticket.PurchaserID,
		"purchaser_name":   ticket.PurchaserName,
		"purchaser_email":  ticket.PurchaserEmail,
		"tier":             ticket.Tier,
		"purchaser_wallet": ticket.PurchaserWallet,
		"owner_wallet":     ticket.OwnerWallet,
		"previous_owner":   ticket.PreviousOwner,
		"transfer_history": string(history),
		"platform":         ticket.Platform,
		"contract_address": ticket.ContractAddress,
		"token_id":         ticket.TokenID,
		"token_uri":        ticket.TokenURI,
		"tx_ref":           ticket.TxRef,
		"status":           string(ticket.Status),
		"error_message":    ticket.ErrorMessage,
		"retry_count":      ticket.RetryCount,
		"last_retry_at":    nullTime(ticket.LastRetryAt),
		"price_paid":       ticket.PricePaid.String(),
		"purchase_date":    ticket.PurchaseDate.UTC().Format(time.RFC3339Nano),
		"minted_at":        nullTime(ticket.MintedAt),
		"transferred_at":   nullTime(ticket.TransferredAt),
	}, nil
}

func rowToTicket(row *ticketRow) (*models.TicketAsset, error) {
	price, err := decimal.NewFromString(row.PricePaid)
	if err != nil {
		return nil, fmt.Errorf("parse price_paid %q: %w", row.PricePaid, err)
	}

	history := []models.TransferRecord{}
	if row.TransferHistory != "" {
		if err := json.Unmarshal([]byte(row.TransferHistory), &history); err != nil {
			return nil, fmt.Errorf("unmarshal transfer history: %w", err)
		}
	}

	purchaseDate, err := time.Parse(time.RFC3339Nano, row.PurchaseDate)
	if err != nil {
		return nil, fmt.Errorf("parse purchase_date %q: %w", row.PurchaseDate, err)
	}

	ticket := &models.TicketAsset{
		ID:              row.ID,
		EventID:         row.EventID,
		PurchaserID:     row.PurchaserID,
		PurchaserName:   row.PurchaserName,
		PurchaserEmail:  row.PurchaserEmail,
		Tier:            row.Tier,
		PurchaserWallet: row.PurchaserWallet,
		OwnerWallet:     row.OwnerWallet,
		PreviousOwner:   row.PreviousOwner,
		TransferHistory: history,
		Platform:        row.Platform,
		ContractAddress: row.ContractAddress,
		TokenID:         row.TokenID,
		TokenURI:        row.TokenURI,
		TxRef:           row.TxRef,
		Status:          models.AssetStatus(row.Status),
		ErrorMessage:    row.ErrorMessage,
		RetryCount:      row.RetryCount,
		PricePaid:       price,
		PurchaseDate:    purchaseDate,
	}

	if ticket.LastRetryAt, err = parseNullTime(row.LastRetryAt); err != nil {
		return nil, err
	}
	if ticket.MintedAt, err = parseNullTime(row.MintedAt); err != nil {
		return nil, err
	}
	if ticket.TransferredAt, err = parseNullTime(row.TransferredAt); err != nil {
		return nil, err
	}

	return ticket, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseNullTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v.String)
	if err != nil {
		return nil, fmt.Errorf("parse timestamp %q: %w", v.String, err)
	}
	return &t, nil
}
