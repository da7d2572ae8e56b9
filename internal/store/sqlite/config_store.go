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

type ConfigStore struct {
	db dbx.Builder
}

func NewConfigStore(db dbx.Builder) *ConfigStore {
	return &ConfigStore{db: db}
}

type configRow struct {
	EventID           string         `db:"event_id"`
	NFTEnabled        bool           `db:"nft_enabled"`
	PreferredPlatform string         `db:"preferred_platform"`
	AllowTransfer     bool           `db:"allow_transfer"`
	BurnAfterEvent    bool           `db:"burn_after_event"`
	AutoMint          bool           `db:"auto_mint"`
	ContractAddress   string         `db:"contract_address"`
	ContractName      string         `db:"contract_name"`
	ContractSymbol    string         `db:"contract_symbol"`
	BaseTokenURI      string         `db:"base_token_uri"`
	RoyaltyPercentage sql.NullString `db:"royalty_percentage"`
	RoyaltyRecipient  string         `db:"royalty_recipient"`
	OrganizerWallet   string         `db:"organizer_wallet"`
	MaxRetries        int            `db:"max_retries"`
	RetryDelaySeconds int            `db:"retry_delay_seconds"`
	CreatedAt         string         `db:"created_at"`
	UpdatedAt         string         `db:"updated_at"`
}

func (s *ConfigStore) GetByEvent(ctx context.Context, eventID string) (*models.MintingConfig, error) {
	var row configRow
	err := s.db.Select("*").
		From("minting_configs").
		Where(dbx.HashExp{"event_id": eventID}).
		WithContext(ctx).
		One(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: minting config for event %s", status.ErrNotFound, eventID)
	}
	if err != nil {
		return nil, fmt.Errorf("select minting config: %w", err)
	}
	return rowToConfig(&row)
}

func (s *ConfigStore) Create(ctx context.Context, cfg *models.MintingConfig) error {
	params := configParams(cfg)
	params["event_id"] = cfg.EventID

	_, err := s.db.Insert("minting_configs", params).WithContext(ctx).Execute()
	if err != nil {
		return fmt.Errorf("insert minting config: %w", err)
	}
	return nil
}

func (s *ConfigStore) Update(ctx context.Context, cfg *models.MintingConfig) error {
	res, err := s.db.Update("minting_configs", configParams(cfg), dbx.HashExp{"event_id": cfg.EventID}).
		WithContext(ctx).
		Execute()
	if err != nil {
		return fmt.Errorf("update minting config: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: minting config for event %s", status.ErrNotFound, cfg.EventID)
	}
	return nil
}

func configParams(cfg *models.MintingConfig) dbx.Params {
	var royalty any
	if cfg.RoyaltyPercentage != nil {
		royalty = cfg.RoyaltyPercentage.String()
	}

	return dbx.Params{
		"nft_enabled":         cfg.NFTEnabled,
		"preferred_platform":  cfg.PreferredPlatform,
		"allow_transfer":      cfg.AllowTransfer,
		"burn_after_event":    cfg.BurnAfterEvent,
		"auto_mint":           cfg.AutoMint,
		"contract_address":    cfg.ContractAddress,
		"contract_name":       cfg.ContractName,
		"contract_symbol":     cfg.ContractSymbol,
		"base_token_uri":      cfg.BaseTokenURI,
		"royalty_percentage":  royalty,
		"royalty_recipient":   cfg.RoyaltyRecipient,
		"organizer_wallet":    cfg.OrganizerWallet,
		"max_retries":         cfg.MaxRetries,
		"retry_delay_seconds": int(cfg.RetryDelay / time.Second),
		"created_at":          cfg.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at":          cfg.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func rowToConfig(row *configRow) (*models.MintingConfig, error) {
	cfg := &models.MintingConfig{
		EventID:           row.EventID,
		NFTEnabled:        row.NFTEnabled,
		PreferredPlatform: row.PreferredPlatform,
		AllowTransfer:     row.AllowTransfer,
		BurnAfterEvent:    row.BurnAfterEvent,
		AutoMint:          row.AutoMint,
		ContractAddress:   row.ContractAddress,
		ContractName:      row.ContractName,
		ContractSymbol:    row.ContractSymbol,
		BaseTokenURI:      row.BaseTokenURI,
		RoyaltyRecipient:  row.RoyaltyRecipient,
		OrganizerWallet:   row.OrganizerWallet,
		MaxRetries:        row.MaxRetries,
		RetryDelay:        time.Duration(row.RetryDelaySeconds) * time.Second,
	}

	if row.RoyaltyPercentage.Valid && row.RoyaltyPercentage.String != "" {
		pct, err := decimal.NewFromString(row.RoyaltyPercentage.String)
		if err != nil {
			return nil, fmt.Errorf("parse royalty_percentage %q: %w", row.RoyaltyPercentage.String, err)
		}
		cfg.RoyaltyPercentage = &pct
	}

	var err error
	if cfg.CreatedAt, err = time.Parse(time.RFC3339Nano, row.CreatedAt); err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", row.CreatedAt, err)
	}
	if cfg.UpdatedAt, err = time.Parse(time.RFC3339Nano, row.UpdatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at %q: %w", row.UpdatedAt, err)
	}

	return cfg, nil
}
