package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Lead-Studios/veritix-backend-sub009/internal/services/chain"
	"github.com/Lead-Studios/veritix-backend-sub009/internal/status"
	"github.com/Lead-Studios/veritix-backend-sub009/models"
	"github.com/Lead-Studios/veritix-backend-sub009/utils"
)

var hundred = decimal.NewFromInt(100)

// ConfigService owns MintingConfig records: lazy defaulting and partial
// updates. Nothing else writes minting configs.
type ConfigService struct {
	store  MintingConfigStore
	events EventStore
}

func NewConfigService(store MintingConfigStore, events EventStore) *ConfigService {
	return &ConfigService{
		store:  store,
		events: events,
	}
}

// GetOrCreateDefault returns the event's minting config, creating the
// safe default record (NFTs disabled) when none exists. Calling it twice
// with no intervening update returns identical configs.
func (s *ConfigService) GetOrCreateDefault(ctx context.Context, eventID string) (*models.MintingConfig, error) {
	cfg, err := s.store.GetByEvent(ctx, eventID)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, status.ErrNotFound) {
		return nil, fmt.Errorf("get minting config: %w", err)
	}

	// Defaults materialize only for events that exist; an arbitrary id
	// must not create rows.
	if _, err := s.events.Get(ctx, eventID); err != nil {
		return nil, err
	}

	cfg = models.DefaultMintingConfig(eventID, string(chain.PlatformPolygon))
	now := time.Now().UTC()
	cfg.CreatedAt = now
	cfg.UpdatedAt = now

	if err := s.store.Create(ctx, cfg); err != nil {
		// A concurrent request may have created it first; re-read.
		if existing, gerr := s.store.GetByEvent(ctx, eventID); gerr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("create default minting config: %w", err)
	}

	return cfg, nil
}

// Upsert merges the patch into the event's config, creating the default
// first when absent. The event must exist.
func (s *ConfigService) Upsert(ctx context.Context, eventID string, patch *models.MintingConfigPatch) (*models.MintingConfig, error) {
	if _, err := s.events.Get(ctx, eventID); err != nil {
		return nil, err
	}

	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	cfg, err := s.GetOrCreateDefault(ctx, eventID)
	if err != nil {
		return nil, err
	}

	cfg.Apply(patch)
	cfg.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, cfg); err != nil {
		return nil, fmt.Errorf("update minting config: %w", err)
	}

	return cfg, nil
}

func validatePatch(patch *models.MintingConfigPatch) error {
	if patch == nil {
		return nil
	}
	if patch.PreferredPlatform != nil && !chain.Platform(*patch.PreferredPlatform).Valid() {
		return fmt.Errorf("%w: unsupported platform %q", status.ErrPolicyViolation, *patch.PreferredPlatform)
	}
	if patch.ContractAddress != nil && *patch.ContractAddress != "" && !utils.IsHexAddress(*patch.ContractAddress) {
		return fmt.Errorf("%w: invalid contract address %q", status.ErrPolicyViolation, *patch.ContractAddress)
	}
	if patch.OrganizerWallet != nil && *patch.OrganizerWallet != "" && !utils.ValidWalletAddress(*patch.OrganizerWallet) {
		return fmt.Errorf("%w: invalid organizer wallet address %q", status.ErrPolicyViolation, *patch.OrganizerWallet)
	}
	if patch.RoyaltyRecipient != nil && *patch.RoyaltyRecipient != "" && !utils.ValidWalletAddress(*patch.RoyaltyRecipient) {
		return fmt.Errorf("%w: invalid royalty recipient address %q", status.ErrPolicyViolation, *patch.RoyaltyRecipient)
	}
	if patch.RoyaltyPercentage != nil {
		pct := *patch.RoyaltyPercentage
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return fmt.Errorf("%w: royalty percentage must be between 0 and 100", status.ErrPolicyViolation)
		}
	}
	if patch.MaxRetries != nil && *patch.MaxRetries < 0 {
		return fmt.Errorf("%w: max retries must not be negative", status.ErrPolicyViolation)
	}
	if patch.RetryDelaySeconds != nil && *patch.RetryDelaySeconds < 0 {
		return fmt.Errorf("%w: retry delay must not be negative", status.ErrPolicyViolation)
	}
	return nil
}
