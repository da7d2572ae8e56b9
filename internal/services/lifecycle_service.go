package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Lead-Studios/veritix-backend-sub009/internal/services/chain"
	"github.com/Lead-Studios/veritix-backend-sub009/internal/status"
	"github.com/Lead-Studios/veritix-backend-sub009/models"
	"github.com/Lead-Studios/veritix-backend-sub009/monitoring"
	"github.com/Lead-Studios/veritix-backend-sub009/utils"
)

const defaultAdapterTimeout = 30 * time.Second

// LifecycleService owns the ticket-asset state machine. It is the only
// writer of TicketAsset records; every mint, retry, transfer and burn
// funnels through here.
type LifecycleService struct {
	tickets  TicketStore
	events   EventStore
	configs  *ConfigService
	registry *chain.Registry
	metadata *MetadataService
	policy   *TransferPolicyValidator
	locker   TicketLocker
	notifier Notifier

	// adapterTimeout bounds every platform adapter call. A timeout is
	// handled exactly like an adapter-reported failure.
	adapterTimeout time.Duration

	breakersMu sync.Mutex
	breakers   map[chain.Platform]*utils.CircuitBreaker
}

type LifecycleOption func(*LifecycleService)

// WithAdapterTimeout overrides the default bound on adapter calls.
func WithAdapterTimeout(d time.Duration) LifecycleOption {
	return func(s *LifecycleService) {
		if d > 0 {
			s.adapterTimeout = d
		}
	}
}

func NewLifecycleService(
	tickets TicketStore,
	events EventStore,
	configs *ConfigService,
	registry *chain.Registry,
	locker TicketLocker,
	notifier Notifier,
	opts ...LifecycleOption,
) *LifecycleService {
	svc := &LifecycleService{
		tickets:        tickets,
		events:         events,
		configs:        configs,
		registry:       registry,
		metadata:       NewMetadataService(),
		policy:         NewTransferPolicyValidator(),
		locker:         locker,
		notifier:       notifier,
		adapterTimeout: defaultAdapterTimeout,
		breakers:       make(map[chain.Platform]*utils.CircuitBreaker),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// MintRequest is the purchase-side input producing a ticket asset.
type MintRequest struct {
	EventID         string            `json:"event_id"`
	PurchaserID     string            `json:"purchaser_id"`
	PurchaserName   string            `json:"purchaser_name"`
	PurchaserEmail  string            `json:"purchaser_email"`
	PurchaserWallet string            `json:"purchaser_wallet,omitempty"`
	Tier            string            `json:"tier,omitempty"`
	Platform        string            `json:"platform,omitempty"`
	PricePaid       decimal.Decimal   `json:"price_paid"`
	CustomMetadata  map[string]string `json:"custom_metadata,omitempty"`

	// AutoMint overrides the config flag when set.
	AutoMint *bool `json:"auto_mint,omitempty"`
}

// MintTicket creates the ticket-asset record in pending and, when
// auto-mint applies, synchronously drives it through minting. On a
// platform failure the persisted (now failed, retryable) record is
// returned together with the error.
func (s *LifecycleService) MintTicket(ctx context.Context, req *MintRequest) (*models.TicketAsset, error) {
	event, err := s.events.Get(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	cfg, err := s.configs.GetOrCreateDefault(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	if !cfg.NFTEnabled {
		return nil, fmt.Errorf("%w: NFT minting is not enabled for event %s", status.ErrPolicyViolation, req.EventID)
	}

	platform := chain.Platform(req.Platform)
	if req.Platform == "" {
		platform = chain.Platform(cfg.PreferredPlatform)
	}
	if !platform.Valid() {
		return nil, fmt.Errorf("%w: unsupported platform %q", status.ErrPolicyViolation, platform)
	}

	if req.PurchaserWallet != "" && !utils.ValidWalletAddress(req.PurchaserWallet) {
		return nil, fmt.Errorf("%w: invalid purchaser wallet address %q", status.ErrPolicyViolation, req.PurchaserWallet)
	}

	now := time.Now().UTC()
	ticket := &models.TicketAsset{
		ID:              uuid.New().String(),
		EventID:         req.EventID,
		PurchaserID:     req.PurchaserID,
		PurchaserName:   req.PurchaserName,
		PurchaserEmail:  req.PurchaserEmail,
		PurchaserWallet: req.PurchaserWallet,
		Tier:            req.Tier,
		Platform:        string(platform),
		Status:          models.AssetStatusPending,
		TransferHistory: []models.TransferRecord{},
		PricePaid:       req.PricePaid,
		PurchaseDate:    now,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("create ticket asset: %w", err)
	}

	autoMint := cfg.AutoMint
	if req.AutoMint != nil {
		autoMint = *req.AutoMint
	}
	if !autoMint {
		return ticket, nil
	}

	if err := s.processMint(ctx, ticket, event, cfg, req.CustomMetadata); err != nil {
		return ticket, err
	}
	return ticket, nil
}

// canRetryMint reports whether a ticket in this status may re-enter the
// minting pipeline. Minting is accepted as the crash-recovery edge: an
// attempt interrupted between the adapter call and the final update
// strands the record there, while a live attempt still holds the
// per-ticket lock and is rejected at acquisition.
func canRetryMint(st models.AssetStatus) bool {
	return st == models.AssetStatusFailed || st == models.AssetStatusMinting
}

// RetryMinting re-enters the minting pipeline for a failed or stranded
// ticket. When the previous attempt left a transaction reference, its
// status is reconciled first so an attempt that actually confirmed on
// chain is finalized instead of minted twice.
func (s *LifecycleService) RetryMinting(ctx context.Context, ticketID string) (*models.TicketAsset, error) {
	ticket, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	if !canRetryMint(ticket.Status) {
		return nil, fmt.Errorf("%w: tickets in status %s cannot be retried",
			status.ErrInvalidState, ticket.Status)
	}

	event, err := s.events.Get(ctx, ticket.EventID)
	if err != nil {
		return nil, err
	}

	cfg, err := s.configs.GetOrCreateDefault(ctx, ticket.EventID)
	if err != nil {
		return nil, err
	}
	if !cfg.NFTEnabled {
		return nil, fmt.Errorf("%w: NFT minting is not enabled for event %s", status.ErrPolicyViolation, ticket.EventID)
	}

	// maxRetries is advisory; the caller or an external scheduler enforces
	// it. We only flag the overshoot.
	if cfg.MaxRetries > 0 && ticket.RetryCount >= cfg.MaxRetries {
		slog.Warn("retrying past the configured retry limit",
			"ticket_id", ticket.ID, "retry_count", ticket.RetryCount, "max_retries", cfg.MaxRetries)
	}

	release, err := s.locker.Acquire(ctx, ticket.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", status.ErrInvalidState, err)
	}
	defer release()

	// Re-read under the lock; the first read raced other operations.
	ticket, err = s.tickets.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !canRetryMint(ticket.Status) {
		return nil, fmt.Errorf("%w: tickets in status %s cannot be retried",
			status.ErrInvalidState, ticket.Status)
	}

	now := time.Now().UTC()
	ticket.LastRetryAt = &now
	monitoring.TrackMintRetry(ticket.EventID)

	// Reconcile a possibly-successful previous attempt before minting
	// again (adapter calls are at-least-once). While the recorded
	// transaction cannot be resolved, minting blind could duplicate the
	// asset, so the retry fails instead.
	if ticket.TxRef != "" {
		done, rerr := s.reconcileMint(ctx, ticket, cfg)
		if rerr != nil {
			return ticket, fmt.Errorf("%w: reconcile mint tx %s: %v", status.ErrPlatformFailure, ticket.TxRef, rerr)
		}
		if done {
			return ticket, nil
		}
	}

	if err := s.mintLocked(ctx, ticket, event, cfg, nil); err != nil {
		return ticket, err
	}
	return ticket, nil
}

// reconcileMint finalizes a ticket whose recorded mint transaction
// confirmed on chain. The token identity comes from the ticket when the
// earlier attempt recorded it, otherwise from the gateway's status
// reply. Returns true when the ticket was finalized.
func (s *LifecycleService) reconcileMint(ctx context.Context, ticket *models.TicketAsset, cfg *models.MintingConfig) (bool, error) {
	adapter, err := s.registry.Get(chain.Platform(ticket.Platform))
	if err != nil {
		return false, err
	}

	res, err := s.guarded(ctx, chain.Platform(ticket.Platform), "status", func(cctx context.Context) (any, error) {
		return adapter.GetTransactionStatus(cctx, ticket.TxRef)
	})
	if err != nil {
		return false, err
	}

	txStatus := res.(*chain.TxStatus)
	if !txStatus.Confirmed {
		return false, nil
	}

	tokenID := ticket.TokenID
	if tokenID == "" {
		tokenID = txStatus.TokenID
	}
	if tokenID == "" {
		return false, fmt.Errorf("transaction %s confirmed but the token identity is unknown", ticket.TxRef)
	}

	contract := ticket.ContractAddress
	if contract == "" {
		contract = txStatus.ContractAddress
	}
	uri := ticket.TokenURI
	if uri == "" {
		uri = txStatus.TokenURI
	}

	// The original attempt resolved the recipient the same way.
	recipient := ticket.OwnerWallet
	if recipient == "" {
		recipient = ticket.PurchaserWallet
	}
	if recipient == "" {
		recipient = cfg.OrganizerWallet
	}

	slog.Info("mint transaction confirmed on chain, finalizing without re-mint",
		"ticket_id", ticket.ID, "tx_ref", ticket.TxRef)
	return true, s.finalizeMint(ctx, ticket, &chain.MintResult{
		TokenID:         tokenID,
		ContractAddress: contract,
		TokenURI:        uri,
		TxRef:           ticket.TxRef,
	}, recipient)
}

// processMint drives pending/failed -> minting -> {minted|failed}. The
// per-ticket lock plus the conditional status transition prevent two
// concurrent requests from both reaching minting.
func (s *LifecycleService) processMint(ctx context.Context, ticket *models.TicketAsset, event *models.Event, cfg *models.MintingConfig, custom map[string]string) error {
	release, err := s.locker.Acquire(ctx, ticket.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", status.ErrInvalidState, err)
	}
	defer release()

	return s.mintLocked(ctx, ticket, event, cfg, custom)
}

// mintLocked runs one mint attempt. The caller holds the per-ticket
// lock; the conditional transition rejects a record another request
// already moved. Minting appears in the from-set only for crash
// recovery, since a live attempt still holds the lock.
func (s *LifecycleService) mintLocked(ctx context.Context, ticket *models.TicketAsset, event *models.Event, cfg *models.MintingConfig, custom map[string]string) error {
	if err := s.tickets.TransitionStatus(ctx, ticket.ID,
		[]models.AssetStatus{models.AssetStatusPending, models.AssetStatusFailed, models.AssetStatusMinting},
		models.AssetStatusMinting,
	); err != nil {
		return err
	}
	ticket.Status = models.AssetStatusMinting

	platform := chain.Platform(ticket.Platform)

	// Metadata is rebuilt on every attempt; never cached across retries.
	meta := s.metadata.Generate(event, ticket, cfg, custom)
	if problems := s.metadata.Validate(meta); len(problems) > 0 {
		msg := "invalid metadata: " + strings.Join(problems, "; ")
		s.markMintFailed(ctx, ticket, msg)
		return fmt.Errorf("%w: %s", status.ErrMetadataInvalid, strings.Join(problems, "; "))
	}

	recipient := ticket.PurchaserWallet
	if recipient == "" {
		recipient = cfg.OrganizerWallet
	}
	if recipient == "" {
		msg := "no recipient wallet: purchaser has no wallet and the event has no organizer custodial wallet"
		s.markMintFailed(ctx, ticket, msg)
		return fmt.Errorf("%w: %s", status.ErrPolicyViolation, msg)
	}

	adapter, err := s.registry.Get(platform)
	if err != nil {
		s.markMintFailed(ctx, ticket, err.Error())
		return fmt.Errorf("%w: %v", status.ErrPlatformFailure, err)
	}

	res, err := s.guarded(ctx, platform, "mint", func(cctx context.Context) (any, error) {
		return adapter.Mint(cctx, cfg.ContractAddress, recipient, meta)
	})
	if err != nil {
		// A gateway that accepted the transaction before failing hands
		// back its reference; keep it so a retry reconciles instead of
		// minting twice.
		var pending *chain.PendingMintError
		if errors.As(err, &pending) && pending.TxRef != "" {
			ticket.TxRef = pending.TxRef
		}
		s.markMintFailed(ctx, ticket, err.Error())
		monitoring.TrackLifecycleOperation("mint", string(platform), "failure")
		s.notifier.Publish(ctx, ticket.PurchaserID, map[string]any{
			"type":      "mint_failed",
			"ticket_id": ticket.ID,
			"event_id":  ticket.EventID,
			"error":     err.Error(),
		})
		return fmt.Errorf("%w: mint via %s: %v", status.ErrPlatformFailure, platform, err)
	}

	mint := res.(*chain.MintResult)
	if err := s.finalizeMint(ctx, ticket, mint, recipient); err != nil {
		return err
	}

	monitoring.TrackLifecycleOperation("mint", string(platform), "success")
	s.notifier.Publish(ctx, ticket.PurchaserID, map[string]any{
		"type":      "minted",
		"ticket_id": ticket.ID,
		"event_id":  ticket.EventID,
		"token_id":  mint.TokenID,
		"tx_ref":    mint.TxRef,
	})
	return nil
}

// finalizeMint records the token identity and flips the ticket to minted.
func (s *LifecycleService) finalizeMint(ctx context.Context, ticket *models.TicketAsset, mint *chain.MintResult, recipient string) error {
	now := time.Now().UTC()

	ticket.TokenID = mint.TokenID
	ticket.ContractAddress = mint.ContractAddress
	ticket.TokenURI = mint.TokenURI
	ticket.TxRef = mint.TxRef
	ticket.OwnerWallet = recipient
	ticket.MintedAt = &now
	ticket.Status = models.AssetStatusMinted
	ticket.ErrorMessage = ""

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return fmt.Errorf("persist minted ticket: %w", err)
	}
	return nil
}

// markMintFailed flips the ticket to failed and bumps the retry counter.
// retryCount increments only here, never on transfer or burn errors.
func (s *LifecycleService) markMintFailed(ctx context.Context, ticket *models.TicketAsset, msg string) {
	ticket.Status = models.AssetStatusFailed
	ticket.ErrorMessage = msg
	ticket.RetryCount++

	if err := s.tickets.Update(ctx, ticket); err != nil {
		slog.Error("persist failed ticket", "ticket_id", ticket.ID, "error", err)
	}
}

// TransferTicket moves ownership of a minted asset. A request carrying a
// resale price is a secondary-market transfer and passes through the
// resale-policy validator; a request without one is the organizer/admin
// path, which skips the price and deadline checks but still requires
// transfers to be allowed. The authoritative "from" address is always the
// owner recorded on the ticket, never caller input.
func (s *LifecycleService) TransferTicket(ctx context.Context, ticketID, toAddress string, resalePrice *decimal.Decimal) (string, error) {
	ticket, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return "", err
	}

	if !ticket.Transferable() {
		return "", fmt.Errorf("%w: ticket in status %s cannot be transferred", status.ErrInvalidState, ticket.Status)
	}

	event, err := s.events.Get(ctx, ticket.EventID)
	if err != nil {
		return "", err
	}

	cfg, err := s.configs.GetOrCreateDefault(ctx, ticket.EventID)
	if err != nil {
		return "", err
	}
	if !cfg.AllowTransfer {
		return "", fmt.Errorf("%w: transfers are disabled for this event", status.ErrPolicyViolation)
	}

	if !utils.ValidWalletAddress(toAddress) {
		return "", fmt.Errorf("%w: invalid recipient wallet address %q", status.ErrPolicyViolation, toAddress)
	}

	if resalePrice != nil {
		if err := s.policy.Validate(event.ResalePolicy, resalePrice, time.Now().UTC()); err != nil {
			return "", err
		}
	}

	from := ticket.OwnerWallet
	if from == "" {
		return "", fmt.Errorf("%w: ticket has no owner wallet on record", status.ErrInvalidState)
	}

	release, err := s.locker.Acquire(ctx, ticket.ID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", status.ErrInvalidState, err)
	}
	defer release()

	// Re-read under the lock; a concurrent transfer may have landed.
	ticket, err = s.tickets.Get(ctx, ticketID)
	if err != nil {
		return "", err
	}
	if !ticket.Transferable() {
		return "", fmt.Errorf("%w: ticket in status %s cannot be transferred", status.ErrInvalidState, ticket.Status)
	}
	from = ticket.OwnerWallet

	platform := chain.Platform(ticket.Platform)
	adapter, err := s.registry.Get(platform)
	if err != nil {
		return "", fmt.Errorf("%w: %v", status.ErrPlatformFailure, err)
	}

	res, err := s.guarded(ctx, platform, "transfer", func(cctx context.Context) (any, error) {
		return adapter.Transfer(cctx, ticket.ContractAddress, from, toAddress, ticket.TokenID)
	})
	if err != nil {
		// The asset stays in its current status and may simply be
		// re-transferred; failed + retryCount belong to the mint pipeline.
		ticket.ErrorMessage = err.Error()
		if uerr := s.tickets.Update(ctx, ticket); uerr != nil {
			slog.Error("record transfer error", "ticket_id", ticket.ID, "error", uerr)
		}
		monitoring.TrackLifecycleOperation("transfer", string(platform), "failure")
		return "", fmt.Errorf("%w: transfer via %s: %v", status.ErrPlatformFailure, platform, err)
	}

	transfer := res.(*chain.TransferResult)
	now := time.Now().UTC()

	ticket.TransferHistory = append(ticket.TransferHistory, models.TransferRecord{
		From:      from,
		To:        toAddress,
		TxRef:     transfer.TxRef,
		Timestamp: now,
	})
	ticket.PreviousOwner = from
	ticket.OwnerWallet = toAddress
	ticket.TransferredAt = &now
	ticket.Status = models.AssetStatusTransferred
	ticket.ErrorMessage = ""

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return "", fmt.Errorf("persist transferred ticket: %w", err)
	}

	monitoring.TrackLifecycleOperation("transfer", string(platform), "success")
	s.notifier.Publish(ctx, ticket.PurchaserID, map[string]any{
		"type":      "transferred",
		"ticket_id": ticket.ID,
		"to":        toAddress,
		"tx_ref":    transfer.TxRef,
	})
	return transfer.TxRef, nil
}

// BurnTicket permanently retires a minted asset. Requires the event's
// config to allow burning and the caller-supplied owner address to match
// the owner of record. The token identity is retained for audit.
func (s *LifecycleService) BurnTicket(ctx context.Context, ticketID, ownerAddress string) (string, error) {
	ticket, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return "", err
	}

	cfg, err := s.configs.GetOrCreateDefault(ctx, ticket.EventID)
	if err != nil {
		return "", err
	}
	if !cfg.BurnAfterEvent {
		return "", fmt.Errorf("%w: burning is not enabled for this event", status.ErrPolicyViolation)
	}

	if !ticket.Transferable() {
		return "", fmt.Errorf("%w: ticket in status %s cannot be burned", status.ErrInvalidState, ticket.Status)
	}

	if !strings.EqualFold(ownerAddress, ticket.OwnerWallet) {
		return "", fmt.Errorf("%w: owner address does not match the ticket's owner of record", status.ErrPolicyViolation)
	}

	release, err := s.locker.Acquire(ctx, ticket.ID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", status.ErrInvalidState, err)
	}
	defer release()

	// Re-read under the lock; a concurrent transfer may have landed.
	ticket, err = s.tickets.Get(ctx, ticketID)
	if err != nil {
		return "", err
	}
	if !ticket.Transferable() {
		return "", fmt.Errorf("%w: ticket in status %s cannot be burned", status.ErrInvalidState, ticket.Status)
	}
	if !strings.EqualFold(ownerAddress, ticket.OwnerWallet) {
		return "", fmt.Errorf("%w: owner address does not match the ticket's owner of record", status.ErrPolicyViolation)
	}

	platform := chain.Platform(ticket.Platform)
	adapter, err := s.registry.Get(platform)
	if err != nil {
		return "", fmt.Errorf("%w: %v", status.ErrPlatformFailure, err)
	}

	res, err := s.guarded(ctx, platform, "burn", func(cctx context.Context) (any, error) {
		return adapter.Burn(cctx, ticket.ContractAddress, ticket.TokenID, ticket.OwnerWallet)
	})
	if err != nil {
		ticket.ErrorMessage = err.Error()
		if uerr := s.tickets.Update(ctx, ticket); uerr != nil {
			slog.Error("record burn error", "ticket_id", ticket.ID, "error", uerr)
		}
		monitoring.TrackLifecycleOperation("burn", string(platform), "failure")
		return "", fmt.Errorf("%w: burn via %s: %v", status.ErrPlatformFailure, platform, err)
	}

	burn := res.(*chain.BurnResult)

	ticket.Status = models.AssetStatusBurned
	ticket.ErrorMessage = ""
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return "", fmt.Errorf("persist burned ticket: %w", err)
	}

	monitoring.TrackLifecycleOperation("burn", string(platform), "success")
	s.notifier.Publish(ctx, ticket.PurchaserID, map[string]any{
		"type":      "burned",
		"ticket_id": ticket.ID,
		"tx_ref":    burn.TxRef,
	})
	return burn.TxRef, nil
}

// GetTicketAsset returns one ticket asset.
func (s *LifecycleService) GetTicketAsset(ctx context.Context, id string) (*models.TicketAsset, error) {
	return s.tickets.Get(ctx, id)
}

// ListByEvent returns all ticket assets of an event.
func (s *LifecycleService) ListByEvent(ctx context.Context, eventID string) ([]*models.TicketAsset, error) {
	return s.tickets.ListByEvent(ctx, eventID)
}

// ListByPurchaser returns all ticket assets held by a purchaser.
func (s *LifecycleService) ListByPurchaser(ctx context.Context, purchaserID string) ([]*models.TicketAsset, error) {
	return s.tickets.ListByPurchaser(ctx, purchaserID)
}

// GetMintingStats returns the per-event status breakdown.
func (s *LifecycleService) GetMintingStats(ctx context.Context, eventID string) (*models.MintingStats, error) {
	if _, err := s.events.Get(ctx, eventID); err != nil {
		return nil, err
	}

	counts, err := s.tickets.CountByStatus(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count ticket assets: %w", err)
	}

	stats := &models.MintingStats{
		Pending:     counts[models.AssetStatusPending],
		Minting:     counts[models.AssetStatusMinting],
		Minted:      counts[models.AssetStatusMinted],
		Failed:      counts[models.AssetStatusFailed],
		Transferred: counts[models.AssetStatusTransferred],
		Burned:      counts[models.AssetStatusBurned],
	}
	stats.Total = stats.Pending + stats.Minting + stats.Minted + stats.Failed + stats.Transferred + stats.Burned

	monitoring.SetMintedAssets(eventID, stats.Minted)
	return stats, nil
}

// EstimateMintFee asks the event's platform for the current mint cost.
func (s *LifecycleService) EstimateMintFee(ctx context.Context, eventID string) (*chain.FeeEstimate, error) {
	cfg, err := s.configs.GetOrCreateDefault(ctx, eventID)
	if err != nil {
		return nil, err
	}

	platform := chain.Platform(cfg.PreferredPlatform)
	adapter, err := s.registry.Get(platform)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", status.ErrPlatformFailure, err)
	}

	res, err := s.guarded(ctx, platform, "estimate_fee", func(cctx context.Context) (any, error) {
		return adapter.EstimateFee(cctx, cfg.ContractAddress, cfg.OrganizerWallet)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: estimate fee via %s: %v", status.ErrPlatformFailure, platform, err)
	}

	return res.(*chain.FeeEstimate), nil
}

// guarded runs one adapter call under the platform's circuit breaker,
// bounded by the adapter timeout, and records its duration.
func (s *LifecycleService) guarded(ctx context.Context, platform chain.Platform, operation string, call func(context.Context) (any, error)) (any, error) {
	cctx, cancel := context.WithTimeout(ctx, s.adapterTimeout)
	defer cancel()

	start := time.Now()
	res, err := s.breaker(platform).Execute(cctx, func() (any, error) {
		return call(cctx)
	})
	monitoring.ObserveAdapterCall(string(platform), operation, time.Since(start))

	return res, err
}

func (s *LifecycleService) breaker(platform chain.Platform) *utils.CircuitBreaker {
	s.breakersMu.Lock()
	defer s.breakersMu.Unlock()

	cb, ok := s.breakers[platform]
	if !ok {
		cb = utils.NewCircuitBreaker(string(platform))
		s.breakers[platform] = cb
	}
	return cb
}
