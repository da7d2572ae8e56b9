package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lead-Studios/veritix-backend-sub009/internal/services/chain"
	"github.com/Lead-Studios/veritix-backend-sub009/internal/status"
	"github.com/Lead-Studios/veritix-backend-sub009/internal/store/memory"
	"github.com/Lead-Studios/veritix-backend-sub009/models"
	"github.com/Lead-Studios/veritix-backend-sub009/utils"
)

const (
	testWallet      = "0xababababababababababababababababababab12"
	testOtherWallet = "0xcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcd34"
	testContract    = "0x1212121212121212121212121212121212121212"
)

// stubAdapter is a scriptable in-memory platform adapter.
type stubAdapter struct {
	mu sync.Mutex

	platform chain.Platform

	mintErr     error
	transferErr error
	burnErr     error
	statusErr   error
	confirmed   bool

	// Token identity reported by the status endpoint for a confirmed mint.
	statusTokenID  string
	statusContract string
	statusURI      string

	mintCalls     int
	transferCalls int
	burnCalls     int
	statusCalls   int
}

func (a *stubAdapter) GetPlatform() chain.Platform { return a.platform }

func (a *stubAdapter) Mint(_ context.Context, contractAddress, _ string, _ *models.AssetMetadata) (*chain.MintResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mintCalls++
	if a.mintErr != nil {
		return nil, a.mintErr
	}
	return &chain.MintResult{
		TokenID:         "42",
		ContractAddress: contractAddress,
		TokenURI:        "https://assets.veritix.io/tokens/42",
		TxRef:           "0xmint",
	}, nil
}

func (a *stubAdapter) Transfer(_ context.Context, _, _, _, _ string) (*chain.TransferResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.transferCalls++
	if a.transferErr != nil {
		return nil, a.transferErr
	}
	return &chain.TransferResult{TxRef: "0xtransfer"}, nil
}

func (a *stubAdapter) Burn(_ context.Context, _, _, _ string) (*chain.BurnResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.burnCalls++
	if a.burnErr != nil {
		return nil, a.burnErr
	}
	return &chain.BurnResult{TxRef: "0xburn"}, nil
}

func (a *stubAdapter) GetTransactionStatus(_ context.Context, _ string) (*chain.TxStatus, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.statusCalls++
	if a.statusErr != nil {
		return nil, a.statusErr
	}
	return &chain.TxStatus{
		Confirmed:       a.confirmed,
		BlockRef:        "0xblock",
		TokenID:         a.statusTokenID,
		ContractAddress: a.statusContract,
		TokenURI:        a.statusURI,
	}, nil
}

func (a *stubAdapter) EstimateFee(_ context.Context, _, _ string) (*chain.FeeEstimate, error) {
	return &chain.FeeEstimate{
		Platform: a.platform,
		Fee:      decimal.RequireFromString("0.002"),
		Currency: "MATIC",
	}, nil
}

func (a *stubAdapter) Close(context.Context) error { return nil }

type lifecycleFixture struct {
	service *LifecycleService
	tickets *memory.TicketStore
	configs *memory.ConfigStore
	events  *memory.EventStore
	adapter *stubAdapter
}

// gatedLocker runs a one-shot hook just before delegating an Acquire,
// letting a test interleave another operation at the lock boundary.
type gatedLocker struct {
	inner TicketLocker

	mu   sync.Mutex
	gate func(ticketID string)
}

func (l *gatedLocker) setGate(fn func(ticketID string)) {
	l.mu.Lock()
	l.gate = fn
	l.mu.Unlock()
}

func (l *gatedLocker) Acquire(ctx context.Context, ticketID string) (func(), error) {
	l.mu.Lock()
	gate := l.gate
	l.gate = nil
	l.mu.Unlock()

	if gate != nil {
		gate(ticketID)
	}
	return l.inner.Acquire(ctx, ticketID)
}

func setupLifecycle(t *testing.T, mutate func(*models.Event, *models.MintingConfig)) *lifecycleFixture {
	t.Helper()
	return setupLifecycleWithLocker(t, mutate, utils.NewMemoryTicketLock())
}

func setupLifecycleWithLocker(t *testing.T, mutate func(*models.Event, *models.MintingConfig), locker TicketLocker) *lifecycleFixture {
	t.Helper()

	maxResale := decimal.NewFromInt(100)
	event := &models.Event{
		ID:        "evt-1",
		Name:      "Summer Jam",
		Venue:     "Riverside Arena",
		StartTime: time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 9, 12, 23, 0, 0, 0, time.UTC),
		Status:    "upcoming",
		ResalePolicy: models.ResalePolicy{
			MaxResalePrice: &maxResale,
		},
	}

	cfg := models.DefaultMintingConfig(event.ID, string(chain.PlatformPolygon))
	cfg.NFTEnabled = true
	cfg.AutoMint = true
	cfg.ContractAddress = testContract
	now := time.Now().UTC()
	cfg.CreatedAt = now
	cfg.UpdatedAt = now

	if mutate != nil {
		mutate(event, cfg)
	}

	events := memory.NewEventStore()
	events.Put(event)

	configs := memory.NewConfigStore()
	require.NoError(t, configs.Create(context.Background(), cfg))

	adapter := &stubAdapter{platform: chain.PlatformPolygon}
	registry := chain.NewRegistry(chain.NewFactory())
	registry.RegisterAdapter(adapter)

	tickets := memory.NewTicketStore()
	service := NewLifecycleService(
		tickets,
		events,
		NewConfigService(configs, events),
		registry,
		locker,
		NoopNotifier{},
	)

	return &lifecycleFixture{
		service: service,
		tickets: tickets,
		configs: configs,
		events:  events,
		adapter: adapter,
	}
}

func mintRequest() *MintRequest {
	return &MintRequest{
		EventID:         "evt-1",
		PurchaserID:     "user-1",
		PurchaserName:   "Ada Lovelace",
		PurchaserEmail:  "ada@example.com",
		PurchaserWallet: testWallet,
		Tier:            "VIP",
		PricePaid:       decimal.NewFromInt(50),
	}
}

func TestMintTicket_Success(t *testing.T) {
	f := setupLifecycle(t, nil)

	ticket, err := f.service.MintTicket(context.Background(), mintRequest())
	require.NoError(t, err)
	require.NotNil(t, ticket)

	assert.Equal(t, models.AssetStatusMinted, ticket.Status)
	assert.Equal(t, "42", ticket.TokenID)
	assert.Equal(t, testContract, ticket.ContractAddress)
	assert.Equal(t, "0xmint", ticket.TxRef)
	assert.Equal(t, testWallet, ticket.OwnerWallet)
	assert.NotNil(t, ticket.MintedAt)
	assert.Empty(t, ticket.ErrorMessage)
	assert.Equal(t, 0, ticket.RetryCount)
	assert.Equal(t, 1, f.adapter.mintCalls)

	// The persisted record matches what was returned.
	stored, err := f.tickets.Get(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssetStatusMinted, stored.Status)
}

func TestMintTicket_NFTDisabledCreatesNoRecord(t *testing.T) {
	f := setupLifecycle(t, func(_ *models.Event, cfg *models.MintingConfig) {
		cfg.NFTEnabled = false
	})

	ticket, err := f.service.MintTicket(context.Background(), mintRequest())
	assert.ErrorIs(t, err, status.ErrPolicyViolation)
	assert.Nil(t, ticket)

	// Rejected before any record was created.
	tickets, err := f.tickets.ListByEvent(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.Empty(t, tickets)
	assert.Equal(t, 0, f.adapter.mintCalls)
}

func TestMintTicket_WithoutAutoMintStaysPending(t *testing.T) {
	f := setupLifecycle(t, func(_ *models.Event, cfg *models.MintingConfig) {
		cfg.AutoMint = false
	})

	ticket, err := f.service.MintTicket(context.Background(), mintRequest())
	require.NoError(t, err)

	assert.Equal(t, models.AssetStatusPending, ticket.Status)
	assert.Empty(t, ticket.TokenID)
	assert.Equal(t, 0, f.adapter.mintCalls)
}

func TestMintTicket_RequestOverridesAutoMint(t *testing.T) {
	f := setupLifecycle(t, nil)

	off := false
	req := mintRequest()
	req.AutoMint = &off

	ticket, err := f.service.MintTicket(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.AssetStatusPending, ticket.Status)
	assert.Equal(t, 0, f.adapter.mintCalls)
}

func TestMintTicket_UnknownEvent(t *testing.T) {
	f := setupLifecycle(t, nil)

	req := mintRequest()
	req.EventID = "missing"

	_, err := f.service.MintTicket(context.Background(), req)
	assert.ErrorIs(t, err, status.ErrNotFound)
}

func TestMintTicket_InvalidWallet(t *testing.T) {
	f := setupLifecycle(t, nil)

	req := mintRequest()
	req.PurchaserWallet = "not-a-wallet"

	_, err := f.service.MintTicket(context.Background(), req)
	assert.ErrorIs(t, err, status.ErrPolicyViolation)
}

func TestMintTicket_UnsupportedPlatform(t *testing.T) {
	f := setupLifecycle(t, nil)

	req := mintRequest()
	req.Platform = "solana"

	_, err := f.service.MintTicket(context.Background(), req)
	assert.ErrorIs(t, err, status.ErrPolicyViolation)
}

func TestMintTicket_PlatformFailureLeavesRetryableRecord(t *testing.T) {
	f := setupLifecycle(t, nil)
	f.adapter.mintErr = errors.New("gateway unavailable")

	ticket, err := f.service.MintTicket(context.Background(), mintRequest())
	assert.ErrorIs(t, err, status.ErrPlatformFailure)
	require.NotNil(t, ticket)

	assert.Equal(t, models.AssetStatusFailed, ticket.Status)
	assert.Equal(t, 1, ticket.RetryCount)
	assert.Contains(t, ticket.ErrorMessage, "gateway unavailable")
	assert.Empty(t, ticket.TokenID)
	assert.Nil(t, ticket.MintedAt)
}

func TestMintTicket_NoRecipientWallet(t *testing.T) {
	f := setupLifecycle(t, func(_ *models.Event, cfg *models.MintingConfig) {
		cfg.OrganizerWallet = ""
	})

	req := mintRequest()
	req.PurchaserWallet = ""

	ticket, err := f.service.MintTicket(context.Background(), req)
	assert.ErrorIs(t, err, status.ErrPolicyViolation)
	require.NotNil(t, ticket)
	assert.Equal(t, models.AssetStatusFailed, ticket.Status)
	assert.Equal(t, 0, f.adapter.mintCalls)
}

func TestMintTicket_WalletlessPurchaserUsesOrganizerCustody(t *testing.T) {
	f := setupLifecycle(t, func(_ *models.Event, cfg *models.MintingConfig) {
		cfg.OrganizerWallet = testOtherWallet
	})

	req := mintRequest()
	req.PurchaserWallet = ""

	ticket, err := f.service.MintTicket(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.AssetStatusMinted, ticket.Status)
	assert.Equal(t, testOtherWallet, ticket.OwnerWallet)
}

func TestRetryMinting_OnlyFailedTickets(t *testing.T) {
	f := setupLifecycle(t, func(_ *models.Event, cfg *models.MintingConfig) {
		cfg.AutoMint = false
	})

	ticket, err := f.service.MintTicket(context.Background(), mintRequest())
	require.NoError(t, err)
	require.Equal(t, models.AssetStatusPending, ticket.Status)

	_, err = f.service.RetryMinting(context.Background(), ticket.ID)
	assert.ErrorIs(t, err, status.ErrInvalidState)
}

func TestRetryMinting_SucceedsAfterFailure(t *testing.T) {
	f := setupLifecycle(t, nil)
	f.adapter.mintErr = errors.New("gateway unavailable")

	ticket, err := f.service.MintTicket(context.Background(), mintRequest())
	assert.ErrorIs(t, err, status.ErrPlatformFailure)
	require.Equal(t, models.AssetStatusFailed, ticket.Status)

	f.adapter.mintErr = nil

	retried, err := f.service.RetryMinting(context.Background(), ticket.ID)
	require.NoError(t, err)

	assert.Equal(t, models.AssetStatusMinted, retried.Status)
	assert.Equal(t, "42", retried.TokenID)
	assert.Empty(t, retried.ErrorMessage)
	assert.NotNil(t, retried.LastRetryAt)
	// The counter reflects failed attempts, not successful retries.
	assert.Equal(t, 1, retried.RetryCount)
}

func TestRetryMinting_FailedAgainBumpsRetryCount(t *testing.T) {
	f := setupLifecycle(t, nil)
	f.adapter.mintErr = errors.New("gateway unavailable")

	ticket, _ := f.service.MintTicket(context.Background(), mintRequest())
	require.Equal(t, 1, ticket.RetryCount)

	retried, err := f.service.RetryMinting(context.Background(), ticket.ID)
	assert.ErrorIs(t, err, status.ErrPlatformFailure)
	assert.Equal(t, 2, retried.RetryCount)
}

func TestMintTicket_PendingTransactionKeepsReference(t *testing.T) {
	f := setupLifecycle(t, nil)
	f.adapter.mintErr = &chain.PendingMintError{TxRef: "0xpending"}

	ticket, err := f.service.MintTicket(context.Background(), mintRequest())
	assert.ErrorIs(t, err, status.ErrPlatformFailure)
	require.NotNil(t, ticket)

	assert.Equal(t, models.AssetStatusFailed, ticket.Status)
	assert.Equal(t, "0xpending", ticket.TxRef)
	assert.Empty(t, ticket.TokenID)

	stored, err := f.tickets.Get(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "0xpending", stored.TxRef)
}

func TestRetryMinting_ReconcilesConfirmedTransaction(t *testing.T) {
	f := setupLifecycle(t, nil)
	f.adapter.mintErr = &chain.PendingMintError{TxRef: "0xpending"}

	ticket, err := f.service.MintTicket(context.Background(), mintRequest())
	assert.ErrorIs(t, err, status.ErrPlatformFailure)

	// The accepted transaction landed on chain after all; the gateway
	// now reports the token it created.
	f.adapter.mintErr = nil
	f.adapter.confirmed = true
	f.adapter.statusTokenID = "42"
	f.adapter.statusContract = testContract
	f.adapter.statusURI = "https://assets.veritix.io/tokens/42"

	retried, err := f.service.RetryMinting(context.Background(), ticket.ID)
	require.NoError(t, err)

	assert.Equal(t, models.AssetStatusMinted, retried.Status)
	assert.Equal(t, "42", retried.TokenID)
	assert.Equal(t, testContract, retried.ContractAddress)
	assert.Equal(t, "0xpending", retried.TxRef)
	assert.Equal(t, testWallet, retried.OwnerWallet)
	assert.Empty(t, retried.ErrorMessage)
	assert.Equal(t, 1, f.adapter.statusCalls)
	assert.Equal(t, 1, f.adapter.mintCalls, "a confirmed mint must not be minted a second time")
}

func TestRetryMinting_UnconfirmedTransactionIsMintedAgain(t *testing.T) {
	f := setupLifecycle(t, nil)
	f.adapter.mintErr = &chain.PendingMintError{TxRef: "0xpending"}

	ticket, err := f.service.MintTicket(context.Background(), mintRequest())
	assert.ErrorIs(t, err, status.ErrPlatformFailure)

	// The accepted transaction never confirmed; a fresh mint is issued.
	f.adapter.mintErr = nil
	f.adapter.confirmed = false

	retried, err := f.service.RetryMinting(context.Background(), ticket.ID)
	require.NoError(t, err)

	assert.Equal(t, models.AssetStatusMinted, retried.Status)
	assert.Equal(t, "42", retried.TokenID)
	assert.Equal(t, "0xmint", retried.TxRef)
	assert.Equal(t, 1, f.adapter.statusCalls)
	assert.Equal(t, 2, f.adapter.mintCalls)
}

func TestRetryMinting_UnresolvedTransactionBlocksRemint(t *testing.T) {
	f := setupLifecycle(t, nil)
	f.adapter.mintErr = &chain.PendingMintError{TxRef: "0xpending"}

	ticket, err := f.service.MintTicket(context.Background(), mintRequest())
	assert.ErrorIs(t, err, status.ErrPlatformFailure)

	f.adapter.mintErr = nil
	f.adapter.statusErr = errors.New("gateway unavailable")

	_, err = f.service.RetryMinting(context.Background(), ticket.ID)
	assert.ErrorIs(t, err, status.ErrPlatformFailure)
	assert.Equal(t, 1, f.adapter.mintCalls, "minting blind while the previous attempt is unresolved could duplicate the asset")

	stored, err := f.tickets.Get(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssetStatusFailed, stored.Status)
	assert.Equal(t, "0xpending", stored.TxRef)
}

func TestRetryMinting_ConfirmedWithoutIdentityBlocksRemint(t *testing.T) {
	f := setupLifecycle(t, nil)
	f.adapter.mintErr = &chain.PendingMintError{TxRef: "0xpending"}

	ticket, err := f.service.MintTicket(context.Background(), mintRequest())
	assert.ErrorIs(t, err, status.ErrPlatformFailure)

	// Confirmed on chain but the gateway cannot say which token it
	// created; re-minting would duplicate the asset.
	f.adapter.mintErr = nil
	f.adapter.confirmed = true

	_, err = f.service.RetryMinting(context.Background(), ticket.ID)
	assert.ErrorIs(t, err, status.ErrPlatformFailure)
	assert.Equal(t, 1, f.adapter.statusCalls)
	assert.Equal(t, 1, f.adapter.mintCalls)
}

func TestRetryMinting_RecoversTicketStuckInMinting(t *testing.T) {
	f := setupLifecycle(t, nil)

	// An interrupted attempt: the record reached minting and never moved.
	ticket := &models.TicketAsset{
		ID:              "tkt-stuck",
		EventID:         "evt-1",
		PurchaserID:     "user-1",
		PurchaserName:   "Ada Lovelace",
		PurchaserWallet: testWallet,
		Platform:        string(chain.PlatformPolygon),
		Status:          models.AssetStatusMinting,
		TransferHistory: []models.TransferRecord{},
		PricePaid:       decimal.NewFromInt(50),
		PurchaseDate:    time.Now().UTC(),
	}
	require.NoError(t, f.tickets.Create(context.Background(), ticket))

	retried, err := f.service.RetryMinting(context.Background(), ticket.ID)
	require.NoError(t, err)

	assert.Equal(t, models.AssetStatusMinted, retried.Status)
	assert.Equal(t, "42", retried.TokenID)
	assert.Equal(t, 1, f.adapter.mintCalls)
}

func TestRetryMinting_LiveAttemptHoldsTheLock(t *testing.T) {
	locker := utils.NewMemoryTicketLock()
	f := setupLifecycleWithLocker(t, nil, locker)

	ticket := &models.TicketAsset{
		ID:              "tkt-live",
		EventID:         "evt-1",
		PurchaserID:     "user-1",
		PurchaserWallet: testWallet,
		Platform:        string(chain.PlatformPolygon),
		Status:          models.AssetStatusMinting,
		TransferHistory: []models.TransferRecord{},
		PricePaid:       decimal.NewFromInt(50),
		PurchaseDate:    time.Now().UTC(),
	}
	require.NoError(t, f.tickets.Create(context.Background(), ticket))

	// While the original attempt still holds the lock, the record is a
	// live mint, not a stranded one.
	release, err := locker.Acquire(context.Background(), ticket.ID)
	require.NoError(t, err)
	defer release()

	_, err = f.service.RetryMinting(context.Background(), ticket.ID)
	assert.ErrorIs(t, err, status.ErrInvalidState)
	assert.Equal(t, 0, f.adapter.mintCalls)
}

func TestTransferTicket_Success(t *testing.T) {
	f := setupLifecycle(t, nil)

	ticket, err := f.service.MintTicket(context.Background(), mintRequest())
	require.NoError(t, err)

	price := decimal.NewFromInt(80)
	txRef, err := f.service.TransferTicket(context.Background(), ticket.ID, testOtherWallet, &price)
	require.NoError(t, err)
	assert.Equal(t, "0xtransfer", txRef)

	stored, err := f.tickets.Get(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssetStatusTransferred, stored.Status)
	assert.Equal(t, testOtherWallet, stored.OwnerWallet)
	assert.Equal(t, testWallet, stored.PreviousOwner)
	require.Len(t, stored.TransferHistory, 1)
	assert.Equal(t, testWallet, stored.TransferHistory[0].From)
	assert.Equal(t, testOtherWallet, stored.TransferHistory[0].To)
	assert.NotNil(t, stored.TransferredAt)
}

func TestTransferTicket_PriceAtCapAccepted(t *testing.T) {
	f := setupLifecycle(t, nil)

	ticket, err := f.service.MintTicket(context.Background(), mintRequest())
	require.NoError(t, err)

	price := decimal.NewFromInt(100)
	_, err = f.service.TransferTicket(context.Background(), ticket.ID, testOtherWallet, &price)
	assert.NoError(t, err)
}

func TestTransferTicket_PriceExceedsCap(t *testing.T) {
	f := setupLifecycle(t, nil)

	ticket, err := f.service.MintTicket(context.Background(), mintRequest())
	require.NoError(t, err)

	price := decimal.RequireFromString("100.01")
	_, err = f.service.TransferTicket(context.Background(), ticket.ID, testOtherWallet, &price)
	assert.ErrorIs(t, err, status.ErrPolicyViolation)
	assert.Contains(t, err.Error(),
		"Resale price (100.01) exceeds the maximum allowed resale price (100)")
}

func TestTransferTicket_ResaleLockWinsOverPrice(t *testing.T) {
	f := setupLifecycle(t, func(event *models.Event, _ *models.MintingConfig) {
		event.ResalePolicy.ResaleLocked = true
	})

	ticket, err := f.service.MintTicket(context.Background(), mintRequest())
	require.NoError(t, err)

	// Even with a price far above the cap, the lock is reported first.
	price := decimal.NewFromInt(10000)
	_, err = f.service.TransferTicket(context.Background(), ticket.ID, testOtherWallet, &price)
	assert.ErrorIs(t, err, status.ErrPolicyViolation)
	assert.Contains(t, err.Error(), "resale is currently locked")
}

func TestTransferTicket_AdminPathSkipsResalePolicy(t *testing.T) {
	f := setupLifecycle(t, func(event *models.Event, _ *models.MintingConfig) {
		event.ResalePolicy.ResaleLocked = true
	})

	ticket, err := f.service.MintTicket(context.Background(), mintRequest())
	require.NoError(t, err)

	// No resale price means the organizer/admin path.
	_, err = f.service.TransferTicket(context.Background(), ticket.ID, testOtherWallet, nil)
	assert.NoError(t, err)
}

func TestTransferTicket_TransfersDisabled(t *testing.T) {
	f := setupLifecycle(t, func(_ *models.Event, cfg *models.MintingConfig) {
		cfg.AllowTransfer = false
	})

	ticket, err := f.service.MintTicket(context.Background(), mintRequest())
	require.NoError(t, err)

	_, err = f.service.TransferTicket(context.Background(), ticket.ID, testOtherWallet, nil)
	assert.ErrorIs(t, err, status.ErrPolicyViolation)
}

func TestTransferTicket_RejectsUnmintedTicket(t *testing.T) {
	f := setupLifecycle(t, func(_ *models.Event, cfg *models.MintingConfig) {
		cfg.AutoMint = false
	})

	ticket, err := f.service.MintTicket(context.Background(), mintRequest())
	require.NoError(t, err)

	_, err = f.service.TransferTicket(context.Background(), ticket.ID, testOtherWallet, nil)
	assert.ErrorIs(t, err, status.ErrInvalidState)
}

func TestTransferTicket_AdapterFailureKeepsOwnership(t *testing.T) {
	f := setupLifecycle(t, nil)

	ticket, err := f.service.MintTicket(context.Background(), mintRequest())
	require.NoError(t, err)

	f.adapter.transferErr = errors.New("nonce too low")

	_, err = f.service.TransferTicket(context.Background(), ticket.ID, testOtherWallet, nil)
	assert.ErrorIs(t, err, status.ErrPlatformFailure)

	stored, err := f.tickets.Get(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssetStatusMinted, stored.Status)
	assert.Equal(t, testWallet, stored.OwnerWallet)
	assert.Empty(t, stored.TransferHistory)
	assert.Contains(t, stored.ErrorMessage, "nonce too low")
	// Transfer failures never count as mint retries.
	assert.Equal(t, 0, stored.RetryCount)
}

func TestTransferTicket_ChainAcrossOwners(t *testing.T) {
	f := setupLifecycle(t, nil)

	ticket, err := f.service.MintTicket(context.Background(), mintRequest())
	require.NoError(t, err)

	_, err = f.service.TransferTicket(context.Background(), ticket.ID, testOtherWallet, nil)
	require.NoError(t, err)

	third := "0xefefefefefefefefefefefefefefefefefefef56"
	_, err = f.service.TransferTicket(context.Background(), ticket.ID, third, nil)
	require.NoError(t, err)

	stored, err := f.tickets.Get(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, third, stored.OwnerWallet)
	assert.Equal(t, testOtherWallet, stored.PreviousOwner)
	require.Len(t, stored.TransferHistory, 2)
}

func TestBurnTicket_Success(t *testing.T) {
	f := setupLifecycle(t, func(_ *models.Event, cfg *models.MintingConfig) {
		cfg.BurnAfterEvent = true
	})

	ticket, err := f.service.MintTicket(context.Background(), mintRequest())
	require.NoError(t, err)

	txRef, err := f.service.BurnTicket(context.Background(), ticket.ID, testWallet)
	require.NoError(t, err)
	assert.Equal(t, "0xburn", txRef)

	stored, err := f.tickets.Get(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssetStatusBurned, stored.Status)
	// Token identity survives the burn for audit.
	assert.Equal(t, "42", stored.TokenID)
	assert.Equal(t, testContract, stored.ContractAddress)
}

func TestBurnTicket_DisabledByConfig(t *testing.T) {
	f := setupLifecycle(t, nil)

	ticket, err := f.service.MintTicket(context.Background(), mintRequest())
	require.NoError(t, err)

	_, err = f.service.BurnTicket(context.Background(), ticket.ID, testWallet)
	assert.ErrorIs(t, err, status.ErrPolicyViolation)
}

func TestBurnTicket_OwnerMismatch(t *testing.T) {
	f := setupLifecycle(t, func(_ *models.Event, cfg *models.MintingConfig) {
		cfg.BurnAfterEvent = true
	})

	ticket, err := f.service.MintTicket(context.Background(), mintRequest())
	require.NoError(t, err)

	_, err = f.service.BurnTicket(context.Background(), ticket.ID, testOtherWallet)
	assert.ErrorIs(t, err, status.ErrPolicyViolation)

	stored, err := f.tickets.Get(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssetStatusMinted, stored.Status)
}

func TestBurnTicket_BurnedTicketCannotMove(t *testing.T) {
	f := setupLifecycle(t, func(_ *models.Event, cfg *models.MintingConfig) {
		cfg.BurnAfterEvent = true
	})

	ticket, err := f.service.MintTicket(context.Background(), mintRequest())
	require.NoError(t, err)

	_, err = f.service.BurnTicket(context.Background(), ticket.ID, testWallet)
	require.NoError(t, err)

	_, err = f.service.TransferTicket(context.Background(), ticket.ID, testOtherWallet, nil)
	assert.ErrorIs(t, err, status.ErrInvalidState)

	_, err = f.service.BurnTicket(context.Background(), ticket.ID, testWallet)
	assert.ErrorIs(t, err, status.ErrInvalidState)
}

func TestBurnTicket_ConcurrentTransferWins(t *testing.T) {
	locker := &gatedLocker{inner: utils.NewMemoryTicketLock()}
	f := setupLifecycleWithLocker(t, func(_ *models.Event, cfg *models.MintingConfig) {
		cfg.BurnAfterEvent = true
	}, locker)

	ticket, err := f.service.MintTicket(context.Background(), mintRequest())
	require.NoError(t, err)

	// Ownership changes between the burn's first read and its lock.
	locker.setGate(func(string) {
		_, terr := f.service.TransferTicket(context.Background(), ticket.ID, testOtherWallet, nil)
		require.NoError(t, terr)
	})

	_, err = f.service.BurnTicket(context.Background(), ticket.ID, testWallet)
	assert.ErrorIs(t, err, status.ErrPolicyViolation)
	assert.Equal(t, 0, f.adapter.burnCalls, "the chain must never see the stale owner")

	// The committed transfer survives intact.
	stored, err := f.tickets.Get(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssetStatusTransferred, stored.Status)
	assert.Equal(t, testOtherWallet, stored.OwnerWallet)
	assert.Equal(t, testWallet, stored.PreviousOwner)
	assert.NotNil(t, stored.TransferredAt)
	require.Len(t, stored.TransferHistory, 1)
}

func TestBurnTicket_NewOwnerBurnsAfterTransfer(t *testing.T) {
	f := setupLifecycle(t, func(_ *models.Event, cfg *models.MintingConfig) {
		cfg.BurnAfterEvent = true
	})

	ticket, err := f.service.MintTicket(context.Background(), mintRequest())
	require.NoError(t, err)

	_, err = f.service.TransferTicket(context.Background(), ticket.ID, testOtherWallet, nil)
	require.NoError(t, err)

	txRef, err := f.service.BurnTicket(context.Background(), ticket.ID, testOtherWallet)
	require.NoError(t, err)
	assert.Equal(t, "0xburn", txRef)

	stored, err := f.tickets.Get(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssetStatusBurned, stored.Status)
	require.Len(t, stored.TransferHistory, 1)
}

func TestGetMintingStats(t *testing.T) {
	f := setupLifecycle(t, nil)

	// One minted, one failed.
	_, err := f.service.MintTicket(context.Background(), mintRequest())
	require.NoError(t, err)

	f.adapter.mintErr = errors.New("gateway unavailable")
	req := mintRequest()
	req.PurchaserID = "user-2"
	_, err = f.service.MintTicket(context.Background(), req)
	assert.ErrorIs(t, err, status.ErrPlatformFailure)

	stats, err := f.service.GetMintingStats(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Minted)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 0, stats.Pending)
}

func TestGetMintingStats_UnknownEvent(t *testing.T) {
	f := setupLifecycle(t, nil)

	_, err := f.service.GetMintingStats(context.Background(), "missing")
	assert.ErrorIs(t, err, status.ErrNotFound)
}

func TestEstimateMintFee(t *testing.T) {
	f := setupLifecycle(t, nil)

	estimate, err := f.service.EstimateMintFee(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.Equal(t, chain.PlatformPolygon, estimate.Platform)
	assert.Equal(t, "MATIC", estimate.Currency)
	assert.True(t, estimate.Fee.GreaterThan(decimal.Zero))
}

func TestEstimateMintFee_UnknownEvent(t *testing.T) {
	f := setupLifecycle(t, nil)

	_, err := f.service.EstimateMintFee(context.Background(), "missing")
	assert.ErrorIs(t, err, status.ErrNotFound)
}

func TestTokenIdentityOnlyAfterMint(t *testing.T) {
	f := setupLifecycle(t, func(_ *models.Event, cfg *models.MintingConfig) {
		cfg.AutoMint = false
	})

	ticket, err := f.service.MintTicket(context.Background(), mintRequest())
	require.NoError(t, err)
	assert.Empty(t, ticket.TokenID)
	assert.False(t, ticket.OnChain())

	minted, err := f.service.RetryMinting(context.Background(), ticket.ID)
	assert.ErrorIs(t, err, status.ErrInvalidState)
	assert.Nil(t, minted)
}
