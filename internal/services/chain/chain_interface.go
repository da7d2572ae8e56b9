package chain

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Lead-Studios/veritix-backend-sub009/models"
)

// Platform identifies a supported ledger platform.
type Platform string

const (
	PlatformPolygon Platform = "polygon"
	PlatformZora    Platform = "zora"
)

// Valid reports whether p names a known platform.
func (p Platform) Valid() bool {
	switch p {
	case PlatformPolygon, PlatformZora:
		return true
	}
	return false
}

// MintResult is the successful outcome of a mint call.
type MintResult struct {
	TokenID         string `json:"token_id"`
	ContractAddress string `json:"contract_address"`
	TokenURI        string `json:"token_uri"`
	TxRef           string `json:"tx_ref"`
}

// TransferResult is the successful outcome of a transfer call.
type TransferResult struct {
	TxRef string `json:"tx_ref"`
}

// BurnResult is the successful outcome of a burn call.
type BurnResult struct {
	TxRef string `json:"tx_ref"`
}

// TxStatus is the confirmation state of a previously submitted
// transaction. For a confirmed mint the gateway also reports the token
// identity, so an interrupted attempt can be finalized from the status
// reply alone.
type TxStatus struct {
	Confirmed       bool   `json:"confirmed"`
	BlockRef        string `json:"block_ref,omitempty"`
	TokenID         string `json:"token_id,omitempty"`
	ContractAddress string `json:"contract_address,omitempty"`
	TokenURI        string `json:"token_uri,omitempty"`
}

// PendingMintError reports a mint the gateway accepted without returning
// a final token identity. TxRef identifies the submitted transaction so
// the attempt can be reconciled later instead of minted again.
type PendingMintError struct {
	TxRef string
}

func (e *PendingMintError) Error() string {
	return fmt.Sprintf("mint transaction %s accepted, token identity pending", e.TxRef)
}

// FeeEstimate is an estimated network cost for a mint.
type FeeEstimate struct {
	Platform Platform        `json:"platform"`
	Fee      decimal.Decimal `json:"fee"`
	Currency string          `json:"currency"`
}

// PlatformAdapter is the uniform contract over one ledger platform.
//
// Every operation is network I/O, may time out, and must be safe to call
// again after a timeout (at-least-once). The engine deduplicates through
// the ticket's current status; adapters report errors and never abort the
// process.
type PlatformAdapter interface {
	// GetPlatform returns the platform this adapter serves.
	GetPlatform() Platform

	// Mint creates a new token for recipient and returns its identity.
	Mint(ctx context.Context, contractAddress, recipient string, meta *models.AssetMetadata) (*MintResult, error)

	// Transfer moves tokenID from one address to another.
	Transfer(ctx context.Context, contractAddress, from, to, tokenID string) (*TransferResult, error)

	// Burn permanently retires tokenID held by ownerAddress.
	Burn(ctx context.Context, contractAddress, tokenID, ownerAddress string) (*BurnResult, error)

	// GetTransactionStatus reports whether a submitted transaction
	// confirmed on chain.
	GetTransactionStatus(ctx context.Context, txRef string) (*TxStatus, error)

	// EstimateFee returns the estimated network cost of a mint.
	EstimateFee(ctx context.Context, contractAddress, recipient string) (*FeeEstimate, error)

	// Close gracefully closes any connections.
	Close(ctx context.Context) error
}

// AdapterFactory creates platform adapters from per-platform configs.
type AdapterFactory interface {
	CreateAdapter(ctx context.Context, platform Platform, config interface{}) (PlatformAdapter, error)
	GetSupportedPlatforms() []Platform
}
