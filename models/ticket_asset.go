package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetStatus is the lifecycle status of a ticket's on-chain asset.
type AssetStatus string

const (
	AssetStatusPending     AssetStatus = "pending"
	AssetStatusMinting     AssetStatus = "minting"
	AssetStatusMinted      AssetStatus = "minted"
	AssetStatusFailed      AssetStatus = "failed"
	AssetStatusTransferred AssetStatus = "transferred"
	AssetStatusBurned      AssetStatus = "burned"
)

// TransferRecord is one completed ownership change, append-only.
type TransferRecord struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	TxRef     string    `json:"tx_ref"`
	Timestamp time.Time `json:"timestamp"`
}

// TicketAsset represents a ticket's on-chain-backed collectible.
// Created at purchase time in status pending; mutated only by the
// lifecycle service; never hard-deleted (burn is a terminal status,
// not a row deletion).
type TicketAsset struct {
	ID             string `json:"id"`
	EventID        string `json:"event_id"`
	PurchaserID    string `json:"purchaser_id"`
	PurchaserName  string `json:"purchaser_name"`
	PurchaserEmail string `json:"purchaser_email"`
	Tier           string `json:"tier,omitempty"`

	// Ownership. OwnerWallet is the authoritative current owner address;
	// it is the purchaser wallet after mint and the last transfer's "to"
	// afterwards.
	PurchaserWallet string           `json:"purchaser_wallet,omitempty"`
	OwnerWallet     string           `json:"owner_wallet,omitempty"`
	PreviousOwner   string           `json:"previous_owner,omitempty"`
	TransferHistory []TransferRecord `json:"transfer_history"`

	// Platform binding. TokenID and ContractAddress are set if and only
	// if the asset reached minted (or a later terminal state).
	Platform        string `json:"platform"`
	ContractAddress string `json:"contract_address,omitempty"`
	TokenID         string `json:"token_id,omitempty"`
	TokenURI        string `json:"token_uri,omitempty"`
	TxRef           string `json:"tx_ref,omitempty"`

	Status       AssetStatus `json:"status"`
	ErrorMessage string      `json:"error_message,omitempty"`
	RetryCount   int         `json:"retry_count"`
	LastRetryAt  *time.Time  `json:"last_retry_at,omitempty"`

	PricePaid     decimal.Decimal `json:"price_paid"`
	PurchaseDate  time.Time       `json:"purchase_date"`
	MintedAt      *time.Time      `json:"minted_at,omitempty"`
	TransferredAt *time.Time      `json:"transferred_at,omitempty"`
}

// OnChain reports whether the asset has a live or retired token bound to it.
func (t *TicketAsset) OnChain() bool {
	switch t.Status {
	case AssetStatusMinted, AssetStatusTransferred, AssetStatusBurned:
		return true
	}
	return false
}

// Transferable reports whether the asset is in a state from which an
// ownership change may start. Policy checks are separate.
func (t *TicketAsset) Transferable() bool {
	return t.Status == AssetStatusMinted || t.Status == AssetStatusTransferred
}

// MintingStats is the per-event status breakdown.
type MintingStats struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	Minting     int `json:"minting"`
	Minted      int `json:"minted"`
	Failed      int `json:"failed"`
	Transferred int `json:"transferred"`
	Burned      int `json:"burned"`
}
