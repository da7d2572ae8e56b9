package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = 5 * time.Minute
)

// MintingConfig is the per-event NFT policy record (1:1 with events),
// created lazily with safe defaults when an event has none.
type MintingConfig struct {
	EventID string `json:"event_id"`

	NFTEnabled        bool   `json:"nft_enabled"`
	PreferredPlatform string `json:"preferred_platform"`
	AllowTransfer     bool   `json:"allow_transfer"`
	BurnAfterEvent    bool   `json:"burn_after_event"`
	AutoMint          bool   `json:"auto_mint"`

	ContractAddress string `json:"contract_address,omitempty"`
	ContractName    string `json:"contract_name,omitempty"`
	ContractSymbol  string `json:"contract_symbol,omitempty"`
	BaseTokenURI    string `json:"base_token_uri,omitempty"`

	RoyaltyPercentage *decimal.Decimal `json:"royalty_percentage,omitempty"`
	RoyaltyRecipient  string           `json:"royalty_recipient,omitempty"`
	OrganizerWallet   string           `json:"organizer_wallet_address,omitempty"`

	MaxRetries int           `json:"max_retries"`
	RetryDelay time.Duration `json:"retry_delay"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultMintingConfig returns the safe per-event defaults: tickets stay
// QR-only until an organizer explicitly enables NFTs.
func DefaultMintingConfig(eventID, preferredPlatform string) *MintingConfig {
	return &MintingConfig{
		EventID:           eventID,
		NFTEnabled:        false,
		PreferredPlatform: preferredPlatform,
		AllowTransfer:     true,
		BurnAfterEvent:    false,
		AutoMint:          false,
		MaxRetries:        DefaultMaxRetries,
		RetryDelay:        DefaultRetryDelay,
	}
}

// MintingConfigPatch carries a partial update; nil fields are untouched.
type MintingConfigPatch struct {
	NFTEnabled        *bool            `json:"nft_enabled,omitempty"`
	PreferredPlatform *string          `json:"preferred_platform,omitempty"`
	AllowTransfer     *bool            `json:"allow_transfer,omitempty"`
	BurnAfterEvent    *bool            `json:"burn_after_event,omitempty"`
	AutoMint          *bool            `json:"auto_mint,omitempty"`
	ContractAddress   *string          `json:"contract_address,omitempty"`
	ContractName      *string          `json:"contract_name,omitempty"`
	ContractSymbol    *string          `json:"contract_symbol,omitempty"`
	BaseTokenURI      *string          `json:"base_token_uri,omitempty"`
	RoyaltyPercentage *decimal.Decimal `json:"royalty_percentage,omitempty"`
	RoyaltyRecipient  *string          `json:"royalty_recipient,omitempty"`
	OrganizerWallet   *string          `json:"organizer_wallet_address,omitempty"`
	MaxRetries        *int             `json:"max_retries,omitempty"`
	RetryDelaySeconds *int             `json:"retry_delay_seconds,omitempty"`
}

// Apply merges the patch into the config.
func (c *MintingConfig) Apply(p *MintingConfigPatch) {
	if p == nil {
		return
	}
	if p.NFTEnabled != nil {
		c.NFTEnabled = *p.NFTEnabled
	}
	if p.PreferredPlatform != nil {
		c.PreferredPlatform = *p.PreferredPlatform
	}
	if p.AllowTransfer != nil {
		c.AllowTransfer = *p.AllowTransfer
	}
	if p.BurnAfterEvent != nil {
		c.BurnAfterEvent = *p.BurnAfterEvent
	}
	if p.AutoMint != nil {
		c.AutoMint = *p.AutoMint
	}
	if p.ContractAddress != nil {
		c.ContractAddress = *p.ContractAddress
	}
	if p.ContractName != nil {
		c.ContractName = *p.ContractName
	}
	if p.ContractSymbol != nil {
		c.ContractSymbol = *p.ContractSymbol
	}
	if p.BaseTokenURI != nil {
		c.BaseTokenURI = *p.BaseTokenURI
	}
	if p.RoyaltyPercentage != nil {
		v := *p.RoyaltyPercentage
		c.RoyaltyPercentage = &v
	}
	if p.RoyaltyRecipient != nil {
		c.RoyaltyRecipient = *p.RoyaltyRecipient
	}
	if p.OrganizerWallet != nil {
		c.OrganizerWallet = *p.OrganizerWallet
	}
	if p.MaxRetries != nil {
		c.MaxRetries = *p.MaxRetries
	}
	if p.RetryDelaySeconds != nil {
		c.RetryDelay = time.Duration(*p.RetryDelaySeconds) * time.Second
	}
}
