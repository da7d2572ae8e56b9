package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Lead-Studios/veritix-backend-sub009/internal/services/chain/zora"
	"github.com/Lead-Studios/veritix-backend-sub009/models"
)

// ZoraAdapter conforms the Zora gateway client to PlatformAdapter.
type ZoraAdapter struct {
	client zora.Zora
}

// NewZoraAdapter creates a new Zora adapter.
func NewZoraAdapter(ctx context.Context, config *zora.Config) (*ZoraAdapter, error) {
	client, err := zora.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create zora client: %w", err)
	}

	return &ZoraAdapter{
		client: client,
	}, nil
}

// GetPlatform returns the platform this adapter serves.
func (z *ZoraAdapter) GetPlatform() Platform {
	return PlatformZora
}

// Mint creates a new token on a Zora collection.
func (z *ZoraAdapter) Mint(ctx context.Context, contractAddress, recipient string, meta *models.AssetMetadata) (*MintResult, error) {
	rawMeta, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	token, err := z.client.CreateToken(ctx, &zora.CreateTokenForm{
		Collection: contractAddress,
		Recipient:  recipient,
		Metadata:   rawMeta,
		RequestID:  uuid.New().String(),
	})
	if err != nil {
		var pending *zora.TxPendingError
		if errors.As(err, &pending) {
			return nil, &PendingMintError{TxRef: pending.TxID}
		}
		return nil, err
	}

	return &MintResult{
		TokenID:         token.TokenID,
		ContractAddress: token.Collection,
		TokenURI:        token.URI,
		TxRef:           token.TxID,
	}, nil
}

// Transfer moves a token between addresses.
func (z *ZoraAdapter) Transfer(ctx context.Context, contractAddress, from, to, tokenID string) (*TransferResult, error) {
	receipt, err := z.client.TransferToken(ctx, &zora.TransferTokenForm{
		Collection: contractAddress,
		From:       from,
		To:         to,
		TokenID:    tokenID,
		RequestID:  uuid.New().String(),
	})
	if err != nil {
		return nil, err
	}

	return &TransferResult{TxRef: receipt.TxID}, nil
}

// Burn permanently retires a token.
func (z *ZoraAdapter) Burn(ctx context.Context, contractAddress, tokenID, ownerAddress string) (*BurnResult, error) {
	receipt, err := z.client.BurnToken(ctx, &zora.BurnTokenForm{
		Collection: contractAddress,
		TokenID:    tokenID,
		Owner:      ownerAddress,
		RequestID:  uuid.New().String(),
	})
	if err != nil {
		return nil, err
	}

	return &BurnResult{TxRef: receipt.TxID}, nil
}

// GetTransactionStatus reports whether a submitted transaction confirmed.
func (z *ZoraAdapter) GetTransactionStatus(ctx context.Context, txRef string) (*TxStatus, error) {
	tx, err := z.client.GetTransaction(ctx, txRef)
	if err != nil {
		return nil, err
	}

	return &TxStatus{
		Confirmed:       tx.State == "confirmed",
		BlockRef:        tx.BlockNumber,
		TokenID:         tx.TokenID,
		ContractAddress: tx.Collection,
		TokenURI:        tx.URI,
	}, nil
}

// EstimateFee returns the estimated mint cost.
func (z *ZoraAdapter) EstimateFee(ctx context.Context, contractAddress, recipient string) (*FeeEstimate, error) {
	costs, err := z.client.GetMintCosts(ctx, contractAddress, recipient)
	if err != nil {
		return nil, err
	}

	fee, err := decimal.NewFromString(costs.TotalCost)
	if err != nil {
		return nil, fmt.Errorf("parse mint cost %q: %w", costs.TotalCost, err)
	}

	return &FeeEstimate{
		Platform: PlatformZora,
		Fee:      fee,
		Currency: costs.Currency,
	}, nil
}

// Close gracefully closes any connections.
func (z *ZoraAdapter) Close(ctx context.Context) error {
	return nil
}
