package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Lead-Studios/veritix-backend-sub009/internal/services/chain/polygon"
	"github.com/Lead-Studios/veritix-backend-sub009/models"
	"github.com/Lead-Studios/veritix-backend-sub009/utils"
)

// PolygonAdapter conforms the Polygon gateway client to PlatformAdapter.
type PolygonAdapter struct {
	client *polygon.Client
}

// NewPolygonAdapter creates a new Polygon adapter.
func NewPolygonAdapter(ctx context.Context, config *polygon.Config) (*PolygonAdapter, error) {
	client, err := polygon.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create polygon client: %w", err)
	}

	return &PolygonAdapter{
		client: client,
	}, nil
}

// GetPlatform returns the platform this adapter serves.
func (p *PolygonAdapter) GetPlatform() Platform {
	return PlatformPolygon
}

// Mint creates a new token through the Polygon gateway.
func (p *PolygonAdapter) Mint(ctx context.Context, contractAddress, recipient string, meta *models.AssetMetadata) (*MintResult, error) {
	rawMeta, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	requestID, err := utils.GenerateCode(8)
	if err != nil {
		return nil, fmt.Errorf("generate request id: %w", err)
	}

	reply, err := p.client.MintToken(ctx, &polygon.MintForm{
		RequestID:       requestID,
		ContractAddress: contractAddress,
		Recipient:       recipient,
		Metadata:        rawMeta,
	})
	if err != nil {
		var pending *polygon.TxPendingError
		if errors.As(err, &pending) {
			return nil, &PendingMintError{TxRef: pending.TxHash}
		}
		return nil, err
	}

	return &MintResult{
		TokenID:         reply.TokenID,
		ContractAddress: reply.ContractAddress,
		TokenURI:        reply.TokenURI,
		TxRef:           reply.TxHash,
	}, nil
}

// Transfer moves a token between addresses.
func (p *PolygonAdapter) Transfer(ctx context.Context, contractAddress, from, to, tokenID string) (*TransferResult, error) {
	requestID, err := utils.GenerateCode(8)
	if err != nil {
		return nil, fmt.Errorf("generate request id: %w", err)
	}

	reply, err := p.client.TransferToken(ctx, &polygon.TransferForm{
		RequestID:       requestID,
		ContractAddress: contractAddress,
		From:            from,
		To:              to,
		TokenID:         tokenID,
	})
	if err != nil {
		return nil, err
	}

	return &TransferResult{TxRef: reply.TxHash}, nil
}

// Burn permanently retires a token.
func (p *PolygonAdapter) Burn(ctx context.Context, contractAddress, tokenID, ownerAddress string) (*BurnResult, error) {
	requestID, err := utils.GenerateCode(8)
	if err != nil {
		return nil, fmt.Errorf("generate request id: %w", err)
	}

	reply, err := p.client.BurnToken(ctx, &polygon.BurnForm{
		RequestID:       requestID,
		ContractAddress: contractAddress,
		TokenID:         tokenID,
		Owner:           ownerAddress,
	})
	if err != nil {
		return nil, err
	}

	return &BurnResult{TxRef: reply.TxHash}, nil
}

// GetTransactionStatus reports whether a submitted transaction confirmed.
func (p *PolygonAdapter) GetTransactionStatus(ctx context.Context, txRef string) (*TxStatus, error) {
	reply, err := p.client.TransactionStatus(ctx, txRef)
	if err != nil {
		return nil, err
	}

	return &TxStatus{
		Confirmed:       reply.Confirmed,
		BlockRef:        reply.BlockNumber,
		TokenID:         reply.TokenID,
		ContractAddress: reply.ContractAddress,
		TokenURI:        reply.TokenURI,
	}, nil
}

// EstimateFee returns the estimated mint cost.
func (p *PolygonAdapter) EstimateFee(ctx context.Context, contractAddress, recipient string) (*FeeEstimate, error) {
	reply, err := p.client.EstimateMintFee(ctx, &polygon.FeeForm{
		ContractAddress: contractAddress,
		Recipient:       recipient,
	})
	if err != nil {
		return nil, err
	}

	fee, err := decimal.NewFromString(reply.Fee)
	if err != nil {
		return nil, fmt.Errorf("parse fee %q: %w", reply.Fee, err)
	}

	return &FeeEstimate{
		Platform: PlatformPolygon,
		Fee:      fee,
		Currency: reply.Currency,
	}, nil
}

// Close gracefully closes any connections.
func (p *PolygonAdapter) Close(ctx context.Context) error {
	// The gateway client is plain HTTP, nothing to close.
	return nil
}
