package zora

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var _ Zora = (*zora)(nil)

type (
	Config struct {
		BaseURL string `json:"base_url" mapstructure:"base_url"`

		// BearerToken authenticates against the Zora creator API.
		BearerToken string `json:"bearer_token" mapstructure:"bearer_token"`

		// Network selects the Zora network (e.g. "zora", "zora-sepolia").
		Network string `json:"network" mapstructure:"network"`

		Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
	}

	zora struct {
		baseURL string

		bearerToken string

		network string

		// hc is the http client.
		hc *http.Client
	}
)

// Zora is the client surface against a Zora-style creator gateway.
type Zora interface {
	CreateToken(ctx context.Context, form *CreateTokenForm) (*Token, error)
	TransferToken(ctx context.Context, form *TransferTokenForm) (*Receipt, error)
	BurnToken(ctx context.Context, form *BurnTokenForm) (*Receipt, error)
	GetTransaction(ctx context.Context, id string) (*Transaction, error)
	GetMintCosts(ctx context.Context, collection, minter string) (*MintCosts, error)
}

// New creates a new Zora gateway client.
func New(_ context.Context, cfg *Config) (Zora, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("zora: base url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &zora{
		baseURL:     cfg.BaseURL,
		bearerToken: cfg.BearerToken,
		network:     cfg.Network,

		// set http client with timeout.
		hc: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type CreateTokenForm struct {
	Collection string          `json:"collection"`
	Recipient  string          `json:"recipient"`
	Network    string          `json:"network"`
	Metadata   json.RawMessage `json:"metadata"`
	RequestID  string          `json:"request_id"`
}

type Token struct {
	TokenID    string `json:"token_id"`
	Collection string `json:"collection"`
	URI        string `json:"uri"`
	TxID       string `json:"tx_id"`
}

// TxPendingError reports a token creation the gateway accepted but whose
// token identity is not yet known. The caller can reconcile later through
// GetTransaction with the recorded id.
type TxPendingError struct {
	TxID string
}

func (e *TxPendingError) Error() string {
	return fmt.Sprintf("createToken: transaction %s accepted, token identity pending", e.TxID)
}

func (z *zora) CreateToken(ctx context.Context, form *CreateTokenForm) (*Token, error) {
	if form.Network == "" {
		form.Network = z.network
	}

	var token Token
	if err := z.call(ctx, http.MethodPost, "/v1/tokens", form, &token); err != nil {
		return nil, fmt.Errorf("createToken: %w", err)
	}
	if token.TokenID == "" {
		if token.TxID != "" {
			return nil, &TxPendingError{TxID: token.TxID}
		}
		return nil, errors.New("createToken: empty token id in response")
	}
	return &token, nil
}

type TransferTokenForm struct {
	Collection string `json:"collection"`
	From       string `json:"from"`
	To         string `json:"to"`
	TokenID    string `json:"token_id"`
	Network    string `json:"network"`
	RequestID  string `json:"request_id"`
}

type Receipt struct {
	TxID string `json:"tx_id"`
}

func (z *zora) TransferToken(ctx context.Context, form *TransferTokenForm) (*Receipt, error) {
	if form.Network == "" {
		form.Network = z.network
	}

	var receipt Receipt
	if err := z.call(ctx, http.MethodPost, "/v1/tokens/transfer", form, &receipt); err != nil {
		return nil, fmt.Errorf("transferToken: %w", err)
	}
	if receipt.TxID == "" {
		return nil, errors.New("transferToken: empty tx id in response")
	}
	return &receipt, nil
}

type BurnTokenForm struct {
	Collection string `json:"collection"`
	TokenID    string `json:"token_id"`
	Owner      string `json:"owner"`
	Network    string `json:"network"`
	RequestID  string `json:"request_id"`
}

func (z *zora) BurnToken(ctx context.Context, form *BurnTokenForm) (*Receipt, error) {
	if form.Network == "" {
		form.Network = z.network
	}

	var receipt Receipt
	if err := z.call(ctx, http.MethodPost, "/v1/tokens/burn", form, &receipt); err != nil {
		return nil, fmt.Errorf("burnToken: %w", err)
	}
	return &receipt, nil
}

type Transaction struct {
	TxID        string `json:"tx_id"`
	State       string `json:"state"` // pending, confirmed, failed
	BlockNumber string `json:"block_number,omitempty"`

	// Set when the transaction created a token; empty otherwise.
	TokenID    string `json:"token_id,omitempty"`
	Collection string `json:"collection,omitempty"`
	URI        string `json:"uri,omitempty"`
}

func (z *zora) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	var tx Transaction
	if err := z.call(ctx, http.MethodGet, "/v1/transactions/"+url.PathEscape(id), nil, &tx); err != nil {
		return nil, fmt.Errorf("getTransaction: %w", err)
	}
	return &tx, nil
}

type MintCosts struct {
	TotalCost string `json:"total_cost"`
	Currency  string `json:"currency"`
}

func (z *zora) GetMintCosts(ctx context.Context, collection, minter string) (*MintCosts, error) {
	path := fmt.Sprintf("/v1/collections/%s/mint-costs?minter=%s",
		url.PathEscape(collection), url.QueryEscape(minter))

	var costs MintCosts
	if err := z.call(ctx, http.MethodGet, path, nil, &costs); err != nil {
		return nil, fmt.Errorf("getMintCosts: %w", err)
	}
	return &costs, nil
}

// call performs one gateway round-trip. Zora-style gateways reply with
// the resource directly and use HTTP status codes for errors.
func (z *zora) call(ctx context.Context, method, path string, form, out any) error {
	var bodyReader io.Reader
	if form != nil {
		body, err := json.Marshal(form)
		if err != nil {
			return fmt.Errorf("json.Marshal: %v", err)
		}
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, z.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("http.NewReq: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+z.bearerToken)

	resp, err := z.hc.Do(req)
	if err != nil {
		return fmt.Errorf("http.Do: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return errors.New("resp.StatusCode: 401 => Unauthorized")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("resp.StatusCode: %d, body: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if out != nil {
		dec := json.NewDecoder(resp.Body)
		if err := dec.Decode(out); err != nil {
			return fmt.Errorf("json.Decode: %v", err)
		}
	}
	return nil
}
