package polygon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

type Config struct {
	BaseURL string `json:"baseUrl" mapstructure:"base_url"`
	APIKey  string `json:"apiKey" mapstructure:"api_key"`
	ChainID int64  `json:"chainId" mapstructure:"chain_id"`

	// Timeout bounds every gateway call. Zero means the default.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

const defaultTimeout = 15 * time.Second

// Client talks to a Polygon minting gateway: a relayer service that
// submits contract calls on our behalf and shields us from gas and
// signing concerns.
type Client struct {
	// baseURL is the base url of the gateway.
	baseURL string

	// apiKey authenticates every request.
	apiKey string

	// chainID selects mainnet vs testnet on the gateway side.
	chainID int64

	// hc is the http client.
	hc *http.Client
}

// New creates a new Polygon gateway client.
func New(_ context.Context, cfg *Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("polygon: base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("polygon: invalid base url: %v", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		chainID: cfg.ChainID,

		// set http client with timeout.
		hc: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type MintForm struct {
	RequestID       string          `json:"requestId"`
	ContractAddress string          `json:"contractAddress"`
	Recipient       string          `json:"recipient"`
	ChainID         int64           `json:"chainId"`
	Metadata        json.RawMessage `json:"metadata"`
}

type MintReply struct {
	TokenID         string `json:"tokenId"`
	ContractAddress string `json:"contractAddress"`
	TokenURI        string `json:"tokenUri"`
	TxHash          string `json:"txHash"`
}

// TxPendingError reports a mint the gateway accepted but whose token
// identity is not yet known. The caller can reconcile later through
// TransactionStatus with the recorded hash.
type TxPendingError struct {
	TxHash string
}

func (e *TxPendingError) Error() string {
	return fmt.Sprintf("mintToken: transaction %s accepted, token identity pending", e.TxHash)
}

// MintToken submits a mint to the gateway and returns the token identity.
func (c *Client) MintToken(ctx context.Context, form *MintForm) (*MintReply, error) {
	if form.ChainID == 0 {
		form.ChainID = c.chainID
	}

	var reply MintReply
	if err := c.post(ctx, "/api/v1/tokens/mint", form, &reply); err != nil {
		return nil, fmt.Errorf("mintToken: %w", err)
	}
	if reply.TokenID == "" {
		if reply.TxHash != "" {
			return nil, &TxPendingError{TxHash: reply.TxHash}
		}
		return nil, errors.New("mintToken: gateway returned empty token identity")
	}
	if reply.TxHash == "" {
		return nil, errors.New("mintToken: gateway returned empty token identity")
	}
	return &reply, nil
}

type TransferForm struct {
	RequestID       string `json:"requestId"`
	ContractAddress string `json:"contractAddress"`
	From            string `json:"from"`
	To              string `json:"to"`
	TokenID         string `json:"tokenId"`
	ChainID         int64  `json:"chainId"`
}

type TransferReply struct {
	TxHash string `json:"txHash"`
}

// TransferToken submits a token transfer.
func (c *Client) TransferToken(ctx context.Context, form *TransferForm) (*TransferReply, error) {
	if form.ChainID == 0 {
		form.ChainID = c.chainID
	}

	var reply TransferReply
	if err := c.post(ctx, "/api/v1/tokens/transfer", form, &reply); err != nil {
		return nil, fmt.Errorf("transferToken: %w", err)
	}
	if reply.TxHash == "" {
		return nil, errors.New("transferToken: gateway returned empty tx hash")
	}
	return &reply, nil
}

type BurnForm struct {
	RequestID       string `json:"requestId"`
	ContractAddress string `json:"contractAddress"`
	TokenID         string `json:"tokenId"`
	Owner           string `json:"owner"`
	ChainID         int64  `json:"chainId"`
}

type BurnReply struct {
	TxHash string `json:"txHash"`
}

// BurnToken submits a token burn.
func (c *Client) BurnToken(ctx context.Context, form *BurnForm) (*BurnReply, error) {
	if form.ChainID == 0 {
		form.ChainID = c.chainID
	}

	var reply BurnReply
	if err := c.post(ctx, "/api/v1/tokens/burn", form, &reply); err != nil {
		return nil, fmt.Errorf("burnToken: %w", err)
	}
	return &reply, nil
}

type TxReply struct {
	Confirmed   bool   `json:"confirmed"`
	BlockNumber string `json:"blockNumber"`

	// Set when the transaction was a mint; empty otherwise.
	TokenID         string `json:"tokenId"`
	ContractAddress string `json:"contractAddress"`
	TokenURI        string `json:"tokenUri"`
}

// TransactionStatus queries the confirmation state of a submitted tx.
func (c *Client) TransactionStatus(ctx context.Context, txHash string) (*TxReply, error) {
	var reply TxReply
	if err := c.get(ctx, "/api/v1/transactions/"+url.PathEscape(txHash), &reply); err != nil {
		return nil, fmt.Errorf("transactionStatus: %w", err)
	}
	return &reply, nil
}

type FeeForm struct {
	ContractAddress string `json:"contractAddress"`
	Recipient       string `json:"recipient"`
	ChainID         int64  `json:"chainId"`
}

type FeeReply struct {
	Fee      string `json:"fee"`
	Currency string `json:"currency"`
}

// EstimateMintFee asks the gateway for the current mint cost.
func (c *Client) EstimateMintFee(ctx context.Context, form *FeeForm) (*FeeReply, error) {
	if form.ChainID == 0 {
		form.ChainID = c.chainID
	}

	var reply FeeReply
	if err := c.post(ctx, "/api/v1/fees/estimate", form, &reply); err != nil {
		return nil, fmt.Errorf("estimateMintFee: %w", err)
	}
	return &reply, nil
}

// envelope is the gateway's uniform reply wrapper.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) post(ctx context.Context, path string, form any, out any) error {
	body, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("json.Marshal: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("http.NewReq: %v", err)
	}
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("http.NewReq: %v", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("http.Do: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return errors.New("resp.StatusCode: 401 => Unauthorized")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("resp.StatusCode: %d", resp.StatusCode)
	}

	var reply envelope
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&reply); err != nil {
		return fmt.Errorf("json.Decode: %v", err)
	}
	if reply.Status != "OK" {
		return fmt.Errorf("reply.Status: %v, reply.Message: %v", reply.Status, reply.Message)
	}
	if out != nil && len(reply.Data) > 0 {
		if err := json.Unmarshal(reply.Data, out); err != nil {
			return fmt.Errorf("json.Unmarshal data: %v", err)
		}
	}
	return nil
}
