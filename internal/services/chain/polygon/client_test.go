package polygon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(context.Background(), &Config{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		ChainID: 137,
	})
	require.NoError(t, err)
	return client
}

func okEnvelope(t *testing.T, w http.ResponseWriter, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
		"status":  "OK",
		"message": "",
		"data":    json.RawMessage(raw),
	})
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(context.Background(), &Config{})
	assert.Error(t, err)
}

func TestMintToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/tokens/mint", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		var form MintForm
		require.NoError(t, json.NewDecoder(r.Body).Decode(&form))
		assert.Equal(t, int64(137), form.ChainID)
		assert.NotEmpty(t, form.RequestID)

		okEnvelope(t, w, MintReply{
			TokenID:         "42",
			ContractAddress: form.ContractAddress,
			TokenURI:        "ipfs://token/42",
			TxHash:          "0xabc",
		})
	})

	reply, err := client.MintToken(context.Background(), &MintForm{
		RequestID:       "req-1",
		ContractAddress: "0x1212121212121212121212121212121212121212",
		Recipient:       "0xababababababababababababababababababab12",
		ChainID:         137,
	})
	require.NoError(t, err)
	assert.Equal(t, "42", reply.TokenID)
	assert.Equal(t, "0xabc", reply.TxHash)
}

func TestMintToken_EmptyIdentityRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		okEnvelope(t, w, MintReply{})
	})

	_, err := client.MintToken(context.Background(), &MintForm{RequestID: "req-1"})
	assert.ErrorContains(t, err, "empty token identity")
}

func TestMintToken_AcceptedWithoutIdentityReportsPending(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		okEnvelope(t, w, MintReply{TxHash: "0xaccepted"})
	})

	_, err := client.MintToken(context.Background(), &MintForm{RequestID: "req-1"})
	var pending *TxPendingError
	require.ErrorAs(t, err, &pending)
	assert.Equal(t, "0xaccepted", pending.TxHash)
}

func TestErrorEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"status":  "ERROR",
			"message": "contract paused",
		})
	})

	_, err := client.MintToken(context.Background(), &MintForm{RequestID: "req-1"})
	assert.ErrorContains(t, err, "contract paused")
}

func TestUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.MintToken(context.Background(), &MintForm{RequestID: "req-1"})
	assert.ErrorContains(t, err, "401")
}

func TestTransferToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/tokens/transfer", r.URL.Path)
		okEnvelope(t, w, TransferReply{TxHash: "0xdef"})
	})

	reply, err := client.TransferToken(context.Background(), &TransferForm{
		RequestID: "req-2",
		TokenID:   "42",
	})
	require.NoError(t, err)
	assert.Equal(t, "0xdef", reply.TxHash)
}

func TestTransactionStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/transactions/0xabc", r.URL.Path)
		okEnvelope(t, w, TxReply{
			Confirmed:   true,
			BlockNumber: "12345",
			TokenID:     "42",
			TokenURI:    "ipfs://token/42",
		})
	})

	reply, err := client.TransactionStatus(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.True(t, reply.Confirmed)
	assert.Equal(t, "12345", reply.BlockNumber)
	assert.Equal(t, "42", reply.TokenID)
}

func TestEstimateMintFee(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/fees/estimate", r.URL.Path)
		okEnvelope(t, w, FeeReply{Fee: "0.002", Currency: "MATIC"})
	})

	reply, err := client.EstimateMintFee(context.Background(), &FeeForm{ChainID: 137})
	require.NoError(t, err)
	assert.Equal(t, "0.002", reply.Fee)
	assert.Equal(t, "MATIC", reply.Currency)
}
