package zora

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Zora {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(context.Background(), &Config{
		BaseURL:     srv.URL,
		BearerToken: "test-token",
		Network:     "zora-sepolia",
	})
	require.NoError(t, err)
	return client
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(context.Background(), &Config{})
	assert.Error(t, err)
}

func TestCreateToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/tokens", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var form CreateTokenForm
		require.NoError(t, json.NewDecoder(r.Body).Decode(&form))
		// The client fills the default network when the form has none.
		assert.Equal(t, "zora-sepolia", form.Network)

		json.NewEncoder(w).Encode(Token{ //nolint:errcheck
			TokenID:    "7",
			Collection: form.Collection,
			URI:        "ipfs://zora/7",
			TxID:       "0xzora",
		})
	})

	token, err := client.CreateToken(context.Background(), &CreateTokenForm{
		Collection: "0x1212121212121212121212121212121212121212",
		Recipient:  "0xababababababababababababababababababab12",
		RequestID:  "req-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "7", token.TokenID)
	assert.Equal(t, "0xzora", token.TxID)
}

func TestCreateToken_EmptyIDRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(Token{}) //nolint:errcheck
	})

	_, err := client.CreateToken(context.Background(), &CreateTokenForm{RequestID: "req-1"})
	assert.ErrorContains(t, err, "empty token id")
}

func TestCreateToken_AcceptedWithoutIdentityReportsPending(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(Token{TxID: "0xaccepted"}) //nolint:errcheck
	})

	_, err := client.CreateToken(context.Background(), &CreateTokenForm{RequestID: "req-1"})
	var pending *TxPendingError
	require.ErrorAs(t, err, &pending)
	assert.Equal(t, "0xaccepted", pending.TxID)
}

func TestTransferToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/tokens/transfer", r.URL.Path)
		json.NewEncoder(w).Encode(Receipt{TxID: "0xmove"}) //nolint:errcheck
	})

	receipt, err := client.TransferToken(context.Background(), &TransferTokenForm{
		TokenID:   "7",
		RequestID: "req-2",
	})
	require.NoError(t, err)
	assert.Equal(t, "0xmove", receipt.TxID)
}

func TestGetTransaction(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/transactions/0xzora", r.URL.Path)
		json.NewEncoder(w).Encode(Transaction{ //nolint:errcheck
			TxID:        "0xzora",
			State:       "confirmed",
			BlockNumber: "999",
			TokenID:     "7",
			Collection:  "col-1",
			URI:         "ipfs://zora/7",
		})
	})

	tx, err := client.GetTransaction(context.Background(), "0xzora")
	require.NoError(t, err)
	assert.Equal(t, "confirmed", tx.State)
	assert.Equal(t, "7", tx.TokenID)
	assert.Equal(t, "col-1", tx.Collection)
}

func TestGetMintCosts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/mint-costs")
		assert.Equal(t, "0xminter", r.URL.Query().Get("minter"))
		json.NewEncoder(w).Encode(MintCosts{TotalCost: "0.000777", Currency: "ETH"}) //nolint:errcheck
	})

	costs, err := client.GetMintCosts(context.Background(), "col-1", "0xminter")
	require.NoError(t, err)
	assert.Equal(t, "0.000777", costs.TotalCost)
	assert.Equal(t, "ETH", costs.Currency)
}

func TestErrorStatusIncludesBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"sequencer down"}`)) //nolint:errcheck
	})

	_, err := client.GetTransaction(context.Background(), "0xzora")
	assert.ErrorContains(t, err, "502")
	assert.ErrorContains(t, err, "sequencer down")
}

func TestUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.GetTransaction(context.Background(), "0xzora")
	assert.ErrorContains(t, err, "401")
}
