package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srv *httptest.Server) *ChapaClient {
	return NewChapaClient(Config{
		SecretKey: "CHASECK_TEST-secret",
		BaseURL:   srv.URL,
		Timeout:   2 * time.Second,
	})
}

func TestInitializeTransaction_Success(t *testing.T) {
	var got InitializeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer CHASECK_TEST-secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","message":"Hosted Link","data":{"checkout_url":"https://checkout.chapa.co/checkout/payment/abc123"}}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv).InitializeTransaction(t.Context(), InitializeRequest{
		Amount:      "500.00",
		Currency:    "ETB",
		Email:       "guest@example.com",
		FirstName:   "Abebe",
		TxRef:       "tx_BK1_deadbeef",
		CallbackURL: "https://api.example.com/v1/payments/verify-callback",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.chapa.co/checkout/payment/abc123", resp.CheckoutURL)

	assert.Equal(t, "500.00", got.Amount)
	assert.Equal(t, "ETB", got.Currency)
	assert.Equal(t, "tx_BK1_deadbeef", got.TxRef)
}

func TestInitializeTransaction_ProviderRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":"failed","message":"Invalid currency"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).InitializeTransaction(t.Context(), InitializeRequest{TxRef: "tx_BK1_deadbeef"})
	require.Error(t, err)

	var gerr *GatewayError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "initialize", gerr.Op)
	assert.Equal(t, http.StatusBadRequest, gerr.StatusCode)
	assert.Contains(t, gerr.Body, "Invalid currency")
}

func TestInitializeTransaction_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway timeout</html>`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).InitializeTransaction(t.Context(), InitializeRequest{TxRef: "tx_BK1_deadbeef"})

	var gerr *GatewayError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "initialize", gerr.Op)
}

func TestInitializeTransaction_MissingCheckoutURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).InitializeTransaction(t.Context(), InitializeRequest{TxRef: "tx_BK1_deadbeef"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing checkout_url")
}

func TestVerifyTransaction_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/transaction/verify/tx_BK1_deadbeef", r.URL.Path)
		assert.Equal(t, "Bearer CHASECK_TEST-secret", r.Header.Get("Authorization"))

		w.Write([]byte(`{"status":"success","data":{"status":"Success","reference":"CH-998877","tx_ref":"tx_BK1_deadbeef","amount":500,"currency":"ETB"}}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv).VerifyTransaction(t.Context(), "tx_BK1_deadbeef")
	require.NoError(t, err)
	assert.Equal(t, VerifiedSuccess, resp.Status)
	assert.Equal(t, "CH-998877", resp.GatewayRef)
	assert.Equal(t, "500", resp.Amount)
	assert.Equal(t, "ETB", resp.Currency)
}

func TestVerifyTransaction_FallsBackToTxRef(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{"status":"failed","tx_ref":"tx_BK1_deadbeef","amount":"500.00","currency":"ETB"}}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv).VerifyTransaction(t.Context(), "tx_BK1_deadbeef")
	require.NoError(t, err)
	assert.Equal(t, VerifiedFailed, resp.Status)
	assert.Equal(t, "tx_BK1_deadbeef", resp.GatewayRef)
	assert.Equal(t, "500.00", resp.Amount)
}

func TestVerifyTransaction_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status":"failed","message":"Transaction not found"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).VerifyTransaction(t.Context(), "tx_NOPE_00000000")

	var gerr *GatewayError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "verify", gerr.Op)
	assert.Equal(t, http.StatusNotFound, gerr.StatusCode)
}

func TestVerifyTransaction_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := newTestClient(srv).VerifyTransaction(t.Context(), "tx_BK1_deadbeef")

	var gerr *GatewayError
	require.True(t, errors.As(err, &gerr))
	assert.Zero(t, gerr.StatusCode)
	require.NotNil(t, gerr.Err)
}
