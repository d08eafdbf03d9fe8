package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CheckSendsBatchAndKey(t *testing.T) {
	var gotItems []CheckItem
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/inventory/check", r.URL.Path)
		gotKey = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotItems))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"barcode":"A","skuCode":"SKU-A","name":"Apple","quantity":10,"inStock":true,"unitPrice":30.5}]`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL+"/", srv.Client())
	require.NoError(t, err)
	campaign := int64(4)
	snapshots, err := client.Check(context.Background(), []CheckItem{{Barcode: "A", Quantity: 2, CampaignID: &campaign}}, WithIdempotencyKey(" sale-1 "))
	require.NoError(t, err)

	assert.Equal(t, "sale-1", gotKey)
	require.Len(t, gotItems, 1)
	assert.Equal(t, int64(4), *gotItems[0].CampaignID)
	require.Len(t, snapshots, 1)
	assert.True(t, snapshots[0].InStock)
	assert.True(t, snapshots[0].UnitPrice.Equal(decimal.RequireFromString("30.5")))
}

func TestClient_CheckEmptyResponse(t *testing.T) {
	for _, body := range []string{"", "[]", "null"} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		client, err := NewClient(srv.URL, srv.Client())
		require.NoError(t, err)
		_, err = client.Check(context.Background(), []CheckItem{{Barcode: "A", Quantity: 1}})
		assert.ErrorIs(t, err, ErrEmptyResponse, "body %q", body)
		srv.Close()
	}
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"message":"maintenance"}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, srv.Client())
	require.NoError(t, err)
	err = client.Adjust(context.Background(), []AdjustItem{{Barcode: "A", Quantity: 1}})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "maintenance", apiErr.Message)
	assert.True(t, apiErr.Retryable())
}

func TestClient_AdjustIgnoresBody(t *testing.T) {
	var gotItems []AdjustItem
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/inventory/adjust", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotItems))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, srv.Client())
	require.NoError(t, err)
	require.NoError(t, client.Adjust(context.Background(), []AdjustItem{{Barcode: "A", Quantity: 2}}))
	assert.Equal(t, []AdjustItem{{Barcode: "A", Quantity: 2}}, gotItems)
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient("", nil)
	assert.Error(t, err)
	_, err = NewClient("inventory.local", nil)
	assert.Error(t, err)
}

func TestClient_BasePathAndNoKey(t *testing.T) {
	var gotPath string
	var hadKey bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, hadKey = r.Header["Idempotency-Key"]
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL+"/stock", srv.Client())
	require.NoError(t, err)
	require.NoError(t, client.Adjust(context.Background(), []AdjustItem{{Barcode: "A", Quantity: 1}}, WithIdempotencyKey("  ")))
	assert.Equal(t, "/stock/inventory/adjust", gotPath)
	assert.False(t, hadKey)
}

func TestParseCheckInventoryResponse_ErrorBody(t *testing.T) {
	rsp := &http.Response{
		StatusCode: http.StatusConflict,
		Status:     "409 Conflict",
		Body:       io.NopCloser(strings.NewReader(`{"status":"reserved elsewhere"}`)),
	}
	parsed, err := ParseCheckInventoryResponse(rsp)
	require.NoError(t, err)
	assert.Nil(t, parsed.JSON200)
	require.NotNil(t, parsed.JSONDefault)
	assert.Equal(t, "reserved elsewhere", errorMessage(parsed.JSONDefault, parsed.Status()))
}
