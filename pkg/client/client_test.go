package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

func TestNewRejectsBadURLs(t *testing.T) {
	for _, raw := range []string{"", "localhost:8080", "ftp://host", "://"} {
		_, err := New(raw)
		require.Error(t, err, raw)
	}

	c, err := New("http://localhost:8080/")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080", c.baseURL)
}

func TestBroadcastSendsTokenAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/tx/report_price", r.URL.Path)
		require.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.Equal(t, "feeder-test", r.Header.Get("User-Agent"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var msg types.MsgReportPrice
		require.NoError(t, json.Unmarshal(body, &msg))
		require.Equal(t, "BTC", msg.AssetID)
		require.Equal(t, sdkmath.NewUint(3550000), msg.Multiplier)

		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"version":7,"data":{},"events":[{"type":%q,"attributes":{%q:"BTC"}}]}`,
			types.EventTypePriceAggregated, types.AttributeKeyAsset)
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithToken("secret-token"), WithUserAgent("feeder-test"))
	require.NoError(t, err)

	res, err := c.ReportPrice(context.Background(), "BTC", sdkmath.NewUint(3550000), 2)
	require.NoError(t, err)
	require.Equal(t, int64(7), res.Version)

	event, ok := res.Event(types.EventTypePriceAggregated)
	require.True(t, ok)
	require.Equal(t, "BTC", event.Attributes[types.AttributeKeyAsset])

	_, ok = res.Event(types.EventTypePriceCleared)
	require.False(t, ok)
}

func TestProposeActionDecodesID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/tx/propose_action", r.URL.Path)

		var msg types.MsgProposeAction
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		require.Equal(t, types.Pause{}, msg.Action)

		_, _ = w.Write([]byte(`{"version":3,"data":{"proposal_id":4},"events":[]}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	id, err := c.ProposeAction(context.Background(), types.Pause{})
	require.NoError(t, err)
	require.Equal(t, uint64(4), id)
}

func TestAPIErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
		class   types.ErrorClass
	}{
		{
			name:    "structured",
			status:  http.StatusNotFound,
			body:    `{"error":"price not available: BTC","code":"not_found"}`,
			message: "price not available: BTC",
			class:   types.ClassNotFound,
		},
		{
			name:    "plain text",
			status:  http.StatusBadGateway,
			body:    "upstream unavailable\n",
			message: "upstream unavailable",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c, err := New(srv.URL)
			require.NoError(t, err)

			_, err = c.Price(context.Background(), "BTC")
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tc.status, apiErr.StatusCode)
			require.Equal(t, tc.message, apiErr.Message)
			require.Equal(t, tc.class == types.ClassNotFound, IsNotFound(err))
		})
	}
}

func TestQueryPaths(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.RequestURI())
		require.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.PythPriceNoOlderThan(ctx, "ETH/USD", 60)
	require.NoError(t, err)
	_, err = c.PythPriceUnsafe(ctx, "ETH")
	require.NoError(t, err)
	_, err = c.IsAuthorized(ctx, "node-a")
	require.NoError(t, err)
	_, err = c.Proposal(ctx, 9)
	require.NoError(t, err)

	require.Equal(t, []string{
		"/v1/pyth/price/ETH%2FUSD?max_age=60",
		"/v1/pyth/unsafe/ETH",
		"/v1/nodes/node-a/authorized",
		"/v1/governance/proposals/9",
	}, paths)
}
