package feeder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func decode(t *testing.T, raw string) interface{} {
	t.Helper()
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.UseNumber()
	var doc interface{}
	require.NoError(t, decoder.Decode(&doc))
	return doc
}

func TestExtractPath(t *testing.T) {
	doc := decode(t, `{"bitcoin":{"usd":35500.5},"data":[{"price":"1.25"},{"price":null}],"n":1}`)

	tests := []struct {
		name string
		path string
		want interface{}
		err  bool
	}{
		{name: "nested object", path: "bitcoin.usd", want: json.Number("35500.5")},
		{name: "array index", path: "data.0.price", want: "1.25"},
		{name: "null leaf", path: "data.1.price", err: true},
		{name: "index out of range", path: "data.5.price", err: true},
		{name: "index into object", path: "bitcoin.0", err: true},
		{name: "missing key", path: "ethereum.usd", err: true},
		{name: "key into number", path: "n.value", err: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractPath(doc, tc.path)
			if tc.err {
				require.ErrorIs(t, err, ErrPathNotFound)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
		err   bool
	}{
		{name: "number", value: json.Number("35500.5"), want: "35500.5"},
		{name: "string", value: " 0.000123 ", want: "0.000123"},
		{name: "exponent", value: json.Number("1.5e3"), want: "1500"},
		{name: "float", value: 2.5, want: "2.5"},
		{name: "excess precision truncated", value: "1.1234567890123456789", want: "1.123456789012345678"},
		{name: "zero", value: json.Number("0"), err: true},
		{name: "negative", value: "-1", err: true},
		{name: "garbage", value: "n/a", err: true},
		{name: "bool", value: true, err: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParsePrice(tc.value)
			if tc.err {
				require.ErrorIs(t, err, ErrInvalidValue)
				return
			}
			require.NoError(t, err)
			require.True(t, sdkmath.LegacyMustNewDecFromStr(tc.want).Equal(got), "got %s", got)
		})
	}
}

func dec(s string) sdkmath.LegacyDec {
	return sdkmath.LegacyMustNewDecFromStr(s)
}

func TestMedian(t *testing.T) {
	_, err := Median(nil)
	require.ErrorIs(t, err, ErrNoPrices)

	got, err := Median([]sdkmath.LegacyDec{dec("3"), dec("1"), dec("2")})
	require.NoError(t, err)
	require.Equal(t, "2.000000000000000000", got.String())

	prices := []sdkmath.LegacyDec{dec("4"), dec("1"), dec("3"), dec("2")}
	got, err = Median(prices)
	require.NoError(t, err)
	require.Equal(t, "2.500000000000000000", got.String())
	require.Equal(t, "4.000000000000000000", prices[0].String())
}

func TestToMultiplier(t *testing.T) {
	tests := []struct {
		price    string
		decimals uint32
		want     uint64
	}{
		{"35500.123", 2, 3550012},
		{"35500.129", 2, 3550012},
		{"0.5", 0, 0},
		{"1", 18, 1_000_000_000_000_000_000},
		{"12.3456", 4, 123456},
	}

	for _, tc := range tests {
		got, err := ToMultiplier(dec(tc.price), tc.decimals)
		require.NoError(t, err)
		require.Equal(t, sdkmath.NewUint(tc.want), got, "%s at %d decimals", tc.price, tc.decimals)
	}

	_, err := ToMultiplier(dec("-1"), 2)
	require.ErrorIs(t, err, ErrInvalidValue)
}

func TestMedianBoundedByInputs(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.SliceOfN(rapid.Uint64Range(1, 1<<40), 1, 25).Draw(t, "prices")
		prices := make([]sdkmath.LegacyDec, len(raw))
		lo, hi := raw[0], raw[0]
		for i, v := range raw {
			prices[i] = sdkmath.LegacyNewDecFromInt(sdkmath.NewIntFromUint64(v))
			lo = min(lo, v)
			hi = max(hi, v)
		}

		median, err := Median(prices)
		if err != nil {
			t.Fatalf("median: %v", err)
		}
		if median.LT(sdkmath.LegacyNewDecFromInt(sdkmath.NewIntFromUint64(lo))) ||
			median.GT(sdkmath.LegacyNewDecFromInt(sdkmath.NewIntFromUint64(hi))) {
			t.Fatalf("median %s outside [%d, %d]", median, lo, hi)
		}
	})
}

func TestFetchAssetTracksFailures(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "TEE-Oracle-Feeder/1.0", r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/a":
			_, _ = w.Write([]byte(`{"price":{"usd":100}}`))
		case "/b":
			_, _ = w.Write([]byte(`[{"last":"110.5"}]`))
		case "/flaky":
			if !healthy.Load() {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(`{"p":120}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	asset := AssetConfig{ID: "BTC", Decimals: 2, Sources: []SourceConfig{
		{Name: "a", URL: srv.URL + "/a", Path: "price.usd"},
		{Name: "b", URL: srv.URL + "/b", Path: "0.last"},
		{Name: "flaky", URL: srv.URL + "/flaky", Path: "p"},
	}}

	fetcher := NewFetcher(srv.Client(), log.NewNopLogger())
	ctx := context.Background()

	obs, err := fetcher.FetchAsset(ctx, asset)
	require.NoError(t, err)
	require.Equal(t, 3, obs.Sources)
	require.True(t, dec("110.5").Equal(obs.Price))

	healthy.Store(false)
	for i := 0; i < FailureWarnThreshold; i++ {
		obs, err = fetcher.FetchAsset(ctx, asset)
		require.NoError(t, err)
	}
	require.Equal(t, 2, obs.Sources)
	require.True(t, dec("105.25").Equal(obs.Price))
	require.Equal(t, map[string]int{"a": 0, "b": 0, "flaky": FailureWarnThreshold}, fetcher.Failures())

	healthy.Store(true)
	_, err = fetcher.FetchAsset(ctx, asset)
	require.NoError(t, err)
	require.Equal(t, 0, fetcher.Failures()["flaky"])

	_, err = fetcher.FetchAsset(ctx, AssetConfig{ID: "X", Sources: []SourceConfig{{Name: "gone", URL: srv.URL + "/gone"}}})
	require.ErrorIs(t, err, ErrNoPrices)
}
