package feeder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
)

// FailureWarnThreshold is the number of consecutive failures after which a
// source is reported as unhealthy
const FailureWarnThreshold = 3

const maxBodySize = 1 << 20

var (
	ErrPathNotFound = errors.New("path not found")
	ErrInvalidValue = errors.New("invalid price value")
	ErrNoPrices     = errors.New("no source returned a price")
)

// ExtractPath walks a decoded JSON document along a dot path. Numeric
// segments index arrays; an empty path returns doc itself.
func ExtractPath(doc interface{}, path string) (interface{}, error) {
	if path == "" {
		return doc, nil
	}

	current := doc
	for _, segment := range strings.Split(path, ".") {
		if index, err := strconv.Atoi(segment); err == nil {
			arr, ok := current.([]interface{})
			if !ok || index < 0 || index >= len(arr) {
				return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
			}
			current = arr[index]
			continue
		}

		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}
		next, ok := obj[segment]
		if !ok || next == nil {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}
		current = next
	}
	return current, nil
}

// ParsePrice converts a JSON leaf into a positive decimal. Numbers and
// numeric strings are accepted.
func ParsePrice(value interface{}) (sdkmath.LegacyDec, error) {
	var raw string
	switch v := value.(type) {
	case json.Number:
		raw = v.String()
	case string:
		raw = strings.TrimSpace(v)
	case float64:
		raw = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return sdkmath.LegacyDec{}, fmt.Errorf("%w: %v", ErrInvalidValue, value)
	}

	price, err := parseDecimal(raw)
	if err != nil {
		return sdkmath.LegacyDec{}, fmt.Errorf("%w: %q", ErrInvalidValue, raw)
	}
	if !price.IsPositive() {
		return sdkmath.LegacyDec{}, fmt.Errorf("%w: %s is not positive", ErrInvalidValue, raw)
	}
	return price, nil
}

// parseDecimal accepts plain and exponent notation. Digits beyond the
// decimal precision are truncated.
func parseDecimal(raw string) (sdkmath.LegacyDec, error) {
	if strings.ContainsAny(raw, "eE") {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return sdkmath.LegacyDec{}, err
		}
		raw = strconv.FormatFloat(f, 'f', -1, 64)
	}

	if whole, frac, ok := strings.Cut(raw, "."); ok && len(frac) > sdkmath.LegacyPrecision {
		raw = whole + "." + frac[:sdkmath.LegacyPrecision]
	}
	return sdkmath.LegacyNewDecFromStr(raw)
}

// Median returns the median of prices; the mean of the middle pair for an
// even count. prices is not modified.
func Median(prices []sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	if len(prices) == 0 {
		return sdkmath.LegacyDec{}, ErrNoPrices
	}

	sorted := make([]sdkmath.LegacyDec, len(prices))
	copy(sorted, prices)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LT(sorted[j]) })

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], nil
	}
	return sorted[mid-1].Add(sorted[mid]).QuoInt64(2), nil
}

// ToMultiplier converts a decimal price to its fixed-point multiplier,
// truncating digits beyond decimals.
func ToMultiplier(price sdkmath.LegacyDec, decimals uint32) (sdkmath.Uint, error) {
	if price.IsNegative() {
		return sdkmath.Uint{}, fmt.Errorf("%w: negative price %s", ErrInvalidValue, price)
	}
	scale := sdkmath.LegacyNewDecFromInt(sdkmath.NewIntWithDecimal(1, int(decimals)))
	return sdkmath.NewUintFromBigInt(price.Mul(scale).TruncateInt().BigInt()), nil
}

// Fetcher reads prices from HTTP sources and tracks consecutive failures
// per source.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	logger     log.Logger

	mu       sync.Mutex
	failures map[string]int
}

// NewFetcher returns a fetcher using httpClient
func NewFetcher(httpClient *http.Client, logger log.Logger) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		userAgent:  "TEE-Oracle-Feeder/1.0",
		logger:     logger,
		failures:   make(map[string]int),
	}
}

// FetchSource reads one source
func (f *Fetcher) FetchSource(ctx context.Context, source SourceConfig) (sdkmath.LegacyDec, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.URL, nil)
	if err != nil {
		return sdkmath.LegacyDec{}, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return sdkmath.LegacyDec{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return sdkmath.LegacyDec{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	decoder := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize))
	decoder.UseNumber()

	var doc interface{}
	if err := decoder.Decode(&doc); err != nil {
		return sdkmath.LegacyDec{}, fmt.Errorf("failed to decode response: %w", err)
	}

	value, err := ExtractPath(doc, source.Path)
	if err != nil {
		return sdkmath.LegacyDec{}, err
	}
	return ParsePrice(value)
}

// Observation is the median price of an asset across its live sources
type Observation struct {
	AssetID string
	Price   sdkmath.LegacyDec
	Sources int
}

// FetchAsset reads every source of asset in order and returns the median of
// the successful ones.
func (f *Fetcher) FetchAsset(ctx context.Context, asset AssetConfig) (Observation, error) {
	prices := make([]sdkmath.LegacyDec, 0, len(asset.Sources))
	for _, source := range asset.Sources {
		price, err := f.FetchSource(ctx, source)
		if err != nil {
			failures := f.recordFailure(source.Name)
			f.logger.Error("failed to fetch price", "asset", asset.ID, "source", source.Name, "error", err)
			if failures >= FailureWarnThreshold {
				f.logger.Warn("source failing consecutively", "source", source.Name, "failures", failures)
			}
			continue
		}
		f.recordSuccess(source.Name)
		prices = append(prices, price)
	}

	median, err := Median(prices)
	if err != nil {
		return Observation{}, fmt.Errorf("asset %s: %w", asset.ID, err)
	}
	return Observation{AssetID: asset.ID, Price: median, Sources: len(prices)}, nil
}

func (f *Fetcher) recordFailure(source string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[source]++
	return f.failures[source]
}

func (f *Fetcher) recordSuccess(source string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[source] = 0
}

// Failures returns a copy of the consecutive failure counters
func (f *Fetcher) Failures() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int, len(f.failures))
	for source, n := range f.failures {
		out[source] = n
	}
	return out
}
