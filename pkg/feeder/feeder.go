// Package feeder is the reporter node loop. It fetches prices for each
// configured asset from HTTP JSON sources, takes the median, and submits it
// to the oracle as a fixed-point multiplier under the node's identity.
package feeder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/time/rate"

	"github.com/paw-chain/tee-oracle/pkg/client"
	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

// Oracle is the slice of the oracle API the feeder uses
type Oracle interface {
	IsAuthorized(ctx context.Context, node string) (bool, error)
	RegisterNode(ctx context.Context, codeHash string, attestation types.AttestationData) (*client.TxResponse, error)
	ReportPrice(ctx context.Context, assetID string, multiplier sdkmath.Uint, decimals uint32) (*client.TxResponse, error)
}

var _ Oracle = (*client.Client)(nil)

// Feeder reports prices on an interval
type Feeder struct {
	cfg     Config
	oracle  Oracle
	fetcher *Fetcher
	logger  log.Logger
	node    string
	limiter *rate.Limiter
	now     func() time.Time
}

// New creates a feeder reporting through oracle
func New(cfg Config, oracle Oracle, logger log.Logger) (*Feeder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	node := cfg.Node
	if node == "" {
		subject, err := TokenSubject(cfg.Token)
		if err != nil {
			return nil, err
		}
		node = subject
	}

	limit := rate.Inf
	if cfg.AssetDelay > 0 {
		limit = rate.Every(cfg.AssetDelay)
	}

	logger = logger.With("module", "feeder", "node", node)
	return &Feeder{
		cfg:     cfg,
		oracle:  oracle,
		fetcher: NewFetcher(&http.Client{Timeout: cfg.RequestTimeout}, logger),
		logger:  logger,
		node:    node,
		limiter: rate.NewLimiter(limit, 1),
		now:     time.Now,
	}, nil
}

// NewFromConfig creates a feeder talking to the API at cfg.APIURL
func NewFromConfig(cfg Config, logger log.Logger) (*Feeder, error) {
	api, err := client.New(cfg.APIURL,
		client.WithToken(cfg.Token),
		client.WithTimeout(cfg.RequestTimeout),
		client.WithUserAgent("oracled-feeder/1.0"),
	)
	if err != nil {
		return nil, err
	}
	return New(cfg, api, logger)
}

// TokenSubject reads the subject of a bearer token without verifying it
func TokenSubject(token string) (string, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return "", fmt.Errorf("failed to parse feeder token: %w", err)
	}
	if claims.Subject == "" {
		return "", errors.New("feeder token has no subject")
	}
	return claims.Subject, nil
}

// Node returns the account the feeder reports as
func (f *Feeder) Node() string {
	return f.node
}

// Fetcher returns the feeder's source fetcher
func (f *Feeder) Fetcher() *Fetcher {
	return f.fetcher
}

// EnsureRegistered registers the node with its attestation unless it is
// already authorized
func (f *Feeder) EnsureRegistered(ctx context.Context) error {
	authorized, err := f.oracle.IsAuthorized(ctx, f.node)
	if err != nil {
		return fmt.Errorf("failed to check authorization: %w", err)
	}
	if authorized {
		f.logger.Info("node already authorized")
		return nil
	}

	issuedAt := f.cfg.AttestationIssuedAt
	if issuedAt == 0 {
		issuedAt = uint64(f.now().UnixNano())
	}

	f.logger.Info("registering node", "code_hash", f.cfg.CodeHash)
	_, err = f.oracle.RegisterNode(ctx, f.cfg.CodeHash, types.AttestationData{
		MrEnclave: f.cfg.MrEnclave,
		IssuedAt:  issuedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to register node: %w", err)
	}
	f.logger.Info("node registered")
	return nil
}

// UpdatePrices fetches and reports every asset once, pacing assets by the
// configured delay. It returns the number of accepted reports.
func (f *Feeder) UpdatePrices(ctx context.Context) (int, error) {
	reported := 0
	for _, asset := range f.cfg.Assets {
		if err := f.limiter.Wait(ctx); err != nil {
			return reported, err
		}
		if err := f.updateAsset(ctx, asset); err != nil {
			f.logger.Error("price update failed", "asset", asset.ID, "error", err)
			continue
		}
		reported++
	}
	return reported, nil
}

func (f *Feeder) updateAsset(ctx context.Context, asset AssetConfig) error {
	obs, err := f.fetcher.FetchAsset(ctx, asset)
	if err != nil {
		return err
	}

	multiplier, err := ToMultiplier(obs.Price, asset.Decimals)
	if err != nil {
		return err
	}

	res, err := f.oracle.ReportPrice(ctx, asset.ID, multiplier, asset.Decimals)
	if err != nil {
		return fmt.Errorf("report rejected: %w", err)
	}

	outcome := "pending"
	if _, ok := res.Event(types.EventTypePriceAggregated); ok {
		outcome = "aggregated"
	}
	f.logger.Info("reported price",
		"asset", asset.ID,
		"price", obs.Price.String(),
		"multiplier", multiplier.String(),
		"sources", obs.Sources,
		"outcome", outcome,
	)
	return nil
}

// Run registers the node if needed, then updates prices immediately and on
// every interval until ctx is done
func (f *Feeder) Run(ctx context.Context) error {
	if err := f.EnsureRegistered(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(f.cfg.Interval)
	defer ticker.Stop()

	for {
		if _, err := f.UpdatePrices(ctx); err != nil && ctx.Err() == nil {
			f.logger.Error("update cycle aborted", "error", err)
		}

		select {
		case <-ctx.Done():
			f.logger.Info("feeder stopped")
			return nil
		case <-ticker.C:
		}
	}
}
