package feeder

import (
	"errors"
	"fmt"
	"time"

	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

// SourceConfig is one HTTP JSON price source. Path is a dot path into the
// response body; numeric segments index arrays.
type SourceConfig struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
	Path string `mapstructure:"path"`
}

// AssetConfig lists the sources of one asset
type AssetConfig struct {
	ID       string         `mapstructure:"id"`
	Symbol   string         `mapstructure:"symbol"`
	Decimals uint32         `mapstructure:"decimals"`
	Sources  []SourceConfig `mapstructure:"sources"`
}

// Config configures the reporter node loop.
type Config struct {
	APIURL string `mapstructure:"api_url"`
	Token  string `mapstructure:"token"`

	// Node is the account the token authenticates. When empty it is read
	// from the token subject.
	Node string `mapstructure:"node"`

	Interval       time.Duration `mapstructure:"interval"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	AssetDelay     time.Duration `mapstructure:"asset_delay"`

	CodeHash  string `mapstructure:"code_hash"`
	MrEnclave string `mapstructure:"mr_enclave"`
	// AttestationIssuedAt is the attestation time in nanoseconds; zero means
	// the time of registration.
	AttestationIssuedAt uint64 `mapstructure:"attestation_issued_at"`

	Assets []AssetConfig `mapstructure:"assets"`
}

// DefaultConfig returns the feeder defaults
func DefaultConfig() Config {
	return Config{
		APIURL:         "http://127.0.0.1:8080",
		Interval:       60 * time.Second,
		RequestTimeout: 5 * time.Second,
		AssetDelay:     time.Second,
	}
}

// Validate checks the settings the feeder cannot run without
func (c Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("feeder.api_url is required")
	}
	if c.Token == "" {
		return errors.New("feeder.token is required")
	}
	if c.Interval <= 0 {
		return errors.New("feeder.interval must be positive")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("feeder.request_timeout must be positive")
	}
	if c.AssetDelay < 0 {
		return errors.New("feeder.asset_delay cannot be negative")
	}
	if c.CodeHash == "" || c.MrEnclave == "" {
		return errors.New("feeder.code_hash and feeder.mr_enclave are required")
	}
	if len(c.Assets) == 0 {
		return errors.New("feeder.assets cannot be empty")
	}

	seen := make(map[string]bool, len(c.Assets))
	for _, asset := range c.Assets {
		if asset.ID == "" {
			return errors.New("asset id cannot be empty")
		}
		if seen[asset.ID] {
			return fmt.Errorf("duplicate asset %s", asset.ID)
		}
		seen[asset.ID] = true

		if asset.Decimals > types.MaxDecimals {
			return fmt.Errorf("asset %s: decimals %d exceed %d", asset.ID, asset.Decimals, types.MaxDecimals)
		}
		if len(asset.Sources) == 0 {
			return fmt.Errorf("asset %s has no sources", asset.ID)
		}
		for _, source := range asset.Sources {
			if source.Name == "" || source.URL == "" {
				return fmt.Errorf("asset %s: source name and url are required", asset.ID)
			}
		}
	}
	return nil
}
