package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/paw-chain/tee-oracle/app/telemetry"
	"github.com/paw-chain/tee-oracle/pkg/feeder"
	"github.com/paw-chain/tee-oracle/pkg/pricecache"
	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

const (
	// EnvPrefix is the prefix of environment variable overrides
	EnvPrefix = "ORACLED"

	// ConfigDir and ConfigFileName locate config.toml under the home directory
	ConfigDir      = "config"
	ConfigFileName = "config.toml"

	// DataDir holds the entity store under the home directory
	DataDir = "data"

	// DefaultGenesisFileName is written by init next to config.toml
	DefaultGenesisFileName = "genesis.json"

	DBBackendGoLevelDB = "goleveldb"
	DBBackendMemDB     = "memdb"
)

// DefaultHome returns $HOME/.oracled
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".oracled"
	}
	return filepath.Join(home, ".oracled")
}

// Config is the daemon configuration.
type Config struct {
	LogLevel        string `mapstructure:"log_level"`
	LogFormat       string `mapstructure:"log_format"`
	Owner           string `mapstructure:"owner"`
	DBBackend       string `mapstructure:"db_backend"`
	GenesisFile     string `mapstructure:"genesis_file"`
	CheckInvariants bool   `mapstructure:"check_invariants"`

	API       APIConfig         `mapstructure:"api"`
	Metrics   MetricsConfig     `mapstructure:"metrics"`
	Telemetry telemetry.Config  `mapstructure:"telemetry"`
	Redis     pricecache.Config `mapstructure:"redis"`
	Feeder    feeder.Config     `mapstructure:"feeder"`

	home string
}

// APIConfig configures the REST server.
type APIConfig struct {
	Listen         string        `mapstructure:"listen"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	JWTIssuer      string        `mapstructure:"jwt_issuer"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
	CORSOrigins    []string      `mapstructure:"cors_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`

	// AuditDir receives the JSON audit trail of state-changing calls. Empty
	// disables it.
	AuditDir string `mapstructure:"audit_dir"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// Home returns the home directory the config was loaded from
func (c Config) Home() string {
	return c.home
}

// DataPath returns the directory of the entity store
func (c Config) DataPath() string {
	return filepath.Join(c.home, DataDir)
}

// GenesisPath resolves the genesis file relative to the config directory
func (c Config) GenesisPath() string {
	if c.GenesisFile == "" {
		return filepath.Join(c.home, ConfigDir, DefaultGenesisFileName)
	}
	if filepath.IsAbs(c.GenesisFile) {
		return c.GenesisFile
	}
	return filepath.Join(c.home, ConfigDir, c.GenesisFile)
}

// Validate checks the settings the daemon cannot start without
func (c Config) Validate() error {
	if err := types.ValidateAccountID(c.Owner); err != nil {
		return fmt.Errorf("owner: %w", err)
	}
	switch c.DBBackend {
	case DBBackendGoLevelDB, DBBackendMemDB:
	default:
		return fmt.Errorf("unsupported db_backend %q", c.DBBackend)
	}
	if c.API.Listen != "" && c.API.JWTSecret == "" {
		return errors.New("api.jwt_secret is required when the API is enabled")
	}
	if c.API.RateLimitRPS < 0 {
		return errors.New("api.rate_limit_rps cannot be negative")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("owner", "")
	v.SetDefault("db_backend", DBBackendGoLevelDB)
	v.SetDefault("genesis_file", DefaultGenesisFileName)
	v.SetDefault("check_invariants", false)

	v.SetDefault("api.listen", "127.0.0.1:8080")
	v.SetDefault("api.jwt_secret", "")
	v.SetDefault("api.jwt_issuer", "oracled")
	v.SetDefault("api.rate_limit_rps", 20.0)
	v.SetDefault("api.rate_limit_burst", 40)
	v.SetDefault("api.cors_origins", []string{})
	v.SetDefault("api.read_timeout", 15*time.Second)
	v.SetDefault("api.write_timeout", 15*time.Second)
	v.SetDefault("api.audit_dir", "")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.listen", "127.0.0.1:26660")

	tel := telemetry.DefaultConfig()
	v.SetDefault("telemetry.enabled", tel.Enabled)
	v.SetDefault("telemetry.otlp_endpoint", tel.OTLPEndpoint)
	v.SetDefault("telemetry.sample_rate", tel.SampleRate)
	v.SetDefault("telemetry.environment", tel.Environment)
	v.SetDefault("telemetry.prometheus_enabled", tel.PrometheusEnabled)

	redis := pricecache.DefaultConfig()
	v.SetDefault("redis.enabled", redis.Enabled)
	v.SetDefault("redis.addr", redis.Addr)
	v.SetDefault("redis.password", redis.Password)
	v.SetDefault("redis.db", redis.DB)
	v.SetDefault("redis.prefix", redis.Prefix)
	v.SetDefault("redis.channel", redis.Channel)
	v.SetDefault("redis.flush_timeout", redis.FlushTimeout)

	fd := feeder.DefaultConfig()
	v.SetDefault("feeder.api_url", fd.APIURL)
	v.SetDefault("feeder.token", fd.Token)
	v.SetDefault("feeder.node", fd.Node)
	v.SetDefault("feeder.interval", fd.Interval)
	v.SetDefault("feeder.request_timeout", fd.RequestTimeout)
	v.SetDefault("feeder.asset_delay", fd.AssetDelay)
	v.SetDefault("feeder.code_hash", fd.CodeHash)
	v.SetDefault("feeder.mr_enclave", fd.MrEnclave)
	v.SetDefault("feeder.attestation_issued_at", fd.AttestationIssuedAt)
	v.SetDefault("feeder.assets", []feeder.AssetConfig{})
}

// NewViper returns a viper instance with defaults and environment overrides
// bound, reading config.toml from home when it exists.
func NewViper(home string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := filepath.Join(home, ConfigDir, ConfigFileName)
	v.SetConfigFile(path)
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	return v, nil
}

// LoadConfig decodes the configuration from v
func LoadConfig(v *viper.Viper, home string) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.home = home
	return cfg, nil
}

// WriteDefaultConfig writes config.toml with every default and the given
// owner. An existing file is left untouched unless overwrite is set.
func WriteDefaultConfig(home, owner string, overwrite bool) (string, error) {
	dir := filepath.Join(home, ConfigDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	v := viper.New()
	setDefaults(v)
	v.Set("owner", owner)

	path := filepath.Join(dir, ConfigFileName)
	if overwrite {
		return path, v.WriteConfigAs(path)
	}
	return path, v.SafeWriteConfigAs(path)
}
