package cli

import (
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/paw-chain/tee-oracle/pkg/client"
)

// Flag constants for oracle CLI commands
const (
	// Connection flags
	FlagAPI     = "api"
	FlagToken   = "token"
	FlagTimeout = "timeout"

	// Asset flags
	FlagName       = "name"
	FlagSymbol     = "symbol"
	FlagMinSources = "min-sources"
	FlagInactive   = "inactive"

	// Price flags
	FlagMaxAge = "max-age"
	FlagUnsafe = "unsafe"

	// Attestation flags
	FlagIssuedAt = "issued-at"

	// Policy flags
	FlagRecencyThreshold = "recency-threshold"
	FlagMinReportCount   = "min-report-count"

	// Governance flags
	FlagProposers = "proposers"
	FlagVoters    = "voters"
	FlagTimelock  = "timelock"
	FlagQuorumBps = "quorum-bps"

	FlagDetailed = "detailed"
)

// EnvToken supplies the bearer token when --token is not set
const EnvToken = "ORACLED_TOKEN"

// DefaultAPI is the default server address
const DefaultAPI = "http://127.0.0.1:8080"

// FlagSetClient returns the flags that locate the API server and identify
// the caller
func FlagSetClient() *flag.FlagSet {
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.String(FlagAPI, DefaultAPI, "oracle API server address")
	fs.String(FlagToken, "", "bearer token identifying the caller (default $"+EnvToken+")")
	fs.Duration(FlagTimeout, client.DefaultTimeout, "request timeout")
	return fs
}

// AddClientFlags adds the connection flags to cmd and its subcommands
func AddClientFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().AddFlagSet(FlagSetClient())
}

// NewClient builds an API client from the connection flags
func NewClient(cmd *cobra.Command) (*client.Client, error) {
	apiURL, err := cmd.Flags().GetString(FlagAPI)
	if err != nil {
		return nil, err
	}
	token, err := cmd.Flags().GetString(FlagToken)
	if err != nil {
		return nil, err
	}
	if token == "" {
		token = os.Getenv(EnvToken)
	}
	timeout, err := cmd.Flags().GetDuration(FlagTimeout)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = client.DefaultTimeout
	}

	return client.New(apiURL,
		client.WithToken(token),
		client.WithTimeout(timeout),
		client.WithUserAgent("oracled-cli/1.0"),
	)
}

// printJSON writes v to the command output as indented JSON
func printJSON(cmd *cobra.Command, v interface{}) error {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(append(bz, '\n'))
	return err
}

// durationNanos converts a duration flag to the oracle's nanosecond unit
func durationNanos(d time.Duration) uint64 {
	if d < 0 {
		return 0
	}
	return uint64(d.Nanoseconds())
}
