// Package oracleapp builds in-memory oracle applications for tests.
package oracleapp

import (
	"context"
	"sync"
	"testing"
	"time"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/tee-oracle/app"
	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

const (
	// Owner is the owner account of test apps
	Owner = "owner.test"

	CodeHash  = "9f2c1a"
	MrEnclave = "mr-enclave-1"
)

// Clock is a settable clock
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock at ns nanoseconds after the epoch
func NewClock(ns int64) *Clock {
	return &Clock{now: time.Unix(0, ns)}
}

// Now implements the app clock
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to ns nanoseconds after the epoch
func (c *Clock) Set(ns int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = time.Unix(0, ns)
}

// Advance moves the clock forward by d
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Setup creates an app over a fresh in-memory database with invariant
// checks enabled. The clock starts at one second after the epoch.
func Setup(t testing.TB, opts ...app.Option) (*app.OracleApp, *Clock) {
	t.Helper()
	return SetupWithDB(t, dbm.NewMemDB(), opts...)
}

// SetupWithDB is Setup over an existing database
func SetupWithDB(t testing.TB, db dbm.DB, opts ...app.Option) (*app.OracleApp, *Clock) {
	t.Helper()

	clock := NewClock(int64(time.Second))
	opts = append([]app.Option{app.WithClock(clock.Now), app.WithInvariantChecks(true)}, opts...)

	oracleApp, err := app.NewOracleApp(log.NewNopLogger(), db, Owner, nil, opts...)
	require.NoError(t, err)
	return oracleApp, clock
}

// Exec executes msg and requires it to succeed
func Exec(t testing.TB, a *app.OracleApp, msg types.Msg) *app.Result {
	t.Helper()
	res, err := a.Execute(context.Background(), msg)
	require.NoError(t, err)
	return res
}

// AddAsset registers an active asset
func AddAsset(t testing.TB, a *app.OracleApp, id string, decimals, minSources uint32) {
	t.Helper()
	Exec(t, a, &types.MsgAddAsset{Caller: Owner, Asset: types.Asset{
		ID:         id,
		Symbol:     id,
		Decimals:   decimals,
		Active:     true,
		MinSources: minSources,
	}})
}

// ApproveEnclave approves the shared test code hash and measurement
func ApproveEnclave(t testing.TB, a *app.OracleApp) {
	t.Helper()
	Exec(t, a, &types.MsgApproveCodeHash{Caller: Owner, CodeHash: CodeHash})
	Exec(t, a, &types.MsgApproveAttestation{Caller: Owner, CodeHash: CodeHash, MrEnclave: MrEnclave})
}

// AuthorizeNode whitelists operator, binds node to it and registers node
// with an attestation issued now. The enclave must already be approved.
func AuthorizeNode(t testing.TB, a *app.OracleApp, clock *Clock, operator, node string) {
	t.Helper()
	Exec(t, a, &types.MsgAddNodeOperator{Caller: Owner, Operator: operator})
	Exec(t, a, &types.MsgSetNodeAccount{Caller: operator, Node: node})
	Exec(t, a, &types.MsgRegisterNode{
		Caller:   node,
		CodeHash: CodeHash,
		Attestation: types.AttestationData{
			MrEnclave: MrEnclave,
			IssuedAt:  uint64(clock.Now().UnixNano()),
		},
	})
}

// Report submits a price from node
func Report(t testing.TB, a *app.OracleApp, node, asset string, multiplier uint64, decimals uint32) *app.Result {
	t.Helper()
	return Exec(t, a, &types.MsgReportPrice{
		Caller:     node,
		AssetID:    asset,
		Multiplier: sdkmath.NewUint(multiplier),
		Decimals:   decimals,
	})
}
