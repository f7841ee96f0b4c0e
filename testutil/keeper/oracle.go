package keeper

import (
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/tee-oracle/x/oracle/keeper"
	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

// OracleOwner is the owner account of keepers built by OracleKeeper
const OracleOwner = "owner.test"

// OracleKeeper creates a test keeper over an in-memory store. The returned
// context starts at block time zero with default params.
func OracleKeeper(t testing.TB) (keeper.Keeper, sdk.Context) {
	storeKey := storetypes.NewKVStoreKey(types.StoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	require.NoError(t, stateStore.LoadLatestVersion())

	k := keeper.NewKeeper(storeKey, OracleOwner)

	ctx := sdk.NewContext(stateStore, cmtproto.Header{}, false, log.NewNopLogger())
	ctx = AtNanos(ctx, 0)
	require.NoError(t, k.SetParams(ctx, types.DefaultParams()))

	return k, ctx
}

// AtNanos returns ctx with its block time set to ns nanoseconds after the epoch
func AtNanos(ctx sdk.Context, ns uint64) sdk.Context {
	return ctx.WithBlockTime(time.Unix(0, int64(ns)))
}
