package keeper

import (
	"context"
	"fmt"
	"time"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

// Keeper maintains the state of the oracle: assets, live report sets,
// published prices, node identities, and the governance committee.
type Keeper struct {
	storeKey  storetypes.StoreKey
	authority string // contract owner, holds the fast-path admin capability
	metrics   *OracleMetrics
}

// NewKeeper creates a new oracle Keeper instance
func NewKeeper(storeKey storetypes.StoreKey, authority string) Keeper {
	if err := types.ValidateAccountID(authority); err != nil {
		panic(fmt.Sprintf("invalid oracle owner: %s", err))
	}

	return Keeper{
		storeKey:  storeKey,
		authority: authority,
		metrics:   NewOracleMetrics(),
	}
}

// Logger returns a module-specific logger
func (k Keeper) Logger(ctx context.Context) log.Logger {
	return sdk.UnwrapSDKContext(ctx).Logger().With("module", fmt.Sprintf("x/%s", types.ModuleName))
}

// GetAuthority returns the owner account
func (k Keeper) GetAuthority() string {
	return k.authority
}

// getStore returns the root KV store of the oracle
func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	return sdk.UnwrapSDKContext(ctx).KVStore(k.storeKey)
}

// now returns the execution environment's clock in nanoseconds. Block times
// before the Unix epoch read as zero.
func (k Keeper) now(ctx context.Context) uint64 {
	t := sdk.UnwrapSDKContext(ctx).BlockTime()
	if t.Before(time.Unix(0, 0)) {
		return 0
	}
	return uint64(t.UnixNano())
}

func (k Keeper) emit(ctx context.Context, eventType string, attrs ...sdk.Attribute) {
	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(sdk.NewEvent(eventType, attrs...))
}

func (k Keeper) assertOwner(caller string) error {
	if caller == "" {
		return types.ErrMissingCaller
	}
	if caller != k.authority {
		return types.ErrUnauthorized.Wrapf("%s is not the owner", caller)
	}
	return nil
}

func saturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

func saturatingAdd(a, b uint64) uint64 {
	if a+b < a {
		return ^uint64(0)
	}
	return a + b
}
