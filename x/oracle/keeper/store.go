package keeper

import (
	"context"
	"encoding/json"
	"fmt"

	storetypes "cosmossdk.io/store/types"

	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

var memberMarker = []byte{0x01}

// getJSON decodes the value at key into out. A missing key reports false.
func (k Keeper) getJSON(ctx context.Context, key []byte, out any) (bool, error) {
	bz := k.getStore(ctx).Get(key)
	if bz == nil {
		return false, nil
	}
	if err := json.Unmarshal(bz, out); err != nil {
		return true, types.ErrStateCorruption.Wrapf("key %X: %s", key, err)
	}
	return true, nil
}

func unmarshalValue(bz []byte, out any) error {
	if err := json.Unmarshal(bz, out); err != nil {
		return types.ErrStateCorruption.Wrap(err.Error())
	}
	return nil
}

func (k Keeper) setJSON(ctx context.Context, key []byte, v any) error {
	bz, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %T: %w", v, err)
	}
	k.getStore(ctx).Set(key, bz)
	return nil
}

func (k Keeper) hasKey(ctx context.Context, key []byte) bool {
	return k.getStore(ctx).Has(key)
}

func (k Keeper) setMember(ctx context.Context, key []byte) {
	k.getStore(ctx).Set(key, memberMarker)
}

func (k Keeper) deleteKey(ctx context.Context, key []byte) {
	k.getStore(ctx).Delete(key)
}

// members returns the suffixes of every key under prefix in key order.
func (k Keeper) members(ctx context.Context, prefix []byte) []string {
	iter := storetypes.KVStorePrefixIterator(k.getStore(ctx), prefix)
	defer iter.Close()

	var ids []string
	for ; iter.Valid(); iter.Next() {
		ids = append(ids, string(iter.Key()[len(prefix):]))
	}
	return ids
}

// clearPrefix deletes every key under prefix.
func (k Keeper) clearPrefix(ctx context.Context, prefix []byte) {
	store := k.getStore(ctx)
	iter := storetypes.KVStorePrefixIterator(store, prefix)

	var keys [][]byte
	for ; iter.Valid(); iter.Next() {
		keys = append(keys, iter.Key())
	}
	iter.Close()

	for _, key := range keys {
		store.Delete(key)
	}
}
