package keeper

import (
	"context"
	"fmt"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

// AddAsset registers a new priced instrument. Ids are unique and immutable.
func (k Keeper) AddAsset(ctx context.Context, caller string, asset types.Asset) error {
	if err := k.assertOwner(caller); err != nil {
		return err
	}
	if err := asset.Validate(); err != nil {
		return err
	}
	if k.hasKey(ctx, GetAssetKey(asset.ID)) {
		return types.ErrAssetExists.Wrapf("asset %s", asset.ID)
	}

	if err := k.setAsset(ctx, asset); err != nil {
		return err
	}

	k.emit(ctx, types.EventTypeAssetAdded,
		sdk.NewAttribute(types.AttributeKeyAsset, asset.ID),
		sdk.NewAttribute(types.AttributeKeyDecimals, fmt.Sprintf("%d", asset.Decimals)),
	)
	k.metrics.AssetsTracked.Inc()
	k.Logger(ctx).Info("asset added", "asset", asset.ID, "decimals", asset.Decimals, "min_sources", asset.MinSources)
	return nil
}

func (k Keeper) setAsset(ctx context.Context, asset types.Asset) error {
	return k.setJSON(ctx, GetAssetKey(asset.ID), asset)
}

// GetAsset returns an asset definition by id
func (k Keeper) GetAsset(ctx context.Context, assetID string) (types.Asset, bool) {
	var asset types.Asset
	found, err := k.getJSON(ctx, GetAssetKey(assetID), &asset)
	if err != nil {
		k.Logger(ctx).Error("failed to decode asset", "asset", assetID, "error", err)
		return types.Asset{}, false
	}
	return asset, found
}

// GetAssets returns every asset definition in id order
func (k Keeper) GetAssets(ctx context.Context) []types.Asset {
	iter := storetypes.KVStorePrefixIterator(k.getStore(ctx), types.AssetKeyPrefix)
	defer iter.Close()

	assets := []types.Asset{}
	for ; iter.Valid(); iter.Next() {
		var asset types.Asset
		if err := unmarshalValue(iter.Value(), &asset); err != nil {
			k.Logger(ctx).Error("failed to decode asset", "key", fmt.Sprintf("%X", iter.Key()), "error", err)
			continue
		}
		assets = append(assets, asset)
	}
	return assets
}
