package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

// Pause stops price reporting. Pausing an already paused oracle is a no-op.
func (k Keeper) Pause(ctx context.Context, caller string) error {
	if err := k.assertOwner(caller); err != nil {
		return err
	}
	return k.pause(ctx, caller)
}

// Resume re-enables price reporting. Resuming a running oracle is a no-op.
func (k Keeper) Resume(ctx context.Context, caller string) error {
	if err := k.assertOwner(caller); err != nil {
		return err
	}
	return k.resume(ctx, caller)
}

func (k Keeper) pause(ctx context.Context, actor string) error {
	if k.IsPaused(ctx) {
		return nil
	}

	state := types.PauseState{
		Paused:   true,
		PausedBy: actor,
		PausedAt: k.now(ctx),
	}
	if err := k.setJSON(ctx, types.PauseStateKey, state); err != nil {
		return fmt.Errorf("pause: %w", err)
	}

	k.emit(ctx, types.EventTypePaused,
		sdk.NewAttribute(types.AttributeKeyActor, actor),
		sdk.NewAttribute(types.AttributeKeyTimestamp, fmt.Sprintf("%d", state.PausedAt)),
	)
	k.metrics.PausedState.Set(1)
	k.Logger(ctx).Warn("oracle paused", "actor", actor)
	return nil
}

func (k Keeper) resume(ctx context.Context, actor string) error {
	if !k.IsPaused(ctx) {
		return nil
	}

	k.deleteKey(ctx, types.PauseStateKey)

	k.emit(ctx, types.EventTypeResumed,
		sdk.NewAttribute(types.AttributeKeyActor, actor),
	)
	k.metrics.PausedState.Set(0)
	k.Logger(ctx).Info("oracle resumed", "actor", actor)
	return nil
}

// IsPaused reports whether price reporting is stopped
func (k Keeper) IsPaused(ctx context.Context) bool {
	return k.GetPauseState(ctx).Paused
}

// GetPauseState returns the persisted pause switch
func (k Keeper) GetPauseState(ctx context.Context) types.PauseState {
	var state types.PauseState
	if _, err := k.getJSON(ctx, types.PauseStateKey, &state); err != nil {
		// A corrupt record keeps the oracle stopped.
		k.Logger(ctx).Error("failed to decode pause state", "error", err)
		return types.PauseState{Paused: true}
	}
	return state
}
