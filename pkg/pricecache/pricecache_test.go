package pricecache

import (
	"context"
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"cosmossdk.io/log"
	miniredis "github.com/alicebob/miniredis/v2"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

func newTestSink(t *testing.T) (*Sink, *miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Addr = mr.Addr()
	return NewSink(client, cfg, log.NewNopLogger()), mr, client
}

func aggregatedEvent(asset, multiplier string) sdk.Event {
	return sdk.NewEvent(types.EventTypePriceAggregated,
		sdk.NewAttribute(types.AttributeKeyAsset, asset),
		sdk.NewAttribute(types.AttributeKeyMultiplier, multiplier),
		sdk.NewAttribute(types.AttributeKeyDecimals, "4"),
		sdk.NewAttribute(types.AttributeKeyTimestamp, "1000"),
		sdk.NewAttribute(types.AttributeKeyNumSources, "2"),
	)
}

func clearedEvent(asset string) sdk.Event {
	return sdk.NewEvent(types.EventTypePriceCleared,
		sdk.NewAttribute(types.AttributeKeyAsset, asset),
		sdk.NewAttribute(types.AttributeKeyReason, types.ClearReasonInsufficientSources),
	)
}

func TestUpdatesFromEvents(t *testing.T) {
	events := sdk.Events{
		sdk.NewEvent(types.EventTypePriceReported, sdk.NewAttribute(types.AttributeKeyAsset, "X")),
		aggregatedEvent("X", "35500"),
		clearedEvent("Y"),
	}

	updates := UpdatesFromEvents(events)
	require.Equal(t, []Update{
		{Asset: "X", Multiplier: "35500", Decimals: 4, Timestamp: 1000, NumSources: 2},
		{Asset: "Y", Cleared: true, Reason: types.ClearReasonInsufficientSources},
	}, updates)

	require.Empty(t, UpdatesFromEvents(nil))
}

func TestApplyWritesAndDeletes(t *testing.T) {
	sink, mr, _ := newTestSink(t)
	ctx := context.Background()

	require.NoError(t, sink.Apply(ctx, UpdatesFromEvents(sdk.Events{aggregatedEvent("X", "35500")})))
	require.Equal(t, "35500", mr.HGet("oracle:price:X", "multiplier"))

	cached, found, err := sink.Get(ctx, "X")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, Update{Asset: "X", Multiplier: "35500", Decimals: 4, Timestamp: 1000, NumSources: 2}, cached)

	require.NoError(t, sink.Apply(ctx, UpdatesFromEvents(sdk.Events{clearedEvent("X")})))
	require.False(t, mr.Exists("oracle:price:X"))

	_, found, err = sink.Get(ctx, "X")
	require.NoError(t, err)
	require.False(t, found)
}

func TestApplyPublishesUpdates(t *testing.T) {
	sink, _, client := newTestSink(t)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	pubsub := client.Subscribe(ctx, sink.cfg.Channel)
	defer pubsub.Close()
	_, err := pubsub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, sink.Apply(ctx, UpdatesFromEvents(sdk.Events{aggregatedEvent("X", "1")})))

	msg, err := pubsub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var update Update
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &update))
	require.Equal(t, "X", update.Asset)
	require.Equal(t, "1", update.Multiplier)
}

func TestWorkerAppliesInOrder(t *testing.T) {
	sink, mr, _ := newTestSink(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink.Start(ctx)
	sink.HandleEvents(ctx, sdk.Events{aggregatedEvent("X", "1")})
	sink.HandleEvents(ctx, sdk.Events{aggregatedEvent("X", "2")})
	sink.HandleEvents(ctx, sdk.Events{sdk.NewEvent(types.EventTypeNodeBound)})
	sink.Close()

	require.Equal(t, "2", mr.HGet("oracle:price:X", "multiplier"))
	require.NoError(t, sink.Ping(ctx))
}

func TestPendingUpdatesCoalescePerAsset(t *testing.T) {
	sink, _, _ := newTestSink(t)
	ctx := context.Background()

	sink.HandleEvents(ctx, sdk.Events{aggregatedEvent("X", "1")})
	sink.HandleEvents(ctx, sdk.Events{clearedEvent("Y")})
	sink.HandleEvents(ctx, sdk.Events{aggregatedEvent("X", "2")})

	updates := sink.takePending()
	require.Len(t, updates, 2)
	require.Equal(t, "X", updates[0].Asset)
	require.Equal(t, "2", updates[0].Multiplier)
	require.True(t, updates[1].Cleared)
	require.Empty(t, sink.takePending())
}

func TestCloseFlushesAfterCancel(t *testing.T) {
	sink, mr, _ := newTestSink(t)
	ctx, cancel := context.WithCancel(context.Background())

	sink.Start(ctx)
	cancel()
	sink.HandleEvents(ctx, sdk.Events{aggregatedEvent("X", "7")})
	sink.Close()

	require.Equal(t, "7", mr.HGet("oracle:price:X", "multiplier"))
}

func TestHandleEventsDoesNotWaitForRedis(t *testing.T) {
	// a server that accepts connections and never answers
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, conn := range conns {
			_ = conn.Close()
		}
	})
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()

	client := redis.NewClient(&redis.Options{
		Addr:         ln.Addr().String(),
		ReadTimeout:  100 * time.Millisecond,
		WriteTimeout: 100 * time.Millisecond,
		MaxRetries:   -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	cfg := DefaultConfig()
	cfg.FlushTimeout = 200 * time.Millisecond
	sink := NewSink(client, cfg, log.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	sink.Start(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			sink.HandleEvents(ctx, sdk.Events{aggregatedEvent("X", "1"), aggregatedEvent("Y", "2")})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("HandleEvents blocked behind an unresponsive redis")
	}

	cancel()
	sink.Close()
}
