// Package pricecache mirrors published oracle prices into Redis. Every
// committed aggregation outcome becomes a hash under <prefix>:<asset> (or
// its deletion) and a JSON message on the update channel.
package pricecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"cosmossdk.io/log"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/redis/go-redis/v9"

	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

// Config configures the Redis sink.
type Config struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
	Channel  string `mapstructure:"channel"`

	// FlushTimeout bounds the final write of pending updates on shutdown
	FlushTimeout time.Duration `mapstructure:"flush_timeout"`
}

// DefaultConfig returns a disabled sink pointed at a local Redis
func DefaultConfig() Config {
	return Config{
		Enabled:      false,
		Addr:         "127.0.0.1:6379",
		Prefix:       "oracle:price",
		Channel:      "oracle:price:updates",
		FlushTimeout: 5 * time.Second,
	}
}

// Connect opens a Redis client and verifies it with a ping
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            cfg.Addr,
		Password:        cfg.Password,
		DB:              cfg.DB,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		DialTimeout:     5 * time.Second,
		PoolTimeout:     5 * time.Second,
		MaxRetries:      2,
		MinRetryBackoff: 200 * time.Millisecond,
		MaxRetryBackoff: 2 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// Update is one change to the published price of an asset.
type Update struct {
	Asset      string `json:"asset"`
	Cleared    bool   `json:"cleared"`
	Reason     string `json:"reason,omitempty"`
	Multiplier string `json:"multiplier,omitempty"`
	Decimals   uint32 `json:"decimals,omitempty"`
	Timestamp  uint64 `json:"timestamp,omitempty"`
	NumSources uint32 `json:"num_sources,omitempty"`
}

// UpdatesFromEvents extracts price changes from committed oracle events, in
// emission order.
func UpdatesFromEvents(events sdk.Events) []Update {
	var updates []Update
	for _, event := range events {
		switch event.Type {
		case types.EventTypePriceAggregated:
			update := Update{}
			for _, attr := range event.Attributes {
				switch attr.Key {
				case types.AttributeKeyAsset:
					update.Asset = attr.Value
				case types.AttributeKeyMultiplier:
					update.Multiplier = attr.Value
				case types.AttributeKeyDecimals:
					update.Decimals = parseUint32(attr.Value)
				case types.AttributeKeyTimestamp:
					update.Timestamp, _ = strconv.ParseUint(attr.Value, 10, 64)
				case types.AttributeKeyNumSources:
					update.NumSources = parseUint32(attr.Value)
				}
			}
			updates = append(updates, update)
		case types.EventTypePriceCleared:
			update := Update{Cleared: true}
			for _, attr := range event.Attributes {
				switch attr.Key {
				case types.AttributeKeyAsset:
					update.Asset = attr.Value
				case types.AttributeKeyReason:
					update.Reason = attr.Value
				}
			}
			updates = append(updates, update)
		}
	}
	return updates
}

func parseUint32(s string) uint32 {
	v, _ := strconv.ParseUint(s, 10, 32)
	return uint32(v)
}

// Sink applies updates to Redis from a single worker. Updates waiting for
// the worker are coalesced per asset, so HandleEvents never blocks and the
// cache always converges on the latest committed price.
type Sink struct {
	client redis.UniversalClient
	cfg    Config
	logger log.Logger

	mu      sync.Mutex
	pending map[string]Update
	order   []string

	notify chan struct{}
	stop   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewSink returns a sink writing through client
func NewSink(client redis.UniversalClient, cfg Config, logger log.Logger) *Sink {
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = DefaultConfig().FlushTimeout
	}
	return &Sink{
		client:  client,
		cfg:     cfg,
		logger:  logger.With("module", "pricecache"),
		pending: make(map[string]Update),
		notify:  make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}
}

// Start runs the worker until ctx is done or Close is called. Pending
// updates are flushed before the worker exits.
func (s *Sink) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.flush(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-s.notify:
				s.applyPending(ctx)
			}
		}
	}()
}

// HandleEvents records the price changes carried by events and wakes the
// worker. A change replaces any change to the same asset that the worker has
// not written yet.
func (s *Sink) HandleEvents(_ context.Context, events sdk.Events) {
	updates := UpdatesFromEvents(events)
	if len(updates) == 0 {
		return
	}

	s.mu.Lock()
	for _, update := range updates {
		if _, ok := s.pending[update.Asset]; !ok {
			s.order = append(s.order, update.Asset)
		}
		s.pending[update.Asset] = update
	}
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// takePending removes and returns the waiting updates in first-seen order
func (s *Sink) takePending() []Update {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.order) == 0 {
		return nil
	}
	updates := make([]Update, 0, len(s.order))
	for _, asset := range s.order {
		updates = append(updates, s.pending[asset])
	}
	s.pending = make(map[string]Update)
	s.order = nil
	return updates
}

func (s *Sink) applyPending(ctx context.Context) {
	updates := s.takePending()
	if err := s.Apply(ctx, updates); err != nil {
		s.logger.Error("failed to mirror price updates", "updates", len(updates), "error", err)
	}
}

// flush writes whatever is pending with a fresh deadline, since ctx may
// already be cancelled
func (s *Sink) flush(ctx context.Context) {
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.FlushTimeout)
	defer cancel()
	s.applyPending(flushCtx)
}

// Close stops the worker and writes the updates it has not written yet
func (s *Sink) Close() {
	s.once.Do(func() {
		close(s.stop)
	})
	s.wg.Wait()
	s.flush(context.Background())
}

// Key returns the Redis key of an asset's price hash
func (s *Sink) Key(asset string) string {
	return fmt.Sprintf("%s:%s", s.cfg.Prefix, asset)
}

// Apply writes updates in one pipeline: a hash per priced asset, a delete
// per cleared one, and a published message per update.
func (s *Sink) Apply(ctx context.Context, updates []Update) error {
	if len(updates) == 0 {
		return nil
	}

	pipe := s.client.TxPipeline()
	for _, update := range updates {
		key := s.Key(update.Asset)
		if update.Cleared {
			pipe.Del(ctx, key)
		} else {
			pipe.HSet(ctx, key, map[string]interface{}{
				"multiplier":  update.Multiplier,
				"decimals":    update.Decimals,
				"timestamp":   update.Timestamp,
				"num_sources": update.NumSources,
			})
		}

		payload, err := json.Marshal(update)
		if err != nil {
			return err
		}
		pipe.Publish(ctx, s.cfg.Channel, payload)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// Get reads the cached price of an asset
func (s *Sink) Get(ctx context.Context, asset string) (Update, bool, error) {
	fields, err := s.client.HGetAll(ctx, s.Key(asset)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Update{}, false, nil
		}
		return Update{}, false, err
	}
	if len(fields) == 0 {
		return Update{}, false, nil
	}

	update := Update{
		Asset:      asset,
		Multiplier: fields["multiplier"],
		Decimals:   parseUint32(fields["decimals"]),
		NumSources: parseUint32(fields["num_sources"]),
	}
	update.Timestamp, _ = strconv.ParseUint(fields["timestamp"], 10, 64)
	return update, true, nil
}

// Ping reports whether Redis is reachable
func (s *Sink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
