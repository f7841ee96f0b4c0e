package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/paw-chain/tee-oracle/app/telemetry"
	"github.com/paw-chain/tee-oracle/x/oracle/keeper"
	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

const (
	// AppName is the name of the oracle daemon
	AppName = "oracled"
	// AppVersion is reported by the health endpoints
	AppVersion = "1.0.0"
)

// Listener receives the events of every committed call, in commit order.
// Listeners run while the commit lock is held and must not block.
type Listener func(ctx context.Context, events sdk.Events)

// Result is the outcome of an executed call
type Result struct {
	Version int64   `json:"version"`
	Data    any     `json:"data"`
	Events  []Event `json:"events"`
}

// Event is a flattened committed event
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// OracleApp executes oracle calls one at a time against a committed store.
// Each call runs in a cached context; its writes and events are committed
// only when it succeeds.
type OracleApp struct {
	mu sync.Mutex
	// lastCommit is readable without mu
	lastCommit atomic.Pointer[storetypes.CommitID]

	logger   log.Logger
	db       dbm.DB
	cms      storetypes.CommitMultiStore
	storeKey *storetypes.KVStoreKey

	OracleKeeper keeper.Keeper
	msgServer    keeper.MsgServer
	querier      keeper.Querier

	invariants      *InvariantRegistry
	checkInvariants bool

	clock    func() time.Time
	lastTime time.Time

	tracer    trace.Tracer
	metrics   *CallMetrics
	listeners []Listener
}

// Option configures an OracleApp
type Option func(*OracleApp)

// WithClock replaces the wall clock
func WithClock(clock func() time.Time) Option {
	return func(app *OracleApp) { app.clock = clock }
}

// WithInvariantChecks runs every registered invariant before each commit
func WithInvariantChecks(enabled bool) Option {
	return func(app *OracleApp) { app.checkInvariants = enabled }
}

// WithTracer sets the tracer of executed calls
func WithTracer(tracer trace.Tracer) Option {
	return func(app *OracleApp) { app.tracer = tracer }
}

// WithCallMetrics records executed calls
func WithCallMetrics(m *CallMetrics) Option {
	return func(app *OracleApp) { app.metrics = m }
}

// NewOracleApp opens the store in db. An empty store is initialized from
// genesis, or from the default genesis when genesis is nil.
func NewOracleApp(logger log.Logger, db dbm.DB, owner string, genesis *types.GenesisState, opts ...Option) (*OracleApp, error) {
	if err := types.ValidateAccountID(owner); err != nil {
		return nil, fmt.Errorf("invalid owner: %w", err)
	}

	app := &OracleApp{
		logger:     logger.With("module", "app"),
		db:         db,
		storeKey:   storetypes.NewKVStoreKey(types.StoreKey),
		invariants: NewInvariantRegistry(),
		clock:      time.Now,
		tracer:     otel.Tracer(AppName),
	}
	for _, opt := range opts {
		opt(app)
	}

	app.cms = store.NewCommitMultiStore(db, logger, metrics.NewNoOpMetrics())
	app.cms.MountStoreWithDB(app.storeKey, storetypes.StoreTypeIAVL, nil)
	if err := app.cms.LoadLatestVersion(); err != nil {
		return nil, fmt.Errorf("failed to load store: %w", err)
	}
	app.setLastCommit(app.cms.LastCommitID())

	app.OracleKeeper = keeper.NewKeeper(app.storeKey, owner)
	app.msgServer = keeper.NewMsgServerImpl(app.OracleKeeper)
	app.querier = keeper.NewQuerier(app.OracleKeeper)
	keeper.RegisterInvariants(app.invariants, app.OracleKeeper)

	if app.LastVersion() == 0 {
		if genesis == nil {
			genesis = types.DefaultGenesis()
		}
		if err := app.initGenesis(*genesis); err != nil {
			return nil, err
		}
	}

	app.logger.Info("oracle store loaded", "version", app.LastVersion())
	return app, nil
}

func (app *OracleApp) initGenesis(genesis types.GenesisState) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	ctx := app.newContext(context.Background(), app.cms, app.tick())
	cacheCtx, write := ctx.CacheContext()
	if err := app.OracleKeeper.InitGenesis(cacheCtx, genesis); err != nil {
		return fmt.Errorf("failed to init genesis: %w", err)
	}
	write()

	commitID := app.cms.Commit()
	app.setLastCommit(commitID)
	app.logger.Info("initialized oracle genesis", "version", commitID.Version, "assets", len(genesis.Assets))
	return nil
}

// Logger returns the application logger
func (app *OracleApp) Logger() log.Logger {
	return app.logger
}

// LastVersion returns the version of the latest commit
func (app *OracleApp) LastVersion() int64 {
	return app.LastCommitID().Version
}

// LastCommitID returns the id of the latest commit
func (app *OracleApp) LastCommitID() storetypes.CommitID {
	if id := app.lastCommit.Load(); id != nil {
		return *id
	}
	return storetypes.CommitID{}
}

func (app *OracleApp) setLastCommit(id storetypes.CommitID) {
	app.lastCommit.Store(&id)
}

// Subscribe registers a listener for committed events
func (app *OracleApp) Subscribe(listener Listener) {
	app.mu.Lock()
	defer app.mu.Unlock()
	app.listeners = append(app.listeners, listener)
}

// tick returns the current time, never earlier than a time already handed out
func (app *OracleApp) tick() time.Time {
	now := app.clock()
	if now.Before(app.lastTime) {
		now = app.lastTime
	}
	app.lastTime = now
	return now
}

func (app *OracleApp) newContext(ctx context.Context, ms storetypes.MultiStore, now time.Time) sdk.Context {
	header := cmtproto.Header{
		ChainID: AppName,
		Height:  app.LastVersion() + 1,
		Time:    now,
	}
	return sdk.NewContext(ms, header, false, app.logger).WithContext(ctx)
}

// Execute runs msg on behalf of its caller and commits the result
func (app *OracleApp) Execute(ctx context.Context, msg types.Msg) (*Result, error) {
	op := types.MsgType(msg)
	if op == "" {
		return nil, types.ErrUnknownMsg.Wrapf("%T", msg)
	}

	ctx, span := telemetry.StartCallSpan(ctx, app.tracer, op, msg.GetCaller())
	defer span.End()
	start := time.Now()

	res, err := app.execute(ctx, msg)

	app.metrics.RecordCall(ctx, op, time.Since(start), err)
	if err != nil {
		telemetry.RecordError(span, err)
		telemetry.AddSpanAttributes(span, attribute.String("oracle.error_class", string(types.ClassOf(err))))
		app.logger.Debug("call rejected", "op", op, "caller", msg.GetCaller(), "error", err)
		return nil, err
	}

	telemetry.AddSpanAttributes(span, attribute.Int64("oracle.version", res.Version))
	app.metrics.RecordVersion(ctx, res.Version)
	return res, nil
}

func (app *OracleApp) execute(ctx context.Context, msg types.Msg) (*Result, error) {
	app.mu.Lock()
	defer app.mu.Unlock()

	sdkCtx := app.newContext(ctx, app.cms, app.tick())
	cacheCtx, write := sdkCtx.CacheContext()

	data, err := app.route(cacheCtx, msg)
	if err != nil {
		return nil, err
	}

	if app.checkInvariants {
		if report, broken := app.invariants.Check(cacheCtx); broken {
			app.logger.Error("invariant broken, discarding call", "op", types.MsgType(msg), "report", report)
			return nil, types.ErrStateCorruption.Wrap(report)
		}
	}

	events := cacheCtx.EventManager().Events()
	write()
	commitID := app.cms.Commit()
	app.setLastCommit(commitID)

	for _, listener := range app.listeners {
		listener(ctx, events)
	}

	return &Result{
		Version: commitID.Version,
		Data:    data,
		Events:  flattenEvents(events),
	}, nil
}

func (app *OracleApp) route(ctx sdk.Context, msg types.Msg) (any, error) {
	switch m := msg.(type) {
	case *types.MsgAddAsset:
		return app.msgServer.AddAsset(ctx, m)
	case *types.MsgAddNodeOperator:
		return app.msgServer.AddNodeOperator(ctx, m)
	case *types.MsgRemoveNodeOperator:
		return app.msgServer.RemoveNodeOperator(ctx, m)
	case *types.MsgApproveCodeHash:
		return app.msgServer.ApproveCodeHash(ctx, m)
	case *types.MsgRemoveCodeHash:
		return app.msgServer.RemoveCodeHash(ctx, m)
	case *types.MsgApproveAttestation:
		return app.msgServer.ApproveAttestation(ctx, m)
	case *types.MsgRemoveAttestation:
		return app.msgServer.RemoveAttestation(ctx, m)
	case *types.MsgPause:
		return app.msgServer.Pause(ctx, m)
	case *types.MsgResume:
		return app.msgServer.Resume(ctx, m)
	case *types.MsgUpdateConfig:
		return app.msgServer.UpdateConfig(ctx, m)
	case *types.MsgSetAttestationMaxAge:
		return app.msgServer.SetAttestationMaxAge(ctx, m)
	case *types.MsgSetNodeAccount:
		return app.msgServer.SetNodeAccount(ctx, m)
	case *types.MsgRegisterNode:
		return app.msgServer.RegisterNode(ctx, m)
	case *types.MsgReportPrice:
		return app.msgServer.ReportPrice(ctx, m)
	case *types.MsgConfigureAdminRole:
		return app.msgServer.ConfigureAdminRole(ctx, m)
	case *types.MsgProposeAction:
		return app.msgServer.ProposeAction(ctx, m)
	case *types.MsgApproveProposal:
		return app.msgServer.ApproveProposal(ctx, m)
	case *types.MsgExecuteProposal:
		return app.msgServer.ExecuteProposal(ctx, m)
	case *types.MsgCancelProposal:
		return app.msgServer.CancelProposal(ctx, m)
	default:
		return nil, types.ErrUnknownMsg.Wrapf("%T must be passed by pointer", msg)
	}
}

// View runs a read-only query against the latest committed state. Writes
// made by fn are discarded.
func (app *OracleApp) View(ctx context.Context, op string, fn func(ctx context.Context, q keeper.Querier) error) error {
	ctx, span := app.tracer.Start(ctx, op, trace.WithAttributes(attribute.String(telemetry.AttributeOp, op)))
	defer span.End()

	app.mu.Lock()
	defer app.mu.Unlock()

	sdkCtx := app.newContext(ctx, app.cms.CacheMultiStore(), app.tick())
	if err := fn(sdkCtx, app.querier); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	return nil
}

// ExportGenesis exports the committed state
func (app *OracleApp) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	var genesis *types.GenesisState
	err := app.View(ctx, "ExportGenesis", func(ctx context.Context, _ keeper.Querier) error {
		genesis = app.OracleKeeper.ExportGenesis(ctx)
		return nil
	})
	return genesis, err
}

// CheckInvariants runs every registered invariant against the committed state
func (app *OracleApp) CheckInvariants(ctx context.Context) (string, bool) {
	var (
		report string
		broken bool
	)
	_ = app.View(ctx, "CheckInvariants", func(ctx context.Context, _ keeper.Querier) error {
		report, broken = app.invariants.Check(sdk.UnwrapSDKContext(ctx))
		return nil
	})
	return report, broken
}

// Close releases the underlying database
func (app *OracleApp) Close() error {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.db.Close()
}

func flattenEvents(events sdk.Events) []Event {
	out := make([]Event, 0, len(events))
	for _, event := range events {
		attrs := make(map[string]string, len(event.Attributes))
		for _, attr := range event.Attributes {
			attrs[attr.Key] = attr.Value
		}
		out = append(out, Event{Type: event.Type, Attributes: attrs})
	}
	return out
}
