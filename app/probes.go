package app

import (
	"context"
	"fmt"

	"github.com/paw-chain/tee-oracle/app/health"
	"github.com/paw-chain/tee-oracle/x/oracle/keeper"
	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

// RegisterHealthProbes adds the store, pause and invariant probes to checker
func (app *OracleApp) RegisterHealthProbes(checker *health.Checker) {
	checker.Register(health.Probe{Name: "store", Fn: app.probeStore})
	checker.Register(health.Probe{Name: "oracle", Fn: app.probeOracle})
	checker.Register(health.Probe{Name: "invariants", Detailed: true, Fn: app.probeInvariants})
}

func (app *OracleApp) probeStore(context.Context) health.ComponentHealth {
	commitID := app.LastCommitID()
	return health.Healthy("store is committed", map[string]interface{}{
		"version": commitID.Version,
		"hash":    fmt.Sprintf("%X", commitID.Hash),
	})
}

func (app *OracleApp) probeOracle(ctx context.Context) health.ComponentHealth {
	var (
		params *types.QueryParamsResponse
		assets *types.QueryAssetsResponse
	)
	err := app.View(ctx, "HealthProbe", func(ctx context.Context, q keeper.Querier) error {
		var err error
		if params, err = q.Params(ctx); err != nil {
			return err
		}
		assets, err = q.Assets(ctx)
		return err
	})
	if err != nil {
		return health.Unhealthy(err)
	}

	metrics := map[string]interface{}{
		"paused":            params.PauseState.Paused,
		"assets":            len(assets.Assets),
		"min_report_count":  params.Params.MinReportCount,
		"recency_threshold": params.Params.RecencyThreshold,
	}
	if params.PauseState.Paused {
		return health.ComponentHealth{
			Status:  health.StatusDegraded,
			Message: fmt.Sprintf("price reporting paused by %s", params.PauseState.PausedBy),
			Metrics: metrics,
		}
	}
	return health.Healthy("accepting price reports", metrics)
}

func (app *OracleApp) probeInvariants(ctx context.Context) health.ComponentHealth {
	if report, broken := app.CheckInvariants(ctx); broken {
		return health.ComponentHealth{Status: health.StatusUnhealthy, Message: report}
	}
	return health.Healthy("all invariants hold", map[string]interface{}{
		"routes": app.invariants.Routes(),
	})
}
