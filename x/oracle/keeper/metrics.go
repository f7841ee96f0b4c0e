package keeper

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OracleMetrics holds all Prometheus metrics for the oracle
type OracleMetrics struct {
	// Price metrics
	PriceReports     *prometheus.CounterVec
	ReportRejections *prometheus.CounterVec
	Aggregations     *prometheus.CounterVec
	LiveSources      *prometheus.GaugeVec
	AssetsTracked    prometheus.Gauge

	// Identity metrics
	Registrations          prometheus.Counter
	RegistrationRejections *prometheus.CounterVec
	Revocations            prometheus.Counter

	// Policy and governance metrics
	PausedState       prometheus.Gauge
	GovernanceActions *prometheus.CounterVec
}

var (
	oracleMetricsOnce sync.Once
	oracleMetrics     *OracleMetrics
)

// NewOracleMetrics creates and registers oracle metrics (singleton pattern)
func NewOracleMetrics() *OracleMetrics {
	oracleMetricsOnce.Do(func() {
		oracleMetrics = &OracleMetrics{
			PriceReports: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "tee",
					Subsystem: "oracle",
					Name:      "price_reports_total",
					Help:      "Accepted price reports by asset",
				},
				[]string{"asset"},
			),
			ReportRejections: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "tee",
					Subsystem: "oracle",
					Name:      "report_rejections_total",
					Help:      "Rejected price reports by reason",
				},
				[]string{"reason"},
			),
			Aggregations: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "tee",
					Subsystem: "oracle",
					Name:      "aggregations_total",
					Help:      "Report set finalizations by asset and outcome",
				},
				[]string{"asset", "outcome"},
			),
			LiveSources: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "tee",
					Subsystem: "oracle",
					Name:      "live_sources",
					Help:      "Live reports held for an asset after the last finalization",
				},
				[]string{"asset"},
			),
			AssetsTracked: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "tee",
					Subsystem: "oracle",
					Name:      "assets_tracked",
					Help:      "Number of registered assets",
				},
			),

			Registrations: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "tee",
					Subsystem: "oracle",
					Name:      "node_registrations_total",
					Help:      "Successful node registrations",
				},
			),
			RegistrationRejections: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "tee",
					Subsystem: "oracle",
					Name:      "registration_rejections_total",
					Help:      "Rejected node registrations by reason",
				},
				[]string{"reason"},
			),
			Revocations: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "tee",
					Subsystem: "oracle",
					Name:      "node_revocations_total",
					Help:      "Nodes revoked by operator removal or rebinding",
				},
			),

			PausedState: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "tee",
					Subsystem: "oracle",
					Name:      "paused",
					Help:      "1 while price reporting is paused",
				},
			),
			GovernanceActions: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "tee",
					Subsystem: "oracle",
					Name:      "governance_actions_total",
					Help:      "Governance lifecycle steps by stage and action type",
				},
				[]string{"stage", "action"},
			),
		}
	})
	return oracleMetrics
}
