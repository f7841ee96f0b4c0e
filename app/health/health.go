// Package health aggregates component probes of the oracle daemon into a
// single status.
//
// Each probe reports the state of one component (entity store, pause state,
// price cache, telemetry). The checker runs them in parallel, derives the
// overall status and caches the result for a short period. The REST layer
// serves it on:
// - /health - Basic liveness check
// - /health/ready - Readiness check for load balancers
// - /health/detailed - Every probe with metrics
package health

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"cosmossdk.io/log"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
	StatusUnknown   Status = "unknown"
)

// ComponentHealth represents the health status of a single component
type ComponentHealth struct {
	Status    Status                 `json:"status"`
	Message   string                 `json:"message,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metrics   map[string]interface{} `json:"metrics,omitempty"`
}

// HealthCheck represents the overall health check response
type HealthCheck struct {
	Status     Status                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// Probe inspects one component. Detailed probes only run on detailed checks.
type Probe struct {
	Name     string
	Detailed bool
	Fn       func(context.Context) ComponentHealth
}

// Checker runs the registered probes
type Checker struct {
	logger  log.Logger
	version string

	maxResponseTime time.Duration
	cacheDuration   time.Duration

	probesMu sync.RWMutex
	probes   map[string]Probe

	mu           sync.RWMutex
	lastCheck    time.Time
	cachedHealth *HealthCheck
}

// Config holds configuration for the health checker
type Config struct {
	// MaxResponseTime bounds every probe; a probe that overruns it is unhealthy
	MaxResponseTime time.Duration

	// CacheDuration is how long to cache non-detailed results
	CacheDuration time.Duration

	Version string
}

// DefaultConfig returns the default health check configuration
func DefaultConfig() Config {
	return Config{
		MaxResponseTime: 5 * time.Second,
		CacheDuration:   5 * time.Second,
	}
}

// NewChecker creates a new health checker without probes
func NewChecker(logger log.Logger, cfg Config) *Checker {
	return &Checker{
		logger:          logger.With("module", "health"),
		version:         cfg.Version,
		maxResponseTime: cfg.MaxResponseTime,
		cacheDuration:   cfg.CacheDuration,
		probes:          make(map[string]Probe),
	}
}

// Register adds or replaces a probe
func (c *Checker) Register(probe Probe) {
	c.probesMu.Lock()
	defer c.probesMu.Unlock()
	c.probes[probe.Name] = probe
}

// Names returns the registered probe names, sorted
func (c *Checker) Names() []string {
	c.probesMu.RLock()
	defer c.probesMu.RUnlock()

	names := make([]string, 0, len(c.probes))
	for name := range c.probes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check runs the probes and derives the overall status
func (c *Checker) Check(ctx context.Context, detailed bool) *HealthCheck {
	if !detailed && c.shouldUseCached() {
		c.mu.RLock()
		defer c.mu.RUnlock()
		return c.cachedHealth
	}

	health := &HealthCheck{
		Timestamp:  time.Now(),
		Version:    c.version,
		Components: make(map[string]ComponentHealth),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	c.probesMu.RLock()
	for _, probe := range c.probes {
		if probe.Detailed && !detailed {
			continue
		}
		wg.Add(1)
		go func(probe Probe) {
			defer wg.Done()
			result := c.run(ctx, probe)
			mu.Lock()
			health.Components[probe.Name] = result
			mu.Unlock()
		}(probe)
	}
	c.probesMu.RUnlock()

	wg.Wait()

	health.Status = calculateOverallStatus(health.Components)

	if !detailed {
		c.mu.Lock()
		c.lastCheck = time.Now()
		c.cachedHealth = health
		c.mu.Unlock()
	}

	return health
}

func (c *Checker) run(ctx context.Context, probe Probe) ComponentHealth {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.maxResponseTime)
	defer cancel()

	start := time.Now()
	result := probe.Fn(timeoutCtx)
	duration := time.Since(start)

	if result.Timestamp.IsZero() {
		result.Timestamp = time.Now()
	}
	if result.Status == "" {
		result.Status = StatusUnknown
	}
	if duration > c.maxResponseTime {
		c.logger.Warn("health probe overran", "probe", probe.Name, "duration", duration)
		result.Status = StatusUnhealthy
		result.Message = fmt.Sprintf("probe took %s", duration)
	}
	return result
}

// calculateOverallStatus determines the overall health status based on component statuses
func calculateOverallStatus(components map[string]ComponentHealth) Status {
	hasUnhealthy := false
	hasDegraded := false

	for _, component := range components {
		switch component.Status {
		case StatusUnhealthy:
			hasUnhealthy = true
		case StatusDegraded, StatusUnknown:
			hasDegraded = true
		}
	}

	if hasUnhealthy {
		return StatusUnhealthy
	}
	if hasDegraded {
		return StatusDegraded
	}
	return StatusHealthy
}

// shouldUseCached determines if cached health check results should be used
func (c *Checker) shouldUseCached() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.cachedHealth == nil {
		return false
	}

	return time.Since(c.lastCheck) < c.cacheDuration
}

// Healthy is a convenience constructor for a passing probe result
func Healthy(message string, metrics map[string]interface{}) ComponentHealth {
	return ComponentHealth{Status: StatusHealthy, Message: message, Timestamp: time.Now(), Metrics: metrics}
}

// Unhealthy is a convenience constructor for a failing probe result
func Unhealthy(err error) ComponentHealth {
	return ComponentHealth{Status: StatusUnhealthy, Message: err.Error(), Timestamp: time.Now()}
}

// PingProbe turns a ping function into a probe
func PingProbe(name string, ping func(context.Context) error) Probe {
	return Probe{
		Name: name,
		Fn: func(ctx context.Context) ComponentHealth {
			start := time.Now()
			if err := ping(ctx); err != nil {
				return Unhealthy(err)
			}
			return Healthy(name+" is responsive", map[string]interface{}{
				"response_time_ms": time.Since(start).Milliseconds(),
			})
		},
	}
}
