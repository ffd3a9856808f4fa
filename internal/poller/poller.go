// Package poller runs the scheduled fetch-classify-persist loop.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/SydneyUniLibrary/exlibris-status-api/internal/status"
)

// Fetcher retrieves the raw status document from the vendor feed.
type Fetcher interface {
	FetchStatus(ctx context.Context) (string, error)
}

// Cycler processes one raw document: change detection, classification,
// persistence.
type Cycler interface {
	Poll(ctx context.Context, raw string) (*status.PollResult, error)
}

// Config holds configuration for the poller.
type Config struct {
	// Schedule is the cron spec for poll cycles, e.g. "@every 1m".
	Schedule string

	// Timeout bounds one poll cycle. Default: 30 seconds.
	Timeout time.Duration

	Fetcher Fetcher
	Cycler  Cycler
	Logger  zerolog.Logger
}

// Metrics tracks poll loop statistics.
type Metrics struct {
	TotalRuns       int64
	Succeeded       int64
	Failed          int64
	Unchanged       int64
	LastRunAt       time.Time
	LastRunDuration time.Duration
	LastError       string
}

// Poller schedules poll cycles. Cycles run strictly sequentially: overlap
// is prevented by a mutex, so a slow fetch delays rather than doubles the
// next cycle.
type Poller struct {
	cron    *cron.Cron
	fetcher Fetcher
	cycler  Cycler
	logger  zerolog.Logger
	timeout time.Duration

	runMu sync.Mutex

	mu      sync.RWMutex
	metrics Metrics
}

// New creates a poller and registers its schedule.
func New(cfg Config) (*Poller, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	p := &Poller{
		cron:    cron.New(),
		fetcher: cfg.Fetcher,
		cycler:  cfg.Cycler,
		logger:  cfg.Logger,
		timeout: timeout,
	}

	if _, err := p.cron.AddFunc(cfg.Schedule, func() {
		if err := p.RunOnce(context.Background()); err != nil {
			p.logger.Error().Err(err).Msg("poll cycle failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid poll schedule %q: %w", cfg.Schedule, err)
	}

	return p, nil
}

// Start begins scheduled polling.
func (p *Poller) Start() {
	p.cron.Start()
}

// Stop halts scheduling and returns a context that is done once any
// in-flight cycle finished.
func (p *Poller) Stop() context.Context {
	return p.cron.Stop()
}

// RunOnce executes a single poll cycle.
func (p *Poller) RunOnce(ctx context.Context) error {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	raw, err := p.fetcher.FetchStatus(ctx)

	var result *status.PollResult
	if err == nil {
		result, err = p.cycler.Poll(ctx, raw)
	}
	p.record(start, result, err)

	if err != nil {
		return err
	}

	p.logger.Debug().
		Bool("changed", result.Changed).
		Dur("duration", time.Since(start)).
		Msg("poll cycle completed")
	return nil
}

func (p *Poller) record(start time.Time, result *status.PollResult, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.metrics.TotalRuns++
	p.metrics.LastRunAt = start
	p.metrics.LastRunDuration = time.Since(start)
	if err != nil {
		p.metrics.Failed++
		p.metrics.LastError = err.Error()
		return
	}
	p.metrics.Succeeded++
	p.metrics.LastError = ""
	if !result.Changed {
		p.metrics.Unchanged++
	}
}

// Metrics returns a copy of the current poll metrics.
func (p *Poller) Metrics() Metrics {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.metrics
}

// MetricsSnapshot returns the metrics as a map for the health endpoint.
func (p *Poller) MetricsSnapshot() map[string]interface{} {
	m := p.Metrics()
	return map[string]interface{}{
		"total_runs":        m.TotalRuns,
		"succeeded":         m.Succeeded,
		"failed":            m.Failed,
		"unchanged":         m.Unchanged,
		"last_run_at":       m.LastRunAt,
		"last_run_duration": m.LastRunDuration.String(),
		"last_error":        m.LastError,
	}
}
