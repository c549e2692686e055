package catalog

import (
	"context"
	"time"

	"github.com/moolen/templatematch/internal/logging"
)

// RetentionConfig configures the optional eviction pass described in
// Design Notes §9 ("Unbounded growth"). Disabled by default: a catalog
// built with Enabled=false never evicts, so the strict id-set-only-grows
// half of I6 continues to hold whenever the feature is off.
type RetentionConfig struct {
	// Enabled turns the eviction pass on. Off by default.
	Enabled bool

	// Window is how long a template may go unmatched before it
	// qualifies for eviction, measured against LastSeen.
	Window time.Duration

	// Interval is how often the eviction pass runs.
	Interval time.Duration
}

// DefaultRetentionConfig returns a disabled configuration with
// reasonable values should the caller flip Enabled on.
func DefaultRetentionConfig() RetentionConfig {
	return RetentionConfig{
		Enabled:  false,
		Window:   7 * 24 * time.Hour,
		Interval: time.Hour,
	}
}

// Retainer periodically evicts templates whose last match falls outside
// the configured retention window. Unlike the rebalancer it was
// grounded on, it never merges templates by similarity: template
// supersession is out of scope (spec Open Questions), so only the
// recency-based pruning half survives here.
//
// Eviction is a catalog mutation, not a snapshot mutation: the next
// snapshot built from this catalog will simply omit the evicted ids.
// Installing Retainer is optional; a caller that never starts it gets
// the unbounded-growth behaviour the core data model assumes.
type Retainer struct {
	catalog *Catalog
	config  RetentionConfig
	logger  *logging.Logger
	stopCh  chan struct{}
}

// NewRetainer builds a retention pass over catalog. If config.Enabled
// is false, Start returns immediately without evicting anything.
func NewRetainer(catalog *Catalog, config RetentionConfig) *Retainer {
	return &Retainer{
		catalog: catalog,
		config:  config,
		logger:  logging.GetLogger("catalog.retention"),
		stopCh:  make(chan struct{}),
	}
}

// Start runs the periodic eviction loop until ctx is cancelled or Stop
// is called. No-op when retention is disabled.
func (r *Retainer) Start(ctx context.Context) error {
	if !r.config.Enabled {
		return nil
	}

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Evict(time.Now().Unix())
		case <-ctx.Done():
			return nil
		case <-r.stopCh:
			return nil
		}
	}
}

// Evict removes every template whose LastSeen is older than the
// retention window relative to nowUnix. Templates never matched
// (LastSeen == 0) are left alone: they have not had a chance to age in
// yet. Returns the number of templates evicted.
func (r *Retainer) Evict(nowUnix int64) int {
	cutoff := nowUnix - int64(r.config.Window/time.Second)

	evicted := 0
	for _, t := range r.catalog.All() {
		if t.LastSeen == 0 || t.LastSeen >= cutoff {
			continue
		}
		r.catalog.remove(t.ID)
		evicted++
	}

	if evicted > 0 {
		r.logger.InfoWithFields("evicted templates past retention window", logging.Field("count", evicted))
	}
	return evicted
}

// Stop signals the eviction loop to exit.
func (r *Retainer) Stop() {
	close(r.stopCh)
}
