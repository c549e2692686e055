package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/moolen/templatematch/internal/logging"
)

// cacheSchemaVersion is bumped whenever the on-disk shape changes in a
// way that matters to Load; readers must still tolerate unknown fields
// per §6, so this only gates genuinely incompatible changes.
const cacheSchemaVersion = 1

// cacheFile is the JSON document persisted to the catalog cache file
// (§6). It is a self-describing dump of { templates[] }, decoded into
// Template's own json tags rather than a generic map, so unrecognised
// fields, both top-level keys and keys inside template records, are
// ignored on load and not written back by the next Snapshot.
type cacheFile struct {
	Version   int         `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Templates []*Template `json:"templates"`
}

// PersistenceManager periodically snapshots a Catalog to disk using
// atomic temp-file-then-rename writes, and restores it at startup.
type PersistenceManager struct {
	catalog  *Catalog
	path     string
	interval time.Duration
	logger   *logging.Logger
	stopCh   chan struct{}
}

// NewPersistenceManager builds a manager that snapshots catalog to path
// every interval.
func NewPersistenceManager(catalog *Catalog, path string, interval time.Duration) *PersistenceManager {
	return &PersistenceManager{
		catalog:  catalog,
		path:     path,
		interval: interval,
		logger:   logging.GetLogger("catalog.persistence"),
		stopCh:   make(chan struct{}),
	}
}

// Start loads any existing cache file, then runs the periodic snapshot
// loop until ctx is cancelled or Stop is called. A final snapshot is
// always attempted before returning.
func (pm *PersistenceManager) Start(ctx context.Context) error {
	if err := pm.Load(); err != nil && !os.IsNotExist(err) {
		pm.logger.ErrorWithErr("failed to load catalog cache, starting empty", err)
	}

	ticker := time.NewTicker(pm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := pm.Snapshot(); err != nil {
				pm.logger.ErrorWithErr("periodic catalog snapshot failed", err)
			}
		case <-ctx.Done():
			if err := pm.Snapshot(); err != nil {
				pm.logger.ErrorWithErr("final catalog snapshot failed", err)
			}
			return ctx.Err()
		case <-pm.stopCh:
			if err := pm.Snapshot(); err != nil {
				pm.logger.ErrorWithErr("final catalog snapshot failed", err)
			}
			return nil
		}
	}
}

// Snapshot writes the catalog's current state to disk atomically.
func (pm *PersistenceManager) Snapshot() error {
	doc := cacheFile{
		Version:   cacheSchemaVersion,
		Timestamp: time.Now(),
		Templates: pm.catalog.All(),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog cache: %w", err)
	}

	tmpPath := pm.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write temp catalog cache: %w", err)
	}
	if err := os.Rename(tmpPath, pm.path); err != nil {
		return fmt.Errorf("rename catalog cache: %w", err)
	}
	return nil
}

// Load restores templates from the cache file if present. A missing
// file is not an error: the catalog simply starts empty, per §3
// Lifecycle. Unknown top-level fields are tolerated (json.Unmarshal
// silently ignores them), satisfying §6's "tolerate unknown fields"
// requirement.
func (pm *PersistenceManager) Load() error {
	data, err := os.ReadFile(pm.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var doc cacheFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal catalog cache: %w", err)
	}

	for _, t := range doc.Templates {
		if !pm.catalog.qualifies(t.Fragments) {
			pm.logger.WarnWithFields("dropping cached template with no qualifying fragment",
				logging.Field("template_id", t.ID))
			continue
		}
		pm.catalog.installLoaded(t)
	}
	return nil
}

// Stop signals the snapshot loop to perform one final write and return.
func (pm *PersistenceManager) Stop() {
	close(pm.stopCh)
}
