package pipeline

import (
	"sync"

	"github.com/moolen/templatematch/internal/catalog"
	"github.com/moolen/templatematch/internal/logging"
	"github.com/moolen/templatematch/internal/snapshot"
)

// Installer turns validated generated templates into catalog entries
// and publishes a freshly built snapshot (§4.7 Install, §4.4). Rebuilds
// are serialised: at most one rebuild runs at a time, with at most one
// more queued behind it (MAX_PENDING_INSTALLS = 1 in flight, 1 queued,
// §4.7), so a burst of installs coalesces into a single rebuild rather
// than rebuilding once per template.
type Installer struct {
	catalog   *catalog.Catalog
	store     *snapshot.Store
	validator *Validator
	logger    *logging.Logger

	mu      sync.Mutex
	pending bool
	running bool
}

// NewInstaller wires an Installer around cat/store, validating
// candidates with validator before they are installed.
func NewInstaller(cat *catalog.Catalog, store *snapshot.Store, validator *Validator) *Installer {
	return &Installer{
		catalog:   cat,
		store:     store,
		validator: validator,
		logger:    logging.GetLogger("pipeline.installer"),
	}
}

// HandleResult validates every template in resp against the line that
// produced it, installs the survivors into the catalog, and triggers a
// coalesced rebuild if anything was installed.
func (i *Installer) HandleResult(batch []UnmatchedLine, resp GenerationResponse) {
	installed := 0
	for idx, candidate := range resp.Templates {
		if idx >= len(batch) {
			break
		}
		originatingLine := string(batch[idx].Line)

		pattern, fragments, ok := i.validator.Validate(candidate, originatingLine)
		if !ok {
			i.logger.WarnWithFields("rejected generated template", logging.Field("pattern", pattern))
			continue
		}

		if _, err := i.catalog.Install(pattern, fragments, candidate.Example, candidate.Variables); err != nil {
			i.logger.ErrorWithErr("failed to install validated template", err)
			continue
		}
		installed++
	}

	if installed > 0 {
		i.triggerRebuild()
	}
}

// triggerRebuild requests a snapshot rebuild. If one is already
// running, the request is recorded and will run exactly once more when
// the current rebuild finishes, coalescing any installs that arrived in
// the meantime.
func (i *Installer) triggerRebuild() {
	i.mu.Lock()
	if i.running {
		i.pending = true
		i.mu.Unlock()
		return
	}
	i.running = true
	i.mu.Unlock()

	go i.runRebuildLoop()
}

func (i *Installer) runRebuildLoop() {
	for {
		next := snapshot.Build(i.catalog)
		i.store.Install(next)
		i.logger.Info("installed rebuilt snapshot")

		i.mu.Lock()
		if !i.pending {
			i.running = false
			i.mu.Unlock()
			return
		}
		i.pending = false
		i.mu.Unlock()
	}
}
