package persist

import (
	"context"
	"log"
	"time"

	"github.com/sweeney/desk-monitor/internal/state"
)

// Watcher saves the persistable state whenever it changes, polled at
// 1 Hz. The final save on clean shutdown is the supervisor's job; the
// watcher exists so an unclean stop loses at most a second of changes.
type Watcher struct {
	path     string
	store    *state.Store
	interval time.Duration

	last Saved
}

// NewWatcher returns a watcher for the given state file.
func NewWatcher(path string, store *state.Store) *Watcher {
	return &Watcher{path: path, store: store, interval: time.Second}
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	log.Printf("persist: watching %s", w.path)
	w.last = Current(w.store)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick()
		}
	}
}

func (w *Watcher) tick() {
	cur := Current(w.store)
	if !cur.equal(w.last) {
		Save(w.path, cur)
		w.last = cur
	}
}
