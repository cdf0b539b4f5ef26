// Package refresh polls the record source and released-batch registry on an
// interval, runs the stage engine over the full snapshot, and publishes the
// result for the HTTP handlers and metrics.
package refresh

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Hendyvelarius/lapidashboard-sub000/internal/metrics"
	"github.com/Hendyvelarius/lapidashboard-sub000/internal/stage"
)

type RecordSource interface {
	GetProcessRecords(ctx context.Context) ([]stage.Record, error)
	GetProductCatalog(ctx context.Context) (stage.Catalog, error)
}

type ReleasedSource interface {
	Released(ctx context.Context) (map[string]bool, error)
}

// Notifier is called after every successful refresh pass.
type Notifier interface {
	SnapshotComputed(snap *stage.Snapshot)
}

type Refresher struct {
	records  RecordSource
	released ReleasedSource
	notifier Notifier
	loc      *time.Location
	interval time.Duration
	stop     chan bool

	mu   sync.RWMutex
	snap *stage.Snapshot
}

func NewRefresher(records RecordSource, released ReleasedSource, loc *time.Location, interval time.Duration) *Refresher {
	return &Refresher{
		records:  records,
		released: released,
		loc:      loc,
		interval: interval,
		stop:     make(chan bool),
	}
}

func (r *Refresher) SetNotifier(n Notifier) {
	r.notifier = n
}

func (r *Refresher) Start() {
	log.Printf("Snapshot refresher started (interval %s)", r.interval)

	for {
		select {
		case <-r.stop:
			log.Printf("Snapshot refresher stopped")
			return
		default:
			if err := r.Refresh(context.Background()); err != nil {
				log.Printf("Snapshot refresh failed: %v", err)
			}
			time.Sleep(r.interval)
		}
	}
}

// Refresh runs one full derivation pass. On failure the previous snapshot
// stays published; a flaky collaborator must not blank out the dashboard.
func (r *Refresher) Refresh(ctx context.Context) error {
	start := time.Now()

	records, err := r.records.GetProcessRecords(ctx)
	if err != nil {
		metrics.RecordRefreshFailure()
		return fmt.Errorf("failed to load process records: %w", err)
	}

	catalog, err := r.records.GetProductCatalog(ctx)
	if err != nil {
		metrics.RecordRefreshFailure()
		return fmt.Errorf("failed to load product catalog: %w", err)
	}

	releasedSet, err := r.released.Released(ctx)
	if err != nil {
		metrics.RecordRefreshFailure()
		return fmt.Errorf("failed to load released batches: %w", err)
	}

	snap := stage.Compute(records, releasedSet, catalog, time.Now().In(r.loc), r.loc)

	r.mu.Lock()
	r.snap = snap
	r.mu.Unlock()

	metrics.UpdateSnapshotGauges(snap)
	metrics.RecordRefreshSuccess(time.Since(start))
	log.Printf("Snapshot %s computed: %d batches", snap.ID, snap.BatchCount)

	if r.notifier != nil {
		r.notifier.SnapshotComputed(snap)
	}

	return nil
}

// Snapshot returns the most recent snapshot, or nil before the first
// successful pass. Snapshots are immutable and safe to read concurrently.
func (r *Refresher) Snapshot() *stage.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap
}

func (r *Refresher) Stop() {
	r.stop <- true
}
