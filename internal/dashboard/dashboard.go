// Package dashboard implements the web-based monitoring interface over the
// batch stage progress engine.
package dashboard

import (
	"context"
	"net/http"
	"time"

	"github.com/Hendyvelarius/lapidashboard-sub000/internal/httputil"
	"github.com/Hendyvelarius/lapidashboard-sub000/internal/stage"
)

// Source serves the latest computed snapshot and can force a new pass.
type Source interface {
	Snapshot() *stage.Snapshot
	Refresh(ctx context.Context) error
}

type Dashboard struct {
	source Source
}

type Summary struct {
	SnapshotID  string            `json:"snapshot_id"`
	TakenAt     time.Time         `json:"taken_at"`
	Departments []stage.Aggregate `json:"departments"`
	BatchCount  int               `json:"batch_count"`
}

type CategorySummary struct {
	SnapshotID string            `json:"snapshot_id"`
	TakenAt    time.Time         `json:"taken_at"`
	Categories []stage.Aggregate `json:"categories"`
}

type Detail struct {
	Department string              `json:"department"`
	Stage      string              `json:"stage"`
	Category   string              `json:"category,omitempty"`
	Batches    []stage.BatchDetail `json:"batches"`
}

func NewDashboard(source Source) *Dashboard {
	return &Dashboard{source: source}
}

func (d *Dashboard) snapshot(w http.ResponseWriter) *stage.Snapshot {
	snap := d.source.Snapshot()
	if snap == nil {
		httputil.WriteJSONError(w, "No snapshot computed yet", http.StatusServiceUnavailable)
	}
	return snap
}

func (d *Dashboard) GetSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := d.snapshot(w)
	if snap == nil {
		return
	}

	d.writeSummary(w, snap)
}

func (d *Dashboard) GetCategorySummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := d.snapshot(w)
	if snap == nil {
		return
	}

	httputil.WriteJSON(w, CategorySummary{
		SnapshotID: snap.ID,
		TakenAt:    snap.TakenAt,
		Categories: snap.Categories,
	})
}

func (d *Dashboard) GetDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	department := r.URL.Query().Get("department")
	stageName := r.URL.Query().Get("stage")
	category := r.URL.Query().Get("category")
	if department == "" || stageName == "" {
		httputil.WriteJSONError(w, "department and stage are required", http.StatusBadRequest)
		return
	}

	snap := d.snapshot(w)
	if snap == nil {
		return
	}

	httputil.WriteJSON(w, Detail{
		Department: department,
		Stage:      stageName,
		Category:   category,
		Batches:    snap.Drilldown(department, stageName, category),
	})
}

func (d *Dashboard) GetUnregistered(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := d.snapshot(w)
	if snap == nil {
		return
	}

	httputil.WriteJSON(w, snap.Unregistered)
}

func (d *Dashboard) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := d.source.Refresh(r.Context()); err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusBadGateway)
		return
	}

	snap := d.snapshot(w)
	if snap == nil {
		return
	}

	d.writeSummary(w, snap)
}

func (d *Dashboard) writeSummary(w http.ResponseWriter, snap *stage.Snapshot) {
	httputil.WriteJSON(w, Summary{
		SnapshotID:  snap.ID,
		TakenAt:     snap.TakenAt,
		Departments: snap.Departments,
		BatchCount:  snap.BatchCount,
	})
}
