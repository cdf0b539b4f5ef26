package stage

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Aggregate summarizes one (department, stage[, category]) queue cell.
type Aggregate struct {
	Department            string `json:"department"`
	Stage                 string `json:"stage"`
	Category              string `json:"category,omitempty"`
	InProgressCount       int    `json:"in_progress_count"`
	WaitingCount          int    `json:"waiting_count"`
	AverageDaysInProgress int    `json:"average_days_in_progress"`
	TotalBatches          int    `json:"total_batches"`
}

// BatchDetail annotates one batch within a drill-down list.
type BatchDetail struct {
	BatchNo     string `json:"batch_no"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Category    string `json:"category"`
	Status      Status `json:"status"`
	StartedAt   string `json:"started_at,omitempty"`
	DaysInStage *int   `json:"days_in_stage,omitempty"`
}

// Snapshot is the immutable result of one computation pass over the full
// record set. Everything is recomputed from scratch on each refresh; a
// snapshot is safe for concurrent reads and superseded by the next pass.
type Snapshot struct {
	ID           string      `json:"id"`
	TakenAt      time.Time   `json:"taken_at"`
	Departments  []Aggregate `json:"departments"`
	Categories   []Aggregate `json:"categories"`
	Unregistered []Product   `json:"unregistered_products"`
	BatchCount   int         `json:"batch_count"`

	entries []batchEntry
	groups  map[BatchStageKey][]Record
}

type batchEntry struct {
	department string
	stage      string
	detail     BatchDetail
}

type cell struct {
	inProgress int
	waiting    int
	total      int
	daySum     int
	dayCount   int
}

func (c *cell) add(status Status, days *int) {
	c.total++
	switch status {
	case StatusInProgress:
		c.inProgress++
		if days != nil {
			c.daySum += *days
			c.dayCount++
		}
	case StatusWaiting:
		c.waiting++
	}
}

func (c *cell) aggregate(department, stageName, category string) Aggregate {
	avg := 0
	if c.dayCount > 0 {
		avg = int(math.Round(float64(c.daySum) / float64(c.dayCount)))
	}
	return Aggregate{
		Department:            department,
		Stage:                 stageName,
		Category:              category,
		InProgressCount:       c.inProgress,
		WaitingCount:          c.waiting,
		AverageDaysInProgress: avg,
		TotalBatches:          c.total,
	}
}

type deptKey struct {
	department string
	stage      string
}

type catKey struct {
	department string
	stage      string
	category   string
}

// Compute runs one full derivation pass: normalize, group by condensed
// stage, classify each batch-stage view, and fold the classifications into
// per-department and per-category aggregates in stage priority order.
// Batches in unrecognized departments are kept out of the condensed
// department view and surfaced through the unregistered-product listing
// instead. The current time is an explicit parameter; nothing inside reads
// a clock.
func Compute(records []Record, released map[string]bool, catalog Catalog, now time.Time, loc *time.Location) *Snapshot {
	normalized := Normalize(records, released)
	groups := GroupByBatchDisplayStage(normalized)

	keys := make([]BatchStageKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].BatchNo != keys[j].BatchNo {
			return keys[i].BatchNo < keys[j].BatchNo
		}
		return stageRank(keys[i].Stage) < stageRank(keys[j].Stage)
	})

	snap := &Snapshot{
		ID:           uuid.New().String(),
		TakenAt:      now,
		Departments:  []Aggregate{},
		Categories:   []Aggregate{},
		Unregistered: []Product{},
		BatchCount:   len(GroupByBatch(normalized)),
		groups:       groups,
	}

	deptCells := make(map[deptKey]*cell)
	catCells := make(map[catKey]*cell)

	for _, key := range keys {
		view := groups[key]
		cls := Classify(view, key.Stage)
		if cls.Excluded {
			continue
		}

		department := NormalizeDepartment(view[0].Department)
		product := catalog.Lookup(view[0].ProductID, view[0].ProductName)

		var days *int
		if cls.StartedAt != nil {
			d := CalendarDaysSince(*cls.StartedAt, now, loc)
			days = &d
		}

		detail := BatchDetail{
			BatchNo:     key.BatchNo,
			ProductID:   view[0].ProductID,
			ProductName: product.Name,
			Category:    product.Category,
			Status:      cls.Status,
			DaysInStage: days,
		}
		if cls.StartedAt != nil {
			detail.StartedAt = cls.StartedAt.Format("2006-01-02")
		}
		snap.entries = append(snap.entries, batchEntry{
			department: department,
			stage:      key.Stage,
			detail:     detail,
		})

		if department == DepartmentUnrecognized {
			continue
		}

		dk := deptKey{department: department, stage: key.Stage}
		if deptCells[dk] == nil {
			deptCells[dk] = &cell{}
		}
		deptCells[dk].add(cls.Status, days)

		ck := catKey{department: department, stage: key.Stage, category: product.Category}
		if catCells[ck] == nil {
			catCells[ck] = &cell{}
		}
		catCells[ck].add(cls.Status, days)
	}

	for _, department := range []string{DepartmentPN1, DepartmentPN2} {
		for _, stageName := range DisplayStages() {
			if c, ok := deptCells[deptKey{department: department, stage: stageName}]; ok {
				snap.Departments = append(snap.Departments, c.aggregate(department, stageName, ""))
			}
		}
	}

	catOrder := make([]catKey, 0, len(catCells))
	for key := range catCells {
		catOrder = append(catOrder, key)
	}
	sort.Slice(catOrder, func(i, j int) bool {
		a, b := catOrder[i], catOrder[j]
		if a.department != b.department {
			return a.department < b.department
		}
		if a.stage != b.stage {
			return stageRank(a.stage) < stageRank(b.stage)
		}
		return a.category < b.category
	})
	for _, key := range catOrder {
		snap.Categories = append(snap.Categories, catCells[key].aggregate(key.department, key.stage, key.category))
	}

	seen := make(map[string]bool)
	for _, e := range snap.entries {
		if e.department != DepartmentUnrecognized || seen[e.detail.ProductID] {
			continue
		}
		seen[e.detail.ProductID] = true
		snap.Unregistered = append(snap.Unregistered, Product{
			ID:       e.detail.ProductID,
			Name:     e.detail.ProductName,
			Category: e.detail.Category,
		})
	}

	return snap
}
