// Package stage derives batch progress from raw per-step process records.
// It classifies every in-flight batch's current manufacturing stage and
// status, measures how long the batch has sat in that stage, and rolls the
// results up into per-department queue summaries for the dashboard.
package stage

import (
	"sort"
	"time"
)

type (
	Status string
	Record struct {
		BatchNo       string     `json:"batch_no"`
		ProductID     string     `json:"product_id"`
		ProductName   string     `json:"product_name"`
		Department    string     `json:"department"`
		StageGroup    string     `json:"stage_group"`
		StepName      string     `json:"step_name"`
		SequenceOrder int        `json:"sequence_order"`
		StartDate     *time.Time `json:"start_date,omitempty"`
		EndDate       *time.Time `json:"end_date,omitempty"`
		IdleStartDate *time.Time `json:"idle_start_date,omitempty"`
		DisplayFlag   bool       `json:"display_flag"`
	}
)

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusWaiting    Status = "waiting"
	StatusComplete   Status = "complete"
)

const (
	DepartmentPN1          = "PN1"
	DepartmentPN2          = "PN2"
	DepartmentUnrecognized = "Unrecognized"
)

// Raw stage tags as they appear on process records.
const (
	StageWeighing           = "Weighing"
	StageGranulation        = "Granulation"
	StageMixing             = "Mixing"
	StageCompression        = "Compression"
	StageCoating            = "Coating"
	StagePrimaryPackaging   = "Primary Packaging"
	StageSecondaryPackaging = "Secondary Packaging"
	StageQC                 = "QC"
	StageMicro              = "Micro"
	StageQA                 = "QA"

	// StageNonFlow marks records that are not part of the tracked
	// production flow and never reach the dashboard.
	StageNonFlow = "Non Flow"
)

// Condensed stages shown on the dashboard.
const (
	StageProcessing = "Processing"
	StagePackaging  = "Packaging"
)

// ReleaseLabelStep is the step whose completion marks a batch as fully
// labelled and released, excluding it from every stage view.
const ReleaseLabelStep = "Release Labelling"

// QAGatingSteps are the four review steps that must all be scheduled before
// a batch counts as having entered the QA stage.
var QAGatingSteps = []string{
	"QA Review Batch Record",
	"QA Review Analytical Report",
	"QA Review Micro Report",
	"QA Review Packaging Record",
}

const CategoryOther = "Other"

var knownCategories = map[string]bool{
	"Tablet":    true,
	"Capsule":   true,
	"Syrup":     true,
	"Injection": true,
}

var condensedStage = map[string]string{
	StageWeighing:           StageWeighing,
	StageGranulation:        StageProcessing,
	StageMixing:             StageProcessing,
	StageCompression:        StageProcessing,
	StageCoating:            StageProcessing,
	StagePrimaryPackaging:   StagePackaging,
	StageSecondaryPackaging: StagePackaging,
	StageQC:                 StageQC,
	StageMicro:              StageMicro,
	StageQA:                 StageQA,
}

var stagePriority = map[string]int{
	StageWeighing:   1,
	StageProcessing: 2,
	StagePackaging:  3,
	StageQC:         4,
	StageMicro:      5,
	StageQA:         6,
}

// CondenseStage maps a raw stage tag to its displayed stage. The second
// return value is false for tags outside the tracked flow.
func CondenseStage(raw string) (string, bool) {
	displayed, ok := condensedStage[raw]
	return displayed, ok
}

// ExpandStage returns the raw stage tags that condense into the given
// displayed stage, so drill-down views can re-select the underlying records.
func ExpandStage(displayed string) []string {
	var raws []string
	for raw, d := range condensedStage {
		if d == displayed {
			raws = append(raws, raw)
		}
	}
	sort.Strings(raws)
	return raws
}

// DisplayStages lists the displayed stages in dashboard priority order.
func DisplayStages() []string {
	stages := make([]string, 0, len(stagePriority))
	for s := range stagePriority {
		stages = append(stages, s)
	}
	sort.Slice(stages, func(i, j int) bool {
		return stagePriority[stages[i]] < stagePriority[stages[j]]
	})
	return stages
}

func stageRank(displayed string) int {
	if rank, ok := stagePriority[displayed]; ok {
		return rank
	}
	return len(stagePriority) + 1
}

// NormalizeDepartment buckets anything outside the known production lines
// as Unrecognized rather than rejecting it.
func NormalizeDepartment(dept string) string {
	switch dept {
	case DepartmentPN1, DepartmentPN2:
		return dept
	default:
		return DepartmentUnrecognized
	}
}

// NormalizeCategory falls back to Other for anything outside the known set.
func NormalizeCategory(category string) string {
	if knownCategories[category] {
		return category
	}
	return CategoryOther
}

type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Catalog maps product IDs to display names and categories.
type Catalog map[string]Product

// Lookup resolves a product ID, falling back to the name carried on the
// record and the Other category when the catalog has no entry.
func (c Catalog) Lookup(productID, recordName string) Product {
	if p, ok := c[productID]; ok {
		p.Category = NormalizeCategory(p.Category)
		if p.Name == "" {
			p.Name = recordName
		}
		return p
	}
	return Product{ID: productID, Name: recordName, Category: CategoryOther}
}
