package stage

import "sort"

// Drilldown re-selects the batches behind one aggregation key for detail
// display. Category may be empty to match every category. In-progress
// batches come first, longest in stage at the top with undefined durations
// last; waiting batches follow in stable order. Completed and not-started
// batches are not part of the queue view.
func (s *Snapshot) Drilldown(department, stageName, category string) []BatchDetail {
	details := []BatchDetail{}
	for _, e := range s.entries {
		if e.department != department || e.stage != stageName {
			continue
		}
		if category != "" && e.detail.Category != category {
			continue
		}
		if e.detail.Status != StatusInProgress && e.detail.Status != StatusWaiting {
			continue
		}
		details = append(details, e.detail)
	}

	sort.SliceStable(details, func(i, j int) bool {
		a, b := details[i], details[j]
		if a.Status != b.Status {
			return a.Status == StatusInProgress
		}
		if a.Status != StatusInProgress {
			return false
		}
		switch {
		case a.DaysInStage == nil:
			return false
		case b.DaysInStage == nil:
			return true
		default:
			return *a.DaysInStage > *b.DaysInStage
		}
	})

	return details
}

// StageRecords returns the normalized records behind one (batch, displayed
// stage) group, mainly for verifying that condensed stages expand back to
// the record set they were aggregated from.
func (s *Snapshot) StageRecords(batchNo, stageName string) []Record {
	return s.groups[BatchStageKey{BatchNo: batchNo, Stage: stageName}]
}
