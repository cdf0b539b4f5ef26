package stage

// Normalize filters raw process records down to the trackable production
// flow. Records belonging to released batches are dropped, whether the
// batch is in the externally supplied released set or carries a completed
// release-label step. Records whose stage tag is outside the tracked flow
// are dropped afterwards, so a release label parked under a non-flow tag
// still excludes its batch.
func Normalize(records []Record, released map[string]bool) []Record {
	labelled := make(map[string]bool)
	for _, r := range records {
		if r.StepName == ReleaseLabelStep && r.EndDate != nil {
			labelled[r.BatchNo] = true
		}
	}

	normalized := make([]Record, 0, len(records))
	for _, r := range records {
		if released[r.BatchNo] || labelled[r.BatchNo] {
			continue
		}
		if _, tracked := CondenseStage(r.StageGroup); !tracked {
			continue
		}
		normalized = append(normalized, r)
	}

	return normalized
}
