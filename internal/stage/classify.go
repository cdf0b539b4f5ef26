package stage

import "time"

// Classification is the classifier output for one batch within one stage.
type Classification struct {
	Status    Status
	StartedAt *time.Time
	// Excluded marks a batch that failed the QA entry gate and must not
	// appear in QA aggregates at all, not even as a not-started row.
	Excluded bool
}

// Classify resolves the status of one batch's records for one stage and the
// timestamp its queue age is measured from. Status priority is fixed:
// Waiting > InProgress > Complete > NotStarted. A batch can satisfy both
// the waiting predicate and the naive in-progress check at once; waiting
// wins because a scheduling stall is a distinct operational condition the
// dashboard has to surface separately.
func Classify(view []Record, stageName string) Classification {
	if stageName == StageQA {
		return classifyQA(view)
	}
	return Classification{
		Status:    resolveStatus(view),
		StartedAt: earliestIdleStart(view),
	}
}

// classifyQA applies the QA entry gate before the shared status rules: the
// batch has entered QA only once every one of the four gating steps has
// been given a work slot. Queue age for QA is measured from the latest of
// the four gating idle starts, not the earliest.
func classifyQA(view []Record) Classification {
	gated := make(map[string]bool)
	var latest *time.Time
	for _, r := range view {
		if !isQAGatingStep(r.StepName) || r.IdleStartDate == nil {
			continue
		}
		gated[r.StepName] = true
		if latest == nil || r.IdleStartDate.After(*latest) {
			t := *r.IdleStartDate
			latest = &t
		}
	}

	if len(gated) < len(QAGatingSteps) {
		return Classification{Status: StatusNotStarted, Excluded: true}
	}

	return Classification{Status: resolveStatus(view), StartedAt: latest}
}

func resolveStatus(view []Record) Status {
	switch {
	case isWaiting(view):
		return StatusWaiting
	case isInProgress(view):
		return StatusInProgress
	case allEnded(view):
		return StatusComplete
	default:
		return StatusNotStarted
	}
}

// isWaiting reports whether every step that has been given a work slot is
// finished while at least one step is still unscheduled: the batch is
// stalled awaiting scheduling, not awaiting work. A stage whose steps are
// all finished is done, never waiting.
func isWaiting(view []Record) bool {
	if allEnded(view) {
		return false
	}

	withIdle := 0
	withoutIdle := 0
	idleAllEnded := true
	for _, r := range view {
		if r.IdleStartDate == nil {
			withoutIdle++
			continue
		}
		withIdle++
		if r.EndDate == nil {
			idleAllEnded = false
		}
	}

	if withIdle == 0 {
		return false
	}
	return idleAllEnded && withoutIdle > 0
}

// isInProgress assumes the waiting predicate was already rejected. The
// display flag is a manual override that shows a batch as active even
// before any step has a start date.
func isInProgress(view []Record) bool {
	var started, open, flagged bool
	for _, r := range view {
		if r.StartDate != nil {
			started = true
		}
		if r.EndDate == nil {
			open = true
		}
		if r.DisplayFlag {
			flagged = true
		}
	}
	return (started && open) || flagged
}

func allEnded(view []Record) bool {
	for _, r := range view {
		if r.EndDate == nil {
			return false
		}
	}
	return true
}

func earliestIdleStart(view []Record) *time.Time {
	var earliest *time.Time
	for _, r := range view {
		if r.IdleStartDate == nil {
			continue
		}
		if earliest == nil || r.IdleStartDate.Before(*earliest) {
			t := *r.IdleStartDate
			earliest = &t
		}
	}
	return earliest
}

func isQAGatingStep(stepName string) bool {
	for _, s := range QAGatingSteps {
		if s == stepName {
			return true
		}
	}
	return false
}
