package stage

// BatchStageKey identifies one batch's records within one stage.
type BatchStageKey struct {
	BatchNo string
	Stage   string
}

// GroupByBatchStage partitions normalized records by batch and raw stage
// tag. Pure partitioning: no records are dropped or altered.
func GroupByBatchStage(records []Record) map[BatchStageKey][]Record {
	groups := make(map[BatchStageKey][]Record)
	for _, r := range records {
		key := BatchStageKey{BatchNo: r.BatchNo, Stage: r.StageGroup}
		groups[key] = append(groups[key], r)
	}
	return groups
}

// GroupByBatchDisplayStage partitions normalized records by batch and
// condensed (displayed) stage. Records with untracked stage tags are
// assumed to have been removed by Normalize already.
func GroupByBatchDisplayStage(records []Record) map[BatchStageKey][]Record {
	groups := make(map[BatchStageKey][]Record)
	for _, r := range records {
		displayed, ok := CondenseStage(r.StageGroup)
		if !ok {
			continue
		}
		key := BatchStageKey{BatchNo: r.BatchNo, Stage: displayed}
		groups[key] = append(groups[key], r)
	}
	return groups
}

// GroupByBatch partitions normalized records by batch alone, for checks
// that span every stage of one batch.
func GroupByBatch(records []Record) map[string][]Record {
	batches := make(map[string][]Record)
	for _, r := range records {
		batches[r.BatchNo] = append(batches[r.BatchNo], r)
	}
	return batches
}
