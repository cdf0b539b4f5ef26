package refresh

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hendyvelarius/lapidashboard-sub000/internal/stage"
)

type fakeRecordSource struct {
	records []stage.Record
	catalog stage.Catalog
	err     error
}

func (f *fakeRecordSource) GetProcessRecords(_ context.Context) ([]stage.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeRecordSource) GetProductCatalog(_ context.Context) (stage.Catalog, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.catalog, nil
}

type fakeReleasedSource struct {
	released map[string]bool
	err      error
}

func (f *fakeReleasedSource) Released(_ context.Context) (map[string]bool, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.released, nil
}

type captureNotifier struct {
	snaps []*stage.Snapshot
}

func (c *captureNotifier) SnapshotComputed(snap *stage.Snapshot) {
	c.snaps = append(c.snaps, snap)
}

func testRecords() []stage.Record {
	start := time.Now().AddDate(0, 0, -3)
	return []stage.Record{
		{
			BatchNo:       "B1",
			ProductID:     "P1",
			Department:    stage.DepartmentPN1,
			StageGroup:    stage.StageQC,
			StepName:      "QC Assay",
			StartDate:     &start,
			IdleStartDate: &start,
		},
	}
}

func TestRefresh_PublishesSnapshot(t *testing.T) {
	records := &fakeRecordSource{records: testRecords(), catalog: stage.Catalog{}}
	released := &fakeReleasedSource{released: map[string]bool{}}
	r := NewRefresher(records, released, time.UTC, time.Minute)

	assert.Nil(t, r.Snapshot())

	require.NoError(t, r.Refresh(context.Background()))

	snap := r.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, 1, snap.BatchCount)
	require.Len(t, snap.Departments, 1)
	assert.Equal(t, 1, snap.Departments[0].InProgressCount)
}

func TestRefresh_AppliesReleasedSet(t *testing.T) {
	records := &fakeRecordSource{records: testRecords(), catalog: stage.Catalog{}}
	released := &fakeReleasedSource{released: map[string]bool{"B1": true}}
	r := NewRefresher(records, released, time.UTC, time.Minute)

	require.NoError(t, r.Refresh(context.Background()))

	snap := r.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, 0, snap.BatchCount)
	assert.Empty(t, snap.Departments)
}

func TestRefresh_FailureKeepsPreviousSnapshot(t *testing.T) {
	records := &fakeRecordSource{records: testRecords(), catalog: stage.Catalog{}}
	released := &fakeReleasedSource{released: map[string]bool{}}
	r := NewRefresher(records, released, time.UTC, time.Minute)

	require.NoError(t, r.Refresh(context.Background()))
	previous := r.Snapshot()
	require.NotNil(t, previous)

	records.err = errors.New("connection reset")
	err := r.Refresh(context.Background())
	assert.Error(t, err)
	assert.Same(t, previous, r.Snapshot())
}

func TestRefresh_RegistryFailure(t *testing.T) {
	records := &fakeRecordSource{records: testRecords(), catalog: stage.Catalog{}}
	released := &fakeReleasedSource{err: errors.New("connection refused")}
	r := NewRefresher(records, released, time.UTC, time.Minute)

	err := r.Refresh(context.Background())
	assert.Error(t, err)
	assert.Nil(t, r.Snapshot())
}

func TestRefresh_InvokesNotifier(t *testing.T) {
	records := &fakeRecordSource{records: testRecords(), catalog: stage.Catalog{}}
	released := &fakeReleasedSource{released: map[string]bool{}}
	r := NewRefresher(records, released, time.UTC, time.Minute)

	notifier := &captureNotifier{}
	r.SetNotifier(notifier)

	require.NoError(t, r.Refresh(context.Background()))
	require.NoError(t, r.Refresh(context.Background()))

	require.Len(t, notifier.snaps, 2)
	assert.NotEqual(t, notifier.snaps[0].ID, notifier.snaps[1].ID)
}

func TestStartStop(t *testing.T) {
	records := &fakeRecordSource{records: testRecords(), catalog: stage.Catalog{}}
	released := &fakeReleasedSource{released: map[string]bool{}}
	r := NewRefresher(records, released, time.UTC, 10*time.Millisecond)

	go r.Start()
	time.Sleep(30 * time.Millisecond)
	r.Stop()

	assert.NotNil(t, r.Snapshot())
}
