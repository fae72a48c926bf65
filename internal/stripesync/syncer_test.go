package stripesync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions/internal/config"
	"admissions/internal/logger"
	"admissions/pkg/circuitbreaker"
	"admissions/pkg/retry"
)

type fakeLister struct {
	mu    sync.Mutex
	pages map[string]*Page
	errs  []error
	calls []string
	since []time.Time
}

func (f *fakeLister) ListCharges(_ context.Context, createdAfter time.Time, startingAfter string) (*Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, startingAfter)
	f.since = append(f.since, createdAfter)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.pages[startingAfter], nil
}

type fakeStore struct {
	last     *Run
	started  []*Run
	finished []*Run
	payments []Payment
}

func (f *fakeStore) LastSuccessfulRun(context.Context) (*Run, error) { return f.last, nil }

func (f *fakeStore) StartRun(_ context.Context, trigger string, since time.Time) (*Run, error) {
	run := &Run{ID: "run-new", Trigger: trigger, Status: StatusRunning, Since: since}
	f.started = append(f.started, run)
	return run, nil
}

func (f *fakeStore) FinishRun(_ context.Context, run *Run) error {
	f.finished = append(f.finished, run)
	return nil
}

func (f *fakeStore) UpsertPayments(_ context.Context, payments []Payment) error {
	f.payments = append(f.payments, payments...)
	return nil
}

func (f *fakeStore) ListRuns(context.Context, int) ([]Run, error) { return nil, nil }

type fakeLocker struct {
	held     bool
	released bool
}

func (f *fakeLocker) TryLock(context.Context, string, time.Duration) (func(context.Context) error, bool, error) {
	if f.held {
		return nil, false, nil
	}
	f.held = true
	return func(context.Context) error {
		f.held = false
		f.released = true
		return nil
	}, true, nil
}

func testSyncer(lister ChargeLister, store Store, locker Locker) *Syncer {
	cfg := config.StripeSyncConfig{
		Retry: config.RetryConfig{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond},
	}
	breaker := circuitbreaker.NewWrapper(circuitbreaker.Config{Name: "stripe-test", MinRequests: 100})
	return NewSyncer(lister, store, locker, breaker, cfg, logger.NopLogger())
}

func TestSyncer_PagesThroughCharges(t *testing.T) {
	lister := &fakeLister{pages: map[string]*Page{
		"":     {Payments: []Payment{{ID: "ch_1"}, {ID: "ch_2"}}, HasMore: true, LastID: "ch_2"},
		"ch_2": {Payments: []Payment{{ID: "ch_3"}}, HasMore: false, LastID: "ch_3"},
	}}
	last := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{last: &Run{StartedAt: last, Status: StatusSuccess}}
	locker := &fakeLocker{}

	run, err := testSyncer(lister, store, locker).Run(context.Background(), TriggerManual)
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, run.Status)
	assert.Equal(t, 3, run.Payments)
	assert.Equal(t, []string{"", "ch_2"}, lister.calls)
	assert.Equal(t, last.Add(-overlap), lister.since[0])
	assert.Len(t, store.payments, 3)
	require.Len(t, store.finished, 1)
	assert.True(t, locker.released)
}

func TestSyncer_RetriesTransientFailures(t *testing.T) {
	lister := &fakeLister{
		pages: map[string]*Page{"": {Payments: []Payment{{ID: "ch_1"}}}},
		errs:  []error{errors.New("connection reset"), nil},
	}
	store := &fakeStore{}

	run, err := testSyncer(lister, store, &fakeLocker{}).Run(context.Background(), TriggerSchedule)
	require.NoError(t, err)
	assert.Equal(t, 1, run.Payments)
	assert.Len(t, lister.calls, 2)
	assert.True(t, lister.since[0].IsZero())
}

func TestSyncer_RecordsFatalFailure(t *testing.T) {
	lister := &fakeLister{errs: []error{retry.Fatal(errors.New("stripe returned 401: invalid key"))}}
	store := &fakeStore{}

	run, err := testSyncer(lister, store, &fakeLocker{}).Run(context.Background(), TriggerManual)
	require.Error(t, err)
	require.NotNil(t, run)

	assert.Len(t, lister.calls, 1)
	assert.Equal(t, StatusFailed, run.Status)
	require.NotNil(t, run.Error)
	assert.Contains(t, *run.Error, "invalid key")
	require.Len(t, store.finished, 1)
}

func TestSyncer_LockHeld(t *testing.T) {
	store := &fakeStore{}
	locker := &fakeLocker{held: true}

	_, err := testSyncer(&fakeLister{}, store, locker).Run(context.Background(), TriggerManual)
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.Empty(t, store.started)
}

func TestNewScheduler_InvalidSpec(t *testing.T) {
	_, err := NewScheduler("every now and then", testSyncer(&fakeLister{}, &fakeStore{}, &fakeLocker{}), logger.NopLogger())
	assert.Error(t, err)
}
