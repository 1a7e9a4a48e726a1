package consumption

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDurable struct {
	mu      sync.Mutex
	rows    map[string]int
	upserts int
	fail    bool
	onFind  func()
}

func newFakeDurable() *fakeDurable {
	return &fakeDurable{rows: map[string]int{}}
}

func (f *fakeDurable) key(principalID, contentID int64) string {
	return fmt.Sprintf("%d:%d", principalID, contentID)
}

func (f *fakeDurable) Find(_ context.Context, principalID, contentID int64) (*State, error) {
	if f.onFind != nil {
		f.onFind()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	watched, ok := f.rows[f.key(principalID, contentID)]
	if !ok {
		return nil, nil
	}
	return &State{PrincipalID: principalID, ContentID: contentID, WatchedSeconds: watched}, nil
}

func (f *fakeDurable) UpsertMax(_ context.Context, principalID, contentID int64, watchedSeconds int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("postgres unavailable")
	}
	f.upserts++
	k := f.key(principalID, contentID)
	if watchedSeconds > f.rows[k] {
		f.rows[k] = watchedSeconds
	}
	return nil
}

func newTestStore(t *testing.T) (*Store, *fakeDurable) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	durable := newFakeDurable()
	return NewStore(client, durable), durable
}

func TestReportMergesByMax(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	state, err := store.Report(ctx, 1, 2, 30)
	require.NoError(t, err)
	assert.Equal(t, 30, state.WatchedSeconds)

	// A lower, late report never regresses the counter.
	state, err = store.Report(ctx, 1, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 30, state.WatchedSeconds)

	state, err = store.Report(ctx, 1, 2, 45)
	require.NoError(t, err)
	assert.Equal(t, 45, state.WatchedSeconds)
}

func TestReportRejectsNegative(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Report(context.Background(), 1, 2, -1)
	require.Error(t, err)
}

func TestReportConcurrentKeepsMax(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			_, _ = store.Report(ctx, 1, 2, v)
		}(i)
	}
	wg.Wait()

	state, err := store.Get(ctx, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, 50, state.WatchedSeconds)
}

func TestGetMissFallsBackToDurable(t *testing.T) {
	store, durable := newTestStore(t)
	ctx := context.Background()
	durable.rows["1:2"] = 77

	state, err := store.Get(ctx, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, 77, state.WatchedSeconds)

	// The counter is re-primed: a second read no longer needs the repo.
	durable.rows["1:2"] = 0
	state, err = store.Get(ctx, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, 77, state.WatchedSeconds)
}

func TestGetReturnsMergedValueWhenReportRacesRePrime(t *testing.T) {
	store, durable := newTestStore(t)
	ctx := context.Background()
	durable.rows["1:2"] = 77

	// A report lands between the durable read and the re-prime; the caller
	// must see the merged counter, not the stale durable row.
	durable.onFind = func() {
		_, err := store.Report(ctx, 1, 2, 100)
		require.NoError(t, err)
	}

	state, err := store.Get(ctx, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, 100, state.WatchedSeconds)
}

func TestGetUnknownPairIsNil(t *testing.T) {
	store, _ := newTestStore(t)
	state, err := store.Get(context.Background(), 9, 9)
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestFlushDirtyPersistsTouchedCounters(t *testing.T) {
	store, durable := newTestStore(t)
	ctx := context.Background()

	_, err := store.Report(ctx, 1, 2, 30)
	require.NoError(t, err)
	_, err = store.Report(ctx, 3, 4, 15)
	require.NoError(t, err)

	flushed, err := store.FlushDirty(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, flushed)
	assert.Equal(t, 30, durable.rows["1:2"])
	assert.Equal(t, 15, durable.rows["3:4"])

	// Nothing dirty left.
	flushed, err = store.FlushDirty(ctx)
	require.NoError(t, err)
	assert.Zero(t, flushed)
}

func TestFlushDirtyRequeuesOnFailure(t *testing.T) {
	store, durable := newTestStore(t)
	ctx := context.Background()

	// Two dirty counters: a failing run must requeue both, not just the one
	// whose upsert failed.
	_, err := store.Report(ctx, 1, 2, 30)
	require.NoError(t, err)
	_, err = store.Report(ctx, 3, 4, 15)
	require.NoError(t, err)

	durable.fail = true
	_, err = store.FlushDirty(ctx)
	require.Error(t, err)

	durable.fail = false
	flushed, err := store.FlushDirty(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, flushed)
	assert.Equal(t, 30, durable.rows["1:2"])
	assert.Equal(t, 15, durable.rows["3:4"])
}

func TestFlushDirtySkipsUntouchedCounters(t *testing.T) {
	store, durable := newTestStore(t)
	ctx := context.Background()

	_, err := store.Report(ctx, 1, 2, 30)
	require.NoError(t, err)
	flushed, err := store.FlushDirty(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, flushed)

	// A report that does not raise the counter does not re-dirty it.
	_, err = store.Report(ctx, 1, 2, 10)
	require.NoError(t, err)
	flushed, err = store.FlushDirty(ctx)
	require.NoError(t, err)
	assert.Zero(t, flushed)
	assert.Equal(t, 1, durable.upserts)
}
