package consumption

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// mergeMax merges a progress report into the counter monotonically: the
// stored value only ever grows, so concurrent, duplicate, or out-of-order
// reports cannot regress it. Returns the value after the merge.
var mergeMax = redis.NewScript(`
local cur = tonumber(redis.call('GET', KEYS[1]) or '-1')
local reported = tonumber(ARGV[1])
if reported > cur then
  redis.call('SET', KEYS[1], reported)
  redis.call('SADD', KEYS[2], ARGV[2])
  return reported
end
return cur
`)

const dirtySetKey = "consumption:dirty"

// Durable is the persistence half of the store. Both methods must preserve
// the monotonic merge: a write never lowers a stored counter.
type Durable interface {
	Find(ctx context.Context, principalID, contentID int64) (*State, error)
	UpsertMax(ctx context.Context, principalID, contentID int64, watchedSeconds int) error
}

// Store keeps watched-seconds counters in Redis and hydrates misses from the
// durable repository. The caller owns the state; the store never decrements.
type Store struct {
	client *redis.Client
	repo   Durable
}

// NewStore constructs a Store. repo may be nil in tests that only exercise
// the hot path.
func NewStore(client *redis.Client, repo Durable) *Store {
	return &Store{client: client, repo: repo}
}

// Report merges a watched-seconds report for the pair and returns the state
// after the merge.
func (s *Store) Report(ctx context.Context, principalID, contentID int64, watchedSeconds int) (*State, error) {
	if watchedSeconds < 0 {
		return nil, fmt.Errorf("consumption: negative report %d", watchedSeconds)
	}
	member := dirtyMember(principalID, contentID)
	merged, err := mergeMax.Run(ctx, s.client,
		[]string{counterKey(principalID, contentID), dirtySetKey},
		watchedSeconds, member,
	).Int()
	if err != nil {
		return nil, fmt.Errorf("consumption: merge: %w", err)
	}
	return &State{
		PrincipalID:    principalID,
		ContentID:      contentID,
		WatchedSeconds: merged,
		UpdatedAt:      time.Now(),
	}, nil
}

// Get returns the current state for the pair, nil when no playback has been
// reported yet. Redis misses fall back to the durable store and re-prime the
// counter.
func (s *Store) Get(ctx context.Context, principalID, contentID int64) (*State, error) {
	watched, err := s.client.Get(ctx, counterKey(principalID, contentID)).Int()
	if err == nil {
		return &State{PrincipalID: principalID, ContentID: contentID, WatchedSeconds: watched}, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("consumption: get: %w", err)
	}
	if s.repo == nil {
		return nil, nil
	}
	state, err := s.repo.Find(ctx, principalID, contentID)
	if err != nil || state == nil {
		return state, err
	}
	// Re-prime through the merge script so a concurrent report cannot be
	// overwritten by the stale durable value. Return the merged result, not
	// the durable row: redis may already hold a higher counter.
	return s.Report(ctx, principalID, contentID, state.WatchedSeconds)
}

// FlushDirty persists every counter touched since the last flush. Invoked by
// the background worker; safe to run concurrently with reports because both
// sides merge by max.
func (s *Store) FlushDirty(ctx context.Context) (int, error) {
	if s.repo == nil {
		return 0, errors.New("consumption: no durable repository configured")
	}
	members, err := s.client.SPopN(ctx, dirtySetKey, 512).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("consumption: pop dirty set: %w", err)
	}
	flushed := 0
	for i, member := range members {
		principalID, contentID, ok := parseDirtyMember(member)
		if !ok {
			continue
		}
		watched, err := s.client.Get(ctx, counterKey(principalID, contentID)).Int()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			s.requeue(ctx, members[i:])
			return flushed, err
		}
		if err := s.repo.UpsertMax(ctx, principalID, contentID, watched); err != nil {
			s.requeue(ctx, members[i:])
			return flushed, err
		}
		flushed++
	}
	return flushed, nil
}

// requeue puts every not-yet-flushed member back so the next run retries the
// whole remainder, not just the one that failed.
func (s *Store) requeue(ctx context.Context, members []string) {
	if len(members) == 0 {
		return
	}
	args := make([]any, len(members))
	for i, m := range members {
		args[i] = m
	}
	_ = s.client.SAdd(ctx, dirtySetKey, args...).Err()
}

func counterKey(principalID, contentID int64) string {
	return fmt.Sprintf("consumption:%d:%d", principalID, contentID)
}

func dirtyMember(principalID, contentID int64) string {
	return fmt.Sprintf("%d:%d", principalID, contentID)
}

func parseDirtyMember(member string) (int64, int64, bool) {
	parts := strings.SplitN(member, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	principalID, err1 := strconv.ParseInt(parts[0], 10, 64)
	contentID, err2 := strconv.ParseInt(parts[1], 10, 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return principalID, contentID, true
}
