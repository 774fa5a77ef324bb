package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/gymtrack/internal/program"
	"github.com/2beens/gymtrack/internal/resolver"
	"github.com/2beens/gymtrack/internal/telemetry/metrics"
	"github.com/2beens/gymtrack/internal/workout"
)

const testCacheSize = 16 * 1024 * 1024

type brokenKV struct {
	err error
}

func (b *brokenKV) Get(context.Context, string) ([]byte, error) { return nil, b.err }
func (b *brokenKV) Set(context.Context, string, []byte) error   { return b.err }
func (b *brokenKV) Delete(context.Context, string) error        { return b.err }

func newTestStore(kv KV) *Store {
	return NewStore(kv, resolver.New(program.Default()), metrics.NewTestManager())
}

func testSession(id, day string, date time.Time) workout.Session {
	return workout.Session{
		ID:       id,
		Date:     date,
		Day:      day,
		Duration: 1800,
		Exercises: map[string][]workout.SetEntry{
			"Bench Press": {{Weight: "135", Reps: "8"}},
		},
	}
}

func TestStore_AppendListDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(NewMemoryKV(testCacheSize))

	sessions, err := store.ListSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.AppendSession(ctx, testSession("s1", "Day 1 – Push", now.Add(-48*time.Hour))))
	require.NoError(t, store.AppendSession(ctx, testSession("s2", "Pull", now)))
	require.NoError(t, store.AppendSession(ctx, testSession("s3", "Day 1", now.Add(-24*time.Hour))))

	sessions, err = store.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	// push order is kept
	assert.Equal(t, "s1", sessions[0].ID)
	assert.Equal(t, "s2", sessions[1].ID)
	assert.Equal(t, "s3", sessions[2].ID)
	// normalized on read
	assert.Equal(t, "push", sessions[0].Day)
	assert.Equal(t, "pull", sessions[1].Day)
	assert.Contains(t, sessions[0].Exercises, "bench-press")

	pushSessions, err := store.ListSessionsForDay(ctx, "push")
	require.NoError(t, err)
	require.Len(t, pushSessions, 2)
	pushSessions, err = store.ListSessionsForDay(ctx, "Day 1 - Push")
	require.NoError(t, err)
	assert.Len(t, pushSessions, 2)

	require.NoError(t, store.DeleteSession(ctx, "s1"))
	require.NoError(t, store.DeleteSession(ctx, "does-not-exist"))
	sessions, err = store.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "s2", sessions[0].ID)
}

func TestStore_LongHistoryInMemory(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(NewMemoryKV(8 * 1024 * 1024))

	start := time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC)
	for i := 0; i < 500; i++ {
		session := testSession(fmt.Sprintf("s-%03d", i), "push", start.Add(time.Duration(i)*24*time.Hour))
		session.Exercises = map[string][]workout.SetEntry{}
		for _, exercise := range []string{"bench-press", "overhead-press", "incline-db-press", "lateral-raise", "triceps-pushdown"} {
			for set := 0; set < 4; set++ {
				session.Exercises[exercise] = append(session.Exercises[exercise], workout.SetEntry{Weight: "135", Reps: "8", Note: "felt solid"})
			}
		}
		require.NoError(t, store.AppendSession(ctx, session), "append #%d", i)
	}

	sessions, err := store.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 500)
	assert.Equal(t, "s-000", sessions[0].ID)
	assert.Equal(t, "s-499", sessions[499].ID)
	assert.Len(t, sessions[499].Exercises["bench-press"], 4)
}

func TestStore_KeepsRawRecords(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV(testCacheSize)
	store := newTestStore(kv)

	require.NoError(t, store.AppendSession(ctx, testSession("s1", "Day 2 — Pull", time.Now())))

	data, err := kv.Get(ctx, SessionsKey)
	require.NoError(t, err)
	var raw []workout.Session
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "Day 2 — Pull", raw[0].Day)
	assert.Contains(t, raw[0].Exercises, "Bench Press")
}

func TestStore_LegacyRecords(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV(testCacheSize)
	store := newTestStore(kv)

	legacy := `[
		{"id":"old-1","date":"2022-05-01T17:30:00.000Z","day":"Day 3 – Legs","duration":3000,"exercises":{"Squat":[{"weight":"225","reps":"5"}]}},
		{"id":"old-2","date":"2022-05-03T17:30:00Z","day":"Mystery Day","duration":0,"exercises":{"Sled Push":[{"weight":"","reps":""}]}}
	]`
	require.NoError(t, kv.Set(ctx, SessionsKey, []byte(legacy)))

	sessions, err := store.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "legs", sessions[0].Day)
	assert.Equal(t, []workout.SetEntry{{Weight: "225", Reps: "5"}}, sessions[0].Exercises["back-squat"])
	assert.Equal(t, "Mystery Day", sessions[1].Day)
	assert.Contains(t, sessions[1].Exercises, "Sled Push")
}

func TestStore_StorageUnavailable(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(&brokenKV{err: errors.New("quota exceeded")})

	sessions, err := store.ListSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	sessions, err = store.ListSessionsForDay(ctx, "push")
	require.NoError(t, err)
	assert.Empty(t, sessions)

	assert.Error(t, store.AppendSession(ctx, testSession("s1", "push", time.Now())))
	assert.Error(t, store.DeleteSession(ctx, "s1"))

	assert.Empty(t, store.LoadDraft(ctx))
	assert.NotPanics(t, func() {
		store.SaveDraft(ctx, workout.DraftLog{"bench-press": {{Weight: "1"}}})
		store.ClearDraft(ctx)
	})
}

func TestStore_CorruptSessionsAreNotOverwritten(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV(testCacheSize)
	store := newTestStore(kv)
	require.NoError(t, kv.Set(ctx, SessionsKey, []byte("{not json")))

	sessions, err := store.ListSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	assert.Error(t, store.AppendSession(ctx, testSession("s1", "push", time.Now())))
	data, err := kv.Get(ctx, SessionsKey)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
}

func TestStore_Draft(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(NewMemoryKV(testCacheSize))

	assert.Empty(t, store.LoadDraft(ctx))

	draft := workout.DraftLog{
		"OHP":         {{Weight: "95", Reps: "5"}},
		"bench-press": {{Weight: "135", Reps: "8"}, {Weight: "135", Reps: "7", Note: "grindy"}},
	}
	store.SaveDraft(ctx, draft)

	loaded := store.LoadDraft(ctx)
	assert.Equal(t, workout.DraftLog{
		"overhead-press": {{Weight: "95", Reps: "5"}},
		"bench-press":    {{Weight: "135", Reps: "8"}, {Weight: "135", Reps: "7", Note: "grindy"}},
	}, loaded)

	store.ClearDraft(ctx)
	assert.Empty(t, store.LoadDraft(ctx))
}
