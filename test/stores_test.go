//go:build integration_test || all_tests

package test

import (
	"context"
	"net"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/gymtrack/internal/auth"
	"github.com/2beens/gymtrack/internal/program"
	"github.com/2beens/gymtrack/internal/resolver"
	"github.com/2beens/gymtrack/internal/store/local"
	"github.com/2beens/gymtrack/internal/store/remote"
	"github.com/2beens/gymtrack/internal/telemetry/metrics"
	"github.com/2beens/gymtrack/internal/workout"
)

func (s *IntegrationTestSuite) TestRemoteStore_LegacyDayLabels() {
	t := s.T()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	res := resolver.New(program.Default())
	store := remote.NewStore(s.pgPool, auth.StaticIdentity(true), res, metrics.NewTestManager(), time.Second)
	require.True(t, store.Available(ctx))

	now := time.Now().UTC().Truncate(time.Second)
	// rows written by older clients, under the display labels of the day
	legacy := []workout.Session{
		{ID: "l1", Date: now.Add(-72 * time.Hour), Day: "Day 2 – Pull", Duration: 100},
		{ID: "l2", Date: now.Add(-48 * time.Hour), Day: "Day 2", Duration: 200},
		{ID: "l3", Date: now.Add(-24 * time.Hour), Day: "pull", Duration: 300,
			Exercises: map[string][]workout.SetEntry{"Bench": {{Weight: "135", Reps: "8"}}}},
		{ID: "l4", Date: now, Day: "push", Duration: 400},
	}
	for _, session := range legacy {
		require.NoError(t, store.AppendSession(ctx, session))
	}
	// duplicates are ignored
	require.NoError(t, store.AppendSession(ctx, legacy[0]))

	all, err := store.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "l4", all[0].ID)

	pull, err := store.ListSessionsForDay(ctx, "pull")
	require.NoError(t, err)
	ids := make([]string, 0, len(pull))
	for _, session := range pull {
		assert.Equal(t, "pull", session.Day)
		ids = append(ids, session.ID)
	}
	assert.ElementsMatch(t, []string{"l1", "l2", "l3"}, ids)

	require.NoError(t, store.DeleteSession(ctx, "l3"))
	pull, err = store.ListSessionsForDay(ctx, "pull")
	require.NoError(t, err)
	assert.Len(t, pull, 2)

	// anonymous callers never reach the database
	anonymous := remote.NewStore(s.pgPool, auth.StaticIdentity(false), res, metrics.NewTestManager(), time.Second)
	none, err := anonymous.ListSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func (s *IntegrationTestSuite) TestLocalStore_RedisBackend() {
	t := s.T()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr: net.JoinHostPort("localhost", s.redisPort),
		DB:   1,
	})
	defer rdb.Close()
	require.NoError(t, rdb.FlushDB(ctx).Err())

	res := resolver.New(program.Default())
	store := local.NewStore(local.NewRedisKV(rdb), res, metrics.NewTestManager())

	require.NoError(t, store.AppendSession(ctx, workout.Session{ID: "r1", Date: time.Now(), Day: "Day 3", Duration: 60}))
	store.SaveDraft(ctx, workout.DraftLog{"Bench": {{Weight: "100"}}})

	sessions, err := store.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "legs", sessions[0].Day)

	draft := store.LoadDraft(ctx)
	assert.Equal(t, "100", draft["bench-press"][0].Weight)

	store.ClearDraft(ctx)
	assert.True(t, store.LoadDraft(ctx).IsEmpty())
}
