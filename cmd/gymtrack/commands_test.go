package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/gymtrack/internal/auth"
	"github.com/2beens/gymtrack/internal/program"
	"github.com/2beens/gymtrack/internal/resolver"
	"github.com/2beens/gymtrack/internal/sessions"
	"github.com/2beens/gymtrack/internal/store/local"
	"github.com/2beens/gymtrack/internal/store/remote"
	"github.com/2beens/gymtrack/internal/telemetry/metrics"
	"github.com/2beens/gymtrack/internal/workout"
	"github.com/2beens/gymtrack/pkg"
)

func newTestApp(t *testing.T) *app {
	t.Helper()

	dataDir := t.TempDir()
	res := resolver.New(program.Default())
	metricsManager := metrics.NewTestManager()
	kv, err := local.NewFileKV(dataDir)
	require.NoError(t, err)
	localStore := local.NewStore(kv, res, metricsManager)
	remoteStore := remote.NewStore(nil, auth.StaticIdentity(false), res, metricsManager, time.Second)

	now := time.Now()
	for i, s := range []workout.Session{
		{ID: "s1", Date: now.Add(-48 * time.Hour), Day: "Day 1 – Push", Duration: 3000, Exercises: map[string][]workout.SetEntry{
			"Bench": {{Weight: "135", Reps: "10"}},
		}},
		{ID: "s2", Date: now.Add(-time.Hour), Day: "pull", Duration: 3660},
	} {
		require.NoError(t, localStore.AppendSession(context.Background(), s), i)
	}

	return &app{
		dataDir:  dataDir,
		resolver: res,
		repo:     sessions.NewRepository(localStore, remoteStore, res, metricsManager, time.Second),
		now:      func() time.Time { return now },
	}
}

func TestApp_List(t *testing.T) {
	a := newTestApp(t)

	var out bytes.Buffer
	require.NoError(t, a.run(context.Background(), []string{"list"}, &out))
	assert.Contains(t, out.String(), "s1")
	assert.Contains(t, out.String(), "1h 1m")
	assert.Contains(t, out.String(), "1.4K lb")

	out.Reset()
	require.NoError(t, a.run(context.Background(), []string{"list", "Day", "1"}, &out))
	assert.Contains(t, out.String(), "push")
	assert.NotContains(t, out.String(), "s2")
}

func TestApp_Stats(t *testing.T) {
	a := newTestApp(t)

	var out bytes.Buffer
	require.NoError(t, a.run(context.Background(), []string{"stats"}, &out))
	assert.Contains(t, out.String(), "sessions:       2")
	assert.Contains(t, out.String(), "current streak: 2")
	assert.Contains(t, out.String(), "bench-press")
}

func TestApp_Resolve(t *testing.T) {
	a := newTestApp(t)

	var out bytes.Buffer
	require.NoError(t, a.run(context.Background(), []string{"resolve", "DAY 2", "Bench"}, &out))
	assert.Contains(t, out.String(), "day=pull")
	assert.Contains(t, out.String(), "exercise=bench-press")

	assert.Error(t, a.run(context.Background(), []string{"resolve"}, &out))
}

func TestApp_SyncWithoutRemote(t *testing.T) {
	a := newTestApp(t)

	var out bytes.Buffer
	require.NoError(t, a.run(context.Background(), []string{"sync"}, &out))
	assert.Equal(t, "pushed 0 sessions\n", out.String())
}

func TestApp_Backup(t *testing.T) {
	a := newTestApp(t)

	target := filepath.Join(t.TempDir(), "backup.tar.gz")
	var out bytes.Buffer
	require.NoError(t, a.run(context.Background(), []string{"backup", target}, &out))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestApp_HashPassword(t *testing.T) {
	a := newTestApp(t)

	var out bytes.Buffer
	require.NoError(t, a.run(context.Background(), []string{"hash-password", "squat-day"}, &out))
	hash := strings.TrimSpace(out.String())
	assert.True(t, pkg.CheckPasswordHash("squat-day", hash))

	err := a.run(context.Background(), []string{"hash-password"}, &out)
	assert.Error(t, err)
}

func TestApp_UnknownCommand(t *testing.T) {
	a := newTestApp(t)
	err := a.run(context.Background(), []string{"dance"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, errUnknownCommand)
}
