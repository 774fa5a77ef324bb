//go:build integration_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/gymtrack/internal/tracker"
	"github.com/2beens/gymtrack/internal/workout"
)

func (s *IntegrationTestSuite) finishWorkout(ctx context.Context, token string) workout.Session {
	t := s.T()

	resp := doRequest(ctx, t, s.httpClient, "POST", "/tracker/tap/complex", token, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(ctx, t, s.httpClient, "PUT", "/tracker/draft", token, tracker.DraftEntryRequest{
		Exercise: "Bench",
		Index:    0,
		Field:    workout.FieldWeight,
		Value:    "135",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(ctx, t, s.httpClient, "PUT", "/tracker/draft", token, tracker.DraftEntryRequest{
		Exercise: "bench-press",
		Index:    0,
		Field:    workout.FieldReps,
		Value:    "10",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(ctx, t, s.httpClient, "POST", "/tracker/finish", token, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp = doRequest(ctx, t, s.httpClient, "POST", "/tracker/finish", token, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result tracker.FinishResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.NotNil(t, result.Session)
	return *result.Session
}

func (s *IntegrationTestSuite) remoteCount(id string) int {
	var count int
	err := s.DB.QueryRow("SELECT count(*) FROM workout_session WHERE id = $1", id).Scan(&count)
	s.Require().NoError(err)
	return count
}

func (s *IntegrationTestSuite) TestFinish_LoggedInMirrorsToRemote() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := doLogin(ctx, t, s.httpClient)
	session := s.finishWorkout(ctx, token)

	assert.Equal(t, "push", session.Day)
	assert.Equal(t, []workout.SetEntry{{Weight: "135", Reps: "10"}}, session.Exercises["bench-press"])
	assert.Equal(t, 1, s.remoteCount(session.ID))

	resp := doRequest(ctx, t, s.httpClient, "GET", "/stats/records", token, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestFinish_AnonymousStaysLocalUntilSync() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := s.finishWorkout(ctx, "")
	assert.Equal(t, 0, s.remoteCount(session.ID))

	resp := doRequest(ctx, t, s.httpClient, "GET", "/sessions", "", nil)
	var list []workout.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	resp.Body.Close()
	require.NotEmpty(t, list)
	assert.Equal(t, session.ID, list[0].ID)

	token := doLogin(ctx, t, s.httpClient)
	resp = doRequest(ctx, t, s.httpClient, "POST", "/sessions/sync", token, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, s.remoteCount(session.ID))

	resp = doRequest(ctx, t, s.httpClient, "DELETE", "/sessions/"+session.ID, token, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, s.remoteCount(session.ID))
}
