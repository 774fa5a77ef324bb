package sessions

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/gymtrack/internal/resolver"
	"github.com/2beens/gymtrack/internal/telemetry/metrics"
	"github.com/2beens/gymtrack/internal/telemetry/tracing"
	"github.com/2beens/gymtrack/internal/workout"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=sessions_test

// DefaultRemoteWait bounds how long a read waits for the remote store. It is
// a bit above the remote request timeout, so the remote gets to fail on its own.
const DefaultRemoteWait = 6 * time.Second

type localStore interface {
	ListSessions(ctx context.Context) ([]workout.Session, error)
	ListSessionsForDay(ctx context.Context, dayID string) ([]workout.Session, error)
	AppendSession(ctx context.Context, session workout.Session) error
	DeleteSession(ctx context.Context, id string) error
}

type remoteStore interface {
	Available(ctx context.Context) bool
	ListSessions(ctx context.Context) ([]workout.Session, error)
	ListSessionsForDay(ctx context.Context, dayID string) ([]workout.Session, error)
	AppendSession(ctx context.Context, session workout.Session) error
	DeleteSession(ctx context.Context, id string) error
}

// Repository merges the local and the remote session stores. Local is the
// always-available system of record for writes, remote is authoritative for
// reads whenever it returns anything.
type Repository struct {
	local          localStore
	remote         remoteStore
	resolver       *resolver.Resolver
	metricsManager *metrics.Manager
	remoteWait     time.Duration
}

func NewRepository(
	local localStore,
	remote remoteStore,
	resolver *resolver.Resolver,
	metricsManager *metrics.Manager,
	remoteWait time.Duration,
) *Repository {
	if remoteWait <= 0 {
		remoteWait = DefaultRemoteWait
	}
	return &Repository{
		local:          local,
		remote:         remote,
		resolver:       resolver,
		metricsManager: metricsManager,
		remoteWait:     remoteWait,
	}
}

type listResult struct {
	sessions []workout.Session
	err      error
}

// GetSessions returns every known session, newest first. Remote records win
// over local ones with the same id, local-only records are kept.
func (r *Repository) GetSessions(ctx context.Context) (_ []workout.Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	remoteSessions := r.fetchRemote(ctx, func(ctx context.Context) ([]workout.Session, error) {
		return r.remote.ListSessions(ctx)
	})

	localSessions, err := r.local.ListSessions(ctx)
	if err != nil {
		log.Errorf("sessions repo, list local: %s", err)
		localSessions = nil
	}

	merged := merge(<-remoteSessions, localSessions)
	span.SetAttributes(attribute.Int("sessions.count", len(merged)))

	return r.normalizeAndSort(merged), nil
}

// SaveSession writes the session locally and then, best-effort, remotely.
// Only the local write can fail the call.
func (r *Repository) SaveSession(ctx context.Context, session workout.Session) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.Duration < 0 {
		session.Duration = 0
	}
	span.SetAttributes(attribute.String("session.id", session.ID))

	if err := r.local.AppendSession(ctx, session); err != nil {
		return fmt.Errorf("save session locally: %w", err)
	}

	r.metricsManager.CounterSessionsSaved.Inc()
	r.metricsManager.HistSessionDuration.Observe(float64(session.Duration))

	if r.remote.Available(ctx) {
		if err := r.remote.AppendSession(ctx, session); err != nil {
			log.Warnf("sessions repo, save session %s remotely: %s", session.ID, err)
		}
	}

	return nil
}

// GetLastSessionForDay returns the most recent session of the given day from
// either store, or nil if there is none.
func (r *Repository) GetLastSessionForDay(ctx context.Context, dayID string) (_ *workout.Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.last_for_day")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	dayID = r.resolver.ResolveDayID(dayID)
	span.SetAttributes(attribute.String("day.id", dayID))

	remoteSessions := r.fetchRemote(ctx, func(ctx context.Context) ([]workout.Session, error) {
		return r.remote.ListSessionsForDay(ctx, dayID)
	})

	localSessions, err := r.local.ListSessionsForDay(ctx, dayID)
	if err != nil {
		log.Errorf("sessions repo, list local for day %s: %s", dayID, err)
		localSessions = nil
	}

	// remote first, so it wins exact date ties
	var candidates []workout.Session
	candidates = append(candidates, <-remoteSessions...)
	candidates = append(candidates, localSessions...)

	var last *workout.Session
	for i := range candidates {
		s := r.resolver.NormalizeSession(candidates[i])
		if s.Day != dayID {
			continue
		}
		if last == nil || s.Date.After(last.Date) {
			last = &s
		}
	}

	return last, nil
}

// DeleteSession removes the session from the remote store, if reachable,
// and always from the local one.
func (r *Repository) DeleteSession(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("session.id", id))

	if r.remote.Available(ctx) {
		if err := r.remote.DeleteSession(ctx, id); err != nil {
			log.Warnf("sessions repo, delete session %s remotely: %s", id, err)
		}
	}

	if err := r.local.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("delete session locally: %w", err)
	}

	r.metricsManager.CounterSessionsDeleted.Inc()
	return nil
}

// SyncPending pushes local sessions the remote store does not know about.
// It returns the number of sessions pushed.
func (r *Repository) SyncPending(ctx context.Context) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.sync")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !r.remote.Available(ctx) {
		log.Debugln("sessions repo, sync: remote not available")
		return 0, nil
	}

	remoteSessions, err := r.remote.ListSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("list remote sessions: %w", err)
	}
	known := make(map[string]bool, len(remoteSessions))
	for _, s := range remoteSessions {
		known[s.ID] = true
	}

	localSessions, err := r.local.ListSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("list local sessions: %w", err)
	}

	pushed := 0
	for _, s := range localSessions {
		if known[s.ID] {
			continue
		}
		if err := r.remote.AppendSession(ctx, s); err != nil {
			log.Warnf("sessions repo, sync session %s: %s", s.ID, err)
			continue
		}
		known[s.ID] = true
		pushed++
	}

	span.SetAttributes(attribute.Int("sessions.pushed", pushed))
	log.Infof("sessions repo, sync: pushed %d sessions", pushed)
	return pushed, nil
}

// fetchRemote starts the remote read in the background. The returned
// channel always yields exactly one value: the remote sessions, or nil if
// the remote is unavailable, failed, or did not answer within remoteWait.
func (r *Repository) fetchRemote(
	ctx context.Context,
	fetch func(ctx context.Context) ([]workout.Session, error),
) <-chan []workout.Session {
	out := make(chan []workout.Session, 1)
	if !r.remote.Available(ctx) {
		out <- nil
		return out
	}

	resCh := make(chan listResult, 1)
	remoteCtx, cancel := context.WithTimeout(ctx, r.remoteWait)
	go func() {
		sessions, err := fetch(remoteCtx)
		resCh <- listResult{sessions: sessions, err: err}
	}()

	go func() {
		defer cancel()
		select {
		case res := <-resCh:
			if res.err != nil {
				log.Warnf("sessions repo, remote fetch: %s", res.err)
				out <- nil
				return
			}
			out <- res.sessions
		case <-remoteCtx.Done():
			log.Warnf("sessions repo, remote fetch: %s", remoteCtx.Err())
			out <- nil
		}
	}()

	return out
}

func (r *Repository) normalizeAndSort(sessions []workout.Session) []workout.Session {
	normalized := r.resolver.NormalizeSessions(sessions)
	sort.SliceStable(normalized, func(i, j int) bool {
		return normalized[i].Date.After(normalized[j].Date)
	})
	return normalized
}

// merge makes remote authoritative per id when it returned anything at all.
func merge(remote, local []workout.Session) []workout.Session {
	if len(remote) == 0 {
		return append([]workout.Session{}, local...)
	}

	merged := make([]workout.Session, 0, len(remote)+len(local))
	remoteIDs := make(map[string]bool, len(remote))
	for _, s := range remote {
		remoteIDs[s.ID] = true
		merged = append(merged, s)
	}
	for _, s := range local {
		if !remoteIDs[s.ID] {
			merged = append(merged, s)
		}
	}
	return merged
}
