package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/gymtrack/internal/resolver"
	"github.com/2beens/gymtrack/internal/telemetry/metrics"
	"github.com/2beens/gymtrack/internal/telemetry/tracing"
	"github.com/2beens/gymtrack/internal/workout"
)

const (
	DraftKey    = "gymtrack:draft"
	SessionsKey = "gymtrack:sessions"
)

// Store is the local, always available, session store. Sessions are kept
// as one JSON array in push order; sorting happens at read time, in the
// repository. Records are kept as written and normalized on every read.
//
// The sessions key is read-modify-written without any cross-process
// locking, two writers racing means last write wins.
type Store struct {
	kv             KV
	resolver       *resolver.Resolver
	metricsManager *metrics.Manager
}

func NewStore(kv KV, resolver *resolver.Resolver, metricsManager *metrics.Manager) *Store {
	return &Store{
		kv:             kv,
		resolver:       resolver,
		metricsManager: metricsManager,
	}
}

// ListSessions returns all stored sessions, normalized. Storage failures
// degrade to an empty list.
func (s *Store) ListSessions(ctx context.Context) (_ []workout.Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.local.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	raw, err := s.readSessions(ctx)
	if err != nil {
		log.Errorf("local store, list sessions: %s", err)
		s.metricsManager.CounterLocalStoreFailures.WithLabelValues("list").Inc()
		return []workout.Session{}, nil
	}

	span.SetAttributes(attribute.Int("sessions.count", len(raw)))
	return s.resolver.NormalizeSessions(raw), nil
}

func (s *Store) ListSessionsForDay(ctx context.Context, dayID string) ([]workout.Session, error) {
	all, err := s.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	dayID = s.resolver.ResolveDayID(dayID)
	filtered := make([]workout.Session, 0)
	for _, session := range all {
		if session.Day == dayID {
			filtered = append(filtered, session)
		}
	}
	return filtered, nil
}

// AppendSession adds the session to the end of the stored list. Unlike the
// reads, a failure here is returned, as this write is what makes a finished
// workout durable.
func (s *Store) AppendSession(ctx context.Context, session workout.Session) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.local.append")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("session.id", session.ID))

	sessions, err := s.readSessions(ctx)
	if err != nil {
		s.metricsManager.CounterLocalStoreFailures.WithLabelValues("append").Inc()
		return fmt.Errorf("read sessions: %w", err)
	}

	sessions = append(sessions, session)
	if err := s.writeSessions(ctx, sessions); err != nil {
		s.metricsManager.CounterLocalStoreFailures.WithLabelValues("append").Inc()
		return fmt.Errorf("write sessions: %w", err)
	}

	return nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.local.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("session.id", id))

	sessions, err := s.readSessions(ctx)
	if err != nil {
		s.metricsManager.CounterLocalStoreFailures.WithLabelValues("delete").Inc()
		return fmt.Errorf("read sessions: %w", err)
	}

	kept := make([]workout.Session, 0, len(sessions))
	for _, session := range sessions {
		if session.ID != id {
			kept = append(kept, session)
		}
	}
	if len(kept) == len(sessions) {
		log.Debugf("local store, delete session [%s]: not found", id)
		return nil
	}

	if err := s.writeSessions(ctx, kept); err != nil {
		s.metricsManager.CounterLocalStoreFailures.WithLabelValues("delete").Inc()
		return fmt.Errorf("write sessions: %w", err)
	}
	return nil
}

// LoadDraft returns the stored draft log, or an empty one.
func (s *Store) LoadDraft(ctx context.Context) workout.DraftLog {
	data, err := s.kv.Get(ctx, DraftKey)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			log.Errorf("local store, load draft: %s", err)
			s.metricsManager.CounterLocalStoreFailures.WithLabelValues("load_draft").Inc()
		}
		return workout.DraftLog{}
	}

	var draft workout.DraftLog
	if err := json.Unmarshal(data, &draft); err != nil {
		log.Errorf("local store, unmarshal draft: %s", err)
		s.metricsManager.CounterLocalStoreFailures.WithLabelValues("load_draft").Inc()
		return workout.DraftLog{}
	}
	if draft == nil {
		return workout.DraftLog{}
	}

	return s.resolver.NormalizeDraft(draft)
}

// SaveDraft overwrites the stored draft log. Failures are logged only, the
// draft is a convenience, not a system of record.
func (s *Store) SaveDraft(ctx context.Context, draft workout.DraftLog) {
	data, err := json.Marshal(draft)
	if err != nil {
		log.Errorf("local store, marshal draft: %s", err)
		return
	}
	if err := s.kv.Set(ctx, DraftKey, data); err != nil {
		log.Errorf("local store, save draft: %s", err)
		s.metricsManager.CounterLocalStoreFailures.WithLabelValues("save_draft").Inc()
	}
}

func (s *Store) ClearDraft(ctx context.Context) {
	if err := s.kv.Delete(ctx, DraftKey); err != nil {
		log.Errorf("local store, clear draft: %s", err)
		s.metricsManager.CounterLocalStoreFailures.WithLabelValues("clear_draft").Inc()
	}
}

func (s *Store) readSessions(ctx context.Context) ([]workout.Session, error) {
	data, err := s.kv.Get(ctx, SessionsKey)
	if errors.Is(err, ErrKeyNotFound) {
		return []workout.Session{}, nil
	}
	if err != nil {
		return nil, err
	}

	var sessions []workout.Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("unmarshal sessions: %w", err)
	}
	if sessions == nil {
		sessions = []workout.Session{}
	}
	return sessions, nil
}

func (s *Store) writeSessions(ctx context.Context, sessions []workout.Session) error {
	data, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}
	return s.kv.Set(ctx, SessionsKey, data)
}
