package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/gymtrack/internal/auth"
	"github.com/2beens/gymtrack/internal/resolver"
	"github.com/2beens/gymtrack/internal/telemetry/metrics"
	"github.com/2beens/gymtrack/internal/telemetry/tracing"
	"github.com/2beens/gymtrack/internal/workout"
)

const DefaultRequestTimeout = 5 * time.Second

// CreateTableSQL creates the sessions table if missing.
const CreateTableSQL = `
	CREATE TABLE IF NOT EXISTS workout_session (
		id        TEXT PRIMARY KEY,
		date      TIMESTAMPTZ NOT NULL,
		day       TEXT NOT NULL,
		duration  INTEGER NOT NULL DEFAULT 0,
		exercises JSONB NOT NULL DEFAULT '{}'::jsonb
	);`

var ErrUnavailable = errors.New("remote store unavailable")

// dbPool is the subset of *pgxpool.Pool the store uses.
type dbPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store is the remote session store. Every operation is best-effort: when
// there is no database, no authenticated identity, or the call fails or
// times out, the result is treated as absent and nil is returned.
type Store struct {
	db             dbPool
	identity       auth.IdentityChecker
	resolver       *resolver.Resolver
	metricsManager *metrics.Manager
	timeout        time.Duration
}

func NewStore(
	pool *pgxpool.Pool,
	identity auth.IdentityChecker,
	resolver *resolver.Resolver,
	metricsManager *metrics.Manager,
	timeout time.Duration,
) *Store {
	var db dbPool
	if pool != nil {
		db = pool
	}
	return newStore(db, identity, resolver, metricsManager, timeout)
}

func newStore(
	db dbPool,
	identity auth.IdentityChecker,
	resolver *resolver.Resolver,
	metricsManager *metrics.Manager,
	timeout time.Duration,
) *Store {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Store{
		db:             db,
		identity:       identity,
		resolver:       resolver,
		metricsManager: metricsManager,
		timeout:        timeout,
	}
}

// Available reports whether remote calls would be attempted at all.
func (s *Store) Available(ctx context.Context) bool {
	if s == nil || s.db == nil || s.identity == nil {
		return false
	}
	return s.identity.IsAuthenticated(ctx)
}

// EnsureSchema creates the sessions table. Unlike the other operations,
// errors are returned, it is meant to run on service start.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s.db == nil {
		return ErrUnavailable
	}
	if _, err := s.db.Exec(ctx, CreateTableSQL); err != nil {
		return fmt.Errorf("create workout_session table: %w", err)
	}
	return nil
}

func (s *Store) ListSessions(ctx context.Context) ([]workout.Session, error) {
	var sessions []workout.Session
	s.call(ctx, "list", func(ctx context.Context) error {
		rows, err := s.db.Query(
			ctx,
			`
				SELECT
					id, date, day, duration, exercises
				FROM workout_session
				ORDER BY date DESC;`,
		)
		if err != nil {
			return err
		}
		sessions, err = s.rows2sessions(rows)
		return err
	})

	if sessions == nil {
		return []workout.Session{}, nil
	}
	return sessions, nil
}

// ListSessionsForDay queries with a tolerant filter, so rows written under a
// legacy day label or title are found too, then keeps the ones that resolve
// to the requested day.
func (s *Store) ListSessionsForDay(ctx context.Context, dayID string) ([]workout.Session, error) {
	dayID = s.resolver.ResolveDayID(dayID)

	label, title := dayID, dayID
	var patterns []string
	if aliases, ok := s.resolver.Aliases(dayID); ok {
		label, title = aliases.Label, aliases.Title
		for _, k := range aliases.Keywords {
			patterns = append(patterns, "%"+k+"%")
		}
	}
	if patterns == nil {
		patterns = []string{}
	}

	var sessions []workout.Session
	s.call(ctx, "list_for_day", func(ctx context.Context) error {
		rows, err := s.db.Query(
			ctx,
			`
				SELECT
					id, date, day, duration, exercises
				FROM workout_session
				WHERE day = $1 OR day = $2 OR day = $3 OR day ILIKE ANY($4)
				ORDER BY date DESC;`,
			dayID, label, title, patterns,
		)
		if err != nil {
			return err
		}
		sessions, err = s.rows2sessions(rows)
		return err
	})

	filtered := make([]workout.Session, 0, len(sessions))
	for _, session := range sessions {
		if session.Day == dayID {
			filtered = append(filtered, session)
		}
	}
	return filtered, nil
}

// AppendSession inserts the session. Re-sending an already stored id is a no-op.
func (s *Store) AppendSession(ctx context.Context, session workout.Session) error {
	exercisesJson, err := json.Marshal(session.Exercises)
	if err != nil {
		log.Warnf("remote store, marshal exercises of session %s: %s", session.ID, err)
		return nil
	}
	if session.Exercises == nil {
		exercisesJson = []byte("{}")
	}

	s.call(ctx, "append", func(ctx context.Context) error {
		_, err := s.db.Exec(
			ctx,
			`INSERT INTO workout_session
					(id, date, day, duration, exercises)
					VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (id) DO NOTHING;`,
			session.ID, session.Date, session.Day, session.Duration, exercisesJson,
		)
		return err
	})
	return nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	s.call(ctx, "delete", func(ctx context.Context) error {
		tag, err := s.db.Exec(
			ctx,
			`DELETE FROM workout_session WHERE id = $1`,
			id,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			log.Debugf("remote store, delete session [%s]: not found", id)
		}
		return nil
	})
	return nil
}

// call runs fn under the request timeout, if the store is available.
// Failures are logged and counted, and reported back only as a bool.
func (s *Store) call(ctx context.Context, op string, fn func(ctx context.Context) error) bool {
	if !s.Available(ctx) {
		log.Tracef("remote store, %s: not available, skipping", op)
		return false
	}

	ctx, span := tracing.GlobalTracer.Start(ctx, "store.remote."+op)
	var err error
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err = fn(ctx)
	s.metricsManager.HistRemoteCallDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.Bool("remote.ok", err == nil))

	if err != nil {
		log.Warnf("remote store, %s: %s", op, err)
		s.metricsManager.CounterRemoteFailures.WithLabelValues(op).Inc()
		return false
	}
	return true
}

func (s *Store) rows2sessions(rows pgx.Rows) ([]workout.Session, error) {
	defer rows.Close()

	var sessions []workout.Session
	for rows.Next() {
		var id string
		var date time.Time
		var day string
		var duration int
		var exercisesJson []byte
		if err := rows.Scan(&id, &date, &day, &duration, &exercisesJson); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}

		var exercises map[string][]workout.SetEntry
		if len(exercisesJson) > 0 {
			if err := json.Unmarshal(exercisesJson, &exercises); err != nil {
				return nil, fmt.Errorf("unmarshal exercises of session %s: %w", id, err)
			}
		}

		sessions = append(sessions, s.resolver.NormalizeSession(workout.Session{
			ID:        id,
			Date:      date,
			Day:       day,
			Duration:  duration,
			Exercises: exercises,
		}))
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}
