package stats

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=stats_test

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/gymtrack/internal/telemetry/tracing"
	"github.com/2beens/gymtrack/internal/workout"
)

type sessionsLister interface {
	GetSessions(ctx context.Context) ([]workout.Session, error)
}

type Summary struct {
	Sessions        int              `json:"sessions"`
	Streak          Streak           `json:"streak"`
	TotalVolume     float64          `json:"totalVolume"`
	TotalVolumeText string           `json:"totalVolumeText"`
	TotalDuration   int              `json:"totalDuration"`
	DurationText    string           `json:"durationText"`
	LastSession     time.Time        `json:"lastSession,omitempty"`
	TopRecords      []PersonalRecord `json:"topRecords"`
}

// Service computes stats over the merged session history.
type Service struct {
	sessions sessionsLister
	loc      *time.Location
	now      func() time.Time
}

func NewService(sessions sessionsLister, loc *time.Location, now func() time.Time) *Service {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		sessions: sessions,
		loc:      loc,
		now:      now,
	}
}

const summaryTopRecords = 5

func (s *Service) Summary(ctx context.Context) (_ *Summary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stats.summary")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	sessions, err := s.sessions.GetSessions(ctx)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("sessions", len(sessions)))

	summary := &Summary{
		Sessions:    len(sessions),
		Streak:      Streaks(sessions, s.now().In(s.loc)),
		TotalVolume: TotalVolume(sessions),
		TopRecords:  PersonalRecords(sessions),
	}
	for _, session := range sessions {
		summary.TotalDuration += session.Duration
		if session.Date.After(summary.LastSession) {
			summary.LastSession = session.Date
		}
	}
	summary.TotalVolumeText = FormatVolume(summary.TotalVolume)
	summary.DurationText = FormatDuration(summary.TotalDuration)
	if len(summary.TopRecords) > summaryTopRecords {
		summary.TopRecords = summary.TopRecords[:summaryTopRecords]
	}

	return summary, nil
}

func (s *Service) Records(ctx context.Context) (_ []PersonalRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stats.records")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	sessions, err := s.sessions.GetSessions(ctx)
	if err != nil {
		return nil, err
	}
	return PersonalRecords(sessions), nil
}

func (s *Service) Calendar(ctx context.Context) (_ map[string]int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stats.calendar")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	sessions, err := s.sessions.GetSessions(ctx)
	if err != nil {
		return nil, err
	}
	return Calendar(sessions, s.loc), nil
}

func (s *Service) ExerciseHistory(ctx context.Context, exerciseID string) (_ []HistoryPoint, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stats.exercise_history")
	span.SetAttributes(attribute.String("exercise", exerciseID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	sessions, err := s.sessions.GetSessions(ctx)
	if err != nil {
		return nil, err
	}
	return ExerciseHistory(sessions, exerciseID), nil
}
