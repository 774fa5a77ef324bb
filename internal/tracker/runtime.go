package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/gymtrack/internal/program"
	"github.com/2beens/gymtrack/internal/resolver"
	"github.com/2beens/gymtrack/internal/telemetry/metrics"
	"github.com/2beens/gymtrack/internal/workout"
)

var (
	ErrUnknownUnit       = errors.New("unknown unit")
	ErrUnknownDay        = errors.New("unknown day")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrNoSession         = errors.New("no session in progress")
)

type State string

const (
	StateNotStarted State = "not_started"
	StateActive     State = "active"
	StatePaused     State = "paused"
)

const (
	FinishConfirmWindow  = 3 * time.Second
	DiscardConfirmWindow = 2 * time.Second

	restTickInterval = time.Second
	restDismissDelay = RestDismissDelay * time.Second
)

type sessionSaver interface {
	SaveSession(ctx context.Context, session workout.Session) error
}

type draftStore interface {
	LoadDraft(ctx context.Context) workout.DraftLog
	SaveDraft(ctx context.Context, draft workout.DraftLog)
	ClearDraft(ctx context.Context)
}

type restTimer struct {
	gen           uint64
	unitKey       string
	target        int
	spec          RestSpec
	remaining     int
	finished      bool
	cancelTick    Cancel
	cancelDismiss Cancel
}

func (t *restTimer) stop() {
	if t.cancelTick != nil {
		t.cancelTick()
	}
	if t.cancelDismiss != nil {
		t.cancelDismiss()
	}
}

type Params struct {
	Program        *program.Program
	Resolver       *resolver.Resolver
	Repo           sessionSaver
	Drafts         draftStore
	Scheduler      Scheduler
	Capabilities   Capabilities
	MetricsManager *metrics.Manager
	// Now and NewID default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

// Runtime is the workout session state machine: per-unit completion
// counters, the pausable session clock, the rest timer and the draft log.
// It is safe for concurrent use, scheduler callbacks take the same lock.
type Runtime struct {
	mu sync.Mutex

	program        *program.Program
	resolver       *resolver.Resolver
	repo           sessionSaver
	drafts         draftStore
	scheduler      Scheduler
	caps           Capabilities
	metricsManager *metrics.Manager
	now            func() time.Time
	newID          func() string

	state      State
	dayIndex   int
	counts     map[string]int
	clockStart *time.Time
	clockBank  int
	// frozen is set while all units of the day are done, the clock does
	// not advance then
	frozen   bool
	draft    workout.DraftLog
	timer    *restTimer
	timerGen uint64
	wakeLock bool

	finishArmedUntil  time.Time
	discardArmedUntil time.Time

	// sessionGen is bumped on every reset, saving is set while Finish
	// writes the session without holding mu
	sessionGen uint64
	saving     bool
}

// NewRuntime creates the runtime, restoring the stored draft log if any.
func NewRuntime(ctx context.Context, params Params) (*Runtime, error) {
	if params.Program == nil || len(params.Program.Days) == 0 {
		return nil, program.ErrNoDays
	}
	if params.Repo == nil {
		return nil, errors.New("session repository is required")
	}

	r := &Runtime{
		program:        params.Program,
		resolver:       params.Resolver,
		repo:           params.Repo,
		drafts:         params.Drafts,
		scheduler:      params.Scheduler,
		caps:           params.Capabilities,
		metricsManager: params.MetricsManager,
		now:            params.Now,
		newID:          params.NewID,
		state:          StateNotStarted,
		counts:         make(map[string]int),
		draft:          workout.DraftLog{},
	}
	if r.resolver == nil {
		r.resolver = resolver.New(r.program)
	}
	if r.scheduler == nil {
		r.scheduler = RealScheduler{}
	}
	if r.caps == nil {
		r.caps = NoopCapabilities{}
	}
	if r.metricsManager == nil {
		r.metricsManager = metrics.NewTestManager()
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.newID == nil {
		r.newID = uuid.NewString
	}

	if r.drafts != nil {
		r.draft = r.drafts.LoadDraft(ctx)
		if !r.draft.IsEmpty() {
			log.Infof("tracker: restored draft log with %d exercises", len(r.draft))
		}
	}

	return r, nil
}

func (r *Runtime) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Elapsed returns the session clock in whole seconds.
func (r *Runtime) Elapsed(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.elapsedLocked(now)
}

// Tap advances the unit's completion counter, wrapping back to 0 after
// target. It returns the new count.
func (r *Runtime) Tap(unitKey string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	unit, ok := r.activeDayLocked().Unit(unitKey)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownUnit, unitKey)
	}

	now := r.now()
	r.ensureActiveLocked(now)

	count := (r.counts[unitKey] + 1) % (unit.Target + 1)
	r.counts[unitKey] = count
	r.updateFreezeLocked(now)

	return count, nil
}

// StartRest starts a rest countdown for the unit, cancelling any running
// one. A non positive target falls back to the unit's target.
func (r *Runtime) StartRest(ctx context.Context, spec string, unitKey string, target int) (RestSpec, error) {
	r.mu.Lock()

	if unitKey != "" {
		unit, ok := r.activeDayLocked().Unit(unitKey)
		if !ok {
			r.mu.Unlock()
			return RestSpec{}, fmt.Errorf("%w: %s", ErrUnknownUnit, unitKey)
		}
		if target <= 0 {
			target = unit.Target
		}
		if spec == "" {
			spec = unit.Rest
		}
	}

	if r.timer != nil {
		r.timer.stop()
		r.timer = nil
	}

	restSpec := ParseRestSpec(spec)
	r.timerGen++
	gen := r.timerGen
	r.timer = &restTimer{
		gen:       gen,
		unitKey:   unitKey,
		target:    target,
		spec:      restSpec,
		remaining: restSpec.Total,
	}
	r.timer.cancelTick = r.scheduler.Every(restTickInterval, func() {
		r.tick(gen)
	})

	acquire := !r.wakeLock
	r.wakeLock = true
	r.mu.Unlock()

	if acquire {
		r.sideEffect("wake_lock", func() error {
			return r.caps.AcquireWakeLock(ctx)
		})
	}

	log.Debugf("tracker: rest started [%s], %d/%d seconds", unitKey, restSpec.Lower, restSpec.Total)
	return restSpec, nil
}

// CancelRest stops the running rest timer, or dismisses a finished one.
func (r *Runtime) CancelRest(ctx context.Context) {
	r.mu.Lock()
	if r.timer == nil {
		r.mu.Unlock()
		return
	}
	r.timer.stop()
	r.timer = nil
	release := r.wakeLock
	r.wakeLock = false
	r.mu.Unlock()

	if release {
		r.sideEffect("wake_lock", func() error {
			return r.caps.ReleaseWakeLock(ctx)
		})
	}
}

func (r *Runtime) DismissRest(ctx context.Context) {
	r.CancelRest(ctx)
}

func (r *Runtime) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateActive {
		return fmt.Errorf("%w: pause from %s", ErrInvalidTransition, r.state)
	}

	r.clockBank = r.elapsedLocked(r.now())
	r.clockStart = nil
	r.state = StatePaused
	return nil
}

func (r *Runtime) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StatePaused {
		return fmt.Errorf("%w: resume from %s", ErrInvalidTransition, r.state)
	}

	r.ensureActiveLocked(r.now())
	return nil
}

// UpdateDraftEntry sets a single field of a logged set and persists the
// draft. Editing starts (or resumes) the session.
func (r *Runtime) UpdateDraftEntry(ctx context.Context, exerciseKey string, index int, field workout.Field, value string) error {
	r.mu.Lock()

	exerciseID := r.resolver.ResolveExerciseID(exerciseKey)
	if err := r.draft.Set(exerciseID, index, field, value); err != nil {
		r.mu.Unlock()
		return fmt.Errorf("update draft [%s][%d]: %w", exerciseID, index, err)
	}
	r.ensureActiveLocked(r.now())
	draft := r.draft.Clone()
	r.mu.Unlock()

	if r.drafts != nil {
		r.drafts.SaveDraft(ctx, draft)
	}
	return nil
}

// SelectDay switches the active program day. Counters are reset when the
// day changes, the clock and the draft are kept.
func (r *Runtime) SelectDay(index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.program.Days) {
		return fmt.Errorf("%w: index %d", ErrUnknownDay, index)
	}
	if index == r.dayIndex {
		return nil
	}

	r.dayIndex = index
	r.counts = make(map[string]int)
	r.updateFreezeLocked(r.now())
	return nil
}

type FinishResult struct {
	// Armed is set on the first tap, the session is saved on a second tap
	// within FinishConfirmWindow.
	Armed   bool             `json:"armed"`
	Session *workout.Session `json:"session,omitempty"`
}

// Finish saves the session on the second call within the confirmation
// window. On a save failure the runtime state and the draft are kept.
func (r *Runtime) Finish(ctx context.Context) (FinishResult, error) {
	r.mu.Lock()

	now := r.now()
	if r.state == StateNotStarted && r.draft.IsEmpty() {
		r.mu.Unlock()
		return FinishResult{}, ErrNoSession
	}
	if r.saving {
		r.mu.Unlock()
		return FinishResult{}, fmt.Errorf("%w: finish already saving", ErrInvalidTransition)
	}

	if r.finishArmedUntil.IsZero() || now.After(r.finishArmedUntil) {
		r.finishArmedUntil = now.Add(FinishConfirmWindow)
		r.mu.Unlock()
		return FinishResult{Armed: true}, nil
	}
	r.finishArmedUntil = time.Time{}

	session := workout.Session{
		ID:        r.newID(),
		Date:      now,
		Day:       r.activeDayLocked().ID,
		Duration:  r.elapsedLocked(now),
		Exercises: r.draft.Clone(),
	}
	if session.Exercises == nil {
		session.Exercises = map[string][]workout.SetEntry{}
	}

	gen := r.sessionGen
	r.saving = true
	r.mu.Unlock()

	// the remote write may take a while, timer ticks and reads go on
	saveErr := r.repo.SaveSession(ctx, session)

	r.mu.Lock()
	r.saving = false
	if saveErr != nil {
		r.mu.Unlock()
		return FinishResult{}, fmt.Errorf("save session: %w", saveErr)
	}
	if r.sessionGen != gen {
		// discarded while saving, already reset
		r.mu.Unlock()
		log.Infof("tracker: session %s saved after a discard", session.ID)
		return FinishResult{Session: &session}, nil
	}
	release := r.resetLocked()
	r.mu.Unlock()

	r.afterReset(ctx, release)
	log.Infof("tracker: session %s finished, day [%s], %d seconds", session.ID, session.Day, session.Duration)

	return FinishResult{Session: &session}, nil
}

// Discard drops the session without saving it, on the second call within
// the confirmation window. It returns true while only armed.
func (r *Runtime) Discard(ctx context.Context) (bool, error) {
	r.mu.Lock()

	now := r.now()
	if r.state == StateNotStarted && r.draft.IsEmpty() {
		r.mu.Unlock()
		return false, ErrNoSession
	}

	if r.discardArmedUntil.IsZero() || now.After(r.discardArmedUntil) {
		r.discardArmedUntil = now.Add(DiscardConfirmWindow)
		r.mu.Unlock()
		return true, nil
	}

	release := r.resetLocked()
	r.mu.Unlock()

	r.afterReset(ctx, release)
	r.metricsManager.CounterSessionsDiscarded.Inc()
	log.Infoln("tracker: session discarded")

	return false, nil
}

func (r *Runtime) tick(gen uint64) {
	r.mu.Lock()

	t := r.timer
	if t == nil || t.gen != gen || t.finished {
		r.mu.Unlock()
		return
	}

	t.remaining--
	if t.remaining > 0 {
		r.mu.Unlock()
		return
	}

	t.remaining = 0
	t.finished = true
	t.cancelTick()

	if t.unitKey != "" {
		count := r.counts[t.unitKey] + 1
		if count > t.target {
			count = t.target
		}
		r.counts[t.unitKey] = count
		r.updateFreezeLocked(r.now())
	}

	t.cancelDismiss = r.scheduler.After(restDismissDelay, func() {
		r.autoDismiss(gen)
	})

	release := r.wakeLock
	r.wakeLock = false
	r.mu.Unlock()

	r.metricsManager.CounterRestTimersCompleted.Inc()

	ctx := context.Background()
	r.sideEffect("audio", func() error {
		return r.caps.PlayCue(ctx, cuePulses)
	})
	r.sideEffect("haptics", func() error {
		return r.caps.Vibrate(ctx, vibratePattern)
	})
	if release {
		r.sideEffect("wake_lock", func() error {
			return r.caps.ReleaseWakeLock(ctx)
		})
	}
}

func (r *Runtime) autoDismiss(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.timer != nil && r.timer.gen == gen && r.timer.finished {
		r.timer = nil
	}
}

// sideEffect runs a device side effect, ignoring errors and panics.
func (r *Runtime) sideEffect(capability string, fn func() error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Debugf("tracker: %s panicked: %v", capability, rec)
			r.metricsManager.CounterSideEffectFailures.WithLabelValues(capability).Inc()
		}
	}()

	if err := fn(); err != nil {
		log.Debugf("tracker: %s failed: %s", capability, err)
		r.metricsManager.CounterSideEffectFailures.WithLabelValues(capability).Inc()
	}
}

func (r *Runtime) activeDayLocked() program.Day {
	return r.program.Days[r.dayIndex]
}

func (r *Runtime) elapsedLocked(now time.Time) int {
	if r.clockStart == nil {
		return r.clockBank
	}
	running := int(now.Sub(*r.clockStart) / time.Second)
	if running < 0 {
		running = 0
	}
	return r.clockBank + running
}

// ensureActiveLocked moves a not started or paused session to active.
func (r *Runtime) ensureActiveLocked(now time.Time) {
	if r.state == StateActive {
		return
	}
	r.state = StateActive
	if !r.frozen {
		r.clockStart = &now
	}
	r.metricsManager.GaugeActiveSession.Set(1)
}

func (r *Runtime) allDoneLocked() bool {
	day := r.activeDayLocked()
	if len(day.Units) == 0 {
		return false
	}
	for _, u := range day.Units {
		if r.counts[u.Key] < u.Target {
			return false
		}
	}
	return true
}

// updateFreezeLocked stops the clock once every unit is done, and restarts
// it when a unit gets undone again.
func (r *Runtime) updateFreezeLocked(now time.Time) {
	allDone := r.allDoneLocked()
	switch {
	case allDone && !r.frozen:
		r.clockBank = r.elapsedLocked(now)
		r.clockStart = nil
		r.frozen = true
	case !allDone && r.frozen:
		r.frozen = false
		if r.state == StateActive {
			r.clockStart = &now
		}
	}
}

// resetLocked clears the session state. It reports whether the wake lock
// has to be released.
func (r *Runtime) resetLocked() bool {
	if r.timer != nil {
		r.timer.stop()
		r.timer = nil
	}
	release := r.wakeLock
	r.wakeLock = false

	r.state = StateNotStarted
	r.counts = make(map[string]int)
	r.clockStart = nil
	r.clockBank = 0
	r.frozen = false
	r.draft = workout.DraftLog{}
	r.finishArmedUntil = time.Time{}
	r.discardArmedUntil = time.Time{}
	r.sessionGen++
	return release
}

func (r *Runtime) afterReset(ctx context.Context, releaseWakeLock bool) {
	r.metricsManager.GaugeActiveSession.Set(0)
	if releaseWakeLock {
		r.sideEffect("wake_lock", func() error {
			return r.caps.ReleaseWakeLock(ctx)
		})
	}
	if r.drafts != nil {
		r.drafts.ClearDraft(ctx)
	}
}
