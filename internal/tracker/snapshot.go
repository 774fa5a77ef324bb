package tracker

import (
	"time"

	"github.com/2beens/gymtrack/internal/workout"
)

type UnitStatus struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	Rest   string `json:"rest"`
	Target int    `json:"target"`
	Count  int    `json:"count"`
	Done   bool   `json:"done"`
}

type TimerStatus struct {
	UnitKey   string `json:"unitKey"`
	Remaining int    `json:"remaining"`
	Lower     int    `json:"lower"`
	Total     int    `json:"total"`
	Finished  bool   `json:"finished"`
	// Urgent is set once the lower bound of the rest has passed.
	Urgent bool `json:"urgent"`
}

// Snapshot is a read-only view of the runtime state.
type Snapshot struct {
	State        State            `json:"state"`
	DayIndex     int              `json:"dayIndex"`
	DayID        string           `json:"dayId"`
	DayTitle     string           `json:"dayTitle"`
	Units        []UnitStatus     `json:"units"`
	AllDone      bool             `json:"allDone"`
	Timer        *TimerStatus     `json:"timer,omitempty"`
	Elapsed      int              `json:"elapsed"`
	Draft        workout.DraftLog `json:"draft"`
	FinishArmed  bool             `json:"finishArmed"`
	DiscardArmed bool             `json:"discardArmed"`
}

// CurrentSnapshot is Snapshot at the runtime's current time.
func (r *Runtime) CurrentSnapshot() Snapshot {
	return r.Snapshot(r.now())
}

func (r *Runtime) Snapshot(now time.Time) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	day := r.activeDayLocked()
	snapshot := Snapshot{
		State:        r.state,
		DayIndex:     r.dayIndex,
		DayID:        day.ID,
		DayTitle:     day.Title,
		AllDone:      r.allDoneLocked(),
		Elapsed:      r.elapsedLocked(now),
		Draft:        r.draft.Clone(),
		FinishArmed:  !r.finishArmedUntil.IsZero() && !now.After(r.finishArmedUntil),
		DiscardArmed: !r.discardArmedUntil.IsZero() && !now.After(r.discardArmedUntil),
	}

	for _, u := range day.Units {
		count := r.counts[u.Key]
		snapshot.Units = append(snapshot.Units, UnitStatus{
			Key:    u.Key,
			Name:   u.Name,
			Rest:   u.Rest,
			Target: u.Target,
			Count:  count,
			Done:   count >= u.Target,
		})
	}

	if t := r.timer; t != nil {
		snapshot.Timer = &TimerStatus{
			UnitKey:   t.unitKey,
			Remaining: t.remaining,
			Lower:     t.spec.Lower,
			Total:     t.spec.Total,
			Finished:  t.finished,
			Urgent:    t.spec.Total-t.remaining >= t.spec.Lower,
		}
	}

	return snapshot
}
