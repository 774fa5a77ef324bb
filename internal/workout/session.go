package workout

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidField    = errors.New("invalid set entry field")
)

// MaxSetsPerExercise caps the set index a draft entry may address.
const MaxSetsPerExercise = 100

type Field string

const (
	FieldWeight Field = "weight"
	FieldReps   Field = "reps"
	FieldNote   Field = "note"
)

// SetEntry is a single logged set. Weight and reps are kept as free text,
// exactly as the user typed them.
type SetEntry struct {
	Weight string `json:"weight"`
	Reps   string `json:"reps"`
	Note   string `json:"note,omitempty"`
}

func (e SetEntry) IsEmpty() bool {
	return e.Weight == "" && e.Reps == "" && e.Note == ""
}

// WithField returns a copy of the entry with the given field set.
func (e SetEntry) WithField(field Field, value string) (SetEntry, error) {
	switch field {
	case FieldWeight:
		e.Weight = value
	case FieldReps:
		e.Reps = value
	case FieldNote:
		e.Note = value
	default:
		return e, ErrInvalidField
	}
	return e, nil
}

// Session is a finished workout. It is never mutated after creation.
type Session struct {
	ID        string                `json:"id"`
	Date      time.Time             `json:"date"`
	Day       string                `json:"day"`
	Duration  int                   `json:"duration"`
	Exercises map[string][]SetEntry `json:"exercises"`
}

func (s Session) Clone() Session {
	c := s
	c.Exercises = cloneExercises(s.Exercises)
	return c
}

// DraftLog is the in-progress, not yet finished, set of logged exercises.
type DraftLog map[string][]SetEntry

func (d DraftLog) Clone() DraftLog {
	return DraftLog(cloneExercises(d))
}

func (d DraftLog) IsEmpty() bool {
	for _, entries := range d {
		for _, e := range entries {
			if !e.IsEmpty() {
				return false
			}
		}
	}
	return true
}

// Set updates a single field of the entry at index, growing the list with
// empty entries as needed.
func (d DraftLog) Set(exerciseKey string, index int, field Field, value string) error {
	if index < 0 || index >= MaxSetsPerExercise {
		return fmt.Errorf("%w: set index %d out of range", ErrInvalidField, index)
	}
	entries := d[exerciseKey]
	for len(entries) <= index {
		entries = append(entries, SetEntry{})
	}
	updated, err := entries[index].WithField(field, value)
	if err != nil {
		return err
	}
	entries[index] = updated
	d[exerciseKey] = entries
	return nil
}

func cloneExercises(in map[string][]SetEntry) map[string][]SetEntry {
	if in == nil {
		return nil
	}
	out := make(map[string][]SetEntry, len(in))
	for k, v := range in {
		out[k] = append([]SetEntry(nil), v...)
	}
	return out
}
