package program

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

var (
	ErrNoDays        = errors.New("program has no days")
	ErrDuplicateDay  = errors.New("duplicate day id")
	ErrInvalidTarget = errors.New("unit target must be greater than 0")
)

// Unit is a trackable round/set group within a day (the shared complex,
// a superset, a finisher), with its own target count.
type Unit struct {
	Key    string `toml:"key" json:"key"`
	Name   string `toml:"name" json:"name"`
	Target int    `toml:"target" json:"target"`
	Rest   string `toml:"rest" json:"rest"`
}

type Exercise struct {
	ID   string `toml:"id" json:"id"`
	Name string `toml:"name" json:"name"`
	Unit string `toml:"unit" json:"unit"`
	Reps string `toml:"reps" json:"reps"`
}

type Day struct {
	ID        string     `toml:"id" json:"id"`
	Label     string     `toml:"label" json:"label"`
	Title     string     `toml:"title" json:"title"`
	Units     []Unit     `toml:"units" json:"units"`
	Exercises []Exercise `toml:"exercises" json:"exercises"`
}

type Program struct {
	Name string `toml:"name" json:"name"`
	Days []Day  `toml:"days" json:"days"`
	// ExerciseAliases maps historical display names onto canonical exercise IDs.
	ExerciseAliases map[string]string `toml:"exercise_aliases" json:"exerciseAliases"`
}

// Load reads a program definition from a TOML file.
func Load(path string) (*Program, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read program file: %w", err)
	}

	var p Program
	if _, err := toml.Decode(string(content), &p); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &p, nil
}

func (p *Program) Validate() error {
	if len(p.Days) == 0 {
		return ErrNoDays
	}
	seen := make(map[string]bool, len(p.Days))
	for _, d := range p.Days {
		if seen[d.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateDay, d.ID)
		}
		seen[d.ID] = true
		for _, u := range d.Units {
			if u.Target <= 0 {
				return fmt.Errorf("%w: day %s, unit %s", ErrInvalidTarget, d.ID, u.Key)
			}
		}
	}
	return nil
}

// DayByID returns the day with the given canonical ID.
func (p *Program) DayByID(id string) (Day, bool) {
	for _, d := range p.Days {
		if d.ID == id {
			return d, true
		}
	}
	return Day{}, false
}

// ExerciseNames returns the display name -> canonical ID table, including
// historical aliases.
func (p *Program) ExerciseNames() map[string]string {
	names := make(map[string]string)
	for _, d := range p.Days {
		for _, e := range d.Exercises {
			names[e.Name] = e.ID
		}
	}
	for alias, id := range p.ExerciseAliases {
		names[alias] = id
	}
	return names
}

// ExerciseIDs returns the set of canonical exercise IDs.
func (p *Program) ExerciseIDs() map[string]bool {
	ids := make(map[string]bool)
	for _, d := range p.Days {
		for _, e := range d.Exercises {
			ids[e.ID] = true
		}
	}
	return ids
}

// UnitTargets returns the unit key -> target table for a day.
func (d Day) UnitTargets() map[string]int {
	targets := make(map[string]int, len(d.Units))
	for _, u := range d.Units {
		targets[u.Key] = u.Target
	}
	return targets
}

func (d Day) Unit(key string) (Unit, bool) {
	for _, u := range d.Units {
		if u.Key == key {
			return u, true
		}
	}
	return Unit{}, false
}
