package resolver

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/gymtrack/internal/program"
	"github.com/2beens/gymtrack/internal/workout"
)

// dashFolder folds every dash-like rune onto an ASCII hyphen.
var dashFolder = strings.NewReplacer(
	"‐", "-", // hyphen
	"‑", "-", // non-breaking hyphen
	"‒", "-", // figure dash
	"–", "-", // en dash
	"—", "-", // em dash
	"―", "-", // horizontal bar
	"−", "-", // minus sign
)

var dayNumberRegex = regexp.MustCompile(`(?i)\bday\s*(\d+)\b`)

type focusKeyword struct {
	keyword string // lower case
	dayID   string
}

// DayAliases holds the historical representations a canonical day was
// stored under.
type DayAliases struct {
	ID       string
	Label    string
	Title    string
	Keywords []string
}

// Resolver maps historical day/exercise representations onto canonical IDs.
// It is immutable after construction and safe for concurrent use.
type Resolver struct {
	dayIDs      []string
	exact       map[string]string
	dashFolded  map[string]string
	byLabel     map[string]string
	focus       []focusKeyword
	aliases     map[string]DayAliases
	exerciseIDs map[string]string
	matchers    []dayMatcher
}

type dayMatcher func(raw string) (string, bool)

func New(p *program.Program) *Resolver {
	r := &Resolver{
		exact:       make(map[string]string),
		dashFolded:  make(map[string]string),
		byLabel:     make(map[string]string),
		aliases:     make(map[string]DayAliases),
		exerciseIDs: make(map[string]string),
	}

	for _, d := range p.Days {
		r.dayIDs = append(r.dayIDs, d.ID)
		putFirst(r.exact, d.ID, d.ID)
		putFirst(r.exact, d.Label, d.ID)
		putFirst(r.exact, d.Title, d.ID)
		putFirst(r.dashFolded, dashFolder.Replace(d.Label), d.ID)
		putFirst(r.dashFolded, dashFolder.Replace(d.Title), d.ID)
		putFirst(r.byLabel, d.Label, d.ID)

		keywords := focusKeywords(d.Title)
		for _, k := range keywords {
			r.focus = append(r.focus, focusKeyword{keyword: strings.ToLower(k), dayID: d.ID})
		}
		r.aliases[d.ID] = DayAliases{
			ID:       d.ID,
			Label:    d.Label,
			Title:    d.Title,
			Keywords: keywords,
		}
	}

	r.buildExerciseTable(p)

	r.matchers = []dayMatcher{
		r.matchExact,
		r.matchDashFolded,
		r.matchDayNumber,
		r.matchFocusKeyword,
		r.matchContainsID,
	}

	return r
}

// ResolveDayID returns the canonical day ID for a raw, possibly legacy, day
// value. Unresolvable values are returned unchanged.
func (r *Resolver) ResolveDayID(raw string) string {
	for _, match := range r.matchers {
		if id, ok := match(raw); ok {
			return id
		}
	}
	log.Tracef("resolver: day [%s] not resolved, keeping it as is", raw)
	return raw
}

// ResolveExerciseID returns the canonical exercise ID for a display name or
// an already canonical ID. Unknown keys are returned unchanged.
func (r *Resolver) ResolveExerciseID(raw string) string {
	if id, ok := r.exerciseIDs[raw]; ok {
		return id
	}
	return raw
}

// NormalizeSession returns a copy of the session with the day and all
// exercise keys resolved. Sets of two legacy keys resolving to the same
// exercise are concatenated, canonical key first.
func (r *Resolver) NormalizeSession(s workout.Session) workout.Session {
	out := s.Clone()
	out.Day = r.ResolveDayID(s.Day)
	if s.Exercises == nil {
		return out
	}

	keys := make([]string, 0, len(s.Exercises))
	for k := range s.Exercises {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		iCanonical := r.ResolveExerciseID(keys[i]) == keys[i]
		jCanonical := r.ResolveExerciseID(keys[j]) == keys[j]
		if iCanonical != jCanonical {
			return iCanonical
		}
		return keys[i] < keys[j]
	})

	out.Exercises = make(map[string][]workout.SetEntry, len(keys))
	for _, k := range keys {
		id := r.ResolveExerciseID(k)
		out.Exercises[id] = append(out.Exercises[id], s.Exercises[k]...)
	}
	return out
}

func (r *Resolver) NormalizeSessions(sessions []workout.Session) []workout.Session {
	out := make([]workout.Session, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, r.NormalizeSession(s))
	}
	return out
}

// NormalizeDraft resolves the exercise keys of a draft log.
func (r *Resolver) NormalizeDraft(d workout.DraftLog) workout.DraftLog {
	normalized := r.NormalizeSession(workout.Session{Exercises: d})
	return workout.DraftLog(normalized.Exercises)
}

// Aliases returns the historical representations of a canonical day.
func (r *Resolver) Aliases(dayID string) (DayAliases, bool) {
	a, ok := r.aliases[dayID]
	return a, ok
}

func (r *Resolver) buildExerciseTable(p *program.Program) {
	canonical := p.ExerciseIDs()
	names := p.ExerciseNames()

	for id := range canonical {
		r.exerciseIDs[id] = id
	}
	for name, target := range names {
		if canonical[name] {
			continue
		}
		// follow alias chains, so a single lookup is always a fixed point
		seen := map[string]bool{name: true}
		for !canonical[target] {
			next, ok := names[target]
			if !ok || seen[target] {
				break
			}
			seen[target] = true
			target = next
		}
		r.exerciseIDs[name] = target
	}
}

func (r *Resolver) matchExact(raw string) (string, bool) {
	id, ok := r.exact[raw]
	return id, ok
}

func (r *Resolver) matchDashFolded(raw string) (string, bool) {
	id, ok := r.dashFolded[dashFolder.Replace(raw)]
	return id, ok
}

func (r *Resolver) matchDayNumber(raw string) (string, bool) {
	m := dayNumberRegex.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return "", false
	}
	id, ok := r.byLabel["Day "+strconv.Itoa(n)]
	return id, ok
}

func (r *Resolver) matchFocusKeyword(raw string) (string, bool) {
	lower := strings.ToLower(raw)
	for _, f := range r.focus {
		if strings.Contains(lower, f.keyword) {
			return f.dayID, true
		}
	}
	return "", false
}

func (r *Resolver) matchContainsID(raw string) (string, bool) {
	lower := strings.ToLower(raw)
	for _, id := range r.dayIDs {
		if id != "" && strings.Contains(lower, strings.ToLower(id)) {
			return id, true
		}
	}
	return "", false
}

// focusKeywords extracts the focus part of a day title, e.g.
// "Day 4 – Shoulders/Arms" -> [Shoulders, Arms].
func focusKeywords(title string) []string {
	parts := strings.SplitN(dashFolder.Replace(title), "-", 2)
	if len(parts) < 2 {
		return nil
	}
	var keywords []string
	for _, k := range strings.Split(parts[1], "/") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}

func putFirst(m map[string]string, key, value string) {
	if key == "" {
		return
	}
	if _, ok := m[key]; !ok {
		m[key] = value
	}
}
