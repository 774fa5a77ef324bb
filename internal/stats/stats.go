package stats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/2beens/gymtrack/internal/workout"
)

// MaxStreakGapDays is the largest gap, in calendar days, between two
// sessions that still keeps a streak going.
const MaxStreakGapDays = 3

const calendarKeyLayout = "2006-01-02"

type Streak struct {
	Current  int `json:"current"`
	Longest  int `json:"longest"`
	ThisWeek int `json:"thisWeek"`
}

type PersonalRecord struct {
	ExerciseID string    `json:"exerciseId"`
	Weight     float64   `json:"weight"`
	Reps       float64   `json:"reps"`
	SessionID  string    `json:"sessionId"`
	Date       time.Time `json:"date"`
}

type HistoryPoint struct {
	SessionID  string    `json:"sessionId"`
	Date       time.Time `json:"date"`
	BestWeight float64   `json:"bestWeight"`
	BestReps   float64   `json:"bestReps"`
	Sets       int       `json:"sets"`
	Volume     float64   `json:"volume"`
}

// Streaks counts streaks over the distinct calendar days (in now's
// location) that have a session. Days belong to the same streak while the
// gap between them is at most MaxStreakGapDays. The current streak is 0 once
// the latest session is older than that. ThisWeek counts the sessions on or
// after Monday 00:00, future dated ones included.
func Streaks(sessions []workout.Session, now time.Time) Streak {
	if len(sessions) == 0 {
		return Streak{}
	}

	loc := now.Location()
	today := midnight(now, loc)
	weekStart := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))

	var streak Streak
	seen := make(map[time.Time]bool)
	var days []time.Time
	for _, s := range sessions {
		day := midnight(s.Date, loc)
		if !day.Before(weekStart) {
			streak.ThisWeek++
		}
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].After(days[j])
	})

	run := 1
	streak.Longest = 1
	currentDone := false
	if daysBetween(days[0], today) > MaxStreakGapDays {
		currentDone = true
	}
	for i := 1; i < len(days); i++ {
		if daysBetween(days[i], days[i-1]) <= MaxStreakGapDays {
			run++
		} else {
			if !currentDone {
				streak.Current = run
				currentDone = true
			}
			run = 1
		}
		if run > streak.Longest {
			streak.Longest = run
		}
	}
	if !currentDone {
		streak.Current = run
	}

	return streak
}

// PersonalRecords returns the heaviest set per exercise, heaviest first.
// On equal weight the first one seen in sessions order is kept, so with
// the repository's newest first order the most recent set wins.
func PersonalRecords(sessions []workout.Session) []PersonalRecord {
	best := make(map[string]PersonalRecord)
	for _, s := range sessions {
		for exerciseID, sets := range s.Exercises {
			for _, set := range sets {
				weight, ok := workout.PositiveNumber(set.Weight)
				if !ok {
					continue
				}
				current, exists := best[exerciseID]
				if exists && weight <= current.Weight {
					continue
				}
				best[exerciseID] = PersonalRecord{
					ExerciseID: exerciseID,
					Weight:     weight,
					Reps:       workout.ParseNumber(set.Reps),
					SessionID:  s.ID,
					Date:       s.Date,
				}
			}
		}
	}

	records := make([]PersonalRecord, 0, len(best))
	for _, pr := range best {
		records = append(records, pr)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Weight != records[j].Weight {
			return records[i].Weight > records[j].Weight
		}
		return records[i].ExerciseID < records[j].ExerciseID
	})
	return records
}

// Volume is the sum of weight*reps over the sets where both are positive.
func Volume(session workout.Session) float64 {
	var volume float64
	for _, sets := range session.Exercises {
		volume += setsVolume(sets)
	}
	return volume
}

func TotalVolume(sessions []workout.Session) float64 {
	var total float64
	for _, s := range sessions {
		total += Volume(s)
	}
	return total
}

// Calendar counts sessions per calendar day, keyed as 2006-01-02.
func Calendar(sessions []workout.Session, loc *time.Location) map[string]int {
	calendar := make(map[string]int)
	for _, s := range sessions {
		calendar[s.Date.In(loc).Format(calendarKeyLayout)]++
	}
	return calendar
}

// ExerciseHistory returns the best set of the exercise per session, oldest first.
func ExerciseHistory(sessions []workout.Session, exerciseID string) []HistoryPoint {
	var history []HistoryPoint
	for _, s := range sessions {
		sets, ok := s.Exercises[exerciseID]
		if !ok || len(sets) == 0 {
			continue
		}

		point := HistoryPoint{
			SessionID: s.ID,
			Date:      s.Date,
			Sets:      len(sets),
			Volume:    setsVolume(sets),
		}
		for _, set := range sets {
			weight := workout.ParseNumber(set.Weight)
			reps := workout.ParseNumber(set.Reps)
			if weight > point.BestWeight || (weight == point.BestWeight && reps > point.BestReps) {
				point.BestWeight = weight
				point.BestReps = reps
			}
		}
		history = append(history, point)
	}

	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Date.Before(history[j].Date)
	})
	return history
}

// FormatDuration renders seconds as "1h 5m" or "5m".
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatVolume renders a volume in pounds: "" for none, "500 lb", "1000 lb",
// "1.5K lb".
func FormatVolume(volume float64) string {
	if volume <= 0 || math.IsNaN(volume) {
		return ""
	}
	if volume > 1000 {
		return fmt.Sprintf("%.1fK lb", volume/1000)
	}
	return fmt.Sprintf("%.0f lb", volume)
}

func setsVolume(sets []workout.SetEntry) float64 {
	var volume float64
	for _, set := range sets {
		weight, okWeight := workout.PositiveNumber(set.Weight)
		reps, okReps := workout.PositiveNumber(set.Reps)
		if okWeight && okReps {
			volume += weight * reps
		}
	}
	return volume
}

func midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// daysBetween counts calendar days from a to b, both at midnight.
func daysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}
