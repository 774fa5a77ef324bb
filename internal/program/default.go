package program

// complexUnit is shared by every day: a warm-up complex done for rounds.
var complexUnit = Unit{Key: "complex", Name: "Kettlebell Complex", Target: 3, Rest: "60-90"}

// Default returns the built-in four day program.
func Default() *Program {
	return &Program{
		Name: "Four Day Strength",
		Days: []Day{
			{
				ID:    "push",
				Label: "Day 1",
				Title: "Day 1 – Push",
				Units: []Unit{
					complexUnit,
					{Key: "superset-a", Name: "Superset A", Target: 4, Rest: "90-120"},
					{Key: "superset-b", Name: "Superset B", Target: 3, Rest: "90"},
					{Key: "finisher", Name: "Push-up Finisher", Target: 2, Rest: "45"},
				},
				Exercises: []Exercise{
					{ID: "bench-press", Name: "Bench Press", Unit: "superset-a", Reps: "6-8"},
					{ID: "pendlay-row", Name: "Pendlay Row", Unit: "superset-a", Reps: "8"},
					{ID: "overhead-press", Name: "Overhead Press", Unit: "superset-b", Reps: "8-10"},
					{ID: "dip", Name: "Dips", Unit: "superset-b", Reps: "10"},
					{ID: "push-up", Name: "Push-ups", Unit: "finisher", Reps: "AMRAP"},
				},
			},
			{
				ID:    "pull",
				Label: "Day 2",
				Title: "Day 2 – Pull",
				Units: []Unit{
					complexUnit,
					{Key: "superset-a", Name: "Superset A", Target: 4, Rest: "90-120"},
					{Key: "superset-b", Name: "Superset B", Target: 3, Rest: "75"},
					{Key: "finisher", Name: "Hang Finisher", Target: 2, Rest: "60"},
				},
				Exercises: []Exercise{
					{ID: "deadlift", Name: "Deadlift", Unit: "superset-a", Reps: "5"},
					{ID: "pull-up", Name: "Pull-ups", Unit: "superset-a", Reps: "6-10"},
					{ID: "barbell-curl", Name: "Barbell Curl", Unit: "superset-b", Reps: "10-12"},
					{ID: "face-pull", Name: "Face Pull", Unit: "superset-b", Reps: "15"},
					{ID: "dead-hang", Name: "Dead Hang", Unit: "finisher", Reps: "max"},
				},
			},
			{
				ID:    "legs",
				Label: "Day 3",
				Title: "Day 3 – Legs",
				Units: []Unit{
					complexUnit,
					{Key: "superset-a", Name: "Superset A", Target: 4, Rest: "120-180"},
					{Key: "superset-b", Name: "Superset B", Target: 3, Rest: "90"},
					{Key: "finisher", Name: "Carry Finisher", Target: 2, Rest: "60"},
				},
				Exercises: []Exercise{
					{ID: "back-squat", Name: "Back Squat", Unit: "superset-a", Reps: "5"},
					{ID: "hanging-leg-raise", Name: "Hanging Leg Raise", Unit: "superset-a", Reps: "10"},
					{ID: "romanian-deadlift", Name: "Romanian Deadlift", Unit: "superset-b", Reps: "8"},
					{ID: "walking-lunge", Name: "Walking Lunge", Unit: "superset-b", Reps: "12"},
					{ID: "farmer-carry", Name: "Farmer Carry", Unit: "finisher", Reps: "40m"},
				},
			},
			{
				ID:    "arms",
				Label: "Day 4",
				Title: "Day 4 – Shoulders/Arms",
				Units: []Unit{
					complexUnit,
					{Key: "superset-a", Name: "Superset A", Target: 3, Rest: "60-90"},
					{Key: "superset-b", Name: "Superset B", Target: 3, Rest: "60"},
					{Key: "finisher", Name: "Band Finisher", Target: 2, Rest: "30"},
				},
				Exercises: []Exercise{
					{ID: "push-press", Name: "Push Press", Unit: "superset-a", Reps: "5"},
					{ID: "chin-up", Name: "Chin-ups", Unit: "superset-a", Reps: "8"},
					{ID: "lateral-raise", Name: "Lateral Raise", Unit: "superset-b", Reps: "12-15"},
					{ID: "skull-crusher", Name: "Skull Crusher", Unit: "superset-b", Reps: "10"},
					{ID: "band-pull-apart", Name: "Band Pull-Apart", Unit: "finisher", Reps: "25"},
				},
			},
		},
		ExerciseAliases: map[string]string{
			"Barbell Bench Press": "bench-press",
			"Bench":               "bench-press",
			"OHP":                 "overhead-press",
			"Military Press":      "overhead-press",
			"Squat":               "back-squat",
			"RDL":                 "romanian-deadlift",
			"Pullups":             "pull-up",
			"Chinups":             "chin-up",
			"Pushups":             "push-up",
		},
	}
}
