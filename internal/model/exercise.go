package model

import (
	"fmt"
	"strings"
)

// Exercise is the closed set of exercises a challenge can target.
type Exercise string

// Known exercises. The values are what gets persisted.
const (
	PushUps Exercise = "push-ups"
	Squats  Exercise = "squats"
	PullUps Exercise = "pull-ups"
	SitUps  Exercise = "sit-ups"
	Burpees Exercise = "burpees"
	Planks  Exercise = "planks (seconds)"
)

// Exercises lists every exercise in menu order.
var Exercises = []Exercise{PushUps, Squats, PullUps, SitUps, Burpees, Planks}

// Guide holds form tips and a tutorial link for an exercise.
type Guide struct {
	Tips  string
	Video string
}

var exerciseNames = map[Exercise]string{
	PushUps: "PUSHUPS",
	Squats:  "SQUATS",
	PullUps: "PULLUPS",
	SitUps:  "SITUPS",
	Burpees: "BURPEES",
	Planks:  "PLANKS",
}

var exerciseGuides = map[Exercise]Guide{
	PushUps: {
		Tips:  "Keep your body straight, hands shoulder-width apart, lower chest to floor",
		Video: "https://www.youtube.com/watch?v=IODxDxX7oi4",
	},
	Squats: {
		Tips:  "Feet shoulder-width apart, lower until thighs parallel to floor, keep chest up",
		Video: "https://www.youtube.com/watch?v=aclHkVaku9U",
	},
	PullUps: {
		Tips:  "Full grip on bar, pull until chin over bar, control the descent",
		Video: "https://www.youtube.com/watch?v=eGo4IYlbE5g",
	},
	SitUps: {
		Tips:  "Lie flat, knees bent, hands behind head, lift shoulders off ground",
		Video: "https://www.youtube.com/watch?v=1fbU_MkV7NE",
	},
	Burpees: {
		Tips:  "Squat, jump back to plank, push-up, jump forward, jump up",
		Video: "https://www.youtube.com/watch?v=TU8QYVW0gDU",
	},
	Planks: {
		Tips:  "Forearms on ground, body straight, hold position, breathe normally",
		Video: "https://www.youtube.com/watch?v=ASdvN_XEl_c",
	},
}

// ParseExercise resolves a stored value, an upper-case name (PUSHUPS) or a
// short slug (pushups, push-ups, planks).
func ParseExercise(s string) (Exercise, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, ex := range Exercises {
		if key == string(ex) || key == strings.ToLower(exerciseNames[ex]) || key == ex.Slug() {
			return ex, nil
		}
	}
	return "", fmt.Errorf("unknown exercise %q", s)
}

// Valid reports whether e is one of the known exercises.
func (e Exercise) Valid() bool {
	_, ok := exerciseNames[e]
	return ok
}

// Name is the upper-case identifier used as the challenge id prefix.
func (e Exercise) Name() string {
	return exerciseNames[e]
}

// Slug is the short command-line form, e.g. "push-ups" or "planks".
func (e Exercise) Slug() string {
	if e == Planks {
		return "planks"
	}
	return string(e)
}

// Unit is "seconds" for planks and "reps" for everything else.
func (e Exercise) Unit() string {
	if e == Planks {
		return "seconds"
	}
	return "reps"
}

// Title is the display label with every word capitalized.
func (e Exercise) Title() string {
	words := strings.Fields(string(e))
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

// Guide returns the form tips and tutorial link.
func (e Exercise) Guide() Guide {
	return exerciseGuides[e]
}

func titleWord(w string) string {
	parts := strings.Split(w, "-")
	for i, p := range parts {
		runes := []rune(p)
		for j := range runes {
			if j == 0 || (runes[j-1] == '(') {
				runes[j] = []rune(strings.ToUpper(string(runes[j])))[0]
			}
		}
		parts[i] = string(runes)
	}
	return strings.Join(parts, "-")
}
