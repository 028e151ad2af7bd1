package training

import "time"

// SplitType describes how muscle groups are distributed across the training days of a week.
type SplitType string

const (
	SplitFullBody     SplitType = "full_body"
	SplitUpperLower   SplitType = "upper_lower"
	SplitPushPullLegs SplitType = "push_pull_legs"
)

// SplitForDays maps training days per week to a split type.
func SplitForDays(daysPerWeek int) SplitType {
	switch {
	case daysPerWeek <= 3: //nolint:mnd // full body up to three days.
		return SplitFullBody
	case daysPerWeek == 4: //nolint:mnd // upper/lower at four days.
		return SplitUpperLower
	default:
		return SplitPushPullLegs
	}
}

// ExercisePrescription binds an exercise to its training parameters.
type ExercisePrescription struct {
	Exercise  Exercise `json:"exercise"`
	Sets      int      `json:"sets"`
	Reps      string   `json:"reps"`
	RIR       int      `json:"rir"`
	Tempo     string   `json:"tempo,omitempty"`
	Rest      string   `json:"rest,omitempty"`
	Notes     string   `json:"notes,omitempty"`
	Rationale string   `json:"rationale"`
}

// WorkoutDay is a single training day of the weekly template.
type WorkoutDay struct {
	DayIndex          int                    `json:"day_index"`
	Name              string                 `json:"name"`
	FocusTags         []string               `json:"focus_tags"`
	Exercises         []ExercisePrescription `json:"exercises"`
	EstimatedDuration int                    `json:"estimated_duration"`
}

// WeeklyVolume summarises the weekly sets assigned to a muscle group.
type WeeklyVolume struct {
	MuscleGroup string `json:"muscle_group"`
	Sets        int    `json:"sets"`
	MEV         int    `json:"mev"`
	MRV         int    `json:"mrv"`
	IsWithinCap bool   `json:"is_within_cap"`
}

// RIRWeek is one week of the mesocycle progression.
type RIRWeek struct {
	Week      int  `json:"week"`
	TargetRIR int  `json:"target_rir"`
	IsDeload  bool `json:"is_deload"`
}

// Plan is a generated training plan. It is never mutated after generation.
type Plan struct {
	ID             string           `json:"id"`
	CreatedAt      time.Time        `json:"created_at"`
	Selections     WizardSelections `json:"selections"`
	Phase          PhaseConfig      `json:"phase"`
	SplitType      SplitType        `json:"split_type"`
	WorkoutDays    []WorkoutDay     `json:"workout_days"`
	WeeklyVolume   []WeeklyVolume   `json:"weekly_volume"`
	RIRProgression []RIRWeek        `json:"rir_progression"`
	Notes          []string         `json:"notes"`
}

// prescription finds the first prescription of exerciseID in the plan.
func (p Plan) prescription(exerciseID string) (ExercisePrescription, bool) {
	id := normalizeTag(exerciseID)
	for _, day := range p.WorkoutDays {
		for _, ex := range day.Exercises {
			if ex.Exercise.ID == id {
				return ex, true
			}
		}
	}
	return ExercisePrescription{}, false
}

// Muscles returns the primary muscles trained by the plan's exercises, sorted.
func (p Plan) Muscles() []string {
	var muscles []string
	for _, day := range p.WorkoutDays {
		for _, ex := range day.Exercises {
			muscles = append(muscles, ex.Exercise.PrimaryMuscles...)
		}
	}
	return normalizeTags(muscles)
}

// WorkoutLog is a historical record of a performed workout.
type WorkoutLog struct {
	ID          string           `json:"id"`
	PlanID      string           `json:"plan_id"`
	DayIndex    int              `json:"day_index"`
	DayName     string           `json:"day_name"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt time.Time        `json:"completed_at"`
	Duration    int              `json:"duration"`
	Exercises   []LoggedExercise `json:"exercises"`
	TotalVolume float64          `json:"total_volume"`
}

// LoggedExercise is an exercise performed within a WorkoutLog.
type LoggedExercise struct {
	ExerciseID string      `json:"exercise_id"`
	Name       string      `json:"name"`
	Sets       []LoggedSet `json:"sets"`
}

// LoggedSet is a single performed set.
type LoggedSet struct {
	Weight     float64 `json:"weight"`
	WeightUnit string  `json:"weight_unit"`
	Reps       int     `json:"reps"`
	RIR        *int    `json:"rir,omitempty"`
	Completed  bool    `json:"completed"`
}

// performedAt is the moment the workout counts towards, the completion time when known.
func (l WorkoutLog) performedAt() time.Time {
	if !l.CompletedAt.IsZero() {
		return l.CompletedAt
	}
	return l.StartedAt
}

// ComputeTotalVolume sums weight times reps over the completed sets.
func (l WorkoutLog) ComputeTotalVolume() float64 {
	var total float64
	for _, ex := range l.Exercises {
		for _, set := range ex.Sets {
			if set.Completed {
				total += set.Weight * float64(set.Reps)
			}
		}
	}
	return total
}
