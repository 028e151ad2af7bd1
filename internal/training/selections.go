package training

import (
	"fmt"
	"slices"
)

// Goal is the primary training goal chosen in the wizard.
type Goal string

const (
	GoalStrength    Goal = "strength"
	GoalHypertrophy Goal = "hypertrophy"
	GoalGeneral     Goal = "general"
)

// ExperienceLevel is the self-reported training experience of the user.
type ExperienceLevel string

const (
	LevelBeginner     ExperienceLevel = "beginner"
	LevelIntermediate ExperienceLevel = "intermediate"
	LevelAdvanced     ExperienceLevel = "advanced"
)

const (
	MinDaysPerWeek         = 2
	MaxDaysPerWeek         = 6
	MinSessionDurationMins = 30
)

// Equipment and constraint tags with special meaning to the generator and the balance validator.
const (
	EquipmentBodyweight = "bodyweight"
)

// WizardSelections is the snapshot of user intent that the plan is generated from.
//
// Name, Note, IsTrainer and TrainerNotes personalise the plan but never affect generation or the plan id.
type WizardSelections struct {
	Goal            Goal            `json:"goal" yaml:"goal"`
	ExperienceLevel ExperienceLevel `json:"experience_level" yaml:"experience_level"`
	Equipment       []string        `json:"equipment" yaml:"equipment"`
	TargetMuscles   []string        `json:"target_muscles" yaml:"target_muscles"`
	Constraints     []string        `json:"constraints" yaml:"constraints"`
	DaysPerWeek     int             `json:"days_per_week" yaml:"days_per_week"`
	SessionDuration int             `json:"session_duration" yaml:"session_duration"`

	Name         string `json:"name,omitempty" yaml:"name,omitempty"`
	Note         string `json:"note,omitempty" yaml:"note,omitempty"`
	IsTrainer    bool   `json:"is_trainer,omitempty" yaml:"is_trainer,omitempty"`
	TrainerNotes string `json:"trainer_notes,omitempty" yaml:"trainer_notes,omitempty"`
}

// ValidationResult is the outcome of ValidateWizardInputs.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidateWizardInputs checks the selections and accumulates every applicable error message.
//
// Callers accepting untrusted input must call it before Generator.GeneratePlan.
func ValidateWizardInputs(sel WizardSelections) ValidationResult {
	errs := []string{}
	if sel.Goal == "" {
		errs = append(errs, "Please select a training goal")
	} else if !slices.Contains([]Goal{GoalStrength, GoalHypertrophy, GoalGeneral}, sel.Goal) {
		errs = append(errs, fmt.Sprintf("Unknown training goal %q", sel.Goal))
	}
	if len(sel.Equipment) == 0 {
		errs = append(errs, "Please select at least one equipment option")
	}
	if len(sel.TargetMuscles) == 0 {
		errs = append(errs, "Please select at least one muscle group to target")
	}
	if sel.DaysPerWeek < MinDaysPerWeek || sel.DaysPerWeek > MaxDaysPerWeek {
		errs = append(errs, fmt.Sprintf("Please select between %d and %d training days per week",
			MinDaysPerWeek, MaxDaysPerWeek))
	}
	if sel.SessionDuration < MinSessionDurationMins {
		errs = append(errs, fmt.Sprintf("Session duration must be at least %d minutes", MinSessionDurationMins))
	}
	if !slices.Contains([]ExperienceLevel{LevelBeginner, LevelIntermediate, LevelAdvanced}, sel.ExperienceLevel) {
		errs = append(errs, "Please select a valid experience level")
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// isBodyweightOnly reports whether equipment is exactly the bodyweight tag.
func isBodyweightOnly(equipment []string) bool {
	return len(equipment) == 1 && normalizeTag(equipment[0]) == EquipmentBodyweight
}
