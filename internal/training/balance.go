package training

import (
	"slices"
	"strings"
)

// WarningType is the severity of a ValidationWarning.
type WarningType string

const (
	WarningTypeWarning WarningType = "warning"
	WarningTypeInfo    WarningType = "info"
)

// ValidationWarning is an advisory finding about the selections. It never blocks generation.
type ValidationWarning struct {
	ID      string         `json:"id"`
	Type    WarningType    `json:"type"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

// ValidatePlanBalance checks the selections for common programming imbalances.
//
// A balanced selection yields an empty, non-nil slice.
func ValidatePlanBalance(sel WizardSelections) []ValidationWarning {
	var (
		warnings  = []ValidationWarning{}
		targets   = normalizeTags(sel.TargetMuscles)
		equipment = normalizeTags(sel.Equipment)
	)

	if (sel.Goal == GoalHypertrophy || sel.Goal == GoalStrength) && sel.DaysPerWeek < 3 {
		warnings = append(warnings, ValidationWarning{
			ID:   "frequency_low",
			Type: WarningTypeWarning,
			Message: "Training fewer than 3 days per week limits progress towards a " + string(sel.Goal) +
				" goal. Consider adding a day.",
			Context: map[string]any{"goal": sel.Goal, "days_per_week": sel.DaysPerWeek},
		})
	}

	if len(targets) > 0 && !intersects(targets, legMuscles) {
		warnings = append(warnings, ValidationWarning{
			ID:      "missing_legs",
			Type:    WarningTypeWarning,
			Message: "No leg muscles are targeted. Including quads, hamstrings, glutes or calves keeps the plan balanced.",
			Context: map[string]any{"target_muscles": targets},
		})
	}

	if intersects(targets, pushMuscles) && !intersects(targets, pullMuscles) {
		var push []string
		for _, m := range targets {
			if slices.Contains(pushMuscles, m) {
				push = append(push, m)
			}
		}
		warnings = append(warnings, ValidationWarning{
			ID:   "imbalance_push",
			Type: WarningTypeInfo,
			Message: "Pushing muscles (" + strings.Join(push, ", ") + ") are targeted without any pulling muscles. " +
				"Adding back or biceps work helps shoulder health.",
			Context: map[string]any{"push_muscles": push},
		})
	}

	if sel.Goal == GoalStrength && isBodyweightOnly(equipment) {
		warnings = append(warnings, ValidationWarning{
			ID:   "equip_strength",
			Type: WarningTypeInfo,
			Message: "Strength goals are hard to progress with bodyweight only. Consider adding dumbbells, " +
				"a barbell or resistance bands.",
			Context: map[string]any{"equipment": equipment},
		})
	}

	return warnings
}
