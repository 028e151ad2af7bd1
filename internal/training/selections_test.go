package training_test

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/coachplan/internal/training"
)

func TestValidateWizardInputs(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(*training.WizardSelections)
		wantValid  bool
		wantErrors []string
	}{
		{
			name:       "valid",
			modify:     func(*training.WizardSelections) {},
			wantValid:  true,
			wantErrors: []string{},
		},
		{
			name:       "missing goal",
			modify:     func(s *training.WizardSelections) { s.Goal = "" },
			wantValid:  false,
			wantErrors: []string{"Please select a training goal"},
		},
		{
			name:       "missing equipment",
			modify:     func(s *training.WizardSelections) { s.Equipment = nil },
			wantValid:  false,
			wantErrors: []string{"Please select at least one equipment option"},
		},
		{
			name:       "missing target muscles",
			modify:     func(s *training.WizardSelections) { s.TargetMuscles = []string{} },
			wantValid:  false,
			wantErrors: []string{"Please select at least one muscle group to target"},
		},
		{
			name:       "one day per week",
			modify:     func(s *training.WizardSelections) { s.DaysPerWeek = 1 },
			wantValid:  false,
			wantErrors: []string{"Please select between 2 and 6 training days per week"},
		},
		{
			name:       "seven days per week",
			modify:     func(s *training.WizardSelections) { s.DaysPerWeek = 7 },
			wantValid:  false,
			wantErrors: []string{"Please select between 2 and 6 training days per week"},
		},
		{
			name:       "short session",
			modify:     func(s *training.WizardSelections) { s.SessionDuration = 20 },
			wantValid:  false,
			wantErrors: []string{"Session duration must be at least 30 minutes"},
		},
		{
			name: "accumulates errors",
			modify: func(s *training.WizardSelections) {
				s.Goal = ""
				s.Equipment = nil
				s.TargetMuscles = nil
			},
			wantValid: false,
			wantErrors: []string{
				"Please select a training goal",
				"Please select at least one equipment option",
				"Please select at least one muscle group to target",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := hypertrophySelections()
			tt.modify(&sel)
			got := training.ValidateWizardInputs(sel)
			if got.Valid != tt.wantValid {
				t.Errorf("Expected valid=%v, got %v", tt.wantValid, got.Valid)
			}
			if diff := cmp.Diff(tt.wantErrors, got.Errors); diff != "" {
				t.Errorf("Errors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateWizardInputs_PersonalisationIgnored(t *testing.T) {
	sel := hypertrophySelections()
	sel.Name = ""
	sel.IsTrainer = true
	if got := training.ValidateWizardInputs(sel); !got.Valid {
		t.Errorf("Expected personalisation fields to be optional, got %v", got.Errors)
	}
	sel.ExperienceLevel = "expert"
	if got := training.ValidateWizardInputs(sel); !slices.Contains(got.Errors, "Please select a valid experience level") {
		t.Errorf("Expected experience level error, got %v", got.Errors)
	}
}
