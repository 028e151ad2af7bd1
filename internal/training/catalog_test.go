package training_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/coachplan/internal/training"
)

func TestDefaultCatalog(t *testing.T) {
	catalog := training.DefaultCatalog()
	if catalog.Len() < 40 {
		t.Errorf("Expected a catalog of at least 40 exercises, got %d", catalog.Len())
	}

	// Every muscle with a landmark can be trained with bodyweight only.
	for muscle := range training.DefaultLandmarks() {
		if muscle == training.MuscleBack {
			continue
		}
		found := slices.ContainsFunc(catalog.All(), func(ex training.Exercise) bool {
			return slices.Equal(ex.Equipment, []string{"bodyweight"}) && slices.Contains(ex.PrimaryMuscles, muscle)
		})
		if !found {
			t.Errorf("Expected a bodyweight-only exercise for %s", muscle)
		}
	}
}

func TestNewCatalog_Validation(t *testing.T) {
	valid := training.Exercise{
		ID:             "push_up",
		Name:           "Push-Up",
		PrimaryMuscles: []string{"chest"},
		Equipment:      []string{"bodyweight"},
		Difficulty:     training.DifficultyAllLevels,
	}
	tests := []struct {
		name      string
		exercises []training.Exercise
		wantErr   error
	}{
		{
			name:      "valid",
			exercises: []training.Exercise{valid},
			wantErr:   nil,
		},
		{
			name:      "duplicate id",
			exercises: []training.Exercise{valid, valid},
			wantErr:   training.ErrDuplicateExercise,
		},
		{
			name: "missing primary muscles",
			exercises: []training.Exercise{{
				ID: "mystery", Name: "Mystery", Equipment: []string{"bodyweight"},
				Difficulty: training.DifficultyBeginner,
			}},
			wantErr: training.ErrInvalidExercise,
		},
		{
			name: "missing equipment",
			exercises: []training.Exercise{{
				ID: "air_press", Name: "Air Press", PrimaryMuscles: []string{"chest"},
				Difficulty: training.DifficultyBeginner,
			}},
			wantErr: training.ErrInvalidExercise,
		},
		{
			name: "unknown difficulty",
			exercises: []training.Exercise{{
				ID: "press", Name: "Press", PrimaryMuscles: []string{"chest"}, Equipment: []string{"barbell"},
				Difficulty: "Legendary",
			}},
			wantErr: training.ErrInvalidExercise,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := training.NewCatalog(tt.exercises)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCatalog_With(t *testing.T) {
	base := training.DefaultCatalog()
	custom := training.Exercise{
		ID:             "landmine_press",
		Name:           "Landmine Press",
		PrimaryMuscles: []string{"Shoulders"},
		Equipment:      []string{"barbell"},
		Patterns:       []string{"vertical_push"},
		Difficulty:     training.DifficultyIntermediate,
		Category:       "strength",
	}
	override := training.Exercise{
		ID:             "push_up",
		Name:           "Deficit Push-Up",
		PrimaryMuscles: []string{"chest"},
		Equipment:      []string{"bodyweight"},
		Patterns:       []string{"horizontal_push"},
		Difficulty:     training.DifficultyAdvanced,
		Category:       "strength",
	}

	merged, err := base.With(custom, override)
	if err != nil {
		t.Fatalf("Expected merge to succeed, got %v", err)
	}
	if merged.Len() != base.Len()+1 {
		t.Errorf("Expected %d exercises, got %d", base.Len()+1, merged.Len())
	}
	got, ok := merged.ByID("landmine_press")
	if !ok {
		t.Fatal("Expected custom exercise in merged catalog")
	}
	if diff := cmp.Diff([]string{"shoulders"}, got.PrimaryMuscles); diff != "" {
		t.Errorf("Expected normalised muscles (-want +got):\n%s", diff)
	}
	if pushUp, _ := merged.ByID("push_up"); pushUp.Name != "Deficit Push-Up" {
		t.Errorf("Expected override of push_up, got %s", pushUp.Name)
	}
	if pushUp, _ := base.ByID("push_up"); pushUp.Name != "Push-Up" {
		t.Errorf("Expected base catalog untouched, got %s", pushUp.Name)
	}
}

func TestCatalog_Filter(t *testing.T) {
	catalog := training.DefaultCatalog()
	for _, ex := range catalog.Filter(training.CatalogFilter{Muscle: "calves", Equipment: "bodyweight"}) {
		if !slices.Contains(ex.Equipment, "bodyweight") {
			t.Errorf("Expected bodyweight equipment on %s", ex.ID)
		}
		if !slices.Contains(ex.PrimaryMuscles, "calves") && !slices.Contains(ex.SecondaryMuscles, "calves") {
			t.Errorf("Expected %s to train calves", ex.ID)
		}
	}
	if got := len(catalog.Filter(training.CatalogFilter{})); got != catalog.Len() {
		t.Errorf("Expected empty filter to match all %d exercises, got %d", catalog.Len(), got)
	}
}
