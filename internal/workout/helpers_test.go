package workout_test

import (
	"testing"
	"time"

	"github.com/myrjola/coachplan/internal/metrics"
	"github.com/myrjola/coachplan/internal/sqlite"
	"github.com/myrjola/coachplan/internal/testhelpers"
	"github.com/myrjola/coachplan/internal/training"
	"github.com/myrjola/coachplan/internal/workout"
)

const (
	userID      = "user-1"
	otherUserID = "user-2"
)

// now is a Saturday.
func now() time.Time {
	return time.Date(2026, time.March, 14, 9, 26, 53, 0, time.UTC)
}

func newTestDatabase(t *testing.T) *sqlite.Database {
	t.Helper()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	db, err := sqlite.NewDatabase(t.Context(), ":memory:", logger)
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	t.Cleanup(func() {
		if err = db.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	for _, id := range []string{userID, otherUserID} {
		if _, err = db.ReadWrite.ExecContext(t.Context(),
			`INSERT INTO users (id, display_name) VALUES (?, ?)`, id, "name "+id); err != nil {
			t.Fatalf("insert user: %v", err)
		}
	}
	return db
}

func newTestService(t *testing.T, opts ...workout.Option) (*workout.Service, *metrics.Manager) {
	t.Helper()
	db := newTestDatabase(t)
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	m := metrics.NewTestManager()
	opts = append([]workout.Option{workout.WithClock(now)}, opts...)
	return workout.NewService(workout.NewSQLiteStore(db), logger, m, opts...), m
}

func hypertrophySelections() training.WizardSelections {
	return training.WizardSelections{
		Goal:            training.GoalHypertrophy,
		ExperienceLevel: training.LevelIntermediate,
		Equipment:       []string{"barbell", "bench", "dumbbells", "cable"},
		TargetMuscles:   []string{"chest", "upper_back", "quads"},
		Constraints:     nil,
		DaysPerWeek:     3,
		SessionDuration: 60,
		Name:            "Petra",
		Note:            "",
		IsTrainer:       false,
		TrainerNotes:    "",
	}
}

func completedSets(n int, weight float64, reps int) []training.LoggedSet {
	sets := make([]training.LoggedSet, n)
	for i := range sets {
		sets[i] = training.LoggedSet{Weight: weight, WeightUnit: "kg", Reps: reps, RIR: nil, Completed: true}
	}
	return sets
}
