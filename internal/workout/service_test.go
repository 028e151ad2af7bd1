package workout_test

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/coachplan/internal/errors"
	"github.com/myrjola/coachplan/internal/training"
	"github.com/myrjola/coachplan/internal/workout"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestService_GeneratePlan(t *testing.T) {
	svc, m := newTestService(t)
	ctx := t.Context()

	plan, warnings, err := svc.GeneratePlan(ctx, userID, hypertrophySelections(), false)
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	if warnings == nil {
		t.Error("Expected non-nil warnings slice")
	}
	if plan.ID != training.PlanID(hypertrophySelections()) {
		t.Errorf("Expected deterministic plan id, got %s", plan.ID)
	}
	if got := testutil.ToFloat64(m.PlansGenerated.WithLabelValues(string(training.SplitFullBody))); got != 1 {
		t.Errorf("Expected one generated full body plan metric, got %v", got)
	}

	got, err := svc.GetPlan(ctx, userID, plan.ID)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if diff := cmp.Diff(plan, got); diff != "" {
		t.Errorf("Plan mismatch (-want +got):\n%s", diff)
	}
	if hits := testutil.ToFloat64(m.PlanCacheHits); hits != 1 {
		t.Errorf("Expected cache hit, got %v hits", hits)
	}

	// Generating the same selections again replaces the stored plan.
	if _, _, err = svc.GeneratePlan(ctx, userID, hypertrophySelections(), false); err != nil {
		t.Fatalf("GeneratePlan again: %v", err)
	}
	plans, err := svc.ListPlans(ctx, userID)
	if err != nil {
		t.Fatalf("ListPlans: %v", err)
	}
	if len(plans) != 1 {
		t.Errorf("Expected 1 plan, got %d", len(plans))
	}

	timestamped, _, err := svc.GeneratePlan(ctx, userID, hypertrophySelections(), true)
	if err != nil {
		t.Fatalf("GeneratePlan with timestamp: %v", err)
	}
	if want := plan.ID + "_260314092653"; timestamped.ID != want {
		t.Errorf("Expected id %s, got %s", want, timestamped.ID)
	}
}

func TestService_GeneratePlan_InvalidSelections(t *testing.T) {
	svc, _ := newTestService(t)
	sel := hypertrophySelections()
	sel.TargetMuscles = nil
	sel.DaysPerWeek = 9

	_, _, err := svc.GeneratePlan(t.Context(), userID, sel, false)
	if !errors.Is(err, workout.ErrInvalidSelections) {
		t.Fatalf("Expected ErrInvalidSelections, got %v", err)
	}
	var validationErr *workout.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected *ValidationError, got %T", err)
	}
	want := []string{
		"Please select at least one muscle group to target",
		"Please select between 2 and 6 training days per week",
	}
	if diff := cmp.Diff(want, validationErr.Messages); diff != "" {
		t.Errorf("Messages mismatch (-want +got):\n%s", diff)
	}
}

func TestService_GetPlan_ScopedToUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := t.Context()
	plan, _, err := svc.GeneratePlan(ctx, userID, hypertrophySelections(), false)
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}

	if _, err = svc.GetPlan(ctx, otherUserID, plan.ID); !errors.Is(err, workout.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for other user, got %v", err)
	}
	if _, err = svc.GetPlan(ctx, userID, "plan_missing"); !errors.Is(err, workout.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown plan, got %v", err)
	}
}

func TestService_DeletePlan(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := t.Context()
	plan, _, err := svc.GeneratePlan(ctx, userID, hypertrophySelections(), false)
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	if _, err = svc.LogWorkout(ctx, userID, plan.ID, training.WorkoutLog{}); err != nil {
		t.Fatalf("LogWorkout: %v", err)
	}

	if err = svc.DeletePlan(ctx, userID, plan.ID); err != nil {
		t.Fatalf("DeletePlan: %v", err)
	}
	if _, err = svc.GetPlan(ctx, userID, plan.ID); !errors.Is(err, workout.ErrNotFound) {
		t.Errorf("Expected deleted plan to be gone from cache and store, got %v", err)
	}
	if err = svc.DeletePlan(ctx, userID, plan.ID); !errors.Is(err, workout.ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestService_LogWorkout(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := t.Context()
	plan, _, err := svc.GeneratePlan(ctx, userID, hypertrophySelections(), false)
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}

	sets := completedSets(3, 60, 10)
	sets = append(sets, training.LoggedSet{Weight: 60, WeightUnit: "kg", Reps: 4, RIR: nil, Completed: false})
	logged, err := svc.LogWorkout(ctx, userID, plan.ID, training.WorkoutLog{
		DayIndex: 1,
		Duration: 55,
		Exercises: []training.LoggedExercise{
			{ExerciseID: "barbell_bench_press", Name: "Barbell Bench Press", Sets: sets},
		},
	})
	if err != nil {
		t.Fatalf("LogWorkout: %v", err)
	}
	if logged.ID == "" {
		t.Error("Expected generated log id")
	}
	if logged.TotalVolume != 1800 {
		t.Errorf("Expected total volume 1800, got %v", logged.TotalVolume)
	}
	if logged.DayName != plan.WorkoutDays[1].Name {
		t.Errorf("Expected day name %s, got %s", plan.WorkoutDays[1].Name, logged.DayName)
	}
	if !logged.CompletedAt.Equal(now()) || !logged.StartedAt.Equal(now().Add(-55*time.Minute)) {
		t.Errorf("Expected defaulted times, got %s - %s", logged.StartedAt, logged.CompletedAt)
	}

	logs, err := svc.ListLogs(ctx, userID, plan.ID)
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}
	if diff := cmp.Diff([]training.WorkoutLog{logged}, logs); diff != "" {
		t.Errorf("Logs mismatch (-want +got):\n%s", diff)
	}

	if _, err = svc.LogWorkout(ctx, userID, "plan_missing", training.WorkoutLog{}); !errors.Is(err, workout.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown plan, got %v", err)
	}
	if _, err = svc.ListLogs(ctx, otherUserID, plan.ID); !errors.Is(err, workout.ErrNotFound) {
		t.Errorf("Expected ErrNotFound listing other user's logs, got %v", err)
	}
}

func TestService_PlanCache(t *testing.T) {
	tests := []struct {
		name       string
		opts       []workout.Option
		days       int
		wantHits   float64
		wantMisses float64
	}{
		{
			name:       "default size caches a six day plan",
			opts:       nil,
			days:       6,
			wantHits:   2,
			wantMisses: 0,
		},
		{
			name:       "undersized cache falls back to the store",
			opts:       []workout.Option{workout.WithPlanCacheBytes(512 * 1024)},
			days:       3,
			wantHits:   0,
			wantMisses: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestService(t, tt.opts...)
			ctx := t.Context()
			sel := hypertrophySelections()
			sel.DaysPerWeek = tt.days
			plan, _, err := svc.GeneratePlan(ctx, userID, sel, false)
			if err != nil {
				t.Fatalf("GeneratePlan: %v", err)
			}
			for range 2 {
				got, getErr := svc.GetPlan(ctx, userID, plan.ID)
				if getErr != nil {
					t.Fatalf("GetPlan: %v", getErr)
				}
				if diff := cmp.Diff(plan, got); diff != "" {
					t.Errorf("Plan mismatch (-want +got):\n%s", diff)
				}
			}
			if got := testutil.ToFloat64(m.PlanCacheHits); got != tt.wantHits {
				t.Errorf("Expected %v cache hits, got %v", tt.wantHits, got)
			}
			if got := testutil.ToFloat64(m.PlanCacheMisses); got != tt.wantMisses {
				t.Errorf("Expected %v cache misses, got %v", tt.wantMisses, got)
			}
		})
	}
}

func logHeavyChestWeek(ctx context.Context, t *testing.T, svc *workout.Service, planID string) {
	t.Helper()
	for _, day := range []int{10, 12} {
		completed := time.Date(2026, time.March, day, 18, 0, 0, 0, time.UTC)
		_, err := svc.LogWorkout(ctx, userID, planID, training.WorkoutLog{
			CompletedAt: completed,
			Duration:    60,
			Exercises: []training.LoggedExercise{
				{ExerciseID: "barbell_bench_press", Name: "Barbell Bench Press", Sets: completedSets(12, 80, 8)},
			},
		})
		if err != nil {
			t.Fatalf("LogWorkout: %v", err)
		}
	}
}

func TestService_Analyze(t *testing.T) {
	svc, m := newTestService(t)
	ctx := t.Context()
	plan, _, err := svc.GeneratePlan(ctx, userID, hypertrophySelections(), false)
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	logHeavyChestWeek(ctx, t, svc, plan.ID)

	analysis, err := svc.Analyze(ctx, userID, plan.ID, 28)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	idx := slices.IndexFunc(analysis.MRVWarnings, func(w training.MRVWarning) bool { return w.MuscleGroup == "chest" })
	if idx < 0 {
		t.Fatalf("Expected chest MRV warning, got %+v", analysis.MRVWarnings)
	}
	if w := analysis.MRVWarnings[idx]; w.ActualSets != 24 || w.MRV != 22 {
		t.Errorf("Expected 24 sets against MRV 22, got %+v", w)
	}
	if got := testutil.ToFloat64(m.MRVWarnings.WithLabelValues("chest")); got != 1 {
		t.Errorf("Expected chest warning metric, got %v", got)
	}

	if _, err = svc.Analyze(ctx, otherUserID, plan.ID, 28); !errors.Is(err, workout.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for other user, got %v", err)
	}
}

func TestService_ReanalyzeAll(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := t.Context()
	plan, _, err := svc.GeneratePlan(ctx, userID, hypertrophySelections(), false)
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	// Plans without logs are skipped.
	other := hypertrophySelections()
	other.DaysPerWeek = 4
	if _, _, err = svc.GeneratePlan(ctx, userID, other, false); err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}

	if _, err = svc.LatestInsights(ctx, userID, plan.ID); !errors.Is(err, workout.ErrNotFound) {
		t.Fatalf("Expected no insights before analysis, got %v", err)
	}
	logHeavyChestWeek(ctx, t, svc, plan.ID)

	analyzed, err := svc.ReanalyzeAll(ctx)
	if err != nil {
		t.Fatalf("ReanalyzeAll: %v", err)
	}
	if analyzed != 1 {
		t.Errorf("Expected 1 analyzed plan, got %d", analyzed)
	}

	insights, err := svc.LatestInsights(ctx, userID, plan.ID)
	if err != nil {
		t.Fatalf("LatestInsights: %v", err)
	}
	if insights.PlanID != plan.ID || insights.WindowDays != workout.DefaultAnalysisWindowDays {
		t.Errorf("Unexpected insights %+v", insights)
	}
	if len(insights.MRVWarnings) == 0 {
		t.Error("Expected stored MRV warnings")
	}
}

func TestService_AddCustomExercise(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := t.Context()

	ex, err := svc.AddCustomExercise(ctx, training.Exercise{
		Name:           "Landmine Press",
		PrimaryMuscles: []string{"Shoulders"},
		Equipment:      []string{"barbell"},
		Patterns:       []string{"vertical_push"},
		Difficulty:     training.DifficultyIntermediate,
		Category:       "upper",
	})
	if err != nil {
		t.Fatalf("AddCustomExercise: %v", err)
	}
	if ex.ID != "landmine_press" || ex.PrimaryMuscles[0] != "shoulders" {
		t.Errorf("Expected normalised exercise, got %+v", ex)
	}

	catalog, err := svc.Catalog(ctx)
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if _, ok := catalog.ByID("landmine_press"); !ok {
		t.Error("Expected custom exercise in catalog")
	}
	if catalog.Len() != training.DefaultCatalog().Len()+1 {
		t.Errorf("Expected one extra exercise, got %d vs %d", catalog.Len(), training.DefaultCatalog().Len())
	}

	_, err = svc.AddCustomExercise(ctx, training.Exercise{Name: "Air Squat", PrimaryMuscles: []string{"quads"}})
	if !errors.Is(err, training.ErrInvalidExercise) {
		t.Errorf("Expected ErrInvalidExercise without equipment, got %v", err)
	}
}

type fakeExerciseGenerator struct {
	exercise training.Exercise
}

func (f fakeExerciseGenerator) Generate(_ context.Context, _ string) (training.Exercise, error) {
	return f.exercise, nil
}

func TestService_GenerateExercise(t *testing.T) {
	ctx := t.Context()
	unavailable, _ := newTestService(t)
	if _, err := unavailable.GenerateExercise(ctx, "Zercher Squat"); !errors.Is(err, workout.ErrGeneratorUnavailable) {
		t.Errorf("Expected ErrGeneratorUnavailable, got %v", err)
	}

	svc, _ := newTestService(t, workout.WithExerciseGenerator(fakeExerciseGenerator{exercise: training.Exercise{
		ID:             "zercher_squat",
		Name:           "Zercher Squat",
		PrimaryMuscles: []string{"quads"},
		Equipment:      []string{"barbell"},
		Patterns:       []string{"squat"},
		Difficulty:     training.DifficultyAdvanced,
		Category:       "lower",
	}}))
	ex, err := svc.GenerateExercise(ctx, "Zercher Squat")
	if err != nil {
		t.Fatalf("GenerateExercise: %v", err)
	}
	catalog, err := svc.Catalog(ctx)
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if _, ok := catalog.ByID(ex.ID); !ok {
		t.Errorf("Expected generated exercise %s in catalog", ex.ID)
	}
}
