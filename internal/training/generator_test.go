package training_test

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/coachplan/internal/training"
)

func fixedClock() time.Time {
	return time.Date(2026, time.March, 14, 9, 26, 53, 0, time.UTC)
}

func newGenerator() *training.Generator {
	return training.NewGenerator(training.DefaultCatalog(), training.DefaultLandmarks(),
		training.WithClock(fixedClock))
}

func hypertrophySelections() training.WizardSelections {
	return training.WizardSelections{
		Goal:            training.GoalHypertrophy,
		ExperienceLevel: training.LevelIntermediate,
		Equipment:       []string{"barbell", "dumbbells", "bench", "squat_rack"},
		TargetMuscles:   []string{"chest", "upper_back", "lats", "quads", "hamstrings"},
		Constraints:     []string{},
		DaysPerWeek:     4,
		SessionDuration: 60,
	}
}

// selectionGrid returns valid selections covering every goal, level, day count and a few equipment setups.
func selectionGrid() []training.WizardSelections {
	equipmentSets := [][]string{
		{"bodyweight"},
		{"dumbbells", "bench"},
		{"barbell", "dumbbells", "bench", "squat_rack", "cable", "machine", "pull_up_bar"},
	}
	targetSets := [][]string{
		{"chest", "upper_back", "lats", "quads", "hamstrings"},
		{"chest", "shoulders", "triceps", "biceps", "lats", "quads", "glutes", "calves", "core"},
		{"glutes"},
	}
	var grid []training.WizardSelections
	for _, goal := range []training.Goal{training.GoalStrength, training.GoalHypertrophy, training.GoalGeneral} {
		for _, level := range []training.ExperienceLevel{
			training.LevelBeginner, training.LevelIntermediate, training.LevelAdvanced,
		} {
			for days := training.MinDaysPerWeek; days <= training.MaxDaysPerWeek; days++ {
				for i, equipment := range equipmentSets {
					grid = append(grid, training.WizardSelections{
						Goal:            goal,
						ExperienceLevel: level,
						Equipment:       equipment,
						TargetMuscles:   targetSets[(days+i)%len(targetSets)],
						Constraints:     []string{"knee_pain"},
						DaysPerWeek:     days,
						SessionDuration: 30 + 15*i,
					})
				}
			}
		}
	}
	return grid
}

func selectionsName(sel training.WizardSelections) string {
	return fmt.Sprintf("%s/%s/%dd/%s", sel.Goal, sel.ExperienceLevel, sel.DaysPerWeek, strings.Join(sel.Equipment, "+"))
}

func TestGeneratePlan_Properties(t *testing.T) {
	g := newGenerator()
	for _, sel := range selectionGrid() {
		t.Run(selectionsName(sel), func(t *testing.T) {
			if result := training.ValidateWizardInputs(sel); !result.Valid {
				t.Fatalf("Expected valid selections, got errors %v", result.Errors)
			}
			plan := g.GeneratePlan(sel, training.GenerateOptions{AppendTimestamp: false})

			if got, want := len(plan.WorkoutDays), sel.DaysPerWeek; got != want {
				t.Errorf("Expected %d workout days, got %d", want, got)
			}
			if got, want := plan.SplitType, training.SplitForDays(sel.DaysPerWeek); got != want {
				t.Errorf("Expected split %s, got %s", want, got)
			}
			verifyDays(t, plan)
			verifyRepRanges(t, plan)
			verifyExcluded(t, plan, "knee_pain")
			if sel.ExperienceLevel == training.LevelBeginner {
				verifyWithinCap(t, plan)
			}
			if slices.Equal(sel.Equipment, []string{"bodyweight"}) {
				verifyBodyweightOnly(t, plan)
			}
		})
	}
}

func verifyDays(t *testing.T, plan training.Plan) {
	t.Helper()
	for i, day := range plan.WorkoutDays {
		if day.DayIndex != i {
			t.Errorf("Expected day index %d, got %d", i, day.DayIndex)
		}
		if len(day.Exercises) == 0 {
			t.Errorf("Expected exercises on day %s", day.Name)
		}
		if day.EstimatedDuration <= 0 {
			t.Errorf("Expected positive estimated duration on day %s, got %d", day.Name, day.EstimatedDuration)
		}
		seen := make(map[string]bool)
		for _, ex := range day.Exercises {
			if strings.TrimSpace(ex.Rationale) == "" {
				t.Errorf("Expected rationale for %s on day %s", ex.Exercise.ID, day.Name)
			}
			if seen[ex.Exercise.ID] {
				t.Errorf("Expected %s only once on day %s", ex.Exercise.ID, day.Name)
			}
			seen[ex.Exercise.ID] = true
			if ex.Sets < 1 {
				t.Errorf("Expected at least one set for %s, got %d", ex.Exercise.ID, ex.Sets)
			}
			if ex.RIR < 0 || ex.RIR > 10 {
				t.Errorf("Expected RIR within 0-10 for %s, got %d", ex.Exercise.ID, ex.RIR)
			}
		}
	}
}

func verifyExcluded(t *testing.T, plan training.Plan, constraint string) {
	t.Helper()
	for _, day := range plan.WorkoutDays {
		for _, ex := range day.Exercises {
			if slices.Contains(ex.Exercise.Contraindications, constraint) {
				t.Errorf("Expected %s to be excluded for %s", ex.Exercise.ID, constraint)
			}
		}
	}
}

func verifyRepRanges(t *testing.T, plan training.Plan) {
	t.Helper()
	want := map[training.Goal]*regexp.Regexp{
		training.GoalStrength:    regexp.MustCompile(`3-6`),
		training.GoalHypertrophy: regexp.MustCompile(`8-12`),
		training.GoalGeneral:     regexp.MustCompile(`10-15`),
	}[plan.Selections.Goal]
	for _, day := range plan.WorkoutDays {
		for _, ex := range day.Exercises {
			if !want.MatchString(ex.Reps) {
				t.Errorf("Expected reps matching %s for %s, got %q", want, ex.Exercise.ID, ex.Reps)
			}
		}
	}
}

func verifyWithinCap(t *testing.T, plan training.Plan) {
	t.Helper()
	if len(plan.WeeklyVolume) == 0 {
		t.Fatal("Expected weekly volume")
	}
	for _, v := range plan.WeeklyVolume {
		if !v.IsWithinCap {
			t.Errorf("Expected %s within cap, got %d sets against MRV %d", v.MuscleGroup, v.Sets, v.MRV)
		}
	}
}

func verifyBodyweightOnly(t *testing.T, plan training.Plan) {
	t.Helper()
	for _, day := range plan.WorkoutDays {
		for _, ex := range day.Exercises {
			if diff := cmp.Diff([]string{"bodyweight"}, ex.Exercise.Equipment); diff != "" {
				t.Errorf("Expected bodyweight-only equipment for %s (-want +got):\n%s", ex.Exercise.ID, diff)
			}
		}
	}
}

func TestGeneratePlan_HypertrophyUpperLower(t *testing.T) {
	g := newGenerator()
	sel := hypertrophySelections()

	plan := g.GeneratePlan(sel, training.GenerateOptions{AppendTimestamp: false})

	if plan.SplitType != training.SplitUpperLower {
		t.Errorf("Expected split %s, got %s", training.SplitUpperLower, plan.SplitType)
	}
	if len(plan.WorkoutDays) != 4 {
		t.Fatalf("Expected 4 workout days, got %d", len(plan.WorkoutDays))
	}
	wantNames := []string{"Upper A", "Lower A", "Upper B", "Lower B"}
	var gotNames []string
	for _, day := range plan.WorkoutDays {
		gotNames = append(gotNames, day.Name)
	}
	if diff := cmp.Diff(wantNames, gotNames); diff != "" {
		t.Errorf("Day names mismatch (-want +got):\n%s", diff)
	}
	verifyRepRanges(t, plan)
	if plan.Phase.Phase != training.PhaseMuscularDevelopment {
		t.Errorf("Expected phase %s, got %s", training.PhaseMuscularDevelopment, plan.Phase.Phase)
	}

	again := g.GeneratePlan(sel, training.GenerateOptions{AppendTimestamp: false})
	if plan.ID != again.ID {
		t.Errorf("Expected stable plan id, got %s and %s", plan.ID, again.ID)
	}
	if diff := cmp.Diff(plan, again); diff != "" {
		t.Errorf("Expected identical plans (-first +second):\n%s", diff)
	}
}

func TestGeneratePlan_LowerDaysTrainLegs(t *testing.T) {
	plan := newGenerator().GeneratePlan(hypertrophySelections(), training.GenerateOptions{AppendTimestamp: false})
	for _, day := range plan.WorkoutDays {
		if !strings.HasPrefix(day.Name, "Lower") {
			continue
		}
		for _, ex := range day.Exercises {
			if !slices.ContainsFunc(ex.Exercise.PrimaryMuscles, func(m string) bool {
				return m == "quads" || m == "hamstrings" || m == "glutes"
			}) && !slices.Contains(ex.Exercise.SecondaryMuscles, "hamstrings") {
				t.Errorf("Expected leg exercise on %s, got %s", day.Name, ex.Exercise.ID)
			}
		}
	}
}

func TestGeneratePlan_PlanID(t *testing.T) {
	g := newGenerator()
	sel := hypertrophySelections()

	stable := g.GeneratePlan(sel, training.GenerateOptions{AppendTimestamp: false})
	if !regexp.MustCompile(`^plan_[a-f0-9]{64}$`).MatchString(stable.ID) {
		t.Errorf("Expected stable id format, got %s", stable.ID)
	}

	stamped := g.GeneratePlan(sel, training.GenerateOptions{AppendTimestamp: true})
	if !regexp.MustCompile(`^plan_[a-f0-9]{64}_[0-9]{12}$`).MatchString(stamped.ID) {
		t.Errorf("Expected timestamped id format, got %s", stamped.ID)
	}
	if want := stable.ID + "_260314092653"; stamped.ID != want {
		t.Errorf("Expected id %s, got %s", want, stamped.ID)
	}
	if !training.IsPlanID(stable.ID) || !training.IsPlanID(stamped.ID) {
		t.Error("Expected generated ids to be recognised as plan ids")
	}
}

func TestPlanID(t *testing.T) {
	base := hypertrophySelections()

	reordered := hypertrophySelections()
	reordered.Equipment = []string{"squat_rack", "Bench", "dumbbells", "barbell", "barbell"}
	reordered.TargetMuscles = []string{"hamstrings", "quads", "lats", "upper_back", "chest"}

	personalised := hypertrophySelections()
	personalised.Name = "Alex"
	personalised.Note = "Summer block"
	personalised.IsTrainer = true
	personalised.TrainerNotes = "Watch the knees"

	changed := hypertrophySelections()
	changed.DaysPerWeek = 5

	if training.PlanID(base) != training.PlanID(reordered) {
		t.Error("Expected ordering, casing and duplicates not to change the id")
	}
	if training.PlanID(base) != training.PlanID(personalised) {
		t.Error("Expected personalisation fields not to change the id")
	}
	if training.PlanID(base) == training.PlanID(changed) {
		t.Error("Expected different days per week to change the id")
	}
	if training.IsPlanID("plan_123") {
		t.Error("Expected malformed id to be rejected")
	}
}

func TestGeneratePlan_SplitMapping(t *testing.T) {
	tests := []struct {
		days int
		want training.SplitType
	}{
		{days: 2, want: training.SplitFullBody},
		{days: 3, want: training.SplitFullBody},
		{days: 4, want: training.SplitUpperLower},
		{days: 5, want: training.SplitPushPullLegs},
		{days: 6, want: training.SplitPushPullLegs},
	}
	g := newGenerator()
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d days", tt.days), func(t *testing.T) {
			sel := hypertrophySelections()
			sel.DaysPerWeek = tt.days
			plan := g.GeneratePlan(sel, training.GenerateOptions{AppendTimestamp: false})
			if plan.SplitType != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, plan.SplitType)
			}
			if len(plan.WorkoutDays) != tt.days {
				t.Errorf("Expected %d days, got %d", tt.days, len(plan.WorkoutDays))
			}
		})
	}
}

func TestGeneratePlan_BodyweightOnlyExcludesMixedEquipment(t *testing.T) {
	sel := training.WizardSelections{
		Goal:            training.GoalGeneral,
		ExperienceLevel: training.LevelAdvanced,
		Equipment:       []string{"bodyweight"},
		TargetMuscles:   []string{"chest", "triceps", "lats"},
		Constraints:     nil,
		DaysPerWeek:     3,
		SessionDuration: 90,
	}
	plan := newGenerator().GeneratePlan(sel, training.GenerateOptions{AppendTimestamp: false})
	verifyBodyweightOnly(t, plan)
	for _, day := range plan.WorkoutDays {
		for _, ex := range day.Exercises {
			if ex.Exercise.ID == "dips" {
				t.Errorf("Expected dips to be excluded, they also need a bar")
			}
		}
	}
}

func TestGeneratePlan_BeginnerCapsVolume(t *testing.T) {
	sel := training.WizardSelections{
		Goal:            training.GoalHypertrophy,
		ExperienceLevel: training.LevelBeginner,
		Equipment:       []string{"barbell", "dumbbells", "bench", "cable", "machine"},
		TargetMuscles:   []string{"chest"},
		Constraints:     nil,
		DaysPerWeek:     6,
		SessionDuration: 120,
	}
	plan := newGenerator().GeneratePlan(sel, training.GenerateOptions{AppendTimestamp: false})
	verifyWithinCap(t, plan)
	for _, v := range plan.WeeklyVolume {
		if v.MuscleGroup == "chest" && v.MRV != 13 {
			t.Errorf("Expected beginner chest MRV 13, got %d", v.MRV)
		}
	}
	verifyDays(t, plan)
}

func TestGeneratePlan_FallsBackWhenNoExerciseMatches(t *testing.T) {
	catalog, err := training.NewCatalog([]training.Exercise{
		{
			ID:             "goblet_squat",
			Name:           "Goblet Squat",
			PrimaryMuscles: []string{"quads"},
			Equipment:      []string{"dumbbells"},
			Patterns:       []string{"squat"},
			Difficulty:     training.DifficultyBeginner,
			Category:       "strength",
		},
		{
			ID:             "plank",
			Name:           "Plank",
			PrimaryMuscles: []string{"core"},
			Equipment:      []string{"bodyweight"},
			Patterns:       []string{"anti_extension"},
			Difficulty:     training.DifficultyAllLevels,
			Category:       "stability",
		},
	})
	if err != nil {
		t.Fatalf("Expected valid catalog, got %v", err)
	}
	g := training.NewGenerator(catalog, training.DefaultLandmarks(), training.WithClock(fixedClock))
	sel := training.WizardSelections{
		Goal:            training.GoalGeneral,
		ExperienceLevel: training.LevelIntermediate,
		Equipment:       []string{"bodyweight"},
		TargetMuscles:   []string{"chest", "quads"},
		Constraints:     nil,
		DaysPerWeek:     5,
		SessionDuration: 45,
	}

	plan := g.GeneratePlan(sel, training.GenerateOptions{AppendTimestamp: false})

	if len(plan.WorkoutDays) != 5 {
		t.Fatalf("Expected 5 days, got %d", len(plan.WorkoutDays))
	}
	for _, day := range plan.WorkoutDays {
		if len(day.Exercises) != 1 || day.Exercises[0].Exercise.ID != "plank" {
			t.Errorf("Expected plank as the only eligible exercise on %s, got %+v", day.Name, day.Exercises)
		}
	}
}

func TestGeneratePlan_Progression(t *testing.T) {
	plan := newGenerator().GeneratePlan(hypertrophySelections(), training.GenerateOptions{AppendTimestamp: false})
	want := []training.RIRWeek{
		{Week: 1, TargetRIR: 4, IsDeload: false},
		{Week: 2, TargetRIR: 3, IsDeload: false},
		{Week: 3, TargetRIR: 2, IsDeload: false},
		{Week: 4, TargetRIR: 6, IsDeload: true},
	}
	if diff := cmp.Diff(want, plan.RIRProgression); diff != "" {
		t.Errorf("RIR progression mismatch (-want +got):\n%s", diff)
	}
}

func TestGeneratePlan_SessionDurationLimitsExercises(t *testing.T) {
	g := newGenerator()
	short := hypertrophySelections()
	short.SessionDuration = 30
	long := hypertrophySelections()
	long.SessionDuration = 120

	shortPlan := g.GeneratePlan(short, training.GenerateOptions{AppendTimestamp: false})
	longPlan := g.GeneratePlan(long, training.GenerateOptions{AppendTimestamp: false})

	for i := range shortPlan.WorkoutDays {
		s, l := len(shortPlan.WorkoutDays[i].Exercises), len(longPlan.WorkoutDays[i].Exercises)
		if s > l {
			t.Errorf("Expected day %d to have no more exercises in a short session, got %d > %d", i, s, l)
		}
		if l > 8 {
			t.Errorf("Expected at most 8 exercises per day, got %d", l)
		}
	}
}
