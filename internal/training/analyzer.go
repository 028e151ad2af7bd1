package training

import (
	"cmp"
	"fmt"
	"maps"
	"math"
	"slices"
	"time"
)

// Analyzer derives volume warnings and split suggestions from workout history.
type Analyzer struct {
	catalog   *Catalog
	landmarks Landmarks
	now       func() time.Time
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithAnalyzerClock sets the clock that anchors the trailing window.
func WithAnalyzerClock(now func() time.Time) AnalyzerOption {
	return func(a *Analyzer) {
		a.now = now
	}
}

// NewAnalyzer creates an Analyzer. The catalog resolves logged exercises that are not part of the plan.
func NewAnalyzer(catalog *Catalog, landmarks Landmarks, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		catalog:   catalog,
		landmarks: landmarks.Clone(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// MRVWarning flags a muscle group whose volume over seven consecutive days exceeded its maximum recoverable volume.
// WeekStart is the first of those days.
type MRVWarning struct {
	MuscleGroup string    `json:"muscle_group"`
	MRV         int       `json:"mrv"`
	ActualSets  int       `json:"actual_sets"`
	WeekStart   time.Time `json:"week_start"`
}

// SplitSuggestion recommends a split matching the frequency the user actually trains at.
type SplitSuggestion struct {
	RecommendedSplit       SplitType `json:"recommended_split"`
	RecommendedDaysPerWeek int       `json:"recommended_days_per_week"`
	ActualDaysPerWeek      float64   `json:"actual_days_per_week"`
	PlannedDaysPerWeek     int       `json:"planned_days_per_week"`
	Reason                 string    `json:"reason"`
}

// MuscleWeek is the completed set count of a muscle group in one calendar week.
type MuscleWeek struct {
	WeekStart   time.Time `json:"week_start"`
	MuscleGroup string    `json:"muscle_group"`
	Sets        int       `json:"sets"`
}

// Analysis combines everything the analyzer derives from a plan and its logs.
type Analysis struct {
	PlanID          string           `json:"plan_id"`
	WindowDays      int              `json:"window_days"`
	AnalyzedAt      time.Time        `json:"analyzed_at"`
	MRVWarnings     []MRVWarning     `json:"mrv_warnings"`
	SplitSuggestion *SplitSuggestion `json:"split_suggestion"`
	WeeklySets      []MuscleWeek     `json:"weekly_sets"`
}

// Analyze runs every analysis over the logs within the trailing window.
func (a *Analyzer) Analyze(logs []WorkoutLog, plan Plan, windowDays int) Analysis {
	return Analysis{
		PlanID:          plan.ID,
		WindowDays:      windowDays,
		AnalyzedAt:      a.now(),
		MRVWarnings:     a.DetectMRVWarnings(logs, plan, windowDays),
		SplitSuggestion: a.SuggestSplitAdjustment(logs, plan, windowDays),
		WeeklySets:      a.WeeklySets(logs, plan, windowDays),
	}
}

// DetectMRVWarnings returns a warning for every plan muscle whose busiest rolling seven-day volume within the window
// exceeded its experience-scaled MRV. WeekStart is the first day of that seven-day span. Warnings are sorted by muscle
// group.
func (a *Analyzer) DetectMRVWarnings(logs []WorkoutLog, plan Plan, windowDays int) []MRVWarning {
	perDay := make(map[string]map[time.Time]int)
	a.countSets(logs, plan, windowDays, func(at time.Time, muscle string, sets int) {
		if perDay[muscle] == nil {
			perDay[muscle] = make(map[time.Time]int)
		}
		perDay[muscle][civilDay(at)] += sets
	})
	warnings := []MRVWarning{}
	for _, muscle := range plan.Muscles() {
		days, ok := perDay[muscle]
		if !ok {
			continue
		}
		peak, peakStart := rollingPeak(days)
		mrv := a.landmarks.For(muscle, plan.Selections.ExperienceLevel).MRV
		if peak > mrv {
			warnings = append(warnings, MRVWarning{
				MuscleGroup: muscle,
				MRV:         mrv,
				ActualSets:  peak,
				WeekStart:   peakStart,
			})
		}
	}
	return warnings
}

// rollingPeak returns the largest set count of any seven consecutive days and the first of those days. The earliest
// span wins ties.
func rollingPeak(days map[time.Time]int) (int, time.Time) {
	sorted := slices.SortedFunc(maps.Keys(days), time.Time.Compare)
	var (
		peak      int
		peakStart time.Time
		sum       int
		first     int
	)
	for _, day := range sorted {
		sum += days[day]
		spanStart := day.AddDate(0, 0, -6) //nolint:mnd // seven days including day.
		for sorted[first].Before(spanStart) {
			sum -= days[sorted[first]]
			first++
		}
		if sum > peak {
			peak, peakStart = sum, spanStart
		}
	}
	return peak, peakStart
}

// WeeklySets counts completed sets per plan muscle and calendar week within the window.
//
// Logged exercises are resolved through the plan first and the catalog second. Sets count towards the exercise's
// primary muscles. Exercises that resolve to neither are ignored.
func (a *Analyzer) WeeklySets(logs []WorkoutLog, plan Plan, windowDays int) []MuscleWeek {
	type key struct {
		week   time.Time
		muscle string
	}
	counts := make(map[key]int)
	a.countSets(logs, plan, windowDays, func(at time.Time, muscle string, sets int) {
		counts[key{week: weekStart(at), muscle: muscle}] += sets
	})
	out := make([]MuscleWeek, 0, len(counts))
	for k, sets := range counts {
		out = append(out, MuscleWeek{WeekStart: k.week, MuscleGroup: k.muscle, Sets: sets})
	}
	slices.SortFunc(out, func(x, y MuscleWeek) int {
		if c := x.WeekStart.Compare(y.WeekStart); c != 0 {
			return c
		}
		return cmp.Compare(x.MuscleGroup, y.MuscleGroup)
	})
	return out
}

// countSets calls add with the completed sets of every plan muscle hit by a log within the window.
func (a *Analyzer) countSets(
	logs []WorkoutLog,
	plan Plan,
	windowDays int,
	add func(at time.Time, muscle string, sets int),
) {
	planMuscles := plan.Muscles()
	for _, log := range a.withinWindow(logs, windowDays) {
		at := log.performedAt()
		for _, logged := range log.Exercises {
			ex, ok := a.resolveExercise(plan, logged.ExerciseID)
			if !ok {
				continue
			}
			completed := 0
			for _, set := range logged.Sets {
				if set.Completed {
					completed++
				}
			}
			if completed == 0 {
				continue
			}
			for _, m := range ex.PrimaryMuscles {
				if slices.Contains(planMuscles, m) {
					add(at, m, completed)
				}
			}
		}
	}
}

// SuggestSplitAdjustment suggests a lower-frequency split when every logged calendar week that lies completely within
// the window has fewer distinct training days than planned. At least two such weeks are needed. It returns nil
// otherwise.
func (a *Analyzer) SuggestSplitAdjustment(logs []WorkoutLog, plan Plan, windowDays int) *SplitSuggestion {
	planned := plan.Selections.DaysPerWeek
	firstDay, lastDay := a.completeDays(windowDays)
	days := make(map[time.Time]map[time.Time]bool)
	for _, log := range a.withinWindow(logs, windowDays) {
		at := log.performedAt()
		week := weekStart(at)
		if week.Before(firstDay) || week.AddDate(0, 0, 6).After(lastDay) { //nolint:mnd // Sunday closes the week.
			continue
		}
		if days[week] == nil {
			days[week] = make(map[time.Time]bool)
		}
		days[week][civilDay(at)] = true
	}
	if len(days) < 2 { //nolint:mnd // a single week is not a pattern.
		return nil
	}
	total := 0
	for _, d := range days {
		if len(d) >= planned {
			return nil
		}
		total += len(d)
	}
	actual := float64(total) / float64(len(days))
	recommended := min(max(int(math.Round(actual)), MinDaysPerWeek), MaxDaysPerWeek)
	if recommended >= planned {
		return nil
	}
	return &SplitSuggestion{
		RecommendedSplit:       SplitForDays(recommended),
		RecommendedDaysPerWeek: recommended,
		ActualDaysPerWeek:      actual,
		PlannedDaysPerWeek:     planned,
		Reason: fmt.Sprintf("You trained %.1f days per week on average over %d weeks, below the %d planned days.",
			actual, len(days), planned),
	}
}

// completeDays returns the first and last calendar day fully covered by the window. Today counts as covered. A window
// that starts mid-day begins the next day, and a non-positive window has no first day.
func (a *Analyzer) completeDays(windowDays int) (time.Time, time.Time) {
	now := a.now()
	last := civilDay(now)
	if windowDays <= 0 {
		return time.Time{}, last
	}
	from := now.AddDate(0, 0, -windowDays)
	first := civilDay(from)
	if !from.Equal(time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())) {
		first = first.AddDate(0, 0, 1)
	}
	return first, last
}

// withinWindow keeps the logs performed within the trailing windowDays. A non-positive window keeps every log.
func (a *Analyzer) withinWindow(logs []WorkoutLog, windowDays int) []WorkoutLog {
	if windowDays <= 0 {
		return logs
	}
	now := a.now()
	from := now.AddDate(0, 0, -windowDays)
	var out []WorkoutLog
	for _, log := range logs {
		at := log.performedAt()
		if at.Before(from) || at.After(now) {
			continue
		}
		out = append(out, log)
	}
	return out
}

func (a *Analyzer) resolveExercise(plan Plan, exerciseID string) (Exercise, bool) {
	if p, ok := plan.prescription(exerciseID); ok {
		return p.Exercise, true
	}
	if a.catalog == nil {
		return Exercise{}, false
	}
	return a.catalog.ByID(exerciseID)
}

// civilDay returns the calendar date of t in its own offset as UTC midnight. Two instants on the same local date
// map to equal values, so the result is safe as a map key whatever *time.Location the instant carries.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// weekStart returns the civil Monday starting the ISO week of t, as returned by civilDay.
func weekStart(t time.Time) time.Time {
	daysSinceMonday := (int(t.Weekday()) + 6) % 7 //nolint:mnd // Sunday is 0, Monday starts the week.
	return civilDay(t).AddDate(0, 0, -daysSinceMonday)
}
