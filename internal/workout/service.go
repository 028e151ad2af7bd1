// Package workout persists generated plans and workout logs and runs the training engine on top of them.
package workout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/coocood/freecache"
	"github.com/google/uuid"
	"github.com/myrjola/coachplan/internal/errors"
	"github.com/myrjola/coachplan/internal/metrics"
	"github.com/myrjola/coachplan/internal/training"
	"golang.org/x/sync/errgroup"
)

// DefaultAnalysisWindowDays is the trailing window used by background re-analysis.
const DefaultAnalysisWindowDays = 28

// Service handles the business logic for plan management.
type Service struct {
	store              Store
	logger             *slog.Logger
	metrics            *metrics.Manager
	cache              *planCache
	landmarks          training.Landmarks
	exerciseGenerator  ExerciseGenerator
	analysisWindowDays int
	now                func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used for plan timestamps and analysis windows.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithExerciseGenerator enables GenerateExercise.
func WithExerciseGenerator(g ExerciseGenerator) Option {
	return func(s *Service) { s.exerciseGenerator = g }
}

// WithPlanCacheBytes sizes the in-process plan cache.
func WithPlanCacheBytes(size int) Option {
	return func(s *Service) { s.cache = newPlanCache(size) }
}

// WithAnalysisWindowDays sets the window used by ReanalyzeAll.
func WithAnalysisWindowDays(days int) Option {
	return func(s *Service) { s.analysisWindowDays = days }
}

// NewService creates a new workout service.
func NewService(store Store, logger *slog.Logger, m *metrics.Manager, opts ...Option) *Service {
	s := &Service{
		store:              store,
		logger:             logger,
		metrics:            m,
		cache:              nil,
		landmarks:          training.DefaultLandmarks(),
		exerciseGenerator:  nil,
		analysisWindowDays: DefaultAnalysisWindowDays,
		now:                time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = newPlanCache(DefaultPlanCacheBytes)
	}
	return s
}

// Catalog returns the default catalog extended with the custom exercises from the store.
func (s *Service) Catalog(ctx context.Context) (*training.Catalog, error) {
	custom, err := s.store.ListCustomExercises(ctx)
	if err != nil {
		return nil, fmt.Errorf("list custom exercises: %w", err)
	}
	catalog, err := training.DefaultCatalog().With(custom...)
	if err != nil {
		return nil, fmt.Errorf("extend catalog: %w", err)
	}
	return catalog, nil
}

// ValidateSelections runs both the blocking input validation and the advisory balance checks.
func (s *Service) ValidateSelections(sel training.WizardSelections) (training.ValidationResult, []training.ValidationWarning) {
	return training.ValidateWizardInputs(sel), training.ValidatePlanBalance(sel)
}

// GeneratePlan validates the selections, generates a plan and stores it for the user.
//
// Invalid selections return a *ValidationError. Balance warnings never block generation.
func (s *Service) GeneratePlan(
	ctx context.Context,
	userID string,
	sel training.WizardSelections,
	appendTimestamp bool,
) (training.Plan, []training.ValidationWarning, error) {
	result, warnings := s.ValidateSelections(sel)
	if !result.Valid {
		return training.Plan{}, nil, &ValidationError{Messages: result.Errors}
	}

	catalog, err := s.Catalog(ctx)
	if err != nil {
		return training.Plan{}, nil, err
	}

	start := time.Now()
	generator := training.NewGenerator(catalog, s.landmarks, training.WithClock(s.now))
	plan := generator.GeneratePlan(sel, training.GenerateOptions{AppendTimestamp: appendTimestamp})
	s.metrics.PlanGenerationSeconds.Observe(time.Since(start).Seconds())
	s.metrics.PlansGenerated.WithLabelValues(string(plan.SplitType)).Inc()

	if err = s.store.SavePlan(ctx, userID, plan); err != nil {
		return training.Plan{}, nil, fmt.Errorf("save plan: %w", err)
	}
	s.cachePlan(ctx, userID, plan)

	s.logger.LogAttrs(ctx, slog.LevelInfo, "generated plan",
		slog.String("plan_id", plan.ID),
		slog.String("split", string(plan.SplitType)),
		slog.Int("warnings", len(warnings)))
	return plan, warnings, nil
}

func (s *Service) cachePlan(ctx context.Context, userID string, plan training.Plan) {
	if err := s.cache.set(userID, plan); err != nil {
		level := slog.LevelWarn
		if errors.Is(err, freecache.ErrLargeEntry) {
			level = slog.LevelDebug
		}
		s.logger.LogAttrs(ctx, level, "plan not cached", slog.String("plan_id", plan.ID), errors.SlogError(err))
	}
}

// GetPlan returns the user's plan or ErrNotFound.
func (s *Service) GetPlan(ctx context.Context, userID, planID string) (training.Plan, error) {
	if plan, ok := s.cache.get(userID, planID); ok {
		s.metrics.PlanCacheHits.Inc()
		return plan, nil
	}
	s.metrics.PlanCacheMisses.Inc()

	plan, err := s.store.GetPlan(ctx, userID, planID)
	if err != nil {
		return training.Plan{}, fmt.Errorf("get plan %s: %w", planID, err)
	}
	s.cachePlan(ctx, userID, plan)
	return plan, nil
}

// ListPlans returns the user's plans, newest first.
func (s *Service) ListPlans(ctx context.Context, userID string) ([]training.Plan, error) {
	plans, err := s.store.ListPlans(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

// DeletePlan removes the plan with its logs and insights.
func (s *Service) DeletePlan(ctx context.Context, userID, planID string) error {
	s.cache.del(userID, planID)
	if err := s.store.DeletePlan(ctx, userID, planID); err != nil {
		return fmt.Errorf("delete plan %s: %w", planID, err)
	}
	return nil
}

// LogWorkout stores a completed workout against an existing plan.
//
// A missing id is generated, a missing completion time defaults to now and the total volume is recomputed from the
// completed sets.
func (s *Service) LogWorkout(
	ctx context.Context,
	userID, planID string,
	log training.WorkoutLog,
) (training.WorkoutLog, error) {
	plan, err := s.GetPlan(ctx, userID, planID)
	if err != nil {
		return training.WorkoutLog{}, err
	}

	log.PlanID = plan.ID
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CompletedAt.IsZero() {
		log.CompletedAt = s.now()
	}
	if log.StartedAt.IsZero() {
		log.StartedAt = log.CompletedAt.Add(-time.Duration(log.Duration) * time.Minute)
	}
	if log.DayName == "" && log.DayIndex >= 0 && log.DayIndex < len(plan.WorkoutDays) {
		log.DayName = plan.WorkoutDays[log.DayIndex].Name
	}
	log.TotalVolume = log.ComputeTotalVolume()

	if err = s.store.SaveLog(ctx, userID, log); err != nil {
		return training.WorkoutLog{}, fmt.Errorf("save workout log: %w", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "logged workout",
		slog.String("plan_id", plan.ID), slog.String("log_id", log.ID), slog.Float64("total_volume", log.TotalVolume))
	return log, nil
}

// ListLogs returns the logs of an existing plan.
func (s *Service) ListLogs(ctx context.Context, userID, planID string) ([]training.WorkoutLog, error) {
	if _, err := s.GetPlan(ctx, userID, planID); err != nil {
		return nil, err
	}
	logs, err := s.store.ListLogs(ctx, userID, planID)
	if err != nil {
		return nil, fmt.Errorf("list workout logs: %w", err)
	}
	return logs, nil
}

// Analyze compares the logged workouts of a plan to its landmarks over the trailing windowDays.
func (s *Service) Analyze(ctx context.Context, userID, planID string, windowDays int) (training.Analysis, error) {
	var (
		plan    training.Plan
		logs    []training.WorkoutLog
		catalog *training.Catalog
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		plan, err = s.GetPlan(gctx, userID, planID)
		return err
	})
	g.Go(func() error {
		var err error
		if logs, err = s.store.ListLogs(gctx, userID, planID); err != nil {
			return fmt.Errorf("list workout logs: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		catalog, err = s.Catalog(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return training.Analysis{}, err //nolint:wrapcheck // already wrapped by the goroutines.
	}

	analyzer := training.NewAnalyzer(catalog, s.landmarks, training.WithAnalyzerClock(s.now))
	analysis := analyzer.Analyze(logs, plan, windowDays)
	for _, w := range analysis.MRVWarnings {
		s.metrics.MRVWarnings.WithLabelValues(w.MuscleGroup).Inc()
	}
	if analysis.SplitSuggestion != nil {
		s.metrics.SplitSuggestions.Inc()
	}
	return analysis, nil
}

// ReanalyzeAll analyzes every plan with logs and stores the result as its latest insights. It keeps going past
// failing plans and returns the number of stored snapshots together with the joined errors.
func (s *Service) ReanalyzeAll(ctx context.Context) (int, error) {
	refs, err := s.store.PlansWithLogs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list plans with logs: %w", err)
	}

	var (
		errs     []error
		analyzed int
	)
	for _, ref := range refs {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		analysis, analyzeErr := s.Analyze(ctx, ref.UserID, ref.PlanID, s.analysisWindowDays)
		if analyzeErr != nil {
			errs = append(errs, errors.Wrap(analyzeErr, "analyze plan", slog.String("plan_id", ref.PlanID)))
			continue
		}
		if saveErr := s.store.SaveInsights(ctx, ref.UserID, analysis); saveErr != nil {
			errs = append(errs, errors.Wrap(saveErr, "save insights", slog.String("plan_id", ref.PlanID)))
			continue
		}
		analyzed++
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "reanalyzed plans",
		slog.Int("plans", len(refs)), slog.Int("analyzed", analyzed))
	return analyzed, errors.Join(errs...)
}

// LatestInsights returns the last stored analysis of a plan or ErrNotFound.
func (s *Service) LatestInsights(ctx context.Context, userID, planID string) (training.Analysis, error) {
	analysis, err := s.store.GetInsights(ctx, userID, planID)
	if err != nil {
		return training.Analysis{}, fmt.Errorf("get insights %s: %w", planID, err)
	}
	return analysis, nil
}

// AddCustomExercise validates the exercise with the catalog rules and stores it. An exercise with the id of a built-in
// one overrides it.
func (s *Service) AddCustomExercise(ctx context.Context, ex training.Exercise) (training.Exercise, error) {
	if ex.ID == "" {
		ex.ID = ExerciseID(ex.Name)
	} else {
		ex.ID = ExerciseID(ex.ID)
	}
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return training.Exercise{}, err
	}
	extended, err := catalog.With(ex)
	if err != nil {
		return training.Exercise{}, fmt.Errorf("validate exercise: %w", err)
	}
	normalized, _ := extended.ByID(ex.ID)
	if err = s.store.SaveCustomExercise(ctx, normalized); err != nil {
		return training.Exercise{}, fmt.Errorf("save custom exercise: %w", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "saved custom exercise", slog.String("exercise_id", normalized.ID))
	return normalized, nil
}

// GenerateExercise asks the exercise generator to describe the named exercise and stores the result.
func (s *Service) GenerateExercise(ctx context.Context, name string) (training.Exercise, error) {
	if s.exerciseGenerator == nil {
		return training.Exercise{}, ErrGeneratorUnavailable
	}
	ex, err := s.exerciseGenerator.Generate(ctx, name)
	if err != nil {
		return training.Exercise{}, fmt.Errorf("generate exercise: %w", err)
	}
	return s.AddCustomExercise(ctx, ex)
}
