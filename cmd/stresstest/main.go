package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/myrjola/coachplan/internal/e2etest"
	"github.com/myrjola/coachplan/internal/logging"
	"github.com/myrjola/coachplan/internal/testhelpers"
	"github.com/myrjola/coachplan/internal/training"
	"golang.org/x/sync/errgroup"
)

const (
	userSetupTimeout        = 30 * time.Second
	scenarioTimeout         = 30 * time.Second
	historyTimeout          = 5 * time.Minute
	maxConcurrentSetups     = 10
	maxConcurrentOperations = 20
	numUsers                = 10
	baseWeight              = 40.0
	weightRange             = 20
	baseReps                = 8
	repsRange               = 5
	successRateThreshold    = 95.0
	expectedArgsCount       = 2
	percentageMultiplier    = 100
	workoutHistoryWeeks     = 12
	sessionMinutes          = 60
)

type planResponse struct {
	Plan training.Plan `json:"plan"`
}

// AuthenticatedUser holds a client with a valid session and the plan it trains on.
type AuthenticatedUser struct {
	Client *e2etest.Client
	Name   string
	Plan   training.Plan
}

func selectionsFor(userIndex int) training.WizardSelections {
	return training.WizardSelections{
		Goal:            training.GoalHypertrophy,
		ExperienceLevel: training.LevelIntermediate,
		Equipment:       []string{"barbell", "bench", "dumbbells", "cable", "machine"},
		TargetMuscles:   []string{"chest", "upper_back", "lats", "quads", "hamstrings"},
		DaysPerWeek:     2 + userIndex%5, //nolint:mnd // spread users over every split.
		SessionDuration: sessionMinutes,
	}
}

// SetupUser logs a new user in and creates their plan.
func SetupUser(ctx context.Context, url string, userIndex int, logger *slog.Logger) (*AuthenticatedUser, error) {
	client, err := e2etest.NewClient(url)
	if err != nil {
		return nil, fmt.Errorf("creating client for user %d: %w", userIndex, err)
	}
	name := fmt.Sprintf("stress_%d_%d", time.Now().Unix(), userIndex)
	if err = client.Login(ctx, name); err != nil {
		return nil, fmt.Errorf("logging in user %d: %w", userIndex, err)
	}
	var created planResponse
	if err = client.DoJSON(ctx, http.MethodPost, "/api/plans", selectionsFor(userIndex), &created); err != nil {
		return nil, fmt.Errorf("creating plan for user %d: %w", userIndex, err)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "User logged in with plan",
		slog.String("name", name), slog.String("plan_id", created.Plan.ID))

	return &AuthenticatedUser{Client: client, Name: name, Plan: created.Plan}, nil
}

// SetupUsers logs in the given number of users concurrently.
func SetupUsers(ctx context.Context, url string, logger *slog.Logger) ([]*AuthenticatedUser, error) {
	logger.LogAttrs(ctx, slog.LevelInfo, "Starting user setup", slog.Int("num_users", numUsers))

	var (
		users   = make([]*AuthenticatedUser, 0, numUsers)
		usersMu sync.Mutex
		g       errgroup.Group
	)
	g.SetLimit(maxConcurrentSetups)
	for i := range numUsers {
		g.Go(func() error {
			userCtx, cancel := context.WithTimeout(ctx, userSetupTimeout)
			defer cancel()
			user, err := SetupUser(userCtx, url, i, logger)
			if err != nil {
				return err
			}
			usersMu.Lock()
			users = append(users, user)
			usersMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return users, fmt.Errorf("user setup: %w", err)
	}
	return users, nil
}

// workoutLog completes every prescribed set of the plan day with some variation in load.
func workoutLog(plan training.Plan, dayIndex int, at time.Time) training.WorkoutLog {
	day := plan.WorkoutDays[dayIndex%len(plan.WorkoutDays)]
	log := training.WorkoutLog{
		PlanID:      plan.ID,
		DayIndex:    day.DayIndex,
		DayName:     day.Name,
		StartedAt:   at.Add(-sessionMinutes * time.Minute),
		CompletedAt: at,
		Duration:    sessionMinutes,
	}
	for _, p := range day.Exercises {
		ex := training.LoggedExercise{ExerciseID: p.Exercise.ID, Name: p.Exercise.Name}
		for range p.Sets {
			ex.Sets = append(ex.Sets, training.LoggedSet{
				Weight:     baseWeight + float64(at.UnixNano()%weightRange),
				WeightUnit: "kg",
				Reps:       baseReps + int(at.UnixNano()%repsRange),
				RIR:        new(p.RIR),
				Completed:  true,
			})
		}
		log.Exercises = append(log.Exercises, ex)
	}
	return log
}

// GenerateWorkoutHistory logs workoutHistoryWeeks weeks of sessions following the plan.
func GenerateWorkoutHistory(ctx context.Context, user *AuthenticatedUser) error {
	logsPath := "/api/plans/" + user.Plan.ID + "/logs"
	start := time.Now().AddDate(0, 0, -7*workoutHistoryWeeks)
	for week := range workoutHistoryWeeks {
		for day := range user.Plan.Selections.DaysPerWeek {
			at := start.AddDate(0, 0, 7*week+day)
			if err := user.Client.DoJSON(ctx, http.MethodPost, logsPath, workoutLog(user.Plan, day, at), nil); err != nil {
				return fmt.Errorf("log week %d day %d: %w", week, day, err)
			}
		}
	}
	return nil
}

// GenerateWorkoutHistoryForUsers generates workout history for all users concurrently.
func GenerateWorkoutHistoryForUsers(ctx context.Context, users []*AuthenticatedUser, logger *slog.Logger) error {
	var (
		g       errgroup.Group
		errsMu  sync.Mutex
		allErrs []error
	)
	g.SetLimit(maxConcurrentSetups)
	for _, u := range users {
		g.Go(func() error {
			historyCtx, cancel := context.WithTimeout(ctx, historyTimeout)
			defer cancel()
			if err := GenerateWorkoutHistory(historyCtx, u); err != nil {
				errsMu.Lock()
				allErrs = append(allErrs, fmt.Errorf("user %s: %w", u.Name, err))
				errsMu.Unlock()
				return nil
			}
			logger.LogAttrs(historyCtx, slog.LevelDebug, "Generated workout history", slog.String("name", u.Name))
			return nil
		})
	}
	_ = g.Wait()
	if len(allErrs) > 0 {
		logger.LogAttrs(ctx, slog.LevelError, "Some workout history generations failed",
			slog.Int("failed_count", len(allErrs)),
			slog.Int("successful_count", len(users)-len(allErrs)))
		return errors.Join(allErrs...)
	}
	return nil
}

// TrainingScenario logs today's session and requests the analysis and export like a user finishing a workout.
func TrainingScenario(ctx context.Context, user *AuthenticatedUser) error {
	planPath := "/api/plans/" + user.Plan.ID
	if err := user.Client.DoJSON(ctx, http.MethodPost, planPath+"/logs",
		workoutLog(user.Plan, time.Now().Day(), time.Now()), nil); err != nil {
		return fmt.Errorf("log workout: %w", err)
	}
	var analysis training.Analysis
	if err := user.Client.DoJSON(ctx, http.MethodGet, planPath+"/analysis", nil, &analysis); err != nil {
		return fmt.Errorf("analyze plan: %w", err)
	}
	if len(analysis.WeeklySets) == 0 {
		return errors.New("analysis has no weekly sets")
	}
	if _, err := user.Client.GetDoc(ctx, planPath+"/export?format=html"); err != nil {
		return fmt.Errorf("export plan: %w", err)
	}
	return nil
}

// RunLoadTest runs the training scenario for every user concurrently.
func RunLoadTest(ctx context.Context, users []*AuthenticatedUser, logger *slog.Logger) error {
	userCount := len(users)
	logger.LogAttrs(ctx, slog.LevelInfo, "Starting load test", slog.Int("num_users", userCount))

	var successCount, failureCount atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOperations)
	for _, u := range users {
		g.Go(func() error {
			scenarioCtx, cancel := context.WithTimeout(ctx, scenarioTimeout)
			defer cancel()

			if err := TrainingScenario(scenarioCtx, u); err != nil {
				failureCount.Add(1)
				logger.LogAttrs(scenarioCtx, slog.LevelWarn, "Scenario failed",
					slog.String("name", u.Name),
					slog.Any("error", err))
				return nil
			}
			successCount.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load test failed: %w", err)
	}

	successRate := float64(successCount.Load()) / float64(userCount) * percentageMultiplier
	logger.LogAttrs(ctx, slog.LevelInfo, "Load test completed",
		slog.Int64("successful", successCount.Load()),
		slog.Int64("failed", failureCount.Load()),
		slog.Float64("success_rate", successRate))

	if successRate < successRateThreshold {
		return fmt.Errorf("load test failed: success rate %.1f%% below threshold", successRate)
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != expectedArgsCount {
		logger.LogAttrs(ctx, slog.LevelError, "usage: stresstest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))

	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}
	client, err := e2etest.NewClient(url)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", slog.Any("error", err))
		os.Exit(1)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}

	setupStart := time.Now()
	users, err := SetupUsers(ctx, url, logger)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failed to setup users", slog.Any("error", err))
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "User setup completed",
		slog.Duration("setup_duration", time.Since(setupStart)),
		slog.Int("authenticated_users", len(users)))

	historyStart := time.Now()
	if err = GenerateWorkoutHistoryForUsers(ctx, users, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelWarn, "some workout history generation failed, continuing with load test",
			slog.Any("error", err))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "Workout history generation completed",
		slog.Duration("history_duration", time.Since(historyStart)),
		slog.Int("weeks_per_user", workoutHistoryWeeks))

	loadTestStart := time.Now()
	if err = RunLoadTest(ctx, users, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "load test failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Load test completed successfully 🙌",
		slog.Duration("total_duration", time.Since(start)),
		slog.Duration("load_test_duration", time.Since(loadTestStart)),
		slog.Int("users_tested", len(users)))
}
