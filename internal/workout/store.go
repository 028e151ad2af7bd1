package workout

import (
	"context"

	"github.com/myrjola/coachplan/internal/training"
)

// PlanRef identifies a plan owned by a user.
type PlanRef struct {
	UserID string
	PlanID string
}

// Store persists plans, workout logs, analysis snapshots and custom exercises.
//
// Lookups of missing plans or insights return ErrNotFound.
type Store interface {
	// SavePlan inserts the plan or replaces an existing plan with the same id for the user.
	SavePlan(ctx context.Context, userID string, plan training.Plan) error
	GetPlan(ctx context.Context, userID, planID string) (training.Plan, error)
	// ListPlans returns the user's plans, newest first.
	ListPlans(ctx context.Context, userID string) ([]training.Plan, error)
	// DeletePlan removes the plan together with its logs and insights.
	DeletePlan(ctx context.Context, userID, planID string) error

	SaveLog(ctx context.Context, userID string, log training.WorkoutLog) error
	// ListLogs returns the logs of a plan ordered by completion time.
	ListLogs(ctx context.Context, userID, planID string) ([]training.WorkoutLog, error)
	// PlansWithLogs lists every plan that has at least one workout log.
	PlansWithLogs(ctx context.Context) ([]PlanRef, error)

	SaveInsights(ctx context.Context, userID string, analysis training.Analysis) error
	GetInsights(ctx context.Context, userID, planID string) (training.Analysis, error)

	ListCustomExercises(ctx context.Context) ([]training.Exercise, error)
	// SaveCustomExercise inserts the exercise or replaces the one with the same id.
	SaveCustomExercise(ctx context.Context, ex training.Exercise) error
}
