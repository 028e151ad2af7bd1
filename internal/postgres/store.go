// Package postgres is a PostgreSQL implementation of the workout store for deployments that outgrow SQLite.
package postgres

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // registers the postgres:// scheme.
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/myrjola/coachplan/internal/training"
	"github.com/myrjola/coachplan/internal/workout"
)

//go:embed migrations/*.sql
var migrations embed.FS

var _ workout.Store = (*Store)(nil)

// Store wraps a pgxpool.Pool and implements workout.Store.
type Store struct {
	Pool *pgxpool.Pool
}

// New creates a new Store with a connection pool.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Store{Pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.Pool.Close()
}

// RunMigrations applies the embedded migrations to the database at dsn.
func RunMigrations(dsn string) (err error) {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("opening migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer func() {
		sourceErr, dbErr := m.Close()
		err = errors.Join(err, sourceErr, dbErr)
	}()

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func (s *Store) SavePlan(ctx context.Context, userID string, plan training.Plan) error {
	document, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("marshalling plan: %w", err)
	}
	_, err = s.Pool.Exec(ctx,
		`INSERT INTO plans (user_id, id, split_type, created_at, document)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, id) DO UPDATE SET
		   split_type = EXCLUDED.split_type,
		   created_at = EXCLUDED.created_at,
		   document = EXCLUDED.document`,
		userID, plan.ID, string(plan.SplitType), plan.CreatedAt.UTC(), document)
	if err != nil {
		return fmt.Errorf("upserting plan: %w", err)
	}
	return nil
}

func (s *Store) GetPlan(ctx context.Context, userID, planID string) (training.Plan, error) {
	return queryDocument[training.Plan](ctx, s.Pool,
		`SELECT document FROM plans WHERE user_id = $1 AND id = $2`, userID, planID)
}

func (s *Store) ListPlans(ctx context.Context, userID string) ([]training.Plan, error) {
	return queryDocuments[training.Plan](ctx, s.Pool,
		`SELECT document FROM plans WHERE user_id = $1 ORDER BY created_at DESC, id`, userID)
}

func (s *Store) DeletePlan(ctx context.Context, userID, planID string) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM plans WHERE user_id = $1 AND id = $2`, userID, planID)
	if err != nil {
		return fmt.Errorf("deleting plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return workout.ErrNotFound
	}
	return nil
}

func (s *Store) SaveLog(ctx context.Context, userID string, log training.WorkoutLog) error {
	document, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("marshalling workout log: %w", err)
	}
	_, err = s.Pool.Exec(ctx,
		`INSERT INTO workout_logs (id, user_id, plan_id, completed_at, document)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET
		   completed_at = EXCLUDED.completed_at,
		   document = EXCLUDED.document`,
		log.ID, userID, log.PlanID, log.CompletedAt.UTC(), document)
	if err != nil {
		return fmt.Errorf("upserting workout log: %w", err)
	}
	return nil
}

func (s *Store) ListLogs(ctx context.Context, userID, planID string) ([]training.WorkoutLog, error) {
	return queryDocuments[training.WorkoutLog](ctx, s.Pool,
		`SELECT document FROM workout_logs WHERE user_id = $1 AND plan_id = $2 ORDER BY completed_at, id`,
		userID, planID)
}

func (s *Store) PlansWithLogs(ctx context.Context) ([]workout.PlanRef, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT DISTINCT user_id, plan_id FROM workout_logs ORDER BY user_id, plan_id`)
	if err != nil {
		return nil, fmt.Errorf("querying plans with logs: %w", err)
	}
	refs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (workout.PlanRef, error) {
		var ref workout.PlanRef
		err := row.Scan(&ref.UserID, &ref.PlanID)
		return ref, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning plan refs: %w", err)
	}
	return refs, nil
}

func (s *Store) SaveInsights(ctx context.Context, userID string, analysis training.Analysis) error {
	document, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("marshalling analysis: %w", err)
	}
	_, err = s.Pool.Exec(ctx,
		`INSERT INTO plan_insights (user_id, plan_id, analyzed_at, document)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, plan_id) DO UPDATE SET
		   analyzed_at = EXCLUDED.analyzed_at,
		   document = EXCLUDED.document`,
		userID, analysis.PlanID, analysis.AnalyzedAt.UTC(), document)
	if err != nil {
		return fmt.Errorf("upserting insights: %w", err)
	}
	return nil
}

func (s *Store) GetInsights(ctx context.Context, userID, planID string) (training.Analysis, error) {
	return queryDocument[training.Analysis](ctx, s.Pool,
		`SELECT document FROM plan_insights WHERE user_id = $1 AND plan_id = $2`, userID, planID)
}

func (s *Store) ListCustomExercises(ctx context.Context) ([]training.Exercise, error) {
	return queryDocuments[training.Exercise](ctx, s.Pool, `SELECT document FROM custom_exercises ORDER BY id`)
}

func (s *Store) SaveCustomExercise(ctx context.Context, ex training.Exercise) error {
	document, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("marshalling exercise: %w", err)
	}
	_, err = s.Pool.Exec(ctx,
		`INSERT INTO custom_exercises (id, document, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`,
		ex.ID, document, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upserting custom exercise: %w", err)
	}
	return nil
}

func queryDocument[T any](ctx context.Context, pool *pgxpool.Pool, query string, args ...any) (T, error) {
	var (
		raw []byte
		doc T
	)
	err := pool.QueryRow(ctx, query, args...).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return doc, workout.ErrNotFound
	}
	if err != nil {
		return doc, fmt.Errorf("querying document: %w", err)
	}
	if err = json.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("unmarshalling document: %w", err)
	}
	return doc, nil
}

func queryDocuments[T any](ctx context.Context, pool *pgxpool.Pool, query string, args ...any) ([]T, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	docs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (T, error) {
		var (
			raw []byte
			doc T
		)
		if err := row.Scan(&raw); err != nil {
			return doc, err
		}
		err := json.Unmarshal(raw, &doc)
		return doc, err
	})
	if err != nil {
		return nil, fmt.Errorf("collecting documents: %w", err)
	}
	if docs == nil {
		docs = []T{}
	}
	return docs, nil
}
