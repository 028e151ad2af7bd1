package workout

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/myrjola/coachplan/internal/sqlite"
	"github.com/myrjola/coachplan/internal/training"
)

const timestampFormat = "2006-01-02T15:04:05.000Z"

// SQLiteStore implements Store on top of the application SQLite database. Plans, logs and insights are kept as JSON
// documents next to the columns used for lookups and ordering.
type SQLiteStore struct {
	db *sqlite.Database
}

// NewSQLiteStore creates a Store backed by db.
func NewSQLiteStore(db *sqlite.Database) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

func (s *SQLiteStore) SavePlan(ctx context.Context, userID string, plan training.Plan) error {
	document, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	_, err = s.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO plans (user_id, id, split_type, created_at, document)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, id) DO UPDATE SET
			split_type = excluded.split_type,
			created_at = excluded.created_at,
			document = excluded.document`,
		userID, plan.ID, string(plan.SplitType), formatTimestamp(plan.CreatedAt), string(document))
	if err != nil {
		return fmt.Errorf("upsert plan: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetPlan(ctx context.Context, userID, planID string) (training.Plan, error) {
	var document string
	err := s.db.ReadOnly.QueryRowContext(ctx, `
		SELECT document FROM plans WHERE user_id = ? AND id = ?`, userID, planID).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return training.Plan{}, ErrNotFound
	}
	if err != nil {
		return training.Plan{}, fmt.Errorf("query plan: %w", err)
	}
	var plan training.Plan
	if err = json.Unmarshal([]byte(document), &plan); err != nil {
		return training.Plan{}, fmt.Errorf("unmarshal plan: %w", err)
	}
	return plan, nil
}

func (s *SQLiteStore) ListPlans(ctx context.Context, userID string) ([]training.Plan, error) {
	return queryDocuments[training.Plan](ctx, s.db.ReadOnly, `
		SELECT document FROM plans WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
}

func (s *SQLiteStore) DeletePlan(ctx context.Context, userID, planID string) error {
	res, err := s.db.ReadWrite.ExecContext(ctx, `DELETE FROM plans WHERE user_id = ? AND id = ?`, userID, planID)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) SaveLog(ctx context.Context, userID string, log training.WorkoutLog) error {
	document, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("marshal workout log: %w", err)
	}
	_, err = s.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO workout_logs (id, user_id, plan_id, completed_at, document)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			completed_at = excluded.completed_at,
			document = excluded.document`,
		log.ID, userID, log.PlanID, formatTimestamp(log.CompletedAt), string(document))
	if err != nil {
		return fmt.Errorf("upsert workout log: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListLogs(ctx context.Context, userID, planID string) ([]training.WorkoutLog, error) {
	return queryDocuments[training.WorkoutLog](ctx, s.db.ReadOnly, `
		SELECT document FROM workout_logs
		WHERE user_id = ? AND plan_id = ?
		ORDER BY completed_at, id`, userID, planID)
}

func (s *SQLiteStore) PlansWithLogs(ctx context.Context) (_ []PlanRef, err error) {
	rows, err := s.db.ReadOnly.QueryContext(ctx, `
		SELECT DISTINCT user_id, plan_id FROM workout_logs ORDER BY user_id, plan_id`)
	if err != nil {
		return nil, fmt.Errorf("query plans with logs: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var refs []PlanRef
	for rows.Next() {
		var ref PlanRef
		if err = rows.Scan(&ref.UserID, &ref.PlanID); err != nil {
			return nil, fmt.Errorf("scan plan ref: %w", err)
		}
		refs = append(refs, ref)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return refs, nil
}

func (s *SQLiteStore) SaveInsights(ctx context.Context, userID string, analysis training.Analysis) error {
	document, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	_, err = s.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO plan_insights (user_id, plan_id, analyzed_at, document)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, plan_id) DO UPDATE SET
			analyzed_at = excluded.analyzed_at,
			document = excluded.document`,
		userID, analysis.PlanID, formatTimestamp(analysis.AnalyzedAt), string(document))
	if err != nil {
		return fmt.Errorf("upsert insights: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetInsights(ctx context.Context, userID, planID string) (training.Analysis, error) {
	var document string
	err := s.db.ReadOnly.QueryRowContext(ctx, `
		SELECT document FROM plan_insights WHERE user_id = ? AND plan_id = ?`, userID, planID).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return training.Analysis{}, ErrNotFound
	}
	if err != nil {
		return training.Analysis{}, fmt.Errorf("query insights: %w", err)
	}
	var analysis training.Analysis
	if err = json.Unmarshal([]byte(document), &analysis); err != nil {
		return training.Analysis{}, fmt.Errorf("unmarshal insights: %w", err)
	}
	return analysis, nil
}

func (s *SQLiteStore) ListCustomExercises(ctx context.Context) ([]training.Exercise, error) {
	return queryDocuments[training.Exercise](ctx, s.db.ReadOnly, `SELECT document FROM custom_exercises ORDER BY id`)
}

func (s *SQLiteStore) SaveCustomExercise(ctx context.Context, ex training.Exercise) error {
	document, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("marshal exercise: %w", err)
	}
	_, err = s.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO custom_exercises (id, document, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			document = excluded.document,
			updated_at = excluded.updated_at`,
		ex.ID, string(document), formatTimestamp(time.Now()))
	if err != nil {
		return fmt.Errorf("upsert custom exercise: %w", err)
	}
	return nil
}

// queryDocuments runs a query selecting a single JSON document column and decodes every row into T.
func queryDocuments[T any](ctx context.Context, db *sql.DB, query string, args ...any) (_ []T, err error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	docs := []T{}
	for rows.Next() {
		var (
			raw string
			doc T
		)
		if err = rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		if err = json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, fmt.Errorf("unmarshal document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return docs, nil
}
