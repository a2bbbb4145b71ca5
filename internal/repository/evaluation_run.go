package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/faceverify/faceverify/internal/domain"
)

const defaultListLimit = 20

type EvaluationRunRepository struct {
	pool PgxPool
}

func NewEvaluationRunRepository(pool PgxPool) *EvaluationRunRepository {
	return &EvaluationRunRepository{pool: pool}
}

// Create stores a run. A nil ID is replaced with a fresh one; CreatedAt is
// set by the database.
func (r *EvaluationRunRepository) Create(ctx context.Context, run *domain.EvaluationRun) error {
	query := `
		INSERT INTO evaluation_runs (id, dataset, result, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING created_at
	`

	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.Dataset == "" {
		run.Dataset = run.Result.Dataset
	}

	result, err := json.Marshal(run.Result)
	if err != nil {
		return fmt.Errorf("encode evaluation result: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, run.ID, run.Dataset, result).Scan(&run.CreatedAt); err != nil {
		return fmt.Errorf("create evaluation run: %w", err)
	}

	return nil
}

// ListRecent returns the newest runs first. An empty dataset lists all datasets.
func (r *EvaluationRunRepository) ListRecent(ctx context.Context, dataset string, limit int) ([]domain.EvaluationRun, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `
		SELECT id, dataset, result, created_at
		FROM evaluation_runs
		WHERE ($1 = '' OR dataset = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, dataset, limit)
	if err != nil {
		return nil, fmt.Errorf("list evaluation runs: %w", err)
	}
	defer rows.Close()

	runs := make([]domain.EvaluationRun, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list evaluation runs: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list evaluation runs: %w", err)
	}

	return runs, nil
}

// Latest returns the newest run for dataset
func (r *EvaluationRunRepository) Latest(ctx context.Context, dataset string) (*domain.EvaluationRun, error) {
	query := `
		SELECT id, dataset, result, created_at
		FROM evaluation_runs
		WHERE dataset = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	run, err := scanRun(r.pool.QueryRow(ctx, query, dataset))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound.WithMessage(fmt.Sprintf("no evaluation runs for %q", dataset))
	}
	if err != nil {
		return nil, fmt.Errorf("get latest evaluation run: %w", err)
	}

	return run, nil
}

func scanRun(row pgx.Row) (*domain.EvaluationRun, error) {
	var (
		run    domain.EvaluationRun
		result []byte
	)

	if err := row.Scan(&run.ID, &run.Dataset, &result, &run.CreatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(result, &run.Result); err != nil {
		return nil, fmt.Errorf("decode evaluation result: %w", err)
	}

	return &run, nil
}
