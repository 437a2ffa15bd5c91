package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"bankmetrics/internal/domain"
	"bankmetrics/internal/port"
)

type batchRunRepo struct {
	db *sqlx.DB
}

// NewBatchRunRepo creates a new PostgreSQL-backed BatchRunRepository.
func NewBatchRunRepo(db *sqlx.DB) port.BatchRunRepository {
	return &batchRunRepo{db: db}
}

// Create inserts the run and its items in one transaction.
func (r *batchRunRepo) Create(ctx context.Context, run *domain.BatchRun, items []domain.BatchRunItem) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("batchRunRepo.Create begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.NamedExecContext(ctx,
		`INSERT INTO batch_runs (id, quarter, banks, status, planned, succeeded, failed, skipped,
			consolidated_path, started_at, finished_at)
		 VALUES (:id, :quarter, :banks, :status, :planned, :succeeded, :failed, :skipped,
			:consolidated_path, :started_at, :finished_at)`, run)
	if err != nil {
		return fmt.Errorf("batchRunRepo.Create: %w", err)
	}

	if len(items) > 0 {
		_, err = tx.NamedExecContext(ctx,
			`INSERT INTO batch_run_items (run_id, bank, status, error, output_path, duration_ms)
			 VALUES (:run_id, :bank, :status, :error, :output_path, :duration_ms)`, items)
		if err != nil {
			return fmt.Errorf("batchRunRepo.Create items: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("batchRunRepo.Create commit: %w", err)
	}
	return nil
}

func (r *batchRunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.BatchRun, error) {
	var run domain.BatchRun
	err := r.db.GetContext(ctx, &run, "SELECT * FROM batch_runs WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: batch run %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("batchRunRepo.GetByID: %w", err)
	}
	return &run, nil
}

// ListByQuarter lists runs newest first. An empty quarter lists every run.
func (r *batchRunRepo) ListByQuarter(ctx context.Context, quarter string, offset, limit int) ([]domain.BatchRun, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM batch_runs WHERE ($1 = '' OR quarter = $1)", quarter)
	if err != nil {
		return nil, 0, fmt.Errorf("batchRunRepo.ListByQuarter count: %w", err)
	}

	runs := []domain.BatchRun{}
	err = r.db.SelectContext(ctx, &runs,
		`SELECT * FROM batch_runs WHERE ($1 = '' OR quarter = $1)
		 ORDER BY started_at DESC LIMIT $2 OFFSET $3`,
		quarter, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("batchRunRepo.ListByQuarter: %w", err)
	}
	return runs, total, nil
}

func (r *batchRunRepo) ListItems(ctx context.Context, runID uuid.UUID) ([]domain.BatchRunItem, error) {
	items := []domain.BatchRunItem{}
	err := r.db.SelectContext(ctx, &items,
		"SELECT * FROM batch_run_items WHERE run_id = $1 ORDER BY bank", runID)
	if err != nil {
		return nil, fmt.Errorf("batchRunRepo.ListItems: %w", err)
	}
	return items, nil
}
