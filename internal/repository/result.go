package repository

import (
	"context"
	"errors"
	"fmt"

	"trendyol/parser/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ResultRepository interface {
	EnsureSchema(ctx context.Context) error
	SaveResult(ctx context.Context, jobID, url string, resp *domain.ParserResponse) error
	GetResult(ctx context.Context, jobID string) (*domain.ParserResponse, error)
}

type resultRepository struct {
	db *pgxpool.Pool
}

func NewResultRepository(db *pgxpool.Pool) ResultRepository {
	return &resultRepository{
		db: db,
	}
}

func (r *resultRepository) EnsureSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS parse_results (
		job_id     TEXT PRIMARY KEY,
		url        TEXT NOT NULL,
		group_id   TEXT NOT NULL DEFAULT '',
		data       JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`
	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create parse_results table: %w", err)
	}
	return nil
}

func (r *resultRepository) SaveResult(ctx context.Context, jobID, url string, resp *domain.ParserResponse) error {
	query := `
	INSERT INTO parse_results (job_id, url, group_id, data) 
	VALUES ($1, $2, $3, $4) 
	ON CONFLICT (job_id) 
	DO UPDATE SET url = $2, group_id = $3, data = $4`
	_, err := r.db.Exec(ctx, query, jobID, url, resp.GroupID, resp)
	if err != nil {
		return fmt.Errorf("failed to save parse result: %w", err)
	}

	return nil
}

// GetResult returns nil without error when the job has no stored result.
func (r *resultRepository) GetResult(ctx context.Context, jobID string) (*domain.ParserResponse, error) {
	var resp domain.ParserResponse
	err := r.db.QueryRow(ctx, `SELECT data FROM parse_results WHERE job_id = $1`, jobID).Scan(&resp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load parse result for job %s: %w", jobID, err)
	}

	return &resp, nil
}
