package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"stikpet/domain/analysis"
	"stikpet/domain/core"
	"stikpet/ports"

	"github.com/jmoiron/sqlx"
)

// AnalysisRepositoryImpl implements AnalysisRepository for PostgreSQL
type AnalysisRepositoryImpl struct {
	db *sqlx.DB
}

// NewAnalysisRepository creates a new PostgreSQL analysis repository
func NewAnalysisRepository(db *sqlx.DB) ports.AnalysisRepository {
	return &AnalysisRepositoryImpl{db: db}
}

// analysisRow mirrors the analyses table. JSONB columns are read as text.
type analysisRow struct {
	ID        string       `db:"id"`
	Procedure string       `db:"procedure"`
	Kind      string       `db:"kind"`
	InputHash string       `db:"input_hash"`
	Input     string       `db:"input"`
	Outcome   string       `db:"outcome"`
	RuntimeMs int64        `db:"runtime_ms"`
	CreatedAt sql.NullTime `db:"created_at"`
}

func (row analysisRow) toDomain() *analysis.Analysis {
	a := &analysis.Analysis{
		ID:        core.AnalysisID(row.ID),
		Procedure: row.Procedure,
		Kind:      row.Kind,
		InputHash: core.InputHash(row.InputHash),
		Input:     []byte(row.Input),
		Outcome:   []byte(row.Outcome),
		RuntimeMs: row.RuntimeMs,
	}
	if row.CreatedAt.Valid {
		a.CreatedAt = row.CreatedAt.Time
	}
	return a
}

const analysisColumns = `id, procedure, kind, input_hash, input::text AS input, outcome::text AS outcome, runtime_ms, created_at`

// Save inserts an analysis, replacing the outcome when the id already exists
func (r *AnalysisRepositoryImpl) Save(ctx context.Context, a *analysis.Analysis) error {
	if a.ID.IsEmpty() {
		a.ID = core.NewAnalysisID()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO analyses (id, procedure, kind, input_hash, input, outcome, runtime_ms, created_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb, $7, NOW())
		ON CONFLICT (id) DO UPDATE SET
			outcome = EXCLUDED.outcome,
			runtime_ms = EXCLUDED.runtime_ms`,
		a.ID.String(), a.Procedure, a.Kind, a.InputHash.String(), string(a.Input), string(a.Outcome), a.RuntimeMs)
	if err != nil {
		return fmt.Errorf("failed to save analysis %s: %w", a.ID, err)
	}
	return nil
}

// Get retrieves an analysis by id
func (r *AnalysisRepositoryImpl) Get(ctx context.Context, id core.AnalysisID) (*analysis.Analysis, error) {
	var row analysisRow
	err := r.db.GetContext(ctx, &row, `SELECT `+analysisColumns+` FROM analyses WHERE id = $1`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.NewNotFoundError(core.ErrAnalysisNotFound, id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis %s: %w", id, err)
	}
	return row.toDomain(), nil
}

// FindByHash returns the newest analysis with the given input fingerprint
func (r *AnalysisRepositoryImpl) FindByHash(ctx context.Context, hash core.InputHash) (*analysis.Analysis, error) {
	var row analysisRow
	err := r.db.GetContext(ctx, &row, `
		SELECT `+analysisColumns+`
		FROM analyses
		WHERE input_hash = $1
		ORDER BY created_at DESC
		LIMIT 1`, hash.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.NewNotFoundError(core.ErrAnalysisNotFound, "input hash "+hash.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find analysis by hash: %w", err)
	}
	return row.toDomain(), nil
}

// List returns analyses newest first, optionally filtered by procedure or kind
func (r *AnalysisRepositoryImpl) List(ctx context.Context, filter analysis.Filter) ([]*analysis.Analysis, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Procedure != "" {
		args = append(args, filter.Procedure)
		where = append(where, fmt.Sprintf("procedure = $%d", len(args)))
	}
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		where = append(where, fmt.Sprintf("kind = $%d", len(args)))
	}

	query := `SELECT ` + analysisColumns + ` FROM analyses`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	var rows []analysisRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	out := make([]*analysis.Analysis, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}
