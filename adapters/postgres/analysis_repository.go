package postgres

import (
	"context"
	"database/sql"
	"time"

	"coachlens/internal/errors"
	"coachlens/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// AnalysisRepository implements ports.AnalysisRepository over Postgres.
type AnalysisRepository struct {
	db *sqlx.DB
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db *sqlx.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Create persists a new analysis record and returns its id
func (r *AnalysisRepository) Create(ctx context.Context, record *models.AnalysisRecord) (uuid.UUID, error) {
	query := `
		INSERT INTO analysis_results (id, user_id, data_id, analysis_type, analysis_content, parent_analysis_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		record.ID, record.UserID, record.DataID, record.AnalysisType,
		record.Content, record.ParentAnalysisID, record.CreatedAt, record.UpdatedAt)
	if err != nil {
		return uuid.Nil, errors.PersistenceFailure(err)
	}
	return record.ID, nil
}

// GetByID retrieves one analysis scoped to its owning user
func (r *AnalysisRepository) GetByID(ctx context.Context, userID, analysisID uuid.UUID) (*models.AnalysisRecord, error) {
	var record models.AnalysisRecord
	query := `
		SELECT id, user_id, data_id, analysis_type, analysis_content, parent_analysis_id, created_at, updated_at
		FROM analysis_results
		WHERE id = $1 AND user_id = $2
	`
	err := r.db.GetContext(ctx, &record, query, analysisID, userID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("analysis")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get analysis")
	}
	return &record, nil
}

// GetByTypeAndDataID returns earlier records of the same type over the same
// dataset, newest first
func (r *AnalysisRepository) GetByTypeAndDataID(ctx context.Context, userID uuid.UUID, analysisType string, dataID uuid.UUID) ([]*models.AnalysisRecord, error) {
	var records []*models.AnalysisRecord
	query := `
		SELECT id, user_id, data_id, analysis_type, analysis_content, parent_analysis_id, created_at, updated_at
		FROM analysis_results
		WHERE user_id = $1 AND analysis_type = $2 AND data_id = $3
		ORDER BY created_at DESC
	`
	err := r.db.SelectContext(ctx, &records, query, userID, analysisType, dataID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list analyses by type and dataset")
	}
	return records, nil
}

// ListByUser returns a user's analyses, optionally filtered by type
func (r *AnalysisRepository) ListByUser(ctx context.Context, userID uuid.UUID, analysisType string, limit int) ([]*models.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	var records []*models.AnalysisRecord
	var err error
	if analysisType == "" {
		query := `
			SELECT id, user_id, data_id, analysis_type, analysis_content, parent_analysis_id, created_at, updated_at
			FROM analysis_results
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		`
		err = r.db.SelectContext(ctx, &records, query, userID, limit)
	} else {
		query := `
			SELECT id, user_id, data_id, analysis_type, analysis_content, parent_analysis_id, created_at, updated_at
			FROM analysis_results
			WHERE user_id = $1 AND analysis_type = $2
			ORDER BY created_at DESC
			LIMIT $3
		`
		err = r.db.SelectContext(ctx, &records, query, userID, analysisType, limit)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to list analyses")
	}
	return records, nil
}

// Update replaces the content of an existing record
func (r *AnalysisRepository) Update(ctx context.Context, record *models.AnalysisRecord) error {
	query := `
		UPDATE analysis_results
		SET analysis_content = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4
	`
	result, err := r.db.ExecContext(ctx, query, record.Content, time.Now().UTC(), record.ID, record.UserID)
	if err != nil {
		return errors.PersistenceFailure(err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return errors.NotFound("analysis")
	}
	return nil
}

// Delete removes an analysis record; bcg_matrix_items cascade in the schema
func (r *AnalysisRepository) Delete(ctx context.Context, userID, analysisID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM analysis_results WHERE id = $1 AND user_id = $2`, analysisID, userID)
	if err != nil {
		return errors.Wrap(err, "failed to delete analysis")
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return errors.NotFound("analysis")
	}
	return nil
}
