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

// BusinessDataRepository implements ports.BusinessDataRepository over Postgres.
type BusinessDataRepository struct {
	db *sqlx.DB
}

// NewBusinessDataRepository creates a new business data repository
func NewBusinessDataRepository(db *sqlx.DB) *BusinessDataRepository {
	return &BusinessDataRepository{db: db}
}

// Create persists raw dataset content and returns its id
func (r *BusinessDataRepository) Create(ctx context.Context, data *models.BusinessData) (uuid.UUID, error) {
	query := `
		INSERT INTO business_data (id, user_id, original_filename, data_type, content, record_count, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		data.ID, data.UserID, data.OriginalFilename, data.DataType,
		data.Content, data.RecordCount, data.Status, data.CreatedAt, data.UpdatedAt)
	if err != nil {
		return uuid.Nil, errors.PersistenceFailure(err)
	}
	return data.ID, nil
}

// GetByID retrieves one dataset scoped to its owning user
func (r *BusinessDataRepository) GetByID(ctx context.Context, userID, dataID uuid.UUID) (*models.BusinessData, error) {
	var data models.BusinessData
	query := `
		SELECT id, user_id, COALESCE(original_filename, '') AS original_filename, data_type, content, COALESCE(record_count, 0) AS record_count, status, created_at, updated_at
		FROM business_data
		WHERE id = $1 AND user_id = $2
	`
	err := r.db.GetContext(ctx, &data, query, dataID, userID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("business data")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get business data")
	}
	return &data, nil
}

// ListByUser returns a user's datasets, newest first
func (r *BusinessDataRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.BusinessData, error) {
	if limit <= 0 {
		limit = 50
	}
	var datasets []*models.BusinessData
	query := `
		SELECT id, user_id, COALESCE(original_filename, '') AS original_filename, data_type, content, COALESCE(record_count, 0) AS record_count, status, created_at, updated_at
		FROM business_data
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	err := r.db.SelectContext(ctx, &datasets, query, userID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list business data")
	}
	return datasets, nil
}

// ListByType returns a user's datasets of one data type, newest first
func (r *BusinessDataRepository) ListByType(ctx context.Context, userID uuid.UUID, dataType string, limit int) ([]*models.BusinessData, error) {
	if limit <= 0 {
		limit = 50
	}
	var datasets []*models.BusinessData
	query := `
		SELECT id, user_id, COALESCE(original_filename, '') AS original_filename, data_type, content, COALESCE(record_count, 0) AS record_count, status, created_at, updated_at
		FROM business_data
		WHERE user_id = $1 AND data_type = $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	err := r.db.SelectContext(ctx, &datasets, query, userID, dataType, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list business data by type")
	}
	return datasets, nil
}

// Update replaces the filename and content of an existing dataset
func (r *BusinessDataRepository) Update(ctx context.Context, data *models.BusinessData) error {
	query := `
		UPDATE business_data
		SET original_filename = $1, content = $2, record_count = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6
	`
	result, err := r.db.ExecContext(ctx, query,
		data.OriginalFilename, data.Content, data.RecordCount, time.Now().UTC(), data.ID, data.UserID)
	if err != nil {
		return errors.PersistenceFailure(err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return errors.NotFound("business data")
	}
	return nil
}

// Delete removes a dataset. Analyses referencing it keep their weak data_id
// reference nulled by the schema.
func (r *BusinessDataRepository) Delete(ctx context.Context, userID, dataID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM business_data WHERE id = $1 AND user_id = $2`, dataID, userID)
	if err != nil {
		return errors.Wrap(err, "failed to delete business data")
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return errors.NotFound("business data")
	}
	return nil
}
