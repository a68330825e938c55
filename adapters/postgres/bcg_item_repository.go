package postgres

import (
	"context"
	"database/sql"

	"coachlens/internal/errors"
	"coachlens/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// BCGItemRepository implements ports.BCGItemRepository over Postgres.
type BCGItemRepository struct {
	db *sqlx.DB
}

// NewBCGItemRepository creates a new BCG matrix item repository
func NewBCGItemRepository(db *sqlx.DB) *BCGItemRepository {
	return &BCGItemRepository{db: db}
}

// Create persists one matrix item and returns its id
func (r *BCGItemRepository) Create(ctx context.Context, item *models.BCGMatrixItem) (uuid.UUID, error) {
	query := `
		INSERT INTO bcg_matrix_items (id, analysis_id, item_name, category, market_growth, market_share, explanation, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.AnalysisID, item.ItemName, item.Category,
		item.MarketGrowth, item.MarketShare, item.Explanation, item.CreatedAt)
	if err != nil {
		return uuid.Nil, errors.PersistenceFailure(err)
	}
	return item.ID, nil
}

// GetByID retrieves one matrix item
func (r *BCGItemRepository) GetByID(ctx context.Context, itemID uuid.UUID) (*models.BCGMatrixItem, error) {
	var item models.BCGMatrixItem
	query := `
		SELECT id, analysis_id, item_name, category, market_growth, market_share, COALESCE(explanation, '') AS explanation, created_at
		FROM bcg_matrix_items
		WHERE id = $1
	`
	err := r.db.GetContext(ctx, &item, query, itemID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("BCG matrix item")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get BCG matrix item")
	}
	return &item, nil
}

// ListByAnalysis returns all items belonging to one analysis
func (r *BCGItemRepository) ListByAnalysis(ctx context.Context, analysisID uuid.UUID) ([]*models.BCGMatrixItem, error) {
	var items []*models.BCGMatrixItem
	query := `
		SELECT id, analysis_id, item_name, category, market_growth, market_share, COALESCE(explanation, '') AS explanation, created_at
		FROM bcg_matrix_items
		WHERE analysis_id = $1
		ORDER BY created_at ASC
	`
	err := r.db.SelectContext(ctx, &items, query, analysisID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list BCG matrix items")
	}
	return items, nil
}

// ListByCategory returns one analysis's items in a single matrix quadrant
func (r *BCGItemRepository) ListByCategory(ctx context.Context, analysisID uuid.UUID, category string) ([]*models.BCGMatrixItem, error) {
	var items []*models.BCGMatrixItem
	query := `
		SELECT id, analysis_id, item_name, category, market_growth, market_share, COALESCE(explanation, '') AS explanation, created_at
		FROM bcg_matrix_items
		WHERE analysis_id = $1 AND category = $2
		ORDER BY created_at ASC
	`
	err := r.db.SelectContext(ctx, &items, query, analysisID, category)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list BCG matrix items by category")
	}
	return items, nil
}

// SummaryByUser rolls up a user's matrix items per quadrant across all of
// their analyses
func (r *BCGItemRepository) SummaryByUser(ctx context.Context, userID uuid.UUID) ([]*models.BCGCategorySummary, error) {
	var summary []*models.BCGCategorySummary
	query := `
		SELECT i.category,
		       COUNT(*) AS count,
		       AVG(i.market_growth) AS avg_growth,
		       AVG(i.market_share) AS avg_share
		FROM bcg_matrix_items i
		JOIN analysis_results a ON i.analysis_id = a.id
		WHERE a.user_id = $1
		GROUP BY i.category
		ORDER BY i.category
	`
	err := r.db.SelectContext(ctx, &summary, query, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to summarize BCG matrix items")
	}
	return summary, nil
}

// Update replaces the mutable fields of one item
func (r *BCGItemRepository) Update(ctx context.Context, item *models.BCGMatrixItem) error {
	query := `
		UPDATE bcg_matrix_items
		SET item_name = $1, category = $2, market_growth = $3, market_share = $4, explanation = $5
		WHERE id = $6
	`
	result, err := r.db.ExecContext(ctx, query,
		item.ItemName, item.Category, item.MarketGrowth, item.MarketShare, item.Explanation, item.ID)
	if err != nil {
		return errors.PersistenceFailure(err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return errors.NotFound("BCG matrix item")
	}
	return nil
}

// Delete removes one item
func (r *BCGItemRepository) Delete(ctx context.Context, itemID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM bcg_matrix_items WHERE id = $1`, itemID)
	if err != nil {
		return errors.Wrap(err, "failed to delete BCG matrix item")
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return errors.NotFound("BCG matrix item")
	}
	return nil
}
