package ports

import (
	"context"

	"coachlens/models"

	"github.com/google/uuid"
)

// AnalysisRepository defines the interface for analysis record storage
type AnalysisRepository interface {
	// Create persists a new analysis record and returns its id
	Create(ctx context.Context, record *models.AnalysisRecord) (uuid.UUID, error)

	// GetByID retrieves one analysis scoped to its owning user
	GetByID(ctx context.Context, userID, analysisID uuid.UUID) (*models.AnalysisRecord, error)

	// GetByTypeAndDataID returns earlier records of the same type over the
	// same dataset, newest first, so regeneration does not lose drafts
	GetByTypeAndDataID(ctx context.Context, userID uuid.UUID, analysisType string, dataID uuid.UUID) ([]*models.AnalysisRecord, error)

	// ListByUser returns a user's analyses, optionally filtered by type
	ListByUser(ctx context.Context, userID uuid.UUID, analysisType string, limit int) ([]*models.AnalysisRecord, error)

	// Update replaces the content of an existing record
	Update(ctx context.Context, record *models.AnalysisRecord) error

	// Delete removes an analysis record and its dependents
	Delete(ctx context.Context, userID, analysisID uuid.UUID) error
}

// BusinessDataRepository defines the interface for uploaded dataset storage
type BusinessDataRepository interface {
	// Create persists raw dataset content and returns its id
	Create(ctx context.Context, data *models.BusinessData) (uuid.UUID, error)

	// GetByID retrieves one dataset scoped to its owning user. Content may
	// come back as a JSON string or an already-decoded object.
	GetByID(ctx context.Context, userID, dataID uuid.UUID) (*models.BusinessData, error)

	// ListByUser returns a user's datasets, newest first
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.BusinessData, error)

	// ListByType returns a user's datasets of one data type, newest first
	ListByType(ctx context.Context, userID uuid.UUID, dataType string, limit int) ([]*models.BusinessData, error)

	// Update replaces the filename and content of an existing dataset
	Update(ctx context.Context, data *models.BusinessData) error

	// Delete removes a dataset. Analyses referencing it survive.
	Delete(ctx context.Context, userID, dataID uuid.UUID) error
}

// BCGItemRepository defines the interface for per-product BCG matrix items
type BCGItemRepository interface {
	Create(ctx context.Context, item *models.BCGMatrixItem) (uuid.UUID, error)
	GetByID(ctx context.Context, itemID uuid.UUID) (*models.BCGMatrixItem, error)
	ListByAnalysis(ctx context.Context, analysisID uuid.UUID) ([]*models.BCGMatrixItem, error)
	ListByCategory(ctx context.Context, analysisID uuid.UUID, category string) ([]*models.BCGMatrixItem, error)
	SummaryByUser(ctx context.Context, userID uuid.UUID) ([]*models.BCGCategorySummary, error)
	Update(ctx context.Context, item *models.BCGMatrixItem) error
	Delete(ctx context.Context, itemID uuid.UUID) error
}
