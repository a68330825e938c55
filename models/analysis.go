package models

import (
	"time"

	"github.com/google/uuid"
)

// Analysis kinds stored in analysis_results.analysis_type.
const (
	AnalysisStrategy       = "strategy_analysis"
	AnalysisStrategyDraft  = "strategy_draft"
	AnalysisPrototype      = "product_prototype"
	AnalysisMarketResearch = "market_research"
	AnalysisBCG            = "bcg_analysis"
)

// AnalysisRecord is the persistence envelope for a generated analysis. It ties a
// normalized record to its owning user and source dataset. The dataset reference
// is weak: deleting the dataset leaves historical analyses in place.
type AnalysisRecord struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	UserID           uuid.UUID  `json:"user_id" db:"user_id"`
	DataID           *uuid.UUID `json:"data_id,omitempty" db:"data_id"`
	AnalysisType     string     `json:"analysis_type" db:"analysis_type"`
	Content          JSONBMap   `json:"analysis_content" db:"analysis_content"`
	ParentAnalysisID *uuid.UUID `json:"parent_analysis_id,omitempty" db:"parent_analysis_id"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// NewAnalysisRecord wraps a normalized record with identifying metadata. Pure:
// no I/O happens here, storage is the repository's problem.
func NewAnalysisRecord(userID uuid.UUID, dataID *uuid.UUID, analysisType string, content map[string]interface{}) *AnalysisRecord {
	now := time.Now().UTC()
	return &AnalysisRecord{
		ID:           uuid.New(),
		UserID:       userID,
		DataID:       dataID,
		AnalysisType: analysisType,
		Content:      JSONBMap(content),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// BCGMatrixItem is a single product positioned on a BCG matrix, owned by an analysis.
type BCGMatrixItem struct {
	ID           uuid.UUID `json:"id" db:"id"`
	AnalysisID   uuid.UUID `json:"analysis_id" db:"analysis_id"`
	ItemName     string    `json:"item_name" db:"item_name"`
	Category     string    `json:"category" db:"category"`
	MarketGrowth float64   `json:"market_growth" db:"market_growth"`
	MarketShare  float64   `json:"market_share" db:"market_share"`
	Explanation  string    `json:"explanation" db:"explanation"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// BCGCategorySummary is one row of a user's portfolio rollup: how many items
// sit in a quadrant across all their BCG analyses, and the average position.
type BCGCategorySummary struct {
	Category  string  `json:"category" db:"category"`
	Count     int     `json:"count" db:"count"`
	AvgGrowth float64 `json:"avg_growth" db:"avg_growth"`
	AvgShare  float64 `json:"avg_share" db:"avg_share"`
}
