package migration

import (
	"context"
	"fmt"

	"coachlens/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createUsersTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create users table")
	}

	if err := r.createBusinessDataTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create business_data table")
	}

	if err := r.createAnalysisResultsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create analysis_results table")
	}

	if err := r.createBCGMatrixItemsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create bcg_matrix_items table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	if err := r.insertDefaultUser(ctx, db); err != nil {
		return errors.Wrap(err, "failed to insert default user")
	}

	return nil
}

func (r *MigrationRunner) createUsersTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email VARCHAR(255) UNIQUE NOT NULL,
			username VARCHAR(100) UNIQUE,
			is_active BOOLEAN DEFAULT true,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createBusinessDataTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS business_data (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			original_filename VARCHAR(255),
			data_type VARCHAR(50) NOT NULL DEFAULT 'upload',
			content JSONB NOT NULL,
			record_count INTEGER,
			status VARCHAR(50) DEFAULT 'ready',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createAnalysisResultsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS analysis_results (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			data_id UUID REFERENCES business_data(id) ON DELETE SET NULL,
			analysis_type VARCHAR(50) NOT NULL,
			analysis_content JSONB NOT NULL,
			parent_analysis_id UUID REFERENCES analysis_results(id) ON DELETE SET NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createBCGMatrixItemsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS bcg_matrix_items (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			analysis_id UUID NOT NULL REFERENCES analysis_results(id) ON DELETE CASCADE,
			item_name VARCHAR(255) NOT NULL,
			category VARCHAR(50) NOT NULL,
			market_growth DECIMAL(10,4) NOT NULL DEFAULT 0,
			market_share DECIMAL(10,4) NOT NULL DEFAULT 0,
			explanation TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		// Business data indexes
		"CREATE INDEX IF NOT EXISTS idx_business_data_user_id ON business_data(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_business_data_user_created ON business_data(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_business_data_type ON business_data(data_type)",

		// Analysis results indexes
		"CREATE INDEX IF NOT EXISTS idx_analyses_user_id ON analysis_results(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_analyses_data_id ON analysis_results(data_id)",
		"CREATE INDEX IF NOT EXISTS idx_analyses_user_type ON analysis_results(user_id, analysis_type)",
		"CREATE INDEX IF NOT EXISTS idx_analyses_parent ON analysis_results(parent_analysis_id)",
		"CREATE INDEX IF NOT EXISTS idx_analyses_user_created ON analysis_results(user_id, created_at DESC)",

		// BCG matrix item indexes
		"CREATE INDEX IF NOT EXISTS idx_bcg_items_analysis_id ON bcg_matrix_items(analysis_id)",
		"CREATE INDEX IF NOT EXISTS idx_bcg_items_category ON bcg_matrix_items(category)",
	}

	for _, idxSQL := range indexes {
		if _, err := db.ExecContext(ctx, idxSQL); err != nil {
			// Log but don't fail on index creation errors
			fmt.Printf("Warning: failed to create index: %v\n", err)
		}
	}

	return nil
}

func (r *MigrationRunner) insertDefaultUser(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO users (id, email, username, is_active)
		VALUES ('550e8400-e29b-41d4-a716-446655440000', 'default@coachlens.local', 'default', true)
		ON CONFLICT (email) DO NOTHING
	`)
	if err != nil {
		// Log but don't fail on default user insertion
		fmt.Printf("Warning: failed to insert default user: %v\n", err)
	}
	return nil
}
