package models

import (
	"time"

	"github.com/google/uuid"
)

// BusinessData is an uploaded or manually entered dataset as stored. Content
// is kept raw: historical rows hold a JSON string, newer rows hold the object
// directly, and both must stay readable.
type BusinessData struct {
	ID               uuid.UUID `json:"id" db:"id"`
	UserID           uuid.UUID `json:"user_id" db:"user_id"`
	OriginalFilename string    `json:"original_filename,omitempty" db:"original_filename"`
	DataType         string    `json:"data_type" db:"data_type"`
	Content          JSONBRaw  `json:"content" db:"content"`
	RecordCount      int       `json:"record_count" db:"record_count"`
	Status           string    `json:"status" db:"status"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// NewBusinessData wraps dataset content for storage.
func NewBusinessData(userID uuid.UUID, filename, dataType string, content []byte, recordCount int) *BusinessData {
	now := time.Now().UTC()
	return &BusinessData{
		ID:               uuid.New(),
		UserID:           userID,
		OriginalFilename: filename,
		DataType:         dataType,
		Content:          JSONBRaw(content),
		RecordCount:      recordCount,
		Status:           "ready",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
