package registry

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "go-id-verifier/internal/errors"
)

// IDRecord is a registered document code with its optional stored reference
// photo.
type IDRecord struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	DLCode    string    `gorm:"column:dl_code;uniqueIndex;not null"`
	Photo     string    `gorm:"column:photo;type:text"`
	Metadata  string    `gorm:"column:id_metadata;type:jsonb"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// TableName overrides the default table name.
func (IDRecord) TableName() string {
	return "ids"
}

// PostgresStore implements Store over the registry's Postgres table.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore creates a Postgres-backed registry store.
func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// AutoMigrate ensures the registry schema is available.
func (s *PostgresStore) AutoMigrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&IDRecord{})
}

// Lookup performs an exact-match lookup of the normalized code. Backend
// outages surface as registry-unavailable errors, never as absence.
func (s *PostgresStore) Lookup(ctx context.Context, code string) (Entry, error) {
	var record IDRecord
	err := s.db.WithContext(ctx).First(&record, "dl_code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Entry{}, nil
	}
	if err != nil {
		return Entry{}, apperrors.NewRegistryUnavailableError("registry lookup failed", err)
	}
	return Entry{Exists: true, Photo: record.Photo}, nil
}
