// Package audit persists the outcome of every verification and publishes
// verification lifecycle events to subscribed observers.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"go-id-verifier/pkg/models"
)

// Record is a persisted verification outcome.
type Record struct {
	ID                 uint     `gorm:"primaryKey"`
	DLCodeChecked      *string  `gorm:"column:dl_code_checked;index"`
	VerificationResult string   `gorm:"column:verification_result"`
	ImageSimilarity    *float64 `gorm:"column:image_similarity"`
	Confidence         float64  `gorm:"column:confidence"`
	ParsedFields       string   `gorm:"column:parsed_fields;type:jsonb"`
	Extra              string   `gorm:"column:extra;type:jsonb"`
	CreatedAt          time.Time
}

// TableName maps Record to the legacy logs table.
func (Record) TableName() string {
	return "logs"
}

// Store appends verification records.
type Store interface {
	Append(ctx context.Context, rec Record) error
}

// RecordFromVerdict builds an audit record from a finished verdict plus any
// caller-supplied metadata.
func RecordFromVerdict(verdict models.VerificationVerdict, metadata string) Record {
	rec := Record{
		VerificationResult: string(verdict.Verdict),
		ImageSimilarity:    verdict.ImageSimilarity,
		Confidence:         verdict.Confidence,
		CreatedAt:          verdict.Timestamp,
	}
	if verdict.IDNumber != "" {
		code := verdict.IDNumber
		rec.DLCodeChecked = &code
	}

	if fields, err := json.Marshal(verdict.ParsedFields); err == nil {
		rec.ParsedFields = string(fields)
	}

	extra := map[string]interface{}{
		"request_id":       verdict.RequestID,
		"applied_rotation": verdict.AppliedRotation,
	}
	if len(verdict.Errors) > 0 {
		extra["errors"] = verdict.Errors
	}
	if metadata != "" {
		extra["metadata"] = json.RawMessage(metadata)
	}
	if payload, err := json.Marshal(extra); err == nil {
		rec.Extra = string(payload)
	}
	return rec
}

// GormStore persists audit records with gorm.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the logs table and returns a store backed by db.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Append(ctx context.Context, rec Record) error {
	return s.db.WithContext(ctx).Create(&rec).Error
}

// LogStore writes audit records to the structured log only. It backs
// deployments that run without a database.
type LogStore struct {
	logger *logrus.Logger
}

func NewLogStore(logger *logrus.Logger) *LogStore {
	return &LogStore{logger: logger}
}

func (s *LogStore) Append(ctx context.Context, rec Record) error {
	fields := logrus.Fields{
		"verification_result": rec.VerificationResult,
		"confidence":          rec.Confidence,
		"parsed_fields":       rec.ParsedFields,
		"extra":               rec.Extra,
	}
	if rec.DLCodeChecked != nil {
		fields["dl_code_checked"] = *rec.DLCodeChecked
	}
	if rec.ImageSimilarity != nil {
		fields["image_similarity"] = *rec.ImageSimilarity
	}
	s.logger.WithFields(fields).Info("Verification audit record")
	return nil
}
