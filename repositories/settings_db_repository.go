package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const settingsRowID = 1

// SettingsRecord is the single row holding the settings document.
type SettingsRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Document  string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (SettingsRecord) TableName() string { return "site_settings" }

type settingsDBRepository struct {
	db *gorm.DB
}

func NewSettingsDBRepository(db *gorm.DB) SettingsRepository {
	return &settingsDBRepository{db: db}
}

// MigrateSettings creates the settings table when missing.
func MigrateSettings(db *gorm.DB) error {
	return db.AutoMigrate(&SettingsRecord{})
}

func (r *settingsDBRepository) Load(ctx context.Context) ([]byte, error) {
	var rec SettingsRecord
	err := r.db.WithContext(ctx).First(&rec, settingsRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if !json.Valid([]byte(rec.Document)) {
		return nil, nil
	}
	return []byte(rec.Document), nil
}

func (r *settingsDBRepository) Save(ctx context.Context, doc json.RawMessage) error {
	if !json.Valid(doc) {
		return errors.New("encode settings: document is not valid JSON")
	}

	rec := SettingsRecord{ID: settingsRowID, Document: string(doc)}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
