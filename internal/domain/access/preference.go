package access

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PreferenceRepository interface {
	Language(ctx context.Context, deviceID string) (string, error)
	SetLanguage(ctx context.Context, deviceID, lang string) error
}

type preferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) Language(ctx context.Context, deviceID string) (string, error) {
	var pref DevicePreference
	err := r.db.WithContext(ctx).First(&pref, "device_id = ?", deviceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return pref.Language, nil
}

func (r *preferenceRepository) SetLanguage(ctx context.Context, deviceID, lang string) error {
	pref := DevicePreference{DeviceID: deviceID, Language: lang, UpdatedAt: time.Now().UTC()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"language", "updated_at"}),
	}).Create(&pref).Error
}
