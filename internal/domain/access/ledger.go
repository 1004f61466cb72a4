package access

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ledger is the durable set of project ids a device has unlocked.
type Ledger interface {
	Get(ctx context.Context, deviceID string) (map[string]struct{}, error)
	Set(ctx context.Context, deviceID string, ids map[string]struct{}) error
}

type ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) Ledger {
	return &ledger{db: db}
}

func (l *ledger) Get(ctx context.Context, deviceID string) (map[string]struct{}, error) {
	var rows []UnlockedProject
	if err := l.db.WithContext(ctx).Where("device_id = ?", deviceID).Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		ids[r.ProjectID] = struct{}{}
	}
	return ids, nil
}

// Set makes the stored set for deviceID equal to ids.
func (l *ledger) Set(ctx context.Context, deviceID string, ids map[string]struct{}) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		keep := make([]string, 0, len(ids))
		for id := range ids {
			keep = append(keep, id)
		}

		del := tx.Where("device_id = ?", deviceID)
		if len(keep) > 0 {
			del = del.Where("project_id NOT IN ?", keep)
		}
		if err := del.Delete(&UnlockedProject{}).Error; err != nil {
			return err
		}
		if len(keep) == 0 {
			return nil
		}

		now := time.Now().UTC()
		rows := make([]UnlockedProject, 0, len(keep))
		for _, id := range keep {
			rows = append(rows, UnlockedProject{DeviceID: deviceID, ProjectID: id, UnlockedAt: now})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	})
}
