package access

import "time"

// UnlockedProject is one entry of a device's unlock ledger.
type UnlockedProject struct {
	DeviceID   string    `gorm:"column:device_id;primaryKey;size:64" json:"device_id"`
	ProjectID  string    `gorm:"column:project_id;primaryKey;size:64" json:"project_id"`
	UnlockedAt time.Time `gorm:"column:unlocked_at" json:"unlocked_at"`
}

func (UnlockedProject) TableName() string { return "unlocked_projects" }

// DevicePreference holds per-device settings that live outside the content store.
type DevicePreference struct {
	DeviceID  string    `gorm:"column:device_id;primaryKey;size:64" json:"device_id"`
	Language  string    `gorm:"column:language;size:2" json:"language"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (DevicePreference) TableName() string { return "device_preferences" }

// State of the unlock flow for one project on one device.
type State string

const (
	StateLocked   State = "locked"
	StateUnlocked State = "unlocked"
)
