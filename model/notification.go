package model

import (
	"time"

	"gorm.io/datatypes"
)

// Notification kinds.
const (
	NotifyKindUnlock = "achievement_unlock"
	NotifyKindSystem = "system"
)

// Notification is a message shown to a writer in-app. Unlock
// notifications are written best-effort after the ledger transition;
// losing one never rolls back the unlock itself.
type Notification struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID int64          `gorm:"index:idx_notify_account;not null" json:"account_id"`
	ProjectID int64          `gorm:"default:0" json:"project_id"`
	Kind      string         `gorm:"size:32;not null" json:"kind"`
	Title     string         `gorm:"size:200;not null" json:"title"`
	Body      string         `gorm:"type:text" json:"body"`
	Payload   datatypes.JSON `json:"payload"`
	ReadAt    *time.Time     `json:"read_at"`
	CreatedAt time.Time      `gorm:"index:idx_notify_created;autoCreateTime" json:"created_at"`
}
