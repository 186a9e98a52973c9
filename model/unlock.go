package model

import "time"

// GlobalProject is the ProjectID of account-global achievement unlocks.
// A zero ID keeps the identity inside the unique index; a nullable
// column would not, because SQL unique indexes never treat two NULLs as
// equal and duplicates could slip in.
const GlobalProject int64 = 0

// AchievementUnlock is one row of the unlock ledger. At most one row
// ever exists per (account_id, achievement_id, project_id): the
// composite unique index is what makes Ledger.UnlockIfAbsent safe under
// concurrent callers. Rows are never updated after creation except for
// NotificationSent, and never deleted.
type AchievementUnlock struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID        int64     `gorm:"uniqueIndex:ux_unlock_identity,priority:1;not null" json:"account_id"`
	AchievementID    int64     `gorm:"uniqueIndex:ux_unlock_identity,priority:2;not null" json:"achievement_id"`
	ProjectID        int64     `gorm:"uniqueIndex:ux_unlock_identity,priority:3;not null;default:0" json:"project_id"`
	ProgressAtUnlock int64     `gorm:"not null" json:"progress_at_unlock"`
	UnlockedAt       time.Time `gorm:"not null" json:"unlocked_at"`
	NotificationSent bool      `gorm:"default:false" json:"notification_sent"`
}

// TableName implements the GORM tabler interface.
func (AchievementUnlock) TableName() string { return "achievement_unlocks" }
