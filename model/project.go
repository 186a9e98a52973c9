package model

import "time"

// ProjectStatus values for Project.Status.
const (
	ProjectStatusDrafting  = "drafting"
	ProjectStatusRevising  = "revising"
	ProjectStatusFinished  = "finished"
	ProjectStatusShelved   = "shelved"
)

// Project is a writing project: one novel, serial, or collection.
// CurrentWordCount is the running total across the project's manuscripts
// and is maintained by manuscript saves in the same transaction.
type Project struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID        int64     `gorm:"index:idx_project_account;not null" json:"account_id"`
	Title            string    `gorm:"size:200;not null" json:"title"`
	Description      string    `gorm:"type:text" json:"description"`
	Genre            string    `gorm:"size:64" json:"genre"`
	Status           string    `gorm:"size:20;default:'drafting'" json:"status"`
	TargetWordCount  int64     `gorm:"default:0" json:"target_word_count"`
	CurrentWordCount int64     `gorm:"default:0" json:"current_word_count"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
