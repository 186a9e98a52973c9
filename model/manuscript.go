package model

import "time"

// Manuscript is one document of a project (a chapter draft, an outline,
// a full draft). WordCount is recomputed from Content on every save.
type Manuscript struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID int64     `gorm:"index:idx_manuscript_project;not null" json:"project_id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	WordCount int64     `gorm:"default:0" json:"word_count"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
