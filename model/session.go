package model

import "time"

// WritingSession records one sitting of writing work. Sessions are kept
// raw: the streak achievement category needs consecutive-day math with
// per-writer timezone handling, and until that is defined no aggregation
// over these rows feeds achievement progress.
type WritingSession struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID    int64     `gorm:"index:idx_session_account;not null" json:"account_id"`
	ProjectID    int64     `gorm:"index:idx_session_project;not null" json:"project_id"`
	WordsWritten int64     `gorm:"default:0" json:"words_written"`
	StartedAt    time.Time `gorm:"not null" json:"started_at"`
	EndedAt      time.Time `gorm:"not null" json:"ended_at"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}
