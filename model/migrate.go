package model

import "gorm.io/gorm"

// allModels lists every model to be auto-migrated.
var allModels = []interface{}{
	&Account{},
	&Project{},
	&Ticket{},
	&Manuscript{},
	&StoryCharacter{},
	&Location{},
	&SceneCard{},
	&PlotBeat{},
	&WorldElement{},
	&TimelineEvent{},
	&WritingSession{},
	&AchievementUnlock{},
	&Notification{},
	&AuditLog{},
}

// AutoMigrate creates or updates all tables in the given database.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(allModels...)
}
