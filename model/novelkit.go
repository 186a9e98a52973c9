package model

import (
	"time"

	"gorm.io/datatypes"
)

// The novel kit is the worldbuilding layer of a project: characters,
// locations, scene cards, plot beats, world elements, timeline events.
// Each entity is its own table; achievement progress counts them together.

// StoryCharacter is a character sheet.
type StoryCharacter struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID  int64          `gorm:"index:idx_char_project;not null" json:"project_id"`
	Name       string         `gorm:"size:120;not null" json:"name"`
	Role       string         `gorm:"size:64" json:"role"` // protagonist, antagonist, supporting...
	Summary    string         `gorm:"type:text" json:"summary"`
	Attributes datatypes.JSON `json:"attributes"` // {"age": 27, "goal": "...", ...}
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// Location is a place in the story world.
type Location struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID   int64     `gorm:"index:idx_location_project;not null" json:"project_id"`
	Name        string    `gorm:"size:120;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// SceneCard is a planned scene, independent of any manuscript text.
type SceneCard struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID int64     `gorm:"index:idx_scene_project;not null" json:"project_id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Synopsis  string    `gorm:"type:text" json:"synopsis"`
	Position  int       `gorm:"default:0" json:"position"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// PlotBeat is one beat of the story structure.
type PlotBeat struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID int64          `gorm:"index:idx_beat_project;not null" json:"project_id"`
	Name      string         `gorm:"size:120;not null" json:"name"`
	Act       int            `gorm:"default:1" json:"act"`
	Details   datatypes.JSON `json:"details"` // {"stakes": "...", "turn": "..."}
	Position  int            `gorm:"default:0" json:"position"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// WorldElement is a free-form worldbuilding note (magic system, faction,
// technology, custom lore).
type WorldElement struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID int64     `gorm:"index:idx_element_project;not null" json:"project_id"`
	Kind      string    `gorm:"size:64" json:"kind"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	Body      string    `gorm:"type:text" json:"body"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TimelineEvent is a dated event on the story's internal timeline.
type TimelineEvent struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID int64     `gorm:"index:idx_timeline_project;not null" json:"project_id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	When      string    `gorm:"size:120" json:"when"` // in-world date, free text
	Notes     string    `gorm:"type:text" json:"notes"`
	Position  int       `gorm:"default:0" json:"position"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
