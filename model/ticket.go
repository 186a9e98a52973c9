package model

import "time"

// Ticket task types.
const (
	TaskTypeChapter  = "chapter"
	TaskTypeScene    = "scene"
	TaskTypeRevision = "revision"
	TaskTypeResearch = "research"
	TaskTypeGeneral  = "general"
)

// Ticket workflow statuses. StatusDone is terminal: a done ticket never
// moves back, which keeps chapter/ticket progress counts monotonic.
const (
	TicketStatusTodo  = "todo"
	TicketStatusDoing = "doing"
	TicketStatusDone  = "done"
)

// Ticket is one card on a project's task board.
type Ticket struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID   int64      `gorm:"index:idx_ticket_project;not null" json:"project_id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	TaskType    string     `gorm:"size:20;default:'general';index:idx_ticket_type" json:"task_type"`
	Status      string     `gorm:"size:20;default:'todo';index:idx_ticket_status" json:"status"`
	Position    int        `gorm:"default:0" json:"position"`
	DoneAt      *time.Time `json:"done_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// ValidTaskType reports whether t is one of the known task types.
func ValidTaskType(t string) bool {
	switch t {
	case TaskTypeChapter, TaskTypeScene, TaskTypeRevision, TaskTypeResearch, TaskTypeGeneral:
		return true
	}
	return false
}

// ValidTicketStatus reports whether s is one of the known statuses.
func ValidTicketStatus(s string) bool {
	switch s {
	case TicketStatusTodo, TicketStatusDoing, TicketStatusDone:
		return true
	}
	return false
}
