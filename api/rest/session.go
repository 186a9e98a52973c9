package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	mw "github.com/pagebound/inkdesk/middleware"
	"github.com/pagebound/inkdesk/model"
	"gorm.io/gorm"
)

// SessionHandler records writing sessions. Sessions are raw history for
// now; nothing aggregates them into achievement progress until the
// streak formula is defined.
type SessionHandler struct {
	db *gorm.DB
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(db *gorm.DB) *SessionHandler {
	return &SessionHandler{db: db}
}

type recordSessionRequest struct {
	WordsWritten int64     `json:"words_written" binding:"min=0"`
	StartedAt    time.Time `json:"started_at" binding:"required"`
	EndedAt      time.Time `json:"ended_at" binding:"required"`
}

// Record handles POST /api/projects/:id/sessions.
func (h *SessionHandler) Record(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	projectID, ok := ownedProjectID(c, h.db, accountID)
	if !ok {
		return
	}

	var req recordSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.EndedAt.After(req.StartedAt) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ended_at must be after started_at"})
		return
	}

	s := &model.WritingSession{
		AccountID:    accountID,
		ProjectID:    projectID,
		WordsWritten: req.WordsWritten,
		StartedAt:    req.StartedAt,
		EndedAt:      req.EndedAt,
	}
	if err := h.db.Create(s).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": s})
}

// List handles GET /api/projects/:id/sessions, newest first, capped at
// 100 rows.
func (h *SessionHandler) List(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	projectID, ok := ownedProjectID(c, h.db, accountID)
	if !ok {
		return
	}

	var sessions []model.WritingSession
	if err := h.db.Where("project_id = ?", projectID).
		Order("started_at DESC").
		Limit(100).
		Find(&sessions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}
