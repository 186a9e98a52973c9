package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pagebound/inkdesk/audit"
	"github.com/pagebound/inkdesk/config"
	mw "github.com/pagebound/inkdesk/middleware"
	"github.com/pagebound/inkdesk/model"
	"gorm.io/gorm"
)

// ProjectHandler handles writing-project REST endpoints.
type ProjectHandler struct {
	db    *gorm.DB
	audit *audit.Service
	board config.BoardConfig
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(db *gorm.DB, auditSvc *audit.Service, board config.BoardConfig) *ProjectHandler {
	return &ProjectHandler{db: db, audit: auditSvc, board: board}
}

type createProjectRequest struct {
	Title           string `json:"title" binding:"required,min=1,max=200"`
	Description     string `json:"description" binding:"max=5000"`
	Genre           string `json:"genre" binding:"max=64"`
	TargetWordCount int64  `json:"target_word_count" binding:"min=0"`
}

// Create handles POST /api/projects.
func (h *ProjectHandler) Create(c *gin.Context) {
	accountID := mw.GetAccountID(c)

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.board.MaxProjectsPerWriter > 0 {
		var count int64
		if err := h.db.Model(&model.Project{}).Where("account_id = ?", accountID).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if count >= int64(h.board.MaxProjectsPerWriter) {
			c.JSON(http.StatusConflict, gin.H{"error": "project limit reached"})
			return
		}
	}

	p := &model.Project{
		AccountID:       accountID,
		Title:           req.Title,
		Description:     req.Description,
		Genre:           req.Genre,
		Status:          model.ProjectStatusDrafting,
		TargetWordCount: req.TargetWordCount,
	}
	if err := h.db.Create(p).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	h.audit.Log(audit.AuditEntry{
		TraceID:   mw.GetTraceID(c),
		AccountID: &accountID,
		ProjectID: &p.ID,
		Action:    "project.create",
		Request:   req,
		IP:        c.ClientIP(),
	})
	c.JSON(http.StatusCreated, gin.H{"project": p})
}

// List handles GET /api/projects.
func (h *ProjectHandler) List(c *gin.Context) {
	accountID := mw.GetAccountID(c)

	var projects []model.Project
	if err := h.db.Where("account_id = ?", accountID).Order("id ASC").Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// Get handles GET /api/projects/:id.
func (h *ProjectHandler) Get(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	p, ok := h.ownedProject(c, accountID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": p})
}

type updateProjectRequest struct {
	Title           *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description     *string `json:"description" binding:"omitempty,max=5000"`
	Genre           *string `json:"genre" binding:"omitempty,max=64"`
	Status          *string `json:"status"`
	TargetWordCount *int64  `json:"target_word_count" binding:"omitempty,min=0"`
}

// Update handles PUT /api/projects/:id.
func (h *ProjectHandler) Update(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	p, ok := h.ownedProject(c, accountID)
	if !ok {
		return
	}

	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Genre != nil {
		updates["genre"] = *req.Genre
	}
	if req.Status != nil {
		switch *req.Status {
		case model.ProjectStatusDrafting, model.ProjectStatusRevising,
			model.ProjectStatusFinished, model.ProjectStatusShelved:
			updates["status"] = *req.Status
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
	}
	if req.TargetWordCount != nil {
		updates["target_word_count"] = *req.TargetWordCount
	}
	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{"project": p})
		return
	}

	if err := h.db.Model(p).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	h.audit.Log(audit.AuditEntry{
		TraceID:   mw.GetTraceID(c),
		AccountID: &accountID,
		ProjectID: &p.ID,
		Action:    "project.update",
		Request:   req,
		IP:        c.ClientIP(),
	})
	c.JSON(http.StatusOK, gin.H{"project": p})
}

// Delete handles DELETE /api/projects/:id. Unlock records are kept: an
// earned achievement stays earned even if its project goes away.
func (h *ProjectHandler) Delete(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	p, ok := h.ownedProject(c, accountID)
	if !ok {
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&model.Ticket{}, &model.Manuscript{}, &model.StoryCharacter{},
			&model.Location{}, &model.SceneCard{}, &model.PlotBeat{},
			&model.WorldElement{}, &model.TimelineEvent{}, &model.WritingSession{},
		} {
			if err := tx.Where("project_id = ?", p.ID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(p).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}

	h.audit.Log(audit.AuditEntry{
		TraceID:   mw.GetTraceID(c),
		AccountID: &accountID,
		ProjectID: &p.ID,
		Action:    "project.delete",
		IP:        c.ClientIP(),
	})
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ownedProject loads the :id project and verifies ownership. On failure
// it writes the error response and returns ok=false.
func (h *ProjectHandler) ownedProject(c *gin.Context, accountID int64) (*model.Project, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}
	var p model.Project
	err = h.db.Where("id = ? AND account_id = ?", id, accountID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return nil, false
	}
	return &p, true
}
