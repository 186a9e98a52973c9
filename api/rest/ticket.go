package rest

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pagebound/inkdesk/audit"
	"github.com/pagebound/inkdesk/config"
	mw "github.com/pagebound/inkdesk/middleware"
	"github.com/pagebound/inkdesk/model"
	"gorm.io/gorm"
)

// TicketHandler handles task-board REST endpoints.
type TicketHandler struct {
	db    *gorm.DB
	audit *audit.Service
	board config.BoardConfig
}

// NewTicketHandler creates a new TicketHandler.
func NewTicketHandler(db *gorm.DB, auditSvc *audit.Service, board config.BoardConfig) *TicketHandler {
	return &TicketHandler{db: db, audit: auditSvc, board: board}
}

type createTicketRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"max=5000"`
	TaskType    string `json:"task_type"`
	Position    int    `json:"position"`
}

// Create handles POST /api/projects/:id/tickets.
func (h *TicketHandler) Create(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	projectID, ok := ownedProjectID(c, h.db, accountID)
	if !ok {
		return
	}

	var req createTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.TaskType == "" {
		req.TaskType = model.TaskTypeGeneral
	}
	if !model.ValidTaskType(req.TaskType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task type"})
		return
	}

	if h.board.MaxTicketsPerProject > 0 {
		var count int64
		if err := h.db.Model(&model.Ticket{}).Where("project_id = ?", projectID).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if count >= int64(h.board.MaxTicketsPerProject) {
			c.JSON(http.StatusConflict, gin.H{"error": "ticket limit reached"})
			return
		}
	}

	ticket := &model.Ticket{
		ProjectID:   projectID,
		Title:       req.Title,
		Description: req.Description,
		TaskType:    req.TaskType,
		Status:      model.TicketStatusTodo,
		Position:    req.Position,
	}
	if err := h.db.Create(ticket).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	h.audit.Log(audit.AuditEntry{
		TraceID:   mw.GetTraceID(c),
		AccountID: &accountID,
		ProjectID: &projectID,
		Action:    "ticket.create",
		Request:   req,
		IP:        c.ClientIP(),
	})
	c.JSON(http.StatusCreated, gin.H{"ticket": ticket})
}

// List handles GET /api/projects/:id/tickets. Accepts an optional
// ?status= filter.
func (h *TicketHandler) List(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	projectID, ok := ownedProjectID(c, h.db, accountID)
	if !ok {
		return
	}

	q := h.db.Where("project_id = ?", projectID)
	if status := c.Query("status"); status != "" {
		if !model.ValidTicketStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		q = q.Where("status = ?", status)
	}

	var tickets []model.Ticket
	if err := q.Order("position ASC, id ASC").Find(&tickets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

type updateTicketRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	TaskType    *string `json:"task_type"`
	Position    *int    `json:"position"`
}

// Update handles PUT /api/tickets/:id. Status changes go through Move,
// not here.
func (h *TicketHandler) Update(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	ticket, ok := h.ownedTicket(c, accountID)
	if !ok {
		return
	}

	var req updateTicketRequest
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
	if req.TaskType != nil {
		if !model.ValidTaskType(*req.TaskType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task type"})
			return
		}
		if ticket.Status == model.TicketStatusDone {
			// Re-typing a done ticket would silently rewrite chapter
			// progress history.
			c.JSON(http.StatusConflict, gin.H{"error": "cannot change type of a done ticket"})
			return
		}
		updates["task_type"] = *req.TaskType
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}
	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{"ticket": ticket})
		return
	}

	if err := h.db.Model(ticket).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

type moveTicketRequest struct {
	Status string `json:"status" binding:"required"`
}

// Move handles POST /api/tickets/:id/move. Done is terminal: once a
// ticket reaches done it never moves back, so progress counts derived
// from done tickets are monotonic.
func (h *TicketHandler) Move(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	ticket, ok := h.ownedTicket(c, accountID)
	if !ok {
		return
	}

	var req moveTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !model.ValidTicketStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	if ticket.Status == model.TicketStatusDone {
		c.JSON(http.StatusConflict, gin.H{"error": "ticket is done and cannot move"})
		return
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.Status == model.TicketStatusDone {
		now := time.Now()
		updates["done_at"] = &now
	}
	if err := h.db.Model(ticket).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "move failed"})
		return
	}

	h.audit.Log(audit.AuditEntry{
		TraceID:   mw.GetTraceID(c),
		AccountID: &accountID,
		ProjectID: &ticket.ProjectID,
		Action:    "ticket.move",
		Request:   req,
		IP:        c.ClientIP(),
	})
	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// Delete handles DELETE /api/tickets/:id. Done tickets cannot be
// deleted; they are part of progress history.
func (h *TicketHandler) Delete(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	ticket, ok := h.ownedTicket(c, accountID)
	if !ok {
		return
	}
	if ticket.Status == model.TicketStatusDone {
		c.JSON(http.StatusConflict, gin.H{"error": "done tickets cannot be deleted"})
		return
	}
	if err := h.db.Delete(ticket).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ownedTicket loads the :id ticket and verifies the caller owns its
// project.
func (h *TicketHandler) ownedTicket(c *gin.Context, accountID int64) (*model.Ticket, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}
	var ticket model.Ticket
	err = h.db.
		Joins("JOIN projects ON projects.id = tickets.project_id").
		Where("tickets.id = ? AND projects.account_id = ?", id, accountID).
		First(&ticket).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return nil, false
	}
	return &ticket, true
}

// ownedProjectID parses :id and verifies the project belongs to the
// caller. Shared by the project-scoped handlers.
func ownedProjectID(c *gin.Context, db *gorm.DB, accountID int64) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	var count int64
	if err := db.Model(&model.Project{}).Where("id = ? AND account_id = ?", id, accountID).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return 0, false
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return 0, false
	}
	return id, true
}
