package rest

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	mw "github.com/pagebound/inkdesk/middleware"
	"github.com/pagebound/inkdesk/model"
	"gorm.io/gorm"
)

// ManuscriptHandler handles manuscript REST endpoints. Saving a
// manuscript recomputes its word count and the project's running total
// in one transaction, so achievement progress always reads a consistent
// number.
type ManuscriptHandler struct {
	db *gorm.DB
}

// NewManuscriptHandler creates a new ManuscriptHandler.
func NewManuscriptHandler(db *gorm.DB) *ManuscriptHandler {
	return &ManuscriptHandler{db: db}
}

type saveManuscriptRequest struct {
	Title   string `json:"title" binding:"required,min=1,max=200"`
	Content string `json:"content"`
}

// Create handles POST /api/projects/:id/manuscripts.
func (h *ManuscriptHandler) Create(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	projectID, ok := ownedProjectID(c, h.db, accountID)
	if !ok {
		return
	}

	var req saveManuscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m := &model.Manuscript{
		ProjectID: projectID,
		Title:     req.Title,
		Content:   req.Content,
		WordCount: countWords(req.Content),
	}
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return syncProjectWordCount(tx, projectID)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"manuscript": m})
}

// List handles GET /api/projects/:id/manuscripts. Content is omitted;
// fetch a single manuscript for the full text.
func (h *ManuscriptHandler) List(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	projectID, ok := ownedProjectID(c, h.db, accountID)
	if !ok {
		return
	}

	var manuscripts []model.Manuscript
	if err := h.db.Select("id", "project_id", "title", "word_count", "created_at", "updated_at").
		Where("project_id = ?", projectID).
		Order("id ASC").
		Find(&manuscripts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"manuscripts": manuscripts})
}

// Get handles GET /api/manuscripts/:id.
func (h *ManuscriptHandler) Get(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	m, ok := h.ownedManuscript(c, accountID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"manuscript": m})
}

// Update handles PUT /api/manuscripts/:id.
func (h *ManuscriptHandler) Update(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	m, ok := h.ownedManuscript(c, accountID)
	if !ok {
		return
	}

	var req saveManuscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(m).Updates(map[string]interface{}{
			"title":      req.Title,
			"content":    req.Content,
			"word_count": countWords(req.Content),
		}).Error; err != nil {
			return err
		}
		return syncProjectWordCount(tx, m.ProjectID)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"manuscript": m})
}

// Delete handles DELETE /api/manuscripts/:id.
func (h *ManuscriptHandler) Delete(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	m, ok := h.ownedManuscript(c, accountID)
	if !ok {
		return
	}
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(m).Error; err != nil {
			return err
		}
		return syncProjectWordCount(tx, m.ProjectID)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *ManuscriptHandler) ownedManuscript(c *gin.Context, accountID int64) (*model.Manuscript, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}
	var m model.Manuscript
	err = h.db.
		Joins("JOIN projects ON projects.id = manuscripts.project_id").
		Where("manuscripts.id = ? AND projects.account_id = ?", id, accountID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "manuscript not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return nil, false
	}
	return &m, true
}

// syncProjectWordCount recomputes the project's running total from its
// manuscripts inside the caller's transaction.
func syncProjectWordCount(tx *gorm.DB, projectID int64) error {
	var total int64
	if err := tx.Model(&model.Manuscript{}).
		Where("project_id = ?", projectID).
		Select("COALESCE(SUM(word_count), 0)").
		Scan(&total).Error; err != nil {
		return err
	}
	return tx.Model(&model.Project{}).
		Where("id = ?", projectID).
		Update("current_word_count", total).Error
}

// countWords counts whitespace-separated words.
func countWords(s string) int64 {
	return int64(len(strings.Fields(s)))
}
