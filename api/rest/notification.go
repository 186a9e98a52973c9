package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	mw "github.com/pagebound/inkdesk/middleware"
	"github.com/pagebound/inkdesk/model"
	"gorm.io/gorm"
)

// NotificationHandler serves the in-app notification feed.
type NotificationHandler struct {
	db *gorm.DB
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

// List handles GET /api/notifications. ?unread=1 filters to unread.
func (h *NotificationHandler) List(c *gin.Context) {
	accountID := mw.GetAccountID(c)

	q := h.db.Where("account_id = ?", accountID)
	if c.Query("unread") == "1" {
		q = q.Where("read_at IS NULL")
	}

	var notifications []model.Notification
	if err := q.Order("created_at DESC").Limit(100).Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// MarkRead handles POST /api/notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	now := time.Now()
	res := h.db.Model(&model.Notification{}).
		Where("id = ? AND account_id = ? AND read_at IS NULL", id, accountID).
		Update("read_at", &now)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// MarkAllRead handles POST /api/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	now := time.Now()
	res := h.db.Model(&model.Notification{}).
		Where("account_id = ? AND read_at IS NULL", accountID).
		Update("read_at", &now)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": res.RowsAffected})
}
