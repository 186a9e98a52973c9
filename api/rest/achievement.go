package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pagebound/inkdesk/achievement"
	"github.com/pagebound/inkdesk/audit"
	mw "github.com/pagebound/inkdesk/middleware"
)

// AchievementHandler exposes the achievement engine over REST.
type AchievementHandler struct {
	svc   *achievement.Service
	audit *audit.Service
}

// NewAchievementHandler creates a new AchievementHandler.
func NewAchievementHandler(svc *achievement.Service, auditSvc *audit.Service) *AchievementHandler {
	return &AchievementHandler{svc: svc, audit: auditSvc}
}

// Catalog handles GET /api/achievements. The definition list is static;
// clients can cache it for the session.
func (h *AchievementHandler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"achievements": h.svc.Catalog().List()})
}

// Progress handles GET /api/achievements/progress?project_id=N.
// Clients poll this; it is read-only and always reflects live state.
func (h *AchievementHandler) Progress(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	projectID, err := strconv.ParseInt(c.Query("project_id"), 10, 64)
	if err != nil || projectID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id required"})
		return
	}

	snaps, err := h.svc.CheckProgress(c.Request.Context(), accountID, projectID)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": snaps})
}

type unlockRequest struct {
	AchievementID int64 `json:"achievement_id" binding:"required"`
	ProjectID     int64 `json:"project_id"`
	Progress      int64 `json:"progress" binding:"required"`
}

// Unlock handles POST /api/achievements/unlock. Idempotent: repeated
// calls for an already-unlocked achievement return already_unlocked
// with the original unlock time.
func (h *AchievementHandler) Unlock(c *gin.Context) {
	accountID := mw.GetAccountID(c)

	var req unlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.svc.AttemptUnlock(c.Request.Context(), accountID, req.AchievementID, req.ProjectID, req.Progress)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	if !res.AlreadyUnlocked {
		h.audit.Log(audit.AuditEntry{
			TraceID:   mw.GetTraceID(c),
			AccountID: &accountID,
			ProjectID: &req.ProjectID,
			Action:    "achievement.unlock",
			Request:   req,
			IP:        c.ClientIP(),
		})
	}
	c.JSON(http.StatusOK, res)
}

// ListUnlocked handles GET /api/achievements/unlocked?project_id=N.
func (h *AchievementHandler) ListUnlocked(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	projectID, err := strconv.ParseInt(c.Query("project_id"), 10, 64)
	if err != nil || projectID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id required"})
		return
	}

	recs, err := h.svc.Ledger().ListUnlocked(c.Request.Context(), accountID, projectID)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unlocked": recs})
}

// writeEngineError maps achievement engine errors onto HTTP statuses.
func writeEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, achievement.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "achievement not found"})
	case errors.Is(err, achievement.ErrThresholdNotMet):
		c.JSON(http.StatusBadRequest, gin.H{"error": "threshold not met"})
	case errors.Is(err, achievement.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable, retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
