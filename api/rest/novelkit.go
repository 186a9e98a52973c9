package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	mw "github.com/pagebound/inkdesk/middleware"
	"github.com/pagebound/inkdesk/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NovelKitHandler handles worldbuilding REST endpoints: characters,
// locations, scene cards, plot beats, world elements, timeline events.
type NovelKitHandler struct {
	db *gorm.DB
}

// NewNovelKitHandler creates a new NovelKitHandler.
func NewNovelKitHandler(db *gorm.DB) *NovelKitHandler {
	return &NovelKitHandler{db: db}
}

type createCharacterRequest struct {
	Name       string         `json:"name" binding:"required,min=1,max=120"`
	Role       string         `json:"role" binding:"max=64"`
	Summary    string         `json:"summary"`
	Attributes datatypes.JSON `json:"attributes"`
}

// CreateCharacter handles POST /api/projects/:id/kit/characters.
func (h *NovelKitHandler) CreateCharacter(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	projectID, ok := ownedProjectID(c, h.db, accountID)
	if !ok {
		return
	}
	var req createCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entity := &model.StoryCharacter{
		ProjectID:  projectID,
		Name:       req.Name,
		Role:       req.Role,
		Summary:    req.Summary,
		Attributes: req.Attributes,
	}
	h.create(c, entity)
}

type createLocationRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=120"`
	Description string `json:"description"`
}

// CreateLocation handles POST /api/projects/:id/kit/locations.
func (h *NovelKitHandler) CreateLocation(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	projectID, ok := ownedProjectID(c, h.db, accountID)
	if !ok {
		return
	}
	var req createLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.create(c, &model.Location{
		ProjectID:   projectID,
		Name:        req.Name,
		Description: req.Description,
	})
}

type createSceneRequest struct {
	Title    string `json:"title" binding:"required,min=1,max=200"`
	Synopsis string `json:"synopsis"`
	Position int    `json:"position"`
}

// CreateScene handles POST /api/projects/:id/kit/scenes.
func (h *NovelKitHandler) CreateScene(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	projectID, ok := ownedProjectID(c, h.db, accountID)
	if !ok {
		return
	}
	var req createSceneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.create(c, &model.SceneCard{
		ProjectID: projectID,
		Title:     req.Title,
		Synopsis:  req.Synopsis,
		Position:  req.Position,
	})
}

type createBeatRequest struct {
	Name     string         `json:"name" binding:"required,min=1,max=120"`
	Act      int            `json:"act" binding:"omitempty,min=1,max=9"`
	Details  datatypes.JSON `json:"details"`
	Position int            `json:"position"`
}

// CreateBeat handles POST /api/projects/:id/kit/beats.
func (h *NovelKitHandler) CreateBeat(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	projectID, ok := ownedProjectID(c, h.db, accountID)
	if !ok {
		return
	}
	var req createBeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Act == 0 {
		req.Act = 1
	}
	h.create(c, &model.PlotBeat{
		ProjectID: projectID,
		Name:      req.Name,
		Act:       req.Act,
		Details:   req.Details,
		Position:  req.Position,
	})
}

type createElementRequest struct {
	Kind string `json:"kind" binding:"max=64"`
	Name string `json:"name" binding:"required,min=1,max=120"`
	Body string `json:"body"`
}

// CreateElement handles POST /api/projects/:id/kit/elements.
func (h *NovelKitHandler) CreateElement(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	projectID, ok := ownedProjectID(c, h.db, accountID)
	if !ok {
		return
	}
	var req createElementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.create(c, &model.WorldElement{
		ProjectID: projectID,
		Kind:      req.Kind,
		Name:      req.Name,
		Body:      req.Body,
	})
}

type createTimelineRequest struct {
	Title    string `json:"title" binding:"required,min=1,max=200"`
	When     string `json:"when" binding:"max=120"`
	Notes    string `json:"notes"`
	Position int    `json:"position"`
}

// CreateTimelineEvent handles POST /api/projects/:id/kit/timeline.
func (h *NovelKitHandler) CreateTimelineEvent(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	projectID, ok := ownedProjectID(c, h.db, accountID)
	if !ok {
		return
	}
	var req createTimelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.create(c, &model.TimelineEvent{
		ProjectID: projectID,
		Title:     req.Title,
		When:      req.When,
		Notes:     req.Notes,
		Position:  req.Position,
	})
}

// List handles GET /api/projects/:id/kit. Returns all kit entities for
// the project, grouped by kind.
func (h *NovelKitHandler) List(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	projectID, ok := ownedProjectID(c, h.db, accountID)
	if !ok {
		return
	}

	var (
		characters []model.StoryCharacter
		locations  []model.Location
		scenes     []model.SceneCard
		beats      []model.PlotBeat
		elements   []model.WorldElement
		timeline   []model.TimelineEvent
	)
	for _, dst := range []interface{}{&characters, &locations, &scenes, &beats, &elements, &timeline} {
		if err := h.db.Where("project_id = ?", projectID).Order("id ASC").Find(dst).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"characters": characters,
		"locations":  locations,
		"scenes":     scenes,
		"beats":      beats,
		"elements":   elements,
		"timeline":   timeline,
	})
}

// Delete handles DELETE /api/kit/:kind/:id.
func (h *NovelKitHandler) Delete(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var entity interface{}
	var table string
	switch c.Param("kind") {
	case "characters":
		entity, table = &model.StoryCharacter{}, "story_characters"
	case "locations":
		entity, table = &model.Location{}, "locations"
	case "scenes":
		entity, table = &model.SceneCard{}, "scene_cards"
	case "beats":
		entity, table = &model.PlotBeat{}, "plot_beats"
	case "elements":
		entity, table = &model.WorldElement{}, "world_elements"
	case "timeline":
		entity, table = &model.TimelineEvent{}, "timeline_events"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown kind"})
		return
	}

	res := h.db.Where(
		"id = ? AND project_id IN (SELECT id FROM projects WHERE account_id = ?)",
		id, accountID,
	).Table(table).Delete(entity)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *NovelKitHandler) create(c *gin.Context, entity interface{}) {
	if err := h.db.Create(entity).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry": entity})
}
