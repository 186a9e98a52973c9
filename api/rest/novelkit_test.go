package rest_test

import (
	"net/http"
	"testing"

	"github.com/pagebound/inkdesk/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNovelKitCreateAndList(t *testing.T) {
	env := newTestEnv(t)
	projectID := env.createProject(t, "Novel")
	base := "/api/projects/" + itoa(projectID) + "/kit"

	w := env.post(base+"/characters", map[string]interface{}{
		"name": "Mara", "role": "protagonist",
		"attributes": map[string]interface{}{"age": 34},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.post(base+"/locations", map[string]string{"name": "The Lighthouse"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.post(base+"/scenes", map[string]interface{}{"title": "Storm landing", "position": 1})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.post(base+"/beats", map[string]interface{}{"name": "Midpoint", "act": 2})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.post(base+"/elements", map[string]string{"kind": "faction", "name": "Harbor Guild"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.post(base+"/timeline", map[string]string{"title": "The flood", "when": "ten years before"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.get(base)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Characters []model.StoryCharacter `json:"characters"`
		Locations  []model.Location       `json:"locations"`
		Scenes     []model.SceneCard      `json:"scenes"`
		Beats      []model.PlotBeat       `json:"beats"`
		Elements   []model.WorldElement   `json:"elements"`
		Timeline   []model.TimelineEvent  `json:"timeline"`
	}
	decodeJSON(t, w, &resp)
	assert.Len(t, resp.Characters, 1)
	assert.Len(t, resp.Locations, 1)
	assert.Len(t, resp.Scenes, 1)
	assert.Len(t, resp.Beats, 1)
	assert.Len(t, resp.Elements, 1)
	assert.Len(t, resp.Timeline, 1)
	assert.Equal(t, "Mara", resp.Characters[0].Name)
}

func TestNovelKitCreate_MissingName(t *testing.T) {
	env := newTestEnv(t)
	projectID := env.createProject(t, "Novel")

	w := env.post("/api/projects/"+itoa(projectID)+"/kit/characters", map[string]string{"role": "villain"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNovelKitDelete(t *testing.T) {
	env := newTestEnv(t)
	projectID := env.createProject(t, "Novel")

	w := env.post("/api/projects/"+itoa(projectID)+"/kit/locations", map[string]string{"name": "Old Mill"})
	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Entry model.Location `json:"entry"`
	}
	decodeJSON(t, w, &resp)

	w = env.delete("/api/kit/locations/" + itoa(resp.Entry.ID))
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	env.db.Model(&model.Location{}).Where("project_id = ?", projectID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestNovelKitDelete_UnknownKind(t *testing.T) {
	env := newTestEnv(t)
	w := env.delete("/api/kit/artifacts/1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNovelKitDelete_OtherWritersEntry(t *testing.T) {
	env := newTestEnv(t)
	projectID := env.createProject(t, "Novel")

	w := env.post("/api/projects/"+itoa(projectID)+"/kit/locations", map[string]string{"name": "Keep Out"})
	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Entry model.Location `json:"entry"`
	}
	decodeJSON(t, w, &resp)

	w = postJSON(env.r, "/api/auth/login", map[string]string{"username": "rival2", "password": "pass1234"})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Token string `json:"token"`
	}
	decodeJSON(t, w, &login)

	rival := &testEnv{r: env.r, db: env.db, token: login.Token}
	w2 := rival.delete("/api/kit/locations/" + itoa(resp.Entry.ID))
	assert.Equal(t, http.StatusNotFound, w2.Code)
}
