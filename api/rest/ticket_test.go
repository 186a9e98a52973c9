package rest_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/pagebound/inkdesk/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTicket(t *testing.T, env *testEnv, projectID int64, taskType string) int64 {
	t.Helper()
	w := env.post("/api/projects/"+itoa(projectID)+"/tickets", map[string]interface{}{
		"title":     "work item",
		"task_type": taskType,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Ticket struct {
			ID int64 `json:"id"`
		} `json:"ticket"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Ticket.ID
}

func TestTicketCreate_DefaultsToGeneral(t *testing.T) {
	env := newTestEnv(t)
	projectID := env.createProject(t, "Novel")

	w := env.post("/api/projects/"+itoa(projectID)+"/tickets", map[string]interface{}{"title": "outline act 2"})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Ticket model.Ticket `json:"ticket"`
	}
	decodeJSON(t, w, &resp)
	assert.Equal(t, model.TaskTypeGeneral, resp.Ticket.TaskType)
	assert.Equal(t, model.TicketStatusTodo, resp.Ticket.Status)
}

func TestTicketCreate_InvalidType(t *testing.T) {
	env := newTestEnv(t)
	projectID := env.createProject(t, "Novel")

	w := env.post("/api/projects/"+itoa(projectID)+"/tickets", map[string]interface{}{
		"title":     "misc",
		"task_type": "epic",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTicketMove_ToDoneSetsDoneAt(t *testing.T) {
	env := newTestEnv(t)
	projectID := env.createProject(t, "Novel")
	ticketID := createTicket(t, env, projectID, model.TaskTypeChapter)

	w := env.post("/api/tickets/"+itoa(ticketID)+"/move", map[string]string{"status": "done"})
	require.Equal(t, http.StatusOK, w.Code)

	var ticket model.Ticket
	require.NoError(t, env.db.First(&ticket, ticketID).Error)
	assert.Equal(t, model.TicketStatusDone, ticket.Status)
	require.NotNil(t, ticket.DoneAt)
}

func TestTicketMove_DoneIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	projectID := env.createProject(t, "Novel")
	ticketID := createTicket(t, env, projectID, model.TaskTypeChapter)

	w := env.post("/api/tickets/"+itoa(ticketID)+"/move", map[string]string{"status": "done"})
	require.Equal(t, http.StatusOK, w.Code)

	// Any move away from done is rejected; chapter counts never go down.
	w = env.post("/api/tickets/"+itoa(ticketID)+"/move", map[string]string{"status": "doing"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTicketMove_InvalidStatus(t *testing.T) {
	env := newTestEnv(t)
	projectID := env.createProject(t, "Novel")
	ticketID := createTicket(t, env, projectID, model.TaskTypeGeneral)

	w := env.post("/api/tickets/"+itoa(ticketID)+"/move", map[string]string{"status": "blocked"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTicketUpdate_TypeLockedWhenDone(t *testing.T) {
	env := newTestEnv(t)
	projectID := env.createProject(t, "Novel")
	ticketID := createTicket(t, env, projectID, model.TaskTypeGeneral)

	w := env.post("/api/tickets/"+itoa(ticketID)+"/move", map[string]string{"status": "done"})
	require.Equal(t, http.StatusOK, w.Code)

	// Would retroactively inflate the chapter count.
	w = env.put("/api/tickets/"+itoa(ticketID), map[string]string{"task_type": "chapter"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTicketDelete_DoneProtected(t *testing.T) {
	env := newTestEnv(t)
	projectID := env.createProject(t, "Novel")
	ticketID := createTicket(t, env, projectID, model.TaskTypeGeneral)

	w := env.post("/api/tickets/"+itoa(ticketID)+"/move", map[string]string{"status": "done"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.delete("/api/tickets/" + itoa(ticketID))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTicketList_StatusFilter(t *testing.T) {
	env := newTestEnv(t)
	projectID := env.createProject(t, "Novel")
	a := createTicket(t, env, projectID, model.TaskTypeChapter)
	createTicket(t, env, projectID, model.TaskTypeScene)

	w := env.post("/api/tickets/"+itoa(a)+"/move", map[string]string{"status": "done"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.get("/api/projects/" + itoa(projectID) + "/tickets?status=done")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Tickets []model.Ticket `json:"tickets"`
	}
	decodeJSON(t, w, &resp)
	require.Len(t, resp.Tickets, 1)
	assert.Equal(t, a, resp.Tickets[0].ID)
}

func TestTicket_OtherWritersTicketHidden(t *testing.T) {
	env := newTestEnv(t)
	projectID := env.createProject(t, "Novel")
	ticketID := createTicket(t, env, projectID, model.TaskTypeGeneral)

	w := postJSON(env.r, "/api/auth/login", map[string]string{"username": "rival", "password": "pass1234"})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Token string `json:"token"`
	}
	decodeJSON(t, w, &login)

	rival := &testEnv{r: env.r, db: env.db, token: login.Token}
	w2 := rival.post("/api/tickets/"+itoa(ticketID)+"/move", map[string]string{"status": "doing"})
	assert.Equal(t, http.StatusNotFound, w2.Code)
}
