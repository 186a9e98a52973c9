package rest_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pagebound/inkdesk/achievement"
	"github.com/pagebound/inkdesk/api/rest"
	"github.com/pagebound/inkdesk/audit"
	"github.com/pagebound/inkdesk/cache"
	"github.com/pagebound/inkdesk/config"
	mw "github.com/pagebound/inkdesk/middleware"
	"github.com/pagebound/inkdesk/notify"
	"github.com/pagebound/inkdesk/scheduler"
	"github.com/pagebound/inkdesk/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testAdminKey = "test-admin-key"

// testEnv wires the full route table against an in-memory database, the
// way main wires it in production.
type testEnv struct {
	r     *gin.Engine
	db    *gorm.DB
	cache cache.Cache
	ps    cache.PubSub
	token string
	id    int64 // account id of the logged-in writer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	c, ps := testutil.SetupTestCache(t)
	log := zap.NewNop()
	sec := config.SecurityConfig{JWTSecret: "test-secret", JWTTTLH: time.Hour}
	board := config.BoardConfig{MaxProjectsPerWriter: 8, MaxTicketsPerProject: 50}

	auditSvc := audit.New(db, log)
	t.Cleanup(func() { auditSvc.Stop(nil) })
	sched := scheduler.New(log)
	t.Cleanup(sched.Stop)

	catalog := achievement.DefaultCatalog()
	ledger := achievement.NewLedger(db, log)
	notifier := notify.NewService(db, ps, ledger, catalog, log)
	achSvc := achievement.NewService(catalog, ledger, db, notifier, log)

	authH := rest.NewAuthHandler(db, c, sec)
	projectH := rest.NewProjectHandler(db, auditSvc, board)
	ticketH := rest.NewTicketHandler(db, auditSvc, board)
	manuscriptH := rest.NewManuscriptHandler(db)
	kitH := rest.NewNovelKitHandler(db)
	sessionH := rest.NewSessionHandler(db)
	achH := rest.NewAchievementHandler(achSvc, auditSvc)
	notifyH := rest.NewNotificationHandler(db)
	adminH := rest.NewAdminHandler(db, sched, log)

	r := gin.New()
	r.POST("/api/auth/login", authH.Login)

	authed := r.Group("/api", mw.Auth(sec, c))
	{
		authed.POST("/auth/logout", authH.Logout)
		authed.POST("/auth/refresh", authH.Refresh)

		authed.POST("/projects", projectH.Create)
		authed.GET("/projects", projectH.List)
		authed.GET("/projects/:id", projectH.Get)
		authed.PUT("/projects/:id", projectH.Update)
		authed.DELETE("/projects/:id", projectH.Delete)

		authed.POST("/projects/:id/tickets", ticketH.Create)
		authed.GET("/projects/:id/tickets", ticketH.List)
		authed.PUT("/tickets/:id", ticketH.Update)
		authed.POST("/tickets/:id/move", ticketH.Move)
		authed.DELETE("/tickets/:id", ticketH.Delete)

		authed.POST("/projects/:id/manuscripts", manuscriptH.Create)
		authed.GET("/projects/:id/manuscripts", manuscriptH.List)
		authed.GET("/manuscripts/:id", manuscriptH.Get)
		authed.PUT("/manuscripts/:id", manuscriptH.Update)
		authed.DELETE("/manuscripts/:id", manuscriptH.Delete)

		authed.GET("/projects/:id/kit", kitH.List)
		authed.POST("/projects/:id/kit/characters", kitH.CreateCharacter)
		authed.POST("/projects/:id/kit/locations", kitH.CreateLocation)
		authed.POST("/projects/:id/kit/scenes", kitH.CreateScene)
		authed.POST("/projects/:id/kit/beats", kitH.CreateBeat)
		authed.POST("/projects/:id/kit/elements", kitH.CreateElement)
		authed.POST("/projects/:id/kit/timeline", kitH.CreateTimelineEvent)
		authed.DELETE("/kit/:kind/:id", kitH.Delete)

		authed.POST("/projects/:id/sessions", sessionH.Record)
		authed.GET("/projects/:id/sessions", sessionH.List)

		authed.GET("/achievements", achH.Catalog)
		authed.GET("/achievements/progress", achH.Progress)
		authed.POST("/achievements/unlock", achH.Unlock)
		authed.GET("/achievements/unlocked", achH.ListUnlocked)

		authed.GET("/notifications", notifyH.List)
		authed.POST("/notifications/:id/read", notifyH.MarkRead)
		authed.POST("/notifications/read-all", notifyH.MarkAllRead)
	}

	admin := r.Group("/api/admin", rest.AdminAuth(testAdminKey))
	{
		admin.GET("/metrics", adminH.Metrics)
		admin.GET("/accounts", adminH.ListAccounts)
		admin.POST("/accounts/:id/ban", adminH.BanAccount)
		admin.GET("/audit", adminH.AuditTrail)
		admin.GET("/scheduler", adminH.ListSchedulerTasks)
	}

	env := &testEnv{r: r, db: db, cache: c, ps: ps}

	// Log in a default writer.
	w := postJSON(r, "/api/auth/login", map[string]string{"username": "tester", "password": "pass1234"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Token     string `json:"token"`
		AccountID int64  `json:"account_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	env.token = resp.Token
	env.id = resp.AccountID
	return env
}

func (e *testEnv) auth() []string {
	return []string{"Authorization", "Bearer " + e.token}
}

func (e *testEnv) post(path string, body interface{}) *httptest.ResponseRecorder {
	return postJSON(e.r, path, body, e.auth()...)
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	return getJSON(e.r, path, e.auth()...)
}

func (e *testEnv) put(path string, body interface{}) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func (e *testEnv) delete(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodDelete, path, nil)
	req.Header.Set("Authorization", "Bearer "+e.token)
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

// createProject makes a project through the API and returns its id.
func (e *testEnv) createProject(t *testing.T, title string) int64 {
	t.Helper()
	w := e.post("/api/projects", map[string]interface{}{"title": title})
	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Project struct {
			ID int64 `json:"id"`
		} `json:"project"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Project.ID
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst))
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
