package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pagebound/inkdesk/achievement"
	apirest "github.com/pagebound/inkdesk/api/rest"
	"github.com/pagebound/inkdesk/api/sse"
	"github.com/pagebound/inkdesk/audit"
	"github.com/pagebound/inkdesk/cache"
	"github.com/pagebound/inkdesk/config"
	mw "github.com/pagebound/inkdesk/middleware"
	"github.com/pagebound/inkdesk/notify"
	"github.com/pagebound/inkdesk/scheduler"
	"github.com/pagebound/inkdesk/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const adminKey = "integration-admin-key"

// TestServer wraps a real HTTP server with all subsystems wired together.
type TestServer struct {
	DB     *gorm.DB
	Cache  cache.Cache
	PubSub cache.PubSub
	Notify *notify.Service
	Server *httptest.Server
	URL    string // http://127.0.0.1:<port>
	Sec    config.SecurityConfig
}

// NewTestServer creates a fully wired server for integration testing.
// It mirrors the dependency wiring in main.go.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// ---- Infrastructure ----
	db := testutil.SetupTestDB(t)
	c, pubsub := testutil.SetupTestCache(t)
	logger := zap.NewNop()

	sec := config.SecurityConfig{
		JWTSecret:      "integration-test-secret",
		JWTTTLH:        72 * time.Hour,
		RateLimitRPS:   1000,
		RateLimitBurst: 2000,
	}
	board := config.BoardConfig{
		MaxProjectsPerWriter: 16,
		MaxTicketsPerProject: 100,
	}

	auditSvc := audit.New(db, logger)
	t.Cleanup(func() { auditSvc.Stop(nil) })
	sched := scheduler.New(logger)
	t.Cleanup(sched.Stop)

	// ---- Achievement Engine ----
	catalog := achievement.DefaultCatalog()
	ledger := achievement.NewLedger(db, logger)
	notifySvc := notify.NewService(db, pubsub, ledger, catalog, logger)
	achSvc := achievement.NewService(catalog, ledger, db, notifySvc, logger)

	// ---- Handlers ----
	authH := apirest.NewAuthHandler(db, c, sec)
	projectH := apirest.NewProjectHandler(db, auditSvc, board)
	ticketH := apirest.NewTicketHandler(db, auditSvc, board)
	manuscriptH := apirest.NewManuscriptHandler(db)
	kitH := apirest.NewNovelKitHandler(db)
	sessionH := apirest.NewSessionHandler(db)
	achH := apirest.NewAchievementHandler(achSvc, auditSvc)
	notifyH := apirest.NewNotificationHandler(db)
	adminH := apirest.NewAdminHandler(db, sched, logger)
	sseH := sse.NewHandler(pubsub, c, sec, logger)

	r := gin.New()
	r.Use(mw.TraceID(), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(sec.RateLimitRPS), sec.RateLimitBurst))

	api := r.Group("/api")
	{
		api.POST("/auth/login", authH.Login)

		authed := api.Group("", mw.Auth(sec, c))
		authed.POST("/auth/logout", authH.Logout)
		authed.POST("/projects", projectH.Create)
		authed.GET("/projects", projectH.List)
		authed.GET("/projects/:id", projectH.Get)
		authed.PUT("/projects/:id", projectH.Update)
		authed.DELETE("/projects/:id", projectH.Delete)
		authed.POST("/projects/:id/tickets", ticketH.Create)
		authed.GET("/projects/:id/tickets", ticketH.List)
		authed.POST("/tickets/:id/move", ticketH.Move)
		authed.POST("/projects/:id/manuscripts", manuscriptH.Create)
		authed.PUT("/manuscripts/:id", manuscriptH.Update)
		authed.GET("/projects/:id/kit", kitH.List)
		authed.POST("/projects/:id/kit/characters", kitH.CreateCharacter)
		authed.POST("/projects/:id/kit/locations", kitH.CreateLocation)
		authed.POST("/projects/:id/sessions", sessionH.Record)
		authed.GET("/achievements", achH.Catalog)
		authed.GET("/achievements/progress", achH.Progress)
		authed.POST("/achievements/unlock", achH.Unlock)
		authed.GET("/achievements/unlocked", achH.ListUnlocked)
		authed.GET("/notifications", notifyH.List)

		adminG := api.Group("/admin", apirest.AdminAuth(adminKey))
		adminG.GET("/metrics", adminH.Metrics)
		adminG.POST("/accounts/:id/ban", adminH.BanAccount)
	}
	r.GET("/sse", sseH.ServeSSE)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &TestServer{
		DB:     db,
		Cache:  c,
		PubSub: pubsub,
		Notify: notifySvc,
		Server: srv,
		URL:    srv.URL,
		Sec:    sec,
	}
}

// Client is a thin HTTP client bound to one writer's token.
type Client struct {
	t     *testing.T
	base  string
	token string
	http  *http.Client
}

// Login registers/logs in a writer and returns a bound client.
func (ts *TestServer) Login(t *testing.T, username string) *Client {
	t.Helper()
	c := &Client{t: t, base: ts.URL, http: &http.Client{Timeout: 10 * time.Second}}
	status, body := c.Do(http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": "pass1234",
	})
	require.Equal(t, http.StatusOK, status, "login: %s", body)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	c.token = resp.Token
	return c
}

// Token returns the client's bearer token.
func (c *Client) Token() string { return c.token }

// Do sends a JSON request and returns status code and raw body.
func (c *Client) Do(method, path string, body interface{}) (int, []byte) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, data
}

// MustDo is Do plus a status assertion and JSON decode into dst (may be nil).
func (c *Client) MustDo(method, path string, body interface{}, wantStatus int, dst interface{}) {
	c.t.Helper()
	status, data := c.Do(method, path, body)
	require.Equal(c.t, wantStatus, status, "%s %s: %s", method, path, data)
	if dst != nil {
		require.NoError(c.t, json.Unmarshal(data, dst))
	}
}

// CreateProject makes a project and returns its id.
func (c *Client) CreateProject(title string) int64 {
	c.t.Helper()
	var resp struct {
		Project struct {
			ID int64 `json:"id"`
		} `json:"project"`
	}
	c.MustDo(http.MethodPost, "/api/projects", map[string]string{"title": title}, http.StatusCreated, &resp)
	return resp.Project.ID
}

func pathID(format string, ids ...int64) string {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return fmt.Sprintf(format, args...)
}
