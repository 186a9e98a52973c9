package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pagebound/inkdesk/achievement"
	apirest "github.com/pagebound/inkdesk/api/rest"
	"github.com/pagebound/inkdesk/api/sse"
	"github.com/pagebound/inkdesk/audit"
	"github.com/pagebound/inkdesk/cache"
	"github.com/pagebound/inkdesk/config"
	dbadapter "github.com/pagebound/inkdesk/db"
	mw "github.com/pagebound/inkdesk/middleware"
	"github.com/pagebound/inkdesk/model"
	"github.com/pagebound/inkdesk/notify"
	"github.com/pagebound/inkdesk/scheduler"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	// Warn loudly if admin endpoints will be disabled.
	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; admin endpoints are disabled")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized")

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(context.Background())

	// ---- Cache / PubSub ----
	cacheConfig := cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
		LocalPubSubBuf:  cfg.Cache.LocalPubSubBuf,
	}
	c, err := cache.NewCache(cacheConfig)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	pubsub, err := cache.NewPubSub(cacheConfig)
	if err != nil {
		log.Fatalf("pubsub: %v", err)
	}
	logger.Info("Cache initialized")

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()

	// ---- Achievement Engine ----
	catalog := achievement.DefaultCatalog()
	ledger := achievement.NewLedger(db, logger)
	notifySvc := notify.NewService(db, pubsub, ledger, catalog, logger)
	achSvc := achievement.NewService(catalog, ledger, db, notifySvc, logger)
	logger.Info("Achievement engine ready", zap.Int("definitions", catalog.Len()))

	// ---- Periodic Scheduler Tasks ----
	sched.AddTicker("notify_sweep", time.Duration(cfg.Board.NotifySweepS)*time.Second, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		notifySvc.Sweep(ctx)
	})

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	// Health check
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	// ---- REST API routes ----
	authH := apirest.NewAuthHandler(db, c, cfg.Security)
	projectH := apirest.NewProjectHandler(db, auditSvc, cfg.Board)
	ticketH := apirest.NewTicketHandler(db, auditSvc, cfg.Board)
	manuscriptH := apirest.NewManuscriptHandler(db)
	kitH := apirest.NewNovelKitHandler(db)
	sessionH := apirest.NewSessionHandler(db)
	achH := apirest.NewAchievementHandler(achSvc, auditSvc)
	notifyH := apirest.NewNotificationHandler(db)
	adminH := apirest.NewAdminHandler(db, sched, logger)

	api := r.Group("/api")
	{
		authG := api.Group("/auth")
		authG.POST("/login", authH.Login)
		authG.POST("/logout", mw.Auth(cfg.Security, c), authH.Logout)
		authG.POST("/refresh", mw.Auth(cfg.Security, c), authH.Refresh)

		authed := api.Group("")
		authed.Use(mw.Auth(cfg.Security, c))

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

		adminG := api.Group("/admin")
		adminG.Use(mw.IPWhitelist(cfg.Server.AdminIPs), apirest.AdminAuth(cfg.Server.AdminKey))
		adminG.GET("/metrics", adminH.Metrics)
		adminG.GET("/accounts", adminH.ListAccounts)
		adminG.POST("/accounts/:id/ban", adminH.BanAccount)
		adminG.GET("/audit", adminH.AuditTrail)
		adminG.GET("/scheduler", adminH.ListSchedulerTasks)
	}

	// ---- SSE ----
	sseH := sse.NewHandler(pubsub, c, cfg.Security, logger)
	r.GET("/sse", sseH.ServeSSE)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
