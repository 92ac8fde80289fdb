package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dugout/internal/auth"
	"dugout/internal/client/groupme"
	"dugout/internal/client/ics"
	"dugout/internal/client/sheets"
	"dugout/internal/client/weather"
	"dugout/internal/config"
	cronrunner "dugout/internal/cron"
	"dugout/internal/db"
	"dugout/internal/dispatcher"
	"dugout/internal/facts"
	"dugout/internal/handler"
	"dugout/internal/logger"
	"dugout/internal/parser"
	"dugout/internal/reminder"
	"dugout/internal/schedule"
	"dugout/internal/store"
)

func main() {
	cfgPath := os.Getenv("DUGOUT_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("DUGOUT_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// The database is optional. Without one, moderators live in a flat
	// file and nothing else persists.
	var dbConn *db.DB
	if cfg.DB.DSN != "" {
		dbConn, err = db.Open(cfg.DB)
		if err != nil {
			logger.Fatal("db open failed", zap.Error(err))
		}
		defer db.Close(dbConn)
		if err := db.AutoMigrate(dbConn); err != nil {
			logger.Fatal("auto-migrate failed", zap.Error(err))
		}
	}

	var moderators store.ModeratorStore
	if dbConn != nil {
		moderators = store.NewGormStore(dbConn)
	} else {
		fileStore, err := store.NewFileStore("data/moderators.json")
		if err != nil {
			logger.Fatal("moderator store init failed", zap.Error(err))
		}
		moderators = fileStore
	}

	var account *auth.ServiceAccount
	if cfg.Sheets.ServiceAccountJSON != "" {
		account, err = auth.Load(cfg.Sheets.ServiceAccountJSON, &http.Client{Timeout: cfg.Sheets.Timeout})
		if err != nil {
			logger.Fatal("service account load failed", zap.Error(err))
		}
	}

	sheetsClient := sheets.NewClient(&http.Client{Timeout: cfg.Sheets.Timeout},
		cfg.Sheets.BaseURL, cfg.Sheets.SpreadsheetID, cfg.Sheets.APIKey, account)
	icsClient := ics.NewClient(&http.Client{Timeout: cfg.Calendar.Timeout},
		cfg.Calendar.ICSURL, logger)
	groupmeClient := groupme.NewClient(&http.Client{Timeout: cfg.GroupMe.Timeout},
		cfg.GroupMe.BaseURL, cfg.GroupMe.BotID, cfg.GroupMe.AccessToken, cfg.GroupMe.GroupID)

	timeline := &schedule.Correlator{
		Roster:   sheetsClient,
		Calendar: icsClient,
		TeamName: cfg.Team.Name,
		Logger:   logger,
	}

	factProvider := facts.NewProvider(cfg.Team.Name, cfg.Team.Emoji,
		cfg.Facts.Enabled, cfg.Facts.File, logger)

	var forecaster *weather.Client
	if cfg.Weather.Enabled {
		forecaster = weather.NewClient(&http.Client{Timeout: cfg.Weather.Timeout})
	}

	disp := &dispatcher.Dispatcher{
		Timeline:    timeline,
		Roster:      sheetsClient,
		Messages:    groupmeClient,
		Moderators:  moderators,
		Facts:       factProvider,
		TeamName:    cfg.Team.Name,
		TeamEmoji:   cfg.Team.Emoji,
		BotName:     cfg.GroupMe.BotName,
		AdminUserID: cfg.Team.AdminUserID,
		Logger:      logger,
	}
	if forecaster != nil {
		disp.Weather = forecaster
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(handler.RequestIDMiddleware())

	healthHandler := &handler.HealthHandler{}
	if dbConn != nil {
		healthHandler.DB = dbConn.Gorm
	}
	healthHandler.Register(engine)

	webhookHandler := &handler.WebhookHandler{
		Parser:     parser.New(cfg.GroupMe.BotName, cfg.Team.Name),
		Dispatcher: disp,
		Sender:     groupmeClient,
		Logger:     logger,
	}
	webhookHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Reminder.Enabled {
		sched := &reminder.Scheduler{
			Timeline:  timeline,
			Sender:    groupmeClient,
			Facts:     factProvider,
			TeamName:  cfg.Team.Name,
			TeamEmoji: cfg.Team.Emoji,
			StartHour: cfg.Reminder.StartHour,
			EndHour:   cfg.Reminder.EndHour,
			Logger:    logger,
		}
		if forecaster != nil {
			sched.Weather = forecaster
		}
		if dbConn != nil {
			sched.Audit = store.NewReminderAudit(dbConn)
		}
		if _, err := cronRunner.Add(cfg.Reminder.Interval, func(ctx context.Context) {
			if err := sched.Tick(ctx); err != nil {
				logger.Warn("reminder tick failed", zap.Error(err))
			}
		}); err != nil {
			logger.Fatal("cron register reminder failed", zap.Error(err))
		}
		logger.Info("reminder scheduler registered",
			zap.String("interval", cfg.Reminder.Interval),
			zap.Int("start_hour", cfg.Reminder.StartHour),
			zap.Int("end_hour", cfg.Reminder.EndHour))
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
