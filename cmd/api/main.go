// cmd/api/main.go
package main

import (
	"card-assistant/internal/amount"
	"card-assistant/internal/auth"
	"card-assistant/internal/checkout"
	"card-assistant/internal/config"
	"card-assistant/internal/handler"
	"card-assistant/internal/merchant"
	"card-assistant/internal/middleware"
	"card-assistant/internal/notify"
	"card-assistant/internal/reward"
	"card-assistant/internal/savings"
	"card-assistant/internal/session"
	"card-assistant/internal/storage"
	"card-assistant/internal/storage/postgres"
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	_ = godotenv.Load()
	cfg := config.MustLoad()

	pool, err := pgxpool.New(context.Background(), cfg.DBConn)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	store := storage.NewStore(postgres.NewKV(pool))
	resolver := merchant.NewResolver()
	classifier := checkout.NewClassifier(resolver)
	estimator := amount.NewEstimator(store)
	engine := reward.NewEngine()
	tracker := savings.NewTracker(store)

	var surface session.Surface = notify.LogSurface{}
	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegramSurface(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			slog.Error("telegram surface init failed", "error", err)
			os.Exit(1)
		}
		surface = tg
		slog.Info("telegram notifications enabled", "chat_id", cfg.TelegramChatID)
	}

	opts := session.Options{
		PollInterval:  cfg.PollInterval,
		URLCheckEvery: cfg.URLCheckEvery,
		RecheckDelay:  cfg.URLCheckEvery,
		Cooldown:      cfg.SurfaceCooldown,
	}
	manager := session.NewManager(context.Background(), func(id string) *session.Controller {
		return session.NewController(id, store, resolver, classifier, estimator, engine, surface, opts)
	})
	defer manager.CloseAll()

	tokenService := auth.NewTokenService(cfg)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/api/v1/login", func(c *gin.Context) {
		var req struct {
			UserID int64 `json:"user_id" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
			return
		}
		token, err := tokenService.GenerateToken(req.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	})

	cardsHandler := handler.NewCardsHandler(store)
	settingsHandler := handler.NewSettingsHandler(store)
	transactionsHandler := handler.NewTransactionsHandler(store, tracker, engine)
	recommendHandler := handler.NewRecommendHandler(store, resolver, classifier, estimator, engine)
	sessionHandler := handler.NewSessionHandler(manager)
	merchantsHandler := handler.NewMerchantsHandler(resolver)

	authMiddleware := middleware.NewAuthMiddleware(tokenService)
	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware.RequireAuth())
	{
		v1.GET("/cards", cardsHandler.ListCards)
		v1.PUT("/cards", cardsHandler.SaveCard)
		v1.DELETE("/cards/:id", cardsHandler.DeleteCard)
		v1.POST("/cards/reset-caps", cardsHandler.ResetCaps)

		v1.GET("/settings", settingsHandler.GetSettings)
		v1.PUT("/settings", settingsHandler.UpdateSettings)

		v1.GET("/transactions", transactionsHandler.ListTransactions)
		v1.POST("/transactions", transactionsHandler.LogTransaction)
		v1.GET("/savings", transactionsHandler.SavingsStats)
		v1.GET("/savings/current", transactionsHandler.CurrentMonthSavings)

		v1.GET("/merchants", merchantsHandler.ListMerchants)
		v1.POST("/merchants", merchantsHandler.AddMerchant)

		v1.POST("/recommend", recommendHandler.Recommend)

		v1.PUT("/sessions/:id/page", sessionHandler.UpdatePage)
		v1.GET("/sessions/:id/recommendation", sessionHandler.Recommendation)
		v1.POST("/sessions/:id/dismiss", sessionHandler.Dismiss)
		v1.DELETE("/sessions/:id", sessionHandler.Close)
	}

	slog.Info("server started", "addr", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		slog.Error("server exited with error", "error", err)
	}
}
