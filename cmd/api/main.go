package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"balotera-backend/internal/config"
	"balotera-backend/internal/handlers"
	"balotera-backend/internal/middleware"
	"balotera-backend/internal/services"
	"balotera-backend/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}
	if cfg.Env == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	redisStore, err := store.NewRedisStore(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisStore.Close()

	var st store.Store = redisStore
	if cfg.SnapshotPath != "" {
		st = store.NewFallbackStore(redisStore, store.NewSnapshotStore(cfg.SnapshotPath))
	}

	jwtService := services.NewJWTService(cfg)
	authService := services.NewAuthService(st, jwtService)
	lotteryService := services.NewLotteryService(st)
	rouletteService := services.NewRouletteService(st)
	fruitService := services.NewFruitService(st)
	forexService := services.NewForexService(st)
	adminService := services.NewAdminService(st)

	wsHandler := handlers.NewWebSocketHandler(lotteryService)
	crashService := services.NewCrashService(st, wsHandler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine := services.NewSettlementEngine(st)
	go engine.Run(ctx)

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			crashService.CleanupStale(10 * time.Minute)
		}
	}()

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(authService)
	lotteryHandler := handlers.NewLotteryHandler(lotteryService)
	gamesHandler := handlers.NewGamesHandler(rouletteService, fruitService, crashService, forexService)
	adminHandler := handlers.NewAdminHandler(adminService, st)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	{
		protected.GET("/me", userHandler.GetCurrentUser)
		protected.POST("/notice/seen", userHandler.MarkNoticeSeen)

		protected.GET("/ws", wsHandler.HandleWebSocket)

		lottery := protected.Group("/lottery")
		{
			lottery.GET("/draw", lotteryHandler.GetDraw)
			lottery.POST("/bet", lotteryHandler.PlaceBet)
			lottery.GET("/pending", lotteryHandler.GetPending)
			lottery.GET("/history", lotteryHandler.GetHistory)
		}

		roulette := protected.Group("/roulette")
		{
			roulette.POST("/spin", gamesHandler.SpinRoulette)
			roulette.GET("/history", gamesHandler.RouletteHistory)
		}

		fruit := protected.Group("/fruit")
		{
			fruit.GET("/board", gamesHandler.FruitBoard)
			fruit.POST("/spin", gamesHandler.SpinFruit)
			fruit.GET("/history", gamesHandler.FruitHistory)
		}

		crash := protected.Group("/crash")
		{
			crash.POST("/bet", gamesHandler.CrashBet)
			crash.POST("/cashout", gamesHandler.CrashCashout)
			crash.GET("/history", gamesHandler.CrashHistory)
		}

		eurusd := protected.Group("/eurusd")
		{
			eurusd.GET("/market", gamesHandler.ForexMarket)
			eurusd.POST("/bet", gamesHandler.ForexBet)
			eurusd.GET("/history", gamesHandler.ForexHistory)
		}

		admin := protected.Group("/admin")
		admin.Use(middleware.AdminOnly())
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.POST("/balance", adminHandler.AdjustBalance)
			admin.POST("/password", adminHandler.SetPassword)
			admin.POST("/register-toggle", adminHandler.ToggleRegister)
			admin.DELETE("/users/:id", adminHandler.DeleteUser)
		}
	}

	logrus.WithField("port", cfg.Port).Info("Server starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		logrus.WithError(err).Fatal("Failed to start server")
	}
}
