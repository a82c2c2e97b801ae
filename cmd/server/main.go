package main

import (
	"log"
	"strings"

	"github.com/Kromaric/workshop-2025-2026-epsi/internal/config"
	"github.com/Kromaric/workshop-2025-2026-epsi/internal/database"
	"github.com/Kromaric/workshop-2025-2026-epsi/internal/game"
	"github.com/Kromaric/workshop-2025-2026-epsi/internal/handlers"
	"github.com/Kromaric/workshop-2025-2026-epsi/internal/middleware"
	"github.com/Kromaric/workshop-2025-2026-epsi/internal/services"
	"github.com/Kromaric/workshop-2025-2026-epsi/internal/store"
	"github.com/Kromaric/workshop-2025-2026-epsi/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	db := database.Connect(cfg)
	database.AutoMigrate(db)

	gateway := store.NewStore(db)
	if err := gateway.ResetLiveness(); err != nil {
		log.Printf("failed to reset player liveness: %v", err)
	}

	hub := ws.NewHub(gateway)
	manager := game.NewStateManager(gateway, hub, game.DefaultRoster)
	engine := game.NewEngine(manager)

	authService := services.NewAuthService(db, cfg.JWTSecret)

	authHandler := handlers.NewAuthHandler(authService)
	adminHandler := handlers.NewAdminHandler(gateway)
	wsHandler := handlers.NewGameWSHandler(hub, manager, engine)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.AllowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Escape Game Museum - API"})
	})
	r.GET("/ws/:team_id/:player_id", wsHandler.HandleWebSocket)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.JWTAuth(authService))
		{
			admin.GET("/teams", adminHandler.ListTeams)
			admin.GET("/teams/:id", adminHandler.GetTeam)
			admin.DELETE("/teams/:id", adminHandler.DeleteTeam)
			admin.POST("/teams/:id/reset", adminHandler.ResetTeam)
			admin.GET("/leaderboard", adminHandler.Leaderboard)
			admin.GET("/stats/global", adminHandler.Stats)
			admin.GET("/messages/:team_id", adminHandler.TeamMessages)
		}
	}

	log.Printf("server starting on :%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
