package router

import (
	"github.com/RomanDaru/otazkomat/internal/config"
	"github.com/RomanDaru/otazkomat/internal/handlers"
	"github.com/RomanDaru/otazkomat/internal/middleware"
	"github.com/RomanDaru/otazkomat/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func RegisterRoutes(r *gin.Engine, gdb *gorm.DB, cfg config.Config) {
	// Services
	voteService := services.NewVoteService(gdb)
	askService := services.NewAskService(gdb, voteService, services.NewLLMService(cfg))

	// Handlers
	askHandler := handlers.NewAskHandler(askService)
	voteHandler := handlers.NewVoteHandler(voteService)
	historyHandler := handlers.NewHistoryHandler(gdb)
	trendingHandler := handlers.NewTrendingHandler(gdb)
	authHandler := handlers.NewAuthHandler(gdb, cfg)

	// Middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.LoadUser(gdb))

	// API (JSON)
	api := r.Group("/api")
	api.POST("/ask", askHandler.Ask)         // submit question, get answer
	api.GET("/trending", trendingHandler.List) // today's trending questions

	authorized := api.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/history", historyHandler.List) // caller's question history
		authorized.GET("/vote", voteHandler.Get)        // caller's existing vote
		authorized.POST("/vote", voteHandler.Cast)      // cast/overwrite vote
		authorized.GET("/me", authHandler.Me)
	}

	// Auth (identity provider flow + classic accounts)
	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/logout", authHandler.Logout)
		auth.GET("/google", authHandler.GoogleLogin)
		auth.GET("/google/callback", authHandler.GoogleCallback)
	}
}
