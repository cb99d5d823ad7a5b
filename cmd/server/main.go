package main

import (
	"log"
	"net/http"

	"github.com/RomanDaru/otazkomat/internal/config"
	"github.com/RomanDaru/otazkomat/internal/db"
	"github.com/RomanDaru/otazkomat/internal/middleware"
	"github.com/RomanDaru/otazkomat/internal/router"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading config from environment")
	}

	cfg := config.Load()

	gdb, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	r := gin.Default()

	// Setup Sessions: login session plus the anonymous free-question marker.
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.SessionsMany([]string{middleware.SessionName, middleware.QuotaSessionName}, store))

	router.RegisterRoutes(r, gdb, cfg)

	log.Printf("Otazkomat server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
