package main

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/rcoelho/event-staffing-api/pkg/auth"
	"github.com/rcoelho/event-staffing-api/pkg/database"
	"github.com/rcoelho/event-staffing-api/pkg/handlers"
)

func main() {
	// Load .env if it exists
	// Try root and parent directories for flexibility
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if os.Getenv("LOG_LEVEL") == "debug" {
		log.SetLevel(logrus.DebugLevel)
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	db := database.InitDB()
	_ = auth.EnsureOperatorExists(db)
	h := handlers.NewHandler(db, logrus.NewEntry(log))

	r := gin.Default()

	// Operator console - static files from embedded FS
	r.StaticFS("/static", h.GetStaticFS())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Event Staffing API",
			"version": "1.3.0",
		})
	})

	r.GET("/admin", h.AdminInterface)
	r.POST("/admin/login", h.Login)

	// Admin Endpoints
	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
	}

	// Import Pipeline Endpoints
	api := r.Group("/api")
	api.Use(h.APIKeyMiddleware())
	{
		api.POST("/validate", h.ValidateRows)

		api.POST("/imports", h.CreatePipeline)
		api.GET("/imports/:id", h.GetPipeline)
		api.DELETE("/imports/:id", h.DeletePipeline)
		api.POST("/imports/:id/shifts", h.SelectShifts)
		api.POST("/imports/:id/upload", h.UploadDataset)
		api.POST("/imports/:id/advance", h.AdvancePipeline)
		api.POST("/imports/:id/back", h.BackPipeline)
		api.POST("/imports/:id/creation/start", h.StartCreation)
		api.POST("/imports/:id/creation/cancel", h.CancelCreation)
		api.POST("/imports/:id/verify", h.VerifyPipeline)
		api.POST("/imports/:id/import/start", h.StartImport)
		api.GET("/imports/:id/summary", h.GetSummary)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	log.WithField("port", port).Info("server starting")
	if err := r.Run(":" + port); err != nil {
		log.WithError(err).Fatal("could not run server")
	}
}
