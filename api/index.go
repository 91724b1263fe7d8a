package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/rcoelho/event-staffing-api/pkg/auth"
	"github.com/rcoelho/event-staffing-api/pkg/database"
	"github.com/rcoelho/event-staffing-api/pkg/handlers"
)

var r *gin.Engine

func init() {
	// Load .env if it exists (for local testing with vercel dev)
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	db := database.InitDB()
	_ = auth.EnsureOperatorExists(db)
	h := handlers.NewHandler(db, logrus.NewEntry(log))

	gin.SetMode(gin.ReleaseMode)
	r = gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.StaticFS("/static", h.GetStaticFS())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Event Staffing API (Vercel)",
			"version": "1.3.0",
		})
	})

	r.GET("/admin", h.AdminInterface)
	r.POST("/admin/login", h.Login)

	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
	}

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
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
