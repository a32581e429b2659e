package api

import (
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openspace/seating-engine/internal/db"
	"github.com/openspace/seating-engine/internal/solver"
)

// SetupRouter wires the HTTP surface: CORS, per-IP rate limiting, bearer
// auth on the API group, and the arrangement endpoints. dbStore may be nil
// (degraded mode without persistence); the hub must not be.
func SetupRouter(dbStore *db.PostgresStore, wsHub *Hub, budget solver.Options) *gin.Engine {
	r := gin.Default()

	// CORS — configurable via ALLOWED_ORIGINS env var.
	// Production: ALLOWED_ORIGINS=https://seating.example.com
	// Development: leave empty for *
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	handler := &APIHandler{dbStore: dbStore, wsHub: wsHub, budget: budget}
	limiter := NewRateLimiter(30, 10)

	api := r.Group("/api/v1")
	api.Use(limiter.Middleware())
	{
		// Public endpoints: health probe and the event stream.
		api.GET("/health", handler.handleHealth)
		api.GET("/stream", wsHub.Subscribe)

		protected := api.Group("")
		protected.Use(AuthMiddleware())
		{
			protected.POST("/arrangements", handler.handleCreateArrangement)
			protected.GET("/arrangements", handler.handleListArrangements)
			protected.GET("/arrangements/:id", handler.handleGetArrangement)
			protected.GET("/arrangements/:id/download", handler.handleDownloadArrangement)
			protected.DELETE("/arrangements/:id", handler.handleDeleteArrangement)
		}
	}

	return r
}
