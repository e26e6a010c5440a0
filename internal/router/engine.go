package router

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gimenezlucas594-sudo/stocking-app/pkg/global"
)

var Router *gin.Engine

func InitEngine() {
	if os.Getenv("ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	Router = gin.Default()

	origins := strings.Split(global.GetEnvOrDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"), ",")
	Router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

func InitializeRoutes(h *Handler) {
	api := Router.Group("/api")
	{
		api.GET("/health", h.HealthCheck)

		register := api.Group("/register")
		register.Use(AuthTokenMiddleware())
		{
			register.POST("/", h.OpenRegister)
			register.GET("/:sessionId", h.GetRegister)
			register.POST("/:sessionId/scan", h.ScanProduct)
			register.POST("/:sessionId/lines", h.AddLine)
			register.PUT("/:sessionId/lines/:productId", h.UpdateLine)
			register.DELETE("/:sessionId/lines/:productId", h.RemoveLine)
			register.DELETE("/:sessionId/lines", h.ClearCart)
			register.PUT("/:sessionId/tender", h.SelectTender)
			register.PUT("/:sessionId/tender/amounts", h.SetTenderAmount)
			register.POST("/:sessionId/checkout", h.Checkout)
			register.POST("/:sessionId/catalog", h.RefreshCatalog)
		}

		sales := api.Group("/sales")
		sales.Use(AuthTokenMiddleware())
		{
			sales.GET("/", h.ListSales)
		}
	}
}
