// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/reorder-dashboard/internal/api/handlers"
	"github.com/andresuchdata/reorder-dashboard/internal/api/middleware"
	"github.com/andresuchdata/reorder-dashboard/internal/dashboard"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Services struct {
	Dashboard *dashboard.Controller
	// Gatherer backs /metrics. Nil uses the default registry.
	Gatherer prometheus.Gatherer
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", handlers.ExportLocationHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	checkOrigin := originChecker(defaultOrigins, false)
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
			checkOrigin = originChecker(nil, true)
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
			checkOrigin = originChecker(normalizedOrigins, false)
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now().UTC().Format(time.RFC3339)})
	})

	gatherer := prometheus.DefaultGatherer
	if services != nil && services.Gatherer != nil {
		gatherer = services.Gatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	apiGroup := router.Group("/api/v1")

	if services != nil && services.Dashboard != nil {
		dashboardHandler := handlers.NewDashboardHandler(services.Dashboard)
		{
			apiGroup.GET("/state", dashboardHandler.GetState)
			apiGroup.GET("/summary", dashboardHandler.GetSummary)
			apiGroup.POST("/reload", dashboardHandler.Reload)
			apiGroup.POST("/products", dashboardHandler.AddProduct)
			apiGroup.DELETE("/products/:id", dashboardHandler.DeleteProduct)
			apiGroup.POST("/orders", dashboardHandler.CreateOrder)
			apiGroup.POST("/simulation", dashboardHandler.RunSimulation)
			apiGroup.DELETE("/simulation", dashboardHandler.ClearSimulation)
			apiGroup.POST("/export", dashboardHandler.Export)
			apiGroup.PUT("/tab", dashboardHandler.SetTab)
			apiGroup.DELETE("/error", dashboardHandler.DismissError)
		}

		stream := handlers.NewStateStream(services.Dashboard, checkOrigin)
		apiGroup.GET("/ws", stream.Serve)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}

// originChecker applies the CORS origin list to websocket upgrades. Requests
// without an Origin header are not from a browser and are let through.
func originChecker(origins []string, allowAll bool) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if allowAll || origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}
