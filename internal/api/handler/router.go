package handler

import (
	"net/http"

	"go-procflow/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	Processes *ProcessHandler
	Tasks     *TaskHandler
	Metrics   *observability.Metrics
	Gatherer  prometheus.Gatherer // nil uses the default registry
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	// Request numbers stay json.Number so the engine codec can tell Long
	// from Double.
	gin.EnableJsonDecoderUseNumber()

	router := gin.New()
	router.Use(gin.Recovery(), cfg.Metrics.GinMiddleware())

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/processes/:id/start", cfg.Processes.StartProcess)
		api.GET("/processes", cfg.Processes.ListDefinitions)
		api.GET("/processes/:id/status", cfg.Processes.GetStatus)
		api.DELETE("/processes/:id", cfg.Processes.Terminate)
		api.GET("/processes/:id/tasks/history", cfg.Tasks.History)

		api.GET("/workflows/:id/instances", cfg.Processes.ListActiveInstances)
		api.GET("/workflows/:id/diagram", cfg.Processes.Diagram)
		api.POST("/workflows/:id/validate", cfg.Processes.Validate)
		api.GET("/workflows/tracked", cfg.Processes.ListTracked)

		api.GET("/tasks", cfg.Tasks.ListTasks)
		api.GET("/tasks/:id", cfg.Tasks.GetTask)
		api.POST("/tasks/:id/claim", cfg.Tasks.Claim)
		api.POST("/tasks/:id/complete", cfg.Tasks.Complete)
		api.POST("/tasks/:id/delegate", cfg.Tasks.Delegate)
	}

	return router
}
