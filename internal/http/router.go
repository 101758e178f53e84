package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/brightpath/assessment-engine/internal/http/handlers"
	httpMW "github.com/brightpath/assessment-engine/internal/http/middleware"
	"github.com/brightpath/assessment-engine/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *httpMW.AuthMiddleware

	PoolHandler        *httpH.PoolHandler
	SessionHandler     *httpH.SessionHandler
	CalibrationHandler *httpH.CalibrationHandler
	RealtimeHandler    *httpH.RealtimeHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.CORS())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			api.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			api.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
		}

		// Pools
		if cfg.PoolHandler != nil {
			api.POST("/pools", cfg.PoolHandler.CreatePool)
			api.GET("/pools", cfg.PoolHandler.ListPools)
			api.GET("/pools/:id", cfg.PoolHandler.GetPool)
		}

		// Sessions
		if cfg.SessionHandler != nil {
			api.POST("/sessions", cfg.SessionHandler.CreateSession)
			api.GET("/sessions", cfg.SessionHandler.ListSessions)
			api.GET("/sessions/:id", cfg.SessionHandler.GetSession)
			api.POST("/sessions/:id/start", cfg.SessionHandler.StartSession)
			api.POST("/sessions/:id/responses", cfg.SessionHandler.SubmitResponse)
			api.POST("/sessions/:id/abandon", cfg.SessionHandler.AbandonSession)
			api.GET("/sessions/:id/report", cfg.SessionHandler.GetReport)
		}

		// Calibration
		if cfg.CalibrationHandler != nil {
			api.POST("/items/:id/calibrations", cfg.CalibrationHandler.CalibrateItem)
			api.GET("/items/:id/calibrations", cfg.CalibrationHandler.ListPending)
			api.POST("/pools/:id/calibrations", cfg.CalibrationHandler.CalibratePool)
			api.POST("/calibrations/:id/approve", cfg.CalibrationHandler.ApproveProposal)
		}
	}

	return r
}
