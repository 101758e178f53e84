package app

import (
	httpH "github.com/brightpath/assessment-engine/internal/http/handlers"
	httpMW "github.com/brightpath/assessment-engine/internal/http/middleware"
	"github.com/brightpath/assessment-engine/internal/platform/logger"
	"github.com/brightpath/assessment-engine/internal/realtime"
)

type Handlers struct {
	Health      *httpH.HealthHandler
	Pool        *httpH.PoolHandler
	Session     *httpH.SessionHandler
	Calibration *httpH.CalibrationHandler
	Realtime    *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, s Services, hub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      httpH.NewHealthHandler(),
		Pool:        httpH.NewPoolHandler(log, s.Pool),
		Session:     httpH.NewSessionHandler(log, s.Assessment),
		Calibration: httpH.NewCalibrationHandler(log, s.Calibration),
		Realtime:    httpH.NewRealtimeHandler(log, hub),
	}
}

func wireMiddleware(log *logger.Logger, s Services) *httpMW.AuthMiddleware {
	return httpMW.NewAuthMiddleware(log, s.Identity)
}
