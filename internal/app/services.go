package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/brightpath/assessment-engine/internal/platform/logger"
	"github.com/brightpath/assessment-engine/internal/realtime"
	"github.com/brightpath/assessment-engine/internal/realtime/bus"
	"github.com/brightpath/assessment-engine/internal/services"
)

type Services struct {
	Identity    services.IdentityService
	Pool        services.PoolService
	Assessment  services.AssessmentService
	Calibration services.CalibrationService

	Bus bus.Bus
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, hub *realtime.SSEHub) (Services, error) {
	log.Info("Wiring services...")

	policy, err := services.LoadEnginePolicy(cfg.EnginePolicyPath, log)
	if err != nil {
		return Services{}, fmt.Errorf("load engine policy: %w", err)
	}

	var (
		emitter  services.SSEEmitter
		redisBus bus.Bus
	)
	if cfg.UseRedisBus {
		redisBus, err = bus.NewRedisBus(log)
		if err != nil {
			return Services{}, fmt.Errorf("init redis bus: %w", err)
		}
		if err := redisBus.StartForwarder(context.Background(), hub.Broadcast); err != nil {
			return Services{}, fmt.Errorf("start redis forwarder: %w", err)
		}
		emitter = &services.RedisEmitter{Bus: redisBus}
	} else {
		emitter = &services.HubEmitter{Hub: hub}
	}
	notifier := services.NewSessionNotifier(emitter)

	return Services{
		Identity:    services.NewIdentityService(log, cfg.JWTSecretKey),
		Pool:        services.NewPoolService(db, log, r.Pool, r.Item),
		Assessment:  services.NewAssessmentService(db, log, policy, r.Pool, r.Item, r.Session, r.Response, notifier),
		Calibration: services.NewCalibrationService(db, log, r.Pool, r.Item, r.Response, r.Calibration),
		Bus:         redisBus,
	}, nil
}
