package app

import (
	"github.com/brightpath/assessment-engine/internal/platform/envutil"
	"github.com/brightpath/assessment-engine/internal/platform/logger"
)

type Config struct {
	JWTSecretKey     string
	EnginePolicyPath string
	// UseRedisBus switches session notifications from the in-process hub to
	// the Redis channel so a separate fan-out process can serve SSE clients.
	UseRedisBus bool
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		JWTSecretKey:     envutil.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		EnginePolicyPath: envutil.GetEnv("ENGINE_POLICY_PATH", "", log),
		UseRedisBus:      envutil.GetEnvAsBool("USE_REDIS_BUS", false, log),
	}
}
