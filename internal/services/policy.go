package services

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/brightpath/assessment-engine/internal/platform/logger"
)

// EnginePolicy carries deployment-level tuning: the exposure cap and topic
// coverage targets are supplied here, never hard-coded in selection.
type EnginePolicy struct {
	MaxExposureRate float64            `yaml:"max_exposure_rate"`
	TopicTargets    map[string]float64 `yaml:"topic_targets"`
}

func DefaultEnginePolicy() EnginePolicy {
	return EnginePolicy{MaxExposureRate: 0.25}
}

// LoadEnginePolicy reads the YAML policy file at path, falling back to
// defaults when path is empty.
func LoadEnginePolicy(path string, log *logger.Logger) (EnginePolicy, error) {
	policy := DefaultEnginePolicy()
	if path == "" {
		return policy, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return policy, fmt.Errorf("read engine policy: %w", err)
	}
	if err := yaml.Unmarshal(raw, &policy); err != nil {
		return policy, fmt.Errorf("parse engine policy: %w", err)
	}
	if policy.MaxExposureRate <= 0 || policy.MaxExposureRate > 1 {
		return policy, fmt.Errorf("engine policy: max_exposure_rate must be in (0, 1], got %v", policy.MaxExposureRate)
	}
	if log != nil {
		log.Info("Loaded engine policy", "path", path, "max_exposure_rate", policy.MaxExposureRate, "topic_targets", len(policy.TopicTargets))
	}
	return policy, nil
}
