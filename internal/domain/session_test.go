package domain

import (
	"errors"
	"testing"
)

func validConfig() SessionConfig {
	return SessionConfig{
		MaxQuestions:           20,
		StandardErrorThreshold: 0.3,
		MinQuestions:           5,
		InitialAbility:         0,
		SelectionMethod:        SelectMaximumInformation,
	}
}

func TestSessionConfigValidate(t *testing.T) {
	t.Parallel()

	valid := validConfig()
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*SessionConfig)
	}{
		{"max questions too low", func(c *SessionConfig) { c.MaxQuestions = 4 }},
		{"max questions too high", func(c *SessionConfig) { c.MaxQuestions = 101 }},
		{"max time too low", func(c *SessionConfig) { v := 4; c.MaxTimeMinutes = &v }},
		{"max time too high", func(c *SessionConfig) { v := 181; c.MaxTimeMinutes = &v }},
		{"se threshold too low", func(c *SessionConfig) { c.StandardErrorThreshold = 0.05 }},
		{"se threshold too high", func(c *SessionConfig) { c.StandardErrorThreshold = 1.5 }},
		{"initial ability low", func(c *SessionConfig) { c.InitialAbility = -3.5 }},
		{"initial ability high", func(c *SessionConfig) { c.InitialAbility = 3.5 }},
		{"min above max", func(c *SessionConfig) { c.MinQuestions = 25 }},
		{"unknown selection method", func(c *SessionConfig) { c.SelectionMethod = "adaptive" }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tc.mutate(&cfg)
			var vErr *ValidationError
			if err := cfg.Validate(); !errors.As(err, &vErr) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestSessionConfigApplyDefaults(t *testing.T) {
	t.Parallel()

	cfg := SessionConfig{MaxQuestions: 20}
	cfg.ApplyDefaults()
	if cfg.SelectionMethod != SelectMaximumInformation {
		t.Fatalf("default selection method: got=%s", cfg.SelectionMethod)
	}
	if cfg.StandardErrorThreshold != 0.3 {
		t.Fatalf("default se threshold: got=%v", cfg.StandardErrorThreshold)
	}
	if cfg.MinQuestions != 5 {
		t.Fatalf("default min questions: got=%d", cfg.MinQuestions)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaulted config must validate: %v", err)
	}
}

func TestSessionStatusTerminal(t *testing.T) {
	t.Parallel()

	if SessionNotStarted.Terminal() || SessionInProgress.Terminal() {
		t.Fatal("active statuses must not be terminal")
	}
	if !SessionCompleted.Terminal() || !SessionAbandoned.Terminal() {
		t.Fatal("completed and abandoned must be terminal")
	}
}
