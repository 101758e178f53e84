package services

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultEnginePolicy(t *testing.T) {
	t.Parallel()

	policy := DefaultEnginePolicy()
	if policy.MaxExposureRate != 0.25 {
		t.Fatalf("default exposure cap: got=%v want=0.25", policy.MaxExposureRate)
	}
	if len(policy.TopicTargets) != 0 {
		t.Fatalf("default policy should carry no topic targets, got %v", policy.TopicTargets)
	}
}

func TestLoadEnginePolicyEmptyPath(t *testing.T) {
	t.Parallel()

	policy, err := LoadEnginePolicy("", nil)
	if err != nil {
		t.Fatalf("empty path: %v", err)
	}
	if policy.MaxExposureRate != 0.25 {
		t.Fatalf("empty path should yield defaults, got %v", policy.MaxExposureRate)
	}
}

func TestLoadEnginePolicyFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "policy.yaml")
	raw := []byte("max_exposure_rate: 0.2\ntopic_targets:\n  algebra: 0.5\n  geometry: 0.5\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write policy file: %v", err)
	}

	policy, err := LoadEnginePolicy(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if policy.MaxExposureRate != 0.2 {
		t.Fatalf("exposure cap: got=%v want=0.2", policy.MaxExposureRate)
	}
	if got := policy.TopicTargets["geometry"]; got != 0.5 {
		t.Fatalf("geometry target: got=%v want=0.5", got)
	}
}

func TestLoadEnginePolicyRejectsBadRate(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		"max_exposure_rate: 0\n",
		"max_exposure_rate: -0.1\n",
		"max_exposure_rate: 1.5\n",
	} {
		path := filepath.Join(t.TempDir(), "policy.yaml")
		if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
			t.Fatalf("write policy file: %v", err)
		}
		if _, err := LoadEnginePolicy(path, nil); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestLoadEnginePolicyMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := LoadEnginePolicy(filepath.Join(t.TempDir(), "absent.yaml"), nil); err == nil {
		t.Fatal("expected error for missing file")
	}
}
