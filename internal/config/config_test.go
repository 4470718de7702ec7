package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	body := `# demo run
steps: 500
batch_size: 32
seed: 7
checkpoint_every: 50
checkpoint_path: "out/model.gob"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Steps != 500 || cfg.BatchSize != 32 || cfg.Seed != 7 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.CheckpointEvery != 50 || cfg.CheckpointPath != "out/model.gob" {
		t.Fatalf("unexpected checkpoint settings %+v", cfg)
	}
	if cfg.LogEvery != 25 {
		t.Fatalf("expected default log_every, got %d", cfg.LogEvery)
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte("stepz: 10\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected unknown key error")
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	cfg.ApplyOverrides(Overrides{Steps: 10, CheckpointPath: "x.gob"})
	if cfg.Steps != 10 {
		t.Fatalf("steps override not applied: %d", cfg.Steps)
	}
	if cfg.CheckpointPath != "x.gob" {
		t.Fatalf("checkpoint path override not applied: %s", cfg.CheckpointPath)
	}
	if cfg.BatchSize != 200 {
		t.Fatalf("zero override must not clobber batch size: %d", cfg.BatchSize)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Steps = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero steps")
	}

	cfg = Default()
	cfg.LabelsPath = "labels.idx"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for labels without data")
	}
}
