package config

import (
	"path/filepath"
	"testing"

	"chronodl/pkg/reasoner"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.GPU.Mode != "cpu-only" {
		t.Errorf("expected GPU.Mode=cpu-only, got %s", cfg.GPU.Mode)
	}
	if cfg.Distributed.MaxRetries != 3 {
		t.Errorf("expected MaxRetries=3, got %d", cfg.Distributed.MaxRetries)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got: %v", err)
	}
}

func TestConfigSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.GPU.Mode = "auto"
	cfg.Distributed.Workers = []WorkerEndpointConfig{{ID: "w1", Host: "localhost", Port: 9001}}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.GPU.Mode != "auto" {
		t.Errorf("expected GPU.Mode=auto, got %s", loaded.GPU.Mode)
	}
	if len(loaded.Distributed.Workers) != 1 || loaded.Distributed.Workers[0].ID != "w1" {
		t.Errorf("expected one worker w1, got %+v", loaded.Distributed.Workers)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load should not error on a missing file: %v", err)
	}
	if cfg.GPU.Mode != "cpu-only" {
		t.Errorf("expected defaults, got GPU.Mode=%s", cfg.GPU.Mode)
	}
}

func TestValidateRejectsUnknownGPUMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GPU.Mode = "quantum"
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for an unknown gpu mode")
	}
}

func TestValidateRejectsWorkerMissingPort(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Distributed.Workers = []WorkerEndpointConfig{{ID: "w1", Host: "localhost"}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for a worker with no port")
	}
}

func TestReasonerConfigTranslatesMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GPU.Mode = "auto"
	rc, err := cfg.ReasonerConfig()
	if err != nil {
		t.Fatalf("ReasonerConfig failed: %v", err)
	}
	if rc.GPUMode != reasoner.Auto {
		t.Errorf("expected Auto mode, got %v", rc.GPUMode)
	}
}

func TestMasterConfigTranslatesWorkers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Distributed.Workers = []WorkerEndpointConfig{{ID: "w1", Host: "localhost", Port: 9001}}
	mc, err := cfg.MasterConfig()
	if err != nil {
		t.Fatalf("MasterConfig failed: %v", err)
	}
	if len(mc.Workers) != 1 || mc.Workers[0].Addr != "localhost:9001" {
		t.Errorf("expected one worker at localhost:9001, got %+v", mc.Workers)
	}
}
