package config

import "testing"

func TestLoadValid(t *testing.T) {
	raw := []byte(`{"aace.localSkillService":{"lssSocketPath":"/tmp/lss.sock"}}`)
	cfg, err := Load(raw)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LSSSocketPath != "/tmp/lss.sock" {
		t.Fatalf("unexpected socket path: %q", cfg.LSSSocketPath)
	}
	if cfg.LMBSocketPath != "" {
		t.Fatalf("expected empty lmb path, got %q", cfg.LMBSocketPath)
	}
}

func TestLoadWithLMBPassthrough(t *testing.T) {
	raw := []byte(`{"aace.localSkillService":{"lssSocketPath":"/tmp/lss.sock","lmbSocketPath":"/tmp/lmb.sock"}}`)
	cfg, err := Load(raw)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LMBSocketPath != "/tmp/lmb.sock" {
		t.Fatalf("unexpected lmb path: %q", cfg.LMBSocketPath)
	}
}

func TestLoadMissingObject(t *testing.T) {
	if _, err := Load([]byte(`{}`)); err == nil {
		t.Fatal("expected error for missing aace.localSkillService")
	}
}

func TestLoadMissingSocketPath(t *testing.T) {
	if _, err := Load([]byte(`{"aace.localSkillService":{}}`)); err == nil {
		t.Fatal("expected error for missing lssSocketPath")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	if _, err := Load([]byte(`not json`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
