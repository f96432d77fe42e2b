package config

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("REPORT_MAX_LIMIT", "250")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("SKIP_AUTH", "true")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.ReportMaxLimit != 250 {
		t.Errorf("ReportMaxLimit = %d, want 250", cfg.ReportMaxLimit)
	}
	if cfg.RedisDB != 0 {
		t.Errorf("RedisDB = %d, want fallback 0", cfg.RedisDB)
	}
	if !cfg.SkipAuth {
		t.Error("SkipAuth = false, want true")
	}
	if cfg.ReportDefaultLimit != 500 {
		t.Errorf("ReportDefaultLimit = %d, want 500", cfg.ReportDefaultLimit)
	}
}
