package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	os.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	os.Setenv("MONGODB_DATABASE", "kcopilot_test")
	os.Setenv("REDIS_HOST", "localhost")
	os.Setenv("REDIS_PORT", "6379")
	os.Setenv("JWT_SECRET", "testsecret123456789012345678901234")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.MongoDB.URI == "" || cfg.Redis.Host == "" {
		t.Fatalf("unexpected empty config values: %+v", cfg)
	}
	if cfg.JWT.TokenTTL != 168*time.Hour {
		t.Fatalf("unexpected default token TTL: %v", cfg.JWT.TokenTTL)
	}
	if cfg.JWT.Issuer != "knowledge-copilot" {
		t.Fatalf("unexpected default issuer: %q", cfg.JWT.Issuer)
	}
	if cfg.Upload.MaxFileSize != 50*1024*1024 {
		t.Fatalf("unexpected default upload cap: %d", cfg.Upload.MaxFileSize)
	}
}
