package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		GenerationProvider:   ProviderOpenAI,
		GenerationModel:      "gpt-4o-mini",
		OpenAIAPIKey:         "sk-test",
		GenerationTimeout:    time.Minute,
		GenerationMaxRetries: 3,
		UploadMaxBytes:       1 << 20,
		UploadAllowedTypes:   []string{"text/plain"},
		DefaultQuestionCount: 5,
		MaxQuestionCount:     20,
		GuestEnabled:         true,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing openai key", mutate: func(c *Config) { c.OpenAIAPIKey = "" }, wantErr: "OPENAI_API_KEY"},
		{name: "missing gemini key", mutate: func(c *Config) {
			c.GenerationProvider = ProviderGemini
			c.GenerationModel = "gemini-2.0-flash"
		}, wantErr: "GEMINI_API_KEY"},
		{name: "unknown provider", mutate: func(c *Config) { c.GenerationProvider = "mystery" }, wantErr: "unknown GENERATION_PROVIDER"},
		{name: "default above max", mutate: func(c *Config) { c.DefaultQuestionCount = 30 }, wantErr: "GENERATION_DEFAULT_QUESTIONS"},
		{name: "s3 without bucket", mutate: func(c *Config) { c.ObjectStoreType = "s3" }, wantErr: "S3_BUCKET"},
		{name: "claims without secret", mutate: func(c *Config) {
			c.ClaimsIssuers = map[string]string{"https://issuer": "sso"}
		}, wantErr: "CLAIMS_JWT_SECRET"},
		{name: "no identity", mutate: func(c *Config) { c.GuestEnabled = false }, wantErr: "no identity mechanism"},
		{name: "zero upload limit", mutate: func(c *Config) { c.UploadMaxBytes = 0 }, wantErr: "UPLOAD_MAX_BYTES"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadReadsGenerationSettings(t *testing.T) {
	t.Setenv("GENERATION_PROVIDER", " Gemini ")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("GENERATION_TIMEOUT", "15s")
	t.Setenv("GENERATION_MAX_RETRIES", "2")
	t.Setenv("UPLOAD_MAX_BYTES", "2048")
	t.Setenv("CLAIMS_ISSUERS", "https://accounts.google.com=google, bad-entry")

	cfg := Load()
	if cfg.GenerationProvider != ProviderGemini {
		t.Fatalf("expected gemini provider, got %q", cfg.GenerationProvider)
	}
	if cfg.GenerationModel != "gemini-2.0-flash" {
		t.Fatalf("expected gemini default model, got %q", cfg.GenerationModel)
	}
	if cfg.GenerationTimeout != 15*time.Second {
		t.Fatalf("expected 15s timeout, got %s", cfg.GenerationTimeout)
	}
	if cfg.GenerationMaxRetries != 2 {
		t.Fatalf("expected 2 retries, got %d", cfg.GenerationMaxRetries)
	}
	if cfg.UploadMaxBytes != 2048 {
		t.Fatalf("expected 2048 byte limit, got %d", cfg.UploadMaxBytes)
	}
	if got := cfg.ClaimsIssuers["https://accounts.google.com"]; got != "google" {
		t.Fatalf("expected google prefix, got %q (issuers=%v)", got, cfg.ClaimsIssuers)
	}
	if len(cfg.ClaimsIssuers) != 1 {
		t.Fatalf("expected malformed issuer to be skipped, got %v", cfg.ClaimsIssuers)
	}
}

func TestLoadEnvFilesKeepsProcessEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("CFG_TEST_FROM_FILE=file\nCFG_TEST_PRESET=file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("CFG_TEST_PRESET", "process")
	t.Setenv("CFG_TEST_FROM_FILE", "")
	os.Unsetenv("CFG_TEST_FROM_FILE")

	loadEnvFiles(filepath.Join(dir, "missing.env"), path)

	if got := os.Getenv("CFG_TEST_FROM_FILE"); got != "file" {
		t.Fatalf("expected value from file, got %q", got)
	}
	if got := os.Getenv("CFG_TEST_PRESET"); got != "process" {
		t.Fatalf("expected process env to win, got %q", got)
	}
}
