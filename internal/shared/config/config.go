package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"assessment-backend/internal/shared/telemetry"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	Env             string
	DatabaseURL     string

	ObjectStoreType string
	LocalStoreDir   string
	LocalSweepEvery time.Duration
	LocalSweepAge   time.Duration
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	UploadMaxBytes     int64
	UploadAllowedTypes []string
	ExtractMinChars    int

	GenerationProvider       string
	GenerationModel          string
	OpenAIAPIKey             string
	OpenAIBaseURL            string
	GeminiAPIKey             string
	GenerationTimeout        time.Duration
	GenerationMaxRetries     int
	GenerationBackoffBase    time.Duration
	GenerationBackoffMax     time.Duration
	GenerationMaxPromptChars int
	DefaultQuestionCount     int
	MaxQuestionCount         int

	SessionSecret string
	SessionCookie string
	ClaimsSecret  string
	ClaimsIssuers map[string]string
	GuestEnabled  bool

	RateLimitGenerateRate  float64
	RateLimitGenerateBurst int
	RateLimitDefaultRate   float64
	RateLimitDefaultBurst  int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		telemetry.Warn("config.database_url_missing", map[string]any{"env": env})
	}

	provider := normalizeProvider(getEnv("GENERATION_PROVIDER", ProviderOpenAI))

	return Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		Env:             env,
		DatabaseURL:     dbURL,

		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data/tmp"),
		LocalSweepEvery: getEnvDuration("LOCAL_SWEEP_INTERVAL", 10*time.Minute),
		LocalSweepAge:   getEnvDuration("LOCAL_SWEEP_MAX_AGE", time.Hour),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", "tmp/uploads"),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),

		UploadMaxBytes: getEnvInt64("UPLOAD_MAX_BYTES", 10<<20),
		UploadAllowedTypes: splitAndTrim(getEnv("UPLOAD_ALLOWED_TYPES",
			"text/plain,text/markdown,text/csv,application/pdf,application/vnd.openxmlformats-officedocument.wordprocessingml.document")),
		ExtractMinChars: getEnvInt("EXTRACT_MIN_CHARS", 20),

		GenerationProvider:       provider,
		GenerationModel:          getEnv("GENERATION_MODEL", defaultModel(provider)),
		OpenAIAPIKey:             strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:            getEnv("OPENAI_BASE_URL", ""),
		GeminiAPIKey:             strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GenerationTimeout:        getEnvDuration("GENERATION_TIMEOUT", 60*time.Second),
		GenerationMaxRetries:     getEnvInt("GENERATION_MAX_RETRIES", 3),
		GenerationBackoffBase:    getEnvDuration("GENERATION_BACKOFF_BASE", 500*time.Millisecond),
		GenerationBackoffMax:     getEnvDuration("GENERATION_BACKOFF_MAX", 10*time.Second),
		GenerationMaxPromptChars: getEnvInt("GENERATION_MAX_PROMPT_CHARS", 24000),
		DefaultQuestionCount:     getEnvInt("GENERATION_DEFAULT_QUESTIONS", 5),
		MaxQuestionCount:         getEnvInt("GENERATION_MAX_QUESTIONS", 20),

		SessionSecret: strings.TrimSpace(os.Getenv("SESSION_JWT_SECRET")),
		SessionCookie: getEnv("SESSION_COOKIE", "session"),
		ClaimsSecret:  strings.TrimSpace(os.Getenv("CLAIMS_JWT_SECRET")),
		ClaimsIssuers: parseIssuers(getEnv("CLAIMS_ISSUERS", "")),
		GuestEnabled:  getEnvBool("GUEST_ENABLED", true),

		RateLimitGenerateRate:  getEnvFloat("RATE_LIMIT_GENERATE_RATE", 0.1),
		RateLimitGenerateBurst: getEnvInt("RATE_LIMIT_GENERATE_BURST", 3),
		RateLimitDefaultRate:   getEnvFloat("RATE_LIMIT_DEFAULT_RATE", 5),
		RateLimitDefaultBurst:  getEnvInt("RATE_LIMIT_DEFAULT_BURST", 20),
	}
}

// Validate reports settings the service cannot start without.
func (c Config) Validate() error {
	var problems []error

	switch c.GenerationProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			problems = append(problems, errors.New("OPENAI_API_KEY is required when GENERATION_PROVIDER=openai"))
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			problems = append(problems, errors.New("GEMINI_API_KEY is required when GENERATION_PROVIDER=gemini"))
		}
	default:
		problems = append(problems, fmt.Errorf("unknown GENERATION_PROVIDER %q", c.GenerationProvider))
	}
	if strings.TrimSpace(c.GenerationModel) == "" {
		problems = append(problems, errors.New("GENERATION_MODEL is required"))
	}
	if c.GenerationTimeout <= 0 {
		problems = append(problems, errors.New("GENERATION_TIMEOUT must be positive"))
	}
	if c.GenerationMaxRetries < 0 {
		problems = append(problems, errors.New("GENERATION_MAX_RETRIES must not be negative"))
	}
	if c.UploadMaxBytes <= 0 {
		problems = append(problems, errors.New("UPLOAD_MAX_BYTES must be positive"))
	}
	if len(c.UploadAllowedTypes) == 0 {
		problems = append(problems, errors.New("UPLOAD_ALLOWED_TYPES must not be empty"))
	}
	if c.MaxQuestionCount < 1 || c.DefaultQuestionCount < 1 || c.DefaultQuestionCount > c.MaxQuestionCount {
		problems = append(problems, errors.New("GENERATION_DEFAULT_QUESTIONS must be within 1..GENERATION_MAX_QUESTIONS"))
	}
	if c.ObjectStoreType == "s3" && strings.TrimSpace(c.S3Bucket) == "" {
		problems = append(problems, errors.New("OBJECT_STORE=s3 requires S3_BUCKET"))
	}
	if len(c.ClaimsIssuers) > 0 && c.ClaimsSecret == "" {
		problems = append(problems, errors.New("CLAIMS_JWT_SECRET is required when CLAIMS_ISSUERS is set"))
	}
	if c.SessionSecret == "" && len(c.ClaimsIssuers) == 0 && !c.GuestEnabled {
		problems = append(problems, errors.New("no identity mechanism configured"))
	}
	return errors.Join(problems...)
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("config.invalid_int", map[string]any{"key": key, "err": err})
		return def
	}
	return val
}

func getEnvInt64(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		telemetry.Warn("config.invalid_int", map[string]any{"key": key, "err": err})
		return def
	}
	return val
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		telemetry.Warn("config.invalid_float", map[string]any{"key": key, "err": err})
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		telemetry.Warn("config.invalid_duration", map[string]any{"key": key, "err": err})
		return def
	}
	return val
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		telemetry.Warn("config.invalid_bool", map[string]any{"key": key, "err": err})
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parseIssuers reads "issuer=prefix" pairs, e.g.
// "https://accounts.google.com=google,https://login.example.edu=sso".
func parseIssuers(raw string) map[string]string {
	out := map[string]string{}
	for _, pair := range splitAndTrim(raw) {
		idx := strings.LastIndex(pair, "=")
		if idx <= 0 || idx == len(pair)-1 {
			telemetry.Warn("config.claims_issuer_malformed", map[string]any{"entry": pair})
			continue
		}
		out[strings.TrimSpace(pair[:idx])] = strings.TrimSpace(pair[idx+1:])
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "test":
		return "test"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeProvider(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func defaultModel(provider string) string {
	switch provider {
	case ProviderGemini:
		return "gemini-2.0-flash"
	default:
		return "gpt-4o-mini"
	}
}
