package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string

	DBDriver    string // "pgx" or "sqlite"
	DatabaseURL string

	ModelBackend   string // "gemini" or "claude"
	GeminiAPIKey   string
	GeminiModel    string
	ClaudeAPIKey   string
	ClaudeModel    string
	ModelFallbacks []string // ordered model ids tried after the primary

	SearchAPIKey   string
	SearchEngineID string

	DataVersion    string
	CacheTTL       time.Duration // <= 0 means cache entries never expire
	CoveragePerBox float64       // m² covered by one box, calculator fast path
	ReserveBoxes   int
	EnrichBatch    int

	LogLevel string
	LogFile  string
}

func Load() *Config {
	// Missing .env is fine; real deployments set env directly.
	_ = godotenv.Load()

	return &Config{
		ListenAddr:     getEnv("LISTEN_ADDR", ":8080"),
		DBDriver:       getEnv("DB_DRIVER", "pgx"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		ModelBackend:   getEnv("MODEL_BACKEND", "gemini"),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-1.5-pro-latest"),
		ClaudeAPIKey:   getEnv("CLAUDE_API_KEY", ""),
		ClaudeModel:    getEnv("CLAUDE_MODEL", "claude-3-5-sonnet-latest"),
		ModelFallbacks: splitList(getEnv("MODEL_FALLBACKS", "")),
		SearchAPIKey:   getEnv("GOOGLE_CSE_API_KEY", ""),
		SearchEngineID: getEnv("GOOGLE_CSE_CX", ""),
		DataVersion:    getEnv("DATA_VERSION", "v1"),
		CacheTTL:       getDuration("CACHE_TTL", 720*time.Hour),
		CoveragePerBox: getFloat("COVERAGE_PER_BOX", 1.44),
		ReserveBoxes:   getInt("RESERVE_BOXES", 0),
		EnrichBatch:    getInt("ENRICH_BATCH", 5),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFile:        getEnv("LOG_FILE", ""),
	}
}

// Validate reports every missing required variable at once so operators fix
// the deployment in one pass instead of crashing at first use.
func (c *Config) Validate() error {
	var missing []string

	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	switch c.ModelBackend {
	case "gemini":
		if c.GeminiAPIKey == "" {
			missing = append(missing, "GEMINI_API_KEY")
		}
	case "claude":
		if c.ClaudeAPIKey == "" {
			missing = append(missing, "CLAUDE_API_KEY")
		}
	default:
		return fmt.Errorf("unknown MODEL_BACKEND %q (want gemini or claude)", c.ModelBackend)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Models returns the ordered list of model ids to try: the configured
// primary first, then the fallbacks.
func (c *Config) Models() []string {
	primary := c.GeminiModel
	if c.ModelBackend == "claude" {
		primary = c.ClaudeModel
	}
	models := []string{primary}
	for _, m := range c.ModelFallbacks {
		if m != primary {
			models = append(models, m)
		}
	}
	return models
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) float64 {
	if val, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
