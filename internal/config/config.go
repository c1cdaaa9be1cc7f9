package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/futig/notes-answer/internal/entity"
	pkgRetry "github.com/futig/notes-answer/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Vector backends
const (
	BackendSupabase = "supabase"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr         string   `env:"SERVER_ADDR" envDefault:":8080"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Policy surface
	AccessScopeRaw      string `env:"ACCESS_SCOPE" envDefault:"caller-restricted"`
	CitationPolicyRaw   string `env:"CITATION_POLICY" envDefault:"none"`
	ExposeSourceContent bool   `env:"EXPOSE_SOURCE_CONTENT" envDefault:"false"`
	// APIServiceToken guards the HTTP API in privileged deployments
	APIServiceToken string `env:"API_SERVICE_TOKEN"`
	PromptsFile     string `env:"PROMPTS_FILE"`

	AnswerCfg  AnswerConfig  `envPrefix:"ANSWER_"`
	SuggestCfg SuggestConfig `envPrefix:"SUGGEST_"`
	ContextCfg ContextConfig `envPrefix:"CONTEXT_"`

	// External service configurations
	VectorBackend string         `env:"VECTOR_BACKEND" envDefault:"supabase"`
	OpenAICfg     OpenAIConfig   `envPrefix:"OPENAI_"`
	SupabaseCfg   SupabaseConfig `envPrefix:"SUPABASE_"`
	PostgresCfg   PostgresConfig
	SQLiteCfg     SQLiteConfig `envPrefix:"SQLITE_"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Telegram bot configuration (optional)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Derived values, set after parsing
	AccessScope    entity.AccessScope
	CitationPolicy entity.CitationPolicy
	Prompts        Prompts

	// Environment (set from flag, not from env var)
	Environment string
}

type AnswerConfig struct {
	DefaultTopK int    `env:"DEFAULT_TOP_K" envDefault:"5"`
	MaxTopK     int    `env:"MAX_TOP_K" envDefault:"20"`
	Language    string `env:"LANGUAGE" envDefault:"pt"`
}

type SuggestConfig struct {
	DefaultTopK   int     `env:"DEFAULT_TOP_K" envDefault:"1"`
	MaxTopK       int     `env:"MAX_TOP_K" envDefault:"20"`
	MinSimilarity float64 `env:"MIN_SIMILARITY" envDefault:"0.8"`
	MinTextLength int     `env:"MIN_TEXT_LENGTH" envDefault:"10"`
	PreviewLength int     `env:"PREVIEW_LENGTH" envDefault:"300"`
}

// ContextConfig holds rune limits used while assembling the prompt context
type ContextConfig struct {
	TitleLength    int `env:"TITLE_LENGTH" envDefault:"52"`
	PreviewLength  int `env:"PREVIEW_LENGTH" envDefault:"180"`
	FragmentLength int `env:"FRAGMENT_LENGTH" envDefault:"1200"`
}

type OpenAIConfig struct {
	HTTPClientConfig
	BaseURL        string               `env:"BASE_URL" envDefault:"https://api.openai.com/v1"`
	APIKey         string               `env:"API_KEY"`
	EmbeddingModel string               `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	ChatModel      string               `env:"CHAT_MODEL" envDefault:"gpt-4o-mini"`
	Temperature    float64              `env:"TEMPERATURE" envDefault:"0.2"`
	MaxTokens      int                  `env:"MAX_TOKENS" envDefault:"0"`
	Retry          pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type SupabaseConfig struct {
	HTTPClientConfig
	URL               string               `env:"URL"`
	AnonKey           string               `env:"ANON_KEY"`
	ServiceRoleKey    string               `env:"SERVICE_ROLE_KEY"`
	UserMatchFunction string               `env:"USER_MATCH_FUNCTION" envDefault:"match_documents_for_user"`
	MatchFunction     string               `env:"MATCH_FUNCTION" envDefault:"match_documents"`
	Retry             pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type PostgresConfig struct {
	DatabaseURL         string        `env:"DATABASE_URL"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"1"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
	RunMigrations       bool          `env:"DB_RUN_MIGRATIONS" envDefault:"true"`
	MigrationsSource    string        `env:"DB_MIGRATIONS_SOURCE" envDefault:"file://internal/repository/migrations"`
}

type SQLiteConfig struct {
	Path string `env:"PATH"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string  `env:"BOT_TOKEN"`
	AllowedChatIDs     []int64 `env:"ALLOWED_CHAT_IDS" envSeparator:","`
	UpdateTimeout      int     `env:"UPDATE_TIMEOUT" envDefault:"60"`
	RateLimitPerMinute int     `env:"RATE_LIMIT_PER_MINUTE" envDefault:"10"`
	RateLimitBurst     int     `env:"RATE_LIMIT_BURST" envDefault:"3"`
	ShutdownTimeout    int     `env:"SHUTDOWN_TIMEOUT" envDefault:"30"` // seconds
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"30s"`
}

// requestSlack covers retrieval on local backends and response encoding.
const requestSlack = 5 * time.Second

// RequestBudget is the longest an answer request may legitimately run: one
// embedding call and one chat call to OpenAI plus one vector search, each
// with its full retry schedule.
func (c *Config) RequestBudget() time.Duration {
	openai := callBudget(c.OpenAICfg.RequestTimeout, c.OpenAICfg.Retry)
	search := callBudget(c.SupabaseCfg.RequestTimeout, c.SupabaseCfg.Retry)
	return 2*openai + search + requestSlack
}

func callBudget(timeout time.Duration, rc pkgRetry.RetryConfig) time.Duration {
	attempts := time.Duration(rc.Attempts)
	if attempts < 1 {
		attempts = 1
	}
	return timeout*attempts + rc.MaxDelay*(attempts-1)
}

// LoadConfig reads the -env flag and loads the matching configuration.
func LoadConfig() (*Config, error) {
	envFlag := flag.Lookup("env")
	if envFlag == nil {
		flag.String("env", "local", "Environment to run (local, prod, or custom)")
		envFlag = flag.Lookup("env")
	}
	if !flag.Parsed() {
		flag.Parse()
	}

	return Load(envFlag.Value.String())
}

// Load loads configuration for the given environment name.
func Load(environment string) (*Config, error) {
	envFile := getEnvFile(environment)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = environment
	applyFallbacks(cfg)

	// Validate configuration
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	prompts, err := LoadPrompts(cfg.PromptsFile, cfg.AnswerCfg.Language)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	cfg.Prompts = prompts

	return cfg, nil
}

// applyFallbacks honours the legacy variable names used by older deployments.
func applyFallbacks(cfg *Config) {
	if cfg.SupabaseCfg.URL == "" {
		cfg.SupabaseCfg.URL = os.Getenv("PROJECT_URL")
	}
	if cfg.SupabaseCfg.ServiceRoleKey == "" {
		cfg.SupabaseCfg.ServiceRoleKey = os.Getenv("SERVICE_ROLE_KEY")
	}
	cfg.SupabaseCfg.URL = strings.TrimRight(cfg.SupabaseCfg.URL, "/")
	cfg.OpenAICfg.BaseURL = strings.TrimRight(cfg.OpenAICfg.BaseURL, "/")
}

func validateConfig(cfg *Config) error {
	var errors []string

	scope, err := entity.ParseAccessScope(cfg.AccessScopeRaw)
	if err != nil {
		errors = append(errors, fmt.Sprintf("ACCESS_SCOPE: %v", err))
	}
	cfg.AccessScope = scope

	policy, err := entity.ParseCitationPolicy(cfg.CitationPolicyRaw)
	if err != nil {
		errors = append(errors, fmt.Sprintf("CITATION_POLICY: %v", err))
	}
	cfg.CitationPolicy = policy

	// Validate limits
	errors = append(errors, validateTopK("ANSWER", cfg.AnswerCfg.DefaultTopK, cfg.AnswerCfg.MaxTopK)...)
	errors = append(errors, validateTopK("SUGGEST", cfg.SuggestCfg.DefaultTopK, cfg.SuggestCfg.MaxTopK)...)

	if cfg.SuggestCfg.MinSimilarity < -1 || cfg.SuggestCfg.MinSimilarity > 1 {
		errors = append(errors, fmt.Sprintf("SUGGEST_MIN_SIMILARITY must be between -1 and 1, got %g", cfg.SuggestCfg.MinSimilarity))
	}
	if cfg.SuggestCfg.MinTextLength < 0 {
		errors = append(errors, fmt.Sprintf("SUGGEST_MIN_TEXT_LENGTH must not be negative, got %d", cfg.SuggestCfg.MinTextLength))
	}
	if cfg.SuggestCfg.PreviewLength < 1 {
		errors = append(errors, fmt.Sprintf("SUGGEST_PREVIEW_LENGTH must be positive, got %d", cfg.SuggestCfg.PreviewLength))
	}
	if cfg.ContextCfg.TitleLength < 1 || cfg.ContextCfg.PreviewLength < 1 || cfg.ContextCfg.FragmentLength < 1 {
		errors = append(errors, "CONTEXT_TITLE_LENGTH, CONTEXT_PREVIEW_LENGTH and CONTEXT_FRAGMENT_LENGTH must be positive")
	}

	// External services are not needed when mocks are enabled
	if !cfg.EnableMocks {
		if cfg.OpenAICfg.APIKey == "" {
			errors = append(errors, "OPENAI_API_KEY is required")
		}
		errors = append(errors, validateBackend(cfg, scope)...)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func validateTopK(prefix string, def, max int) []string {
	var errors []string
	if max < 1 || max > 100 {
		errors = append(errors, fmt.Sprintf("%s_MAX_TOP_K must be between 1 and 100, got %d", prefix, max))
	}
	if def < 1 || def > max {
		errors = append(errors, fmt.Sprintf("%s_DEFAULT_TOP_K must be between 1 and %s_MAX_TOP_K(%d), got %d", prefix, prefix, max, def))
	}
	return errors
}

func validateBackend(cfg *Config, scope entity.AccessScope) []string {
	var errors []string

	switch cfg.VectorBackend {
	case BackendSupabase:
		if cfg.SupabaseCfg.URL == "" {
			errors = append(errors, "SUPABASE_URL (or PROJECT_URL) is required for the supabase backend")
		}
		switch scope {
		case entity.ScopeCallerRestricted:
			if cfg.SupabaseCfg.AnonKey == "" {
				errors = append(errors, "SUPABASE_ANON_KEY is required for caller-restricted scope")
			}
		case entity.ScopePrivileged:
			if cfg.SupabaseCfg.ServiceRoleKey == "" {
				errors = append(errors, "SUPABASE_SERVICE_ROLE_KEY (or SERVICE_ROLE_KEY) is required for privileged scope")
			}
		}
	case BackendPostgres:
		if cfg.PostgresCfg.DatabaseURL == "" {
			errors = append(errors, "DATABASE_URL is required for the postgres backend")
		}
		if scope != entity.ScopePrivileged {
			errors = append(errors, "postgres backend cannot enforce caller identity; set ACCESS_SCOPE=privileged")
		}
		if cfg.PostgresCfg.DBMaxConns < 1 || cfg.PostgresCfg.DBMaxConns > 200 {
			errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.PostgresCfg.DBMaxConns))
		}
		if cfg.PostgresCfg.DBMinConns < 0 || cfg.PostgresCfg.DBMinConns > cfg.PostgresCfg.DBMaxConns {
			errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.PostgresCfg.DBMaxConns, cfg.PostgresCfg.DBMinConns))
		}
	case BackendSQLite:
		if cfg.SQLiteCfg.Path == "" {
			errors = append(errors, "SQLITE_PATH is required for the sqlite backend")
		}
		if scope != entity.ScopePrivileged {
			errors = append(errors, "sqlite backend cannot enforce caller identity; set ACCESS_SCOPE=privileged")
		}
	default:
		errors = append(errors, fmt.Sprintf("VECTOR_BACKEND must be one of %s, %s, %s; got %q",
			BackendSupabase, BackendPostgres, BackendSQLite, cfg.VectorBackend))
	}

	return errors
}

// ValidateTelegram checks settings needed only by the Telegram bot.
func ValidateTelegram(cfg *Config) error {
	var errors []string
	tg := cfg.TelegramCfg

	if tg.BotToken == "" {
		errors = append(errors, "TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.AccessScope != entity.ScopePrivileged {
		errors = append(errors, "telegram bot runs server-side and requires ACCESS_SCOPE=privileged")
	}
	if len(tg.AllowedChatIDs) == 0 {
		errors = append(errors, "TELEGRAM_ALLOWED_CHAT_IDS must list at least one chat")
	}
	if tg.RateLimitPerMinute < 1 || tg.RateLimitPerMinute > 60 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", tg.RateLimitPerMinute))
	}
	if tg.RateLimitBurst < 1 || tg.RateLimitBurst > 20 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", tg.RateLimitBurst))
	}
	if tg.ShutdownTimeout < 1 || tg.ShutdownTimeout > 300 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be between 1 and 300 seconds, got %d", tg.ShutdownTimeout))
	}

	if len(errors) > 0 {
		return fmt.Errorf("telegram configuration errors:\n  - %s", strings.Join(errors, "\n  - "))
	}
	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
