package config

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/spf13/viper"
)

const (
	CalendarGoogle = "google"
	CalendarMemory = "memory"

	TokenStoreFile     = "file"
	TokenStorePostgres = "postgres"

	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"

	StrategyRuleBased      = "rule-based"
	StrategyTemplate       = "template"
	StrategyModelAssisted  = "model-assisted"
	CompletionNone         = "none"
	CompletionLMStudio     = "lmstudio"
	CompletionGemini       = "gemini"
	CompletionBedrock      = "bedrock"
	defaultLMStudioBaseURL = "http://localhost:1234"
)

type Config struct {
	Env      string `mapstructure:"ENV"`
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	BaseURL  string `mapstructure:"BASE_URL"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	RedisURL    string `mapstructure:"REDIS_URL"`

	SessionStore string        `mapstructure:"SESSION_STORE"`
	SessionTTL   time.Duration `mapstructure:"SESSION_TTL"`

	SessionHashKeyB64  string `mapstructure:"SESSION_HASH_KEY"`
	SessionBlockKeyB64 string `mapstructure:"SESSION_BLOCK_KEY"`
	TokenEncKeyB64     string `mapstructure:"TOKEN_ENC_KEY"`

	SessionHashKey  []byte `mapstructure:"-"`
	SessionBlockKey []byte `mapstructure:"-"`
	TokenEncKey     []byte `mapstructure:"-"` // 32 bytes for XChaCha20-Poly1305

	CalendarBackend       string        `mapstructure:"CALENDAR_BACKEND"`
	CalendarTimeout       time.Duration `mapstructure:"CALENDAR_TIMEOUT"`
	GoogleCredentialsFile string        `mapstructure:"GOOGLE_CREDENTIALS_FILE"`
	GoogleTokenFile       string        `mapstructure:"GOOGLE_TOKEN_FILE"`
	TokenStore            string        `mapstructure:"TOKEN_STORE"`
	TokenAccount          string        `mapstructure:"TOKEN_ACCOUNT"`

	TimeZone      string         `mapstructure:"TIMEZONE"`
	Location      *time.Location `mapstructure:"-"`
	LookaheadDays int            `mapstructure:"LOOKAHEAD_DAYS"`
	RosterFile    string         `mapstructure:"ROSTER_FILE"`

	ExtractionStrategy   string        `mapstructure:"EXTRACTION_STRATEGY"`
	PresentationStrategy string        `mapstructure:"PRESENTATION_STRATEGY"`
	CompletionProvider   string        `mapstructure:"COMPLETION_PROVIDER"`
	CompletionModel      string        `mapstructure:"COMPLETION_MODEL"`
	CompletionTimeout    time.Duration `mapstructure:"COMPLETION_TIMEOUT"`
	LMStudioBaseURL      string        `mapstructure:"LMSTUDIO_BASE_URL"`
	GeminiAPIKey         string        `mapstructure:"GEMINI_API_KEY"`
	AWSRegion            string        `mapstructure:"AWS_REGION"`
	BedrockModelID       string        `mapstructure:"BEDROCK_MODEL_ID"`
}

var keys = []string{
	"ENV", "HTTP_ADDR", "BASE_URL", "LOG_LEVEL", "LOG_FORMAT",
	"DATABASE_URL", "REDIS_URL", "SESSION_STORE", "SESSION_TTL",
	"SESSION_HASH_KEY", "SESSION_BLOCK_KEY", "TOKEN_ENC_KEY",
	"CALENDAR_BACKEND", "CALENDAR_TIMEOUT", "GOOGLE_CREDENTIALS_FILE", "GOOGLE_TOKEN_FILE",
	"TOKEN_STORE", "TOKEN_ACCOUNT", "TIMEZONE", "LOOKAHEAD_DAYS", "ROSTER_FILE",
	"EXTRACTION_STRATEGY", "PRESENTATION_STRATEGY", "COMPLETION_PROVIDER", "COMPLETION_MODEL",
	"COMPLETION_TIMEOUT", "LMSTUDIO_BASE_URL", "GEMINI_API_KEY", "AWS_REGION", "BEDROCK_MODEL_ID",
}

// FromEnv reads configuration from the environment and validates it.
func FromEnv() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ENV", "development")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("SESSION_STORE", SessionStoreMemory)
	v.SetDefault("SESSION_TTL", "2h")
	v.SetDefault("CALENDAR_BACKEND", CalendarGoogle)
	v.SetDefault("CALENDAR_TIMEOUT", "30s")
	v.SetDefault("GOOGLE_CREDENTIALS_FILE", "credentials.json")
	v.SetDefault("GOOGLE_TOKEN_FILE", "token.json")
	v.SetDefault("TOKEN_STORE", TokenStoreFile)
	v.SetDefault("TOKEN_ACCOUNT", "default")
	v.SetDefault("TIMEZONE", "America/New_York")
	v.SetDefault("LOOKAHEAD_DAYS", 14)
	v.SetDefault("EXTRACTION_STRATEGY", StrategyRuleBased)
	v.SetDefault("PRESENTATION_STRATEGY", StrategyTemplate)
	v.SetDefault("COMPLETION_PROVIDER", CompletionNone)
	v.SetDefault("COMPLETION_TIMEOUT", "30s")
	v.SetDefault("LMSTUDIO_BASE_URL", defaultLMStudioBaseURL)
	v.SetDefault("AWS_REGION", "us-east-1")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.resolve(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

func (c *Config) resolve() error {
	c.normalize()

	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", c.TimeZone, err)
	}
	c.Location = loc

	if c.SessionHashKey, err = optionalB64("SESSION_HASH_KEY", c.SessionHashKeyB64); err != nil {
		return err
	}
	if c.SessionBlockKey, err = optionalB64("SESSION_BLOCK_KEY", c.SessionBlockKeyB64); err != nil {
		return err
	}
	if c.TokenEncKey, err = optionalB64("TOKEN_ENC_KEY", c.TokenEncKeyB64); err != nil {
		return err
	}
	if !c.IsProduction() {
		// ephemeral cookie keys: sessions do not survive a restart
		if len(c.SessionHashKey) == 0 {
			c.SessionHashKey = securecookie.GenerateRandomKey(32)
		}
		if len(c.SessionBlockKey) == 0 {
			c.SessionBlockKey = securecookie.GenerateRandomKey(32)
		}
	}
	return nil
}

func (c *Config) normalize() {
	for _, s := range []*string{
		&c.Env, &c.LogLevel, &c.LogFormat, &c.SessionStore, &c.CalendarBackend, &c.TokenStore,
		&c.ExtractionStrategy, &c.PresentationStrategy, &c.CompletionProvider,
	} {
		*s = strings.ToLower(strings.TrimSpace(*s))
	}
	c.DatabaseURL = strings.TrimSpace(c.DatabaseURL)
	c.RedisURL = strings.TrimSpace(c.RedisURL)
	c.LMStudioBaseURL = strings.TrimRight(strings.TrimSpace(c.LMStudioBaseURL), "/")
}

// Validate checks option combinations.
func (c *Config) Validate() error {
	if err := oneOf("CALENDAR_BACKEND", c.CalendarBackend, CalendarGoogle, CalendarMemory); err != nil {
		return err
	}
	if err := oneOf("TOKEN_STORE", c.TokenStore, TokenStoreFile, TokenStorePostgres); err != nil {
		return err
	}
	if err := oneOf("SESSION_STORE", c.SessionStore, SessionStoreMemory, SessionStoreRedis); err != nil {
		return err
	}
	if err := oneOf("EXTRACTION_STRATEGY", c.ExtractionStrategy, StrategyRuleBased, StrategyModelAssisted); err != nil {
		return err
	}
	if err := oneOf("PRESENTATION_STRATEGY", c.PresentationStrategy, StrategyTemplate, StrategyModelAssisted); err != nil {
		return err
	}
	if err := oneOf("COMPLETION_PROVIDER", c.CompletionProvider, CompletionNone, CompletionLMStudio, CompletionGemini, CompletionBedrock); err != nil {
		return err
	}

	if c.LookaheadDays < 1 {
		return fmt.Errorf("LOOKAHEAD_DAYS must be positive (got %d)", c.LookaheadDays)
	}
	if c.CalendarTimeout <= 0 || c.CompletionTimeout <= 0 {
		return fmt.Errorf("CALENDAR_TIMEOUT and COMPLETION_TIMEOUT must be positive")
	}
	if c.SessionStore == SessionStoreRedis && c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required when SESSION_STORE=redis")
	}
	if c.CalendarBackend == CalendarGoogle && c.TokenStore == TokenStorePostgres {
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when TOKEN_STORE=postgres")
		}
		if len(c.TokenEncKey) != 32 {
			return fmt.Errorf("TOKEN_ENC_KEY must decode to 32 bytes (got %d)", len(c.TokenEncKey))
		}
	}
	if c.ModelAssisted() && c.CompletionProvider == CompletionNone {
		return fmt.Errorf("COMPLETION_PROVIDER is required for model-assisted strategies")
	}
	switch c.CompletionProvider {
	case CompletionGemini:
		if strings.TrimSpace(c.GeminiAPIKey) == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when COMPLETION_PROVIDER=gemini")
		}
	case CompletionBedrock:
		if strings.TrimSpace(c.BedrockModelID) == "" {
			return fmt.Errorf("BEDROCK_MODEL_ID is required when COMPLETION_PROVIDER=bedrock")
		}
	}
	if c.IsProduction() && (len(c.SessionHashKey) == 0 || len(c.SessionBlockKey) == 0) {
		return fmt.Errorf("SESSION_HASH_KEY and SESSION_BLOCK_KEY are required in production")
	}
	return nil
}

func (c *Config) ModelAssisted() bool {
	return c.ExtractionStrategy == StrategyModelAssisted || c.PresentationStrategy == StrategyModelAssisted
}

func oneOf(key, v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %s (got %q)", key, strings.Join(allowed, "|"), v)
}

func optionalB64(key, v string) ([]byte, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if b, err := base64.StdEncoding.DecodeString(v); err == nil {
		return b, nil
	}
	b, err := base64.RawStdEncoding.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("%s is not valid base64: %w", key, err)
	}
	return b, nil
}
