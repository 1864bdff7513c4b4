package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`
	RedisURL    string `mapstructure:"REDIS_URL"`

	AuthSigningKey string   `mapstructure:"AUTH_SIGNING_KEY"`
	AuthIssuer     string   `mapstructure:"AUTH_ISSUER"`
	AuthAudience   string   `mapstructure:"AUTH_AUDIENCE"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`

	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	AIGatewayURL   string        `mapstructure:"AI_GATEWAY_URL"`
	AIGatewayKey   string        `mapstructure:"AI_GATEWAY_KEY"`
	AIActionsPath  string        `mapstructure:"AI_ACTIONS_PATH"`
	AIBriefingPath string        `mapstructure:"AI_BRIEFING_PATH"`
	RemoteTimeout  time.Duration `mapstructure:"REMOTE_TIMEOUT"`

	DataSeed            int64         `mapstructure:"DATA_SEED"`
	DefaultCountry      string        `mapstructure:"DEFAULT_COUNTRY"`
	CaseRecordCount     int           `mapstructure:"CASE_RECORD_COUNT"`
	FacilityReportCount int           `mapstructure:"FACILITY_REPORT_COUNT"`
	PPMVCount           int           `mapstructure:"PPMV_COUNT"`
	BriefingTTL         time.Duration `mapstructure:"BRIEFING_TTL"`

	MinioEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinioBucket    string `mapstructure:"MINIO_BUCKET"`
	MinioUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`
}

var keys = []string{
	"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "REDIS_URL",
	"AUTH_SIGNING_KEY", "AUTH_ISSUER", "AUTH_AUDIENCE", "CORS_ORIGINS",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "REQUEST_TIMEOUT",
	"AI_GATEWAY_URL", "AI_GATEWAY_KEY", "AI_ACTIONS_PATH", "AI_BRIEFING_PATH", "REMOTE_TIMEOUT",
	"DATA_SEED", "DEFAULT_COUNTRY", "CASE_RECORD_COUNT", "FACILITY_REPORT_COUNT", "PPMV_COUNT", "BRIEFING_TTL",
	"MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_BUCKET", "MINIO_USE_SSL",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("AUTH_ISSUER", "nmep-dashboard")
	v.SetDefault("AUTH_AUDIENCE", "dashboard-api")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("AI_ACTIONS_PATH", "/functions/v1/generate-actions")
	v.SetDefault("AI_BRIEFING_PATH", "/functions/v1/audio-briefing")
	v.SetDefault("REMOTE_TIMEOUT", "20s")
	v.SetDefault("DATA_SEED", 0)
	v.SetDefault("DEFAULT_COUNTRY", "NG")
	v.SetDefault("CASE_RECORD_COUNT", 500)
	v.SetDefault("FACILITY_REPORT_COUNT", 300)
	v.SetDefault("PPMV_COUNT", 200)
	v.SetDefault("BRIEFING_TTL", "1h")
	v.SetDefault("MINIO_BUCKET", "briefings")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) == 1 && strings.Contains(cfg.CORSOrigins[0], ",") {
		cfg.CORSOrigins = strings.Split(cfg.CORSOrigins[0], ",")
	}
	cfg.DefaultCountry = strings.ToUpper(cfg.DefaultCountry)

	if cfg.IsDev() {
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: Development auth is active, all requests get admin access.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// HasDatabase reports whether actions are persisted in PostgreSQL rather than
// in process memory.
func (c *Config) HasDatabase() bool { return c.DatabaseURL != "" }

// HasRedis reports whether change notifications fan out through Redis.
func (c *Config) HasRedis() bool { return c.RedisURL != "" }

// HasMinio reports whether briefing audio is kept in an object store.
func (c *Config) HasMinio() bool { return c.MinioEndpoint != "" }

// HasGateway reports whether the AI gateway is configured.
func (c *Config) HasGateway() bool { return c.AIGatewayURL != "" }

// Validate checks that the configuration is safe to run. Outside development
// a signing key is required so bearer tokens are actually verified.
func (c *Config) Validate() error {
	if !c.IsDev() && c.AuthSigningKey == "" {
		return fmt.Errorf("AUTH_SIGNING_KEY must be set when ENV=%q", c.Env)
	}
	if c.AuthSigningKey != "" && len(c.AuthSigningKey) < 32 {
		return fmt.Errorf("AUTH_SIGNING_KEY must be at least 32 characters, got %d", len(c.AuthSigningKey))
	}
	if c.HasGateway() && c.AIGatewayKey == "" {
		return fmt.Errorf("AI_GATEWAY_KEY is required when AI_GATEWAY_URL is set")
	}
	if c.HasMinio() && (c.MinioAccessKey == "" || c.MinioSecretKey == "") {
		return fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when MINIO_ENDPOINT is set")
	}
	if c.RemoteTimeout <= 0 {
		return fmt.Errorf("REMOTE_TIMEOUT must be positive, got %s", c.RemoteTimeout)
	}
	if c.BriefingTTL <= 0 {
		return fmt.Errorf("BRIEFING_TTL must be positive, got %s", c.BriefingTTL)
	}
	if len(c.DefaultCountry) != 2 {
		return fmt.Errorf("DEFAULT_COUNTRY must be a two-letter code, got %q", c.DefaultCountry)
	}
	if c.CaseRecordCount < 0 || c.FacilityReportCount < 0 || c.PPMVCount < 0 {
		return fmt.Errorf("dataset sizes must not be negative")
	}
	return nil
}
