package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "CONTENTSTUDIO_CONFIG"

	logLevelEnv    = "LOG_LEVEL"
	logFormatEnv   = "LOG_FORMAT"
	httpAddrEnv    = "HTTP_ADDR"
	appURLEnv      = "APP_URL"
	dbDriverEnv    = "DATABASE_DRIVER"
	dbDSNEnv       = "DATABASE_DSN"
	redisAddrEnv   = "REDIS_ADDR"
	redisPassEnv   = "REDIS_PASSWORD"
	deepseekKeyEnv = "DEEPSEEK_API_KEY"
	openaiKeyEnv   = "OPENAI_API_KEY"
	openaiModelEnv = "OPENAI_MODEL"
	geminiKeyEnv   = "GEMINI_API_KEY"
	smtpHostEnv    = "SMTP_HOST"
	smtpPortEnv    = "SMTP_PORT"
	smtpUserEnv    = "SMTP_USER"
	smtpPassEnv    = "SMTP_PASS"
	smtpFromEnv    = "SMTP_FROM"
	signingKeyEnv  = "APPROVAL_SIGNING_KEY"
	minioEndpoint  = "MINIO_ENDPOINT"
	minioAccessEnv = "MINIO_ACCESS_KEY"
	minioSecretEnv = "MINIO_SECRET_KEY"
	minioBucketEnv = "MINIO_BUCKET"
	minioSSLEnv    = "MINIO_USE_SSL"
)

// Provider names accepted in generation.order.
const (
	ProviderDeepSeek = "deepseek"
	ProviderOpenAI   = "openai"
	ProviderGemini   = "gemini"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging     LoggingConfig     `yaml:"logging"`
	HTTP        HTTPConfig        `yaml:"http"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	Generation  GenerationConfig  `yaml:"generation"`
	Providers   ProvidersConfig   `yaml:"providers"`
	Email       EmailConfig       `yaml:"email"`
	Approval    ApprovalConfig    `yaml:"approval"`
	Media       MediaConfig       `yaml:"media"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
}

// LoggingConfig selects level and handler format (text or json).
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Addr              string        `yaml:"addr"`
	GenerationTimeout time.Duration `yaml:"generationTimeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdownTimeout"`
}

// DatabaseConfig describes the SQL connection. Driver is "postgres" or "sqlite".
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// RedisConfig enables the shared limiter store when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GenerationConfig tunes the provider chain and its limits.
type GenerationConfig struct {
	Order      []string      `yaml:"order"`
	RetryDelay time.Duration `yaml:"retryDelay"`
	PerWindow  int           `yaml:"perWindow"`
	Window     time.Duration `yaml:"window"`
	DailyLimit int           `yaml:"dailyLimit"`
	// PreferredModel is tried first by the provider whose model family it
	// belongs to, e.g. "gpt-4o".
	PreferredModel string `yaml:"preferredModel"`
}

// ProvidersConfig groups per-vendor settings.
type ProvidersConfig struct {
	DeepSeek ProviderConfig `yaml:"deepseek"`
	OpenAI   ProviderConfig `yaml:"openai"`
	Gemini   ProviderConfig `yaml:"gemini"`
}

// ProviderConfig defines how to contact one OpenAI-compatible vendor.
type ProviderConfig struct {
	APIKey         string   `yaml:"apiKey"`
	BaseURL        string   `yaml:"baseUrl"`
	Model          string   `yaml:"model"`
	FallbackModels []string `yaml:"fallbackModels"`
	JSONMode       *bool    `yaml:"jsonMode"`
}

// EmailConfig configures SMTP delivery. An empty Host logs mail instead.
type EmailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// ApprovalConfig controls the public approval links.
type ApprovalConfig struct {
	BaseURL    string        `yaml:"baseUrl"`
	SigningKey string        `yaml:"signingKey"`
	LinkTTL    time.Duration `yaml:"linkTtl"`
}

// MediaConfig points at a MinIO/S3 bucket. An empty Endpoint disables uploads.
type MediaConfig struct {
	Endpoint  string        `yaml:"endpoint"`
	AccessKey string        `yaml:"accessKey"`
	SecretKey string        `yaml:"secretKey"`
	Bucket    string        `yaml:"bucket"`
	UseSSL    bool          `yaml:"useSsl"`
	URLExpiry time.Duration `yaml:"urlExpiry"`
}

// MaintenanceConfig controls periodic housekeeping.
type MaintenanceConfig struct {
	SweepInterval time.Duration `yaml:"sweepInterval"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	setString(&c.Logging.Level, logLevelEnv)
	setString(&c.Logging.Format, logFormatEnv)
	setString(&c.HTTP.Addr, httpAddrEnv)
	setString(&c.Approval.BaseURL, appURLEnv)
	setString(&c.Approval.SigningKey, signingKeyEnv)

	setString(&c.Database.Driver, dbDriverEnv)
	setString(&c.Database.DSN, dbDSNEnv)
	setString(&c.Redis.Addr, redisAddrEnv)
	setString(&c.Redis.Password, redisPassEnv)

	setString(&c.Providers.DeepSeek.APIKey, deepseekKeyEnv)
	setString(&c.Providers.OpenAI.APIKey, openaiKeyEnv)
	setString(&c.Providers.OpenAI.Model, openaiModelEnv)
	setString(&c.Providers.Gemini.APIKey, geminiKeyEnv)

	setString(&c.Email.Host, smtpHostEnv)
	setString(&c.Email.Username, smtpUserEnv)
	setString(&c.Email.Password, smtpPassEnv)
	setString(&c.Email.From, smtpFromEnv)
	if v := os.Getenv(smtpPortEnv); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Email.Port = port
		} else {
			log.Printf("config: ignoring %s=%q: %v", smtpPortEnv, v, err)
		}
	}

	setString(&c.Media.Endpoint, minioEndpoint)
	setString(&c.Media.AccessKey, minioAccessEnv)
	setString(&c.Media.SecretKey, minioSecretEnv)
	setString(&c.Media.Bucket, minioBucketEnv)
	if v := os.Getenv(minioSSLEnv); v != "" {
		c.Media.UseSSL = strings.EqualFold(v, "true") || v == "1"
	}
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.HTTP.Addr != "" {
		base.HTTP.Addr = override.HTTP.Addr
	}
	if override.HTTP.GenerationTimeout > 0 {
		base.HTTP.GenerationTimeout = override.HTTP.GenerationTimeout
	}
	if override.HTTP.ShutdownTimeout > 0 {
		base.HTTP.ShutdownTimeout = override.HTTP.ShutdownTimeout
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
		if base.Database.Driver == "" {
			base.Database.Driver = defaultConfig().Database.Driver
		}
	}

	if override.Redis.Addr != "" {
		base.Redis = override.Redis
	}

	if len(override.Generation.Order) > 0 {
		base.Generation.Order = override.Generation.Order
	}
	if override.Generation.RetryDelay > 0 {
		base.Generation.RetryDelay = override.Generation.RetryDelay
	}
	if override.Generation.PerWindow > 0 {
		base.Generation.PerWindow = override.Generation.PerWindow
	}
	if override.Generation.Window > 0 {
		base.Generation.Window = override.Generation.Window
	}
	if override.Generation.DailyLimit > 0 {
		base.Generation.DailyLimit = override.Generation.DailyLimit
	}
	if override.Generation.PreferredModel != "" {
		base.Generation.PreferredModel = override.Generation.PreferredModel
	}

	base.Providers.DeepSeek = mergeProvider(base.Providers.DeepSeek, override.Providers.DeepSeek)
	base.Providers.OpenAI = mergeProvider(base.Providers.OpenAI, override.Providers.OpenAI)
	base.Providers.Gemini = mergeProvider(base.Providers.Gemini, override.Providers.Gemini)

	if override.Email.Host != "" {
		base.Email.Host = override.Email.Host
	}
	if override.Email.Port > 0 {
		base.Email.Port = override.Email.Port
	}
	if override.Email.Username != "" {
		base.Email.Username = override.Email.Username
	}
	if override.Email.Password != "" {
		base.Email.Password = override.Email.Password
	}
	if override.Email.From != "" {
		base.Email.From = override.Email.From
	}

	if override.Approval.BaseURL != "" {
		base.Approval.BaseURL = override.Approval.BaseURL
	}
	if override.Approval.SigningKey != "" {
		base.Approval.SigningKey = override.Approval.SigningKey
	}
	if override.Approval.LinkTTL > 0 {
		base.Approval.LinkTTL = override.Approval.LinkTTL
	}

	if override.Media.Endpoint != "" {
		base.Media.Endpoint = override.Media.Endpoint
		base.Media.UseSSL = override.Media.UseSSL
	}
	if override.Media.AccessKey != "" {
		base.Media.AccessKey = override.Media.AccessKey
	}
	if override.Media.SecretKey != "" {
		base.Media.SecretKey = override.Media.SecretKey
	}
	if override.Media.Bucket != "" {
		base.Media.Bucket = override.Media.Bucket
	}
	if override.Media.URLExpiry > 0 {
		base.Media.URLExpiry = override.Media.URLExpiry
	}

	if override.Maintenance.SweepInterval > 0 {
		base.Maintenance.SweepInterval = override.Maintenance.SweepInterval
	}

	return base
}

func mergeProvider(base, override ProviderConfig) ProviderConfig {
	if override.APIKey != "" {
		base.APIKey = override.APIKey
	}
	if override.BaseURL != "" {
		base.BaseURL = override.BaseURL
	}
	if override.Model != "" {
		base.Model = override.Model
	}
	if len(override.FallbackModels) > 0 {
		base.FallbackModels = override.FallbackModels
	}
	if override.JSONMode != nil {
		base.JSONMode = override.JSONMode
	}
	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		HTTP: HTTPConfig{
			Addr:              ":8080",
			GenerationTimeout: 2 * time.Minute,
			ShutdownTimeout:   10 * time.Second,
		},
		Database: DatabaseConfig{Driver: "sqlite", DSN: "file:contentstudio.db?_pragma=foreign_keys(1)"},
		Generation: GenerationConfig{
			Order:      []string{ProviderDeepSeek, ProviderOpenAI, ProviderGemini},
			RetryDelay: 2 * time.Second,
			PerWindow:  15,
			Window:     time.Minute,
			DailyLimit: 1500,
		},
		Providers: ProvidersConfig{
			DeepSeek: ProviderConfig{
				BaseURL:        "https://api.deepseek.com",
				Model:          "deepseek-chat",
				FallbackModels: []string{"deepseek-reasoner"},
			},
			OpenAI: ProviderConfig{
				BaseURL:        "https://api.openai.com/v1",
				Model:          "gpt-4o-mini",
				FallbackModels: []string{"gpt-4o", "gpt-4-turbo-preview"},
			},
			Gemini: ProviderConfig{
				BaseURL: "https://generativelanguage.googleapis.com/v1beta/openai",
				Model:   "gemini-1.5-flash",
				FallbackModels: []string{
					"gemini-1.5-flash-8b",
					"gemini-1.5-flash-latest",
					"gemini-1.5-pro",
					"gemini-1.5-pro-latest",
					"gemini-2.0-flash-exp",
					"gemini-exp-1206",
				},
			},
		},
		Email:       EmailConfig{Port: 587, From: "ContentStudio <noreply@contentstudio.local>"},
		Approval:    ApprovalConfig{BaseURL: "http://localhost:8080", LinkTTL: 14 * 24 * time.Hour},
		Media:       MediaConfig{Bucket: "contentstudio-media", URLExpiry: 7 * 24 * time.Hour},
		Maintenance: MaintenanceConfig{SweepInterval: 5 * time.Minute},
	}
}
