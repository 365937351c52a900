package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Stripe    StripeConfig    `mapstructure:"stripe"`
	WhatsApp  WhatsAppConfig  `mapstructure:"whatsapp"`
	Email     EmailConfig     `mapstructure:"email"`
	Outbox    OutboxConfig    `mapstructure:"outbox"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Internal  InternalConfig  `mapstructure:"internal"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type StripeConfig struct {
	SecretKey        string        `mapstructure:"secret_key"`
	WebhookSecret    string        `mapstructure:"webhook_secret"`
	WebhookTolerance time.Duration `mapstructure:"webhook_tolerance"`
	SuccessURL       string        `mapstructure:"success_url"`
	CancelURL        string        `mapstructure:"cancel_url"`
}

type WhatsAppConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

type EmailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type OutboxConfig struct {
	BatchSize     int           `mapstructure:"batch_size"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	RetentionDays int           `mapstructure:"retention_days"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// InternalConfig carries the shared secrets gating non-public
// endpoints: the sweep trigger (external scheduler) and the agent
// gateway.
type InternalConfig struct {
	CronSecret  string `mapstructure:"cron_secret"`
	AgentSecret string `mapstructure:"agent_secret"`
}

// secretOverrides are the values that must never live in config.yml.
// They overlay whatever the file provided.
type secretOverrides struct {
	DatabasePassword    string `envconfig:"DB_PASSWORD"`
	JWTSecret           string `envconfig:"JWT_SECRET"`
	StripeSecretKey     string `envconfig:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`
	WhatsAppAPIKey      string `envconfig:"WHATSAPP_API_KEY"`
	EmailPassword       string `envconfig:"EMAIL_PASSWORD"`
	CronSecret          string `envconfig:"CRON_SECRET"`
	AgentSecret         string `envconfig:"AGENT_SECRET"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var secrets secretOverrides
	if err := envconfig.Process("", &secrets); err != nil {
		return nil, fmt.Errorf("failed to read secret overrides: %w", err)
	}
	applySecrets(&config, &secrets)

	if config.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &config, nil
}

func applySecrets(cfg *Config, s *secretOverrides) {
	if s.DatabasePassword != "" {
		cfg.Database.Password = s.DatabasePassword
	}
	if s.JWTSecret != "" {
		cfg.JWT.Secret = s.JWTSecret
	}
	if s.StripeSecretKey != "" {
		cfg.Stripe.SecretKey = s.StripeSecretKey
	}
	if s.StripeWebhookSecret != "" {
		cfg.Stripe.WebhookSecret = s.StripeWebhookSecret
	}
	if s.WhatsAppAPIKey != "" {
		cfg.WhatsApp.APIKey = s.WhatsAppAPIKey
	}
	if s.EmailPassword != "" {
		cfg.Email.Password = s.EmailPassword
	}
	if s.CronSecret != "" {
		cfg.Internal.CronSecret = s.CronSecret
	}
	if s.AgentSecret != "" {
		cfg.Internal.AgentSecret = s.AgentSecret
	}
}
