// internal/config/loader.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads .env (if any), configs/config.yaml (if any) and the process
// environment, in increasing precedence. DATABASE_HOST overrides database.host.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return LoadFrom(viper.New(), "config", "./configs", ".")
}

// LoadFrom loads configuration into v using the named config file searched
// in paths. A missing file is not an error.
func LoadFrom(v *viper.Viper, name string, paths ...string) (*Config, error) {
	v.SetConfigName(name)
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "salesmail")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.max_upload_mb", 32)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "salesmail")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle", 5)

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.job_ttl", 24*time.Hour)

	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.queue", "bulk_sends")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("content.provider", "openai")
	v.SetDefault("content.fallback_html", true)
	v.SetDefault("content.requests_per_sec", 2.0)
	v.SetDefault("content.timeout", 60*time.Second)
	v.SetDefault("content.personalize_jobs", 4)
	v.SetDefault("content.openai.api_key", "")
	v.SetDefault("content.openai.model", "gpt-4o")
	v.SetDefault("content.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("content.bedrock.region", "us-east-1")
	v.SetDefault("content.bedrock.model_id", "anthropic.claude-3-sonnet-20240229-v1:0")

	v.SetDefault("mailer.provider", "smtp")
	v.SetDefault("mailer.from", "")
	v.SetDefault("mailer.smtp.host", "")
	v.SetDefault("mailer.smtp.port", 587)
	v.SetDefault("mailer.smtp.username", "")
	v.SetDefault("mailer.smtp.password", "")
	v.SetDefault("mailer.ses.region", "us-east-1")
	v.SetDefault("mailer.ses.access_key", "")
	v.SetDefault("mailer.ses.secret_key", "")

	v.SetDefault("bulk_send.delay", 100*time.Millisecond)
	v.SetDefault("bulk_send.primary_color", "#2C3E50")
	v.SetDefault("bulk_send.accent_color", "#E74C3C")
	v.SetDefault("bulk_send.font", "sans-serif")

	v.SetDefault("import.chunk_size", 1000)
}

func validateConfig(cfg *Config) error {
	var errs []string

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be between 1 and 65535, got %d", cfg.Server.Port))
	}
	switch cfg.Mailer.Provider {
	case "smtp", "ses":
	default:
		errs = append(errs, fmt.Sprintf("mailer.provider must be smtp or ses, got %q", cfg.Mailer.Provider))
	}
	switch cfg.Content.Provider {
	case "openai", "bedrock":
	default:
		errs = append(errs, fmt.Sprintf("content.provider must be openai or bedrock, got %q", cfg.Content.Provider))
	}
	if cfg.Import.ChunkSize <= 0 {
		errs = append(errs, "import.chunk_size must be positive")
	}
	if cfg.BulkSend.Delay < 0 {
		errs = append(errs, "bulk_send.delay must not be negative")
	}
	if cfg.Content.PersonalizeJobs <= 0 {
		errs = append(errs, "content.personalize_jobs must be positive")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
