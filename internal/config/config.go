// internal/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	AMQP     AMQPConfig     `mapstructure:"amqp"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Content  ContentConfig  `mapstructure:"content"`
	Mailer   MailerConfig   `mapstructure:"mailer"`
	BulkSend BulkSendConfig `mapstructure:"bulk_send"`
	Import   ImportConfig   `mapstructure:"import"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxUploadMB    int64    `mapstructure:"max_upload_mb"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"sslmode"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	JobTTL   time.Duration `mapstructure:"job_ttl"`
}

// AMQPConfig configures the bulk-send job queue. An empty URL selects the
// in-process queue.
type AMQPConfig struct {
	URL   string `mapstructure:"url"`
	Queue string `mapstructure:"queue"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ContentConfig struct {
	Provider        string        `mapstructure:"provider"` // openai, bedrock
	FallbackHTML    bool          `mapstructure:"fallback_html"`
	RequestsPerSec  float64       `mapstructure:"requests_per_sec"`
	Timeout         time.Duration `mapstructure:"timeout"`
	PersonalizeJobs int           `mapstructure:"personalize_jobs"`
	OpenAI          struct {
		APIKey  string `mapstructure:"api_key"`
		Model   string `mapstructure:"model"`
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"openai"`
	Bedrock struct {
		Region  string `mapstructure:"region"`
		ModelID string `mapstructure:"model_id"`
	} `mapstructure:"bedrock"`
}

type MailerConfig struct {
	Provider string `mapstructure:"provider"` // smtp, ses
	From     string `mapstructure:"from"`
	SMTP     struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
	} `mapstructure:"smtp"`
	SES struct {
		Region    string `mapstructure:"region"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
	} `mapstructure:"ses"`
}

type BulkSendConfig struct {
	Delay        time.Duration `mapstructure:"delay"`
	PrimaryColor string        `mapstructure:"primary_color"`
	AccentColor  string        `mapstructure:"accent_color"`
	Font         string        `mapstructure:"font"`
}

type ImportConfig struct {
	ChunkSize int `mapstructure:"chunk_size"`
}
