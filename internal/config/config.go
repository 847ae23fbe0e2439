package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env                string        `mapstructure:"ENV"`
	Port               string        `mapstructure:"PORT"`
	RosterPath         string        `mapstructure:"ROSTER_PATH"`
	CORSAllowed        string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout     time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel           string        `mapstructure:"LOG_LEVEL"`
	MaxUploadSizeMB    int64         `mapstructure:"MAX_UPLOAD_MB"`
	NotifyAPIURL       string        `mapstructure:"NOTIFY_API_URL"`
	NotifyAPIKey       string        `mapstructure:"NOTIFY_API_KEY"`
	NotifyFrom         string        `mapstructure:"NOTIFY_FROM"`
	ConfirmationEmails string        `mapstructure:"NOTIFY_CONFIRMATION_EMAILS"`
	NotifyMaxRetries   int           `mapstructure:"NOTIFY_MAX_RETRIES"`
	NotifyRetryDelay   time.Duration `mapstructure:"NOTIFY_RETRY_DELAY"`
	AutoNotifyUrgent   bool          `mapstructure:"AUTO_NOTIFY_URGENT"`
}

func Load() (Config, error) {
	return LoadFile(".env")
}

// LoadFile reads an optional env file; process environment variables win over it.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("ROSTER_PATH", "roster.yaml")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MAX_UPLOAD_MB", 20)
	v.SetDefault("NOTIFY_API_URL", "")
	v.SetDefault("NOTIFY_API_KEY", "")
	v.SetDefault("NOTIFY_FROM", "")
	v.SetDefault("NOTIFY_CONFIRMATION_EMAILS", "")
	v.SetDefault("NOTIFY_MAX_RETRIES", 2)
	v.SetDefault("NOTIFY_RETRY_DELAY", "500ms")
	v.SetDefault("AUTO_NOTIFY_URGENT", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Confirmations splits the comma separated supervisor list, dropping blanks.
func (c Config) Confirmations() []string {
	var out []string
	for _, part := range strings.Split(c.ConfirmationEmails, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CORSOrigins returns nil when every origin is allowed.
func (c Config) CORSOrigins() []string {
	if c.CORSAllowed == "" || c.CORSAllowed == "*" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(c.CORSAllowed, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
