package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingCredentials is returned when the Gmail client id or secret is not configured
var ErrMissingCredentials = errors.New("missing Gmail client credentials: set GMAIL_CLIENT_ID and GMAIL_CLIENT_SECRET")

// envBindings maps configuration keys to their plain environment variable names
var envBindings = map[string]string{
	"gmail.client_id":        "GMAIL_CLIENT_ID",
	"gmail.client_secret":    "GMAIL_CLIENT_SECRET",
	"gmail.credentials_path": "GOOGLE_CREDENTIALS_PATH",
	"gmail.token_path":       "TOKEN_PATH",
	"cache.url":              "CACHE_URL",
	"llm.model":              "MODEL_PATH",
}

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance. An empty configFile searches
// the default locations; a missing config file is not an error.
func New(configFile string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/email-classifier/")
		v.AddConfigPath("$HOME/.email-classifier")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("EMAIL_CLASSIFIER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func bindEnv(v *viper.Viper) error {
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	return nil
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Mail source defaults
	v.SetDefault("mail.source", "gmail")
	v.SetDefault("mail.limit", 100)

	// Gmail defaults
	v.SetDefault("gmail.client_id", "")
	v.SetDefault("gmail.client_secret", "")
	v.SetDefault("gmail.credentials_path", "credentials.json")
	v.SetDefault("gmail.token_path", "token.gob")
	v.SetDefault("gmail.token_store", "file")
	v.SetDefault("gmail.keyring_service", "email-classifier")
	v.SetDefault("gmail.user", "me")

	// IMAP defaults
	v.SetDefault("imap.host", "")
	v.SetDefault("imap.port", 993)
	v.SetDefault("imap.username", "")
	v.SetDefault("imap.password", "")
	v.SetDefault("imap.tls", true)
	v.SetDefault("imap.mailbox", "INBOX")

	// LLM provider defaults
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "Phi-3-mini-4k-instruct.Q4_0.gguf")
	v.SetDefault("llm.max_tokens", 100)
	v.SetDefault("llm.max_field_size", 512)
	v.SetDefault("llm.temperature", 0.1)

	// OpenAI-compatible server defaults
	v.SetDefault("openai.base_url", "http://localhost:8080/v1")
	v.SetDefault("openai.api_key", "")

	// Ollama defaults
	v.SetDefault("ollama.host", "http://localhost:11434")

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-1.5-flash")
	v.SetDefault("gemini.top_p", 0.9)

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-v2")
	v.SetDefault("bedrock.top_p", 0.9)

	// Cache defaults
	v.SetDefault("cache.url", "redis://localhost:6379/0")
	v.SetDefault("cache.ttl", "4h")
	v.SetDefault("cache.cleanup_frequency", "1h")
	v.SetDefault("cache.dial_timeout", "5s")

	// Classification defaults
	v.SetDefault("classify.categories", []string{
		"Work", "Shopping", "Finance", "Health", "Tickets", "Payment Confirmations",
	})
	v.SetDefault("classify.noreply_patterns", []string{"noreply", "no-reply"})

	// Report defaults
	v.SetDefault("report.smtp.enabled", false)
	v.SetDefault("report.smtp.address", "localhost:25")
	v.SetDefault("report.smtp.from", "email-classifier@localhost")
	v.SetDefault("report.smtp.username", "")
	v.SetDefault("report.smtp.password", "")

	// Metrics defaults
	v.SetDefault("metrics.textfile", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Validate checks the settings required by the selected mail source
func (c *Config) Validate() error {
	if c.GetString("mail.source") != "gmail" {
		return nil
	}
	gmail := c.GetGmail()
	if gmail.ClientID == "" || gmail.ClientSecret == "" {
		return ErrMissingCredentials
	}
	return nil
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	d, err := time.ParseDuration(c.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}

// Set overrides a configuration value
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
