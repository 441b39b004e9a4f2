package config

import "time"

// MailConfig selects the mail provider
type MailConfig struct {
	Source string
	Limit  int
}

// GmailConfig represents the Gmail OAuth configuration
type GmailConfig struct {
	ClientID        string
	ClientSecret    string
	CredentialsPath string
	TokenPath       string
	TokenStore      string
	KeyringService  string
	User            string
}

// IMAPConfig represents the configuration for an IMAP mailbox
type IMAPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	TLS      bool
	Mailbox  string
}

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider     string
	Model        string
	MaxTokens    int
	MaxFieldSize int
	Temperature  float32
}

// OpenAIConfig represents the configuration for an OpenAI-compatible server
type OpenAIConfig struct {
	BaseURL string
	APIKey  string
}

// OllamaConfig represents the configuration for a local Ollama runtime
type OllamaConfig struct {
	Host string
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey    string
	ModelName string
	TopP      float32
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region  string
	ModelID string
	TopP    float32
}

// CacheConfig represents the response cache configuration
type CacheConfig struct {
	URL              string
	TTL              time.Duration
	CleanupFrequency time.Duration
	DialTimeout      time.Duration
}

// SMTPConfig represents the report mailer configuration
type SMTPConfig struct {
	Enabled  bool
	Address  string
	From     string
	Username string
	Password string
}

// GetMail returns the mail source configuration
func (c *Config) GetMail() MailConfig {
	return MailConfig{
		Source: c.GetString("mail.source"),
		Limit:  c.GetInt("mail.limit"),
	}
}

// GetGmail returns the Gmail configuration
func (c *Config) GetGmail() GmailConfig {
	return GmailConfig{
		ClientID:        c.GetString("gmail.client_id"),
		ClientSecret:    c.GetString("gmail.client_secret"),
		CredentialsPath: c.GetString("gmail.credentials_path"),
		TokenPath:       c.GetString("gmail.token_path"),
		TokenStore:      c.GetString("gmail.token_store"),
		KeyringService:  c.GetString("gmail.keyring_service"),
		User:            c.GetString("gmail.user"),
	}
}

// GetIMAP returns the IMAP configuration
func (c *Config) GetIMAP() IMAPConfig {
	return IMAPConfig{
		Host:     c.GetString("imap.host"),
		Port:     c.GetInt("imap.port"),
		Username: c.GetString("imap.username"),
		Password: c.GetString("imap.password"),
		TLS:      c.GetBool("imap.tls"),
		Mailbox:  c.GetString("imap.mailbox"),
	}
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider:     c.GetString("llm.provider"),
		Model:        c.GetString("llm.model"),
		MaxTokens:    c.GetInt("llm.max_tokens"),
		MaxFieldSize: c.GetInt("llm.max_field_size"),
		Temperature:  float32(c.GetFloat64("llm.temperature")),
	}
}

// GetOpenAI returns the OpenAI-compatible server configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		BaseURL: c.GetString("openai.base_url"),
		APIKey:  c.GetString("openai.api_key"),
	}
}

// GetOllama returns the Ollama configuration
func (c *Config) GetOllama() OllamaConfig {
	return OllamaConfig{
		Host: c.GetString("ollama.host"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:    c.GetString("gemini.api_key"),
		ModelName: c.GetString("gemini.model_name"),
		TopP:      float32(c.GetFloat64("gemini.top_p")),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:  c.GetString("bedrock.region"),
		ModelID: c.GetString("bedrock.model_id"),
		TopP:    float32(c.GetFloat64("bedrock.top_p")),
	}
}

// GetCache returns the cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		return CacheConfig{}, err
	}
	cleanup, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return CacheConfig{}, err
	}
	dial, err := c.GetDuration("cache.dial_timeout")
	if err != nil {
		return CacheConfig{}, err
	}
	return CacheConfig{
		URL:              c.GetString("cache.url"),
		TTL:              ttl,
		CleanupFrequency: cleanup,
		DialTimeout:      dial,
	}, nil
}

// GetSMTP returns the report mailer configuration
func (c *Config) GetSMTP() SMTPConfig {
	return SMTPConfig{
		Enabled:  c.GetBool("report.smtp.enabled"),
		Address:  c.GetString("report.smtp.address"),
		From:     c.GetString("report.smtp.from"),
		Username: c.GetString("report.smtp.username"),
		Password: c.GetString("report.smtp.password"),
	}
}

// GetCategories returns the predefined category labels
func (c *Config) GetCategories() []string {
	return c.GetStringSlice("classify.categories")
}

// GetNoReplyPatterns returns the substrings that mark automated senders
func (c *Config) GetNoReplyPatterns() []string {
	return c.GetStringSlice("classify.noreply_patterns")
}
