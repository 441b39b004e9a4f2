package factory

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/adapters/cache"
	"github.com/mikey/email-classifier/internal/adapters/gmail"
	"github.com/mikey/email-classifier/internal/adapters/imap"
	"github.com/mikey/email-classifier/internal/adapters/ollama"
	"github.com/mikey/email-classifier/internal/adapters/openai"
	"github.com/mikey/email-classifier/internal/config"
)

func newTestConfig() *config.Config {
	return config.NewFromViper(config.NewEmptyViper())
}

func TestCreateCacheRepositoryMemory(t *testing.T) {
	cfg := newTestConfig()
	cfg.Set("cache.url", "memory://")
	cfg.Set("cache.cleanup_frequency", "0s")

	repo, err := NewCacheFactory(cfg, zap.NewNop()).CreateCacheRepository()
	require.NoError(t, err)
	defer repo.Close()

	assert.IsType(t, &cache.MemoryCache{}, repo)
}

func TestCreateCacheRepositorySQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.db")
	cfg := newTestConfig()
	cfg.Set("cache.url", "sqlite://"+path)
	cfg.Set("cache.cleanup_frequency", "0s")

	repo, err := NewCacheFactory(cfg, zap.NewNop()).CreateCacheRepository()
	require.NoError(t, err)
	defer repo.Close()

	assert.IsType(t, &cache.SQLiteCache{}, repo)
	_, err = os.Stat(filepath.Dir(path))
	assert.NoError(t, err)
}

func TestCreateCacheRepositoryRedisUnavailable(t *testing.T) {
	cfg := newTestConfig()
	cfg.Set("cache.url", "redis://127.0.0.1:1/0")
	cfg.Set("cache.dial_timeout", "200ms")

	repo, err := NewCacheFactory(cfg, zap.NewNop()).CreateCacheRepository()
	require.NoError(t, err)
	defer repo.Close()

	assert.IsType(t, &cache.RedisCache{}, repo)
}

func TestCreateCacheRepositoryRejectsBadURL(t *testing.T) {
	for _, url := range []string{"memcached://localhost", "localhost:6379", "sqlite://"} {
		cfg := newTestConfig()
		cfg.Set("cache.url", url)

		_, err := NewCacheFactory(cfg, zap.NewNop()).CreateCacheRepository()
		assert.Error(t, err, url)
	}
}

func TestGetCacheTTL(t *testing.T) {
	ttl, err := NewCacheFactory(newTestConfig(), zap.NewNop()).GetCacheTTL()
	require.NoError(t, err)
	assert.Equal(t, 4*time.Hour, ttl)
}

func TestCreateLLMClient(t *testing.T) {
	cfg := newTestConfig()

	client, err := NewLLMFactory(cfg, zap.NewNop()).CreateLLMClient()
	require.NoError(t, err)
	assert.IsType(t, &openai.OpenAIClient{}, client)

	cfg.Set("llm.provider", "ollama")
	client, err = NewLLMFactory(cfg, zap.NewNop()).CreateLLMClient()
	require.NoError(t, err)
	assert.IsType(t, &ollama.OllamaClient{}, client)
}

func TestCreateLLMClientUnknownProvider(t *testing.T) {
	cfg := newTestConfig()
	cfg.Set("llm.provider", "gpt4all")

	_, err := NewLLMFactory(cfg, zap.NewNop()).CreateLLMClient()
	assert.ErrorContains(t, err, "unsupported LLM provider")
}

func TestCreateMailSourceGmail(t *testing.T) {
	cfg := newTestConfig()
	cfg.Set("gmail.credentials_path", filepath.Join(t.TempDir(), "absent.json"))
	cfg.Set("gmail.client_id", "id")
	cfg.Set("gmail.client_secret", "secret")

	source, err := NewSourceFactory(cfg, zap.NewNop()).CreateMailSource()
	require.NoError(t, err)
	assert.IsType(t, &gmail.Source{}, source)
}

func TestCreateMailSourceGmailUnknownTokenStore(t *testing.T) {
	cfg := newTestConfig()
	cfg.Set("gmail.credentials_path", filepath.Join(t.TempDir(), "absent.json"))
	cfg.Set("gmail.client_id", "id")
	cfg.Set("gmail.client_secret", "secret")
	cfg.Set("gmail.token_store", "vault")

	_, err := NewSourceFactory(cfg, zap.NewNop()).CreateMailSource()
	assert.ErrorContains(t, err, "unsupported token store")
}

func TestCreateMailSourceIMAP(t *testing.T) {
	cfg := newTestConfig()
	cfg.Set("mail.source", "imap")

	_, err := NewSourceFactory(cfg, zap.NewNop()).CreateMailSource()
	assert.Error(t, err)

	cfg.Set("imap.host", "imap.example.com")
	source, err := NewSourceFactory(cfg, zap.NewNop()).CreateMailSource()
	require.NoError(t, err)
	assert.IsType(t, &imap.Source{}, source)
}

func TestCreateMailSourceUnknown(t *testing.T) {
	cfg := newTestConfig()
	cfg.Set("mail.source", "pop3")

	_, err := NewSourceFactory(cfg, zap.NewNop()).CreateMailSource()
	assert.ErrorContains(t, err, "unsupported mail source")
}

func TestCreatePromptBuilder(t *testing.T) {
	f := NewTextProcessorFactory(newTestConfig(), zap.NewNop())

	builder := f.CreatePromptBuilder(f.CreateTextProcessor())
	require.NotNil(t, builder)
}
