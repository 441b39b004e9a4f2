package di

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/config"
	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/report"
)

func TestBuildContainerWithConfigResolvesPipeline(t *testing.T) {
	cfg := config.NewFromViper(config.NewEmptyViper())
	cfg.Set("mail.source", "imap")
	cfg.Set("imap.host", "imap.example.com")
	cfg.Set("cache.url", "memory://")
	cfg.Set("cache.cleanup_frequency", "0s")

	container, err := BuildContainerWithConfig(cfg, zap.NewNop())
	require.NoError(t, err)

	err = container.Invoke(func(p *core.Pipeline, cache core.CacheRepository, plotter *report.Plotter, mailer *report.Mailer) {
		assert.NotNil(t, p)
		assert.NotNil(t, plotter)
		assert.NotNil(t, mailer)
		assert.Equal(t, cfg.GetCategories(), p.Categories())
		assert.NoError(t, cache.Close())
	})
	require.NoError(t, err)
}

func TestBuildContainerWithConfigReportsFactoryErrors(t *testing.T) {
	cfg := config.NewFromViper(config.NewEmptyViper())
	cfg.Set("llm.provider", "gpt4all")

	container, err := BuildContainerWithConfig(cfg, zap.NewNop())
	require.NoError(t, err)

	err = container.Invoke(func(core.LLMClient) {})
	assert.ErrorContains(t, dig.RootCause(err), "unsupported LLM provider")
}

func TestBuildContainerValidatesConfiguration(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GMAIL_CLIENT_ID", "")
	t.Setenv("GMAIL_CLIENT_SECRET", "")
	t.Setenv("EMAIL_CLASSIFIER_MAIL_SOURCE", "")

	container, err := BuildContainer(Options{})
	require.NoError(t, err)

	err = container.Invoke(func(*config.Config) {})
	assert.True(t, errors.Is(dig.RootCause(err), config.ErrMissingCredentials))
}

func TestBuildContainerMissingConfigFile(t *testing.T) {
	container, err := BuildContainer(Options{ConfigFile: filepath.Join(t.TempDir(), "absent.yaml")})
	require.NoError(t, err)

	err = container.Invoke(func(*config.Config) {})
	assert.Error(t, err)
}
