package factory

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/adapters/gmail"
	"github.com/mikey/email-classifier/internal/adapters/imap"
	"github.com/mikey/email-classifier/internal/config"
	"github.com/mikey/email-classifier/internal/core"
)

// SourceFactory creates mail sources based on configuration
type SourceFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSourceFactory creates a new source factory
func NewSourceFactory(cfg *config.Config, logger *zap.Logger) *SourceFactory {
	return &SourceFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateMailSource creates a mail source based on the configuration
func (f *SourceFactory) CreateMailSource() (core.MailSource, error) {
	source := f.cfg.GetMail().Source

	switch source {
	case "gmail":
		return f.createGmailSource()
	case "imap":
		imapCfg := f.cfg.GetIMAP()
		if imapCfg.Host == "" {
			return nil, fmt.Errorf("imap.host is required for the imap mail source")
		}
		return imap.NewSource(
			imapCfg.Host,
			imapCfg.Port,
			imapCfg.Username,
			imapCfg.Password,
			imapCfg.TLS,
			imapCfg.Mailbox,
			f.logger,
		), nil
	default:
		return nil, fmt.Errorf("unsupported mail source: %s", source)
	}
}

func (f *SourceFactory) createGmailSource() (core.MailSource, error) {
	gmailCfg := f.cfg.GetGmail()

	oauthCfg, err := gmail.NewOAuthConfig(gmailCfg.CredentialsPath, gmailCfg.ClientID, gmailCfg.ClientSecret)
	if err != nil {
		return nil, err
	}

	store, err := f.createTokenStore(gmailCfg)
	if err != nil {
		return nil, err
	}

	auth := gmail.NewAuthenticator(oauthCfg, store, f.logger, os.Stderr)
	return gmail.NewSource(auth, gmailCfg.User, f.logger), nil
}

func (f *SourceFactory) createTokenStore(gmailCfg config.GmailConfig) (gmail.TokenStore, error) {
	switch gmailCfg.TokenStore {
	case "", "file":
		return gmail.NewFileTokenStore(gmailCfg.TokenPath), nil
	case "keyring":
		return gmail.NewKeyringTokenStore(gmailCfg.KeyringService)
	default:
		return nil, fmt.Errorf("unsupported token store: %s", gmailCfg.TokenStore)
	}
}
