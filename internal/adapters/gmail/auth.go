package gmail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
)

// NewOAuthConfig builds the installed-app OAuth configuration. The
// credentials file downloaded from the Google console wins; without it the
// client id and secret are used against the Google endpoint.
func NewOAuthConfig(credentialsPath, clientID, clientSecret string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsPath)
	switch {
	case err == nil:
		cfg, err := google.ConfigFromJSON(data, gmail.GmailReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("failed to parse credentials file %s: %w", credentialsPath, err)
		}
		return cfg, nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("no credentials file at %s and no client id/secret configured", credentialsPath)
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailReadonlyScope},
	}, nil
}

// Authenticator obtains a valid OAuth token, refreshing or running the
// interactive consent flow as needed, and persists it in the token store
type Authenticator struct {
	config *oauth2.Config
	store  TokenStore
	logger *zap.Logger

	// OpenURL presents the consent URL to the user
	OpenURL func(authURL string)
}

// NewAuthenticator creates an authenticator that prints the consent URL to out
func NewAuthenticator(config *oauth2.Config, store TokenStore, logger *zap.Logger, out io.Writer) *Authenticator {
	return &Authenticator{
		config: config,
		store:  store,
		logger: logger,
		OpenURL: func(authURL string) {
			fmt.Fprintf(out, "Open the following URL in your browser to authorize access:\n\n%s\n\n", authURL)
		},
	}
}

// HTTPClient returns an authorized client for the Gmail API
func (a *Authenticator) HTTPClient(ctx context.Context) (*http.Client, error) {
	token, err := a.Token(ctx)
	if err != nil {
		return nil, err
	}
	return a.config.Client(ctx, token), nil
}

// Token loads the stored token, refreshing it silently when it has expired.
// Without a usable token the interactive flow runs.
func (a *Authenticator) Token(ctx context.Context) (*oauth2.Token, error) {
	token, err := a.store.Load()
	switch {
	case err == nil && token.Valid():
		return token, nil
	case err == nil && token.RefreshToken != "":
		refreshed, refreshErr := a.config.TokenSource(ctx, token).Token()
		if refreshErr == nil {
			a.logger.Debug("Refreshed OAuth token")
			a.persist(refreshed)
			return refreshed, nil
		}
		a.logger.Warn("Failed to refresh OAuth token, starting authorization", zap.Error(refreshErr))
	case err != nil && !errors.Is(err, ErrTokenNotFound):
		a.logger.Warn("Stored OAuth token is unreadable, starting authorization", zap.Error(err))
	}

	token, err = a.authorize(ctx)
	if err != nil {
		return nil, err
	}
	a.persist(token)
	return token, nil
}

func (a *Authenticator) persist(token *oauth2.Token) {
	if err := a.store.Save(token); err != nil {
		a.logger.Warn("Failed to save OAuth token", zap.Error(err))
	}
}

type authResult struct {
	code string
	err  error
}

// authorize runs the loopback consent flow: the redirect lands on a local
// listener that captures the authorization code
func (a *Authenticator) authorize(ctx context.Context) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to start OAuth callback listener: %w", err)
	}

	cfg := *a.config
	cfg.RedirectURL = fmt.Sprintf("http://%s/", listener.Addr().String())
	state := uuid.NewString()

	results := make(chan authResult, 1)
	server := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		var res authResult
		switch {
		case query.Get("state") != state:
			res.err = errors.New("oauth state mismatch")
		case query.Get("error") != "":
			res.err = fmt.Errorf("authorization denied: %s", query.Get("error"))
		case query.Get("code") == "":
			res.err = errors.New("authorization code missing from callback")
		default:
			res.code = query.Get("code")
		}

		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "Authorization complete. You may close this window.")
		}
		select {
		case results <- res:
		default:
		}
	})}
	go func() { _ = server.Serve(listener) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	a.OpenURL(cfg.AuthCodeURL(state, oauth2.AccessTypeOffline))

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		token, err := cfg.Exchange(ctx, res.code)
		if err != nil {
			return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
		}
		return token, nil
	}
}
