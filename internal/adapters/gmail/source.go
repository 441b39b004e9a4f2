package gmail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/mikey/email-classifier/internal/core"
)

const maxPageSize = 500

// metadataHeaders are the only headers requested per message
var metadataHeaders = []string{"Subject", "From"}

// HTTPClientProvider supplies an authorized HTTP client
type HTTPClientProvider interface {
	HTTPClient(ctx context.Context) (*http.Client, error)
}

// Source reads recent messages from a Gmail mailbox
type Source struct {
	clients HTTPClientProvider
	user    string
	logger  *zap.Logger
	opts    []option.ClientOption
	svc     *gmail.Service
}

// NewSource creates a Gmail source for user ("me" for the authorized account)
func NewSource(clients HTTPClientProvider, user string, logger *zap.Logger, opts ...option.ClientOption) *Source {
	return &Source{
		clients: clients,
		user:    user,
		logger:  logger,
		opts:    opts,
	}
}

// Authenticate obtains credentials and builds the Gmail service
func (s *Source) Authenticate(ctx context.Context) error {
	httpClient, err := s.clients.HTTPClient(ctx)
	if err != nil {
		return fmt.Errorf("gmail authorization failed: %w", err)
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, s.opts...)
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create Gmail service: %w", err)
	}
	s.svc = svc
	return nil
}

// ListRecent returns the subject and sender of up to limit recent messages.
// A message that cannot be fetched is skipped.
func (s *Source) ListRecent(ctx context.Context, limit int) ([]core.RawMessage, error) {
	if s.svc == nil {
		return nil, errors.New("gmail source is not authenticated")
	}
	if limit <= 0 {
		return []core.RawMessage{}, nil
	}

	ids, err := s.listIDs(ctx, limit)
	if err != nil {
		return nil, err
	}

	messages := make([]core.RawMessage, 0, len(ids))
	for _, id := range ids {
		msg, err := s.svc.Users.Messages.Get(s.user, id).
			Format("metadata").
			MetadataHeaders(metadataHeaders...).
			Context(ctx).
			Do()
		if err != nil {
			if ctx.Err() != nil {
				return messages, ctx.Err()
			}
			s.logger.Warn("Failed to fetch message, skipping",
				zap.String("message_id", id),
				zap.Error(err))
			continue
		}
		messages = append(messages, toRawMessage(msg))
	}

	s.logger.Debug("Fetched messages", zap.Int("count", len(messages)))
	return messages, nil
}

// listIDs pages through the mailbox until limit ids are collected
func (s *Source) listIDs(ctx context.Context, limit int) ([]string, error) {
	ids := make([]string, 0, limit)
	pageToken := ""

	for len(ids) < limit {
		pageSize := limit - len(ids)
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}

		call := s.svc.Users.Messages.List(s.user).MaxResults(int64(pageSize)).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}

		for _, m := range resp.Messages {
			ids = append(ids, m.Id)
			if len(ids) == limit {
				break
			}
		}

		if resp.NextPageToken == "" || len(resp.Messages) == 0 {
			break
		}
		pageToken = resp.NextPageToken
	}

	return ids, nil
}

func toRawMessage(msg *gmail.Message) core.RawMessage {
	var raw core.RawMessage
	if msg.Payload == nil {
		return raw
	}
	for _, h := range msg.Payload.Headers {
		value := h.Value
		switch {
		case strings.EqualFold(h.Name, "Subject") && raw.Subject == nil:
			raw.Subject = &value
		case strings.EqualFold(h.Name, "From") && raw.Sender == nil:
			raw.Sender = &value
		}
	}
	return raw
}
