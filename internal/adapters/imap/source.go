package imap

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/core"
)

// Source reads recent message envelopes from an IMAP mailbox
type Source struct {
	host     string
	port     int
	username string
	password string
	tls      bool
	mailbox  string
	logger   *zap.Logger
}

// NewSource creates an IMAP source. tls selects implicit TLS; otherwise
// STARTTLS is used.
func NewSource(host string, port int, username, password string, tls bool, mailbox string, logger *zap.Logger) *Source {
	if mailbox == "" {
		mailbox = "INBOX"
	}
	return &Source{
		host:     host,
		port:     port,
		username: username,
		password: password,
		tls:      tls,
		mailbox:  mailbox,
		logger:   logger,
	}
}

// connect dials the server and logs in. The caller must log out.
func (s *Source) connect(ctx context.Context) (*imapclient.Client, error) {
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))

	var client *imapclient.Client
	var err error
	if s.tls {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(s.username, s.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("IMAP authentication failed for %s: %w", s.username, err)
	}

	return client, nil
}

// Authenticate verifies that the credentials are accepted
func (s *Source) Authenticate(ctx context.Context) error {
	client, err := s.connect(ctx)
	if err != nil {
		return err
	}
	return client.Logout().Wait()
}

// ListRecent returns the envelopes of the last limit messages, newest first
func (s *Source) ListRecent(ctx context.Context, limit int) ([]core.RawMessage, error) {
	if limit <= 0 {
		return []core.RawMessage{}, nil
	}

	client, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	selected, err := client.Select(s.mailbox, &imap.SelectOptions{ReadOnly: true}).Wait()
	if err != nil {
		return nil, fmt.Errorf("selecting %s: %w", s.mailbox, err)
	}

	first, last, ok := recentRange(selected.NumMessages, limit)
	if !ok {
		return []core.RawMessage{}, nil
	}

	var seqSet imap.SeqSet
	seqSet.AddRange(first, last)

	fetchCmd := client.Fetch(seqSet, &imap.FetchOptions{Envelope: true})

	var buffers []*imapclient.FetchMessageBuffer
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}
		buf, err := msg.Collect()
		if err != nil {
			s.logger.Warn("Failed to read message envelope, skipping", zap.Error(err))
			continue
		}
		buffers = append(buffers, buf)
	}
	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("fetching envelopes: %w", err)
	}

	sort.Slice(buffers, func(i, j int) bool { return buffers[i].SeqNum > buffers[j].SeqNum })

	messages := make([]core.RawMessage, 0, len(buffers))
	for _, buf := range buffers {
		messages = append(messages, fromEnvelope(buf.Envelope))
	}
	return messages, nil
}

// recentRange returns the sequence numbers of the newest limit messages
func recentRange(total uint32, limit int) (first, last uint32, ok bool) {
	if total == 0 || limit <= 0 {
		return 0, 0, false
	}
	first = 1
	if uint32(limit) < total {
		first = total - uint32(limit) + 1
	}
	return first, total, true
}

func fromEnvelope(env *imap.Envelope) core.RawMessage {
	var raw core.RawMessage
	if env == nil {
		return raw
	}
	if env.Subject != "" {
		subject := env.Subject
		raw.Subject = &subject
	}
	if len(env.From) > 0 {
		if sender := formatAddress(env.From[0]); sender != "" {
			raw.Sender = &sender
		}
	}
	return raw
}

func formatAddress(addr imap.Address) string {
	email := addr.Addr()
	switch {
	case addr.Name != "" && email != "":
		return fmt.Sprintf("%s <%s>", addr.Name, email)
	case email != "":
		return email
	default:
		return addr.Name
	}
}
