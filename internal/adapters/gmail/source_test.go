package gmail

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

type staticClient struct {
	err error
}

func (c staticClient) HTTPClient(ctx context.Context) (*http.Client, error) {
	if c.err != nil {
		return nil, c.err
	}
	return http.DefaultClient, nil
}

type header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// newGmailServer serves two pages of ids and metadata for each message
func newGmailServer(t *testing.T, headers map[string][]header, listCalls *int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/gmail/v1/users/me/messages", func(w http.ResponseWriter, r *http.Request) {
		*listCalls++
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("pageToken") == "" {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"messages":      []map[string]string{{"id": "m1"}, {"id": "m2"}},
				"nextPageToken": "page-2",
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"messages": []map[string]string{{"id": "m3"}, {"id": "m4"}},
		})
	})
	mux.HandleFunc("/gmail/v1/users/me/messages/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/gmail/v1/users/me/messages/")
		assert.Equal(t, "metadata", r.URL.Query().Get("format"))
		assert.ElementsMatch(t, []string{"Subject", "From"}, r.URL.Query()["metadataHeaders"])

		h, ok := headers[id]
		if !ok {
			http.Error(w, `{"error":{"code":404,"message":"Not Found"}}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      id,
			"payload": map[string]interface{}{"headers": h},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestSource(t *testing.T, srv *httptest.Server) *Source {
	t.Helper()
	src := NewSource(staticClient{}, "me", zap.NewNop(),
		option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, src.Authenticate(context.Background()))
	return src
}

func TestListRecentPagesAndReadsHeaders(t *testing.T) {
	var listCalls int
	srv := newGmailServer(t, map[string][]header{
		"m1": {{"Subject", "Invoice due"}, {"From", "billing@acme.com"}},
		"m2": {{"subject", "Re: project update"}, {"FROM", "alice@co.com"}},
		"m3": {{"From", "no-subject@x.com"}},
	}, &listCalls)
	src := newTestSource(t, srv)

	msgs, err := src.ListRecent(context.Background(), 3)
	require.NoError(t, err)

	require.Len(t, msgs, 3)
	assert.Equal(t, 2, listCalls)
	assert.Equal(t, "Invoice due", *msgs[0].Subject)
	assert.Equal(t, "billing@acme.com", *msgs[0].Sender)
	assert.Equal(t, "Re: project update", *msgs[1].Subject)
	assert.Equal(t, "alice@co.com", *msgs[1].Sender)
	assert.Nil(t, msgs[2].Subject)
	assert.Equal(t, "no-subject@x.com", *msgs[2].Sender)
}

func TestListRecentSkipsUnfetchableMessages(t *testing.T) {
	var listCalls int
	srv := newGmailServer(t, map[string][]header{
		"m1": {{"Subject", "one"}, {"From", "a@b.com"}},
	}, &listCalls)
	src := newTestSource(t, srv)

	msgs, err := src.ListRecent(context.Background(), 2)
	require.NoError(t, err)

	require.Len(t, msgs, 1)
	assert.Equal(t, 1, listCalls)
	assert.Equal(t, "one", *msgs[0].Subject)
}

func TestListRecentStopsWhenMailboxIsExhausted(t *testing.T) {
	var listCalls int
	srv := newGmailServer(t, map[string][]header{
		"m1": {{"Subject", "1"}}, "m2": {{"Subject", "2"}},
		"m3": {{"Subject", "3"}}, "m4": {{"Subject", "4"}},
	}, &listCalls)
	src := newTestSource(t, srv)

	msgs, err := src.ListRecent(context.Background(), 100)
	require.NoError(t, err)

	assert.Len(t, msgs, 4)
	assert.Equal(t, 2, listCalls)
}

func TestListRecentListFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"quota"}}`, http.StatusForbidden)
	}))
	defer srv.Close()
	src := newTestSource(t, srv)

	_, err := src.ListRecent(context.Background(), 5)
	assert.Error(t, err)
}

func TestListRecentRequiresAuthentication(t *testing.T) {
	src := NewSource(staticClient{}, "me", zap.NewNop())

	_, err := src.ListRecent(context.Background(), 5)
	assert.Error(t, err)
}

func TestAuthenticatePropagatesAuthorizationError(t *testing.T) {
	authErr := errors.New("invalid_grant")
	src := NewSource(staticClient{err: authErr}, "me", zap.NewNop())

	assert.ErrorIs(t, src.Authenticate(context.Background()), authErr)
}
