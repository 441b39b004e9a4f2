package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// stubLLM answers prompts through respond and counts sessions
type stubLLM struct {
	mu      sync.Mutex
	respond func(prompt string) (string, error)
	opened  int
	closed  int
	prompts []string
	openErr error
}

func (s *stubLLM) NewSession(ctx context.Context) (LLMSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openErr != nil {
		return nil, s.openErr
	}
	s.opened++
	return &stubSession{llm: s}, nil
}

func (s *stubLLM) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

type stubSession struct {
	llm *stubLLM
}

func (s *stubSession) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	s.llm.mu.Lock()
	s.llm.prompts = append(s.llm.prompts, prompt)
	respond := s.llm.respond
	s.llm.mu.Unlock()
	return respond(prompt)
}

func (s *stubSession) Close() error {
	s.llm.mu.Lock()
	defer s.llm.mu.Unlock()
	s.llm.closed++
	return nil
}

// mapCache is an in-test cache; failing makes every call error
type mapCache struct {
	entries map[string]string
	failing bool
	sets    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]string)}
}

var errBackendDown = errors.New("backend down")

func (c *mapCache) Get(ctx context.Context, key string) (string, error) {
	if c.failing {
		return "", errBackendDown
	}
	v, ok := c.entries[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return v, nil
}

func (c *mapCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if c.failing {
		return errBackendDown
	}
	c.sets++
	c.entries[key] = value
	return nil
}

func (c *mapCache) Delete(ctx context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func (c *mapCache) Cleanup(ctx context.Context) error { return nil }

func (c *mapCache) Close() error { return nil }

// fakeSource returns fixed messages
type fakeSource struct {
	messages []RawMessage
	authErr  error
	listErr  error
	limit    int
}

func (f *fakeSource) Authenticate(ctx context.Context) error {
	return f.authErr
}

func (f *fakeSource) ListRecent(ctx context.Context, limit int) ([]RawMessage, error) {
	f.limit = limit
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.messages, nil
}

// scriptedResponder answers by task and subject, mirroring a model that
// knows each email
func scriptedResponder(answers map[string]map[Task]string) func(string) (string, error) {
	return func(prompt string) (string, error) {
		for subject, byTask := range answers {
			if !strings.Contains(prompt, "'"+subject+"'") {
				continue
			}
			switch {
			case strings.Contains(prompt, "Categorize the following email"):
				return byTask[TaskCategory], nil
			case strings.Contains(prompt, "Determine the priority"):
				return byTask[TaskPriority], nil
			case strings.Contains(prompt, "Action Required: [Yes/No]"):
				return byTask[TaskAction], nil
			}
		}
		return "", errors.New("unexpected prompt")
	}
}
