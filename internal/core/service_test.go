package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/utils"
)

func newTestService(llm LLMClient, cache CacheRepository) *ClassificationService {
	logger := zap.NewNop()
	prompts := NewPromptBuilder(utils.NewTextProcessor(logger), 512)
	return NewClassificationService(llm, cache, prompts, nil, logger, 4*time.Hour, 100)
}

func TestClassifyCallsModelAndCaches(t *testing.T) {
	llm := &stubLLM{respond: func(string) (string, error) { return "Category: Work", nil }}
	cache := newMapCache()
	svc := newTestService(llm, cache)
	req := ClassifyRequest{Subject: "subject", Sender: "sender", Categories: []string{"Work"}, Task: TaskCategory}

	out, err := svc.Classify(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "Category: Work", out)
	assert.Equal(t, 1, llm.calls())
	assert.Equal(t, "Category: Work", cache.entries[HashRequest("subject", "sender", []string{"Work"}, TaskCategory)])
}

func TestClassifyReturnsCachedVerbatim(t *testing.T) {
	llm := &stubLLM{respond: func(string) (string, error) {
		t.Fatal("model must not be called on a cache hit")
		return "", nil
	}}
	cache := newMapCache()
	cache.entries[HashRequest("subject", "sender", []string{"Work"}, TaskCategory)] = "Category: Cached"
	svc := newTestService(llm, cache)

	out, err := svc.Classify(context.Background(), ClassifyRequest{
		Subject: "subject", Sender: "sender", Categories: []string{"Work"}, Task: TaskCategory,
	})

	require.NoError(t, err)
	assert.Equal(t, "Category: Cached", out)
	assert.Equal(t, 0, llm.opened)
}

func TestClassifySecondCallHitsCache(t *testing.T) {
	llm := &stubLLM{respond: func(string) (string, error) { return "Priority: 4", nil }}
	svc := newTestService(llm, newMapCache())
	req := ClassifyRequest{Subject: "s", Sender: "a@b.com", Categories: []string{"Work"}, Task: TaskPriority}

	_, err := svc.Classify(context.Background(), req)
	require.NoError(t, err)
	out, err := svc.Classify(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "Priority: 4", out)
	assert.Equal(t, 1, llm.calls())
}

func TestClassifyModelErrorReturnsEmpty(t *testing.T) {
	llm := &stubLLM{respond: func(string) (string, error) { return "", errors.New("LLM error") }}
	cache := newMapCache()
	svc := newTestService(llm, cache)

	out, err := svc.Classify(context.Background(), ClassifyRequest{
		Subject: "subject", Sender: "sender", Categories: []string{"Work"}, Task: TaskCategory,
	})

	assert.Equal(t, "", out)
	assert.ErrorIs(t, err, ErrModelInvocation)
	assert.Equal(t, 1, llm.closed, "session must be released after a failure")
	assert.Zero(t, cache.sets, "failures are not cached")
}

func TestClassifySessionOpenFailure(t *testing.T) {
	llm := &stubLLM{openErr: errors.New("model file missing")}
	svc := newTestService(llm, newMapCache())

	out, err := svc.Classify(context.Background(), ClassifyRequest{Subject: "s", Task: TaskAction})

	assert.Equal(t, "", out)
	assert.ErrorIs(t, err, ErrModelInvocation)
}

func TestClassifyReleasesSessionOnSuccess(t *testing.T) {
	llm := &stubLLM{respond: func(string) (string, error) { return "Action Required: No", nil }}
	svc := newTestService(llm, nil)

	_, err := svc.Classify(context.Background(), ClassifyRequest{Subject: "s", Task: TaskAction})

	require.NoError(t, err)
	assert.Equal(t, llm.opened, llm.closed)
}

func TestClassifyDegradesWhenCacheFails(t *testing.T) {
	llm := &stubLLM{respond: func(string) (string, error) { return "Category: Work", nil }}
	cache := newMapCache()
	cache.failing = true
	svc := newTestService(llm, cache)

	out, err := svc.Classify(context.Background(), ClassifyRequest{
		Subject: "s", Sender: "a@b.com", Categories: []string{"Work"}, Task: TaskCategory,
	})

	require.NoError(t, err)
	assert.Equal(t, "Category: Work", out)
}

func TestClassifyUnknownTask(t *testing.T) {
	llm := &stubLLM{respond: func(string) (string, error) { return "x", nil }}
	svc := newTestService(llm, newMapCache())

	_, err := svc.Classify(context.Background(), ClassifyRequest{Subject: "s", Task: "summary"})

	assert.ErrorIs(t, err, ErrUnknownTask)
	assert.Zero(t, llm.calls())
}

type countingRecorder struct {
	lookups map[string]int
	calls   map[string]int
}

func (r *countingRecorder) CacheLookup(result string) { r.lookups[result]++ }

func (r *countingRecorder) ModelCall(task, status string, elapsed time.Duration) {
	r.calls[task+"/"+status]++
}

func TestClassifyRecordsTelemetry(t *testing.T) {
	rec := &countingRecorder{lookups: map[string]int{}, calls: map[string]int{}}
	llm := &stubLLM{respond: func(string) (string, error) { return "Priority: 2", nil }}
	logger := zap.NewNop()
	svc := NewClassificationService(llm, newMapCache(), NewPromptBuilder(utils.NewTextProcessor(logger), 0), rec, logger, time.Hour, 100)
	req := ClassifyRequest{Subject: "s", Task: TaskPriority}

	_, _ = svc.Classify(context.Background(), req)
	_, _ = svc.Classify(context.Background(), req)

	assert.Equal(t, 1, rec.lookups["miss"])
	assert.Equal(t, 1, rec.lookups["hit"])
	assert.Equal(t, 1, rec.calls["priority/ok"])
}
