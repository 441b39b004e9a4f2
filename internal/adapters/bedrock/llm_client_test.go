package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeInvoker struct {
	inputs []*bedrockruntime.InvokeModelInput
	body   string
	err    error
}

func (f *fakeInvoker) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: []byte(f.body)}, nil
}

func payloadOf(t *testing.T, in *bedrockruntime.InvokeModelInput) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(in.Body, &payload))
	return payload
}

func generate(t *testing.T, modelID, body string) (string, *fakeInvoker) {
	t.Helper()
	invoker := &fakeInvoker{body: body}
	client := NewBedrockClient(invoker, modelID, 0.1, 0.9, zap.NewNop())
	session, err := client.NewSession(context.Background())
	require.NoError(t, err)
	defer session.Close()

	out, err := session.Generate(context.Background(), "Categorize", 100)
	require.NoError(t, err)
	return out, invoker
}

func TestClaudeTextCompletion(t *testing.T) {
	out, invoker := generate(t, "anthropic.claude-v2", `{"completion":" Category: Work"}`)

	assert.Equal(t, " Category: Work", out)
	payload := payloadOf(t, invoker.inputs[0])
	assert.Equal(t, "\n\nHuman: Categorize\n\nAssistant:", payload["prompt"])
	assert.EqualValues(t, 100, payload["max_tokens_to_sample"])
	assert.Equal(t, "anthropic.claude-v2", *invoker.inputs[0].ModelId)
}

func TestClaudeMessages(t *testing.T) {
	out, invoker := generate(t, "anthropic.claude-3-haiku-20240307-v1:0",
		`{"content":[{"type":"text","text":"Priority: 9"}]}`)

	assert.Equal(t, "Priority: 9", out)
	payload := payloadOf(t, invoker.inputs[0])
	assert.Equal(t, anthropicVersion, payload["anthropic_version"])
	messages := payload["messages"].([]interface{})
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].(map[string]interface{})["role"])
}

func TestTitan(t *testing.T) {
	out, invoker := generate(t, "amazon.titan-text-express-v1",
		`{"results":[{"outputText":"Action Required: No"}]}`)

	assert.Equal(t, "Action Required: No", out)
	payload := payloadOf(t, invoker.inputs[0])
	assert.Equal(t, "Categorize", payload["inputText"])
	config := payload["textGenerationConfig"].(map[string]interface{})
	assert.EqualValues(t, 100, config["maxTokenCount"])
}

func TestGenericModel(t *testing.T) {
	out, _ := generate(t, "meta.llama3-8b-instruct-v1:0", `{"output":"Category: Health"}`)
	assert.Equal(t, "Category: Health", out)
}

func TestInvokeError(t *testing.T) {
	invoker := &fakeInvoker{err: errors.New("throttled")}
	client := NewBedrockClient(invoker, "anthropic.claude-v2", 0, 0, zap.NewNop())
	session, err := client.NewSession(context.Background())
	require.NoError(t, err)

	_, err = session.Generate(context.Background(), "p", 10)
	assert.ErrorContains(t, err, "throttled")
}

func TestMessagesSessionReplaysHistory(t *testing.T) {
	invoker := &fakeInvoker{body: `{"content":[{"type":"text","text":"ok"}]}`}
	client := NewBedrockClient(invoker, "anthropic.claude-3-sonnet", 0, 0, zap.NewNop())
	session, err := client.NewSession(context.Background())
	require.NoError(t, err)

	_, err = session.Generate(context.Background(), "one", 10)
	require.NoError(t, err)
	_, err = session.Generate(context.Background(), "two", 10)
	require.NoError(t, err)

	messages := payloadOf(t, invoker.inputs[1])["messages"].([]interface{})
	assert.Len(t, messages, 3)
}
