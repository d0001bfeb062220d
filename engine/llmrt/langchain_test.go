package llmrt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// fakeModel is a minimal llms.Model stub driven by a queue of canned
// responses, so the tool-call loop can be exercised without a real
// provider.
type fakeModel struct {
	responses []*llms.ContentResponse
	calls     int
}

func (f *fakeModel) GenerateContent(
	_ context.Context, _ []llms.MessageContent, _ ...llms.CallOption,
) (*llms.ContentResponse, error) {
	if f.calls >= len(f.responses) {
		return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "out of responses"}}}, nil
	}
	resp := f.responses[f.calls]
	f.calls++
	return resp, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", nil
}

func Test_LangchainRuntime_RunConversation(t *testing.T) {
	t.Run("Should return the final text when no tool call is made", func(t *testing.T) {
		model := &fakeModel{responses: []*llms.ContentResponse{
			{Choices: []*llms.ContentChoice{{Content: "done"}}},
		}}
		rt := NewLangchainRuntime(model, RetryConfig{Attempts: 1}, nil)
		out, err := rt.RunConversation(context.Background(), "sys", "go", nil, "", nil)
		require.NoError(t, err)
		assert.Equal(t, "done", out.FinalText)
		assert.Empty(t, out.ToolCalls)
	})

	t.Run("Should dispatch a tool call then return the follow-up reply", func(t *testing.T) {
		model := &fakeModel{responses: []*llms.ContentResponse{
			{Choices: []*llms.ContentChoice{{
				ToolCalls: []llms.ToolCall{{
					ID:           "call_1",
					Type:         "function",
					FunctionCall: &llms.FunctionCall{Name: "perceive_environment", Arguments: "{}"},
				}},
			}}},
			{Choices: []*llms.ContentChoice{{Content: "submitted"}}},
		}}
		rt := NewLangchainRuntime(model, RetryConfig{Attempts: 1}, nil)

		var gotName, gotArgs string
		exec := func(_ context.Context, name, args string) (string, error) {
			gotName, gotArgs = name, args
			return `{"ok":true}`, nil
		}

		out, err := rt.RunConversation(context.Background(), "sys", "go", []ToolSpec{
			{Name: "perceive_environment", Description: "see the hive"},
		}, "", exec)
		require.NoError(t, err)
		assert.Equal(t, "submitted", out.FinalText)
		require.Len(t, out.ToolCalls, 1)
		assert.Equal(t, "perceive_environment", gotName)
		assert.Equal(t, "{}", gotArgs)
		assert.Equal(t, `{"ok":true}`, out.ToolCalls[0].ResultJSON)
	})

	t.Run("Should cap the loop and error when the model never stops calling tools", func(t *testing.T) {
		resp := &llms.ContentResponse{Choices: []*llms.ContentChoice{{
			ToolCalls: []llms.ToolCall{{
				ID:           "call_n",
				Type:         "function",
				FunctionCall: &llms.FunctionCall{Name: "perceive_environment", Arguments: "{}"},
			}},
		}}}
		responses := make([]*llms.ContentResponse, maxToolIterations+1)
		for i := range responses {
			responses[i] = resp
		}
		model := &fakeModel{responses: responses}
		rt := NewLangchainRuntime(model, RetryConfig{Attempts: 1}, nil)
		exec := func(context.Context, string, string) (string, error) { return "{}", nil }

		_, err := rt.RunConversation(context.Background(), "sys", "go", nil, "", exec)
		assert.ErrorContains(t, err, "exceeded")
	})
}
