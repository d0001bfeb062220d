package llmrt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/tmc/langchaingo/llms"

	"github.com/compozy/antforge/pkg/logger"
)

// maxToolIterations bounds one conversation's tool-call loop, per the
// agent loop's per-iteration safety cap in SPEC_FULL.md §4.5.
const maxToolIterations = 12

// RetryConfig tunes the exponential backoff LangchainRuntime applies around
// each call to the underlying model, following the teacher's
// sethvargo/go-retry convention (engine/auth/org/service.go).
type RetryConfig struct {
	DelayStart time.Duration
	DelayMax   time.Duration
	Attempts   uint64
}

// DefaultRetryConfig mirrors the teacher's org-invite retry tuning, scaled
// down for a chat completion call.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{DelayStart: 250 * time.Millisecond, DelayMax: 5 * time.Second, Attempts: 3}
}

// LangchainRuntime adapts a langchaingo llms.Model to the Runtime
// interface, driving the bounded tool-call loop and retrying transient
// provider errors.
type LangchainRuntime struct {
	model llms.Model
	retry RetryConfig
	log   logger.Logger
}

// NewLangchainRuntime wraps model, e.g. one constructed the way the
// teacher's engine/core.ProviderConfig.CreateLLM builds provider clients.
func NewLangchainRuntime(model llms.Model, cfg RetryConfig, log logger.Logger) *LangchainRuntime {
	if log == nil {
		log = logger.FromContext(nil)
	}
	return &LangchainRuntime{model: model, retry: cfg, log: log.With("component", "llmrt.langchain")}
}

func (r *LangchainRuntime) RunConversation(
	ctx context.Context,
	systemPrompt string,
	userMessage string,
	toolSpecs []ToolSpec,
	memoryContext string,
	exec ToolExecutor,
) (Transcript, error) {
	tools := toLangchainTools(toolSpecs)
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
	}
	if memoryContext != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, memoryContext))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, userMessage))

	transcript := Transcript{}
	for iteration := 0; iteration < maxToolIterations; iteration++ {
		resp, err := r.generate(ctx, messages, tools)
		if err != nil {
			return transcript, fmt.Errorf("llmrt: generation failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return transcript, fmt.Errorf("llmrt: provider returned no choices")
		}
		choice := resp.Choices[0]

		if len(choice.ToolCalls) == 0 {
			transcript.FinalText = choice.Content
			return transcript, nil
		}

		assistantMsg := llms.MessageContent{Role: llms.ChatMessageTypeAI}
		for _, tc := range choice.ToolCalls {
			assistantMsg.Parts = append(assistantMsg.Parts, llms.ToolCall{
				ID:           tc.ID,
				Type:         tc.Type,
				FunctionCall: tc.FunctionCall,
			})
		}
		messages = append(messages, assistantMsg)

		for _, tc := range choice.ToolCalls {
			resultJSON, execErr := exec(ctx, tc.FunctionCall.Name, tc.FunctionCall.Arguments)
			executed := ExecutedToolCall{Name: tc.FunctionCall.Name, ArgumentsJSON: tc.FunctionCall.Arguments}
			if execErr != nil {
				executed.Err = execErr.Error()
				resultJSON = errorToolResult(execErr)
			}
			executed.ResultJSON = resultJSON
			transcript.ToolCalls = append(transcript.ToolCalls, executed)

			messages = append(messages, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{ToolCallID: tc.ID, Name: tc.FunctionCall.Name, Content: resultJSON},
				},
			})
		}
	}
	return transcript, fmt.Errorf("llmrt: exceeded %d tool-call iterations without a final reply", maxToolIterations)
}

func (r *LangchainRuntime) generate(
	ctx context.Context, messages []llms.MessageContent, tools []llms.Tool,
) (*llms.ContentResponse, error) {
	backoff := retry.NewExponential(r.retry.DelayStart)
	backoff = retry.WithCappedDuration(r.retry.DelayMax, backoff)
	backoff = retry.WithJitter(100*time.Millisecond, backoff)
	backoff = retry.WithMaxRetries(r.retry.Attempts, backoff)

	var resp *llms.ContentResponse
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		out, genErr := r.model.GenerateContent(ctx, messages, llms.WithTools(tools))
		if genErr != nil {
			r.log.Warn("generation attempt failed, retrying", "error", genErr)
			return retry.RetryableError(genErr)
		}
		resp = out
		return nil
	})
	return resp, err
}

func toLangchainTools(specs []ToolSpec) []llms.Tool {
	out := make([]llms.Tool, 0, len(specs))
	for _, s := range specs {
		out = append(out, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        s.Name,
				Description: s.Description,
				Parameters:  s.Parameters,
			},
		})
	}
	return out
}

func errorToolResult(err error) string {
	b, marshalErr := json.Marshal(map[string]string{"error": err.Error()})
	if marshalErr != nil {
		return `{"error":"tool execution failed"}`
	}
	return string(b)
}
