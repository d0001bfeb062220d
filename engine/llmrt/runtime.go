// Package llmrt specifies the LLM runtime boundary: the external
// collaborator named but not implemented by SPEC_FULL.md §6, plus one
// concrete adapter (LangchainRuntime) wrapping tmc/langchaingo so the
// engine can actually drive a conversation without ever importing
// langchaingo outside this package.
package llmrt

import "context"

// ToolSpec describes one tool offered to the model, shaped as a JSON-schema
// parameter object so it serializes straight into an OpenAI/Anthropic-style
// function-calling tool definition.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolExecutor dispatches one tool call by name, given its arguments as a
// JSON string, and returns the tool's JSON string result. engine/tools
// supplies the concrete implementation bound to one agent's hive/memory
// access.
type ToolExecutor func(ctx context.Context, name string, argumentsJSON string) (string, error)

// ExecutedToolCall records one tool invocation that happened during a
// conversation, for the agent loop to fold into its synaptic memory entry.
type ExecutedToolCall struct {
	Name          string
	ArgumentsJSON string
	ResultJSON    string
	Err           string
}

// Transcript is everything RunConversation produced: the model's final
// text reply and the ordered tool calls it made to get there.
type Transcript struct {
	FinalText string
	ToolCalls []ExecutedToolCall
}

// Runtime is the LLM provider boundary. The core engine depends only on
// this interface; provider selection, credentials, and retries live behind
// a concrete adapter.
type Runtime interface {
	RunConversation(
		ctx context.Context,
		systemPrompt string,
		userMessage string,
		tools []ToolSpec,
		memoryContext string,
		exec ToolExecutor,
	) (Transcript, error)
}
