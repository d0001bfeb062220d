// Package tools implements the seven-tool agent surface over the hive
// environment and synaptic memory, per SPEC_FULL.md §4.2: JSON string in,
// JSON string out, so any LLM runtime's native function-calling format can
// carry them without this package knowing which provider is in use.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/compozy/antforge/engine/core"
	"github.com/compozy/antforge/engine/hive"
	"github.com/compozy/antforge/engine/infra/metrics"
	"github.com/compozy/antforge/engine/llmrt"
	"github.com/compozy/antforge/engine/memory"
	"github.com/compozy/antforge/engine/validator"
)

// Tool names, exactly as an agent's tool-calling surface names them.
const (
	ToolPerceiveEnvironment = "perceive_environment"
	ToolReadFileSolution    = "read_file_solution"
	ToolSubmitSolution      = "submit_solution"
	ToolCompileCheck        = "compile_check"
	ToolReadSignals         = "read_signals"
	ToolReadTrailMarkers    = "read_trail_markers"
	ToolLeaveTrailMarker    = "leave_trail_marker"
)

// defaultMaxTrailMarkers bounds how many of a file's most recent markers
// read_trail_markers returns. It is a fixed value equal to pkg/config's
// default max_trail_markers; the configured value is not read here.
const defaultMaxTrailMarkers = 5

// Registry binds the seven agent tools to one agent's identity and the
// shared environment, validator, and memory store it acts through.
type Registry struct {
	env       *hive.Environment
	validator validator.Validator
	store     *memory.Store
	agentID   core.ID
	metrics   *metrics.Recorder
}

// NewRegistry builds the tool surface for one agent. rec may be nil, in
// which case deposit metrics are simply not recorded.
func NewRegistry(
	env *hive.Environment, v validator.Validator, store *memory.Store, agentID core.ID, rec *metrics.Recorder,
) *Registry {
	return &Registry{env: env, validator: v, store: store, agentID: agentID, metrics: rec}
}

// Specs returns the JSON-schema tool descriptions for binding to an LLM
// runtime's function-calling surface.
func (r *Registry) Specs() []llmrt.ToolSpec {
	return []llmrt.ToolSpec{
		{
			Name:        ToolPerceiveEnvironment,
			Description: "Get a snapshot of every file slot's status, quality, signals, and recommendation.",
			Parameters: objectSchema(map[string]any{
				"focus_file": stringProp("Optional file path to foreground in the snapshot."),
			}, nil),
		},
		{
			Name:        ToolReadFileSolution,
			Description: "Read the current best solution's code for one file.",
			Parameters: objectSchema(map[string]any{
				"file_path": stringProp("File path to read."),
			}, []string{"file_path"}),
		},
		{
			Name:        ToolSubmitSolution,
			Description: "Submit a solution for one file: runs validation, scores quality, and deposits it.",
			Parameters: objectSchema(map[string]any{
				"file_path":         stringProp("File path this solution is for."),
				"code":              stringProp("The solution's full source code."),
				"declared_exports":  arrayOfStrings("Identifiers this file exports."),
				"declared_imports":  importsSchema(),
			}, []string{"file_path", "code"}),
		},
		{
			Name:        ToolCompileCheck,
			Description: "Run the validator against code without depositing it as a solution.",
			Parameters: objectSchema(map[string]any{
				"file_path": stringProp("File path the code is for."),
				"code":      stringProp("Code to check."),
			}, []string{"file_path", "code"}),
		},
		{
			Name:        ToolReadSignals,
			Description: "Read advisory signals (e.g. interface mismatches) for one file, or all files.",
			Parameters: objectSchema(map[string]any{
				"file_path": stringProp("Optional file path to filter to."),
			}, nil),
		},
		{
			Name:        ToolReadTrailMarkers,
			Description: "Read notes other agents left for one file.",
			Parameters: objectSchema(map[string]any{
				"file_path": stringProp("File path to read markers for."),
			}, []string{"file_path"}),
		},
		{
			Name:        ToolLeaveTrailMarker,
			Description: "Leave a note for other agents working on or depending on one file.",
			Parameters: objectSchema(map[string]any{
				"file_path": stringProp("File path this note concerns."),
				"message":   stringProp("The note itself."),
			}, []string{"file_path", "message"}),
		},
	}
}

// Dispatch implements llmrt.ToolExecutor, routing one JSON tool call to its
// handler and returning its JSON result.
func (r *Registry) Dispatch(ctx context.Context, name string, argumentsJSON string) (string, error) {
	switch name {
	case ToolPerceiveEnvironment:
		return r.perceiveEnvironment(argumentsJSON)
	case ToolReadFileSolution:
		return r.readFileSolution(argumentsJSON)
	case ToolSubmitSolution:
		return r.submitSolution(ctx, argumentsJSON)
	case ToolCompileCheck:
		return r.compileCheck(ctx, argumentsJSON)
	case ToolReadSignals:
		return r.readSignals(argumentsJSON)
	case ToolReadTrailMarkers:
		return r.readTrailMarkers(argumentsJSON)
	case ToolLeaveTrailMarker:
		return r.leaveTrailMarker(argumentsJSON)
	default:
		return "", fmt.Errorf("tools: unknown tool %q", name)
	}
}

func objectSchema(props map[string]any, required []string) map[string]any {
	schema := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func arrayOfStrings(description string) map[string]any {
	return map[string]any{"type": "array", "description": description, "items": map[string]any{"type": "string"}}
}

func importsSchema() map[string]any {
	return map[string]any{
		"type":        "array",
		"description": "Identifiers this file imports from other files.",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":      stringProp("Imported identifier."),
				"from_file": stringProp("File it is imported from."),
			},
			"required": []string{"name", "from_file"},
		},
	}
}

func marshal(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("tools: failed to marshal result: %w", err)
	}
	return string(b), nil
}

func errorResult(format string, args ...any) string {
	b, err := json.Marshal(map[string]string{"error": fmt.Sprintf(format, args...)})
	if err != nil {
		return `{"error":"internal error formatting tool result"}`
	}
	return string(b)
}
