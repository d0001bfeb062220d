// Package agent implements one agent's loop and lifecycle state machine,
// per SPEC_FULL.md §4.5: perceive synaptic memory, compose a message, hand
// off to the LLM runtime with the seven hive tools bound, and record one
// synaptic entry per iteration.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/compozy/antforge/engine/core"
	"github.com/compozy/antforge/engine/hive"
	"github.com/compozy/antforge/engine/llmrt"
	"github.com/compozy/antforge/engine/memory"
	"github.com/compozy/antforge/engine/tools"
	"github.com/compozy/antforge/pkg/logger"
)

// State is the closed set of lifecycle states an Agent passes through.
type State string

const (
	StateIdle                 State = "idle"
	StateRunning              State = "running"
	StateStoppedByConvergence State = "stopped_by_convergence"
	StateStoppedByCap         State = "stopped_by_cap"
	StateRetired              State = "retired"
)

// maxRecalledEntries bounds how many of an agent's own prior synaptic
// entries are folded into its next iteration's memory context.
const maxRecalledEntries = 10

// systemPrompt is the fixed instruction every agent conversation opens
// with. It names the tool surface but never the coordination mechanics by
// name, since those are implementation detail the agent reasons about only
// through tool results.
const systemPrompt = `You are one of several agents collaborating on a shared set of files.
Use perceive_environment to see overall progress, read_file_solution and read_signals before
changing a file another agent already touched, and submit_solution once you have working code.
Leave a trail marker when you notice something another agent working on a related file should know.`

// Agent runs one LLM-backed worker against the shared hive.
type Agent struct {
	ID       core.ID
	env      *hive.Environment
	store    *memory.Store
	registry *tools.Registry
	runtime  llmrt.Runtime
	log      logger.Logger
	maxIters int

	state           State
	iteration       int
	submitSuccesses int
}

// New builds an Agent bound to one environment, memory store, and runtime.
func New(
	id core.ID, env *hive.Environment, store *memory.Store, registry *tools.Registry,
	runtime llmrt.Runtime, maxIters int, log logger.Logger,
) *Agent {
	if log == nil {
		log = logger.FromContext(nil)
	}
	return &Agent{
		ID: id, env: env, store: store, registry: registry, runtime: runtime,
		maxIters: maxIters, log: log.With("agent_id", id.String()), state: StateIdle,
	}
}

// State returns the agent's current lifecycle state.
func (a *Agent) State() State { return a.state }

// SubmitSuccesses returns how many of this agent's submit_solution calls
// deposited without error, the tie-break orchestrator.monitorLoop uses to
// pick a scale-down victim per spec.md §4.3 step 5.
func (a *Agent) SubmitSuccesses() int { return a.submitSuccesses }

// Run drives the agent loop until the environment converges, the iteration
// cap is hit, or ctx is canceled. It always deregisters the agent's hive
// focus on the way out.
func (a *Agent) Run(ctx context.Context) error {
	a.state = StateRunning
	defer a.env.DeregisterAgent(a.ID)

	for a.iteration = 0; a.maxIters <= 0 || a.iteration < a.maxIters; a.iteration++ {
		if ctx.Err() != nil {
			a.state = StateRetired
			return ctx.Err()
		}
		if a.env.HasConverged() {
			a.state = StateStoppedByConvergence
			return nil
		}
		if err := a.runIteration(ctx); err != nil {
			a.log.Warn("iteration failed", "iteration", a.iteration, "error", err)
		}
	}
	a.state = StateStoppedByCap
	return nil
}

func (a *Agent) runIteration(ctx context.Context) error {
	memoryContext := a.recallMemory()
	userMessage := a.composeUserMessage()

	transcript, err := a.runtime.RunConversation(
		ctx, systemPrompt, userMessage, a.registry.Specs(), memoryContext, a.registry.Dispatch,
	)
	if err != nil {
		a.recordEntry("iteration failed", fmt.Sprintf("error: %v", err))
		return err
	}

	a.submitSuccesses += countSubmitSuccesses(transcript)
	a.recordEntry(summarizeToolCalls(transcript), transcript.FinalText)
	return nil
}

// countSubmitSuccesses reports how many submit_solution calls in the
// transcript deposited successfully, i.e. their JSON result carries no
// top-level "error" key. A substring check would false-positive on the
// unrelated "validation_errors" field, so this decodes the result instead.
func countSubmitSuccesses(t llmrt.Transcript) int {
	count := 0
	for _, call := range t.ToolCalls {
		if call.Name != tools.ToolSubmitSolution || call.Err != "" {
			continue
		}
		var result map[string]any
		if err := json.Unmarshal([]byte(call.ResultJSON), &result); err != nil {
			continue
		}
		if _, hasError := result["error"]; !hasError {
			count++
		}
	}
	return count
}

func (a *Agent) composeUserMessage() string {
	snap := a.env.Perceive(nil)
	return fmt.Sprintf(
		"Iteration %d. %d/%d files are solid or better (global convergence %.0f%%). "+
			"Perceive the environment, then work on whichever file most needs attention.",
		a.iteration, snap.SolidOrBetter, snap.TotalFiles, snap.GlobalConvergence*100,
	)
}

func (a *Agent) recallMemory() string {
	if a.store == nil {
		return ""
	}
	entries, err := a.store.ReadSynapticEntries(a.ID.String(), maxRecalledEntries)
	if err != nil || len(entries) == 0 {
		return ""
	}
	out := "Your recent activity:\n"
	for _, e := range entries {
		out += fmt.Sprintf("- [%s] %s: %s\n", e.Timestamp.Format(time.RFC3339), e.Action, e.Outcome)
	}
	return out
}

func (a *Agent) recordEntry(action, outcome string) {
	if a.store == nil {
		return
	}
	if err := a.store.AppendSynapticEntry(memory.SynapticEntry{
		AgentID: a.ID.String(), Iteration: a.iteration, Timestamp: time.Now(),
		Action: action, Outcome: outcome,
	}); err != nil {
		a.log.Warn("failed to record synaptic entry", "error", err)
	}
}

func summarizeToolCalls(t llmrt.Transcript) string {
	if len(t.ToolCalls) == 0 {
		return "replied without calling a tool"
	}
	last := t.ToolCalls[len(t.ToolCalls)-1]
	return fmt.Sprintf("made %d tool call(s), last was %s", len(t.ToolCalls), last.Name)
}
