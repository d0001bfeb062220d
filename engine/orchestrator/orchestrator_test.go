package orchestrator

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/compozy/antforge/engine/agent"
	"github.com/compozy/antforge/engine/core"
	"github.com/compozy/antforge/engine/hive"
	"github.com/compozy/antforge/engine/llmrt"
	"github.com/compozy/antforge/engine/memory"
	"github.com/compozy/antforge/engine/tools"
	"github.com/compozy/antforge/engine/validator"
	"github.com/compozy/antforge/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// submitOnceRuntime submits one solution to filePath on its first call via
// the bound tool executor, then replies with a final text on every call
// after, simulating an agent that solves its file immediately and then
// idles while waiting for convergence to be observed.
type submitOnceRuntime struct {
	filePath string
	code     string
	exports  []string
	done     bool
}

func (r *submitOnceRuntime) RunConversation(
	ctx context.Context, _ string, _ string, _ []llmrt.ToolSpec, _ string, exec llmrt.ToolExecutor,
) (llmrt.Transcript, error) {
	if !r.done {
		args, err := json.Marshal(map[string]any{
			"file_path": r.filePath, "code": r.code, "declared_exports": r.exports,
		})
		if err != nil {
			return llmrt.Transcript{}, err
		}
		out, err := exec(ctx, "submit_solution", string(args))
		if err != nil {
			return llmrt.Transcript{}, err
		}
		r.done = true
		return llmrt.Transcript{FinalText: "submitted", ToolCalls: []llmrt.ExecutedToolCall{
			{Name: "submit_solution", ArgumentsJSON: string(args), ResultJSON: out},
		}}, nil
	}
	return llmrt.Transcript{FinalText: "waiting"}, nil
}

// alwaysSubmitRuntime submits a fixed, sub-solid-quality solution to
// filePath through the tool executor on every call, so an agent driven by
// it accumulates exactly one submit success per iteration it runs.
type alwaysSubmitRuntime struct {
	filePath string
}

func (r *alwaysSubmitRuntime) RunConversation(
	ctx context.Context, _ string, _ string, _ []llmrt.ToolSpec, _ string, exec llmrt.ToolExecutor,
) (llmrt.Transcript, error) {
	args := `{"file_path":"` + r.filePath + `","code":"x"}`
	out, err := exec(ctx, tools.ToolSubmitSolution, args)
	if err != nil {
		return llmrt.Transcript{}, err
	}
	return llmrt.Transcript{
		FinalText: "submitted",
		ToolCalls: []llmrt.ExecutedToolCall{{Name: tools.ToolSubmitSolution, ArgumentsJSON: args, ResultJSON: out}},
	}, nil
}

// newIsolatedHandle runs one agent to completion against its own private
// environment (so one handle's submissions can never reinforce another's
// pheromones and trip early convergence), recording iters submit successes.
func newIsolatedHandle(t *testing.T, iters int) *agentHandle {
	t.Helper()
	env := hive.NewEnvironment(hive.DefaultEnvironmentConfig(), nil)
	require.NoError(t, env.Seed(hive.TaskSpec{FileSlots: []hive.FileSlotSpec{{FilePath: "a.x"}}}))
	store, err := memory.Open(t.Context(), t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	id := core.MustNewID()
	registry := tools.NewRegistry(env, validator.Passthrough{}, store, id, nil)
	runner := agent.New(id, env, store, registry, &alwaysSubmitRuntime{filePath: "a.x"}, iters, nil)
	require.NoError(t, runner.Run(context.Background()))
	require.Equal(t, iters, runner.SubmitSuccesses())
	return &agentHandle{id: id, runner: runner}
}

func Test_LeastSuccessfulIndex(t *testing.T) {
	t.Run("Should pick the still-running agent with the fewest successful submits", func(t *testing.T) {
		handles := []*agentHandle{
			newIsolatedHandle(t, 3), newIsolatedHandle(t, 1), newIsolatedHandle(t, 2),
		}
		assert.Equal(t, 1, leastSuccessfulIndex(handles))
	})

	t.Run("Should keep the earliest-spawned handle on a tie", func(t *testing.T) {
		handles := []*agentHandle{newIsolatedHandle(t, 2), newIsolatedHandle(t, 2)}
		assert.Equal(t, 0, leastSuccessfulIndex(handles))
	})
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.AgentCount = 1
	cfg.MinAgents = 1
	cfg.MaxAgents = 2
	cfg.MaxIterations = 20
	cfg.ScaleCheckInterval = 15 * time.Millisecond
	cfg.SnapshotInterval = 200 * time.Millisecond
	cfg.EvaporationInterval = 500 * time.Millisecond
	return cfg
}

func Test_Orchestrator_Run(t *testing.T) {
	t.Run("Should converge and collect the submitted file (S1-style single-slot run)", func(t *testing.T) {
		rt := &submitOnceRuntime{
			filePath: "a.x",
			code:     strings.Repeat("return value // padding padding padding padding\n", 20),
			exports:  []string{"f"},
		}
		o := New(testConfig(), validator.Passthrough{}, rt, nil, nil)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		task := hive.TaskSpec{ProjectName: "widget", FileSlots: []hive.FileSlotSpec{{FilePath: "a.x"}}}
		result, err := o.Run(ctx, task, t.TempDir())
		require.NoError(t, err)
		assert.True(t, result.Converged)
		assert.InDelta(t, 1.0, result.GlobalConvergence, 1e-9)
		assert.Contains(t, result.Files, hive.FilePath("a.x"))
	})

	t.Run("Should stop without converging when no agent ever submits", func(t *testing.T) {
		cfg := testConfig()
		cfg.MaxIterations = 2
		rt := &submitOnceRuntime{filePath: "a.x", code: "x", done: true}
		o := New(cfg, validator.Passthrough{}, rt, nil, nil)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		task := hive.TaskSpec{FileSlots: []hive.FileSlotSpec{{FilePath: "a.x"}}}
		result, err := o.Run(ctx, task, t.TempDir())
		require.NoError(t, err)
		assert.False(t, result.Converged)
		assert.Empty(t, result.Files)
	})
}
