// Package orchestrator implements the run lifecycle from SPEC_FULL.md
// §4.3: seed the hive, bootstrap synaptic memory, spawn the initial agent
// pool, run evaporation and snapshot timers on a schedule, scale the pool
// against the hive's own advice, and collect the final artifact set once
// the run terminates.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/compozy/antforge/engine/agent"
	"github.com/compozy/antforge/engine/core"
	"github.com/compozy/antforge/engine/hive"
	"github.com/compozy/antforge/engine/infra/metrics"
	"github.com/compozy/antforge/engine/llmrt"
	"github.com/compozy/antforge/engine/memory"
	"github.com/compozy/antforge/engine/tools"
	"github.com/compozy/antforge/engine/validator"
	"github.com/compozy/antforge/pkg/config"
	"github.com/compozy/antforge/pkg/logger"
)

// Result is everything one orchestrated run produces.
type Result struct {
	Files             map[hive.FilePath]string
	Converged         bool
	GlobalConvergence float64
	AgentsSpawned     int
}

// Orchestrator drives one end-to-end run of the coordination engine.
type Orchestrator struct {
	cfg       *config.Config
	validator validator.Validator
	runtime   llmrt.Runtime
	log       logger.Logger
	metrics   *metrics.Recorder
}

// New builds an Orchestrator. validator and runtime are the external
// collaborators named in SPEC_FULL.md §6. A nil metrics.Recorder disables
// instrumentation without requiring callers to special-case it.
func New(
	cfg *config.Config, v validator.Validator, rt llmrt.Runtime, log logger.Logger, rec *metrics.Recorder,
) *Orchestrator {
	if log == nil {
		log = logger.FromContext(nil)
	}
	return &Orchestrator{
		cfg: cfg, validator: v, runtime: rt, log: log.With("component", "orchestrator"), metrics: rec,
	}
}

type agentHandle struct {
	id     core.ID
	cancel context.CancelFunc
	runner *agent.Agent
	done   chan struct{}
}

// Run seeds the environment from task, spawns the initial agent pool, and
// drives the run to completion: by global convergence, by every agent
// exhausting its iteration cap, or by ctx cancellation.
func (o *Orchestrator) Run(ctx context.Context, task hive.TaskSpec, baseDir string) (Result, error) {
	env := hive.NewEnvironment(
		hive.EnvironmentConfig{
			FileConvergenceThreshold:   o.cfg.FileConvergenceThreshold,
			GlobalConvergenceThreshold: o.cfg.GlobalConvergenceThreshold,
		},
		o.log,
	)
	if err := env.Seed(task); err != nil {
		return Result{}, fmt.Errorf("orchestrator: seed failed: %w", err)
	}

	var store *memory.Store
	if o.cfg.MemoryEnabled {
		var err error
		store, err = memory.Open(ctx, baseDir, o.log)
		if err != nil {
			return Result{}, fmt.Errorf("orchestrator: memory bootstrap failed: %w", err)
		}
		defer store.Close()
		if err := store.WriteDependencyMap(renderDependencyMap(task)); err != nil {
			o.log.Warn("failed to write dependency map", "error", err)
		}
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	var mu sync.Mutex
	var wg sync.WaitGroup
	handles := make([]*agentHandle, 0, o.cfg.MaxAgents)
	spawned := 0

	spawn := func() {
		mu.Lock()
		if len(handles) >= o.cfg.MaxAgents {
			mu.Unlock()
			return
		}
		agentCtx, cancel := context.WithCancel(runCtx)
		id := core.MustNewID()
		registry := tools.NewRegistry(env, o.validator, store, id, o.metrics)
		runner := agent.New(id, env, store, registry, o.runtime, o.cfg.MaxIterations, o.log)
		h := &agentHandle{id: id, cancel: cancel, runner: runner, done: make(chan struct{})}
		handles = append(handles, h)
		spawned++
		mu.Unlock()

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer close(h.done)
			if err := runner.Run(agentCtx); err != nil {
				o.log.Debug("agent stopped", "agent_id", id.String(), "error", err)
			}
		}()
	}

	for i := 0; i < o.cfg.AgentCount; i++ {
		spawn()
	}

	cronSched := cron.New()
	o.scheduleEvaporation(cronSched, env)
	if store != nil {
		o.scheduleSnapshots(cronSched, env, store)
	}
	cronSched.Start()
	defer cronSched.Stop()

	o.monitorLoop(runCtx, env, &mu, &handles, spawn, cancelRun)

	wg.Wait()

	if store != nil {
		_ = store.WriteHiveState(renderHiveState(env))
	}

	files := env.GetContextFiles()
	for _, fp := range env.FilePaths() {
		if slot, ok := env.Slot(fp); ok {
			o.metrics.SetFileQuality(string(fp), slot.BestQuality)
		}
	}
	return Result{
		Files:             files,
		Converged:         env.HasConverged(),
		GlobalConvergence: env.CalculateGlobalConvergence(),
		AgentsSpawned:     spawned,
	}, nil
}

// monitorLoop polls scaling advice on cfg.ScaleCheckInterval, scaling the
// pool up or down within [minAgents, maxAgents], and stops the run as soon
// as the environment converges.
func (o *Orchestrator) monitorLoop(
	ctx context.Context, env *hive.Environment, mu *sync.Mutex, handles *[]*agentHandle,
	spawn func(), cancelRun context.CancelFunc,
) {
	ticker := time.NewTicker(o.cfg.ScaleCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if env.HasConverged() {
				o.log.Info("global convergence reached, terminating run")
				cancelRun()
				return
			}
			mu.Lock()
			active := len(*handles)
			mu.Unlock()
			o.metrics.SetActiveAgents(active)
			o.metrics.SetGlobalConvergence(env.CalculateGlobalConvergence())

			switch env.GetScalingAdvice(active) {
			case hive.AdviceScaleUp:
				mu.Lock()
				room := active < o.cfg.MaxAgents
				mu.Unlock()
				if room {
					o.log.Info("scaling up", "active", active)
					o.metrics.RecordScaleUp()
					spawn()
				}
			case hive.AdviceScaleDown:
				mu.Lock()
				if len(*handles) > o.cfg.MinAgents {
					victimIdx := leastSuccessfulIndex(*handles)
					victim := (*handles)[victimIdx]
					*handles = append((*handles)[:victimIdx], (*handles)[victimIdx+1:]...)
					mu.Unlock()
					o.log.Info("scaling down", "agent_id", victim.id.String(),
						"submit_successes", victim.runner.SubmitSuccesses())
					o.metrics.RecordScaleDown()
					victim.cancel()
				} else {
					mu.Unlock()
				}
			case hive.AdviceHold:
			}
			if allDone(*handles) {
				return
			}
		}
	}
}

// leastSuccessfulIndex returns the index of the still-running agent with the
// fewest successful submit_solution calls, per spec.md §4.3 step 5. Ties
// keep the earliest-spawned handle, since handles are appended in spawn
// order. When every handle has already finished, it returns 0.
func leastSuccessfulIndex(handles []*agentHandle) int {
	victim := -1
	fewest := 0
	for i, h := range handles {
		select {
		case <-h.done:
			continue
		default:
		}
		if n := h.runner.SubmitSuccesses(); victim < 0 || n < fewest {
			fewest = n
			victim = i
		}
	}
	if victim < 0 {
		return 0
	}
	return victim
}

func allDone(handles []*agentHandle) bool {
	if len(handles) == 0 {
		return false
	}
	for _, h := range handles {
		select {
		case <-h.done:
		default:
			return false
		}
	}
	return true
}

func (o *Orchestrator) scheduleEvaporation(sched *cron.Cron, env *hive.Environment) {
	spec := fmt.Sprintf("@every %s", o.cfg.EvaporationInterval)
	if _, err := sched.AddFunc(spec, func() {
		env.Evaporate(o.cfg.EvaporationRate)
		o.metrics.RecordEvaporation()
	}); err != nil {
		o.log.Warn("failed to schedule evaporation", "error", err)
	}
}

func (o *Orchestrator) scheduleSnapshots(sched *cron.Cron, env *hive.Environment, store *memory.Store) {
	spec := fmt.Sprintf("@every %s", o.cfg.SnapshotInterval)
	if _, err := sched.AddFunc(spec, func() {
		if err := store.WriteHiveState(renderHiveState(env)); err != nil {
			o.log.Warn("failed to write hive-state snapshot", "error", err)
		}
	}); err != nil {
		o.log.Warn("failed to schedule snapshots", "error", err)
	}
}
