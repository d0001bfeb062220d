// Package config loads antforge's runtime configuration: orchestrator pool
// sizing, evaporation/convergence tuning, scheduling intervals, and synaptic
// memory limits, per the configuration contract in SPEC_FULL.md §6.
package config

import (
	"fmt"
	"time"
)

// Config is the fully resolved runtime configuration for one orchestrator
// run. Field names mirror the keys in SPEC_FULL.md §6 exactly.
type Config struct {
	AgentCount int `koanf:"agent_count"`
	MinAgents  int `koanf:"min_agents"`
	MaxAgents  int `koanf:"max_agents"`

	MaxIterations int `koanf:"max_iterations"`

	EvaporationRate     float64       `koanf:"evaporation_rate"`
	EvaporationInterval time.Duration `koanf:"evaporation_interval"`

	FileConvergenceThreshold   float64 `koanf:"file_convergence_threshold"`
	GlobalConvergenceThreshold float64 `koanf:"global_convergence_threshold"`

	ScaleCheckInterval time.Duration `koanf:"scale_check_interval"`
	SnapshotInterval   time.Duration `koanf:"snapshot_interval"`

	MaxSynapticEntries int `koanf:"max_synaptic_entries"`
	MaxTrailMarkers    int `koanf:"max_trail_markers"`

	MemoryEnabled bool   `koanf:"memory_enabled"`
	MemoryBaseDir string `koanf:"memory_base_dir"`
}

// Default returns the configuration antforge ships with out of the box.
func Default() *Config {
	return &Config{
		AgentCount:                 3,
		MinAgents:                  1,
		MaxAgents:                  8,
		MaxIterations:              25,
		EvaporationRate:            0.1,
		EvaporationInterval:        30 * time.Second,
		FileConvergenceThreshold:   0.8,
		GlobalConvergenceThreshold: 0.9,
		ScaleCheckInterval:         10 * time.Second,
		SnapshotInterval:           60 * time.Second,
		MaxSynapticEntries:         10,
		MaxTrailMarkers:            5,
		MemoryEnabled:              true,
		MemoryBaseDir:              ".swarm-memory",
	}
}

// Validate enforces the "fatal at construction" error kind from
// SPEC_FULL.md §7 (Configuration error).
func (c *Config) Validate() error {
	if c.MinAgents > c.MaxAgents {
		return fmt.Errorf("config: min_agents (%d) must not exceed max_agents (%d)", c.MinAgents, c.MaxAgents)
	}
	if c.MinAgents < 0 {
		return fmt.Errorf("config: min_agents must be non-negative, got %d", c.MinAgents)
	}
	if c.AgentCount < c.MinAgents || c.AgentCount > c.MaxAgents {
		return fmt.Errorf(
			"config: agent_count (%d) must be within [min_agents, max_agents] = [%d, %d]",
			c.AgentCount, c.MinAgents, c.MaxAgents,
		)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("config: max_iterations must be positive, got %d", c.MaxIterations)
	}
	if c.EvaporationRate <= 0 || c.EvaporationRate >= 1 {
		return fmt.Errorf("config: evaporation_rate must be in (0,1), got %v", c.EvaporationRate)
	}
	if c.FileConvergenceThreshold <= 0 || c.FileConvergenceThreshold > 1 {
		return fmt.Errorf("config: file_convergence_threshold must be in (0,1], got %v", c.FileConvergenceThreshold)
	}
	if c.GlobalConvergenceThreshold <= 0 || c.GlobalConvergenceThreshold > 1 {
		return fmt.Errorf("config: global_convergence_threshold must be in (0,1], got %v", c.GlobalConvergenceThreshold)
	}
	return nil
}
