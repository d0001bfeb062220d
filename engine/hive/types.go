// Package hive implements the shared pheromone environment: the single
// mutable store of file slots, spatial pheromones (deposited solutions),
// signal pheromones (advisories), and the active-agent map, per
// SPEC_FULL.md §4.1. It is the only package that mutates this state; every
// other package reaches it through Environment's exported operations.
package hive

import (
	"time"

	"github.com/compozy/antforge/engine/core"
)

// FilePath is an opaque string key identifying one artifact the task
// produces. The environment never parses it; it is matched as a plain
// string, per spec's Non-goals.
type FilePath string

// SlotStatus is a closed enumeration of the statuses a FileSlot can hold.
type SlotStatus string

const (
	StatusEmpty     SlotStatus = "empty"
	StatusAttempted SlotStatus = "attempted"
	StatusPartial   SlotStatus = "partial"
	StatusSolid     SlotStatus = "solid"
	StatusExcellent SlotStatus = "excellent"
	StatusBlocked   SlotStatus = "blocked"
)

// SignalType is a closed enumeration of the advisories the environment (or
// an agent) can anchor to a file.
type SignalType string

const (
	SignalInterfaceMismatch  SignalType = "interface_mismatch"
	SignalCompilationError   SignalType = "compilation_error"
	SignalIntegrationFailure SignalType = "integration_failure"
	SignalDependencyReady    SignalType = "dependency_ready"
	SignalNeedsAttention     SignalType = "needs_attention"
)

// Severity is a closed enumeration of signal severities.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// EnvironmentAgent marks the source of a signal the environment itself
// raised, as opposed to one an agent deposited directly.
const EnvironmentAgent = "environment"

// ImportRef names one identifier a file declares it imports from another.
type ImportRef struct {
	Name     string
	FromFile FilePath
}

// ValidationMetadata carries the validator's verdict for one deposit.
type ValidationMetadata struct {
	Success bool
	Errors  []string
}

// FileSlot is one artifact the task must produce.
type FileSlot struct {
	FilePath       FilePath
	Description    string
	BestSolutionID core.ID
	BestQuality    float64
	DependsOn      []FilePath
	DependedBy     []FilePath
	Status         SlotStatus
}

// SpatialPheromone is a submitted solution anchored to a file.
type SpatialPheromone struct {
	ID                 core.ID
	FilePath           FilePath
	Code               string
	Quality            float64
	Strength           float64
	Depositors         map[core.ID]struct{}
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Exports            map[string]struct{}
	Imports            []ImportRef
	CompatibilityScore float64
	Metadata           ValidationMetadata
}

// ExportsSlice returns Exports as a sorted slice, for stable output.
func (p *SpatialPheromone) ExportsSlice() []string {
	out := make([]string, 0, len(p.Exports))
	for e := range p.Exports {
		out = append(out, e)
	}
	sortStrings(out)
	return out
}

// DepositorsSlice returns Depositors as a sorted slice, for stable output.
func (p *SpatialPheromone) DepositorsSlice() []core.ID {
	out := make([]core.ID, 0, len(p.Depositors))
	for d := range p.Depositors {
		out = append(out, d)
	}
	sortIDs(out)
	return out
}

// SignalPheromone is a non-code advisory anchored to a file.
type SignalPheromone struct {
	ID          core.ID
	Type        SignalType
	FilePath    FilePath
	Message     string
	Severity    Severity
	Strength    float64
	CreatedAt   time.Time
	SourceAgent string
	// RelatedFile names the dependency file this mismatch concerns, when the
	// signal was raised by the import-compatibility or reverse-export
	// checks. Empty for agent-raised signals.
	RelatedFile FilePath
}

// TaskSpec is the input to Seed, per SPEC_FULL.md §6. Field tags give it a
// stable on-disk shape for the run command's YAML task file.
type TaskSpec struct {
	ProjectName string         `yaml:"project_name"`
	Description string         `yaml:"description"`
	FileSlots   []FileSlotSpec `yaml:"file_slots"`
}

// FileSlotSpec describes one artifact to seed a FileSlot from.
type FileSlotSpec struct {
	FilePath    FilePath   `yaml:"file_path"`
	Description string     `yaml:"description"`
	DependsOn   []FilePath `yaml:"depends_on"`
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func sortIDs(s []core.ID) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
