// Package memory implements synaptic memory: the append-only markdown
// record every agent and the orchestrator write to and read from, per
// SPEC_FULL.md §4.4. Writes are serialized through a single background
// queue; reads are tolerant, regex-based, and silently skip malformed
// blocks rather than failing the caller.
package memory

import "time"

// SynapticEntry is one agent iteration's record, appended to
// synapses/<agentId>.md.
type SynapticEntry struct {
	AgentID   string
	Iteration int
	Timestamp time.Time
	FilePath  string
	Action    string
	Outcome   string
}

// TrailMarker is one note an agent leaves for others working the same or a
// dependent file, appended to trails/<filePath-with-slashes-replaced>.md.
type TrailMarker struct {
	AgentID   string
	Timestamp time.Time
	Message   string
}

// QualityLogEntry is one deposit's record, appended to quality-log.md.
type QualityLogEntry struct {
	Timestamp time.Time
	FilePath  string
	AgentID   string
	Quality   float64
	Status    string
}
