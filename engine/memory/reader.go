package memory

import (
	"os"
	"regexp"
	"time"
)

// entryBlockPattern matches one "## entry ..." block. Readers apply it with
// FindAllStringSubmatch and silently skip anything that doesn't match
// rather than failing the whole read — a hand-edited or partially-written
// file should degrade, not break every agent reading it.
var entryBlockPattern = regexp.MustCompile(
	`(?m)^## entry (\S+)\n- agent: (.*)\n- iteration: (\d+)\n- file: (.*)\n- action: (.*)\n- outcome: (.*)\n`,
)

var markerBlockPattern = regexp.MustCompile(
	`(?m)^## marker (\S+)\n- agent: (.*)\n- message: (.*)\n`,
)

// ReadSynapticEntries parses every well-formed entry block for agentID, in
// file order. maxEntries, if positive, keeps only the most recent N.
func (s *Store) ReadSynapticEntries(agentID string, maxEntries int) ([]SynapticEntry, error) {
	data, err := os.ReadFile(s.synapsePath(agentID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	matches := entryBlockPattern.FindAllStringSubmatch(string(data), -1)
	entries := make([]SynapticEntry, 0, len(matches))
	for _, m := range matches {
		ts, err := time.Parse(time.RFC3339, m[1])
		if err != nil {
			continue
		}
		iteration, ok := parseIntTolerant(m[3])
		if !ok {
			continue
		}
		entries = append(entries, SynapticEntry{
			Timestamp: ts,
			AgentID:   m[2],
			Iteration: iteration,
			FilePath:  m[4],
			Action:    m[5],
			Outcome:   m[6],
		})
	}
	if maxEntries > 0 && len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}
	return entries, nil
}

// ReadTrailMarkers parses every well-formed marker block for filePath.
// maxMarkers, if positive, keeps only the most recent N.
func (s *Store) ReadTrailMarkers(filePath string, maxMarkers int) ([]TrailMarker, error) {
	data, err := os.ReadFile(s.trailPath(filePath))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	matches := markerBlockPattern.FindAllStringSubmatch(string(data), -1)
	markers := make([]TrailMarker, 0, len(matches))
	for _, m := range matches {
		ts, err := time.Parse(time.RFC3339, m[1])
		if err != nil {
			continue
		}
		markers = append(markers, TrailMarker{Timestamp: ts, AgentID: m[2], Message: m[3]})
	}
	if maxMarkers > 0 && len(markers) > maxMarkers {
		markers = markers[len(markers)-maxMarkers:]
	}
	return markers, nil
}

func parseIntTolerant(s string) (int, bool) {
	n := 0
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
