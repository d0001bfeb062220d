package orchestrator

import (
	"fmt"
	"strings"

	"github.com/compozy/antforge/engine/hive"
)

// renderDependencyMap produces the static dependency-map.md content written
// once at bootstrap, per SPEC_FULL.md §4.4.
func renderDependencyMap(task hive.TaskSpec) string {
	var b strings.Builder
	b.WriteString("# dependency map\n\n")
	for _, spec := range task.FileSlots {
		if len(spec.DependsOn) == 0 {
			fmt.Fprintf(&b, "- %s: no dependencies\n", spec.FilePath)
			continue
		}
		fmt.Fprintf(&b, "- %s depends on: %v\n", spec.FilePath, spec.DependsOn)
	}
	return b.String()
}

// renderHiveState produces the hive-state.md snapshot the snapshot timer
// and the final collection step write.
func renderHiveState(env *hive.Environment) string {
	snap := env.Perceive(nil)
	var b strings.Builder
	fmt.Fprintf(&b, "# hive state\n\nglobal convergence: %.2f\n\n", snap.GlobalConvergence)
	for _, s := range snap.Slots {
		fmt.Fprintf(&b, "## %s\n- status: %s\n- best quality: %.2f\n- solutions: %d\n- signals: %d\n- active agents: %d\n- recommendation: %s\n\n",
			s.FilePath, s.Status, s.BestQuality, s.SolutionCount, s.SignalCount, s.ActiveAgentCount, s.Recommendation)
	}
	return b.String()
}
