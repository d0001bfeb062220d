package hive

import (
	"strings"
	"testing"

	"github.com/compozy/antforge/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTask() TaskSpec {
	return TaskSpec{
		ProjectName: "widget",
		Description: "a tiny two-file widget",
		FileSlots: []FileSlotSpec{
			{FilePath: "a.x", Description: "token definitions"},
			{FilePath: "b.x", Description: "consumer of a.x", DependsOn: []FilePath{"a.x"}},
		},
	}
}

func longCode(lines int) string {
	line := "return value // padding padding padding padding"
	var b strings.Builder
	for i := 0; i < lines; i++ {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func Test_Environment_Seed(t *testing.T) {
	t.Run("Should wire dependsOn into dependedBy on both ends", func(t *testing.T) {
		env := NewEnvironment(DefaultEnvironmentConfig(), nil)
		require.NoError(t, env.Seed(testTask()))

		a, ok := env.Slot("a.x")
		require.True(t, ok)
		assert.Equal(t, []FilePath{"b.x"}, a.DependedBy)

		b, ok := env.Slot("b.x")
		require.True(t, ok)
		assert.Equal(t, []FilePath{"a.x"}, b.DependsOn)
	})

	t.Run("Should reject a dependency on an unknown file", func(t *testing.T) {
		env := NewEnvironment(DefaultEnvironmentConfig(), nil)
		task := TaskSpec{FileSlots: []FileSlotSpec{
			{FilePath: "a.x", DependsOn: []FilePath{"missing.x"}},
		}}
		err := env.Seed(task)
		assert.ErrorContains(t, err, "missing.x")
	})
}

func Test_Environment_DepositSolution(t *testing.T) {
	t.Run("Should reinforce an identical resubmission from a different agent (S1)", func(t *testing.T) {
		env := NewEnvironment(DefaultEnvironmentConfig(), nil)
		require.NoError(t, env.Seed(TaskSpec{FileSlots: []FileSlotSpec{{FilePath: "a.x"}}}))

		g1, g2 := core.MustNewID(), core.MustNewID()
		code := longCode(20)

		r1, err := env.DepositSolution(DepositInput{
			FilePath: "a.x", AgentID: g1, Code: code, Quality: 0.87,
			Exports: []string{"f"}, ValidationSuccess: true,
		})
		require.NoError(t, err)
		assert.False(t, r1.Reinforced)
		firstQuality := r1.Pheromone.Quality

		r2, err := env.DepositSolution(DepositInput{
			FilePath: "a.x", AgentID: g2, Code: code, Quality: 0.87,
			Exports: []string{"f"}, ValidationSuccess: true,
		})
		require.NoError(t, err)
		assert.True(t, r2.Reinforced)
		assert.Same(t, r1.Pheromone, r2.Pheromone)
		assert.Len(t, r2.Pheromone.Depositors, 2)
		assert.GreaterOrEqual(t, r2.Pheromone.Quality, firstQuality+reinforcementDelta-1e-9)

		slot, ok := env.Slot("a.x")
		require.True(t, ok)
		assert.Contains(t, []SlotStatus{StatusSolid, StatusExcellent}, slot.Status)
		assert.InDelta(t, 1.0, env.CalculateGlobalConvergence(), 1e-9)
		assert.True(t, env.HasConverged())
	})

	t.Run("Should reject an unknown file path and report the valid paths", func(t *testing.T) {
		env := NewEnvironment(DefaultEnvironmentConfig(), nil)
		require.NoError(t, env.Seed(testTask()))
		_, err := env.DepositSolution(DepositInput{FilePath: "nope.x", AgentID: core.MustNewID()})
		var unknown *ErrUnknownFile
		require.ErrorAs(t, err, &unknown)
		assert.NotEmpty(t, unknown.ValidPaths)
		assert.NotContains(t, unknown.ValidPaths, FilePath("nope.x"))
	})

	t.Run("Should raise and later clear an interface_mismatch signal as the dependency repairs (S2)", func(t *testing.T) {
		env := NewEnvironment(DefaultEnvironmentConfig(), nil)
		require.NoError(t, env.Seed(testTask()))

		g1 := core.MustNewID()
		_, err := env.DepositSolution(DepositInput{
			FilePath: "b.x", AgentID: g1, Code: "x", Quality: 0,
			Imports:           []ImportRef{{Name: "tok", FromFile: "a.x"}},
			ValidationSuccess: false,
		})
		require.NoError(t, err)

		signals := env.GetSignals(ptr(FilePath("b.x")))
		require.Len(t, signals, 1)
		assert.Equal(t, SignalInterfaceMismatch, signals[0].Type)
		assert.Contains(t, signals[0].Message, "tok")

		bSlot, ok := env.Slot("b.x")
		require.True(t, ok)
		assert.Equal(t, StatusEmpty, bSlot.Status, "a zero-quality deposit must not read as attempted or blocked")

		g2 := core.MustNewID()
		_, err = env.DepositSolution(DepositInput{
			FilePath: "a.x", AgentID: g2, Code: longCode(10), Quality: 0.5,
			Exports: []string{"tok"}, ValidationSuccess: true,
		})
		require.NoError(t, err)

		signals = env.GetSignals(ptr(FilePath("b.x")))
		assert.Empty(t, signals, "repairing the dependency must clear the mismatch signal on b.x")
	})

	t.Run("Should flag a missing export as high severity once the dependency has a solution", func(t *testing.T) {
		env := NewEnvironment(DefaultEnvironmentConfig(), nil)
		require.NoError(t, env.Seed(testTask()))

		g1 := core.MustNewID()
		_, err := env.DepositSolution(DepositInput{
			FilePath: "a.x", AgentID: g1, Code: longCode(10), Quality: 0.5,
			Exports: []string{"other"}, ValidationSuccess: true,
		})
		require.NoError(t, err)

		g2 := core.MustNewID()
		_, err = env.DepositSolution(DepositInput{
			FilePath: "b.x", AgentID: g2, Code: longCode(10), Quality: 0.5,
			Imports: []ImportRef{{Name: "tok", FromFile: "a.x"}}, ValidationSuccess: true,
		})
		require.NoError(t, err)

		signals := env.GetSignals(ptr(FilePath("b.x")))
		require.Len(t, signals, 1)
		assert.Equal(t, SeverityHigh, signals[0].Severity)
	})
}

func Test_Environment_Evaporate(t *testing.T) {
	t.Run("Should drop a pheromone below the strength floor and demote the slot", func(t *testing.T) {
		env := NewEnvironment(DefaultEnvironmentConfig(), nil)
		require.NoError(t, env.Seed(testTask()))

		g1 := core.MustNewID()
		_, err := env.DepositSolution(DepositInput{
			FilePath: "a.x", AgentID: g1, Code: longCode(20), Quality: 0.9,
			Exports: []string{"f"}, ValidationSuccess: true,
		})
		require.NoError(t, err)

		report := env.Evaporate(0.95)
		assert.Equal(t, 1, report.PheromonesRemoved)

		slot, ok := env.Slot("a.x")
		require.True(t, ok)
		assert.Equal(t, StatusEmpty, slot.Status)
		assert.Equal(t, 0.0, slot.BestQuality)
	})

	t.Run("Should decay without removing when the rate keeps strength above the floor", func(t *testing.T) {
		env := NewEnvironment(DefaultEnvironmentConfig(), nil)
		require.NoError(t, env.Seed(testTask()))
		g1 := core.MustNewID()
		_, err := env.DepositSolution(DepositInput{
			FilePath: "a.x", AgentID: g1, Code: longCode(20), Quality: 0.9,
			Exports: []string{"f"}, ValidationSuccess: true,
		})
		require.NoError(t, err)

		report := env.Evaporate(0.1)
		assert.Equal(t, 0, report.PheromonesRemoved)
		phs := env.GetFilePheromones("a.x")
		require.Len(t, phs, 1)
		assert.InDelta(t, 0.9, phs[0].Strength, 1e-9)
	})
}

func Test_Environment_GetScalingAdvice(t *testing.T) {
	t.Run("Should advise scale_up when a file is empty and unattended", func(t *testing.T) {
		env := NewEnvironment(DefaultEnvironmentConfig(), nil)
		require.NoError(t, env.Seed(testTask()))
		assert.Equal(t, AdviceScaleUp, env.GetScalingAdvice(0))
	})

	t.Run("Should hold when active agents already cover every unfinished file", func(t *testing.T) {
		env := NewEnvironment(DefaultEnvironmentConfig(), nil)
		require.NoError(t, env.Seed(testTask()))
		require.NoError(t, env.RegisterAgentActivity("a.x", core.MustNewID()))
		require.NoError(t, env.RegisterAgentActivity("b.x", core.MustNewID()))
		assert.Equal(t, AdviceHold, env.GetScalingAdvice(2))
	})

	t.Run("Should advise scale_down once most files have converged", func(t *testing.T) {
		env := NewEnvironment(DefaultEnvironmentConfig(), nil)
		require.NoError(t, env.Seed(TaskSpec{FileSlots: []FileSlotSpec{{FilePath: "a.x"}}}))
		g1 := core.MustNewID()
		_, err := env.DepositSolution(DepositInput{
			FilePath: "a.x", AgentID: g1, Code: longCode(20), Quality: 0.95,
			Exports: []string{"f"}, ValidationSuccess: true,
		})
		require.NoError(t, err)
		assert.Equal(t, AdviceScaleDown, env.GetScalingAdvice(1))
	})
}

func Test_Environment_AgentFocus(t *testing.T) {
	t.Run("Should move an agent's focus from one file to another", func(t *testing.T) {
		env := NewEnvironment(DefaultEnvironmentConfig(), nil)
		require.NoError(t, env.Seed(testTask()))
		agent := core.MustNewID()
		require.NoError(t, env.RegisterAgentActivity("a.x", agent))
		require.NoError(t, env.RegisterAgentActivity("b.x", agent))

		snap := env.Perceive(nil)
		for _, s := range snap.Slots {
			if s.FilePath == "a.x" {
				assert.Equal(t, 0, s.ActiveAgentCount)
			}
			if s.FilePath == "b.x" {
				assert.Equal(t, 1, s.ActiveAgentCount)
			}
		}
	})

	t.Run("Should clear focus on deregister", func(t *testing.T) {
		env := NewEnvironment(DefaultEnvironmentConfig(), nil)
		require.NoError(t, env.Seed(testTask()))
		agent := core.MustNewID()
		require.NoError(t, env.RegisterAgentActivity("a.x", agent))
		env.DeregisterAgent(agent)
		snap := env.Perceive(nil)
		assert.Equal(t, 0, snap.Slots[0].ActiveAgentCount)
	})
}

func Test_Environment_GetContextFiles(t *testing.T) {
	t.Run("Should only include files with a best solution", func(t *testing.T) {
		env := NewEnvironment(DefaultEnvironmentConfig(), nil)
		require.NoError(t, env.Seed(testTask()))
		g1 := core.MustNewID()
		_, err := env.DepositSolution(DepositInput{
			FilePath: "a.x", AgentID: g1, Code: "hello", Quality: 0.5,
			Exports: []string{"f"}, ValidationSuccess: true,
		})
		require.NoError(t, err)
		files := env.GetContextFiles()
		assert.Equal(t, map[FilePath]string{"a.x": "hello"}, files)
	})
}

func ptr[T any](v T) *T { return &v }
