package hive

import (
	"fmt"
	"sync"
	"time"

	"github.com/compozy/antforge/engine/core"
	"github.com/compozy/antforge/pkg/logger"
)

// reinforcementDelta is added to a pheromone's quality each time a
// sufficiently similar solution is reinforced, per SPEC_FULL.md §4.1 step 4.
const reinforcementDelta = 0.1

// similarityCodeLengthRatio is the minimum ratio of shorter-to-longer code
// length two deposits to the same file must share, alongside an identical
// export set, to be treated as the same solution.
const similarityCodeLengthRatio = 0.8

// minPheromoneStrength and minSignalStrength are the strengths below which
// Evaporate removes a pheromone or signal outright.
const (
	minPheromoneStrength = 0.1
	minSignalStrength    = 0.05
)

// EnvironmentConfig carries the tunables Environment needs at construction.
type EnvironmentConfig struct {
	FileConvergenceThreshold   float64
	GlobalConvergenceThreshold float64
}

// DefaultEnvironmentConfig mirrors pkg/config.Default's thresholds.
func DefaultEnvironmentConfig() EnvironmentConfig {
	return EnvironmentConfig{
		FileConvergenceThreshold:   0.8,
		GlobalConvergenceThreshold: 0.9,
	}
}

// Environment is the shared pheromone store every agent perceives and
// deposits into. All nine deposit steps execute under a single write lock;
// reads take the read lock. No LLM or validator I/O ever happens while
// either lock is held.
type Environment struct {
	mu sync.RWMutex

	cfg EnvironmentConfig
	log logger.Logger

	slots          map[FilePath]*FileSlot
	order          []FilePath
	pheromones     map[core.ID]*SpatialPheromone
	filePheromones map[FilePath][]core.ID
	signals        map[core.ID]*SignalPheromone
	fileSignals    map[FilePath][]core.ID

	activeAgents map[FilePath]map[core.ID]struct{}
	agentFocus   map[core.ID]FilePath
}

// NewEnvironment builds an empty, unseeded Environment.
func NewEnvironment(cfg EnvironmentConfig, log logger.Logger) *Environment {
	if log == nil {
		log = logger.FromContext(nil)
	}
	return &Environment{
		cfg:            cfg,
		log:            log.With("component", "hive.environment"),
		slots:          make(map[FilePath]*FileSlot),
		pheromones:     make(map[core.ID]*SpatialPheromone),
		filePheromones: make(map[FilePath][]core.ID),
		signals:        make(map[core.ID]*SignalPheromone),
		fileSignals:    make(map[FilePath][]core.ID),
		activeAgents:   make(map[FilePath]map[core.ID]struct{}),
		agentFocus:     make(map[core.ID]FilePath),
	}
}

// ErrUnknownFile is returned when an operation names a file path that was
// never seeded. ValidPaths carries the full set of seeded paths so a caller
// (or the tool surface relaying this error to an agent) can report what was
// actually available, per spec.md §4.2's input validation rule.
type ErrUnknownFile struct {
	FilePath   FilePath
	ValidPaths []FilePath
}

func (e *ErrUnknownFile) Error() string {
	return fmt.Sprintf("hive: unknown file slot %q (valid paths: %v)", e.FilePath, e.ValidPaths)
}

// validPathsLocked returns the seeded file paths. Callers must already hold
// e.mu (read or write) — it does not lock itself, unlike the public
// FilePaths, so it is safe to call from inside an already-locked method.
func (e *Environment) validPathsLocked() []FilePath {
	return append([]FilePath(nil), e.order...)
}

// Seed populates the environment's file slots from a task specification.
// Every dependsOn entry must name a file slot present in the same task spec.
func (e *Environment) Seed(task TaskSpec) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	known := make(map[FilePath]struct{}, len(task.FileSlots))
	for _, spec := range task.FileSlots {
		known[spec.FilePath] = struct{}{}
	}
	for _, spec := range task.FileSlots {
		for _, dep := range spec.DependsOn {
			if _, ok := known[dep]; !ok {
				return fmt.Errorf("hive: seed: %q depends on unknown file %q", spec.FilePath, dep)
			}
		}
	}

	for _, spec := range task.FileSlots {
		dependsOn := append([]FilePath(nil), spec.DependsOn...)
		e.slots[spec.FilePath] = &FileSlot{
			FilePath:    spec.FilePath,
			Description: spec.Description,
			DependsOn:   dependsOn,
			Status:      StatusEmpty,
		}
		e.order = append(e.order, spec.FilePath)
	}
	for _, spec := range task.FileSlots {
		for _, dep := range spec.DependsOn {
			e.slots[dep].DependedBy = append(e.slots[dep].DependedBy, spec.FilePath)
		}
	}
	e.log.Info("seeded environment", "project", task.ProjectName, "file_count", len(task.FileSlots))
	return nil
}

// SlotSnapshot is one file's state as perceive_environment reports it.
type SlotSnapshot struct {
	FilePath         FilePath
	Description      string
	Status           SlotStatus
	BestQuality      float64
	DependsOn        []FilePath
	DependedBy       []FilePath
	SolutionCount    int
	SignalCount      int
	ActiveAgentCount int
	Recommendation   string
	IsFocus          bool
}

// Snapshot is the full structured view perceive_environment returns.
type Snapshot struct {
	Slots              []SlotSnapshot
	TotalFiles         int
	SolidOrBetter      int
	GlobalConvergence  float64
	Converged          bool
}

// Perceive returns a full environment snapshot. When focusFile names a
// seeded slot, that slot is moved to the front and flagged IsFocus; perceive
// always reports every slot regardless of focus.
func (e *Environment) Perceive(focusFile *FilePath) Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snap := Snapshot{Slots: make([]SlotSnapshot, 0, len(e.order))}
	for _, fp := range e.order {
		slot := e.slots[fp]
		active := len(e.activeAgents[fp])
		signals := len(e.fileSignals[fp])
		snap.Slots = append(snap.Slots, SlotSnapshot{
			FilePath:         fp,
			Description:      slot.Description,
			Status:           slot.Status,
			BestQuality:      slot.BestQuality,
			DependsOn:        append([]FilePath(nil), slot.DependsOn...),
			DependedBy:       append([]FilePath(nil), slot.DependedBy...),
			SolutionCount:    len(e.filePheromones[fp]),
			SignalCount:      signals,
			ActiveAgentCount: active,
			Recommendation:   WorkRecommendation(slot.Status, active, signals),
		})
		if slot.Status == StatusSolid || slot.Status == StatusExcellent {
			snap.SolidOrBetter++
		}
	}
	snap.TotalFiles = len(e.order)
	snap.GlobalConvergence = e.convergenceLocked()
	snap.Converged = snap.GlobalConvergence >= e.cfg.GlobalConvergenceThreshold

	if focusFile != nil {
		for i := range snap.Slots {
			if snap.Slots[i].FilePath == *focusFile {
				snap.Slots[i].IsFocus = true
				snap.Slots[0], snap.Slots[i] = snap.Slots[i], snap.Slots[0]
				break
			}
		}
	}
	return snap
}

// DepositInput is the input to DepositSolution.
type DepositInput struct {
	FilePath          FilePath
	AgentID           core.ID
	Code              string
	Quality           float64
	Exports           []string
	Imports           []ImportRef
	ValidationSuccess bool
	ValidationErrors  []string
}

// DepositResult reports the outcome of one DepositSolution call.
type DepositResult struct {
	Pheromone  *SpatialPheromone
	Reinforced bool
}

// DepositSolution runs the full nine-step deposit algorithm from
// SPEC_FULL.md §4.1: register activity, find-or-create the pheromone,
// promote it to best if warranted, run the import-compatibility and
// reverse-export checks, and recompute affected slot statuses.
func (e *Environment) DepositSolution(in DepositInput) (*DepositResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	slot, ok := e.slots[in.FilePath]
	if !ok {
		return nil, &ErrUnknownFile{FilePath: in.FilePath, ValidPaths: e.validPathsLocked()}
	}

	e.registerActivityLocked(in.FilePath, in.AgentID)

	exports := make(map[string]struct{}, len(in.Exports))
	for _, ex := range in.Exports {
		exports[ex] = struct{}{}
	}

	now := time.Now()
	result := &DepositResult{}

	existing := e.findSimilarLocked(in.FilePath, in.AgentID, exports, in.Code)
	if existing != nil {
		incomingQuality := in.Quality
		priorQuality := existing.Quality
		existing.Quality = minFloat(1.0, existing.Quality+reinforcementDelta)
		existing.Depositors[in.AgentID] = struct{}{}
		existing.Strength = 1.0
		existing.UpdatedAt = now
		if incomingQuality >= priorQuality {
			existing.Code = in.Code
			existing.Exports = exports
			existing.Imports = in.Imports
		}
		existing.Metadata = ValidationMetadata{Success: in.ValidationSuccess, Errors: in.ValidationErrors}
		result.Pheromone = existing
		result.Reinforced = true
	} else {
		ph := &SpatialPheromone{
			ID:         core.MustNewID(),
			FilePath:   in.FilePath,
			Code:       in.Code,
			Quality:    in.Quality,
			Strength:   1.0,
			Depositors: map[core.ID]struct{}{in.AgentID: {}},
			CreatedAt:  now,
			UpdatedAt:  now,
			Exports:    exports,
			Imports:    in.Imports,
			Metadata:   ValidationMetadata{Success: in.ValidationSuccess, Errors: in.ValidationErrors},
		}
		e.pheromones[ph.ID] = ph
		e.filePheromones[in.FilePath] = append(e.filePheromones[in.FilePath], ph.ID)
		result.Pheromone = ph
	}

	if result.Pheromone.Quality > slot.BestQuality {
		slot.BestSolutionID = result.Pheromone.ID
		slot.BestQuality = result.Pheromone.Quality
	}

	e.checkImportCompatibilityLocked(in.FilePath, result.Pheromone.Imports)
	e.checkReverseExportsLocked(in.FilePath, result.Pheromone.Exports)

	slot.Status = recomputeStatus(slot.BestQuality, e.signalsForLocked(in.FilePath))

	e.log.Debug("deposited solution",
		"file", string(in.FilePath), "agent", in.AgentID.String(),
		"reinforced", result.Reinforced, "quality", result.Pheromone.Quality, "status", slot.Status)
	return result, nil
}

// findSimilarLocked looks for an existing pheromone on filePath, deposited by
// a different agent, whose export set matches exactly and whose code length
// is within similarityCodeLengthRatio of the incoming code's length.
func (e *Environment) findSimilarLocked(
	filePath FilePath, agentID core.ID, exports map[string]struct{}, code string,
) *SpatialPheromone {
	for _, id := range e.filePheromones[filePath] {
		ph := e.pheromones[id]
		if ph == nil {
			continue
		}
		if _, mine := ph.Depositors[agentID]; mine && len(ph.Depositors) == 1 {
			continue
		}
		if !sameExportSet(ph.Exports, exports) {
			continue
		}
		if codeLengthRatio(ph.Code, code) <= similarityCodeLengthRatio {
			continue
		}
		return ph
	}
	return nil
}

func sameExportSet(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func codeLengthRatio(a, b string) float64 {
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		if la == lb {
			return 1
		}
		return 0
	}
	if la > lb {
		la, lb = lb, la
	}
	return float64(la) / float64(lb)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// DepositSignal adds a signal pheromone directly, for the leave_trail_marker
// handler and any other callers that raise advisories out of band from a deposit.
type DepositSignalInput struct {
	FilePath    FilePath
	Type        SignalType
	Message     string
	Severity    Severity
	SourceAgent string
	RelatedFile FilePath
}

func (e *Environment) DepositSignal(in DepositSignalInput) (*SignalPheromone, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.slots[in.FilePath]; !ok {
		return nil, &ErrUnknownFile{FilePath: in.FilePath, ValidPaths: e.validPathsLocked()}
	}
	sig := &SignalPheromone{
		ID:          core.MustNewID(),
		Type:        in.Type,
		FilePath:    in.FilePath,
		Message:     in.Message,
		Severity:    in.Severity,
		Strength:    1.0,
		CreatedAt:   time.Now(),
		SourceAgent: in.SourceAgent,
		RelatedFile: in.RelatedFile,
	}
	e.signals[sig.ID] = sig
	e.fileSignals[in.FilePath] = append(e.fileSignals[in.FilePath], sig.ID)

	slot := e.slots[in.FilePath]
	slot.Status = recomputeStatus(slot.BestQuality, e.signalsForLocked(in.FilePath))
	return sig, nil
}

// checkImportCompatibilityLocked implements SPEC_FULL.md §4.1.1: clear all
// interface_mismatch signals on filePath, then regroup the newly deposited
// pheromone's imports by source file and re-raise one signal per group whose
// source has no solution, or whose solution is missing declared names.
func (e *Environment) checkImportCompatibilityLocked(filePath FilePath, imports []ImportRef) {
	e.clearSignalsLocked(filePath, func(sig *SignalPheromone) bool {
		return sig.Type == SignalInterfaceMismatch
	})

	bySource := make(map[FilePath][]string)
	order := make([]FilePath, 0)
	for _, imp := range imports {
		if _, seen := bySource[imp.FromFile]; !seen {
			order = append(order, imp.FromFile)
		}
		bySource[imp.FromFile] = append(bySource[imp.FromFile], imp.Name)
	}

	for _, source := range order {
		names := bySource[source]
		sourceSlot, ok := e.slots[source]
		if !ok {
			continue
		}
		if sourceSlot.BestSolutionID.IsZero() {
			e.raiseSignalLocked(filePath, SignalInterfaceMismatch, SeverityMedium, source,
				fmt.Sprintf("dependency %s has no solution yet. needed: %v", source, names))
			continue
		}
		best := e.pheromones[sourceSlot.BestSolutionID]
		missing := missingNames(names, best.Exports)
		if len(missing) > 0 {
			e.raiseSignalLocked(filePath, SignalInterfaceMismatch, SeverityHigh, source,
				fmt.Sprintf("missing imports from %s: %v. available: %v", source, missing, best.ExportsSlice()))
		}
	}
}

// checkReverseExportsLocked implements SPEC_FULL.md §4.1.2: for each file
// that depends on filePath, clear any interface_mismatch signal that refers
// to filePath as its related source, then recheck that dependent's best
// solution's declared imports from filePath against the newly deposited
// exports, and recompute the dependent's status.
func (e *Environment) checkReverseExportsLocked(filePath FilePath, newExports map[string]struct{}) {
	slot := e.slots[filePath]
	for _, dependent := range slot.DependedBy {
		depSlot, ok := e.slots[dependent]
		if !ok {
			continue
		}
		e.clearSignalsLocked(dependent, func(sig *SignalPheromone) bool {
			return sig.Type == SignalInterfaceMismatch && sig.RelatedFile == filePath
		})

		if depSlot.BestSolutionID.IsZero() {
			continue
		}
		best := e.pheromones[depSlot.BestSolutionID]
		var names []string
		for _, imp := range best.Imports {
			if imp.FromFile == filePath {
				names = append(names, imp.Name)
			}
		}
		if len(names) == 0 {
			continue
		}
		missing := missingNames(names, newExports)
		if len(missing) > 0 {
			e.raiseSignalLocked(dependent, SignalInterfaceMismatch, SeverityHigh, filePath,
				fmt.Sprintf("missing imports from %s: %v", filePath, missing))
		}
		depSlot.Status = recomputeStatus(depSlot.BestQuality, e.signalsForLocked(dependent))
	}
}

func missingNames(names []string, exports map[string]struct{}) []string {
	var missing []string
	for _, n := range names {
		if _, ok := exports[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing
}

func (e *Environment) raiseSignalLocked(filePath FilePath, typ SignalType, sev Severity, related FilePath, msg string) {
	sig := &SignalPheromone{
		ID:          core.MustNewID(),
		Type:        typ,
		FilePath:    filePath,
		Message:     msg,
		Severity:    sev,
		Strength:    1.0,
		CreatedAt:   time.Now(),
		SourceAgent: EnvironmentAgent,
		RelatedFile: related,
	}
	e.signals[sig.ID] = sig
	e.fileSignals[filePath] = append(e.fileSignals[filePath], sig.ID)
}

func (e *Environment) clearSignalsLocked(filePath FilePath, match func(*SignalPheromone) bool) {
	ids := e.fileSignals[filePath]
	kept := ids[:0]
	for _, id := range ids {
		sig := e.signals[id]
		if sig != nil && match(sig) {
			delete(e.signals, id)
			continue
		}
		kept = append(kept, id)
	}
	e.fileSignals[filePath] = kept
}

func (e *Environment) signalsForLocked(filePath FilePath) []*SignalPheromone {
	ids := e.fileSignals[filePath]
	out := make([]*SignalPheromone, 0, len(ids))
	for _, id := range ids {
		if sig := e.signals[id]; sig != nil {
			out = append(out, sig)
		}
	}
	return out
}

// GetBestSolution returns the best pheromone for filePath, if any.
func (e *Environment) GetBestSolution(filePath FilePath) (*SpatialPheromone, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	slot, ok := e.slots[filePath]
	if !ok || slot.BestSolutionID.IsZero() {
		return nil, false
	}
	return e.pheromones[slot.BestSolutionID], true
}

// GetFilePheromones returns every live pheromone deposited against filePath.
func (e *Environment) GetFilePheromones(filePath FilePath) []*SpatialPheromone {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := e.filePheromones[filePath]
	out := make([]*SpatialPheromone, 0, len(ids))
	for _, id := range ids {
		if ph := e.pheromones[id]; ph != nil {
			out = append(out, ph)
		}
	}
	return out
}

// GetSignals returns signals for filePath, or every signal when filePath is
// nil.
func (e *Environment) GetSignals(filePath *FilePath) []*SignalPheromone {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if filePath != nil {
		return e.signalsForLocked(*filePath)
	}
	out := make([]*SignalPheromone, 0, len(e.signals))
	for _, fp := range e.order {
		out = append(out, e.signalsForLocked(fp)...)
	}
	return out
}

// EvaporationReport summarizes one Evaporate call.
type EvaporationReport struct {
	PheromonesRemoved int
	SignalsRemoved    int
}

// Evaporate decays every pheromone's and signal's strength, drops anything
// below its floor, and recomputes best solutions and slot statuses affected
// by the drop, per SPEC_FULL.md §4.1.4.
func (e *Environment) Evaporate(rate float64) EvaporationReport {
	e.mu.Lock()
	defer e.mu.Unlock()

	report := EvaporationReport{}
	affected := make(map[FilePath]bool)

	for fp, ids := range e.filePheromones {
		kept := ids[:0]
		for _, id := range ids {
			ph := e.pheromones[id]
			if ph == nil {
				continue
			}
			ph.Strength *= 1 - rate
			if ph.Strength < minPheromoneStrength {
				delete(e.pheromones, id)
				report.PheromonesRemoved++
				affected[fp] = true
				continue
			}
			kept = append(kept, id)
		}
		e.filePheromones[fp] = kept
	}

	for fp, ids := range e.fileSignals {
		kept := ids[:0]
		for _, id := range ids {
			sig := e.signals[id]
			if sig == nil {
				continue
			}
			sig.Strength *= 1 - 2*rate
			if sig.Strength < minSignalStrength {
				delete(e.signals, id)
				report.SignalsRemoved++
				affected[fp] = true
				continue
			}
			kept = append(kept, id)
		}
		e.fileSignals[fp] = kept
	}

	for _, fp := range e.order {
		slot := e.slots[fp]
		if affected[fp] {
			e.recomputeBestLocked(fp)
		}
		slot.Status = recomputeStatus(slot.BestQuality, e.signalsForLocked(fp))
	}

	e.log.Debug("evaporation cycle complete",
		"rate", rate, "pheromones_removed", report.PheromonesRemoved, "signals_removed", report.SignalsRemoved)
	return report
}

func (e *Environment) recomputeBestLocked(filePath FilePath) {
	slot := e.slots[filePath]
	slot.BestSolutionID = ""
	slot.BestQuality = 0
	for _, id := range e.filePheromones[filePath] {
		ph := e.pheromones[id]
		if ph == nil {
			continue
		}
		if ph.Quality > slot.BestQuality {
			slot.BestQuality = ph.Quality
			slot.BestSolutionID = ph.ID
		}
	}
}

// CalculateGlobalConvergence returns the fraction of seeded files whose
// status is solid or excellent.
func (e *Environment) CalculateGlobalConvergence() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.convergenceLocked()
}

func (e *Environment) convergenceLocked() float64 {
	if len(e.order) == 0 {
		return 0
	}
	solid := 0
	for _, fp := range e.order {
		if s := e.slots[fp].Status; s == StatusSolid || s == StatusExcellent {
			solid++
		}
	}
	return float64(solid) / float64(len(e.order))
}

// HasConverged reports whether global convergence meets or exceeds the
// environment's configured global convergence threshold.
func (e *Environment) HasConverged() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.convergenceLocked() >= e.cfg.GlobalConvergenceThreshold
}

// GetScalingAdvice implements SPEC_FULL.md §4.1.6: hold when active agents
// already cover every unfinished file, scale up when any file sits empty
// with no agent on it, scale down once most files have converged.
func (e *Environment) GetScalingAdvice(activeAgentCount int) ScalingAdvice {
	e.mu.RLock()
	defer e.mu.RUnlock()

	total := len(e.order)
	if total == 0 {
		return AdviceHold
	}
	solidOrBetter := 0
	unattendedEmpty := false
	for _, fp := range e.order {
		slot := e.slots[fp]
		if slot.Status == StatusSolid || slot.Status == StatusExcellent {
			solidOrBetter++
		}
		if slot.Status == StatusEmpty && len(e.activeAgents[fp]) == 0 {
			unattendedEmpty = true
		}
	}
	unfinished := total - solidOrBetter

	if unfinished > 0 && activeAgentCount >= unfinished {
		return AdviceHold
	}
	if unattendedEmpty {
		return AdviceScaleUp
	}
	if float64(solidOrBetter) >= scaleDownConvergence*float64(total) {
		return AdviceScaleDown
	}
	return AdviceHold
}

// RegisterAgentActivity marks agentID as focused on filePath, vacating any
// other file it was previously focused on. Agents are monogamous: one file
// at a time.
func (e *Environment) RegisterAgentActivity(filePath FilePath, agentID core.ID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.slots[filePath]; !ok {
		return &ErrUnknownFile{FilePath: filePath, ValidPaths: e.validPathsLocked()}
	}
	e.registerActivityLocked(filePath, agentID)
	return nil
}

func (e *Environment) registerActivityLocked(filePath FilePath, agentID core.ID) {
	if prev, ok := e.agentFocus[agentID]; ok && prev != filePath {
		if set := e.activeAgents[prev]; set != nil {
			delete(set, agentID)
		}
	}
	if e.activeAgents[filePath] == nil {
		e.activeAgents[filePath] = make(map[core.ID]struct{})
	}
	e.activeAgents[filePath][agentID] = struct{}{}
	e.agentFocus[agentID] = filePath
}

// DeregisterAgent removes agentID from whatever file it was focused on, for
// use when an agent retires or its context is canceled.
func (e *Environment) DeregisterAgent(agentID core.ID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if fp, ok := e.agentFocus[agentID]; ok {
		if set := e.activeAgents[fp]; set != nil {
			delete(set, agentID)
		}
		delete(e.agentFocus, agentID)
	}
}

// GetContextFiles returns the best code for every file that has one, keyed
// by file path, for use as conversation context and as the final collected
// artifact map.
func (e *Environment) GetContextFiles() map[FilePath]string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[FilePath]string)
	for _, fp := range e.order {
		slot := e.slots[fp]
		if slot.BestSolutionID.IsZero() {
			continue
		}
		if ph := e.pheromones[slot.BestSolutionID]; ph != nil {
			out[fp] = ph.Code
		}
	}
	return out
}

// Slot returns a copy of one file slot's current state.
func (e *Environment) Slot(filePath FilePath) (FileSlot, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	slot, ok := e.slots[filePath]
	if !ok {
		return FileSlot{}, false
	}
	return *slot, true
}

// FilePaths returns the seeded file paths in seed order.
func (e *Environment) FilePaths() []FilePath {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]FilePath(nil), e.order...)
}
