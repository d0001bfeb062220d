package validator

import "strings"

// Quality factor weights, per SPEC_FULL.md §4.2: validation carries the
// largest share since it is the only factor grounded in an actual
// external check; the remaining three are static/structural proxies for
// substance available even when no validator is wired in.
const (
	weightValidation   = 0.40
	weightSubstance    = 0.25
	weightCompatibility = 0.20
	weightCompleteness = 0.15
)

// ImportStatus describes one declared import's resolution against the
// hive's current best solutions, as queried by the caller (engine/tools)
// before calling ComputeQuality.
type ImportStatus struct {
	// HasSolution is false when the imported-from file has no best
	// solution deposited yet.
	HasSolution bool
	// NameExported is false when the imported-from file has a solution but
	// its exports do not include the declared name. Ignored when
	// HasSolution is false.
	NameExported bool
}

// QualityInput is everything the quality formula needs to score one
// submission.
type QualityInput struct {
	ValidationSuccess bool
	Code              string
	Exports           []string
	Imports           []ImportStatus
}

// CompatibilityScore implements spec.md's per-import compatibility
// algorithm: start at 1.0; for each declared import, subtract 0.3 if its
// source file has no solution at all, else 0.2 if the solution exists but
// doesn't export the declared name; clamp to [0, 1]. Exported so callers can
// surface the raw score (e.g. submit_solution's compatibility_score field)
// alongside the weighted quality total.
func CompatibilityScore(imports []ImportStatus) float64 {
	score := 1.0
	for _, imp := range imports {
		switch {
		case !imp.HasSolution:
			score -= 0.3
		case !imp.NameExported:
			score -= 0.2
		}
	}
	switch {
	case score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}

// ComputeQuality implements the four-factor quality formula: validation
// (0..0.40), substance (0..0.25), compatibility (0..0.20), completeness
// (0..0.15), summing to at most 1.0.
func ComputeQuality(in QualityInput) float64 {
	lines := lineCount(in.Code)
	length := len(in.Code)

	validation := 0.0
	if in.ValidationSuccess {
		validation = weightValidation
	}

	substance := 0.0
	if lines > 5 {
		substance += 0.05
	}
	if lines > 15 {
		substance += 0.05
	}
	if lines > 30 {
		substance += 0.05
	}
	if len(in.Exports) > 0 {
		substance += 0.05
	}
	if length > 100 {
		substance += 0.05
	}

	compatibility := weightCompatibility * CompatibilityScore(in.Imports)

	completeness := 0.0
	if lines > 10 && length > 200 {
		completeness += 0.08
	}
	if len(in.Exports) > 0 {
		completeness += 0.07
	}

	total := validation + substance + compatibility + completeness
	if total > 1.0 {
		total = 1.0
	}
	return total
}

func lineCount(code string) int {
	if code == "" {
		return 0
	}
	return strings.Count(code, "\n") + 1
}
