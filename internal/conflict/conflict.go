// Package conflict classifies a newly recorded decision against the prior
// decision history of a project document.
//
// The rule is deliberately mechanical: any prior decision on a matching
// component is a conflict, whether or not the two decisions are actually
// compatible. Cross-component compatibility needs semantic judgment and is
// left to the caller; this detector is a cheap, complete first filter.
package conflict

import (
	"strings"

	"github.com/starford/mannaz/internal/models"
)

// Outcome of classifying one new decision.
type Outcome int

const (
	// NoPriors means the decisions log was empty: record unconditionally.
	NoPriors Outcome = iota
	// SameComponent means at least one prior decision matches the new
	// decision's component. The caller must log a tension per match and
	// surface the conflict before replying.
	SameComponent
	// CrossComponent means priors exist but none share a component. The
	// full history is returned for external judgment.
	CrossComponent
)

// Report is the result of Detect.
type Report struct {
	Outcome Outcome
	// Matches holds the prior decisions whose component matches the new
	// one, in document order. Empty unless Outcome == SameComponent.
	Matches []models.Decision
}

// ComponentsMatch reports whether two component names refer to the same
// component: equal, or one a substring of the other, case-insensitively.
// "database" matches "database-layer" on purpose; false positives go to
// the human-in-the-loop layer.
func ComponentsMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

// ParseDecisions parses the rendered Decisions section back into its
// (component, decision) pairs. Each decision block is a heading line of the
// form "### <date> — <component>" followed by the decision text line and an
// optional "**Why:** ..." rationale line.
func ParseDecisions(text string) []models.Decision {
	var out []models.Decision
	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "### ") || !strings.Contains(line, " — ") {
			continue
		}
		header := strings.TrimPrefix(line, "### ")
		date, component, _ := strings.Cut(header, " — ")

		// Next non-empty line is the decision text, unless it is another
		// heading or the rationale marker.
		j := i + 1
		for j < len(lines) && strings.TrimSpace(lines[j]) == "" {
			j++
		}
		decision := ""
		if j < len(lines) {
			next := strings.TrimSpace(lines[j])
			if !strings.HasPrefix(next, "#") && !strings.HasPrefix(next, "**Why") {
				decision = next
			}
		}

		// The rationale, when present, sits on a "**Why:** ..." line
		// somewhere before the next block.
		rationale := ""
		for k := j; k < len(lines); k++ {
			rest := strings.TrimSpace(lines[k])
			if strings.HasPrefix(rest, "### ") {
				break
			}
			if strings.HasPrefix(rest, "**Why:**") {
				rationale = strings.TrimSpace(strings.TrimPrefix(rest, "**Why:**"))
				break
			}
		}

		out = append(out, models.Decision{
			Component: strings.TrimSpace(component),
			Decision:  decision,
			Date:      strings.TrimSpace(date),
			Rationale: rationale,
		})
	}
	return out
}

// Detect classifies a new decision for component against the rendered prior
// Decisions section text.
func Detect(priorText, component string) Report {
	if strings.TrimSpace(priorText) == "" {
		return Report{Outcome: NoPriors}
	}
	var matches []models.Decision
	for _, d := range ParseDecisions(priorText) {
		if d.Decision != "" && ComponentsMatch(d.Component, component) {
			matches = append(matches, d)
		}
	}
	if len(matches) > 0 {
		return Report{Outcome: SameComponent, Matches: matches}
	}
	return Report{Outcome: CrossComponent}
}
