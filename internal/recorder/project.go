package recorder

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/mannaz/internal/conflict"
)

// UpdateGoal sets the project's top-level goal and auto-links any vault
// topics mentioned in it.
func (r *Recorder) UpdateGoal(topic, goal string) (string, error) {
	topic, notice := r.normalizeTopic(topic)
	if err := validation.Validate(topic, slugRules...); err != nil {
		return "", invalid(fmt.Errorf("topic: %v", err))
	}
	if err := validation.Validate(goal, validation.Required); err != nil {
		return "", invalid(fmt.Errorf("goal: %v", err))
	}
	if _, err := r.vault.EnsureTopic(topic, r.typ); err != nil {
		return "", err
	}
	if err := r.vault.SetSection(topic, "Goal", goal); err != nil {
		return "", err
	}
	result := "Project goal updated."
	if info, err := r.autoLink(goal, topic); err != nil {
		return "", err
	} else if info != "" {
		result += "\n\n" + info
	}
	return withNotice(notice, result), nil
}

// RecordDecision appends a decision to the project's decision log and runs
// the conflict detector against the history as it stood before the append.
//
// Same-component priors are automatic, deterministic conflicts: a tension
// is logged per matching prior and the result instructs the caller to
// surface the conflict before replying. Cross-component priors are
// returned verbatim for external judgment — no semantic detection is
// attempted here.
func (r *Recorder) RecordDecision(topic, component, decision, rationale string) (string, error) {
	topic, notice := r.normalizeTopic(topic)
	if err := validation.Validate(topic, slugRules...); err != nil {
		return "", invalid(fmt.Errorf("topic: %v", err))
	}
	if err := validation.Validate(component, validation.Required); err != nil {
		return "", invalid(fmt.Errorf("component: %v", err))
	}
	if err := validation.Validate(decision, validation.Required); err != nil {
		return "", invalid(fmt.Errorf("decision: %v", err))
	}

	existing := r.vault.Decisions(topic)
	if err := r.vault.RecordDecision(topic, component, decision, rationale); err != nil {
		return "", err
	}

	linkInfo, err := r.autoLink(component+" "+decision+" "+rationale, topic)
	if err != nil {
		return "", err
	}

	report := conflict.Detect(existing, component)
	var result string
	switch report.Outcome {
	case conflict.NoPriors:
		result = fmt.Sprintf("Recorded: %s → %s. No prior decisions.", component, decision)

	case conflict.SameComponent:
		var quoted []string
		for _, prior := range report.Matches {
			tension := fmt.Sprintf("%s: '%s' vs '%s'", component, prior.Decision, decision)
			if err := r.vault.AddTension(topic, tension); err != nil {
				return "", err
			}
			quote := fmt.Sprintf("'%s'", prior.Decision)
			if prior.Rationale != "" {
				quote += fmt.Sprintf(" (why: %s)", prior.Rationale)
			}
			quoted = append(quoted, quote)
		}
		result = fmt.Sprintf(
			"Recorded: %s → %s.\n\n"+
				"CONFLICT DETECTED AND LOGGED: '%s' was previously %s. "+
				"Tension has been written to the vault. "+
				"You MUST surface this to the user — quote the old decision and ask if this is a direction change.",
			component, decision, component, strings.Join(quoted, "; "))

	case conflict.CrossComponent:
		result = fmt.Sprintf(
			"Recorded: %s → %s.\n\n"+
				"Prior decisions (check for cross-component conflicts — "+
				"call add_tension if '%s' cannot coexist with any of these):\n%s",
			component, decision, decision, existing)
	}

	if linkInfo != "" {
		result += "\n\n" + linkInfo
	}
	return withNotice(notice, result), nil
}

// UpdateArchitecture upserts one component's description.
func (r *Recorder) UpdateArchitecture(topic, component, description string) (string, error) {
	topic, notice := r.normalizeTopic(topic)
	if err := validation.Validate(topic, slugRules...); err != nil {
		return "", invalid(fmt.Errorf("topic: %v", err))
	}
	if err := validation.Validate(component, validation.Required); err != nil {
		return "", invalid(fmt.Errorf("component: %v", err))
	}
	if err := r.vault.UpdateArchitecture(topic, component, description); err != nil {
		return "", err
	}
	result := fmt.Sprintf("Architecture updated: '%s'.", component)
	if info, err := r.autoLink(component+" "+description, topic); err != nil {
		return "", err
	} else if info != "" {
		result += "\n\n" + info
	}
	return withNotice(notice, result), nil
}

// AddOpenQuestion logs an unresolved question.
func (r *Recorder) AddOpenQuestion(topic, question string) (string, error) {
	topic, notice := r.normalizeTopic(topic)
	if err := validation.Validate(question, validation.Required); err != nil {
		return "", invalid(fmt.Errorf("question: %v", err))
	}
	if err := r.vault.AddOpenQuestion(topic, question); err != nil {
		return "", err
	}
	return withNotice(notice, "Open question logged."), nil
}

// ResolveOpenQuestion removes a question once answered.
func (r *Recorder) ResolveOpenQuestion(topic, question string) (string, error) {
	topic, notice := r.normalizeTopic(topic)
	removed, err := r.vault.ResolveOpenQuestion(topic, question)
	if err != nil {
		return "", err
	}
	if !removed {
		return withNotice(notice, fmt.Sprintf("No open question matching '%s'.", question)), nil
	}
	return withNotice(notice, "Open question resolved."), nil
}

// AddTension logs a conflict between current thinking and a prior decision.
func (r *Recorder) AddTension(topic, tension string) (string, error) {
	topic, notice := r.normalizeTopic(topic)
	if err := validation.Validate(tension, validation.Required); err != nil {
		return "", invalid(fmt.Errorf("tension: %v", err))
	}
	if err := r.vault.AddTension(topic, tension); err != nil {
		return "", err
	}
	return withNotice(notice, "Tension logged."), nil
}

// ResolveTension removes a reconciled tension.
func (r *Recorder) ResolveTension(topic, tension string) (string, error) {
	topic, notice := r.normalizeTopic(topic)
	removed, err := r.vault.ResolveTension(topic, tension)
	if err != nil {
		return "", err
	}
	if !removed {
		return withNotice(notice, fmt.Sprintf("No tension matching '%s'.", tension)), nil
	}
	return withNotice(notice, "Tension resolved."), nil
}

// autoLink scans free text for mentions of existing vault topics. Each
// match records a cross-topic link and returns the target's prior
// Understanding and My Synthesis sections as context for the caller.
func (r *Recorder) autoLink(text, fromTopic string) (string, error) {
	matches, err := r.vault.MatchTopicsInText(text, fromTopic)
	if err != nil {
		return "", err
	}
	var results []string
	for _, slug := range matches {
		concept := titleCase(strings.NewReplacer("-", " ", "_", " ").Replace(slug))
		if err := r.vault.LinkToTopic(concept, fromTopic, slug); err != nil {
			return "", err
		}
		understanding := r.vault.GetSection(slug, "Understanding")
		synthesis := r.vault.GetSection(slug, "My Synthesis")
		var prior []string
		for _, s := range []string{understanding, synthesis} {
			if strings.TrimSpace(s) != "" {
				prior = append(prior, s)
			}
		}
		priorText := strings.Join(prior, "\n\n")
		if priorText == "" {
			priorText = "(no notes yet)"
		}
		results = append(results, fmt.Sprintf(
			"Auto-linked [[%s]] (concept: %s).\nUser's prior notes on this topic:\n%s",
			slug, concept, priorText))
	}
	return strings.Join(results, "\n\n---\n\n"), nil
}

// titleCase capitalizes the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
