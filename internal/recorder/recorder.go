// Package recorder exposes the vault's record operations the way a
// conversational shell consumes them: every operation validates its
// arguments before any file I/O, mutates the vault, and returns a short
// human-readable confirmation string that is fed back to a language model
// as tool-result text. Per-session statistics accumulate for
// end-of-session reporting.
package recorder

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/mannaz/internal/apperr"
	"github.com/starford/mannaz/internal/models"
	"github.com/starford/mannaz/internal/vault"
)

// slugRe accepts kebab/snake-case topic slugs with optional slash-nested
// subtopic segments of unlimited depth.
var slugRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*(?:/[A-Za-z0-9][A-Za-z0-9_-]*)*$`)

// Recorder binds record operations to one active session topic.
type Recorder struct {
	vault *vault.Vault
	topic string
	typ   models.TopicType
	stats models.SessionStats
}

// New creates a Recorder for a session on the given topic.
func New(v *vault.Vault, topic string, typ models.TopicType) *Recorder {
	if !typ.Valid() {
		typ = models.TypeConcept
	}
	return &Recorder{vault: v, topic: topic, typ: typ, stats: models.SessionStats{Topic: topic}}
}

// Stats returns the counters accumulated so far in this session.
func (r *Recorder) Stats() models.SessionStats { return r.stats }

// Topic returns the session's bound topic slug.
func (r *Recorder) Topic() string { return r.topic }

// normalizeTopic corrects or fills in the topic argument of a bound
// session: a missing topic gets the session topic, and a topic outside
// the session's subtree is rewritten to it. The returned notice, when
// non-empty, is prefixed to the confirmation string.
func (r *Recorder) normalizeTopic(topic string) (string, string) {
	if r.topic == "" {
		return topic, ""
	}
	if topic == "" {
		return r.topic, fmt.Sprintf("[auto-added topic='%s']", r.topic)
	}
	if topic == r.topic || strings.HasPrefix(topic, r.topic+"/") {
		return topic, ""
	}
	return r.topic, fmt.Sprintf("[auto-corrected topic '%s' → '%s']", topic, r.topic)
}

func withNotice(notice, result string) string {
	if notice == "" {
		return result
	}
	return notice + "\n" + result
}

var slugRules = []validation.Rule{
	validation.Required,
	validation.Match(slugRe).Error("must be a slug like 'beam-search' or 'parent/child'"),
}

// invalid wraps a validation failure so callers can distinguish bad
// arguments from I/O errors. Nothing has touched the vault at this point.
func invalid(err error) error {
	return fmt.Errorf("%w: %v", apperr.ErrInvalidArgument, err)
}

// ReadNote returns the full note text for a topic, or the sentinel
// "does not exist" message.
func (r *Recorder) ReadNote(topic string) (string, error) {
	return r.vault.ReadNote(topic), nil
}

// ListTopics lists every topic slug, one per line.
func (r *Recorder) ListTopics() (string, error) {
	topics, err := r.vault.ListTopics()
	if err != nil {
		return "", err
	}
	if len(topics) == 0 {
		return "No topics yet.", nil
	}
	return strings.Join(topics, "\n"), nil
}

// UpdateSection replaces a section's content wholesale.
func (r *Recorder) UpdateSection(topic, sectionPath, content string) (string, error) {
	topic, notice := r.normalizeTopic(topic)
	if err := validation.Validate(topic, slugRules...); err != nil {
		return "", invalid(fmt.Errorf("topic: %v", err))
	}
	if err := validation.Validate(sectionPath, validation.Required); err != nil {
		return "", invalid(fmt.Errorf("section: %v", err))
	}
	if _, err := r.vault.EnsureTopic(topic, r.typ); err != nil {
		return "", err
	}
	if err := r.vault.SetSection(topic, sectionPath, content); err != nil {
		return "", err
	}
	return withNotice(notice, fmt.Sprintf("Section '%s' updated in '%s'.", sectionPath, topic)), nil
}

// AddConcept records a concept wikilink in Core Concepts.
func (r *Recorder) AddConcept(topic, concept string, links []string) (string, error) {
	topic, notice := r.normalizeTopic(topic)
	if err := validation.Validate(topic, slugRules...); err != nil {
		return "", invalid(fmt.Errorf("topic: %v", err))
	}
	if err := validation.Validate(concept, validation.Required); err != nil {
		return "", invalid(fmt.Errorf("concept: %v", err))
	}
	if err := r.vault.AddConcept(topic, concept, links); err != nil {
		return "", err
	}
	r.stats.ConceptsAdded++
	return withNotice(notice, fmt.Sprintf("Concept '[[%s]]' added to '%s'.", concept, topic)), nil
}

// AddSource records a source reference in Sources.
func (r *Recorder) AddSource(topic, source string) (string, error) {
	topic, notice := r.normalizeTopic(topic)
	if err := validation.Validate(topic, slugRules...); err != nil {
		return "", invalid(fmt.Errorf("topic: %v", err))
	}
	if err := validation.Validate(source, validation.Required); err != nil {
		return "", invalid(fmt.Errorf("source: %v", err))
	}
	if err := r.vault.AddSource(topic, source); err != nil {
		return "", err
	}
	r.stats.SourcesAdded++
	return withNotice(notice, fmt.Sprintf("Source added to '%s'.", topic)), nil
}

// RemoveSource deletes a source by case-insensitive substring match.
func (r *Recorder) RemoveSource(topic, source string) (string, error) {
	topic, notice := r.normalizeTopic(topic)
	removed, err := r.vault.RemoveSource(topic, source)
	if err != nil {
		return "", err
	}
	if removed {
		return withNotice(notice, fmt.Sprintf("Source '%s' removed from '%s'.", source, topic)), nil
	}
	return withNotice(notice, fmt.Sprintf("Source '%s' not found in '%s'.", source, topic)), nil
}

// UpdateUnderstanding moves a concept to an understanding level.
func (r *Recorder) UpdateUnderstanding(topic string, level models.UnderstandingLevel, concept, notes string) (string, error) {
	topic, notice := r.normalizeTopic(topic)
	if err := validation.Validate(topic, slugRules...); err != nil {
		return "", invalid(fmt.Errorf("topic: %v", err))
	}
	if !level.Valid() {
		return "", invalid(fmt.Errorf("level must be one of Solid, Shaky, Not Yet Engaged; got %q", level))
	}
	if err := validation.Validate(concept, validation.Required); err != nil {
		return "", invalid(fmt.Errorf("concept: %v", err))
	}
	if err := r.vault.UpdateUnderstanding(topic, level, concept, notes); err != nil {
		return "", err
	}
	r.stats.Understanding = append(r.stats.Understanding, models.UnderstandingMove{Concept: concept, Level: level})
	return withNotice(notice, fmt.Sprintf("'%s' moved to %s in '%s'.", concept, level, topic)), nil
}

// LinkToTopic records a cross-topic link.
func (r *Recorder) LinkToTopic(concept, fromTopic, toTopic string) (string, error) {
	if err := validation.Validate(fromTopic, slugRules...); err != nil {
		return "", invalid(fmt.Errorf("from_topic: %v", err))
	}
	if err := validation.Validate(toTopic, slugRules...); err != nil {
		return "", invalid(fmt.Errorf("to_topic: %v", err))
	}
	if err := r.vault.LinkToTopic(concept, fromTopic, toTopic); err != nil {
		return "", err
	}
	return fmt.Sprintf("Cross-topic link: [[%s]] in %s → %s.", concept, fromTopic, toTopic), nil
}

// AppendSessionLog appends a dated session entry.
func (r *Recorder) AppendSessionLog(topic, entry string) (string, error) {
	topic, notice := r.normalizeTopic(topic)
	if err := validation.Validate(topic, slugRules...); err != nil {
		return "", invalid(fmt.Errorf("topic: %v", err))
	}
	if err := r.vault.AppendSessionLog(topic, entry); err != nil {
		return "", err
	}
	return withNotice(notice, fmt.Sprintf("Session log updated for '%s'.", topic)), nil
}

// AppendSynthesis captures the learner's explanation of a concept. A
// repeat call for the same concept is a revision: the existing entry is
// replaced and its previous text returned for reconciliation.
func (r *Recorder) AppendSynthesis(topic, concept, learnerText, note string) (string, error) {
	topic, notice := r.normalizeTopic(topic)
	if err := validation.Validate(topic, slugRules...); err != nil {
		return "", invalid(fmt.Errorf("topic: %v", err))
	}
	if err := validation.Validate(concept, validation.Required); err != nil {
		return "", invalid(fmt.Errorf("concept: %v", err))
	}
	if err := validation.Validate(learnerText, validation.Required); err != nil {
		return "", invalid(fmt.Errorf("learner_text: %v", err))
	}
	previous, err := r.vault.AppendSynthesis(topic, concept, learnerText, note)
	if err != nil {
		return "", err
	}
	current := r.vault.GetSection(topic, "My Synthesis")
	if previous != "" {
		return withNotice(notice, fmt.Sprintf(
			"Synthesis entry for '%s' revised. Previous entry was:\n\n%s\n\nCurrent My Synthesis:\n%s",
			concept, previous, current)), nil
	}
	r.stats.SynthesisEntries++
	return withNotice(notice, fmt.Sprintf(
		"Synthesis entry added for '%s'.\n\nCurrent My Synthesis:\n%s", concept, current)), nil
}

// Profile returns the learner profile text, or "" when none exists.
func (r *Recorder) Profile() string {
	return r.vault.ReadProfile()
}

// Framework returns the optional framework text that frames study
// sessions, or "" when the vault has none.
func (r *Recorder) Framework() string {
	return r.vault.ReadFramework()
}

// UpdateProfile overwrites the learner profile.
func (r *Recorder) UpdateProfile(content string) (string, error) {
	if err := validation.Validate(content, validation.Required); err != nil {
		return "", invalid(fmt.Errorf("content: %v", err))
	}
	if err := r.vault.UpdateProfile(content); err != nil {
		return "", err
	}
	return "Learner profile updated.", nil
}
