package vault

import (
	"fmt"
	"strings"

	"github.com/starford/mannaz/internal/models"
	"github.com/starford/mannaz/internal/section"
)

// renderConceptEntry builds the bullet line for a concept record. Links to
// the concept itself or to the owning topic slug are dropped: a concept
// never references its own container.
func renderConceptEntry(slug, concept string, links []string) string {
	entry := fmt.Sprintf("- [[%s]]", concept)
	var kept []string
	for _, l := range links {
		l = strings.TrimSpace(l)
		if l == "" || l == concept || l == slug {
			continue
		}
		kept = append(kept, fmt.Sprintf("[[%s]]", l))
	}
	if len(kept) > 0 {
		entry += " → " + strings.Join(kept, ", ")
	}
	return entry
}

// AddConcept appends a concept record to Core Concepts. Idempotent by
// exact rendered line: re-adding an identical entry is a no-op that still
// leaves the document valid.
func (v *Vault) AddConcept(slug, concept string, links []string) error {
	if _, err := v.EnsureTopic(slug, models.TypeConcept); err != nil {
		return err
	}
	entry := renderConceptEntry(slug, concept, links)
	return v.mutate(slug, func(body string) string {
		path := section.ParsePath("Core Concepts")
		lines := section.Lines(section.Get(body, path))
		for _, l := range lines {
			if l == entry {
				return body
			}
		}
		lines = append(lines, entry)
		return section.Replace(body, path, strings.Join(lines, "\n"))
	})
}

// LinkToTopic records a cross-topic link: concept in fromSlug points at
// the toSlug document.
func (v *Vault) LinkToTopic(concept, fromSlug, toSlug string) error {
	if _, err := v.EnsureTopic(fromSlug, models.TypeConcept); err != nil {
		return err
	}
	entry := fmt.Sprintf("- [[%s]] → [[%s]]", concept, toSlug)
	return v.mutate(fromSlug, func(body string) string {
		path := section.ParsePath("Core Concepts")
		lines := section.Lines(section.Get(body, path))
		for _, l := range lines {
			if l == entry {
				return body
			}
		}
		lines = append(lines, entry)
		return section.Replace(body, path, strings.Join(lines, "\n"))
	})
}

// AddSource appends a source bullet to Sources, deduplicated by exact
// rendered line.
func (v *Vault) AddSource(slug, source string) error {
	if _, err := v.EnsureTopic(slug, models.TypeConcept); err != nil {
		return err
	}
	entry := "- " + source
	return v.mutate(slug, func(body string) string {
		path := section.ParsePath("Sources")
		lines := section.Lines(section.Get(body, path))
		for _, l := range lines {
			if l == entry {
				return body
			}
		}
		lines = append(lines, entry)
		return section.Replace(body, path, strings.Join(lines, "\n"))
	})
}

// RemoveSource deletes every Sources entry containing the query as a
// case-insensitive substring. Reports whether anything was removed; a
// missing topic removes nothing.
func (v *Vault) RemoveSource(slug, source string) (bool, error) {
	if !v.Exists(slug) {
		return false, nil
	}
	removed := false
	err := v.mutate(slug, func(body string) string {
		path := section.ParsePath("Sources")
		lines := section.Lines(section.Get(body, path))
		kept := lines[:0]
		for _, l := range lines {
			if strings.Contains(strings.ToLower(l), strings.ToLower(source)) {
				removed = true
				continue
			}
			kept = append(kept, l)
		}
		if !removed {
			return body
		}
		return section.Replace(body, path, strings.Join(kept, "\n"))
	})
	return removed, err
}

// UpdateUnderstanding moves a concept to the given level. The concept is
// stripped from every level section by case-insensitive name match, then
// appended to the target, all staged on one in-memory document so an
// interrupted move can never leave the concept in two levels.
func (v *Vault) UpdateUnderstanding(slug string, level models.UnderstandingLevel, concept, notes string) error {
	if !level.Valid() {
		return fmt.Errorf("vault: unknown understanding level %q", level)
	}
	if _, err := v.EnsureTopic(slug, models.TypeConcept); err != nil {
		return err
	}
	return v.mutate(slug, func(body string) string {
		for _, lvl := range models.UnderstandingLevels {
			path := section.ParsePath("Understanding/" + string(lvl))
			lines := section.Lines(section.Get(body, path))
			kept := lines[:0]
			for _, l := range lines {
				if !strings.Contains(strings.ToLower(l), strings.ToLower(concept)) {
					kept = append(kept, l)
				}
			}
			body = section.Replace(body, path, strings.Join(kept, "\n"))
		}

		path := section.ParsePath("Understanding/" + string(level))
		lines := section.Lines(section.Get(body, path))
		entry := fmt.Sprintf("- [[%s]]", concept)
		if notes != "" {
			entry += " — " + notes
		}
		lines = append(lines, entry)
		return section.Replace(body, path, strings.Join(lines, "\n"))
	})
}

// AppendSessionLog appends a dated entry to the Session Log section.
func (v *Vault) AppendSessionLog(slug, entry string) error {
	if _, err := v.EnsureTopic(slug, models.TypeConcept); err != nil {
		return err
	}
	return v.mutate(slug, func(body string) string {
		path := section.ParsePath("Session Log")
		existing := section.Get(body, path)
		block := fmt.Sprintf("### %s\n%s", v.today(), entry)
		text := strings.TrimSpace(strings.TrimRight(existing, " \t\n") + "\n\n" + block)
		return section.Replace(body, path, text)
	})
}

// SynthesisEntry returns the recorded synthesis block for a concept, and
// whether one exists. At most one entry per concept can exist.
func (v *Vault) SynthesisEntry(slug, concept string) (string, bool) {
	text := v.GetSection(slug, "My Synthesis/"+concept)
	return text, text != ""
}

// AppendSynthesis upserts the learner's verbatim explanation of a concept
// under My Synthesis. A second write for the same concept replaces the
// existing block (revision), never duplicates it. The previous text, if
// any, is returned so the caller can reconcile.
func (v *Vault) AppendSynthesis(slug, concept, learnerText, note string) (previous string, err error) {
	if _, err := v.EnsureTopic(slug, models.TypeConcept); err != nil {
		return "", err
	}
	err = v.mutate(slug, func(body string) string {
		parent := section.ParsePath("My Synthesis")
		child := parent.Child(concept)
		previous = section.Get(body, child)

		text := strings.TrimRight(learnerText, " \t\n")
		if note != "" {
			text += "\n\n*Note:* " + note
		}

		if previous != "" {
			// Replace in place; the child heading already sits inside
			// My Synthesis.
			return section.Replace(body, child, text)
		}
		existing := strings.TrimRight(section.Get(body, parent), " \t\n")
		block := child.Heading() + "\n" + text
		if existing != "" {
			block = existing + "\n\n" + block
		}
		return section.Replace(body, parent, block)
	})
	return previous, err
}
