package vault

import (
	"fmt"
	"strings"

	"github.com/starford/mannaz/internal/models"
	"github.com/starford/mannaz/internal/section"
)

// Decisions returns the rendered Decisions section of a project topic.
func (v *Vault) Decisions(slug string) string {
	return v.GetSection(slug, "Decisions")
}

// Tensions returns the rendered Tensions section of a project topic.
func (v *Vault) Tensions(slug string) string {
	return v.GetSection(slug, "Tensions")
}

// RecordDecision appends a decision block to the Decisions append-log.
// Decisions are never overwritten: history is preserved for conflict
// comparison. Conflict classification itself is the recorder's job and
// runs against the section text as it stood before this append.
func (v *Vault) RecordDecision(slug, component, decision, rationale string) error {
	if _, err := v.EnsureTopic(slug, models.TypeProject); err != nil {
		return err
	}
	return v.mutate(slug, func(body string) string {
		path := section.ParsePath("Decisions")
		existing := strings.TrimRight(section.Get(body, path), " \t\n")
		block := fmt.Sprintf("### %s — %s\n%s", v.today(), component, decision)
		if rationale != "" {
			block += "\n**Why:** " + rationale
		}
		text := block
		if existing != "" {
			text = existing + "\n\n" + block
		}
		return section.Replace(body, path, text)
	})
}

// UpdateArchitecture upserts the description of one component inside the
// Architecture section. Unlike decisions, last write wins: an existing
// component block is fully replaced.
func (v *Vault) UpdateArchitecture(slug, component, description string) error {
	if _, err := v.EnsureTopic(slug, models.TypeProject); err != nil {
		return err
	}
	return v.mutate(slug, func(body string) string {
		parent := section.ParsePath("Architecture")
		child := parent.Child(component)
		text := strings.TrimRight(description, " \t\n")

		if section.Get(body, child) != "" || sectionHasHeading(section.Get(body, parent), child.Heading()) {
			return section.Replace(body, child, text)
		}
		existing := strings.TrimRight(section.Get(body, parent), " \t\n")
		block := child.Heading() + "\n" + text
		if existing != "" {
			block = existing + "\n\n" + block
		}
		return section.Replace(body, parent, block)
	})
}

// sectionHasHeading reports whether the rendered section text already
// contains the heading line (covers components recorded with empty
// bodies, which read back as "").
func sectionHasHeading(text, heading string) bool {
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) == heading {
			return true
		}
	}
	return false
}

// AddOpenQuestion appends an unresolved question bullet.
func (v *Vault) AddOpenQuestion(slug, question string) error {
	return v.appendBullet(slug, "Open Questions", question)
}

// ResolveOpenQuestion removes every Open Questions entry containing the
// query as a case-insensitive substring.
func (v *Vault) ResolveOpenQuestion(slug, question string) (bool, error) {
	return v.removeBullet(slug, "Open Questions", question)
}

// AddTension appends a logged conflict bullet.
func (v *Vault) AddTension(slug, tension string) error {
	return v.appendBullet(slug, "Tensions", tension)
}

// ResolveTension removes every Tensions entry containing the query as a
// case-insensitive substring.
func (v *Vault) ResolveTension(slug, tension string) (bool, error) {
	return v.removeBullet(slug, "Tensions", tension)
}

func (v *Vault) appendBullet(slug, sectionName, text string) error {
	if _, err := v.EnsureTopic(slug, models.TypeProject); err != nil {
		return err
	}
	return v.mutate(slug, func(body string) string {
		path := section.ParsePath(sectionName)
		lines := section.Lines(section.Get(body, path))
		lines = append(lines, "- "+text)
		return section.Replace(body, path, strings.Join(lines, "\n"))
	})
}

func (v *Vault) removeBullet(slug, sectionName, query string) (bool, error) {
	if !v.Exists(slug) {
		return false, nil
	}
	removed := false
	err := v.mutate(slug, func(body string) string {
		path := section.ParsePath(sectionName)
		lines := section.Lines(section.Get(body, path))
		kept := lines[:0]
		for _, l := range lines {
			if strings.Contains(strings.ToLower(l), strings.ToLower(query)) {
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
