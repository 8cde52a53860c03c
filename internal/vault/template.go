package vault

import (
	"fmt"
	"strings"

	"github.com/starford/mannaz/internal/models"
)

const conceptSections = `## Sources

## Core Concepts

## Understanding

### Solid

### Shaky

### Not Yet Engaged

## My Synthesis

## Session Log
`

const projectSections = `## Goal

## Decisions

## Architecture

## Open Questions

## Tensions

## Session Log
`

const profileTemplate = `# Learner Profile

*This file is updated by the model as it learns about you.*

## Background

(unknown — will be filled in as we talk)

## Learning Preferences

(unknown)

## Metacognitive Notes

(unknown)
`

// renderTemplate builds a fresh topic document of the given type.
func renderTemplate(slug string, typ models.TopicType, created, lastSession string) string {
	sections := conceptSections
	if typ == models.TypeProject {
		sections = projectSections
	}
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "topic: %s\n", slug)
	fmt.Fprintf(&b, "type: %s\n", typ)
	fmt.Fprintf(&b, "created: %s\n", created)
	fmt.Fprintf(&b, "last_session: %s\n", lastSession)
	b.WriteString("---\n")
	b.WriteString(sections)
	return b.String()
}
