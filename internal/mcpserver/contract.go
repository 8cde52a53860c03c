package mcpserver

// NoteFormatContract describes the canonical topic note format that
// LLM consumers should follow when reading or updating study notes.
const NoteFormatContract = `# Mannaz Note Format Contract

Every topic note in the vault MUST follow this structure.

## Structure

` + "```" + `markdown
---
topic: beam-search                  # slug; slashes nest subtopics (parent/child)
type: concept                       # concept | project
created: 2025-01-15                 # ISO date, set on creation, never changed
last_session: 2025-01-20            # ISO date, refreshed on every write
---

## Sources
- Sutskever et al. 2014, "Sequence to Sequence Learning"

## Core Concepts
- [[Beam Width]] → [[Pruning]], [[Search Space]]

## Understanding

### Solid
- [[Pruning]] — can explain the width/quality trade-off

### Shaky
- [[Length Normalization]]

### Not Yet Engaged

## My Synthesis

### Beam Width
The learner's own words, captured verbatim.

## Session Log

### 2025-01-20
Worked through the decoder loop.
` + "```" + `

## Rules

1. **YAML front matter is mandatory.** The ` + "`---`" + ` fences are the first
   thing in the file.
2. **Section headings are addresses.** A path like ` + "`Understanding/Shaky`" + `
   names the ` + "`### Shaky`" + ` heading under ` + "`## Understanding`" + `; heading level
   is path depth + 1. Do not rename the template headings.
3. **Concept entries** use wikilinks: ` + "`- [[Concept]] → [[Related]], [[Other]]`" + `.
   The arrow and link list are optional.
4. **Understanding is exclusive.** A concept lives under exactly one of
   Solid, Shaky, Not Yet Engaged at a time; moving it removes it from the
   other levels.
5. **My Synthesis holds one entry per concept** (a ` + "`### <Concept>`" + ` block).
   Re-recording a concept replaces its entry; the previous text comes back
   in the tool result so it can be reconciled.
6. **Project notes** (` + "`type: project`" + `) use Goal, Decisions, Architecture,
   Open Questions, Tensions, Session Log instead. Decisions are dated
   blocks: ` + "`### 2025-01-20 — storage`" + ` followed by the decision line and an
   optional ` + "`**Why:** rationale`" + ` line.
7. **Dates** are ISO (YYYY-MM-DD). **Encoding** is UTF-8.
8. **Do not edit Tensions by hand** — use add_tension / resolve_tension so
   conflict bookkeeping stays consistent.
`
