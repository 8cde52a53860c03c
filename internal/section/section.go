// Package section implements heading-addressed access to document bodies.
//
// A section is the run of lines between a heading at depth d and the next
// heading at depth <= d. Sections are addressed by slash paths such as
// "Understanding/Solid"; the heading level of a path is its depth plus one,
// so top-level sections are "##" headings.
package section

import (
	"strings"
)

// Path is a parsed section address: an ordered list of heading names.
type Path struct {
	segments []string
}

// ParsePath splits a slash-delimited section address into a Path.
// Segment whitespace is trimmed; empty segments are dropped.
func ParsePath(raw string) Path {
	parts := strings.Split(raw, "/")
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			segs = append(segs, p)
		}
	}
	return Path{segments: segs}
}

// Depth returns the nesting depth of the path (number of segments).
func (p Path) Depth() int { return len(p.segments) }

// IsZero reports whether the path has no segments.
func (p Path) IsZero() bool { return len(p.segments) == 0 }

// Leaf returns the final segment name.
func (p Path) Leaf() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// Parent returns the path without its final segment.
func (p Path) Parent() Path {
	if len(p.segments) <= 1 {
		return Path{}
	}
	return Path{segments: p.segments[:len(p.segments)-1]}
}

// Heading renders the markdown heading line for the path's leaf:
// depth 1 → "## Leaf", depth 2 → "### Leaf", and so on.
func (p Path) Heading() string {
	return strings.Repeat("#", p.Depth()+1) + " " + p.Leaf()
}

// String renders the path back to slash form.
func (p Path) String() string { return strings.Join(p.segments, "/") }

// Child returns the path extended by one segment.
func (p Path) Child(name string) Path {
	segs := make([]string, 0, len(p.segments)+1)
	segs = append(segs, p.segments...)
	return Path{segments: append(segs, strings.TrimSpace(name))}
}

// isStopHeading reports whether line is a heading at depth maxLevel or
// shallower, which terminates a section of that level.
func isStopHeading(line string, maxLevel int) bool {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	return n >= 1 && n <= maxLevel && n < len(line) && line[n] == ' '
}

// bounds resolves the section at path within lines: the index of its
// heading line and the half-open [start, end) range of its content. The
// search for each segment is confined to its parent's extent, so a child
// heading under a different parent is never matched; a missing ancestor
// fails closed.
func bounds(lines []string, path Path) (headIdx, start, end int, ok bool) {
	lo, hi := 0, len(lines)
	if path.Depth() > 1 {
		_, lo, hi, ok = bounds(lines, path.Parent())
		if !ok {
			return 0, 0, 0, false
		}
	}

	heading := path.Heading()
	level := path.Depth() + 1
	for i := lo; i < hi; i++ {
		if strings.TrimRight(lines[i], "\n") != heading {
			continue
		}
		start, end = i+1, hi
		for j := start; j < hi; j++ {
			if isStopHeading(lines[j], level) {
				end = j
				break
			}
		}
		return i, start, end, true
	}
	return 0, 0, 0, false
}

// Get returns the trimmed text of the section addressed by path within
// body. Nested lookups are scoped to the parent section's extent: a child
// heading under a different parent is never matched, and a missing
// ancestor fails closed with an empty result.
func Get(body string, path Path) string {
	if path.IsZero() {
		return ""
	}
	lines := strings.SplitAfter(body, "\n")
	_, start, end, ok := bounds(lines, path)
	if !ok {
		return ""
	}
	return strings.TrimSpace(strings.Join(lines[start:end], ""))
}

// Replace returns body with the section at path rewritten to newText.
// The target is resolved with the same parent scoping as Get, so a
// same-named heading under a different parent is never touched. An
// existing heading keeps its position: the heading line plus the old
// content are swapped for the heading, the new text, and one trailing
// blank line, leaving everything before and after byte-identical. A
// missing heading is inserted at the end of its parent's extent when the
// parent exists, and appended to the end of the body otherwise.
func Replace(body string, path Path, newText string) string {
	lines := strings.SplitAfter(body, "\n")
	headIdx, _, end, ok := bounds(lines, path)

	if !ok {
		at := len(lines)
		if path.Depth() > 1 {
			if _, _, pend, pok := bounds(lines, path.Parent()); pok {
				at = pend
			}
		}
		return insertBlock(lines, at, path, newText)
	}

	var block []string
	block = append(block, path.Heading()+"\n")
	if strings.TrimSpace(newText) != "" {
		block = append(block, strings.TrimRight(newText, " \t\n")+"\n")
	}
	block = append(block, "\n")

	var out strings.Builder
	for _, l := range lines[:headIdx] {
		out.WriteString(l)
	}
	for _, l := range block {
		out.WriteString(l)
	}
	for _, l := range lines[end:] {
		out.WriteString(l)
	}
	return out.String()
}

// insertBlock places a fresh heading + text block at line index at,
// separated from preceding content by one blank line.
func insertBlock(lines []string, at int, path Path, newText string) string {
	out := strings.TrimRight(strings.Join(lines[:at], ""), " \t\n")
	if out != "" {
		out += "\n\n"
	}
	out += path.Heading() + "\n"
	if strings.TrimSpace(newText) != "" {
		out += strings.TrimRight(newText, " \t\n") + "\n"
	}
	rest := strings.Join(lines[at:], "")
	if rest != "" {
		out += "\n" + rest
	}
	return out
}

// Lines splits section text into its non-blank lines.
func Lines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}
