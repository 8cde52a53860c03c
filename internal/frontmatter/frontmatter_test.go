package frontmatter

import (
	"strings"
	"testing"
)

const sampleDoc = `---
topic: beam-search
type: concept
created: 2025-01-15
---
# Beam Search

Body text.
`

func TestSplit(t *testing.T) {
	fm, body := Split(sampleDoc)
	if !strings.Contains(fm, "topic: beam-search") {
		t.Errorf("fm = %q", fm)
	}
	if strings.Contains(fm, "---") {
		t.Errorf("delimiters leaked into fm: %q", fm)
	}
	if !strings.HasPrefix(body, "# Beam Search") {
		t.Errorf("body = %q", body)
	}
}

func TestSplitNoFrontMatter(t *testing.T) {
	fm, body := Split("# Just a body\n")
	if fm != "" {
		t.Errorf("fm = %q, want empty", fm)
	}
	if body != "# Just a body\n" {
		t.Errorf("body = %q", body)
	}
}

func TestSplitUnterminated(t *testing.T) {
	content := "---\ntopic: x\nno closing fence\n"
	fm, body := Split(content)
	if fm != "" {
		t.Errorf("fm = %q, want empty", fm)
	}
	if body != content {
		t.Errorf("body = %q, want original content", body)
	}
}

func TestJoinRoundTrip(t *testing.T) {
	fm, body := Split(sampleDoc)
	if got := Join(fm, body); got != sampleDoc {
		t.Errorf("round trip mismatch:\n%q\nvs\n%q", got, sampleDoc)
	}
}

func TestJoinEmptyFrontMatter(t *testing.T) {
	if got := Join("", "body"); got != "body" {
		t.Errorf("got %q", got)
	}
}

func TestParse(t *testing.T) {
	m := Parse(sampleDoc)
	if m["topic"] != "beam-search" {
		t.Errorf("topic = %q", m["topic"])
	}
	if m["created"] != "2025-01-15" {
		t.Errorf("created = %q", m["created"])
	}
}

func TestParseMalformedYieldsEmptyMap(t *testing.T) {
	doc := "---\nkey: [unclosed\n---\nbody survives\n"
	m := Parse(doc)
	if len(m) != 0 {
		t.Errorf("map = %v, want empty", m)
	}
	_, body := Split(doc)
	if body != "body survives\n" {
		t.Errorf("body = %q", body)
	}
}

func TestSetUpdatesExistingKey(t *testing.T) {
	out := Set(sampleDoc, "last_session", "2025-02-01")
	m := Parse(out)
	if m["last_session"] != "2025-02-01" {
		t.Errorf("last_session = %q", m["last_session"])
	}
	if m["topic"] != "beam-search" {
		t.Errorf("other keys lost: topic = %q", m["topic"])
	}
	_, body := Split(out)
	if !strings.HasPrefix(body, "# Beam Search") {
		t.Errorf("body changed: %q", body)
	}
}

func TestSetOnDocumentWithoutFrontMatter(t *testing.T) {
	out := Set("# Body only\n", "last_session", "2025-02-01")
	m := Parse(out)
	if m["last_session"] != "2025-02-01" {
		t.Errorf("last_session = %q", m["last_session"])
	}
	_, body := Split(out)
	if body != "# Body only\n" {
		t.Errorf("body = %q", body)
	}
}

func TestSetDeterministicKeyOrder(t *testing.T) {
	a := Set(sampleDoc, "last_session", "2025-02-01")
	b := Set(sampleDoc, "last_session", "2025-02-01")
	if a != b {
		t.Error("Set is not deterministic")
	}
	fm, _ := Split(a)
	lines := strings.Split(fm, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i-1] > lines[i] {
			t.Errorf("keys not sorted: %q before %q", lines[i-1], lines[i])
		}
	}
}

func TestSetKeepsDateScalarsVerbatim(t *testing.T) {
	// Bare ISO dates are YAML timestamps; they must survive a rewrite as
	// the exact text they were written with.
	out := Set(sampleDoc, "last_session", "2025-02-01")
	if !strings.Contains(out, "created: 2025-01-15\n") {
		t.Errorf("created mangled:\n%s", out)
	}
	m := Parse(out)
	if m["created"] != "2025-01-15" {
		t.Errorf("created = %q", m["created"])
	}
	if m["last_session"] != "2025-02-01" {
		t.Errorf("last_session = %q", m["last_session"])
	}
}

func TestSetQuotesAwkwardValues(t *testing.T) {
	out := Set("body", "note", "contains: colon")
	m := Parse(out)
	if m["note"] != "contains: colon" {
		t.Errorf("note = %q, did not round-trip", m["note"])
	}
}
