package vault

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/starford/mannaz/internal/apperr"
	"github.com/starford/mannaz/internal/models"
	"github.com/starford/mannaz/internal/storage"
)

// testVault builds a vault over a temp directory with a settable clock.
func testVault(t *testing.T) (*Vault, func(day string)) {
	t.Helper()
	dir := t.TempDir()
	if err := EnsureStructure(dir); err != nil {
		t.Fatal(err)
	}
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}

	current := mustDay(t, "2025-02-01")
	v := NewWithClock(store, func() time.Time { return current })
	return v, func(day string) { current = mustDay(t, day) }
}

func mustDay(t *testing.T, day string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02", day)
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

func TestEnsureTopicCreatesTemplate(t *testing.T) {
	v, _ := testVault(t)
	path, err := v.EnsureTopic("beam-search", models.TypeConcept)
	if err != nil {
		t.Fatalf("EnsureTopic: %v", err)
	}
	if path != "topics/beam-search.md" {
		t.Errorf("path = %q", path)
	}

	meta, err := v.Meta("beam-search")
	if err != nil {
		t.Fatalf("Meta: %v", err)
	}
	if meta.Type != models.TypeConcept {
		t.Errorf("type = %q", meta.Type)
	}
	if meta.Created != "2025-02-01" {
		t.Errorf("created = %q", meta.Created)
	}

	doc := v.ReadNote("beam-search")
	for _, h := range []string{"## Sources", "## Core Concepts", "### Solid", "### Shaky", "### Not Yet Engaged", "## My Synthesis", "## Session Log"} {
		if !strings.Contains(doc, h) {
			t.Errorf("template missing %q", h)
		}
	}
}

func TestEnsureTopicExistingUntouched(t *testing.T) {
	v, _ := testVault(t)
	if _, err := v.EnsureTopic("x", models.TypeConcept); err != nil {
		t.Fatal(err)
	}
	if err := v.SetSection("x", "Sources", "- keep me"); err != nil {
		t.Fatal(err)
	}
	// A second ensure, even with a different type, changes nothing.
	if _, err := v.EnsureTopic("x", models.TypeProject); err != nil {
		t.Fatal(err)
	}
	if got := v.GetSection("x", "Sources"); got != "- keep me" {
		t.Errorf("Sources = %q", got)
	}
	if v.TopicType("x") != models.TypeConcept {
		t.Errorf("type changed to %q", v.TopicType("x"))
	}
}

func TestProjectTemplate(t *testing.T) {
	v, _ := testVault(t)
	if _, err := v.EnsureTopic("proj", models.TypeProject); err != nil {
		t.Fatal(err)
	}
	doc := v.ReadNote("proj")
	for _, h := range []string{"## Goal", "## Decisions", "## Architecture", "## Open Questions", "## Tensions"} {
		if !strings.Contains(doc, h) {
			t.Errorf("project template missing %q", h)
		}
	}
	if v.TopicType("proj") != models.TypeProject {
		t.Errorf("type = %q", v.TopicType("proj"))
	}
}

func TestReadNoteMissingSentinel(t *testing.T) {
	v, _ := testVault(t)
	got := v.ReadNote("ghost")
	want := "Note for topic 'ghost' does not exist."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestGetSectionMissingReadsEmpty(t *testing.T) {
	v, _ := testVault(t)
	if got := v.GetSection("ghost", "Sources"); got != "" {
		t.Errorf("missing topic section = %q", got)
	}
	_, _ = v.EnsureTopic("x", models.TypeConcept)
	if got := v.GetSection("x", "No Such Section"); got != "" {
		t.Errorf("missing section = %q", got)
	}
}

func TestSetSectionRequiresTopic(t *testing.T) {
	v, _ := testVault(t)
	err := v.SetSection("ghost", "Sources", "- x")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSetSectionRefreshesLastSession(t *testing.T) {
	v, setDay := testVault(t)
	_, _ = v.EnsureTopic("x", models.TypeConcept)
	if got := v.LastSession("x"); got != "2025-02-01" {
		t.Fatalf("last_session = %q", got)
	}

	setDay("2025-02-10")
	if err := v.SetSection("x", "Sources", "- paper"); err != nil {
		t.Fatal(err)
	}
	if got := v.LastSession("x"); got != "2025-02-10" {
		t.Errorf("last_session = %q, want 2025-02-10", got)
	}
	// created is untouched.
	meta, _ := v.Meta("x")
	if meta.Created != "2025-02-01" {
		t.Errorf("created = %q", meta.Created)
	}
}

func TestAddConceptIdempotent(t *testing.T) {
	v, _ := testVault(t)
	for i := 0; i < 2; i++ {
		if err := v.AddConcept("nlp", "Attention", []string{"Softmax"}); err != nil {
			t.Fatal(err)
		}
	}
	got := v.GetSection("nlp", "Core Concepts")
	if got != "- [[Attention]] → [[Softmax]]" {
		t.Errorf("Core Concepts = %q", got)
	}
}

func TestAddConceptDropsSelfLinks(t *testing.T) {
	v, _ := testVault(t)
	if err := v.AddConcept("nlp", "Attention", []string{"Attention", "nlp", "Softmax"}); err != nil {
		t.Fatal(err)
	}
	got := v.GetSection("nlp", "Core Concepts")
	if got != "- [[Attention]] → [[Softmax]]" {
		t.Errorf("Core Concepts = %q", got)
	}
}

func TestAddConceptNoLinks(t *testing.T) {
	v, _ := testVault(t)
	if err := v.AddConcept("nlp", "Attention", nil); err != nil {
		t.Fatal(err)
	}
	if got := v.GetSection("nlp", "Core Concepts"); got != "- [[Attention]]" {
		t.Errorf("Core Concepts = %q", got)
	}
}

func TestAddAndRemoveSource(t *testing.T) {
	v, _ := testVault(t)
	_ = v.AddSource("x", "Sutskever et al. 2014")
	_ = v.AddSource("x", "Vaswani et al. 2017")
	_ = v.AddSource("x", "Sutskever et al. 2014") // duplicate, no-op

	got := v.GetSection("x", "Sources")
	if len(strings.Split(got, "\n")) != 2 {
		t.Fatalf("Sources = %q, want 2 lines", got)
	}

	removed, err := v.RemoveSource("x", "sutskever")
	if err != nil {
		t.Fatal(err)
	}
	if !removed {
		t.Error("expected removal")
	}
	if got := v.GetSection("x", "Sources"); got != "- Vaswani et al. 2017" {
		t.Errorf("Sources = %q", got)
	}

	removed, err = v.RemoveSource("x", "sutskever")
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Error("second removal should find nothing")
	}
}

func TestRemoveSourceMissingTopic(t *testing.T) {
	v, _ := testVault(t)
	removed, err := v.RemoveSource("ghost", "anything")
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if removed {
		t.Error("missing topic should remove nothing")
	}
}

func TestUnderstandingMutualExclusion(t *testing.T) {
	v, _ := testVault(t)
	if err := v.UpdateUnderstanding("x", models.LevelShaky, "Pruning", ""); err != nil {
		t.Fatal(err)
	}
	if err := v.UpdateUnderstanding("x", models.LevelSolid, "Pruning", "now clear"); err != nil {
		t.Fatal(err)
	}

	if got := v.GetSection("x", "Understanding/Shaky"); got != "" {
		t.Errorf("Shaky still has %q", got)
	}
	if got := v.GetSection("x", "Understanding/Solid"); got != "- [[Pruning]] — now clear" {
		t.Errorf("Solid = %q", got)
	}
	if got := v.GetSection("x", "Understanding/Not Yet Engaged"); got != "" {
		t.Errorf("Not Yet Engaged has %q", got)
	}
}

func TestUnderstandingMatchIsCaseInsensitive(t *testing.T) {
	v, _ := testVault(t)
	_ = v.UpdateUnderstanding("x", models.LevelShaky, "beam width", "")
	_ = v.UpdateUnderstanding("x", models.LevelSolid, "Beam Width", "")
	if got := v.GetSection("x", "Understanding/Shaky"); got != "" {
		t.Errorf("Shaky = %q, want empty", got)
	}
}

func TestUnderstandingRejectsUnknownLevel(t *testing.T) {
	v, _ := testVault(t)
	if err := v.UpdateUnderstanding("x", models.UnderstandingLevel("Mastered"), "c", ""); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestAppendSynthesisAndRevision(t *testing.T) {
	v, _ := testVault(t)
	prev, err := v.AppendSynthesis("x", "Pruning", "First explanation.", "")
	if err != nil {
		t.Fatal(err)
	}
	if prev != "" {
		t.Errorf("first write previous = %q", prev)
	}
	if got := v.GetSection("x", "My Synthesis/Pruning"); got != "First explanation." {
		t.Errorf("entry = %q", got)
	}

	prev, err = v.AppendSynthesis("x", "Pruning", "Better explanation.", "")
	if err != nil {
		t.Fatal(err)
	}
	if prev != "First explanation." {
		t.Errorf("previous = %q", prev)
	}
	if got := v.GetSection("x", "My Synthesis/Pruning"); got != "Better explanation." {
		t.Errorf("entry = %q", got)
	}
	// Single-entry law: exactly one heading for the concept.
	doc := v.ReadNote("x")
	if strings.Count(doc, "### Pruning") != 1 {
		t.Errorf("duplicate synthesis headings:\n%s", doc)
	}
}

func TestAppendSynthesisKeepsOtherEntries(t *testing.T) {
	v, _ := testVault(t)
	_, _ = v.AppendSynthesis("x", "Alpha", "About alpha.", "")
	_, _ = v.AppendSynthesis("x", "Beta", "About beta.", "")
	_, _ = v.AppendSynthesis("x", "Alpha", "Alpha, revised.", "")

	if got := v.GetSection("x", "My Synthesis/Beta"); got != "About beta." {
		t.Errorf("Beta = %q", got)
	}
	if got := v.GetSection("x", "My Synthesis/Alpha"); got != "Alpha, revised." {
		t.Errorf("Alpha = %q", got)
	}
}

func TestAppendSynthesisWithNote(t *testing.T) {
	v, _ := testVault(t)
	_, _ = v.AppendSynthesis("x", "Alpha", "Explanation.", "still fuzzy on edge cases")
	got := v.GetSection("x", "My Synthesis/Alpha")
	if !strings.Contains(got, "Explanation.") || !strings.Contains(got, "*Note:* still fuzzy on edge cases") {
		t.Errorf("entry = %q", got)
	}
}

func TestAppendSynthesisConceptNamedLikeLevel(t *testing.T) {
	// A concept named "Solid" shares its heading text with the
	// Understanding level; the revision must stay inside My Synthesis.
	v, _ := testVault(t)
	_ = v.UpdateUnderstanding("x", models.LevelSolid, "Crystals", "")
	_, _ = v.AppendSynthesis("x", "Solid", "First take on solids.", "")
	if _, err := v.AppendSynthesis("x", "Solid", "Revised take on solids.", ""); err != nil {
		t.Fatal(err)
	}

	if got := v.GetSection("x", "Understanding/Solid"); got != "- [[Crystals]]" {
		t.Errorf("Understanding/Solid = %q, want untouched", got)
	}
	if got := v.GetSection("x", "My Synthesis/Solid"); got != "Revised take on solids." {
		t.Errorf("My Synthesis/Solid = %q", got)
	}
	if doc := v.ReadNote("x"); strings.Contains(doc, "First take on solids.") {
		t.Errorf("stale synthesis entry survived:\n%s", doc)
	}
}

func TestMutationKeepsCreatedDateVerbatim(t *testing.T) {
	v, _ := testVault(t)
	if _, err := v.EnsureTopic("x", models.TypeConcept); err != nil {
		t.Fatal(err)
	}
	_ = v.AddConcept("x", "Pruning", nil)
	_ = v.AddSource("x", "Some paper")

	doc := v.ReadNote("x")
	if !strings.Contains(doc, "created: 2025-02-01\n") {
		t.Errorf("created date rewritten:\n%s", doc)
	}
	meta, err := v.Meta("x")
	if err != nil {
		t.Fatal(err)
	}
	if meta.Created != "2025-02-01" {
		t.Errorf("created = %q", meta.Created)
	}
}

func TestSynthesisEntry(t *testing.T) {
	v, _ := testVault(t)
	if _, ok := v.SynthesisEntry("x", "Alpha"); ok {
		t.Error("entry should not exist yet")
	}
	_, _ = v.AppendSynthesis("x", "Alpha", "Words.", "")
	text, ok := v.SynthesisEntry("x", "Alpha")
	if !ok || text != "Words." {
		t.Errorf("entry = %q, ok = %v", text, ok)
	}
}

func TestAppendSessionLog(t *testing.T) {
	v, setDay := testVault(t)
	_ = v.AppendSessionLog("x", "Covered the basics.")
	setDay("2025-02-02")
	_ = v.AppendSessionLog("x", "Went deeper.")

	got := v.GetSection("x", "Session Log")
	if !strings.Contains(got, "### 2025-02-01\nCovered the basics.") {
		t.Errorf("missing first entry:\n%s", got)
	}
	if !strings.Contains(got, "### 2025-02-02\nWent deeper.") {
		t.Errorf("missing second entry:\n%s", got)
	}
}

func TestAppendDailyLog(t *testing.T) {
	v, _ := testVault(t)
	_ = v.AppendDailyLog("beam-search", "explored pruning")
	_ = v.AppendDailyLog("attention", "skimmed the paper")

	data, err := v.store.Read(DailyPath("2025-02-01"))
	if err != nil {
		t.Fatalf("daily log missing: %v", err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "# Study Log — 2025-02-01") {
		t.Errorf("header = %q", text)
	}
	if !strings.Contains(text, "- **beam-search**: explored pruning\n") {
		t.Errorf("missing first bullet:\n%s", text)
	}
	if !strings.Contains(text, "- **attention**: skimmed the paper\n") {
		t.Errorf("missing second bullet:\n%s", text)
	}
}

func TestListTopicsSorted(t *testing.T) {
	v, _ := testVault(t)
	for _, s := range []string{"zebra", "alpha", "parent/child"} {
		if _, err := v.EnsureTopic(s, models.TypeConcept); err != nil {
			t.Fatal(err)
		}
	}
	got, err := v.ListTopics()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"alpha", "parent/child", "zebra"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDocumentAndDelete(t *testing.T) {
	v, _ := testVault(t)
	if _, err := v.Document("ghost"); !errors.Is(err, apperr.ErrNotFound) {
		t.Error("expected ErrNotFound for missing document")
	}
	_, _ = v.EnsureTopic("x", models.TypeConcept)
	doc, err := v.Document("x")
	if err != nil || !strings.Contains(doc, "## Sources") {
		t.Errorf("Document = %q, %v", doc, err)
	}
	if err := v.DeleteTopic("x"); err != nil {
		t.Fatal(err)
	}
	if v.Exists("x") {
		t.Error("topic should be gone")
	}
	if err := v.DeleteTopic("x"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestResetTopicPreservesCreatedAndType(t *testing.T) {
	v, setDay := testVault(t)
	_, _ = v.EnsureTopic("proj", models.TypeProject)
	_ = v.SetSection("proj", "Goal", "Ship the thing")

	setDay("2025-03-01")
	if err := v.ResetTopic("proj"); err != nil {
		t.Fatal(err)
	}
	meta, _ := v.Meta("proj")
	if meta.Created != "2025-02-01" {
		t.Errorf("created = %q, want preserved", meta.Created)
	}
	if meta.Type != models.TypeProject {
		t.Errorf("type = %q", meta.Type)
	}
	if got := v.GetSection("proj", "Goal"); got != "" {
		t.Errorf("Goal survived reset: %q", got)
	}
}

func TestResetAllTopics(t *testing.T) {
	v, _ := testVault(t)
	_, _ = v.EnsureTopic("a", models.TypeConcept)
	_, _ = v.EnsureTopic("b/c", models.TypeConcept)

	n, err := v.ResetAllTopics()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("n = %d, want 2", n)
	}
	slugs, _ := v.ListTopics()
	if len(slugs) != 0 {
		t.Errorf("topics remain: %v", slugs)
	}
}

func TestResetDailyLogs(t *testing.T) {
	v, setDay := testVault(t)
	_ = v.AppendDailyLog("a", "one")
	setDay("2025-02-02")
	_ = v.AppendDailyLog("a", "two")

	n, err := v.ResetDailyLogs()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("n = %d, want 2", n)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	v, _ := testVault(t)
	if got := v.ReadProfile(); got != "" {
		t.Errorf("fresh profile = %q", got)
	}
	_ = v.UpdateProfile("# Learner Profile\n\nPrefers examples first.\n")
	if got := v.ReadProfile(); !strings.Contains(got, "Prefers examples first.") {
		t.Errorf("profile = %q", got)
	}
	if err := v.ResetProfile(); err != nil {
		t.Fatal(err)
	}
	if got := v.ReadProfile(); !strings.Contains(got, "(unknown") {
		t.Errorf("reset profile = %q", got)
	}
}
