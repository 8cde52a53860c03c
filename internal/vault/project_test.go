package vault

import (
	"strings"
	"testing"

	"github.com/starford/mannaz/internal/models"
)

func TestRecordDecisionAppends(t *testing.T) {
	v, setDay := testVault(t)
	_ = v.RecordDecision("proj", "storage", "Use SQLite.", "zero-ops local file")
	setDay("2025-02-05")
	_ = v.RecordDecision("proj", "transport", "Plain HTTP.", "")

	got := v.Decisions("proj")
	if !strings.Contains(got, "### 2025-02-01 — storage\nUse SQLite.\n**Why:** zero-ops local file") {
		t.Errorf("first block missing:\n%s", got)
	}
	if !strings.Contains(got, "### 2025-02-05 — transport\nPlain HTTP.") {
		t.Errorf("second block missing:\n%s", got)
	}
	if strings.Contains(got, "transport\nPlain HTTP.\n**Why:**") {
		t.Error("rationale rendered for empty input")
	}
}

func TestRecordDecisionNeverOverwrites(t *testing.T) {
	v, _ := testVault(t)
	_ = v.RecordDecision("proj", "storage", "Use SQLite.", "")
	_ = v.RecordDecision("proj", "storage", "Switch to Postgres.", "")

	got := v.Decisions("proj")
	if !strings.Contains(got, "Use SQLite.") || !strings.Contains(got, "Switch to Postgres.") {
		t.Errorf("history lost:\n%s", got)
	}
	if strings.Count(got, "### 2025-02-01 — storage") != 2 {
		t.Errorf("expected two storage blocks:\n%s", got)
	}
}

func TestGoalSurvivesDecisions(t *testing.T) {
	v, _ := testVault(t)
	_, _ = v.EnsureTopic("proj", models.TypeProject)
	_ = v.SetSection("proj", "Goal", "Ship a working decoder")
	_ = v.RecordDecision("proj", "storage", "Use SQLite.", "")

	if got := v.GetSection("proj", "Goal"); got != "Ship a working decoder" {
		t.Errorf("Goal = %q", got)
	}
}

func TestUpdateArchitectureUpsert(t *testing.T) {
	v, _ := testVault(t)
	_ = v.UpdateArchitecture("proj", "ingest", "Pulls from the queue.")
	_ = v.UpdateArchitecture("proj", "api", "Serves reads.")
	_ = v.UpdateArchitecture("proj", "ingest", "Pulls from the queue, batched.")

	arch := v.GetSection("proj", "Architecture")
	if !strings.Contains(arch, "### ingest\nPulls from the queue, batched.") {
		t.Errorf("ingest not replaced:\n%s", arch)
	}
	if strings.Contains(arch, "Pulls from the queue.\n") {
		t.Error("stale ingest description survived")
	}
	if !strings.Contains(arch, "### api\nServes reads.") {
		t.Errorf("api block missing:\n%s", arch)
	}
	if strings.Count(arch, "### ingest") != 1 {
		t.Errorf("duplicate ingest headings:\n%s", arch)
	}
}

func TestUpdateArchitectureEmptyBodyComponent(t *testing.T) {
	v, _ := testVault(t)
	_ = v.UpdateArchitecture("proj", "cache", "")
	_ = v.UpdateArchitecture("proj", "cache", "In-process LRU.")

	arch := v.GetSection("proj", "Architecture")
	if strings.Count(arch, "### cache") != 1 {
		t.Errorf("empty-body component duplicated:\n%s", arch)
	}
	if !strings.Contains(arch, "In-process LRU.") {
		t.Errorf("description missing:\n%s", arch)
	}
}

func TestOpenQuestions(t *testing.T) {
	v, _ := testVault(t)
	_ = v.AddOpenQuestion("proj", "How big can the vault get?")
	_ = v.AddOpenQuestion("proj", "Do we need auth?")

	resolved, err := v.ResolveOpenQuestion("proj", "vault get")
	if err != nil {
		t.Fatal(err)
	}
	if !resolved {
		t.Error("expected a resolution")
	}
	got := v.GetSection("proj", "Open Questions")
	if got != "- Do we need auth?" {
		t.Errorf("Open Questions = %q", got)
	}

	resolved, _ = v.ResolveOpenQuestion("proj", "vault get")
	if resolved {
		t.Error("second resolve should find nothing")
	}
}

func TestTensions(t *testing.T) {
	v, _ := testVault(t)
	_ = v.AddTension("proj", "storage: SQLite vs Postgres")
	resolved, err := v.ResolveTension("proj", "sqlite vs postgres")
	if err != nil {
		t.Fatal(err)
	}
	if !resolved {
		t.Error("expected a resolution")
	}
	if got := v.Tensions("proj"); got != "" {
		t.Errorf("Tensions = %q", got)
	}
}

func TestResolveOnMissingTopic(t *testing.T) {
	v, _ := testVault(t)
	resolved, err := v.ResolveTension("ghost", "anything")
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if resolved {
		t.Error("missing topic should resolve nothing")
	}
}

func TestProjectRecordsCreateProjectTopic(t *testing.T) {
	v, _ := testVault(t)
	_ = v.RecordDecision("fresh", "storage", "Use SQLite.", "")
	if v.TopicType("fresh") != models.TypeProject {
		t.Errorf("type = %q, want project", v.TopicType("fresh"))
	}
}
