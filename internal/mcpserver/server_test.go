package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/mannaz/internal/models"
	"github.com/starford/mannaz/internal/recorder"
	"github.com/starford/mannaz/internal/testutil"
	"github.com/starford/mannaz/internal/vault"
)

func testServer(t *testing.T, topic string) (*Server, *vault.Vault) {
	t.Helper()
	v := testutil.TestVault(t, "2025-02-01")
	rec := recorder.New(v, topic, models.TypeConcept)
	return New(rec), v
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handler
	// functions are invoked directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "read_note":
		result, err = srv.readNote(ctx, req)
	case "list_topics":
		result, err = srv.listTopics(ctx, req)
	case "update_section":
		result, err = srv.updateSection(ctx, req)
	case "add_concept":
		result, err = srv.addConcept(ctx, req)
	case "add_source":
		result, err = srv.addSource(ctx, req)
	case "update_understanding":
		result, err = srv.updateUnderstanding(ctx, req)
	case "append_synthesis":
		result, err = srv.appendSynthesis(ctx, req)
	case "record_decision":
		result, err = srv.recordDecision(ctx, req)
	case "suggest_subtopic":
		result, err = srv.suggestSubtopic(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestAddConceptAndReadNote(t *testing.T) {
	srv, _ := testServer(t, "beam-search")

	r := callTool(t, srv, "add_concept", map[string]interface{}{
		"concept": "Pruning",
		"links":   "Beam Width, Scoring",
	})
	text := resultText(r)
	if !strings.Contains(text, "Concept '[[Pruning]]' added to 'beam-search'.") {
		t.Errorf("add result = %q", text)
	}

	r = callTool(t, srv, "read_note", map[string]interface{}{"topic": "beam-search"})
	text = resultText(r)
	if !strings.Contains(text, "- [[Pruning]] → [[Beam Width]], [[Scoring]]") {
		t.Errorf("note = %q", text)
	}
}

func TestListTopicsEmpty(t *testing.T) {
	srv, _ := testServer(t, "")
	r := callTool(t, srv, "list_topics", map[string]interface{}{})
	if resultText(r) != "No topics yet." {
		t.Errorf("list = %q", resultText(r))
	}
}

func TestUpdateSectionDefaultsToSessionTopic(t *testing.T) {
	srv, v := testServer(t, "beam-search")
	r := callTool(t, srv, "update_section", map[string]interface{}{
		"section": "Sources",
		"content": "- Paper one",
	})
	text := resultText(r)
	if !strings.Contains(text, "[auto-added topic='beam-search']") {
		t.Errorf("notice missing: %q", text)
	}
	if got := v.GetSection("beam-search", "Sources"); got != "- Paper one" {
		t.Errorf("section = %q", got)
	}
}

func TestUpdateUnderstandingBadLevelIsToolError(t *testing.T) {
	srv, _ := testServer(t, "beam-search")
	r := callTool(t, srv, "update_understanding", map[string]interface{}{
		"level":   "Mastered",
		"concept": "Pruning",
	})
	if !r.IsError {
		t.Error("expected tool error for bad level")
	}
}

func TestMissingRequiredArgumentIsToolError(t *testing.T) {
	srv, _ := testServer(t, "beam-search")
	r := callTool(t, srv, "add_source", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected tool error for missing source")
	}
}

func TestAppendSynthesisRevisionSurfacesPrevious(t *testing.T) {
	srv, _ := testServer(t, "beam-search")
	_ = callTool(t, srv, "append_synthesis", map[string]interface{}{
		"concept":      "Pruning",
		"learner_text": "First take.",
	})
	r := callTool(t, srv, "append_synthesis", map[string]interface{}{
		"concept":      "Pruning",
		"learner_text": "Second take.",
	})
	text := resultText(r)
	if !strings.Contains(text, "revised. Previous entry was:") || !strings.Contains(text, "First take.") {
		t.Errorf("revision result = %q", text)
	}
}

func TestRecordDecisionConflictSurfaced(t *testing.T) {
	srv, _ := testServer(t, "decoder")
	_ = callTool(t, srv, "record_decision", map[string]interface{}{
		"component": "storage",
		"decision":  "Use SQLite.",
	})
	r := callTool(t, srv, "record_decision", map[string]interface{}{
		"component": "storage",
		"decision":  "Switch to Postgres.",
	})
	text := resultText(r)
	if !strings.Contains(text, "CONFLICT DETECTED AND LOGGED") {
		t.Errorf("conflict not surfaced: %q", text)
	}
}

func TestSuggestSubtopicAutoConfirms(t *testing.T) {
	srv, v := testServer(t, "beam-search")
	r := callTool(t, srv, "suggest_subtopic", map[string]interface{}{
		"name":   "pruning",
		"reason": "tangent deserves its own note",
	})
	text := resultText(r)
	if !strings.Contains(text, "Subtopic 'beam-search/pruning' created.") {
		t.Errorf("result = %q", text)
	}
	if !v.Exists("beam-search/pruning") {
		t.Error("subtopic document missing")
	}
}

func TestProfileResourceFallback(t *testing.T) {
	srv, v := testServer(t, "")
	contents, err := srv.readProfileResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if tc := contents[0].(mcp.TextResourceContents); tc.Text != "(no learner profile yet)" {
		t.Errorf("empty profile = %q", tc.Text)
	}

	if err := v.UpdateProfile("# Learner Profile\n\nLikes worked examples.\n"); err != nil {
		t.Fatal(err)
	}
	contents, err = srv.readProfileResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if tc := contents[0].(mcp.TextResourceContents); !strings.Contains(tc.Text, "Likes worked examples.") {
		t.Errorf("profile = %q", tc.Text)
	}
}

func TestNoteFormatResource(t *testing.T) {
	srv, _ := testServer(t, "")
	contents, err := srv.readNoteFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("unexpected content type %T", contents[0])
	}
	if !strings.Contains(tc.Text, "last_session") {
		t.Errorf("contract missing front matter keys: %q", tc.Text[:80])
	}
}
