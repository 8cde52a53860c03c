// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the study vault's record operations as tools for LLM
// integration via stdio transport.
package mcpserver

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/mannaz/internal/models"
	"github.com/starford/mannaz/internal/recorder"
)

// Server wraps the MCP server with the vault record tools. All tools
// return the recorder's confirmation strings as tool-result text.
type Server struct {
	mcp *server.MCPServer
	rec *recorder.Recorder
}

// New creates a new MCP server with all record tools registered.
func New(rec *recorder.Recorder) *Server {
	s := &Server{rec: rec}

	s.mcp = server.NewMCPServer(
		"Mannaz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the full study note for a topic."),
		mcp.WithString("topic", mcp.Required(), mcp.Description("Topic slug (e.g. beam-search or parent/child)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("list_topics",
		mcp.WithDescription("List every topic slug in the vault, one per line."),
	), s.listTopics)

	s.mcp.AddTool(mcp.NewTool("update_section",
		mcp.WithDescription("Replace one section of a topic note wholesale. "+
			"Section paths use '/' for nesting (e.g. 'Understanding/Shaky'). "+
			"Read the mannaz://note-format resource for the document contract."),
		mcp.WithString("topic", mcp.Description("Topic slug (defaults to the session topic)")),
		mcp.WithString("section", mcp.Required(), mcp.Description("Section path within the note")),
		mcp.WithString("content", mcp.Description("New section content")),
	), s.updateSection)

	s.mcp.AddTool(mcp.NewTool("add_concept",
		mcp.WithDescription("Record a concept in the topic's Core Concepts section."),
		mcp.WithString("topic", mcp.Description("Topic slug (defaults to the session topic)")),
		mcp.WithString("concept", mcp.Required(), mcp.Description("Concept name")),
		mcp.WithString("links", mcp.Description("Comma-separated related concept names")),
	), s.addConcept)

	s.mcp.AddTool(mcp.NewTool("add_source",
		mcp.WithDescription("Record a reading source in the topic's Sources section."),
		mcp.WithString("topic", mcp.Description("Topic slug (defaults to the session topic)")),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source reference (title, URL, citation)")),
	), s.addSource)

	s.mcp.AddTool(mcp.NewTool("remove_source",
		mcp.WithDescription("Remove a source by case-insensitive substring match."),
		mcp.WithString("topic", mcp.Description("Topic slug (defaults to the session topic)")),
		mcp.WithString("source", mcp.Required(), mcp.Description("Substring of the source to remove")),
	), s.removeSource)

	s.mcp.AddTool(mcp.NewTool("update_understanding",
		mcp.WithDescription("Move a concept to an understanding level. "+
			"A concept lives at exactly one level at a time."),
		mcp.WithString("topic", mcp.Description("Topic slug (defaults to the session topic)")),
		mcp.WithString("level", mcp.Required(), mcp.Description("One of: Solid, Shaky, Not Yet Engaged")),
		mcp.WithString("concept", mcp.Required(), mcp.Description("Concept name")),
		mcp.WithString("notes", mcp.Description("Optional note appended after the concept link")),
	), s.updateUnderstanding)

	s.mcp.AddTool(mcp.NewTool("link_to_topic",
		mcp.WithDescription("Record a cross-topic link between two existing topics."),
		mcp.WithString("concept", mcp.Required(), mcp.Description("Concept that connects the two topics")),
		mcp.WithString("from_topic", mcp.Required(), mcp.Description("Topic the link originates in")),
		mcp.WithString("to_topic", mcp.Required(), mcp.Description("Topic the link points to")),
	), s.linkToTopic)

	s.mcp.AddTool(mcp.NewTool("append_session_log",
		mcp.WithDescription("Append a dated entry to the topic's Session Log."),
		mcp.WithString("topic", mcp.Description("Topic slug (defaults to the session topic)")),
		mcp.WithString("entry", mcp.Description("Log entry text")),
	), s.appendSessionLog)

	s.mcp.AddTool(mcp.NewTool("append_synthesis",
		mcp.WithDescription("Capture the learner's own explanation of a concept in My Synthesis. "+
			"Calling again for the same concept REVISES the existing entry and returns "+
			"the previous text for reconciliation."),
		mcp.WithString("topic", mcp.Description("Topic slug (defaults to the session topic)")),
		mcp.WithString("concept", mcp.Required(), mcp.Description("Concept being explained")),
		mcp.WithString("learner_text", mcp.Required(), mcp.Description("The learner's explanation, verbatim")),
		mcp.WithString("note", mcp.Description("Optional observation about the explanation")),
	), s.appendSynthesis)

	s.mcp.AddTool(mcp.NewTool("update_profile",
		mcp.WithDescription("Overwrite the learner profile document."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Full profile content")),
	), s.updateProfile)

	s.mcp.AddTool(mcp.NewTool("update_goal",
		mcp.WithDescription("Set a project topic's Goal section. Mentions of existing vault topics are auto-linked."),
		mcp.WithString("topic", mcp.Description("Project topic slug (defaults to the session topic)")),
		mcp.WithString("goal", mcp.Required(), mcp.Description("Goal text")),
	), s.updateGoal)

	s.mcp.AddTool(mcp.NewTool("record_decision",
		mcp.WithDescription("Append a decision to a project's Decisions log. Prior decisions for the "+
			"same component are flagged as conflicts automatically; follow the instructions in the result."),
		mcp.WithString("topic", mcp.Description("Project topic slug (defaults to the session topic)")),
		mcp.WithString("component", mcp.Required(), mcp.Description("Component the decision is about")),
		mcp.WithString("decision", mcp.Required(), mcp.Description("The decision taken")),
		mcp.WithString("rationale", mcp.Description("Why this decision was taken")),
	), s.recordDecision)

	s.mcp.AddTool(mcp.NewTool("update_architecture",
		mcp.WithDescription("Upsert one component's description in a project's Architecture section."),
		mcp.WithString("topic", mcp.Description("Project topic slug (defaults to the session topic)")),
		mcp.WithString("component", mcp.Required(), mcp.Description("Component name")),
		mcp.WithString("description", mcp.Description("Component description")),
	), s.updateArchitecture)

	s.mcp.AddTool(mcp.NewTool("add_open_question",
		mcp.WithDescription("Log an unresolved question in a project's Open Questions section."),
		mcp.WithString("topic", mcp.Description("Project topic slug (defaults to the session topic)")),
		mcp.WithString("question", mcp.Required(), mcp.Description("The open question")),
	), s.addOpenQuestion)

	s.mcp.AddTool(mcp.NewTool("resolve_open_question",
		mcp.WithDescription("Remove an answered question by case-insensitive substring match."),
		mcp.WithString("topic", mcp.Description("Project topic slug (defaults to the session topic)")),
		mcp.WithString("question", mcp.Required(), mcp.Description("Substring of the question to resolve")),
	), s.resolveOpenQuestion)

	s.mcp.AddTool(mcp.NewTool("add_tension",
		mcp.WithDescription("Log a conflict between current thinking and a prior decision."),
		mcp.WithString("topic", mcp.Description("Project topic slug (defaults to the session topic)")),
		mcp.WithString("tension", mcp.Required(), mcp.Description("The tension, quoting both sides")),
	), s.addTension)

	s.mcp.AddTool(mcp.NewTool("resolve_tension",
		mcp.WithDescription("Remove a reconciled tension by case-insensitive substring match."),
		mcp.WithString("topic", mcp.Description("Project topic slug (defaults to the session topic)")),
		mcp.WithString("tension", mcp.Required(), mcp.Description("Substring of the tension to resolve")),
	), s.resolveTension)

	s.mcp.AddTool(mcp.NewTool("suggest_subtopic",
		mcp.WithDescription("Create a subtopic under the session topic when a tangent deserves its own note. "+
			"The subtopic is created immediately; use the returned name in subsequent calls."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Subtopic slug segment (e.g. beam-search)")),
		mcp.WithString("reason", mcp.Description("Why the tangent deserves its own note")),
	), s.suggestSubtopic)

	// Resource: note format contract.
	s.mcp.AddResource(
		mcp.NewResource("mannaz://note-format", "Note Format Contract",
			mcp.WithResourceDescription("Canonical topic note format that all study notes follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	// Resource: learner profile.
	s.mcp.AddResource(
		mcp.NewResource("mannaz://profile", "Learner Profile",
			mcp.WithResourceDescription("What is known about the learner: background, preferences, metacognitive notes."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readProfileResource,
	)

	// Resource: optional study framework.
	s.mcp.AddResource(
		mcp.NewResource("mannaz://framework", "Study Framework",
			mcp.WithResourceDescription("Optional framework text that frames how study sessions are run."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFrameworkResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// toolResult maps a recorder result to tool output. Recorder errors
// (validation or I/O) become tool errors rather than protocol errors.
func toolResult(text string, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

// optString reads an optional string argument, defaulting to "".
func optString(req mcp.CallToolRequest, key string) string {
	if v, err := req.RequireString(key); err == nil {
		return v
	}
	return ""
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic, err := req.RequireString("topic")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolResult(s.rec.ReadNote(topic))
}

func (s *Server) listTopics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toolResult(s.rec.ListTopics())
}

func (s *Server) updateSection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sectionPath, err := req.RequireString("section")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolResult(s.rec.UpdateSection(optString(req, "topic"), sectionPath, optString(req, "content")))
}

func (s *Server) addConcept(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	concept, err := req.RequireString("concept")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var links []string
	for _, l := range strings.Split(optString(req, "links"), ",") {
		if l = strings.TrimSpace(l); l != "" {
			links = append(links, l)
		}
	}
	return toolResult(s.rec.AddConcept(optString(req, "topic"), concept, links))
}

func (s *Server) addSource(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolResult(s.rec.AddSource(optString(req, "topic"), source))
}

func (s *Server) removeSource(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolResult(s.rec.RemoveSource(optString(req, "topic"), source))
}

func (s *Server) updateUnderstanding(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	level, err := req.RequireString("level")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	concept, err := req.RequireString("concept")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolResult(s.rec.UpdateUnderstanding(
		optString(req, "topic"), models.UnderstandingLevel(level), concept, optString(req, "notes")))
}

func (s *Server) linkToTopic(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	concept, err := req.RequireString("concept")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	from, err := req.RequireString("from_topic")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := req.RequireString("to_topic")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolResult(s.rec.LinkToTopic(concept, from, to))
}

func (s *Server) appendSessionLog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toolResult(s.rec.AppendSessionLog(optString(req, "topic"), optString(req, "entry")))
}

func (s *Server) appendSynthesis(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	concept, err := req.RequireString("concept")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	learnerText, err := req.RequireString("learner_text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolResult(s.rec.AppendSynthesis(
		optString(req, "topic"), concept, learnerText, optString(req, "note")))
}

func (s *Server) updateProfile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolResult(s.rec.UpdateProfile(content))
}

func (s *Server) updateGoal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goal, err := req.RequireString("goal")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolResult(s.rec.UpdateGoal(optString(req, "topic"), goal))
}

func (s *Server) recordDecision(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	component, err := req.RequireString("component")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	decision, err := req.RequireString("decision")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolResult(s.rec.RecordDecision(
		optString(req, "topic"), component, decision, optString(req, "rationale")))
}

func (s *Server) updateArchitecture(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	component, err := req.RequireString("component")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolResult(s.rec.UpdateArchitecture(
		optString(req, "topic"), component, optString(req, "description")))
}

func (s *Server) addOpenQuestion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := req.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolResult(s.rec.AddOpenQuestion(optString(req, "topic"), question))
}

func (s *Server) resolveOpenQuestion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := req.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolResult(s.rec.ResolveOpenQuestion(optString(req, "topic"), question))
}

func (s *Server) addTension(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tension, err := req.RequireString("tension")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolResult(s.rec.AddTension(optString(req, "topic"), tension))
}

func (s *Server) resolveTension(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tension, err := req.RequireString("tension")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolResult(s.rec.ResolveTension(optString(req, "topic"), tension))
}

// suggestSubtopic applies the non-interactive transport policy: the
// suggestion is confirmed immediately under its suggested name.
func (s *Server) suggestSubtopic(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pending, err := s.rec.SuggestSubtopic(name, optString(req, "reason"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolResult(s.rec.ConfirmSubtopic(pending, ""))
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "mannaz://note-format",
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}

func (s *Server) readProfileResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	text := s.rec.Profile()
	if text == "" {
		text = "(no learner profile yet)"
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "mannaz://profile",
			MIMEType: "text/markdown",
			Text:     text,
		},
	}, nil
}

func (s *Server) readFrameworkResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	text := s.rec.Framework()
	if text == "" {
		text = "(no framework configured)"
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "mannaz://framework",
			MIMEType: "text/markdown",
			Text:     text,
		},
	}, nil
}
