// Package models defines the domain types for Mannaz.
package models

import "time"

// TopicType distinguishes concept notes from project notes.
type TopicType string

const (
	TypeConcept TopicType = "concept"
	TypeProject TopicType = "project"
)

// Valid reports whether t is a known topic type.
func (t TopicType) Valid() bool {
	return t == TypeConcept || t == TypeProject
}

// TopicMeta is a lightweight representation of one vault topic.
type TopicMeta struct {
	Slug        string    `json:"slug"`
	Type        TopicType `json:"type"`
	Created     string    `json:"created,omitempty"`
	LastSession string    `json:"last_session,omitempty"`
	Checksum    string    `json:"checksum,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UnderstandingLevel classifies a concept within a topic.
type UnderstandingLevel string

const (
	LevelSolid         UnderstandingLevel = "Solid"
	LevelShaky         UnderstandingLevel = "Shaky"
	LevelNotYetEngaged UnderstandingLevel = "Not Yet Engaged"
)

// UnderstandingLevels lists all levels in file order. A concept appears in
// at most one of them at any time.
var UnderstandingLevels = []UnderstandingLevel{LevelSolid, LevelShaky, LevelNotYetEngaged}

// Valid reports whether l is a known understanding level.
func (l UnderstandingLevel) Valid() bool {
	for _, lvl := range UnderstandingLevels {
		if l == lvl {
			return true
		}
	}
	return false
}

// UnderstandingMove records one concept transition for session statistics.
type UnderstandingMove struct {
	Concept string             `json:"concept"`
	Level   UnderstandingLevel `json:"level"`
}

// Decision is one entry in a project's decision append-log.
type Decision struct {
	Component string `json:"component"`
	Decision  string `json:"decision"`
	Rationale string `json:"rationale,omitempty"`
	Date      string `json:"date,omitempty"`
}

// LinkRefs is the output of cross-reference resolution over a document.
// Concepts are bare references with no matching topic; CrossTopic entries
// name an existing topic slug other than the owning document.
type LinkRefs struct {
	Concepts   []string `json:"concepts"`
	CrossTopic []string `json:"cross_topic"`
}

// SessionStats accumulates per-session counters for end-of-session reporting.
type SessionStats struct {
	Topic            string              `json:"topic"`
	ConceptsAdded    int                 `json:"concepts_added"`
	SourcesAdded     int                 `json:"sources_added"`
	SynthesisEntries int                 `json:"synthesis_entries"`
	Understanding    []UnderstandingMove `json:"understanding_updates"`
	SubtopicsCreated []string            `json:"subtopics_created"`
}
