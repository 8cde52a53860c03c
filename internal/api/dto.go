package api

import (
	"github.com/starford/mannaz/internal/catalog"
	"github.com/starford/mannaz/internal/models"
)

// CreateTopicRequest is the request body for creating a topic.
type CreateTopicRequest struct {
	Slug string `json:"slug"`
	Type string `json:"type,omitempty"`
}

// TopicListResponse wraps the topic listing.
type TopicListResponse struct {
	Topics []models.TopicMeta `json:"topics"`
	Total  int                `json:"total"`
}

// SectionResponse wraps one section read.
type SectionResponse struct {
	Slug    string `json:"slug"`
	Path    string `json:"path"`
	Content string `json:"content"`
}

// LinksResponse wraps the classified wikilinks of a topic.
type LinksResponse struct {
	Slug  string          `json:"slug"`
	Links models.LinkRefs `json:"links"`
}

// StatsResponse wraps recent session statistics.
type StatsResponse struct {
	Sessions []catalog.SessionRecord `json:"sessions"`
}
