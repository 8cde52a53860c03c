package api

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/mannaz/internal/apperr"
	"github.com/starford/mannaz/internal/catalog"
	"github.com/starford/mannaz/internal/models"
	"github.com/starford/mannaz/internal/vault"
)

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*(?:/[A-Za-z0-9][A-Za-z0-9_-]*)*$`)

// Service coordinates vault and catalog operations for the API layer.
type Service struct {
	vault *vault.Vault
	db    *catalog.DB
}

// NewService creates a new API service.
func NewService(v *vault.Vault, db *catalog.DB) *Service {
	return &Service{vault: v, db: db}
}

// TopicDetail is the response payload for a single topic.
type TopicDetail struct {
	Slug        string           `json:"slug"`
	Type        models.TopicType `json:"type"`
	Created     string           `json:"created,omitempty"`
	LastSession string           `json:"last_session,omitempty"`
	Content     string           `json:"content"`
}

// ListTopics returns every catalogued topic, most recently studied first.
func (s *Service) ListTopics() ([]models.TopicMeta, error) {
	items, err := s.db.ListTopics()
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.TopicMeta{}
	}
	return items, nil
}

// CreateTopic ensures a topic document exists and returns it. created is
// false when the document was already present (the existing document is
// returned untouched).
func (s *Service) CreateTopic(slug string, typ models.TopicType) (*TopicDetail, bool, error) {
	if err := validation.Validate(slug,
		validation.Required,
		validation.Match(slugPattern),
	); err != nil {
		return nil, false, fmt.Errorf("%w: slug: %v", apperr.ErrInvalidArgument, err)
	}
	if typ != "" && !typ.Valid() {
		return nil, false, fmt.Errorf("%w: type must be concept or project", apperr.ErrInvalidArgument)
	}

	existed := s.vault.Exists(slug)
	if _, err := s.vault.EnsureTopic(slug, typ); err != nil {
		return nil, false, err
	}
	detail, err := s.GetTopic(slug)
	if err != nil {
		return nil, false, err
	}
	return detail, !existed, nil
}

// GetTopic reads a topic document with its front-matter metadata.
func (s *Service) GetTopic(slug string) (*TopicDetail, error) {
	content, err := s.vault.Document(slug)
	if err != nil {
		return nil, err
	}
	meta, err := s.vault.Meta(slug)
	if err != nil {
		return nil, err
	}
	return &TopicDetail{
		Slug:        slug,
		Type:        meta.Type,
		Created:     meta.Created,
		LastSession: meta.LastSession,
		Content:     content,
	}, nil
}

// DeleteTopic removes a topic from the vault and the catalog.
func (s *Service) DeleteTopic(slug string) error {
	if err := s.vault.DeleteTopic(slug); err != nil {
		return err
	}
	return s.db.DeleteTopic(slug)
}

// Section returns the text of one section of a topic document. The bool
// reports whether the topic exists at all; a present topic with a missing
// section yields ("", true).
func (s *Service) Section(slug, path string) (string, bool) {
	if !s.vault.Exists(slug) {
		return "", false
	}
	return s.vault.GetSection(slug, path), true
}

// Links returns the classified wikilink references of a topic document.
func (s *Service) Links(slug string) (models.LinkRefs, error) {
	if !s.vault.Exists(slug) {
		return models.LinkRefs{}, apperr.ErrNotFound
	}
	return s.vault.ExtractLinks(slug)
}

// Sessions returns recent session statistics, optionally filtered by topic.
func (s *Service) Sessions(topic string, limit int) ([]catalog.SessionRecord, error) {
	recs, err := s.db.ListSessions(topic, limit)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []catalog.SessionRecord{}
	}
	return recs, nil
}
