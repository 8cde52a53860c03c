// Package vault implements the document model for a study vault: topic
// notes with YAML front matter and a fixed heading-section grammar, plus
// the typed record operations layered on top of them.
//
// Every mutation is read-modify-write on the whole document: the new
// content is computed in memory and written in a single atomic store
// write, with the front-matter last_session date refreshed as part of the
// same write.
package vault

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/starford/mannaz/internal/apperr"
	"github.com/starford/mannaz/internal/frontmatter"
	"github.com/starford/mannaz/internal/models"
	"github.com/starford/mannaz/internal/section"
	"github.com/starford/mannaz/internal/storage"
)

const (
	topicsDir   = "topics"
	dailyDir    = "_daily"
	profileFile = "_profile.md"
	frameworkFile = "_framework.md"
)

// Vault is the single-writer engine over one vault directory.
type Vault struct {
	store storage.Provider
	now   func() time.Time
}

// New creates a Vault over the given storage provider.
func New(store storage.Provider) *Vault {
	return &Vault{store: store, now: time.Now}
}

// NewWithClock creates a Vault with a fixed clock, for tests.
func NewWithClock(store storage.Provider, now func() time.Time) *Vault {
	return &Vault{store: store, now: now}
}

// today returns the current ISO date.
func (v *Vault) today() string {
	return v.now().Format("2006-01-02")
}

// TopicPath returns the vault-relative file path for a topic slug.
// Slashes in the slug nest subtopics into subdirectories.
func TopicPath(slug string) string {
	return topicsDir + "/" + slug + ".md"
}

// DailyPath returns the vault-relative path of the daily log for day.
func DailyPath(day string) string {
	return dailyDir + "/" + day + ".md"
}

// load reads a topic document. A missing file maps to apperr.ErrNotFound.
func (v *Vault) load(slug string) (string, error) {
	data, err := v.store.Read(TopicPath(slug))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", apperr.ErrNotFound
		}
		return "", err
	}
	return string(data), nil
}

// save writes a full topic document, refreshing last_session first so the
// liveness stamp travels in the same atomic write as the mutation.
func (v *Vault) save(slug, content string) error {
	content = frontmatter.Set(content, "last_session", v.today())
	return v.store.Write(TopicPath(slug), []byte(content))
}

// EnsureTopic creates the topic document from the template for its type if
// absent, and returns its vault-relative path. Existing documents are left
// untouched, whatever their type.
func (v *Vault) EnsureTopic(slug string, typ models.TopicType) (string, error) {
	path := TopicPath(slug)
	if v.store.Exists(path) {
		return path, nil
	}
	if !typ.Valid() {
		typ = models.TypeConcept
	}
	doc := renderTemplate(slug, typ, v.today(), v.today())
	if err := v.store.Write(path, []byte(doc)); err != nil {
		return "", err
	}
	return path, nil
}

// ListTopics returns every topic slug in the vault, sorted.
func (v *Vault) ListTopics() ([]string, error) {
	metas, err := v.store.List(topicsDir)
	if err != nil {
		return nil, err
	}
	slugs := make([]string, 0, len(metas))
	for _, m := range metas {
		slug := strings.TrimSuffix(strings.TrimPrefix(m.Path, topicsDir+"/"), ".md")
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs, nil
}

// ReadNote returns the full document text for a topic. A missing topic
// yields a sentinel message rather than an error: the result is surfaced
// directly as tool output.
func (v *Vault) ReadNote(slug string) string {
	content, err := v.load(slug)
	if err != nil {
		return fmt.Sprintf("Note for topic '%s' does not exist.", slug)
	}
	return content
}

// Document returns the full document text for a topic, mapping a missing
// file to apperr.ErrNotFound. Callers that want the sentinel message
// instead use ReadNote.
func (v *Vault) Document(slug string) (string, error) {
	return v.load(slug)
}

// DeleteTopic removes a topic document from the vault.
func (v *Vault) DeleteTopic(slug string) error {
	if !v.store.Exists(TopicPath(slug)) {
		return apperr.ErrNotFound
	}
	return v.store.Delete(TopicPath(slug))
}

// Exists reports whether a topic document is present.
func (v *Vault) Exists(slug string) bool {
	return v.store.Exists(TopicPath(slug))
}

// TopicType returns the front-matter type of a topic, defaulting to
// concept when the key is absent or the value unknown.
func (v *Vault) TopicType(slug string) models.TopicType {
	content, err := v.load(slug)
	if err != nil {
		return models.TypeConcept
	}
	typ := models.TopicType(frontmatter.Parse(content)["type"])
	if !typ.Valid() {
		return models.TypeConcept
	}
	return typ
}

// LastSession returns the front-matter last_session date, or "" if the
// topic or key is absent.
func (v *Vault) LastSession(slug string) string {
	content, err := v.load(slug)
	if err != nil {
		return ""
	}
	return frontmatter.Parse(content)["last_session"]
}

// Meta returns the catalogued metadata of one topic document.
func (v *Vault) Meta(slug string) (models.TopicMeta, error) {
	content, err := v.load(slug)
	if err != nil {
		return models.TopicMeta{}, err
	}
	fm := frontmatter.Parse(content)
	typ := models.TopicType(fm["type"])
	if !typ.Valid() {
		typ = models.TypeConcept
	}
	return models.TopicMeta{
		Slug:        slug,
		Type:        typ,
		Created:     fm["created"],
		LastSession: fm["last_session"],
	}, nil
}

// GetSection returns the text of the section at path within a topic
// document. Missing topics and missing sections both read as empty.
func (v *Vault) GetSection(slug, path string) string {
	content, err := v.load(slug)
	if err != nil {
		return ""
	}
	_, body := frontmatter.Split(content)
	return section.Get(body, section.ParsePath(path))
}

// SetSection replaces the section at path with text and refreshes
// last_session, all in one write. The topic document must already exist;
// section creation is self-healing but document creation is the caller's
// job (EnsureTopic).
func (v *Vault) SetSection(slug, path, text string) error {
	content, err := v.load(slug)
	if err != nil {
		return err
	}
	fm, body := frontmatter.Split(content)
	body = section.Replace(body, section.ParsePath(path), text)
	return v.save(slug, frontmatter.Join(fm, body))
}

// mutate loads a topic document, applies fn to its body, and writes the
// result back in a single save. fn receives and returns the body without
// front matter.
func (v *Vault) mutate(slug string, fn func(body string) string) error {
	content, err := v.load(slug)
	if err != nil {
		return err
	}
	fm, body := frontmatter.Split(content)
	return v.save(slug, frontmatter.Join(fm, fn(body)))
}

// EnsureStructure creates the vault directory skeleton.
func EnsureStructure(root string) error {
	for _, dir := range []string{topicsDir, dailyDir} {
		if err := os.MkdirAll(root+"/"+dir, 0o755); err != nil {
			return fmt.Errorf("vault: ensure structure: %w", err)
		}
	}
	return nil
}
