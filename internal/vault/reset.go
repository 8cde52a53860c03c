package vault

import (
	"strings"

	"github.com/starford/mannaz/internal/frontmatter"
	"github.com/starford/mannaz/internal/models"
)

// ResetTopic overwrites a topic document with a blank template of its
// current type, preserving the created date when one exists.
func (v *Vault) ResetTopic(slug string) error {
	created := v.today()
	typ := models.TypeConcept
	if content, err := v.load(slug); err == nil {
		fm := frontmatter.Parse(content)
		if c := fm["created"]; c != "" {
			created = c
		}
		if t := models.TopicType(fm["type"]); t.Valid() {
			typ = t
		}
	}
	doc := renderTemplate(slug, typ, created, v.today())
	return v.store.Write(TopicPath(slug), []byte(doc))
}

// ResetAllTopics deletes every topic document and returns how many were
// removed.
func (v *Vault) ResetAllTopics() (int, error) {
	metas, err := v.store.List(topicsDir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range metas {
		if !strings.HasSuffix(m.Path, ".md") {
			continue
		}
		if err := v.store.Delete(m.Path); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// ResetDailyLogs deletes every daily log file and returns how many were
// removed.
func (v *Vault) ResetDailyLogs() (int, error) {
	metas, err := v.store.List(dailyDir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range metas {
		if err := v.store.Delete(m.Path); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// ResetProfile restores the blank learner profile template.
func (v *Vault) ResetProfile() error {
	return v.store.Write(profileFile, []byte(profileTemplate))
}
