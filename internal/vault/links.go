package vault

import (
	"regexp"
	"strings"

	"github.com/starford/mannaz/internal/models"
)

// wikilinkRe matches [[Target]] and [[Target|display text]]; the display
// suffix and heading anchors are ignored for resolution.
var wikilinkRe = regexp.MustCompile(`\[\[([^\]|#]+?)(?:\|[^\]]+)?\]\]`)

// ExtractLinks scans a topic document for link markers and classifies each
// target: cross-topic when it names an existing topic slug other than the
// owning topic, bare concept otherwise. Self-references are excluded from
// both lists; order is first-seen with duplicates dropped.
func (v *Vault) ExtractLinks(slug string) (models.LinkRefs, error) {
	refs := models.LinkRefs{Concepts: []string{}, CrossTopic: []string{}}
	content, err := v.load(slug)
	if err != nil {
		return refs, nil // missing topic reads as no links
	}
	slugs, err := v.ListTopics()
	if err != nil {
		return refs, err
	}
	known := make(map[string]struct{}, len(slugs))
	for _, s := range slugs {
		known[s] = struct{}{}
	}

	seen := map[string]struct{}{}
	for _, m := range wikilinkRe.FindAllStringSubmatch(content, -1) {
		target := strings.TrimSpace(m[1])
		if target == "" || target == slug {
			continue
		}
		if _, dup := seen[target]; dup {
			continue
		}
		seen[target] = struct{}{}
		if _, ok := known[target]; ok {
			refs.CrossTopic = append(refs.CrossTopic, target)
		} else {
			refs.Concepts = append(refs.Concepts, target)
		}
	}
	return refs, nil
}

// slugPhrase converts a topic slug to its spoken form: separators become
// spaces, case is folded.
func slugPhrase(slug string) string {
	phrase := strings.NewReplacer("-", " ", "_", " ", "/", " ").Replace(slug)
	return strings.ToLower(phrase)
}

// MatchTopicsInText returns the slugs of existing topics whose phrase form
// appears in text, case-insensitively. This is a best-effort scanner for
// conversational text that never uses link markers; short slugs can false
// positive and that is an accepted tradeoff.
func (v *Vault) MatchTopicsInText(text, excludeSlug string) ([]string, error) {
	slugs, err := v.ListTopics()
	if err != nil {
		return nil, err
	}
	lower := strings.ToLower(text)
	var out []string
	for _, s := range slugs {
		if s == excludeSlug {
			continue
		}
		if strings.Contains(lower, slugPhrase(s)) {
			out = append(out, s)
		}
	}
	return out, nil
}
