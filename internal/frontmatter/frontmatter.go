// Package frontmatter reads and writes the YAML metadata block at the
// head of a vault document. The block is delimited by "---" marker lines;
// a document without markers is all body.
package frontmatter

import (
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const delim = "---"

// Split separates the raw front-matter text (without delimiters) from the
// document body. A missing or unterminated block yields ("", content).
func Split(content string) (fm, body string) {
	if !strings.HasPrefix(content, delim) {
		return "", content
	}
	end := strings.Index(content[len(delim):], "\n"+delim)
	if end < 0 {
		return "", content
	}
	end += len(delim)
	fm = strings.TrimSpace(content[len(delim):end])
	body = strings.TrimLeft(content[end+len(delim)+1:], "\n")
	return fm, body
}

// Join recombines front-matter text and body into a full document.
// Empty front matter yields the body unchanged.
func Join(fm, body string) string {
	if fm == "" {
		return body
	}
	return delim + "\n" + fm + "\n" + delim + "\n" + body
}

// Parse returns the front-matter mapping of a document. Values decode as
// their raw scalar text: a bare date like 2025-01-15 stays exactly that
// string instead of resolving to a timestamp. Malformed YAML is treated as
// an empty mapping, never an error: the body must survive intact.
func Parse(content string) map[string]string {
	fm, _ := Split(content)
	if fm == "" {
		return map[string]string{}
	}
	out := map[string]string{}
	if err := yaml.Unmarshal([]byte(fm), &out); err != nil {
		return map[string]string{}
	}
	return out
}

// Set returns the document with key set to value in its front matter,
// preserving every other key. The whole mapping is re-serialized with
// deterministic (sorted) key order; the body is untouched.
func Set(content, key, value string) string {
	fmStr, body := Split(content)
	fm := map[string]string{}
	if fmStr != "" {
		parsed := map[string]string{}
		if err := yaml.Unmarshal([]byte(fmStr), &parsed); err == nil {
			fm = parsed
		}
	}
	fm[key] = value

	keys := make([]string, 0, len(fm))
	for k := range fm {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(scalar(fm[k]))
		b.WriteString("\n")
	}
	return Join(strings.TrimRight(b.String(), "\n"), body)
}

// scalar renders a value so it round-trips through YAML. Values that could
// be misread (colons, leading/trailing space, empty) are quoted.
func scalar(v string) string {
	if v == "" {
		return `""`
	}
	if strings.ContainsAny(v, ":#\"'\n") || v != strings.TrimSpace(v) {
		out, err := yaml.Marshal(v)
		if err == nil {
			return strings.TrimRight(string(out), "\n")
		}
	}
	return v
}
