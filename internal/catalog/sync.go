package catalog

import (
	"log/slog"
	"strings"

	"github.com/starford/mannaz/internal/frontmatter"
	"github.com/starford/mannaz/internal/models"
	"github.com/starford/mannaz/internal/storage"
)

const topicsDir = "topics"

// slugFromPath maps a topic file path to its slug, or "" for files outside
// the topics tree.
func slugFromPath(path string) string {
	if !strings.HasPrefix(path, topicsDir+"/") || !strings.HasSuffix(path, ".md") {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(path, topicsDir+"/"), ".md")
}

// catalogFile parses a topic document's front matter into its catalog row.
func catalogFile(db *DB, slug, checksum string, data []byte) error {
	fm := frontmatter.Parse(string(data))
	typ := models.TopicType(fm["type"])
	if !typ.Valid() {
		typ = models.TypeConcept
	}
	return db.UpsertTopic(models.TopicMeta{
		Slug:        slug,
		Type:        typ,
		Created:     fm["created"],
		LastSession: fm["last_session"],
		Checksum:    checksum,
	})
}

// Sync walks the vault's topic tree and brings the catalog up to date:
//   - new/changed documents are re-parsed and upserted
//   - rows whose files vanished from disk are removed
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List(topicsDir)
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		slug := slugFromPath(m.Path)
		if slug == "" {
			continue
		}
		disk[slug] = struct{}{}

		if checksums[slug] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := catalogFile(db, slug, m.Checksum, data); err != nil {
			logger.Warn("sync: catalog failed", slog.String("slug", slug), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: catalogued", slog.String("slug", slug))
		}
	}

	// Remove stale rows.
	for slug := range checksums {
		if _, ok := disk[slug]; !ok {
			if err := db.DeleteTopic(slug); err != nil {
				logger.Warn("sync: delete failed", slog.String("slug", slug), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("slug", slug))
			}
		}
	}

	return nil
}
