package catalog

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/mannaz/internal/checksum"
	"github.com/starford/mannaz/internal/storage"
)

// EventCallback is called after a watcher-driven catalog change.
// kind is one of "created", "updated", "deleted"; slug names the topic.
type EventCallback func(kind string, slug string)

// Watch starts an fsnotify watcher on the vault's topic tree and keeps
// the catalog in sync with external edits (manual editing, git checkouts)
// until ctx is cancelled. It calls cb (if non-nil) after each successful
// catalog mutation.
//
// New directories created at runtime are added to the watch list. Rename
// events trigger a debounced reconciliation pass that removes stale rows
// whose files no longer exist on disk.
func Watch(ctx context.Context, db *DB, store storage.Provider, vaultRoot string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	topicsRoot := filepath.Join(vaultRoot, topicsDir)
	if err := os.MkdirAll(topicsRoot, 0o755); err != nil {
		return err
	}
	if err := addDirsRecursive(w, topicsRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", topicsRoot))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(db, store, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			// New directories (nested subtopics) join the watch list.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					}
					catalogNewDir(db, store, vaultRoot, absPath, logger, cb)
					continue
				}
			}

			if !strings.HasSuffix(absPath, ".md") {
				continue
			}

			rel, relErr := filepath.Rel(vaultRoot, absPath)
			if relErr != nil {
				continue
			}
			slug := slugFromPath(filepath.ToSlash(rel))
			if slug == "" {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := store.Read(filepath.ToSlash(rel))
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("slug", slug), slog.String("error", readErr.Error()))
					continue
				}
				if catErr := catalogFile(db, slug, checksum.Sum(data), data); catErr != nil {
					logger.Warn("watcher: catalog failed", slog.String("slug", slug), slog.String("error", catErr.Error()))
					continue
				}
				kind := "updated"
				if ev.Op&fsnotify.Create != 0 {
					kind = "created"
				}
				logger.Debug("watcher: catalogued", slog.String("slug", slug), slog.String("op", kind))
				if cb != nil {
					cb(kind, slug)
				}

			case ev.Op&fsnotify.Remove != 0:
				if delErr := db.DeleteTopic(slug); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("slug", slug), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("slug", slug))
				if cb != nil {
					cb("deleted", slug)
				}

			case ev.Op&fsnotify.Rename != 0:
				// Rename fires on the old path only; the new path shows up
				// as a separate Create. Drop the old row now and reconcile
				// shortly after for stragglers.
				if delErr := db.DeleteTopic(slug); delErr == nil {
					logger.Debug("watcher: rename old deleted", slog.String("slug", slug))
					if cb != nil {
						cb("deleted", slug)
					}
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcile removes catalog rows without files on disk and catalogs disk
// files missing or changed in the catalog.
func reconcile(db *DB, store storage.Provider, logger *slog.Logger, cb EventCallback) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	metas, err := store.List(topicsDir)
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		if slug := slugFromPath(m.Path); slug != "" {
			disk[slug] = m.Checksum
		}
	}

	for slug := range checksums {
		if _, ok := disk[slug]; !ok {
			if delErr := db.DeleteTopic(slug); delErr == nil {
				logger.Debug("reconcile: removed stale", slog.String("slug", slug))
				if cb != nil {
					cb("deleted", slug)
				}
			}
		}
	}

	for slug, cs := range disk {
		if checksums[slug] == cs {
			continue
		}
		data, readErr := store.Read(topicsDir + "/" + slug + ".md")
		if readErr != nil {
			continue
		}
		if catErr := catalogFile(db, slug, cs, data); catErr == nil {
			logger.Debug("reconcile: catalogued", slog.String("slug", slug))
			if cb != nil {
				cb("created", slug)
			}
		}
	}
}

// catalogNewDir catalogs any .md files found in a newly created directory.
func catalogNewDir(db *DB, store storage.Provider, vaultRoot, dirPath string, logger *slog.Logger, cb EventCallback) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		rel, relErr := filepath.Rel(vaultRoot, path)
		if relErr != nil {
			return nil
		}
		slug := slugFromPath(filepath.ToSlash(rel))
		if slug == "" {
			return nil
		}
		data, readErr := store.Read(filepath.ToSlash(rel))
		if readErr != nil {
			return nil
		}
		if catErr := catalogFile(db, slug, checksum.Sum(data), data); catErr == nil {
			logger.Debug("watcher: catalogued from new dir", slog.String("slug", slug))
			if cb != nil {
				cb("created", slug)
			}
		}
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
