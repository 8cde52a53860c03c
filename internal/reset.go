package internal

import (
	"fmt"

	"github.com/starford/mannaz/internal/catalog"
	"github.com/starford/mannaz/internal/storage"
	"github.com/starford/mannaz/internal/vault"
)

// RunResetTopic blanks one topic note back to its template, preserving
// the created date and type.
func RunResetTopic(cfg *Config, slug string) (string, error) {
	v, err := openVault(cfg)
	if err != nil {
		return "", err
	}
	if err := v.ResetTopic(slug); err != nil {
		return "", err
	}
	return fmt.Sprintf("Topic '%s' reset to template.", slug), nil
}

// RunResetAll deletes every topic note and the matching catalog rows.
func RunResetAll(cfg *Config) (string, error) {
	v, err := openVault(cfg)
	if err != nil {
		return "", err
	}
	n, err := v.ResetAllTopics()
	if err != nil {
		return "", err
	}
	if err := resetCatalog(cfg); err != nil {
		return "", err
	}
	return fmt.Sprintf("Deleted %d topic note(s).", n), nil
}

// RunResetDaily deletes every daily log.
func RunResetDaily(cfg *Config) (string, error) {
	v, err := openVault(cfg)
	if err != nil {
		return "", err
	}
	n, err := v.ResetDailyLogs()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Deleted %d daily log(s).", n), nil
}

// RunResetProfile restores the blank learner profile template.
func RunResetProfile(cfg *Config) (string, error) {
	v, err := openVault(cfg)
	if err != nil {
		return "", err
	}
	if err := v.ResetProfile(); err != nil {
		return "", err
	}
	return "Learner profile reset.", nil
}

func openVault(cfg *Config) (*vault.Vault, error) {
	if err := vault.EnsureStructure(cfg.Vault.Path); err != nil {
		return nil, fmt.Errorf("create vault dirs: %w", err)
	}
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return vault.New(store), nil
}

// resetCatalog drops every topic row after a full vault reset.
func resetCatalog(cfg *Config) error {
	db, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("init catalog: %w", err)
	}
	defer db.Close()

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}
	for slug := range checksums {
		if err := db.DeleteTopic(slug); err != nil {
			return err
		}
	}
	return nil
}
