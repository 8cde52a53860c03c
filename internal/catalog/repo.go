package catalog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/starford/mannaz/internal/models"
)

// UpsertTopic inserts or replaces one topic row.
func (db *DB) UpsertTopic(m models.TopicMeta) error {
	_, err := db.conn.Exec(`
		INSERT INTO topics (slug, type, created, last_session, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			type         = excluded.type,
			created      = excluded.created,
			last_session = excluded.last_session,
			checksum     = excluded.checksum,
			updated_at   = excluded.updated_at
	`, m.Slug, string(m.Type), m.Created, m.LastSession, m.Checksum, time.Now())
	if err != nil {
		return fmt.Errorf("catalog: upsert topic: %w", err)
	}
	return nil
}

// DeleteTopic removes a topic row.
func (db *DB) DeleteTopic(slug string) error {
	if _, err := db.conn.Exec(`DELETE FROM topics WHERE slug = ?`, slug); err != nil {
		return fmt.Errorf("catalog: delete topic: %w", err)
	}
	return nil
}

// ListTopics returns every catalogued topic, most recently studied first.
// last_session is a liveness signal for ordering, never a correctness
// field, so ties fall back to slug order.
func (db *DB) ListTopics() ([]models.TopicMeta, error) {
	rows, err := db.conn.Query(`
		SELECT slug, type, created, last_session, checksum, updated_at
		FROM topics
		ORDER BY last_session DESC, slug ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list topics: %w", err)
	}
	defer rows.Close()

	var out []models.TopicMeta
	for rows.Next() {
		var m models.TopicMeta
		var typ string
		if err := rows.Scan(&m.Slug, &typ, &m.Created, &m.LastSession, &m.Checksum, &m.UpdatedAt); err != nil {
			return nil, err
		}
		m.Type = models.TopicType(typ)
		out = append(out, m)
	}
	return out, rows.Err()
}

// AllChecksums returns slug → checksum for every catalogued topic.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT slug, checksum FROM topics`)
	if err != nil {
		return nil, fmt.Errorf("catalog: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var slug, cs string
		if err := rows.Scan(&slug, &cs); err != nil {
			return nil, err
		}
		out[slug] = cs
	}
	return out, rows.Err()
}

// RecordSession persists one session's counters for later reporting.
func (db *DB) RecordSession(stats models.SessionStats) error {
	moves, _ := json.Marshal(stats.Understanding)
	subs, _ := json.Marshal(stats.SubtopicsCreated)
	_, err := db.conn.Exec(`
		INSERT INTO sessions (topic, concepts_added, sources_added, synthesis_entries, understanding, subtopics)
		VALUES (?, ?, ?, ?, ?, ?)
	`, stats.Topic, stats.ConceptsAdded, stats.SourcesAdded, stats.SynthesisEntries, string(moves), string(subs))
	if err != nil {
		return fmt.Errorf("catalog: record session: %w", err)
	}
	return nil
}

// SessionRecord is one persisted session row.
type SessionRecord struct {
	ID         int64               `json:"id"`
	Topic      string              `json:"topic"`
	RecordedAt time.Time           `json:"recorded_at"`
	Stats      models.SessionStats `json:"stats"`
}

// ListSessions returns the most recent session records, newest first.
// topic filters to one topic when non-empty; limit <= 0 means 20.
func (db *DB) ListSessions(topic string, limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, topic, recorded_at, concepts_added, sources_added, synthesis_entries, understanding, subtopics
		FROM sessions`
	args := []any{}
	if topic != "" {
		query += ` WHERE topic = ?`
		args = append(args, topic)
	}
	query += ` ORDER BY recorded_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var moves, subs string
		if err := rows.Scan(&rec.ID, &rec.Topic, &rec.RecordedAt,
			&rec.Stats.ConceptsAdded, &rec.Stats.SourcesAdded, &rec.Stats.SynthesisEntries,
			&moves, &subs); err != nil {
			return nil, err
		}
		rec.Stats.Topic = rec.Topic
		_ = json.Unmarshal([]byte(moves), &rec.Stats.Understanding)
		_ = json.Unmarshal([]byte(subs), &rec.Stats.SubtopicsCreated)
		out = append(out, rec)
	}
	return out, rows.Err()
}
