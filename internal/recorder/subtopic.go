package recorder

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/mannaz/internal/models"
)

// PendingSubtopic is a request for confirmation the core emits instead of
// prompting anyone itself. The orchestration layer shows it to the user
// (or applies a transport policy) and calls Confirm or Decline.
type PendingSubtopic struct {
	Parent string `json:"parent"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// FullSlug returns the slug the subtopic would be created under.
func (p PendingSubtopic) FullSlug() string {
	if p.Parent == "" {
		return p.Name
	}
	return p.Parent + "/" + p.Name
}

// SuggestSubtopic validates a subtopic suggestion and returns it as a
// pending confirmation. Nothing is written until Confirm.
func (r *Recorder) SuggestSubtopic(name, reason string) (PendingSubtopic, error) {
	if err := validation.Validate(name, slugRules...); err != nil {
		return PendingSubtopic{}, invalid(fmt.Errorf("subtopic: %v", err))
	}
	return PendingSubtopic{Parent: r.topic, Name: name, Reason: reason}, nil
}

// ConfirmSubtopic creates the suggested subtopic document. A non-empty
// rename overrides the suggested name.
func (r *Recorder) ConfirmSubtopic(p PendingSubtopic, rename string) (string, error) {
	if rename != "" {
		if err := validation.Validate(rename, slugRules...); err != nil {
			return "", invalid(fmt.Errorf("subtopic: %v", err))
		}
		p.Name = rename
	}
	full := p.FullSlug()
	if _, err := r.vault.EnsureTopic(full, models.TypeConcept); err != nil {
		return "", err
	}
	r.stats.SubtopicsCreated = append(r.stats.SubtopicsCreated, full)
	return fmt.Sprintf("Subtopic '%s' created. Use this name in subsequent tool calls.", full), nil
}

// DeclineSubtopic reports a declined suggestion without touching the vault.
func (r *Recorder) DeclineSubtopic(PendingSubtopic) string {
	return "User declined — subtopic not created."
}

// AppendDailyLog adds a one-line summary for the session topic to today's
// daily log.
func (r *Recorder) AppendDailyLog(summary string) (string, error) {
	if err := r.vault.AppendDailyLog(r.topic, summary); err != nil {
		return "", err
	}
	return "Daily log updated.", nil
}
