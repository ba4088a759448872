// Package insight generates AI summaries and encouragement for the
// dashboards via an external text-completion service. Every call has a
// deterministic fallback string: an absent credential or a failed
// request never surfaces as an error to the caller.
package insight

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bganesh/bprogress/internal/models"
)

// DefaultModel is the completion model used for all insight calls.
const DefaultModel = "gemini-3-flash-preview"

// Fallback strings, returned verbatim per failure mode.
const (
	fallbackNoKey          = "AI Summary unavailable (No API Key)."
	fallbackNoJournals     = "No journal entries yet."
	fallbackSummaryFailed  = "Summary unavailable."
	fallbackNoKeyDaily     = "Keep pushing forward!"
	fallbackInspireFailed  = "Keep pushing forward, you're doing great!"
)

// Completer is the external text-completion collaborator.
type Completer interface {
	// Complete sends a prompt to the named model and returns the
	// completion text.
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// Service produces insight strings for the dashboards. A nil completer
// means no credential was configured.
type Service struct {
	completer Completer
	log       *zap.Logger
}

// NewService constructs an insight service. completer may be nil.
func NewService(completer Completer, log *zap.Logger) *Service {
	return &Service{completer: completer, log: log}
}

// JournalSummary summarizes a friend's recent mental state for the
// supporter from their last five journaled records.
func (s *Service) JournalSummary(ctx context.Context, user *models.User, records []models.ProgressRecord) string {
	if s.completer == nil {
		return fallbackNoKey
	}

	var journals []string
	for _, r := range records {
		if r.DayJournal == "" {
			continue
		}
		journals = append(journals, fmt.Sprintf("Date: %s, Journal: %s", r.Date, r.DayJournal))
		if len(journals) == 5 {
			break
		}
	}
	if len(journals) == 0 {
		return fallbackNoJournals
	}

	prompt := fmt.Sprintf(`Summarize the recent mental state and progress of %s based on these journals:
%s

Identify if they are feeling overwhelmed, motivated, or stagnant. Keep it concise for a Supporter/Coach.`,
		user.Name, strings.Join(journals, "\n\n"))

	text, err := s.completer.Complete(ctx, DefaultModel, prompt)
	if err != nil {
		s.log.Warn("journal summary failed", zap.String("user", user.ID), zap.Error(err))
		return fallbackSummaryFailed
	}
	return text
}

// DailyInspiration returns one encouraging sentence for a friend based
// on today's record.
func (s *Service) DailyInspiration(ctx context.Context, record models.ProgressRecord) string {
	if s.completer == nil {
		return fallbackNoKeyDaily
	}

	prompt := fmt.Sprintf(`The user completed these tasks: %d tasks.
They spent %d minutes.
Their journal was: %q.

Give them one punchy, highly encouraging sentence to keep them going tomorrow.`,
		len(record.TasksCompleted), record.TimeSpentMinutes, record.DayJournal)

	text, err := s.completer.Complete(ctx, DefaultModel, prompt)
	if err != nil {
		s.log.Warn("daily inspiration failed", zap.String("user", record.UserID), zap.Error(err))
		return fallbackInspireFailed
	}
	return text
}
