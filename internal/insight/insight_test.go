package insight

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/bganesh/bprogress/internal/models"
)

type failingCompleter struct{}

func (failingCompleter) Complete(context.Context, string, string) (string, error) {
	return "", errors.New("quota exceeded")
}

type cannedCompleter struct {
	text   string
	prompt string
}

func (c *cannedCompleter) Complete(_ context.Context, _ string, prompt string) (string, error) {
	c.prompt = prompt
	return c.text, nil
}

func journaled(date, journal string) models.ProgressRecord {
	return models.ProgressRecord{ID: "r-" + date, UserID: "u1", Date: date, DayJournal: journal}
}

func TestJournalSummary_NoCredential(t *testing.T) {
	svc := NewService(nil, zap.NewNop())
	got := svc.JournalSummary(context.Background(), &models.User{ID: "u1"}, []models.ProgressRecord{journaled("2026-08-29", "tough day")})
	if got != "AI Summary unavailable (No API Key)." {
		t.Errorf("summary = %q; want the no-key fallback", got)
	}
}

func TestJournalSummary_NoJournals(t *testing.T) {
	svc := NewService(&cannedCompleter{text: "unused"}, zap.NewNop())
	got := svc.JournalSummary(context.Background(), &models.User{ID: "u1"}, []models.ProgressRecord{
		{ID: "r1", UserID: "u1", Date: "2026-08-29"},
	})
	if got != "No journal entries yet." {
		t.Errorf("summary = %q; want the empty-journal fallback", got)
	}
}

func TestJournalSummary_CompletionFailure(t *testing.T) {
	svc := NewService(failingCompleter{}, zap.NewNop())
	got := svc.JournalSummary(context.Background(), &models.User{ID: "u1"}, []models.ProgressRecord{journaled("2026-08-29", "tough day")})
	if got != "Summary unavailable." {
		t.Errorf("summary = %q; want the failure fallback", got)
	}
}

func TestJournalSummary_UsesAtMostFiveJournals(t *testing.T) {
	completer := &cannedCompleter{text: "looks motivated"}
	svc := NewService(completer, zap.NewNop())

	records := []models.ProgressRecord{
		journaled("2026-08-29", "one"),
		journaled("2026-08-28", "two"),
		journaled("2026-08-27", "three"),
		journaled("2026-08-26", "four"),
		journaled("2026-08-25", "five"),
		journaled("2026-08-24", "six"),
	}
	got := svc.JournalSummary(context.Background(), &models.User{ID: "u1", Name: "User One"}, records)
	if got != "looks motivated" {
		t.Errorf("summary = %q; want the completion text", got)
	}
	if strings.Contains(completer.prompt, "six") {
		t.Errorf("prompt should include at most five journals:\n%s", completer.prompt)
	}
	if !strings.Contains(completer.prompt, "User One") {
		t.Errorf("prompt should name the friend:\n%s", completer.prompt)
	}
}

func TestDailyInspiration_Fallbacks(t *testing.T) {
	record := models.ProgressRecord{UserID: "u1", TasksCompleted: []string{"t1"}, TimeSpentMinutes: 45}

	if got := NewService(nil, zap.NewNop()).DailyInspiration(context.Background(), record); got != "Keep pushing forward!" {
		t.Errorf("no-key fallback = %q", got)
	}
	if got := NewService(failingCompleter{}, zap.NewNop()).DailyInspiration(context.Background(), record); got != "Keep pushing forward, you're doing great!" {
		t.Errorf("failure fallback = %q", got)
	}
}

func TestGeminiClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "models/"+DefaultModel) {
			t.Errorf("path = %q; want the model in the path", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("key = %q", r.URL.Query().Get("key"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"You did great today."}]}}]}`))
	}))
	defer server.Close()

	client := NewGeminiClientWithBaseURL("test-key", server.URL)
	got, err := client.Complete(context.Background(), DefaultModel, "encourage me")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "You did great today." {
		t.Errorf("completion = %q", got)
	}
}

func TestGeminiClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewGeminiClientWithBaseURL("test-key", server.URL)
	if _, err := client.Complete(context.Background(), DefaultModel, "x"); err == nil {
		t.Errorf("expected error on non-200 status")
	}
}
