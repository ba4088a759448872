// Package http provides the read-only JSON API the supporter dashboard
// is rendered from: the merged master view, derived computations and
// the backup export. Rendering itself lives outside this system.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bganesh/bprogress/internal/export"
	"github.com/bganesh/bprogress/internal/models"
	"github.com/bganesh/bprogress/internal/views"
)

// DocumentSource exposes the orchestrator's loaded state to the API.
type DocumentSource interface {
	// Document returns the loaded document, or nil before Ready.
	Document() *models.Document
	// CurrentUser returns the session user, or nil.
	CurrentUser() *models.User
}

// InsightService produces AI summaries with deterministic fallbacks.
type InsightService interface {
	JournalSummary(ctx context.Context, user *models.User, records []models.ProgressRecord) string
	DailyInspiration(ctx context.Context, record models.ProgressRecord) string
}

// DashboardHandler serves the dashboard data endpoints.
type DashboardHandler struct {
	State   DocumentSource
	Insight InsightService
}

// MasterView handles GET /api/master and returns the full loaded
// document.
func (h *DashboardHandler) MasterView(w http.ResponseWriter, r *http.Request) {
	doc := h.State.Document()
	if doc == nil {
		http.Error(w, "no document loaded", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, doc)
}

// Streak handles GET /api/friends/{id}/streak.
func (h *DashboardHandler) Streak(w http.ResponseWriter, r *http.Request) {
	doc := h.State.Document()
	if doc == nil {
		http.Error(w, "no document loaded", http.StatusServiceUnavailable)
		return
	}
	userID := chi.URLParam(r, "id")
	writeJSON(w, map[string]int{
		"streak": views.Streak(doc.Records, userID, time.Now().UTC()),
	})
}

// Summary handles GET /api/friends/{id}/summary and returns the AI
// journal summary (or its fallback string).
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	doc := h.State.Document()
	if doc == nil {
		http.Error(w, "no document loaded", http.StatusServiceUnavailable)
		return
	}
	userID := chi.URLParam(r, "id")

	var friend *models.User
	for i := range doc.Users {
		if doc.Users[i].ID == userID {
			friend = &doc.Users[i]
			break
		}
	}
	if friend == nil {
		http.Error(w, "unknown user", http.StatusNotFound)
		return
	}

	var records []models.ProgressRecord
	for _, rec := range doc.Records {
		if rec.UserID == userID {
			records = append(records, rec)
		}
	}
	writeJSON(w, map[string]string{
		"summary": h.Insight.JournalSummary(r.Context(), friend, records),
	})
}

// Inspiration handles GET /api/friends/{id}/inspiration: one
// encouraging sentence based on today's record (or its fallback
// string).
func (h *DashboardHandler) Inspiration(w http.ResponseWriter, r *http.Request) {
	doc := h.State.Document()
	if doc == nil {
		http.Error(w, "no document loaded", http.StatusServiceUnavailable)
		return
	}
	userID := chi.URLParam(r, "id")
	today := time.Now().UTC().Format(views.DateLayout)
	record := views.RecordFor(doc.Records, userID, today)
	writeJSON(w, map[string]string{
		"inspiration": h.Insight.DailyInspiration(r.Context(), record),
	})
}

// ActiveStatuses handles GET /api/statuses/active: statuses inside the
// 24-hour window, evaluated at request time.
func (h *DashboardHandler) ActiveStatuses(w http.ResponseWriter, r *http.Request) {
	doc := h.State.Document()
	if doc == nil {
		http.Error(w, "no document loaded", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, views.ActiveStatuses(doc.Statuses, time.Now().UTC()))
}

// Conversation handles GET /api/conversations/{a}/{b}: the
// timestamp-ascending message exchange between two users.
func (h *DashboardHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	doc := h.State.Document()
	if doc == nil {
		http.Error(w, "no document loaded", http.StatusServiceUnavailable)
		return
	}
	a := chi.URLParam(r, "a")
	b := chi.URLParam(r, "b")
	writeJSON(w, views.Conversation(doc.Messages, a, b))
}

// Export handles GET /api/export and returns the pretty-printed backup
// dump as a download.
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	doc := h.State.Document()
	if doc == nil {
		http.Error(w, "no document loaded", http.StatusServiceUnavailable)
		return
	}
	name, body, err := export.Dump(doc, time.Now().UTC())
	if err != nil {
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(body)
}

// Quote handles GET /api/quote: the motivational quote of the day.
func (h *DashboardHandler) Quote(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"quote": views.DailyQuote(time.Now().UTC())})
}

// Health handles GET /health.
func (h *DashboardHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
