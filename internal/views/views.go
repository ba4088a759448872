// Package views holds the derived computations the dashboards are built
// from. All functions are pure: they take the loaded document plus an
// evaluation-time clock and perform no I/O.
package views

import (
	"sort"
	"time"

	"github.com/bganesh/bprogress/internal/catalog"
	"github.com/bganesh/bprogress/internal/models"
)

// ActiveWindow is how long a status update stays in the active view.
// Expired statuses are retained in the document for audit.
const ActiveWindow = 24 * time.Hour

// DateLayout is the calendar-day format used by progress records.
const DateLayout = "2006-01-02"

// ActiveStatuses filters statuses still inside the 24-hour window at
// now. Recompute on every view; the result must never be cached past
// its evaluation instant.
func ActiveStatuses(statuses []models.StatusUpdate, now time.Time) []models.StatusUpdate {
	active := make([]models.StatusUpdate, 0, len(statuses))
	for _, s := range statuses {
		t, err := time.Parse(time.RFC3339, s.Timestamp)
		if err != nil {
			continue
		}
		if now.Sub(t) < ActiveWindow {
			active = append(active, s)
		}
	}
	return active
}

// Streak counts consecutive calendar days with at least one completed
// task for the given user, walking backward from today.
//
// Dates are de-duplicated and sorted descending. The chain may start at
// today or at yesterday: an unfinished today never breaks the streak.
// From the starting day the dates must be strictly consecutive; the
// first gap terminates the count.
func Streak(records []models.ProgressRecord, userID string, today time.Time) int {
	seen := make(map[string]bool)
	var dates []string
	for _, r := range records {
		if r.UserID != userID || len(r.TasksCompleted) == 0 || seen[r.Date] {
			continue
		}
		seen[r.Date] = true
		dates = append(dates, r.Date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	count := 0
	started := false
	expected := 0
	for _, date := range dates {
		d, err := time.Parse(DateLayout, date)
		if err != nil {
			break
		}
		diff := int(midnight.Sub(d).Hours() / 24)
		if !started {
			// Future-dated records never seed a streak.
			if diff < 0 || diff > 1 {
				break
			}
			expected = diff
			started = true
		}
		if diff != expected {
			break
		}
		count++
		expected++
	}
	return count
}

// Conversation returns the messages exchanged between a and b, in
// ascending timestamp order. The pair is unordered:
// Conversation(m, a, b) and Conversation(m, b, a) are identical.
func Conversation(messages []models.Message, a, b string) []models.Message {
	conv := make([]models.Message, 0, len(messages))
	for _, m := range messages {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			conv = append(conv, m)
		}
	}
	sort.SliceStable(conv, func(i, j int) bool {
		return conv[i].Timestamp < conv[j].Timestamp
	})
	return conv
}

// RecordFor returns the user's record for the given date, or an
// implicit empty record when none exists. The placeholder is never
// persisted; a date only gains a stored record on first edit.
func RecordFor(records []models.ProgressRecord, userID, date string) models.ProgressRecord {
	for _, r := range records {
		if r.UserID == userID && r.Date == date {
			return r
		}
	}
	return models.ProgressRecord{
		ID:             "temp-" + date,
		UserID:         userID,
		Date:           date,
		TasksCompleted: []string{},
	}
}

// MemberGroups returns the groups the user belongs to.
func MemberGroups(groups []models.Group, userID string) []models.Group {
	var mine []models.Group
	for _, g := range groups {
		for _, id := range g.MemberIDs {
			if id == userID {
				mine = append(mine, g)
				break
			}
		}
	}
	return mine
}

// DailyQuote rotates through the catalog quotes by day of month.
func DailyQuote(now time.Time) string {
	return catalog.Quotes[now.Day()%len(catalog.Quotes)]
}
