// Package catalog holds the process-wide static configuration: the task
// catalog, the seeded supporter account and the motivational quotes.
package catalog

import (
	"time"

	"github.com/bganesh/bprogress/internal/models"
)

// Namespace prefixes every local persistence key.
const Namespace = "b-progress-v2-data"

// Tasks is the static task catalog. It is configuration, not per-user
// data: every merged or loaded document carries exactly these tasks.
func Tasks() []models.Task {
	return []models.Task{
		{ID: "t1", Title: "Deep Work Session", Category: "Core"},
		{ID: "t2", Title: "Technical Reading", Category: "Learning"},
		{ID: "t3", Title: "Physical Activity", Category: "Health"},
		{ID: "t4", Title: "Personal Project", Category: "Growth"},
	}
}

// SeedUsers returns the bootstrap user roster: the single supporter
// account. Friend accounts are created through sign-up.
func SeedUsers() []models.User {
	return []models.User{
		{
			ID:       "admin-1",
			Name:     "Admin Supporter",
			Username: "boniganesh812@gmail.com",
			Password: "BONIGANESH812@GMAIL.COM",
			Role:     models.RoleAdmin,
			JoinedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}
}

// Quotes are rotated by day of month for the daily quote view.
var Quotes = []string{
	"Consistency is better than perfection.",
	"Your only limit is your mind.",
	"Small steps every day lead to big results.",
	"Discipline is choosing between what you want now and what you want most.",
	"The secret of getting ahead is getting started.",
}
