// Package tracker applies user edits to the in-memory document: daily
// progress upserts, messaging, status broadcasts and group management.
// Every operation validates its input fully before touching the
// document, so a rejected call leaves no partial mutation behind.
package tracker

import (
	"errors"
	"strings"
	"time"

	"github.com/bganesh/bprogress/internal/models"
)

// ValidationError rejects an edit before any write is attempted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// IsValidationError reports whether err is an edit rejection.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// RecordUpdate is a partial edit for one (user, date) progress record.
// Nil fields keep their current value.
type RecordUpdate struct {
	UserID           string
	Date             string
	TasksCompleted   *[]string
	TimeSpentMinutes *int
	Remarks          *string
	DayJournal       *string
	Mood             *models.Mood
}

// UpsertRecord applies a partial update to the record identified by
// (UserID, Date). An existing record is updated in place; otherwise a
// record is created lazily. The record count never grows for a pair
// that already exists.
func UpsertRecord(doc *models.Document, update RecordUpdate) error {
	if update.UserID == "" || update.Date == "" {
		return &ValidationError{Reason: "record needs a user and a date"}
	}
	if _, err := time.Parse("2006-01-02", update.Date); err != nil {
		return &ValidationError{Reason: "record date must be YYYY-MM-DD"}
	}
	if update.TimeSpentMinutes != nil && *update.TimeSpentMinutes < 0 {
		return &ValidationError{Reason: "time spent cannot be negative"}
	}
	if update.Mood != nil && *update.Mood != "" && !validMood(*update.Mood) {
		return &ValidationError{Reason: "unknown mood label"}
	}

	for i := range doc.Records {
		r := &doc.Records[i]
		if r.UserID == update.UserID && r.Date == update.Date {
			applyUpdate(r, update)
			return nil
		}
	}

	record := models.ProgressRecord{
		ID:             models.NewEntityID(),
		UserID:         update.UserID,
		Date:           update.Date,
		TasksCompleted: []string{},
	}
	applyUpdate(&record, update)
	doc.Records = append(doc.Records, record)
	return nil
}

// SendMessage appends a directed message. Content is required unless an
// attachment is present; an attachment sent without text gets a
// "Shared a file" caption. Messages are immutable once created.
func SendMessage(doc *models.Document, senderID, receiverID, content string, attachment *models.Attachment) (*models.Message, error) {
	if senderID == "" || receiverID == "" {
		return nil, &ValidationError{Reason: "message needs a sender and a receiver"}
	}
	if strings.TrimSpace(content) == "" && attachment == nil {
		return nil, &ValidationError{Reason: "message needs text or an attachment"}
	}
	if strings.TrimSpace(content) == "" && attachment != nil {
		content = "Shared a file: " + attachment.Name
	}

	msg := models.Message{
		ID:         models.NewTimelineID(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Attachment: attachment,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	doc.Messages = append(doc.Messages, msg)
	return &msg, nil
}

// PostStatus appends a broadcast status update, denormalizing the
// author's display name at creation time. Text or an attachment is
// required.
func PostStatus(doc *models.Document, author *models.User, content string, attachment *models.Attachment) (*models.StatusUpdate, error) {
	if author == nil || author.ID == "" {
		return nil, &ValidationError{Reason: "status needs an author"}
	}
	if strings.TrimSpace(content) == "" && attachment == nil {
		return nil, &ValidationError{Reason: "status needs text or an attachment"}
	}

	status := models.StatusUpdate{
		ID:         models.NewTimelineID(),
		UserID:     author.ID,
		UserName:   author.Name,
		Content:    content,
		Attachment: attachment,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	doc.Statuses = append(doc.Statuses, status)
	return &status, nil
}

// CreateGroup adds a new group. Only the supporter may manage groups.
func CreateGroup(doc *models.Document, actor *models.User, name, description string, memberIDs []string) (*models.Group, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Reason: "group needs a name"}
	}

	group := models.Group{
		ID:          models.NewEntityID(),
		Name:        name,
		Description: description,
		MemberIDs:   append([]string{}, memberIDs...),
		Posts:       []models.GroupPost{},
	}
	doc.Groups = append(doc.Groups, group)
	return &group, nil
}

// PostToGroup appends a post to the group's ordered post sequence.
func PostToGroup(doc *models.Document, actor *models.User, groupID, content string, attachment *models.Attachment) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" && attachment == nil {
		return &ValidationError{Reason: "post needs text or an attachment"}
	}

	for i := range doc.Groups {
		if doc.Groups[i].ID != groupID {
			continue
		}
		doc.Groups[i].Posts = append(doc.Groups[i].Posts, models.GroupPost{
			ID:         models.NewTimelineID(),
			Content:    content,
			Attachment: attachment,
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			AuthorID:   actor.ID,
		})
		return nil
	}
	return &ValidationError{Reason: "unknown group"}
}

// SetGroupMembers replaces the group's member set wholesale. Toggling a
// single member means computing the new set and submitting all of it.
func SetGroupMembers(doc *models.Document, actor *models.User, groupID string, memberIDs []string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	for i := range doc.Groups {
		if doc.Groups[i].ID == groupID {
			doc.Groups[i].MemberIDs = append([]string{}, memberIDs...)
			return nil
		}
	}
	return &ValidationError{Reason: "unknown group"}
}

func requireAdmin(actor *models.User) error {
	if actor == nil || actor.Role != models.RoleAdmin {
		return &ValidationError{Reason: "only the supporter can manage groups"}
	}
	return nil
}

func applyUpdate(r *models.ProgressRecord, update RecordUpdate) {
	if update.TasksCompleted != nil {
		r.TasksCompleted = append([]string{}, (*update.TasksCompleted)...)
	}
	if update.TimeSpentMinutes != nil {
		r.TimeSpentMinutes = *update.TimeSpentMinutes
	}
	if update.Remarks != nil {
		r.Remarks = *update.Remarks
	}
	if update.DayJournal != nil {
		r.DayJournal = *update.DayJournal
	}
	if update.Mood != nil {
		r.Mood = *update.Mood
	}
}

func validMood(m models.Mood) bool {
	for _, known := range models.Moods {
		if m == known {
			return true
		}
	}
	return false
}
