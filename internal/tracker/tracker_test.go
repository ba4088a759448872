package tracker

import (
	"reflect"
	"testing"

	"github.com/bganesh/bprogress/internal/models"
)

func strptr(s string) *string       { return &s }
func intptr(i int) *int             { return &i }
func tasks(ids ...string) *[]string { return &ids }

func admin() *models.User {
	return &models.User{ID: "admin-1", Name: "Supporter", Role: models.RoleAdmin}
}

func friend() *models.User {
	return &models.User{ID: "u1", Name: "User One", Role: models.RoleFriend}
}

func TestUpsertRecord_CreateThenUpdate(t *testing.T) {
	doc := &models.Document{}

	if err := UpsertRecord(doc, RecordUpdate{
		UserID: "u1", Date: "2026-08-30",
		TasksCompleted: tasks("t1"), TimeSpentMinutes: intptr(30),
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(doc.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(doc.Records))
	}
	if doc.Records[0].ID == "" {
		t.Errorf("created record has no id")
	}

	// A second write for the same (user, date) updates in place.
	if err := UpsertRecord(doc, RecordUpdate{
		UserID: "u1", Date: "2026-08-30",
		DayJournal: strptr("reflections"),
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(doc.Records) != 1 {
		t.Fatalf("upsert duplicated the record: %d", len(doc.Records))
	}
	got := doc.Records[0]
	if got.DayJournal != "reflections" {
		t.Errorf("journal = %q; want updated value", got.DayJournal)
	}
	if !reflect.DeepEqual(got.TasksCompleted, []string{"t1"}) || got.TimeSpentMinutes != 30 {
		t.Errorf("partial update clobbered untouched fields: %+v", got)
	}

	// A different date is a new record.
	if err := UpsertRecord(doc, RecordUpdate{UserID: "u1", Date: "2026-08-31", Mood: moodptr(models.MoodGood)}); err != nil {
		t.Fatalf("second create failed: %v", err)
	}
	if len(doc.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(doc.Records))
	}
}

func moodptr(m models.Mood) *models.Mood { return &m }

func TestUpsertRecord_Validation(t *testing.T) {
	doc := &models.Document{}
	cases := []RecordUpdate{
		{Date: "2026-08-30"},                                                // no user
		{UserID: "u1"},                                                      // no date
		{UserID: "u1", Date: "30/08/2026"},                                  // wrong format
		{UserID: "u1", Date: "2026-08-30", TimeSpentMinutes: intptr(-5)},    // negative
		{UserID: "u1", Date: "2026-08-30", Mood: moodptr(models.Mood("Meh"))}, // unknown label
	}
	for i, update := range cases {
		err := UpsertRecord(doc, update)
		if !IsValidationError(err) {
			t.Errorf("case %d: err = %v; want ValidationError", i, err)
		}
	}
	if len(doc.Records) != 0 {
		t.Errorf("rejected edits must not mutate the document: %+v", doc.Records)
	}
}

func TestSendMessage(t *testing.T) {
	doc := &models.Document{}

	msg, err := SendMessage(doc, "u1", "admin-1", "hello", nil)
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if msg.ID == "" || msg.Timestamp == "" {
		t.Errorf("message missing id or timestamp: %+v", msg)
	}
	if len(doc.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(doc.Messages))
	}

	// Attachment-only messages are allowed and get a caption.
	att := &models.Attachment{Name: "pic.png", Type: "image/png", Data: "data:image/png;base64,AAAA"}
	shared, err := SendMessage(doc, "u1", "admin-1", "", att)
	if err != nil {
		t.Errorf("attachment-only message rejected: %v", err)
	} else if shared.Content != "Shared a file: pic.png" {
		t.Errorf("content = %q; want the shared-file caption", shared.Content)
	}

	// Empty content with no attachment is rejected before any write.
	if _, err := SendMessage(doc, "u1", "admin-1", "   ", nil); !IsValidationError(err) {
		t.Errorf("err = %v; want ValidationError", err)
	}
	if len(doc.Messages) != 2 {
		t.Errorf("rejected message mutated the document")
	}
}

func TestPostStatus_DenormalizesAuthorName(t *testing.T) {
	doc := &models.Document{}
	status, err := PostStatus(doc, friend(), "made progress", nil)
	if err != nil {
		t.Fatalf("PostStatus failed: %v", err)
	}
	if status.UserName != "User One" {
		t.Errorf("author name = %q; want denormalized display name", status.UserName)
	}

	if _, err := PostStatus(doc, friend(), "", nil); !IsValidationError(err) {
		t.Errorf("empty status should be rejected, got %v", err)
	}
}

func TestGroupOps_AdminOnly(t *testing.T) {
	doc := &models.Document{}

	if _, err := CreateGroup(doc, friend(), "Runners", "", nil); !IsValidationError(err) {
		t.Errorf("friend created a group: %v", err)
	}

	group, err := CreateGroup(doc, admin(), "Runners", "morning runs", []string{"u1"})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	if err := PostToGroup(doc, friend(), group.ID, "hi", nil); !IsValidationError(err) {
		t.Errorf("friend posted to a group: %v", err)
	}
	if err := PostToGroup(doc, admin(), group.ID, "welcome", nil); err != nil {
		t.Fatalf("PostToGroup failed: %v", err)
	}
	if len(doc.Groups[0].Posts) != 1 {
		t.Errorf("expected 1 post, got %d", len(doc.Groups[0].Posts))
	}

	if err := PostToGroup(doc, admin(), "missing", "x", nil); !IsValidationError(err) {
		t.Errorf("posting to unknown group should fail: %v", err)
	}
}

func TestSetGroupMembers_FullReplacement(t *testing.T) {
	doc := &models.Document{}
	group, err := CreateGroup(doc, admin(), "Runners", "", []string{"u1", "u2"})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	// Toggling u2 off means submitting the whole new set.
	if err := SetGroupMembers(doc, admin(), group.ID, []string{"u1"}); err != nil {
		t.Fatalf("SetGroupMembers failed: %v", err)
	}
	if !reflect.DeepEqual(doc.Groups[0].MemberIDs, []string{"u1"}) {
		t.Errorf("members = %v; want full replacement", doc.Groups[0].MemberIDs)
	}

	if err := SetGroupMembers(doc, friend(), group.ID, nil); !IsValidationError(err) {
		t.Errorf("friend changed membership: %v", err)
	}
}
