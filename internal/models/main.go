// Package models defines the core data structures for users, progress
// tracking, messaging, statuses and groups, plus the per-user document
// that is the unit of persistence.
package models

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Role identifies the kind of account a user has.
type Role string

const (
	// RoleAdmin is the supervising "supporter" account. Exactly one is
	// expected per deployment, seeded from the catalog.
	RoleAdmin Role = "ADMIN"
	// RoleFriend is a tracked account that logs daily progress.
	RoleFriend Role = "FRIEND"
)

// Mood is an optional label attached to a daily progress record.
type Mood string

const (
	MoodEnergized  Mood = "Energized"
	MoodGood       Mood = "Good"
	MoodNeutral    Mood = "Neutral"
	MoodTired      Mood = "Tired"
	MoodStruggling Mood = "Struggling"
)

// Moods lists the valid mood labels in display order.
var Moods = []Mood{MoodEnergized, MoodGood, MoodNeutral, MoodTired, MoodStruggling}

// User is an identity record. Role is immutable after creation.
type User struct {
	// ID is the unique, stable identifier for the user. Ids minted by
	// offline sign-up carry the "local-" prefix and are never mirrored
	// remotely.
	ID string `json:"id"`
	// Name is the display name.
	Name string `json:"name"`
	// Username is the login identifier (an email address).
	Username string `json:"username"`
	// Password is only populated for the seeded admin in offline mode.
	Password string `json:"password,omitempty"`
	// Role is ADMIN or FRIEND.
	Role Role `json:"role"`
	// Bio is an optional self-description.
	Bio string `json:"bio,omitempty"`
	// JoinedAt is the account creation instant, RFC 3339.
	JoinedAt string `json:"joinedAt"`
}

// Attachment is an opaque encoded blob. Data holds a self-describing
// data URI (base64) and is passed through unchanged everywhere except
// the boundary that produced it.
type Attachment struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Data string `json:"data"`
}

// Task is a static catalog entry, identical across all users.
type Task struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

// ProgressRecord is one user's log for one calendar date. The
// (UserID, Date) pair is a uniqueness key within a document; a later
// write for the same pair updates in place.
type ProgressRecord struct {
	ID string `json:"id"`
	// UserID is the owning user.
	UserID string `json:"userId"`
	// Date is the calendar day, formatted YYYY-MM-DD.
	Date string `json:"date"`
	// TasksCompleted holds completed task ids; order is irrelevant.
	TasksCompleted []string `json:"tasksCompleted"`
	// TimeSpentMinutes is non-negative.
	TimeSpentMinutes int    `json:"timeSpentMinutes"`
	Remarks          string `json:"remarks"`
	DayJournal       string `json:"dayJournal"`
	// Mood is empty or one of Moods.
	Mood Mood `json:"mood,omitempty"`
}

// Message is a directed, timestamped message between two users.
// Immutable once created.
type Message struct {
	ID         string      `json:"id"`
	SenderID   string      `json:"senderId"`
	ReceiverID string      `json:"receiverId"`
	Content    string      `json:"content"`
	Attachment *Attachment `json:"attachment,omitempty"`
	// Timestamp is an RFC 3339 instant.
	Timestamp string `json:"timestamp"`
}

// StatusUpdate is an ephemeral broadcast. Whether it is "active" is
// derived from its timestamp at view time, never stored; expired
// statuses are retained for audit.
type StatusUpdate struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	// UserName is the author's display name, denormalized at creation.
	UserName   string      `json:"userName"`
	Content    string      `json:"content,omitempty"`
	Attachment *Attachment `json:"attachment,omitempty"`
	Timestamp  string      `json:"timestamp"`
}

// GroupPost is one entry in a group's ordered post sequence.
type GroupPost struct {
	ID         string      `json:"id"`
	Content    string      `json:"content"`
	Attachment *Attachment `json:"attachment,omitempty"`
	Timestamp  string      `json:"timestamp"`
	AuthorID   string      `json:"authorId"`
}

// Group is an admin-owned broadcast group. Membership changes are
// full-set replacements.
type Group struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	MemberIDs   []string    `json:"memberIds"`
	Posts       []GroupPost `json:"posts"`
}

// Document is the full application state persisted for one user id.
// It is the unit of persistence: one document per user, never split.
//
// Owner is the document's owning identity, stamped by the orchestrator
// at save time. The wire name stays "currentUser" for compatibility
// with previously persisted payloads; the live session user is held by
// the orchestrator and never serialized except through this stamp.
type Document struct {
	Users    []User           `json:"users"`
	Tasks    []Task           `json:"tasks"`
	Records  []ProgressRecord `json:"records"`
	Messages []Message        `json:"messages"`
	Groups   []Group          `json:"groups"`
	Statuses []StatusUpdate   `json:"statuses"`
	Owner    *User            `json:"currentUser,omitempty"`
}

// LocalIDPrefix marks user ids minted by offline sign-up. Documents for
// these ids live only in the local store.
const LocalIDPrefix = "local-"

// IsLocalID reports whether id was minted offline and is therefore not
// remote-backed.
func IsLocalID(id string) bool {
	return len(id) >= len(LocalIDPrefix) && id[:len(LocalIDPrefix)] == LocalIDPrefix
}

// NewEntityID returns a collision-resistant id for users, records and
// groups.
func NewEntityID() string {
	return uuid.NewString()
}

// NewTimelineID returns a time-ordered id for messages, statuses and
// group posts. Ids from the same source sort by creation time.
func NewTimelineID() string {
	return ulid.Make().String()
}
