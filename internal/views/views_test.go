package views

import (
	"reflect"
	"testing"
	"time"

	"github.com/bganesh/bprogress/internal/models"
)

var today = time.Date(2026, time.August, 30, 15, 4, 5, 0, time.UTC)

func record(userID, date string, tasks ...string) models.ProgressRecord {
	return models.ProgressRecord{
		ID: "r-" + date, UserID: userID, Date: date, TasksCompleted: tasks,
	}
}

func day(offset int) string {
	return today.AddDate(0, 0, offset).Format(DateLayout)
}

func TestStreak_ConsecutiveDays(t *testing.T) {
	// T, T-1, T-2 logged; T-3 missing → 3.
	records := []models.ProgressRecord{
		record("u1", day(0), "t1"),
		record("u1", day(-1), "t1"),
		record("u1", day(-2), "t2"),
		record("u1", day(-4), "t1"),
	}
	if got := Streak(records, "u1", today); got != 3 {
		t.Errorf("Streak = %d; want 3", got)
	}
}

func TestStreak_TodayAbsenceTolerated(t *testing.T) {
	// Nothing today, but T-1 and T-2 logged → still 2: an unfinished
	// today never breaks the chain.
	records := []models.ProgressRecord{
		record("u1", day(-1), "t1"),
		record("u1", day(-2), "t1"),
	}
	if got := Streak(records, "u1", today); got != 2 {
		t.Errorf("Streak = %d; want 2", got)
	}
}

func TestStreak_GapBreaks(t *testing.T) {
	// Only T-2 logged: the gap at T-1 terminates the count at zero.
	records := []models.ProgressRecord{record("u1", day(-2), "t1")}
	if got := Streak(records, "u1", today); got != 0 {
		t.Errorf("Streak = %d; want 0", got)
	}
}

func TestStreak_FutureDatesDoNotSeed(t *testing.T) {
	// A future-dated record must not start or extend a streak.
	if got := Streak([]models.ProgressRecord{record("u1", day(1), "t1")}, "u1", today); got != 0 {
		t.Errorf("Streak = %d; want 0 for a future-only record", got)
	}
	records := []models.ProgressRecord{
		record("u1", day(1), "t1"),
		record("u1", day(0), "t1"),
	}
	if got := Streak(records, "u1", today); got != 0 {
		t.Errorf("Streak = %d; want 0 when the newest record is future-dated", got)
	}
}

func TestStreak_MidChainGapTerminates(t *testing.T) {
	// Today and T-2 logged, nothing at T-1: only today counts.
	records := []models.ProgressRecord{
		record("u1", day(0), "t1"),
		record("u1", day(-2), "t1"),
	}
	if got := Streak(records, "u1", today); got != 1 {
		t.Errorf("Streak = %d; want 1", got)
	}
}

func TestStreak_IgnoresOtherUsersAndTasklessDays(t *testing.T) {
	records := []models.ProgressRecord{
		record("u2", day(0), "t1"),
		record("u1", day(0)), // journal only, no completed tasks
	}
	if got := Streak(records, "u1", today); got != 0 {
		t.Errorf("Streak = %d; want 0", got)
	}
}

func TestStreak_DuplicateDatesCountOnce(t *testing.T) {
	records := []models.ProgressRecord{
		record("u1", day(0), "t1"),
		record("u1", day(0), "t2"),
		record("u1", day(-1), "t1"),
	}
	if got := Streak(records, "u1", today); got != 2 {
		t.Errorf("Streak = %d; want 2", got)
	}
}

func status(id string, ts time.Time) models.StatusUpdate {
	return models.StatusUpdate{ID: id, UserID: "u1", Timestamp: ts.Format(time.RFC3339)}
}

func TestActiveStatuses_Window(t *testing.T) {
	now := today
	statuses := []models.StatusUpdate{
		status("fresh", now.Add(-23*time.Hour-59*time.Minute)),
		status("stale", now.Add(-24*time.Hour-time.Minute)),
		status("boundary", now.Add(-24*time.Hour)),
	}
	active := ActiveStatuses(statuses, now)

	if len(active) != 1 || active[0].ID != "fresh" {
		t.Errorf("active = %+v; want only the 23h59m-old status", active)
	}
}

func TestActiveStatuses_SkipsUnparseable(t *testing.T) {
	statuses := []models.StatusUpdate{{ID: "bad", Timestamp: "yesterday-ish"}}
	if active := ActiveStatuses(statuses, today); len(active) != 0 {
		t.Errorf("active = %+v; want none", active)
	}
}

func TestConversation_PairSymmetry(t *testing.T) {
	messages := []models.Message{
		{ID: "m3", SenderID: "a", ReceiverID: "b", Timestamp: "2026-08-30T12:00:00Z"},
		{ID: "m1", SenderID: "b", ReceiverID: "a", Timestamp: "2026-08-30T10:00:00Z"},
		{ID: "mx", SenderID: "a", ReceiverID: "c", Timestamp: "2026-08-30T11:00:00Z"},
		{ID: "m2", SenderID: "a", ReceiverID: "b", Timestamp: "2026-08-30T11:00:00Z"},
	}

	ab := Conversation(messages, "a", "b")
	ba := Conversation(messages, "b", "a")
	if !reflect.DeepEqual(ab, ba) {
		t.Errorf("Conversation(a,b) != Conversation(b,a):\n%+v\n%+v", ab, ba)
	}

	var ids []string
	for _, m := range ab {
		ids = append(ids, m.ID)
	}
	if !reflect.DeepEqual(ids, []string{"m1", "m2", "m3"}) {
		t.Errorf("conversation order = %v; want ascending by timestamp", ids)
	}
}

func TestRecordFor_ImplicitEmptyRecord(t *testing.T) {
	got := RecordFor(nil, "u1", "2026-08-30")
	want := models.ProgressRecord{
		ID: "temp-2026-08-30", UserID: "u1", Date: "2026-08-30", TasksCompleted: []string{},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RecordFor = %+v; want %+v", got, want)
	}
}

func TestRecordFor_ExistingRecord(t *testing.T) {
	existing := record("u1", "2026-08-30", "t1")
	got := RecordFor([]models.ProgressRecord{existing}, "u1", "2026-08-30")
	if !reflect.DeepEqual(got, existing) {
		t.Errorf("RecordFor = %+v; want stored record", got)
	}
}

func TestMemberGroups(t *testing.T) {
	groups := []models.Group{
		{ID: "g1", MemberIDs: []string{"u1", "u2"}},
		{ID: "g2", MemberIDs: []string{"u2"}},
	}
	mine := MemberGroups(groups, "u1")
	if len(mine) != 1 || mine[0].ID != "g1" {
		t.Errorf("MemberGroups = %+v; want only g1", mine)
	}
}

func TestDailyQuote_Deterministic(t *testing.T) {
	if DailyQuote(today) != DailyQuote(today.Add(time.Hour)) {
		t.Errorf("quote should be stable within a day")
	}
	if DailyQuote(today) == "" {
		t.Errorf("quote should not be empty")
	}
}
