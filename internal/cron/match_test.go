package cron

import (
	"testing"
	"time"
)

func TestMatchesMinute_Wildcard(t *testing.T) {
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	if !matchesMinute("* * * * *", now) {
		t.Error("expected wildcard expression to match any minute")
	}
}

func TestMatchesMinute_Step(t *testing.T) {
	every5 := time.Date(2026, 7, 30, 12, 10, 0, 0, time.UTC)
	notEvery5 := time.Date(2026, 7, 30, 12, 11, 0, 0, time.UTC)
	if !matchesMinute("*/5 * * * *", every5) {
		t.Error("expected */5 to match minute 10")
	}
	if matchesMinute("*/5 * * * *", notEvery5) {
		t.Error("expected */5 not to match minute 11")
	}
}

// TestMatchesMinute_DayOfMonthOrDayOfWeek covers the classic cron
// divergence: when both day-of-month and day-of-week are restricted,
// the match is an OR, not an AND. "0 0 1 * 1" should fire on the 1st
// of the month OR every Monday.
func TestMatchesMinute_DayOfMonthOrDayOfWeek(t *testing.T) {
	firstOfMonthNotMonday := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC) // a Saturday
	if firstOfMonthNotMonday.Weekday() == time.Monday {
		t.Fatal("test fixture assumption broken: Aug 1 2026 is a Monday")
	}
	if !matchesMinute("0 0 1 * 1", firstOfMonthNotMonday) {
		t.Error("expected OR semantics: day-of-month match should fire even though it's not Monday")
	}

	mondayNotFirstOfMonth := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	if mondayNotFirstOfMonth.Weekday() != time.Monday {
		t.Fatal("test fixture assumption broken: Aug 3 2026 is not a Monday")
	}
	if !matchesMinute("0 0 1 * 1", mondayNotFirstOfMonth) {
		t.Error("expected OR semantics: day-of-week match should fire even though it's not the 1st")
	}

	neitherMatches := time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC)
	if matchesMinute("0 0 1 * 1", neitherMatches) {
		t.Error("expected no match when neither day-of-month nor day-of-week condition holds")
	}
}

func TestMatchesMinute_OnlyDayOfMonthRestricted(t *testing.T) {
	match := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	noMatch := time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC)
	if !matchesMinute("0 0 15 * *", match) {
		t.Error("expected match on the 15th")
	}
	if matchesMinute("0 0 15 * *", noMatch) {
		t.Error("expected no match on the 16th")
	}
}

func TestMatchesMinute_MalformedExpression(t *testing.T) {
	if matchesMinute("not a cron expr", time.Now()) {
		t.Error("expected malformed expression not to match")
	}
}

func TestRanThisMinute(t *testing.T) {
	now := time.Date(2026, 7, 30, 12, 5, 30, 0, time.UTC)

	if ranThisMinute(nil, now) {
		t.Error("expected nil last_run to never count as ran this minute")
	}

	sameMinute := now.Add(-10 * time.Second).Format(time.RFC3339)
	if !ranThisMinute(&sameMinute, now) {
		t.Error("expected a last_run a few seconds earlier in the same minute to count")
	}

	priorMinute := now.Add(-90 * time.Second).Format(time.RFC3339)
	if ranThisMinute(&priorMinute, now) {
		t.Error("expected a last_run from the previous minute not to count")
	}

	malformed := "not-a-timestamp"
	if ranThisMinute(&malformed, now) {
		t.Error("expected a malformed last_run not to block execution")
	}
}
