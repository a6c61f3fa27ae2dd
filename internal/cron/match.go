package cron

import (
	"strconv"
	"strings"
	"time"
)

// matchesMinute reports whether a standard 5-field cron expression
// (minute hour day-of-month month day-of-week) matches t, reloaded and
// re-evaluated fresh every tick rather than pre-computing a next-run
// time. Day-of-month and day-of-week are OR'd together when both fields
// are restricted (not "*"), matching cron(8) rather than the more
// common (and wrong) AND-of-all-fields shortcut.
func matchesMinute(expr string, t time.Time) bool {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return false
	}

	minute, hour, dom, month, dow := fields[0], fields[1], fields[2], fields[3], fields[4]

	if !fieldMatches(minute, t.Minute(), 0, 59) {
		return false
	}
	if !fieldMatches(hour, t.Hour(), 0, 23) {
		return false
	}
	if !fieldMatches(month, int(t.Month()), 1, 12) {
		return false
	}

	domRestricted := dom != "*"
	dowRestricted := dow != "*"
	domMatch := fieldMatches(dom, t.Day(), 1, 31)
	dowMatch := fieldMatches(dow, int(t.Weekday()), 0, 6)

	switch {
	case domRestricted && dowRestricted:
		return domMatch || dowMatch
	case domRestricted:
		return domMatch
	case dowRestricted:
		return dowMatch
	default:
		return true
	}
}

// ranThisMinute reports whether lastRun (RFC3339, UTC) falls within the
// same UTC minute as now, so a restart or a double tick mid-minute
// doesn't re-fire a job that already ran.
func ranThisMinute(lastRun *string, now time.Time) bool {
	if lastRun == nil {
		return false
	}
	t, err := time.Parse(time.RFC3339, *lastRun)
	if err != nil {
		return false
	}
	t = t.UTC()
	nowUTC := now.UTC()
	return t.Year() == nowUTC.Year() && t.YearDay() == nowUTC.YearDay() &&
		t.Hour() == nowUTC.Hour() && t.Minute() == nowUTC.Minute()
}

// fieldMatches evaluates one cron field ("*", "*/N", "N", "N,M", "N-M",
// or a comma-separated mix of those) against value.
func fieldMatches(field string, value, min, max int) bool {
	if field == "*" {
		return true
	}

	for _, part := range strings.Split(field, ",") {
		if matchesPart(part, value, min, max) {
			return true
		}
	}
	return false
}

func matchesPart(part string, value, min, max int) bool {
	if part == "*" {
		return true
	}

	if strings.HasPrefix(part, "*/") {
		step, err := strconv.Atoi(part[2:])
		if err != nil || step <= 0 {
			return false
		}
		return (value-min)%step == 0
	}

	if idx := strings.Index(part, "-"); idx > 0 {
		lo, err1 := strconv.Atoi(part[:idx])
		hi, err2 := strconv.Atoi(part[idx+1:])
		if err1 != nil || err2 != nil {
			return false
		}
		return value >= lo && value <= hi
	}

	n, err := strconv.Atoi(part)
	if err != nil {
		return false
	}
	return n == value
}
