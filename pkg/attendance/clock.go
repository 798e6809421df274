// Copyright (c) 2025 MC Youniverse
//
// This file is part of the attendance service.
//
// attendance is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@mcyouniverse.com for commercial licensing options.

package attendance

import (
	"time"
)

// DefaultTimeZone is the IANA zone attendance days are bounded by.
const DefaultTimeZone = "Africa/Lagos"

var serverLocation = mustLoadLocation(DefaultTimeZone)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		// Africa/Lagos is fixed UTC+1 with no DST.
		return time.FixedZone("WAT", 60*60)
	}
	return loc
}

// ServerLocation returns the time zone used for day boundaries and
// user-facing timestamp formatting.
func ServerLocation() *time.Location {
	return serverLocation
}

// Now returns the current time in the server time zone.
func Now() time.Time {
	return time.Now().In(serverLocation)
}

// DayBounds returns the inclusive start and exclusive end of the calendar day
// containing t, in the server time zone.
func DayBounds(t time.Time) (start, end time.Time) {
	local := t.In(serverLocation)
	start = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, serverLocation)
	end = start.AddDate(0, 0, 1)
	return start, end
}

// MonthBounds returns the inclusive start and exclusive end of the given
// calendar month in the server time zone.
func MonthBounds(year int, month time.Month) (start, end time.Time) {
	start = time.Date(year, month, 1, 0, 0, 0, 0, serverLocation)
	end = start.AddDate(0, 1, 0)
	return start, end
}

// FormatTimestamp renders a timestamp for display in the server time zone.
func FormatTimestamp(t time.Time) string {
	return t.In(serverLocation).Format("Monday, January 2, 2006 at 3:04:05 PM MST")
}

// IsBusinessDay reports whether the day is Monday through Friday.
func IsBusinessDay(t time.Time) bool {
	wd := t.In(serverLocation).Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// BusinessDays counts Monday-Friday days in [start, end] inclusive.
func BusinessDays(start, end time.Time) int {
	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if IsBusinessDay(d) {
			count++
		}
	}
	return count
}

// Duration describes the span between a sign-in and a sign-out.
type Duration struct {
	Hours        int `json:"hours"`
	Minutes      int `json:"minutes"`
	TotalMinutes int `json:"total_minutes"`
}

// DurationBetween computes the working duration between two timestamps.
func DurationBetween(start, end time.Time) Duration {
	d := end.Sub(start)
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return Duration{
		Hours:        hours,
		Minutes:      minutes,
		TotalMinutes: hours*60 + minutes,
	}
}
