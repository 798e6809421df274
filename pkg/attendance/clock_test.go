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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayBounds(t *testing.T) {
	// 23:30 UTC on June 1 is already 00:30 on June 2 in Lagos (UTC+1).
	utc := time.Date(2025, time.June, 1, 23, 30, 0, 0, time.UTC)
	start, end := DayBounds(utc)

	assert.Equal(t, time.Date(2025, time.June, 2, 0, 0, 0, 0, ServerLocation()), start)
	assert.Equal(t, time.Date(2025, time.June, 3, 0, 0, 0, 0, ServerLocation()), end)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestDayBoundsContainTimestamp(t *testing.T) {
	ts := time.Date(2025, time.June, 2, 12, 0, 0, 0, ServerLocation())
	start, end := DayBounds(ts)
	assert.False(t, ts.Before(start))
	assert.True(t, ts.Before(end))
}

func TestMonthBounds(t *testing.T) {
	start, end := MonthBounds(2025, time.February)
	assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, ServerLocation()), start)
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, ServerLocation()), end)
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2025, time.March, 3, 9, 15, 5, 0, ServerLocation())
	assert.Equal(t, "Monday, March 3, 2025 at 9:15:05 AM WAT", FormatTimestamp(ts))
}

func TestIsBusinessDay(t *testing.T) {
	monday := time.Date(2025, time.June, 2, 12, 0, 0, 0, ServerLocation())
	saturday := time.Date(2025, time.June, 7, 12, 0, 0, 0, ServerLocation())
	sunday := time.Date(2025, time.June, 8, 12, 0, 0, 0, ServerLocation())

	assert.True(t, IsBusinessDay(monday))
	assert.False(t, IsBusinessDay(saturday))
	assert.False(t, IsBusinessDay(sunday))
}

func TestBusinessDays(t *testing.T) {
	// June 2025: 30 days, starts on a Sunday, 21 business days.
	start, end := MonthBounds(2025, time.June)
	assert.Equal(t, 21, BusinessDays(start, end.AddDate(0, 0, -1)))

	// A single business day.
	monday := time.Date(2025, time.June, 2, 0, 0, 0, 0, ServerLocation())
	assert.Equal(t, 1, BusinessDays(monday, monday))
}

func TestDurationBetween(t *testing.T) {
	start := time.Date(2025, time.June, 2, 9, 0, 0, 0, ServerLocation())
	end := start.Add(8*time.Hour + 30*time.Minute)

	d := DurationBetween(start, end)
	assert.Equal(t, 8, d.Hours)
	assert.Equal(t, 30, d.Minutes)
	assert.Equal(t, 510, d.TotalMinutes)
}
