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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporterHistory(t *testing.T) {
	store := NewMemoryStore()
	reporter := NewReporter(store)
	ctx := context.Background()
	base := time.Date(2025, time.June, 2, 9, 0, 0, 0, ServerLocation())

	require.NoError(t, store.Create(ctx, officeRecord("AFG-A001", SignIn, base)))
	require.NoError(t, store.Create(ctx, officeRecord("AFG-A001", SignOut, base.Add(8*time.Hour))))
	require.NoError(t, store.Create(ctx, officeRecord("AFG-B002", SignIn, base)))

	records, err := reporter.History(ctx, "AFG-A001", base.AddDate(0, 0, -1), base.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, SignIn, records[0].Type)
	assert.Equal(t, SignOut, records[1].Type)
}

func TestReporterDaily(t *testing.T) {
	store := NewMemoryStore()
	reporter := NewReporter(store)
	ctx := context.Background()
	base := time.Date(2025, time.June, 2, 9, 0, 0, 0, ServerLocation())

	require.NoError(t, store.Create(ctx, officeRecord("AFG-A001", SignIn, base)))
	require.NoError(t, store.Create(ctx, officeRecord("AFG-B002", SignIn, base.Add(time.Minute))))
	require.NoError(t, store.Create(ctx, officeRecord("AFG-A001", SignIn, base.AddDate(0, 0, 1))))

	records, err := reporter.Daily(ctx, base)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestReporterMonthlyReport(t *testing.T) {
	store := NewMemoryStore()
	reporter := NewReporter(store)
	ctx := context.Background()

	// Two full office days in June 2025 (21 business days).
	day1 := time.Date(2025, time.June, 2, 9, 0, 0, 0, ServerLocation())
	day2 := time.Date(2025, time.June, 3, 9, 30, 0, 0, ServerLocation())

	require.NoError(t, store.Create(ctx, officeRecord("AFG-A001", SignIn, day1)))
	require.NoError(t, store.Create(ctx, officeRecord("AFG-A001", SignOut, day1.Add(8*time.Hour))))
	require.NoError(t, store.Create(ctx, officeRecord("AFG-A001", SignIn, day2)))
	require.NoError(t, store.Create(ctx, officeRecord("AFG-A001", SignOut, day2.Add(7*time.Hour+30*time.Minute))))

	// Another employee's June records stay out of the report.
	require.NoError(t, store.Create(ctx, officeRecord("AFG-B002", SignIn, day1)))

	report, err := reporter.MonthlyReport(ctx, "AFG-A001", 2025, time.June)
	require.NoError(t, err)

	assert.Equal(t, "AFG-A001", report.EmployeeID)
	assert.Equal(t, 6, report.Month)
	assert.Equal(t, 2025, report.Year)
	assert.Equal(t, 21, report.TotalWorkDays)
	assert.Equal(t, 2, report.PresentDays)
	assert.Equal(t, 19, report.AbsentDays)
	assert.Equal(t, 15.5, report.WorkHours)
	assert.Len(t, report.SignIns, 2)
	assert.Len(t, report.SignOuts, 2)
}

func TestReporterMonthlyReportEmpty(t *testing.T) {
	reporter := NewReporter(NewMemoryStore())

	report, err := reporter.MonthlyReport(context.Background(), "AFG-A001", 2025, time.June)
	require.NoError(t, err)
	assert.Equal(t, 0, report.PresentDays)
	assert.Equal(t, report.TotalWorkDays, report.AbsentDays)
	assert.Zero(t, report.WorkHours)
	assert.NotNil(t, report.SignIns)
	assert.NotNil(t, report.SignOuts)
}

func TestPairedWorkHours(t *testing.T) {
	base := time.Date(2025, time.June, 2, 9, 0, 0, 0, ServerLocation())

	t.Run("unpaired sign-in contributes nothing", func(t *testing.T) {
		signIns := []*Record{
			officeRecord("AFG-A001", SignIn, base),
			officeRecord("AFG-A001", SignIn, base.AddDate(0, 0, 1)),
		}
		signOuts := []*Record{
			officeRecord("AFG-A001", SignOut, base.Add(4 * time.Hour)),
		}
		assert.Equal(t, 4.0, pairedWorkHours(signIns, signOuts))
	})

	t.Run("rounds to two decimals", func(t *testing.T) {
		signIns := []*Record{officeRecord("AFG-A001", SignIn, base)}
		signOuts := []*Record{officeRecord("AFG-A001", SignOut, base.Add(100 * time.Minute))}
		assert.Equal(t, 1.67, pairedWorkHours(signIns, signOuts))
	})

	t.Run("no records", func(t *testing.T) {
		assert.Zero(t, pairedWorkHours(nil, nil))
	})
}
