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
	"math"
	"time"
)

// MonthlyReport summarizes one employee's attendance for a calendar month.
type MonthlyReport struct {
	EmployeeID    string    `json:"employee_id"`
	Month         int       `json:"month"`
	Year          int       `json:"year"`
	TotalWorkDays int       `json:"total_work_days"`
	PresentDays   int       `json:"present_days"`
	AbsentDays    int       `json:"absent_days"`
	WorkHours     float64   `json:"work_hours"`
	SignIns       []*Record `json:"sign_ins"`
	SignOuts      []*Record `json:"sign_outs"`
}

// Reporter builds attendance history views and monthly reports from a store.
type Reporter struct {
	store Store
}

// NewReporter creates a reporter backed by the given store.
func NewReporter(store Store) *Reporter {
	return &Reporter{store: store}
}

// History returns an employee's records between two dates, ordered by
// timestamp ascending.
func (r *Reporter) History(ctx context.Context, employeeID string, start, end time.Time) ([]*Record, error) {
	records, err := r.store.FindByDateRange(ctx, employeeID, start, end)
	if err != nil {
		return nil, WrapError("attendance history", err)
	}
	return records, nil
}

// Daily returns all employees' records for the calendar day containing t.
func (r *Reporter) Daily(ctx context.Context, t time.Time) ([]*Record, error) {
	start, end := DayBounds(t)
	records, err := r.store.FindByDateRange(ctx, "", start, end)
	if err != nil {
		return nil, WrapError("daily attendance", err)
	}
	return records, nil
}

// MonthlyReport computes business days, presence and paired work hours for
// one employee and month.
func (r *Reporter) MonthlyReport(ctx context.Context, employeeID string, year int, month time.Month) (*MonthlyReport, error) {
	start, end := MonthBounds(year, month)
	records, err := r.store.FindByDateRange(ctx, employeeID, start, end)
	if err != nil {
		return nil, WrapError("monthly report", err)
	}

	report := &MonthlyReport{
		EmployeeID: employeeID,
		Month:      int(month),
		Year:       year,
		SignIns:    []*Record{},
		SignOuts:   []*Record{},
	}
	for _, rec := range records {
		switch rec.Type {
		case SignIn:
			report.SignIns = append(report.SignIns, rec)
		case SignOut:
			report.SignOuts = append(report.SignOuts, rec)
		}
	}

	report.TotalWorkDays = BusinessDays(start, end.AddDate(0, 0, -1))
	report.PresentDays = len(report.SignIns)
	report.AbsentDays = report.TotalWorkDays - report.PresentDays
	report.WorkHours = pairedWorkHours(report.SignIns, report.SignOuts)

	return report, nil
}

// pairedWorkHours sums the hours between sign-in/sign-out pairs, matched in
// order. Unpaired events contribute nothing.
func pairedWorkHours(signIns, signOuts []*Record) float64 {
	n := len(signIns)
	if len(signOuts) < n {
		n = len(signOuts)
	}
	total := 0.0
	for i := 0; i < n; i++ {
		total += signOuts[i].Timestamp.Sub(signIns[i].Timestamp).Hours()
	}
	return math.Round(total*100) / 100
}
