// Copyright (C) 2019  David N. Cohen

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package sx is the scheduled-transaction temporal engine: an opaque
// recurrence rule (FreqSpec), a ScheduledTransaction projecting it
// into concrete dates, and the TemporalState snapshot used to walk
// successive instances without mutating the schedule, grounded on
// GnuCash's SchedXaction.c.
package sx

import "time"

// FreqSpec is the opaque recurrence rule contract spec.md §6
// requires: given the date of the last occurrence (the zero Time
// standing in for GDate's "invalid" sentinel), return the date of the
// next one.
type FreqSpec interface {
	NextInstance(from time.Time) time.Time
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// lastDayOfMonth returns the last valid day-of-month for the month
// containing t.
func lastDayOfMonth(t time.Time) int {
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1).Day()
}

func clampDay(monthAnchor time.Time, day int) int {
	last := lastDayOfMonth(monthAnchor)
	switch {
	case day < 1:
		return 1
	case day > last:
		return last
	default:
		return day
	}
}

// Daily recurs every N days (N<=0 behaves as 1).
type Daily struct {
	Every int
}

func (this Daily) NextInstance(from time.Time) time.Time {
	step := this.Every
	if step <= 0 {
		step = 1
	}
	return dateOnly(from).AddDate(0, 0, step)
}

// Weekly recurs on Weekday, every N weeks (N<=0 behaves as 1).
type Weekly struct {
	Weekday time.Weekday
	Every   int
}

func (this Weekly) NextInstance(from time.Time) time.Time {
	step := this.Every
	if step <= 0 {
		step = 1
	}
	f := dateOnly(from)
	delta := (int(this.Weekday) - int(f.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	next := f.AddDate(0, 0, delta)
	if step > 1 {
		next = next.AddDate(0, 0, 7*(step-1))
	}
	return next
}

// Monthly recurs on Day of the month (clamped to the last day of a
// shorter month), every N months (N<=0 behaves as 1).
type Monthly struct {
	Day   int
	Every int
}

func (this Monthly) NextInstance(from time.Time) time.Time {
	step := this.Every
	if step <= 0 {
		step = 1
	}
	f := dateOnly(from)
	cursor := time.Date(f.Year(), f.Month(), 1, 0, 0, 0, 0, time.UTC)
	candidate := time.Date(cursor.Year(), cursor.Month(), clampDay(cursor, this.Day), 0, 0, 0, 0, time.UTC)
	for !candidate.After(f) {
		cursor = cursor.AddDate(0, step, 0)
		candidate = time.Date(cursor.Year(), cursor.Month(), clampDay(cursor, this.Day), 0, 0, 0, 0, time.UTC)
	}
	return candidate
}

// Yearly recurs on Month/Day (clamped), every N years (N<=0 behaves
// as 1).
type Yearly struct {
	Month time.Month
	Day   int
	Every int
}

func (this Yearly) NextInstance(from time.Time) time.Time {
	step := this.Every
	if step <= 0 {
		step = 1
	}
	f := dateOnly(from)
	cursor := time.Date(f.Year(), this.Month, 1, 0, 0, 0, 0, time.UTC)
	candidate := time.Date(cursor.Year(), this.Month, clampDay(cursor, this.Day), 0, 0, 0, 0, time.UTC)
	for !candidate.After(f) {
		cursor = cursor.AddDate(step, 0, 0)
		candidate = time.Date(cursor.Year(), this.Month, clampDay(cursor, this.Day), 0, 0, 0, 0, time.UTC)
	}
	return candidate
}

// Composite recurs on the earliest instance produced by any of Specs,
// the building block for schedules like semi-monthly (two Monthly
// rules) that a single simple rule cannot express.
type Composite struct {
	Specs []FreqSpec
}

func (this Composite) NextInstance(from time.Time) time.Time {
	var best time.Time
	for _, s := range this.Specs {
		n := s.NextInstance(from)
		if best.IsZero() || n.Before(best) {
			best = n
		}
	}
	return best
}
