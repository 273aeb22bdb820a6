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

package sx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestDailyNextInstance(t *testing.T) {
	f := Daily{Every: 3}
	assert.True(t, f.NextInstance(d(2024, 1, 1)).Equal(d(2024, 1, 4)))

	zero := Daily{}
	assert.True(t, zero.NextInstance(d(2024, 1, 1)).Equal(d(2024, 1, 2)))
}

func TestWeeklyNextInstance(t *testing.T) {
	// 2024-01-01 is a Monday; next Friday is 2024-01-05.
	f := Weekly{Weekday: time.Friday, Every: 1}
	assert.True(t, f.NextInstance(d(2024, 1, 1)).Equal(d(2024, 1, 5)))

	every2 := Weekly{Weekday: time.Friday, Every: 2}
	assert.True(t, every2.NextInstance(d(2024, 1, 1)).Equal(d(2024, 1, 12)))
}

// S5 — monthly-on-day-15 from 2024-01-15: the next instance lands on
// 2024-02-15, and the one after that on 2024-03-15.
func TestS5MonthlyNextInstance(t *testing.T) {
	f := Monthly{Day: 15, Every: 1}
	first := f.NextInstance(d(2024, 1, 15))
	assert.True(t, first.Equal(d(2024, 2, 15)), "got %v", first)

	second := f.NextInstance(first)
	assert.True(t, second.Equal(d(2024, 3, 15)), "got %v", second)
}

func TestMonthlyClampsToShortMonth(t *testing.T) {
	f := Monthly{Day: 31, Every: 1}
	jan := f.NextInstance(d(2024, 1, 31))
	assert.True(t, jan.Equal(d(2024, 2, 29)), "got %v", jan) // 2024 is a leap year

	feb := f.NextInstance(jan)
	assert.True(t, feb.Equal(d(2024, 3, 31)), "got %v", feb)
}

func TestMonthlyEveryN(t *testing.T) {
	f := Monthly{Day: 1, Every: 3}
	next := f.NextInstance(d(2024, 1, 1))
	assert.True(t, next.Equal(d(2024, 4, 1)), "got %v", next)
}

func TestYearlyNextInstance(t *testing.T) {
	f := Yearly{Month: time.March, Day: 15, Every: 1}
	next := f.NextInstance(d(2024, 1, 1))
	assert.True(t, next.Equal(d(2024, 3, 15)), "got %v", next)

	afterAnniversary := f.NextInstance(d(2024, 3, 15))
	assert.True(t, afterAnniversary.Equal(d(2025, 3, 15)), "got %v", afterAnniversary)
}

func TestYearlyClampsFeb29OnNonLeapYear(t *testing.T) {
	f := Yearly{Month: time.February, Day: 29, Every: 1}
	next := f.NextInstance(d(2024, 2, 29))
	assert.True(t, next.Equal(d(2025, 2, 28)), "got %v", next)
}

func TestCompositePicksEarliest(t *testing.T) {
	f := Composite{Specs: []FreqSpec{
		Monthly{Day: 1, Every: 1},
		Monthly{Day: 15, Every: 1},
	}}
	next := f.NextInstance(d(2024, 1, 5))
	assert.True(t, next.Equal(d(2024, 1, 15)), "got %v", next)
}
