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

package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndNumDenom(t *testing.T) {
	n := Create(3, 4)
	num, denom := n.NumDenom()
	assert.Equal(t, int64(3), num)
	assert.Equal(t, int64(4), denom)
}

func TestConvertRound(t *testing.T) {
	n := Create(1, 3) // 0.3333...
	c := Convert(n, 100, ROUND)
	num, denom := c.NumDenom()
	assert.Equal(t, int64(100), denom)
	assert.Equal(t, int64(33), num)
}

func TestConvertNeverFailsOnInexact(t *testing.T) {
	n := Create(1, 3)
	c := Convert(n, 100, NEVER)
	assert.Equal(t, ErrInexact, c.Check())
}

func TestConvertTruncateFloorCeil(t *testing.T) {
	n := Create(-7, 2) // -3.5
	trunc := Convert(n, 1, TRUNCATE)
	num, _ := trunc.NumDenom()
	assert.Equal(t, int64(-3), num)

	floor := Convert(n, 1, FLOOR)
	num, _ = floor.NumDenom()
	assert.Equal(t, int64(-4), num)

	ceil := Convert(n, 1, CEIL)
	num, _ = ceil.NumDenom()
	assert.Equal(t, int64(-3), num)
}

func TestAddSubMulDiv(t *testing.T) {
	a := Create(1, 4)
	b := Create(1, 2)

	sum := Add(a, b, 4, ROUND)
	num, denom := sum.NumDenom()
	assert.Equal(t, int64(3), num)
	assert.Equal(t, int64(4), denom)

	diff := Sub(b, a, 4, ROUND)
	num, _ = diff.NumDenom()
	assert.Equal(t, int64(1), num)

	prod := Mul(a, b, AUTO, ROUND)
	assert.True(t, Equal(prod, Create(1, 8)))

	quot := Div(b, a, AUTO, ROUND)
	assert.True(t, Equal(quot, Create(2, 1)))
}

func TestNegAbsSignZero(t *testing.T) {
	n := Create(-5, 2)
	assert.True(t, n.Negative())
	assert.False(t, n.Positive())
	assert.Equal(t, -1, n.Sign())

	abs := Abs(n)
	assert.True(t, abs.Positive())

	neg := Neg(n)
	assert.True(t, neg.Positive())

	zero := Zero(100)
	assert.True(t, zero.Zero())
}

func TestParseDecimal(t *testing.T) {
	cases := []struct {
		in          string
		wantNum     int64
		wantDenom   int64
	}{
		{"10.00", 1000, 100},
		{"-1", -1, 1},
		{"0.1", 1, 10},
		{"+3.5", 35, 10},
		{"100", 100, 1},
	}
	for _, c := range cases {
		n, err := ParseDecimal(c.in)
		require.NoError(t, err, c.in)
		num, denom := n.NumDenom()
		assert.Equal(t, c.wantNum, num, c.in)
		assert.Equal(t, c.wantDenom, denom, c.in)
	}
}

func TestParseDecimalInvalid(t *testing.T) {
	_, err := ParseDecimal("")
	assert.Error(t, err)

	_, err = ParseDecimal("12.3.4")
	assert.Error(t, err)

	_, err = ParseDecimal("abc")
	assert.Error(t, err)
}

func TestCompareEqual(t *testing.T) {
	a := Create(1, 2)
	b := Create(50, 100)
	assert.True(t, Equal(a, b))
	assert.Equal(t, 0, Compare(a, b))

	c := Create(3, 4)
	assert.Equal(t, -1, Compare(a, c))
}
