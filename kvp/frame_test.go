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

package kvp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"src.d10.dev/ledgercore/numeric"
)

func TestStringSlot(t *testing.T) {
	f := New()
	f.SetString("void-reason", "entered in error")
	v, ok := f.GetString("void-reason")
	require.True(t, ok)
	assert.Equal(t, "entered in error", v)
}

func TestNestedPath(t *testing.T) {
	f := New()
	f.SetString("GNC_SX/credit-formula", "100")
	v, ok := f.GetString("GNC_SX/credit-formula")
	require.True(t, ok)
	assert.Equal(t, "100", v)

	// the intermediate path is itself a frame slot
	slot, ok := f.GetSlot("GNC_SX")
	require.True(t, ok)
	assert.Equal(t, KindFrame, slot.Kind)
}

func TestNumericTimeGUIDSlots(t *testing.T) {
	f := New()
	n := numeric.Create(1, 2)
	f.SetNumeric("amount", n)
	got, ok := f.GetNumeric("amount")
	require.True(t, ok)
	assert.True(t, numeric.Equal(n, got))

	now := time.Now()
	f.SetTime("void-time", now)
	t2, ok := f.GetTime("void-time")
	require.True(t, ok)
	assert.True(t, now.Equal(t2))

	f.SetGUID("ref", "abc-123")
	g, ok := f.GetGUID("ref")
	require.True(t, ok)
	assert.Equal(t, "abc-123", g)
}

func TestDeleteSlot(t *testing.T) {
	f := New()
	f.SetString("notes", "hello")
	f.DeleteSlot("notes")
	_, ok := f.GetString("notes")
	assert.False(t, ok)
}

func TestCopyIsIndependent(t *testing.T) {
	f := New()
	f.SetString("GNC_SX/name", "payday")
	c := f.Copy()
	c.SetString("GNC_SX/name", "rent")

	orig, _ := f.GetString("GNC_SX/name")
	copied, _ := c.GetString("GNC_SX/name")
	assert.Equal(t, "payday", orig)
	assert.Equal(t, "rent", copied)
}

func TestCompare(t *testing.T) {
	a := New()
	a.SetString("notes", "x")
	a.SetNumeric("amount", numeric.Create(1, 4))

	b := New()
	b.SetString("notes", "x")
	b.SetNumeric("amount", numeric.Create(25, 100)) // same value, different denom

	assert.True(t, Compare(a, b))

	b.SetString("notes", "y")
	assert.False(t, Compare(a, b))
}

func TestNilFrameIsEmptyAndSafe(t *testing.T) {
	var f *Frame
	assert.True(t, f.IsEmpty())
	f.Delete() // must not panic
	assert.True(t, Compare(nil, New()))
}

func TestIsEmpty(t *testing.T) {
	f := New()
	assert.True(t, f.IsEmpty())
	f.SetString("a", "b")
	assert.False(t, f.IsEmpty())
}
