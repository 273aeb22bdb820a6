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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"src.d10.dev/ledgercore/engine"
)

func TestCreateAndRevertTemporalState(t *testing.T) {
	b := engine.NewBook()
	s := New(b)
	s.SetFreqSpec(Daily{Every: 1})
	s.SetNumOccurrences(10)
	s.SetLastOccurDate(d(2024, 1, 1))

	state := s.CreateTemporalState()
	assert.True(t, state.LastDate.Equal(d(2024, 1, 1)))
	assert.Equal(t, 10, state.NumOccurRemain)

	s.IncrTemporalState(state)
	assert.Equal(t, 9, state.NumOccurRemain)
	assert.Equal(t, 1, state.NumInst)

	s.RevertToTemporalState(state)
	assert.Equal(t, 9, s.RemOccur())
	assert.Equal(t, 1, s.InstanceNum())
	assert.True(t, s.IsDirty())
}

func TestCloneTemporalStateIsIndependent(t *testing.T) {
	b := engine.NewBook()
	s := New(b)
	s.SetLastOccurDate(d(2024, 1, 1))
	state := s.CreateTemporalState()

	clone := CloneTemporalState(state)
	clone.NumInst = 99

	assert.NotEqual(t, clone.NumInst, state.NumInst)
}

func TestAddDeferredInstanceSortsByLastDate(t *testing.T) {
	b := engine.NewBook()
	s := New(b)

	late := &TemporalState{LastDate: d(2024, 3, 1), HaveLastDate: true}
	early := &TemporalState{LastDate: d(2024, 1, 1), HaveLastDate: true}
	noDate := &TemporalState{}

	s.AddDeferredInstance(late)
	s.AddDeferredInstance(early)
	s.AddDeferredInstance(noDate)

	got := s.DeferredInstances()
	require.Len(t, got, 3)
	assert.Same(t, early, got[0])
	assert.Same(t, late, got[1])
	assert.Same(t, noDate, got[2])
}

func TestRemoveDeferredInstanceByIdentity(t *testing.T) {
	b := engine.NewBook()
	s := New(b)

	a := &TemporalState{LastDate: d(2024, 1, 1), HaveLastDate: true}
	bb := &TemporalState{LastDate: d(2024, 2, 1), HaveLastDate: true}
	s.AddDeferredInstance(a)
	s.AddDeferredInstance(bb)

	s.RemoveDeferredInstance(a)
	got := s.DeferredInstances()
	require.Len(t, got, 1)
	assert.Same(t, bb, got[0])
}
