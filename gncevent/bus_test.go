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

package gncevent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"src.d10.dev/ledgercore/guid"
)

func TestSubscribeReceivesEvent(t *testing.T) {
	bus := NewMemBus()
	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)

	id := guid.New()
	bus.GenerateEvent(id, guid.TypeAccount, MODIFY)

	select {
	case ev := <-ch:
		assert.Equal(t, id, ev.GUID)
		assert.Equal(t, guid.TypeAccount, ev.Entity)
		assert.Equal(t, MODIFY, ev.Kind)
	default:
		t.Fatal("expected an event")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewMemBus()
	ch := bus.Subscribe()
	bus.Unsubscribe(ch)

	_, ok := <-ch
	assert.False(t, ok)

	// unsubscribing twice must not panic on a double close
	bus.Unsubscribe(ch)
}

func TestSuspendResumeNests(t *testing.T) {
	bus := NewMemBus()
	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)

	bus.Suspend()
	bus.Suspend()
	bus.GenerateEvent(guid.New(), guid.TypeSplit, CREATE)

	bus.Resume()
	bus.GenerateEvent(guid.New(), guid.TypeSplit, CREATE) // still suspended (depth 1)

	select {
	case <-ch:
		t.Fatal("no event expected while still suspended")
	default:
	}

	bus.Resume()
	id := guid.New()
	bus.GenerateEvent(id, guid.TypeSplit, CREATE)

	ev, ok := <-ch
	require.True(t, ok)
	assert.Equal(t, id, ev.GUID)
}

func TestResumeWithoutSuspendIsNoOp(t *testing.T) {
	bus := NewMemBus()
	bus.Resume()
	assert.Equal(t, 0, bus.suspend)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "CREATE", CREATE.String())
	assert.Equal(t, "MODIFY", MODIFY.String())
	assert.Equal(t, "DESTROY", DESTROY.String())
}
