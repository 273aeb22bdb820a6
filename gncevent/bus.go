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

// Package gncevent is the engine's event-bus contract: entities call
// Bus.GenerateEvent on create/modify/destroy, coalesced at commit time
// and silenced while Suspend is in effect, following
// gnc_engine_generate_event / gnc_engine_suspend_events /
// gnc_engine_resume_events.
package gncevent

import (
	"sync"

	"src.d10.dev/ledgercore/guid"
)

// Kind mirrors GNC_EVENT_CREATE / GNC_EVENT_MODIFY / GNC_EVENT_DESTROY.
type Kind int

const (
	CREATE Kind = iota
	MODIFY
	DESTROY
)

func (k Kind) String() string {
	switch k {
	case CREATE:
		return "CREATE"
	case MODIFY:
		return "MODIFY"
	case DESTROY:
		return "DESTROY"
	default:
		return "UNKNOWN"
	}
}

// Event is one (entity, kind) notification.
type Event struct {
	GUID   guid.GUID
	Entity guid.EntityType
	Kind   Kind
}

// Bus delivers entity change notifications. Suspend/Resume nest: an
// event is dropped unless the suspend count is zero, matching
// gnc_engine_suspend_events' depth counter.
type Bus interface {
	GenerateEvent(id guid.GUID, entity guid.EntityType, kind Kind)
	Suspend()
	Resume()
}

// MemBus fans events out to subscribed channels in-process. This is
// the default bus a Book uses when no external transport is wired.
type MemBus struct {
	mu       sync.Mutex
	suspend  int
	subs     map[chan Event]struct{}
}

func NewMemBus() *MemBus {
	return &MemBus{subs: make(map[chan Event]struct{})}
}

// Subscribe returns a channel that receives every future event until
// Unsubscribe is called. The channel is buffered; a slow subscriber
// drops events rather than blocking the committing goroutine.
func (this *MemBus) Subscribe() chan Event {
	ch := make(chan Event, 64)
	this.mu.Lock()
	this.subs[ch] = struct{}{}
	this.mu.Unlock()
	return ch
}

func (this *MemBus) Unsubscribe(ch chan Event) {
	this.mu.Lock()
	defer this.mu.Unlock()
	if _, ok := this.subs[ch]; ok {
		delete(this.subs, ch)
		close(ch)
	}
}

func (this *MemBus) GenerateEvent(id guid.GUID, entity guid.EntityType, kind Kind) {
	this.mu.Lock()
	defer this.mu.Unlock()
	if this.suspend > 0 {
		return
	}
	ev := Event{GUID: id, Entity: entity, Kind: kind}
	for ch := range this.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (this *MemBus) Suspend() {
	this.mu.Lock()
	this.suspend++
	this.mu.Unlock()
}

func (this *MemBus) Resume() {
	this.mu.Lock()
	if this.suspend > 0 {
		this.suspend--
	}
	this.mu.Unlock()
}
