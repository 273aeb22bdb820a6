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

import "time"

// TemporalState is a snapshot of a ScheduledTransaction's progress
// through its recurrence, which IncrTemporalState advances in place,
// letting a caller simulate walking
// successive instances without mutating the schedule itself, matching
// temporalStateData.
type TemporalState struct {
	LastDate     time.Time
	HaveLastDate bool
	NumOccurRemain int
	NumInst        int
}

// CreateTemporalState snapshots this schedule's current progress,
// matching gnc_sx_create_temporal_state.
func (this *ScheduledTransaction) CreateTemporalState() *TemporalState {
	return &TemporalState{
		LastDate:       this.lastOccurDate,
		HaveLastDate:   this.haveLastOccur,
		NumOccurRemain: this.numOccurrencesRemain,
		NumInst:        this.instanceNum,
	}
}

// IncrTemporalState advances state to describe the instance after its
// current last_date, decrementing the remaining-occurrence count when
// this schedule is bounded, matching gnc_sx_incr_temporal_state.
func (this *ScheduledTransaction) IncrTemporalState(state *TemporalState) {
	next, ok := this.GetInstanceAfter(time.Time{}, state)
	if ok {
		state.LastDate = next
		state.HaveLastDate = true
	}
	if this.HasOccurrenceDef() {
		state.NumOccurRemain--
	}
	state.NumInst++
}

// RevertToTemporalState writes state back into this schedule and
// marks it dirty, matching gnc_sx_revert_to_temporal_state.
func (this *ScheduledTransaction) RevertToTemporalState(state *TemporalState) {
	this.lastOccurDate = state.LastDate
	this.haveLastOccur = state.HaveLastDate
	this.numOccurrencesRemain = state.NumOccurRemain
	this.instanceNum = state.NumInst
	this.dirty = true
}

// CloneTemporalState returns an independent copy of state.
func CloneTemporalState(state *TemporalState) *TemporalState {
	c := *state
	return &c
}

// DestroyTemporalState exists for API symmetry with the C original's
// explicit free; a TemporalState carries no external resources so
// there is nothing to release.
func DestroyTemporalState(state *TemporalState) {}

func deferredCompare(a, b *TemporalState) int {
	switch {
	case !a.HaveLastDate && !b.HaveLastDate:
		return 0
	case !a.HaveLastDate:
		return 1
	case !b.HaveLastDate:
		return -1
	case a.LastDate.Before(b.LastDate):
		return -1
	case a.LastDate.After(b.LastDate):
		return 1
	default:
		return 0
	}
}

// AddDeferredInstance inserts state into the deferred list in
// ascending last_date order (states with no last_date sort last),
// matching gnc_sx_add_defer_instance's g_list_insert_sorted.
func (this *ScheduledTransaction) AddDeferredInstance(state *TemporalState) {
	idx := len(this.deferredList)
	for i, s := range this.deferredList {
		if deferredCompare(state, s) < 0 {
			idx = i
			break
		}
	}
	this.deferredList = append(this.deferredList, nil)
	copy(this.deferredList[idx+1:], this.deferredList[idx:])
	this.deferredList[idx] = state
}

// RemoveDeferredInstance removes state by identity, matching
// gnc_sx_remove_defer_instance.
func (this *ScheduledTransaction) RemoveDeferredInstance(state *TemporalState) {
	for i, s := range this.deferredList {
		if s == state {
			this.deferredList = append(this.deferredList[:i], this.deferredList[i+1:]...)
			return
		}
	}
}

// DeferredInstances returns a defensive copy of the deferred list,
// matching gnc_sx_get_defer_instances.
func (this *ScheduledTransaction) DeferredInstances() []*TemporalState {
	out := make([]*TemporalState, len(this.deferredList))
	copy(out, this.deferredList)
	return out
}
