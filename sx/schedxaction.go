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
	"context"
	"time"

	"src.d10.dev/ledgercore/book"
	"src.d10.dev/ledgercore/commodity"
	"src.d10.dev/ledgercore/engine"
	"src.d10.dev/ledgercore/gncevent"
	"src.d10.dev/ledgercore/guid"
	"src.d10.dev/ledgercore/kvp"
)

var templateCommodity = func() commodity.Commodity {
	t := commodity.NewTable()
	return t.Register("template", "template", 1)
}()

// ScheduledTransaction is a recurring pattern of transactions: a
// FreqSpec projecting dates, an occurrence/date bound, and a
// dedicated template account holding the template transactions that
// describe the shape of each instance, grounded on SchedXaction.
type ScheduledTransaction struct {
	id   guid.GUID
	book *engine.Book

	name string
	freq FreqSpec

	startDate     time.Time
	haveStartDate bool
	endDate       time.Time
	haveEndDate   bool
	lastOccurDate time.Time
	haveLastOccur bool

	numOccurrencesTotal  int
	numOccurrencesRemain int

	autoCreateOption bool
	autoCreateNotify bool
	advanceCreateDays int
	advanceRemindDays int

	instanceNum int

	templateAccount *book.Account
	deferredList    []*TemporalState

	dirty bool
	kvp   *kvp.Frame
}

// New allocates an empty scheduled transaction and its dedicated
// template account, the equivalent of xaccSchedXactionMalloc.
func New(b *engine.Book) *ScheduledTransaction {
	id := guid.New()
	acct := book.NewAccount(guid.New(), id.String(), templateCommodity)
	b.Accounts.TemplateGroup().InsertAccount(acct)

	sx := &ScheduledTransaction{
		id:              id,
		book:            b,
		kvp:             kvp.New(),
		templateAccount: acct,
		dirty:           true,
	}
	b.Accounts.Entities.Store(sx.id, guid.TypeSchedXaction, sx)
	b.Bus.GenerateEvent(sx.id, guid.TypeSchedXaction, gncevent.CREATE)
	return sx
}

func (this *ScheduledTransaction) warn(format string, args ...any) {
	if this.book.Warn != nil {
		this.book.Warn(format, args...)
	}
}

func (this *ScheduledTransaction) GUID() guid.GUID            { return this.id }
func (this *ScheduledTransaction) Book() *engine.Book         { return this.book }
func (this *ScheduledTransaction) KVP() *kvp.Frame            { return this.kvp }
func (this *ScheduledTransaction) TemplateAccount() *book.Account { return this.templateAccount }
func (this *ScheduledTransaction) IsDirty() bool              { return this.dirty }
func (this *ScheduledTransaction) SetDirty(d bool)            { this.dirty = d }

func (this *ScheduledTransaction) Name() string { return this.name }
func (this *ScheduledTransaction) SetName(name string) {
	this.name = name
	this.dirty = true
}

func (this *ScheduledTransaction) FreqSpec() FreqSpec { return this.freq }
func (this *ScheduledTransaction) SetFreqSpec(f FreqSpec) {
	this.freq = f
	this.dirty = true
}

func (this *ScheduledTransaction) StartDate() (time.Time, bool) { return this.startDate, this.haveStartDate }
func (this *ScheduledTransaction) SetStartDate(t time.Time) {
	this.startDate = t
	this.haveStartDate = true
	this.dirty = true
}

func (this *ScheduledTransaction) HasEndDate() bool { return this.haveEndDate }
func (this *ScheduledTransaction) EndDate() (time.Time, bool) { return this.endDate, this.haveEndDate }

// SetEndDate rejects an end date before the start date, leaving the
// schedule unchanged, matching xaccSchedXactionSetEndDate's PWARN path.
func (this *ScheduledTransaction) SetEndDate(t time.Time) bool {
	if this.haveStartDate && t.Before(this.startDate) {
		this.warn("sx: new end date before start date, rejected")
		return false
	}
	this.endDate = t
	this.haveEndDate = true
	this.dirty = true
	return true
}

func (this *ScheduledTransaction) LastOccurDate() (time.Time, bool) {
	return this.lastOccurDate, this.haveLastOccur
}
func (this *ScheduledTransaction) SetLastOccurDate(t time.Time) {
	this.lastOccurDate = t
	this.haveLastOccur = true
	this.dirty = true
}

func (this *ScheduledTransaction) HasOccurrenceDef() bool { return this.numOccurrencesTotal != 0 }
func (this *ScheduledTransaction) NumOccurrences() int    { return this.numOccurrencesTotal }

func (this *ScheduledTransaction) SetNumOccurrences(n int) {
	this.numOccurrencesTotal = n
	this.numOccurrencesRemain = n
	this.dirty = true
}

func (this *ScheduledTransaction) RemOccur() int { return this.numOccurrencesRemain }

// SetRemOccur rejects a remaining count greater than the total,
// leaving state unchanged, per the hard invariant in spec.md §3
// (num_occurrences_remain <= num_occurrences_total).
func (this *ScheduledTransaction) SetRemOccur(n int) bool {
	if n > this.numOccurrencesTotal {
		this.warn("sx: number remaining greater than total occurrences, rejected")
		return false
	}
	this.numOccurrencesRemain = n
	this.dirty = true
	return true
}

func (this *ScheduledTransaction) AutoCreate() (autoCreate, notify bool) {
	return this.autoCreateOption, this.autoCreateNotify
}
func (this *ScheduledTransaction) SetAutoCreate(autoCreate, notify bool) {
	this.autoCreateOption = autoCreate
	this.autoCreateNotify = notify
	this.dirty = true
}

func (this *ScheduledTransaction) AdvanceCreateDays() int { return this.advanceCreateDays }
func (this *ScheduledTransaction) SetAdvanceCreateDays(d int) {
	this.advanceCreateDays = d
	this.dirty = true
}

func (this *ScheduledTransaction) AdvanceReminderDays() int { return this.advanceRemindDays }
func (this *ScheduledTransaction) SetAdvanceReminderDays(d int) {
	this.advanceRemindDays = d
	this.dirty = true
}

func (this *ScheduledTransaction) InstanceNum() int     { return this.instanceNum }
func (this *ScheduledTransaction) SetInstanceNum(n int) { this.instanceNum = n }

// GetNextInstance projects the next occurrence date from this
// schedule's own last-occurrence bookkeeping (or from state, when
// given), per get_next_instance. Returns ok=false if the projected
// date falls past an end date or exhausts a bounded occurrence count.
func (this *ScheduledTransaction) GetNextInstance(state *TemporalState) (time.Time, bool) {
	last, haveLast := this.lastOccurDate, this.haveLastOccur
	if state != nil {
		last, haveLast = state.LastDate, state.HaveLastDate
	}

	if this.haveStartDate {
		if haveLast {
			if last.Before(this.startDate) {
				last = this.startDate
			}
		} else {
			last = this.startDate.AddDate(0, 0, -1)
			haveLast = true
		}
	}
	if !haveLast {
		last = time.Time{}
	}

	next := this.freq.NextInstance(last)
	return this.boundsCheck(next, state)
}

// GetInstanceAfter is GetNextInstance anchored at date (or state's
// last_date) instead of this schedule's own bookkeeping.
func (this *ScheduledTransaction) GetInstanceAfter(date time.Time, state *TemporalState) (time.Time, bool) {
	prev, havePrev := date, !date.IsZero()
	if state != nil {
		prev, havePrev = state.LastDate, state.HaveLastDate
	}
	if !havePrev {
		if this.haveStartDate {
			prev = this.startDate.AddDate(0, 0, -1)
		} else {
			prev = time.Time{}
		}
	}

	next := this.freq.NextInstance(prev)
	return this.boundsCheck(next, state)
}

func (this *ScheduledTransaction) boundsCheck(next time.Time, state *TemporalState) (time.Time, bool) {
	if this.haveEndDate {
		if next.After(this.endDate) {
			return time.Time{}, false
		}
		return next, true
	}
	if this.HasOccurrenceDef() {
		remain := this.numOccurrencesRemain
		if state != nil {
			remain = state.NumOccurRemain
		}
		if remain == 0 {
			return time.Time{}, false
		}
	}
	return next, true
}

// Destroy tears down this schedule: its template transactions, its
// template account, and its entity-table registration, matching
// xaccSchedXactionFree.
func (this *ScheduledTransaction) Destroy(ctx context.Context) {
	this.deleteTemplateTrans(ctx)
	this.book.Accounts.TemplateGroup().RemoveAccount(this.templateAccount)
	this.book.Bus.GenerateEvent(this.id, guid.TypeSchedXaction, gncevent.DESTROY)
	this.book.Accounts.Entities.Remove(this.id)
}
