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

// Package book provides the minimal concrete Account/Group/Lot/Book
// collaborators the engine posts splits against: just enough of
// xaccAccountInsertSplit / xaccAccountRemoveSplit / balance_dirty /
// sort_dirty / xaccAccountFixSplitDateOrder / xaccGroupMarkNotSaved to
// run and test the transactional core, not a full chart-of-accounts
// implementation.
package book

import (
	"sort"
	"sync"

	"src.d10.dev/ledgercore/commodity"
	"src.d10.dev/ledgercore/guid"
	"src.d10.dev/ledgercore/kvp"
)

// SplitRef is the minimal view an Account needs of a posted split:
// enough to sort and sum without importing package engine (which
// imports book), so the dependency runs one way.
type SplitRef interface {
	GUID() guid.GUID
	NumDenom() (num, denom int64)
	DateOrder() (postedUnix int64, enterUnix int64, splitOrderWeight int64)
}

type Account struct {
	mu sync.Mutex

	id        guid.GUID
	name      string
	parent    *Account
	children  []*Account
	commodity commodity.Commodity
	kvp       *kvp.Frame

	split []SplitRef

	balanceDirty bool
	sortDirty    bool

	group *Group
}

func NewAccount(id guid.GUID, name string, c commodity.Commodity) *Account {
	return &Account{id: id, name: name, commodity: c, kvp: kvp.New()}
}

func (this *Account) GUID() guid.GUID               { return this.id }
func (this *Account) Name() string                   { return this.name }
func (this *Account) Commodity() commodity.Commodity { return this.commodity }
func (this *Account) KVP() *kvp.Frame                { return this.kvp }
func (this *Account) Parent() *Account               { return this.parent }

// SetCommodity assigns this account's commodity. Used when an account
// is created from a reference (a split line naming it) before its
// commodity is known, and fixed up once a later line supplies it.
func (this *Account) SetCommodity(c commodity.Commodity) {
	this.mu.Lock()
	defer this.mu.Unlock()
	this.commodity = c
}

// FullName joins this account's ancestry with sep, root-to-leaf,
// mirroring xaccAccountGetFullName.
func (this *Account) FullName(sep string) string {
	if this == nil {
		return ""
	}
	if this.parent == nil {
		return this.name
	}
	return this.parent.FullName(sep) + sep + this.name
}

// InsertSplit appends split to this account's split list and marks
// both balance and sort dirty, per xaccAccountInsertSplit. A split
// already in the list (same GUID) is left in place, so each split
// appears at most once.
func (this *Account) InsertSplit(split SplitRef) {
	this.mu.Lock()
	defer this.mu.Unlock()
	id := split.GUID()
	for _, s := range this.split {
		if s.GUID() == id {
			return
		}
	}
	this.split = append(this.split, split)
	this.balanceDirty = true
	this.sortDirty = true
	if this.group != nil {
		this.group.MarkNotSaved()
	}
}

// RemoveSplit removes split from this account's split list, per
// xaccAccountRemoveSplit. It is a no-op if split is not present.
func (this *Account) RemoveSplit(split SplitRef) {
	this.mu.Lock()
	defer this.mu.Unlock()
	id := split.GUID()
	for i, s := range this.split {
		if s.GUID() == id {
			this.split = append(this.split[:i], this.split[i+1:]...)
			this.balanceDirty = true
			this.sortDirty = true
			if this.group != nil {
				this.group.MarkNotSaved()
			}
			return
		}
	}
}

func (this *Account) Splits() []SplitRef {
	this.mu.Lock()
	defer this.mu.Unlock()
	out := make([]SplitRef, len(this.split))
	copy(out, this.split)
	return out
}

func (this *Account) BalanceDirty() bool { return this.balanceDirty }
func (this *Account) SortDirty() bool    { return this.sortDirty }

// RecomputeBalance sums the exact amount of every posted split and
// clears the balance-dirty flag.
func (this *Account) RecomputeBalance() (num, denom int64) {
	this.mu.Lock()
	defer this.mu.Unlock()
	// All splits on one account share a commodity, hence a common
	// denominator: the account's own fraction.
	denom = this.commodity.Fraction()
	if denom == 0 {
		denom = 1
	}
	var total int64
	for _, s := range this.split {
		n, d := s.NumDenom()
		if d == 0 {
			d = 1
		}
		total += n * denom / d
	}
	this.balanceDirty = false
	return total, denom
}

// FixSplitDateOrder re-sorts the split list by posted date (then
// enter date, then split-order weight) and clears sort-dirty,
// mirroring xaccAccountFixSplitDateOrder / xaccSplitDateOrder.
func (this *Account) FixSplitDateOrder() {
	this.mu.Lock()
	defer this.mu.Unlock()
	sort.SliceStable(this.split, func(i, j int) bool {
		pi, ei, oi := this.split[i].DateOrder()
		pj, ej, oj := this.split[j].DateOrder()
		if pi != pj {
			return pi < pj
		}
		if ei != ej {
			return ei < ej
		}
		return oi < oj
	})
	this.sortDirty = false
}

// Group is an account tree. It tracks only the "not saved" dirty flag
// the engine is required to set on structural change; persistence
// itself is out of scope.
type Group struct {
	mu       sync.Mutex
	account  []*Account
	notSaved bool
}

func NewGroup() *Group {
	return &Group{}
}

func (this *Group) InsertAccount(a *Account) {
	this.mu.Lock()
	defer this.mu.Unlock()
	a.group = this
	this.account = append(this.account, a)
	this.notSaved = true
}

// RemoveAccount detaches a from this group, matching the bookkeeping
// xaccAccountDestroy performs on its parent group. A no-op if a is
// not a member.
func (this *Group) RemoveAccount(a *Account) {
	this.mu.Lock()
	defer this.mu.Unlock()
	for i, x := range this.account {
		if x == a {
			this.account = append(this.account[:i], this.account[i+1:]...)
			this.notSaved = true
			if a.group == this {
				a.group = nil
			}
			return
		}
	}
}

func (this *Group) Accounts() []*Account {
	this.mu.Lock()
	defer this.mu.Unlock()
	out := make([]*Account, len(this.account))
	copy(out, this.account)
	return out
}

func (this *Group) MarkNotSaved() {
	this.mu.Lock()
	this.notSaved = true
	this.mu.Unlock()
}

func (this *Group) NotSaved() bool {
	this.mu.Lock()
	defer this.mu.Unlock()
	return this.notSaved
}

func (this *Group) ClearNotSaved() {
	this.mu.Lock()
	this.notSaved = false
	this.mu.Unlock()
}

// Lot links a set of splits sharing a cost-basis lifecycle on one
// account. No lot-matching policy (FIFO/LIFO) is implemented; this
// is just the identity + membership stub the engine attaches gains
// splits to.
type Lot struct {
	id      guid.GUID
	account *Account
	split   []SplitRef
}

func NewLot(id guid.GUID, account *Account) *Lot {
	return &Lot{id: id, account: account}
}

func (this *Lot) GUID() guid.GUID    { return this.id }
func (this *Lot) Account() *Account  { return this.account }

func (this *Lot) AddSplit(s SplitRef) {
	this.split = append(this.split, s)
}

func (this *Lot) Splits() []SplitRef {
	out := make([]SplitRef, len(this.split))
	copy(out, this.split)
	return out
}
