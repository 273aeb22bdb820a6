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

package engine

import (
	"time"

	"src.d10.dev/ledgercore/book"
	"src.d10.dev/ledgercore/commodity"
	"src.d10.dev/ledgercore/guid"
	"src.d10.dev/ledgercore/kvp"
	"src.d10.dev/ledgercore/numeric"
)

// Reconcile is a split's reconciliation flag: N=not-reconciled,
// C=cleared, Y=yes-reconciled, F=frozen, V=voided.
type Reconcile byte

const (
	NotReconciled Reconcile = 'n'
	Cleared       Reconcile = 'c'
	Reconciled    Reconcile = 'y'
	Frozen        Reconcile = 'f'
	Voided        Reconcile = 'v'
)

func validReconcile(r Reconcile) bool {
	switch r {
	case NotReconciled, Cleared, Reconciled, Frozen, Voided:
		return true
	}
	return false
}

// GainsStatus is the lazy capital-gains bitset DetermineGainStatus
// computes: Unknown until first queried, then either a plain
// (possibly dirty) leg or the gains leg of some source split.
type GainsStatus int

const (
	GainsUnknown GainsStatus = iota
	GainsValueDirty
	GainsDateDirty
	GainsIsGainsSplit
)

const (
	kvpGainsSource = "gains-source"
	kvpSplitType   = "split-type"
	splitTypeStock = "stock-split"
)

// Split is one leg of a Transaction: an account link, an amount in
// the account's commodity, a value in the transaction's currency, and
// reconciliation/gains-linkage state.
type Split struct {
	id   guid.GUID
	book *Book

	parent *Transaction
	acc    *book.Account
	lot    *book.Lot

	memo   string
	action string

	reconciled     Reconcile
	dateReconciled time.Time

	amount numeric.Numeric
	value  numeric.Numeric

	kvp *kvp.Frame

	gainsStatus GainsStatus
	gainsPeer   *Split

	// splitOrderWeight breaks ties in xaccSplitDateOrder when every
	// other key compares equal; it is assigned in creation order, the
	// same role xaccSplitDateOrder's final GUID compare plays, but
	// numeric so book.Account can sort without importing engine.
	splitOrderWeight int64
}

var splitWeightCounter int64

// NewSplit allocates an unattached split, the equivalent of
// xaccMallocSplit: registered in the book's entity table, not yet a
// member of any transaction or account.
func NewSplit(b *Book) *Split {
	splitWeightCounter++
	s := &Split{
		id:               b.newGUID(),
		book:             b,
		reconciled:       NotReconciled,
		amount:           numeric.Zero(numeric.AUTO),
		value:            numeric.Zero(numeric.AUTO),
		kvp:              kvp.New(),
		splitOrderWeight: splitWeightCounter,
	}
	b.Accounts.Entities.Store(s.id, guid.TypeSplit, s)
	return s
}

func (this *Split) GUID() guid.GUID         { return this.id }
func (this *Split) Book() *Book             { return this.book }
func (this *Split) Parent() *Transaction    { return this.parent }
func (this *Split) Account() *book.Account  { return this.acc }
func (this *Split) Lot() *book.Lot          { return this.lot }
func (this *Split) Memo() string            { return this.memo }
func (this *Split) Action() string          { return this.action }
func (this *Split) Reconciled() Reconcile   { return this.reconciled }
func (this *Split) DateReconciled() time.Time { return this.dateReconciled }
func (this *Split) Amount() numeric.Numeric { return this.amount }
func (this *Split) Value() numeric.Numeric  { return this.value }
func (this *Split) KVP() *kvp.Frame         { return this.kvp }

// NumDenom implements book.SplitRef for account balance summation:
// it reports the split's amount, which is in the account's commodity.
func (this *Split) NumDenom() (num, denom int64) {
	return this.amount.NumDenom()
}

// DateOrder implements book.SplitRef: transaction posted/entered
// unix seconds, then this split's creation-order weight as the final
// tie-break (a numeric stand-in for xaccSplitDateOrder's GUID
// compare).
func (this *Split) DateOrder() (postedUnix, enterUnix, weight int64) {
	if this.parent != nil {
		if !this.parent.datePosted.IsZero() {
			postedUnix = this.parent.datePosted.Unix()
		}
		if !this.parent.dateEntered.IsZero() {
			enterUnix = this.parent.dateEntered.Unix()
		}
	}
	return postedUnix, enterUnix, this.splitOrderWeight
}

// checkOpen warns (non-fatally) if this split's parent transaction is
// not currently open for edit, matching check_open's PWARN path
// inlined into each mutator per spec.md §4.2.
func (this *Split) checkOpen(op string) {
	if this.parent == nil || this.parent.editLevel == 0 {
		this.book.warn("engine: %s called on split %s outside an open edit", op, this.id)
	}
}

// readOnlyRefused reports this split's parent's read-only reason (if
// any) to Warn and returns true, matching xaccTransWarnReadOnly's
// gate on mutation and destroy.
func (this *Split) readOnlyRefused(op string) bool {
	if this.parent == nil {
		return false
	}
	if reason, ok := this.parent.ReadOnlyReason(); ok {
		this.book.warn("engine: %s refused on split %s: transaction is read-only: %s", op, this.id, reason)
		return true
	}
	return false
}

// SetMemo interns and stores memo.
func (this *Split) SetMemo(memo string) {
	this.checkOpen("SetMemo")
	this.memo = this.book.intern(memo)
}

// SetAction interns and stores action.
func (this *Split) SetAction(action string) {
	this.checkOpen("SetAction")
	this.action = this.book.intern(action)
}

// SetAmount stores n converted to the account's commodity fraction,
// rounding to nearest.
func (this *Split) SetAmount(n numeric.Numeric) {
	this.checkOpen("SetAmount")
	if this.readOnlyRefused("SetAmount") {
		return
	}
	denom := this.accountFraction()
	this.amount = numeric.Convert(n, denom, numeric.ROUND)
	this.gainsStatus = GainsValueDirty
}

// SetValue stores n converted to the transaction's currency fraction.
func (this *Split) SetValue(n numeric.Numeric) {
	this.checkOpen("SetValue")
	if this.readOnlyRefused("SetValue") {
		return
	}
	denom := this.currencyFraction()
	this.value = numeric.Convert(n, denom, numeric.ROUND)
	this.gainsStatus = GainsValueDirty
}

// SetSharePrice sets value = amount * p, rounded to the currency
// fraction.
func (this *Split) SetSharePrice(p numeric.Numeric) {
	this.checkOpen("SetSharePrice")
	if this.readOnlyRefused("SetSharePrice") {
		return
	}
	denom := this.currencyFraction()
	v := numeric.Mul(this.amount, p, numeric.AUTO, numeric.ROUND)
	this.value = numeric.Convert(v, denom, numeric.ROUND)
}

// SetSharePriceAndAmount atomically sets amount then derives value =
// amount * p.
func (this *Split) SetSharePriceAndAmount(p, a numeric.Numeric) {
	this.checkOpen("SetSharePriceAndAmount")
	if this.readOnlyRefused("SetSharePriceAndAmount") {
		return
	}
	this.amount = numeric.Convert(a, this.accountFraction(), numeric.ROUND)
	v := numeric.Mul(this.amount, p, numeric.AUTO, numeric.ROUND)
	this.value = numeric.Convert(v, this.currencyFraction(), numeric.ROUND)
}

// SetBaseValue dispatches by whether base equals the currency, the
// account commodity, or (no account, non-strict book) sets both
// fields to n, per xaccSplitSetBaseValue.
func (this *Split) SetBaseValue(n numeric.Numeric, base commodity.Commodity) {
	this.checkOpen("SetBaseValue")
	if this.readOnlyRefused("SetBaseValue") {
		return
	}

	if this.acc == nil {
		if this.book.Accounts.StrictMode() == book.StrictFail {
			this.book.warn("engine: SetBaseValue on unattached split %s refused by strict mode", this.id)
			return
		}
		this.value = n
		this.amount = n
		return
	}

	currency, haveCurrency := this.parent.currencyOrZero()
	commodity := this.acc.Commodity()

	switch {
	case haveCurrency && currency.Equal(base):
		if commodity.Equal(base) {
			this.amount = numeric.Convert(n, this.accountFraction(), numeric.NEVER)
		}
		this.value = numeric.Convert(n, this.currencyFraction(), numeric.NEVER)
	case commodity.Equal(base):
		this.amount = numeric.Convert(n, this.accountFraction(), numeric.NEVER)
	case !haveCurrency && this.book.Accounts.StrictMode() == book.RelaxedEntry:
		this.value = numeric.Convert(n, this.currencyFraction(), numeric.NEVER)
	default:
		this.book.warn("engine: SetBaseValue on split %s: inappropriate base commodity %s", this.id, base)
	}
}

// SetReconcile accepts only {N,C,Y,F,V}; anything else warns and
// no-ops. A genuine change triggers account balance recomputation.
func (this *Split) SetReconcile(r Reconcile) {
	this.checkOpen("SetReconcile")
	if !validReconcile(r) {
		this.book.warn("engine: SetReconcile on split %s: invalid reconcile flag %q", this.id, r)
		return
	}
	if this.readOnlyRefused("SetReconcile") {
		return
	}
	if this.reconciled != r {
		this.reconciled = r
		if this.acc != nil {
			this.acc.RecomputeBalance()
		}
	}
}

func (this *Split) SetDateReconciled(t time.Time) {
	this.checkOpen("SetDateReconciled")
	this.dateReconciled = t
}

// MakeStockSplit zeroes value and marks the "split-type" KVP slot
// "stock-split"; afterwards only amount is meaningful.
func (this *Split) MakeStockSplit() {
	this.checkOpen("MakeStockSplit")
	this.value = numeric.Zero(this.currencyFraction())
	this.kvp.SetString(kvpSplitType, splitTypeStock)
}

func (this *Split) IsStockSplit() bool {
	t, _ := this.kvp.GetString(kvpSplitType)
	return t == splitTypeStock
}

// Destroy removes this split from its transaction, account, and lot.
// Returns false (refusing the destroy) if the parent transaction is
// read-only, per xaccSplitDestroy's acc->do_free-or-warn-read-only
// gate.
func (this *Split) Destroy() bool {
	if this.readOnlyRefused("Destroy") {
		return false
	}
	this.checkOpen("Destroy")

	if this.parent != nil {
		this.parent.removeSplit(this)
	}
	if this.acc != nil {
		this.acc.RemoveSplit(this)
		this.acc.RecomputeBalance()
	}
	if this.lot != nil {
		this.lot = nil
	}
	if this.gainsPeer != nil && this.gainsPeer.gainsPeer == this {
		this.gainsPeer.gainsPeer = nil
	}
	this.book.Accounts.Entities.Remove(this.id)
	return true
}

// SetAccount attaches this split to a, detaching it from any prior
// account first and inserting it into a's split list, matching the
// symmetric pairing xaccAccountInsertSplit performs between a split
// and its account.
func (this *Split) SetAccount(a *book.Account) {
	this.checkOpen("SetAccount")
	if this.acc == a {
		return
	}
	if this.acc != nil {
		this.acc.RemoveSplit(this)
	}
	this.acc = a
	if a != nil {
		a.InsertSplit(this)
	}
}

func (this *Split) accountFraction() int64 {
	if this.acc != nil {
		return this.acc.Commodity().Fraction()
	}
	return this.currencyFraction()
}

func (this *Split) currencyFraction() int64 {
	if this.parent != nil {
		if c, ok := this.parent.currencyOrZero(); ok {
			return c.Fraction()
		}
	}
	return numeric.AUTO
}

// clone produces the shallow rollback-snapshot copy xaccTransBeginEdit
// takes of every split: same GUID/account/lot references, scalar
// fields and KVP frame copied.
func (this *Split) clone() *Split {
	c := &Split{
		id:               this.id,
		book:             this.book,
		acc:              this.acc,
		lot:              this.lot,
		memo:             this.memo,
		action:           this.action,
		reconciled:       this.reconciled,
		dateReconciled:   this.dateReconciled,
		amount:           this.amount,
		value:            this.value,
		kvp:              this.kvp.Copy(),
		gainsStatus:      this.gainsStatus,
		gainsPeer:        this.gainsPeer,
		splitOrderWeight: this.splitOrderWeight,
	}
	return c
}

// restoreFrom copies scalar fields and KVP back from snapshot o, the
// per-split pairwise-restore step of xaccTransRollbackEdit.
func (this *Split) restoreFrom(o *Split) {
	this.memo = o.memo
	this.action = o.action
	this.kvp = o.kvp.Copy()
	this.reconciled = o.reconciled
	this.amount = o.amount
	this.value = o.value
	this.dateReconciled = o.dateReconciled
}
