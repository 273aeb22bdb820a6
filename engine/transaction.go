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
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"src.d10.dev/ledgercore/backend"
	"src.d10.dev/ledgercore/book"
	"src.d10.dev/ledgercore/commodity"
	"src.d10.dev/ledgercore/gncevent"
	"src.d10.dev/ledgercore/guid"
	"src.d10.dev/ledgercore/kvp"
	"src.d10.dev/ledgercore/numeric"
)

const (
	kvpReadOnlyReason = "trans-read-only"
	kvpDateDue        = "trans-date-due"
	kvpTxnType        = "trans-txn-type"
	kvpNotes          = "notes"

	kvpVoidReason       = "void-reason"
	kvpVoidTime         = "void-time"
	kvpVoidFormerAmount = "void-former-amount"
	kvpVoidFormerValue  = "void-former-value"
	kvpVoidFormerNotes  = "void-former-notes"
)

// Transaction is an ordered set of splits sharing a posting date and
// a common currency, edited under the begin/commit/rollback protocol
// of xaccTransBeginEdit/xaccTransCommitEdit/xaccTransRollbackEdit.
type Transaction struct {
	id   guid.GUID
	book *Book

	num         string
	description string
	currency    commodity.Commodity
	haveCurrency bool

	splits []*Split

	datePosted  time.Time
	dateEntered time.Time

	editLevel int
	doFree    bool
	orig      *Transaction // shallow snapshot, non-nil only while open

	version      int32
	versionCheck int32

	kvp *kvp.Frame
}

// NewTransaction allocates an unopened, empty transaction, the
// equivalent of xaccMallocTransaction.
func NewTransaction(b *Book) *Transaction {
	t := &Transaction{
		id:   b.newGUID(),
		book: b,
		kvp:  kvp.New(),
	}
	b.Accounts.Entities.Store(t.id, guid.TypeTransaction, t)
	return t
}

func (this *Transaction) GUID() guid.GUID            { return this.id }
func (this *Transaction) Book() *Book                { return this.book }
func (this *Transaction) Num() string                { return this.num }
func (this *Transaction) Description() string        { return this.description }
func (this *Transaction) Currency() (commodity.Commodity, bool) { return this.currency, this.haveCurrency }
func (this *Transaction) DatePosted() time.Time      { return this.datePosted }
func (this *Transaction) DateEntered() time.Time     { return this.dateEntered }
func (this *Transaction) KVP() *kvp.Frame            { return this.kvp }
func (this *Transaction) IsOpen() bool               { return this.editLevel > 0 }
func (this *Transaction) EditLevel() int             { return this.editLevel }

func (this *Transaction) currencyOrZero() (commodity.Commodity, bool) {
	return this.currency, this.haveCurrency
}

// Splits returns a defensive copy of the ordered split list.
func (this *Transaction) Splits() []*Split {
	out := make([]*Split, len(this.splits))
	copy(out, this.splits)
	return out
}

func (this *Transaction) checkOpen(op string) {
	if this.editLevel == 0 {
		this.book.warn("engine: %s called on transaction %s outside an open edit", op, this.id)
	}
}

// ReadOnlyReason returns the "trans-read-only" KVP slot's reason
// string, if the transaction is currently read-only.
func (this *Transaction) ReadOnlyReason() (string, bool) {
	return this.kvp.GetString(kvpReadOnlyReason)
}

func (this *Transaction) SetReadOnly(reason string) {
	this.kvp.SetString(kvpReadOnlyReason, reason)
}

func (this *Transaction) ClearReadOnly() {
	this.kvp.DeleteSlot(kvpReadOnlyReason)
}

// warnReadOnly reports and returns true if this transaction is
// currently read-only, matching xaccTransWarnReadOnly.
func (this *Transaction) warnReadOnly(op string) bool {
	if reason, ok := this.ReadOnlyReason(); ok {
		this.book.warn("engine: %s refused on transaction %s: read-only: %s", op, this.id, reason)
		return true
	}
	return false
}

func (this *Transaction) SetNum(num string) {
	this.checkOpen("SetNum")
	this.num = this.book.intern(num)
}

func (this *Transaction) SetDescription(desc string) {
	this.checkOpen("SetDescription")
	this.description = this.book.intern(desc)
}

// SetCurrency rewrites every split's value via convert(value,
// c.fraction, ROUND). It sets no dirty flag: Transaction keeps none.
func (this *Transaction) SetCurrency(c commodity.Commodity) {
	this.checkOpen("SetCurrency")
	this.currency = c
	this.haveCurrency = true
	for _, s := range this.splits {
		s.value = numeric.Convert(s.value, c.Fraction(), numeric.ROUND)
	}
}

func (this *Transaction) SetDatePosted(t time.Time) {
	this.checkOpen("SetDatePosted")
	this.datePosted = t
	this.propagateGainsDateDirty()
}

func (this *Transaction) SetDateEntered(t time.Time) {
	this.checkOpen("SetDateEntered")
	this.dateEntered = t
}

func (this *Transaction) SetDateDue(t time.Time) {
	this.checkOpen("SetDateDue")
	this.kvp.SetTime(kvpDateDue, t)
}

func (this *Transaction) SetTxnType(t byte) {
	this.checkOpen("SetTxnType")
	this.kvp.SetString(kvpTxnType, string(t))
}

func (this *Transaction) SetVersion(v int32)  { this.version = v }
func (this *Transaction) Version() int32      { return this.version }

// AppendSplit attaches split to this transaction, detaching it from
// any prior transaction first, matching xaccTransAppendSplit.
func (this *Transaction) AppendSplit(s *Split) {
	this.checkOpen("AppendSplit")
	if s.parent != nil && s.parent != this {
		s.parent.removeSplit(s)
	}
	s.parent = this
	this.splits = append(this.splits, s)
	if s.acc != nil {
		s.acc.InsertSplit(s)
	}
}

func (this *Transaction) removeSplit(s *Split) {
	for i, x := range this.splits {
		if x == s {
			this.splits = append(this.splits[:i], this.splits[i+1:]...)
			return
		}
	}
}

// BeginEdit opens (or nests into) an edit session, snapshotting
// scalar fields and a shallow split clone on the outermost call,
// following xaccTransBeginEdit.
func (this *Transaction) BeginEdit(ctx context.Context) {
	this.editLevel++
	if this.editLevel > 1 {
		return
	}
	if this.editLevel <= 0 {
		this.book.warn("engine: unbalanced BeginEdit on transaction %s - resetting", this.id)
		this.editLevel = 1
	}

	if this.book.Backend != nil {
		this.book.Backend.Begin(ctx, string(guid.TypeTransaction), this.id.String())
	}
	this.book.Journal.WriteLog(string(guid.TypeTransaction), this.id.String(), backend.TagBegin)

	this.orig = this.snapshot()
}

// snapshot produces the shallow rollback copy xaccDupeTransaction
// takes: same object, scalar fields and split list duplicated.
func (this *Transaction) snapshot() *Transaction {
	clones := make([]*Split, len(this.splits))
	for i, s := range this.splits {
		clones[i] = s.clone()
	}
	return &Transaction{
		id:           this.id,
		book:         this.book,
		num:          this.num,
		description:  this.description,
		currency:     this.currency,
		haveCurrency: this.haveCurrency,
		splits:       clones,
		datePosted:   this.datePosted,
		dateEntered:  this.dateEntered,
		version:      this.version,
		versionCheck: this.versionCheck,
		kvp:          this.kvp.Copy(),
	}
}

// Destroy marks this transaction for deletion at the next commit,
// refusing if it is read-only, per xaccTransDestroy.
func (this *Transaction) Destroy() bool {
	this.checkOpen("Destroy")
	if this.warnReadOnly("Destroy") {
		return false
	}
	this.doFree = true
	return true
}

// CommitEdit runs the commit half of the edit protocol: cleanup,
// auto-balance, sort, back-end commit, then either destruction or
// finalisation with coalesced events, following xaccTransCommitEdit.
func (this *Transaction) CommitEdit(ctx context.Context) {
	this.editLevel--
	if this.editLevel > 0 {
		return
	}
	if this.editLevel < 0 {
		this.book.warn("engine: unbalanced CommitEdit on transaction %s - resetting", this.id)
		this.editLevel = 0
	}
	this.editLevel++ // held open for the duration of this call

	if len(this.splits) > 0 && !this.doFree {
		if this.dateEntered.IsZero() {
			this.dateEntered = time.Now()
		}
		switch this.book.Accounts.StrictMode() {
		case book.StrictFail:
			if len(this.splits) == 1 && !this.splits[0].amount.Zero() {
				this.autoBalance()
			}
		case book.LostAndFound:
			this.routeImbalanceToLostAndFound()
		}
	}

	this.sortSplits()

	entityID := this.id.String()
	if this.book.Backend != nil {
		code := this.book.Backend.Commit(ctx, string(guid.TypeTransaction), entityID, this)
		if code != backend.NoErr {
			if code == backend.Modified {
				this.book.warn("engine: transaction %s modified by another user, rolling back", this.id)
			}
			this.RollbackEdit(ctx)
			return
		}
	}

	if this.doFree || len(this.splits) == 0 {
		this.destroy(ctx)
		this.editLevel = 0
		return
	}

	for _, s := range this.splits {
		if s.acc != nil {
			s.acc.FixSplitDateOrder()
		}
	}

	this.doFree = false
	this.book.Journal.WriteLog(string(guid.TypeTransaction), entityID, backend.TagCommit)
	this.orig = nil

	this.editLevel--

	this.emitCommitEvents()
}

// autoBalance appends a sign-flipped matching split on the same
// account when a single-split strict-mode transaction would not
// balance, per the force_double_entry==1 branch of
// xaccTransCommitEdit.
func (this *Transaction) autoBalance() {
	orig := this.splits[0]
	s := NewSplit(this.book)
	s.acc = orig.acc
	this.AppendSplit(s)
	s.amount = numeric.Neg(orig.amount)
	s.value = numeric.Neg(orig.value)
	s.memo = orig.memo
	s.action = orig.action
}

// routeImbalanceToLostAndFound attaches every split that has no
// account to the per-book orphan account, then appends a compensating
// split against that account for any remaining imbalance instead of
// refusing the commit, the lost-and-found resolution of the strict
// mode 2 Open Question recorded in DESIGN.md.
func (this *Transaction) routeImbalanceToLostAndFound() {
	if !this.haveCurrency {
		return
	}
	var orphan *book.Account
	for _, s := range this.splits {
		if s.acc == nil {
			if orphan == nil {
				orphan = this.book.Accounts.LostAndFoundAccount(this.currency)
			}
			s.acc = orphan
			orphan.InsertSplit(s)
		}
	}
	imbalance := this.Imbalance()
	if imbalance.Zero() {
		return
	}
	if orphan == nil {
		orphan = this.book.Accounts.LostAndFoundAccount(this.currency)
	}
	s := NewSplit(this.book)
	s.acc = orphan
	this.AppendSplit(s)
	s.value = numeric.Neg(imbalance)
	s.amount = numeric.Convert(numeric.Neg(imbalance), orphan.Commodity().Fraction(), numeric.ROUND)
}

// sortSplits places all non-negative-value splits before all
// negative-value splits, preserving relative order within each group,
// per xaccTransSortSplits.
func (this *Transaction) sortSplits() {
	var debits, credits []*Split
	for _, s := range this.splits {
		if s.value.Negative() {
			credits = append(credits, s)
		} else {
			debits = append(debits, s)
		}
	}
	this.splits = append(debits, credits...)
}

func (this *Transaction) destroy(ctx context.Context) {
	this.destroyGains(ctx)

	this.book.Journal.WriteLog(string(guid.TypeTransaction), this.id.String(), backend.TagDestroy)
	this.book.Bus.GenerateEvent(this.id, guid.TypeTransaction, gncevent.DESTROY)

	for _, s := range this.splits {
		if s.acc != nil {
			s.acc.RemoveSplit(s)
			s.acc.RecomputeBalance()
		}
		this.book.Bus.GenerateEvent(s.id, guid.TypeSplit, gncevent.DESTROY)
		this.book.Accounts.Entities.Remove(s.id)
	}
	this.splits = nil
	this.book.Accounts.Entities.Remove(this.id)
}

// destroyGains destroys any capital-gains transaction this
// transaction's splits reference as a gains source, per destroy_gains.
func (this *Transaction) destroyGains(ctx context.Context) {
	for _, s := range this.splits {
		if s.gainsStatus == GainsUnknown {
			s.determineGainStatus()
		}
		if s.gainsPeer != nil && s.gainsPeer.gainsStatus == GainsIsGainsSplit {
			t := s.gainsPeer.parent
			if t != nil {
				t.BeginEdit(ctx)
				t.Destroy()
				t.CommitEdit(ctx)
			}
			s.gainsPeer = nil
		}
	}
}

func (this *Transaction) emitCommitEvents() {
	seenAccount := make(map[guid.GUID]bool)
	seenLot := make(map[guid.GUID]bool)
	for _, s := range this.splits {
		if s.acc != nil && !seenAccount[s.acc.GUID()] {
			seenAccount[s.acc.GUID()] = true
			this.book.Bus.GenerateEvent(s.acc.GUID(), guid.TypeAccount, gncevent.MODIFY)
		}
		if s.lot != nil && !seenLot[s.lot.GUID()] {
			seenLot[s.lot.GUID()] = true
			this.book.Bus.GenerateEvent(s.lot.GUID(), guid.TypeLot, gncevent.MODIFY)
		}
	}
	this.book.Bus.GenerateEvent(this.id, guid.TypeTransaction, gncevent.MODIFY)
}

// RollbackEdit restores scalar fields and splits from the snapshot
// taken at BeginEdit, falling back to a brute-force splice when the
// split lists have diverged in membership, per xaccTransRollbackEdit.
func (this *Transaction) RollbackEdit(ctx context.Context) {
	this.editLevel--
	if this.editLevel > 0 {
		return
	}
	if this.editLevel < 0 {
		this.book.warn("engine: unbalanced RollbackEdit on transaction %s - resetting", this.id)
		this.editLevel = 0
	}
	this.editLevel++

	orig := this.orig
	if orig == nil {
		this.editLevel--
		return
	}

	this.currency = orig.currency
	this.haveCurrency = orig.haveCurrency
	this.num = orig.num
	this.description = orig.description
	this.kvp = orig.kvp.Copy()
	this.dateEntered = orig.dateEntered
	this.datePosted = orig.datePosted

	forceIt := false
	mismatch := 0

	if this.doFree {
		forceIt = true
	} else {
		n := len(this.splits)
		if len(orig.splits) < n {
			n = len(orig.splits)
		}
		i := 0
		for ; i < n; i++ {
			s, so := this.splits[i], orig.splits[i]
			if s.acc != so.acc {
				forceIt = true
				mismatch = i
				break
			}
			s.restoreFrom(so)
			if s.acc != nil {
				s.acc.FixSplitDateOrder()
				s.acc.RecomputeBalance()
			}
		}
		if !forceIt && len(this.splits) != len(orig.splits) {
			forceIt = true
			mismatch = i
		}
	}

	if forceIt {
		this.spliceRollback(orig, mismatch)
	}

	entityID := this.id.String()
	if this.book.Backend != nil {
		code := this.book.Backend.Rollback(ctx, string(guid.TypeTransaction), entityID)
		if code == backend.ModDestroy {
			this.doFree = true
			this.destroy(ctx)
			this.book.warn("engine: transaction %s destroyed by backend during rollback", this.id)
			this.editLevel = 0
			return
		}
	}

	this.book.Journal.WriteLog(string(guid.TypeTransaction), entityID, backend.TagRollback)

	this.orig = nil
	this.doFree = false
	this.editLevel--
}

// spliceRollback is the brute-force fallback of xaccTransRollbackEdit:
// splits [0,mismatch) keep their current (already-restored) objects;
// current splits at or past mismatch are detached and freed; the
// tail of orig's splits (from mismatch onward) replace them wholesale.
func (this *Transaction) spliceRollback(orig *Transaction, mismatch int) {
	kept := append([]*Split{}, this.splits[:minInt(mismatch, len(this.splits))]...)

	for i := mismatch; i < len(this.splits); i++ {
		s := this.splits[i]
		if s.acc != nil {
			s.acc.RemoveSplit(s)
			s.acc.RecomputeBalance()
		}
		this.book.Accounts.Entities.Remove(s.id)
	}

	for i := mismatch; i < len(orig.splits); i++ {
		s := orig.splits[i]
		s.parent = this
		this.book.Accounts.Entities.Store(s.id, guid.TypeSplit, s)
		if s.acc != nil {
			s.acc.InsertSplit(s)
			s.acc.RecomputeBalance()
		}
		kept = append(kept, s)
	}

	this.splits = kept
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Order is the total order used to place transactions in accounts and
// ledgers: date_posted, then num as an integer, then date_entered,
// then description (null-safe lexicographic), then GUID — following
// xaccTransOrder.
func Order(a, b *Transaction) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return 1
	}
	if b == nil {
		return -1
	}
	if c := compareTime(a.datePosted, b.datePosted); c != 0 {
		return c
	}
	na, _ := strconv.Atoi(a.num)
	nb, _ := strconv.Atoi(b.num)
	if na != nb {
		if na < nb {
			return -1
		}
		return 1
	}
	if c := compareTime(a.dateEntered, b.dateEntered); c != 0 {
		return c
	}
	if c := strings.Compare(a.description, b.description); c != 0 {
		return c
	}
	return strings.Compare(a.id.String(), b.id.String())
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

// SplitOrder extends Order with memo, action, reconcile, amount,
// value, date_reconciled, then GUID, following xaccSplitDateOrder.
func SplitOrder(a, b *Split) int {
	if a == b {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	if c := Order(a.parent, b.parent); c != 0 {
		return c
	}
	if c := strings.Compare(a.memo, b.memo); c != 0 {
		return c
	}
	if c := strings.Compare(a.action, b.action); c != 0 {
		return c
	}
	if a.reconciled != b.reconciled {
		if a.reconciled < b.reconciled {
			return -1
		}
		return 1
	}
	if c := numeric.Compare(a.amount, b.amount); c != 0 {
		return c
	}
	if c := numeric.Compare(a.value, b.value); c != 0 {
		return c
	}
	if c := compareTime(a.dateReconciled, b.dateReconciled); c != 0 {
		return c
	}
	return strings.Compare(a.id.String(), b.id.String())
}

// sortAll lays out a slice of splits per SplitOrder. Nothing in this
// module calls it.
func sortAll(splits []*Split) {
	sort.SliceStable(splits, func(i, j int) bool {
		return SplitOrder(splits[i], splits[j]) < 0
	})
}

// ComputeValue sums value over splits whose account commodity matches
// base (or, with no account, tolerant mode sums value directly),
// converted to base's fraction with ROUND (or reduced if base is the
// zero commodity), following xaccSplitsComputeValue. Under StrictFail
// or LostAndFound mode, a split with no account is
// g_return_val_if_fail territory: the whole computation bails out to
// zero immediately rather than skipping just that split.
func ComputeValue(splits []*Split, skip *Split, base commodity.Commodity, haveBase bool) numeric.Numeric {
	total := numeric.Zero(numeric.AUTO)
	for _, s := range splits {
		if s == skip {
			continue
		}
		if s.acc == nil {
			if s.parent != nil {
				switch s.parent.book.Accounts.StrictMode() {
				case book.StrictFail, book.LostAndFound:
					return numeric.Zero(numeric.AUTO)
				}
			}
			total = numeric.Add(total, s.value, numeric.LCD, numeric.ROUND)
			continue
		}
		currency, haveCurrency := s.parent.currencyOrZero()
		acctCommodity := s.acc.Commodity()
		strictMode := book.RelaxedEntry
		if s.parent != nil {
			strictMode = s.parent.book.Accounts.StrictMode()
		}
		switch {
		case !haveBase && haveCurrency && strictMode == book.RelaxedEntry:
			total = numeric.Add(total, s.value, numeric.LCD, numeric.ROUND)
		case haveBase && haveCurrency && currency.Equal(base):
			total = numeric.Add(total, s.value, numeric.LCD, numeric.ROUND)
		case haveBase && acctCommodity.Equal(base):
			total = numeric.Add(total, s.amount, numeric.LCD, numeric.ROUND)
		}
	}
	if haveBase {
		return numeric.Convert(total, base.Fraction(), numeric.ROUND)
	}
	return numeric.Convert(total, numeric.AUTO, numeric.REDUCE)
}

// Imbalance reports compute_value(trans.splits, nil, trans.currency).
// A transaction is balanced iff this is zero.
func (this *Transaction) Imbalance() numeric.Numeric {
	return ComputeValue(this.splits, nil, this.currency, this.haveCurrency)
}

func (this *Transaction) IsBalanced() bool {
	return this.Imbalance().Zero()
}
