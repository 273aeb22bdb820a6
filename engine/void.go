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
	"time"

	"src.d10.dev/ledgercore/numeric"
)

const voidedNotesText = "Voided transaction"

// Void saves the transaction's current notes into "void-former-notes"
// and replaces them with a fixed marker, zeroes every split's amount
// and value (stashing the former values in each split's
// "void-former-*" slots and marking it Voided), records reason and
// the void timestamp, and marks the transaction read-only, following
// xaccTransVoid. A no-op if already voided.
func (this *Transaction) Void(ctx context.Context, reason string) {
	if this.IsVoided() {
		return
	}
	this.BeginEdit(ctx)

	if notes, ok := this.kvp.GetString(kvpNotes); ok {
		this.kvp.SetString(kvpVoidFormerNotes, notes)
	}
	this.kvp.SetString(kvpNotes, voidedNotesText)
	this.kvp.SetString(kvpVoidReason, reason)
	this.kvp.SetTime(kvpVoidTime, time.Now())

	for _, s := range this.splits {
		s.kvp.SetNumeric(kvpVoidFormerAmount, s.amount)
		s.kvp.SetNumeric(kvpVoidFormerValue, s.value)
		s.amount = numeric.Zero(s.amount.Denom())
		s.value = numeric.Zero(s.value.Denom())
		s.reconciled = Voided
	}

	this.SetReadOnly("Transaction Voided")
	this.CommitEdit(ctx)
}

// Unvoid restores every split's amount and value from the
// "void-former-*" slots stashed by Void, restores the transaction's
// former notes, clears the reconcile flag back to not-reconciled,
// removes the void markers, and clears read-only, following
// xaccTransUnvoid. A no-op if not currently voided.
func (this *Transaction) Unvoid(ctx context.Context) {
	if !this.IsVoided() {
		return
	}
	this.BeginEdit(ctx)

	for _, s := range this.splits {
		if amt, ok := s.kvp.GetNumeric(kvpVoidFormerAmount); ok {
			s.amount = amt
			s.kvp.DeleteSlot(kvpVoidFormerAmount)
		}
		if val, ok := s.kvp.GetNumeric(kvpVoidFormerValue); ok {
			s.value = val
			s.kvp.DeleteSlot(kvpVoidFormerValue)
		}
		s.reconciled = NotReconciled
	}

	if notes, ok := this.kvp.GetString(kvpVoidFormerNotes); ok {
		this.kvp.SetString(kvpNotes, notes)
		this.kvp.DeleteSlot(kvpVoidFormerNotes)
	} else {
		this.kvp.DeleteSlot(kvpNotes)
	}
	this.kvp.DeleteSlot(kvpVoidReason)
	this.kvp.DeleteSlot(kvpVoidTime)

	this.ClearReadOnly()
	this.CommitEdit(ctx)
}

func (this *Transaction) VoidReason() (string, bool) { return this.kvp.GetString(kvpVoidReason) }
func (this *Transaction) VoidTime() (time.Time, bool) { return this.kvp.GetTime(kvpVoidTime) }

func (this *Transaction) IsVoided() bool {
	_, ok := this.VoidReason()
	return ok
}

// Reverse negates every split's amount and value in place and clears
// reconciliation state, leaving the transaction balanced (a sum
// scaled by -1 is still zero) and producing the inverted-effect
// transaction spec.md's reverse operation calls for, following
// xaccTransReverse's in-place negation under one begin/commit
// bracket.
func (this *Transaction) Reverse(ctx context.Context) {
	this.BeginEdit(ctx)
	for _, s := range this.splits {
		s.amount = numeric.Neg(s.amount)
		s.value = numeric.Neg(s.value)
		s.reconciled = NotReconciled
		s.dateReconciled = time.Time{}
	}
	this.CommitEdit(ctx)
}
