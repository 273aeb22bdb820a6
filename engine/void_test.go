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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"src.d10.dev/ledgercore/book"
	"src.d10.dev/ledgercore/guid"
	"src.d10.dev/ledgercore/numeric"
)

// S4 — void zeroes amounts and values, marks read-only, and stores a
// reason; unvoid restores the original amounts and clears read-only.
func TestS4VoidUnvoidRoundTrip(t *testing.T) {
	b, usd := newTestBook(t)
	ctx := context.Background()
	accA := book.NewAccount(guid.New(), "A", usd)
	accB := book.NewAccount(guid.New(), "B", usd)
	b.Accounts.RootGroup().InsertAccount(accA)
	b.Accounts.RootGroup().InsertAccount(accB)

	trans := NewTransaction(b)
	trans.BeginEdit(ctx)
	trans.SetCurrency(usd)
	trans.KVP().SetString("notes", "groceries")

	s1 := NewSplit(b)
	s1.SetAccount(accA)
	trans.AppendSplit(s1)
	s1.SetValue(numeric.Create(1000, 100))
	s1.SetAmount(numeric.Create(1000, 100))

	s2 := NewSplit(b)
	s2.SetAccount(accB)
	trans.AppendSplit(s2)
	s2.SetValue(numeric.Create(-1000, 100))
	s2.SetAmount(numeric.Create(-1000, 100))
	trans.CommitEdit(ctx)

	trans.Void(ctx, "entered in error")

	assert.True(t, trans.IsVoided())
	reason, ok := trans.VoidReason()
	require.True(t, ok)
	assert.Equal(t, "entered in error", reason)

	_, haveTime := trans.VoidTime()
	assert.True(t, haveTime)

	assert.True(t, s1.Amount().Zero())
	assert.True(t, s1.Value().Zero())
	assert.True(t, s2.Amount().Zero())
	assert.True(t, s2.Value().Zero())
	assert.Equal(t, Voided, s1.Reconciled())

	readOnly, isRO := trans.ReadOnlyReason()
	assert.True(t, isRO)
	assert.NotEmpty(t, readOnly)

	trans.Unvoid(ctx)

	assert.False(t, trans.IsVoided())
	assert.True(t, numeric.Equal(s1.Amount(), numeric.Create(1000, 100)))
	assert.True(t, numeric.Equal(s1.Value(), numeric.Create(1000, 100)))
	assert.True(t, numeric.Equal(s2.Amount(), numeric.Create(-1000, 100)))
	assert.Equal(t, NotReconciled, s1.Reconciled())

	notes, ok := trans.KVP().GetString("notes")
	require.True(t, ok)
	assert.Equal(t, "groceries", notes)

	_, isRO = trans.ReadOnlyReason()
	assert.False(t, isRO)
}

func TestVoidIsNoOpWhenAlreadyVoided(t *testing.T) {
	b, usd := newTestBook(t)
	ctx := context.Background()
	accA := book.NewAccount(guid.New(), "A", usd)
	b.Accounts.RootGroup().InsertAccount(accA)

	trans := NewTransaction(b)
	trans.BeginEdit(ctx)
	trans.SetCurrency(usd)
	s1 := NewSplit(b)
	s1.SetAccount(accA)
	trans.AppendSplit(s1)
	s1.SetValue(numeric.Create(100, 100))
	s1.SetAmount(numeric.Create(100, 100))
	trans.CommitEdit(ctx)

	trans.Void(ctx, "first reason")
	trans.Void(ctx, "second reason")

	reason, _ := trans.VoidReason()
	assert.Equal(t, "first reason", reason)
}

func TestReverseNegatesSplitsAndStaysBalanced(t *testing.T) {
	b, usd := newTestBook(t)
	ctx := context.Background()
	accA := book.NewAccount(guid.New(), "A", usd)
	accB := book.NewAccount(guid.New(), "B", usd)
	b.Accounts.RootGroup().InsertAccount(accA)
	b.Accounts.RootGroup().InsertAccount(accB)

	trans := NewTransaction(b)
	trans.BeginEdit(ctx)
	trans.SetCurrency(usd)
	s1 := NewSplit(b)
	s1.SetAccount(accA)
	trans.AppendSplit(s1)
	s1.SetValue(numeric.Create(500, 100))
	s1.SetAmount(numeric.Create(500, 100))
	s2 := NewSplit(b)
	s2.SetAccount(accB)
	trans.AppendSplit(s2)
	s2.SetValue(numeric.Create(-500, 100))
	s2.SetAmount(numeric.Create(-500, 100))
	trans.CommitEdit(ctx)

	trans.Reverse(ctx)

	assert.True(t, trans.IsBalanced())
	assert.True(t, numeric.Equal(s1.Value(), numeric.Create(-500, 100)))
	assert.True(t, numeric.Equal(s2.Value(), numeric.Create(500, 100)))
}
