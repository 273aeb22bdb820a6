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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"src.d10.dev/ledgercore/book"
	"src.d10.dev/ledgercore/commodity"
	"src.d10.dev/ledgercore/gncevent"
	"src.d10.dev/ledgercore/guid"
	"src.d10.dev/ledgercore/numeric"
)

func newTestBook(t *testing.T) (*Book, commodity.Commodity) {
	t.Helper()
	b := NewBook()
	b.Warn = func(format string, args ...any) {} // silence expected warnings in tests
	tbl := commodity.NewTable()
	usd := tbl.Currency("USD", 100)
	return b, usd
}

// S1 — Double-entry commit: balanced transaction across two accounts,
// one MODIFY event each for A, B, T.
func TestS1DoubleEntryCommit(t *testing.T) {
	b, usd := newTestBook(t)
	ctx := context.Background()

	bus := b.Bus.(*gncevent.MemBus)
	events := bus.Subscribe()
	defer bus.Unsubscribe(events)

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
	s1.SetValue(numeric.Create(1000, 100))
	s1.SetAmount(numeric.Create(1000, 100))

	s2 := NewSplit(b)
	s2.SetAccount(accB)
	trans.AppendSplit(s2)
	s2.SetValue(numeric.Create(-1000, 100))
	s2.SetAmount(numeric.Create(-1000, 100))

	trans.CommitEdit(ctx)

	assert.True(t, trans.IsBalanced())
	assert.Contains(t, accA.Splits(), book.SplitRef(s1))
	assert.Contains(t, accB.Splits(), book.SplitRef(s2))

	modified := map[guid.GUID]int{}
	drain := true
	for drain {
		select {
		case ev := <-events:
			if ev.Kind == gncevent.MODIFY {
				modified[ev.GUID]++
			}
		default:
			drain = false
		}
	}
	assert.Equal(t, 1, modified[accA.GUID()])
	assert.Equal(t, 1, modified[accB.GUID()])
	assert.Equal(t, 1, modified[trans.GUID()])
}

// S2 — Auto-balance: a single-split strict-mode transaction gets a
// compensating split inserted at commit.
func TestS2AutoBalance(t *testing.T) {
	b, usd := newTestBook(t)
	b.Accounts.SetStrictMode(book.StrictFail)
	ctx := context.Background()

	accA := book.NewAccount(guid.New(), "A", usd)
	b.Accounts.RootGroup().InsertAccount(accA)

	trans := NewTransaction(b)
	trans.BeginEdit(ctx)
	trans.SetCurrency(usd)

	s1 := NewSplit(b)
	s1.SetAccount(accA)
	s1.SetMemo("deposit")
	s1.SetAction("buy")
	trans.AppendSplit(s1)
	s1.SetAmount(numeric.Create(3, 1))
	s1.SetValue(numeric.Create(300, 100))

	trans.CommitEdit(ctx)

	splits := trans.Splits()
	require.Len(t, splits, 2)
	assert.True(t, trans.IsBalanced())

	inserted := splits[1]
	assert.Equal(t, accA, inserted.Account())
	assert.True(t, numeric.Equal(inserted.Amount(), numeric.Create(-3, 1)))
	assert.True(t, numeric.Equal(inserted.Value(), numeric.Create(-300, 100)))
	assert.Equal(t, "deposit", inserted.Memo())
	assert.Equal(t, "buy", inserted.Action())

	// debit (positive value) sorts before credit (negative value)
	assert.True(t, splits[0].Value().Positive())
	assert.True(t, splits[1].Value().Negative())
}

// S3 — Rollback of description restores the pre-begin value and
// clears the in-progress snapshot.
func TestS3RollbackDescription(t *testing.T) {
	b, _ := newTestBook(t)
	ctx := context.Background()

	trans := NewTransaction(b)
	trans.BeginEdit(ctx)
	trans.SetDescription("original")
	trans.CommitEdit(ctx)

	trans.BeginEdit(ctx)
	trans.SetDescription("X")
	trans.RollbackEdit(ctx)

	assert.Equal(t, "original", trans.Description())
	assert.False(t, trans.IsOpen())
}

func TestLostAndFoundRoutesImbalance(t *testing.T) {
	b, usd := newTestBook(t)
	b.Accounts.SetStrictMode(book.LostAndFound)
	ctx := context.Background()

	accA := book.NewAccount(guid.New(), "A", usd)
	b.Accounts.RootGroup().InsertAccount(accA)

	trans := NewTransaction(b)
	trans.BeginEdit(ctx)
	trans.SetCurrency(usd)

	s1 := NewSplit(b)
	s1.SetAccount(accA)
	trans.AppendSplit(s1)
	s1.SetValue(numeric.Create(500, 100))
	s1.SetAmount(numeric.Create(500, 100))

	trans.CommitEdit(ctx)

	assert.True(t, trans.IsBalanced())
	splits := trans.Splits()
	require.Len(t, splits, 2)
	orphan := splits[1].Account()
	require.NotNil(t, orphan)
	assert.Contains(t, orphan.Name(), "Orphan")
	assert.True(t, numeric.Equal(splits[1].Value(), numeric.Create(-500, 100)))
}

func TestComputeValueBailsOutOnNoAccountSplitUnderStrictMode(t *testing.T) {
	b, usd := newTestBook(t)
	b.Accounts.SetStrictMode(book.StrictFail)
	ctx := context.Background()
	accA := book.NewAccount(guid.New(), "A", usd)
	b.Accounts.RootGroup().InsertAccount(accA)

	trans := NewTransaction(b)
	trans.BeginEdit(ctx)
	trans.SetCurrency(usd)

	accounted := NewSplit(b)
	accounted.SetAccount(accA)
	trans.AppendSplit(accounted)
	accounted.SetValue(numeric.Create(1000, 100))
	accounted.SetAmount(numeric.Create(1000, 100))

	noAccount := NewSplit(b)
	trans.AppendSplit(noAccount)
	noAccount.SetValue(numeric.Create(1000, 100))

	got := ComputeValue(trans.Splits(), nil, usd, true)
	assert.True(t, got.Zero(), "expected ComputeValue to bail out to zero, got %v", got)
}

func TestComputeValueTolerantSumsNoAccountSplitWhenRelaxed(t *testing.T) {
	b, usd := newTestBook(t)
	ctx := context.Background()
	accA := book.NewAccount(guid.New(), "A", usd)
	b.Accounts.RootGroup().InsertAccount(accA)

	trans := NewTransaction(b)
	trans.BeginEdit(ctx)
	trans.SetCurrency(usd)

	accounted := NewSplit(b)
	accounted.SetAccount(accA)
	trans.AppendSplit(accounted)
	accounted.SetValue(numeric.Create(1000, 100))
	accounted.SetAmount(numeric.Create(1000, 100))

	noAccount := NewSplit(b)
	trans.AppendSplit(noAccount)
	noAccount.SetValue(numeric.Create(-1000, 100))

	got := ComputeValue(trans.Splits(), nil, commodity.Commodity{}, false)
	assert.True(t, got.Zero(), "expected tolerant mode to sum both splits to zero, got %v", got)
}

func TestBeginEditNestsAndRollbackNoOpWhenUnopened(t *testing.T) {
	b, _ := newTestBook(t)
	ctx := context.Background()

	trans := NewTransaction(b)
	trans.BeginEdit(ctx)
	trans.BeginEdit(ctx) // nested
	assert.Equal(t, 2, trans.EditLevel())

	trans.CommitEdit(ctx)
	assert.Equal(t, 1, trans.EditLevel())
	trans.CommitEdit(ctx)
	assert.Equal(t, 0, trans.EditLevel())
	assert.False(t, trans.IsOpen())

	trans.RollbackEdit(ctx) // no edit open: nothing to restore
	assert.Equal(t, 0, trans.EditLevel())
	assert.False(t, trans.IsOpen())
}

func TestRollbackSpliceWhenSplitCountShrinks(t *testing.T) {
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
	s2 := NewSplit(b)
	s2.SetAccount(accA)
	trans.AppendSplit(s2)
	s2.SetValue(numeric.Create(-100, 100))
	trans.CommitEdit(ctx)
	require.Len(t, trans.Splits(), 2)

	trans.BeginEdit(ctx)
	s2.Destroy()
	trans.RollbackEdit(ctx)

	assert.Len(t, trans.Splits(), 2)
}

func TestDatePostedTimeOrdering(t *testing.T) {
	b, usd := newTestBook(t)
	ctx := context.Background()
	accA := book.NewAccount(guid.New(), "A", usd)
	b.Accounts.RootGroup().InsertAccount(accA)

	older := NewTransaction(b)
	older.BeginEdit(ctx)
	older.SetDatePosted(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	older.CommitEdit(ctx)

	newer := NewTransaction(b)
	newer.BeginEdit(ctx)
	newer.SetDatePosted(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	newer.CommitEdit(ctx)

	assert.Equal(t, -1, Order(older, newer))
	assert.Equal(t, 1, Order(newer, older))
	assert.Equal(t, 0, Order(older, older))
}
