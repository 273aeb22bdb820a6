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

package main

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"src.d10.dev/ledgercore/book"
	"src.d10.dev/ledgercore/engine"
	"src.d10.dev/ledgercore/guid"
	"src.d10.dev/ledgercore/numeric"
)

// ParsedSplit is one posted line of a ledger-file transaction: an
// account name and an optional amount. A nil Amount marks the
// "blank" split ledger-cli lets a file omit, whose value is inferred
// as whatever balances the transaction.
type ParsedSplit struct {
	Account string
	Amount  *Amount
	Comment string
	line    string
}

// goal of this regexp is to match the whitespace between account name
// and amount: typically two (or more) spaces, or a single tab.
var accountSeparator = regexp.MustCompile(`\s{2,}|\t+`)

func parseSplit(line string) (ParsedSplit, bool) {
	this := ParsedSplit{line: line}

	commentSplit := strings.SplitN(line, ";", 2)
	if len(commentSplit) > 1 {
		this.Comment = commentSplit[1]
	}

	trimmed := strings.TrimSpace(commentSplit[0])
	if trimmed == commentSplit[0] || trimmed == "" {
		// doesn't start with indentation, or is comment-only: not a split
		return this, false
	}

	accountSplit := accountSeparator.Split(trimmed, 2)
	this.Account = strings.TrimSpace(accountSplit[0])

	if len(accountSplit) > 1 && strings.TrimSpace(accountSplit[1]) != "" {
		amt, err := parseAmount(accountSplit[1])
		if err != nil {
			return this, false
		}
		this.Amount = &amt
	}

	return this, true
}

// ParsedTx is one blank-line-delimited block of the ledger file,
// recognized as a transaction (it has a dated header line).
type ParsedTx struct {
	Date        time.Time
	Description string
	Splits      []ParsedSplit
}

func parseTx(lines TxLines) (ParsedTx, bool) {
	header, idx := lines.Header()
	if idx == HeaderNotFound {
		return ParsedTx{}, false
	}
	description := ""
	if fields := strings.SplitN(header, " ", 2); len(fields) > 1 {
		description = strings.TrimSpace(fields[1])
	}
	tx := ParsedTx{Date: lines.Date, Description: description}
	for _, line := range lines.Line[idx+1:] {
		split, ok := parseSplit(line)
		if !ok {
			continue // blank or comment-only line, no-op
		}
		tx.Splits = append(tx.Splits, split)
	}
	return tx, true
}

// Replay builds and commits a real engine.Transaction from this
// parsed block: one Split per posted line, account commodities
// resolved (and widened) as amounts are observed, and at most one
// blank split per transaction, which is given the negated imbalance of
// the other splits before CommitEdit.
func (this ParsedTx) Replay(ctx context.Context, b *engine.Book, accounts map[string]*book.Account) (*engine.Transaction, error) {
	trans := engine.NewTransaction(b)
	trans.BeginEdit(ctx)
	trans.SetDescription(this.Description)
	trans.SetDatePosted(this.Date)
	trans.SetDateEntered(this.Date)
	trans.SetCurrency(resolveCommodity(base, 100))

	blanks := 0
	var blank *engine.Split
	for _, ps := range this.Splits {
		acct, ok := accounts[ps.Account]
		if !ok {
			c := commodities.Currency(base, 100)
			if ps.Amount != nil {
				c = resolveCommodity(ps.Amount.Mnemonic, ps.Amount.Value.Denom())
			}
			acct = book.NewAccount(guid.New(), ps.Account, c)
			b.Accounts.RootGroup().InsertAccount(acct)
			accounts[ps.Account] = acct
			if ps.Amount != nil {
				rememberAccount(ps.Amount.Mnemonic, acct)
			}
		} else if ps.Amount != nil {
			c := resolveCommodity(ps.Amount.Mnemonic, ps.Amount.Value.Denom())
			if acct.Commodity().IsZero() {
				acct.SetCommodity(c)
			}
			rememberAccount(ps.Amount.Mnemonic, acct)
		}

		split := engine.NewSplit(b)
		split.SetAccount(acct)
		split.SetMemo(strings.TrimSpace(ps.Comment))
		trans.AppendSplit(split)

		if ps.Amount == nil {
			blanks++
			blank = split
			continue
		}
		split.SetAmount(ps.Amount.Value)
		split.SetValue(ps.Amount.Value)
	}
	if blanks > 1 {
		return nil, fmt.Errorf("transaction %q on %s has %d blank splits, at most one is allowed",
			this.Description, this.Date.Format("2006/01/02"), blanks)
	}
	if blank != nil {
		rest := numeric.Neg(trans.Imbalance())
		blank.SetAmount(rest)
		blank.SetValue(rest)
	}

	trans.CommitEdit(ctx)
	return trans, nil
}
