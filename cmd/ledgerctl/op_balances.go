// Copyright (C) 2019-2020  David N. Cohen

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

// Operation balances
//
// Usage:
//
//    ledgerctl -f <filename> balances
//
// The balances operation replays every transaction in the ledger file
// against a fresh book and prints the resulting balance of every
// account touched, sorted by full account name.
package main

import (
	"context"
	"fmt"
	"sort"

	"src.d10.dev/command"
	"src.d10.dev/ledgercore/book"
	"src.d10.dev/ledgercore/numeric"
)

func init() {
	command.RegisterOperation(balancesMain, "balances", "balances", "Print account balances after replaying the ledger file.")
}

func balancesMain() error {
	if err := command.Parse(); err != nil {
		return err
	}

	b := newBook()
	ctx := context.Background()
	accounts, _ := replayAll(ctx, b)

	names := make([]string, 0, len(accounts))
	byName := make(map[string]*book.Account, len(accounts))
	for name, a := range accounts {
		names = append(names, name)
		byName[name] = a
	}
	sort.Strings(names)

	for _, name := range names {
		a := byName[name]
		num, denom := a.RecomputeBalance()
		bal := numeric.Create(num, denom)
		fmt.Printf("%-40s %s %s\n", name, bal.String(), a.Commodity().Mnemonic())
	}
	return nil
}
