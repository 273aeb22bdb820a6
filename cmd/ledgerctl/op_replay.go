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

// Operation replay
//
// Usage:
//
//    ledgerctl -f <filename> [-strict=<relaxed|fail|lostandfound>] replay
//
// The replay operation commits every transaction in the ledger file
// against a fresh book and reports how many committed, demonstrating
// the begin/commit edit protocol and the chosen strict-mode policy
// without printing the resulting account tree.
package main

import (
	"context"
	"fmt"

	"src.d10.dev/command"
)

func init() {
	command.RegisterOperation(replayMain, "replay", "replay", "Commit every transaction in the ledger file against a fresh book.")
}

func replayMain() error {
	if err := command.Parse(); err != nil {
		return err
	}

	b := newBook()
	ctx := context.Background()
	accounts, transactions := replayAll(ctx, b)

	fmt.Printf("%d transactions committed across %d accounts\n", len(transactions), len(accounts))
	return nil
}
