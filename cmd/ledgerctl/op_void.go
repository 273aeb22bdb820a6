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

// Operation void
//
// Usage:
//
//    ledgerctl -f <filename> void -match=<description substring> -reason=<text>
//
// The void operation replays the ledger file, finds the first
// transaction whose description contains -match, and voids it,
// printing its splits before and after so the effect of
// Transaction.Void is visible.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"src.d10.dev/command"
	"src.d10.dev/ledgercore/engine"
)

func init() {
	command.RegisterOperation(voidMain, "void", "void -match=<text> [-reason=<text>]", "Void the first matching transaction and print the effect.")
}

func voidMain() error {
	matchFlag := flag.String("match", "", "description substring identifying the transaction to void")
	reasonFlag := flag.String("reason", "entered in error", "reason recorded on the voided transaction")

	if err := command.Parse(); err != nil {
		return err
	}
	if *matchFlag == "" {
		return errors.New(`use "-match=<text>" to identify which transaction to void`)
	}

	b := newBook()
	ctx := context.Background()
	_, transactions := replayAll(ctx, b)

	var target *engine.Transaction
	for _, t := range transactions {
		if strings.Contains(t.Description(), *matchFlag) {
			target = t
			break
		}
	}
	if target == nil {
		return fmt.Errorf("no transaction found matching %q", *matchFlag)
	}

	printSplits("before", target)
	target.Void(ctx, *reasonFlag)
	printSplits("after", target)

	return nil
}

func printSplits(label string, t *engine.Transaction) {
	fmt.Printf("%s (%s):\n", t.Description(), label)
	for _, s := range t.Splits() {
		name := ""
		if a := s.Account(); a != nil {
			name = a.FullName(":")
		}
		fmt.Printf("    %-30s %s\n", name, s.Amount().String())
	}
}
