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

// Ledgerctl is a command-line tool that replays transactions written
// in a `ledger-cli`-like text format through the in-memory
// double-entry transactional core in package engine: every posted
// split becomes a real engine.Split, every transaction a real
// engine.Transaction run through BeginEdit/CommitEdit, so the
// properties of that core (balance maintenance, strict-mode
// enforcement, void/reverse) apply to whatever you feed it.
//
// A ledger file is a sequence of blank-line-separated transactions:
//
//    2024-01-01 Paycheck
//        Assets:Checking          1000.00 USD
//        Income:Salary
//
//    2024-01-05 Groceries
//        Expenses:Food              54.37 USD
//        Assets:Checking
//
// The last split of a transaction may omit its amount; ledgerctl
// infers it as whatever balances the transaction, the same
// convention `ledger-cli` itself uses.
//
// Run `ledgerctl help <operation>` to see operation-specific usage.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"src.d10.dev/command"
	"src.d10.dev/ledgercore/book"
	"src.d10.dev/ledgercore/engine"
)

//go:generate sh -c "go doc | dumbdown > README.md"

var (
	// scanner reads the ledger file's blank-line-delimited blocks.
	scanner *TxScanner

	// base names the commodity used for accounts never observed with
	// an explicit amount (i.e. they only ever appear as a blank,
	// balancing split).
	base string

	// strictName selects book.StrictMode by flag, deferred to each
	// operation since not every operation needs a live book.
	strictName string
)

func main() {
	command.RegisterCommand(command.Command{
		Application: "ledgerctl",
		Description: "Replay ledger-cli-style transactions through the double-entry transactional core.",
	})

	fFlag := flag.CommandLine.String("f", "", "file to parse, use '-' for stdin")
	baseFlag := flag.CommandLine.String("base", "USD", "commodity used for accounts with no observed amount")
	strictFlag := flag.CommandLine.String("strict", "relaxed", "unbalanced-split policy: relaxed, fail, or lostandfound")

	_, err := command.ParseCommandLine()
	if err != flag.ErrHelp {
		command.CheckUsage(err)

		if *fFlag == "" {
			command.CheckUsage(errors.New(`use "-f <filename>" to specify a ledger file, or "-f -" for stdin`))
		}

		var file *os.File
		if *fFlag == "-" {
			file = os.Stdin
		} else {
			file, err = os.Open(*fFlag)
			if err != nil {
				command.Check(fmt.Errorf("failed to open ledger file (%q): %w", *fFlag, err))
			}
			defer file.Close()
		}

		base = *baseFlag
		strictName = *strictFlag
		scanner = NewTxScanner(file)
	}
	if len(command.Args()) < 1 {
		command.CheckUsage(errors.New("this command requires an operation (sub-command)"))
	}

	log.SetPrefix(fmt.Sprintf("ledgerctl %s: ", flag.CommandLine.Args()[0]))
	log.SetFlags(0)

	err = command.CurrentOperation().Operate()
	command.CheckUsage(err)

	command.Check(scanner.Err())

	command.Exit()
}

// strictMode translates the -strict flag into a book.StrictMode,
// falling back to RelaxedEntry (and a warning) on an unrecognized
// name rather than failing the whole run.
func strictMode() book.StrictMode {
	switch strictName {
	case "relaxed", "":
		return book.RelaxedEntry
	case "fail":
		return book.StrictFail
	case "lostandfound":
		return book.LostAndFound
	default:
		command.V(0).Infof("unrecognized -strict value %q, using relaxed", strictName)
		return book.RelaxedEntry
	}
}

// newBook constructs the engine.Book operations replay transactions
// into, with strict mode set from the -strict flag.
func newBook() *engine.Book {
	b := engine.NewBook()
	b.Accounts.SetStrictMode(strictMode())
	return b
}

// replayAll scans every transaction in the ledger file and commits it
// against b, returning the accounts it created along the way. Parse
// or commit failures are reported via command.Error and skipped,
// matching ledgerctl's habit of reporting per-transaction problems
// without aborting the whole run.
func replayAll(ctx context.Context, b *engine.Book) (map[string]*book.Account, []*engine.Transaction) {
	accounts := make(map[string]*book.Account)
	var transactions []*engine.Transaction
	for scanner.Scan() {
		lines := scanner.Lines()
		tx, ok := parseTx(lines)
		if !ok {
			continue // comment block, not a transaction
		}
		committed, err := tx.Replay(ctx, b, accounts)
		if err != nil {
			command.Error(err)
			continue
		}
		transactions = append(transactions, committed)
	}
	return accounts, transactions
}
