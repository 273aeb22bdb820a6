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

// Package engine is the transactional core: Split, Transaction, the
// begin/commit/rollback edit protocol, balance/gains maintenance, and
// void/reverse, grounded directly on GnuCash's Transaction.c.
package engine

import (
	"log"

	"src.d10.dev/ledgercore/backend"
	"src.d10.dev/ledgercore/book"
	"src.d10.dev/ledgercore/gncevent"
	"src.d10.dev/ledgercore/guid"
	"src.d10.dev/ledgercore/strcache"
)

// Book is the top-level handle Split and Transaction carry: the
// account tree, the entity table, the string interner, the event bus,
// and the back-end/journal pair the edit protocol calls into.
type Book struct {
	Accounts *book.Book
	Strings  *strcache.Cache
	Bus      gncevent.Bus
	Backend  backend.Interface
	Journal  backend.Journal

	// Warn reports a non-fatal engine condition per spec.md §7's
	// "programmer errors": tolerated, logged, operation proceeds.
	Warn func(format string, args ...any)
}

func NewBook() *Book {
	b := &Book{
		Accounts: book.NewBook(),
		Strings:  strcache.New(),
		Bus:      gncevent.NewMemBus(),
		Backend:  backend.MemBackend{},
		Journal:  backend.NullJournal{},
	}
	b.Warn = func(format string, args ...any) { log.Printf(format, args...) }
	return b
}

func (this *Book) warn(format string, args ...any) {
	if this.Warn != nil {
		this.Warn(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (this *Book) intern(s string) string {
	return this.Strings.Intern(s)
}

func (this *Book) newGUID() guid.GUID {
	return guid.New()
}
