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

package book

import (
	"fmt"
	"log"
	"sync"

	"src.d10.dev/ledgercore/commodity"
	"src.d10.dev/ledgercore/guid"
)

// StrictMode controls what happens when a split with no parent
// account is posted, following the force_double_entry global:
// RelaxedEntry lets it through as a valueless orphan the way
// xaccSplitSetBaseValue does when force_double_entry is 0; StrictFail
// refuses it, matching force_double_entry's PERR/assertion path;
// LostAndFound resolves the Open Question in DESIGN.md by routing the
// split to a lazily-created per-commodity orphan account instead of
// refusing the post outright.
type StrictMode int

const (
	RelaxedEntry StrictMode = iota
	StrictFail
	LostAndFound
)

// Book owns the entity table, the root account tree, the template
// tree scheduled transactions stage their instances in, and the
// strictness policy applied when a split has no account.
type Book struct {
	mu sync.Mutex

	Entities *guid.Table

	root     *Group
	template *Group

	strict StrictMode

	orphan map[string]*Account // commodity identity -> lost-and-found account

	// Warn reports a non-fatal engine condition (e.g. a mutator called
	// outside an edit session). Defaults to log.Printf; tests may
	// replace it to assert on warnings instead of printing them.
	Warn func(format string, args ...any)
}

func NewBook() *Book {
	b := &Book{
		Entities: guid.NewTable(),
		root:     NewGroup(),
		template: NewGroup(),
		orphan:   make(map[string]*Account),
	}
	b.Warn = func(format string, args ...any) { log.Printf(format, args...) }
	return b
}

func (this *Book) RootGroup() *Group     { return this.root }
func (this *Book) TemplateGroup() *Group { return this.template }

func (this *Book) SetStrictMode(m StrictMode) { this.strict = m }
func (this *Book) StrictMode() StrictMode     { return this.strict }

// warn reports format via Warn, falling back to log.Printf if Warn is
// nil (e.g. a zero-value Book used directly in a test).
func (this *Book) warn(format string, args ...any) {
	if this.Warn != nil {
		this.Warn(format, args...)
		return
	}
	log.Printf(format, args...)
}

// LostAndFoundAccount returns (creating on first use) the orphan
// account for c, used by the engine when StrictMode is LostAndFound
// and a split is posted with no account.
func (this *Book) LostAndFoundAccount(c commodity.Commodity) *Account {
	this.mu.Lock()
	defer this.mu.Unlock()
	key := c.Identity()
	if a, ok := this.orphan[key]; ok {
		return a
	}
	a := NewAccount(guid.New(), fmt.Sprintf("Orphan-%s", c.Mnemonic()), c)
	this.orphan[key] = a
	this.root.InsertAccount(a)
	return a
}
