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

// Package commodity provides the opaque commodity handle used
// throughout the engine: an identity (namespace + mnemonic, i.e.
// "CURRENCY:USD" or "NASDAQ:ABC") and its fraction, the number of
// smallest units per whole (100 for USD, 1 for most securities
// quoted as whole shares, etc).
package commodity

import "fmt"

// Commodity is an opaque identity with a fraction. Two commodities are
// equivalent iff their identities match; Fraction is a property of
// the identity, not of any individual value.
type Commodity struct {
	namespace string
	mnemonic  string
	fraction  int64
}

func (this Commodity) Namespace() string { return this.namespace }
func (this Commodity) Mnemonic() string  { return this.mnemonic }
func (this Commodity) Fraction() int64   { return this.fraction }

// Identity returns the canonical "namespace:mnemonic" string used for
// equality and as a Table lookup key.
func (this Commodity) Identity() string {
	return fmt.Sprintf("%s:%s", this.namespace, this.mnemonic)
}

func (this Commodity) Equal(other Commodity) bool {
	return this.Identity() == other.Identity()
}

// IsZero reports whether this handle names no commodity (the zero
// value), as may be the case for a freshly constructed Transaction's
// currency per spec.md §3.
func (this Commodity) IsZero() bool { return this.namespace == "" && this.mnemonic == "" }

func (this Commodity) String() string { return this.Identity() }

// Table is a process- or book-scoped catalogue of commodities, the
// minimal stand-in for the external commodity/currency catalogue
// collaborator (spec.md §1, §6).
type Table struct {
	byIdentity map[string]Commodity
}

func NewTable() *Table {
	return &Table{byIdentity: make(map[string]Commodity)}
}

// Register adds (or replaces) a commodity definition. Fraction must be
// positive.
func (this *Table) Register(namespace, mnemonic string, fraction int64) Commodity {
	if fraction <= 0 {
		panic("commodity: fraction must be positive")
	}
	c := Commodity{namespace: namespace, mnemonic: mnemonic, fraction: fraction}
	this.byIdentity[c.Identity()] = c
	return c
}

// Lookup returns the registered commodity, or the zero value and false
// if unknown.
func (this *Table) Lookup(namespace, mnemonic string) (Commodity, bool) {
	c, ok := this.byIdentity[fmt.Sprintf("%s:%s", namespace, mnemonic)]
	return c, ok
}

// Currency is a convenience wrapper for the common "CURRENCY" namespace.
func (this *Table) Currency(mnemonic string, fraction int64) Commodity {
	return this.Register("CURRENCY", mnemonic, fraction)
}
