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

// Package strcache interns the short strings (num, memo, action,
// description) that Split and Transaction carry, per book. Go strings
// are already immutable value types, so interning here buys memory
// savings rather than the pointer-equality trick the original engine
// relied upon (see spec.md §9, "String interning"); TransEqual-style
// comparisons in this rewrite use explicit string comparison instead.
package strcache

import "sync"

// Cache interns strings for the lifetime of one Book.
type Cache struct {
	mu  sync.Mutex
	set map[string]string
}

func New() *Cache {
	return &Cache{set: make(map[string]string)}
}

// Intern returns the canonical copy of s held by this cache.
func (this *Cache) Intern(s string) string {
	if s == "" {
		return ""
	}
	this.mu.Lock()
	defer this.mu.Unlock()
	if canon, ok := this.set[s]; ok {
		return canon
	}
	this.set[s] = s
	return s
}

// Len reports how many distinct strings are currently interned.
func (this *Cache) Len() int {
	this.mu.Lock()
	defer this.mu.Unlock()
	return len(this.set)
}
