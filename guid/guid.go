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

// Package guid provides the entity identity and per-book lookup table
// that every Transaction, Split, Account, and ScheduledTransaction
// carries, following QofEntity / QofCollection: qof_entity_guid_new,
// qof_entity_store, qof_entity_remove, qof_entity_lookup.
package guid

import (
	"sync"

	"github.com/google/uuid"
)

// GUID identifies one entity for the lifetime of a Book.
type GUID uuid.UUID

// New allocates a fresh, random GUID, the equivalent of
// qof_entity_guid_new.
func New() GUID {
	return GUID(uuid.New())
}

func (this GUID) String() string {
	return uuid.UUID(this).String()
}

func (this GUID) IsZero() bool {
	return this == GUID{}
}

// Parse decodes the canonical string form produced by String.
func Parse(s string) (GUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return GUID{}, err
	}
	return GUID(u), nil
}

// EntityType tags what kind of record a Table entry holds, mirroring
// GNC_ID_TRANS / GNC_ID_SPLIT / GNC_ID_ACCOUNT / GNC_ID_SCHEDXACTION.
type EntityType string

const (
	TypeTransaction EntityType = "Trans"
	TypeSplit       EntityType = "Split"
	TypeAccount     EntityType = "Account"
	TypeSchedXaction EntityType = "SchedXaction"
	TypeCommodity   EntityType = "Commodity"
	TypeLot         EntityType = "Lot"
)

type entry struct {
	kind  EntityType
	value any
}

// Table is a book-scoped registry mapping GUID to entity, the
// equivalent of QofBook's entity_table (one flat store, disambiguated
// by EntityType on lookup exactly as qof_entity_lookup requires the
// caller to name the expected type).
type Table struct {
	mu   sync.RWMutex
	byID map[GUID]entry
}

func NewTable() *Table {
	return &Table{byID: make(map[GUID]entry)}
}

// Store records value under id as an entity of kind. Re-storing under
// the same id replaces the previous entry (used when a rollback splices
// a split's snapshot back in under its original GUID).
func (this *Table) Store(id GUID, kind EntityType, value any) {
	this.mu.Lock()
	defer this.mu.Unlock()
	this.byID[id] = entry{kind: kind, value: value}
}

// Remove deletes the entry for id, if any.
func (this *Table) Remove(id GUID) {
	this.mu.Lock()
	defer this.mu.Unlock()
	delete(this.byID, id)
}

// Lookup returns the stored value for id, requiring it to have been
// stored as kind (qof_entity_lookup's type-tagged retrieval). Returns
// (nil, false) if absent or stored under a different kind.
func (this *Table) Lookup(id GUID, kind EntityType) (any, bool) {
	this.mu.RLock()
	defer this.mu.RUnlock()
	e, ok := this.byID[id]
	if !ok || e.kind != kind {
		return nil, false
	}
	return e.value, true
}

// Len reports the number of entities currently stored, of any kind.
func (this *Table) Len() int {
	this.mu.RLock()
	defer this.mu.RUnlock()
	return len(this.byID)
}
