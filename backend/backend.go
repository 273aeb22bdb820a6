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

// Package backend is the persistence hook a Transaction's
// begin/commit/rollback edit protocol calls into, following
// be->begin/be->commit/be->rollback and the ERR_BACKEND_* codes a
// backend reports through qof_backend_get_error.
package backend

import "context"

// ErrCode mirrors ERR_BACKEND_NO_ERR / ERR_BACKEND_MODIFIED /
// ERR_BACKEND_MOD_DESTROY: MODIFIED means someone else committed a
// conflicting change first (commit must roll back to the backend's
// version); MODDestroy means the backend has already deleted the
// record out from under us (the engine must also destroy its
// in-memory copy).
type ErrCode int

const (
	NoErr ErrCode = iota
	Modified
	ModDestroy
)

// Interface is the storage hook invoked at the edit-protocol
// boundaries (spec.md §4.3): Begin, called when the outermost BeginEdit
// has raised the edit level to 1, commits nothing; Commit persists and may report Modified
// if the stored record changed underneath this edit; Rollback is
// called when an edit is abandoned, and may report ModDestroy if the
// backend already destroyed the record.
type Interface interface {
	Begin(ctx context.Context, entityType string, id string) error
	Commit(ctx context.Context, entityType string, id string, payload any) ErrCode
	Rollback(ctx context.Context, entityType string, id string) ErrCode
}

// MemBackend always succeeds; it is the default backend a Book uses
// when no durable store is configured, matching running with no
// be at all (trans->book->backend == NULL skips the hook entirely in
// the original; here we keep the call site uniform and simply never
// fail).
type MemBackend struct{}

func (MemBackend) Begin(ctx context.Context, entityType string, id string) error { return nil }

func (MemBackend) Commit(ctx context.Context, entityType string, id string, payload any) ErrCode {
	return NoErr
}

func (MemBackend) Rollback(ctx context.Context, entityType string, id string) ErrCode {
	return NoErr
}
