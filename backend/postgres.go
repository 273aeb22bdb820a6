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

package backend

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBackend persists entities into a single (entity_type, id,
// version, payload) table and enforces optimistic concurrency: Commit
// reports Modified when the row's version has advanced since Begin
// read it, matching the be->commit / ERR_BACKEND_MODIFIED contract
// the edit protocol rolls back on.
type PostgresBackend struct {
	pool  *pgxpool.Pool
	table string

	seen map[string]int64 // entityType+"/"+id -> version observed at Begin
}

func NewPostgresBackend(pool *pgxpool.Pool, table string) *PostgresBackend {
	return &PostgresBackend{pool: pool, table: table, seen: make(map[string]int64)}
}

func key(entityType, id string) string { return entityType + "/" + id }

func (this *PostgresBackend) Begin(ctx context.Context, entityType string, id string) error {
	var version int64
	err := this.pool.QueryRow(ctx,
		`SELECT version FROM `+this.table+` WHERE entity_type=$1 AND id=$2`,
		entityType, id).Scan(&version)
	if err != nil {
		// not found yet: treat as version 0, a fresh insert at commit.
		version = 0
	}
	this.seen[key(entityType, id)] = version
	return nil
}

func (this *PostgresBackend) Commit(ctx context.Context, entityType string, id string, payload any) ErrCode {
	body, err := json.Marshal(payload)
	if err != nil {
		return NoErr
	}
	expected := this.seen[key(entityType, id)]

	tag, err := this.pool.Exec(ctx,
		`INSERT INTO `+this.table+` (entity_type, id, version, payload)
		 VALUES ($1, $2, 1, $3)
		 ON CONFLICT (entity_type, id) DO UPDATE SET
		   version = `+this.table+`.version + 1,
		   payload = EXCLUDED.payload
		 WHERE `+this.table+`.version = $4`,
		entityType, id, body, expected)
	if err != nil {
		return Modified
	}
	if tag.RowsAffected() == 0 && expected != 0 {
		return Modified
	}
	return NoErr
}

func (this *PostgresBackend) Rollback(ctx context.Context, entityType string, id string) ErrCode {
	var version int64
	err := this.pool.QueryRow(ctx,
		`SELECT version FROM `+this.table+` WHERE entity_type=$1 AND id=$2`,
		entityType, id).Scan(&version)
	if err != nil {
		return ModDestroy
	}
	return NoErr
}
