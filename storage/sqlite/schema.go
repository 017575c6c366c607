// Copyright 2025 The IDP Authors
// This file is part of IDP.
//
// IDP is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// IDP is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with IDP. If not, see <http://www.gnu.org/licenses/>.

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// migrations is applied in order, tracked in schema_migrations so a
// database can be reopened without re-running already-applied steps.
// Schema evolution is additive only: once a migration ships, its DDL must
// never change underneath an existing deployment.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS plum_bodies (
		plum_body_seal       BLOB PRIMARY KEY,
		nonce                BLOB,
		content_length       INTEGER NOT NULL,
		content_class        TEXT NOT NULL,
		content_format        TEXT NOT NULL,
		content_encoding      TEXT NOT NULL,
		content              BLOB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS plum_metadata (
		plum_metadata_seal        BLOB PRIMARY KEY,
		nonce                     BLOB,
		created_at_unix_nano      INTEGER,
		created_at_present        INTEGER NOT NULL,
		body_content_length       INTEGER,
		body_content_class        TEXT,
		body_content_format       TEXT,
		body_content_encoding     TEXT,
		body_content_metadata_present INTEGER NOT NULL,
		additional_content        BLOB
	)`,
	`CREATE TABLE IF NOT EXISTS plum_relations (
		plum_relations_seal  BLOB PRIMARY KEY,
		nonce                BLOB,
		source_body_seal     BLOB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS plum_relation_mappings (
		plum_relations_seal  BLOB NOT NULL REFERENCES plum_relations(plum_relations_seal),
		target_head_seal     BLOB NOT NULL,
		relation_flags       INTEGER NOT NULL,
		PRIMARY KEY (plum_relations_seal, target_head_seal)
	)`,
	`CREATE TABLE IF NOT EXISTS plum_heads (
		row_inserted_at       INTEGER NOT NULL,
		plum_head_seal        BLOB PRIMARY KEY,
		plum_head_nonce       BLOB,
		plum_metadata_seal    BLOB NOT NULL,
		plum_relations_seal   BLOB,
		plum_body_seal        BLOB NOT NULL,
		owner_id              TEXT,
		owner_id_present      INTEGER NOT NULL,
		created_at_unix_nano  INTEGER,
		created_at_present    INTEGER NOT NULL,
		metadata_blob         BLOB
	)`,
	`CREATE TABLE IF NOT EXISTS path_states (
		row_inserted_at             INTEGER NOT NULL,
		row_updated_at              INTEGER NOT NULL,
		path                        TEXT PRIMARY KEY,
		current_state_plum_head_seal BLOB NOT NULL
	)`,
	`ALTER TABLE path_states ADD COLUMN row_deleted_at INTEGER`,
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("sqlite: creating schema_migrations: %w", err)
	}

	for version, ddl := range migrations {
		var already int
		err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version).Scan(&already)
		if err != nil {
			return fmt.Errorf("sqlite: checking migration %d: %w", version, err)
		}
		if already > 0 {
			continue
		}
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("sqlite: applying migration %d: %w", version, err)
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`, version, time.Now().UnixNano()); err != nil {
			return fmt.Errorf("sqlite: recording migration %d: %w", version, err)
		}
	}
	return nil
}
