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

// Package sqlite is the reference storage.Store implementation, backed by
// an embedded SQLite database accessed through database/sql and the
// pure-Go modernc.org/sqlite driver (no cgo toolchain required).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ledgerplum/idp/plum"
	"github.com/ledgerplum/idp/seal"
	"github.com/ledgerplum/idp/storage"
)

// Store is a storage.Store backed by a single *sql.DB. SQLite serializes
// writers internally; Go's database/sql connection pool combined with
// SQLite's own locking gives the read-committed semantics the storage
// layer promises.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database named by dsn --
// e.g. "file:idp.db" or ":memory:" -- and brings its schema up to date.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", dsn, err)
	}
	// SQLite only supports one writer at a time; cap the pool so
	// database/sql doesn't open connections that just contend with the
	// existing one under the hood.
	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a throwaway in-memory database, primarily useful in
// tests.
func OpenInMemory(ctx context.Context) (*Store, error) {
	return Open(ctx, ":memory:")
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) WithTx(ctx context.Context, fn func(tx storage.Tx) error) (err error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			sqlTx.Rollback()
			return
		}
		err = sqlTx.Commit()
	}()

	err = fn(&tx{tx: sqlTx})
	return err
}

func (s *Store) RelationsFor(ctx context.Context, headSeal seal.PlumHeadSeal) (*plum.Relations, error) {
	var relations *plum.Relations
	err := s.WithTx(ctx, func(tx storage.Tx) error {
		r, err := tx.RelationsFor(ctx, headSeal)
		relations = r
		return err
	})
	return relations, err
}

// tx implements storage.Tx against a single *sql.Tx.
type tx struct {
	tx *sql.Tx
}

func (t *tx) StorePlumBody(ctx context.Context, body *plum.Body) (seal.PlumBodySeal, error) {
	bodySeal := body.Seal()
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO plum_bodies (plum_body_seal, nonce, content_length, content_class, content_format, content_encoding, content)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (plum_body_seal) DO NOTHING`,
		bodySeal.Bytes(), nullableBytes(body.Nonce), body.ContentLength, body.ContentClass, body.ContentFormat, body.ContentEncoding, body.Content)
	if err != nil {
		return seal.PlumBodySeal{}, fmt.Errorf("sqlite: storing plum body: %w", err)
	}
	return bodySeal, nil
}

func (t *tx) StorePlumMetadata(ctx context.Context, metadata *plum.Metadata) (seal.PlumMetadataSeal, error) {
	metadataSeal := metadata.Seal()

	var bodyLen *uint64
	var bodyClass, bodyFormat, bodyEncoding *string
	if metadata.BodyContentMetadata != nil {
		l := metadata.BodyContentMetadata.Length
		bodyLen = &l
		bodyClass = &metadata.BodyContentMetadata.Class
		bodyFormat = &metadata.BodyContentMetadata.Format
		bodyEncoding = &metadata.BodyContentMetadata.Encoding
	}

	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO plum_metadata (
			plum_metadata_seal, nonce, created_at_unix_nano, created_at_present,
			body_content_length, body_content_class, body_content_format, body_content_encoding,
			body_content_metadata_present, additional_content
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (plum_metadata_seal) DO NOTHING`,
		metadataSeal.Bytes(), nullableBytes(metadata.Nonce), nullableInt64(metadata.CreatedAtUnixNano, metadata.CreatedAtPresent), metadata.CreatedAtPresent,
		bodyLen, bodyClass, bodyFormat, bodyEncoding,
		metadata.BodyContentMetadata != nil, nullableBytes(metadata.AdditionalContent))
	if err != nil {
		return seal.PlumMetadataSeal{}, fmt.Errorf("sqlite: storing plum metadata: %w", err)
	}
	return metadataSeal, nil
}

func (t *tx) StorePlumRelations(ctx context.Context, relations *plum.Relations) (seal.PlumRelationsSeal, error) {
	relationsSeal := relations.Seal()

	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO plum_relations (plum_relations_seal, nonce, source_body_seal)
		VALUES (?, ?, ?)
		ON CONFLICT (plum_relations_seal) DO NOTHING`,
		relationsSeal.Bytes(), nullableBytes(relations.Nonce), relations.Source.Bytes())
	if err != nil {
		return seal.PlumRelationsSeal{}, fmt.Errorf("sqlite: storing plum relations: %w", err)
	}

	for _, m := range relations.SortedMappings() {
		_, err := t.tx.ExecContext(ctx, `
			INSERT INTO plum_relation_mappings (plum_relations_seal, target_head_seal, relation_flags)
			VALUES (?, ?, ?)
			ON CONFLICT (plum_relations_seal, target_head_seal) DO UPDATE SET relation_flags = excluded.relation_flags`,
			relationsSeal.Bytes(), m.Target.Bytes(), uint32(m.Flags))
		if err != nil {
			return seal.PlumRelationsSeal{}, fmt.Errorf("sqlite: storing plum relation mapping: %w", err)
		}
	}
	return relationsSeal, nil
}

func (t *tx) StorePlumHead(ctx context.Context, head *plum.Head) (seal.PlumHeadSeal, error) {
	headSeal := head.Seal()

	var relationsSealBytes []byte
	if head.RelationsSeal != nil {
		relationsSealBytes = head.RelationsSeal.Bytes()
	}

	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO plum_heads (
			row_inserted_at, plum_head_seal, plum_head_nonce, plum_metadata_seal, plum_relations_seal, plum_body_seal,
			owner_id, owner_id_present, created_at_unix_nano, created_at_present, metadata_blob
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (plum_head_seal) DO NOTHING`,
		time.Now().UnixNano(), headSeal.Bytes(), nullableBytes(head.Nonce), head.MetadataSeal.Bytes(), relationsSealBytes, head.BodySeal.Bytes(),
		nullableString(head.OwnerID, head.OwnerIDPresent), head.OwnerIDPresent,
		nullableInt64(head.CreatedAtUnixNano, head.CreatedAtPresent), head.CreatedAtPresent, head.MetadataBlob)
	if err != nil {
		return seal.PlumHeadSeal{}, fmt.Errorf("sqlite: storing plum head: %w", err)
	}
	return headSeal, nil
}

func (t *tx) StorePlum(ctx context.Context, p *plum.Plum) (seal.PlumHeadSeal, error) {
	if _, err := t.StorePlumBody(ctx, &p.Body); err != nil {
		return seal.PlumHeadSeal{}, err
	}
	if _, err := t.StorePlumMetadata(ctx, &p.Metadata); err != nil {
		return seal.PlumHeadSeal{}, err
	}
	if p.Relations != nil {
		if _, err := t.StorePlumRelations(ctx, p.Relations); err != nil {
			return seal.PlumHeadSeal{}, err
		}
	}
	return t.StorePlumHead(ctx, &p.Head)
}

func (t *tx) LoadPlumHead(ctx context.Context, s seal.PlumHeadSeal) (*plum.Head, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT plum_head_nonce, plum_metadata_seal, plum_relations_seal, plum_body_seal,
		       owner_id, owner_id_present, created_at_unix_nano, created_at_present, metadata_blob
		FROM plum_heads WHERE plum_head_seal = ?`, s.Bytes())

	var nonce, metadataSealBytes, relationsSealBytes, bodySealBytes, metadataBlob []byte
	var ownerID sql.NullString
	var ownerIDPresent bool
	var createdAt sql.NullInt64
	var createdAtPresent bool
	if err := row.Scan(&nonce, &metadataSealBytes, &relationsSealBytes, &bodySealBytes, &ownerID, &ownerIDPresent, &createdAt, &createdAtPresent, &metadataBlob); err != nil {
		if err == sql.ErrNoRows {
			return nil, &storage.PlumHeadNotFound{Seal: s}
		}
		return nil, fmt.Errorf("sqlite: loading plum head: %w", err)
	}

	metadataSeal, err := seal.FromBytes(seal.AlgorithmSHA256, metadataSealBytes)
	if err != nil {
		return nil, &storage.InvalidValueInDB{Table: "plum_heads", Column: "plum_metadata_seal", Reason: err.Error()}
	}
	bodySeal, err := seal.FromBytes(seal.AlgorithmSHA256, bodySealBytes)
	if err != nil {
		return nil, &storage.InvalidValueInDB{Table: "plum_heads", Column: "plum_body_seal", Reason: err.Error()}
	}

	head := &plum.Head{
		Nonce:             plum.Nonce(nonce),
		MetadataSeal:      seal.PlumMetadataSeal{Seal: metadataSeal},
		BodySeal:          seal.PlumBodySeal{Seal: bodySeal},
		OwnerID:           ownerID.String,
		OwnerIDPresent:    ownerIDPresent,
		CreatedAtUnixNano: createdAt.Int64,
		CreatedAtPresent:  createdAtPresent,
		MetadataBlob:      metadataBlob,
	}
	if relationsSealBytes != nil {
		rs, err := seal.FromBytes(seal.AlgorithmSHA256, relationsSealBytes)
		if err != nil {
			return nil, &storage.InvalidValueInDB{Table: "plum_heads", Column: "plum_relations_seal", Reason: err.Error()}
		}
		head.RelationsSeal = &seal.PlumRelationsSeal{Seal: rs}
	}
	return head, nil
}

func (t *tx) LoadPlumBody(ctx context.Context, s seal.PlumBodySeal) (*plum.Body, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT nonce, content_length, content_class, content_format, content_encoding, content
		FROM plum_bodies WHERE plum_body_seal = ?`, s.Bytes())

	var nonce, content []byte
	var contentLength uint64
	var class, format, encoding string
	if err := row.Scan(&nonce, &contentLength, &class, &format, &encoding, &content); err != nil {
		if err == sql.ErrNoRows {
			return nil, &storage.PlumBodyNotFound{Seal: s}
		}
		return nil, fmt.Errorf("sqlite: loading plum body: %w", err)
	}

	return &plum.Body{
		Nonce:           plum.Nonce(nonce),
		ContentLength:   contentLength,
		ContentClass:    class,
		ContentFormat:   format,
		ContentEncoding: encoding,
		Content:         content,
	}, nil
}

func (t *tx) LoadPlumMetadata(ctx context.Context, s seal.PlumMetadataSeal) (*plum.Metadata, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT nonce, created_at_unix_nano, created_at_present,
		       body_content_length, body_content_class, body_content_format, body_content_encoding,
		       body_content_metadata_present, additional_content
		FROM plum_metadata WHERE plum_metadata_seal = ?`, s.Bytes())

	var nonce, additionalContent []byte
	var createdAt sql.NullInt64
	var createdAtPresent bool
	var bodyLen sql.NullInt64
	var bodyClass, bodyFormat, bodyEncoding sql.NullString
	var bodyMetaPresent bool
	if err := row.Scan(&nonce, &createdAt, &createdAtPresent, &bodyLen, &bodyClass, &bodyFormat, &bodyEncoding, &bodyMetaPresent, &additionalContent); err != nil {
		if err == sql.ErrNoRows {
			return nil, &storage.PlumMetadataNotFound{Seal: s}
		}
		return nil, fmt.Errorf("sqlite: loading plum metadata: %w", err)
	}

	metadata := &plum.Metadata{
		Nonce:             plum.Nonce(nonce),
		CreatedAtUnixNano: createdAt.Int64,
		CreatedAtPresent:  createdAtPresent,
		AdditionalContent: additionalContent,
	}
	if bodyMetaPresent {
		metadata.BodyContentMetadata = &plum.ContentMetadata{
			Length:   uint64(bodyLen.Int64),
			Class:    bodyClass.String,
			Format:   bodyFormat.String,
			Encoding: bodyEncoding.String,
		}
	}
	return metadata, nil
}

func (t *tx) LoadPlumRelations(ctx context.Context, s seal.PlumRelationsSeal) (*plum.Relations, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT nonce, source_body_seal FROM plum_relations WHERE plum_relations_seal = ?`, s.Bytes())
	var nonce, sourceBytes []byte
	if err := row.Scan(&nonce, &sourceBytes); err != nil {
		if err == sql.ErrNoRows {
			return nil, &storage.PlumRelationsNotFound{Seal: s}
		}
		return nil, fmt.Errorf("sqlite: loading plum relations: %w", err)
	}
	sourceSeal, err := seal.FromBytes(seal.AlgorithmSHA256, sourceBytes)
	if err != nil {
		return nil, &storage.InvalidValueInDB{Table: "plum_relations", Column: "source_body_seal", Reason: err.Error()}
	}

	rows, err := t.tx.QueryContext(ctx, `SELECT target_head_seal, relation_flags FROM plum_relation_mappings WHERE plum_relations_seal = ?`, s.Bytes())
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading plum relation mappings: %w", err)
	}
	defer rows.Close()

	var mappings []plum.RelationMapping
	for rows.Next() {
		var targetBytes []byte
		var flags uint32
		if err := rows.Scan(&targetBytes, &flags); err != nil {
			return nil, fmt.Errorf("sqlite: scanning plum relation mapping: %w", err)
		}
		targetSeal, err := seal.FromBytes(seal.AlgorithmSHA256, targetBytes)
		if err != nil {
			return nil, &storage.InvalidValueInDB{Table: "plum_relation_mappings", Column: "target_head_seal", Reason: err.Error()}
		}
		mappings = append(mappings, plum.RelationMapping{Target: seal.PlumHeadSeal{Seal: targetSeal}, Flags: plum.RelationFlags(flags)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: reading plum relation mappings: %w", err)
	}

	return &plum.Relations{Nonce: plum.Nonce(nonce), Source: seal.PlumBodySeal{Seal: sourceSeal}, Mappings: mappings}, nil
}

func (t *tx) LoadPlum(ctx context.Context, headSeal seal.PlumHeadSeal) (*plum.Plum, error) {
	head, err := t.LoadPlumHead(ctx, headSeal)
	if err != nil {
		return nil, err
	}
	body, err := t.LoadPlumBody(ctx, head.BodySeal)
	if err != nil {
		return nil, err
	}
	metadata, err := t.LoadPlumMetadata(ctx, head.MetadataSeal)
	if err != nil {
		return nil, err
	}
	var relations *plum.Relations
	if head.RelationsSeal != nil {
		relations, err = t.LoadPlumRelations(ctx, *head.RelationsSeal)
		if err != nil {
			return nil, err
		}
	}
	return &plum.Plum{Head: *head, Metadata: *metadata, Relations: relations, Body: *body}, nil
}

func (t *tx) RelationsFor(ctx context.Context, headSeal seal.PlumHeadSeal) (*plum.Relations, error) {
	head, err := t.LoadPlumHead(ctx, headSeal)
	if err != nil {
		return nil, err
	}
	if head.RelationsSeal == nil {
		return nil, nil
	}
	return t.LoadPlumRelations(ctx, *head.RelationsSeal)
}

func (t *tx) GetPathState(ctx context.Context, path string) (*storage.PathState, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT row_inserted_at, row_updated_at, current_state_plum_head_seal
		FROM path_states WHERE path = ? AND row_deleted_at IS NULL`, path)
	var insertedAt, updatedAt int64
	var headSealBytes []byte
	if err := row.Scan(&insertedAt, &updatedAt, &headSealBytes); err != nil {
		if err == sql.ErrNoRows {
			return nil, &storage.PathNotFound{Path: path}
		}
		return nil, fmt.Errorf("sqlite: loading path state: %w", err)
	}
	headSeal, err := seal.FromBytes(seal.AlgorithmSHA256, headSealBytes)
	if err != nil {
		return nil, &storage.InvalidValueInDB{Table: "path_states", Column: "current_state_plum_head_seal", Reason: err.Error()}
	}
	return &storage.PathState{
		Path:                  path,
		CurrentStateHeadSeal:  seal.PlumHeadSeal{Seal: headSeal},
		RowInsertedAtUnixNano: insertedAt,
		RowUpdatedAtUnixNano:  updatedAt,
	}, nil
}

func (t *tx) CreatePathState(ctx context.Context, path string, headSeal seal.PlumHeadSeal) error {
	now := time.Now().UnixNano()
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO path_states (row_inserted_at, row_updated_at, path, current_state_plum_head_seal)
		VALUES (?, ?, ?, ?)`, now, now, path, headSeal.Bytes())
	if err != nil {
		return fmt.Errorf("sqlite: creating path state: %w", err)
	}
	return nil
}

func (t *tx) UpdatePathState(ctx context.Context, path string, headSeal seal.PlumHeadSeal) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE path_states SET row_updated_at = ?, current_state_plum_head_seal = ?
		WHERE path = ? AND row_deleted_at IS NULL`,
		time.Now().UnixNano(), headSeal.Bytes(), path)
	if err != nil {
		return fmt.Errorf("sqlite: updating path state: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: updating path state: %w", err)
	}
	if n == 0 {
		return &storage.PathNotFound{Path: path}
	}
	return nil
}

func (t *tx) DeletePathState(ctx context.Context, path string) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE path_states SET row_deleted_at = ? WHERE path = ? AND row_deleted_at IS NULL`,
		time.Now().UnixNano(), path)
	if err != nil {
		return fmt.Errorf("sqlite: deleting path state: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: deleting path state: %w", err)
	}
	if n == 0 {
		return &storage.PathNotFound{Path: path}
	}
	return nil
}

func (t *tx) ListPathStates(ctx context.Context) ([]storage.PathState, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT path, row_inserted_at, row_updated_at, current_state_plum_head_seal
		FROM path_states WHERE row_deleted_at IS NULL ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing path states: %w", err)
	}
	defer rows.Close()

	var states []storage.PathState
	for rows.Next() {
		var path string
		var insertedAt, updatedAt int64
		var headSealBytes []byte
		if err := rows.Scan(&path, &insertedAt, &updatedAt, &headSealBytes); err != nil {
			return nil, fmt.Errorf("sqlite: scanning path state: %w", err)
		}
		headSeal, err := seal.FromBytes(seal.AlgorithmSHA256, headSealBytes)
		if err != nil {
			return nil, &storage.InvalidValueInDB{Table: "path_states", Column: "current_state_plum_head_seal", Reason: err.Error()}
		}
		states = append(states, storage.PathState{
			Path:                  path,
			CurrentStateHeadSeal:  seal.PlumHeadSeal{Seal: headSeal},
			RowInsertedAtUnixNano: insertedAt,
			RowUpdatedAtUnixNano:  updatedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: listing path states: %w", err)
	}
	return states, nil
}

func nullableBytes(b []byte) any {
	if b == nil {
		return nil
	}
	return b
}

func nullableString(s string, present bool) any {
	if !present {
		return nil
	}
	return s
}

func nullableInt64(v int64, present bool) any {
	if !present {
		return nil
	}
	return v
}
