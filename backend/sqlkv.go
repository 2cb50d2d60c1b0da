// Copyright 2016 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Drivers registered by import side-effect; callers pick one via the
	// driverName argument to OpenSQL. Both are already direct dependencies
	// of the teacher repository's own go.mod.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// SQLKV is a relational-store-backed Store: a two-column (key, value)
// table addressed by the tree's 32-byte digests, usable against either
// Postgres (driverName "postgres") or MySQL (driverName "mysql").
type SQLKV struct {
	cache Cache
	db    *sql.DB
	table string
}

// OpenSQL opens (and, if needed, creates) the backing table, returning a
// ready-to-use SQLKV. dataSourceName is passed straight to sql.Open.
func OpenSQL(driverName, dataSourceName, table string) (*SQLKV, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("backend: sql ping: %w", err)
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (k VARBINARY(32) PRIMARY KEY, v BLOB)`, table)
	if driverName == "postgres" {
		ddl = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (k BYTEA PRIMARY KEY, v BYTEA)`, table)
	}
	if _, err := db.Exec(ddl); err != nil {
		return nil, fmt.Errorf("backend: sql create table: %w", err)
	}
	return &SQLKV{db: db, table: table}, nil
}

// Close releases the underlying *sql.DB.
func (s *SQLKV) Close() error { return s.db.Close() }

// Get implements Store.
func (s *SQLKV) Get(ctx context.Context, key []byte) ([]byte, error) {
	if v, hit, deleted := s.cache.Lookup(key); hit {
		if deleted {
			return nil, ErrNotFound
		}
		return v, nil
	}
	var v []byte
	q := fmt.Sprintf(`SELECT v FROM %s WHERE k = $1`, s.table)
	err := s.db.QueryRowContext(ctx, q, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Put implements Store.
func (s *SQLKV) Put(ctx context.Context, key, value []byte) error {
	if s.cache.IsOpen() {
		s.cache.Put(key, value)
		return nil
	}
	return s.upsert(ctx, s.db, key, value)
}

// Delete implements Store.
func (s *SQLKV) Delete(ctx context.Context, key []byte) error {
	if s.cache.IsOpen() {
		s.cache.Delete(key)
		return nil
	}
	q := fmt.Sprintf(`DELETE FROM %s WHERE k = $1`, s.table)
	_, err := s.db.ExecContext(ctx, q, key)
	return err
}

// BeginBatch implements Store.
func (s *SQLKV) BeginBatch(context.Context) error {
	if !s.cache.Begin() {
		return ErrBatchOpen
	}
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (s *SQLKV) upsert(ctx context.Context, e execer, key, value []byte) error {
	q := fmt.Sprintf(`INSERT INTO %s (k, v) VALUES ($1, $2)
		ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v`, s.table)
	_, err := e.ExecContext(ctx, q, key, value)
	return err
}

// AbortBatch implements Store.
func (s *SQLKV) AbortBatch(context.Context) error {
	if !s.cache.IsOpen() {
		return ErrNoBatch
	}
	s.cache.Abort()
	return nil
}

// CommitBatch implements Store: the drained cache is flushed inside a
// single SQL transaction, giving an all-or-nothing commit.
func (s *SQLKV) CommitBatch(ctx context.Context) error {
	if !s.cache.IsOpen() {
		return ErrNoBatch
	}
	writes, deletes := s.cache.Drain()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for k := range deletes {
		q := fmt.Sprintf(`DELETE FROM %s WHERE k = $1`, s.table)
		if _, err := tx.ExecContext(ctx, q, []byte(k)); err != nil {
			tx.Rollback()
			return err
		}
	}
	for k, v := range writes {
		if err := s.upsert(ctx, tx, []byte(k), v); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
