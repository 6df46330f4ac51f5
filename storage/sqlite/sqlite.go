/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package sqlite

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3" // SQL driver
	"github.com/pkg/errors"
	"github.com/sony/gobreaker"

	"github.com/parley-im/parley/storage/repository"
)

// schema keeps capability records across client restarts. Records are
// keyed by content hash so they stay valid from one session to the next.
const schema = `
CREATE TABLE IF NOT EXISTS capabilities (
    node       TEXT NOT NULL,
    ver        TEXT NOT NULL,
    identities TEXT NOT NULL,
    features   TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (node, ver)
);`

type sqliteStorage struct {
	db *sql.DB
	cb *gobreaker.CircuitBreaker
}

func newStorage(db *sql.DB) *sqliteStorage {
	return &sqliteStorage{
		db: db,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: "storage"}),
	}
}

func (s *sqliteStorage) inBreaker(fn func() (interface{}, error)) (interface{}, error) {
	return s.cb.Execute(fn)
}

type sqliteContainer struct {
	caps *sqliteCapabilities
	h    *sql.DB
}

// New initializes SQLite storage and returns associated container.
func New(cfg *Config) (repository.Container, error) {
	db, err := sql.Open("sqlite3", cfg.File)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	db.SetMaxOpenConns(cfg.PoolSize)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to initialize schema")
	}
	return &sqliteContainer{
		caps: newCapabilities(db),
		h:    db,
	}, nil
}

func (c *sqliteContainer) Capabilities() repository.Capabilities { return c.caps }

func (c *sqliteContainer) Close(_ context.Context) error {
	return c.h.Close()
}
