/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package storage

import (
	"fmt"

	"github.com/parley-im/parley/storage/memstorage"
	"github.com/parley-im/parley/storage/repository"
	"github.com/parley-im/parley/storage/sqlite"
)

// New initializes the configured storage type and returns associated container.
func New(cfg *Config) (repository.Container, error) {
	switch cfg.Type {
	case Memory:
		return memstorage.New(), nil
	case SQLite:
		return sqlite.New(cfg.SQLite)
	default:
		return nil, fmt.Errorf("storage: unrecognized storage type: %d", cfg.Type)
	}
}
