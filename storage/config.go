/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package storage

import (
	"errors"
	"fmt"

	"github.com/parley-im/parley/storage/sqlite"
)

// Type represents a storage manager type.
type Type int

const (
	// Memory represents an in-memory storage type.
	Memory Type = iota

	// SQLite represents a SQLite storage type.
	SQLite
)

// String returns Type string representation.
func (t Type) String() string {
	switch t {
	case Memory:
		return "memory"
	case SQLite:
		return "sqlite"
	}
	return ""
}

// Config represents storage configuration.
type Config struct {
	Type   Type
	SQLite *sqlite.Config
}

type configProxy struct {
	Type   string         `yaml:"type"`
	SQLite *sqlite.Config `yaml:"sqlite"`
}

// UnmarshalYAML satisfies Unmarshaler interface.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	p := configProxy{}
	if err := unmarshal(&p); err != nil {
		return err
	}
	switch p.Type {
	case "", "memory":
		c.Type = Memory
	case "sqlite":
		if p.SQLite == nil {
			return errors.New("storage: couldn't read sqlite configuration")
		}
		c.Type = SQLite
		c.SQLite = p.SQLite
	default:
		return fmt.Errorf("storage: unrecognized storage type: %s", p.Type)
	}
	return nil
}
