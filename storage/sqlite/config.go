/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package sqlite

import "errors"

const defaultPoolSize = 1

// Config represents SQLite storage configuration.
type Config struct {
	File     string
	PoolSize int
}

type configProxy struct {
	File     string `yaml:"file"`
	PoolSize int    `yaml:"pool_size"`
}

// UnmarshalYAML satisfies Unmarshaler interface.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	p := configProxy{}
	if err := unmarshal(&p); err != nil {
		return err
	}
	if len(p.File) == 0 {
		return errors.New("sqlite: database file is required")
	}
	c.File = p.File
	c.PoolSize = p.PoolSize
	if c.PoolSize == 0 {
		c.PoolSize = defaultPoolSize
	}
	return nil
}
