/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package main

import (
	"bytes"
	"errors"
	"io/ioutil"
	"time"

	"github.com/parley-im/parley/log"
	"github.com/parley-im/parley/session"
	"github.com/parley-im/parley/storage"
	"gopkg.in/yaml.v2"
)

const defaultDialTimeout = time.Second * 15

// ServerConfig represents the server connection configuration.
type ServerConfig struct {
	Address     string
	DialTimeout time.Duration
	KeepAlive   time.Duration
}

type serverConfigProxy struct {
	Address     string `yaml:"address"`
	DialTimeout int    `yaml:"dial_timeout"`
	KeepAlive   int    `yaml:"keep_alive"`
}

// UnmarshalYAML satisfies Unmarshaler interface.
func (c *ServerConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	p := serverConfigProxy{}
	if err := unmarshal(&p); err != nil {
		return err
	}
	if len(p.Address) == 0 {
		return errors.New("server address must be set")
	}
	c.Address = p.Address
	c.DialTimeout = time.Second * time.Duration(p.DialTimeout)
	if c.DialTimeout == 0 {
		c.DialTimeout = defaultDialTimeout
	}
	c.KeepAlive = time.Second * time.Duration(p.KeepAlive)
	return nil
}

// Config represents a global configuration.
type Config struct {
	PIDFile string         `yaml:"pid_path"`
	JID     string         `yaml:"jid"`
	Server  ServerConfig   `yaml:"server"`
	Logger  log.Config     `yaml:"logger"`
	Storage storage.Config `yaml:"storage"`
	Session session.Config `yaml:"session"`
}

// FromFile loads default global configuration from
// a specified file.
func (cfg *Config) FromFile(configFile string) error {
	b, err := ioutil.ReadFile(configFile)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, cfg)
}

// FromBuffer loads default global configuration from
// a specified byte buffer.
func (cfg *Config) FromBuffer(buf *bytes.Buffer) error {
	return yaml.Unmarshal(buf.Bytes(), cfg)
}
