/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package session

import (
	"time"

	"github.com/parley-im/parley/module/xep0092"
	"github.com/parley-im/parley/module/xep0199"
)

const defaultMaxStanzaSize = 32768

const defaultRequestTimeout = time.Second * 30

// A Config structure is used to configure an XMPP session.
type Config struct {
	// MaxStanzaSize defines the maximum stanza size that
	// can be read from the session transport.
	MaxStanzaSize int

	// RequestTimeout bounds how long a pending IQ request stays
	// registered before its handler is invoked with no result.
	RequestTimeout time.Duration

	// SendChatStates is the global chat state notifications
	// preference.
	SendChatStates bool

	// Ping configures the XEP-0199 module.
	Ping xep0199.Config

	// Version configures the XEP-0092 module.
	Version xep0092.Config
}

type configProxy struct {
	MaxStanzaSize  int            `yaml:"max_stanza_size"`
	RequestTimeout int            `yaml:"request_timeout"`
	SendChatStates bool           `yaml:"send_chat_states"`
	Ping           xep0199.Config `yaml:"ping"`
	Version        xep0092.Config `yaml:"version"`
}

// UnmarshalYAML satisfies Unmarshaler interface.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	p := configProxy{}
	if err := unmarshal(&p); err != nil {
		return err
	}
	c.MaxStanzaSize = p.MaxStanzaSize
	if c.MaxStanzaSize == 0 {
		c.MaxStanzaSize = defaultMaxStanzaSize
	}
	c.RequestTimeout = time.Second * time.Duration(p.RequestTimeout)
	if c.RequestTimeout == 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	c.SendChatStates = p.SendChatStates
	c.Ping = p.Ping
	c.Version = p.Version
	return nil
}
