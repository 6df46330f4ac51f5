/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/parley-im/parley/log"
	"github.com/parley-im/parley/storage"
)

func TestConfig_FromFile(t *testing.T) {
	cfg := Config{}
	err := cfg.FromFile("parley.yml.nonexistent")
	require.NotNil(t, err)
}

func TestConfig_FromBuffer(t *testing.T) {
	buf := bytes.NewBufferString(`
jid: alice@example.org/parley
server:
  address: example.org:5222
  dial_timeout: 5
logger:
  level: debug
storage:
  type: memory
session:
  send_chat_states: true
  ping:
    send: true
    send_interval: 60
`)
	cfg := Config{}
	err := cfg.FromBuffer(buf)
	require.Nil(t, err)

	require.Equal(t, "alice@example.org/parley", cfg.JID)
	require.Equal(t, "example.org:5222", cfg.Server.Address)
	require.Equal(t, time.Second*5, cfg.Server.DialTimeout)
	require.Equal(t, log.DebugLevel, cfg.Logger.Level)
	require.Equal(t, storage.Memory, cfg.Storage.Type)
	require.True(t, cfg.Session.SendChatStates)
	require.Equal(t, time.Second*60, cfg.Session.Ping.SendInterval)
}

func TestConfig_MissingServerAddress(t *testing.T) {
	buf := bytes.NewBufferString(`
jid: alice@example.org/parley
server:
  dial_timeout: 5
`)
	cfg := Config{}
	require.NotNil(t, cfg.FromBuffer(buf))
}
