/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package memstorage

import (
	"context"
	"encoding/json"

	capsmodel "github.com/parley-im/parley/model/capsmodel"
)

// Capabilities represents an in-memory capabilities repository.
type Capabilities struct {
	s        *Storage
	bindings map[string][]byte
}

// UpsertCapabilities inserts capabilities associated to a node+ver pair,
// or updates them if previously inserted.
func (c *Capabilities) UpsertCapabilities(_ context.Context, caps *capsmodel.Capabilities) error {
	b, err := json.Marshal(caps)
	if err != nil {
		return err
	}
	return c.s.inWriteLock(func() error {
		c.bindings[capabilitiesKey(caps.Node, caps.Ver)] = b
		return nil
	})
}

// FetchCapabilities fetches capabilities associated to a given node and ver.
func (c *Capabilities) FetchCapabilities(_ context.Context, node, ver string) (*capsmodel.Capabilities, error) {
	var b []byte
	if err := c.s.inReadLock(func() error {
		b = c.bindings[capabilitiesKey(node, ver)]
		return nil
	}); err != nil {
		return nil, err
	}
	if b == nil {
		return nil, nil
	}
	var caps capsmodel.Capabilities
	if err := json.Unmarshal(b, &caps); err != nil {
		return nil, err
	}
	return &caps, nil
}

func capabilitiesKey(node, ver string) string {
	return "capabilities:" + node + ":" + ver
}
