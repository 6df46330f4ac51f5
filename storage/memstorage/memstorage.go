/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package memstorage

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/parley-im/parley/storage/repository"
)

// ErrMocked will be returned by any Storage method
// when mocked error is activated.
var ErrMocked = errors.New("memstorage: mocked error")

// Storage represents an in-memory storage container.
type Storage struct {
	mockErr uint32
	mu      sync.RWMutex
	caps    *Capabilities
}

// New returns a new in-memory storage container.
func New() *Storage {
	s := &Storage{}
	s.caps = &Capabilities{s: s, bindings: make(map[string][]byte)}
	return s
}

// Capabilities returns the in-memory capabilities repository.
func (s *Storage) Capabilities() repository.Capabilities { return s.caps }

// Close is a noop for in-memory storage.
func (s *Storage) Close(_ context.Context) error { return nil }

// EnableMockedError enables an error return on every storage operation.
func (s *Storage) EnableMockedError() {
	atomic.StoreUint32(&s.mockErr, 1)
}

// DisableMockedError disables mocked error mode.
func (s *Storage) DisableMockedError() {
	atomic.StoreUint32(&s.mockErr, 0)
}

func (s *Storage) inWriteLock(f func() error) error {
	if atomic.LoadUint32(&s.mockErr) == 1 {
		return ErrMocked
	}
	s.mu.Lock()
	err := f()
	s.mu.Unlock()
	return err
}

func (s *Storage) inReadLock(f func() error) error {
	if atomic.LoadUint32(&s.mockErr) == 1 {
		return ErrMocked
	}
	s.mu.RLock()
	err := f()
	s.mu.RUnlock()
	return err
}
