/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package stream

import (
	"time"

	"github.com/parley-im/parley/xmpp"
	"github.com/parley-im/parley/xmpp/jid"
)

// MockStream represents a testing mock of the Stream interface.
// It records every sent element and keeps response handlers so tests
// can inject replies.
type MockStream struct {
	jid      *jid.JID
	elems    []xmpp.XElement
	iqs      []*xmpp.IQ
	handlers map[string]IQResultHandler
	timeds   map[TimedHandle]func()
	nextTmd  TimedHandle
}

// NewMockStream returns a new mock stream instance.
func NewMockStream(j *jid.JID) *MockStream {
	return &MockStream{
		jid:      j,
		handlers: make(map[string]IQResultHandler),
		timeds:   make(map[TimedHandle]func()),
	}
}

// JID returns the mock stream bound JID.
func (m *MockStream) JID() *jid.JID { return m.jid }

// SendElement records an outgoing element.
func (m *MockStream) SendElement(elem xmpp.XElement) {
	m.elems = append(m.elems, elem)
}

// SendIQ records an outgoing request IQ along with its response handler.
func (m *MockStream) SendIQ(iq *xmpp.IQ, hnd IQResultHandler) string {
	m.iqs = append(m.iqs, iq)
	m.elems = append(m.elems, iq)
	if hnd != nil {
		m.handlers[iq.ID()] = hnd
	}
	return iq.ID()
}

// RegisterTimed records a periodic handler without scheduling it.
func (m *MockStream) RegisterTimed(_ time.Duration, fn func()) TimedHandle {
	m.nextTmd++
	m.timeds[m.nextTmd] = fn
	return m.nextTmd
}

// CancelTimed removes a previously registered periodic handler.
func (m *MockStream) CancelTimed(h TimedHandle) {
	delete(m.timeds, h)
}

// LastElement returns the last sent element, or nil.
func (m *MockStream) LastElement() xmpp.XElement {
	if len(m.elems) == 0 {
		return nil
	}
	return m.elems[len(m.elems)-1]
}

// LastIQ returns the last sent request IQ, or nil.
func (m *MockStream) LastIQ() *xmpp.IQ {
	if len(m.iqs) == 0 {
		return nil
	}
	return m.iqs[len(m.iqs)-1]
}

// ElementCount returns the number of sent elements.
func (m *MockStream) ElementCount() int { return len(m.elems) }

// IQCount returns the number of sent request IQs.
func (m *MockStream) IQCount() int { return len(m.iqs) }

// TimedCount returns the number of registered periodic handlers.
func (m *MockStream) TimedCount() int { return len(m.timeds) }

// FireTimed invokes every registered periodic handler once.
func (m *MockStream) FireTimed() {
	for _, fn := range m.timeds {
		fn()
	}
}

// DeliverResponse routes a response stanza to its registered handler,
// honoring the returned continue policy. It reports whether a handler
// was found.
func (m *MockStream) DeliverResponse(resp xmpp.Stanza) bool {
	hnd, ok := m.handlers[resp.ID()]
	if !ok {
		return false
	}
	if hnd(resp) == Remove {
		delete(m.handlers, resp.ID())
	}
	return true
}

// PendingHandlerCount returns the number of registered response handlers.
func (m *MockStream) PendingHandlerCount() int { return len(m.handlers) }
