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

// ContinuePolicy tells whether a response handler stays registered
// after being invoked.
type ContinuePolicy int

const (
	// Remove retires the handler after one invocation.
	Remove ContinuePolicy = iota

	// Keep leaves the handler registered for further responses.
	Keep
)

// IQResultHandler processes an IQ response correlated to a previously
// sent request. Error responses are passed through, so handlers must
// check the stanza type themselves. A nil result means the request
// expired or was dropped at disconnect; the handler is retired in both
// cases regardless of the returned policy.
type IQResultHandler func(result xmpp.Stanza) ContinuePolicy

// TimedHandle identifies a registered periodic handler.
type TimedHandle uint64

// Stream represents the session surface protocol modules operate
// against. All handler invocations happen on the session run queue, so
// module state never needs locking.
type Stream interface {
	// JID returns the stream bound JID.
	JID() *jid.JID

	// SendElement writes an element over the stream transport.
	SendElement(elem xmpp.XElement)

	// SendIQ sends a request IQ and registers a correlated response
	// handler, returning the request identifier.
	SendIQ(iq *xmpp.IQ, hnd IQResultHandler) string

	// RegisterTimed registers a periodic handler fired every interval
	// while the stream remains connected.
	RegisterTimed(interval time.Duration, fn func()) TimedHandle

	// CancelTimed cancels a previously registered periodic handler.
	CancelTimed(h TimedHandle)
}
