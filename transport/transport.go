/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package transport

import (
	"io"

	"github.com/parley-im/parley/xmpp"
)

// Transport represents a stream transport mechanism.
//
// The transport is expected to deliver an already-negotiated stream;
// TLS and stream authentication happen before the engine takes over.
type Transport interface {
	io.ReadWriteCloser

	// WriteString writes a raw string to the transport.
	WriteString(s string) error

	// WriteElement writes an XML element to the transport.
	WriteElement(elem xmpp.XElement, includeClosing bool) error
}
