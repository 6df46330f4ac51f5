/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package xmpp

import (
	"testing"

	"github.com/parley-im/parley/xmpp/jid"
	"github.com/stretchr/testify/require"
)

func TestErrorStanzaFromStanza(t *testing.T) {
	j1, _ := jid.NewWithString("alice@example.org/balcony", true)
	j2, _ := jid.NewWithString("example.org", true)

	elem := NewElementName("iq")
	elem.SetID("iq-1")
	elem.SetType(GetType)
	elem.AppendElement(NewElementNamespace("ping", "urn:xmpp:ping"))
	iq, _ := NewIQFromElement(elem, j1, j2)

	errStanza := iq.ServiceUnavailableError()
	require.True(t, errStanza.IsError())
	errEl := errStanza.Error()
	require.NotNil(t, errEl)
	require.Equal(t, "cancel", errEl.Type())
	require.NotNil(t, errEl.Elements().ChildNamespace("service-unavailable", stanzasNamespace))

	// error stanzas are returned to sender
	require.Equal(t, j1.String(), errStanza.To())
	require.Equal(t, j2.String(), errStanza.From())
}

func TestErrorTypes(t *testing.T) {
	require.Equal(t, "bad-request", ErrBadRequest.Error())
	require.Equal(t, ModifyErrorType, ErrBadRequest.Type())
	require.Equal(t, "feature-not-implemented", ErrFeatureNotImplemented.Error())
	require.Equal(t, "forbidden", ErrForbidden.Error())
	require.Equal(t, AuthErrorType, ErrForbidden.Type())
	require.Equal(t, "item-not-found", ErrItemNotFound.Error())
	require.Equal(t, "service-unavailable", ErrServiceUnavailable.Error())
}

func TestErrorText(t *testing.T) {
	stanza := NewElementName("iq")
	stanza.SetType(ErrorType)
	require.Equal(t, "unknown error", ErrorText(stanza))

	errEl := NewElementName("error")
	errEl.SetType("cancel")
	errEl.AppendElement(NewElementNamespace("not-acceptable", stanzasNamespace))
	stanza.AppendElement(errEl)
	require.Equal(t, "not acceptable", ErrorText(stanza))
	require.Equal(t, "not-acceptable", ErrorCondition(stanza))
	require.Equal(t, "cancel", ErrorTypeAttribute(stanza))

	txt := NewElementNamespace("text", stanzasNamespace)
	txt.SetText("You are banned from this room")
	errEl.AppendElement(txt)
	require.Equal(t, "You are banned from this room", ErrorText(stanza))
}

func TestErrorTextNoError(t *testing.T) {
	stanza := NewElementName("message")
	require.Equal(t, "unknown error", ErrorText(stanza))
	require.Equal(t, "", ErrorCondition(stanza))
	require.Equal(t, "", ErrorTypeAttribute(stanza))
}
