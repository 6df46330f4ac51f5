/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package xep0280

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parley-im/parley/stream"
	"github.com/parley-im/parley/xmpp"
	"github.com/parley-im/parley/xmpp/jid"
)

func TestXEP0280_EnableDisable(t *testing.T) {
	j, _ := jid.New("alice", "parley.im", "balcony", true)
	stm := stream.NewMockStream(j)

	var gotEnabled *bool
	x := New(nil, stm, Events{
		Enabled: func(enabled bool) { gotEnabled = &enabled },
	})
	require.False(t, x.Enabled())

	x.Enable()
	req := stm.LastIQ()
	require.NotNil(t, req)
	require.True(t, req.IsSet())
	require.NotNil(t, req.Elements().ChildNamespace("enable", carbonsNamespace))

	require.True(t, stm.DeliverResponse(req.ResultIQ()))
	require.NotNil(t, gotEnabled)
	require.True(t, *gotEnabled)
	require.True(t, x.Enabled())

	x.Disable()
	req = stm.LastIQ()
	require.NotNil(t, req.Elements().ChildNamespace("disable", carbonsNamespace))
	require.True(t, stm.DeliverResponse(req.ResultIQ()))
	require.False(t, *gotEnabled)
	require.False(t, x.Enabled())
}

func TestXEP0280_EnableError(t *testing.T) {
	j, _ := jid.New("alice", "parley.im", "balcony", true)
	stm := stream.NewMockStream(j)

	var gotErrText string
	x := New(nil, stm, Events{
		Error: func(errText string) { gotErrText = errText },
	})
	x.Enable()

	req := stm.LastIQ()
	require.True(t, stm.DeliverResponse(xmpp.NewErrorStanzaFromStanza(req, xmpp.ErrFeatureNotImplemented)))
	require.Equal(t, "feature not implemented", gotErrText)
	require.False(t, x.Enabled())
}

func carbonStanza(t *testing.T, account, from, to *jid.JID, wrapName string) *xmpp.Message {
	t.Helper()

	inner := xmpp.NewElementName("message")
	inner.SetAttribute("from", from.String())
	inner.SetAttribute("to", to.String())
	inner.SetAttribute("type", xmpp.ChatType)
	body := xmpp.NewElementName("body")
	body.SetText("neither, fair saint, if either thee dislike")
	inner.AppendElement(body)

	fwd := xmpp.NewElementNamespace("forwarded", forwardedNamespace)
	fwd.AppendElement(inner)
	wrap := xmpp.NewElementNamespace(wrapName, carbonsNamespace)
	wrap.AppendElement(fwd)

	outer := xmpp.NewElementName("message")
	outer.AppendElement(wrap)
	msg, err := xmpp.NewMessageFromElement(outer, account.ToBareJID(), account)
	require.Nil(t, err)
	return msg
}

func TestXEP0280_UnwrapReceived(t *testing.T) {
	j, _ := jid.New("alice", "parley.im", "balcony", true)
	bob, _ := jid.New("bob", "parley.im", "garden", true)
	stm := stream.NewMockStream(j)

	var gotDir Direction
	var gotMsg *xmpp.Message
	x := New(nil, stm, Events{
		Received: func(dir Direction, msg *xmpp.Message) {
			gotDir = dir
			gotMsg = msg
		},
	})

	msg := carbonStanza(t, j, bob, j.ToBareJID(), "received")
	require.True(t, x.IsCarbonMessage(msg))
	x.ProcessMessage(msg)

	require.NotNil(t, gotMsg)
	require.Equal(t, Received, gotDir)
	require.Equal(t, bob.String(), gotMsg.From())
	require.Equal(t, "neither, fair saint, if either thee dislike", gotMsg.Body())
}

func TestXEP0280_UnwrapSent(t *testing.T) {
	j, _ := jid.New("alice", "parley.im", "balcony", true)
	bob, _ := jid.New("bob", "parley.im", "garden", true)
	stm := stream.NewMockStream(j)

	var gotDir Direction
	var gotMsg *xmpp.Message
	x := New(nil, stm, Events{
		Received: func(dir Direction, msg *xmpp.Message) {
			gotDir = dir
			gotMsg = msg
		},
	})

	msg := carbonStanza(t, j, j.ToBareJID(), bob, "sent")
	x.ProcessMessage(msg)

	require.NotNil(t, gotMsg)
	require.Equal(t, Sent, gotDir)
	require.Equal(t, bob.String(), gotMsg.To())
}

func TestXEP0280_DropSpoofed(t *testing.T) {
	j, _ := jid.New("alice", "parley.im", "balcony", true)
	bob, _ := jid.New("bob", "parley.im", "garden", true)
	stm := stream.NewMockStream(j)

	processed := false
	x := New(nil, stm, Events{
		Received: func(Direction, *xmpp.Message) { processed = true },
	})

	// outer message originates from a third party, not our own account
	inner := xmpp.NewElementName("message")
	inner.SetAttribute("from", bob.String())
	inner.SetAttribute("to", j.String())
	fwd := xmpp.NewElementNamespace("forwarded", forwardedNamespace)
	fwd.AppendElement(inner)
	wrap := xmpp.NewElementNamespace("received", carbonsNamespace)
	wrap.AppendElement(fwd)
	outer := xmpp.NewElementName("message")
	outer.AppendElement(wrap)
	msg, err := xmpp.NewMessageFromElement(outer, bob, j)
	require.Nil(t, err)

	require.False(t, x.IsCarbonMessage(msg))
	x.ProcessMessage(msg)
	require.False(t, processed)
}

func TestXEP0280_DropMalformed(t *testing.T) {
	j, _ := jid.New("alice", "parley.im", "balcony", true)
	stm := stream.NewMockStream(j)

	processed := false
	x := New(nil, stm, Events{
		Received: func(Direction, *xmpp.Message) { processed = true },
	})

	wrap := xmpp.NewElementNamespace("received", carbonsNamespace)
	outer := xmpp.NewElementName("message")
	outer.AppendElement(wrap)
	msg, err := xmpp.NewMessageFromElement(outer, j.ToBareJID(), j)
	require.Nil(t, err)

	x.ProcessMessage(msg)
	require.False(t, processed)
}
