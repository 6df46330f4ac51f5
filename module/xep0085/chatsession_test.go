/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package xep0085

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parley-im/parley/stream"
	"github.com/parley-im/parley/xmpp"
	"github.com/parley-im/parley/xmpp/jid"
)

func TestXEP0085_GetOrCreate(t *testing.T) {
	j, _ := jid.New("alice", "parley.im", "balcony", true)
	x := New(true, nil, stream.NewMockStream(j), Events{})

	s := x.GetOrCreate("bob@parley.im")
	require.NotNil(t, s)
	require.Equal(t, "bob@parley.im", s.BareJID)
	require.Equal(t, s, x.GetOrCreate("bob@parley.im"))
}

func TestXEP0085_ResourceOverride(t *testing.T) {
	j, _ := jid.New("alice", "parley.im", "balcony", true)
	x := New(true, nil, stream.NewMockStream(j), Events{})

	target, err := x.TargetJID("bob@parley.im")
	require.Nil(t, err)
	require.Equal(t, "bob@parley.im", target.String())

	x.SetResourceOverride("bob@parley.im", "garden")
	target, err = x.TargetJID("bob@parley.im")
	require.Nil(t, err)
	require.Equal(t, "bob@parley.im/garden", target.String())

	x.Clear("bob@parley.im")
	target, err = x.TargetJID("bob@parley.im")
	require.Nil(t, err)
	require.Equal(t, "bob@parley.im", target.String())
}

func TestXEP0085_ClearResetsState(t *testing.T) {
	j, _ := jid.New("alice", "parley.im", "balcony", true)
	x := New(true, nil, stream.NewMockStream(j), Events{})

	x.NoteOutgoingState("bob@parley.im", xmpp.ComposingChatState)
	require.Equal(t, xmpp.ComposingChatState, x.GetOrCreate("bob@parley.im").LastStateSent)

	x.Clear("bob@parley.im")
	require.Equal(t, xmpp.ChatState(""), x.GetOrCreate("bob@parley.im").LastStateSent)
}

func TestXEP0085_ShouldAttachState(t *testing.T) {
	j, _ := jid.New("alice", "parley.im", "balcony", true)

	tcs := []struct {
		pref       bool
		sendStates bool
		expected   bool
	}{
		{false, false, false},
		{false, true, false},
		{true, false, false},
		{true, true, true},
	}
	for _, tc := range tcs {
		t.Run(fmt.Sprintf("pref=%v,send_states=%v", tc.pref, tc.sendStates), func(t *testing.T) {
			x := New(tc.pref, nil, stream.NewMockStream(j), Events{})
			x.GetOrCreate("bob@parley.im").SendStates = tc.sendStates
			require.Equal(t, tc.expected, x.ShouldAttachState("bob@parley.im"))
		})
	}
}

func TestXEP0085_IncomingState(t *testing.T) {
	j, _ := jid.New("alice", "parley.im", "balcony", true)
	bob, _ := jid.New("bob", "parley.im", "garden", true)

	var gotState xmpp.ChatState
	var gotFrom *jid.JID
	x := New(true, nil, stream.NewMockStream(j), Events{
		StateChanged: func(from *jid.JID, state xmpp.ChatState) {
			gotFrom = from
			gotState = state
		},
	})

	el := xmpp.NewElementName("message")
	el.SetType(xmpp.ChatType)
	msg, err := xmpp.NewMessageFromElement(el, bob, j)
	require.Nil(t, err)
	msg.SetChatState(xmpp.ComposingChatState)

	x.ProcessMessage(msg)
	require.Equal(t, xmpp.ComposingChatState, gotState)
	require.Equal(t, bob.String(), gotFrom.String())

	// a peer that sends states gets states back
	require.True(t, x.ShouldAttachState(bob.ToBareJID().String()))
}

func TestXEP0085_ActivityFallback(t *testing.T) {
	j, _ := jid.New("alice", "parley.im", "balcony", true)
	bob, _ := jid.New("bob", "parley.im", "garden", true)

	activity := false
	x := New(true, nil, stream.NewMockStream(j), Events{
		Activity: func(*jid.JID) { activity = true },
	})

	el := xmpp.NewElementName("message")
	el.SetType(xmpp.ChatType)
	body := xmpp.NewElementName("body")
	body.SetText("hi")
	el.AppendElement(body)
	msg, err := xmpp.NewMessageFromElement(el, bob, j)
	require.Nil(t, err)

	x.ProcessMessage(msg)
	require.True(t, activity)

	// a bodied message without a state never marks the peer state-capable
	require.False(t, x.ShouldAttachState(bob.ToBareJID().String()))
}

func TestXEP0085_Reset(t *testing.T) {
	j, _ := jid.New("alice", "parley.im", "balcony", true)
	x := New(true, nil, stream.NewMockStream(j), Events{})

	x.SetResourceOverride("bob@parley.im", "garden")
	x.GetOrCreate("bob@parley.im").SendStates = true
	x.Reset()

	require.False(t, x.ShouldAttachState("bob@parley.im"))
	target, _ := x.TargetJID("bob@parley.im")
	require.Equal(t, "bob@parley.im", target.String())
}
