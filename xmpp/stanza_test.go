/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package xmpp

import (
	"testing"
	"time"

	"github.com/parley-im/parley/xmpp/jid"
	"github.com/stretchr/testify/require"
)

func TestIQBuild(t *testing.T) {
	j, _ := jid.New("alice", "example.org", "balcony", false)

	elem := NewElementName("message")
	_, err := NewIQFromElement(elem, j, j) // wrong name...
	require.NotNil(t, err)

	elem.SetName("iq")
	_, err = NewIQFromElement(elem, j, j) // no ID...
	require.NotNil(t, err)

	elem.SetID("iq-1")
	_, err = NewIQFromElement(elem, j, j) // no type...
	require.NotNil(t, err)

	elem.SetType("invalid")
	_, err = NewIQFromElement(elem, j, j) // invalid type...
	require.NotNil(t, err)

	elem.SetType(GetType)
	_, err = NewIQFromElement(elem, j, j) // 'get' with no child...
	require.NotNil(t, err)

	elem.SetType(ResultType)
	elem.AppendElements([]XElement{NewElementName("a"), NewElementName("b")})
	_, err = NewIQFromElement(elem, j, j) // a result IQ can have no child...
	require.Nil(t, err)

	elem.SetType(GetType)
	_, err = NewIQFromElement(elem, j, j) // 'get' with more than one child...
	require.NotNil(t, err)

	elem.ClearElements()
	elem.AppendElement(NewElementNamespace("ping", "urn:xmpp:ping"))
	iq, err := NewIQFromElement(elem, j, j)
	require.Nil(t, err)
	require.NotNil(t, iq)
}

func TestIQType(t *testing.T) {
	require.True(t, NewIQType("id", GetType).IsGet())
	require.True(t, NewIQType("id", SetType).IsSet())
	require.True(t, NewIQType("id", ResultType).IsResult())
}

func TestResultIQ(t *testing.T) {
	j, _ := jid.NewWithString("example.org", true)

	elem := NewElementName("iq")
	elem.SetID("iq-2")
	elem.SetType(GetType)
	elem.AppendElement(NewElementNamespace("ping", "urn:xmpp:ping"))
	iq, _ := NewIQFromElement(elem, j, j)

	result := iq.ResultIQ()
	require.Equal(t, "iq-2", result.ID())
	require.True(t, result.IsResult())
}

func TestMessageBuild(t *testing.T) {
	j, _ := jid.New("alice", "example.org", "balcony", false)

	elem := NewElementName("iq")
	_, err := NewMessageFromElement(elem, j, j) // wrong name...
	require.NotNil(t, err)

	elem.SetName("message")
	elem.SetType("invalid")
	_, err = NewMessageFromElement(elem, j, j) // invalid type...
	require.NotNil(t, err)

	elem.SetType(ChatType)
	elem.AppendElement(NewElementName("body").SetText("Hi everybody!"))
	msg, err := NewMessageFromElement(elem, j, j)
	require.Nil(t, err)
	require.NotNil(t, msg)
	require.True(t, msg.IsChat())
	require.True(t, msg.IsMessageWithBody())
	require.Equal(t, "Hi everybody!", msg.Body())
}

func TestMessageSubject(t *testing.T) {
	m := NewMessageType("id", GroupChatType)
	_, ok := m.Subject()
	require.False(t, ok)

	m.AppendElement(NewElementName("subject"))
	subj, ok := m.Subject()
	require.True(t, ok)
	require.Equal(t, "", subj)
}

func TestMessageChatState(t *testing.T) {
	m := NewMessageType("id", ChatType)
	_, ok := m.ChatState()
	require.False(t, ok)

	m.SetChatState(ComposingChatState)
	cs, ok := m.ChatState()
	require.True(t, ok)
	require.Equal(t, ComposingChatState, cs)

	m.SetChatState(ActiveChatState)
	cs, _ = m.ChatState()
	require.Equal(t, ActiveChatState, cs)
	require.Equal(t, 1, len(m.Elements().ChildrenNamespace("active", ChatStatesNamespace))+
		len(m.Elements().ChildrenNamespace("composing", ChatStatesNamespace)))
}

func TestMessageDelayed(t *testing.T) {
	m := NewMessageType("id", ChatType)
	_, ok := m.Delayed()
	require.False(t, ok)

	d := NewElementNamespace("delay", "urn:xmpp:delay")
	d.SetAttribute("stamp", "2020-07-10T23:08:25Z")
	m.AppendElement(d)
	tm, ok := m.Delayed()
	require.True(t, ok)
	require.Equal(t, 2020, tm.Year())

	legacy := NewMessageType("id2", ChatType)
	x := NewElementNamespace("x", "jabber:x:delay")
	x.SetAttribute("stamp", "20200710T23:08:25")
	legacy.AppendElement(x)
	tm2, ok := legacy.Delayed()
	require.True(t, ok)
	require.Equal(t, time.July, tm2.Month())
}

func TestPresenceBuild(t *testing.T) {
	j, _ := jid.New("alice", "example.org", "balcony", false)

	elem := NewElementName("message")
	_, err := NewPresenceFromElement(elem, j, j) // wrong name...
	require.NotNil(t, err)

	elem.SetName("presence")
	elem.SetType("invalid")
	_, err = NewPresenceFromElement(elem, j, j) // invalid type...
	require.NotNil(t, err)

	elem.SetType(UnavailableType)
	presence, err := NewPresenceFromElement(elem, j, j)
	require.Nil(t, err)
	require.True(t, presence.IsUnavailable())
}

func TestPresenceShowAndPriority(t *testing.T) {
	j, _ := jid.New("alice", "example.org", "balcony", false)

	elem := NewElementName("presence")
	elem.AppendElement(NewElementName("show").SetText("dnd"))
	elem.AppendElement(NewElementName("priority").SetText("10"))
	presence, err := NewPresenceFromElement(elem, j, j)
	require.Nil(t, err)
	require.True(t, presence.IsAvailable())
	require.Equal(t, DoNotDisturbShowState, presence.ShowState())
	require.Equal(t, int8(10), presence.Priority())

	elem2 := NewElementName("presence")
	elem2.AppendElement(NewElementName("show").SetText("invalid"))
	_, err = NewPresenceFromElement(elem2, j, j)
	require.NotNil(t, err)
}

func TestPresenceCapabilities(t *testing.T) {
	j, _ := jid.New("alice", "example.org", "balcony", false)

	elem := NewElementName("presence")
	c := NewElementNamespace("c", "http://jabber.org/protocol/caps")
	c.SetAttribute("node", "http://psi-im.org")
	c.SetAttribute("hash", "sha-1")
	c.SetAttribute("ver", "q07IKJEyjvHSyhy//CH0CxmKi8w=")
	elem.AppendElement(c)

	presence, err := NewPresenceFromElement(elem, j, j)
	require.Nil(t, err)
	caps := presence.Capabilities()
	require.NotNil(t, caps)
	require.Equal(t, "http://psi-im.org", caps.Node)
	require.Equal(t, "sha-1", caps.Hash)
	require.Equal(t, "q07IKJEyjvHSyhy//CH0CxmKi8w=", caps.Ver)

	elem2 := NewElementName("presence")
	presence2, _ := NewPresenceFromElement(elem2, j, j)
	require.Nil(t, presence2.Capabilities())
}
