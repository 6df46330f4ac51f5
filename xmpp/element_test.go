/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package xmpp

import (
	"bytes"
	"testing"

	"github.com/parley-im/parley/xmpp/jid"
	"github.com/stretchr/testify/require"
)

func TestElementNameAndNamespace(t *testing.T) {
	e := NewElementNamespace("query", "jabber:iq:roster")
	require.Equal(t, "query", e.Name())
	require.Equal(t, "jabber:iq:roster", e.Namespace())

	e.SetName("iq")
	e.SetNamespace("")
	require.Equal(t, "iq", e.Name())
	require.Equal(t, "", e.Namespace())
}

func TestAttributes(t *testing.T) {
	e := NewElementName("message")
	e.SetID("abc-1234")
	e.SetLanguage("en")
	e.SetFrom("romeo@example.org")
	e.SetTo("juliet@example.org")
	e.SetType("chat")
	require.Equal(t, "abc-1234", e.ID())
	require.Equal(t, "en", e.Language())
	require.Equal(t, "romeo@example.org", e.From())
	require.Equal(t, "juliet@example.org", e.To())
	require.Equal(t, "chat", e.Type())
	require.Equal(t, 5, e.Attributes().Count())

	e.RemoveAttribute("xml:lang")
	require.Equal(t, "", e.Language())
	require.Equal(t, 4, e.Attributes().Count())
}

func TestChildElements(t *testing.T) {
	e := NewElementName("message")
	e.AppendElement(NewElementName("body"))
	e.AppendElement(NewElementNamespace("x", "jabber:x:delay"))
	e.AppendElement(NewElementNamespace("x", "jabber:x:conference"))

	require.NotNil(t, e.Elements().Child("body"))
	require.Nil(t, e.Elements().Child("subject"))
	require.NotNil(t, e.Elements().ChildNamespace("x", "jabber:x:delay"))
	require.Equal(t, 2, len(e.Elements().Children("x")))
	require.Equal(t, 3, e.Elements().Count())

	x := e.Elements().ChildNS("jabber:x:conference")
	require.NotNil(t, x)
	require.Equal(t, "jabber:x:conference", x.Namespace())

	e.RemoveElementsNamespace("x", "jabber:x:delay")
	require.Equal(t, 2, e.Elements().Count())
	e.RemoveElements("x")
	require.Equal(t, 1, e.Elements().Count())
	e.ClearElements()
	require.Equal(t, 0, e.Elements().Count())
}

func TestCopy(t *testing.T) {
	e := NewElementName("message")
	e.SetID("id-1")
	e.AppendElement(NewElementName("body").SetText("Hi!"))

	cp := NewElementFromElement(e)
	require.Equal(t, e.String(), cp.String())

	cp.SetID("id-2")
	require.Equal(t, "id-1", e.ID())
}

func TestToXML(t *testing.T) {
	e := NewElementName("message")
	e.SetID("id&1")
	e.AppendElement(NewElementName("body").SetText("a<b"))

	buf := new(bytes.Buffer)
	e.ToXML(buf, true)
	require.Equal(t, `<message id="id&amp;1"><body>a&lt;b</body></message>`, buf.String())

	buf.Reset()
	e.ToXML(buf, false)
	require.Equal(t, `<message id="id&amp;1"><body>a&lt;b</body>`, buf.String())

	empty := NewElementName("active")
	buf.Reset()
	empty.ToXML(buf, true)
	require.Equal(t, `<active/>`, buf.String())
}

func TestIsStanzaAndError(t *testing.T) {
	require.True(t, NewElementName("iq").IsStanza())
	require.True(t, NewElementName("presence").IsStanza())
	require.True(t, NewElementName("message").IsStanza())
	require.False(t, NewElementName("query").IsStanza())

	e := NewElementName("iq")
	e.SetType(ErrorType)
	e.AppendElement(NewElementName("error"))
	require.True(t, e.IsError())
	require.NotNil(t, e.Error())
}

func TestNewStanzaFromElement(t *testing.T) {
	j, _ := jid.NewWithString("romeo@example.org/chamber", true)

	iqEl := NewElementName("iq")
	iqEl.SetID("iq-1")
	iqEl.SetType("get")
	iqEl.SetFrom(j.String())
	iqEl.SetTo("example.org")
	iqEl.AppendElement(NewElementNamespace("query", "jabber:iq:version"))
	st, err := NewStanzaFromElement(iqEl)
	require.Nil(t, err)
	_, ok := st.(*IQ)
	require.True(t, ok)

	msgEl := NewElementName("message")
	msgEl.SetFrom("example.org")
	msgEl.SetTo(j.String())
	st2, err := NewStanzaFromElement(msgEl)
	require.Nil(t, err)
	_, ok = st2.(*Message)
	require.True(t, ok)

	_, err = NewStanzaFromElement(NewElementName("query"))
	require.NotNil(t, err)
}
