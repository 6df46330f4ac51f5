/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package xmpp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSimpleElement(t *testing.T) {
	docSrc := `<a xmlns="im.parley">Hi!</a>\n`
	p := NewParser(strings.NewReader(docSrc), DefaultMode, 0)
	a, err := p.ParseElement()
	require.Nil(t, err)
	require.NotNil(t, a)
	require.Equal(t, "a", a.Name())
	require.Equal(t, "im.parley", a.Namespace())
	require.Equal(t, "Hi!", a.Text())
}

func TestParseNestedElements(t *testing.T) {
	docSrc := `<message type="groupchat"><body>Hi!</body><x xmlns="http://jabber.org/protocol/muc#user"><status code="110"/></x></message>`
	p := NewParser(strings.NewReader(docSrc), DefaultMode, 0)
	msg, err := p.ParseElement()
	require.Nil(t, err)
	require.NotNil(t, msg)
	require.Equal(t, "message", msg.Name())
	require.Equal(t, "groupchat", msg.Type())
	require.Equal(t, "Hi!", msg.Elements().Child("body").Text())

	x := msg.Elements().ChildNamespace("x", "http://jabber.org/protocol/muc#user")
	require.NotNil(t, x)
	require.Equal(t, "110", x.Elements().Child("status").Attributes().Get("code"))
}

func TestParseSkipsProlog(t *testing.T) {
	docSrc := `<?xml version="1.0" encoding="UTF-8"?>` + "\n" + `<presence/>`
	p := NewParser(strings.NewReader(docSrc), DefaultMode, 0)
	presence, err := p.ParseElement()
	require.Nil(t, err)
	require.NotNil(t, presence)
	require.Equal(t, "presence", presence.Name())
}

func TestParseStreamElement(t *testing.T) {
	openStream := `<stream:stream xmlns:stream="http://etherx.jabber.org/streams" version="1.0">`
	p := NewParser(strings.NewReader(openStream), SocketStream, 0)
	elem, err := p.ParseElement()
	require.Nil(t, err)
	require.NotNil(t, elem)
	require.Equal(t, "stream:stream", elem.Name())
}

func TestParseStreamClosedByPeer(t *testing.T) {
	docSrc := `</stream:stream>`
	p := NewParser(strings.NewReader(docSrc), SocketStream, 0)
	_, err := p.ParseElement()
	require.Equal(t, ErrStreamClosedByPeer, err)
}

func TestParseSeveralElements(t *testing.T) {
	docSrc := `<a/><b/><c/>`
	p := NewParser(strings.NewReader(docSrc), DefaultMode, 0)
	a, err := p.ParseElement()
	require.NotNil(t, a)
	require.Nil(t, err)
	b, err := p.ParseElement()
	require.NotNil(t, b)
	require.Nil(t, err)
	c, err := p.ParseElement()
	require.NotNil(t, c)
	require.Nil(t, err)
}

func TestParseMalformed(t *testing.T) {
	docSrc := `<a><b/></c></a>`
	p := NewParser(strings.NewReader(docSrc), DefaultMode, 0)
	_, err := p.ParseElement()
	require.NotNil(t, err)
}

func TestParseTooLargeStanza(t *testing.T) {
	docSrc := `<message><body>a very long message to exceed the hard limit</body></message>`
	p := NewParser(strings.NewReader(docSrc), DefaultMode, 16)
	_, err := p.ParseElement()
	require.Equal(t, ErrTooLargeStanza, err)
}
