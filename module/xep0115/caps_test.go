/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package xep0115

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	capsmodel "github.com/parley-im/parley/model/capsmodel"
	"github.com/parley-im/parley/module/xep0030"
	"github.com/parley-im/parley/storage/memstorage"
	"github.com/parley-im/parley/stream"
	"github.com/parley-im/parley/xmpp"
	"github.com/parley-im/parley/xmpp/jid"
)

func setupCapsTest(evts Events) (*EntityCaps, *stream.MockStream, *memstorage.Storage) {
	j, _ := jid.NewWithString("alice@parley.im/console", true)
	stm := stream.NewMockStream(j)
	s := memstorage.New()
	disco := xep0030.New(stm, xep0030.Events{})
	return New(stm, disco, s.Capabilities(), evts), stm, s
}

func capsPresence(t *testing.T, from, node, hash, ver string) *xmpp.Presence {
	t.Helper()
	fromJID, _ := jid.NewWithString(from, true)
	toJID, _ := jid.NewWithString("alice@parley.im/console", true)

	el := xmpp.NewElementName("presence")
	c := xmpp.NewElementNamespace("c", Namespace)
	c.SetAttribute("node", node)
	if len(hash) > 0 {
		c.SetAttribute("hash", hash)
	}
	c.SetAttribute("ver", ver)
	el.AppendElement(c)

	presence, err := xmpp.NewPresenceFromElement(el, fromJID, toJID)
	require.Nil(t, err)
	return presence
}

func TestCapsVerifiedResolution(t *testing.T) {
	var resolved *capsmodel.Capabilities

	x, stm, s := setupCapsTest(Events{
		Resolved: func(_ *jid.JID, caps *capsmodel.Capabilities) { resolved = caps },
	})

	identities := []capsmodel.Identity{{Category: "client", Type: "pc", Name: "Exodus 0.9.1"}}
	features := []string{
		"http://jabber.org/protocol/caps",
		"http://jabber.org/protocol/disco#info",
		"http://jabber.org/protocol/disco#items",
		"http://jabber.org/protocol/muc",
	}
	// XEP-0115 §5.2 reference value
	ver := ComputeVer(identities, features, nil)
	require.Equal(t, "QgayPKawpkPSDYmwT/WM94uAlu0=", ver)

	x.ProcessPresence(capsPresence(t, "romeo@montague.lit/orchard", "http://psi-im.org", "sha-1", ver))

	req := stm.LastIQ()
	require.NotNil(t, req)
	q := req.Elements().ChildNamespace("query", xep0030.InfoNamespace)
	require.NotNil(t, q)
	require.Equal(t, "http://psi-im.org#"+ver, q.Attributes().Get("node"))

	result := req.ResultIQ()
	rq := xmpp.NewElementNamespace("query", xep0030.InfoNamespace)
	identityEl := xmpp.NewElementName("identity")
	identityEl.SetAttribute("category", "client")
	identityEl.SetAttribute("type", "pc")
	identityEl.SetAttribute("name", "Exodus 0.9.1")
	rq.AppendElement(identityEl)
	for _, f := range features {
		featureEl := xmpp.NewElementName("feature")
		featureEl.SetAttribute("var", f)
		rq.AppendElement(featureEl)
	}
	result.AppendElement(rq)
	fromJID, _ := jid.NewWithString("romeo@montague.lit/orchard", true)
	result.SetFromJID(fromJID)

	require.True(t, stm.DeliverResponse(result))

	require.NotNil(t, resolved)
	require.True(t, resolved.HasFeature("http://jabber.org/protocol/muc"))

	// record persisted by hash
	stored, err := s.Capabilities().FetchCapabilities(context.Background(), "http://psi-im.org", ver)
	require.Nil(t, err)
	require.NotNil(t, stored)

	// entity now bound
	entity, _ := jid.NewWithString("romeo@montague.lit/orchard", true)
	require.NotNil(t, x.RecordForEntity(entity))
}

func TestCapsVerificationMismatchSkipsCache(t *testing.T) {
	x, stm, s := setupCapsTest(Events{})

	x.ProcessPresence(capsPresence(t, "romeo@montague.lit/orchard", "http://psi-im.org", "sha-1", "ABC123"))

	req := stm.LastIQ()
	result := req.ResultIQ()
	rq := xmpp.NewElementNamespace("query", xep0030.InfoNamespace)
	featureEl := xmpp.NewElementName("feature")
	featureEl.SetAttribute("var", "urn:xmpp:ping")
	rq.AppendElement(featureEl)
	result.AppendElement(rq)
	fromJID, _ := jid.NewWithString("romeo@montague.lit/orchard", true)
	result.SetFromJID(fromJID)

	require.True(t, stm.DeliverResponse(result))

	// mismatching payload must not be cached
	stored, err := s.Capabilities().FetchCapabilities(context.Background(), "http://psi-im.org", "ABC123")
	require.Nil(t, err)
	require.Nil(t, stored)

	entity, _ := jid.NewWithString("romeo@montague.lit/orchard", true)
	require.Nil(t, x.RecordForEntity(entity))
}

func TestCapsCacheHitSkipsNetwork(t *testing.T) {
	var resolved *capsmodel.Capabilities

	x, stm, s := setupCapsTest(Events{
		Resolved: func(_ *jid.JID, caps *capsmodel.Capabilities) { resolved = caps },
	})
	caps := &capsmodel.Capabilities{
		Node:     "http://psi-im.org",
		Ver:      "1234A",
		Features: []string{"urn:xmpp:ping"},
	}
	require.Nil(t, s.Capabilities().UpsertCapabilities(context.Background(), caps))

	x.ProcessPresence(capsPresence(t, "romeo@montague.lit/orchard", "http://psi-im.org", "sha-1", "1234A"))

	require.Nil(t, stm.LastIQ())
	require.NotNil(t, resolved)
}

func TestCapsLegacyPath(t *testing.T) {
	var resolved *capsmodel.Capabilities

	x, stm, s := setupCapsTest(Events{
		Resolved: func(_ *jid.JID, caps *capsmodel.Capabilities) { resolved = caps },
	})

	x.ProcessPresence(capsPresence(t, "juliet@capulet.lit/balcony", "http://oldclient.im", "", "0.3"))

	req := stm.LastIQ()
	require.NotNil(t, req)
	q := req.Elements().ChildNamespace("query", xep0030.InfoNamespace)
	require.Equal(t, "http://oldclient.im#0.3", q.Attributes().Get("node"))

	result := req.ResultIQ()
	rq := xmpp.NewElementNamespace("query", xep0030.InfoNamespace)
	featureEl := xmpp.NewElementName("feature")
	featureEl.SetAttribute("var", "jabber:iq:version")
	rq.AppendElement(featureEl)
	result.AppendElement(rq)
	fromJID, _ := jid.NewWithString("juliet@capulet.lit/balcony", true)
	result.SetFromJID(fromJID)

	require.True(t, stm.DeliverResponse(result))
	require.NotNil(t, resolved)

	// legacy records never reach the hash-verified repository
	stored, err := s.Capabilities().FetchCapabilities(context.Background(), "http://oldclient.im#0.3", "")
	require.Nil(t, err)
	require.Nil(t, stored)

	entity, _ := jid.NewWithString("juliet@capulet.lit/balcony", true)
	record := x.RecordForEntity(entity)
	require.NotNil(t, record)
	require.True(t, record.HasFeature("jabber:iq:version"))
}

func TestCapsReset(t *testing.T) {
	x, stm, _ := setupCapsTest(Events{})

	x.ProcessPresence(capsPresence(t, "juliet@capulet.lit/balcony", "http://oldclient.im", "", "0.3"))
	req := stm.LastIQ()
	result := req.ResultIQ()
	result.AppendElement(xmpp.NewElementNamespace("query", xep0030.InfoNamespace))
	fromJID, _ := jid.NewWithString("juliet@capulet.lit/balcony", true)
	result.SetFromJID(fromJID)
	require.True(t, stm.DeliverResponse(result))

	entity, _ := jid.NewWithString("juliet@capulet.lit/balcony", true)
	require.NotNil(t, x.RecordForEntity(entity))

	x.Reset()
	require.Nil(t, x.RecordForEntity(entity))
}

func TestCapsDedupesInFlightRequests(t *testing.T) {
	x, stm, _ := setupCapsTest(Events{})

	x.ProcessPresence(capsPresence(t, "romeo@montague.lit/orchard", "http://psi-im.org", "sha-1", "1234A"))
	x.ProcessPresence(capsPresence(t, "romeo@montague.lit/garden", "http://psi-im.org", "sha-1", "1234A"))

	require.Equal(t, 1, stm.IQCount())
}
