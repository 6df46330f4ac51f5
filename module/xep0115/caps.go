/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package xep0115

import (
	"context"

	"github.com/pborman/uuid"

	"github.com/parley-im/parley/log"
	capsmodel "github.com/parley-im/parley/model/capsmodel"
	"github.com/parley-im/parley/module/xep0030"
	"github.com/parley-im/parley/storage/repository"
	"github.com/parley-im/parley/stream"
	"github.com/parley-im/parley/xmpp"
	"github.com/parley-im/parley/xmpp/jid"
)

// Namespace represents the entity capabilities namespace.
const Namespace = "http://jabber.org/protocol/caps"

const sha1HashFn = "sha-1"

type capsKey struct {
	node   string
	ver    string
	legacy bool
}

// Events represents the callbacks surfaced by the capabilities module.
// Nil fields are skipped.
type Events struct {
	Resolved func(entity *jid.JID, caps *capsmodel.Capabilities)
}

// EntityCaps represents an entity capabilities cache module.
//
// Hash-verified records are persisted through the capabilities
// repository and survive reconnects; entity bindings and legacy
// node-keyed records are session-scoped and dropped on Reset.
type EntityCaps struct {
	stm   stream.Stream
	disco *xep0030.Disco
	repo  repository.Capabilities
	evts  Events

	bindings map[string]capsKey
	legacy   map[string]*capsmodel.Capabilities
	inFlight map[capsKey]bool
}

// New returns an entity capabilities module instance.
func New(stm stream.Stream, disco *xep0030.Disco, repo repository.Capabilities, evts Events) *EntityCaps {
	if disco != nil {
		disco.RegisterFeature(Namespace)
	}
	return &EntityCaps{
		stm:      stm,
		disco:    disco,
		repo:     repo,
		evts:     evts,
		bindings: make(map[string]capsKey),
		legacy:   make(map[string]*capsmodel.Capabilities),
		inFlight: make(map[capsKey]bool),
	}
}

// ProcessPresence resolves the capabilities advertised by an incoming
// presence, issuing a scoped disco#info request on cache miss.
func (x *EntityCaps) ProcessPresence(presence *xmpp.Presence) {
	caps := presence.Capabilities()
	if caps == nil {
		return
	}
	from := presence.FromJID()

	switch caps.Hash {
	case sha1HashFn:
		x.resolveVerified(from, caps.Node, caps.Ver)
	case "":
		x.resolveLegacy(from, legacyNode(caps))
	default:
		log.Debugf("unsupported caps hash function: %s", caps.Hash)
	}
}

// RecordForEntity returns the capability record currently bound to an
// entity, or nil if none is resolved yet.
func (x *EntityCaps) RecordForEntity(entity *jid.JID) *capsmodel.Capabilities {
	key, ok := x.bindings[entity.String()]
	if !ok {
		return nil
	}
	if key.legacy {
		return x.legacy[key.node]
	}
	caps, err := x.repo.FetchCapabilities(context.Background(), key.node, key.ver)
	if err != nil {
		log.Error(err)
		return nil
	}
	return caps
}

// Reset drops all session-scoped state: entity bindings, legacy records
// and in-flight requests. Hash-verified records are keyed by content
// hash and stay valid across sessions.
func (x *EntityCaps) Reset() {
	x.bindings = make(map[string]capsKey)
	x.legacy = make(map[string]*capsmodel.Capabilities)
	x.inFlight = make(map[capsKey]bool)
}

// Done signals session termination.
func (x *EntityCaps) Done() {
}

func (x *EntityCaps) resolveVerified(from *jid.JID, node, ver string) {
	key := capsKey{node: node, ver: ver}

	caps, err := x.repo.FetchCapabilities(context.Background(), node, ver)
	if err != nil {
		log.Error(err)
		return
	}
	if caps != nil {
		x.bind(from, key, caps)
		return
	}
	if x.inFlight[key] {
		return
	}
	x.inFlight[key] = true
	x.requestDiscoInfo(from, node+"#"+ver, func(result xmpp.Stanza) {
		delete(x.inFlight, key)
		x.handleVerifiedResult(from, key, result)
	})
}

func (x *EntityCaps) handleVerifiedResult(from *jid.JID, key capsKey, result xmpp.Stanza) {
	if result == nil || result.IsError() {
		log.Infof("caps disco request failed... entity: %s", from.String())
		return
	}
	identities, features := xep0030.InfoFromElement(result)
	forms := formsFromElement(result)

	if computed := ComputeVer(identities, features, forms); computed != key.ver {
		// trust failure: the peer asserted a hash its identity/feature
		// set does not produce, so the record is not cached
		log.Warnf("caps verification mismatch... entity: %s, asserted: %s, computed: %s",
			from.String(), key.ver, computed)
		return
	}
	caps := &capsmodel.Capabilities{
		Node:       key.node,
		Ver:        key.ver,
		Identities: identities,
		Features:   features,
	}
	if err := x.repo.UpsertCapabilities(context.Background(), caps); err != nil {
		log.Error(err)
		return
	}
	x.bind(from, key, caps)
}

func (x *EntityCaps) resolveLegacy(from *jid.JID, node string) {
	if caps := x.legacy[node]; caps != nil {
		x.bind(from, capsKey{node: node, legacy: true}, caps)
		return
	}
	key := capsKey{node: node, legacy: true}
	if x.inFlight[key] {
		return
	}
	x.inFlight[key] = true
	x.requestDiscoInfo(from, node, func(result xmpp.Stanza) {
		delete(x.inFlight, key)
		x.handleLegacyResult(from, node, result)
	})
}

func (x *EntityCaps) handleLegacyResult(from *jid.JID, node string, result xmpp.Stanza) {
	if result == nil || result.IsError() {
		log.Infof("legacy caps disco request failed... entity: %s", from.String())
		return
	}
	identities, features := xep0030.InfoFromElement(result)

	// legacy records trust node string equality and skip hash
	// verification, so they never satisfy a hash-verified lookup
	caps := &capsmodel.Capabilities{
		Node:       node,
		Identities: identities,
		Features:   features,
	}
	x.legacy[node] = caps
	x.bind(from, capsKey{node: node, legacy: true}, caps)
}

func (x *EntityCaps) bind(entity *jid.JID, key capsKey, caps *capsmodel.Capabilities) {
	x.bindings[entity.String()] = key
	if x.evts.Resolved != nil {
		x.evts.Resolved(entity, caps)
	}
}

func (x *EntityCaps) requestDiscoInfo(to *jid.JID, node string, hnd func(result xmpp.Stanza)) {
	iq := xmpp.NewIQType(uuid.New(), xmpp.GetType)
	iq.SetFromJID(x.stm.JID())
	iq.SetToJID(to)
	query := xmpp.NewElementNamespace("query", xep0030.InfoNamespace)
	query.SetAttribute("node", node)
	iq.AppendElement(query)

	x.stm.SendIQ(iq, func(result xmpp.Stanza) stream.ContinuePolicy {
		hnd(result)
		return stream.Remove
	})
}

// SelfVer computes the client's own verification hash from its disco
// identity and feature set.
func (x *EntityCaps) SelfVer() string {
	return ComputeVer(x.disco.Identities(), x.disco.Features(), nil)
}

// PresenceCapsElement builds the <c/> element the client attaches to
// its outgoing available presences.
func (x *EntityCaps) PresenceCapsElement(node string) xmpp.XElement {
	c := xmpp.NewElementNamespace("c", Namespace)
	c.SetAttribute("node", node)
	c.SetAttribute("hash", sha1HashFn)
	c.SetAttribute("ver", x.SelfVer())
	return c
}

func legacyNode(caps *xmpp.Capabilities) string {
	if len(caps.Ver) > 0 {
		return caps.Node + "#" + caps.Ver
	}
	return caps.Node
}
