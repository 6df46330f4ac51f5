/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package xep0030

import (
	"github.com/pborman/uuid"

	"github.com/parley-im/parley/log"
	capsmodel "github.com/parley-im/parley/model/capsmodel"
	"github.com/parley-im/parley/stream"
	"github.com/parley-im/parley/version"
	"github.com/parley-im/parley/xmpp"
	"github.com/parley-im/parley/xmpp/jid"
)

const (
	// InfoNamespace represents the disco#info namespace.
	InfoNamespace = "http://jabber.org/protocol/disco#info"

	// ItemsNamespace represents the disco#items namespace.
	ItemsNamespace = "http://jabber.org/protocol/disco#items"
)

// Item represents a service discovery item.
type Item struct {
	Jid  string
	Name string
	Node string
}

// Events represents the callbacks surfaced by the disco module.
// Nil fields are skipped.
type Events struct {
	Info       func(from *jid.JID, node string, identities []capsmodel.Identity, features []string)
	InfoError  func(from *jid.JID, errText string)
	Items      func(from *jid.JID, node string, items []Item)
	ItemsError func(from *jid.JID, errText string)
}

// Disco represents a service discovery module.
type Disco struct {
	stm        stream.Stream
	evts       Events
	identities []capsmodel.Identity
	features   []string
}

// New returns a disco module instance.
func New(stm stream.Stream, evts Events) *Disco {
	return &Disco{
		stm:  stm,
		evts: evts,
		identities: []capsmodel.Identity{
			{Category: "client", Type: "console", Name: version.ApplicationName},
		},
		features: []string{InfoNamespace, ItemsNamespace},
	}
}

// RegisterFeature adds a namespace to the feature set the client advertises.
func (x *Disco) RegisterFeature(namespace string) {
	for _, f := range x.features {
		if f == namespace {
			return
		}
	}
	x.features = append(x.features, namespace)
}

// Identities returns the client's own advertised identities.
func (x *Disco) Identities() []capsmodel.Identity {
	return x.identities
}

// Features returns the client's own advertised feature set.
func (x *Disco) Features() []string {
	return x.features
}

// RequestInfo sends a disco#info request, optionally scoped by node.
func (x *Disco) RequestInfo(to *jid.JID, node string) {
	iq := xmpp.NewIQType(uuid.New(), xmpp.GetType)
	iq.SetFromJID(x.stm.JID())
	iq.SetToJID(to)
	query := xmpp.NewElementNamespace("query", InfoNamespace)
	if len(node) > 0 {
		query.SetAttribute("node", node)
	}
	iq.AppendElement(query)

	x.stm.SendIQ(iq, func(result xmpp.Stanza) stream.ContinuePolicy {
		x.handleInfoResult(result, node)
		return stream.Remove
	})
}

// RequestItems sends a disco#items request, optionally scoped by node.
func (x *Disco) RequestItems(to *jid.JID, node string) {
	iq := xmpp.NewIQType(uuid.New(), xmpp.GetType)
	iq.SetFromJID(x.stm.JID())
	iq.SetToJID(to)
	query := xmpp.NewElementNamespace("query", ItemsNamespace)
	if len(node) > 0 {
		query.SetAttribute("node", node)
	}
	iq.AppendElement(query)

	x.stm.SendIQ(iq, func(result xmpp.Stanza) stream.ContinuePolicy {
		x.handleItemsResult(result, node)
		return stream.Remove
	})
}

// MatchesIQ returns whether or not an IQ should be processed by the disco module.
func (x *Disco) MatchesIQ(iq *xmpp.IQ) bool {
	q := iq.Elements().Child("query")
	if q == nil {
		return false
	}
	switch q.Namespace() {
	case InfoNamespace, ItemsNamespace:
		return iq.IsGet()
	}
	return false
}

// ProcessIQ answers an incoming disco request with the client's own
// identity and feature set.
func (x *Disco) ProcessIQ(iq *xmpp.IQ) {
	q := iq.Elements().Child("query")
	switch q.Namespace() {
	case InfoNamespace:
		x.sendInfoResult(iq, q.Attributes().Get("node"))
	case ItemsNamespace:
		x.sendItemsResult(iq, q.Attributes().Get("node"))
	}
}

// Done signals session termination.
func (x *Disco) Done() {
}

func (x *Disco) sendInfoResult(iq *xmpp.IQ, node string) {
	result := iq.ResultIQ()
	query := xmpp.NewElementNamespace("query", InfoNamespace)
	if len(node) > 0 {
		query.SetAttribute("node", node)
	}
	for _, identity := range x.identities {
		identityEl := xmpp.NewElementName("identity")
		identityEl.SetAttribute("category", identity.Category)
		identityEl.SetAttribute("type", identity.Type)
		if len(identity.Name) > 0 {
			identityEl.SetAttribute("name", identity.Name)
		}
		query.AppendElement(identityEl)
	}
	for _, feature := range x.features {
		featureEl := xmpp.NewElementName("feature")
		featureEl.SetAttribute("var", feature)
		query.AppendElement(featureEl)
	}
	result.AppendElement(query)
	x.stm.SendElement(result)
}

func (x *Disco) sendItemsResult(iq *xmpp.IQ, node string) {
	result := iq.ResultIQ()
	query := xmpp.NewElementNamespace("query", ItemsNamespace)
	if len(node) > 0 {
		query.SetAttribute("node", node)
	}
	result.AppendElement(query)
	x.stm.SendElement(result)
}

func (x *Disco) handleInfoResult(result xmpp.Stanza, node string) {
	if result == nil {
		return
	}
	if result.IsError() {
		log.Infof("disco info request failed... from: %s", result.From())
		if x.evts.InfoError != nil {
			x.evts.InfoError(result.FromJID(), xmpp.ErrorText(result))
		}
		return
	}
	identities, features := InfoFromElement(result)
	if x.evts.Info != nil {
		x.evts.Info(result.FromJID(), node, identities, features)
	}
}

func (x *Disco) handleItemsResult(result xmpp.Stanza, node string) {
	if result == nil {
		return
	}
	if result.IsError() {
		if x.evts.ItemsError != nil {
			x.evts.ItemsError(result.FromJID(), xmpp.ErrorText(result))
		}
		return
	}
	items := ItemsFromElement(result)
	if x.evts.Items != nil {
		x.evts.Items(result.FromJID(), node, items)
	}
}

// InfoFromElement extracts identities and features out of a disco#info result.
func InfoFromElement(elem xmpp.XElement) ([]capsmodel.Identity, []string) {
	q := elem.Elements().ChildNamespace("query", InfoNamespace)
	if q == nil {
		return nil, nil
	}
	var identities []capsmodel.Identity
	var features []string

	for _, identityEl := range q.Elements().Children("identity") {
		identities = append(identities, capsmodel.Identity{
			Category: identityEl.Attributes().Get("category"),
			Type:     identityEl.Attributes().Get("type"),
			Name:     identityEl.Attributes().Get("name"),
		})
	}
	for _, featureEl := range q.Elements().Children("feature") {
		if v := featureEl.Attributes().Get("var"); len(v) > 0 {
			features = append(features, v)
		}
	}
	return identities, features
}

// ItemsFromElement extracts items out of a disco#items result.
func ItemsFromElement(elem xmpp.XElement) []Item {
	q := elem.Elements().ChildNamespace("query", ItemsNamespace)
	if q == nil {
		return nil
	}
	var items []Item
	for _, itemEl := range q.Elements().Children("item") {
		items = append(items, Item{
			Jid:  itemEl.Attributes().Get("jid"),
			Name: itemEl.Attributes().Get("name"),
			Node: itemEl.Attributes().Get("node"),
		})
	}
	return items
}
