/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package xep0045

import (
	"github.com/pborman/uuid"
	"github.com/pkg/errors"

	"github.com/parley-im/parley/stream"
	"github.com/parley-im/parley/xmpp"
	"github.com/parley-im/parley/xmpp/jid"
)

// SetAffiliation grants an affiliation to a user, addressed by bare
// JID. Errors are reported naming the target and the requested
// privilege.
func (x *Muc) SetAffiliation(roomJID *jid.JID, targetJID, affiliation, reason string) error {
	item := xmpp.NewElementName("item")
	item.SetAttribute("jid", targetJID)
	item.SetAttribute("affiliation", affiliation)
	return x.sendAdminSet(roomJID, item, reason, targetJID, affiliation, func(bare *jid.JID) {
		if x.evts.AffiliationChanged != nil {
			x.evts.AffiliationChanged(bare, targetJID, affiliation)
		}
	})
}

// SetRole grants a role to an occupant, addressed by nick.
func (x *Muc) SetRole(roomJID *jid.JID, nick, role, reason string) error {
	item := xmpp.NewElementName("item")
	item.SetAttribute("nick", nick)
	item.SetAttribute("role", role)
	return x.sendAdminSet(roomJID, item, reason, nick, role, func(bare *jid.JID) {
		if x.evts.RoleChanged != nil {
			x.evts.RoleChanged(bare, nick, role)
		}
	})
}

// Kick removes an occupant from the room by revoking its role.
func (x *Muc) Kick(roomJID *jid.JID, nick, reason string) error {
	item := xmpp.NewElementName("item")
	item.SetAttribute("nick", nick)
	item.SetAttribute("role", NoneRole)
	return x.sendAdminSet(roomJID, item, reason, nick, "kick", func(bare *jid.JID) {
		if x.evts.KickResult != nil {
			x.evts.KickResult(bare, nick)
		}
	})
}

func (x *Muc) sendAdminSet(roomJID *jid.JID, item *xmpp.Element, reason, target, privilege string, onResult func(bare *jid.JID)) error {
	bare := roomJID.ToBareJID()
	if x.rooms[bare.String()] == nil {
		return errors.Errorf("xep0045: room %s is not tracked", bare)
	}
	if len(reason) > 0 {
		reasonEl := xmpp.NewElementName("reason")
		reasonEl.SetText(reason)
		item.AppendElement(reasonEl)
	}
	iq := xmpp.NewIQType(uuid.New(), xmpp.SetType)
	iq.SetFromJID(x.stm.JID())
	iq.SetToJID(bare)
	q := xmpp.NewElementNamespace("query", mucAdminNamespace)
	q.AppendElement(item)
	iq.AppendElement(q)

	x.stm.SendIQ(iq, func(result xmpp.Stanza) stream.ContinuePolicy {
		switch {
		case result == nil:
		case result.IsError():
			if x.evts.AdminError != nil {
				x.evts.AdminError(bare, target, privilege, xmpp.ErrorText(result))
			}
		default:
			onResult(bare)
		}
		return stream.Remove
	})
	return nil
}

// RequestAffiliationList fetches all users holding an affiliation.
func (x *Muc) RequestAffiliationList(roomJID *jid.JID, affiliation string) error {
	item := xmpp.NewElementName("item")
	item.SetAttribute("affiliation", affiliation)
	return x.sendAdminGet(roomJID, item, affiliation, func(bare *jid.JID, items []AdminItem) {
		if x.evts.AffiliationList != nil {
			x.evts.AffiliationList(bare, affiliation, items)
		}
	})
}

// RequestRoleList fetches all occupants holding a role.
func (x *Muc) RequestRoleList(roomJID *jid.JID, role string) error {
	item := xmpp.NewElementName("item")
	item.SetAttribute("role", role)
	return x.sendAdminGet(roomJID, item, role, func(bare *jid.JID, items []AdminItem) {
		if x.evts.RoleList != nil {
			x.evts.RoleList(bare, role, items)
		}
	})
}

func (x *Muc) sendAdminGet(roomJID *jid.JID, item *xmpp.Element, privilege string, onResult func(bare *jid.JID, items []AdminItem)) error {
	bare := roomJID.ToBareJID()
	if x.rooms[bare.String()] == nil {
		return errors.Errorf("xep0045: room %s is not tracked", bare)
	}
	iq := xmpp.NewIQType(uuid.New(), xmpp.GetType)
	iq.SetFromJID(x.stm.JID())
	iq.SetToJID(bare)
	q := xmpp.NewElementNamespace("query", mucAdminNamespace)
	q.AppendElement(item)
	iq.AppendElement(q)

	x.stm.SendIQ(iq, func(result xmpp.Stanza) stream.ContinuePolicy {
		switch {
		case result == nil:
		case result.IsError():
			if x.evts.AdminError != nil {
				x.evts.AdminError(bare, privilege, "list", xmpp.ErrorText(result))
			}
		default:
			onResult(bare, adminItemsFromResult(result))
		}
		return stream.Remove
	})
	return nil
}

func adminItemsFromResult(result xmpp.Stanza) []AdminItem {
	q := result.Elements().ChildNamespace("query", mucAdminNamespace)
	if q == nil {
		return nil
	}
	var items []AdminItem
	for _, itemEl := range q.Elements().Children("item") {
		item := AdminItem{
			JID:         itemEl.Attributes().Get("jid"),
			Nick:        itemEl.Attributes().Get("nick"),
			Affiliation: itemEl.Attributes().Get("affiliation"),
			Role:        itemEl.Attributes().Get("role"),
		}
		if reasonEl := itemEl.Elements().Child("reason"); reasonEl != nil {
			item.Reason = reasonEl.Text()
		}
		items = append(items, item)
	}
	return items
}
