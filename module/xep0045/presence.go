/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package xep0045

import (
	"strconv"

	"github.com/parley-im/parley/log"
	"github.com/parley-im/parley/xmpp"
	"github.com/parley-im/parley/xmpp/jid"
)

// MUC status codes this module reacts to.
const (
	statusSelfPresence = 110
	statusRoomCreated  = 201
	statusNickChanged  = 303
	statusKicked       = 307
)

// MatchesPresence tells whether a presence stanza belongs to a
// tracked room.
func (x *Muc) MatchesPresence(presence *xmpp.Presence) bool {
	from := presence.FromJID()
	return from != nil && x.rooms[from.ToBareJID().String()] != nil
}

// ProcessPresence applies a room presence to the occupant state
// machine, keyed by the sender nick.
func (x *Muc) ProcessPresence(presence *xmpp.Presence) {
	from := presence.FromJID()
	if from == nil {
		log.Warnf("dropping room presence with no origin")
		return
	}
	room := x.rooms[from.ToBareJID().String()]
	if room == nil {
		return
	}
	nick := from.Resource()

	if presence.Type() == xmpp.ErrorType {
		x.processPresenceError(room, presence)
		return
	}
	userEl := presence.Elements().ChildNamespace("x", mucUserNamespace)
	codes := statusCodes(userEl)
	itemEl := childItem(userEl)
	self := codes[statusSelfPresence] || nick == room.nick

	if presence.IsUnavailable() {
		x.processUnavailable(room, nick, self, codes, itemEl, userEl, presence)
		return
	}
	x.processAvailable(room, nick, self, codes, itemEl, presence)
}

func (x *Muc) processPresenceError(room *Room, presence *xmpp.Presence) {
	errText := xmpp.ErrorText(presence)
	if room.state == Pending {
		delete(x.rooms, room.roomJID.String())
		if x.evts.JoinError != nil {
			x.evts.JoinError(room.roomJID, errText)
		}
		return
	}
	if x.evts.RoomError != nil {
		x.evts.RoomError(room.roomJID, errText)
	}
}

func (x *Muc) processUnavailable(room *Room, nick string, self bool, codes map[int]bool, itemEl, userEl xmpp.XElement, presence *xmpp.Presence) {
	switch {
	case codes[statusNickChanged]:
		newNick := attribute(itemEl, "nick")
		if len(newNick) == 0 {
			log.Warnf("nick change for %s with no new nick", nick)
			return
		}
		occ := room.renameOccupant(nick, newNick)
		occ.Affiliation, occ.Role = mergeItemPrivileges(occ, itemEl)
		if self {
			room.nick = newNick
		}
		if x.evts.NickChanged != nil {
			x.evts.NickChanged(room.roomJID, nick, newNick)
		}

	case codes[statusKicked]:
		actor, reason := actorAndReason(itemEl)
		if self {
			delete(x.rooms, room.roomJID.String())
			if x.evts.Kicked != nil {
				x.evts.Kicked(room.roomJID, actor, reason)
			}
			return
		}
		room.removeOccupant(nick)
		if x.evts.OccupantKicked != nil {
			x.evts.OccupantKicked(room.roomJID, nick, actor, reason)
		}

	case userEl != nil && userEl.Elements().Child("destroy") != nil:
		destroyEl := userEl.Elements().Child("destroy")
		reason := ""
		if reasonEl := destroyEl.Elements().Child("reason"); reasonEl != nil {
			reason = reasonEl.Text()
		}
		delete(x.rooms, room.roomJID.String())
		if x.evts.Destroyed != nil {
			x.evts.Destroyed(room.roomJID, reason)
		}

	default:
		if self {
			delete(x.rooms, room.roomJID.String())
			if x.evts.Left != nil {
				x.evts.Left(room.roomJID)
			}
			return
		}
		occ := room.removeOccupant(nick)
		if occ != nil && x.evts.OccupantLeft != nil {
			x.evts.OccupantLeft(room.roomJID, occ, presence.Status())
		}
	}
}

func (x *Muc) processAvailable(room *Room, nick string, self bool, codes map[int]bool, itemEl xmpp.XElement, presence *xmpp.Presence) {
	occ, created := room.upsertOccupant(nick)
	occ.Affiliation, occ.Role = mergeItemPrivileges(occ, itemEl)
	occ.Presence = presence.ShowState()
	occ.StatusMessage = presence.Status()
	if j := attribute(itemEl, "jid"); len(j) > 0 {
		occ.JID, _ = jid.NewWithString(j, true)
	}

	if self && room.state == Pending {
		room.state = Active
		if codes[statusRoomCreated] {
			room.locked = true
			if x.evts.Created != nil {
				x.evts.Created(room.roomJID, true)
			}
		}
		if x.evts.Joined != nil {
			x.evts.Joined(room.roomJID)
		}
		return
	}
	if created {
		if x.evts.OccupantJoined != nil {
			x.evts.OccupantJoined(room.roomJID, occ)
		}
		return
	}
	if x.evts.OccupantUpdated != nil {
		x.evts.OccupantUpdated(room.roomJID, occ)
	}
}

// mergeItemPrivileges resolves the occupant's affiliation and role
// against an item element, falling back to the previous values when
// the presence omits them.
func mergeItemPrivileges(occ *Occupant, itemEl xmpp.XElement) (affiliation, role string) {
	affiliation = occ.Affiliation
	role = occ.Role
	if a := attribute(itemEl, "affiliation"); len(a) > 0 {
		affiliation = a
	}
	if r := attribute(itemEl, "role"); len(r) > 0 {
		role = r
	}
	if len(affiliation) == 0 {
		affiliation = NoneAffiliation
	}
	if len(role) == 0 {
		role = NoneRole
	}
	return
}

func statusCodes(userEl xmpp.XElement) map[int]bool {
	codes := map[int]bool{}
	if userEl == nil {
		return codes
	}
	for _, child := range userEl.Elements().Children("status") {
		code, err := strconv.Atoi(child.Attributes().Get("code"))
		if err != nil {
			continue
		}
		codes[code] = true
	}
	return codes
}

func childItem(userEl xmpp.XElement) xmpp.XElement {
	if userEl == nil {
		return nil
	}
	return userEl.Elements().Child("item")
}

func attribute(el xmpp.XElement, name string) string {
	if el == nil {
		return ""
	}
	return el.Attributes().Get(name)
}

func actorAndReason(itemEl xmpp.XElement) (actor, reason string) {
	if itemEl == nil {
		return
	}
	if actorEl := itemEl.Elements().Child("actor"); actorEl != nil {
		actor = actorEl.Attributes().Get("nick")
		if len(actor) == 0 {
			actor = actorEl.Attributes().Get("jid")
		}
	}
	if reasonEl := itemEl.Elements().Child("reason"); reasonEl != nil {
		reason = reasonEl.Text()
	}
	return
}
