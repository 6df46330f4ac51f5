/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package session

import (
	"time"

	"github.com/pborman/uuid"

	"github.com/parley-im/parley/log"
	"github.com/parley-im/parley/module/xep0045"
	"github.com/parley-im/parley/xmpp"
	"github.com/parley-im/parley/xmpp/jid"
)

// Intent methods are the collaborator-facing entry points. Each one
// hops onto the session run queue, so they are safe to call from any
// goroutine and never race stanza processing.

// SendMessage sends a one-to-one chat message. The body is taken as
// an opaque string, so pre-encrypted payloads pass through untouched.
// A chat state is attached only when both the global preference and
// the contact session allow it.
func (s *Session) SendMessage(toBareJID, body string) {
	s.runQueue.Run(func() {
		to, err := s.chatStates.TargetJID(toBareJID)
		if err != nil {
			log.Warnf("invalid message target %s: %v", toBareJID, err)
			return
		}
		msg := xmpp.NewMessageType(uuid.New(), xmpp.ChatType)
		msg.SetFromJID(s.jd)
		msg.SetToJID(to)
		bodyEl := xmpp.NewElementName("body")
		bodyEl.SetText(body)
		msg.AppendElement(bodyEl)
		if s.chatStates.ShouldAttachState(toBareJID) {
			msg.SetChatState(xmpp.ActiveChatState)
			s.chatStates.NoteOutgoingState(toBareJID, xmpp.ActiveChatState)
		}
		s.writeElement(msg)
	})
}

// SendChatState sends a bare chat state notification to a contact,
// subject to the same gating as message-attached states.
func (s *Session) SendChatState(toBareJID string, state xmpp.ChatState) {
	s.runQueue.Run(func() {
		if !s.chatStates.ShouldAttachState(toBareJID) {
			return
		}
		to, err := s.chatStates.TargetJID(toBareJID)
		if err != nil {
			log.Warnf("invalid chat state target %s: %v", toBareJID, err)
			return
		}
		msg := xmpp.NewMessageType(uuid.New(), xmpp.ChatType)
		msg.SetFromJID(s.jd)
		msg.SetToJID(to)
		msg.SetChatState(state)
		s.chatStates.NoteOutgoingState(toBareJID, state)
		s.writeElement(msg)
	})
}

// SetResourceOverride pins outgoing stanzas for a contact to one of
// its resources.
func (s *Session) SetResourceOverride(bareJID, resource string) {
	s.runQueue.Run(func() { s.chatStates.SetResourceOverride(bareJID, resource) })
}

// ClearChatSession drops the tracked conversation state for a contact.
func (s *Session) ClearChatSession(bareJID string) {
	s.runQueue.Run(func() { s.chatStates.Clear(bareJID) })
}

// JoinRoom joins a multi-user chat room under a nick.
func (s *Session) JoinRoom(roomJID *jid.JID, nick, password string) {
	s.runQueue.Run(func() { s.muc.Join(roomJID, nick, password) })
}

// LeaveRoom leaves a joined room.
func (s *Session) LeaveRoom(roomJID *jid.JID) {
	s.runQueue.Run(func() { s.muc.Leave(roomJID) })
}

// SendRoomMessage sends a groupchat message to an active room.
func (s *Session) SendRoomMessage(roomJID *jid.JID, body string) {
	s.runQueue.Run(func() { s.reportRoomErr(roomJID, s.muc.SendGroupMessage(roomJID, body)) })
}

// SendRoomSubject publishes a new room subject.
func (s *Session) SendRoomSubject(roomJID *jid.JID, subject string) {
	s.runQueue.Run(func() { s.reportRoomErr(roomJID, s.muc.SendSubject(roomJID, subject)) })
}

// SendPrivateMessage sends a chat message to a single room occupant.
func (s *Session) SendPrivateMessage(roomJID *jid.JID, nick, body string) {
	s.runQueue.Run(func() { s.reportRoomErr(roomJID, s.muc.SendPrivateMessage(roomJID, nick, body)) })
}

// SendMediatedInvite asks a room to relay an invitation.
func (s *Session) SendMediatedInvite(roomJID, to *jid.JID, reason string) {
	s.runQueue.Run(func() { s.muc.SendMediatedInvite(roomJID, to, reason) })
}

// SendDirectInvite invites a contact to a room directly.
func (s *Session) SendDirectInvite(roomJID, to *jid.JID, reason, password string) {
	s.runQueue.Run(func() { s.muc.SendDirectInvite(roomJID, to, reason, password) })
}

// RequestRoomConfig fetches a room's configuration form.
func (s *Session) RequestRoomConfig(roomJID *jid.JID) {
	s.runQueue.Run(func() { s.reportRoomErr(roomJID, s.muc.RequestRoomConfig(roomJID)) })
}

// SubmitRoomConfig submits the pending room configuration form.
func (s *Session) SubmitRoomConfig(roomJID *jid.JID) {
	s.runQueue.Run(func() { s.reportRoomErr(roomJID, s.muc.SubmitRoomConfig(roomJID)) })
}

// CancelRoomConfig discards the pending room configuration form.
func (s *Session) CancelRoomConfig(roomJID *jid.JID) {
	s.runQueue.Run(func() { s.reportRoomErr(roomJID, s.muc.CancelRoomConfig(roomJID)) })
}

// AcceptInstantRoom accepts the default configuration of a freshly
// created room.
func (s *Session) AcceptInstantRoom(roomJID *jid.JID) {
	s.runQueue.Run(func() { s.reportRoomErr(roomJID, s.muc.AcceptInstantRoom(roomJID)) })
}

// DestroyRoom asks the service to destroy a room.
func (s *Session) DestroyRoom(roomJID *jid.JID, reason string) {
	s.runQueue.Run(func() { s.reportRoomErr(roomJID, s.muc.DestroyRoom(roomJID, reason)) })
}

// SetAffiliation grants a room affiliation to a user.
func (s *Session) SetAffiliation(roomJID *jid.JID, targetJID, affiliation, reason string) {
	s.runQueue.Run(func() { s.reportRoomErr(roomJID, s.muc.SetAffiliation(roomJID, targetJID, affiliation, reason)) })
}

// SetRole grants a room role to an occupant.
func (s *Session) SetRole(roomJID *jid.JID, nick, role, reason string) {
	s.runQueue.Run(func() { s.reportRoomErr(roomJID, s.muc.SetRole(roomJID, nick, role, reason)) })
}

// KickOccupant removes an occupant from a room.
func (s *Session) KickOccupant(roomJID *jid.JID, nick, reason string) {
	s.runQueue.Run(func() { s.reportRoomErr(roomJID, s.muc.Kick(roomJID, nick, reason)) })
}

// RequestAffiliationList fetches a room's affiliation list.
func (s *Session) RequestAffiliationList(roomJID *jid.JID, affiliation string) {
	s.runQueue.Run(func() { s.reportRoomErr(roomJID, s.muc.RequestAffiliationList(roomJID, affiliation)) })
}

// RequestRoleList fetches a room's role list.
func (s *Session) RequestRoleList(roomJID *jid.JID, role string) {
	s.runQueue.Run(func() { s.reportRoomErr(roomJID, s.muc.RequestRoleList(roomJID, role)) })
}

// RequestRoomList queries a conference service for its public rooms.
func (s *Session) RequestRoomList(service *jid.JID) {
	s.runQueue.Run(func() { s.muc.RequestRoomList(service) })
}

// RequestRoomInfo queries a room for its identities and features.
func (s *Session) RequestRoomInfo(roomJID *jid.JID) {
	s.runQueue.Run(func() { s.muc.RequestRoomInfo(roomJID) })
}

// Room returns the tracked room under a bare JID. The returned value
// must only be inspected from event callbacks.
func (s *Session) Room(roomBareJID string) *xep0045.Room {
	return s.muc.Room(roomBareJID)
}

// RequestDiscoInfo requests service discovery information.
func (s *Session) RequestDiscoInfo(to *jid.JID, node string) {
	s.runQueue.Run(func() { s.disco.RequestInfo(to, node) })
}

// RequestDiscoItems requests service discovery items.
func (s *Session) RequestDiscoItems(to *jid.JID, node string) {
	s.runQueue.Run(func() { s.disco.RequestItems(to, node) })
}

// RequestSoftwareVersion queries an entity for its software version.
func (s *Session) RequestSoftwareVersion(to *jid.JID) {
	s.runQueue.Run(func() { s.ver.RequestVersion(to) })
}

// SendPing sends a manual ping reporting round-trip latency.
func (s *Session) SendPing(to *jid.JID) {
	s.runQueue.Run(func() { s.ping.SendPing(to) })
}

// SetAutopingInterval reschedules the autoping loop. A zero interval
// disables it.
func (s *Session) SetAutopingInterval(interval time.Duration) {
	s.runQueue.Run(func() { s.ping.SetAutopingInterval(interval) })
}

// EnableCarbons asks the server to start carbon copying messages.
func (s *Session) EnableCarbons() {
	s.runQueue.Run(func() { s.carbons.Enable() })
}

// DisableCarbons asks the server to stop carbon copying messages.
func (s *Session) DisableCarbons() {
	s.runQueue.Run(func() { s.carbons.Disable() })
}

func (s *Session) reportRoomErr(roomJID *jid.JID, err error) {
	if err == nil {
		return
	}
	log.Warnf("%v", err)
	if s.evts.RoomError != nil {
		s.evts.RoomError(roomJID.ToBareJID(), err.Error())
	}
}
