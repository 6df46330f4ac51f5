/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package xep0045

import (
	"time"

	"github.com/pborman/uuid"
	"github.com/pkg/errors"

	"github.com/parley-im/parley/model/capsmodel"
	"github.com/parley-im/parley/module/xep0004"
	"github.com/parley-im/parley/module/xep0030"
	"github.com/parley-im/parley/stream"
	"github.com/parley-im/parley/xmpp"
	"github.com/parley-im/parley/xmpp/jid"
)

const (
	mucNamespace        = "http://jabber.org/protocol/muc"
	mucUserNamespace    = "http://jabber.org/protocol/muc#user"
	mucAdminNamespace   = "http://jabber.org/protocol/muc#admin"
	mucOwnerNamespace   = "http://jabber.org/protocol/muc#owner"
	conferenceNamespace = "jabber:x:conference"
	captchaNamespace    = "urn:xmpp:captcha"
)

// AdminItem represents one entry of an affiliation or role list.
type AdminItem struct {
	JID         string
	Nick        string
	Affiliation string
	Role        string
	Reason      string
}

// Events represents the callbacks surfaced by the MUC module.
// Nil fields are skipped.
type Events struct {
	Joined    func(roomJID *jid.JID)
	JoinError func(roomJID *jid.JID, errText string)
	Left      func(roomJID *jid.JID)
	Created   func(roomJID *jid.JID, requiresConfig bool)
	Kicked    func(roomJID *jid.JID, actor, reason string)
	Destroyed func(roomJID *jid.JID, reason string)
	RoomError func(roomJID *jid.JID, errText string)

	OccupantJoined  func(roomJID *jid.JID, occupant *Occupant)
	OccupantUpdated func(roomJID *jid.JID, occupant *Occupant)
	OccupantLeft    func(roomJID *jid.JID, occupant *Occupant, reason string)
	OccupantKicked  func(roomJID *jid.JID, nick, actor, reason string)
	NickChanged     func(roomJID *jid.JID, oldNick, newNick string)

	SubjectChanged        func(roomJID *jid.JID, nick, subject string)
	Message               func(roomJID *jid.JID, nick, body string)
	History               func(roomJID *jid.JID, nick, body string, stamp time.Time)
	Broadcast             func(roomJID *jid.JID, body string)
	PrivateMessage        func(roomJID *jid.JID, nick, body string)
	DelayedPrivateMessage func(roomJID *jid.JID, nick, body string, stamp time.Time)
	Invite                func(roomJID *jid.JID, from *jid.JID, reason, password string, direct bool)

	ConfigForm   func(roomJID *jid.JID, form *xep0004.DataForm)
	ConfigResult func(roomJID *jid.JID)
	ConfigError  func(roomJID *jid.JID, errText string)

	AffiliationChanged func(roomJID *jid.JID, target, affiliation string)
	RoleChanged        func(roomJID *jid.JID, nick, role string)
	KickResult         func(roomJID *jid.JID, nick string)
	AdminError         func(roomJID *jid.JID, target, privilege, errText string)
	AffiliationList    func(roomJID *jid.JID, affiliation string, items []AdminItem)
	RoleList           func(roomJID *jid.JID, role string, items []AdminItem)

	RoomList      func(service *jid.JID, items []xep0030.Item)
	RoomListError func(service *jid.JID, errText string)
	RoomInfo      func(roomJID *jid.JID, identities []capsmodel.Identity, features []string)
}

// Muc represents a multi-user chat module (XEP-0045). It drives the
// room/occupant state machine from presence and message traffic and
// issues the admin, owner and discovery queries a room client needs.
type Muc struct {
	stm   stream.Stream
	evts  Events
	rooms map[string]*Room
}

// New returns a MUC module instance.
func New(disco *xep0030.Disco, stm stream.Stream, evts Events) *Muc {
	m := &Muc{
		stm:   stm,
		evts:  evts,
		rooms: map[string]*Room{},
	}
	if disco != nil {
		disco.RegisterFeature(mucNamespace)
		disco.RegisterFeature(conferenceNamespace)
	}
	return m
}

// Room returns the room tracked under a bare JID, or nil.
func (x *Muc) Room(roomBareJID string) *Room {
	return x.rooms[roomBareJID]
}

// IsRoomJID tells whether a bare JID belongs to a tracked room.
func (x *Muc) IsRoomJID(bareJID string) bool {
	return x.rooms[bareJID] != nil
}

// IsActiveRoom tells whether a bare JID belongs to a joined room.
func (x *Muc) IsActiveRoom(bareJID string) bool {
	r := x.rooms[bareJID]
	return r != nil && r.state == Active
}

// Rooms returns every tracked room.
func (x *Muc) Rooms() []*Room {
	ret := make([]*Room, 0, len(x.rooms))
	for _, r := range x.rooms {
		ret = append(ret, r)
	}
	return ret
}

// Join sends a join presence for a room. It is a no-op if a join is
// already pending or the room is active.
func (x *Muc) Join(roomJID *jid.JID, nick, password string) {
	bare := roomJID.ToBareJID()
	if r := x.rooms[bare.String()]; r != nil && r.state != Absent {
		return
	}
	room := newRoom(bare, nick, password)
	room.state = Pending
	x.rooms[bare.String()] = room

	occupantJID, _ := jid.New(bare.Node(), bare.Domain(), nick, true)
	presence := xmpp.NewPresence(x.stm.JID(), occupantJID, xmpp.AvailableType)
	mucEl := xmpp.NewElementNamespace("x", mucNamespace)
	if len(password) > 0 {
		pwd := xmpp.NewElementName("password")
		pwd.SetText(password)
		mucEl.AppendElement(pwd)
	}
	presence.AppendElement(mucEl)
	x.stm.SendElement(presence)
}

// Leave sends an unavailable presence for a room and drops its state.
func (x *Muc) Leave(roomJID *jid.JID) {
	bare := roomJID.ToBareJID()
	room := x.rooms[bare.String()]
	if room == nil {
		return
	}
	occupantJID, _ := jid.New(bare.Node(), bare.Domain(), room.nick, true)
	x.stm.SendElement(xmpp.NewPresence(x.stm.JID(), occupantJID, xmpp.UnavailableType))
	delete(x.rooms, bare.String())
	if x.evts.Left != nil {
		x.evts.Left(bare)
	}
}

// SendGroupMessage sends a groupchat message to an active room.
func (x *Muc) SendGroupMessage(roomJID *jid.JID, body string) error {
	bare := roomJID.ToBareJID()
	room := x.rooms[bare.String()]
	if room == nil || room.state != Active {
		return errors.Errorf("xep0045: room %s is not joined", bare)
	}
	msg := xmpp.NewMessageType(uuid.New(), xmpp.GroupChatType)
	msg.SetFromJID(x.stm.JID())
	msg.SetToJID(bare)
	bodyEl := xmpp.NewElementName("body")
	bodyEl.SetText(body)
	msg.AppendElement(bodyEl)
	x.stm.SendElement(msg)
	return nil
}

// SendSubject publishes a new room subject.
func (x *Muc) SendSubject(roomJID *jid.JID, subject string) error {
	bare := roomJID.ToBareJID()
	room := x.rooms[bare.String()]
	if room == nil || room.state != Active {
		return errors.Errorf("xep0045: room %s is not joined", bare)
	}
	msg := xmpp.NewMessageType(uuid.New(), xmpp.GroupChatType)
	msg.SetFromJID(x.stm.JID())
	msg.SetToJID(bare)
	subjEl := xmpp.NewElementName("subject")
	subjEl.SetText(subject)
	msg.AppendElement(subjEl)
	x.stm.SendElement(msg)
	return nil
}

// SendPrivateMessage sends a chat message to a single room occupant.
func (x *Muc) SendPrivateMessage(roomJID *jid.JID, nick, body string) error {
	bare := roomJID.ToBareJID()
	room := x.rooms[bare.String()]
	if room == nil || room.state != Active {
		return errors.Errorf("xep0045: room %s is not joined", bare)
	}
	to, err := jid.New(bare.Node(), bare.Domain(), nick, true)
	if err != nil {
		return err
	}
	msg := xmpp.NewMessageType(uuid.New(), xmpp.ChatType)
	msg.SetFromJID(x.stm.JID())
	msg.SetToJID(to)
	bodyEl := xmpp.NewElementName("body")
	bodyEl.SetText(body)
	msg.AppendElement(bodyEl)
	x.stm.SendElement(msg)
	return nil
}

// SendMediatedInvite asks the room to relay an invitation (XEP-0045 §7.8).
func (x *Muc) SendMediatedInvite(roomJID *jid.JID, to *jid.JID, reason string) {
	msg := xmpp.NewMessageType(uuid.New(), "")
	msg.SetFromJID(x.stm.JID())
	msg.SetToJID(roomJID.ToBareJID())

	invite := xmpp.NewElementName("invite")
	invite.SetAttribute("to", to.String())
	if len(reason) > 0 {
		reasonEl := xmpp.NewElementName("reason")
		reasonEl.SetText(reason)
		invite.AppendElement(reasonEl)
	}
	userEl := xmpp.NewElementNamespace("x", mucUserNamespace)
	userEl.AppendElement(invite)
	msg.AppendElement(userEl)
	x.stm.SendElement(msg)
}

// SendDirectInvite invites a contact directly (XEP-0249).
func (x *Muc) SendDirectInvite(roomJID *jid.JID, to *jid.JID, reason, password string) {
	msg := xmpp.NewMessageType(uuid.New(), "")
	msg.SetFromJID(x.stm.JID())
	msg.SetToJID(to)

	conf := xmpp.NewElementNamespace("x", conferenceNamespace)
	conf.SetAttribute("jid", roomJID.ToBareJID().String())
	if len(reason) > 0 {
		conf.SetAttribute("reason", reason)
	}
	if len(password) > 0 {
		conf.SetAttribute("password", password)
	}
	msg.AppendElement(conf)
	x.stm.SendElement(msg)
}

// RequestRoomList queries a conference service for its public rooms.
func (x *Muc) RequestRoomList(service *jid.JID) {
	iq := xmpp.NewIQType(uuid.New(), xmpp.GetType)
	iq.SetFromJID(x.stm.JID())
	iq.SetToJID(service)
	iq.AppendElement(xmpp.NewElementNamespace("query", xep0030.ItemsNamespace))

	x.stm.SendIQ(iq, func(result xmpp.Stanza) stream.ContinuePolicy {
		switch {
		case result == nil:
		case result.IsError():
			if x.evts.RoomListError != nil {
				x.evts.RoomListError(service, xmpp.ErrorText(result))
			}
		default:
			if x.evts.RoomList != nil {
				x.evts.RoomList(service, xep0030.ItemsFromElement(result))
			}
		}
		return stream.Remove
	})
}

// RequestRoomInfo queries a room for its identities and features.
func (x *Muc) RequestRoomInfo(roomJID *jid.JID) {
	bare := roomJID.ToBareJID()
	iq := xmpp.NewIQType(uuid.New(), xmpp.GetType)
	iq.SetFromJID(x.stm.JID())
	iq.SetToJID(bare)
	iq.AppendElement(xmpp.NewElementNamespace("query", xep0030.InfoNamespace))

	x.stm.SendIQ(iq, func(result xmpp.Stanza) stream.ContinuePolicy {
		switch {
		case result == nil:
		case result.IsError():
			if x.evts.RoomError != nil {
				x.evts.RoomError(bare, xmpp.ErrorText(result))
			}
		default:
			if x.evts.RoomInfo != nil {
				identities, features := xep0030.InfoFromElement(result)
				x.evts.RoomInfo(bare, identities, features)
			}
		}
		return stream.Remove
	})
}

// Reset drops every room and occupant. Called at disconnect.
func (x *Muc) Reset() {
	x.rooms = map[string]*Room{}
}

// Done signals session termination.
func (x *Muc) Done() {
	x.Reset()
}
