/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package session

import (
	"time"

	"github.com/parley-im/parley/model/capsmodel"
	"github.com/parley-im/parley/module/xep0004"
	"github.com/parley-im/parley/module/xep0030"
	"github.com/parley-im/parley/module/xep0045"
	"github.com/parley-im/parley/module/xep0092"
	"github.com/parley-im/parley/xmpp"
	"github.com/parley-im/parley/xmpp/jid"
)

// Events is the session's outward-facing callback surface. Every
// field is optional; nil fields are skipped. All callbacks run on the
// session run queue, so they must not block.
type Events struct {
	// one-to-one messaging
	IncomingMessage    func(from *jid.JID, body string)
	DelayedMessage     func(from *jid.JID, body string, stamp time.Time)
	MessageError       func(from *jid.JID, errText string)
	CarbonCopyReceived func(from *jid.JID, body string)
	CarbonCopySent     func(to *jid.JID, body string)

	// chat state notifications
	Typing   func(from *jid.JID)
	Paused   func(from *jid.JID)
	Inactive func(from *jid.JID)
	Gone     func(from *jid.JID)
	Activity func(from *jid.JID)

	// contact presence and capabilities
	ContactPresence    func(from *jid.JID, show xmpp.ShowState, status string)
	ContactUnavailable func(from *jid.JID, status string)
	CapsResolved       func(entity *jid.JID, caps *capsmodel.Capabilities)

	// service discovery
	DiscoInfo       func(from *jid.JID, node string, identities []capsmodel.Identity, features []string)
	DiscoInfoError  func(from *jid.JID, errText string)
	DiscoItems      func(from *jid.JID, node string, items []xep0030.Item)
	DiscoItemsError func(from *jid.JID, errText string)

	// software version, ping, carbons
	SoftwareVersion      func(from *jid.JID, swVersion xep0092.SoftwareVersion)
	SoftwareVersionError func(from *jid.JID, errText string)
	PingResult           func(from *jid.JID, latency time.Duration)
	PingError            func(from *jid.JID, errText string)
	AutopingCancelled    func()
	CarbonsEnabled       func(enabled bool)
	CarbonsError         func(errText string)

	// room lifecycle
	RoomInvite     func(roomJID, from *jid.JID, reason, password string, direct bool)
	RoomSelfJoined func(roomJID *jid.JID)
	RoomJoinError  func(roomJID *jid.JID, errText string)
	RoomLeft       func(roomJID *jid.JID)
	RoomCreated    func(roomJID *jid.JID, requiresConfig bool)
	RoomSelfKicked func(roomJID *jid.JID, actor, reason string)
	RoomDestroyed  func(roomJID *jid.JID, reason string)
	RoomError      func(roomJID *jid.JID, errText string)

	// room traffic
	RoomSubject           func(roomJID *jid.JID, nick, subject string)
	RoomMessage           func(roomJID *jid.JID, nick, body string)
	RoomHistory           func(roomJID *jid.JID, nick, body string, stamp time.Time)
	RoomBroadcast         func(roomJID *jid.JID, body string)
	PrivateMessage        func(roomJID *jid.JID, nick, body string)
	DelayedPrivateMessage func(roomJID *jid.JID, nick, body string, stamp time.Time)

	// room occupants
	RoomOccupantJoined  func(roomJID *jid.JID, occupant *xep0045.Occupant)
	RoomOccupantUpdated func(roomJID *jid.JID, occupant *xep0045.Occupant)
	RoomOccupantLeft    func(roomJID *jid.JID, occupant *xep0045.Occupant, reason string)
	RoomOccupantKicked  func(roomJID *jid.JID, nick, actor, reason string)
	RoomNickChanged     func(roomJID *jid.JID, oldNick, newNick string)

	// room configuration and administration
	RoomConfigForm         func(roomJID *jid.JID, form *xep0004.DataForm)
	RoomConfigResult       func(roomJID *jid.JID)
	RoomConfigError        func(roomJID *jid.JID, errText string)
	RoomAffiliationChanged func(roomJID *jid.JID, target, affiliation string)
	RoomRoleChanged        func(roomJID *jid.JID, nick, role string)
	RoomKickResult         func(roomJID *jid.JID, nick string)
	RoomAdminError         func(roomJID *jid.JID, target, privilege, errText string)
	RoomAffiliationList    func(roomJID *jid.JID, affiliation string, items []xep0045.AdminItem)
	RoomRoleList           func(roomJID *jid.JID, role string, items []xep0045.AdminItem)
	RoomList               func(service *jid.JID, items []xep0030.Item)
	RoomListError          func(service *jid.JID, errText string)
	RoomInfo               func(roomJID *jid.JID, identities []capsmodel.Identity, features []string)

	// uncorrelated stanza errors and connection lifecycle
	IQError      func(from *jid.JID, errText string)
	Disconnected func(err error)
}
