/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package xep0045

import (
	"github.com/parley-im/parley/module/xep0004"
	"github.com/parley-im/parley/xmpp"
	"github.com/parley-im/parley/xmpp/jid"
)

// RoomState represents the lifecycle state of a room membership.
type RoomState int

const (
	// Absent means no join has been attempted or the room was left.
	Absent RoomState = iota

	// Pending means the join presence was sent but the room's
	// self-presence has not been observed yet.
	Pending

	// Active means the room confirmed our presence and groupchat
	// traffic may flow.
	Active
)

// Affiliation values defined by XEP-0045.
const (
	OwnerAffiliation   = "owner"
	AdminAffiliation   = "admin"
	MemberAffiliation  = "member"
	OutcastAffiliation = "outcast"
	NoneAffiliation    = "none"
)

// Role values defined by XEP-0045.
const (
	ModeratorRole   = "moderator"
	ParticipantRole = "participant"
	VisitorRole     = "visitor"
	NoneRole        = "none"
)

// Occupant represents a room occupant keyed by nick. It is mutated
// only by presence updates for its room.
type Occupant struct {
	Nick          string
	JID           *jid.JID
	Affiliation   string
	Role          string
	Presence      xmpp.ShowState
	StatusMessage string
}

// Room represents our membership in a multi-user chat room.
type Room struct {
	roomJID     *jid.JID
	nick        string
	password    string
	subject     string
	state       RoomState
	locked      bool
	occupants   map[string]*Occupant
	pendingForm *xep0004.DataForm
}

func newRoom(roomJID *jid.JID, nick, password string) *Room {
	return &Room{
		roomJID:   roomJID,
		nick:      nick,
		password:  password,
		occupants: map[string]*Occupant{},
	}
}

// JID returns the room bare JID.
func (r *Room) JID() *jid.JID { return r.roomJID }

// Nick returns our nick in the room.
func (r *Room) Nick() string { return r.nick }

// Subject returns the last room subject observed.
func (r *Room) Subject() string { return r.subject }

// State returns the room lifecycle state.
func (r *Room) State() RoomState { return r.state }

// Locked tells whether the room is a freshly created room awaiting
// its configuration.
func (r *Room) Locked() bool { return r.locked }

// PendingForm returns the configuration form fetched from the room,
// or nil when none is outstanding.
func (r *Room) PendingForm() *xep0004.DataForm { return r.pendingForm }

// Occupant returns the occupant tracked under a nick.
func (r *Room) Occupant(nick string) *Occupant {
	return r.occupants[nick]
}

// OccupantCount returns the number of tracked occupants.
func (r *Room) OccupantCount() int { return len(r.occupants) }

// Occupants returns all tracked occupants.
func (r *Room) Occupants() []*Occupant {
	ret := make([]*Occupant, 0, len(r.occupants))
	for _, occ := range r.occupants {
		ret = append(ret, occ)
	}
	return ret
}

// renameOccupant moves an occupant record under a new nick keeping
// affiliation and role, so a server-driven nick change never shows up
// as a leave plus an unrelated join.
func (r *Room) renameOccupant(oldNick, newNick string) *Occupant {
	occ := r.occupants[oldNick]
	if occ == nil {
		occ = &Occupant{}
	}
	delete(r.occupants, oldNick)
	occ.Nick = newNick
	r.occupants[newNick] = occ
	return occ
}

func (r *Room) upsertOccupant(nick string) (occ *Occupant, created bool) {
	occ = r.occupants[nick]
	if occ == nil {
		occ = &Occupant{Nick: nick}
		r.occupants[nick] = occ
		created = true
	}
	return
}

func (r *Room) removeOccupant(nick string) *Occupant {
	occ := r.occupants[nick]
	delete(r.occupants, nick)
	return occ
}
