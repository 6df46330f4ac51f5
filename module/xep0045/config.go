/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package xep0045

import (
	"github.com/pborman/uuid"
	"github.com/pkg/errors"

	"github.com/parley-im/parley/log"
	"github.com/parley-im/parley/module/xep0004"
	"github.com/parley-im/parley/stream"
	"github.com/parley-im/parley/xmpp"
	"github.com/parley-im/parley/xmpp/jid"
)

// RequestRoomConfig fetches the room configuration form. The form is
// kept as the room's pending form until submitted or cancelled.
func (x *Muc) RequestRoomConfig(roomJID *jid.JID) error {
	bare := roomJID.ToBareJID()
	room := x.rooms[bare.String()]
	if room == nil {
		return errors.Errorf("xep0045: room %s is not tracked", bare)
	}
	iq := xmpp.NewIQType(uuid.New(), xmpp.GetType)
	iq.SetFromJID(x.stm.JID())
	iq.SetToJID(bare)
	iq.AppendElement(xmpp.NewElementNamespace("query", mucOwnerNamespace))

	x.stm.SendIQ(iq, func(result xmpp.Stanza) stream.ContinuePolicy {
		switch {
		case result == nil:
		case result.IsError():
			if x.evts.ConfigError != nil {
				x.evts.ConfigError(bare, xmpp.ErrorText(result))
			}
		default:
			x.handleConfigForm(room, result)
		}
		return stream.Remove
	})
	return nil
}

func (x *Muc) handleConfigForm(room *Room, result xmpp.Stanza) {
	q := result.Elements().ChildNamespace("query", mucOwnerNamespace)
	if q == nil {
		log.Warnf("config result for %s carries no query", room.roomJID)
		return
	}
	formEl := q.Elements().ChildNamespace("x", xep0004.FormNamespace)
	if formEl == nil {
		log.Warnf("config result for %s carries no form", room.roomJID)
		return
	}
	form, err := xep0004.NewFormFromElement(formEl)
	if err != nil {
		log.Warnf("discarding malformed config form for %s: %v", room.roomJID, err)
		return
	}
	room.pendingForm = form
	if x.evts.ConfigForm != nil {
		x.evts.ConfigForm(room.roomJID, form)
	}
}

// SubmitRoomConfig submits the pending configuration form. The room
// lock state changes only once the server acknowledges.
func (x *Muc) SubmitRoomConfig(roomJID *jid.JID) error {
	bare := roomJID.ToBareJID()
	room := x.rooms[bare.String()]
	if room == nil {
		return errors.Errorf("xep0045: room %s is not tracked", bare)
	}
	if room.pendingForm == nil {
		return errors.Errorf("xep0045: no pending config form for %s", bare)
	}
	submitted := room.pendingForm.Submitted()
	room.pendingForm = nil
	x.sendConfigSubmit(room, submitted)
	return nil
}

// AcceptInstantRoom accepts the default configuration of a freshly
// created room by submitting an empty form.
func (x *Muc) AcceptInstantRoom(roomJID *jid.JID) error {
	bare := roomJID.ToBareJID()
	room := x.rooms[bare.String()]
	if room == nil {
		return errors.Errorf("xep0045: room %s is not tracked", bare)
	}
	x.sendConfigSubmit(room, &xep0004.DataForm{Type: xep0004.Submit})
	return nil
}

func (x *Muc) sendConfigSubmit(room *Room, form *xep0004.DataForm) {
	iq := xmpp.NewIQType(uuid.New(), xmpp.SetType)
	iq.SetFromJID(x.stm.JID())
	iq.SetToJID(room.roomJID)
	q := xmpp.NewElementNamespace("query", mucOwnerNamespace)
	q.AppendElement(form.Element())
	iq.AppendElement(q)

	x.stm.SendIQ(iq, func(result xmpp.Stanza) stream.ContinuePolicy {
		switch {
		case result == nil:
		case result.IsError():
			if x.evts.ConfigError != nil {
				x.evts.ConfigError(room.roomJID, xmpp.ErrorText(result))
			}
		default:
			room.locked = false
			if x.evts.ConfigResult != nil {
				x.evts.ConfigResult(room.roomJID)
			}
		}
		return stream.Remove
	})
}

// CancelRoomConfig discards the pending configuration form and tells
// the room the configuration was cancelled.
func (x *Muc) CancelRoomConfig(roomJID *jid.JID) error {
	bare := roomJID.ToBareJID()
	room := x.rooms[bare.String()]
	if room == nil {
		return errors.Errorf("xep0045: room %s is not tracked", bare)
	}
	room.pendingForm = nil

	iq := xmpp.NewIQType(uuid.New(), xmpp.SetType)
	iq.SetFromJID(x.stm.JID())
	iq.SetToJID(bare)
	q := xmpp.NewElementNamespace("query", mucOwnerNamespace)
	q.AppendElement((&xep0004.DataForm{Type: xep0004.Cancel}).Element())
	iq.AppendElement(q)

	x.stm.SendIQ(iq, func(result xmpp.Stanza) stream.ContinuePolicy {
		switch {
		case result == nil:
		case result.IsError():
			if x.evts.ConfigError != nil {
				x.evts.ConfigError(bare, xmpp.ErrorText(result))
			}
		default:
			if x.evts.ConfigResult != nil {
				x.evts.ConfigResult(bare)
			}
		}
		return stream.Remove
	})
	return nil
}

// DestroyRoom asks the room service to destroy a room. A result that
// does not name its origin is rejected as a protocol violation.
func (x *Muc) DestroyRoom(roomJID *jid.JID, reason string) error {
	bare := roomJID.ToBareJID()
	room := x.rooms[bare.String()]
	if room == nil {
		return errors.Errorf("xep0045: room %s is not tracked", bare)
	}
	iq := xmpp.NewIQType(uuid.New(), xmpp.SetType)
	iq.SetFromJID(x.stm.JID())
	iq.SetToJID(bare)
	q := xmpp.NewElementNamespace("query", mucOwnerNamespace)
	destroy := xmpp.NewElementName("destroy")
	if len(reason) > 0 {
		reasonEl := xmpp.NewElementName("reason")
		reasonEl.SetText(reason)
		destroy.AppendElement(reasonEl)
	}
	q.AppendElement(destroy)
	iq.AppendElement(q)

	x.stm.SendIQ(iq, func(result xmpp.Stanza) stream.ContinuePolicy {
		switch {
		case result == nil:
		case result.IsError():
			if x.evts.RoomError != nil {
				x.evts.RoomError(bare, xmpp.ErrorText(result))
			}
		// the receive path resolves a missing origin to the server
		// domain, so only the raw attribute tells a from-less result
		// apart from a real one
		case len(result.From()) == 0:
			log.Warnf("destroy result for %s carries no origin", bare)
			if x.evts.RoomError != nil {
				x.evts.RoomError(bare, "destroy result carries no origin")
			}
		default:
			delete(x.rooms, bare.String())
			if x.evts.Destroyed != nil {
				x.evts.Destroyed(bare, reason)
			}
		}
		return stream.Remove
	})
	return nil
}
