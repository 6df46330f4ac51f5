/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package xep0045

import (
	"github.com/parley-im/parley/log"
	"github.com/parley-im/parley/xmpp"
	"github.com/parley-im/parley/xmpp/jid"
)

// MatchesMessage tells whether a message stanza should be handled by
// the MUC module: an invitation of either flavor, or any traffic from
// a tracked room.
func (x *Muc) MatchesMessage(message *xmpp.Message) bool {
	if message.Elements().ChildNamespace("x", conferenceNamespace) != nil {
		return true
	}
	if message.Elements().ChildNS(captchaNamespace) != nil {
		return true
	}
	if userEl := message.Elements().ChildNamespace("x", mucUserNamespace); userEl != nil && userEl.Elements().Child("invite") != nil {
		return true
	}
	from := message.FromJID()
	return from != nil && x.rooms[from.ToBareJID().String()] != nil
}

// ProcessMessage routes a room-related message: invitations first,
// then groupchat traffic, then in-room private messages.
func (x *Muc) ProcessMessage(message *xmpp.Message) {
	if x.processInvite(message) {
		return
	}
	if x.processCaptcha(message) {
		return
	}
	from := message.FromJID()
	if from == nil {
		log.Warnf("dropping room message with no origin")
		return
	}
	room := x.rooms[from.ToBareJID().String()]
	if room == nil {
		return
	}
	nick := from.Resource()

	if message.IsGroupChat() {
		x.processGroupChat(room, nick, message)
		return
	}
	// in-room private message
	body := message.Body()
	if len(body) == 0 {
		return
	}
	if stamp, delayed := message.Delayed(); delayed {
		if x.evts.DelayedPrivateMessage != nil {
			x.evts.DelayedPrivateMessage(room.roomJID, nick, body, stamp)
		}
		return
	}
	if x.evts.PrivateMessage != nil {
		x.evts.PrivateMessage(room.roomJID, nick, body)
	}
}

// processCaptcha handles a room captcha challenge (XEP-0158),
// surfacing its body the way a room broadcast is surfaced.
func (x *Muc) processCaptcha(message *xmpp.Message) bool {
	if message.Elements().ChildNS(captchaNamespace) == nil {
		return false
	}
	from := message.FromJID()
	if from == nil {
		log.Warnf("dropping captcha challenge with no origin")
		return true
	}
	if body := message.Body(); len(body) > 0 && x.evts.Broadcast != nil {
		x.evts.Broadcast(from.ToBareJID(), body)
	}
	return true
}

func (x *Muc) processGroupChat(room *Room, nick string, message *xmpp.Message) {
	if subject, ok := message.Subject(); ok && len(message.Body()) == 0 {
		room.subject = subject
		if x.evts.SubjectChanged != nil {
			x.evts.SubjectChanged(room.roomJID, nick, subject)
		}
		return
	}
	body := message.Body()
	if len(body) == 0 {
		return
	}
	if len(nick) == 0 {
		if x.evts.Broadcast != nil {
			x.evts.Broadcast(room.roomJID, body)
		}
		return
	}
	if stamp, delayed := message.Delayed(); delayed {
		if x.evts.History != nil {
			x.evts.History(room.roomJID, nick, body, stamp)
		}
		return
	}
	if x.evts.Message != nil {
		x.evts.Message(room.roomJID, nick, body)
	}
}

func (x *Muc) processInvite(message *xmpp.Message) bool {
	// direct invitation (XEP-0249)
	if conf := message.Elements().ChildNamespace("x", conferenceNamespace); conf != nil {
		roomJID, err := jid.NewWithString(conf.Attributes().Get("jid"), false)
		if err != nil {
			log.Warnf("dropping direct invite with invalid room jid: %v", err)
			return true
		}
		if x.evts.Invite != nil {
			x.evts.Invite(roomJID, message.FromJID(), conf.Attributes().Get("reason"), conf.Attributes().Get("password"), true)
		}
		return true
	}
	// mediated invitation relayed by the room
	userEl := message.Elements().ChildNamespace("x", mucUserNamespace)
	if userEl == nil {
		return false
	}
	invite := userEl.Elements().Child("invite")
	if invite == nil {
		return false
	}
	from := message.FromJID()
	if from == nil {
		log.Warnf("dropping mediated invite with no room origin")
		return true
	}
	inviter, err := jid.NewWithString(invite.Attributes().Get("from"), false)
	if err != nil {
		inviter = nil
	}
	reason := ""
	if reasonEl := invite.Elements().Child("reason"); reasonEl != nil {
		reason = reasonEl.Text()
	}
	password := ""
	if pwdEl := userEl.Elements().Child("password"); pwdEl != nil {
		password = pwdEl.Text()
	}
	if x.evts.Invite != nil {
		x.evts.Invite(from.ToBareJID(), inviter, reason, password, false)
	}
	return true
}
