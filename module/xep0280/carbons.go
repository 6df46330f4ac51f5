/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package xep0280

import (
	"github.com/pborman/uuid"
	"github.com/pkg/errors"

	"github.com/parley-im/parley/log"
	"github.com/parley-im/parley/module/xep0030"
	"github.com/parley-im/parley/stream"
	"github.com/parley-im/parley/xmpp"
	"github.com/parley-im/parley/xmpp/jid"
)

const (
	carbonsNamespace   = "urn:xmpp:carbons:2"
	forwardedNamespace = "urn:xmpp:forward:0"
)

// Direction tells whether a carbon copy mirrors a message received by
// or sent from another of the account's resources.
type Direction int

const (
	// Received represents a carbon of a message delivered to another resource.
	Received Direction = iota

	// Sent represents a carbon of a message sent from another resource.
	Sent
)

// Events represents the callbacks surfaced by the carbons module.
// Nil fields are skipped.
type Events struct {
	Enabled  func(enabled bool)
	Error    func(errText string)
	Received func(direction Direction, message *xmpp.Message)
}

// Carbons represents a message carbons module (XEP-0280). It toggles
// carbon copying with the server and unwraps forwarded copies arriving
// from other resources of the same account.
type Carbons struct {
	stm     stream.Stream
	evts    Events
	enabled bool
}

// New returns a carbons module instance.
func New(disco *xep0030.Disco, stm stream.Stream, evts Events) *Carbons {
	c := &Carbons{
		stm:  stm,
		evts: evts,
	}
	if disco != nil {
		disco.RegisterFeature(carbonsNamespace)
	}
	return c
}

// Enabled tells whether carbon copying is currently active.
func (x *Carbons) Enabled() bool { return x.enabled }

// Enable asks the server to start carbon copying messages.
func (x *Carbons) Enable() {
	x.sendToggle("enable", true)
}

// Disable asks the server to stop carbon copying messages.
func (x *Carbons) Disable() {
	x.sendToggle("disable", false)
}

// Done signals session termination.
func (x *Carbons) Done() {
	x.enabled = false
}

// IsCarbonMessage tells whether a message stanza wraps a carbon copy
// addressed to this account.
func (x *Carbons) IsCarbonMessage(message *xmpp.Message) bool {
	if message.Elements().ChildNamespace("received", carbonsNamespace) == nil &&
		message.Elements().ChildNamespace("sent", carbonsNamespace) == nil {
		return false
	}
	// carbons come from the bare account JID, anything else is spoofed
	return message.FromJID() != nil && message.FromJID().Matches(x.stm.JID().ToBareJID(), jid.MatchesBare)
}

// ProcessMessage unwraps a carbon copy and reports the inner message
// through the Received event. Spoofed or malformed carbons are dropped.
func (x *Carbons) ProcessMessage(message *xmpp.Message) {
	direction := Received
	wrap := message.Elements().ChildNamespace("received", carbonsNamespace)
	if wrap == nil {
		wrap = message.Elements().ChildNamespace("sent", carbonsNamespace)
		direction = Sent
	}
	if wrap == nil {
		return
	}
	if !message.FromJID().Matches(x.stm.JID().ToBareJID(), jid.MatchesBare) {
		log.Warnf("dropping carbon with spoofed origin: %s", message.From())
		return
	}
	inner, err := unwrapForwarded(wrap)
	if err != nil {
		log.Warnf("dropping malformed carbon: %v", err)
		return
	}
	if x.evts.Received != nil {
		x.evts.Received(direction, inner)
	}
}

func unwrapForwarded(wrap xmpp.XElement) (*xmpp.Message, error) {
	fwd := wrap.Elements().ChildNamespace("forwarded", forwardedNamespace)
	if fwd == nil {
		return nil, errors.New("missing forwarded element")
	}
	msgEl := fwd.Elements().Child("message")
	if msgEl == nil {
		return nil, errors.New("missing forwarded message")
	}
	fromJID, err := jid.NewWithString(msgEl.Attributes().Get("from"), false)
	if err != nil {
		return nil, errors.Wrap(err, "invalid forwarded 'from' jid")
	}
	toJID, err := jid.NewWithString(msgEl.Attributes().Get("to"), false)
	if err != nil {
		return nil, errors.Wrap(err, "invalid forwarded 'to' jid")
	}
	return xmpp.NewMessageFromElement(msgEl, fromJID, toJID)
}

func (x *Carbons) sendToggle(toggle string, enabled bool) {
	iq := xmpp.NewIQType(uuid.New(), xmpp.SetType)
	iq.SetFromJID(x.stm.JID())
	iq.AppendElement(xmpp.NewElementNamespace(toggle, carbonsNamespace))

	x.stm.SendIQ(iq, func(result xmpp.Stanza) stream.ContinuePolicy {
		switch {
		case result == nil:
		case result.IsError():
			if x.evts.Error != nil {
				x.evts.Error(xmpp.ErrorText(result))
			}
		default:
			x.enabled = enabled
			if x.evts.Enabled != nil {
				x.evts.Enabled(enabled)
			}
		}
		return stream.Remove
	})
}
