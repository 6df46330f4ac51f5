/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package xep0085

import (
	"github.com/parley-im/parley/module/xep0030"
	"github.com/parley-im/parley/stream"
	"github.com/parley-im/parley/xmpp"
	"github.com/parley-im/parley/xmpp/jid"
)

// ChatSession tracks per-contact conversation state: the pinned
// resource, whether the peer advertised chat state support, and the
// last state notification we sent.
type ChatSession struct {
	BareJID          string
	ResourceOverride string
	SendStates       bool
	LastStateSent    xmpp.ChatState
}

// Events represents the callbacks surfaced by the chat states module.
// Nil fields are skipped.
type Events struct {
	StateChanged func(from *jid.JID, state xmpp.ChatState)
	Activity     func(from *jid.JID)
}

// ChatStates represents a chat state notifications module (XEP-0085).
// Incoming notifications are reported through events; outgoing state
// attachment is gated on both the global preference and the
// per-contact session flag.
type ChatStates struct {
	statesPref bool
	stm        stream.Stream
	evts       Events
	sessions   map[string]*ChatSession
}

// New returns a chat states module instance.
func New(statesPref bool, disco *xep0030.Disco, stm stream.Stream, evts Events) *ChatStates {
	cs := &ChatStates{
		statesPref: statesPref,
		stm:        stm,
		evts:       evts,
		sessions:   map[string]*ChatSession{},
	}
	if disco != nil {
		disco.RegisterFeature(xmpp.ChatStatesNamespace)
	}
	return cs
}

// SetStatesPreference updates the global chat states preference.
func (x *ChatStates) SetStatesPreference(enabled bool) {
	x.statesPref = enabled
}

// GetOrCreate returns the chat session tracked for a contact,
// creating it on first use.
func (x *ChatStates) GetOrCreate(bareJID string) *ChatSession {
	if s := x.sessions[bareJID]; s != nil {
		return s
	}
	s := &ChatSession{BareJID: bareJID}
	x.sessions[bareJID] = s
	return s
}

// SetResourceOverride pins all outgoing stanzas for a contact to one
// of its resources.
func (x *ChatStates) SetResourceOverride(bareJID, resource string) {
	x.GetOrCreate(bareJID).ResourceOverride = resource
}

// Clear drops the session tracked for a contact. The next interaction
// starts from a fresh state machine.
func (x *ChatStates) Clear(bareJID string) {
	delete(x.sessions, bareJID)
}

// TargetJID resolves the delivery address for a contact, applying the
// resource override when one is pinned.
func (x *ChatStates) TargetJID(bareJID string) (*jid.JID, error) {
	s := x.sessions[bareJID]
	if s == nil || len(s.ResourceOverride) == 0 {
		return jid.NewWithString(bareJID, false)
	}
	return jid.NewWithString(bareJID+"/"+s.ResourceOverride, false)
}

// NoteOutgoingState records the last state notification sent to a
// contact. Only an incoming state marks a session state-capable.
func (x *ChatStates) NoteOutgoingState(bareJID string, state xmpp.ChatState) {
	s := x.GetOrCreate(bareJID)
	s.LastStateSent = state
}

// ShouldAttachState tells whether an outgoing message to a contact
// should carry a chat state element. Both the global preference and
// the contact session's send_states flag must hold.
func (x *ChatStates) ShouldAttachState(bareJID string) bool {
	s := x.sessions[bareJID]
	return x.statesPref && s != nil && s.SendStates
}

// ProcessMessage inspects an incoming one-to-one message for a chat
// state notification. A state element marks the peer session as
// state-capable and fires StateChanged; a bodied message without one
// fires the Activity fallback.
func (x *ChatStates) ProcessMessage(message *xmpp.Message) {
	from := message.FromJID()
	if from == nil {
		return
	}
	state, ok := message.ChatState()
	if !ok {
		if message.IsMessageWithBody() && x.evts.Activity != nil {
			x.evts.Activity(from)
		}
		return
	}
	x.GetOrCreate(from.ToBareJID().String()).SendStates = true
	if x.evts.StateChanged != nil {
		x.evts.StateChanged(from, state)
	}
}

// Reset drops every tracked session. Called at disconnect.
func (x *ChatStates) Reset() {
	x.sessions = map[string]*ChatSession{}
}

// Done signals session termination.
func (x *ChatStates) Done() {
	x.Reset()
}
