/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package xmpp

// ChatStatesNamespace represents the chat state notifications
// namespace (XEP-0085).
const ChatStatesNamespace = "http://jabber.org/protocol/chatstates"

// ChatState represents a chat state notification kind.
type ChatState string

const (
	// ActiveChatState represents an 'active' chat state.
	ActiveChatState ChatState = "active"

	// ComposingChatState represents a 'composing' chat state.
	ComposingChatState ChatState = "composing"

	// PausedChatState represents a 'paused' chat state.
	PausedChatState ChatState = "paused"

	// InactiveChatState represents an 'inactive' chat state.
	InactiveChatState ChatState = "inactive"

	// GoneChatState represents a 'gone' chat state.
	GoneChatState ChatState = "gone"
)

var chatStates = []ChatState{
	ActiveChatState,
	ComposingChatState,
	PausedChatState,
	InactiveChatState,
	GoneChatState,
}

// ChatState returns the chat state notification attached to the
// message, if any.
func (m *Message) ChatState() (ChatState, bool) {
	for _, cs := range chatStates {
		if m.elements.ChildNamespace(string(cs), ChatStatesNamespace) != nil {
			return cs, true
		}
	}
	return "", false
}

// SetChatState attaches a chat state notification to the message.
// Any previously attached state is replaced so that at most one
// state element is ever present.
func (m *Message) SetChatState(state ChatState) {
	for _, cs := range chatStates {
		m.RemoveElementsNamespace(string(cs), ChatStatesNamespace)
	}
	m.AppendElement(NewElementNamespace(string(state), ChatStatesNamespace))
}
