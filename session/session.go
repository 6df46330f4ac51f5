/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package session

import (
	"sync/atomic"

	"github.com/parley-im/parley/log"
	"github.com/parley-im/parley/module"
	"github.com/parley-im/parley/module/xep0030"
	"github.com/parley-im/parley/module/xep0045"
	"github.com/parley-im/parley/module/xep0085"
	"github.com/parley-im/parley/module/xep0092"
	"github.com/parley-im/parley/module/xep0115"
	"github.com/parley-im/parley/module/xep0199"
	"github.com/parley-im/parley/module/xep0280"
	"github.com/parley-im/parley/runqueue"
	"github.com/parley-im/parley/storage/repository"
	"github.com/parley-im/parley/stream"
	"github.com/parley-im/parley/transport"
	"github.com/parley-im/parley/xmpp"
	"github.com/parley-im/parley/xmpp/jid"
)

// capsNode is the node advertised in our own entity caps element.
const capsNode = "https://parley-im.org"

// Session drives one account connection: it reads stanzas off the
// transport, serializes all processing onto a single run queue, and
// routes traffic between the wire and the protocol modules. The
// transport must already carry an authenticated, bound stream.
type Session struct {
	cfg      *Config
	jd       *jid.JID
	tr       transport.Transport
	pr       *xmpp.Parser
	runQueue *runqueue.RunQueue
	evts     Events

	pending  map[string]*pendingReq
	timeds   map[stream.TimedHandle]*timedReq
	timedSeq uint64

	disco      *xep0030.Disco
	caps       *xep0115.EntityCaps
	ping       *xep0199.Ping
	ver        *xep0092.Version
	carbons    *xep0280.Carbons
	chatStates *xep0085.ChatStates
	muc        *xep0045.Muc
	iqHandlers []module.IQHandler

	closed uint32
}

// New creates a session over an authenticated transport.
func New(cfg *Config, jd *jid.JID, tr transport.Transport, capsRep repository.Capabilities, evts Events) *Session {
	s := &Session{
		cfg:      cfg,
		jd:       jd,
		tr:       tr,
		pr:       xmpp.NewParser(tr, xmpp.SocketStream, cfg.MaxStanzaSize),
		runQueue: runqueue.New(jd.String()),
		evts:     evts,
		pending:  map[string]*pendingReq{},
		timeds:   map[stream.TimedHandle]*timedReq{},
	}
	s.disco = xep0030.New(s, xep0030.Events{
		Info:       evts.DiscoInfo,
		InfoError:  evts.DiscoInfoError,
		Items:      evts.DiscoItems,
		ItemsError: evts.DiscoItemsError,
	})
	s.caps = xep0115.New(s, s.disco, capsRep, xep0115.Events{
		Resolved: evts.CapsResolved,
	})
	s.ping = xep0199.New(&cfg.Ping, s.disco, s, xep0199.Events{
		Result:            evts.PingResult,
		Error:             evts.PingError,
		AutopingCancelled: evts.AutopingCancelled,
	})
	s.ver = xep0092.New(&cfg.Version, s.disco, s, xep0092.Events{
		Version:      evts.SoftwareVersion,
		VersionError: evts.SoftwareVersionError,
	})
	s.carbons = xep0280.New(s.disco, s, xep0280.Events{
		Enabled:  evts.CarbonsEnabled,
		Error:    evts.CarbonsError,
		Received: s.onCarbon,
	})
	s.chatStates = xep0085.New(cfg.SendChatStates, s.disco, s, xep0085.Events{
		StateChanged: s.onChatState,
		Activity:     evts.Activity,
	})
	s.muc = xep0045.New(s.disco, s, xep0045.Events{
		Joined:                evts.RoomSelfJoined,
		JoinError:             evts.RoomJoinError,
		Left:                  evts.RoomLeft,
		Created:               evts.RoomCreated,
		Kicked:                evts.RoomSelfKicked,
		Destroyed:             evts.RoomDestroyed,
		RoomError:             evts.RoomError,
		OccupantJoined:        evts.RoomOccupantJoined,
		OccupantUpdated:       evts.RoomOccupantUpdated,
		OccupantLeft:          evts.RoomOccupantLeft,
		OccupantKicked:        evts.RoomOccupantKicked,
		NickChanged:           evts.RoomNickChanged,
		SubjectChanged:        evts.RoomSubject,
		Message:               evts.RoomMessage,
		History:               evts.RoomHistory,
		Broadcast:             evts.RoomBroadcast,
		PrivateMessage:        evts.PrivateMessage,
		DelayedPrivateMessage: evts.DelayedPrivateMessage,
		Invite:                evts.RoomInvite,
		ConfigForm:            evts.RoomConfigForm,
		ConfigResult:          evts.RoomConfigResult,
		ConfigError:           evts.RoomConfigError,
		AffiliationChanged:    evts.RoomAffiliationChanged,
		RoleChanged:           evts.RoomRoleChanged,
		KickResult:            evts.RoomKickResult,
		AdminError:            evts.RoomAdminError,
		AffiliationList:       evts.RoomAffiliationList,
		RoleList:              evts.RoomRoleList,
		RoomList:              evts.RoomList,
		RoomListError:         evts.RoomListError,
		RoomInfo:              evts.RoomInfo,
	})
	s.iqHandlers = []module.IQHandler{s.disco, s.ping, s.ver}
	return s
}

// JID returns the session full JID.
func (s *Session) JID() *jid.JID { return s.jd }

// Start announces our presence and begins processing the stream.
func (s *Session) Start() {
	s.runQueue.Run(func() {
		presence := xmpp.NewPresence(s.jd, s.jd.ToBareJID(), xmpp.AvailableType)
		presence.AppendElement(s.caps.PresenceCapsElement(capsNode))
		s.writeElement(presence)
		s.ping.StartAutoping()
	})
	go s.readLoop()
}

// SendElement writes an element to the transport. It must only be
// called from the session run queue; collaborator code goes through
// the intent methods instead.
func (s *Session) SendElement(elem xmpp.XElement) {
	s.writeElement(elem)
}

// Close terminates the session, retiring every pending handler.
func (s *Session) Close() {
	if !atomic.CompareAndSwapUint32(&s.closed, 0, 1) {
		return
	}
	s.runQueue.Stop(func() {
		s.teardown(nil)
		_ = s.tr.Close()
	})
}

func (s *Session) readLoop() {
	for {
		elem, err := s.pr.ParseElement()
		if err != nil {
			readErr := err
			s.runQueue.Run(func() { s.handleReadError(readErr) })
			return
		}
		stanza := elem
		s.runQueue.Run(func() { s.onStanza(stanza) })
	}
}

func (s *Session) handleReadError(err error) {
	if !atomic.CompareAndSwapUint32(&s.closed, 0, 1) {
		return
	}
	if err == xmpp.ErrStreamClosedByPeer {
		log.Infof("stream closed by peer: %s", s.jd)
	} else {
		log.Warnf("stream read failed: %v", err)
	}
	s.teardown(err)
}

// teardown resets connection-scoped state: pending requests, timers,
// rooms, chat sessions and entity caps bindings. Capability records
// keyed by content hash survive in the repository.
func (s *Session) teardown(err error) {
	s.cancelPending()
	s.cancelTimeds()
	s.muc.Reset()
	s.chatStates.Reset()
	s.caps.Reset()
	if s.evts.Disconnected != nil {
		s.evts.Disconnected(err)
	}
}

func (s *Session) writeElement(elem xmpp.XElement) {
	if err := s.tr.WriteElement(elem, true); err != nil {
		log.Warnf("write failed: %v", err)
	}
}

func (s *Session) onCarbon(direction xep0280.Direction, message *xmpp.Message) {
	switch direction {
	case xep0280.Sent:
		if s.evts.CarbonCopySent != nil {
			s.evts.CarbonCopySent(message.ToJID(), message.Body())
		}
	default:
		if s.evts.CarbonCopyReceived != nil {
			s.evts.CarbonCopyReceived(message.FromJID(), message.Body())
		}
	}
}

func (s *Session) onChatState(from *jid.JID, state xmpp.ChatState) {
	var fn func(*jid.JID)
	switch state {
	case xmpp.ComposingChatState:
		fn = s.evts.Typing
	case xmpp.PausedChatState:
		fn = s.evts.Paused
	case xmpp.InactiveChatState:
		fn = s.evts.Inactive
	case xmpp.GoneChatState:
		fn = s.evts.Gone
	default:
		fn = s.evts.Activity
	}
	if fn != nil {
		fn(from)
	}
}

// onStanza is the single dispatch entry point: correlated responses
// first, then namespace handlers, then plain stanza handling.
func (s *Session) onStanza(elem xmpp.XElement) {
	hadFrom := len(elem.From()) > 0
	fromJID, toJID, err := s.stanzaJIDs(elem)
	if err != nil {
		log.Warnf("dropping stanza with malformed addressing: %v", err)
		return
	}
	switch elem.Name() {
	case "iq":
		iq, err := xmpp.NewIQFromElement(elem, fromJID, toJID)
		if err != nil {
			log.Warnf("dropping malformed iq: %v", err)
			return
		}
		// keep the wire-level absence observable: handlers such as
		// room destroy treat a from-less result as a protocol violation
		if !hadFrom {
			iq.RemoveAttribute("from")
		}
		s.processIQ(iq)
	case "message":
		message, err := xmpp.NewMessageFromElement(elem, fromJID, toJID)
		if err != nil {
			log.Warnf("dropping malformed message: %v", err)
			return
		}
		s.processMessage(message)
	case "presence":
		presence, err := xmpp.NewPresenceFromElement(elem, fromJID, toJID)
		if err != nil {
			log.Warnf("dropping malformed presence: %v", err)
			return
		}
		s.processPresence(presence)
	default:
		log.Debugf("ignoring stream element: %s", elem.Name())
	}
}

// stanzaJIDs resolves stanza addressing. A missing origin defaults to
// our own server, a missing destination to ourselves.
func (s *Session) stanzaJIDs(elem xmpp.XElement) (fromJID, toJID *jid.JID, err error) {
	from := elem.From()
	if len(from) > 0 {
		fromJID, err = jid.NewWithString(from, false)
		if err != nil {
			return nil, nil, err
		}
	} else {
		fromJID, err = jid.NewWithString(s.jd.Domain(), true)
		if err != nil {
			return nil, nil, err
		}
	}
	to := elem.To()
	if len(to) > 0 {
		toJID, err = jid.NewWithString(to, false)
		if err != nil {
			return nil, nil, err
		}
	} else {
		toJID = s.jd
	}
	return fromJID, toJID, nil
}

func (s *Session) processIQ(iq *xmpp.IQ) {
	if iq.IsResult() || iq.Type() == xmpp.ErrorType {
		if s.dispatchResponse(iq) {
			return
		}
		if iq.Type() == xmpp.ErrorType {
			// an error correlated to a request is never double-reported
			if s.evts.IQError != nil {
				s.evts.IQError(iq.FromJID(), xmpp.ErrorText(iq))
			}
			return
		}
		log.Debugf("ignoring unsolicited iq result... id: %s", iq.ID())
		return
	}
	for _, handler := range s.iqHandlers {
		if handler.MatchesIQ(iq) {
			handler.ProcessIQ(iq)
			return
		}
	}
	if iq.IsGet() {
		s.writeElement(iq.FeatureNotImplementedError())
		return
	}
	s.writeElement(iq.ServiceUnavailableError())
}

// processMessage preserves the ordering the router depends on: carbon
// wrappers first, then room-scoped namespaces and room context, then
// plain one-to-one handling.
func (s *Session) processMessage(message *xmpp.Message) {
	if message.Type() == xmpp.ErrorType {
		if s.evts.MessageError != nil {
			s.evts.MessageError(message.FromJID(), xmpp.ErrorText(message))
		}
		return
	}
	if s.carbons.IsCarbonMessage(message) {
		s.carbons.ProcessMessage(message)
		return
	}
	if s.muc.MatchesMessage(message) {
		s.muc.ProcessMessage(message)
		return
	}
	s.chatStates.ProcessMessage(message)
	body := message.Body()
	if len(body) == 0 {
		return
	}
	if stamp, delayed := message.Delayed(); delayed {
		if s.evts.DelayedMessage != nil {
			s.evts.DelayedMessage(message.FromJID(), body, stamp)
		}
		return
	}
	if s.evts.IncomingMessage != nil {
		s.evts.IncomingMessage(message.FromJID(), body)
	}
}

func (s *Session) processPresence(presence *xmpp.Presence) {
	if s.muc.MatchesPresence(presence) {
		s.muc.ProcessPresence(presence)
		return
	}
	if presence.Type() == xmpp.ErrorType {
		log.Debugf("presence error from %s: %s", presence.From(), xmpp.ErrorText(presence))
		return
	}
	if presence.IsUnavailable() {
		if s.evts.ContactUnavailable != nil {
			s.evts.ContactUnavailable(presence.FromJID(), presence.Status())
		}
		return
	}
	if presence.IsAvailable() {
		s.caps.ProcessPresence(presence)
		if s.evts.ContactPresence != nil {
			s.evts.ContactPresence(presence.FromJID(), presence.ShowState(), presence.Status())
		}
	}
}
