/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package session

import (
	"time"

	"github.com/pborman/uuid"

	"github.com/parley-im/parley/log"
	"github.com/parley-im/parley/stream"
	"github.com/parley-im/parley/xmpp"
)

type pendingReq struct {
	hnd   stream.IQResultHandler
	timer *time.Timer
}

// SendIQ sends a request IQ and registers a correlated response
// handler. Every registered handler is invoked exactly once per
// response, with nil once the request expires or the session
// disconnects.
func (s *Session) SendIQ(iq *xmpp.IQ, hnd stream.IQResultHandler) string {
	id := iq.ID()
	if len(id) == 0 {
		id = uuid.New()
		iq.SetID(id)
	}
	if hnd != nil {
		req := &pendingReq{hnd: hnd}
		req.timer = time.AfterFunc(s.cfg.RequestTimeout, func() {
			s.runQueue.Run(func() { s.expireRequest(id) })
		})
		s.pending[id] = req
	}
	s.writeElement(iq)
	return id
}

func (s *Session) expireRequest(id string) {
	req := s.pending[id]
	if req == nil {
		return
	}
	delete(s.pending, id)
	log.Debugf("pending request expired... id: %s", id)
	_ = req.hnd(nil)
}

// dispatchResponse routes a response stanza to the handler owning its
// id. It reports false when no pending request claims the stanza.
func (s *Session) dispatchResponse(stanza xmpp.Stanza) bool {
	req := s.pending[stanza.ID()]
	if req == nil {
		return false
	}
	req.timer.Stop()
	if req.hnd(stanza) == stream.Keep {
		req.timer.Reset(s.cfg.RequestTimeout)
		return true
	}
	delete(s.pending, stanza.ID())
	return true
}

// cancelPending retires every pending handler, invoking each with a
// nil result. Called at disconnect.
func (s *Session) cancelPending() {
	for id, req := range s.pending {
		req.timer.Stop()
		delete(s.pending, id)
		_ = req.hnd(nil)
	}
}
