/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package session

import (
	"time"

	"github.com/parley-im/parley/stream"
)

type timedReq struct {
	interval time.Duration
	fn       func()
	timer    *time.Timer
}

// RegisterTimed registers a periodic handler fired every interval on
// the session run queue.
func (s *Session) RegisterTimed(interval time.Duration, fn func()) stream.TimedHandle {
	s.timedSeq++
	h := stream.TimedHandle(s.timedSeq)
	req := &timedReq{interval: interval, fn: fn}
	req.timer = time.AfterFunc(interval, func() {
		s.runQueue.Run(func() { s.fireTimed(h) })
	})
	s.timeds[h] = req
	return h
}

// CancelTimed cancels a previously registered periodic handler.
func (s *Session) CancelTimed(h stream.TimedHandle) {
	req := s.timeds[h]
	if req == nil {
		return
	}
	req.timer.Stop()
	delete(s.timeds, h)
}

func (s *Session) fireTimed(h stream.TimedHandle) {
	req := s.timeds[h]
	if req == nil {
		return
	}
	req.fn()
	// the handler may have cancelled itself
	if s.timeds[h] == req {
		req.timer.Reset(req.interval)
	}
}

func (s *Session) cancelTimeds() {
	for h, req := range s.timeds {
		req.timer.Stop()
		delete(s.timeds, h)
	}
}
