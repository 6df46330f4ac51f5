/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package xep0199

import (
	"fmt"
	"time"

	"github.com/pborman/uuid"

	"github.com/parley-im/parley/log"
	"github.com/parley-im/parley/module/xep0030"
	"github.com/parley-im/parley/stream"
	"github.com/parley-im/parley/xmpp"
	"github.com/parley-im/parley/xmpp/jid"
)

const pingNamespace = "urn:xmpp:ping"

// Config represents XMPP Ping module (XEP-0199) configuration.
type Config struct {
	Send         bool
	SendInterval time.Duration
}

type configProxy struct {
	Send         bool `yaml:"send"`
	SendInterval int  `yaml:"send_interval"`
}

// UnmarshalYAML satisfies Unmarshaler interface.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	p := configProxy{}
	if err := unmarshal(&p); err != nil {
		return err
	}
	c.Send = p.Send
	c.SendInterval = time.Second * time.Duration(p.SendInterval)
	if c.Send && c.SendInterval < time.Second {
		return fmt.Errorf("xep0199.Config: send interval must be 1 or higher")
	}
	return nil
}

// Events represents the callbacks surfaced by the ping module.
// Nil fields are skipped.
type Events struct {
	Result            func(from *jid.JID, latency time.Duration)
	Error             func(from *jid.JID, errText string)
	AutopingCancelled func()
}

// Ping represents a ping module: it answers incoming pings, sends
// manual pings reporting round-trip latency, and keeps the periodic
// autoping loop alive while the session is connected.
type Ping struct {
	cfg       *Config
	stm       stream.Stream
	evts      Events
	timedHnd  stream.TimedHandle
	scheduled bool
	cancelled bool
}

// New returns a ping module instance.
func New(config *Config, disco *xep0030.Disco, stm stream.Stream, evts Events) *Ping {
	p := &Ping{
		cfg:  config,
		stm:  stm,
		evts: evts,
	}
	if disco != nil {
		disco.RegisterFeature(pingNamespace)
	}
	return p
}

// MatchesIQ returns whether or not an IQ should be
// processed by the ping module.
func (x *Ping) MatchesIQ(iq *xmpp.IQ) bool {
	return iq.Elements().ChildNamespace("ping", pingNamespace) != nil
}

// ProcessIQ answers an incoming ping request.
func (x *Ping) ProcessIQ(iq *xmpp.IQ) {
	p := iq.Elements().ChildNamespace("ping", pingNamespace)
	if p.Elements().Count() > 0 {
		x.stm.SendElement(iq.BadRequestError())
		return
	}
	if !iq.IsGet() {
		x.stm.SendElement(iq.BadRequestError())
		return
	}
	log.Debugf("received ping... id: %s", iq.ID())
	x.stm.SendElement(iq.ResultIQ())
}

// SendPing sends a manual ping request reporting round-trip latency
// through the Result event.
func (x *Ping) SendPing(to *jid.JID) {
	x.sendPing(to, nil)
}

// StartAutoping schedules the periodic ping loop against the server.
// It is a no-op when sending is disabled, or when a previous "cancel"
// error permanently disabled the loop for this connection.
func (x *Ping) StartAutoping() {
	if !x.cfg.Send || x.cancelled || x.scheduled {
		return
	}
	x.scheduled = true
	x.timedHnd = x.stm.RegisterTimed(x.cfg.SendInterval, x.firePing)
}

// StopAutoping cancels the periodic ping loop.
func (x *Ping) StopAutoping() {
	if !x.scheduled {
		return
	}
	x.scheduled = false
	x.stm.CancelTimed(x.timedHnd)
}

// SetAutopingInterval reschedules the periodic ping loop with a new
// interval. A zero interval disables sending.
func (x *Ping) SetAutopingInterval(interval time.Duration) {
	x.StopAutoping()
	x.cfg.SendInterval = interval
	x.cfg.Send = interval > 0
	x.StartAutoping()
}

// Done signals session termination.
func (x *Ping) Done() {
	x.StopAutoping()
}

func (x *Ping) firePing() {
	server, _ := jid.NewWithString(x.stm.JID().Domain(), true)
	x.sendPing(server, func(errText string, errType string) {
		if errType != xmpp.CancelErrorType {
			return
		}
		// a 'cancel' error disables the loop for the rest of the connection
		log.Infof("autoping disabled by server")
		x.StopAutoping()
		x.cancelled = true
		if x.evts.AutopingCancelled != nil {
			x.evts.AutopingCancelled()
		}
	})
}

func (x *Ping) sendPing(to *jid.JID, onError func(errText, errType string)) {
	iq := xmpp.NewIQType(uuid.New(), xmpp.GetType)
	iq.SetFromJID(x.stm.JID())
	iq.SetToJID(to)
	iq.AppendElement(xmpp.NewElementNamespace("ping", pingNamespace))

	sentAt := time.Now()
	x.stm.SendIQ(iq, func(result xmpp.Stanza) stream.ContinuePolicy {
		switch {
		case result == nil:
			// expired
		case result.IsError():
			errText := xmpp.ErrorText(result)
			if onError != nil {
				onError(errText, xmpp.ErrorTypeAttribute(result))
			}
			if x.evts.Error != nil {
				x.evts.Error(result.FromJID(), errText)
			}
		default:
			if x.evts.Result != nil {
				x.evts.Result(result.FromJID(), time.Since(sentAt))
			}
		}
		return stream.Remove
	})
}
