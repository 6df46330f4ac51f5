/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package xep0092

import (
	"os/exec"
	"strings"

	"github.com/pborman/uuid"

	"github.com/parley-im/parley/log"
	"github.com/parley-im/parley/module/xep0030"
	"github.com/parley-im/parley/stream"
	"github.com/parley-im/parley/version"
	"github.com/parley-im/parley/xmpp"
	"github.com/parley-im/parley/xmpp/jid"
)

const versionNamespace = "jabber:iq:version"

var osString string

func init() {
	out, _ := exec.Command("uname", "-rs").Output()
	osString = strings.TrimSpace(string(out))
}

// Config represents XMPP Software Version module (XEP-0092) configuration.
type Config struct {
	ShowOS bool `yaml:"show_os"`
}

// SoftwareVersion holds the reply to a software version request.
type SoftwareVersion struct {
	Name    string
	Version string
	OS      string
}

// Events represents the callbacks surfaced by the version module.
// Nil fields are skipped.
type Events struct {
	Version      func(from *jid.JID, swVersion SoftwareVersion)
	VersionError func(from *jid.JID, errText string)
}

// Version represents a software version module. It answers incoming
// version queries and requests versions from remote entities.
type Version struct {
	cfg  *Config
	stm  stream.Stream
	evts Events
}

// New returns a version IQ handler module.
func New(config *Config, disco *xep0030.Disco, stm stream.Stream, evts Events) *Version {
	v := &Version{
		cfg:  config,
		stm:  stm,
		evts: evts,
	}
	if disco != nil {
		disco.RegisterFeature(versionNamespace)
	}
	return v
}

// MatchesIQ returns whether or not an IQ should be
// processed by the version module.
func (x *Version) MatchesIQ(iq *xmpp.IQ) bool {
	return iq.IsGet() && iq.Elements().ChildNamespace("query", versionNamespace) != nil
}

// ProcessIQ answers an incoming software version query.
func (x *Version) ProcessIQ(iq *xmpp.IQ) {
	q := iq.Elements().ChildNamespace("query", versionNamespace)
	if q == nil || q.Elements().Count() != 0 {
		x.stm.SendElement(iq.BadRequestError())
		return
	}
	x.sendSoftwareVersion(iq)
}

// RequestVersion queries a remote entity for its software version.
func (x *Version) RequestVersion(to *jid.JID) {
	iq := xmpp.NewIQType(uuid.New(), xmpp.GetType)
	iq.SetFromJID(x.stm.JID())
	iq.SetToJID(to)
	iq.AppendElement(xmpp.NewElementNamespace("query", versionNamespace))

	x.stm.SendIQ(iq, func(result xmpp.Stanza) stream.ContinuePolicy {
		x.handleVersionResult(result)
		return stream.Remove
	})
}

// Done signals session termination.
func (x *Version) Done() {}

func (x *Version) handleVersionResult(result xmpp.Stanza) {
	if result == nil {
		return
	}
	if result.IsError() {
		if x.evts.VersionError != nil {
			x.evts.VersionError(result.FromJID(), xmpp.ErrorText(result))
		}
		return
	}
	q := result.Elements().ChildNamespace("query", versionNamespace)
	if q == nil {
		log.Warnf("malformed version result... id: %s", result.ID())
		return
	}
	sw := SoftwareVersion{}
	if name := q.Elements().Child("name"); name != nil {
		sw.Name = name.Text()
	}
	if ver := q.Elements().Child("version"); ver != nil {
		sw.Version = ver.Text()
	}
	if os := q.Elements().Child("os"); os != nil {
		sw.OS = os.Text()
	}
	if x.evts.Version != nil {
		x.evts.Version(result.FromJID(), sw)
	}
}

func (x *Version) sendSoftwareVersion(iq *xmpp.IQ) {
	log.Debugf("retrieving software version: %v (%s)", version.ApplicationVersion, iq.From())

	result := iq.ResultIQ()
	query := xmpp.NewElementNamespace("query", versionNamespace)

	name := xmpp.NewElementName("name")
	name.SetText(version.ApplicationName)
	query.AppendElement(name)

	ver := xmpp.NewElementName("version")
	ver.SetText(version.ApplicationVersion.String())
	query.AppendElement(ver)

	if x.cfg.ShowOS {
		os := xmpp.NewElementName("os")
		os.SetText(osString)
		query.AppendElement(os)
	}
	result.AppendElement(query)
	x.stm.SendElement(result)
}
