/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package xmpp

import (
	"time"
)

const (
	delayNamespace = "urn:xmpp:delay"

	// legacy XEP-0091 timestamp form, still emitted by older MUC services.
	legacyDelayNamespace = "jabber:x:delay"
	legacyDelayFormat    = "20060102T15:04:05"
)

// Delay attaches element's Delayed Delivery information.
func (e *Element) Delay(from string, text string) {
	d := NewElementNamespace("delay", delayNamespace)
	if len(from) > 0 {
		d.SetAttribute("from", from)
	}
	d.SetAttribute("stamp", time.Now().UTC().Format("2006-01-02T15:04:05Z"))

	if len(text) > 0 {
		d.SetText(text)
	}
	e.AppendElement(d)
}

// Delayed returns the delayed delivery timestamp attached to the
// element, either in its XEP-0203 or legacy XEP-0091 form. The second
// return value reports whether any delay information was found and
// could be parsed.
func (e *Element) Delayed() (time.Time, bool) {
	if d := e.elements.ChildNamespace("delay", delayNamespace); d != nil {
		if tm, err := time.Parse(time.RFC3339, d.Attributes().Get("stamp")); err == nil {
			return tm, true
		}
	}
	if d := e.elements.ChildNamespace("x", legacyDelayNamespace); d != nil {
		if tm, err := time.Parse(legacyDelayFormat, d.Attributes().Get("stamp")); err == nil {
			return tm, true
		}
	}
	return time.Time{}, false
}
