/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package xmpp

import (
	"strconv"
	"strings"
)

const stanzasNamespace = "urn:ietf:params:xml:ns:xmpp-stanzas"

const (
	// AuthErrorType represents an 'auth' stanza error type.
	AuthErrorType = "auth"

	// CancelErrorType represents a 'cancel' stanza error type.
	CancelErrorType = "cancel"

	// ModifyErrorType represents a 'modify' stanza error type.
	ModifyErrorType = "modify"

	// WaitErrorType represents a 'wait' stanza error type.
	WaitErrorType = "wait"
)

// StanzaError represents a stanza "error" element.
type StanzaError struct {
	code      int
	errorType string
	reason    string
}

func newStanzaError(code int, errorType string, reason string) *StanzaError {
	return &StanzaError{
		code:      code,
		errorType: errorType,
		reason:    reason,
	}
}

// Error satisfies error interface.
func (se *StanzaError) Error() string {
	return se.reason
}

// Type returns the stanza error type.
func (se *StanzaError) Type() string {
	return se.errorType
}

// Element returns StanzaError equivalent XML element.
func (se *StanzaError) Element() *Element {
	err := &Element{name: "error"}
	err.SetAttribute("code", strconv.Itoa(se.code))
	err.SetAttribute("type", se.errorType)
	err.AppendElement(NewElementNamespace(se.reason, stanzasNamespace))
	return err
}

var (
	// ErrBadRequest is returned when the sender has sent XML that is
	// malformed or that cannot be processed.
	ErrBadRequest = newStanzaError(400, ModifyErrorType, "bad-request")

	// ErrFeatureNotImplemented is returned when the feature requested is
	// not implemented and therefore cannot be processed.
	ErrFeatureNotImplemented = newStanzaError(501, CancelErrorType, "feature-not-implemented")

	// ErrForbidden is returned when the requesting entity does not possess
	// the required permissions to perform the action.
	ErrForbidden = newStanzaError(403, AuthErrorType, "forbidden")

	// ErrItemNotFound is returned when the addressed JID or item requested
	// cannot be found.
	ErrItemNotFound = newStanzaError(404, CancelErrorType, "item-not-found")

	// ErrServiceUnavailable is returned when the recipient does not
	// currently provide the requested service.
	ErrServiceUnavailable = newStanzaError(503, CancelErrorType, "service-unavailable")
)

// NewErrorStanzaFromStanza returns a copy of a stanza of error class.
func NewErrorStanzaFromStanza(stanza Stanza, stanzaErr *StanzaError) Stanza {
	e := &stanzaElement{}
	e.copyFrom(stanza)
	e.SetType(ErrorType)
	e.SetFromJID(stanza.ToJID())
	e.SetToJID(stanza.FromJID())
	e.AppendElement(stanzaErr.Element())
	return e
}

// BadRequestError returns an error copy of the stanza
// attaching 'bad-request' error sub element.
func (s *stanzaElement) BadRequestError() Stanza {
	return NewErrorStanzaFromStanza(s, ErrBadRequest)
}

// FeatureNotImplementedError returns an error copy of the stanza
// attaching 'feature-not-implemented' error sub element.
func (s *stanzaElement) FeatureNotImplementedError() Stanza {
	return NewErrorStanzaFromStanza(s, ErrFeatureNotImplemented)
}

// ForbiddenError returns an error copy of the stanza
// attaching 'forbidden' error sub element.
func (s *stanzaElement) ForbiddenError() Stanza {
	return NewErrorStanzaFromStanza(s, ErrForbidden)
}

// ItemNotFoundError returns an error copy of the stanza
// attaching 'item-not-found' error sub element.
func (s *stanzaElement) ItemNotFoundError() Stanza {
	return NewErrorStanzaFromStanza(s, ErrItemNotFound)
}

// ServiceUnavailableError returns an error copy of the stanza
// attaching 'service-unavailable' error sub element.
func (s *stanzaElement) ServiceUnavailableError() Stanza {
	return NewErrorStanzaFromStanza(s, ErrServiceUnavailable)
}

// ErrorText extracts a human readable message out of an error stanza.
// The error <text/> child is preferred; when absent the defined
// condition name is reported instead. Never returns an empty string
// for an error stanza.
func ErrorText(el XElement) string {
	errEl := el.Error()
	if errEl == nil {
		return "unknown error"
	}
	if txt := errEl.Elements().Child("text"); txt != nil && len(txt.Text()) > 0 {
		return txt.Text()
	}
	for _, child := range errEl.Elements().All() {
		if child.Name() == "text" {
			continue
		}
		if child.Namespace() == stanzasNamespace {
			return strings.Replace(child.Name(), "-", " ", -1)
		}
	}
	return "unknown error"
}

// ErrorCondition returns the defined condition name carried by an
// error stanza, or an empty string if none is present.
func ErrorCondition(el XElement) string {
	errEl := el.Error()
	if errEl == nil {
		return ""
	}
	for _, child := range errEl.Elements().All() {
		if child.Name() != "text" && child.Namespace() == stanzasNamespace {
			return child.Name()
		}
	}
	return ""
}

// ErrorTypeAttribute returns the 'type' attribute of the error sub
// element ("cancel", "modify", ...), or an empty string if absent.
func ErrorTypeAttribute(el XElement) string {
	errEl := el.Error()
	if errEl == nil {
		return ""
	}
	return errEl.Type()
}
