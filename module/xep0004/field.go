/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package xep0004

import (
	"fmt"

	"github.com/parley-im/parley/xmpp"
)

// FormType represents the hidden FORM_TYPE field var.
const FormType = "FORM_TYPE"

const (
	// Boolean represents a 'boolean' form field.
	Boolean = "boolean"

	// Fixed represents a 'fixed' form field.
	Fixed = "fixed"

	// Hidden represents a 'hidden' form field.
	Hidden = "hidden"

	// JidMulti represents a 'jid-multi' form field.
	JidMulti = "jid-multi"

	// JidSingle represents a 'jid-single' form field.
	JidSingle = "jid-single"

	// ListMulti represents a 'list-multi' form field.
	ListMulti = "list-multi"

	// ListSingle represents a 'list-single' form field.
	ListSingle = "list-single"

	// TextMulti represents a 'text-multi' form field.
	TextMulti = "text-multi"

	// TextPrivate represents a 'text-private' form field.
	TextPrivate = "text-private"

	// TextSingle represents a 'text-single' form field.
	TextSingle = "text-single"
)

// Option represents an individual field option.
type Option struct {
	Label string
	Value string
}

// Field represents a field of a form. The field could be used to represent
// a question to complete, a completed question or a data returned from a search.
type Field struct {
	Var         string
	Required    bool
	Type        string
	Label       string
	Description string
	Values      []string
	Options     []Option
}

// NewFieldFromElement returns a new form field entity reading it
// from its XML representation.
func NewFieldFromElement(elem xmpp.XElement) (*Field, error) {
	if n := elem.Name(); n != "field" {
		return nil, fmt.Errorf("invalid field name: %s", n)
	}
	typ := elem.Attributes().Get("type")
	if len(typ) > 0 && !isValidFieldType(typ) {
		return nil, fmt.Errorf("invalid field type: %s", typ)
	}
	f := &Field{
		Var:   elem.Attributes().Get("var"),
		Type:  typ,
		Label: elem.Attributes().Get("label"),
	}
	if desc := elem.Elements().Child("desc"); desc != nil {
		f.Description = desc.Text()
	}
	if required := elem.Elements().Child("required"); required != nil {
		f.Required = true
	}
	for _, valElem := range elem.Elements().Children("value") {
		f.Values = append(f.Values, valElem.Text())
	}
	for _, optElem := range elem.Elements().Children("option") {
		var value string
		if v := optElem.Elements().Child("value"); v != nil {
			value = v.Text()
		}
		f.Options = append(f.Options, Option{
			Label: optElem.Attributes().Get("label"),
			Value: value,
		})
	}
	return f, nil
}

// Element returns form field XML representation.
func (f *Field) Element() xmpp.XElement {
	elem := xmpp.NewElementName("field")
	if len(f.Var) > 0 {
		elem.SetAttribute("var", f.Var)
	}
	if len(f.Type) > 0 {
		elem.SetAttribute("type", f.Type)
	}
	if len(f.Label) > 0 {
		elem.SetAttribute("label", f.Label)
	}
	if f.Required {
		elem.AppendElement(xmpp.NewElementName("required"))
	}
	if len(f.Description) > 0 {
		elem.AppendElement(xmpp.NewElementName("desc").SetText(f.Description))
	}
	for _, value := range f.Values {
		elem.AppendElement(xmpp.NewElementName("value").SetText(value))
	}
	for _, option := range f.Options {
		optElem := xmpp.NewElementName("option")
		if len(option.Label) > 0 {
			optElem.SetAttribute("label", option.Label)
		}
		optElem.AppendElement(xmpp.NewElementName("value").SetText(option.Value))
		elem.AppendElement(optElem)
	}
	return elem
}

func isValidFieldType(typ string) bool {
	switch typ {
	case Boolean, Fixed, Hidden, JidMulti, JidSingle, ListMulti,
		ListSingle, TextMulti, TextPrivate, TextSingle:
		return true
	}
	return false
}
