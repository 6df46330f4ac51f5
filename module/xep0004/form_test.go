/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package xep0004

import (
	"testing"

	"github.com/parley-im/parley/xmpp"
	"github.com/stretchr/testify/require"
)

func TestFormFromElement(t *testing.T) {
	elem := xmpp.NewElementName("y")
	_, err := NewFormFromElement(elem)
	require.NotNil(t, err)

	elem.SetName("x")
	_, err = NewFormFromElement(elem)
	require.NotNil(t, err)

	elem.SetNamespace(FormNamespace)
	_, err = NewFormFromElement(elem)
	require.NotNil(t, err) // missing type

	elem.SetAttribute("type", Form)
	form, err := NewFormFromElement(elem)
	require.Nil(t, err)
	require.NotNil(t, form)

	elem.AppendElement(xmpp.NewElementName("title").SetText("Room configuration"))
	elem.AppendElement(xmpp.NewElementName("instructions").SetText("Fill the form"))

	fieldElem := xmpp.NewElementName("field")
	fieldElem.SetAttribute("var", "muc#roomconfig_roomname")
	fieldElem.SetAttribute("type", TextSingle)
	fieldElem.AppendElement(xmpp.NewElementName("value").SetText("The Pub"))
	elem.AppendElement(fieldElem)

	form, err = NewFormFromElement(elem)
	require.Nil(t, err)
	require.Equal(t, "Room configuration", form.Title)
	require.Equal(t, "Fill the form", form.Instructions)
	require.Equal(t, 1, len(form.Fields))
	require.Equal(t, "The Pub", form.Fields.ValueForFieldOfType("muc#roomconfig_roomname", TextSingle))
}

func TestFormElement(t *testing.T) {
	form := &DataForm{Type: Submit, Title: "A title"}
	form.Fields = append(form.Fields, Field{
		Var:    FormType,
		Type:   Hidden,
		Values: []string{"http://jabber.org/protocol/muc#roomconfig"},
	})

	elem := form.Element()
	require.Equal(t, "x", elem.Name())
	require.Equal(t, FormNamespace, elem.Namespace())
	require.Equal(t, Submit, elem.Type())
	require.NotNil(t, elem.Elements().Child("title"))
	require.Equal(t, 1, len(elem.Elements().Children("field")))

	parsed, err := NewFormFromElement(elem)
	require.Nil(t, err)
	require.Equal(t, form.Fields[0].Values, parsed.Fields[0].Values)
}

func TestFormSetFieldValue(t *testing.T) {
	form := &DataForm{Type: Form}
	form.Fields = append(form.Fields, Field{Var: "muc#roomconfig_publicroom", Type: Boolean, Values: []string{"1"}})

	form.SetFieldValue("muc#roomconfig_publicroom", "0")
	require.Equal(t, "0", form.Fields.ValueForFieldOfType("muc#roomconfig_publicroom", Boolean))

	form.SetFieldValue("muc#roomconfig_persistentroom", "1")
	require.Equal(t, 2, len(form.Fields))
}

func TestFormSubmitted(t *testing.T) {
	form := &DataForm{Type: Form}
	form.Fields = append(form.Fields,
		Field{Var: "muc#roomconfig_roomname", Type: TextSingle, Values: []string{"The Pub"}},
		Field{Type: Fixed, Values: []string{"Section"}},
	)

	sub := form.Submitted()
	require.Equal(t, Submit, sub.Type)
	require.Equal(t, 1, len(sub.Fields))
	require.Equal(t, "The Pub", sub.Fields.ValueForFieldOfType("muc#roomconfig_roomname", TextSingle))
}
