/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package xep0115

import (
	"crypto/sha1"
	"encoding/base64"
	"sort"
	"strings"

	capsmodel "github.com/parley-im/parley/model/capsmodel"
	"github.com/parley-im/parley/module/xep0004"
	"github.com/parley-im/parley/xmpp"
)

// ComputeVer computes the verification string of an identity/feature
// set following the XEP-0115 canonical ordering algorithm.
func ComputeVer(identities []capsmodel.Identity, features []string, forms []*xep0004.DataForm) string {
	var sb strings.Builder

	sorted := make([]capsmodel.Identity, len(identities))
	copy(sorted, identities)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Category != sorted[j].Category {
			return sorted[i].Category < sorted[j].Category
		}
		if sorted[i].Type != sorted[j].Type {
			return sorted[i].Type < sorted[j].Type
		}
		return sorted[i].Name < sorted[j].Name
	})
	for _, identity := range sorted {
		sb.WriteString(identity.Category)
		sb.WriteString("/")
		sb.WriteString(identity.Type)
		sb.WriteString("//")
		sb.WriteString(identity.Name)
		sb.WriteString("<")
	}

	sortedFeatures := make([]string, len(features))
	copy(sortedFeatures, features)
	sort.Strings(sortedFeatures)
	for _, feature := range sortedFeatures {
		sb.WriteString(feature)
		sb.WriteString("<")
	}

	sortedForms := make([]*xep0004.DataForm, 0, len(forms))
	for _, form := range forms {
		if len(form.Fields.ValueForFieldOfType(xep0004.FormType, xep0004.Hidden)) > 0 {
			sortedForms = append(sortedForms, form)
		}
	}
	sort.Slice(sortedForms, func(i, j int) bool {
		return sortedForms[i].Fields.ValueForFieldOfType(xep0004.FormType, xep0004.Hidden) <
			sortedForms[j].Fields.ValueForFieldOfType(xep0004.FormType, xep0004.Hidden)
	})
	for _, form := range sortedForms {
		sb.WriteString(form.Fields.ValueForFieldOfType(xep0004.FormType, xep0004.Hidden))
		sb.WriteString("<")

		fields := make([]xep0004.Field, 0, len(form.Fields))
		for _, field := range form.Fields {
			if field.Var != xep0004.FormType {
				fields = append(fields, field)
			}
		}
		sort.Slice(fields, func(i, j int) bool { return fields[i].Var < fields[j].Var })
		for _, field := range fields {
			sb.WriteString(field.Var)
			sb.WriteString("<")

			values := make([]string, len(field.Values))
			copy(values, field.Values)
			sort.Strings(values)
			for _, value := range values {
				sb.WriteString(value)
				sb.WriteString("<")
			}
		}
	}

	h := sha1.Sum([]byte(sb.String()))
	return base64.StdEncoding.EncodeToString(h[:])
}

// formsFromElement extracts every extended info form attached to a
// disco#info query element.
func formsFromElement(elem xmpp.XElement) []*xep0004.DataForm {
	q := elem.Elements().Child("query")
	if q == nil {
		return nil
	}
	var forms []*xep0004.DataForm
	for _, formEl := range q.Elements().ChildrenNamespace("x", xep0004.FormNamespace) {
		form, err := xep0004.NewFormFromElement(formEl)
		if err != nil {
			continue
		}
		forms = append(forms, form)
	}
	return forms
}
