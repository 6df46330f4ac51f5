/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package capsmodel

// Identity represents a single entity identity as advertised
// through service discovery.
type Identity struct {
	Category string `json:"category"`
	Type     string `json:"type"`
	Name     string `json:"name,omitempty"`
}

// Capabilities represents an entity capabilities record.
type Capabilities struct {
	Node       string     `json:"node"`
	Ver        string     `json:"ver"`
	Identities []Identity `json:"identities,omitempty"`
	Features   []string   `json:"features,omitempty"`
}

// HasFeature returns whether or not a Capabilities instance contains f feature.
func (c *Capabilities) HasFeature(f string) bool {
	for _, cf := range c.Features {
		if cf == f {
			return true
		}
	}
	return false
}
