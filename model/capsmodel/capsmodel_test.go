/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package capsmodel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCapabilitiesHasFeature(t *testing.T) {
	c := Capabilities{Node: "n", Ver: "v", Features: []string{"ns1", "ns2"}}

	require.True(t, c.HasFeature("ns2"))
	require.False(t, c.HasFeature("ns3"))
}
