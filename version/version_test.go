/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package version_test

import (
	"testing"

	"github.com/parley-im/parley/version"
	"github.com/stretchr/testify/assert"
)

func TestNewVersion(t *testing.T) {
	v1 := version.NewVersion(1, 9, 2)
	assert.Equal(t, "v1.9.2", v1.String())
}

func TestIsEqual(t *testing.T) {
	v1 := version.NewVersion(1, 9, 2)
	v2 := version.NewVersion(1, 9, 2)
	v3 := version.NewVersion(1, 8, 2)
	assert.True(t, v1.IsEqual(v2))
	assert.True(t, v1.IsEqual(v1))
	assert.False(t, v1.IsEqual(v3))
}

func TestIsGreater(t *testing.T) {
	v1 := version.NewVersion(1, 9, 2)
	assert.True(t, version.NewVersion(1, 9, 3).IsGreater(v1))
	assert.True(t, version.NewVersion(1, 10, 2).IsGreater(v1))
	assert.True(t, version.NewVersion(2, 9, 2).IsGreater(v1))
	assert.False(t, version.NewVersion(1, 9, 1).IsGreater(v1))
	assert.False(t, v1.IsGreater(v1))
}

func TestIsLess(t *testing.T) {
	v1 := version.NewVersion(1, 9, 2)
	assert.True(t, version.NewVersion(1, 9, 1).IsLess(v1))
	assert.True(t, version.NewVersion(0, 9, 2).IsLess(v1))
	assert.False(t, v1.IsLess(v1))
}
