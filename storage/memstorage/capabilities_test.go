/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package memstorage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	capsmodel "github.com/parley-im/parley/model/capsmodel"
)

func TestMemoryStorageCapabilities(t *testing.T) {
	s := New()
	defer func() { _ = s.Close(context.Background()) }()

	caps := capsmodel.Capabilities{
		Node:     "http://parley.im",
		Ver:      "1234A",
		Features: []string{"urn:xmpp:ping"},
	}
	require.Nil(t, s.Capabilities().UpsertCapabilities(context.Background(), &caps))

	fetched, err := s.Capabilities().FetchCapabilities(context.Background(), "http://parley.im", "1234A")
	require.Nil(t, err)
	require.NotNil(t, fetched)
	require.Equal(t, caps.Features, fetched.Features)

	fetched, err = s.Capabilities().FetchCapabilities(context.Background(), "http://parley.im", "ZZZZ")
	require.Nil(t, err)
	require.Nil(t, fetched)

	s.EnableMockedError()
	_, err = s.Capabilities().FetchCapabilities(context.Background(), "http://parley.im", "1234A")
	require.Equal(t, ErrMocked, err)
	require.Equal(t, ErrMocked, s.Capabilities().UpsertCapabilities(context.Background(), &caps))
	s.DisableMockedError()
}
