/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package repository

import (
	"context"

	capsmodel "github.com/parley-im/parley/model/capsmodel"
)

// Capabilities defines capabilities repository operations.
type Capabilities interface {

	// UpsertCapabilities inserts capabilities associated to a node+ver pair,
	// or updates them if previously inserted.
	UpsertCapabilities(ctx context.Context, caps *capsmodel.Capabilities) error

	// FetchCapabilities fetches capabilities associated to a given node and ver.
	FetchCapabilities(ctx context.Context, node, ver string) (*capsmodel.Capabilities, error)
}
