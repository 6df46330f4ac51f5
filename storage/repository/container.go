/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package repository

import "context"

// Container interface brings together all repository instances.
type Container interface {
	// Capabilities returns the repository.Capabilities concrete implementation.
	Capabilities() Capabilities

	// Close closes underlying storage resources, commonly shared across repositories.
	Close(ctx context.Context) error
}
