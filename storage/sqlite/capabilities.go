/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"

	capsmodel "github.com/parley-im/parley/model/capsmodel"
)

type sqliteCapabilities struct {
	*sqliteStorage
}

func newCapabilities(db *sql.DB) *sqliteCapabilities {
	return &sqliteCapabilities{
		sqliteStorage: newStorage(db),
	}
}

func (s *sqliteCapabilities) UpsertCapabilities(ctx context.Context, caps *capsmodel.Capabilities) error {
	identities, err := json.Marshal(caps.Identities)
	if err != nil {
		return err
	}
	features, err := json.Marshal(caps.Features)
	if err != nil {
		return err
	}
	_, err = s.inBreaker(func() (interface{}, error) {
		return sq.Insert("capabilities").
			Columns("node", "ver", "identities", "features", "updated_at").
			Values(caps.Node, caps.Ver, identities, features, time.Now()).
			Suffix("ON CONFLICT (node, ver) DO UPDATE SET identities = ?, features = ?, updated_at = ?", identities, features, time.Now()).
			RunWith(s.db).ExecContext(ctx)
	})
	return err
}

func (s *sqliteCapabilities) FetchCapabilities(ctx context.Context, node, ver string) (*capsmodel.Capabilities, error) {
	res, err := s.inBreaker(func() (interface{}, error) {
		var identities, features string

		err := sq.Select("identities", "features").From("capabilities").
			Where(sq.And{sq.Eq{"node": node}, sq.Eq{"ver": ver}}).
			RunWith(s.db).QueryRowContext(ctx).Scan(&identities, &features)
		switch err {
		case nil:
			caps := capsmodel.Capabilities{Node: node, Ver: ver}
			if err := json.Unmarshal([]byte(identities), &caps.Identities); err != nil {
				return nil, err
			}
			if err := json.Unmarshal([]byte(features), &caps.Features); err != nil {
				return nil, err
			}
			return &caps, nil
		case sql.ErrNoRows:
			return nil, nil
		default:
			return nil, err
		}
	})
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nil
	}
	return res.(*capsmodel.Capabilities), nil
}
