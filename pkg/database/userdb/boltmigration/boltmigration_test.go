// Glowclock Core
// Copyright (c) 2026 The Glowclock Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Glowclock Core.
//
// Glowclock Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Glowclock Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Glowclock Core.  If not, see <http://www.gnu.org/licenses/>.

package boltmigration

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/GlowclockProject/glowclock-core/pkg/database/userdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func writeLegacyDB(t *testing.T, dataDir string, state *UserState) {
	t.Helper()

	db, err := bolt.Open(dbFile(dataDir), 0o600, &bolt.Options{})
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	err = db.Update(func(txn *bolt.Tx) error {
		if state == nil {
			return nil
		}
		b, bucketErr := txn.CreateBucketIfNotExists([]byte(BucketState))
		if bucketErr != nil {
			return bucketErr
		}
		data, marshalErr := json.Marshal(state)
		if marshalErr != nil {
			return marshalErr
		}
		return b.Put([]byte(KeyUserState), data)
	})
	require.NoError(t, err)
}

func newSQLiteDB(t *testing.T) *userdb.UserDB {
	t.Helper()

	db, err := userdb.OpenUserDB(context.Background(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMaybeMigrateNoLegacyFile(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()
	newDB := newSQLiteDB(t)

	require.NoError(t, MaybeMigrate(dataDir, newDB))

	mode, color, err := newDB.SavedUserState()
	require.NoError(t, err)
	assert.Empty(t, mode)
	assert.Empty(t, color)
}

func TestMaybeMigrateCopiesState(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()
	writeLegacyDB(t, dataDir, &UserState{Mode: "weather", Color: "#abcdef"})
	newDB := newSQLiteDB(t)

	require.NoError(t, MaybeMigrate(dataDir, newDB))

	mode, color, err := newDB.SavedUserState()
	require.NoError(t, err)
	assert.Equal(t, "weather", mode)
	assert.Equal(t, "#abcdef", color)

	// Legacy file renamed aside so migration only runs once
	_, err = os.Stat(dbFile(dataDir))
	require.Error(t, err)
	_, err = os.Stat(dbFile(dataDir) + ".migrated")
	assert.NoError(t, err)
	assert.False(t, Exists(dataDir))
}

func TestMaybeMigrateEmptyLegacyFile(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()
	writeLegacyDB(t, dataDir, nil)
	newDB := newSQLiteDB(t)

	require.NoError(t, MaybeMigrate(dataDir, newDB))

	mode, color, err := newDB.SavedUserState()
	require.NoError(t, err)
	assert.Empty(t, mode)
	assert.Empty(t, color)

	_, err = os.Stat(dbFile(dataDir) + ".migrated")
	assert.NoError(t, err)
}
