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

// Package boltmigration imports user state from the Bolt database used by
// firmware before the switch to SQLite.
package boltmigration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/GlowclockProject/glowclock-core/pkg/config"
	"github.com/GlowclockProject/glowclock-core/pkg/database/userdb"
	"github.com/rs/zerolog/log"
	bolt "go.etcd.io/bbolt"
)

const (
	BucketState  = "state"
	KeyUserState = "user"
)

// UserState mirrors the JSON layout the legacy firmware stored.
type UserState struct {
	Mode  string `json:"mode"`
	Color string `json:"color"`
}

func dbFile(dataDir string) string {
	return filepath.Join(dataDir, config.LegacyStateFile)
}

func Exists(dataDir string) bool {
	_, err := os.Stat(dbFile(dataDir))
	return err == nil
}

type Database struct {
	bdb *bolt.DB
}

func Open(dataDir string) (*Database, error) {
	db, err := bolt.Open(dbFile(dataDir), 0o600, &bolt.Options{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	return &Database{bdb: db}, nil
}

func (d *Database) Close() error {
	if err := d.bdb.Close(); err != nil {
		return fmt.Errorf("failed to close bolt database: %w", err)
	}
	return nil
}

// UserState reads the saved display state. found is false when the legacy
// file never recorded one.
func (d *Database) UserState() (state UserState, found bool, err error) {
	err = d.bdb.View(func(txn *bolt.Tx) error {
		b := txn.Bucket([]byte(BucketState))
		if b == nil {
			return nil
		}

		v := b.Get([]byte(KeyUserState))
		if v == nil {
			return nil
		}

		if unmarshalErr := json.Unmarshal(v, &state); unmarshalErr != nil {
			return fmt.Errorf("failed to unmarshal user state data: %w", unmarshalErr)
		}
		found = true

		return nil
	})
	if err != nil {
		return state, false, fmt.Errorf("failed to view bolt database: %w", err)
	}

	return state, found, nil
}

// MaybeMigrate copies user state out of a legacy Bolt file into the SQLite
// user database, then renames the legacy file aside so migration runs once.
// A missing legacy file is not an error.
func MaybeMigrate(dataDir string, newDB *userdb.UserDB) error {
	if !Exists(dataDir) {
		return nil
	}

	oldDB, err := Open(dataDir)
	if err != nil {
		return err
	}
	defer func(oldDB *Database) {
		closeErr := oldDB.Close()
		if closeErr != nil {
			log.Warn().Msgf("error closing old DB: %s", closeErr)
		}
	}(oldDB)

	state, found, err := oldDB.UserState()

	oldDBPath := dbFile(dataDir)
	if err != nil {
		log.Warn().Msgf("error reading legacy state: %s", err)
		if renameErr := os.Rename(oldDBPath, oldDBPath+".error"); renameErr != nil {
			return fmt.Errorf("failed to rename old database file to .error: %w", renameErr)
		}
		return nil
	}

	if found {
		if saveErr := newDB.SaveUserState(state.Mode, state.Color); saveErr != nil {
			return fmt.Errorf("failed to save migrated user state: %w", saveErr)
		}
		log.Info().
			Str("mode", state.Mode).
			Str("color", state.Color).
			Msg("successfully migrated legacy user state")
	}

	if renameErr := os.Rename(oldDBPath, oldDBPath+".migrated"); renameErr != nil {
		return fmt.Errorf("failed to rename old database file to .migrated: %w", renameErr)
	}

	return nil
}
