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

package userdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/GlowclockProject/glowclock-core/pkg/config"
	"github.com/GlowclockProject/glowclock-core/pkg/database"
	_ "github.com/mattn/go-sqlite3"
)

var ErrNullSQL = errors.New("UserDB is not connected")

const sqliteConnParams = "?_journal_mode=WAL&_synchronous=FULL&_busy_timeout=5000"

// UserDB stores persistent user data: the last selected display state and
// the history of state changes.
type UserDB struct {
	sql     *sql.DB
	ctx     context.Context
	dataDir string
}

func OpenUserDB(ctx context.Context, dataDir string) (*UserDB, error) {
	db := &UserDB{sql: nil, dataDir: dataDir, ctx: ctx}
	err := db.Open()
	return db, err
}

func (db *UserDB) Open() error {
	exists := true
	dbPath := db.GetDBPath()
	_, err := os.Stat(dbPath)
	if err != nil {
		exists = false
		mkdirErr := os.MkdirAll(filepath.Dir(dbPath), 0o750)
		if mkdirErr != nil {
			return fmt.Errorf("failed to create directory for database: %w", mkdirErr)
		}
	}
	sqlInstance, err := sql.Open("sqlite3", dbPath+sqliteConnParams)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.sql = sqlInstance
	if !exists {
		return db.Allocate()
	}
	return nil
}

func (db *UserDB) GetDBPath() string {
	return filepath.Join(db.dataDir, config.UserDbFile)
}

func (db *UserDB) UnsafeGetSQLDb() *sql.DB {
	return db.sql
}

func (db *UserDB) Truncate() error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlTruncate(db.ctx, db.sql)
}

func (db *UserDB) Allocate() error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlAllocate(db.sql)
}

func (db *UserDB) MigrateUp() error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlMigrateUp(db.sql)
}

func (db *UserDB) Vacuum() error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlVacuum(db.ctx, db.sql)
}

func (db *UserDB) CleanupHistory(retentionDays int) (int64, error) {
	if db.sql == nil {
		return 0, ErrNullSQL
	}
	return sqlCleanupHistory(db.ctx, db.sql, retentionDays)
}

func (db *UserDB) Close() error {
	if db.sql == nil {
		return nil
	}
	err := db.sql.Close()
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// SetSQLForTesting allows injection of a sql.DB instance for testing purposes.
// This method should only be used in tests to set up in-memory databases.
func (db *UserDB) SetSQLForTesting(ctx context.Context, sqlDB *sql.DB, dataDir string) error {
	db.sql = sqlDB
	db.dataDir = dataDir
	db.ctx = ctx

	// Initialize the database schema
	return db.Allocate()
}

func (db *UserDB) AddHistory(entry *database.HistoryEntry) error {
	return sqlAddHistory(db.ctx, db.sql, *entry)
}

func (db *UserDB) GetHistory(lastID, limit int) ([]database.HistoryEntry, error) {
	return sqlGetHistoryWithOffset(db.ctx, db.sql, lastID, limit)
}

// HealTimestamps corrects history entries recorded before the system clock
// synced. Entries from the given boot session are rewritten relative to the
// true boot time derived once NTP sync lands.
func (db *UserDB) HealTimestamps(bootUUID string, trueBootTime time.Time) (int64, error) {
	if db.sql == nil {
		return 0, ErrNullSQL
	}
	return sqlHealTimestamps(db.ctx, db.sql, bootUUID, trueBootTime)
}

// LogResourceError records a hardware resource failure for diagnostics.
func (db *UserDB) LogResourceError(entry *database.ResourceError) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlLogResourceError(db.ctx, db.sql, *entry)
}

// GetResourceErrors returns the most recent resource failures, newest first.
func (db *UserDB) GetResourceErrors(limit int) ([]database.ResourceError, error) {
	if db.sql == nil {
		return nil, ErrNullSQL
	}
	return sqlGetResourceErrors(db.ctx, db.sql, limit)
}

func (db *UserDB) CleanupResourceErrors(retentionDays int) (int64, error) {
	if db.sql == nil {
		return 0, ErrNullSQL
	}
	return sqlCleanupResourceErrors(db.ctx, db.sql, retentionDays)
}

// SaveUserState persists the display mode and color so they survive restarts.
func (db *UserDB) SaveUserState(mode, color string) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlSaveUserState(db.ctx, db.sql, mode, color)
}

// SavedUserState returns the last persisted display mode and color, or empty
// strings for values never saved.
func (db *UserDB) SavedUserState() (mode, color string, err error) {
	if db.sql == nil {
		return "", "", ErrNullSQL
	}
	return sqlSavedUserState(db.ctx, db.sql)
}
