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

package database

import (
	"database/sql"
	"time"
)

// Database is a portable bundle of database handles for API bindings.
type Database struct {
	UserDB UserDBI
}

// HistoryEntry is one recorded user state change.
//
// Entries written before the system clock has synced carry the boot UUID
// and seconds-since-boot so their wall times can be reconstructed later.
// See UserDBI.HealTimestamps.
type HistoryEntry struct {
	Time           time.Time `json:"time"`
	CreatedAt      time.Time `json:"createdAt"`
	ID             string    `json:"id"`
	Mode           string    `json:"mode"`
	Color          string    `json:"color"`
	BootUUID       string    `json:"bootUuid"`
	DBID           int64     `db:"DBID" json:"-"`
	MonotonicStart int64     `json:"-"`
	ClockReliable  bool      `json:"clockReliable"`
}

// ResourceError is one recorded hardware resource failure, kept on-device
// for diagnostics after the notification that reported it is long gone.
type ResourceError struct {
	Time     time.Time `json:"time"`
	Resource string    `json:"resource"`
	Message  string    `json:"message"`
	DBID     int64     `db:"DBID" json:"-"`
}

// GenericDBI is the lifecycle surface shared by database implementations.
type GenericDBI interface {
	Open() error
	UnsafeGetSQLDb() *sql.DB
	Truncate() error
	Allocate() error
	MigrateUp() error
	Vacuum() error
	Close() error
	GetDBPath() string
}

type UserDBI interface {
	GenericDBI
	AddHistory(entry *HistoryEntry) error
	GetHistory(lastID, limit int) ([]HistoryEntry, error)
	CleanupHistory(retentionDays int) (int64, error)
	HealTimestamps(bootUUID string, trueBootTime time.Time) (int64, error)
	SaveUserState(mode, color string) error
	SavedUserState() (mode, color string, err error)
	LogResourceError(entry *ResourceError) error
	GetResourceErrors(limit int) ([]ResourceError, error)
	CleanupResourceErrors(retentionDays int) (int64, error)
}
