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

// Package helpers provides testing utilities shared across packages.
//
// This package includes mock implementations of the database interfaces and
// helper functions for setting up test fixtures. It enables testing database
// callers without a real SQLite database on disk.
//
// Example usage:
//
//	func TestDatabaseOperations(t *testing.T) {
//		userDB := helpers.NewMockUserDBI()
//
//		userDB.On("AddHistory", helpers.HistoryEntryMatcher()).Return(nil)
//
//		err := MyFunction(userDB)
//
//		require.NoError(t, err)
//		userDB.AssertExpectations(t)
//	}
package helpers

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/GlowclockProject/glowclock-core/pkg/database"
	"github.com/stretchr/testify/mock"
)

// MockUserDBI is a mock implementation of the UserDBI interface using testify/mock
type MockUserDBI struct {
	mock.Mock
}

// NewMockUserDBI creates a new mock UserDBI interface for testing.
func NewMockUserDBI() *MockUserDBI {
	return &MockUserDBI{}
}

// GenericDBI methods
func (m *MockUserDBI) Open() error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock UserDBI open failed: %w", err)
	}
	return nil
}

func (m *MockUserDBI) UnsafeGetSQLDb() *sql.DB {
	args := m.Called()
	if db, ok := args.Get(0).(*sql.DB); ok {
		return db
	}
	return nil
}

func (m *MockUserDBI) Truncate() error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock UserDBI truncate failed: %w", err)
	}
	return nil
}

func (m *MockUserDBI) Allocate() error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock UserDBI allocate failed: %w", err)
	}
	return nil
}

func (m *MockUserDBI) MigrateUp() error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock UserDBI migrate up failed: %w", err)
	}
	return nil
}

func (m *MockUserDBI) Vacuum() error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock UserDBI vacuum failed: %w", err)
	}
	return nil
}

func (m *MockUserDBI) Close() error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock UserDBI close failed: %w", err)
	}
	return nil
}

func (m *MockUserDBI) GetDBPath() string {
	args := m.Called()
	return args.String(0)
}

// UserDBI specific methods
func (m *MockUserDBI) AddHistory(entry *database.HistoryEntry) error {
	args := m.Called(entry)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock UserDBI add history failed: %w", err)
	}
	return nil
}

func (m *MockUserDBI) GetHistory(lastID, limit int) ([]database.HistoryEntry, error) {
	args := m.Called(lastID, limit)
	if history, ok := args.Get(0).([]database.HistoryEntry); ok {
		if err := args.Error(1); err != nil {
			return history, fmt.Errorf("mock UserDBI get history failed: %w", err)
		}
		return history, nil
	}
	if err := args.Error(1); err != nil {
		return nil, fmt.Errorf("mock UserDBI get history failed: %w", err)
	}
	return nil, nil
}

func (m *MockUserDBI) CleanupHistory(retentionDays int) (int64, error) {
	args := m.Called(retentionDays)
	if deleted, ok := args.Get(0).(int64); ok {
		if err := args.Error(1); err != nil {
			return deleted, fmt.Errorf("mock UserDBI cleanup history failed: %w", err)
		}
		return deleted, nil
	}
	if err := args.Error(1); err != nil {
		return 0, fmt.Errorf("mock UserDBI cleanup history failed: %w", err)
	}
	return 0, nil
}

func (m *MockUserDBI) HealTimestamps(bootUUID string, trueBootTime time.Time) (int64, error) {
	args := m.Called(bootUUID, trueBootTime)
	if healed, ok := args.Get(0).(int64); ok {
		if err := args.Error(1); err != nil {
			return healed, fmt.Errorf("mock UserDBI heal timestamps failed: %w", err)
		}
		return healed, nil
	}
	if err := args.Error(1); err != nil {
		return 0, fmt.Errorf("mock UserDBI heal timestamps failed: %w", err)
	}
	return 0, nil
}

func (m *MockUserDBI) LogResourceError(entry *database.ResourceError) error {
	args := m.Called(entry)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock UserDBI log resource error failed: %w", err)
	}
	return nil
}

func (m *MockUserDBI) GetResourceErrors(limit int) ([]database.ResourceError, error) {
	args := m.Called(limit)
	if errorsList, ok := args.Get(0).([]database.ResourceError); ok {
		if err := args.Error(1); err != nil {
			return errorsList, fmt.Errorf("mock UserDBI get resource errors failed: %w", err)
		}
		return errorsList, nil
	}
	if err := args.Error(1); err != nil {
		return nil, fmt.Errorf("mock UserDBI get resource errors failed: %w", err)
	}
	return nil, nil
}

func (m *MockUserDBI) CleanupResourceErrors(retentionDays int) (int64, error) {
	args := m.Called(retentionDays)
	if deleted, ok := args.Get(0).(int64); ok {
		if err := args.Error(1); err != nil {
			return deleted, fmt.Errorf("mock UserDBI cleanup resource errors failed: %w", err)
		}
		return deleted, nil
	}
	if err := args.Error(1); err != nil {
		return 0, fmt.Errorf("mock UserDBI cleanup resource errors failed: %w", err)
	}
	return 0, nil
}

func (m *MockUserDBI) SaveUserState(mode, color string) error {
	args := m.Called(mode, color)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock UserDBI save user state failed: %w", err)
	}
	return nil
}

func (m *MockUserDBI) SavedUserState() (mode, color string, err error) {
	args := m.Called()
	if err := args.Error(2); err != nil {
		return args.String(0), args.String(1), fmt.Errorf("mock UserDBI saved user state failed: %w", err)
	}
	return args.String(0), args.String(1), nil
}

// HistoryEntryMatcher returns a testify matcher for database.HistoryEntry.
// This matcher can be used to verify that AddHistory is called with
// appropriate data.
//
// Example usage:
//
//	userDB.On("AddHistory", helpers.HistoryEntryMatcher()).Return(nil)
func HistoryEntryMatcher() any {
	return mock.MatchedBy(func(he *database.HistoryEntry) bool {
		if he == nil {
			return false
		}
		// Basic validation - entry has required fields
		return !he.Time.IsZero() && he.ID != "" && he.Mode != ""
	})
}
