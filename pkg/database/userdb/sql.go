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
	"embed"
	"fmt"
	"time"

	"github.com/GlowclockProject/glowclock-core/pkg/database"
	"github.com/rs/zerolog/log"
)

// Queries go here to keep the interface clean

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Settings table keys.
const (
	SettingMode  = "Mode"
	SettingColor = "Color"
)

const (
	defaultHistoryPageSize       = 25
	defaultResourceErrorPageSize = 50
)

func sqlMigrateUp(db *sql.DB) error {
	if err := database.MigrateUp(db, migrationFiles, "migrations"); err != nil {
		return fmt.Errorf("failed to run user database migrations: %w", err)
	}
	return nil
}

func sqlAllocate(db *sql.DB) error {
	return sqlMigrateUp(db)
}

//goland:noinspection SqlWithoutWhere
func sqlTruncate(ctx context.Context, db *sql.DB) error {
	sqlStmt := `
	delete from History;
	delete from ResourceErrors;
	delete from Settings;
	vacuum;
	`
	_, err := db.ExecContext(ctx, sqlStmt)
	if err != nil {
		return fmt.Errorf("failed to truncate database: %w", err)
	}
	return nil
}

func sqlVacuum(ctx context.Context, db *sql.DB) error {
	sqlStmt := `
	vacuum;
	`
	_, err := db.ExecContext(ctx, sqlStmt)
	if err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	return nil
}

func sqlCleanupHistory(ctx context.Context, db *sql.DB, retentionDays int) (int64, error) {
	cutoffTime := time.Now().AddDate(0, 0, -retentionDays).Unix()

	stmt, err := db.PrepareContext(ctx, `DELETE FROM History WHERE Time < ?;`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare history cleanup statement: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	result, err := stmt.ExecContext(ctx, cutoffTime)
	if err != nil {
		return 0, fmt.Errorf("failed to execute history cleanup: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	// Vacuum to reclaim disk space after cleanup
	if rowsAffected > 0 {
		if err := sqlVacuum(ctx, db); err != nil {
			return rowsAffected, fmt.Errorf("cleanup succeeded but vacuum failed: %w", err)
		}
	}

	return rowsAffected, nil
}

//nolint:gocritic // struct passed for DB insertion
func sqlAddHistory(ctx context.Context, db *sql.DB, entry database.HistoryEntry) error {
	stmt, err := db.PrepareContext(ctx, `
		insert into History(
			ID, Time, Mode, Color, ClockReliable, BootUUID, MonotonicStart, CreatedAt
		) values (?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare history insert statement: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()
	_, err = stmt.ExecContext(ctx,
		entry.ID,
		entry.Time.Unix(),
		entry.Mode,
		entry.Color,
		entry.ClockReliable,
		entry.BootUUID,
		entry.MonotonicStart,
		entry.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to execute history insert: %w", err)
	}
	return nil
}

func sqlGetHistoryWithOffset(ctx context.Context, db *sql.DB, lastID, limit int) ([]database.HistoryEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryPageSize
	}
	list := make([]database.HistoryEntry, 0, limit)
	// Instead of offset, use token-based
	if lastID == 0 {
		lastID = 2147483646
	}

	q, err := db.PrepareContext(ctx, `
		select
		DBID, ID, Time, Mode, Color, ClockReliable, BootUUID, MonotonicStart, CreatedAt
		from History
		where DBID < ?
		order by DBID DESC
		limit ?;
	`)
	if err != nil {
		return list, fmt.Errorf("failed to prepare history query statement: %w", err)
	}
	defer func() {
		if closeErr := q.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	rows, err := q.QueryContext(ctx, lastID, limit)
	if err != nil {
		return list, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql rows")
		}
	}()
	for rows.Next() {
		row := database.HistoryEntry{}
		var timeInt, createdInt int64
		scanErr := rows.Scan(
			&row.DBID,
			&row.ID,
			&timeInt,
			&row.Mode,
			&row.Color,
			&row.ClockReliable,
			&row.BootUUID,
			&row.MonotonicStart,
			&createdInt,
		)
		if scanErr != nil {
			return list, fmt.Errorf("failed to scan history row: %w", scanErr)
		}
		row.Time = time.Unix(timeInt, 0)
		row.CreatedAt = time.Unix(createdInt, 0)
		list = append(list, row)
	}
	if err = rows.Err(); err != nil {
		return list, fmt.Errorf("error iterating history rows: %w", err)
	}
	return list, nil
}

func sqlHealTimestamps(ctx context.Context, db *sql.DB, bootUUID string, trueBootTime time.Time) (int64, error) {
	trueBootUnix := trueBootTime.Unix()

	stmt, err := db.PrepareContext(ctx, `
		UPDATE History
		SET Time = ? + MonotonicStart,
		    ClockReliable = 1,
		    CreatedAt = ? + MonotonicStart
		WHERE BootUUID = ? AND ClockReliable = 0;
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare history heal statement: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	result, err := stmt.ExecContext(ctx, trueBootUnix, trueBootUnix, bootUUID)
	if err != nil {
		return 0, fmt.Errorf("failed to heal history timestamps: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected > 0 {
		log.Info().
			Int64("history_healed", rowsAffected).
			Str("boot_uuid", bootUUID).
			Msg("healed timestamps for records created with unreliable clock")
	}

	return rowsAffected, nil
}

//nolint:gocritic // struct passed for DB insertion
func sqlLogResourceError(ctx context.Context, db *sql.DB, entry database.ResourceError) error {
	stmt, err := db.PrepareContext(ctx, `
		insert into ResourceErrors(Time, Resource, Message) values (?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare resource error insert statement: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()
	_, err = stmt.ExecContext(ctx, entry.Time.Unix(), entry.Resource, entry.Message)
	if err != nil {
		return fmt.Errorf("failed to execute resource error insert: %w", err)
	}
	return nil
}

func sqlGetResourceErrors(ctx context.Context, db *sql.DB, limit int) ([]database.ResourceError, error) {
	if limit <= 0 {
		limit = defaultResourceErrorPageSize
	}
	list := make([]database.ResourceError, 0, limit)

	q, err := db.PrepareContext(ctx, `
		select DBID, Time, Resource, Message
		from ResourceErrors
		order by DBID DESC
		limit ?;
	`)
	if err != nil {
		return list, fmt.Errorf("failed to prepare resource error query statement: %w", err)
	}
	defer func() {
		if closeErr := q.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	rows, err := q.QueryContext(ctx, limit)
	if err != nil {
		return list, fmt.Errorf("failed to query resource errors: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql rows")
		}
	}()
	for rows.Next() {
		row := database.ResourceError{}
		var timeInt int64
		scanErr := rows.Scan(&row.DBID, &timeInt, &row.Resource, &row.Message)
		if scanErr != nil {
			return list, fmt.Errorf("failed to scan resource error row: %w", scanErr)
		}
		row.Time = time.Unix(timeInt, 0)
		list = append(list, row)
	}
	if err = rows.Err(); err != nil {
		return list, fmt.Errorf("error iterating resource error rows: %w", err)
	}
	return list, nil
}

func sqlCleanupResourceErrors(ctx context.Context, db *sql.DB, retentionDays int) (int64, error) {
	cutoffTime := time.Now().AddDate(0, 0, -retentionDays).Unix()

	stmt, err := db.PrepareContext(ctx, `DELETE FROM ResourceErrors WHERE Time < ?;`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare resource error cleanup statement: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	result, err := stmt.ExecContext(ctx, cutoffTime)
	if err != nil {
		return 0, fmt.Errorf("failed to execute resource error cleanup: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

func sqlSaveUserState(ctx context.Context, db *sql.DB, mode, color string) error {
	// Multi-row upsert keeps mode and color atomic without a transaction
	stmt, err := db.PrepareContext(ctx, `
		INSERT OR REPLACE INTO Settings (Name, Value)
		VALUES (?, ?), (?, ?);
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare user state upsert statement: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	_, err = stmt.ExecContext(ctx, SettingMode, mode, SettingColor, color)
	if err != nil {
		return fmt.Errorf("failed to execute user state upsert: %w", err)
	}
	return nil
}

func sqlSavedUserState(ctx context.Context, db *sql.DB) (mode, color string, err error) {
	rows, err := db.QueryContext(ctx, `
		SELECT Name, Value FROM Settings WHERE Name IN (?, ?);
	`, SettingMode, SettingColor)
	if err != nil {
		return "", "", fmt.Errorf("failed to query user state settings: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql rows")
		}
	}()

	for rows.Next() {
		var name, value string
		if scanErr := rows.Scan(&name, &value); scanErr != nil {
			return "", "", fmt.Errorf("failed to scan settings row: %w", scanErr)
		}
		switch name {
		case SettingMode:
			mode = value
		case SettingColor:
			color = value
		}
	}
	if err = rows.Err(); err != nil {
		return "", "", fmt.Errorf("error iterating settings rows: %w", err)
	}
	return mode, color, nil
}
