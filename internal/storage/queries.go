package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/pable/faceitwatch/internal/roster"
)

var _ roster.Store = (*DB)(nil)

// Load returns the tracked nicknames in the order they were added.
func (db *DB) Load(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT nickname FROM tracked_players ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var nick string
		if err := rows.Scan(&nick); err != nil {
			return nil, err
		}
		out = append(out, nick)
	}
	return out, rows.Err()
}

// Add appends a nickname to the roster.
func (db *DB) Add(ctx context.Context, nickname string) error {
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO tracked_players(nickname, added_at) VALUES (?, ?)
		ON CONFLICT(nickname) DO NOTHING`,
		nickname, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert tracked player: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", nickname, roster.ErrAlreadyTracked)
	}
	return nil
}

// Remove deletes a nickname from the roster.
func (db *DB) Remove(ctx context.Context, nickname string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM tracked_players WHERE nickname = ?`, nickname)
	if err != nil {
		return fmt.Errorf("delete tracked player: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", nickname, roster.ErrNotTracked)
	}
	return nil
}
