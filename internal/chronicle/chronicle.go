// Package chronicle keeps an append-only SQLite journal of simulation
// events for the history surface. It records what happened; it never
// restores simulation state.
package chronicle

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"hearthstead/internal/engine"
)

// Journal wraps a SQLite connection holding the event log.
type Journal struct {
	conn *sqlx.DB
}

// Open opens or creates the journal database at the given path.
func Open(path string) (*Journal, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	j := &Journal{conn: conn}
	if err := j.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.conn.Close()
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		kind TEXT NOT NULL,
		message TEXT NOT NULL,
		notification_type TEXT NOT NULL DEFAULT '',
		amount INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	`
	_, err := j.conn.Exec(schema)
	return err
}

// Append writes a batch of drained engine events in one transaction.
func (j *Journal) Append(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := j.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (tick, kind, message, notification_type, amount) VALUES (?, ?, ?, ?, ?)",
			e.Tick, string(e.Kind), e.Message, e.NotificationType, e.Amount,
		)
		if err != nil {
			return fmt.Errorf("append event: %w", err)
		}
	}
	return tx.Commit()
}

// row mirrors the events table for sqlx scanning.
type row struct {
	Tick             uint64 `db:"tick"`
	Kind             string `db:"kind"`
	Message          string `db:"message"`
	NotificationType string `db:"notification_type"`
	Amount           int    `db:"amount"`
}

// Recent returns the most recent N events, newest first.
func (j *Journal) Recent(limit int) ([]engine.Event, error) {
	var rows []row
	err := j.conn.Select(&rows,
		"SELECT tick, kind, message, notification_type, amount FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	out := make([]engine.Event, len(rows))
	for i, r := range rows {
		out[i] = engine.Event{
			Tick:             r.Tick,
			Kind:             engine.EventKind(r.Kind),
			Message:          r.Message,
			NotificationType: r.NotificationType,
			Amount:           r.Amount,
		}
	}
	return out, nil
}
