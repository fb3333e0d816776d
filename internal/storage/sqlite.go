package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/easeaico/feelings/internal/feelings"
)

// SQLiteStore keeps snapshots in normalized SQLite tables.
type SQLiteStore struct {
	conn *sqlx.DB
}

type snapshotRow struct {
	Key     string `db:"key"`
	Version string `db:"version"`
	TakenAt string `db:"taken_at"`
}

type feelingRow struct {
	Name  string  `db:"name"`
	Value float64 `db:"value"`
}

type effectRow struct {
	GroupPosition int     `db:"group_position"`
	Source        string  `db:"source"`
	Target        string  `db:"target"`
	Ratio         float64 `db:"ratio"`
}

// NewSQLiteStore opens or creates the database at path and migrates it.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	s := &SQLiteStore{conn: conn}
	if err := s.Migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
	}
	return s, nil
}

// Migrate creates the snapshot tables if they do not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		key TEXT PRIMARY KEY,
		version TEXT NOT NULL,
		taken_at TEXT NOT NULL,
		saved_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshot_feelings (
		key TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		value REAL NOT NULL,
		PRIMARY KEY (key, position)
	);

	CREATE TABLE IF NOT EXISTS snapshot_effects (
		key TEXT NOT NULL,
		group_position INTEGER NOT NULL,
		position INTEGER NOT NULL,
		source TEXT NOT NULL,
		target TEXT NOT NULL,
		ratio REAL NOT NULL,
		PRIMARY KEY (key, group_position, position)
	);
	`
	_, err := s.conn.ExecContext(ctx, schema)
	return err
}

// Save replaces everything stored under key in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, key string, snap *feelings.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}
	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteKey(ctx, tx, key); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (key, version, taken_at, saved_at) VALUES (?, ?, ?, ?)`,
		key, snap.Version, snap.Timestamp.UTC().Format(time.RFC3339Nano), time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("insert snapshot %s: %w", key, err)
	}

	fstmt, err := tx.PreparexContext(ctx, `INSERT INTO snapshot_feelings (key, position, name, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer fstmt.Close()
	for i, fv := range snap.Feelings {
		if _, err := fstmt.ExecContext(ctx, key, i, fv.Name, fv.Value); err != nil {
			return fmt.Errorf("insert feeling %s: %w", fv.Name, err)
		}
	}

	estmt, err := tx.PreparexContext(ctx, `INSERT INTO snapshot_effects
		(key, group_position, position, source, target, ratio) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer estmt.Close()
	for gi, group := range snap.Effects {
		for i, e := range group.Effects {
			if _, err := estmt.ExecContext(ctx, key, gi, i, group.Source, e.Target, e.Ratio); err != nil {
				return fmt.Errorf("insert effect %s->%s: %w", group.Source, e.Target, err)
			}
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Load(ctx context.Context, key string) (*feelings.Snapshot, error) {
	var row snapshotRow
	err := s.conn.GetContext(ctx, &row, `SELECT key, version, taken_at FROM snapshots WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot %s: %w", key, err)
	}

	takenAt, err := time.Parse(time.RFC3339Nano, row.TakenAt)
	if err != nil {
		return nil, fmt.Errorf("parse taken_at of %s: %w", key, err)
	}
	snap := &feelings.Snapshot{Version: row.Version, Timestamp: takenAt}

	var frows []feelingRow
	if err := s.conn.SelectContext(ctx, &frows,
		`SELECT name, value FROM snapshot_feelings WHERE key = ? ORDER BY position`, key); err != nil {
		return nil, fmt.Errorf("query feelings of %s: %w", key, err)
	}
	snap.Feelings = make([]feelings.FeelingValue, 0, len(frows))
	for _, r := range frows {
		snap.Feelings = append(snap.Feelings, feelings.FeelingValue{Name: r.Name, Value: r.Value})
	}

	var erows []effectRow
	if err := s.conn.SelectContext(ctx, &erows,
		`SELECT group_position, source, target, ratio FROM snapshot_effects
		 WHERE key = ? ORDER BY group_position, position`, key); err != nil {
		return nil, fmt.Errorf("query effects of %s: %w", key, err)
	}
	snap.Effects = groupEffects(erows)
	return snap, nil
}

func groupEffects(rows []effectRow) []feelings.EffectGroup {
	var groups []feelings.EffectGroup
	last := -1
	for _, r := range rows {
		if r.GroupPosition != last {
			groups = append(groups, feelings.EffectGroup{Source: r.Source})
			last = r.GroupPosition
		}
		g := &groups[len(groups)-1]
		g.Effects = append(g.Effects, feelings.Effect{Target: r.Target, Ratio: r.Ratio})
	}
	return groups
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, key)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if err := deleteKey(ctx, tx, key); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteKey(ctx context.Context, tx *sqlx.Tx, key string) error {
	for _, table := range []string{"snapshots", "snapshot_feelings", "snapshot_effects"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE key = ?", key); err != nil {
			return fmt.Errorf("clear %s for %s: %w", table, key, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := s.conn.SelectContext(ctx, &keys, `SELECT key FROM snapshots ORDER BY key`); err != nil {
		return nil, fmt.Errorf("query snapshot keys: %w", err)
	}
	return keys, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}
