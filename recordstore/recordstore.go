// Package recordstore persists serialized scene records in SQLite
package recordstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver

	"github.com/YishiMichael/morphing-sub001/codec"
)

// ErrNotFound is returned when a scene has no stored record
var ErrNotFound = errors.New("record not found")

// Store keeps the latest record per scene name
type Store struct {
	db     *sql.DB
	format codec.Format
}

// Open opens or creates the database at path; ":memory:" is allowed
// Records are stored in format
func Open(path string, format codec.Format) (*Store, error) {
	if _, err := codec.ParseFormat(string(format)); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent
	db.SetMaxOpenConns(1)

	s := &Store{db: db, format: format}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			scene TEXT PRIMARY KEY,
			id TEXT NOT NULL,
			format TEXT NOT NULL,
			start_time REAL NOT NULL,
			end_time REAL NOT NULL,
			entries INTEGER NOT NULL,
			body BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create records table: %w", err)
	}
	return nil
}

// Put stores rec, replacing any earlier record of the same scene
func (s *Store) Put(ctx context.Context, rec *codec.Record) error {
	body, err := codec.Marshal(rec, s.format)
	if err != nil {
		return fmt.Errorf("encode scene %q: %w", rec.Scene, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO records (scene, id, format, start_time, end_time, entries, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.Scene,
		rec.ID.String(),
		string(s.format),
		float64(rec.Interval.Start),
		float64(rec.Interval.End),
		len(rec.Entries),
		body,
		time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to store scene %q: %w", rec.Scene, err)
	}
	return nil
}

// Latest returns the stored record for scene
func (s *Store) Latest(ctx context.Context, scene string) (*codec.Record, error) {
	var (
		format string
		body   []byte
	)
	err := s.db.QueryRowContext(ctx, `SELECT format, body FROM records WHERE scene = ?`, scene).Scan(&format, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: scene %q", ErrNotFound, scene)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load scene %q: %w", scene, err)
	}
	f, err := codec.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return codec.Unmarshal(body, f)
}

// Summary describes a stored record without decoding it
type Summary struct {
	Scene     string
	ID        string
	Start     float64
	End       float64
	Entries   int
	UpdatedAt time.Time
}

// Scenes lists stored records ordered by scene name
func (s *Store) Scenes(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT scene, id, start_time, end_time, entries, updated_at FROM records ORDER BY scene
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenes: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum     Summary
			updated int64
		)
		if err := rows.Scan(&sum.Scene, &sum.ID, &sum.Start, &sum.End, &sum.Entries, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan scene: %w", err)
		}
		sum.UpdatedAt = time.Unix(0, updated)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Delete removes the record for scene
func (s *Store) Delete(ctx context.Context, scene string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE scene = ?`, scene)
	if err != nil {
		return fmt.Errorf("failed to delete scene %q: %w", scene, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: scene %q", ErrNotFound, scene)
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
