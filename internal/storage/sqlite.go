// Package storage provides SQLite-based persistence for recorded demos and
// run results. Uses the pure-Go modernc.org/sqlite driver to avoid CGO
// dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/sectorsim/internal/registry"
	"github.com/vovakirdan/sectorsim/internal/sim"
)

var (
	// ErrDemoNotFound is returned when no demo matches an ID.
	ErrDemoNotFound = errors.New("storage: demo not found")

	// ErrAmbiguousID is returned when an ID prefix matches several demos.
	ErrAmbiguousID = errors.New("storage: demo id prefix is ambiguous")
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// DemoEntry is a demo listing row.
type DemoEntry struct {
	ID         string
	Name       string
	Level      string
	StartIndex uint32
	Ticks      uint64
	Triggers   int
	CreatedAt  time.Time
}

// RunResult is the outcome of one scenario or demo run.
type RunResult struct {
	ID        int64
	Source    string // Scenario name or demo ID
	Level     string
	Seed      uint32
	Ticks     uint64
	Digest    string
	Health    int // -1 when the run had no player
	Verified  bool
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS demos (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			level TEXT NOT NULL,
			start_index INTEGER NOT NULL,
			ticks INTEGER NOT NULL,
			hazard TEXT,
			final_digest TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_demos_created ON demos(created_at DESC);

		CREATE TABLE IF NOT EXISTS demo_triggers (
			demo_id TEXT NOT NULL REFERENCES demos(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			tick INTEGER NOT NULL,
			action TEXT NOT NULL,
			kind TEXT NOT NULL DEFAULT '',
			tag INTEGER NOT NULL,
			args TEXT,
			PRIMARY KEY (demo_id, seq)
		);

		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			level TEXT NOT NULL,
			seed INTEGER NOT NULL,
			ticks INTEGER NOT NULL,
			digest TEXT NOT NULL,
			health INTEGER NOT NULL DEFAULT -1,
			verified INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveDemo stores a demo and its triggers. A demo without an ID gets one.
// Returns the demo's ID.
func (s *Store) SaveDemo(d sim.Demo) (string, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	var hazard sql.NullString
	if d.Hazard != nil {
		data, err := yaml.Marshal(d.Hazard)
		if err != nil {
			return "", fmt.Errorf("storage: cannot encode hazard: %w", err)
		}
		hazard = sql.NullString{String: string(data), Valid: true}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO demos (id, name, level, start_index, ticks, hazard, final_digest, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.Level, int64(d.StartIndex), int64(d.Ticks), hazard, d.FinalDigest,
		d.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save demo: %w", err)
	}

	for i, t := range d.Triggers {
		var args sql.NullString
		if len(t.Args) > 0 {
			data, err := yaml.Marshal(t.Args)
			if err != nil {
				return "", fmt.Errorf("storage: cannot encode trigger args: %w", err)
			}
			args = sql.NullString{String: string(data), Valid: true}
		}
		_, err := tx.Exec(
			`INSERT INTO demo_triggers (demo_id, seq, tick, action, kind, tag, args)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			d.ID, i, int64(t.Tick), string(t.Action), t.Kind, t.Tag, args,
		)
		if err != nil {
			return "", fmt.Errorf("storage: cannot save trigger %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("storage: cannot commit demo: %w", err)
	}
	return d.ID, nil
}

// resolveID expands a unique ID prefix to a full demo ID.
func (s *Store) resolveID(idOrPrefix string) (string, error) {
	rows, err := s.db.Query(
		`SELECT id FROM demos WHERE id = ? OR id LIKE ? || '%' LIMIT 2`,
		idOrPrefix, idOrPrefix,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot query demos: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("storage: cannot scan row: %w", err)
		}
		if id == idOrPrefix {
			return id, nil
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("storage: row iteration error: %w", err)
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrDemoNotFound, idOrPrefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousID, idOrPrefix)
	}
}

// LoadDemo retrieves a demo by ID or unique ID prefix.
func (s *Store) LoadDemo(idOrPrefix string) (*sim.Demo, error) {
	id, err := s.resolveID(idOrPrefix)
	if err != nil {
		return nil, err
	}

	var d sim.Demo
	var startIndex, ticks int64
	var hazard sql.NullString
	var createdAt any
	err = s.db.QueryRow(
		`SELECT id, name, level, start_index, ticks, hazard, final_digest, created_at
		 FROM demos WHERE id = ?`,
		id,
	).Scan(&d.ID, &d.Name, &d.Level, &startIndex, &ticks, &hazard, &d.FinalDigest, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrDemoNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query demo: %w", err)
	}
	d.StartIndex = uint32(startIndex)
	d.Ticks = uint64(ticks)
	d.CreatedAt = parseTime(createdAt)

	if hazard.Valid {
		var h sim.HazardConfig
		if err := yaml.Unmarshal([]byte(hazard.String), &h); err != nil {
			return nil, fmt.Errorf("storage: cannot decode hazard: %w", err)
		}
		d.Hazard = &h
	}

	rows, err := s.db.Query(
		`SELECT tick, action, kind, tag, args
		 FROM demo_triggers
		 WHERE demo_id = ?
		 ORDER BY seq`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query triggers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t sim.Trigger
		var tick int64
		var action string
		var args sql.NullString
		if err := rows.Scan(&tick, &action, &t.Kind, &t.Tag, &args); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		t.Tick = uint64(tick)
		t.Action = sim.Action(action)
		if args.Valid {
			t.Args = registry.Args{}
			if err := yaml.Unmarshal([]byte(args.String), &t.Args); err != nil {
				return nil, fmt.Errorf("storage: cannot decode trigger args: %w", err)
			}
		}
		d.Triggers = append(d.Triggers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return &d, nil
}

// ListDemos retrieves the most recent demos, newest first.
func (s *Store) ListDemos(limit int) ([]DemoEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT d.id, d.name, d.level, d.start_index, d.ticks, d.created_at,
		        (SELECT COUNT(*) FROM demo_triggers t WHERE t.demo_id = d.id)
		 FROM demos d
		 ORDER BY d.created_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query demos: %w", err)
	}
	defer rows.Close()

	var entries []DemoEntry
	for rows.Next() {
		var e DemoEntry
		var startIndex, ticks int64
		var createdAt any
		if err := rows.Scan(&e.ID, &e.Name, &e.Level, &startIndex, &ticks, &createdAt, &e.Triggers); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.StartIndex = uint32(startIndex)
		e.Ticks = uint64(ticks)
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// DeleteDemo removes a demo and its triggers.
func (s *Store) DeleteDemo(idOrPrefix string) error {
	id, err := s.resolveID(idOrPrefix)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM demo_triggers WHERE demo_id = ?", id); err != nil {
		return fmt.Errorf("storage: cannot delete triggers: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM demos WHERE id = ?", id); err != nil {
		return fmt.Errorf("storage: cannot delete demo: %w", err)
	}
	return tx.Commit()
}

// SaveRun records a run result.
// Returns the ID of the inserted record.
func (s *Store) SaveRun(r RunResult) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO runs (source, level, seed, ticks, digest, health, verified)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Source, r.Level, int64(r.Seed), int64(r.Ticks), r.Digest, r.Health, r.Verified,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// RecentRuns retrieves the most recent runs, optionally for one source.
func (s *Store) RecentRuns(source string, limit int) ([]RunResult, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, source, level, seed, ticks, digest, health, verified, created_at
		 FROM runs
		 WHERE ? = '' OR source = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		source, source, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var results []RunResult
	for rows.Next() {
		var r RunResult
		var seed, ticks int64
		var createdAt any
		if err := rows.Scan(&r.ID, &r.Source, &r.Level, &seed, &ticks, &r.Digest, &r.Health, &r.Verified, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.Seed = uint32(seed)
		r.Ticks = uint64(ticks)
		r.CreatedAt = parseTime(createdAt)
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return results, nil
}

// parseTime handles both time.Time and the string forms SQLite returns.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}
