package results

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/seisnode/wfcheck/wfcheck/consistency"

	_ "github.com/tursodatabase/go-libsql"
)

// Store persists reconciliation reports to a SQLite database file, one
// table per category plus a runs table with per-run metadata. The
// maintenance commands read the same file back.
type Store struct {
	db   *sql.DB
	path string
}

// Create opens a fresh results database at path, replacing any previous
// results file, and creates the schema.
func Create(path string) (*Store, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to remove previous results file %s: %w", path, err)
	}

	s, err := open(path)
	if err != nil {
		return nil, err
	}
	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Open opens an existing results database produced by a previous check run.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("no results database at %s (run \"wfcheck check\" first): %w", path, err)
	}
	return open(path)
}

func open(path string) (*Store, error) {
	db, err := sql.Open("libsql", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results database %s: %w", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the on-disk location of the results database.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) init() error {
	for _, cat := range consistency.Categories {
		_, err := s.db.Exec(fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			net TEXT,
			sta TEXT,
			loc TEXT,
			cha TEXT,
			year INTEGER,
			jday INTEGER,
			fileName TEXT PRIMARY KEY
		)`, cat))
		if err != nil {
			return fmt.Errorf("failed to create table %s: %w", cat, err)
		}
	}

	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY UNIQUE,
		start_year INTEGER,
		end_year INTEGER,
		started_at TEXT,
		finished_at TEXT,
		visited INTEGER,
		inconsistencies INTEGER,
		partial INTEGER
	)`)
	if err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}
	return nil
}

// WriteReport persists every category of a report in one transaction.
func (s *Store) WriteReport(report *consistency.Report) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Will be a no-op if transaction is committed

	for _, cat := range consistency.Categories {
		stmt, err := tx.Prepare(fmt.Sprintf(
			`INSERT INTO %s (net, sta, loc, cha, year, jday, fileName) VALUES (?, ?, ?, ?, ?, ?, ?)`, cat))
		if err != nil {
			return fmt.Errorf("failed to prepare insert for %s: %w", cat, err)
		}
		for _, name := range report.Categories[cat] {
			net, sta, loc, cha, year, jday := decompose(name)
			if _, err := stmt.Exec(net, sta, loc, cha, year, jday, name); err != nil {
				stmt.Close()
				return fmt.Errorf("failed to insert %s into %s: %w", name, cat, err)
			}
		}
		stmt.Close()
	}

	partial := 0
	if report.Partial {
		partial = 1
	}
	_, err = tx.Exec(`INSERT INTO runs (id, start_year, end_year, started_at, finished_at, visited, inconsistencies, partial)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID.String(), report.StartYear, report.EndYear,
		report.StartedAt.UTC().Format("2006-01-02T15:04:05Z"),
		report.FinishedAt.UTC().Format("2006-01-02T15:04:05Z"),
		report.Visited, report.Total(), partial)
	if err != nil {
		return fmt.Errorf("failed to record run metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit results: %w", err)
	}

	slog.Info("Wrote results to SQLite database file", "path", s.path, "run_id", report.RunID)
	return nil
}

// FileNames returns all file names stored for one category, sorted.
func (s *Store) FileNames(cat consistency.Category) ([]string, error) {
	return s.queryNames(fmt.Sprintf(`SELECT fileName FROM %s ORDER BY fileName`, cat))
}

// MissingAndOlder returns the union of files missing from the catalog and
// files with a stale catalog date, the input set of the update-entries
// maintenance command.
func (s *Store) MissingAndOlder() ([]string, error) {
	return s.queryNames(fmt.Sprintf(`SELECT fileName FROM %s UNION SELECT fileName FROM %s`,
		consistency.MissingInCatalog, consistency.OlderDate))
}

func (s *Store) queryNames(query string) ([]string, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("results query failed: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate result rows: %w", err)
	}
	return names, nil
}

// decompose splits a file name into its structural columns. Names that do
// not follow the convention (the inappropriate naming category) get NULL
// structural columns and keep only the raw name.
func decompose(name string) (net, sta, loc, cha any, year, jday any) {
	parts := strings.Split(name, ".")
	if len(parts) != 7 {
		return nil, nil, nil, nil, nil, nil
	}
	y, errY := strconv.Atoi(parts[5])
	d, errD := strconv.Atoi(parts[6])
	if errY != nil || errD != nil {
		return parts[0], parts[1], parts[2], parts[3], nil, nil
	}
	return parts[0], parts[1], parts[2], parts[3], y, d
}
