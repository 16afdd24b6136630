package storage

import (
	"database/sql"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"github.com/velardi/logtally/internal/summary"
)

// Storage persists finished crawl summaries into a sqlite database
type Storage struct {
	db *sql.DB
}

// NewStorage creates a new Storage instance, opening/creating the DB and initializing schema
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	storage := &Storage{db: db}

	// Initialize schema
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// initSchema creates tables and indices if they don't exist
func (s *Storage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS summaries (
		summary_id INTEGER PRIMARY KEY AUTOINCREMENT,
		group_key TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(group_key)
	);

	CREATE TABLE IF NOT EXISTS stats (
		stat_id INTEGER PRIMARY KEY AUTOINCREMENT,
		summary_id INTEGER NOT NULL,
		dimension TEXT NOT NULL,
		stat_key TEXT NOT NULL,
		label TEXT,
		count INTEGER NOT NULL,
		unique_count INTEGER NOT NULL,
		bytes INTEGER NOT NULL,
		unique_bytes INTEGER NOT NULL,
		first_time TIMESTAMP,
		last_time TIMESTAMP,
		FOREIGN KEY (summary_id) REFERENCES summaries(summary_id),
		UNIQUE(summary_id, dimension, stat_key)
	);

	CREATE INDEX IF NOT EXISTS idx_stats_summary ON stats(summary_id);
	CREATE INDEX IF NOT EXISTS idx_stats_dimension ON stats(dimension);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveSummary stores one summary under the given group key, replacing any
// previously stored stats for that key
func (s *Storage) SaveSummary(groupKey string, sum *summary.Summary) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO summaries (group_key)
		VALUES (?)
		ON CONFLICT(group_key) DO UPDATE SET created_at = CURRENT_TIMESTAMP
	`, groupKey)
	if err != nil {
		return fmt.Errorf("failed to upsert summary: %w", err)
	}

	var summaryID int
	err = tx.QueryRow("SELECT summary_id FROM summaries WHERE group_key = ?", groupKey).Scan(&summaryID)
	if err != nil {
		return fmt.Errorf("failed to retrieve summary_id: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM stats WHERE summary_id = ?", summaryID); err != nil {
		return fmt.Errorf("failed to clear previous stats: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO stats (summary_id, dimension, stat_key, label, count, unique_count, bytes, unique_bytes, first_time, last_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare stats insert: %w", err)
	}
	defer stmt.Close()

	insert := func(dimension, key string, stats *summary.Stats) error {
		_, err := stmt.Exec(summaryID, dimension, key, stats.Label,
			stats.Count, stats.UniqueCount, stats.Bytes, stats.UniqueBytes,
			stats.FirstTime, stats.LastTime)
		if err != nil {
			return fmt.Errorf("failed to insert %s stats for %q: %w", dimension, key, err)
		}
		return nil
	}

	if err := insert(DimTotals, "", sum.Totals); err != nil {
		return err
	}
	for code, stats := range sum.StatusCodes {
		if err := insert(DimStatusCode, strconv.Itoa(code), stats); err != nil {
			return err
		}
	}
	for mimeType, stats := range sum.MimeTypes {
		if err := insert(DimMimeType, mimeType, stats); err != nil {
			return err
		}
	}
	for bucket, stats := range sum.SizeHisto {
		if err := insert(DimSizeBucket, strconv.FormatInt(bucket, 10), stats); err != nil {
			return err
		}
	}
	for domain, stats := range sum.RegisteredDomains {
		if err := insert(DimRegisteredDomain, domain, stats); err != nil {
			return err
		}
	}
	for seed, stats := range sum.Seeds {
		if err := insert(DimSeed, seed, stats); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit summary: %w", err)
	}
	return nil
}

// LoadStats returns the stored stats rows for a group key, ordered by
// dimension then key
func (s *Storage) LoadStats(groupKey string) ([]*StatRow, error) {
	rows, err := s.db.Query(`
		SELECT st.stat_id, st.summary_id, st.dimension, st.stat_key, COALESCE(st.label, ''),
		       st.count, st.unique_count, st.bytes, st.unique_bytes, st.first_time, st.last_time
		FROM stats st
		JOIN summaries su ON su.summary_id = st.summary_id
		WHERE su.group_key = ?
		ORDER BY st.dimension, st.stat_key
	`, groupKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	defer rows.Close()

	var stats []*StatRow
	for rows.Next() {
		var row StatRow
		if err := rows.Scan(&row.StatID, &row.SummaryID, &row.Dimension, &row.Key, &row.Label,
			&row.Count, &row.UniqueCount, &row.Bytes, &row.UniqueBytes, &row.FirstTime, &row.LastTime); err != nil {
			return nil, fmt.Errorf("failed to scan stat row: %w", err)
		}
		stats = append(stats, &row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stats: %w", err)
	}

	return stats, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}
