package mods

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"ark_manager/internal/logger"
)

// Store caches CurseForge project lookups in a local SQLite database so that
// repeated update checks do not hammer the proxy API.
type Store struct {
	dbPath string
	logger *logger.Logger
	db     *sql.DB
}

// CachedProject is one cached CurseForge project record.
type CachedProject struct {
	ProjectID  int
	Name       string
	MainFileID int
	CheckedAt  time.Time
}

// NewStore creates a store backed by the given database file.
func NewStore(dbPath string, logger *logger.Logger) *Store {
	return &Store{
		dbPath: dbPath,
		logger: logger,
	}
}

// Initialize opens the database, sets WAL mode, and creates the schema.
func (s *Store) Initialize() error {
	if s.db != nil {
		if err := s.db.Ping(); err == nil {
			s.logger.Debug("Mod cache connection already active")
			return nil
		}
		s.logger.Warn("Existing mod cache connection failed, reinitializing...")
		s.db.Close()
		s.db = nil
	}

	s.logger.Info("Initializing mod cache: %s", s.dbPath)

	db, err := sql.Open("sqlite3", s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open mod cache: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping mod cache: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return fmt.Errorf("failed to set WAL mode: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS mod_versions (
		project_id   INTEGER PRIMARY KEY,
		name         TEXT NOT NULL,
		main_file_id INTEGER NOT NULL,
		checked_at   INTEGER NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return fmt.Errorf("failed to create mod cache schema: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Get returns the cached record for a project if it is newer than maxAge.
func (s *Store) Get(projectID int, maxAge time.Duration) (*CachedProject, error) {
	if s.db == nil {
		return nil, fmt.Errorf("mod cache is not initialized")
	}

	row := s.db.QueryRow(
		"SELECT project_id, name, main_file_id, checked_at FROM mod_versions WHERE project_id = ?",
		projectID,
	)

	var cached CachedProject
	var checkedAt int64
	if err := row.Scan(&cached.ProjectID, &cached.Name, &cached.MainFileID, &checkedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query mod cache: %w", err)
	}
	cached.CheckedAt = time.Unix(checkedAt, 0)

	if time.Since(cached.CheckedAt) > maxAge {
		return nil, nil
	}
	return &cached, nil
}

// Put inserts or refreshes the cached record for a project.
func (s *Store) Put(projectID int, name string, mainFileID int) error {
	if s.db == nil {
		return fmt.Errorf("mod cache is not initialized")
	}

	_, err := s.db.Exec(
		`INSERT INTO mod_versions (project_id, name, main_file_id, checked_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(project_id) DO UPDATE SET
		   name = excluded.name,
		   main_file_id = excluded.main_file_id,
		   checked_at = excluded.checked_at`,
		projectID, name, mainFileID, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to update mod cache: %w", err)
	}
	return nil
}
