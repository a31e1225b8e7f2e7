package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/opencourse-labs/stride-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/opencourse-labs/stride-cli/internal/core/domain"
	"github.com/opencourse-labs/stride-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.stride/data/courses.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".stride", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "courses.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// StructureStore returns a StructureStore interface backed by this store.
func (s *Store) StructureStore() driven.StructureStore {
	return &structureStore{store: s}
}

// DownloadStore returns a DownloadStore interface backed by this store.
func (s *Store) DownloadStore() driven.DownloadStore {
	return &downloadStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Structure Store ====================

// structureStore implements driven.StructureStore.
type structureStore struct {
	store *Store
}

var _ driven.StructureStore = (*structureStore)(nil)

// Save stores or replaces the durable copy for a course.
func (s *structureStore) Save(ctx context.Context, structure *domain.CourseStructure) error {
	if structure == nil || structure.ID == "" {
		return domain.ErrInvalidInput
	}

	structureJSON, err := json.Marshal(structure)
	if err != nil {
		return fmt.Errorf("marshalling structure: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO course_structures (course_id, structure, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(course_id) DO UPDATE SET
			structure = excluded.structure,
			updated_at = excluded.updated_at
	`, structure.ID, string(structureJSON), time.Now().UTC())

	if err != nil {
		return fmt.Errorf("saving structure: %w", err)
	}
	return nil
}

// Load retrieves the most recent durable copy for a course.
func (s *structureStore) Load(ctx context.Context, courseID string) (*domain.CourseStructure, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT structure FROM course_structures WHERE course_id = ?
	`, courseID)

	var structureJSON string
	if err := row.Scan(&structureJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning structure: %w", err)
	}

	var structure domain.CourseStructure
	if err := json.Unmarshal([]byte(structureJSON), &structure); err != nil {
		return nil, fmt.Errorf("unmarshalling structure: %w", err)
	}
	return &structure, nil
}

// Delete removes the durable copy for a course.
func (s *structureStore) Delete(ctx context.Context, courseID string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM course_structures WHERE course_id = ?", courseID)
	if err != nil {
		return fmt.Errorf("deleting structure: %w", err)
	}
	return nil
}

// ==================== Download Store ====================

// downloadStore implements driven.DownloadStore.
type downloadStore struct {
	store *Store
}

var _ driven.DownloadStore = (*downloadStore)(nil)

// Save stores or updates a download record.
func (s *downloadStore) Save(ctx context.Context, record domain.DownloadRecord) error {
	if record.BlockID == "" || record.CourseID == "" {
		return domain.ErrInvalidInput
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO downloads (block_id, course_id, title, url, path, size, state, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(block_id) DO UPDATE SET
			course_id = excluded.course_id,
			title = excluded.title,
			url = excluded.url,
			path = excluded.path,
			size = excluded.size,
			state = excluded.state,
			updated_at = excluded.updated_at
	`, record.BlockID, record.CourseID, record.Title, record.URL,
		record.Path, record.Size, string(record.State), record.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving download record: %w", err)
	}
	return nil
}

// Get retrieves the record for a block.
func (s *downloadStore) Get(ctx context.Context, blockID string) (*domain.DownloadRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT block_id, course_id, title, url, path, size, state, updated_at
		FROM downloads WHERE block_id = ?
	`, blockID)

	var record domain.DownloadRecord
	var state string
	var updatedAt sql.NullTime
	if err := row.Scan(&record.BlockID, &record.CourseID, &record.Title, &record.URL,
		&record.Path, &record.Size, &state, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning download record: %w", err)
	}

	record.State = domain.DownloadState(state)
	if updatedAt.Valid {
		record.UpdatedAt = updatedAt.Time
	}
	return &record, nil
}

// ListByCourse returns all records for a course.
func (s *downloadStore) ListByCourse(ctx context.Context, courseID string) ([]domain.DownloadRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT block_id, course_id, title, url, path, size, state, updated_at
		FROM downloads WHERE course_id = ?
	`, courseID)
	if err != nil {
		return nil, fmt.Errorf("querying download records: %w", err)
	}
	defer rows.Close()

	var records []domain.DownloadRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var record domain.DownloadRecord
		var state string
		var updatedAt sql.NullTime
		if err := rows.Scan(&record.BlockID, &record.CourseID, &record.Title, &record.URL,
			&record.Path, &record.Size, &state, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning download record: %w", err)
		}
		record.State = domain.DownloadState(state)
		if updatedAt.Valid {
			record.UpdatedAt = updatedAt.Time
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating download records: %w", err)
	}

	return records, nil
}

// Delete removes the record for a block.
func (s *downloadStore) Delete(ctx context.Context, blockID string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM downloads WHERE block_id = ?", blockID)
	if err != nil {
		return fmt.Errorf("deleting download record: %w", err)
	}
	return nil
}
