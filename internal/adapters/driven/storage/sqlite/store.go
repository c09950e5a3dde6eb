package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/rostra-labs/rostra-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/rostra-labs/rostra-cli/internal/core/domain"
	"github.com/rostra-labs/rostra-cli/internal/core/ports/driven"
)

// Store is the SQLite-backed record store. It provides access to the
// update store and checkpoint store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.rostra/data/rostra.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".rostra", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "rostra.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
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

// UpdateStore returns an UpdateStore interface backed by this store.
func (s *Store) UpdateStore() driven.UpdateStore {
	return &updateStore{store: s}
}

// CheckpointStore returns a CheckpointStore interface backed by this store.
func (s *Store) CheckpointStore() driven.CheckpointStore {
	return &checkpointStore{store: s}
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

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Update Store ====================

// updateColumns is the scalar projection shared by search and get-by-id.
const updateColumns = "u.id, u.title, u.body, u.body_text, u.status, u.locale, u.metadata, u.created_at, u.modified_at"

// updateStore implements driven.UpdateStore.
type updateStore struct {
	store *Store
}

var _ driven.UpdateStore = (*updateStore)(nil)

// ApplyBatch persists a batch of updates in one atomic transaction. Per
// record it upserts the scalar row by id and fully replaces the tag,
// category, product and availability sets; the FTS triggers keep the text
// index in the same unit of work. A non-zero pruneBefore also deletes
// pre-existing rows whose max(created, modified) precedes it. Any failure
// rolls back everything.
func (s *updateStore) ApplyBatch(
	ctx context.Context, updates []domain.Update, pruneBefore time.Time,
) (driven.BatchResult, error) {
	var result driven.BatchResult

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for i := range updates {
		inserted, err := s.applyOne(ctx, tx, &updates[i])
		if err != nil {
			return driven.BatchResult{}, fmt.Errorf("applying update %s: %w", updates[i].ID, err)
		}
		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}

	if !pruneBefore.IsZero() {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM updates WHERE max(created_at, modified_at) < ?",
			formatTime(pruneBefore))
		if err != nil {
			return driven.BatchResult{}, fmt.Errorf("pruning retained records: %w", err)
		}
		pruned, err := res.RowsAffected()
		if err != nil {
			return driven.BatchResult{}, fmt.Errorf("counting pruned records: %w", err)
		}
		result.Pruned = int(pruned)
	}

	if err := tx.Commit(); err != nil {
		return driven.BatchResult{}, fmt.Errorf("committing transaction: %w", err)
	}
	return result, nil
}

// applyOne upserts a single record and replaces its association sets.
// Returns true when the record did not previously exist.
func (s *updateStore) applyOne(ctx context.Context, tx *sql.Tx, u *domain.Update) (bool, error) {
	if u.ID == "" {
		return false, domain.ErrInvalidInput
	}

	var exists bool
	err := tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM updates WHERE id = ?)", u.ID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking existence: %w", err)
	}

	metadataJSON, err := json.Marshal(u.Metadata)
	if err != nil {
		return false, fmt.Errorf("marshalling metadata: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO updates (id, title, body, body_text, status, locale, metadata, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			body = excluded.body,
			body_text = excluded.body_text,
			status = excluded.status,
			locale = excluded.locale,
			metadata = excluded.metadata,
			created_at = excluded.created_at,
			modified_at = excluded.modified_at
	`, u.ID, u.Title, u.Body, u.BodyText, u.Status, u.Locale, string(metadataJSON),
		formatTime(u.CreatedAt), formatTime(u.ModifiedAt))
	if err != nil {
		return false, fmt.Errorf("upserting record: %w", err)
	}

	// Association sets are superseded, never merged.
	if err := replaceSet(ctx, tx, "update_tags", "tag", u.ID, u.Tags); err != nil {
		return false, err
	}
	if err := replaceSet(ctx, tx, "update_categories", "category", u.ID, u.Categories); err != nil {
		return false, err
	}
	if err := replaceSet(ctx, tx, "update_products", "product", u.ID, u.Products); err != nil {
		return false, err
	}
	if err := replaceAvailabilities(ctx, tx, u.ID, u.Availabilities); err != nil {
		return false, err
	}

	return !exists, nil
}

// Count returns the total number of stored updates.
func (s *updateStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM updates").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting updates: %w", err)
	}
	return count, nil
}

// GetByID retrieves a single update with its associations.
func (s *updateStore) GetByID(ctx context.Context, id string) (*domain.Update, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+updateColumns+" FROM updates u WHERE u.id = ?", id)

	update, err := scanUpdateRow(row)
	if err != nil {
		return nil, err
	}
	if err := s.enrich(ctx, update); err != nil {
		return nil, err
	}
	return update, nil
}

// enrich attaches the association sets and availability window via
// id-keyed side lookups.
func (s *updateStore) enrich(ctx context.Context, u *domain.Update) error {
	var err error
	if u.Tags, err = s.loadSet(ctx, "update_tags", "tag", u.ID); err != nil {
		return err
	}
	if u.Categories, err = s.loadSet(ctx, "update_categories", "category", u.ID); err != nil {
		return err
	}
	if u.Products, err = s.loadSet(ctx, "update_products", "product", u.ID); err != nil {
		return err
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT ring, available_on
		FROM update_availabilities
		WHERE update_id = ?
		ORDER BY position
	`, u.ID)
	if err != nil {
		return fmt.Errorf("querying availabilities: %w", err)
	}
	defer rows.Close()

	var availabilities []domain.Availability //nolint:prealloc // size unknown from query
	for rows.Next() {
		var a domain.Availability
		var availableOn sql.NullString
		if err := rows.Scan(&a.Ring, &availableOn); err != nil {
			return fmt.Errorf("scanning availability: %w", err)
		}
		if availableOn.Valid {
			date, err := time.Parse(time.RFC3339, availableOn.String)
			if err != nil {
				return fmt.Errorf("parsing availability date: %w", err)
			}
			a.Date = &date
		}
		availabilities = append(availabilities, a)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating availabilities: %w", err)
	}

	u.Availabilities = availabilities
	return nil
}

// loadSet reads one association dimension for a record.
func (s *updateStore) loadSet(ctx context.Context, table, column, id string) ([]string, error) {
	//nolint:gosec // table and column are compile-time constants
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+column+" FROM "+table+" WHERE update_id = ? ORDER BY "+column, id)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}
	defer rows.Close()

	var values []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", table, err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", table, err)
	}
	return values, nil
}

// replaceSet deletes and reinserts one association dimension for a record.
func replaceSet(ctx context.Context, tx *sql.Tx, table, column, id string, values []string) error {
	//nolint:gosec // table and column are compile-time constants
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE update_id = ?", id); err != nil {
		return fmt.Errorf("clearing %s: %w", table, err)
	}
	for _, v := range values {
		//nolint:gosec // table and column are compile-time constants
		_, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO "+table+" (update_id, "+column+") VALUES (?, ?)", id, v)
		if err != nil {
			return fmt.Errorf("inserting into %s: %w", table, err)
		}
	}
	return nil
}

// replaceAvailabilities deletes and reinserts the ordered availability
// window for a record.
func replaceAvailabilities(ctx context.Context, tx *sql.Tx, id string, availabilities []domain.Availability) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM update_availabilities WHERE update_id = ?", id); err != nil {
		return fmt.Errorf("clearing availabilities: %w", err)
	}
	for i, a := range availabilities {
		var availableOn interface{}
		if a.Date != nil {
			availableOn = formatTime(*a.Date)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO update_availabilities (update_id, position, ring, available_on)
			VALUES (?, ?, ?, ?)
		`, id, i, a.Ring, availableOn)
		if err != nil {
			return fmt.Errorf("inserting availability: %w", err)
		}
	}
	return nil
}

// ==================== Helper Functions ====================

// formatTime stores timestamps as RFC3339 UTC strings. Second precision
// keeps the representation lexicographically ordered for SQL comparisons.
func formatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

// scanUpdateRow scans a single update row.
func scanUpdateRow(row *sql.Row) (*domain.Update, error) {
	var u domain.Update
	var metadataJSON, createdAt, modifiedAt string

	if err := row.Scan(&u.ID, &u.Title, &u.Body, &u.BodyText, &u.Status, &u.Locale,
		&metadataJSON, &createdAt, &modifiedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning update: %w", err)
	}

	if err := finishUpdate(&u, metadataJSON, createdAt, modifiedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// scanUpdateRows scans an update from *sql.Rows.
func scanUpdateRows(rows *sql.Rows) (*domain.Update, error) {
	var u domain.Update
	var metadataJSON, createdAt, modifiedAt string

	if err := rows.Scan(&u.ID, &u.Title, &u.Body, &u.BodyText, &u.Status, &u.Locale,
		&metadataJSON, &createdAt, &modifiedAt); err != nil {
		return nil, fmt.Errorf("scanning update: %w", err)
	}

	if err := finishUpdate(&u, metadataJSON, createdAt, modifiedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// finishUpdate decodes the serialised columns common to both scan paths.
func finishUpdate(u *domain.Update, metadataJSON, createdAt, modifiedAt string) error {
	if metadataJSON != "" && metadataJSON != "null" {
		if err := json.Unmarshal([]byte(metadataJSON), &u.Metadata); err != nil {
			return fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}

	var err error
	if u.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return fmt.Errorf("parsing created_at: %w", err)
	}
	if u.ModifiedAt, err = time.Parse(time.RFC3339, modifiedAt); err != nil {
		return fmt.Errorf("parsing modified_at: %w", err)
	}
	return nil
}
