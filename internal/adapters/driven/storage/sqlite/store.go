package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/fetcha-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
	"github.com/custodia-labs/fetcha-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.CredentialsStore = (*Store)(nil)

// Store is the SQLite-backed credentials store. One row per source; a
// re-auth for the same source replaces the existing row.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a credentials store at the specified data directory.
// If dataDir is empty, defaults to ~/.fetcha/data/fetcha.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".fetcha", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "fetcha.db")

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath}

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

// Save stores or replaces the credentials for a source.
func (s *Store) Save(ctx context.Context, creds *domain.SourceCredentials) error {
	if creds == nil || creds.ID == "" || !creds.Source.Valid() {
		return fmt.Errorf("credentials need an id and a valid source: %w", domain.ErrUnsupportedSource)
	}

	scopesJSON, err := json.Marshal(creds.Scopes)
	if err != nil {
		return fmt.Errorf("marshalling scopes: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO credentials
			(id, source, access_token, account_email, scopes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET
			id = excluded.id,
			access_token = excluded.access_token,
			account_email = excluded.account_email,
			scopes = excluded.scopes,
			updated_at = excluded.updated_at
	`, creds.ID, string(creds.Source), creds.AccessToken, creds.AccountEmail,
		string(scopesJSON), creds.CreatedAt, creds.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}
	return nil
}

// Get retrieves the credentials for a source.
func (s *Store) Get(ctx context.Context, source domain.Source) (*domain.SourceCredentials, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source, access_token, account_email, scopes, created_at, updated_at
		FROM credentials WHERE source = ?
	`, string(source))

	return scanCredentials(row.Scan)
}

// List returns all stored credentials ordered by source.
func (s *Store) List(ctx context.Context) ([]domain.SourceCredentials, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, access_token, account_email, scopes, created_at, updated_at
		FROM credentials ORDER BY source
	`)
	if err != nil {
		return nil, fmt.Errorf("listing credentials: %w", err)
	}
	defer rows.Close()

	var all []domain.SourceCredentials
	for rows.Next() {
		creds, err := scanCredentials(rows.Scan)
		if err != nil {
			return nil, err
		}
		all = append(all, *creds)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating credentials: %w", err)
	}
	return all, nil
}

// Delete removes the credentials for a source.
func (s *Store) Delete(ctx context.Context, source domain.Source) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM credentials WHERE source = ?", string(source))
	if err != nil {
		return fmt.Errorf("deleting credentials: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("credentials for %s: %w", source, domain.ErrNotFound)
	}
	return nil
}

// scanCredentials scans a single credentials row.
func scanCredentials(scan func(...any) error) (*domain.SourceCredentials, error) {
	var creds domain.SourceCredentials
	var source string
	var email sql.NullString
	var scopesJSON string

	err := scan(&creds.ID, &source, &creds.AccessToken, &email,
		&scopesJSON, &creds.CreatedAt, &creds.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning credentials: %w", err)
	}

	creds.Source = domain.Source(source)
	creds.AccountEmail = email.String
	if err := json.Unmarshal([]byte(scopesJSON), &creds.Scopes); err != nil {
		return nil, fmt.Errorf("unmarshalling scopes: %w", err)
	}
	return &creds, nil
}

// migrate applies any unapplied versioned migrations in order.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

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
