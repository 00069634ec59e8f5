// Package sqlstore implements the schema command service on SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/openkraft/schemactl/internal/domain"
	"github.com/openkraft/schemactl/internal/domain/schema"
)

// Options wires the collaborators of a Service. Git and Now are optional.
type Options struct {
	ProjectPath string
	Settings    domain.PersistenceSettings
	Mappings    domain.MappingLoader
	Migrations  domain.MigrationRepository
	Proxies     domain.ProxyCompiler
	Git         domain.GitInfo
	Now         func() time.Time
}

// Service implements domain.CommandService. The database is opened on first
// use and stays open until Close.
type Service struct {
	opts Options

	mu sync.Mutex
	db *sql.DB
}

var _ domain.CommandService = (*Service)(nil)

func New(opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{opts: opts}
}

// Drivers lists the accepted driver settings.
func Drivers() []string {
	return []string{"pdo_sqlite", "sqlite", "sqlite3"}
}

// DriverName maps a configured driver to a database/sql driver name.
func DriverName(driver string) (string, error) {
	switch strings.ToLower(driver) {
	case "sqlite", "pdo_sqlite":
		return "sqlite", nil
	case "sqlite3":
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("%w: %q (valid: %s)", domain.ErrUnsupportedDriver, driver, strings.Join(Drivers(), ", "))
	}
}

// Close releases the database handle, if one was opened.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Service) database(ctx context.Context) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db, nil
	}

	name, err := DriverName(s.opts.Settings.Driver())
	if err != nil {
		return nil, err
	}
	path := s.resolve(s.opts.Settings.DatabasePath())
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open(name, path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	slog.Debug("database opened", "driver", name, "path", path)
	s.db = db
	return db, nil
}

func (s *Service) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.opts.ProjectPath, path)
}

func (s *Service) mapping() (domain.Mapping, error) {
	return s.opts.Mappings.Load(s.resolve(s.opts.Settings.Mapping))
}

// validMapping loads the mapping and refuses to continue when it does not
// validate.
func (s *Service) validMapping() (domain.Mapping, error) {
	m, err := s.mapping()
	if err != nil {
		return domain.Mapping{}, err
	}
	if errs := schema.Validate(m); errs.Len() > 0 {
		return domain.Mapping{}, fmt.Errorf("mapping has errors in %d class(es), run validate for details", errs.Len())
	}
	return m, nil
}

func inTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func execAll(ctx context.Context, tx *sql.Tx, statements []string) error {
	for _, stmt := range statements {
		slog.Debug("executing statement", "sql", stmt)
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt, err)
		}
	}
	return nil
}
