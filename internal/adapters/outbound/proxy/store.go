package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/openkraft/schemactl/internal/domain"
	"github.com/openkraft/schemactl/internal/domain/schema"
)

const maxWriters = 4

// ClassMetadata is the compiled, relational view of one mapped class.
type ClassMetadata struct {
	Class      string            `json:"class"`
	Table      string            `json:"table"`
	Identifier string            `json:"identifier"`
	Columns    []schema.Column   `json:"columns"`
	Relations  []domain.Relation `json:"relations,omitempty"`
}

// Store is a file-based implementation of domain.ProxyCompiler. Each class is
// written to <dir>/<table>.json.
type Store struct {
	dir string
}

// New creates a proxy store rooted at dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string { return s.dir }

// Compile invalidates previously compiled files and writes the metadata of
// every class in m. It returns the number of files written.
func (s *Store) Compile(ctx context.Context, m domain.Mapping) (int, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return 0, fmt.Errorf("creating proxies directory: %w", err)
	}
	if err := s.Invalidate(); err != nil {
		return 0, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWriters)
	for _, c := range m.Classes {
		meta := Metadata(c, m)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return s.save(meta)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	slog.Debug("proxies compiled", "dir", s.dir, "classes", len(m.Classes))
	return len(m.Classes), nil
}

// Metadata builds the compiled metadata of c.
func Metadata(c domain.ClassMapping, m domain.Mapping) ClassMetadata {
	meta := ClassMetadata{
		Class:     c.Name,
		Table:     schema.TableName(c),
		Columns:   schema.Columns(c, m),
		Relations: c.Relations,
	}
	if id, ok := c.Identifier(); ok {
		meta.Identifier = schema.ColumnName(id)
	}
	return meta
}

// Load reads the compiled metadata of a table. Returns (nil, nil) if the table
// has not been compiled.
func (s *Store) Load(table string) (*ClassMetadata, error) {
	data, err := os.ReadFile(s.path(table))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var meta ClassMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decoding proxy %s: %w", table, err)
	}
	return &meta, nil
}

// Invalidate removes every compiled file.
func (s *Store) Invalidate() error {
	stale, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return err
	}
	for _, path := range stale {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func (s *Store) save(meta ClassMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path(meta.Table), data, 0644); err != nil {
		return fmt.Errorf("writing proxy %s: %w", meta.Table, err)
	}
	return nil
}

func (s *Store) path(table string) string {
	return filepath.Join(s.dir, table+".json")
}
