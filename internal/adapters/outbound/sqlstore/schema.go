package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/openkraft/schemactl/internal/domain"
	"github.com/openkraft/schemactl/internal/domain/schema"
)

func (s *Service) ValidateMapping(ctx context.Context) (*domain.MappingErrors, error) {
	m, err := s.mapping()
	if err != nil {
		return nil, err
	}
	return schema.Validate(m), nil
}

// CreateSchema creates every mapped table. It fails without changes when one
// of them already exists.
func (s *Service) CreateSchema(ctx context.Context) error {
	m, err := s.validMapping()
	if err != nil {
		return err
	}
	db, err := s.database(ctx)
	if err != nil {
		return err
	}

	for _, c := range m.Classes {
		exists, err := tableExists(ctx, db, schema.TableName(c))
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("table %s already exists, use update instead", schema.TableName(c))
		}
	}

	statements := schema.CreateStatements(m)
	if err := inTx(ctx, db, func(tx *sql.Tx) error { return execAll(ctx, tx, statements) }); err != nil {
		return err
	}
	slog.Info("schema created", "tables", len(m.Classes), "statements", len(statements))
	return nil
}

// UpdateSchema adds missing tables and columns. With clean it also drops
// tables and columns the mapping no longer knows about.
func (s *Service) UpdateSchema(ctx context.Context, clean bool) error {
	m, err := s.validMapping()
	if err != nil {
		return err
	}
	db, err := s.database(ctx)
	if err != nil {
		return err
	}
	existing, err := tables(ctx, db)
	if err != nil {
		return err
	}

	diff := schema.Compare(m, existing, clean)
	if diff.Empty() {
		slog.Info("schema is up to date")
		return nil
	}
	statements := diff.Up()
	if err := inTx(ctx, db, func(tx *sql.Tx) error { return execAll(ctx, tx, statements) }); err != nil {
		return err
	}
	slog.Info("schema updated", "changes", len(diff.Changes), "statements", len(statements), "clean", clean)
	return nil
}

func (s *Service) CompileProxies(ctx context.Context) error {
	m, err := s.validMapping()
	if err != nil {
		return err
	}
	n, err := s.opts.Proxies.Compile(ctx, m)
	if err != nil {
		return err
	}
	slog.Info("proxies compiled", "classes", n)
	return nil
}
