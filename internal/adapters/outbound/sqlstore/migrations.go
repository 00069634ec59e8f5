package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/openkraft/schemactl/internal/domain"
	"github.com/openkraft/schemactl/internal/domain/schema"
)

const (
	noMigrationsMessage = "No migrations to execute."
	noChangesMessage    = "No changes detected in your mapping information."
)

var versionTableDDL = `CREATE TABLE IF NOT EXISTS ` + schema.MigrationsTable + ` (
	version TEXT NOT NULL PRIMARY KEY,
	checksum TEXT,
	executed_at DATETIME
)`

type executedVersion struct {
	checksum   string
	executedAt string
}

// MigrationStatus reports the configured database and every known version.
func (s *Service) MigrationStatus(ctx context.Context) (string, error) {
	status, err := s.Status(ctx)
	if err != nil {
		return "", err
	}
	return status.String(), nil
}

// Status builds the migration status.
func (s *Service) Status(ctx context.Context) (domain.MigrationStatus, error) {
	_, executed, available, err := s.migrationState(ctx)
	if err != nil {
		return domain.MigrationStatus{}, err
	}

	status := domain.MigrationStatus{
		Driver:    s.opts.Settings.Driver(),
		Database:  s.opts.Settings.DatabasePath(),
		Directory: s.opts.Migrations.Dir(),
		Executed:  len(executed),
		Available: len(available),
	}

	known := map[string]bool{}
	for v := range executed {
		known[v] = true
	}
	files := map[string]bool{}
	for _, m := range available {
		known[m.Version] = true
		files[m.Version] = true
		e, ok := executed[m.Version]
		if !ok {
			status.New++
		} else if e.checksum != "" && e.checksum != m.Resource.Hash {
			slog.Warn("migration file changed after it was executed", "version", m.Version, "path", m.Path)
		}
		status.Latest = m.Version
	}
	status.Current = currentVersion(executed)

	versions := make([]string, 0, len(known))
	for v := range known {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	for _, v := range versions {
		e, migrated := executed[v]
		status.Versions = append(status.Versions, domain.VersionState{
			Version:    v,
			Migrated:   migrated,
			Available:  files[v],
			ExecutedAt: e.executedAt,
		})
	}
	return status, nil
}

// ExecuteMigrations migrates up or down to version. An empty version means the
// latest available one; "0" reverts everything.
func (s *Service) ExecuteMigrations(ctx context.Context, version string) (string, error) {
	db, executed, available, err := s.migrationState(ctx)
	if err != nil {
		return "", err
	}

	byVersion := map[string]domain.Migration{}
	for _, m := range available {
		byVersion[m.Version] = m
	}

	target := version
	if target == "" {
		if len(available) == 0 {
			return noMigrationsMessage, nil
		}
		target = available[len(available)-1].Version
	}
	if target != "0" {
		_, isFile := byVersion[target]
		_, isExecuted := executed[target]
		if !isFile && !isExecuted {
			return "", fmt.Errorf("%w: %s", domain.ErrUnknownVersion, target)
		}
	}

	current := currentVersion(executed)
	var (
		plan      []domain.Migration
		direction = domain.Up
	)
	if target >= current {
		for _, m := range available {
			if _, done := executed[m.Version]; !done && m.Version <= target {
				plan = append(plan, m)
			}
		}
	} else {
		direction = domain.Down
		var revert []string
		for v := range executed {
			if target == "0" || v > target {
				revert = append(revert, v)
			}
		}
		sort.Sort(sort.Reverse(sort.StringSlice(revert)))
		for _, v := range revert {
			m, ok := byVersion[v]
			if !ok {
				return "", fmt.Errorf("%w: %s is migrated but its file is missing", domain.ErrUnknownVersion, v)
			}
			plan = append(plan, m)
		}
	}

	if len(plan) == 0 {
		return noMigrationsMessage, nil
	}

	lines := []string{fmt.Sprintf("Migrating %s to %s from %s", direction, target, versionOrZero(current))}
	for _, m := range plan {
		if err := s.run(ctx, db, m, direction); err != nil {
			return strings.Join(lines, "\n"), err
		}
		lines = append(lines, reportLine(m, direction))
	}
	slog.Info("migrations executed", "direction", direction, "count", len(plan), "target", target)
	return strings.Join(lines, "\n"), nil
}

// ExecuteMigration runs a single migration in the given direction.
func (s *Service) ExecuteMigration(ctx context.Context, version string, direction domain.Direction) (string, error) {
	if version == "" {
		return "", domain.ErrVersionRequired
	}
	if direction == "" {
		direction = domain.Up
	}
	db, executed, _, err := s.migrationState(ctx)
	if err != nil {
		return "", err
	}
	m, err := s.opts.Migrations.Get(version)
	if err != nil {
		return "", err
	}

	_, done := executed[version]
	switch {
	case direction == domain.Up && done:
		return "", fmt.Errorf("migration %s is already migrated", version)
	case direction == domain.Down && !done:
		return "", fmt.Errorf("migration %s is not migrated", version)
	}

	if err := s.run(ctx, db, m, direction); err != nil {
		return "", err
	}
	slog.Info("migration executed", "version", version, "direction", direction)
	return reportLine(m, direction), nil
}

// GenerateEmptyMigration writes a migration with empty sections.
func (s *Service) GenerateEmptyMigration(ctx context.Context) (string, error) {
	version := domain.VersionFor(s.opts.Now())
	path, err := s.opts.Migrations.Create(version, s.header(), nil, nil)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Generated new migration file to %q", path), nil
}

// GenerateDiffMigration writes a migration holding the differences between
// the mapping and the database.
func (s *Service) GenerateDiffMigration(ctx context.Context) (string, error) {
	m, err := s.validMapping()
	if err != nil {
		return "", err
	}
	db, err := s.database(ctx)
	if err != nil {
		return "", err
	}
	existing, err := tables(ctx, db)
	if err != nil {
		return "", err
	}

	diff := schema.Compare(m, existing, true)
	if diff.Empty() {
		return noChangesMessage, nil
	}

	version := domain.VersionFor(s.opts.Now())
	path, err := s.opts.Migrations.Create(version, s.header(), diff.Up(), diff.Down())
	if err != nil {
		return "", err
	}
	slog.Info("diff migration generated", "version", version, "changes", len(diff.Changes))
	return fmt.Sprintf("Generated new migration file to %q", path), nil
}

func (s *Service) migrationState(ctx context.Context) (*sql.DB, map[string]executedVersion, []domain.Migration, error) {
	db, err := s.database(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	if _, err := db.ExecContext(ctx, versionTableDDL); err != nil {
		return nil, nil, nil, fmt.Errorf("creating version table: %w", err)
	}
	executed, err := executedVersions(ctx, db)
	if err != nil {
		return nil, nil, nil, err
	}
	available, err := s.opts.Migrations.List()
	if err != nil {
		return nil, nil, nil, err
	}
	return db, executed, available, nil
}

func executedVersions(ctx context.Context, db *sql.DB) (map[string]executedVersion, error) {
	rows, err := db.QueryContext(ctx, `SELECT version, checksum, executed_at FROM `+schema.MigrationsTable)
	if err != nil {
		return nil, fmt.Errorf("reading executed versions: %w", err)
	}
	defer rows.Close()

	out := map[string]executedVersion{}
	for rows.Next() {
		var (
			version              string
			checksum, executedAt sql.NullString
		)
		if err := rows.Scan(&version, &checksum, &executedAt); err != nil {
			return nil, fmt.Errorf("reading executed versions: %w", err)
		}
		out[version] = executedVersion{checksum: checksum.String, executedAt: executedAt.String}
	}
	return out, rows.Err()
}

// run executes one migration and records it, in a single transaction.
func (s *Service) run(ctx context.Context, db *sql.DB, m domain.Migration, direction domain.Direction) error {
	err := inTx(ctx, db, func(tx *sql.Tx) error {
		if err := execAll(ctx, tx, m.Statements(direction)); err != nil {
			return err
		}
		if direction == domain.Down {
			_, err := tx.ExecContext(ctx, `DELETE FROM `+schema.MigrationsTable+` WHERE version = ?`, m.Version)
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO `+schema.MigrationsTable+` (version, checksum, executed_at) VALUES (?, ?, ?)`,
			m.Version, m.Resource.Hash, s.opts.Now().UTC().Format(time.RFC3339))
		return err
	})
	if err != nil {
		return fmt.Errorf("migration %s (%s): %w", m.Version, direction, err)
	}
	return nil
}

func (s *Service) header() string {
	lines := []string{"Generated by schemactl on " + s.opts.Now().UTC().Format(time.RFC3339)}
	if s.opts.Git == nil || !s.opts.Git.IsGitRepo(s.opts.ProjectPath) {
		return strings.Join(lines, "\n")
	}
	hash, err := s.opts.Git.CommitHash(s.opts.ProjectPath)
	if err != nil {
		slog.Debug("no commit for migration header", "error", err)
		return strings.Join(lines, "\n")
	}
	commit := "Commit " + hash
	if branch, err := s.opts.Git.Branch(s.opts.ProjectPath); err == nil && branch != "" {
		commit += " (" + branch + ")"
	}
	return strings.Join(append(lines, commit), "\n")
}

func currentVersion(executed map[string]executedVersion) string {
	current := ""
	for v := range executed {
		if v > current {
			current = v
		}
	}
	return current
}

func reportLine(m domain.Migration, direction domain.Direction) string {
	if direction == domain.Down {
		return fmt.Sprintf("  -- reverted %s (%d statements)", m.Version, len(m.Down))
	}
	return fmt.Sprintf("  ++ migrated %s (%d statements)", m.Version, len(m.Up))
}

func versionOrZero(v string) string {
	if v == "" {
		return "0"
	}
	return v
}
