package migrations

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/openkraft/schemactl/internal/domain"
)

const (
	upMarker   = "-- +up"
	downMarker = "-- +down"
)

// FilePattern describes migration file names.
const FilePattern = "Version<YYYYMMDDhhmmss>.sql"

var fileNameRe = regexp.MustCompile(`^Version(\d{14})\.sql$`)

// Repository implements domain.MigrationRepository on a directory of
// Version<timestamp>.sql files.
type Repository struct {
	dir string
}

// New creates a repository rooted at dir. The directory is created on the
// first Create.
func New(dir string) *Repository {
	return &Repository{dir: dir}
}

func (r *Repository) Dir() string { return r.dir }

// FileName returns the file name of a migration version.
func FileName(version string) string {
	return "Version" + version + ".sql"
}

// List returns all migrations sorted by version. A missing directory yields
// no migrations.
func (r *Repository) List() ([]domain.Migration, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing migrations: %w", err)
	}

	var out []domain.Migration
	for _, e := range entries {
		if e.IsDir() || !fileNameRe.MatchString(e.Name()) {
			continue
		}
		m, err := Parse(filepath.Join(r.dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Get returns a single migration.
func (r *Repository) Get(version string) (domain.Migration, error) {
	path := filepath.Join(r.dir, FileName(version))
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Migration{}, fmt.Errorf("%w: %s", domain.ErrUnknownVersion, version)
		}
		return domain.Migration{}, err
	}
	return Parse(path)
}

// Create writes a new migration file and returns its path. Existing files are
// never overwritten.
func (r *Repository) Create(version, header string, up, down []string) (string, error) {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return "", fmt.Errorf("creating migrations directory: %w", err)
	}
	path := filepath.Join(r.dir, FileName(version))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("creating migration %s: %w", version, err)
	}
	if _, err := f.WriteString(Format(version, header, up, down)); err != nil {
		f.Close()
		return "", fmt.Errorf("writing migration %s: %w", version, err)
	}
	return path, f.Close()
}

// Format renders a migration file.
func Format(version, header string, up, down []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "-- schemactl migration Version%s\n", version)
	for _, line := range strings.Split(strings.TrimSpace(header), "\n") {
		if line != "" {
			b.WriteString("-- " + line + "\n")
		}
	}
	b.WriteString(upMarker + "\n")
	for _, s := range up {
		b.WriteString(s + ";\n")
	}
	b.WriteString(downMarker + "\n")
	for _, s := range down {
		b.WriteString(s + ";\n")
	}
	return b.String()
}

// Parse reads a migration file.
func Parse(path string) (domain.Migration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Migration{}, fmt.Errorf("reading migration: %w", err)
	}
	match := fileNameRe.FindStringSubmatch(filepath.Base(path))
	if match == nil {
		return domain.Migration{}, fmt.Errorf("migration file name %q does not match %s", filepath.Base(path), FilePattern)
	}

	up, down := parseSections(data)
	return domain.Migration{
		Version:  match[1],
		Path:     path,
		Up:       up,
		Down:     down,
		Resource: domain.NewResource(filepath.Base(path), data),
	}, nil
}

func parseSections(data []byte) (up, down []string) {
	var current *[]string
	var stmt strings.Builder

	flush := func() {
		s := strings.TrimSpace(stmt.String())
		stmt.Reset()
		s = strings.TrimSpace(strings.TrimSuffix(s, ";"))
		if s != "" && current != nil {
			*current = append(*current, s)
		}
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.EqualFold(line, upMarker):
			flush()
			current = &up
			continue
		case strings.EqualFold(line, downMarker):
			flush()
			current = &down
			continue
		case line == "" || strings.HasPrefix(line, "--"):
			continue
		}
		if stmt.Len() > 0 {
			stmt.WriteString("\n")
		}
		stmt.WriteString(line)
		if strings.HasSuffix(line, ";") {
			flush()
		}
	}
	flush()
	return up, down
}
