package domain

import (
	"fmt"
	"strings"
	"time"
)

// VersionFormat is the time layout of migration versions.
const VersionFormat = "20060102150405"

// Direction selects which section of a migration runs.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection accepts "up", "down" or "" (up).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "", "up":
		return Up, nil
	case "down":
		return Down, nil
	default:
		return "", fmt.Errorf("unknown direction %q (valid: up, down)", s)
	}
}

// Migration is a versioned schema change script.
type Migration struct {
	Version  string   `json:"version"`
	Path     string   `json:"path"`
	Up       []string `json:"up"`
	Down     []string `json:"down"`
	Resource Resource `json:"resource"`
}

// Statements returns the statements for the given direction.
func (m Migration) Statements(d Direction) []string {
	if d == Down {
		return m.Down
	}
	return m.Up
}

// VersionFor formats t as a migration version.
func VersionFor(t time.Time) string {
	return t.UTC().Format(VersionFormat)
}

// VersionState is one line of the migration status listing.
type VersionState struct {
	Version    string `json:"version"`
	Migrated   bool   `json:"migrated"`
	Available  bool   `json:"available"`
	ExecutedAt string `json:"executed_at,omitempty"`
}

// MigrationStatus summarizes available and executed migrations.
type MigrationStatus struct {
	Driver    string         `json:"driver"`
	Database  string         `json:"database"`
	Directory string         `json:"directory"`
	Current   string         `json:"current"`
	Latest    string         `json:"latest"`
	Executed  int            `json:"executed"`
	Available int            `json:"available"`
	New       int            `json:"new"`
	Versions  []VersionState `json:"versions"`
}

// String renders the status report.
func (s MigrationStatus) String() string {
	var b strings.Builder
	b.WriteString(" == Configuration\n")
	row := func(label, value string) {
		fmt.Fprintf(&b, "    >> %-22s %s\n", label+":", value)
	}
	row("Driver", s.Driver)
	row("Database", s.Database)
	row("Migrations Directory", s.Directory)
	row("Current Version", versionOrZero(s.Current))
	row("Latest Version", versionOrZero(s.Latest))
	row("Executed Migrations", fmt.Sprint(s.Executed))
	row("Available Migrations", fmt.Sprint(s.Available))
	row("New Migrations", fmt.Sprint(s.New))

	if len(s.Versions) > 0 {
		b.WriteString("\n == Migration Versions\n")
		for _, v := range s.Versions {
			state := "not migrated"
			switch {
			case v.Migrated && !v.Available:
				state = "migrated, file missing"
			case v.Migrated:
				state = "migrated"
			}
			fmt.Fprintf(&b, "    >> %s %s\n", v.Version, state)
		}
	}
	return b.String()
}

func versionOrZero(v string) string {
	if v == "" {
		return "0"
	}
	return v
}
