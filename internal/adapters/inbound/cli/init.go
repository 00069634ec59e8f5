package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/openkraft/schemactl/internal/adapters/outbound/config"
	"github.com/openkraft/schemactl/internal/adapters/outbound/sqlstore"
	"github.com/openkraft/schemactl/internal/domain"
)

func newInitCmd(opts *rootOptions) *cobra.Command {
	var (
		driver   string
		database string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .schemactl.yaml configuration file",
		Long:  "Create a .schemactl.yaml with the default mapping, migrations and proxies locations.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			absPath, err := filepath.Abs(opts.path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			dest := filepath.Join(absPath, config.FileName)
			if !force {
				if _, err := os.Stat(dest); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", config.FileName)
				}
			}

			if driver != "" {
				if _, err := sqlstore.DriverName(driver); err != nil {
					return err
				}
			}

			content, err := generateConfig(driver, database)
			if err != nil {
				return err
			}
			if err := os.WriteFile(dest, []byte(content), 0644); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", config.FileName)
			return nil
		},
	}

	cmd.Flags().StringVar(&driver, "driver", "sqlite", `Database driver (sqlite, pdo_sqlite, sqlite3; "" leaves the backend unset)`)
	cmd.Flags().StringVar(&database, "database", "var/app.db", "Database file, relative to the project")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing .schemactl.yaml")

	return cmd
}

// generateConfig renders a settings file. Without a driver the backend
// options are left null, so every schema command is skipped.
func generateConfig(driver, database string) (string, error) {
	backend := "  backend_options:\n    driver: null\n    path: null\n"
	if driver != "" {
		d, err := yamlScalar(driver)
		if err != nil {
			return "", err
		}
		p, err := yamlScalar(database)
		if err != nil {
			return "", err
		}
		backend = fmt.Sprintf("  backend_options:\n    driver: %s\n    path: %s\n", d, p)
	}

	return fmt.Sprintf(`# schemactl configuration

persistence:
%s  mapping: %s
  migrations: %s
  proxies: %s

logging:
  level: info
# file: var/log/schemactl.log
# max_size_mb: 100
# max_backups: 3
`, backend, domain.DefaultMappingFile, domain.DefaultMigrationsDir, domain.DefaultProxiesDir), nil
}

// yamlScalar encodes v as a single YAML scalar, quoted when needed.
func yamlScalar(v string) (string, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding %q: %w", v, err)
	}
	return strings.TrimSuffix(string(out), "\n"), nil
}
