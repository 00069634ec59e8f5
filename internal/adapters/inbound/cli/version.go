package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openkraft/schemactl/internal/adapters/outbound/migrations"
	"github.com/openkraft/schemactl/internal/adapters/outbound/sqlstore"
	"github.com/openkraft/schemactl/internal/domain/schema"
)

func newVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show schemactl version, drivers and migration format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "schemactl %s (%s)\n", version, commit)
			if short {
				return nil
			}
			fmt.Fprintf(w, "  drivers:     %s\n", strings.Join(sqlstore.Drivers(), ", "))
			fmt.Fprintf(w, "  migrations:  %s, tracked in %s\n", migrations.FilePattern, schema.MigrationsTable)
			return nil
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print only the version line")
	return cmd
}
