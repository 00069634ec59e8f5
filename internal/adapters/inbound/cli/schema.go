package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/openkraft/schemactl/internal/adapters/outbound/tui"
	"github.com/openkraft/schemactl/internal/bootstrap"
	"github.com/openkraft/schemactl/internal/domain"
	"github.com/openkraft/schemactl/internal/logging"
)

var commandShort = map[string]string{
	"validate":          "Validate the entity mapping",
	"compileproxies":    "Compile class metadata for every mapped class",
	"create":            "Create the database schema",
	"update":            "Add missing tables and columns",
	"updateandclean":    "Update the schema and drop unmapped tables and columns",
	"migrationstatus":   "Show the migration status",
	"migrate":           "Migrate the database to a version",
	"migrationgenerate": "Generate an empty migration",
	"migrationdiff":     "Generate a migration from the mapping and database differences",
	"migrationexecute":  "Execute a single migration up or down",
}

func newRoutedCmd(opts *rootOptions, name string) *cobra.Command {
	var (
		args      domain.CommandArgs
		direction string
	)

	cmd := &cobra.Command{
		Use:   name,
		Short: commandShort[name],
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if name == "migrationexecute" {
				d, err := domain.ParseDirection(direction)
				if err != nil {
					return err
				}
				args.Direction = d
			}
			return opts.dispatch(cmd, name, args)
		},
	}

	switch name {
	case "migrate":
		cmd.Flags().StringVar(&args.Version, "version", "", `Target version (default latest, "0" reverts all)`)
	case "migrationexecute":
		cmd.Flags().StringVar(&args.Version, "version", "", "Version to execute")
		cmd.Flags().StringVar(&direction, "direction", "up", "Direction to execute (up, down)")
	}
	return cmd
}

// open loads the project and installs its logger. The returned function
// releases both.
func (o *rootOptions) open(cmd *cobra.Command) (*bootstrap.Project, func(), error) {
	p, err := bootstrap.Open(o.path)
	if err != nil {
		return nil, nil, err
	}

	lc := logging.FromProject(p.Path, p.Config.Logging)
	if o.logLevel != "" {
		lc.Level = o.logLevel
	}
	stopLogging, err := logging.SetupWriter(lc, cmd.ErrOrStderr())
	if err != nil {
		p.Close()
		return nil, nil, fmt.Errorf("setting up logging: %w", err)
	}

	return p, func() {
		if err := p.Close(); err != nil {
			slog.Warn("closing database", "error", err)
		}
		stopLogging()
	}, nil
}

func (o *rootOptions) dispatch(cmd *cobra.Command, name string, args domain.CommandArgs) error {
	p, done, err := o.open(cmd)
	if err != nil {
		return err
	}
	defer done()

	out, err := p.Router.Dispatch(cmd.Context(), name, args)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), tui.RenderLines(out, o.plain))
	return nil
}
