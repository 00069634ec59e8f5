package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openkraft/schemactl/internal/adapters/outbound/tui"
	"github.com/openkraft/schemactl/internal/application"
)

var (
	version = "dev"
	commit  = "none"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	path     string
	logLevel string
	plain    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "schemactl",
		Short: "Manage a relational schema from an entity mapping",
		Long: "schemactl validates an entity mapping, creates and updates the database schema, " +
			"compiles class metadata and manages versioned migrations.\n\n" +
			strings.Join(application.Help(), "\n"),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.path, "path", ".", "Project directory holding .schemactl.yaml")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&opts.plain, "plain", false, "Disable styled output")

	for _, name := range application.CommandNames {
		cmd.AddCommand(newRoutedCmd(opts, name))
	}
	cmd.AddCommand(newIfErrorsCmd(opts))
	cmd.AddCommand(newInitCmd(opts))
	cmd.AddCommand(newMappingCmd())
	cmd.AddCommand(newMCPCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	cmd := newRootCmd()
	err := cmd.Execute()
	if err != nil {
		plain, _ := cmd.PersistentFlags().GetBool("plain")
		fmt.Fprint(os.Stderr, tui.RenderError(err, plain))
	}
	return err
}
