package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpadapter "github.com/openkraft/schemactl/internal/adapters/inbound/mcp"
	"github.com/openkraft/schemactl/internal/logging"
)

func newMCPCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the schemactl MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(opts))
	return cmd
}

func newMCPServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the schemactl MCP server (stdio)",
		Long:  "Start the schemactl MCP server using stdio transport. Every schema command is exposed as a tool.",
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol, so logs always go to stderr or the log file.
			lc := logging.DefaultConfig()
			if opts.logLevel != "" {
				lc.Level = opts.logLevel
			}
			stop, err := logging.SetupWriter(lc, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer stop()

			s := mcpadapter.NewSchemactlMCPServer(opts.path)
			return server.ServeStdio(s)
		},
	}
}
