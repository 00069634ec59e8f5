package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openkraft/schemactl/internal/domain"
)

const (
	ValidationPassed = "Mapping validation results: PASSED, no errors found. :o)"
	ValidationFailed = "Mapping validation results: FAILED!"

	backendNotSet = "the driver and path backend options are not set."
)

// Output is the line-oriented result of a routed command.
type Output []string

type command struct {
	skip string
	run  func(ctx context.Context, svc domain.CommandService, args domain.CommandArgs) (Output, error)
}

var commands = map[string]command{
	"validate": {
		skip: "Mapping validation has been SKIPPED, " + backendNotSet,
		run:  runValidate,
	},
	"create": {
		skip: "Database schema creation has been SKIPPED, " + backendNotSet,
		run: func(ctx context.Context, svc domain.CommandService, _ domain.CommandArgs) (Output, error) {
			return nil, svc.CreateSchema(ctx)
		},
	},
	"update": {
		skip: "Database schema update has been SKIPPED, " + backendNotSet,
		run: func(ctx context.Context, svc domain.CommandService, _ domain.CommandArgs) (Output, error) {
			return nil, svc.UpdateSchema(ctx, false)
		},
	},
	"updateandclean": {
		skip: "Database schema update has been SKIPPED, " + backendNotSet,
		run: func(ctx context.Context, svc domain.CommandService, _ domain.CommandArgs) (Output, error) {
			return nil, svc.UpdateSchema(ctx, true)
		},
	},
	"compileproxies": {
		skip: "Proxy compilation has been SKIPPED, " + backendNotSet,
		run: func(ctx context.Context, svc domain.CommandService, _ domain.CommandArgs) (Output, error) {
			return nil, svc.CompileProxies(ctx)
		},
	},
	"migrationstatus": {
		skip: "Migration status not available, " + backendNotSet,
		run: func(ctx context.Context, svc domain.CommandService, _ domain.CommandArgs) (Output, error) {
			return lines(svc.MigrationStatus(ctx))
		},
	},
	"migrate": {
		skip: "Migration not possible, " + backendNotSet,
		run: func(ctx context.Context, svc domain.CommandService, args domain.CommandArgs) (Output, error) {
			return lines(svc.ExecuteMigrations(ctx, args.Version))
		},
	},
	"migrationexecute": {
		skip: "Migration not possible, " + backendNotSet,
		run: func(ctx context.Context, svc domain.CommandService, args domain.CommandArgs) (Output, error) {
			return lines(svc.ExecuteMigration(ctx, args.Version, args.Direction))
		},
	},
	"migrationgenerate": {
		skip: "Migration generation has been SKIPPED, " + backendNotSet,
		run: func(ctx context.Context, svc domain.CommandService, _ domain.CommandArgs) (Output, error) {
			return lines(svc.GenerateEmptyMigration(ctx))
		},
	},
	"migrationdiff": {
		skip: "Migration generation has been SKIPPED, " + backendNotSet,
		run: func(ctx context.Context, svc domain.CommandService, _ domain.CommandArgs) (Output, error) {
			return lines(svc.GenerateDiffMigration(ctx))
		},
	},
}

// CommandNames lists the routed commands in help order.
var CommandNames = []string{
	"validate", "compileproxies",
	"create", "update", "updateandclean",
	"migrationstatus", "migrate", "migrationgenerate", "migrationdiff", "migrationexecute",
}

// CommandRouter maps a command name to a schema service call. Without a
// configured backend every command is skipped and the service is never
// touched.
type CommandRouter struct {
	settings domain.PersistenceSettings
	svc      domain.CommandService
}

func NewCommandRouter(settings domain.PersistenceSettings, svc domain.CommandService) *CommandRouter {
	return &CommandRouter{settings: settings, svc: svc}
}

// Dispatch runs the named command. Service errors are returned as they are.
func (r *CommandRouter) Dispatch(ctx context.Context, name string, args domain.CommandArgs) (Output, error) {
	if name == "help" {
		return Help(), nil
	}
	cmd, ok := commands[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCommand, name)
	}
	if !r.settings.HasBackend() {
		slog.Debug("command skipped", "command", name)
		return Output{cmd.skip}, nil
	}

	slog.Debug("dispatching command", "command", name, "version", args.Version, "direction", args.Direction)
	return cmd.run(ctx, r.svc, args)
}

// SkipMessage returns the line emitted when name is gated.
func SkipMessage(name string) (string, bool) {
	cmd, ok := commands[name]
	return cmd.skip, ok
}

// Help lists the available commands.
func Help() Output {
	return Output{
		"Available commands:",
		"  validate, compileproxies",
		"  create, update, updateandclean",
		"  migrationstatus, migrate, migrationgenerate, migrationdiff, migrationexecute",
	}
}

func runValidate(ctx context.Context, svc domain.CommandService, _ domain.CommandArgs) (Output, error) {
	errs, err := svc.ValidateMapping(ctx)
	if err != nil {
		return nil, err
	}
	if errs == nil || errs.Len() == 0 {
		return Output{ValidationPassed}, nil
	}

	out := Output{ValidationFailed}
	for pair := errs.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, "  "+pair.Key)
		for _, msg := range pair.Value {
			out = append(out, "    "+msg)
		}
	}
	return out, nil
}

// lines splits a multi-line service result.
func lines(s string, err error) (Output, error) {
	if err != nil {
		return nil, err
	}
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil, nil
	}
	return strings.Split(s, "\n"), nil
}
