package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/openkraft/schemactl/internal/application"
	"github.com/openkraft/schemactl/internal/bootstrap"
	"github.com/openkraft/schemactl/internal/domain"
	"github.com/openkraft/schemactl/internal/domain/gate"
)

var toolDescriptions = map[string]string{
	"validate":          "Validate the entity mapping and report errors per class",
	"compileproxies":    "Compile class metadata for every mapped class",
	"create":            "Create the database schema from the mapping",
	"update":            "Add missing tables and columns to the database",
	"updateandclean":    "Update the database schema and drop unmapped tables and columns",
	"migrationstatus":   "Show the configured database and the state of every migration version",
	"migrate":           "Migrate the database up or down to a version",
	"migrationgenerate": "Generate an empty migration file",
	"migrationdiff":     "Generate a migration from the differences between mapping and database",
	"migrationexecute":  "Execute a single migration version up or down",
}

// ToolName returns the MCP tool name of a routed command.
func ToolName(command string) string {
	return "schemactl_" + command
}

// registerTools registers one tool per routed command plus the validation
// gate.
func registerTools(s *server.MCPServer, projectPath string) {
	for _, name := range application.CommandNames {
		opts := []mcplib.ToolOption{mcplib.WithDescription(toolDescriptions[name])}
		switch name {
		case "migrate":
			opts = append(opts, mcplib.WithString("version",
				mcplib.Description(`Target version; empty migrates to the latest, "0" reverts everything`)))
		case "migrationexecute":
			opts = append(opts,
				mcplib.WithString("version", mcplib.Required(), mcplib.Description("Version to execute")),
				mcplib.WithString("direction", mcplib.Description("up (default) or down")),
			)
		}
		s.AddTool(mcplib.NewTool(ToolName(name), opts...), handleCommand(projectPath, name))
	}

	s.AddTool(
		mcplib.NewTool("schemactl_if_has_errors",
			mcplib.WithDescription("Return the then value when the validation results hold errors at the given property path, the else value otherwise"),
			mcplib.WithString("results", mcplib.Description("Validation result tree as JSON")),
			mcplib.WithString("for", mcplib.Description("Dot-separated property path; empty checks the whole tree")),
			mcplib.WithString("then", mcplib.Description("Value returned when errors are present")),
			mcplib.WithString("else", mcplib.Description("Value returned when there are no errors")),
		),
		handleIfHasErrors(),
	)
}

func handleCommand(projectPath, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		var args domain.CommandArgs
		args.Version, _ = request.GetArguments()["version"].(string)
		if name == "migrationexecute" {
			dir, _ := request.GetArguments()["direction"].(string)
			d, err := domain.ParseDirection(dir)
			if err != nil {
				return errorResult(err.Error()), nil
			}
			args.Direction = d
		}

		p, err := bootstrap.Open(projectPath)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		defer p.Close()

		out, err := p.Router.Dispatch(ctx, name, args)
		if err != nil {
			return errorResult(fmt.Sprintf("%s failed: %v", name, err)), nil
		}
		return textResult(strings.Join(out, "\n")), nil
	}
}

func handleIfHasErrors() server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		arguments := request.GetArguments()
		raw, _ := arguments["results"].(string)
		forPath, _ := arguments["for"].(string)
		then, _ := arguments["then"].(string)
		otherwise, _ := arguments["else"].(string)

		req := domain.NewActionRequest()
		if strings.TrimSpace(raw) != "" {
			results := domain.NewResult()
			if err := json.Unmarshal([]byte(raw), results); err != nil {
				return errorResult(fmt.Sprintf("decoding results: %v", err)), nil
			}
			req.SetInternalArgument(domain.SubmittedValidationResults, results)
		}

		out, err := gate.Render(req, forPath, gate.StaticChildren{Then: then, Else: otherwise})
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(map[string]string{
			"branch": gate.EvaluateRequest(req, forPath).String(),
			"output": out,
		})
	}
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// textResult returns a plain text content result.
func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(text)},
	}
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
