package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/openkraft/schemactl/internal/adapters/outbound/mapping"
	"github.com/openkraft/schemactl/internal/application"
	"github.com/openkraft/schemactl/internal/bootstrap"
)

const (
	mappingSchemaURI   = "schemactl://mapping-schema"
	migrationStatusURI = "schemactl://migrations/status"
)

// registerResources registers all schemactl MCP resources on the given server.
func registerResources(s *server.MCPServer, projectPath string) {
	s.AddResource(
		mcplib.NewResource(
			mappingSchemaURI,
			"Mapping Schema",
			mcplib.WithResourceDescription("JSON schema of entity mapping documents"),
			mcplib.WithMIMEType("application/schema+json"),
		),
		handleMappingSchemaResource(),
	)

	s.AddResource(
		mcplib.NewResource(
			migrationStatusURI,
			"Migration Status",
			mcplib.WithResourceDescription("Executed and available migration versions of the project database"),
			mcplib.WithMIMEType("application/json"),
		),
		handleMigrationStatusResource(projectPath),
	)
}

func handleMappingSchemaResource() server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		data, err := mapping.Schema()
		if err != nil {
			return nil, fmt.Errorf("reflecting mapping schema: %w", err)
		}
		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      mappingSchemaURI,
				MIMEType: "application/schema+json",
				Text:     string(data),
			},
		}, nil
	}
}

func handleMigrationStatusResource(projectPath string) server.ResourceHandlerFunc {
	return func(ctx context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		p, err := bootstrap.Open(projectPath)
		if err != nil {
			return nil, err
		}
		defer p.Close()

		var v any
		if p.Config.Persistence.HasBackend() {
			status, err := p.Service.Status(ctx)
			if err != nil {
				return nil, fmt.Errorf("reading migration status: %w", err)
			}
			v = status
		} else {
			skip, _ := application.SkipMessage("migrationstatus")
			v = map[string]string{"skipped": skip}
		}

		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling migration status: %w", err)
		}
		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      migrationStatusURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}
