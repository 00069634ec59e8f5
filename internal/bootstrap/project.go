// Package bootstrap wires the outbound adapters of a project directory into a
// command router.
package bootstrap

import (
	"fmt"
	"path/filepath"

	"github.com/openkraft/schemactl/internal/adapters/outbound/config"
	"github.com/openkraft/schemactl/internal/adapters/outbound/gitinfo"
	"github.com/openkraft/schemactl/internal/adapters/outbound/mapping"
	"github.com/openkraft/schemactl/internal/adapters/outbound/migrations"
	"github.com/openkraft/schemactl/internal/adapters/outbound/proxy"
	"github.com/openkraft/schemactl/internal/adapters/outbound/sqlstore"
	"github.com/openkraft/schemactl/internal/application"
	"github.com/openkraft/schemactl/internal/domain"
)

// mappings is shared so repeated opens within one process reuse decoded
// mapping documents.
var mappings = mapping.New()

// Project is an opened project directory.
type Project struct {
	Path    string
	Config  domain.ProjectConfig
	Service *sqlstore.Service
	Router  *application.CommandRouter
}

// Open loads the settings of the project at path and wires its services. No
// database connection is made until a command needs one.
func Open(path string) (*Project, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.New().Load(abs)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return New(abs, cfg), nil
}

// New wires a project from an already loaded configuration.
func New(abs string, cfg domain.ProjectConfig) *Project {
	settings := cfg.Persistence
	svc := sqlstore.New(sqlstore.Options{
		ProjectPath: abs,
		Settings:    settings,
		Mappings:    mappings,
		Migrations:  migrations.New(config.Resolve(abs, settings.Migrations)),
		Proxies:     proxy.New(config.Resolve(abs, settings.Proxies)),
		Git:         gitinfo.New(),
	})
	return &Project{
		Path:    abs,
		Config:  cfg,
		Service: svc,
		Router:  application.NewCommandRouter(settings, svc),
	}
}

func (p *Project) Close() error {
	return p.Service.Close()
}
