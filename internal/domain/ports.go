package domain

import "context"

// CommandService performs the schema operations the command router delegates to.
type CommandService interface {
	ValidateMapping(ctx context.Context) (*MappingErrors, error)
	CreateSchema(ctx context.Context) error
	UpdateSchema(ctx context.Context, clean bool) error
	CompileProxies(ctx context.Context) error
	MigrationStatus(ctx context.Context) (string, error)
	ExecuteMigrations(ctx context.Context, version string) (string, error)
	GenerateDiffMigration(ctx context.Context) (string, error)
	GenerateEmptyMigration(ctx context.Context) (string, error)
	ExecuteMigration(ctx context.Context, version string, direction Direction) (string, error)
}

// CommandArgs carries the optional arguments of a routed command.
type CommandArgs struct {
	Version   string
	Direction Direction
}

// ConfigLoader loads project configuration.
type ConfigLoader interface {
	Load(projectPath string) (ProjectConfig, error)
}

// MappingLoader loads the entity mapping document.
type MappingLoader interface {
	Load(path string) (Mapping, error)
}

// MigrationRepository stores migration files.
type MigrationRepository interface {
	Dir() string
	List() ([]Migration, error)
	Get(version string) (Migration, error)
	Create(version, header string, up, down []string) (string, error)
}

// ProxyCompiler writes compiled class metadata.
type ProxyCompiler interface {
	Compile(ctx context.Context, m Mapping) (int, error)
}

// GitInfo provides repository information.
type GitInfo interface {
	IsGitRepo(projectPath string) bool
	CommitHash(projectPath string) (string, error)
	Branch(projectPath string) (string, error)
}

// SubmittedValidationResults is the internal request argument holding the
// validation results of the submitted arguments.
const SubmittedValidationResults = "__submittedArgumentValidationResults"

// Request exposes internal arguments set by the dispatcher.
type Request interface {
	InternalArgument(name string) any
}

// ActionRequest is a minimal Request backed by a map.
type ActionRequest struct {
	internal map[string]any
}

func NewActionRequest() *ActionRequest {
	return &ActionRequest{internal: map[string]any{}}
}

func (r *ActionRequest) SetInternalArgument(name string, value any) {
	if r.internal == nil {
		r.internal = map[string]any{}
	}
	r.internal[name] = value
}

func (r *ActionRequest) InternalArgument(name string) any {
	return r.internal[name]
}
