package mapping

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/invopop/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/openkraft/schemactl/internal/domain"
)

const (
	schemaResource = "mapping.schema.json"
	cacheSize      = 32
)

// Loader implements domain.MappingLoader. Documents are checked against the
// JSON schema reflected from domain.Mapping before they are decoded. Decoded
// mappings are cached by path, size and modification time.
type Loader struct {
	cache *lru.Cache[string, domain.Mapping]
}

// New creates a Loader.
func New() *Loader {
	c, _ := lru.New[string, domain.Mapping](cacheSize)
	return &Loader{cache: c}
}

// Load reads and validates the mapping document at path.
func (l *Loader) Load(path string) (domain.Mapping, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.Mapping{}, fmt.Errorf("reading mapping: %w", err)
	}
	key := fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())
	if m, ok := l.cache.Get(key); ok {
		return m, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Mapping{}, fmt.Errorf("reading mapping: %w", err)
	}

	m, err := Decode(data)
	if err != nil {
		return domain.Mapping{}, fmt.Errorf("mapping %s: %w", path, err)
	}

	l.cache.Add(key, m)
	return m, nil
}

// Cached reports how many decoded documents are held.
func (l *Loader) Cached() int { return l.cache.Len() }

// Decode validates a YAML mapping document against the mapping schema and
// decodes it.
func Decode(data []byte) (domain.Mapping, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return domain.Mapping{}, fmt.Errorf("parsing yaml: %w", err)
	}

	// Round-trip through JSON so the validator sees plain JSON values.
	asJSON, err := json.Marshal(raw)
	if err != nil {
		return domain.Mapping{}, fmt.Errorf("converting yaml: %w", err)
	}
	var doc any
	if err := json.Unmarshal(asJSON, &doc); err != nil {
		return domain.Mapping{}, fmt.Errorf("converting yaml: %w", err)
	}

	sch, err := compiledSchema()
	if err != nil {
		return domain.Mapping{}, err
	}
	if err := sch.Validate(doc); err != nil {
		return domain.Mapping{}, fmt.Errorf("does not match the mapping schema: %w", err)
	}

	var m domain.Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return domain.Mapping{}, fmt.Errorf("decoding mapping: %w", err)
	}
	return m, nil
}

// Schema returns the JSON schema of mapping documents.
func Schema() ([]byte, error) {
	return json.MarshalIndent(reflectSchema(), "", "  ")
}

func reflectSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{Anonymous: true}
	return r.Reflect(&domain.Mapping{})
}

var compiledSchema = sync.OnceValues(func() (*validator.Schema, error) {
	data, err := json.Marshal(reflectSchema())
	if err != nil {
		return nil, fmt.Errorf("marshaling mapping schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling mapping schema: %w", err)
	}

	c := validator.NewCompiler()
	if err := c.AddResource(schemaResource, doc); err != nil {
		return nil, fmt.Errorf("adding mapping schema: %w", err)
	}
	sch, err := c.Compile(schemaResource)
	if err != nil {
		return nil, fmt.Errorf("compiling mapping schema: %w", err)
	}
	return sch, nil
})
