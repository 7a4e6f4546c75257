package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/openfroyo/confmix/pkg/telemetry"
	"gopkg.in/yaml.v3"
)

// Format is the syntax of a source document.
type Format string

const (
	FormatYAML     Format = "yaml"
	FormatJSON     Format = "json"
	FormatCUE      Format = "cue"
	FormatStarlark Format = "star"
)

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".cue":
		return FormatCUE, nil
	case ".star":
		return FormatStarlark, nil
	default:
		return "", fmt.Errorf("unsupported file type: %s", path)
	}
}

// Loader reads source documents into raw value trees. Parsed documents are
// cached per absolute path until invalidated.
type Loader struct {
	logger  *telemetry.Logger
	metrics *telemetry.Metrics

	mu    sync.RWMutex
	cache map[string]interface{}

	// cue contexts are not safe for concurrent use.
	cueMu  sync.Mutex
	cueCtx *cue.Context

	starlark starlarkRunner
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the loader's logger.
func WithLogger(logger *telemetry.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithMetrics sets the metrics collector for document loads.
func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(l *Loader) {
		l.metrics = metrics
	}
}

// WithStarlarkTimeout bounds the execution of Starlark documents.
func WithStarlarkTimeout(timeout time.Duration) Option {
	return func(l *Loader) {
		if timeout > 0 {
			l.starlark.timeout = timeout
		}
	}
}

// WithStarlarkGlobals predeclares values for Starlark documents.
func WithStarlarkGlobals(globals map[string]interface{}) Option {
	return func(l *Loader) {
		l.starlark.globals = globals
	}
}

// NewLoader creates a new document loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		logger:   telemetry.NopLogger(),
		cache:    make(map[string]interface{}),
		cueCtx:   cuecontext.New(),
		starlark: starlarkRunner{timeout: DefaultStarlarkTimeout},
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.NewComponentLogger("config")
	return l
}

// Load returns the raw value tree of the document at path. Mappings become
// map[string]interface{} and sequences []interface{}.
func (l *Loader) Load(ctx context.Context, path string) (interface{}, error) {
	id, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	format, err := FormatOf(id)
	if err != nil {
		return nil, err
	}

	l.mu.RLock()
	cached, ok := l.cache[id]
	l.mu.RUnlock()
	if ok {
		l.metrics.RecordDocumentLoad(string(format), true)
		return cached, nil
	}

	data, err := os.ReadFile(id)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	raw, err := l.parse(ctx, id, format, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	l.mu.Lock()
	l.cache[id] = raw
	size := len(l.cache)
	l.mu.Unlock()

	l.metrics.RecordDocumentLoad(string(format), false)
	l.metrics.SetDocumentCacheSize(size)

	z := l.logger.Zerolog()
	z.Debug().
		Str("path", id).
		Str("format", string(format)).
		Msg("document loaded")

	return raw, nil
}

func (l *Loader) parse(ctx context.Context, id string, format Format, data []byte) (interface{}, error) {
	switch format {
	case FormatYAML:
		var raw interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		return raw, nil
	case FormatJSON:
		return decodeJSON(data)
	case FormatCUE:
		return l.compileCUE(id, data)
	case FormatStarlark:
		return l.starlark.run(ctx, id, data)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// compileCUE evaluates a CUE document. The value must be concrete.
func (l *Loader) compileCUE(id string, data []byte) (interface{}, error) {
	l.cueMu.Lock()
	defer l.cueMu.Unlock()

	val := l.cueCtx.CompileBytes(data, cue.Filename(id))
	if err := val.Err(); err != nil {
		return nil, fmt.Errorf("%s", cueerrors.Details(err, nil))
	}
	if err := val.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("%s", cueerrors.Details(err, nil))
	}

	out, err := val.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to export value: %w", err)
	}
	return decodeJSON(out)
}

// decodeJSON decodes a JSON document keeping integral numbers as int64.
func decodeJSON(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return normalizeNumbers(raw), nil
}

func normalizeNumbers(v interface{}) interface{} {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		f, _ := val.Float64()
		return f
	case []interface{}:
		for i, item := range val {
			val[i] = normalizeNumbers(item)
		}
		return val
	case map[string]interface{}:
		for k, item := range val {
			val[k] = normalizeNumbers(item)
		}
		return val
	default:
		return v
	}
}

// Invalidate drops the cached document for path.
func (l *Loader) Invalidate(path string) {
	id, err := filepath.Abs(path)
	if err != nil {
		id = path
	}

	l.mu.Lock()
	delete(l.cache, id)
	size := len(l.cache)
	l.mu.Unlock()

	l.metrics.SetDocumentCacheSize(size)
}

// ClearCache drops every cached document.
func (l *Loader) ClearCache() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cache = make(map[string]interface{})
	l.metrics.SetDocumentCacheSize(0)

	z := l.logger.Zerolog()
	z.Debug().Msg("document cache cleared")
}

// Cached reports whether the document at path is cached.
func (l *Loader) Cached(path string) bool {
	id, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.cache[id]
	return ok
}
