package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/esgate/pkg/policy"
)

// Environment variable names.
const (
	EnvConfig           = "ES_CONFIG"
	EnvEndpoint         = "ES_ENDPOINT"
	EnvUsername         = "ES_USERNAME"
	EnvPassword         = "ES_PASSWORD"
	EnvAPIKey           = "ES_API_KEY"
	EnvVerifyTLS        = "ES_TLS_REJECT_UNAUTHORIZED"
	EnvMaxSearchSize    = "ES_MAX_SEARCH_SIZE"
	EnvRequireTimeRange = "ES_REQUIRE_TIME_RANGE"
	EnvDefaultLookback  = "ES_DEFAULT_LOOKBACK"
	EnvAllowedPatterns  = "ES_ALLOWED_INDEX_PATTERNS"
	EnvVerbose          = "ES_VERBOSE"
	EnvRequestTimeout   = "ES_REQUEST_TIMEOUT"
	EnvAuditRedisAddr   = "ES_AUDIT_REDIS_ADDR"
	EnvIndex            = "ES_INDEX"
	envIndexPrefix      = "ES_INDEX_"
)

const (
	DefaultMaxSearchSize  = policy.DefaultMaxSize
	DefaultRequestTimeout = 30 * time.Second
)

var (
	ErrNoEndpoint    = errors.New("ES_ENDPOINT missing")
	ErrNoCredentials = errors.New("missing credentials: set ES_API_KEY or both ES_USERNAME and ES_PASSWORD")
)

// Config is the process configuration. It is read once at startup and never mutated.
type Config struct {
	Endpoint         string
	Username         string
	Password         string
	APIKey           string
	VerifyTLS        bool
	MaxSearchSize    int
	RequireTimeRange bool
	DefaultLookback  string
	AllowedPatterns  []string
	Verbose          bool
	RequestTimeout   time.Duration
	AuditRedisAddr   string

	// Indices is the alias registry in declaration order.
	Indices []policy.Alias

	SearchFields []string
	SourceFields []string
}

// DefaultIndices is the alias registry used when nothing else is configured.
func DefaultIndices() []policy.Alias {
	return []policy.Alias{
		{Name: policy.DefaultAlias, Index: "bunsyo_local_iinkaigijiroku_v0.0.1"},
		{Name: "keikakuhoshin", Index: "bunsyo_local_keikakuhoshin_v0.0.1"},
		{Name: "kouhou", Index: "bunsyo_local_kouhou_v0.0.1"},
		{Name: "yosankessan", Index: "bunsyo_local_yosankessan_v0.0.1"},
	}
}

// Default returns the built-in configuration. It has no endpoint and does not validate.
func Default() Config {
	return Config{
		VerifyTLS:        true,
		MaxSearchSize:    DefaultMaxSearchSize,
		RequireTimeRange: true,
		DefaultLookback:  policy.DefaultLookback,
		AllowedPatterns:  []string{"*"},
		RequestTimeout:   DefaultRequestTimeout,
		Indices:          DefaultIndices(),
		SearchFields:     []string{"title^2", "content_text"},
		SourceFields:     []string{"title", "organization_code", "created_at", "content_text"},
	}
}

// Load builds the configuration from defaults, the YAML file at path (or ES_CONFIG),
// a .env file and the process environment, in increasing precedence.
func Load(path string) (Config, error) {
	if err := LoadDotenv(); err != nil {
		return Config{}, err
	}
	return FromEnviron(path, os.Environ())
}

// LoadDotenv loads the .env file next to the executable, or else the one in the
// working directory. Variables that are already set are kept.
func LoadDotenv() error {
	var candidates []string
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), ".env"))
	}
	candidates = append(candidates, ".env")

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		return nil
	}
	return nil
}

// FromEnviron is Load without the .env step, reading variables from environ
// ("KEY=value" pairs, as returned by os.Environ).
func FromEnviron(path string, environ []string) (Config, error) {
	env := parseEnviron(environ)
	cfg := Default()

	if path == "" {
		path = env[EnvConfig]
	}
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(env); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseEnviron(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

func (c *Config) applyEnv(env map[string]string) error {
	if v, ok := env[EnvEndpoint]; ok {
		c.Endpoint = v
	}
	c.Endpoint = strings.TrimRight(c.Endpoint, "/")
	if v, ok := env[EnvUsername]; ok {
		c.Username = v
	}
	if v, ok := env[EnvPassword]; ok {
		c.Password = v
	}
	if v, ok := env[EnvAPIKey]; ok {
		c.APIKey = v
	}
	if v, ok := env[EnvVerifyTLS]; ok {
		c.VerifyTLS = isTrue(v)
	}
	if v, ok := env[EnvMaxSearchSize]; ok {
		c.MaxSearchSize = parseSize(v)
	}
	if v, ok := env[EnvRequireTimeRange]; ok {
		c.RequireTimeRange = isTrue(v)
	}
	if v, ok := env[EnvDefaultLookback]; ok && v != "" {
		c.DefaultLookback = v
	}
	if v, ok := env[EnvAllowedPatterns]; ok {
		c.AllowedPatterns = policy.ParsePatterns(v)
	}
	if v, ok := env[EnvVerbose]; ok {
		c.Verbose = isTrue(v)
	}
	if v, ok := env[EnvRequestTimeout]; ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvRequestTimeout, err)
		}
		c.RequestTimeout = d
	}
	if v, ok := env[EnvAuditRedisAddr]; ok {
		c.AuditRedisAddr = v
	}

	if v, ok := env[EnvIndex]; ok {
		c.setIndex(policy.DefaultAlias, v)
	}
	var extra []string
	for k := range env {
		if alias, ok := strings.CutPrefix(k, envIndexPrefix); ok && alias != "" {
			extra = append(extra, alias)
		}
	}
	sort.Strings(extra)
	for _, alias := range extra {
		c.setIndex(alias, env[envIndexPrefix+alias])
	}
	return nil
}

// setIndex overrides an existing alias in place or appends a new one.
func (c *Config) setIndex(alias, index string) {
	for i := range c.Indices {
		if c.Indices[i].Name == alias {
			c.Indices[i].Index = index
			return
		}
	}
	c.Indices = append(c.Indices, policy.Alias{Name: alias, Index: index})
}

func isTrue(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "true")
}

// parseSize accepts only plain digits and falls back to the default otherwise.
func parseSize(v string) int {
	v = strings.TrimSpace(v)
	if v == "" || strings.TrimLeft(v, "0123456789") != "" {
		return DefaultMaxSearchSize
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return DefaultMaxSearchSize
	}
	return n
}

// Validate reports whether the configuration is usable against a real backend.
func (c Config) Validate() error {
	var errs []error
	if c.Endpoint == "" {
		errs = append(errs, ErrNoEndpoint)
	}
	if c.APIKey == "" && (c.Username == "" || c.Password == "") {
		errs = append(errs, ErrNoCredentials)
	}
	if c.MaxSearchSize < 0 {
		errs = append(errs, fmt.Errorf("max search size must not be negative, got %d", c.MaxSearchSize))
	}
	return errors.Join(errs...)
}

// Policy builds the mediation policy described by the configuration.
func (c Config) Policy() (*policy.Policy, error) {
	reg, err := policy.NewRegistry(c.Indices...)
	if err != nil {
		return nil, fmt.Errorf("invalid index registry: %w", err)
	}
	allow, err := policy.NewAllowList(c.AllowedPatterns)
	if err != nil {
		return nil, fmt.Errorf("invalid allowed index patterns: %w", err)
	}
	return &policy.Policy{
		Registry:  reg,
		AllowList: allow,
		TimeRange: policy.NewTimeRange(c.RequireTimeRange, c.DefaultLookback),
		MaxSize:   c.MaxSearchSize,
	}, nil
}

// fileConfig is the YAML file layout. Pointers distinguish absent keys from zero values.
type fileConfig struct {
	Endpoint         *string        `mapstructure:"endpoint"`
	Username         *string        `mapstructure:"username"`
	Password         *string        `mapstructure:"password"`
	APIKey           *string        `mapstructure:"api_key"`
	VerifyTLS        *bool          `mapstructure:"verify_tls"`
	MaxSearchSize    *int           `mapstructure:"max_search_size"`
	RequireTimeRange *bool          `mapstructure:"require_time_range"`
	DefaultLookback  *string        `mapstructure:"default_lookback"`
	AllowedPatterns  []string       `mapstructure:"allowed_index_patterns"`
	Verbose          *bool          `mapstructure:"verbose"`
	RequestTimeout   *time.Duration `mapstructure:"request_timeout"`
	AuditRedisAddr   *string        `mapstructure:"audit_redis_addr"`
	Indices          map[string]any `mapstructure:"indices"`
	SearchFields     []string       `mapstructure:"search_fields"`
	SourceFields     []string       `mapstructure:"source_fields"`
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	return c.applyYAML(data)
}

func (c *Config) applyYAML(data []byte) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("failed to parse config: top level must be a mapping")
	}

	var raw map[string]any
	if err := root.Decode(&raw); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	var fc fileConfig
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &fc,
		ErrorUnused: true,
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	setString(&c.Endpoint, fc.Endpoint)
	setString(&c.Username, fc.Username)
	setString(&c.Password, fc.Password)
	setString(&c.APIKey, fc.APIKey)
	setString(&c.DefaultLookback, fc.DefaultLookback)
	setString(&c.AuditRedisAddr, fc.AuditRedisAddr)
	if fc.VerifyTLS != nil {
		c.VerifyTLS = *fc.VerifyTLS
	}
	if fc.RequireTimeRange != nil {
		c.RequireTimeRange = *fc.RequireTimeRange
	}
	if fc.Verbose != nil {
		c.Verbose = *fc.Verbose
	}
	if fc.MaxSearchSize != nil {
		c.MaxSearchSize = *fc.MaxSearchSize
	}
	if fc.RequestTimeout != nil {
		c.RequestTimeout = *fc.RequestTimeout
	}
	if len(fc.AllowedPatterns) > 0 {
		c.AllowedPatterns = fc.AllowedPatterns
	}
	if len(fc.SearchFields) > 0 {
		c.SearchFields = fc.SearchFields
	}
	if fc.SourceFields != nil {
		c.SourceFields = fc.SourceFields
	}

	if fc.Indices != nil {
		indices, err := orderedIndices(root)
		if err != nil {
			return err
		}
		c.Indices = indices
	}
	return nil
}

// orderedIndices reads the indices mapping in declaration order, which a Go map
// would lose.
func orderedIndices(root *yaml.Node) ([]policy.Alias, error) {
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "indices" {
			continue
		}
		node := root.Content[i+1]
		if node.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("invalid config: indices must be a mapping")
		}
		aliases := make([]policy.Alias, 0, len(node.Content)/2)
		for j := 0; j+1 < len(node.Content); j += 2 {
			k, v := node.Content[j], node.Content[j+1]
			if v.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("invalid config: index %q must be a string", k.Value)
			}
			aliases = append(aliases, policy.Alias{Name: k.Value, Index: v.Value})
		}
		return aliases, nil
	}
	return nil, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
