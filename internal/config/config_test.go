package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/esgate/internal/config"
	"github.com/aretw0/esgate/pkg/policy"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFromEnviron_Defaults(t *testing.T) {
	cfg, err := config.FromEnviron("", nil)
	require.NoError(t, err)

	assert.Equal(t, config.Default(), cfg)
	assert.True(t, cfg.VerifyTLS)
	assert.True(t, cfg.RequireTimeRange)
	assert.Equal(t, 100, cfg.MaxSearchSize)
	assert.Equal(t, "now-15m", cfg.DefaultLookback)
	assert.Equal(t, []string{"*"}, cfg.AllowedPatterns)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []policy.Alias{
		{Name: "default", Index: "bunsyo_local_iinkaigijiroku_v0.0.1"},
		{Name: "keikakuhoshin", Index: "bunsyo_local_keikakuhoshin_v0.0.1"},
		{Name: "kouhou", Index: "bunsyo_local_kouhou_v0.0.1"},
		{Name: "yosankessan", Index: "bunsyo_local_yosankessan_v0.0.1"},
	}, cfg.Indices)
}

func TestFromEnviron_Variables(t *testing.T) {
	cfg, err := config.FromEnviron("", []string{
		"ES_ENDPOINT=https://es.example:9200/",
		"ES_API_KEY=secret",
		"ES_TLS_REJECT_UNAUTHORIZED=FALSE",
		"ES_MAX_SEARCH_SIZE=25",
		"ES_REQUIRE_TIME_RANGE=no",
		"ES_DEFAULT_LOOKBACK=now-1d",
		"ES_ALLOWED_INDEX_PATTERNS=logs-*, metrics-*",
		"ES_VERBOSE=True",
		"ES_REQUEST_TIMEOUT=5s",
		"ES_AUDIT_REDIS_ADDR=localhost:6379",
		"ES_INDEX=minutes_v2",
		"ES_INDEX_kouhou=bulletins_v2",
		"ES_INDEX_zeta=z_v1",
		"ES_INDEX_alpha=a_v1",
		"UNRELATED=1",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://es.example:9200", cfg.Endpoint)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.False(t, cfg.VerifyTLS)
	assert.Equal(t, 25, cfg.MaxSearchSize)
	assert.False(t, cfg.RequireTimeRange)
	assert.Equal(t, "now-1d", cfg.DefaultLookback)
	assert.Equal(t, []string{"logs-*", "metrics-*"}, cfg.AllowedPatterns)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "localhost:6379", cfg.AuditRedisAddr)
	assert.Equal(t, []policy.Alias{
		{Name: "default", Index: "minutes_v2"},
		{Name: "keikakuhoshin", Index: "bunsyo_local_keikakuhoshin_v0.0.1"},
		{Name: "kouhou", Index: "bulletins_v2"},
		{Name: "yosankessan", Index: "bunsyo_local_yosankessan_v0.0.1"},
		{Name: "alpha", Index: "a_v1"},
		{Name: "zeta", Index: "z_v1"},
	}, cfg.Indices)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnviron_MaxSearchSize(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"50", 50},
		{" 7 ", 7},
		{"", 100},
		{"-5", 100},
		{"1e3", 100},
		{"ten", 100},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			cfg, err := config.FromEnviron("", []string{"ES_MAX_SEARCH_SIZE=" + tt.raw})
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.MaxSearchSize)
		})
	}
}

func TestFromEnviron_BadTimeout(t *testing.T) {
	_, err := config.FromEnviron("", []string{"ES_REQUEST_TIMEOUT=soon"})
	assert.ErrorContains(t, err, "ES_REQUEST_TIMEOUT")
}

func TestFromEnviron_File(t *testing.T) {
	path := writeFile(t, "esgate.yaml", `
endpoint: https://file.example
username: elastic
password: changeme
max_search_size: 40
request_timeout: 10s
verify_tls: false
allowed_index_patterns: ["docs-*"]
indices:
  default: docs-minutes
  plans: docs-plans
  bulletins: docs-bulletins
search_fields: ["title^3", "body"]
source_fields: ["title"]
`)

	cfg, err := config.FromEnviron(path, []string{"ES_MAX_SEARCH_SIZE=60", "ES_INDEX_plans=docs-plans-v2"})
	require.NoError(t, err)

	assert.Equal(t, "https://file.example", cfg.Endpoint)
	assert.Equal(t, "elastic", cfg.Username)
	assert.Equal(t, 60, cfg.MaxSearchSize, "environment wins over the file")
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.VerifyTLS)
	assert.Equal(t, []string{"docs-*"}, cfg.AllowedPatterns)
	assert.Equal(t, []policy.Alias{
		{Name: "default", Index: "docs-minutes"},
		{Name: "plans", Index: "docs-plans-v2"},
		{Name: "bulletins", Index: "docs-bulletins"},
	}, cfg.Indices)
	assert.Equal(t, []string{"title^3", "body"}, cfg.SearchFields)
	assert.Equal(t, []string{"title"}, cfg.SourceFields)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnviron_FileFromEnvironment(t *testing.T) {
	path := writeFile(t, "esgate.yaml", "default_lookback: now-2h\n")

	cfg, err := config.FromEnviron("", []string{"ES_CONFIG=" + path})
	require.NoError(t, err)
	assert.Equal(t, "now-2h", cfg.DefaultLookback)
}

func TestFromEnviron_FileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"Not YAML", "endpoint: [", "failed to parse config"},
		{"Not A Mapping", "- a\n- b\n", "top level must be a mapping"},
		{"Unknown Key", "endpont: x\n", "invalid config"},
		{"Indices Not Mapping", "indices: [a, b]\n", "invalid config"},
		{"Index Not String", "indices:\n  default: [a]\n", "must be a string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.FromEnviron(writeFile(t, "bad.yaml", tt.content), nil)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}

	_, err := config.FromEnviron(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.ErrorContains(t, err, "failed to read config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr error
	}{
		{"API Key", func(c *config.Config) { c.Endpoint = "http://x"; c.APIKey = "k" }, nil},
		{"Basic Auth", func(c *config.Config) { c.Endpoint = "http://x"; c.Username = "u"; c.Password = "p" }, nil},
		{"No Endpoint", func(c *config.Config) { c.APIKey = "k" }, config.ErrNoEndpoint},
		{"Half Basic Auth", func(c *config.Config) { c.Endpoint = "http://x"; c.Username = "u" }, config.ErrNoCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConfig_Policy(t *testing.T) {
	cfg := config.Default()
	cfg.AllowedPatterns = []string{"bunsyo_local_k*"}
	cfg.MaxSearchSize = 20

	p, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, 20, p.MaxSize)
	assert.True(t, p.TimeRange.Required)

	got, err := p.Indices("keikakuhoshin,kouhou")
	require.NoError(t, err)
	assert.Equal(t, []string{"bunsyo_local_keikakuhoshin_v0.0.1", "bunsyo_local_kouhou_v0.0.1"}, got)

	cfg.Indices = append(cfg.Indices, policy.Alias{Name: "kouhou", Index: "dup"})
	_, err = cfg.Policy()
	assert.Error(t, err)
}
