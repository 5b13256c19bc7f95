package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasefe/pgts"
	"github.com/lucasefe/pgts/typemap"
)

// Test Plan for config loading:
// - Load fails with a ConfigError when no connection is configured
// - Load reads .pgtsrc.yaml from the root directory and keeps defaults for unset keys
// - Load reads an explicit --config file and fails when it does not exist
// - PGTS_* environment variables override the file; DATABASE_URL is a fallback
// - Explicitly set flags override the environment
// - Inline type_map keeps mixed-case keys and overrides type_map_file
// - index_file installs the IndexFile hook
// - Malformed YAML and invalid type maps are errors

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// isolateEnv blanks variables a developer machine may carry. Viper ignores
// empty values.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"DATABASE_URL", "PGTS_CONNECTION", "PGTS_SCHEMAS", "PGTS_OUTPUT_PATH"} {
		t.Setenv(name, "")
	}
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("pgts", pflag.ContinueOnError)
	fs.StringP("database", "d", "", "")
	fs.StringP("output", "o", "", "")
	fs.StringSliceP("schemas", "s", nil, "")
	fs.StringSliceP("exclude", "x", nil, "")
	fs.Bool("pre-delete", false, "")
	fs.Bool("index", false, "")
	return fs
}

func TestLoad_RequiresConnection(t *testing.T) {
	isolateEnv(t)
	_, err := NewLoader(t.TempDir()).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, pgts.ErrInvalidConfig)

	var cfgErr *pgts.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "connection", cfgErr.Field)
}

func TestLoad_DefaultFile(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, ".pgtsrc.yaml", `
connection: postgres://localhost/dvdrental
exclude: ["*_log"]
pre_delete_output_folder: true
`)

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/dvdrental", cfg.Connection)
	assert.Equal(t, []string{"public"}, cfg.Schemas)
	assert.Equal(t, []string{"*_log"}, cfg.Exclude)
	assert.Equal(t, ".", cfg.OutputPath)
	assert.True(t, cfg.PreDeleteOutputFolder)
	require.NotNil(t, cfg.ResolveViews)
	assert.True(t, *cfg.ResolveViews)
	assert.Empty(t, cfg.PreRenderHooks)
	assert.Empty(t, cfg.CustomTypeMap)
}

func TestLoad_ExplicitFile(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "pgts.yml", `
connection: postgres://db/app
schemas: [public, auth]
output_path: src/models
resolve_views: false
workers: 3
`)

	cfg, err := NewLoader(t.TempDir()).WithFile(path).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"public", "auth"}, cfg.Schemas)
	assert.Equal(t, "src/models", cfg.OutputPath)
	assert.False(t, *cfg.ResolveViews)
	assert.Equal(t, 3, cfg.Workers)

	_, err = NewLoader(dir).WithFile(filepath.Join(dir, "missing.yaml")).Load()
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, ".pgtsrc.yaml", `
connection: postgres://file/db
output_path: from-file
`)
	t.Setenv("PGTS_CONNECTION", "postgres://env/db")
	t.Setenv("PGTS_SCHEMAS", "public,audit")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://env/db", cfg.Connection)
	assert.Equal(t, "from-file", cfg.OutputPath)
	assert.Equal(t, []string{"public", "audit"}, cfg.Schemas)
}

func TestLoad_DatabaseURL(t *testing.T) {
	isolateEnv(t)
	t.Setenv("DATABASE_URL", "postgres://fallback/db")

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://fallback/db", cfg.Connection)

	t.Setenv("PGTS_CONNECTION", "postgres://preferred/db")
	cfg, err = NewLoader(t.TempDir()).Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://preferred/db", cfg.Connection)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, ".pgtsrc.yaml", `
connection: postgres://file/db
output_path: from-file
`)
	t.Setenv("PGTS_OUTPUT_PATH", "from-env")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"-d", "postgres://flag/db", "--index"}))

	cfg, err := NewLoader(dir).WithFlags(fs).Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://flag/db", cfg.Connection)
	assert.Equal(t, "from-env", cfg.OutputPath, "unset flags do not override")
	require.Len(t, cfg.PreRenderHooks, 1)
}

func TestLoad_TypeMap(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "types.yaml", `
pg_catalog.int8: string
pg_catalog.interval:
  name: IPostgresInterval
  module: postgres-interval
  default: true
`)
	writeFile(t, dir, ".pgtsrc.yaml", `
connection: postgres://localhost/db
type_map_file: types.yaml
type_map:
  pg_catalog.int8: bigint
  public.GeoPoint:
    name: Point
    from: shared/Point
`)

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	tm := cfg.CustomTypeMap
	assert.Equal(t, typemap.Literal("bigint"), tm["pg_catalog.int8"])
	assert.Equal(t, typemap.External("IPostgresInterval", "postgres-interval", true), tm["pg_catalog.interval"])
	assert.Equal(t, typemap.Named("Point", "shared/Point", false), tm["public.GeoPoint"])
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed yaml", "connection: [unterminated"},
		{"invalid type map", "connection: postgres://x\ntype_map:\n  pg_catalog.int8:\n    module: bignum\n"},
		{"missing type map file", "connection: postgres://x\ntype_map_file: nope.yaml\n"},
		{"negative workers", "connection: postgres://x\nworkers: -2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			dir := t.TempDir()
			writeFile(t, dir, ".pgtsrc.yaml", tt.content)

			_, err := NewLoader(dir).Load()
			assert.Error(t, err)
		})
	}
}

func TestDefault(t *testing.T) {
	d := Default()
	assert.Equal(t, []string{"public"}, d.Schemas)
	assert.Equal(t, ".", d.OutputPath)
	assert.True(t, d.ResolveViews)
	assert.Zero(t, d.Workers)
}
