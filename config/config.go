// Package config loads pgts settings from a YAML file, PGTS_* environment
// variables and command-line flags.
package config

import (
	"path/filepath"

	"github.com/lucasefe/pgts"
	"github.com/lucasefe/pgts/typemap"
)

// File is the on-disk configuration. A .pgtsrc.yaml looks like:
//
//	connection: postgres://localhost/dvdrental?sslmode=disable
//	schemas: [public]
//	exclude: ["*_log", "audit.*"]
//	output_path: src/models
//	pre_delete_output_folder: true
//	index_file: true
//	type_map:
//	  pg_catalog.int8: bigint
//	  pg_catalog.interval:
//	    name: IPostgresInterval
//	    module: postgres-interval
//	    default: true
type File struct {
	Connection            string   `yaml:"connection" mapstructure:"connection"`
	Schemas               []string `yaml:"schemas" mapstructure:"schemas"`
	AllSchemas            bool     `yaml:"all_schemas" mapstructure:"all_schemas"`
	Exclude               []string `yaml:"exclude" mapstructure:"exclude"`
	OutputPath            string   `yaml:"output_path" mapstructure:"output_path"`
	PreDeleteOutputFolder bool     `yaml:"pre_delete_output_folder" mapstructure:"pre_delete_output_folder"`
	ResolveViews          bool     `yaml:"resolve_views" mapstructure:"resolve_views"`
	TypeMapFile           string   `yaml:"type_map_file" mapstructure:"type_map_file"` // relative to the config file
	IndexFile             bool     `yaml:"index_file" mapstructure:"index_file"`
	Workers               int      `yaml:"workers" mapstructure:"workers"` // 0 means GOMAXPROCS

	// TypeMap is read straight from the YAML document so that type names
	// keep their case.
	TypeMap typemap.TypeMap `yaml:"-" mapstructure:"-"`

	// dir resolves TypeMapFile.
	dir string
}

// Default returns the configuration used when nothing is set.
func Default() *File {
	return &File{
		Schemas:      []string{"public"},
		OutputPath:   ".",
		ResolveViews: true,
	}
}

// Validate checks the settings a run cannot do without.
func Validate(f *File) error {
	if f.Connection == "" {
		return &pgts.ConfigError{Field: "connection", Reason: "is required"}
	}
	if f.Workers < 0 {
		return &pgts.ConfigError{Field: "workers", Reason: "must not be negative"}
	}
	return nil
}

// Config converts f into a pgts.Config. The type map file, if any, is
// loaded here; inline type_map entries take precedence over it.
func (f *File) Config() (pgts.Config, error) {
	cfg := pgts.Config{
		Connection:            f.Connection,
		Schemas:               f.Schemas,
		AllSchemas:            f.AllSchemas,
		Exclude:               f.Exclude,
		OutputPath:            f.OutputPath,
		PreDeleteOutputFolder: f.PreDeleteOutputFolder,
		ResolveViews:          pgts.Bool(f.ResolveViews),
		Workers:               f.Workers,
	}

	var tm typemap.TypeMap
	if f.TypeMapFile != "" {
		path := f.TypeMapFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(f.dir, path)
		}
		loaded, err := typemap.Load(path)
		if err != nil {
			return pgts.Config{}, &pgts.ConfigError{Field: "type_map_file", Reason: err.Error()}
		}
		tm = loaded
	}
	if len(f.TypeMap) > 0 {
		tm = typemap.Merge(tm, f.TypeMap)
	}
	cfg.CustomTypeMap = tm

	if f.IndexFile {
		cfg.PreRenderHooks = append(cfg.PreRenderHooks, pgts.IndexFile)
	}
	return cfg, nil
}
