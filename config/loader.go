package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/lucasefe/pgts"
	"github.com/lucasefe/pgts/typemap"
)

// FileName is the config file looked up in the working directory when no
// explicit path is given. Both .yaml and .yml extensions are accepted.
const FileName = ".pgtsrc"

// EnvPrefix prefixes the environment variables that override the file,
// e.g. PGTS_CONNECTION or PGTS_OUTPUT_PATH. DATABASE_URL is honored when
// PGTS_CONNECTION is unset.
const EnvPrefix = "PGTS"

// flagKeys maps command-line flag names to config keys. Flags missing from
// the flag set are ignored.
var flagKeys = map[string]string{
	"database":    "connection",
	"schemas":     "schemas",
	"all-schemas": "all_schemas",
	"exclude":     "exclude",
	"output":      "output_path",
	"pre-delete":  "pre_delete_output_folder",
	"index":       "index_file",
	"workers":     "workers",
}

var envKeys = []string{
	"schemas",
	"all_schemas",
	"exclude",
	"output_path",
	"pre_delete_output_folder",
	"resolve_views",
	"type_map_file",
	"index_file",
	"workers",
}

// Loader reads configuration with the following priority (highest first):
//  1. Command-line flags that were set explicitly
//  2. Environment variables (PGTS_*)
//  3. Config file (--config, or .pgtsrc.yaml in the root directory)
//  4. Default values
type Loader struct {
	rootDir string
	file    string
	flags   *pflag.FlagSet
}

// NewLoader creates a loader that looks for .pgtsrc.yaml in rootDir.
func NewLoader(rootDir string) *Loader {
	return &Loader{rootDir: rootDir}
}

// WithFile uses an explicit config file. Unlike the default file, it must
// exist.
func (l *Loader) WithFile(path string) *Loader {
	l.file = path
	return l
}

// WithFlags binds command-line flags over the other sources.
func (l *Loader) WithFlags(flags *pflag.FlagSet) *Loader {
	l.flags = flags
	return l
}

// LoadFile reads and validates the configuration.
func (l *Loader) LoadFile() (*File, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if l.file != "" {
		v.SetConfigFile(l.file)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(l.rootDir)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("connection", EnvPrefix+"_CONNECTION", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind connection: %w", err)
	}
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if l.flags != nil {
		for name, key := range flagKeys {
			if f := l.flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	f := &File{dir: l.rootDir}
	if err := v.Unmarshal(f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if used := v.ConfigFileUsed(); used != "" {
		f.dir = filepath.Dir(used)
		tm, err := readTypeMap(used)
		if err != nil {
			return nil, err
		}
		f.TypeMap = tm
	}

	if err := Validate(f); err != nil {
		return nil, err
	}
	return f, nil
}

// Load reads the configuration and converts it for pgts.Run.
func (l *Loader) Load() (pgts.Config, error) {
	f, err := l.LoadFile()
	if err != nil {
		return pgts.Config{}, err
	}
	return f.Config()
}

// Load reads the configuration of the working directory. path selects an
// explicit config file and may be empty; flags may be nil.
func Load(path string, flags *pflag.FlagSet) (pgts.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return pgts.Config{}, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).WithFile(path).WithFlags(flags).Load()
}

func setDefaults(v *viper.Viper) {
	defaults := Default()
	v.SetDefault("schemas", defaults.Schemas)
	v.SetDefault("output_path", defaults.OutputPath)
	v.SetDefault("resolve_views", defaults.ResolveViews)
	v.SetDefault("pre_delete_output_folder", defaults.PreDeleteOutputFolder)
	v.SetDefault("index_file", defaults.IndexFile)
	v.SetDefault("workers", defaults.Workers)
}

// readTypeMap decodes the type_map section of the config file. Viper folds
// keys to lower case, which would break mixed-case type names, so the
// section is decoded from the document directly.
func readTypeMap(path string) (typemap.TypeMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var doc struct {
		TypeMap yaml.Node `yaml:"type_map"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if doc.TypeMap.IsZero() {
		return nil, nil
	}

	section, err := yaml.Marshal(&doc.TypeMap)
	if err != nil {
		return nil, err
	}
	tm, err := typemap.Parse(section)
	if err != nil {
		return nil, &pgts.ConfigError{Field: "type_map", Reason: err.Error()}
	}
	return tm, nil
}
