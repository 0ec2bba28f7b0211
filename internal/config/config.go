// Package config loads the per-project configuration file.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/mikeger/Pecker/internal/rule"
)

// FileNames lists the configuration files looked up in the root, in order.
var FileNames = []string{".pecker.yml", ".pecker.yaml", ".pecker.toml"}

// DefaultReporter is used when the file does not name one.
const DefaultReporter = "xcode"

// DefaultRules are enabled when no configuration file is present.
var DefaultRules = []string{"skip_public", "xctest", "attributes", "comment"}

// File is the on-disk configuration layout.
type File struct {
	Included         []string `yaml:"included" toml:"included"`
	Excluded         []string `yaml:"excluded" toml:"excluded"`
	Rules            []string `yaml:"rules" toml:"rules"`
	BlacklistFiles   []string `yaml:"blacklist_files" toml:"blacklist_files"`
	BlacklistSymbols []string `yaml:"blacklist_symbols" toml:"blacklist_symbols"`
	Attributes       []string `yaml:"attributes" toml:"attributes"`
	SuperClasses     []string `yaml:"superclasses" toml:"superclasses"`
	Reporter         string   `yaml:"reporter" toml:"reporter"`
	OutputFile       string   `yaml:"output_file" toml:"output_file"`
}

// Configuration is the resolved, read-only input of one analysis run. It is
// passed explicitly to collectors, rules and reporters.
type Configuration struct {
	// Path of the file the configuration came from; empty for defaults.
	Path     string
	Included []string
	Excluded []string
	// Rules holds every suppression, blacklist_symbols and blacklist_files
	// included.
	Rules      rule.Pipeline
	Reporter   string
	OutputFile string
}

// BlacklistSymbols returns the identifiers the pipeline's blacklist rule
// suppresses.
func (c *Configuration) BlacklistSymbols() map[string]struct{} {
	for _, r := range c.Rules {
		if b, ok := r.(*rule.Blacklist); ok {
			return b.Symbols
		}
	}
	return nil
}

// Default returns the configuration used when no file exists.
func Default() *Configuration {
	cfg, err := FromFile(File{Rules: DefaultRules})
	if err != nil {
		// DefaultRules only names known rules.
		panic(err)
	}
	return cfg
}

// FromFile resolves a parsed configuration file.
func FromFile(f File) (*Configuration, error) {
	pipeline, err := rule.Build(f.Rules, rule.Options{
		BlacklistSymbols: f.BlacklistSymbols,
		BlacklistFiles:   f.BlacklistFiles,
		Attributes:       f.Attributes,
		SuperClasses:     f.SuperClasses,
	})
	if err != nil {
		return nil, err
	}

	reporter := strings.TrimSpace(f.Reporter)
	if reporter == "" {
		reporter = DefaultReporter
	}

	return &Configuration{
		Included:   f.Included,
		Excluded:   f.Excluded,
		Rules:      pipeline,
		Reporter:   reporter,
		OutputFile: f.OutputFile,
	}, nil
}

// Find returns the first configuration file present in root, or "".
func Find(root string) string {
	for _, name := range FileNames {
		path := filepath.Join(root, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Load reads and resolves the configuration at path. The format is chosen by
// extension: .toml is TOML, anything else YAML.
func Load(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	f, err := Parse(data, filepath.Ext(path) == ".toml")
	if err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	cfg, err := FromFile(f)
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes a configuration file body.
func Parse(data []byte, isTOML bool) (File, error) {
	var f File
	if isTOML {
		md, err := toml.Decode(string(data), &f)
		if err != nil {
			return File{}, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return File{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
		}
		return f, nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return f, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return File{}, err
	}
	return f, nil
}

// LoadRoot loads the configuration found in root, falling back to Default
// when there is none.
func LoadRoot(root string) (*Configuration, error) {
	path := Find(root)
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
