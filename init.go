package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/mikeger/Pecker/internal/config"
	"github.com/mikeger/Pecker/internal/report"
	"github.com/mikeger/Pecker/internal/rule"
)

const starterHeader = `Pecker configuration.
rules: %s
reporters: %s
`

// runInit implements the `pecker init` subcommand, which writes a starter
// configuration file holding the defaults.
func runInit(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("pecker init", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var dryRun, force bool
	fs.BoolVar(&dryRun, "dry-run", false, "print the file instead of writing it")
	fs.BoolVar(&force, "force", false, "overwrite an existing file")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: pecker init [flags] [path]

Write a starter configuration with the default rules. path may be a project
directory or a file; a path ending in .toml gets TOML, anything else YAML.

path defaults to ./.pecker.yml.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	path := config.FileNames[0]
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, config.FileNames[0])
	}

	content, err := generateConfig(filepath.Ext(path) == ".toml")
	if err != nil {
		return err
	}

	if dryRun {
		_, _ = fmt.Fprint(stdout, content)
		return nil
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", path)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote %s\n", path)
	return nil
}

// starterFile is the configuration init writes.
func starterFile() config.File {
	return config.File{
		Included:         []string{},
		Excluded:         []string{},
		Rules:            append([]string(nil), config.DefaultRules...),
		BlacklistFiles:   []string{},
		BlacklistSymbols: []string{},
		Attributes:       append([]string(nil), rule.DefaultAttributes...),
		SuperClasses:     []string{},
		Reporter:         config.DefaultReporter,
	}
}

// generateConfig renders the starter configuration, preceded by a comment
// listing the accepted rule and reporter names.
func generateConfig(asTOML bool) (string, error) {
	header := fmt.Sprintf(starterHeader, strings.Join(rule.Known, ", "), strings.Join(report.Names(), ", "))

	var buf bytes.Buffer
	for _, line := range strings.Split(strings.TrimSuffix(header, "\n"), "\n") {
		buf.WriteString("# " + line + "\n")
	}
	buf.WriteString("\n")

	if asTOML {
		if err := toml.NewEncoder(&buf).Encode(starterFile()); err != nil {
			return "", fmt.Errorf("encoding config: %w", err)
		}
		return buf.String(), nil
	}

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(starterFile()); err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	return buf.String(), nil
}
