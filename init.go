package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/phobologic/uirepair/internal/config"
)

const configHeader = `# uirepair configuration.
# Every value below is a built-in default; delete a key to keep tracking the
# default, or change it to restyle repaired footers and navigation bars.
`

// runInit implements the `uirepair init` subcommand, which writes the default
// configuration as YAML.
func runInit(args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("uirepair init", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var dryRun, force bool
	flags.BoolVar(&dryRun, "dry-run", false, "print the configuration instead of writing it")
	flags.BoolVar(&force, "force", false, "overwrite an existing configuration file")

	flags.Usage = func() {
		fmt.Fprintf(stderr, `Usage: uirepair init [flags] [path]

Write the default uirepair configuration to a YAML file. An existing file is
left untouched unless --force is given.

path defaults to ./%s.

Flags:
`, config.DefaultFile)
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return err
	}

	content, err := generateConfig()
	if err != nil {
		return err
	}

	if dryRun {
		_, _ = fmt.Fprint(stdout, content)
		return nil
	}

	path := config.DefaultFile
	if flags.NArg() > 0 {
		path = flags.Arg(0)
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("checking %s: %w", path, err)
		}
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote default configuration to %s\n", path)
	return nil
}

// generateConfig returns the commented default configuration.
func generateConfig() (string, error) {
	data, err := config.Marshal(config.Default())
	if err != nil {
		return "", fmt.Errorf("encoding default config: %w", err)
	}
	return configHeader + string(data), nil
}
