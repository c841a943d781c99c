package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# directory holding the inbox and audio cache
# (default "$XDG_STATE_HOME/lexicc" or "~/.local/state/lexicc")
# state_dir: "~/.local/state/lexicc"
# how often the inbox and playback are checked
poll_interval: "1s"
# playback speed; also raises pitch
speed: 1.15
# join lines that were broken mid-sentence
reflow: true
# what to do when a line fails to synthesize or decode: abort or skip
on_error: "abort"
# sample rate requested from Polly: 8000, 16000, 22050 or 24000
sample_rate: 24000

cache:
  # prune least recently used audio above this size, e.g. "500MB"
  # (default unbounded)
  # max_size: "500MB"

synth:
  # per-request timeout; 0 disables it
  timeout: "30s"
  # pace requests to Polly; 0 means unlimited
  requests_per_minute: 0
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the lexicc config file",
	Long:    paragraph(fmt.Sprintf("\n%s the lexicc config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("lexicc config\nlexicc config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("lexicc", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

// configFileOrDefault returns the config file viper loaded, or the path
// the default file would be written to.
func configFileOrDefault() string {
	if used := viper.GetViper().ConfigFileUsed(); used != "" {
		return used
	}
	return defaultConfigFile
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = configFileOrDefault()
	}
	if configFile == "" {
		return errors.New("no configuration directory found")
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
