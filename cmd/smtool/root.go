package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mapforge/sourcemap/pkg/watch"
)

// config is the optional smtool.toml file. Every field has a working
// zero value, so running without a config file is fine.
type config struct {
	ProjectRoot string   `toml:"project_root"`
	Color       bool     `toml:"color"`
	Extensions  []string `toml:"extensions"`
}

const defaultConfigFile = "smtool.toml"

func loadConfig(path string) (*config, error) {
	cfg := &config{Color: true}

	explicit := path != ""
	if path == "" {
		path = defaultConfigFile
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return cfg, nil
}

// app carries what every subcommand needs.
type app struct {
	cfg    *config
	logger watch.Logger
	styles styles
}

type styles struct {
	title lipgloss.Style
	label lipgloss.Style
	value lipgloss.Style
	bad   lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{title: plain, label: plain, value: plain, bad: plain}
	}
	return styles{
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		label: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		value: lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
		bad:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	}
}

func newRootCommand() *cobra.Command {
	var configPath string
	var noColor bool
	var verbose bool

	a := &app{}

	root := &cobra.Command{
		Use:           "smtool",
		Short:         "Inspect and transform Source Map v3 files",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if noColor {
				cfg.Color = false
			}

			level := "info"
			if verbose {
				level = "debug"
			}

			a.cfg = cfg
			a.logger = watch.NewLogger(level, os.Stderr)
			a.styles = newStyles(cfg.Color)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to smtool.toml")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable styled output")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newInspectCommand(a))
	root.AddCommand(newRemapCommand(a))
	root.AddCommand(newMergeCommand(a))
	root.AddCommand(newWatchCommand(a))
	return root
}
