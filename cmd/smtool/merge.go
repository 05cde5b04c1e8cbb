package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mapforge/sourcemap/pkg/mapfile"
	"github.com/mapforge/sourcemap/pkg/sourcemap"
)

func newMergeCommand(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "merge <out.json> <in.json...>",
		Short: "Merge several source maps into one",
		Long: `Merges the mappings of every input map into a single map, deduplicating
the sources and names tables. Inputs travel through the engine's binary
buffer, the same path bundler workers use for cross-process handoff.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			merged := sourcemap.New(a.cfg.ProjectRoot)

			for _, path := range args[1:] {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				f, err := mapfile.Parse(data)
				if err != nil {
					return err
				}
				sm, err := f.ToSourceMap(a.cfg.ProjectRoot)
				if err != nil {
					return err
				}
				if err := merged.ExtendsBuffer(sm.ToBuffer()); err != nil {
					return err
				}
				a.logger.Debugf("Merged %s (%d mappings)", path, len(sm.Mappings()))
			}

			out, err := mapfile.FromSourceMap(merged, file)
			if err != nil {
				return err
			}
			encoded, err := out.Encode()
			if err != nil {
				return err
			}

			a.logger.Infof("Wrote %s (%d sources, %d mappings)", args[0], len(merged.Sources()), len(merged.Mappings()))
			return os.WriteFile(args[0], encoded, 0o644)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "value for the output map's file field")
	return cmd
}
