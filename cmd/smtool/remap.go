package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mapforge/sourcemap/pkg/mapfile"
)

func newRemapCommand(a *app) *cobra.Command {
	var (
		lineOffset   int64
		fromLine     uint32
		columnOffset int64
		onLine       uint32
		fromColumn   uint32
		output       string
	)

	cmd := &cobra.Command{
		Use:   "remap <map.json>",
		Short: "Shift mapping positions and rewrite the map",
		Long: `Applies a bulk line shift (--offset-lines, --from) and/or an in-line
column shift (--offset-columns, --line, --from-column) to a source map,
then writes the result back.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if lineOffset == 0 && columnOffset == 0 {
				return fmt.Errorf("nothing to do: pass --offset-lines and/or --offset-columns")
			}

			data, err := os.ReadFile(args[0])
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

			if lineOffset != 0 {
				if err := sm.OffsetLines(fromLine, lineOffset); err != nil {
					return err
				}
				a.logger.Infof("Shifted lines >= %d by %d", fromLine, lineOffset)
			}
			if columnOffset != 0 {
				if err := sm.OffsetColumns(onLine, fromColumn, columnOffset); err != nil {
					return err
				}
				a.logger.Infof("Shifted columns >= %d on line %d by %d", fromColumn, onLine, columnOffset)
			}

			remapped, err := mapfile.FromSourceMap(sm, f.File)
			if err != nil {
				return err
			}
			encoded, err := remapped.Encode()
			if err != nil {
				return err
			}

			target := output
			if target == "" {
				target = args[0]
			}
			return os.WriteFile(target, encoded, 0o644)
		},
	}

	cmd.Flags().Int64Var(&lineOffset, "offset-lines", 0, "line delta to apply")
	cmd.Flags().Uint32Var(&fromLine, "from", 0, "first generated line to shift")
	cmd.Flags().Int64Var(&columnOffset, "offset-columns", 0, "column delta to apply")
	cmd.Flags().Uint32Var(&onLine, "line", 0, "generated line for the column shift")
	cmd.Flags().Uint32Var(&fromColumn, "from-column", 0, "first generated column to shift")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of in place")
	return cmd
}
