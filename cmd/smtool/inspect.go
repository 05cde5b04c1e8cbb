package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mapforge/sourcemap/pkg/diag"
	"github.com/mapforge/sourcemap/pkg/mapfile"
	"github.com/mapforge/sourcemap/pkg/sourcemap"
)

func newInspectCommand(a *app) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "inspect <map.json>",
		Short: "Summarize a source map and optionally resolve a position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
				fmt.Fprintln(cmd.ErrOrStderr(), a.styles.bad.Render(diag.Render([]byte(f.Mappings), err)))
				return err
			}

			printSummary(cmd, a, args[0], f, sm)

			if query != "" {
				return runQuery(cmd, a, sm, query)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "resolve a generated LINE:COL (zero-based)")
	return cmd
}

func printSummary(cmd *cobra.Command, a *app, path string, f *mapfile.File, sm *sourcemap.SourceMap) {
	out := cmd.OutOrStdout()
	s := a.styles

	fmt.Fprintln(out, s.title.Render(path))
	if f.File != "" {
		fmt.Fprintf(out, "%s %s\n", s.label.Render("file:"), s.value.Render(f.File))
	}

	mappings := sm.Mappings()
	boundaries := 0
	for _, m := range mappings {
		if m.Original == nil {
			boundaries++
		}
	}

	fmt.Fprintf(out, "%s %s\n", s.label.Render("sources:"), s.value.Render(strconv.Itoa(len(sm.Sources()))))
	for i, source := range sm.Sources() {
		marker := " "
		if content, err := sm.GetSourceContent(uint32(i)); err == nil && content != "" {
			marker = "*" // content embedded
		}
		fmt.Fprintf(out, "  %s %s\n", marker, s.value.Render(source))
	}
	fmt.Fprintf(out, "%s %s\n", s.label.Render("names:"), s.value.Render(strconv.Itoa(len(sm.Names()))))
	fmt.Fprintf(out, "%s %s (%d boundaries) across %d lines\n",
		s.label.Render("mappings:"),
		s.value.Render(strconv.Itoa(len(mappings))),
		boundaries,
		len(sm.MappingLines()),
	)
}

func runQuery(cmd *cobra.Command, a *app, sm *sourcemap.SourceMap, query string) error {
	line, column, err := parsePosition(query)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	m, ok := sm.FindClosestMapping(line, column)
	if !ok {
		fmt.Fprintf(out, "no mapping precedes %d:%d\n", line, column)
		return nil
	}

	fmt.Fprintf(out, "%s %d:%d", a.styles.label.Render("closest:"), m.GeneratedLine, m.GeneratedColumn)
	if m.Original == nil {
		fmt.Fprintln(out, " (boundary)")
		return nil
	}

	source, err := sm.GetSource(m.Original.Source)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, " -> %s %d:%d", a.styles.value.Render(source), m.Original.OriginalLine, m.Original.OriginalColumn)
	if m.Original.HasName {
		if name, err := sm.GetName(m.Original.Name); err == nil {
			fmt.Fprintf(out, " (%s)", name)
		}
	}
	fmt.Fprintln(out)
	return nil
}

func parsePosition(s string) (line, column uint32, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("position must be LINE:COL, got %q", s)
	}
	l, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("bad line in %q: %w", s, err)
	}
	c, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("bad column in %q: %w", s, err)
	}
	return uint32(l), uint32(c), nil
}
