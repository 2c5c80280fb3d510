package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"paperseal/internal/page"
	"paperseal/internal/paper"
	"paperseal/internal/qr"
)

func newCapacityCmd(root *rootOptions) *cobra.Command {
	var skipNotes bool

	cmd := &cobra.Command{
		Use:   "capacity",
		Short: "Show the largest secret each page size and level can hold",
		Long: `Prints, for every page size and error correction level, the largest secret
in bytes that fits on one page with the configured cipher settings and
minimum module size.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd, root)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("skip-notes-line") {
				cfg.SkipNotesLine = skipNotes
			}
			params, err := cfg.Params()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PAGE\tLEVEL\tMAX SECRET\tVERSION")
			for _, size := range page.Sizes() {
				for _, level := range qr.Levels() {
					n, version, err := paper.MaxSecret(paper.Options{
						PageSize:      size.String(),
						Level:         level,
						SkipNotesLine: cfg.SkipNotesLine,
						MinModuleSize: cfg.MinModuleSize,
						Params:        params,
					})
					if err != nil {
						return err
					}
					logger.Trace("capacity", "page", size.String(), "level", level.String(), "bytes", n)
					if n < 0 {
						fmt.Fprintf(w, "%s\t%s\t%s\t-\n", size, level, warningStyle.Sprint("none"))
						continue
					}
					fmt.Fprintf(w, "%s\t%s\t%d bytes\t%d\n", size, level, n, version)
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&skipNotes, "skip-notes-line", false, "assume the notes line is omitted")
	return cmd
}
