package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zeusync/pushgrid/internal/core/grid"
)

func originsCmd(newApp appFunc) *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "origins",
		Short: "Print the forward-edge origin table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if size < 0 || size > grid.MaxSize {
				return fmt.Errorf("size must be within 1..%d", grid.MaxSize)
			}
			app, cleanup, err := newApp()
			if err != nil {
				return err
			}
			defer cleanup()

			lo, hi := 1, grid.MaxSize
			if size > 0 {
				lo, hi = size, size
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "size\tright\tup\tleft\tdown")
			for s := lo; s <= hi; s++ {
				_, _ = fmt.Fprintf(tw, "%d", s)
				for d := grid.Right; d <= grid.Down; d++ {
					_, _ = fmt.Fprintf(tw, "\t%s", app.Table.Origin(s, d))
				}
				_, _ = fmt.Fprintln(tw)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&size, "size", "s", 0, "only print one size (0 prints all)")
	return cmd
}
