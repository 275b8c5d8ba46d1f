package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/colx/pkg/collection"
)

// counts tallies the nodes of a collection by type.
type counts struct {
	nodes, items, sections, headers, separators, other int
	depth                                             int
}

func countNodes(c *collection.Collection) counts {
	var n counts
	for node := range c.Walk() {
		n.nodes++
		n.depth = max(n.depth, node.Level+1)
		switch node.Type {
		case collection.TypeItem:
			n.items++
		case collection.TypeSection:
			n.sections++
		case collection.TypeHeader:
			n.headers++
		case collection.TypeSeparator:
			n.separators++
		default:
			n.other++
		}
	}
	return n
}

func newStatsCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [file]",
		Short: "Count the nodes of a collection, before and after filtering",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := o.load(cmd, args)
			if errors.Is(err, errShowHelp) {
				return cmd.Help()
			}
			if err != nil {
				return err
			}
			engine, err := engineFor(cmd.Context())
			if err != nil {
				return err
			}
			filtered, err := o.filter(cmd.Context(), engine, in.c)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "input:       %s\n", humanize.Bytes(uint64(max(in.size, 0))))
			total := countNodes(in.c)
			writeCounts(out, total)
			if o.query != "" || o.expr != "" {
				kept := countNodes(filtered)
				fmt.Fprintf(out, "matched:     %s of %s items\n", humanize.Comma(int64(kept.items)), humanize.Comma(int64(total.items)))
			}
			return nil
		},
	}
}

func writeCounts(w io.Writer, n counts) {
	rows := []struct {
		label string
		value int
	}{
		{"nodes:", n.nodes},
		{"items:", n.items},
		{"sections:", n.sections},
		{"headers:", n.headers},
		{"separators:", n.separators},
		{"depth:", n.depth},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%-12s %s\n", r.label, humanize.Comma(int64(r.value)))
	}
	if n.other > 0 {
		fmt.Fprintf(w, "%-12s %s\n", "other:", humanize.Comma(int64(n.other)))
	}
}
