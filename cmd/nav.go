package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/colx/pkg/collection"
)

func newNavCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "nav <key> [file]",
		Short: "Show the neighbours of a node in document order",
		Long: `Prints the node stored under key with its parent, the keys before and
after it in document order, and its children. With --query or --expr the
lookup runs against the filtered collection.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := collection.Key(args[0])
			in, err := o.load(cmd, args[1:])
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
			c, err := o.filter(cmd.Context(), engine, in.c)
			if err != nil {
				return err
			}

			n := c.Item(key)
			if n == nil {
				return fmt.Errorf("key %q not found", key)
			}
			var children []string
			for child := range c.Children(key) {
				children = append(children, string(child.Key))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "key:      %s\n", n.Key)
			fmt.Fprintf(out, "type:     %s\n", n.Type)
			fmt.Fprintf(out, "text:     %s\n", n.TextValue)
			fmt.Fprintf(out, "level:    %d\n", n.Level)
			fmt.Fprintf(out, "parent:   %s\n", n.ParentKey)
			fmt.Fprintf(out, "before:   %s\n", c.KeyBefore(key))
			fmt.Fprintf(out, "after:    %s\n", c.KeyAfter(key))
			fmt.Fprintf(out, "children: %s\n", strings.Join(children, ", "))
			return nil
		},
	}
}
