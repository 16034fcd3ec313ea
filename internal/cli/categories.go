package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/partsengine/pkg/component"
	"github.com/matzehuels/partsengine/pkg/engine"
)

// categoriesCommand lists the component types the engine can route.
func (c *CLI) categoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List component types and their catalog categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, ftype := range component.FTypes() {
				category, _ := engine.Category(component.KindOf(ftype))
				fmt.Fprintf(out, "%-22s %s\n", ftype, StyleValue.Render(category))
			}
			return nil
		},
	}
}
