package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	pkgerrors "github.com/matzehuels/partsengine/pkg/errors"
	"github.com/matzehuels/partsengine/pkg/footprint"
)

// normalizeCommand translates footprints to catalog package tokens.
func (c *CLI) normalizeCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "normalize <footprint>...",
		Short: "Translate footprints to catalog package tokens",
		Example: `  partsengine normalize 0603cap kicad:Resistor_SMD:R_0402_1005Metric
  partsengine normalize --json kicad:Package_SO:SOIC-8_3.9x4.9mm_P1.27mm`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			out := cmd.OutOrStdout()

			translations := make([]footprint.Translation, 0, len(args))
			for _, fp := range args {
				if err := pkgerrors.ValidateFootprint(fp); err != nil {
					return err
				}
				tr := footprint.Translate(fp)
				if tr.Fallback() {
					logger.Warn("unrecognized kicad footprint", "footprint", fp)
				}
				translations = append(translations, tr)
			}

			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(translations)
			}
			for _, tr := range translations {
				fmt.Fprintln(out, tr.Package)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "print raw, package, notation and match status as JSON")
	return cmd
}
