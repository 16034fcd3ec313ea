package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/partsengine/pkg/component"
	"github.com/matzehuels/partsengine/pkg/engine"
	pkgerrors "github.com/matzehuels/partsengine/pkg/errors"
)

// findOptions holds the flags of the find command.
type findOptions struct {
	component string
	footprint string
	jsonOut   bool
	dryRun    bool
}

// findCommand creates the command resolving a single component.
func (c *CLI) findCommand() *cobra.Command {
	var opts findOptions

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Resolve a component to JLCPCB part numbers",
		Long: `Resolve a circuit-json source component to up to three JLCPCB part numbers,
basic parts first.

The component is a JSON object, given inline, as @file, or as - for stdin.`,
		Example: `  partsengine find --component '{"ftype":"simple_resistor","resistance":"10k"}' --footprint 0603
  partsengine find --component @led.json --json
  partsengine find --component '{"ftype":"simple_pin_header","pin_count":8}' --footprint 2x4_p2.54 --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFind(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.component, "component", "c", "", "source component JSON, @file or -")
	cmd.Flags().StringVarP(&opts.footprint, "footprint", "f", "", "footprinter string (\"0603\", \"kicad:...\")")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the catalog query without sending it")
	_ = cmd.MarkFlagRequired("component")

	return cmd
}

func (c *CLI) runFind(cmd *cobra.Command, opts findOptions) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	out := cmd.OutOrStdout()

	req, err := buildRequest(opts.component, opts.footprint, cmd.InOrStdin())
	if err != nil {
		return err
	}

	if opts.dryRun {
		return printPlan(out, req, opts.jsonOut)
	}

	eng, closeCache, err := c.newEngine(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeCache(); err != nil {
			logger.Warn("close cache", "error", err)
		}
	}()

	var spin *Spinner
	if !opts.jsonOut && !c.verbose {
		spin = newSpinner(ctx, cmd.ErrOrStderr(), "Searching "+req.SourceComponent.FType())
		spin.Start()
	}
	reqLogger := requestLogger(logger, req)
	reqLogger.Debug("resolving")
	parts, err := eng.FindPart(ctx, req)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}
	reqLogger.Debug("resolved", "parts", parts[engine.SupplierJLCPCB])

	if opts.jsonOut {
		return json.NewEncoder(out).Encode(parts)
	}
	printParts(out, req, parts)
	return nil
}

// buildRequest decodes the component argument and validates the footprint.
func buildRequest(componentArg, fp string, stdin io.Reader) (engine.Request, error) {
	data, err := readInput(componentArg, stdin)
	if err != nil {
		return engine.Request{}, fmt.Errorf("read component: %w", err)
	}
	d, err := component.Decode(data)
	if err != nil {
		return engine.Request{}, err
	}
	if err := pkgerrors.ValidateFootprint(fp); err != nil {
		return engine.Request{}, err
	}
	return engine.Request{SourceComponent: d, FootprinterString: fp}, nil
}

// planJSON is the --dry-run --json output.
type planJSON struct {
	Category  string            `json:"category,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
	Signature string            `json:"signature,omitempty"`
	Package   string            `json:"package,omitempty"`
	Matched   bool              `json:"matched"`
	Routed    bool              `json:"routed"`
}

func printPlan(w io.Writer, req engine.Request, asJSON bool) error {
	q, ok := engine.Plan(req)
	if asJSON {
		p := planJSON{Routed: ok, Matched: true}
		if ok {
			p = planJSON{
				Category:  q.Category,
				Params:    q.Params,
				Signature: q.Signature(),
				Package:   q.Footprint.Package,
				Matched:   q.Footprint.Matched,
				Routed:    true,
			}
		}
		return json.NewEncoder(w).Encode(p)
	}

	if !ok {
		printWarning(w, "No catalog category for %s", req.SourceComponent.FType())
		return nil
	}
	printKeyValue(w, "category", q.Category)
	printKeyValue(w, "query", q.Signature())
	if q.Footprint.Fallback() {
		printWarning(w, "Footprint %q matched no known package; it is sent unchanged", q.Footprint.Raw)
	}
	return nil
}

func printParts(w io.Writer, req engine.Request, parts engine.SupplierPartNumbers) {
	refs, ok := parts[engine.SupplierJLCPCB]
	switch {
	case !ok:
		printWarning(w, "No catalog category for %s", req.SourceComponent.FType())
	case len(refs) == 0:
		printInfo(w, "No parts found for %s", req.SourceComponent.FType())
	default:
		printSuccess(w, "%s %s", engine.SupplierJLCPCB, StyleHighlight.Render(strings.Join(refs, " ")))
	}
}
