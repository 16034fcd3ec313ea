package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	pkgerrors "github.com/matzehuels/partsengine/pkg/errors"
	"github.com/matzehuels/partsengine/pkg/pipeline"
)

// batchOptions holds the flags of the batch command.
type batchOptions struct {
	concurrency int
	tui         bool
	output      string
	jsonOut     bool
}

// batchCommand creates the command resolving a JSON array of components.
func (c *CLI) batchCommand() *cobra.Command {
	var opts batchOptions

	cmd := &cobra.Command{
		Use:   "batch <file.json|->",
		Short: "Resolve a batch of components",
		Long: `Resolve every item of a JSON array:

  [{"id": "R1", "sourceComponent": {...}, "footprinterString": "0603"}, ...]

Items resolve in parallel. A failing item does not stop the batch; the
command exits non-zero when any item failed.`,
		Example: `  partsengine batch bom.json
  partsengine batch bom.json --concurrency 16 -o parts.json
  cat bom.json | partsengine batch - --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBatch(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "j", 0, "items resolved in parallel (default from config)")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "show live progress")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write JSON results to file")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print JSON results to stdout")

	return cmd
}

func (c *CLI) runBatch(cmd *cobra.Command, input string, opts batchOptions) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	out := cmd.OutOrStdout()

	if input != "-" {
		if err := pkgerrors.ValidatePath(input); err != nil {
			return err
		}
	}
	f := cmd.InOrStdin()
	if input != "-" {
		file, err := os.Open(input)
		if err != nil {
			return fmt.Errorf("open batch: %w", err)
		}
		defer file.Close()
		f = file
	}
	items, err := pipeline.ParseItems(f)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		printInfo(out, "Batch is empty")
		return nil
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

	concurrency := opts.concurrency
	if concurrency == 0 {
		concurrency = c.Config.Batch.Concurrency
	}
	runner := pipeline.NewRunner(eng, concurrency, logger)

	prog := newBatchProgress(logger)
	runner.OnOutcome = prog.observe

	var result *pipeline.Result
	if opts.tui {
		result, err = runBatchTUI(ctx, cmd, runner, items)
	} else {
		result, err = runner.Run(ctx, items)
	}
	if err != nil {
		return err
	}
	prog.done()

	return writeBatchResult(cmd, result, opts)
}

// runBatchTUI runs the batch under the live progress model. Quitting the
// model cancels the run; the partial result is still returned.
func runBatchTUI(ctx context.Context, cmd *cobra.Command, runner *pipeline.Runner, items []pipeline.Item) (*pipeline.Result, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewBatchModel(len(items), cancel),
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.ErrOrStderr()))

	observe := runner.OnOutcome
	runner.OnOutcome = func(o pipeline.Outcome) {
		if observe != nil {
			observe(o)
		}
		p.Send(outcomeMsg(o))
	}

	done := make(chan batchDoneMsg, 1)
	go func() {
		res, err := runner.Run(runCtx, items)
		msg := batchDoneMsg{result: res, err: err}
		done <- msg
		p.Send(msg)
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return nil, err
	}
	d := <-done
	return d.result, d.err
}

func writeBatchResult(cmd *cobra.Command, result *pipeline.Result, opts batchOptions) error {
	out := cmd.OutOrStdout()

	if opts.output != "" {
		if err := pkgerrors.ValidatePath(opts.output); err != nil {
			return err
		}
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		if err := result.WriteJSON(f); err != nil {
			f.Close()
			return fmt.Errorf("write output: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	switch {
	case opts.jsonOut:
		if err := result.WriteJSON(out); err != nil {
			return err
		}
	default:
		fmt.Fprintln(out, outcomeTable(result.Outcomes))
		printStats(out, result.Stats)
		if opts.output != "" {
			printFile(out, opts.output)
		}
	}

	if result.Stats.Failed > 0 {
		return fmt.Errorf("%d of %d items failed", result.Stats.Failed, result.Stats.Total)
	}
	return nil
}
