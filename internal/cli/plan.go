package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	stockham "github.com/cwbudde/algo-stockham"
)

type planOptions struct {
	batch      int
	outOfPlace bool
	transposed bool
	maxPasses  int
	wisdom     string
}

func newPlanCmd(g *globalOptions) *cobra.Command {
	o := &planOptions{}

	cmd := &cobra.Command{
		Use:   "plan <length> [length] [length]",
		Short: "Bake a plan and print its pass schedule",
		Long: `Bake a 1-3 dimensional complex plan and print, per axis, the radices,
work-group geometry and the buffer each pass reads and writes.`,
		Args: cobra.RangeArgs(1, stockham.MaxDimensions),
		RunE: func(cmd *cobra.Command, args []string) error {
			lengths, err := parseLengths(args)
			if err != nil {
				return err
			}

			plan, err := bakePlan(g, o, lengths)
			if err != nil {
				return err
			}

			defer func() { _ = plan.Destroy() }()

			summary := plan.ExecutionPlan().Summary()
			if g.json {
				return outputJSON(cmd.OutOrStdout(), summary)
			}

			printSummary(cmd.OutOrStdout(), summary, plan.Envelope())

			return nil
		},
	}

	cmd.Flags().IntVar(&o.batch, "batch", 1, "Transforms per enqueue")
	cmd.Flags().BoolVar(&o.outOfPlace, "out-of-place", false, "Plan an out-of-place transform")
	cmd.Flags().BoolVar(&o.transposed, "transpose", false, "Write a 2-D result transposed (implies --out-of-place)")
	cmd.Flags().IntVar(&o.maxPasses, "max-passes", stockham.DefaultMaxPasses, "Largest pass count per axis")
	cmd.Flags().StringVar(&o.wisdom, "wisdom", "", "Wisdom file to replay and update with derived schedules")

	return cmd
}

func parseLengths(args []string) ([]int, error) {
	lengths := make([]int, len(args))

	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("length %q: %w", a, err)
		}

		lengths[i] = n
	}

	return lengths, nil
}

func bakePlan(g *globalOptions, o *planOptions, lengths []int) (*stockham.Plan, error) {
	prec, err := parsePrecision(g.precision)
	if err != nil {
		return nil, err
	}

	var wisdom *stockham.Wisdom

	if o.wisdom != "" {
		wisdom = stockham.NewWisdom()

		if _, err := os.Stat(o.wisdom); err == nil {
			if err := stockham.ImportWisdom(o.wisdom, wisdom); err != nil {
				return nil, err
			}
		}
	}

	plan, err := stockham.CreatePlan(len(lengths), lengths, stockham.PlanOptions{
		Envelope:  g.envelope(),
		MaxPasses: o.maxPasses,
		Wisdom:    wisdom,
	})
	if err != nil {
		return nil, err
	}

	configure := []func() error{
		func() error { return plan.SetPrecision(prec) },
		func() error { return plan.SetBatchSize(o.batch) },
	}

	if o.outOfPlace || o.transposed {
		configure = append(configure, func() error {
			return plan.SetResultLocation(stockham.PlacementOutOfPlace)
		})
	}

	if o.transposed {
		configure = append(configure, func() error {
			return plan.SetTransposeResult(stockham.TransposeTransposed)
		})
	}

	configure = append(configure, plan.Bake)

	if wisdom != nil {
		configure = append(configure, func() error {
			return stockham.ExportWisdom(o.wisdom, wisdom)
		})
	}

	for _, step := range configure {
		if err := step(); err != nil {
			_ = plan.Destroy()
			return nil, err
		}
	}

	return plan, nil
}

func printSummary(w io.Writer, s stockham.Summary, env stockham.Envelope) {
	printSection(w, fmt.Sprintf("Plan %v", s.Lengths))
	printLabelValue(w, "precision", s.Precision)
	printLabelValue(w, "placement", s.Placement)
	printLabelValue(w, "batch", s.Batch)
	printLabelValue(w, "transposed", s.Transpose)
	printLabelValue(w, "envelope", fmt.Sprintf("%d bytes, %d work items", env.LocalMemBytes, env.MaxWorkGroupSize))

	for _, a := range s.Axes {
		source := "derived"
		if a.Curated {
			source = "curated"
		}

		_, _ = fmt.Fprintln(w)
		printSection(w, fmt.Sprintf("Axis %d: length %d", a.Axis, a.Length))
		printLabelValue(w, "radices", fmt.Sprintf("%v (%s)", a.Radices, source))
		printLabelValue(w, "work group", fmt.Sprintf("%d lanes, %d transforms", a.WorkGroupSize, a.TransformsPerGroup))

		usage := fmt.Sprintf("%d of %d bytes", a.WorkingSetBytes, env.LocalMemBytes)
		if a.WorkingSetBytes*2 > env.LocalMemBytes {
			_, _ = labelColor.Fprint(w, "  working set: ")
			_, _ = warnColor.Fprintln(w, usage)
		} else {
			_, _ = labelColor.Fprint(w, "  working set: ")
			_, _ = goodColor.Fprintln(w, usage)
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "  pass\tradix\tLS\tR\tL\tsrc -> dst")

		for _, p := range a.Passes {
			_, _ = fmt.Fprintf(tw, "  %d\t%d\t%d\t%d\t%d\t%s -> %s\n", p.Index, p.Radix, p.LS, p.R, p.L, p.Src, p.Dst)
		}

		_ = tw.Flush()
	}
}
