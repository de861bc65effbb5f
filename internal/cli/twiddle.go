package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-stockham/internal/planner"
	"github.com/cwbudde/algo-stockham/internal/twiddle"
)

type twiddleEntry struct {
	K    int     `json:"k"`
	Real float64 `json:"re"`
	Imag float64 `json:"im"`
}

func newTwiddleCmd(g *globalOptions) *cobra.Command {
	var direction string

	cmd := &cobra.Command{
		Use:   "twiddle <radix>",
		Short: "Print the twiddle table of a radix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			radix, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("radix %q: %w", args[0], err)
			}

			if !planner.Supported(radix) {
				return fmt.Errorf("radix %d has no butterfly (want one of %v)", radix, planner.Radices)
			}

			dir, err := parseDirection(direction)
			if err != nil {
				return err
			}

			tbl, err := twiddle.GetTable(radix, dir)
			if err != nil {
				return err
			}

			entries := make([]twiddleEntry, 0, tbl.Len())
			for k, c := range tbl.Coefficients() {
				entries = append(entries, twiddleEntry{K: k + 1, Real: real(c), Imag: imag(c)})
			}

			w := cmd.OutOrStdout()
			if g.json {
				return outputJSON(w, entries)
			}

			printSection(w, fmt.Sprintf("W_%d^k, %v", radix, dir))

			for _, e := range entries {
				printLabelValue(w, fmt.Sprintf("k=%d", e.K), fmt.Sprintf("%+.17f %+.17fi", e.Real, e.Imag))
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&direction, "direction", "d", "forward", "Transform direction (forward or backward)")

	return cmd
}
