package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	stockham "github.com/cwbudde/algo-stockham"
)

type maxLenResult struct {
	LocalMemBytes int `json:"localMemBytes"`
	Single        int `json:"single"`
	Double        int `json:"double"`
}

func newMaxLenCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "maxlen",
		Short: "Print the longest power-of-two length the envelope holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res := maxLenResult{LocalMemBytes: g.localMemBytes}

			var err error

			res.Single, err = stockham.GetMaxLength(g.localMemBytes, stockham.PrecisionSingle.ElementSize())
			if err != nil {
				return err
			}

			res.Double, err = stockham.GetMaxLength(g.localMemBytes, stockham.PrecisionDouble.ElementSize())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if g.json {
				return outputJSON(w, res)
			}

			printSection(w, fmt.Sprintf("Max 1-D length for %d bytes", res.LocalMemBytes))
			printLabelValue(w, "single", res.Single)
			printLabelValue(w, "double", res.Double)

			return nil
		},
	}
}
