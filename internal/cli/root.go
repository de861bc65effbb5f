// Package cli implements the stockhamplan command, which inspects the pass
// schedules the planner produces for a device envelope.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	stockham "github.com/cwbudde/algo-stockham"
	"github.com/cwbudde/algo-stockham/gpu"
)

var version = "dev"

// SetVersion sets the version reported by --version and the version command.
func SetVersion(v string) {
	if v == "" {
		return
	}

	version = v
}

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	json          bool
	verbose       bool
	precision     string
	localMemBytes int
	maxWGS        int
}

func (o *globalOptions) envelope() stockham.Envelope {
	return stockham.Envelope{LocalMemBytes: o.localMemBytes, MaxWorkGroupSize: o.maxWGS}
}

func (o *globalOptions) logger(cmd *cobra.Command) *slog.Logger {
	if !o.verbose {
		return nil
	}

	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newRootCmd() (*cobra.Command, error) {
	env, err := defaultEnvelope()
	if err != nil {
		return nil, err
	}

	opts := &globalOptions{}

	root := &cobra.Command{
		Use:     "stockhamplan",
		Version: version,
		Short:   "Inspect Stockham FFT pass schedules",
		Long: `stockhamplan bakes Stockham FFT plans against a device envelope and
prints the resulting pass schedules, twiddle tables and length limits.

The envelope defaults can be set with STOCKHAM_LDS_BYTES and STOCKHAM_MAX_WGS.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if l := opts.logger(cmd); l != nil {
				stockham.SetLogger(l)
				gpu.SetLogger(l)
			}
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")

	flags := root.PersistentFlags()
	flags.BoolVar(&opts.json, "json", false, "Output in JSON format")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log planner decisions to stderr")
	flags.StringVarP(&opts.precision, "precision", "p", "single", "Element precision (single or double)")
	flags.IntVar(&opts.localMemBytes, "lds", env.LocalMemBytes, "On-chip memory per work group in bytes")
	flags.IntVar(&opts.maxWGS, "max-wgs", env.MaxWorkGroupSize, "Largest work group the device launches")

	root.AddGroup(&cobra.Group{ID: "planning", Title: "Planning:"})
	root.AddGroup(&cobra.Group{ID: "cli-tooling", Title: "CLI & Tooling:"})

	for _, c := range []*cobra.Command{
		newPlanCmd(opts),
		newMaxLenCmd(opts),
		newTwiddleCmd(opts),
		newSpectrumCmd(opts),
	} {
		c.GroupID = "planning"
		root.AddCommand(c)
	}

	root.AddCommand(&cobra.Command{
		Use:     "version",
		Short:   "Print the stockhamplan version",
		Args:    cobra.NoArgs,
		GroupID: "cli-tooling",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})

	return root, nil
}

// Execute runs the command line.
func Execute() error {
	root, err := newRootCmd()
	if err != nil {
		return err
	}

	root.SetArgs(os.Args[1:])

	return root.Execute()
}
