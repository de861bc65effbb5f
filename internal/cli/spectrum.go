package cli

import (
	"cmp"
	"fmt"
	"math"
	"math/cmplx"
	"os"
	"slices"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/cobra"

	stockham "github.com/cwbudde/algo-stockham"
	"github.com/cwbudde/algo-stockham/gpu"
)

type spectrumOptions struct {
	size    int
	offset  int
	top     int
	channel int
}

type spectrumPeak struct {
	Bin       int     `json:"bin"`
	Frequency float64 `json:"frequencyHz"`
	Magnitude float64 `json:"magnitude"`
}

type spectrumResult struct {
	File       string         `json:"file"`
	SampleRate int            `json:"sampleRate"`
	Size       int            `json:"size"`
	Radices    []int          `json:"radices"`
	Peaks      []spectrumPeak `json:"peaks"`
}

func newSpectrumCmd(g *globalOptions) *cobra.Command {
	o := &spectrumOptions{}

	cmd := &cobra.Command{
		Use:   "spectrum <file.wav>",
		Short: "Run a baked plan over a WAV frame on the mock runtime",
		Long: `Decode one channel of a WAV file, transform a frame of --size samples
with a plan baked for the configured envelope, executed by the CPU mock
runtime, and print the strongest frequency bins.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runSpectrum(g, o, args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if g.json {
				return outputJSON(w, res)
			}

			printSection(w, fmt.Sprintf("%s: %d-point spectrum at %d Hz", res.File, res.Size, res.SampleRate))
			printLabelValue(w, "radices", res.Radices)

			for _, p := range res.Peaks {
				printLabelValue(w, fmt.Sprintf("bin %d", p.Bin),
					fmt.Sprintf("%.1f Hz  %.4f", p.Frequency, p.Magnitude))
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&o.size, "size", "n", 1024, "Transform length")
	cmd.Flags().IntVar(&o.offset, "offset", 0, "First sample frame of the window")
	cmd.Flags().IntVar(&o.top, "top", 5, "Number of peaks to print")
	cmd.Flags().IntVar(&o.channel, "channel", 0, "Channel to analyse")

	return cmd
}

func runSpectrum(g *globalOptions, o *spectrumOptions, path string) (spectrumResult, error) {
	frame, rate, err := readFrame(path, o)
	if err != nil {
		return spectrumResult{}, err
	}

	prec, err := parsePrecision(g.precision)
	if err != nil {
		return spectrumResult{}, err
	}

	backend := gpu.NewMockBackendWithEnvelope(g.envelope())

	var (
		bins    []complex128
		radices []int
	)

	if prec == stockham.PrecisionDouble {
		bins, radices, err = forwardFrame[complex128](backend, frame)
	} else {
		bins, radices, err = forwardFrame[complex64](backend, frame)
	}

	if err != nil {
		return spectrumResult{}, err
	}

	peaks := make([]spectrumPeak, 0, o.size/2+1)
	for k := 0; k <= o.size/2; k++ {
		peaks = append(peaks, spectrumPeak{
			Bin:       k,
			Frequency: float64(k) * float64(rate) / float64(o.size),
			Magnitude: cmplx.Abs(bins[k]) / float64(o.size),
		})
	}

	slices.SortStableFunc(peaks, func(a, b spectrumPeak) int {
		return cmp.Compare(b.Magnitude, a.Magnitude)
	})

	return spectrumResult{
		File:       path,
		SampleRate: rate,
		Size:       o.size,
		Radices:    radices,
		Peaks:      peaks[:min(o.top, len(peaks))],
	}, nil
}

func forwardFrame[T gpu.Complex](b gpu.Backend, frame []complex128) ([]complex128, []int, error) {
	ex, err := gpu.NewExecutorWithBackend[T](b, []int{len(frame)}, gpu.Options{})
	if err != nil {
		return nil, nil, err
	}

	defer func() { _ = ex.Close() }()

	in := make([]T, len(frame))
	for i, v := range frame {
		in[i] = T(v)
	}

	out := make([]T, len(frame))
	if err := ex.Forward(out, in); err != nil {
		return nil, nil, err
	}

	bins := make([]complex128, len(out))
	for i, v := range out {
		bins[i] = complex128(v)
	}

	return bins, ex.Plan().ExecutionPlan().Axis(0).Radices, nil
}

// readFrame decodes o.size frames of one channel starting at o.offset,
// normalised to [-1, 1) and zero-padded past the end of the file.
func readFrame(path string, o *spectrumOptions) ([]complex128, int, error) {
	if o.size < 2 {
		return nil, 0, fmt.Errorf("size %d: want at least 2", o.size)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid WAV file: %s", path)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", path, err)
	}

	format := pcm.Format
	if format == nil {
		format = dec.Format()
	}

	channels := format.NumChannels
	if o.channel < 0 || o.channel >= channels {
		return nil, 0, fmt.Errorf("channel %d: file has %d channels", o.channel, channels)
	}

	samples := channelSamples(pcm.AsFloatBuffer(), channels, o.channel, int(dec.BitDepth))

	frame := make([]complex128, o.size)
	for i := range frame {
		if j := o.offset + i; j >= 0 && j < len(samples) {
			frame[i] = complex(samples[j], 0)
		}
	}

	return frame, format.SampleRate, nil
}

func channelSamples(buf *audio.FloatBuffer, channels, channel, bitDepth int) []float64 {
	scale := 1.0
	if bitDepth > 1 {
		scale = 1 / math.Exp2(float64(bitDepth-1))
	}

	out := make([]float64, 0, len(buf.Data)/channels)
	for i := channel; i < len(buf.Data); i += channels {
		out = append(out, buf.Data[i]*scale)
	}

	return out
}
