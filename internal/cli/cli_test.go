package cli

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stockham "github.com/cwbudde/algo-stockham"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root, err := newRootCmd()
	require.NoError(t, err)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err = root.Execute()

	return out.String(), err
}

func TestRootCommand_Help(t *testing.T) {
	t.Parallel()

	out, err := run(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "stockhamplan")
	assert.Contains(t, out, "plan")
	assert.Contains(t, out, "spectrum")
}

func TestRootCommand_InvalidCommand(t *testing.T) {
	t.Parallel()

	_, err := run(t, "invalid-command")
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	SetVersion("1.2.3")
	t.Cleanup(func() { SetVersion("dev") })

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3\n", out)
}

func TestPlanCommand_JSON(t *testing.T) {
	t.Parallel()

	out, err := run(t, "plan", "4096", "--json")
	require.NoError(t, err)

	var s stockham.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &s))

	require.Len(t, s.Axes, 1)
	assert.Equal(t, []int{8, 8, 8, 8}, s.Axes[0].Radices)
	assert.Equal(t, 256, s.Axes[0].WorkGroupSize)
	assert.Equal(t, 1, s.Axes[0].TransformsPerGroup)
	assert.Equal(t, "in-place", s.Placement)
}

func TestPlanCommand_Text(t *testing.T) {
	t.Parallel()

	out, err := run(t, "plan", "8", "60", "--precision", "double", "--batch", "4")
	require.NoError(t, err)

	assert.Contains(t, out, "Axis 0: length 8")
	assert.Contains(t, out, "[2 2 2] (curated)")
	assert.Contains(t, out, "Axis 1: length 60")
	assert.Contains(t, out, "[5 4 3] (derived)")
	assert.Contains(t, out, "output -> scratch")
}

func TestPlanCommand_Transposed(t *testing.T) {
	t.Parallel()

	out, err := run(t, "plan", "16", "8", "--transpose", "--json")
	require.NoError(t, err)

	var s stockham.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.True(t, s.Transpose)
	assert.Equal(t, "out-of-place", s.Placement)
	assert.Equal(t, "scratch", s.Axes[1].Passes[len(s.Axes[1].Passes)-1].Dst)
}

func TestPlanCommand_Errors(t *testing.T) {
	t.Parallel()

	_, err := run(t, "plan", "26")
	require.ErrorIs(t, err, stockham.ErrUnsupportedLength)

	_, err = run(t, "plan", "4096", "--precision", "double")
	require.ErrorIs(t, err, stockham.ErrEnvelopeViolation)

	_, err = run(t, "plan", "4096", "--max-wgs", "128")
	require.ErrorIs(t, err, stockham.ErrEnvelopeViolation)

	_, err = run(t, "plan", "64", "--transpose")
	require.ErrorIs(t, err, stockham.ErrConfiguration)

	_, err = run(t, "plan", "0")
	require.ErrorIs(t, err, stockham.ErrArgument)

	_, err = run(t, "plan", "abc")
	require.Error(t, err)

	_, err = run(t, "plan", "64", "--precision", "half")
	require.Error(t, err)

	_, err = run(t, "plan", "2", "2", "2", "2")
	require.Error(t, err)
}

func TestMaxLenCommand(t *testing.T) {
	t.Parallel()

	out, err := run(t, "maxlen", "--lds", "16384", "--json")
	require.NoError(t, err)

	var res maxLenResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, maxLenResult{LocalMemBytes: 16384, Single: 2048, Double: 1024}, res)

	_, err = run(t, "maxlen", "--lds", "0")
	require.ErrorIs(t, err, stockham.ErrArgument)
}

func TestMaxLenCommand_Environment(t *testing.T) {
	t.Setenv(envLocalMemBytes, "65536")

	out, err := run(t, "maxlen", "--json")
	require.NoError(t, err)

	var res maxLenResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 8192, res.Single)

	t.Setenv(envMaxWorkGroupSize, "lots")

	_, err = newRootCmd()
	require.Error(t, err)
}

func TestTwiddleCommand(t *testing.T) {
	t.Parallel()

	out, err := run(t, "twiddle", "4", "--json")
	require.NoError(t, err)

	var entries []twiddleEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 3)

	assert.Equal(t, 1, entries[0].K)
	assert.InDelta(t, 0, entries[0].Real, 1e-15)
	assert.InDelta(t, -1, entries[0].Imag, 1e-15)

	out, err = run(t, "twiddle", "4", "-d", "backward", "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.InDelta(t, 1, entries[0].Imag, 1e-15)

	_, err = run(t, "twiddle", "6")
	require.Error(t, err)

	_, err = run(t, "twiddle", "4", "-d", "sideways")
	require.Error(t, err)
}

func writeTone(t *testing.T, rate, freq, frames int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tone.wav")

	f, err := os.Create(path)
	require.NoError(t, err)

	data := make([]int, frames)
	for i := range data {
		data[i] = int(12000 * math.Sin(2*math.Pi*float64(freq)*float64(i)/float64(rate)))
	}

	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	return path
}

func TestSpectrumCommand(t *testing.T) {
	t.Parallel()

	path := writeTone(t, 8000, 1000, 4000)

	for _, prec := range []string{"single", "double"} {
		out, err := run(t, "spectrum", path, "--size", "256", "--top", "3", "--precision", prec, "--json")
		require.NoError(t, err)

		var res spectrumResult
		require.NoError(t, json.Unmarshal([]byte(out), &res))

		assert.Equal(t, 8000, res.SampleRate)
		assert.Equal(t, []int{4, 4, 4, 4}, res.Radices)
		require.Len(t, res.Peaks, 3)
		assert.Equal(t, 32, res.Peaks[0].Bin, prec)
		assert.InDelta(t, 1000.0, res.Peaks[0].Frequency, 1e-9)
		assert.InDelta(t, 12000.0/32768/2, res.Peaks[0].Magnitude, 1e-3)
	}
}

func TestSpectrumCommand_Errors(t *testing.T) {
	t.Parallel()

	path := writeTone(t, 8000, 440, 512)

	_, err := run(t, "spectrum", filepath.Join(t.TempDir(), "missing.wav"))
	require.Error(t, err)

	_, err = run(t, "spectrum", path, "--channel", "1")
	require.Error(t, err)

	_, err = run(t, "spectrum", path, "--size", "26")
	require.ErrorIs(t, err, stockham.ErrUnsupportedLength)

	junk := filepath.Join(t.TempDir(), "junk.wav")
	require.NoError(t, os.WriteFile(junk, []byte("not a wav file"), 0o600))

	_, err = run(t, "spectrum", junk)
	require.Error(t, err)
}

func TestPlanCommand_Wisdom(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "wisdom.yaml")

	_, err := run(t, "plan", "60", "--wisdom", path)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "radices: [5, 4, 3]")

	pinned := "- length: 60\n  precision: single\n  radices: [3, 5, 4]\n  workGroupSize: 60\n  transformsPerGroup: 3\n"
	require.NoError(t, os.WriteFile(path, []byte(pinned), 0o600))

	out, err := run(t, "plan", "60", "--wisdom", path, "--json")
	require.NoError(t, err)

	var s stockham.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, []int{3, 5, 4}, s.Axes[0].Radices)
}
