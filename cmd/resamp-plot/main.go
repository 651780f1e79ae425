// Command resamp-plot resamples a two-tone complex test signal and writes
// gnuplot scripts comparing the input and output in time and frequency.
//
// Usage:
//
//	resamp-plot
//	resamp-plot -r 1.3 -m 16 -slsl -80 -out figures.gen
//	resamp-plot -r 0.5 -bw 0.25 -interp cubic -wav resampled.wav
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	resampler "github.com/tphakala/go-iq-resampler"
	"github.com/tphakala/go-iq-resampler/internal/plot"
	"github.com/tphakala/go-iq-resampler/internal/signal"
	"github.com/tphakala/go-iq-resampler/internal/spectrum"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

// run executes the command with args, excluding the program name.
func run(args []string) error {
	flags := flag.NewFlagSet("resamp-plot", flag.ContinueOnError)
	var (
		rate       = flags.Float64("r", defaultRate, "Resampling rate (output/input)")
		semiLength = flags.Int("m", resampler.DefaultSemiLength, "Filter semi-length (filter delay)")
		bandwidth  = flags.Float64("bw", resampler.DefaultBandwidth, "Resampling filter bandwidth")
		slsl       = flags.Float64("slsl", resampler.DefaultStopbandAttenuationDB, "Filter sidelobe suppression level [dB]")
		npfb       = flags.Int("npfb", resampler.DefaultNumPhases, "Number of filters in bank (timing resolution)")
		interp     = flags.String("interp", "linear", "Interpolation: nearest, linear, cubic")
		samples    = flags.Int("samples", defaultSamples, "Number of input samples")
		nfft       = flags.Int("nfft", defaultNFFT, "FFT length for the PSD plot")
		window     = flags.String("window", spectrum.Hann.String(), "PSD window: hann, hamming, blackman, rectangular")
		outDir     = flags.String("out", defaultOutputDir, "Output directory for gnuplot scripts")
		terminal   = flags.String("terminal", plot.DefaultTerminal, "gnuplot terminal")
		wavPath    = flags.String("wav", "", "Also write the resampled I/Q signal to this WAV file")
		wavRate    = flags.Int("wav-rate", defaultWAVRate, "Nominal input sample rate for -wav [Hz]")
		flush      = flags.Bool("flush", false, "Flush the filter delay into the output")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}

	policy, err := resampler.ParseInterpolation(*interp)
	if err != nil {
		return err
	}
	win, err := spectrum.ParseWindow(*window)
	if err != nil {
		return err
	}

	config := resampler.Config{
		Rate:                  *rate,
		SemiLength:            *semiLength,
		Bandwidth:             *bandwidth,
		StopbandAttenuationDB: *slsl,
		NumPhases:             *npfb,
		Interpolation:         policy,
	}
	r, err := resampler.New(&config)
	if err != nil {
		return fmt.Errorf("failed to create resampler: %w", err)
	}
	defer r.Close()

	x := signal.Sum(*samples,
		signal.Tone{Frequency: toneFrequency1, Amplitude: toneAmplitude1},
		signal.Tone{Frequency: toneFrequency2, Amplitude: toneAmplitude2},
	)

	y := make([]complex128, 0, r.OutputCapacity(len(x)))
	for _, v := range x {
		y = r.AppendExecute(y, v)
	}
	if *flush {
		y = append(y, r.Flush()...)
	}

	if err := os.MkdirAll(*outDir, outputDirPerm); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	timePath := filepath.Join(*outDir, timeScriptName)
	err = writeFile(timePath, func(w io.Writer) error {
		return plot.WriteTimeScript(w, plot.TimeOptions{
			Filename: timePath,
			Terminal: *terminal,
			Rate:     *rate,
			Delay:    float64(r.Delay()),
		}, x, y)
	})
	if err != nil {
		return err
	}

	est, err := spectrum.NewEstimator(*nfft, win)
	if err != nil {
		return err
	}
	X, err := est.Compute(nil, x)
	if err != nil {
		return err
	}
	Y, err := est.Compute(nil, y)
	if err != nil {
		return err
	}

	psdPath := filepath.Join(*outDir, psdScriptName)
	err = writeFile(psdPath, func(w io.Writer) error {
		return plot.WritePSDScript(w, plot.PSDOptions{
			Filename: psdPath,
			Terminal: *terminal,
			Rate:     *rate,
		}, X, Y)
	})
	if err != nil {
		return err
	}

	if *wavPath != "" {
		outRate := int(float64(*wavRate)**rate + 0.5)
		if err := writeIQWAV(*wavPath, outRate, y); err != nil {
			return err
		}
	}

	fmt.Printf("input samples: %d, output samples: %d\n", len(x), len(y))
	fmt.Println("done.")
	return nil
}

// writeFile creates path and passes it to write, returning the first error.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	if err := write(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// writeIQWAV writes y as a 16-bit stereo WAV with I on the left channel
// and Q on the right. Samples are scaled by the peak magnitude.
func writeIQWAV(path string, sampleRate int, y []complex128) (err error) {
	if sampleRate < 1 {
		return fmt.Errorf("invalid WAV sample rate %d", sampleRate)
	}

	var peak float64
	for _, v := range y {
		peak = max(peak, math.Abs(real(v)), math.Abs(imag(v)))
	}
	scale := wavFullScale
	if peak > 0 {
		scale /= peak
	}

	data := make([]int, 0, len(y)*wavChannels)
	for _, v := range y {
		data = append(data, int(real(v)*scale), int(imag(v)*scale))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	enc := wav.NewEncoder(f, sampleRate, wavBitDepth, wavChannels, wavFormatPCM)
	buf := &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{NumChannels: wavChannels, SampleRate: sampleRate},
		SourceBitDepth: wavBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	return f.Close()
}
