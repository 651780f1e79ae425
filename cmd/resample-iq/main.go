// Command resample-iq resamples stereo I/Q WAV recordings by an arbitrary
// ratio. The left channel carries I and the right channel carries Q.
//
// Usage:
//
//	resample-iq -rate 0.9 input.wav output.wav
//	resample-iq -output-rate 250000 -quality high capture.wav out.wav
//	resample-iq -rate 3.14159 -interp cubic -v input.wav output.wav
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-audio/audio"

	resampler "github.com/tphakala/go-iq-resampler"
)

const (
	// Frames per processing chunk
	bufferFrames = 65536

	// I and Q
	iqChannels = 2

	// Sample format constants
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	// Full-scale values
	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	// WAV audio format tag for integer PCM
	wavFormatPCM = 1

	// Progress reporting
	progressInterval = 10 // Print progress every N%
	percentScale     = 100

	// CLI
	minRequiredArgs = 2
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

type options struct {
	rate       float64
	outputRate int
	quality    resampler.QualityPreset
	interp     string
	compensate bool
	verbose    bool
}

func run() error {
	rate := flag.Float64("rate", 0, "Output/input sample rate ratio (e.g. 0.9, 2, 3.14159)")
	outputRate := flag.Int("output-rate", 0, "Target sample rate in Hz (alternative to -rate)")
	quality := flag.String("quality", "medium", "Quality preset: quick, low, medium, high, veryhigh")
	interp := flag.String("interp", "", "Override interpolation: nearest, linear, cubic")
	compensate := flag.Bool("compensate", false, "Drop the leading filter delay from the output")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -rate 0.5 iq.wav iq_half.wav          # Decimate by 2\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -output-rate 48000 iq.wav iq_48k.wav  # Convert to 48 kHz\n", os.Args[0])
		return errors.New("insufficient arguments")
	}

	if (*rate == 0) == (*outputRate == 0) {
		return errors.New("exactly one of -rate or -output-rate is required")
	}

	preset, err := resampler.ParseQuality(*quality)
	if err != nil {
		return err
	}

	inputPath := args[0]
	outputPath := args[1]
	opts := options{
		rate:       *rate,
		outputRate: *outputRate,
		quality:    preset,
		interp:     *interp,
		compensate: *compensate,
		verbose:    *verbose,
	}

	if opts.verbose {
		log.Printf("Input: %s", inputPath)
		log.Printf("Output: %s", outputPath)
		log.Printf("Quality: %s", preset)
	}

	start := time.Now()
	stats, err := resampleIQFile(inputPath, outputPath, opts)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("Resampled %s -> %s\n", filepath.Base(inputPath), filepath.Base(outputPath))
	fmt.Printf("  %d Hz -> %d Hz (ratio %.6f, %d-bit)\n",
		stats.inputRate, stats.outputRate, stats.ratio, stats.bitDepth)
	fmt.Printf("  %d samples -> %d samples\n", stats.inputFrames, stats.outputFrames)
	fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
		elapsed.Seconds(),
		float64(stats.inputFrames)/float64(stats.inputRate)/elapsed.Seconds())

	return nil
}

type resampleStats struct {
	inputRate    int
	outputRate   int
	ratio        float64
	bitDepth     int
	inputFrames  int64
	outputFrames int64
}

// targetFor resolves the ratio and the output sample rate written to the
// WAV header.
func targetFor(inputRate int, opts options) (ratio float64, outputRate int, err error) {
	if inputRate <= 0 {
		return 0, 0, fmt.Errorf("invalid input sample rate %d", inputRate)
	}
	if opts.outputRate > 0 {
		return float64(opts.outputRate) / float64(inputRate), opts.outputRate, nil
	}
	if opts.rate <= 0 {
		return 0, 0, fmt.Errorf("invalid rate %g", opts.rate)
	}
	outputRate = int(float64(inputRate)*opts.rate + 0.5)
	if outputRate < 1 {
		return 0, 0, fmt.Errorf("rate %g gives an output sample rate below 1 Hz", opts.rate)
	}
	return opts.rate, outputRate, nil
}

// newResampler builds the resampler for ratio from the preset and
// interpolation override in opts.
func newResampler(ratio float64, opts options) (*resampler.Resampler, error) {
	config := resampler.PresetConfig(ratio, opts.quality)
	if opts.interp != "" {
		policy, err := resampler.ParseInterpolation(opts.interp)
		if err != nil {
			return nil, err
		}
		config.Interpolation = policy
	}
	r, err := resampler.New(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to create resampler: %w", err)
	}
	return r, nil
}

func resampleIQFile(inputPath, outputPath string, opts options) (stats *resampleStats, err error) {
	input, err := openIQInput(inputPath, opts.verbose)
	if err != nil {
		return nil, err
	}
	defer func() { _ = input.Close() }()

	ratio, outputRate, err := targetFor(input.rate, opts)
	if err != nil {
		return nil, err
	}

	r, err := newResampler(ratio, opts)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if opts.verbose {
		info := resampler.GetInfo(r)
		log.Printf("Ratio: %.6f, %d phases x %d taps, %s interpolation, latency %d samples",
			ratio, info.Phases, info.TapsPerPhase, info.Interpolation, info.Latency)
	}

	output, err := createIQOutput(outputPath, outputRate, input.bitDepth)
	if err != nil {
		return nil, err
	}
	// WAV header sizes are written on Close
	defer func() {
		if closeErr := output.Close(); err == nil {
			err = closeErr
		}
	}()

	stats = &resampleStats{
		inputRate:  input.rate,
		outputRate: outputRate,
		ratio:      ratio,
		bitDepth:   input.bitDepth,
	}

	scale, err := fullScale(input.bitDepth)
	if err != nil {
		return nil, err
	}

	// Outputs before input time zero carry only the filter delay
	skip := 0
	if opts.compensate {
		for r.OutputTime(skip) < 0 {
			skip++
		}
	}
	emit := func(y []complex128) error {
		if skip > 0 {
			n := min(skip, len(y))
			skip -= n
			y = y[n:]
		}
		stats.outputFrames += int64(len(y))
		return output.Write(y)
	}

	pcm := &audio.IntBuffer{
		Data:   make([]int, bufferFrames*iqChannels),
		Format: input.format,
	}
	samples := make([]complex128, 0, bufferFrames)
	resampled := make([]complex128, 0, r.OutputCapacity(bufferFrames))
	progress := newProgressTracker(input.totalFrames, opts.verbose)

	for {
		n, readErr := input.decoder.PCMBuffer(pcm)
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, fmt.Errorf("failed to read audio data: %w", readErr)
		}
		if n == 0 {
			break
		}

		samples = dequantizeIQ(samples[:0], pcm.Data[:n], scale)
		stats.inputFrames += int64(len(samples))

		resampled = r.AppendProcess(resampled[:0], samples)
		if err := emit(resampled); err != nil {
			return nil, err
		}

		progress.reportIfNeeded(stats.inputFrames)

		pcm.Data = pcm.Data[:cap(pcm.Data)]
	}

	if err := emit(r.Flush()); err != nil {
		return nil, fmt.Errorf("failed to write flushed data: %w", err)
	}

	return stats, nil
}
