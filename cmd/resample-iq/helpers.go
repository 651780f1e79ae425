package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// iqInput holds a validated stereo I/Q WAV input.
type iqInput struct {
	file        *os.File
	decoder     *wav.Decoder
	rate        int
	bitDepth    int
	totalFrames int64
	format      *audio.Format
}

// openIQInput opens a WAV file and checks that it carries I and Q channels.
func openIQInput(path string, verbose bool) (*iqInput, error) {
	inputFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(inputFile)
	if !decoder.IsValidFile() {
		_ = inputFile.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	format := decoder.Format()
	if format.NumChannels != iqChannels {
		_ = inputFile.Close()
		return nil, fmt.Errorf("expected %d channels (I, Q), got %d", iqChannels, format.NumChannels)
	}

	bitDepth := int(decoder.BitDepth)
	if _, err := fullScale(bitDepth); err != nil {
		_ = inputFile.Close()
		return nil, err
	}

	if verbose {
		log.Printf("Input format: %d Hz, %d-bit I/Q", format.SampleRate, bitDepth)
	}

	// Only used for progress reporting
	duration, err := decoder.Duration()
	if err != nil {
		duration = 0
	}

	return &iqInput{
		file:        inputFile,
		decoder:     decoder,
		rate:        format.SampleRate,
		bitDepth:    bitDepth,
		totalFrames: int64(duration.Seconds() * float64(format.SampleRate)),
		format:      format,
	}, nil
}

// Close closes the input file.
func (in *iqInput) Close() error {
	return in.file.Close()
}

// iqOutput writes stereo I/Q PCM through a go-audio WAV encoder.
type iqOutput struct {
	file    *os.File
	encoder *wav.Encoder
	buf     *audio.IntBuffer
	scale   float64
}

// createIQOutput creates a stereo PCM WAV file.
func createIQOutput(path string, sampleRate, bitDepth int) (*iqOutput, error) {
	scale, err := fullScale(bitDepth)
	if err != nil {
		return nil, err
	}

	outputFile, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &iqOutput{
		file:    outputFile,
		encoder: wav.NewEncoder(outputFile, sampleRate, bitDepth, iqChannels, wavFormatPCM),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: iqChannels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
		scale: scale,
	}, nil
}

// Write quantizes and writes complex samples.
func (out *iqOutput) Write(samples []complex128) error {
	if len(samples) == 0 {
		return nil
	}
	out.buf.Data = quantizeIQ(out.buf.Data[:0], samples, out.scale)
	if err := out.encoder.Write(out.buf); err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	return nil
}

// Close finalizes the WAV header and closes the file.
func (out *iqOutput) Close() error {
	if err := out.encoder.Close(); err != nil {
		_ = out.file.Close()
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	return out.file.Close()
}

// fullScale returns the largest positive PCM value for bitDepth.
func fullScale(bitDepth int) (float64, error) {
	switch bitDepth {
	case bitsPerSample16:
		return maxInt16, nil
	case bitsPerSample24:
		return maxInt24, nil
	case bitsPerSample32:
		return maxInt32, nil
	default:
		return 0, fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}
}

// dequantizeIQ converts interleaved I/Q integers to complex samples in
// [-1, 1], appending to dst. A trailing odd value is ignored.
func dequantizeIQ(dst []complex128, data []int, scale float64) []complex128 {
	inv := 1.0 / scale
	for i := 0; i+1 < len(data); i += iqChannels {
		dst = append(dst, complex(float64(data[i])*inv, float64(data[i+1])*inv))
	}
	return dst
}

// quantizeIQ converts complex samples to interleaved integers, clamping each
// component to [-1, 1].
func quantizeIQ(dst []int, samples []complex128, scale float64) []int {
	for _, v := range samples {
		dst = append(dst, quantize(real(v), scale), quantize(imag(v), scale))
	}
	return dst
}

func quantize(v, scale float64) int {
	return int(max(-1, min(1, v)) * scale)
}

// progressTracker handles progress reporting.
type progressTracker struct {
	totalFrames  int64
	lastProgress int
	verbose      bool
}

func newProgressTracker(totalFrames int64, verbose bool) *progressTracker {
	return &progressTracker{
		totalFrames: totalFrames,
		verbose:     verbose,
	}
}

// reportIfNeeded reports progress if threshold crossed.
func (p *progressTracker) reportIfNeeded(currentFrames int64) {
	if !p.verbose || p.totalFrames == 0 {
		return
	}

	progress := int(float64(currentFrames) / float64(p.totalFrames) * percentScale)
	if progress >= p.lastProgress+progressInterval {
		log.Printf("Progress: %d%%", progress)
		p.lastProgress = progress
	}
}
