// Package resampler provides arbitrary-rate resampling of complex baseband
// (I/Q) sample streams in pure Go.
//
// A single Kaiser-windowed lowpass prototype is decomposed into a bank of
// polyphase sub-filters. Each output sample is a dot product between the
// recent input history and the sub-filter whose phase matches the output
// instant, with taps interpolated between neighbouring phases when the
// instant falls between them.
//
// # Features
//
//   - Any real output/input ratio, including irrational ones such as π
//   - Fixed-point timing accumulator that does not drift over long streams
//   - Nearest, linear and cubic coefficient interpolation between phases
//   - One immutable filter bank shared by any number of resampler instances
//   - Optional SIMD acceleration (AVX2/SSE/NEON) via github.com/tphakala/simd
//   - Sample-at-a-time streaming API that does not allocate in steady state
//
// # Quick Start
//
// For one-shot resampling:
//
//	output, err := resampler.ResampleIQ(input, 0.9, resampler.QualityMedium)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For streaming with the classic parameter list (rate, semi-length,
// bandwidth, sidelobe level, number of phases):
//
//	r, err := resampler.Create(0.9, 13, 0.5, -60, 32)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	buf := make([]complex128, 0, r.MaxOutputPerSample())
//	for _, x := range samples {
//	    buf = r.AppendExecute(buf[:0], x)
//	    emit(buf)
//	}
//
// # Timing
//
// Output sample i corresponds to input time i/rate - SemiLength, so the
// resampler delays the signal by SemiLength input samples. [Resampler.Flush]
// feeds SemiLength zeros to release the outputs still held by that delay.
//
// # Quality Presets
//
//   - [QualityQuick]: short filter, nearest phase. Previews and monitoring.
//   - [QualityLow]: about 40 dB of image rejection.
//   - [QualityMedium]: the default configuration, -60 dB with 32 phases.
//   - [QualityHigh]: -80 dB with cubic interpolation.
//   - [QualityVeryHigh]: -120 dB with 256 phases for measurement work.
//
// # Thread Safety
//
// A [Resampler] is not safe for concurrent use. [Resampler.Clone] returns an
// independent instance with fresh state that shares the filter bank, so one
// bank can serve many goroutines.
package resampler
