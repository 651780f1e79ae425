// Command analyze-filter designs a polyphase filter bank and reports its
// per-phase DC gain, passband ripple, stopband level, measured group delay
// and the phases a given resampling ratio visits.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"

	resampler "github.com/tphakala/go-iq-resampler"
	"github.com/tphakala/go-iq-resampler/internal/filter"
	"github.com/tphakala/go-iq-resampler/internal/mathutil"
	"github.com/tphakala/go-iq-resampler/internal/signal"
)

const (
	// Kaiser transition width: Δf ≈ (A - 7.95) / (14.36 (N-1)) at the
	// prototype rate. Per input sample with N-1 = 2mP this is
	// (A - 7.95) / (28.72 m).
	kaiserOffsetDB   = 7.95
	kaiserWidthScale = 28.72

	responsePoints  = 2048
	maxPhasesToShow = 8
	testIterations  = 1000
	halfTransition  = 0.5
	nyquist         = 0.5

	// Impulse sits this many samples into the probe signal
	impulsePosition = 8
	// Probe length in filter semi-lengths past the impulse
	impulseSpan = 4
)

func main() {
	semiLength := flag.Int("m", resampler.DefaultSemiLength, "Filter semi-length")
	bandwidth := flag.Float64("bw", resampler.DefaultBandwidth, "Filter bandwidth, normalized to the input rate")
	slsl := flag.Float64("slsl", resampler.DefaultStopbandAttenuationDB, "Sidelobe suppression level [dB]")
	phases := flag.Int("npfb", resampler.DefaultNumPhases, "Number of filters in the bank")
	interp := flag.String("interp", "linear", "Interpolation: nearest, linear, cubic")
	flag.Parse()

	policy, err := resampler.ParseInterpolation(*interp)
	if err != nil {
		log.Fatal(err)
	}

	config := resampler.Config{
		Rate:                  1,
		SemiLength:            *semiLength,
		Bandwidth:             *bandwidth,
		StopbandAttenuationDB: *slsl,
		NumPhases:             *phases,
		Interpolation:         policy,
	}
	bank, err := resampler.DesignFilterBank(&config)
	if err != nil {
		log.Fatalf("Failed to design filter bank: %v", err)
	}

	fmt.Println("=== Filter bank ===")
	fmt.Printf("  NumPhases: %d\n", bank.NumPhases)
	fmt.Printf("  TapsPerPhase: %d\n", bank.TapsPerPhase)
	fmt.Printf("  TotalTaps: %d\n", bank.TotalTaps)
	fmt.Printf("  Kaiser beta: %.4f for %.1f dB sidelobes (estimated attenuation %.1f dB)\n",
		mathutil.KaiserBetaFromSidelobe(*slsl), *slsl, mathutil.KaiserAttenuation(bank.Beta))
	fmt.Printf("  Interpolation: %s\n", bank.InterpOrder)
	fmt.Printf("  Memory: %d bytes\n\n", bank.GetMemoryUsage())

	reportPhaseGains(bank)
	reportResponse(bank)
	reportGroupDelay(bank)
	reportPhaseUsage(bank)
}

func reportPhaseGains(bank *resampler.FilterBank) {
	fmt.Println("=== DC gain per phase ===")
	minGain, maxGain := math.Inf(1), math.Inf(-1)
	var total float64
	for phase := range bank.NumPhases {
		g := bank.PhaseDCGain(phase)
		minGain = math.Min(minGain, g)
		maxGain = math.Max(maxGain, g)
		total += g
		if phase < maxPhasesToShow {
			fmt.Printf("  Phase %3d: %.10f\n", phase, g)
		}
	}
	if bank.NumPhases > maxPhasesToShow {
		fmt.Printf("  ... (%d more phases)\n", bank.NumPhases-maxPhasesToShow)
	}
	fmt.Printf("  Average: %.10f\n", total/float64(bank.NumPhases))
	fmt.Printf("  Spread: %.3e (%.4f dB)\n\n", maxGain-minGain, filter.MagnitudeDB(maxGain/minGain))
}

// bandEdges estimates the passband and stopband edges from the Kaiser
// transition width.
func bandEdges(bank *resampler.FilterBank) (pass, stop float64) {
	width := (bank.Attenuation - kaiserOffsetDB) / (kaiserWidthScale * float64(bank.SemiLength))
	pass = math.Max(0, bank.Bandwidth-halfTransition*width)
	stop = math.Min(nyquist, bank.Bandwidth+halfTransition*width)
	return pass, stop
}

func reportResponse(bank *resampler.FilterBank) {
	pass, stop := bandEdges(bank)
	resp := bank.ComputeFrequencyResponse(responsePoints)

	minPass, maxPass := math.Inf(1), math.Inf(-1)
	maxStop := math.Inf(-1)
	for k, f := range resp.Frequencies {
		db := filter.MagnitudeDB(resp.Magnitude[k])
		if f <= pass {
			minPass = math.Min(minPass, db)
			maxPass = math.Max(maxPass, db)
		}
		if f >= stop {
			maxStop = math.Max(maxStop, db)
		}
	}

	fmt.Println("=== Frequency response (input-rate normalized) ===")
	fmt.Printf("  Passband: 0 to %.4f\n", pass)
	fmt.Printf("  Passband ripple: %.4f dB (%.4f to %.4f dB)\n", maxPass-minPass, minPass, maxPass)
	if math.IsInf(maxStop, -1) {
		fmt.Printf("  Stopband: above Nyquist\n\n")
		return
	}
	fmt.Printf("  Stopband: %.4f to %.1f\n", stop, nyquist)
	fmt.Printf("  Stopband level: %.2f dB\n\n", maxStop)
}

// reportGroupDelay resamples a unit impulse and reports where its peak
// lands, in input samples after the impulse.
func reportGroupDelay(bank *resampler.FilterBank) {
	fmt.Println("=== Group delay (impulse response) ===")
	x := signal.Impulse(impulsePosition+impulseSpan*bank.SemiLength, impulsePosition)

	for _, ratio := range []float64{0.5, 0.9, 1.0, 1.7, math.Pi} {
		r, err := resampler.NewWithBank(ratio, bank)
		if err != nil {
			log.Fatalf("Failed to create resampler: %v", err)
		}

		y := r.Process(x)
		mags := make([]float64, len(y))
		for i, v := range y {
			mags[i] = cmplx.Abs(v)
		}
		peak := floats.MaxIdx(mags)
		step := r.OutputTime(1) - r.OutputTime(0)

		fmt.Printf("  ratio %.4f: peak %.4f at output %d, delay %.3f input samples (nominal %d)\n",
			ratio, mags[peak], peak, float64(peak)*step-impulsePosition, r.Delay())
		r.Close()
	}
	fmt.Println()
}

func reportPhaseUsage(bank *resampler.FilterBank) {
	testRatios := []struct {
		ratio float64
		name  string
	}{
		{2.0, "2x interpolation"},
		{0.5, "2x decimation"},
		{0.9, "0.9 resampling"},
		{math.Pi, "pi resampling"},
		{48000.0 / 44100.0, "44.1 kHz to 48 kHz"},
	}

	for _, test := range testRatios {
		r, err := resampler.NewWithBank(test.ratio, bank)
		if err != nil {
			log.Fatalf("Failed to create resampler: %v", err)
		}

		fmt.Printf("=== %s (ratio = %.6f) ===\n", test.name, test.ratio)
		fmt.Printf("  Step: %.12f input samples\n", r.OutputTime(1)-r.OutputTime(0))

		used := make(map[int]bool)
		var sumGain float64
		for i := range testIterations {
			// Locate wraps the output instant to its fractional part
			phase, _ := bank.Locate(r.OutputTime(i))
			phase %= bank.NumPhases
			if !used[phase] {
				used[phase] = true
				sumGain += bank.PhaseDCGain(phase)
			}
		}
		fmt.Printf("  Used %d unique phases (out of %d), average DC gain %.10f\n\n",
			len(used), bank.NumPhases, sumGain/float64(len(used)))
		r.Close()
	}
}
