// Package plot writes gnuplot scripts comparing an input sequence with its
// resampled version in the time and frequency domains.
package plot

import (
	"bufio"
	"fmt"
	"io"

	"github.com/tphakala/go-iq-resampler/internal/spectrum"
)

// DefaultTerminal is the gnuplot terminal line used when none is given.
const DefaultTerminal = "postscript eps enhanced color solid rounded"

const (
	gridColor     = "#999999"
	realColor     = "#008000"
	imagColor     = "#800000"
	resampleColor = "#004080"
)

// TimeOptions configures the time-domain script.
type TimeOptions struct {
	// Filename is echoed in the script header
	Filename string

	// Terminal is the gnuplot terminal, DefaultTerminal when empty
	Terminal string

	// Rate is the output/input resampling ratio
	Rate float64

	// Delay is the resampler delay in input samples
	Delay float64
}

// PSDOptions configures the frequency-domain script.
type PSDOptions struct {
	// Filename is echoed in the script header
	Filename string

	// Terminal is the gnuplot terminal, DefaultTerminal when empty
	Terminal string

	// Rate scales the output frequency axis to input-rate units
	Rate float64
}

func terminal(t string) string {
	if t == "" {
		return DefaultTerminal
	}
	return t
}

// WriteTimeScript writes a two-panel script with the real and imaginary
// parts of x at index i and of y at input time i/Rate - Delay.
func WriteTimeScript(w io.Writer, opts TimeOptions, x, y []complex128) error {
	if opts.Rate <= 0 {
		return fmt.Errorf("invalid rate %g for time script", opts.Rate)
	}

	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# %s: auto-generated file\n\n", opts.Filename)
	fmt.Fprintf(bw, "reset\n")
	fmt.Fprintf(bw, "set terminal %s\n", terminal(opts.Terminal))
	fmt.Fprintf(bw, "set yrange [-3:3]\n")
	fmt.Fprintf(bw, "set size ratio 0.3\n")
	fmt.Fprintf(bw, "set xlabel 'Sample Index'\n")
	fmt.Fprintf(bw, "set key top right nobox\n")
	fmt.Fprintf(bw, "set ytics -5,1,5\n")
	fmt.Fprintf(bw, "set grid xtics ytics\n")
	fmt.Fprintf(bw, "set pointsize 0.6\n")
	fmt.Fprintf(bw, "set grid linetype 1 linecolor rgb '%s' lw 1\n", gridColor)
	fmt.Fprintf(bw, "set multiplot layout 2,1 scale 1.0,1.0\n")

	panels := []struct {
		label, ylabel, column, color string
	}{
		{"real", "Real", "2", realColor},
		{"imag", "Imag", "3", imagColor},
	}

	for _, p := range panels {
		fmt.Fprintf(bw, "# %s\n", p.label)
		fmt.Fprintf(bw, "set ylabel '%s'\n", p.ylabel)
		fmt.Fprintf(bw, "plot '-' using 1:%s with linespoints pointtype 7 linetype 1 linewidth 1 linecolor rgb '%s' title 'original',\\\n",
			p.column, gridColor)
		fmt.Fprintf(bw, "     '-' using 1:%s with points pointtype 7 linecolor rgb '%s' title 'resampled'\n",
			p.column, p.color)

		for i, v := range x {
			fmt.Fprintf(bw, "%6d %12.4e %12.4e\n", i, real(v), imag(v))
		}
		fmt.Fprintf(bw, "e\n")

		for i, v := range y {
			t := float64(i)/opts.Rate - opts.Delay
			fmt.Fprintf(bw, "%12.4e %12.4e %12.4e\n", t, real(v), imag(v))
		}
		fmt.Fprintf(bw, "e\n")
	}
	fmt.Fprintf(bw, "unset multiplot\n")

	return bw.Flush()
}

// WritePSDScript writes the spectra X and Y (unshifted, equal length) as
// shifted power densities in dB. The output axis is scaled by Rate.
func WritePSDScript(w io.Writer, opts PSDOptions, X, Y []complex128) error {
	if len(X) != len(Y) {
		return fmt.Errorf("spectrum length mismatch: %d != %d", len(X), len(Y))
	}
	if opts.Rate <= 0 {
		return fmt.Errorf("invalid rate %g for PSD script", opts.Rate)
	}

	nfft := len(X)
	xdb := spectrum.PowerDB(spectrum.Shift(X))
	ydb := spectrum.PowerDB(spectrum.Shift(Y))
	fx := spectrum.Frequencies(nfft, 1)
	fy := spectrum.Frequencies(nfft, opts.Rate)

	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# %s: auto-generated file\n\n", opts.Filename)
	fmt.Fprintf(bw, "reset\n")
	fmt.Fprintf(bw, "set terminal %s\n", terminal(opts.Terminal))
	fmt.Fprintf(bw, "set xrange [-0.5:0.5];\n")
	fmt.Fprintf(bw, "set yrange [-120:20]\n")
	fmt.Fprintf(bw, "set size ratio 0.6\n")
	fmt.Fprintf(bw, "set xlabel 'Normalized Frequency'\n")
	fmt.Fprintf(bw, "set ylabel 'Power Spectral Density [dB]'\n")
	fmt.Fprintf(bw, "set key top right nobox\n")
	fmt.Fprintf(bw, "set grid xtics ytics\n")
	fmt.Fprintf(bw, "set pointsize 0.6\n")
	fmt.Fprintf(bw, "set grid linetype 1 linecolor rgb '%s' lw 1\n", gridColor)

	fmt.Fprintf(bw, "# real\n")
	fmt.Fprintf(bw, "plot '-' using 1:2 with lines linetype 1 linewidth 4 linecolor rgb '%s' title 'original',\\\n", gridColor)
	fmt.Fprintf(bw, "     '-' using 1:2 with lines linetype 1 linewidth 4 linecolor rgb '%s' title 'resampled'\n", resampleColor)

	for i := range nfft {
		fmt.Fprintf(bw, "%12.8f %12.4e\n", fx[i], xdb[i])
	}
	fmt.Fprintf(bw, "e\n")
	for i := range nfft {
		fmt.Fprintf(bw, "%12.8f %12.4e\n", fy[i], ydb[i])
	}
	fmt.Fprintf(bw, "e\n")

	return bw.Flush()
}
