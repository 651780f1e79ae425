package engine

// history is a fixed-length window of the most recent complex samples,
// stored as split real and imaginary channels.
//
// Every sample is written twice, at pos and pos+n, so the window
// oldest-to-newest is always the contiguous slice [pos, pos+n) and can be
// handed straight to a dot product.
type history struct {
	re  []float64
	im  []float64
	n   int
	pos int
}

func newHistory(n int) *history {
	return &history{
		re: make([]float64, historyMirrorFactor*n),
		im: make([]float64, historyMirrorFactor*n),
		n:  n,
	}
}

// push appends x as the newest sample, evicting the oldest.
func (h *history) push(x complex128) {
	re, im := real(x), imag(x)
	h.re[h.pos] = re
	h.re[h.pos+h.n] = re
	h.im[h.pos] = im
	h.im[h.pos+h.n] = im

	h.pos++
	if h.pos == h.n {
		h.pos = 0
	}
}

// window returns the real and imaginary views, oldest first.
// The slices alias the buffer and are valid until the next push.
func (h *history) window() (re, im []float64) {
	return h.re[h.pos : h.pos+h.n], h.im[h.pos : h.pos+h.n]
}

func (h *history) reset() {
	clear(h.re)
	clear(h.im)
	h.pos = 0
}

func (h *history) memoryUsage() int64 {
	return int64(len(h.re)+len(h.im)) * bytesPerFloat64
}
