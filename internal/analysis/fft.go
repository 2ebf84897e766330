package analysis

import (
	"math"
	"math/cmplx"
)

// fft is the recursive radix-2 Cooley-Tukey transform shared by FFT (real
// input, forward only) and Autocorrelation (complex input, forward and
// inverse via invert). len(data) must be a power of two.
func fft(data []complex128, invert bool) []complex128 {
	n := len(data)
	if n <= 1 {
		out := make([]complex128, n)
		copy(out, data)
		return out
	}
	if n%2 != 0 {
		panic("fft requires power of 2 length")
	}

	even := make([]complex128, n/2)
	odd := make([]complex128, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := fft(even, invert)
	fodd := fft(odd, invert)

	sign := -1.0
	if invert {
		sign = 1.0
	}
	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, sign*2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}
	return result
}

// FFT runs the forward transform over real-valued input.
func FFT(data []float64) []complex128 {
	in := make([]complex128, len(data))
	for i, v := range data {
		in[i] = complex(v, 0)
	}
	return fft(in, false)
}

// PowerSpectrum returns the magnitude of FFT's positive-frequency half.
func PowerSpectrum(data []float64) []float64 {
	spectrum := FFT(data)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}
