package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Bin is one frequency of a spectrum. Freq is in Hz of lesson time.
type Bin struct {
	Freq  float64
	Power float64
}

// Spectrum returns the one-sided amplitude spectrum of samples taken every
// dt seconds. The mean is removed first so a constant base does not mask
// the oscillating terms. Any length works; fewer than 4 samples yield nil.
func Spectrum(samples []float64, dt float64) []Bin {
	n := len(samples)
	if n < 4 || dt <= 0 {
		return nil
	}
	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)

	centered := make([]float64, n)
	for i, v := range samples {
		centered[i] = v - mean
	}
	coeffs := fft.FFTReal(centered)

	bins := make([]Bin, n/2)
	for k := range bins {
		bins[k] = Bin{
			Freq:  float64(k) / (float64(n) * dt),
			Power: 2 * cmplx.Abs(coeffs[k]) / float64(n),
		}
	}
	return bins
}

// Dominant returns the frequency with the most power, ignoring DC. ok is
// false for a flat or too short series.
func Dominant(samples []float64, dt float64) (freq float64, ok bool) {
	bins := Spectrum(samples, dt)
	best := 0.0
	for _, b := range bins[min(1, len(bins)):] {
		if b.Power > best {
			best, freq = b.Power, b.Freq
		}
	}
	return freq, best > 1e-9
}

// AngularToHz converts a formula term frequency (rad/s) to Hz.
func AngularToHz(w float64) float64 { return w / (2 * math.Pi) }
