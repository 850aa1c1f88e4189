// Package pitch estimates the fundamental frequency of mono audio with the
// YIN algorithm.
//
// Track returns one estimate per analysis frame. Frames that are silent,
// aperiodic, or whose estimate falls outside the requested band are reported
// as NaN so callers can discard them as unvoiced.
package pitch

import (
	"errors"
	"fmt"
	"math"
)

// Defaults for the analysis window.
const (
	DefaultFrameSize  = 1024
	DefaultHopSize    = 256
	DefaultThreshold  = 0.1
	DefaultSilenceRMS = 1e-3
)

// Tracker holds YIN analysis parameters.
type Tracker struct {
	// FrameSize is the integration window in samples.
	FrameSize int
	// HopSize is the distance between consecutive frames.
	HopSize int
	// Threshold is the absolute threshold on the cumulative mean normalized difference.
	Threshold float64
	// SilenceRMS marks frames quieter than this level as unvoiced.
	SilenceRMS float64
}

// New returns a tracker with default parameters.
func New() *Tracker {
	return &Tracker{
		FrameSize:  DefaultFrameSize,
		HopSize:    DefaultHopSize,
		Threshold:  DefaultThreshold,
		SilenceRMS: DefaultSilenceRMS,
	}
}

// Track estimates pitch across samples restricted to [minHz, maxHz].
func (t *Tracker) Track(samples []float64, rate int, minHz, maxHz float64) ([]float64, error) {
	if rate <= 0 {
		return nil, errors.New("pitch: sample rate must be positive")
	}
	if minHz <= 0 || maxHz <= minHz {
		return nil, fmt.Errorf("pitch: invalid band [%v, %v]", minHz, maxHz)
	}
	if maxHz*2 > float64(rate) {
		return nil, fmt.Errorf("pitch: max %v Hz exceeds nyquist for rate %d", maxHz, rate)
	}

	frameSize, hop, threshold, silence := t.params()
	tauMin := int(math.Floor(float64(rate) / maxHz))
	if tauMin < 2 {
		tauMin = 2
	}
	tauMax := int(math.Ceil(float64(rate) / minHz))
	span := frameSize + tauMax + 1
	if len(samples) < span {
		return []float64{}, nil
	}

	diff := make([]float64, tauMax+2)
	cmnd := make([]float64, tauMax+2)
	estimates := make([]float64, 0, (len(samples)-span)/hop+1)
	for start := 0; start+span <= len(samples); start += hop {
		window := samples[start : start+span]
		if rms(window[:frameSize]) < silence {
			estimates = append(estimates, math.NaN())
			continue
		}
		difference(window, frameSize, diff)
		normalize(diff, cmnd)
		tau := pickPeriod(cmnd, tauMin, tauMax, threshold)
		if tau < 0 {
			estimates = append(estimates, math.NaN())
			continue
		}
		f0 := float64(rate) / refine(cmnd, tau)
		if f0 < minHz || f0 > maxHz {
			estimates = append(estimates, math.NaN())
			continue
		}
		estimates = append(estimates, f0)
	}
	return estimates, nil
}

func (t *Tracker) params() (frameSize, hop int, threshold, silence float64) {
	frameSize, hop, threshold, silence = DefaultFrameSize, DefaultHopSize, DefaultThreshold, DefaultSilenceRMS
	if t == nil {
		return
	}
	if t.FrameSize > 0 {
		frameSize = t.FrameSize
	}
	if t.HopSize > 0 {
		hop = t.HopSize
	}
	if t.Threshold > 0 {
		threshold = t.Threshold
	}
	if t.SilenceRMS > 0 {
		silence = t.SilenceRMS
	}
	return
}

// difference fills d[tau] = sum over the window of (x[j] - x[j+tau])^2.
func difference(x []float64, width int, d []float64) {
	d[0] = 0
	for tau := 1; tau < len(d); tau++ {
		var sum float64
		for j := 0; j < width; j++ {
			delta := x[j] - x[j+tau]
			sum += delta * delta
		}
		d[tau] = sum
	}
}

// normalize computes the cumulative mean normalized difference.
func normalize(d, out []float64) {
	out[0] = 1
	var running float64
	for tau := 1; tau < len(d); tau++ {
		running += d[tau]
		if running == 0 {
			out[tau] = 1
			continue
		}
		out[tau] = d[tau] * float64(tau) / running
	}
}

// pickPeriod returns the first local minimum below threshold, or -1.
func pickPeriod(cmnd []float64, tauMin, tauMax int, threshold float64) int {
	for tau := tauMin; tau <= tauMax; tau++ {
		if cmnd[tau] >= threshold {
			continue
		}
		for tau+1 <= tauMax && cmnd[tau+1] < cmnd[tau] {
			tau++
		}
		return tau
	}
	return -1
}

// refine applies parabolic interpolation around tau.
func refine(cmnd []float64, tau int) float64 {
	if tau < 1 || tau+1 >= len(cmnd) {
		return float64(tau)
	}
	y0, y1, y2 := cmnd[tau-1], cmnd[tau], cmnd[tau+1]
	denom := y0 - 2*y1 + y2
	if denom == 0 {
		return float64(tau)
	}
	shift := 0.5 * (y0 - y2) / denom
	if shift > 1 || shift < -1 {
		return float64(tau)
	}
	return float64(tau) + shift
}

func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}
