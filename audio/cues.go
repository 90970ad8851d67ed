package audio

import (
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

const (
	mergeDuration = 80 * time.Millisecond
	noteDuration  = 90 * time.Millisecond

	baseMergeFreq = 880.0
	minFreq       = 110.0
	maxFreq       = 1760.0
	fanfareRoot   = 440.0
)

// MergeFrequency maps a merged mass to a pitch, heavier bodies sound lower
func MergeFrequency(mass float64) float64 {
	if !(mass > 0) {
		return maxFreq
	}
	return math.Max(minFreq, math.Min(maxFreq, baseMergeFreq/math.Sqrt(mass)))
}

// MergeCue is a short blip pitched by the merged mass
func MergeCue(rate beep.SampleRate, mass, volume float64) (beep.Streamer, error) {
	return tone(rate, MergeFrequency(mass), mergeDuration, volume)
}

// FanfareCue is a rising major triad, transposed up a semitone per level
func FanfareCue(rate beep.SampleRate, level int, volume float64) (beep.Streamer, error) {
	root := fanfareRoot * math.Pow(2, float64(level-1)/12)
	var notes []beep.Streamer
	for _, semis := range []float64{0, 4, 7} {
		s, err := tone(rate, root*math.Pow(2, semis/12), noteDuration, volume)
		if err != nil {
			return nil, err
		}
		notes = append(notes, s)
	}
	return beep.Seq(notes...), nil
}

func tone(rate beep.SampleRate, freq float64, d time.Duration, volume float64) (beep.Streamer, error) {
	sine, err := generators.SineTone(rate, freq)
	if err != nil {
		return nil, fmt.Errorf("failed to create %.0fHz tone: %w", freq, err)
	}
	return withVolume(beep.Take(rate.N(d), sine), volume), nil
}

// withVolume applies a linear gain; zero is silent since log2(0) is -Inf
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}
