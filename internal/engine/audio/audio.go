// Package audio provides synthesized sound cues for game events.
package audio

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/speaker"
)

// DefaultSampleRate is the default sample rate for audio playback.
const DefaultSampleRate = beep.SampleRate(44100)

// ErrNotInitialized is returned when playing before Init.
var ErrNotInitialized = errors.New("audio not initialized")

// Tone is one note of a cue.
type Tone struct {
	Freq     float64 // Hz; zero is a rest
	Duration time.Duration
}

// Cue identifies a game sound.
type Cue int

const (
	CueDrop Cue = iota
	CueJump
	CueRespawn
)

var cues = map[Cue][]Tone{
	// Rising major arpeggio when the ball drops through a hole.
	CueDrop: {
		{Freq: 523.25, Duration: 90 * time.Millisecond},
		{Freq: 659.25, Duration: 90 * time.Millisecond},
		{Freq: 783.99, Duration: 180 * time.Millisecond},
	},
	CueJump: {
		{Freq: 330, Duration: 40 * time.Millisecond},
		{Freq: 440, Duration: 40 * time.Millisecond},
	},
	CueRespawn: {
		{Freq: 392, Duration: 70 * time.Millisecond},
		{Duration: 30 * time.Millisecond},
		{Freq: 392, Duration: 70 * time.Millisecond},
	},
}

// Tones returns the notes of a cue.
func Tones(c Cue) []Tone {
	return cues[c]
}

// Manager handles audio playback for the game.
type Manager struct {
	mu sync.RWMutex

	initialized bool
	sampleRate  beep.SampleRate

	// Volume settings (0.0 to 1.0)
	masterVolume float64
	sfxVolLevel  float64

	// Mixer for concurrent cues
	sfxMixer *beep.Mixer
}

// New creates a new audio manager.
func New() *Manager {
	return &Manager{
		masterVolume: 1.0,
		sfxVolLevel:  0.6,
		sampleRate:   DefaultSampleRate,
		sfxMixer:     &beep.Mixer{},
	}
}

// Init opens the speaker.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	err := speaker.Init(m.sampleRate, m.sampleRate.N(time.Second/30))
	if err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(m.sfxMixer)

	m.initialized = true
	return nil
}

// Close shuts down the audio system.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	m.initialized = false
}

// SetMasterVolume sets the master volume (0.0 to 1.0).
func (m *Manager) SetMasterVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.masterVolume = clamp(vol, 0, 1)
}

// SetSFXVolume sets the cue volume (0.0 to 1.0).
func (m *Manager) SetSFXVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sfxVolLevel = clamp(vol, 0, 1)
}

// Play mixes a cue into the output.
func (m *Manager) Play(c Cue) error {
	m.mu.RLock()
	initialized := m.initialized
	vol := m.masterVolume * m.sfxVolLevel
	sr := m.sampleRate
	m.mu.RUnlock()

	if !initialized {
		return ErrNotInitialized
	}

	s, err := Chime(sr, Tones(c), vol)
	if err != nil {
		return err
	}

	speaker.Lock()
	m.sfxMixer.Add(s)
	speaker.Unlock()
	return nil
}

// Chime renders tones back to back at the given volume (0.0 to 1.0).
func Chime(sr beep.SampleRate, tones []Tone, vol float64) (beep.Streamer, error) {
	parts := make([]beep.Streamer, 0, len(tones))
	for _, t := range tones {
		n := sr.N(t.Duration)
		if t.Freq <= 0 {
			parts = append(parts, beep.Silence(n))
			continue
		}
		tone, err := generators.SineTone(sr, t.Freq)
		if err != nil {
			return nil, fmt.Errorf("tone %.1fHz: %w", t.Freq, err)
		}
		parts = append(parts, beep.Take(n, tone))
	}

	return &effects.Volume{
		Streamer: beep.Seq(parts...),
		Base:     2,
		Volume:   volumeExponent(vol),
		Silent:   vol <= 0,
	}, nil
}

// volumeExponent converts a 0-1 amplitude to a base-2 effects.Volume
// exponent: 1 is unchanged, 0.5 is one halving (about -6dB).
func volumeExponent(vol float64) float64 {
	if vol <= 0 {
		return -100 // Effectively silent
	}
	return math.Log2(vol)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
