// Package audio mixes named sound clips into an interleaved stereo stream.
package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/ushitora-anqou/gameform/constant"
	"github.com/ushitora-anqou/gameform/util"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrDuplicate       = errors.New("clip already exists")
	ErrNotFound        = errors.New("clip not found")
	ErrNotPlaying      = errors.New("clip is not playing")
)

// Clip holds interleaved stereo samples in [-1, 1].
type Clip struct {
	samples []float32
}

// NewClip wraps interleaved stereo samples. A trailing half frame is dropped.
func NewClip(stereo []float32) *Clip {
	return &Clip{samples: stereo[:len(stereo)/constant.CHANNELS*constant.CHANNELS]}
}

func (c *Clip) Frames() int {
	return len(c.samples) / constant.CHANNELS
}

type Options struct {
	// OneInstance clips own a single voice that Play restarts.
	OneInstance bool
	Loop        bool
}

// Voice identifies one playback of a clip. The zero Voice is never issued.
type Voice uint64

type voice struct {
	id   Voice
	name string
	clip *Clip
	pos  int
	loop bool
}

type entry struct {
	clip *Clip
	opts Options
}

type Mixer struct {
	mtx    sync.Mutex
	clips  map[string]entry
	voices []*voice
	lastID Voice
	volume int
	logger *slog.Logger
}

func NewMixer() *Mixer {
	return &Mixer{
		clips:  map[string]entry{},
		volume: constant.MAX_VOLUME,
		logger: slog.Default().With("component", "audio"),
	}
}

func (m *Mixer) Add(name string, clip *Clip, opts Options) error {
	if name == "" {
		return fmt.Errorf("%w: empty clip name", ErrInvalidArgument)
	}
	if clip == nil {
		return fmt.Errorf("%w: nil clip %q", ErrInvalidArgument, name)
	}
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if _, ok := m.clips[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicate, name)
	}
	m.clips[name] = entry{clip: clip, opts: opts}
	return nil
}

func (m *Mixer) Has(name string) bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	_, ok := m.clips[name]
	return ok
}

// Remove forgets the clip and stops its voices.
func (m *Mixer) Remove(name string) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if _, ok := m.clips[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	delete(m.clips, name)
	m.voices = slices.DeleteFunc(m.voices, func(v *voice) bool { return v.name == name })
	return nil
}

func (m *Mixer) Play(name string) (Voice, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	e, ok := m.clips[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	if e.opts.OneInstance {
		for _, v := range m.voices {
			if v.name == name {
				v.pos = 0
				return v.id, nil
			}
		}
	}

	if len(m.voices) >= constant.MAX_VOICES {
		util.Trace("Voice limit reached, dropping oldest", "clip", m.voices[0].name)
		m.voices = m.voices[1:]
	}
	m.lastID++
	m.voices = append(m.voices, &voice{id: m.lastID, name: name, clip: e.clip, loop: e.opts.Loop})
	return m.lastID, nil
}

// Stop stops the oldest voice playing the clip.
func (m *Mixer) Stop(name string) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if _, ok := m.clips[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	i := slices.IndexFunc(m.voices, func(v *voice) bool { return v.name == name })
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNotPlaying, name)
	}
	m.voices = slices.Delete(m.voices, i, i+1)
	return nil
}

// StopVoice reports whether the voice was still playing.
func (m *Mixer) StopVoice(id Voice) bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	i := slices.IndexFunc(m.voices, func(v *voice) bool { return v.id == id })
	if i < 0 {
		return false
	}
	m.voices = slices.Delete(m.voices, i, i+1)
	return true
}

func (m *Mixer) StopAll() {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.voices = nil
}

// Playing returns how many voices play the clip.
func (m *Mixer) Playing(name string) int {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	n := 0
	for _, v := range m.voices {
		if v.name == name {
			n++
		}
	}
	return n
}

// SetVolume sets the master volume, clamped to [0, 100].
func (m *Mixer) SetVolume(volume int) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.volume = util.Clamp(volume, 0, constant.MAX_VOLUME)
}

func (m *Mixer) Volume() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.volume
}

// Mix overwrites out with the next len(out)/2 stereo frames of every voice.
// Voices that reach the end of a non-looping clip are dropped.
func (m *Mixer) Mix(out []float32) {
	clear(out)

	m.mtx.Lock()
	defer m.mtx.Unlock()
	gain := float32(m.volume) / constant.MAX_VOLUME
	if len(m.voices) == 0 {
		return
	}

	m.voices = slices.DeleteFunc(m.voices, func(v *voice) bool {
		src := v.clip.samples
		if len(src) == 0 {
			return true
		}
		for i := 0; i < len(out); {
			if v.pos >= len(src) {
				if !v.loop {
					return true
				}
				v.pos = 0
			}
			n := min(len(out)-i, len(src)-v.pos)
			for j := range n {
				out[i+j] += src[v.pos+j] * gain
			}
			i += n
			v.pos += n
		}
		return v.pos >= len(src) && !v.loop
	})

	for i, s := range out {
		out[i] = util.Clamp(s, -1, 1)
	}
}
