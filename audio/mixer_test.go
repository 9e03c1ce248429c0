package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/ushitora-anqou/gameform/constant"
)

// constClip returns a stereo clip of frames frames all set to v.
func constClip(frames int, v float32) *Clip {
	s := make([]float32, frames*2)
	for i := range s {
		s[i] = v
	}
	return NewClip(s)
}

func TestAddErrors(t *testing.T) {
	m := NewMixer()
	if err := m.Add("", constClip(1, 0), Options{}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("empty name: %v", err)
	}
	if err := m.Add("x", nil, Options{}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("nil clip: %v", err)
	}
	if err := m.Add("x", constClip(1, 0), Options{}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := m.Add("x", constClip(1, 0), Options{}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate: %v", err)
	}
	if !m.Has("x") || m.Has("y") {
		t.Fatal("Has")
	}
	if _, err := m.Play("y"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Play unknown: %v", err)
	}
	if err := m.Remove("y"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Remove unknown: %v", err)
	}
}

func TestOneInstanceRestarts(t *testing.T) {
	m := NewMixer()
	m.Add("jump", constClip(4, 0.5), Options{OneInstance: true})

	first, _ := m.Play("jump")
	m.Mix(make([]float32, 4))
	second, _ := m.Play("jump")
	if first != second || m.Playing("jump") != 1 {
		t.Fatalf("voices %d, %d; playing %d", first, second, m.Playing("jump"))
	}

	// Restarted from the top, so all four frames remain.
	out := make([]float32, 8)
	m.Mix(out)
	if out[7] != 0.5 {
		t.Fatalf("restarted voice ended early: %v", out)
	}
}

func TestMultipleInstancesMix(t *testing.T) {
	m := NewMixer()
	m.Add("coin", constClip(2, 0.25), Options{})
	a, _ := m.Play("coin")
	b, _ := m.Play("coin")
	if a == b || m.Playing("coin") != 2 {
		t.Fatal("each Play should start a new voice")
	}

	out := make([]float32, 6)
	m.Mix(out)
	expected := []float32{0.5, 0.5, 0.5, 0.5, 0, 0}
	for i := range out {
		if out[i] != expected[i] {
			t.Fatalf("Mix = %v, expected %v", out, expected)
		}
	}
	if m.Playing("coin") != 0 {
		t.Fatal("finished voices were kept")
	}
}

func TestLoop(t *testing.T) {
	m := NewMixer()
	m.Add("bgm", NewClip([]float32{0.1, 0.1, 0.2, 0.2}), Options{Loop: true})
	m.Play("bgm")

	out := make([]float32, 10)
	m.Mix(out)
	expected := []float32{0.1, 0.1, 0.2, 0.2, 0.1, 0.1, 0.2, 0.2, 0.1, 0.1}
	for i := range out {
		if out[i] != expected[i] {
			t.Fatalf("Mix = %v, expected %v", out, expected)
		}
	}
	if m.Playing("bgm") != 1 {
		t.Fatal("looping voice stopped")
	}
}

func TestStop(t *testing.T) {
	m := NewMixer()
	m.Add("sfx", constClip(100, 0.1), Options{})
	if err := m.Stop("sfx"); !errors.Is(err, ErrNotPlaying) {
		t.Fatalf("Stop idle clip: %v", err)
	}
	if err := m.Stop("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Stop unknown: %v", err)
	}

	oldest, _ := m.Play("sfx")
	newest, _ := m.Play("sfx")
	if err := m.Stop("sfx"); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if m.StopVoice(oldest) {
		t.Fatal("Stop should have stopped the oldest voice")
	}
	if !m.StopVoice(newest) || m.Playing("sfx") != 0 {
		t.Fatal("StopVoice")
	}

	m.Play("sfx")
	m.Play("sfx")
	m.StopAll()
	if m.Playing("sfx") != 0 {
		t.Fatal("StopAll")
	}

	m.Play("sfx")
	m.Remove("sfx")
	out := make([]float32, 2)
	m.Mix(out)
	if out[0] != 0 {
		t.Fatal("removed clip still plays")
	}
}

func TestVoiceLimit(t *testing.T) {
	m := NewMixer()
	m.Add("tick", constClip(10, 0), Options{})
	first, _ := m.Play("tick")
	for range constant.MAX_VOICES {
		m.Play("tick")
	}
	if m.Playing("tick") != constant.MAX_VOICES {
		t.Fatalf("playing %d voices", m.Playing("tick"))
	}
	if m.StopVoice(first) {
		t.Fatal("oldest voice survived the limit")
	}
}

func TestVolume(t *testing.T) {
	table := []struct{ in, expected int }{
		{50, 50}, {-10, 0}, {150, 100}, {0, 0}, {100, 100},
	}
	m := NewMixer()
	if m.Volume() != 100 {
		t.Fatalf("default volume = %d", m.Volume())
	}
	for _, entry := range table {
		m.SetVolume(entry.in)
		if m.Volume() != entry.expected {
			t.Fatalf("SetVolume(%d) -> %d, expected %d", entry.in, m.Volume(), entry.expected)
		}
	}

	m.SetVolume(50)
	m.Add("loud", constClip(1, 0.8), Options{})
	m.Play("loud")
	m.Play("loud")
	out := make([]float32, 2)
	m.Mix(out)
	if out[0] != 0.8 {
		t.Fatalf("half volume of two voices = %v", out[0])
	}

	m.SetVolume(100)
	m.Play("loud")
	m.Play("loud")
	m.Mix(out)
	if out[0] != 1 {
		t.Fatalf("mix not clamped: %v", out[0])
	}
}

func TestDecodePCM(t *testing.T) {
	s16 := make([]byte, 4)
	binary.LittleEndian.PutUint16(s16[0:], 0x4000)
	binary.LittleEndian.PutUint16(s16[2:], uint16(0x8000))

	clip, err := DecodePCM(s16, FormatS16LE, 1)
	if err != nil {
		t.Fatalf("DecodePCM: %v", err)
	}
	expected := []float32{0.5, 0.5, -1, -1}
	if clip.Frames() != 2 {
		t.Fatalf("Frames = %d", clip.Frames())
	}
	for i, s := range clip.samples {
		if s != expected[i] {
			t.Fatalf("samples = %v, expected %v", clip.samples, expected)
		}
	}

	f32 := make([]byte, 8)
	binary.LittleEndian.PutUint32(f32[0:], math.Float32bits(0.25))
	binary.LittleEndian.PutUint32(f32[4:], math.Float32bits(-0.75))
	clip, err = DecodePCM(f32, FormatF32LE, 2)
	if err != nil {
		t.Fatalf("DecodePCM: %v", err)
	}
	if clip.Frames() != 1 || clip.samples[0] != 0.25 || clip.samples[1] != -0.75 {
		t.Fatalf("samples = %v", clip.samples)
	}
}

func TestDecodePCMErrors(t *testing.T) {
	table := []struct {
		name     string
		data     []byte
		format   Format
		channels int
	}{
		{"bad format", make([]byte, 4), Format(9), 1},
		{"three channels", make([]byte, 6), FormatS16LE, 3},
		{"partial frame", make([]byte, 3), FormatS16LE, 2},
	}
	for _, entry := range table {
		t.Run(entry.name, func(t *testing.T) {
			if _, err := DecodePCM(entry.data, entry.format, entry.channels); !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("error = %v", err)
			}
		})
	}
}
