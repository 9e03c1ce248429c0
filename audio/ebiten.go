//go:build ebiten && !sdl2

package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	ebitenaudio "github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"github.com/ushitora-anqou/gameform/constant"
)

// mixerReader streams a mixer as 32-bit float little-endian stereo.
type mixerReader struct {
	mixer   *Mixer
	samples []float32
}

func (r *mixerReader) Read(buf []byte) (int, error) {
	n := len(buf) / 8 * 2
	if cap(r.samples) < n {
		r.samples = make([]float32, n)
	}
	samples := r.samples[:n]
	r.mixer.Mix(samples)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(s))
	}
	return n * 4, nil
}

// NewEbitenPlayer starts playing m through ebiten's audio context, creating
// the context on first use.
func NewEbitenPlayer(m *Mixer) (*ebitenaudio.Player, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil mixer", ErrInvalidArgument)
	}
	ctx := ebitenaudio.CurrentContext()
	if ctx == nil {
		ctx = ebitenaudio.NewContext(constant.AUDIO_FREQ)
	}
	player, err := ctx.NewPlayerF32(&mixerReader{mixer: m})
	if err != nil {
		return nil, fmt.Errorf("create player: %w", err)
	}
	player.Play()
	return player, nil
}

// LoadWAV decodes a WAV file into a clip. The sample rate is not converted.
func LoadWAV(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stream, err := wav.DecodeF32(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if stream.SampleRate() != constant.AUDIO_FREQ {
		slog.Default().Warn("WAV sample rate differs from the device", "path", path, "freq", stream.SampleRate())
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return DecodePCM(data, FormatF32LE, 2)
}
