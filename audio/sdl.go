//go:build sdl2

package audio

// typedef unsigned char Uint8;
// void OnMixerPlayback(void *userdata, Uint8 *stream, int len);
import "C"
import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/mattn/go-pointer"
	"github.com/ushitora-anqou/gameform/constant"
	"github.com/veandco/go-sdl2/sdl"
)

// Device plays a mixer through an SDL audio device. SDL must be initialized
// with sdl.INIT_AUDIO.
type Device struct {
	id       sdl.AudioDeviceID
	userdata unsafe.Pointer
}

func OpenDevice(m *Mixer) (*Device, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil mixer", ErrInvalidArgument)
	}
	userdata := pointer.Save(m)
	id, err := sdl.OpenAudioDevice(
		"",
		false,
		&sdl.AudioSpec{
			Freq:     constant.AUDIO_FREQ,
			Format:   sdl.AUDIO_F32,
			Channels: constant.CHANNELS,
			Samples:  constant.AUDIO_SAMPLES,
			Callback: sdl.AudioCallback(C.OnMixerPlayback),
			UserData: userdata,
		},
		nil,
		0,
	)
	if err != nil {
		pointer.Unref(userdata)
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	sdl.PauseAudioDevice(id, false)
	return &Device{id: id, userdata: userdata}, nil
}

func (d *Device) Close() {
	sdl.CloseAudioDevice(d.id)
	pointer.Unref(d.userdata)
}

//export OnMixerPlayback
func OnMixerPlayback(userdata unsafe.Pointer, stream *C.Uint8, length C.int) {
	buf := unsafe.Slice((*float32)(unsafe.Pointer(stream)), int(length)/4)
	pointer.Restore(userdata).(*Mixer).Mix(buf)
}

// LoadWAV reads a 16-bit or float WAV file. The sample rate is not converted.
func LoadWAV(path string) (*Clip, error) {
	data, spec := sdl.LoadWAV(path)
	if spec == nil {
		return nil, fmt.Errorf("load %s: %w", path, sdl.GetError())
	}
	defer sdl.FreeWAV(data)

	var format Format
	switch spec.Format {
	case sdl.AUDIO_S16LSB:
		format = FormatS16LE
	case sdl.AUDIO_F32LSB:
		format = FormatF32LE
	default:
		return nil, fmt.Errorf("%w: %s has unsupported sample format %#x", ErrInvalidArgument, path, spec.Format)
	}
	if spec.Freq != constant.AUDIO_FREQ {
		slog.Default().Warn("WAV sample rate differs from the device", "path", path, "freq", spec.Freq)
	}
	return DecodePCM(data, format, int(spec.Channels))
}
