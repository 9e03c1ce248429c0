package audio

import (
	"encoding/binary"
	"fmt"
	"math"
)

type Format int

const (
	FormatS16LE Format = iota
	FormatF32LE
)

func (f Format) sampleSize() int {
	switch f {
	case FormatS16LE:
		return 2
	case FormatF32LE:
		return 4
	}
	return 0
}

// DecodePCM converts raw little-endian PCM into a stereo clip. Mono input is
// duplicated into both channels.
func DecodePCM(data []byte, format Format, channels int) (*Clip, error) {
	size := format.sampleSize()
	if size == 0 {
		return nil, fmt.Errorf("%w: unsupported sample format %d", ErrInvalidArgument, format)
	}
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("%w: unsupported channel count %d", ErrInvalidArgument, channels)
	}
	frameSize := size * channels
	if len(data)%frameSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of %d-byte frames", ErrInvalidArgument, len(data), frameSize)
	}

	frames := len(data) / frameSize
	samples := make([]float32, 0, frames*2)
	for off := 0; off < len(data); off += size {
		var s float32
		switch format {
		case FormatS16LE:
			s = float32(int16(binary.LittleEndian.Uint16(data[off:]))) / 0x8000
		case FormatF32LE:
			s = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
		}
		samples = append(samples, s)
		if channels == 1 {
			samples = append(samples, s)
		}
	}
	return NewClip(samples), nil
}
