// Package decodetest builds small audio files for tests.
package decodetest

import (
	"bytes"
	"encoding/binary"
)

// Level is the sample value written by WAV, as a fraction of full scale.
const Level = 0.25

// WAV returns a 16-bit PCM wav file of the given shape holding a constant
// signal at Level.
func WAV(rate, channels, frames int) []byte {
	dataLen := frames * channels * 2

	var b bytes.Buffer
	b.WriteString("RIFF")
	le(&b, uint32(36+dataLen))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	le(&b, uint32(16))
	le(&b, uint16(1)) // PCM
	le(&b, uint16(channels))
	le(&b, uint32(rate))
	le(&b, uint32(rate*channels*2))
	le(&b, uint16(channels*2))
	le(&b, uint16(16))
	b.WriteString("data")
	le(&b, uint32(dataLen))
	for i := 0; i < frames*channels; i++ {
		le(&b, int16(Level*32768))
	}
	return b.Bytes()
}

func le(b *bytes.Buffer, v any) {
	_ = binary.Write(b, binary.LittleEndian, v)
}
