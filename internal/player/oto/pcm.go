package oto

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/gopxl/beep/v2"
)

// pcmReader renders a beep streamer as interleaved little-endian float32
// frames with one or two channels.
type pcmReader struct {
	src      beep.Streamer
	channels int
	buf      [][2]float64
	done     bool
}

func newPCMReader(src beep.Streamer, channels int) *pcmReader {
	return &pcmReader{src: src, channels: channels}
}

func (r *pcmReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}

	frameSize := 4 * r.channels
	frames := len(p) / frameSize
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buf) < frames {
		r.buf = make([][2]float64, frames)
	}
	buf := r.buf[:frames]

	n, ok := r.src.Stream(buf)
	if !ok {
		r.done = true
		if n == 0 {
			return 0, io.EOF
		}
	}

	off := 0
	for _, s := range buf[:n] {
		if r.channels == 1 {
			putSample(p[off:], (s[0]+s[1])/2)
			off += 4
			continue
		}
		putSample(p[off:], s[0])
		putSample(p[off+4:], s[1])
		off += 8
	}
	return off, nil
}

// Err reports a decode error from the source, if any.
func (r *pcmReader) Err() error {
	return r.src.Err()
}

func putSample(b []byte, v float64) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
}
