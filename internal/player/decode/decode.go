// Package decode opens audio files by sniffing their content rather than
// trusting the file extension.
package decode

import (
	"fmt"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"sound-server/internal/player"
)

// Codec names a supported container/codec.
type Codec string

const (
	CodecWAV    Codec = "wav"
	CodecMP3    Codec = "mp3"
	CodecFLAC   Codec = "flac"
	CodecVorbis Codec = "vorbis"
)

// Stream is a decoded audio source. Closing it closes the underlying file.
type Stream struct {
	beep.StreamSeekCloser
	Format beep.Format
	Codec  Codec
}

// Sniff detects the codec of the content in r.
func Sniff(r io.Reader) (Codec, error) {
	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return "", err
	}
	for m := mt; m != nil; m = m.Parent() {
		switch {
		case m.Is("audio/wav"):
			return CodecWAV, nil
		case m.Is("audio/mpeg"):
			return CodecMP3, nil
		case m.Is("audio/flac"):
			return CodecFLAC, nil
		case m.Is("audio/ogg"), m.Is("application/ogg"):
			return CodecVorbis, nil
		}
	}
	return "", fmt.Errorf("%w: %s", player.ErrUnsupportedFormat, mt.String())
}

// Open opens path, sniffs its format and returns a decoder positioned at the
// first sample. On error nothing is left open.
func Open(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &player.PlaybackError{Op: "open", Kind: player.KindIO, Path: path, Err: err}
	}

	codec, err := Sniff(f)
	if err != nil {
		f.Close()
		return nil, &player.PlaybackError{Op: "sniff", Kind: player.KindDecode, Path: path, Err: err}
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, &player.PlaybackError{Op: "seek", Kind: player.KindIO, Path: path, Err: err}
	}

	s, format, err := decode(codec, f)
	if err != nil {
		f.Close()
		return nil, &player.PlaybackError{Op: "decode " + string(codec), Kind: player.KindDecode, Path: path, Err: err}
	}
	return &Stream{StreamSeekCloser: s, Format: format, Codec: codec}, nil
}

func decode(codec Codec, f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	switch codec {
	case CodecWAV:
		return wav.Decode(f)
	case CodecMP3:
		return mp3.Decode(f)
	case CodecFLAC:
		return flac.Decode(f)
	case CodecVorbis:
		return vorbis.Decode(f)
	}
	return nil, beep.Format{}, fmt.Errorf("%w: %s", player.ErrUnsupportedFormat, codec)
}

// Resampled returns s converted to the given sample rate. Streams that already
// match are returned unchanged.
func Resampled(s *Stream, rate beep.SampleRate) beep.Streamer {
	if s.Format.SampleRate == rate {
		return s
	}
	return beep.Resample(4, s.Format.SampleRate, rate, s)
}
