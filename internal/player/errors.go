package player

import (
	"errors"
	"fmt"
)

// Kind tells device, decode and I/O failures apart for local diagnostics.
type Kind string

const (
	KindDevice Kind = "device"
	KindDecode Kind = "decode"
	KindIO     Kind = "io"
)

// ErrUnsupportedFormat is wrapped when the file content is not a known audio format.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// PlaybackError wraps a failure with the operation, its kind and the file involved.
type PlaybackError struct {
	Op   string
	Kind Kind
	Path string
	Err  error
}

// Errorf builds a PlaybackError from a format string.
func Errorf(op string, kind Kind, path string, format string, args ...any) *PlaybackError {
	return &PlaybackError{Op: op, Kind: kind, Path: path, Err: fmt.Errorf(format, args...)}
}

func (e *PlaybackError) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *PlaybackError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether err carries a PlaybackError of the given kind.
func IsKind(err error, kind Kind) bool {
	var pe *PlaybackError
	if errors.As(err, &pe) {
		return pe.Kind == kind
	}
	return false
}

// KindOf returns the kind of the first PlaybackError in err's chain, or "".
func KindOf(err error) Kind {
	var pe *PlaybackError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
