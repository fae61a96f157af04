package core

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedLine   = errors.New("malformed line")
	ErrUnsupportedFace = errors.New("unsupported face: only triangles are supported")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrStream          = errors.New("unreadable stream")
	ErrInvalidMesh     = errors.New("invalid mesh data")
	ErrUnknownAsset    = errors.New("unknown asset")
	ErrWatcherClosed   = errors.New("asset watcher already closed")
)

// LoadError reports where a model failed to load. Line is 1-based and zero
// when the failure is not tied to a single line.
type LoadError struct {
	Line int
	Text string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("load failed: %v", e.Err)
	}
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
