// Package extract turns a multichannel time-series segment into a
// fixed-length feature vector by pooling over sliding windows.
//
// Windows start at 0, stride, 2*stride, ... and only full windows are
// emitted: a trailing remainder shorter than the window is dropped. When
// WindowSpec.Length is set, the segment is first truncated or zero-padded to
// exactly Length time steps, so every segment yields the same feature length.
package extract

import (
	"errors"
	"fmt"

	"github.com/go-sod/b2t/pkg/math/vector"
)

var (
	ErrInvalidWindowSpec = errors.New("invalid window spec")
	ErrEmptySegment      = errors.New("empty segment")
	ErrUnknownMethod     = errors.New("unknown pooling method")
	ErrShortSegment      = errors.New("segment shorter than one window")
	ErrRaggedSegment     = errors.New("segment rows have different channel counts")
)

// WindowSpec is the sliding window configuration. Gaps between windows
// (Stride > Window) are permitted.
type WindowSpec struct {
	Window int
	Stride int
	// Length is the canonical segment duration in time steps; 0 keeps the
	// native duration.
	Length int
}

func (s WindowSpec) Validate() error {
	if s.Window <= 0 || s.Stride <= 0 {
		return fmt.Errorf("%w: window=%d stride=%d, both must be > 0", ErrInvalidWindowSpec, s.Window, s.Stride)
	}
	if s.Length < 0 {
		return fmt.Errorf("%w: length=%d must be >= 0", ErrInvalidWindowSpec, s.Length)
	}
	return nil
}

// steps returns the number of time steps windowing will see for a segment of
// native length l.
func (s WindowSpec) steps(l int) int {
	if s.Length > 0 {
		return s.Length
	}
	return l
}

// NumWindows returns how many full windows fit a segment of native length l.
func (s WindowSpec) NumWindows(l int) int {
	n := s.steps(l)
	if s.Window <= 0 || s.Stride <= 0 || n < s.Window {
		return 0
	}
	return (n-s.Window)/s.Stride + 1
}

// FeatureLen returns the feature vector length for a segment of native length
// l with the given channel count. It is the same for every pooling method.
func (s WindowSpec) FeatureLen(l, channels int) int {
	return s.NumWindows(l) * channels
}

// Extract pools data (time_steps x channels) window by window and
// concatenates the per-window vectors in temporal order.
func Extract(data [][]float64, spec WindowSpec, method Method) (vector.V, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	reduce, err := reducerFor(method)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: zero time steps", ErrEmptySegment)
	}
	channels := len(data[0])
	if channels == 0 {
		return nil, fmt.Errorf("%w: zero channels", ErrEmptySegment)
	}
	for i := range data {
		if len(data[i]) != channels {
			return nil, fmt.Errorf("%w: row %d has %d channels, expected %d", ErrRaggedSegment, i, len(data[i]), channels)
		}
	}

	windows := spec.NumWindows(len(data))
	if windows == 0 {
		return nil, fmt.Errorf("%w: %d steps, window %d", ErrShortSegment, spec.steps(len(data)), spec.Window)
	}

	out := make(vector.V, 0, windows*channels)
	col := make(vector.V, spec.Window)
	for w := 0; w < windows; w++ {
		start := w * spec.Stride
		for ch := 0; ch < channels; ch++ {
			for t := 0; t < spec.Window; t++ {
				col[t] = sample(data, start+t, ch)
			}
			v, err := reduce(col)
			if err != nil {
				return nil, fmt.Errorf("reduce window %d channel %d: %w", w, ch, err)
			}
			out = append(out, v)
		}
	}
	return out, nil
}

// sample reads data[t][ch], returning the zero pad past the native end.
func sample(data [][]float64, t, ch int) float64 {
	if t >= len(data) {
		return 0
	}
	return data[t][ch]
}
