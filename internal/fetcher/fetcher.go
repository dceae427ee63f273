package fetcher

import (
	"context"
	"errors"
)

// ErrUnavailable marks extraction or transcode failures coming from the
// media tool, as opposed to unexpected internal faults.
var ErrUnavailable = errors.New("media fetch failed")

type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

type Phase int

const (
	PhaseDownloading Phase = iota
	PhaseFinished
)

// Progress is a transient snapshot of an in-flight fetch. Sequence is
// monotonic per invocation; consumers drop anything arriving out of order.
type Progress struct {
	Phase    Phase
	Percent  float64
	Sequence int64
}

// Sink receives progress events at the adapter's own cadence. A terminal
// PhaseFinished event is always delivered before Fetch returns success.
type Sink interface {
	OnProgress(p Progress)
}

type Request struct {
	URL            string
	Kind           Kind
	OutputDir      string
	MaxVideoHeight int
	AudioCodec     string
	AudioBitrate   string
}

type Result struct {
	Path            string
	Title           string
	Author          string
	DurationSeconds int
	SizeBytes       int64
	Width           int
	Height          int
}

type Fetcher interface {
	Fetch(ctx context.Context, req Request, sink Sink) (*Result, error)
}
