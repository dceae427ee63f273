package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/foxseedlab/otoshin/internal/fetcher"
	"golang.org/x/time/rate"
)

const (
	editMinInterval  = 2 * time.Second
	progressBarCells = 20
)

// progressThrottler converts the raw progress stream into a bounded,
// deduplicated sequence of status renders. Not safe for concurrent use;
// callers serialize access.
type progressThrottler struct {
	limiter    *rate.Limiter
	lastSeq    int64
	lastRender string
	emitted    bool
}

func newProgressThrottler(minInterval time.Duration) *progressThrottler {
	return &progressThrottler{
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
	}
}

// Render returns the status text for p and whether it should be emitted.
// Out-of-order events are dropped, the first and every Finished event
// always emit, duplicates and events inside the throttle window do not.
func (t *progressThrottler) Render(p fetcher.Progress) (string, bool) {
	if p.Sequence <= t.lastSeq {
		return "", false
	}
	t.lastSeq = p.Sequence

	if p.Phase == fetcher.PhaseFinished {
		t.emitted = true
		t.lastRender = messageProcessing
		return messageProcessing, true
	}

	render := renderDownloading(p.Percent)
	if t.emitted {
		if render == t.lastRender {
			return "", false
		}
		if !t.limiter.Allow() {
			return "", false
		}
	} else {
		// First event emits unconditionally but still consumes a token
		// so the throttle window starts now.
		_ = t.limiter.Allow()
	}
	t.emitted = true
	t.lastRender = render
	return render, true
}

func renderDownloading(percent float64) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	// Bar fill moves in 5% steps; the numeric percent keeps one decimal.
	filled := int(percent) / 5
	if filled > progressBarCells {
		filled = progressBarCells
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", progressBarCells-filled)
	return fmt.Sprintf("🔄 Downloading... [%s] %.1f%%", bar, percent)
}
