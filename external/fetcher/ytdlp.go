package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	fetcherpkg "github.com/foxseedlab/otoshin/internal/fetcher"
	"github.com/google/uuid"
	"github.com/lrstanley/go-ytdlp"
)

const progressInterval = 500 * time.Millisecond

type YtdlpFetcher struct{}

func NewYtdlpFetcher() fetcherpkg.Fetcher {
	return &YtdlpFetcher{}
}

func (f *YtdlpFetcher) Fetch(ctx context.Context, req fetcherpkg.Request, sink fetcherpkg.Sink) (*fetcherpkg.Result, error) {
	outputTemplate := outputTemplateFor(req.OutputDir)
	dl := ytdlp.New().
		NoPlaylist().
		RestrictFilenames().
		ForceOverwrites().
		Output(outputTemplate)

	switch req.Kind {
	case fetcherpkg.KindAudio:
		dl.Format("bestaudio/best").
			ExtractAudio().
			AudioFormat(req.AudioCodec).
			AudioQuality(req.AudioBitrate)
	default:
		dl.Format(videoFormatSelector(req.MaxVideoHeight)).
			MergeOutputFormat("mp4")
	}

	var sequence atomic.Int64
	dl.ProgressFunc(progressInterval, func(update ytdlp.ProgressUpdate) {
		sink.OnProgress(fetcherpkg.Progress{
			Phase:    fetcherpkg.PhaseDownloading,
			Percent:  downloadPercent(int64(update.DownloadedBytes), int64(update.TotalBytes)),
			Sequence: sequence.Add(1),
		})
	})

	slog.Info("starting media fetch", "url", req.URL, "kind", req.Kind)
	res, err := dl.Run(ctx, req.URL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", fetcherpkg.ErrUnavailable, err)
	}

	info, err := res.GetExtractedInfo()
	if err != nil || len(info) == 0 || info[0].Filename == nil {
		return nil, fmt.Errorf("%w: no extracted media info", fetcherpkg.ErrUnavailable)
	}
	path := *info[0].Filename
	if req.Kind == fetcherpkg.KindAudio {
		path = audioArtifactPath(path, req.AudioCodec)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: artifact missing after download: %w", fetcherpkg.ErrUnavailable, err)
	}

	sink.OnProgress(fetcherpkg.Progress{
		Phase:    fetcherpkg.PhaseFinished,
		Percent:  100,
		Sequence: sequence.Add(1),
	})

	return &fetcherpkg.Result{
		Path:            path,
		Title:           stringValue(info[0].Title),
		Author:          stringValue(info[0].Uploader),
		DurationSeconds: int(floatValue(info[0].Duration)),
		SizeBytes:       stat.Size(),
		Width:           int(floatValue(info[0].Width)),
		Height:          int(floatValue(info[0].Height)),
	}, nil
}

func outputTemplateFor(dir string) string {
	return filepath.Join(dir, uuid.NewString()+"-%(title)s.%(ext)s")
}

func videoFormatSelector(maxHeight int) string {
	return fmt.Sprintf("bestvideo[height<=%d]+bestaudio/best[height<=%d]", maxHeight, maxHeight)
}

// The extractor reports the pre-transcode filename; the audio
// postprocessor swaps the extension for the target codec.
func audioArtifactPath(path, codec string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + codec
}

func downloadPercent(downloaded, total int64) float64 {
	if total <= 0 {
		return 0
	}
	percent := float64(downloaded) / float64(total) * 100
	if percent > 100 {
		return 100
	}
	if percent < 0 {
		return 0
	}
	return percent
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatValue(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
