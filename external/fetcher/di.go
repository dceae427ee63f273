package fetcher

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/foxseedlab/otoshin/internal/config"
	fetcherpkg "github.com/foxseedlab/otoshin/internal/fetcher"
	"github.com/lrstanley/go-ytdlp"
	"github.com/samber/do/v2"
)

const (
	downloadDirPermissions = 0o755
	installTimeout         = 2 * time.Minute
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (fetcherpkg.Fetcher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if err := os.MkdirAll(cfg.DownloadDir, downloadDirPermissions); err != nil {
			return nil, fmt.Errorf("failed to create download directory %q: %w", cfg.DownloadDir, err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), installTimeout)
		defer cancel()
		if _, err := ytdlp.Install(ctx, nil); err != nil {
			return nil, fmt.Errorf("failed to provision yt-dlp binary: %w", err)
		}
		return NewYtdlpFetcher(), nil
	})
}
