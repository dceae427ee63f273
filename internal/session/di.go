package session

import (
	"github.com/foxseedlab/otoshin/internal/config"
	"github.com/foxseedlab/otoshin/internal/discord"
	"github.com/foxseedlab/otoshin/internal/fetcher"
	"github.com/foxseedlab/otoshin/internal/webhook"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Manager, error) {
		cfg := do.MustInvoke[*config.Config](i)
		dc := do.MustInvoke[discord.Client](i)
		f := do.MustInvoke[fetcher.Fetcher](i)
		wh := do.MustInvoke[webhook.Notifier](i)
		return NewManager(cfg, dc, f, wh), nil
	})
}
