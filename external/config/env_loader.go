package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/otoshin/internal/config"
	"github.com/joho/godotenv"
)

type envConfig struct {
	Env                 string   `env:"ENV" envDefault:"production"`
	DiscordAppID        int64    `env:"DISCORD_APP_ID,required"`
	DiscordClientSecret string   `env:"DISCORD_CLIENT_SECRET,required"`
	DiscordToken        string   `env:"DISCORD_TOKEN,required"`
	DownloadDir         string   `env:"DOWNLOAD_DIR" envDefault:"downloads"`
	AllowedDomains      []string `env:"ALLOWED_DOMAINS" envSeparator:"," envDefault:"youtube.com,youtu.be,tiktok.com,instagram.com"`
	MaxUploadMiB        int64    `env:"MAX_UPLOAD_MIB" envDefault:"50"`
	MaxVideoHeight      int      `env:"MAX_VIDEO_HEIGHT" envDefault:"1080"`
	AudioCodec          string   `env:"AUDIO_CODEC" envDefault:"mp3"`
	AudioBitrate        string   `env:"AUDIO_BITRATE" envDefault:"192K"`
	SessionTTLMin       int      `env:"SESSION_TTL_MIN" envDefault:"15"`
	DeliveryWebhookURL  string   `env:"DELIVERY_WEBHOOK_URL"`
}

func Load() (*internalconfig.Config, error) {
	// A missing .env is fine; real deployments inject the environment directly.
	_ = godotenv.Load()

	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                 raw.Env,
		DiscordAppID:        raw.DiscordAppID,
		DiscordClientSecret: raw.DiscordClientSecret,
		DiscordToken:        raw.DiscordToken,
		DownloadDir:         raw.DownloadDir,
		AllowedDomains:      raw.AllowedDomains,
		MaxUploadMiB:        raw.MaxUploadMiB,
		MaxVideoHeight:      raw.MaxVideoHeight,
		AudioCodec:          raw.AudioCodec,
		AudioBitrate:        raw.AudioBitrate,
		SessionTTLMin:       raw.SessionTTLMin,
		DeliveryWebhookURL:  raw.DeliveryWebhookURL,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
