package config

import (
	"fmt"
	"strings"
)

type Config struct {
	Env                 string
	DiscordAppID        int64
	DiscordClientSecret string
	DiscordToken        string
	DownloadDir         string
	AllowedDomains      []string
	MaxUploadMiB        int64
	MaxVideoHeight      int
	AudioCodec          string
	AudioBitrate        string
	SessionTTLMin       int
	DeliveryWebhookURL  string
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.DiscordAppID <= 0 {
		return fmt.Errorf("DISCORD_APP_ID must be a positive numeric identifier, got %d", c.DiscordAppID)
	}
	if c.MaxUploadMiB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MIB must be positive, got %d", c.MaxUploadMiB)
	}
	if c.MaxVideoHeight <= 0 {
		return fmt.Errorf("MAX_VIDEO_HEIGHT must be positive, got %d", c.MaxVideoHeight)
	}
	if c.SessionTTLMin <= 0 {
		return fmt.Errorf("SESSION_TTL_MIN must be positive, got %d", c.SessionTTLMin)
	}
	for _, domain := range c.AllowedDomains {
		if strings.TrimSpace(domain) == "" {
			return fmt.Errorf("ALLOWED_DOMAINS must not contain empty entries")
		}
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "DISCORD_CLIENT_SECRET", value: c.DiscordClientSecret},
		{name: "DISCORD_TOKEN", value: c.DiscordToken},
		{name: "DOWNLOAD_DIR", value: c.DownloadDir},
		{name: "AUDIO_CODEC", value: c.AudioCodec},
		{name: "AUDIO_BITRATE", value: c.AudioBitrate},
	}
}

// MaxUploadBytes is the hard attachment ceiling enforced before any delivery.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMiB * 1024 * 1024
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
