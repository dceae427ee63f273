package webhook

import "context"

// DeliveryEvent describes one terminal download session.
type DeliveryEvent struct {
	Owner           string `json:"owner"`
	SourceURL       string `json:"source_url"`
	Format          string `json:"format"`
	Outcome         string `json:"outcome"`
	Title           string `json:"title,omitempty"`
	SizeBytes       int64  `json:"size_bytes,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
}

type Notifier interface {
	NotifyDelivery(ctx context.Context, event DeliveryEvent) error
}
