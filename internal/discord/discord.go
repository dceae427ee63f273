package discord

import "context"

// MessageEvent is an inbound free-text message from a user.
type MessageEvent struct {
	ChannelID string
	UserID    string
	UserIsBot bool
	Content   string
}

// Choice is one selectable option attached to a prompt.
type Choice struct {
	ID    string
	Label string
}

// ChoiceEvent is a button press on a previously sent prompt. Respond
// answers the interaction with a short ephemeral message.
type ChoiceEvent struct {
	ChannelID string
	UserID    string
	ChoiceID  string
	Respond   func(content string) error
}

// StatusHandle references the status message a session edits in place.
type StatusHandle struct {
	ChannelID string
	MessageID string
}

type AudioDelivery struct {
	Path            string
	Title           string
	Performer       string
	DurationSeconds int
}

type VideoDelivery struct {
	Path            string
	Caption         string
	DurationSeconds int
	Width           int
	Height          int
}

type Client interface {
	Connect(ctx context.Context) error
	Close() error
	SendChannelMessage(channelID, content string) error
	PromptChoice(channelID, content string, choices []Choice) error
	SendStatusMessage(channelID, content string) (StatusHandle, error)
	EditStatus(handle StatusHandle, content string) error
	DeleteMessage(handle StatusHandle) error
	SendAudioFile(channelID string, delivery AudioDelivery) error
	SendVideoFile(channelID string, delivery VideoDelivery) error
	RegisterMessageHandler(handler func(MessageEvent))
	RegisterChoiceHandler(handler func(ChoiceEvent))
	GetBotUserID() (string, error)
	Run() error
}
