package session

import (
	"fmt"

	"github.com/foxseedlab/otoshin/internal/discord"
)

const (
	choiceIDVideo = "video"
	choiceIDAudio = "audio"

	messageRejectedURL = ":warning: **That doesn't look like a link I can download.**\n-# Send a YouTube or TikTok URL and I'll fetch it as video or audio."

	messagePromptChoice = ":clapper: **What should I grab?**"

	messageChoiceAck       = "Starting the download..."
	messageLinkExpired     = ":warning: **That link has expired.** Send the URL again."
	messageAlreadyFetching = ":hourglass: **A download is already running for your last link.**"

	messageStatusStarting = "🔄 Downloading..."
	messageProcessing     = "✅ Download finished, sending the file..."

	messageFetchFailed    = ":warning: **Download failed.** Check your link and try again."
	messageDeliveryFailed = ":warning: **The file couldn't be delivered.** Please try again later."
	messageCanceled       = ":stop_button: **Download cancelled.** A newer link replaced it."
	messageInternalError  = ":warning: **Something went wrong.** Please try again."
)

func formatChoices() []discord.Choice {
	return []discord.Choice{
		{ID: choiceIDVideo, Label: "🎥 Video"},
		{ID: choiceIDAudio, Label: "🎧 Audio"},
	}
}

func formatFromChoiceID(choiceID string) (Format, bool) {
	switch choiceID {
	case choiceIDVideo:
		return FormatVideo, true
	case choiceIDAudio:
		return FormatAudio, true
	default:
		return FormatUnselected, false
	}
}

func messageTooLarge(sizeBytes int64, limitMiB int64) string {
	return fmt.Sprintf(":warning: **The file is %.1f MiB, over the %d MiB upload limit.**", float64(sizeBytes)/(1024*1024), limitMiB)
}

func failureMessage(f *Failure, limitMiB int64) string {
	switch f.Kind {
	case FailureFetch:
		return messageFetchFailed
	case FailureTooLarge:
		return messageTooLarge(f.SizeBytes, limitMiB)
	case FailureDelivery:
		return messageDeliveryFailed
	case FailureCanceled:
		return messageCanceled
	default:
		return messageInternalError
	}
}
