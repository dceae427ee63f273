package discord

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/bwmarrin/discordgo"
	discordpkg "github.com/foxseedlab/otoshin/internal/discord"
)

const (
	choiceCustomIDPrefix = "otoshin:choice:"

	// Discord caps message content at 2000 characters and embed-ish
	// metadata fields well below that; stay clearly inside both.
	captionMaxLen   = 1800
	metaFieldMaxLen = 256
)

type Client struct {
	session   *discordgo.Session
	token     string
	botUserID string
}

func NewClient(token string) discordpkg.Client {
	return &Client{
		token: token,
	}
}

func (c *Client) Connect(ctx context.Context) error {
	_ = ctx
	s, err := discordgo.New("Bot " + c.token)
	if err != nil {
		return err
	}
	c.session = s
	s.Identify.Intents = discordgo.MakeIntent(
		discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent)
	if err := s.Open(); err != nil {
		return err
	}
	userID, err := c.GetBotUserID()
	if err != nil {
		return err
	}
	c.botUserID = userID
	return nil
}

func (c *Client) Close() error {
	if c.session != nil {
		return c.session.Close()
	}
	return nil
}

func (c *Client) SendChannelMessage(channelID, content string) error {
	_, err := c.session.ChannelMessageSend(channelID, content)
	return err
}

func (c *Client) PromptChoice(channelID, content string, choices []discordpkg.Choice) error {
	buttons := make([]discordgo.MessageComponent, 0, len(choices))
	for _, choice := range choices {
		buttons = append(buttons, discordgo.Button{
			Label:    choice.Label,
			Style:    discordgo.PrimaryButton,
			CustomID: choiceCustomIDPrefix + choice.ID,
		})
	}
	_, err := c.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: content,
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: buttons},
		},
	})
	return err
}

func (c *Client) SendStatusMessage(channelID, content string) (discordpkg.StatusHandle, error) {
	msg, err := c.session.ChannelMessageSend(channelID, content)
	if err != nil {
		return discordpkg.StatusHandle{}, err
	}
	return discordpkg.StatusHandle{ChannelID: channelID, MessageID: msg.ID}, nil
}

func (c *Client) EditStatus(handle discordpkg.StatusHandle, content string) error {
	_, err := c.session.ChannelMessageEdit(handle.ChannelID, handle.MessageID, content)
	return err
}

func (c *Client) DeleteMessage(handle discordpkg.StatusHandle) error {
	return c.session.ChannelMessageDelete(handle.ChannelID, handle.MessageID)
}

func (c *Client) SendAudioFile(channelID string, delivery discordpkg.AudioDelivery) error {
	content := audioDeliveryContent(delivery)
	return c.sendFile(channelID, delivery.Path, "audio/mpeg", content)
}

func (c *Client) SendVideoFile(channelID string, delivery discordpkg.VideoDelivery) error {
	content := videoDeliveryContent(delivery)
	return c.sendFile(channelID, delivery.Path, "video/mp4", content)
}

func (c *Client) sendFile(channelID, path, contentType, content string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	_, err = c.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: content,
		Files: []*discordgo.File{
			{Name: attachmentName(path), ContentType: contentType, Reader: f},
		},
	})
	return err
}

func (c *Client) RegisterMessageHandler(handler func(discordpkg.MessageEvent)) {
	c.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m == nil || m.Author == nil {
			return
		}
		if m.Author.ID == c.botUserID {
			return
		}
		handler(discordpkg.MessageEvent{
			ChannelID: m.ChannelID,
			UserID:    m.Author.ID,
			UserIsBot: m.Author.Bot,
			Content:   m.Content,
		})
	})
}

func (c *Client) RegisterChoiceHandler(handler func(discordpkg.ChoiceEvent)) {
	c.session.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		if ic == nil || ic.Type != discordgo.InteractionMessageComponent {
			return
		}
		choiceID, ok := parseChoiceCustomID(ic.MessageComponentData().CustomID)
		if !ok {
			return
		}
		userID := ""
		if ic.Member != nil && ic.Member.User != nil {
			userID = ic.Member.User.ID
		}
		if userID == "" && ic.User != nil {
			userID = ic.User.ID
		}
		if userID == "" {
			return
		}
		slog.Info("choice interaction received", "channel_id", ic.ChannelID, "choice", choiceID, "user_id", userID)
		handler(discordpkg.ChoiceEvent{
			ChannelID: ic.ChannelID,
			UserID:    userID,
			ChoiceID:  choiceID,
			Respond: func(content string) error {
				return s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
					Type: discordgo.InteractionResponseChannelMessageWithSource,
					Data: &discordgo.InteractionResponseData{
						Content: content,
						Flags:   discordgo.MessageFlagsEphemeral,
					},
				})
			},
		})
	})
}

func (c *Client) GetBotUserID() (string, error) {
	if c.botUserID != "" {
		return c.botUserID, nil
	}
	if c.session == nil {
		return "", fmt.Errorf("discord session is not initialized")
	}
	if c.session.State != nil && c.session.State.User != nil && c.session.State.User.ID != "" {
		c.botUserID = c.session.State.User.ID
		return c.botUserID, nil
	}
	u, err := c.session.User("@me")
	if err != nil {
		return "", err
	}
	c.botUserID = u.ID
	return c.botUserID, nil
}

func (c *Client) Run() error {
	select {}
}

func parseChoiceCustomID(customID string) (string, bool) {
	choiceID, ok := strings.CutPrefix(customID, choiceCustomIDPrefix)
	if !ok || choiceID == "" {
		return "", false
	}
	return choiceID, true
}

func audioDeliveryContent(delivery discordpkg.AudioDelivery) string {
	title := truncateRunes(delivery.Title, metaFieldMaxLen)
	performer := truncateRunes(delivery.Performer, metaFieldMaxLen)
	line := ":headphones: **" + title + "**"
	if performer != "" {
		line += "\n" + performer
	}
	if delivery.DurationSeconds > 0 {
		line += " · " + formatDuration(delivery.DurationSeconds)
	}
	return truncateRunes(line, captionMaxLen)
}

func videoDeliveryContent(delivery discordpkg.VideoDelivery) string {
	line := ":movie_camera: **" + truncateRunes(delivery.Caption, captionMaxLen) + "**"
	if delivery.DurationSeconds > 0 {
		line += "\n" + formatDuration(delivery.DurationSeconds)
		if delivery.Width > 0 && delivery.Height > 0 {
			line += fmt.Sprintf(" · %dx%d", delivery.Width, delivery.Height)
		}
	}
	return truncateRunes(line, captionMaxLen)
}

func attachmentName(path string) string {
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

func formatDuration(seconds int) string {
	minutes := seconds / 60
	remainder := seconds % 60
	if minutes >= 60 {
		return fmt.Sprintf("%d:%02d:%02d", minutes/60, minutes%60, remainder)
	}
	return fmt.Sprintf("%d:%02d", minutes, remainder)
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
