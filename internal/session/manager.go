package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/foxseedlab/otoshin/internal/config"
	"github.com/foxseedlab/otoshin/internal/discord"
	"github.com/foxseedlab/otoshin/internal/fetcher"
	"github.com/foxseedlab/otoshin/internal/webhook"
)

const (
	editQueueDepth = 8
	notifyTimeout  = 10 * time.Second
)

type Manager struct {
	cfg       *config.Config
	store     *Store
	messenger discord.Client
	fetch     fetcher.Fetcher
	notifier  webhook.Notifier
	botUserID string
}

func NewManager(cfg *config.Config, dc discord.Client, f fetcher.Fetcher, wh webhook.Notifier) *Manager {
	return &Manager{
		cfg:       cfg,
		store:     NewStore(),
		messenger: dc,
		fetch:     f,
		notifier:  wh,
	}
}

func (m *Manager) SetBotUserID(userID string) {
	m.botUserID = userID
}

// HandleMessage is the submitURL path: validate the text as a source
// URL, create or overwrite the owner's session, and prompt for a format.
func (m *Manager) HandleMessage(event discord.MessageEvent) {
	if event.UserIsBot || event.UserID == m.botUserID {
		return
	}
	sourceURL := strings.TrimSpace(event.Content)
	if !validSourceURL(sourceURL, m.cfg.AllowedDomains) {
		slog.Info("rejected message: not an allowed url", "owner", event.UserID, "channel_id", event.ChannelID)
		_ = m.messenger.SendChannelMessage(event.ChannelID, messageRejectedURL)
		return
	}

	sess := &Session{
		Owner:     event.UserID,
		ChannelID: event.ChannelID,
		SourceURL: sourceURL,
		CreatedAt: time.Now(),
	}
	if prior := m.store.Put(sess); prior != nil {
		slog.Info("session superseded by new url", "owner", event.UserID, "prior_url", prior.SourceURL, "url", sourceURL)
	} else {
		slog.Info("session created", "owner", event.UserID, "url", sourceURL)
	}

	if err := m.messenger.PromptChoice(event.ChannelID, messagePromptChoice, formatChoices()); err != nil {
		slog.Error("failed to send format prompt", "error", err, "owner", event.UserID)
	}
}

// HandleChoice is the selectFormat path: the format is set exactly once
// and the fetch starts asynchronously; the handler never blocks on it.
func (m *Manager) HandleChoice(event discord.ChoiceEvent) {
	format, ok := formatFromChoiceID(event.ChoiceID)
	if !ok {
		return
	}
	sess, ctx, err := m.store.BeginFetch(event.UserID, format, time.Now(), m.sessionTTL())
	switch err {
	case nil:
	case ErrNoActiveSession:
		slog.Info("format chosen without active session", "owner", event.UserID)
		_ = event.Respond(messageLinkExpired)
		return
	case ErrFetchInProgress:
		slog.Info("format chosen while fetch already running", "owner", event.UserID)
		_ = event.Respond(messageAlreadyFetching)
		return
	default:
		slog.Error("failed to begin fetch", "error", err, "owner", event.UserID)
		_ = event.Respond(messageInternalError)
		return
	}
	_ = event.Respond(messageChoiceAck)

	snap := fetchSnapshot{
		owner:     sess.Owner,
		channelID: sess.ChannelID,
		sourceURL: sess.SourceURL,
		format:    format,
	}
	slog.Info("fetch starting", "owner", snap.owner, "url", snap.sourceURL, "format", format.String())
	go m.runFetch(ctx, sess, snap)
}

// fetchSnapshot is the immutable view a worker operates on; the live
// store entry may be overwritten underneath it at any time.
type fetchSnapshot struct {
	owner     string
	channelID string
	sourceURL string
	format    Format
}

func (m *Manager) runFetch(ctx context.Context, sess *Session, snap fetchSnapshot) {
	var artifactPath string
	defer func() {
		m.removeArtifact(artifactPath, snap.owner)
		m.store.Remove(snap.owner, sess)
	}()

	handle, err := m.messenger.SendStatusMessage(snap.channelID, messageStatusStarting)
	if err != nil {
		slog.Error("failed to create status message", "error", err, "owner", snap.owner)
		return
	}

	edits := make(chan string, editQueueDepth)
	pumpDone := make(chan struct{})
	go m.runEditPump(handle, edits, pumpDone)

	result, fetchErr := m.fetchWithRecover(ctx, snap, edits)
	close(edits)
	<-pumpDone
	if result != nil {
		artifactPath = result.Path
	}

	if fetchErr == nil && result.SizeBytes > m.cfg.MaxUploadBytes() {
		fetchErr = &Failure{Kind: FailureTooLarge, SizeBytes: result.SizeBytes}
	}
	if fetchErr == nil {
		fetchErr = m.deliver(snap, result)
	}

	if fetchErr != nil {
		failure := classifyFailure(fetchErr)
		slog.Error("download session failed", "owner", snap.owner, "url", snap.sourceURL, "failure", failure.Kind.String(), "error", fetchErr)
		if err := m.messenger.EditStatus(handle, failureMessage(failure, m.cfg.MaxUploadMiB)); err != nil {
			slog.Warn("failed to report failure on status message", "error", err, "owner", snap.owner)
		}
		m.notify(snap, result, failure.Kind.String())
		return
	}

	if err := m.messenger.DeleteMessage(handle); err != nil {
		slog.Warn("failed to delete status message", "error", err, "owner", snap.owner)
	}
	slog.Info("artifact delivered", "owner", snap.owner, "url", snap.sourceURL, "size_bytes", result.SizeBytes)
	m.notify(snap, result, "delivered")
}

// fetchWithRecover invokes the fetch adapter, converting panics into the
// internal-error path so cleanup and user reporting still run.
func (m *Manager) fetchWithRecover(ctx context.Context, snap fetchSnapshot, edits chan<- string) (result *fetcher.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("fetch worker panicked", "owner", snap.owner, "panic", r)
			result = nil
			err = &Failure{Kind: FailureInternal, Err: fmt.Errorf("fetch worker panic: %v", r)}
		}
	}()
	relay := &progressRelay{
		throttler: newProgressThrottler(editMinInterval),
		edits:     edits,
	}
	return m.fetch.Fetch(ctx, fetcher.Request{
		URL:            snap.sourceURL,
		Kind:           snap.format.fetchKind(),
		OutputDir:      m.cfg.DownloadDir,
		MaxVideoHeight: m.cfg.MaxVideoHeight,
		AudioCodec:     m.cfg.AudioCodec,
		AudioBitrate:   m.cfg.AudioBitrate,
	}, relay)
}

// runEditPump applies queued status renders one at a time so edits are
// never reordered for a session. Edit failures are logged and swallowed;
// they must never abort the download.
func (m *Manager) runEditPump(handle discord.StatusHandle, edits <-chan string, done chan<- struct{}) {
	defer close(done)
	for content := range edits {
		if err := m.messenger.EditStatus(handle, content); err != nil {
			slog.Warn("progress edit failed", "error", err, "message_id", handle.MessageID)
		}
	}
}

// progressRelay threads adapter progress through the throttler into the
// session's edit queue.
type progressRelay struct {
	mu        sync.Mutex
	throttler *progressThrottler
	edits     chan<- string
}

func (r *progressRelay) OnProgress(p fetcher.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	render, ok := r.throttler.Render(p)
	if !ok {
		return
	}
	if p.Phase == fetcher.PhaseFinished {
		r.edits <- render
		return
	}
	select {
	case r.edits <- render:
	default:
		// A full queue means edits are already backed up; dropping a
		// throttled intermediate render is harmless.
	}
}

func (m *Manager) deliver(snap fetchSnapshot, result *fetcher.Result) error {
	var err error
	if snap.format == FormatAudio {
		err = m.messenger.SendAudioFile(snap.channelID, discord.AudioDelivery{
			Path:            result.Path,
			Title:           result.Title,
			Performer:       result.Author,
			DurationSeconds: result.DurationSeconds,
		})
	} else {
		err = m.messenger.SendVideoFile(snap.channelID, discord.VideoDelivery{
			Path:            result.Path,
			Caption:         result.Title,
			DurationSeconds: result.DurationSeconds,
			Width:           result.Width,
			Height:          result.Height,
		})
	}
	if err != nil {
		return &Failure{Kind: FailureDelivery, Err: err}
	}
	return nil
}

func (m *Manager) notify(snap fetchSnapshot, result *fetcher.Result, outcome string) {
	event := webhook.DeliveryEvent{
		Owner:     snap.owner,
		SourceURL: snap.sourceURL,
		Format:    snap.format.String(),
		Outcome:   outcome,
	}
	if result != nil {
		event.Title = result.Title
		event.SizeBytes = result.SizeBytes
		event.DurationSeconds = result.DurationSeconds
	}
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := m.notifier.NotifyDelivery(ctx, event); err != nil {
		slog.Warn("delivery webhook failed", "error", err, "owner", snap.owner)
	}
}

func (m *Manager) removeArtifact(path, owner string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove artifact", "error", err, "path", path, "owner", owner)
	}
}

func (m *Manager) sessionTTL() time.Duration {
	return time.Duration(m.cfg.SessionTTLMin) * time.Minute
}

func validSourceURL(raw string, allowedDomains []string) bool {
	if raw == "" || strings.ContainsAny(raw, " \n\t") {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	if len(allowedDomains) == 0 {
		return true
	}
	host = strings.TrimPrefix(host, "www.")
	for _, domain := range allowedDomains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
