package session

import (
	"context"
	"sync"
	"time"

	"github.com/foxseedlab/otoshin/internal/fetcher"
)

type Format int

const (
	FormatUnselected Format = iota
	FormatVideo
	FormatAudio
)

func (f Format) String() string {
	switch f {
	case FormatVideo:
		return "video"
	case FormatAudio:
		return "audio"
	default:
		return "unselected"
	}
}

func (f Format) fetchKind() fetcher.Kind {
	if f == FormatAudio {
		return fetcher.KindAudio
	}
	return fetcher.KindVideo
}

// Session tracks one user's submitted URL through a single download
// lifecycle. The cancel func is armed when the fetch starts and fired
// when a newer URL supersedes this record.
type Session struct {
	Owner     string
	ChannelID string
	SourceURL string
	Format    Format
	CreatedAt time.Time

	cancel context.CancelFunc
}

// Store maps owners to their in-flight session. Process-lifetime only;
// every access is a locked read-modify-write so a format selection and a
// new-URL submission racing for the same owner cannot lose updates.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Put creates or overwrites the owner's session. A replaced session's
// in-flight fetch, if any, is cancelled; the replaced record is returned
// for logging.
func (s *Store) Put(sess *Session) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	prior := s.sessions[sess.Owner]
	if prior != nil && prior.cancel != nil {
		prior.cancel()
	}
	s.sessions[sess.Owner] = sess
	return prior
}

func (s *Store) Get(owner string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[owner]
}

// BeginFetch atomically marks the owner's session as fetching: the
// format is set exactly once and the returned context governs the fetch.
// Missing or stale sessions yield ErrNoActiveSession (stale entries are
// evicted); a session already fetching yields ErrFetchInProgress.
func (s *Store) BeginFetch(owner string, format Format, now time.Time, ttl time.Duration) (*Session, context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[owner]
	if !ok {
		return nil, nil, ErrNoActiveSession
	}
	if now.Sub(sess.CreatedAt) > ttl {
		delete(s.sessions, owner)
		return nil, nil, ErrNoActiveSession
	}
	if sess.Format != FormatUnselected {
		return nil, nil, ErrFetchInProgress
	}
	sess.Format = format
	ctx, cancel := context.WithCancel(context.Background())
	sess.cancel = cancel
	return sess, ctx, nil
}

// Remove deletes the owner's entry only when it is still the given
// record, so a superseded worker never deletes its successor's session.
func (s *Store) Remove(owner string, sess *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.sessions[owner]; ok && current == sess {
		delete(s.sessions, owner)
		return true
	}
	return false
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
