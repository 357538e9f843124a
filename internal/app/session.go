package app

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"study-aid-service/internal/domain"
)

// SessionState is the generation status of a session, orthogonal to its view.
type SessionState string

const (
	StateUpload     SessionState = "upload"
	StateLoaded     SessionState = "loaded"
	StateGenerating SessionState = "generating"
	StateReady      SessionState = "ready"
	StateError      SessionState = "error"
)

// Snapshot is the render-facing view of a session.
type Snapshot struct {
	SessionID   string                `json:"sessionId"`
	Owner       string                `json:"owner"`
	State       SessionState          `json:"state"`
	CurrentView domain.View           `json:"currentView"`
	HasDocument bool                  `json:"hasDocument"`
	StudySet    *domain.StudySet      `json:"activeStudySet,omitempty"`
	Kind        domain.GenerationKind `json:"activeGenerationKind,omitempty"`
	Content     *domain.Content       `json:"content,omitempty"`
	IsLoading   bool                  `json:"isLoading"`
	LastError   string                `json:"lastError,omitempty"`
}

// Session tracks one user's study flow. It is not persisted.
type Session struct {
	id        string
	owner     string
	createdAt time.Time
	now       func() time.Time

	mu           sync.RWMutex
	view         domain.View
	documentText string
	hasDocument  bool
	active       *domain.StudySet
	kind         domain.GenerationKind
	content      *domain.Content
	loading      bool
	lastError    string
	// epoch changes whenever the active document is replaced or cleared, so
	// a generation that settles afterwards is dropped.
	epoch       uint64
	subscribers map[chan Snapshot]struct{}

	// persistMu orders reconciliation writes for this session.
	persistMu sync.Mutex

	// lastSeen is the unix nano time of the last lookup or transition.
	lastSeen atomic.Int64
}

// generationTicket identifies one in-flight generation.
type generationTicket struct {
	epoch uint64
	setID string
	kind  domain.GenerationKind
}

// NewSession creates a session on the upload view. now is the clock used
// for study set timestamps and idle tracking.
func NewSession(id, owner string, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	s := &Session{
		id:          id,
		owner:       owner,
		createdAt:   now(),
		now:         now,
		view:        domain.ViewUpload,
		subscribers: make(map[chan Snapshot]struct{}),
	}
	s.lastSeen.Store(s.createdAt.UnixNano())
	return s
}

func (s *Session) ID() string    { return s.id }
func (s *Session) Owner() string { return s.owner }

func newStudySetID(now time.Time) string {
	return fmt.Sprintf("set-%d-%s", now.UnixMilli(), strings.SplitN(uuid.NewString(), "-", 2)[0])
}

func (s *Session) submitDocument(text, fileName string) (Snapshot, error) {
	if strings.TrimSpace(text) == "" {
		return s.Snapshot(), domain.ErrEmptyDocument
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.documentText = text
	s.hasDocument = true
	s.active = &domain.StudySet{
		ID:        newStudySetID(now),
		FileName:  fileName,
		CreatedAt: now,
	}
	s.view = domain.ViewGeneration
	s.epoch++
	s.resetGenerationLocked()
	return s.broadcastLocked(), nil
}

// beginGeneration moves the session into the generating state. It reports
// started=false without error when no document is loaded.
func (s *Session) beginGeneration(kind domain.GenerationKind) (string, generationTicket, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasDocument || s.active == nil {
		return "", generationTicket{}, false, nil
	}
	if s.loading {
		return "", generationTicket{}, false, domain.ErrGenerationInProgress
	}

	s.loading = true
	s.kind = kind
	s.content = nil
	s.lastError = ""
	s.broadcastLocked()
	return s.documentText, generationTicket{epoch: s.epoch, setID: s.active.ID, kind: kind}, true, nil
}

// applyGeneration merges content into the active study set. It returns false
// when the document changed while the generator was running.
func (s *Session) applyGeneration(t generationTicket, content domain.Content) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.currentLocked(t) {
		return false
	}
	s.active.Apply(content)
	c := content
	s.content = &c
	return true
}

// endGeneration leaves the generating state, recording failure if err is set.
func (s *Session) endGeneration(t generationTicket, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.currentLocked(t) {
		return
	}
	s.loading = false
	if err != nil {
		s.lastError = domain.GenerationErrorMessage
		s.content = nil
	}
	s.broadcastLocked()
}

func (s *Session) currentLocked(t generationTicket) bool {
	return s.epoch == t.epoch && s.active != nil && s.active.ID == t.setID
}

// completeQuiz records a finished quiz run. ok is false when no study set is active.
func (s *Session) completeQuiz(score int) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return "", false, nil
	}
	if len(s.active.Quiz) == 0 || score < 0 || score > len(s.active.Quiz) {
		return "", false, domain.ErrInvalidScore
	}
	sc := score
	s.active.QuizScore = &sc
	s.broadcastLocked()
	return s.active.ID, true, nil
}

func (s *Session) activeQuiz() []domain.QuizQuestion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return nil
	}
	return s.active.Clone().Quiz
}

// activeSet returns a copy of the active study set if its id matches.
func (s *Session) activeSet(id string) (domain.StudySet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil || s.active.ID != id {
		return domain.StudySet{}, false
	}
	return s.active.Clone(), true
}

func (s *Session) startNewDocument() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documentText = ""
	s.hasDocument = false
	s.active = nil
	s.view = domain.ViewUpload
	s.epoch++
	s.resetGenerationLocked()
	return s.broadcastLocked()
}

func (s *Session) navigate(view domain.View) (Snapshot, error) {
	if !view.Valid() {
		return s.Snapshot(), domain.ErrUnknownView
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = view
	return s.broadcastLocked(), nil
}

func (s *Session) resetGenerationLocked() {
	s.kind = ""
	s.content = nil
	s.loading = false
	s.lastError = ""
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Session) touch() {
	s.lastSeen.Store(s.now().UnixNano())
}

// Expired reports whether the session has gone unused for at least ttl with
// nobody subscribed and no generation running.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	s.mu.RLock()
	busy := len(s.subscribers) > 0 || s.loading
	s.mu.RUnlock()
	if busy {
		return false
	}
	return now.Sub(time.Unix(0, s.lastSeen.Load())) >= ttl
}

// IsIdle reports whether nobody is watching the session and no document is loaded.
func (s *Session) IsIdle() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers) == 0 && !s.hasDocument && !s.loading
}

func (s *Session) subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() Snapshot {
	s.lastSeen.Store(s.now().UnixNano())
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// slow subscriber: drop the oldest snapshot
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID:   s.id,
		Owner:       s.owner,
		CurrentView: s.view,
		HasDocument: s.hasDocument,
		Kind:        s.kind,
		IsLoading:   s.loading,
		LastError:   s.lastError,
	}
	if s.active != nil {
		set := s.active.Clone()
		snap.StudySet = &set
	}
	if s.content != nil {
		c := *s.content
		snap.Content = &c
	}

	switch {
	case !s.hasDocument:
		snap.State = StateUpload
	case s.loading:
		snap.State = StateGenerating
	case s.lastError != "":
		snap.State = StateError
	case s.content != nil:
		snap.State = StateReady
	default:
		snap.State = StateLoaded
	}
	return snap
}
