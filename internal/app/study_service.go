package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"study-aid-service/internal/domain"
)

// SessionRepository abstracts where live sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Add(session *Session)
	Get(sessionID string) (*Session, bool)
	DeleteIfIdle(sessionID string)
	// EvictExpired drops sessions unused for ttl and reports how many went.
	EvictExpired(now time.Time, ttl time.Duration) int
}

// DefaultSessionIdleTTL bounds how long an unwatched session is kept.
const DefaultSessionIdleTTL = 30 * time.Minute

// TextExtractor turns an uploaded document into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, fileName string, data []byte) (string, error)
}

// ContentGenerator produces study content of one kind from document text.
// count is only meaningful for counted kinds.
type ContentGenerator interface {
	Generate(ctx context.Context, kind domain.GenerationKind, text string, count int) (domain.Content, error)
}

// StudySetStore is the committed collection of study sets per owner.
type StudySetStore interface {
	LoadAll(ctx context.Context, owner string) ([]domain.StudySet, error)
	Upsert(ctx context.Context, owner string, set domain.StudySet) ([]domain.StudySet, error)
}

// PreferenceStore keeps per-owner UI preferences.
type PreferenceStore interface {
	Theme(ctx context.Context, owner string) (domain.Theme, error)
	SetTheme(ctx context.Context, owner string, theme domain.Theme) error
	ToggleTheme(ctx context.Context, owner string) (domain.Theme, error)
	GenerationCount(ctx context.Context, owner string) (int, error)
	SetGenerationCount(ctx context.Context, owner string, n int) (int, error)
}

// Preferences is the persisted preference pair for one owner.
type Preferences struct {
	Theme           domain.Theme `json:"theme"`
	GenerationCount int          `json:"generationCount"`
}

// StudyService contains the study flow use cases.
type StudyService struct {
	sessions  SessionRepository
	extractor TextExtractor
	generator ContentGenerator
	sets      StudySetStore
	prefs     PreferenceStore
	log       *zap.Logger
	now       func() time.Time
}

func NewStudyService(sessions SessionRepository, extractor TextExtractor, generator ContentGenerator, sets StudySetStore, prefs PreferenceStore, log *zap.Logger) *StudyService {
	if log == nil {
		log = zap.NewNop()
	}
	return &StudyService{
		sessions:  sessions,
		extractor: extractor,
		generator: generator,
		sets:      sets,
		prefs:     prefs,
		log:       log,
		now:       time.Now,
	}
}

// CreateSession starts a new session on the upload view.
func (s *StudyService) CreateSession(_ context.Context, owner string) Snapshot {
	session := NewSession(uuid.NewString(), owner, s.now)
	s.sessions.Add(session)
	return session.Snapshot()
}

func (s *StudyService) session(sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	session.touch()
	return session, nil
}

// Snapshot returns the current state of a session.
func (s *StudyService) Snapshot(_ context.Context, sessionID string) (Snapshot, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	return session.Snapshot(), nil
}

// SubmitFile ingests an uploaded document. Rejected or failed uploads leave
// the session untouched so another file can be chosen.
func (s *StudyService) SubmitFile(ctx context.Context, sessionID, fileName string, data []byte) (Snapshot, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	if _, err := domain.UploadExtension(fileName); err != nil {
		return session.Snapshot(), err
	}

	text, err := s.extractor.Extract(ctx, fileName, data)
	if err != nil {
		s.log.Warn("document ingestion failed", zap.String("session", sessionID), zap.String("file", fileName), zap.Error(err))
		return session.Snapshot(), &domain.IngestionError{FileName: fileName, Err: err}
	}
	return s.SubmitDocument(ctx, sessionID, text, fileName)
}

// SubmitDocument makes text the active document under a fresh study set.
// Nothing is persisted until the first generation succeeds.
func (s *StudyService) SubmitDocument(_ context.Context, sessionID, text, fileName string) (Snapshot, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	snap, err := session.submitDocument(text, fileName)
	if err != nil {
		return snap, err
	}
	s.log.Info("document loaded", zap.String("session", sessionID), zap.String("file", fileName), zap.String("studySet", snap.StudySet.ID))
	return snap, nil
}

// RequestGeneration runs the generator for kind against the active document
// and merges the result into the active study set. Without an active document
// it is a no-op. Only one generation may run per session.
func (s *StudyService) RequestGeneration(ctx context.Context, sessionID string, kind domain.GenerationKind, count int) (Snapshot, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	if !kind.Valid() {
		return session.Snapshot(), domain.ErrUnknownKind
	}

	text, ticket, started, err := session.beginGeneration(kind)
	if err != nil || !started {
		return session.Snapshot(), err
	}

	count = s.resolveCount(ctx, session.Owner(), kind, count)

	content, genErr := s.generate(ctx, kind, text, count)
	if genErr != nil {
		s.log.Error("generation failed", zap.String("session", sessionID), zap.String("kind", string(kind)), zap.Error(genErr))
		session.endGeneration(ticket, genErr)
		return session.Snapshot(), nil
	}

	if !session.applyGeneration(ticket, content) {
		s.log.Info("discarding generation for replaced document", zap.String("session", sessionID), zap.String("kind", string(kind)))
		return session.Snapshot(), nil
	}
	saveErr := s.reconcile(ctx, session, ticket.setID)
	if saveErr != nil {
		s.log.Error("failed to save study set", zap.String("session", sessionID), zap.String("studySet", ticket.setID), zap.Error(saveErr))
	}
	session.endGeneration(ticket, saveErr)
	return session.Snapshot(), nil
}

func (s *StudyService) generate(ctx context.Context, kind domain.GenerationKind, text string, count int) (domain.Content, error) {
	content, err := s.generator.Generate(ctx, kind, text, count)
	if err != nil {
		return domain.Content{}, err
	}
	content.Kind = kind
	if err := content.Validate(); err != nil {
		return domain.Content{}, fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}
	return content, nil
}

// resolveCount picks the item count for counted kinds, remembering an
// explicit count as the owner's preference.
func (s *StudyService) resolveCount(ctx context.Context, owner string, kind domain.GenerationKind, count int) int {
	if !kind.Counted() {
		return 0
	}
	if s.prefs == nil {
		if count < 1 {
			return 1
		}
		return count
	}
	if count > 0 {
		stored, err := s.prefs.SetGenerationCount(ctx, owner, count)
		if err != nil {
			s.log.Warn("failed to save generation count", zap.String("owner", owner), zap.Error(err))
		}
		return stored
	}
	stored, err := s.prefs.GenerationCount(ctx, owner)
	if err != nil {
		s.log.Warn("failed to read generation count", zap.String("owner", owner), zap.Error(err))
	}
	return stored
}

// reconcile writes the session's copy of a study set into the store.
func (s *StudyService) reconcile(ctx context.Context, session *Session, setID string) error {
	session.persistMu.Lock()
	defer session.persistMu.Unlock()

	set, ok := session.activeSet(setID)
	if !ok {
		return nil
	}
	_, err := s.sets.Upsert(ctx, session.Owner(), set)
	return err
}

// CompleteQuiz records the score of a finished quiz run on the active study set.
func (s *StudyService) CompleteQuiz(ctx context.Context, sessionID string, score int) (Snapshot, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	setID, ok, err := session.completeQuiz(score)
	if err != nil || !ok {
		return session.Snapshot(), err
	}
	if err := s.reconcile(ctx, session, setID); err != nil {
		return session.Snapshot(), fmt.Errorf("save quiz score: %w", err)
	}
	s.log.Info("quiz completed", zap.String("session", sessionID), zap.String("studySet", setID), zap.Int("score", score))
	return session.Snapshot(), nil
}

// SubmitQuizAnswers scores a full set of answers against the active quiz.
func (s *StudyService) SubmitQuizAnswers(ctx context.Context, sessionID string, answers []string) (Snapshot, int, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return Snapshot{}, 0, err
	}
	score := domain.ScoreQuiz(session.activeQuiz(), answers)
	snap, err := s.CompleteQuiz(ctx, sessionID, score)
	return snap, score, err
}

// StartNewDocument drops the active document and returns to the upload view.
func (s *StudyService) StartNewDocument(_ context.Context, sessionID string) (Snapshot, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	return session.startNewDocument(), nil
}

// Navigate switches the session's view.
func (s *StudyService) Navigate(_ context.Context, sessionID string, view domain.View) (Snapshot, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	return session.navigate(view)
}

// Subscribe returns a channel that receives a snapshot after every transition.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *StudyService) Subscribe(_ context.Context, sessionID string) (<-chan Snapshot, func(), error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// Release drops the session if nothing is left in it.
func (s *StudyService) Release(_ context.Context, sessionID string) {
	s.sessions.DeleteIfIdle(sessionID)
}

// RunJanitor evicts sessions idle for ttl every interval until ctx is done.
func (s *StudyService) RunJanitor(ctx context.Context, interval, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultSessionIdleTTL
	}
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.EvictIdle(ttl)
		}
	}
}

// EvictIdle drops sessions that nobody has used for ttl.
func (s *StudyService) EvictIdle(ttl time.Duration) int {
	n := s.sessions.EvictExpired(s.now(), ttl)
	if n > 0 {
		s.log.Info("evicted idle sessions", zap.Int("count", n))
	}
	return n
}

// StudySets returns the committed collection for owner.
func (s *StudyService) StudySets(ctx context.Context, owner string) ([]domain.StudySet, error) {
	return s.sets.LoadAll(ctx, owner)
}

// Analytics aggregates the owner's committed collection.
func (s *StudyService) Analytics(ctx context.Context, owner string) (Analytics, error) {
	sets, err := s.sets.LoadAll(ctx, owner)
	if err != nil {
		return Analytics{}, err
	}
	return ComputeAnalytics(sets), nil
}

// Preferences returns the owner's stored theme and item count.
func (s *StudyService) Preferences(ctx context.Context, owner string) (Preferences, error) {
	theme, err := s.prefs.Theme(ctx, owner)
	if err != nil {
		return Preferences{}, err
	}
	count, err := s.prefs.GenerationCount(ctx, owner)
	if err != nil {
		return Preferences{}, err
	}
	return Preferences{Theme: theme, GenerationCount: count}, nil
}

// UpdatePreferences stores whichever fields are set.
func (s *StudyService) UpdatePreferences(ctx context.Context, owner string, theme *domain.Theme, count *int) (Preferences, error) {
	if theme != nil {
		if err := s.prefs.SetTheme(ctx, owner, *theme); err != nil {
			return Preferences{}, err
		}
	}
	if count != nil {
		if _, err := s.prefs.SetGenerationCount(ctx, owner, *count); err != nil {
			return Preferences{}, err
		}
	}
	return s.Preferences(ctx, owner)
}

// ToggleTheme flips the owner's theme.
func (s *StudyService) ToggleTheme(ctx context.Context, owner string) (Preferences, error) {
	if _, err := s.prefs.ToggleTheme(ctx, owner); err != nil {
		return Preferences{}, err
	}
	return s.Preferences(ctx, owner)
}
