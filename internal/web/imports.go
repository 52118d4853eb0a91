package web

import (
	"errors"
	"sync"
	"time"

	"github.com/contractreg/contractreg/internal/config"
	"github.com/contractreg/contractreg/internal/importer"
	"github.com/google/uuid"
)

// ErrImportInProgress is returned when a second import is started while an
// uncommitted session is still active. Only one import session may exist at
// a time; the active one must be committed or discarded first.
var ErrImportInProgress = errors.New("an import session is already in progress")

// ErrSessionNotFound is returned for commit/mapping/discard calls that name
// an unknown or already-finished session.
var ErrSessionNotFound = errors.New("import session not found or expired")

// importSession holds the server-side state of one upload between analysis
// and commit: the parsed workbook, the currently selected sheet and mapping,
// and the preview produced from them.
//
// ID, Session and CreatedAt are immutable after Begin. The mutable fields
// are read and rewritten by concurrent handler requests, so every access to
// them must hold mu; the service mutex only guards which session is active.
type importSession struct {
	ID        string
	Session   *importer.Session
	CreatedAt time.Time

	mu        sync.Mutex
	SheetName string
	Mapping   *importer.Mapping
	Preview   *importer.Result
	finished  bool
}

// importService guards the single active import session. Sessions that
// outlive the configured TTL are treated as abandoned and silently replaced
// by the next upload.
type importService struct {
	mu     sync.Mutex
	cfg    config.ImportConfig
	active *importSession
	now    func() time.Time
}

func newImportService(cfg config.ImportConfig) *importService {
	return &importService{
		cfg: cfg,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Begin registers a new session for the parsed workbook. It fails with
// ErrImportInProgress while a non-expired session is active.
func (s *importService) Begin(sess *importer.Session) (*importSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil && !s.expiredLocked(s.active) {
		return nil, ErrImportInProgress
	}

	s.active = &importSession{
		ID:        uuid.New().String(),
		Session:   sess,
		CreatedAt: s.now(),
	}
	return s.active, nil
}

// Get returns the active session if it matches id and has not expired.
func (s *importService) Get(id string) (*importSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil || s.active.ID != id || s.expiredLocked(s.active) {
		return nil, ErrSessionNotFound
	}
	return s.active, nil
}

// Finish removes the session with the given id, whether committed or
// discarded. Finishing an unknown id reports ErrSessionNotFound.
func (s *importService) Finish(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil || s.active.ID != id {
		return ErrSessionNotFound
	}
	s.active = nil
	return nil
}

func (s *importService) expiredLocked(sess *importSession) bool {
	return s.now().Sub(sess.CreatedAt) > s.cfg.SessionTTL
}
