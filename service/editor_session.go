package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"mifoto-print/catalog"
	pkgerrors "mifoto-print/errors"
	"mifoto-print/models"
)

// MaxPhotosPerBatch limits how many photos one editing session accepts.
const MaxPhotosPerBatch = 50

// EditorSession holds the photos of one upload batch for a single size while the
// customer edits them. Settings live in a map keyed by copy id; copies only carry
// them once committed to an order.
type EditorSession struct {
	mu sync.RWMutex

	ID        string
	SizeID    string
	CreatedAt time.Time

	// ResetRotationOnFill sets rotation back to 0 when a patch selects Fill.
	ResetRotationOnFill bool

	photos   map[string]models.SourcePhoto
	copies   []models.Copy
	settings map[string]models.CopySettings
}

// NewEditorSession starts an empty session for sizeID.
func NewEditorSession(c *catalog.Catalog, sizeID string) (*EditorSession, error) {
	size, err := c.Lookup(sizeID)
	if err != nil {
		return nil, err
	}
	return &EditorSession{
		ID:                  uuid.NewString(),
		SizeID:              size.ID,
		CreatedAt:           time.Now().UTC(),
		ResetRotationOnFill: true,
		photos:              make(map[string]models.SourcePhoto),
		settings:            make(map[string]models.CopySettings),
	}, nil
}

// AddPhoto expands photo into quantity copies with default settings.
func (s *EditorSession) AddPhoto(photo models.SourcePhoto, quantity int) ([]models.Copy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.photos[photo.ID]; !exists && len(s.photos) >= MaxPhotosPerBatch {
		return nil, fmt.Errorf("%w: at most %d photos per batch", pkgerrors.ErrUnsupportedUpload, MaxPhotosPerBatch)
	}
	copies, err := ExpandCopies(photo, quantity, models.DefaultCopySettings())
	if err != nil {
		return nil, err
	}
	s.photos[photo.ID] = photo
	for _, c := range copies {
		s.copies = append(s.copies, c)
		s.settings[c.CopyID] = c.Settings
	}
	return copies, nil
}

// Apply sets patch on every selected copy. Nothing changes when any copy id is unknown
// or the result is invalid.
func (s *EditorSession) Apply(copyIDs []string, patch models.SettingsPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]models.CopySettings, len(copyIDs))
	for _, id := range copyIDs {
		current, ok := s.settings[id]
		if !ok {
			return fmt.Errorf("%w: %s", pkgerrors.ErrCopyNotFound, id)
		}
		updated := patch.ApplyTo(current)
		if s.ResetRotationOnFill && patch.Fit != nil && *patch.Fit == models.FitFill && patch.Rotation == nil {
			updated.RotationDegrees = 0
		}
		if err := updated.Validate(); err != nil {
			return err
		}
		next[id] = updated
	}
	for id, settings := range next {
		s.settings[id] = settings
	}
	return nil
}

// Rotate turns every selected copy 90 degrees clockwise.
func (s *EditorSession) Rotate(copyIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range copyIDs {
		if _, ok := s.settings[id]; !ok {
			return fmt.Errorf("%w: %s", pkgerrors.ErrCopyNotFound, id)
		}
	}
	for _, id := range copyIDs {
		settings := s.settings[id]
		settings.RotationDegrees = (settings.RotationDegrees + 90) % 360
		s.settings[id] = settings
	}
	return nil
}

func (s *EditorSession) Settings(copyID string) (models.CopySettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	settings, ok := s.settings[copyID]
	if !ok {
		return models.CopySettings{}, fmt.Errorf("%w: %s", pkgerrors.ErrCopyNotFound, copyID)
	}
	return settings, nil
}

// Copies returns every copy with its current settings, in upload order.
func (s *EditorSession) Copies() []models.Copy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Copy, len(s.copies))
	for i, c := range s.copies {
		c.Settings = s.settings[c.CopyID]
		out[i] = c
	}
	return out
}

// Copy returns one copy with its current settings and the photo it comes from.
func (s *EditorSession) Copy(copyID string) (models.Copy, models.SourcePhoto, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.copies {
		if c.CopyID == copyID {
			c.Settings = s.settings[copyID]
			return c, s.photos[c.SourcePhotoID], nil
		}
	}
	return models.Copy{}, models.SourcePhoto{}, fmt.Errorf("%w: %s", pkgerrors.ErrCopyNotFound, copyID)
}

func (s *EditorSession) PhotoCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.photos)
}

// EditorSessions is the registry of live editing sessions.
type EditorSessions struct {
	mu       sync.RWMutex
	catalog  *catalog.Catalog
	sessions map[string]*EditorSession
}

func NewEditorSessions(c *catalog.Catalog) *EditorSessions {
	return &EditorSessions{catalog: c, sessions: make(map[string]*EditorSession)}
}

func (r *EditorSessions) Create(sizeID string) (*EditorSession, error) {
	s, err := NewEditorSession(r.catalog, sizeID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s, nil
}

func (r *EditorSessions) Get(id string) (*EditorSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", pkgerrors.ErrSessionNotFound, id)
	}
	return s, nil
}

// Close forgets a session once its copies are committed.
func (r *EditorSessions) Close(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}
