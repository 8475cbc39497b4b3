package intake

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"application-service/internal/form"

	"github.com/google/uuid"
)

var (
	// ErrNoDraft means no staged record exists in the session store.
	ErrNoDraft = errors.New("no staged application draft")
	// ErrFilesUnavailable means the record survived but the in-memory file
	// handoff did not (the hard-reload case). The caller must re-prompt
	// for files; masking this would silently drop the attachments.
	ErrFilesUnavailable = errors.New("staged file content unavailable, files must be selected again")
)

const (
	keyDraftID = "applicationDraft"
	keyRecord  = "applicationData"
	keyFiles   = "applicationFiles"
)

// Store is session-scoped string storage: it survives navigation between
// the form and review steps of one session, but not a fresh session.
type Store interface {
	Set(key, value string)
	Get(key string) (string, bool)
	Remove(key string)
}

// MemoryStore is the plain in-process Store used per session.
type MemoryStore struct {
	mu sync.Mutex
	m  map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]string)}
}

func (s *MemoryStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *MemoryStore) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}

// Draft is a staged, validated application ready for review and submission.
type Draft struct {
	ID     string
	Record form.Application
	Files  []form.Attachment
}

// Stager carries a validated record and its file bytes across the two
// steps. The record and file metadata go through the Store as JSON; the
// raw bytes cannot live there, so they are parked in an in-memory handoff
// keyed by draft ID. State is all component-local: two Stagers never share
// anything.
type Stager struct {
	store Store

	mu      sync.Mutex
	handoff map[string][]form.Attachment
}

func NewStager(store Store) *Stager {
	return &Stager{
		store:   store,
		handoff: make(map[string][]form.Attachment),
	}
}

// Stage freezes a validated form for the review step and returns the draft
// ID. The caller is expected to have run Validate first; Stage re-checks
// nothing.
func (s *Stager) Stage(f *Form) (string, error) {
	record, err := json.Marshal(f.Record)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}

	files := f.AllFiles()
	meta, err := json.Marshal(files)
	if err != nil {
		return "", fmt.Errorf("marshal file metadata: %w", err)
	}

	id := uuid.NewString()
	s.store.Set(keyDraftID, id)
	s.store.Set(keyRecord, string(record))
	s.store.Set(keyFiles, string(meta))

	s.mu.Lock()
	s.handoff[id] = files
	s.mu.Unlock()

	return id, nil
}

// Load returns the staged draft for the review step. When the byte handoff
// is gone, the record and file metadata are still returned together with
// ErrFilesUnavailable so the caller can re-prompt for the files alone.
func (s *Stager) Load() (*Draft, error) {
	id, ok := s.store.Get(keyDraftID)
	if !ok {
		return nil, ErrNoDraft
	}
	raw, ok := s.store.Get(keyRecord)
	if !ok {
		return nil, ErrNoDraft
	}

	draft := &Draft{ID: id}
	if err := json.Unmarshal([]byte(raw), &draft.Record); err != nil {
		return nil, fmt.Errorf("unmarshal staged record: %w", err)
	}

	s.mu.Lock()
	files, ok := s.handoff[id]
	s.mu.Unlock()
	if !ok {
		if meta, found := s.store.Get(keyFiles); found {
			_ = json.Unmarshal([]byte(meta), &draft.Files)
		}
		return draft, ErrFilesUnavailable
	}

	draft.Files = files
	return draft, nil
}

// Attach replaces the draft's files after a re-prompt.
func (s *Stager) Attach(draftID string, files []form.Attachment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handoff[draftID] = files
}

// Discard drops a draft after submission or cancellation.
func (s *Stager) Discard(draftID string) {
	s.store.Remove(keyDraftID)
	s.store.Remove(keyRecord)
	s.store.Remove(keyFiles)

	s.mu.Lock()
	delete(s.handoff, draftID)
	s.mu.Unlock()
}

// DropHandoff releases only the in-memory bytes, leaving the session store
// intact. This is the hard-reload analogue used in tests.
func (s *Stager) DropHandoff(draftID string) {
	s.mu.Lock()
	delete(s.handoff, draftID)
	s.mu.Unlock()
}
