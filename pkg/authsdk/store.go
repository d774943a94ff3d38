package authsdk

import (
	"context"
	"sync"
)

// SessionRecord is the token pair a native client keeps between runs.
type SessionRecord struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// SessionStore persists a native session. Load returns ErrNoSession when
// nothing is stored. Implementations must be safe for concurrent use.
type SessionStore interface {
	Load(ctx context.Context) (SessionRecord, error)
	Save(ctx context.Context, rec SessionRecord) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps the session in process memory.
type MemoryStore struct {
	mu  sync.Mutex
	rec *SessionRecord
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load(context.Context) (SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rec == nil {
		return SessionRecord{}, ErrNoSession
	}
	return *m.rec, nil
}

func (m *MemoryStore) Save(_ context.Context, rec SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = &rec
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = nil
	return nil
}
