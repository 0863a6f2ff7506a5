package sales

import (
	"sync"

	"github.com/suncore-erp/suncore/internal/sales/draft"
)

// DraftManager owns one draft store per sale-creation session. Stores are
// created on first touch and dropped on submit success, cancel or logout.
type DraftManager struct {
	mu     sync.Mutex
	drafts map[string]*draft.Store
}

// NewDraftManager constructs an empty manager.
func NewDraftManager() *DraftManager {
	return &DraftManager{drafts: make(map[string]*draft.Store)}
}

// Get returns the session's draft store, creating it if absent.
func (m *DraftManager) Get(sessionID string) *draft.Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	store, ok := m.drafts[sessionID]
	if !ok {
		store = draft.NewStore()
		m.drafts[sessionID] = store
	}
	return store
}

// Peek returns the session's draft store without creating one.
func (m *DraftManager) Peek(sessionID string) (*draft.Store, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	store, ok := m.drafts[sessionID]
	return store, ok
}

// Drop discards the session's draft store.
func (m *DraftManager) Drop(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, sessionID)
}
