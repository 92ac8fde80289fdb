package parser

import (
	"sync"
	"time"
)

// conversationContext tracks a user's short-lived volunteer session so a
// follow-up like "I'll do it" is understood without a fresh mention.
type conversationContext struct {
	UserID          string
	UserName        string
	LastActivity    time.Time
	VolunteerIntent bool
}

// ContextStore holds per-user conversation state with a sliding TTL.
// Shared between the webhook path and nothing else; the mutex keeps
// concurrent webhooks from racing on the map.
type ContextStore struct {
	mu       sync.Mutex
	contexts map[string]conversationContext
	ttl      time.Duration
	now      func() time.Time
}

func NewContextStore(ttl time.Duration) *ContextStore {
	return &ContextStore{
		contexts: make(map[string]conversationContext),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *ContextStore) Set(userID, userName string, volunteerIntent bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[userID] = conversationContext{
		UserID:          userID,
		UserName:        userName,
		LastActivity:    s.now(),
		VolunteerIntent: volunteerIntent,
	}
}

// Active reports whether the user has a live volunteer-intent session.
func (s *ContextStore) Active(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked()
	ctx, ok := s.contexts[userID]
	return ok && ctx.VolunteerIntent
}

// Touch extends the session's sliding window.
func (s *ContextStore) Touch(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx, ok := s.contexts[userID]; ok {
		ctx.LastActivity = s.now()
		s.contexts[userID] = ctx
	}
}

func (s *ContextStore) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contexts, userID)
}

func (s *ContextStore) expireLocked() {
	cutoff := s.now().Add(-s.ttl)
	for id, ctx := range s.contexts {
		if ctx.LastActivity.Before(cutoff) {
			delete(s.contexts, id)
		}
	}
}
