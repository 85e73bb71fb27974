package session

import (
	"sync"
	"time"
)

// revocationList хранит ID отозванных токенов до истечения их срока.
type revocationList struct {
	mu      sync.RWMutex
	revoked map[string]time.Time // map[tokenID]expiresAt
}

func newRevocationList() *revocationList {
	return &revocationList{revoked: make(map[string]time.Time)}
}

func (l *revocationList) revoke(id string, expiresAt, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Истекшие токены и так не пройдут проверку
	for tokenID, exp := range l.revoked {
		if now.After(exp) {
			delete(l.revoked, tokenID)
		}
	}
	l.revoked[id] = expiresAt
}

func (l *revocationList) isRevoked(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.revoked[id]
	return ok
}

func (l *revocationList) len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.revoked)
}
