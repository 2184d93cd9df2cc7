// Package auth holds the process credential state. The token holder is an
// explicitly owned value injected into HTTP clients, never a package global,
// so tests can swap it out.
package auth

import "sync"

type TokenSource interface {
	AccessToken() string
	Authenticated() bool
}

// TokenStore — set on login/refresh, cleared on logout or refresh failure.
type TokenStore struct {
	mu     sync.RWMutex
	access string
}

func NewTokenStore() *TokenStore { return &TokenStore{} }

func (s *TokenStore) Set(accessToken string) {
	s.mu.Lock()
	s.access = accessToken
	s.mu.Unlock()
}

func (s *TokenStore) Clear() {
	s.mu.Lock()
	s.access = ""
	s.mu.Unlock()
}

func (s *TokenStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *TokenStore) Authenticated() bool {
	return s.AccessToken() != ""
}
