package store

import (
	"context"
	"sync"

	"imhungri/pkg/errcodes"

	"imhungri/internal/domain"
)

// Session holds the signed-in user and access token for the app session.
// It satisfies the httpx bearer authenticator interface.
type Session struct {
	mu          sync.RWMutex
	userID      string
	accessToken string
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) SignIn(userID, accessToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userID = userID
	s.accessToken = accessToken
}

func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userID = ""
	s.accessToken = ""
}

// UserID returns the signed-in user id, or false when signed out.
func (s *Session) UserID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.userID, s.userID != ""
}

func (s *Session) BearerToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.accessToken
}

// Authenticate reports whether the session can back an authorized call.
// Token issuance and refresh belong to the external auth provider; an empty
// session cannot be upgraded here.
func (s *Session) Authenticate(context.Context) error {
	if _, ok := s.UserID(); !ok {
		return domain.NewError(errcodes.NotAuthenticated, "sign in required")
	}

	return nil
}

// RequireUserID returns the signed-in user id or a NotAuthenticated error.
func (s *Session) RequireUserID() (string, error) {
	userID, ok := s.UserID()
	if !ok {
		return "", domain.NewError(errcodes.NotAuthenticated, "sign in required")
	}

	return userID, nil
}
