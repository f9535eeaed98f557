package service

import (
	"context"

	"minimercado/backend/internal/domain"
	"minimercado/backend/internal/store"
)

type SessionState string

const (
	Anonymous     SessionState = "ANONYMOUS"
	Authenticated SessionState = "AUTHENTICATED"
)

// Login checks the credential set. A match makes the session AUTHENTICATED
// as that user; a miss leaves it ANONYMOUS, logging out whoever was there.
func (s *Service) Login(ctx context.Context, email string, password string) (domain.User, bool) {
	cred, known := s.credentials[normalizeEmail(email)]
	ok := known && verifyPassword(cred.PasswordHash, password)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.Login(ok)
	if !ok {
		s.session = domain.Session{}
		s.persist(ctx, store.Session)
		s.log.Warn().Str("email", normalizeEmail(email)).Msg("login rejected")
		return domain.User{}, false
	}

	user := cred.User
	startedAt := s.now()
	s.session = domain.Session{User: &user, StartedAt: &startedAt}
	s.persist(ctx, store.Session)
	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("login")
	return user, true
}

func (s *Service) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.User != nil {
		s.log.Info().Str("user_id", s.session.User.ID).Msg("logout")
	}
	s.session = domain.Session{}
	s.persist(ctx, store.Session)
}

func (s *Service) CurrentUser() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session.User == nil {
		return domain.User{}, false
	}
	return *s.session.User, true
}

func (s *Service) SessionState() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session.Authenticated() {
		return Authenticated
	}
	return Anonymous
}

func (s *Service) Session() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}
