package handler

import (
	"context"
	"fmt"

	"ConferenceBot/repo"
)

// Session decides which view a chat user gets. A stored token, valid or
// not, means the user is registered and sees the dashboard. The token is
// the registration id the dashboard endpoints expect as user id.
type Session struct {
	store repo.TokenStore
}

func NewSession(store repo.TokenStore) *Session {
	return &Session{store: store}
}

func (s *Session) Token(ctx context.Context, userID int64) (string, error) {
	token, err := s.store.GetToken(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("error reading session: %w", err)
	}
	return token, nil
}

func (s *Session) Login(ctx context.Context, userID int64, token string) error {
	if err := s.store.SetToken(ctx, userID, token); err != nil {
		return fmt.Errorf("error saving session: %w", err)
	}
	return nil
}

func (s *Session) Logout(ctx context.Context, userID int64) error {
	if err := s.store.ClearToken(ctx, userID); err != nil {
		return fmt.Errorf("error clearing session: %w", err)
	}
	return nil
}
