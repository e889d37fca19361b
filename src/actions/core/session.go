package core

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// NewSession creates a bot session with the given gateway intents.
func NewSession(token string, intents discordgo.Intent) (*discordgo.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("discord token is not configured")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	session.Identify.Intents = intents
	return session, nil
}

// OpenSession opens s and closes it when ctx ends. The returned cancel
// stops the session early.
func OpenSession(ctx context.Context, s *discordgo.Session) (context.Context, context.CancelFunc, error) {
	if err := s.Open(); err != nil {
		return nil, nil, fmt.Errorf("discord open: %w", err)
	}
	sessionCtx, cancel := context.WithCancel(ctx)
	go func() {
		<-sessionCtx.Done()
		s.Close()
	}()
	return sessionCtx, cancel, nil
}
