package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nisthasiemens/docshare/internal/apperror"
	"github.com/nisthasiemens/docshare/internal/model"
	"github.com/nisthasiemens/docshare/internal/repository"
)

// chatTimeLayout is the display format messages carry: [YYYY-MM-DD HH-MM-SS].
const chatTimeLayout = "[2006-01-02 15-04-05]"

// ChatService manages the global, append-only chat log.
type ChatService struct {
	chats    repository.ChatRepository
	sessions repository.SessionRepository
	logger   *slog.Logger

	// now is swappable so tests can pin the timestamp.
	now func() time.Time
}

// NewChatService creates a ChatService.
func NewChatService(
	chats repository.ChatRepository,
	sessions repository.SessionRepository,
	logger *slog.Logger,
) *ChatService {
	return &ChatService{
		chats:    chats,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

// Post appends a message to the chat log, attributed to the current user's
// display name. The message is trimmed and must be non-empty.
func (s *ChatService) Post(ctx context.Context, message string) (*model.ChatMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperror.ValidationFailed("message", "message is required")
	}

	sender, err := s.sessions.Get(ctx)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("please log in to chat")
		}
		return nil, fmt.Errorf("reading session: %w", err)
	}

	msg := &model.ChatMessage{
		TimeStamp: s.now().Format(chatTimeLayout),
		UserName:  sender.UserName,
		Message:   message,
	}
	if err := s.chats.Append(ctx, msg); err != nil {
		s.logger.Error("failed to post chat message",
			slog.String("userName", sender.UserName),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("posting chat message: %w", err)
	}

	return msg, nil
}

// History returns the full chat log in insertion order. No pagination and
// no truncation — unbounded growth is an accepted limitation at this scope.
func (s *ChatService) History(ctx context.Context) ([]model.ChatMessage, error) {
	messages, err := s.chats.List(ctx)
	if err != nil {
		s.logger.Error("failed to load chat history", slog.String("error", err.Error()))
		return nil, fmt.Errorf("loading chat history: %w", err)
	}
	return messages, nil
}
