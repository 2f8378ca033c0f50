package negotiation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ashureev/offertalk/internal/completion"
	"github.com/ashureev/offertalk/internal/domain"
	"github.com/ashureev/offertalk/internal/store"
)

// ErrSessionNotFound is returned when a turn references an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

const (
	// negotiationTemperature is the sampling temperature for agent replies.
	negotiationTemperature = 0.7
	// exchangeWindowSize bounds how many recent messages per role go into
	// the prompt.
	exchangeWindowSize = 3
)

// CompletionError reports that the completion service failed while generating
// a negotiation reply. The session stays usable for the next turn; callers
// surface the failure inline instead of closing the channel.
type CompletionError struct {
	Err error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("generating response: %v", e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

// Service runs negotiation turns. Each turn appends the human's message, runs
// the opposing role's agent, and persists the reply. Turns for the same
// session are serialized so the store's read-modify-write cycles cannot lose
// updates across connections.
type Service struct {
	repo      store.Repository
	completer completion.Completer
	extractor *FactExtractor
	locks     *sessionLocks
	logger    *slog.Logger
}

// NewService creates the negotiation service with an injected store and
// completion client.
func NewService(repo store.Repository, completer completion.Completer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		completer: completer,
		extractor: NewFactExtractor(completer, logger),
		locks:     newSessionLocks(),
		logger:    logger,
	}
}

// Turn processes one inbound human message and returns the responding agent's
// role and reply. It returns ErrSessionNotFound for unknown sessions and a
// *CompletionError when the completion service fails mid-turn.
func (s *Service) Turn(ctx context.Context, sessionID, text string) (domain.Role, string, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return "", "", fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return "", "", ErrSessionNotFound
	}

	humanRole := session.Role
	session.AppendMessage(humanRole, text)
	if err := s.repo.Save(ctx, session); err != nil {
		return "", "", fmt.Errorf("persist message: %w", err)
	}

	agentRole := humanRole.Opponent()
	reply, err := s.respond(ctx, sessionID, agentRole, text)
	if err != nil {
		return agentRole, "", err
	}
	return agentRole, reply, nil
}

// respond runs one agent reply: extract facts from the incoming text, compose
// the role's system prompt from the refreshed session, call the completion
// service, extract facts from the reply, and append it to the transcript.
func (s *Service) respond(ctx context.Context, sessionID string, agentRole domain.Role, incoming string) (string, error) {
	humanRole := agentRole.Opponent()
	if facts := s.extractor.Extract(ctx, incoming, humanRole); len(facts) > 0 {
		s.mergeFacts(ctx, sessionID, humanRole, facts)
	}

	// Re-fetch so the prompt sees the just-merged facts.
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("reload session: %w", err)
	}
	if session == nil {
		return "", ErrSessionNotFound
	}

	window := session.RecentExchanges(exchangeWindowSize)
	var system string
	if agentRole == domain.RoleRecruiter {
		system = recruiterPrompt(session, window)
	} else {
		system = seekerPrompt(session, window)
	}

	reply, err := s.completer.Complete(ctx, completion.Request{
		System:      system,
		User:        incoming,
		Temperature: negotiationTemperature,
	})
	if err != nil {
		s.logger.Error("completion service failed", "session_id", sessionID, "role", agentRole, "error", err)
		return "", &CompletionError{Err: err}
	}

	if facts := s.extractor.Extract(ctx, reply, agentRole); len(facts) > 0 {
		s.mergeFacts(ctx, sessionID, agentRole, facts)
	}

	session, err = s.repo.Get(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("reload session: %w", err)
	}
	if session == nil {
		return "", ErrSessionNotFound
	}
	session.AppendMessage(agentRole, reply)
	if err := s.repo.Save(ctx, session); err != nil {
		return "", fmt.Errorf("persist reply: %w", err)
	}

	s.logger.Info("negotiation turn completed", "session_id", sessionID, "agent_role", agentRole)
	return reply, nil
}

// mergeFacts appends new facts to a role's ledger and persists the session.
// A missing session is a no-op; a persistence failure loses only the facts,
// not the turn, so it is logged rather than propagated.
func (s *Service) mergeFacts(ctx context.Context, sessionID string, role domain.Role, facts []string) {
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		s.logger.Warn("failed to load session for fact merge", "session_id", sessionID, "error", err)
		return
	}
	if session == nil {
		return
	}
	if session.Facts == nil {
		session.Facts = domain.NewFactLedger()
	}
	if added := session.Facts.Add(role, facts); added == 0 {
		return
	}
	if err := s.repo.Save(ctx, session); err != nil {
		s.logger.Warn("failed to persist facts", "session_id", sessionID, "role", role, "error", err)
	}
}
