// Package chat keeps per-conversation message sequences in sync: it
// blends the persisted history with live subscription events and manages
// the optimistic lifecycle of outbound messages.
package chat

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/grubk/cypress-clientside/internal/domain"
	"github.com/grubk/cypress-clientside/internal/repository"
)

// Synchronizer owns one Conversation per partner.
type Synchronizer struct {
	repo *repository.Repository
	log  *slog.Logger

	mu    sync.Mutex
	convs map[string]*Conversation
}

func NewSynchronizer(repo *repository.Repository, log *slog.Logger) *Synchronizer {
	return &Synchronizer{
		repo:  repo,
		log:   log,
		convs: make(map[string]*Conversation),
	}
}

// Open loads the history with a partner and attaches the live feed.
// Opening the same partner twice returns the existing conversation.
func (s *Synchronizer) Open(ctx context.Context, partnerID string) (*Conversation, error) {
	s.mu.Lock()
	if conv, ok := s.convs[partnerID]; ok {
		s.mu.Unlock()
		return conv, nil
	}
	s.mu.Unlock()

	history, err := s.repo.MessagesWith(ctx, partnerID)
	if err != nil {
		return nil, err
	}

	conv := &Conversation{
		partnerID: partnerID,
		repo:      s.repo,
		log:       s.log,
		msgs:      history,
	}

	// reserved bot partners have no live feed
	if !repository.IsReservedPartner(partnerID) {
		unsub, err := s.repo.SubscribeToMessages(ctx, partnerID, conv.receive)
		if err != nil {
			// history is still usable without live updates
			s.log.Warn("live feed unavailable", "partner", partnerID, "err", err)
		} else {
			conv.unsub = unsub
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.convs[partnerID]; ok {
		conv.Close()
		return existing, nil
	}
	s.convs[partnerID] = conv
	return conv, nil
}

// MarkRead clears the partner's unread flags and re-fetches the total
// unread count; the count is always re-derived from the store, never
// decremented locally.
func (s *Synchronizer) MarkRead(ctx context.Context, partnerID string) (int64, error) {
	if err := s.repo.MarkMessagesRead(ctx, partnerID); err != nil {
		return 0, err
	}
	return s.repo.UnreadCount(ctx)
}

// Close tears down every open conversation.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, conv := range s.convs {
		conv.Close()
		delete(s.convs, id)
	}
}

// Conversation is one partner's ordered message sequence. Merges are
// append-only and id-keyed; the list is never wholesale replaced, so
// concurrently arriving optimistic placeholders survive live events.
type Conversation struct {
	partnerID string
	repo      *repository.Repository
	log       *slog.Logger

	mu    sync.Mutex
	msgs  []domain.Message
	unsub func()
	once  sync.Once
}

// PartnerID returns the conversation counterpart.
func (c *Conversation) PartnerID() string { return c.partnerID }

// Messages returns a snapshot of the current sequence.
func (c *Conversation) Messages() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Message, len(c.msgs))
	copy(out, c.msgs)
	return out
}

// Send appends an optimistic placeholder, persists through the
// repository, and reconciles in place: success swaps in the persisted
// message at the same list position, failure flips the placeholder to
// the error status so the user can see and retry it. Concurrent sends
// get independent temporary ids and are never coalesced.
func (c *Conversation) Send(ctx context.Context, content domain.MessageContent) (domain.Message, error) {
	placeholder := domain.Message{
		ID:         "local-" + uuid.NewString(),
		SenderID:   c.repo.CurrentUserID(),
		ReceiverID: c.partnerID,
		Content:    content,
		Status:     domain.StatusSending,
	}

	c.mu.Lock()
	c.msgs = append(c.msgs, placeholder)
	c.mu.Unlock()

	persisted, err := c.repo.SendMessage(ctx, c.partnerID, content)

	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.indexOf(placeholder.ID)

	if err != nil {
		// never drop a failed send from the visible list
		if idx >= 0 {
			c.msgs[idx].Status = domain.StatusError
			placeholder = c.msgs[idx]
		}
		return placeholder, err
	}

	if idx >= 0 {
		c.msgs[idx] = *persisted
	} else {
		c.msgs = append(c.msgs, *persisted)
	}
	return *persisted, nil
}

// receive merges one live event. Known ids update in place, new ids
// append; events for other receivers were already filtered out by the
// repository subscription.
func (c *Conversation) receive(msg domain.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx := c.indexOf(msg.ID); idx >= 0 {
		c.msgs[idx] = msg
		return
	}
	c.msgs = append(c.msgs, msg)
}

// Close detaches the live feed. Safe to call more than once.
func (c *Conversation) Close() {
	c.once.Do(func() {
		if c.unsub != nil {
			c.unsub()
		}
	})
}

func (c *Conversation) indexOf(id string) int {
	for i := range c.msgs {
		if c.msgs[i].ID == id {
			return i
		}
	}
	return -1
}
