package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/grubk/cypress-clientside/internal/db"
	"github.com/grubk/cypress-clientside/internal/domain"
	clierr "github.com/grubk/cypress-clientside/internal/errors"
	"github.com/grubk/cypress-clientside/internal/store"
)

// Reserved synthetic conversation partners. Their history short-circuits
// to a canned introduction instead of hitting the store.
var botIntros = map[string]string{
	"cypress-bot": "Hi! I'm the Cypress assistant. Swipe through the discovery tab to find people who share your interests — when someone connects back, you can chat here.",
	"campus-tips": "Welcome to Campus Tips! Every week we post one thing worth knowing about campus life. Stay tuned.",
}

// IsReservedPartner reports whether the id belongs to a synthetic
// system/bot account.
func IsReservedPartner(id string) bool {
	_, ok := botIntros[id]
	return ok
}

// SendMessage persists one message to the conversation partner and
// announces it on the live channel. The optimistic placeholder lifecycle
// lives above this call, in the chat synchronizer.
func (r *Repository) SendMessage(ctx context.Context, partnerID string, content domain.MessageContent) (*domain.Message, error) {
	session, err := r.requireSession()
	if err != nil {
		return nil, err
	}
	if partnerID == "" || partnerID == session.UserID {
		return nil, clierr.Validation("Invalid conversation partner.")
	}

	row := db.Message{
		ID:         uuid.NewString(),
		SenderID:   session.UserID,
		ReceiverID: partnerID,
	}
	switch c := content.(type) {
	case domain.TextContent:
		if strings.TrimSpace(c.Body) == "" {
			return nil, clierr.Validation("Message text cannot be empty.")
		}
		row.Content = c.Body
		row.Kind = "text"
	case domain.ImageContent:
		if c.URL == "" {
			return nil, clierr.Validation("Image messages need an image reference.")
		}
		row.Content = c.Caption
		row.ImageURL = c.URL
		row.Kind = "image"
	default:
		return nil, clierr.Validation("Message must be text or an image.")
	}

	if err := r.appCtx.DB.WithContext(ctx).Create(&row).Error; err != nil {
		// write-style: the caller reverts its placeholder on this
		return nil, clierr.Map("send message", err)
	}

	// make the receiver's next unread read re-derive from the store
	_ = r.appCtx.RedisCache.InvalidateUnreadCount(ctx, partnerID)

	ev := store.MessageEvent{
		ID:         row.ID,
		SenderID:   row.SenderID,
		ReceiverID: row.ReceiverID,
		Content:    row.Content,
		ImageURL:   row.ImageURL,
		Kind:       row.Kind,
		CreatedAt:  row.CreatedAt,
	}
	if err := r.channel.PublishMessage(ctx, ev); err != nil {
		// delivery by subscription is best-effort; the row is persisted
		r.appCtx.Logger.Warn("message publish failed", "message_id", row.ID, "err", err)
	}

	msg := toDomainMessage(row)
	return &msg, nil
}

// MessagesWith loads the full history with one partner, ordered by
// creation time ascending. Reserved partners return their canned intro.
func (r *Repository) MessagesWith(ctx context.Context, partnerID string) ([]domain.Message, error) {
	session, err := r.requireSession()
	if err != nil {
		return nil, err
	}

	if intro, ok := botIntros[partnerID]; ok {
		return []domain.Message{{
			ID:         "intro-" + partnerID,
			SenderID:   partnerID,
			ReceiverID: session.UserID,
			Content:    domain.TextContent{Body: intro},
			Status:     domain.StatusSent,
			Read:       true,
			CreatedAt:  time.Time{},
		}}, nil
	}

	var rows []db.Message
	err = r.appCtx.DB.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			session.UserID, partnerID, partnerID, session.UserID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, clierr.Map("load messages", err)
	}

	msgs := make([]domain.Message, 0, len(rows))
	for _, row := range rows {
		msgs = append(msgs, toDomainMessage(row))
	}
	return msgs, nil
}

// MarkMessagesRead clears the unread flag for every message from one
// sender and invalidates the cached count, so the next UnreadCount
// re-derives from the store instead of decrementing locally.
func (r *Repository) MarkMessagesRead(ctx context.Context, senderID string) error {
	session, err := r.requireSession()
	if err != nil {
		return err
	}

	err = r.appCtx.DB.WithContext(ctx).
		Model(&db.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", senderID, session.UserID, false).
		Update("is_read", true).Error
	if err != nil {
		return clierr.Map("mark messages read", err)
	}

	if err := r.appCtx.RedisCache.InvalidateUnreadCount(ctx, session.UserID); err != nil {
		r.appCtx.Logger.Warn("unread cache invalidation failed", "err", err)
	}
	return nil
}

// UnreadCount returns the number of unread messages addressed to the
// caller. Cache-first: Redis holds the count with a TTL, the store is
// the fallback and the source of truth.
func (r *Repository) UnreadCount(ctx context.Context) (int64, error) {
	session, err := r.requireSession()
	if err != nil {
		return 0, err
	}

	if n, ok, err := r.appCtx.RedisCache.GetUnreadCount(ctx, session.UserID); err == nil && ok {
		return n, nil
	}

	var count int64
	err = r.appCtx.DB.WithContext(ctx).
		Model(&db.Message{}).
		Where("receiver_id = ? AND is_read = ?", session.UserID, false).
		Count(&count).Error
	if err != nil {
		r.appCtx.Logger.Warn("unread count load failed", "err", err)
		return 0, nil
	}

	_ = r.appCtx.RedisCache.SetUnreadCount(ctx, session.UserID, count)
	return count, nil
}

// SubscribeToMessages opens a live feed of new messages from one
// conversation partner. Every arriving event is checked to be addressed
// to the current session before the callback fires; a shared fan-out
// topic must not leak messages meant for someone else. The returned
// disposer tears the channel down exactly once.
func (r *Repository) SubscribeToMessages(ctx context.Context, partnerID string, onMessage func(domain.Message)) (func(), error) {
	session, err := r.requireSession()
	if err != nil {
		return nil, err
	}

	sub, err := r.channel.SubscribeMessages(ctx, session.UserID)
	if err != nil {
		return nil, clierr.Map("subscribe", err)
	}

	go func() {
		for ev := range sub.C {
			if ev.SenderID != partnerID || ev.ReceiverID != session.UserID {
				continue
			}
			onMessage(eventToDomainMessage(ev))
		}
	}()

	return sub.Close, nil
}

// --- row/event -> domain shaping ---

func toDomainMessage(row db.Message) domain.Message {
	return domain.Message{
		ID:         row.ID,
		SenderID:   row.SenderID,
		ReceiverID: row.ReceiverID,
		Content:    messageContent(row.Kind, row.Content, row.ImageURL),
		Status:     domain.StatusSent,
		Read:       row.IsRead,
		CreatedAt:  row.CreatedAt,
	}
}

func eventToDomainMessage(ev store.MessageEvent) domain.Message {
	return domain.Message{
		ID:         ev.ID,
		SenderID:   ev.SenderID,
		ReceiverID: ev.ReceiverID,
		Content:    messageContent(ev.Kind, ev.Content, ev.ImageURL),
		Status:     domain.StatusSent,
		CreatedAt:  ev.CreatedAt,
	}
}

// messageContent derives the tagged variant from the stored fields; the
// image reference wins when both are present.
func messageContent(kind, content, imageURL string) domain.MessageContent {
	if kind == "image" || imageURL != "" {
		return domain.ImageContent{URL: imageURL, Caption: content}
	}
	return domain.TextContent{Body: content}
}
