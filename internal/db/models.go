package db

import (
	"time"

	"github.com/grubk/cypress-clientside/internal/domain"
)

// Account is the auth identity. It is created before the profile row on
// signup; the two writes are independent and a failure in between leaves
// the account live without a profile (accepted inconsistency).
type Account struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Email        string    `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	Confirmed    bool      `gorm:"not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// Profile table. Interests/Languages are enumeration values stored as
// JSON arrays; Settings is the notification switch triple.
type Profile struct {
	ID           string                      `gorm:"primaryKey;size:36"`
	Email        string                      `gorm:"uniqueIndex;size:128;not null"`
	DisplayName  string                      `gorm:"size:64;not null"`
	Major        *string                     `gorm:"size:32"`
	Bio          string                      `gorm:"size:1024"`
	Interests    []string                    `gorm:"serializer:json"`
	Languages    []string                    `gorm:"serializer:json"`
	HomeRegion   string                      `gorm:"size:128"`
	PhotoURL     string                      `gorm:"type:text"` // may be a data URI
	IsVerified   bool                        `gorm:"default:false"`
	IsSearchable bool                        `gorm:"default:true;index"`
	Settings     domain.NotificationSettings `gorm:"serializer:json"`
	CreatedAt    time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt    time.Time                   `gorm:"autoUpdateTime"`
}

const (
	ActionLike = "like"
	ActionPass = "pass"
)

// Edge is a directed swipe/response record actor -> target.
//
// Append-only: repeated decisions on the same target insert additional
// rows; the aggregate is queried, never mutated in place. For state
// derivation the earliest row per ordered pair wins.
//
// Indexes:
//   - idx_edge_actor_target(actor_id, target_id)
//     Exclusion-set and reciprocation lookups.
//   - idx_edge_target_action(target_id, action)
//     "Who liked me" incoming-request queries.
type Edge struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	ActorID   string    `gorm:"size:36;not null;index:idx_edge_actor_target,priority:1"`
	TargetID  string    `gorm:"size:36;not null;index:idx_edge_actor_target,priority:2;index:idx_edge_target_action,priority:1"`
	Action    string    `gorm:"size:8;not null;index:idx_edge_target_action,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Message row. Kind is "text" or "image" and is derived from content on
// write; delivery status is client-local and never stored.
type Message struct {
	ID         string    `gorm:"primaryKey;size:36"`
	SenderID   string    `gorm:"size:36;not null;index:idx_msg_pair,priority:1"`
	ReceiverID string    `gorm:"size:36;not null;index:idx_msg_pair,priority:2;index:idx_msg_receiver_read,priority:1"`
	Content    string    `gorm:"size:2048"`
	ImageURL   string    `gorm:"type:text"`
	Kind       string    `gorm:"size:8;not null"`
	IsRead     bool      `gorm:"default:false;index:idx_msg_receiver_read,priority:2"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index"`
}
