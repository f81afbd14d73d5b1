package domain

import "time"

// DeliveryStatus is a client-local concept; remote rows are implicitly
// "sent". Failed placeholders stay visible so the user can retry.
type DeliveryStatus string

const (
	StatusSending DeliveryStatus = "sending"
	StatusSent    DeliveryStatus = "sent"
	StatusError   DeliveryStatus = "error"
)

// MessageContent is the tagged text-or-image variant. Exactly one of the
// two concrete types is present, so the both/neither states of an
// optional-field pair cannot be represented.
type MessageContent interface {
	Kind() string
}

type TextContent struct {
	Body string
}

func (TextContent) Kind() string { return "text" }

type ImageContent struct {
	URL string
	// Optional caption shown alongside the image.
	Caption string
}

func (ImageContent) Kind() string { return "image" }

type Message struct {
	ID         string
	SenderID   string
	ReceiverID string
	Content    MessageContent
	Status     DeliveryStatus
	Read       bool
	CreatedAt  time.Time
}

// Text returns the visible text of the message, or "" for a caption-less
// image.
func (m Message) Text() string {
	switch c := m.Content.(type) {
	case TextContent:
		return c.Body
	case ImageContent:
		return c.Caption
	}
	return ""
}

// ImageURL returns the image reference, or "" for a text message.
func (m Message) ImageURL() string {
	if c, ok := m.Content.(ImageContent); ok {
		return c.URL
	}
	return ""
}
