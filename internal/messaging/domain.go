// Package messaging implements agent-member conversations. Access is gated
// by the assignment fact: an agent may only read or write a member's
// conversation while an assignment between the two is live.
package messaging

import (
	"errors"
	"time"
)

// Message is one entry of a member's conversation.
type Message struct {
	ID       int64     `json:"id"`
	MemberID int64     `json:"member_id"`
	SenderID int64     `json:"sender_id"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sent_at"`
}

// ErrEmptyBody rejects a message without content.
var ErrEmptyBody = errors.New("messaging: message body required")
