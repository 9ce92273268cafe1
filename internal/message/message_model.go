package message

import (
	"time"

	"gorm.io/gorm"
)

const MaxContentLength = 2000

// Message is one chat line between two users.
type Message struct {
	gorm.Model
	SenderID   uint      `gorm:"not null;index:idx_messages_pair" json:"sender_id"`
	ReceiverID uint      `gorm:"not null;index:idx_messages_pair;index" json:"receiver_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Timestamp  time.Time `gorm:"not null;index" json:"timestamp"`
	IsRead     bool      `gorm:"not null;default:false;index" json:"is_read"`
}

// UnreadCount is the number of unread messages from one sender.
type UnreadCount struct {
	SenderID uint  `json:"sender_id"`
	Count    int64 `json:"count"`
}
