package models

import "time"

// ChatMessage is one message of a buyer/vendor conversation. A conversation
// is every message of one store between the same unordered pair of users.
type ChatMessage struct {
	ID         int       `json:"id" gorm:"primaryKey;autoIncrement"`
	SenderID   int       `json:"sender_id" gorm:"not null;index:idx_chat_pair,priority:2"`
	Sender     User      `json:"-" gorm:"foreignKey:SenderID;references:ID;constraint:OnDelete:CASCADE"`
	ReceiverID int       `json:"receiver_id" gorm:"not null;index:idx_chat_pair,priority:3;index:idx_chat_unread,priority:1"`
	Receiver   User      `json:"-" gorm:"foreignKey:ReceiverID;references:ID;constraint:OnDelete:CASCADE"`
	StoreID    int       `json:"store_id" gorm:"not null;index:idx_chat_pair,priority:1;index:idx_chat_unread,priority:2"`
	Store      Store     `json:"-" gorm:"foreignKey:StoreID;references:ID;constraint:OnDelete:CASCADE"`
	Body       string    `json:"body" gorm:"type:text;not null"`
	FileURL    *string   `json:"file_url,omitempty" gorm:"type:varchar(512)"`
	SentAt     time.Time `json:"sent_at" gorm:"not null;index"`
	Read       bool      `json:"read" gorm:"column:is_read;not null;default:false;index:idx_chat_unread,priority:3"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
