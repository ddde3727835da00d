// cuahang/utils/types/chat.go
package types

import "time"

// ChatMessageRequest is the payload of an inbound "chat.sendMessage" frame.
type ChatMessageRequest struct {
	SenderID   int     `json:"senderId"`
	ReceiverID int     `json:"receiverId"`
	StoreID    int     `json:"storeId"`
	Body       string  `json:"body"`
	FileURL    *string `json:"fileUrl,omitempty"`
}

// ChatMessageDTO is what clients receive on their "messages" channel.
type ChatMessageDTO struct {
	ID             int       `json:"id"`
	SenderID       int       `json:"senderId"`
	SenderName     string    `json:"senderName"`
	SenderAvatar   *string   `json:"senderAvatar,omitempty"`
	ReceiverID     int       `json:"receiverId"`
	ReceiverName   string    `json:"receiverName"`
	ReceiverAvatar *string   `json:"receiverAvatar,omitempty"`
	StoreID        int       `json:"storeId"`
	StoreName      string    `json:"storeName"`
	Body           string    `json:"body"`
	FileURL        *string   `json:"fileUrl,omitempty"`
	SentAt         time.Time `json:"sentAt"`
	Read           bool      `json:"read"`
}

type ChatError struct {
	Error string `json:"error"`
}

// ChatPartner is one row of the conversation list of a store.
type ChatPartner struct {
	UserID        int             `json:"userId"`
	Username      string          `json:"username"`
	DisplayName   string          `json:"displayName"`
	ImageURL      *string         `json:"imageUrl,omitempty"`
	LatestMessage *ChatMessageDTO `json:"latestMessage,omitempty"`
}

type UnreadCount struct {
	StoreID int   `json:"storeId"`
	Unread  int64 `json:"unread"`
}

type UploadResponse struct {
	Success  bool   `json:"success"`
	FileName string `json:"fileName"`
}
