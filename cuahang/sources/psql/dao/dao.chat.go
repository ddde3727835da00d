package dao

import (
	"context"
	"errors"

	"cuahang/cuahang/sources/psql/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatMessageDAO is the message store. Every query is scoped by store, so
// the same pair of users has independent conversations in different stores.
type ChatMessageDAO struct {
	DB *gorm.DB
}

func NewChatMessageDAO(db *gorm.DB) *ChatMessageDAO {
	return &ChatMessageDAO{DB: db}
}

const pairCondition = "store_id = ? AND ((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))"

// SaveMessage inserts the message row only; loaded Sender/Receiver/Store
// structs are left untouched.
func (dao *ChatMessageDAO) SaveMessage(ctx context.Context, msg *models.ChatMessage) error {
	return dao.DB.WithContext(ctx).Omit(clause.Associations).Create(msg).Error
}

// FindChatHistory returns the conversation between two users in a store, oldest first.
func (dao *ChatMessageDAO) FindChatHistory(ctx context.Context, storeID, user1, user2 int) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	err := dao.DB.WithContext(ctx).
		Preload("Sender").
		Preload("Receiver").
		Preload("Store").
		Where(pairCondition, storeID, user1, user2, user2, user1).
		Order("sent_at ASC").
		Order("id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// FindChatPartnersAsReceiver lists the distinct users userID has sent messages to.
func (dao *ChatMessageDAO) FindChatPartnersAsReceiver(ctx context.Context, storeID, userID int) ([]models.User, error) {
	return dao.findPartners(ctx, storeID, userID, "receiver_id", "sender_id")
}

// FindChatPartnersAsSender lists the distinct users who have sent messages to userID.
func (dao *ChatMessageDAO) FindChatPartnersAsSender(ctx context.Context, storeID, userID int) ([]models.User, error) {
	return dao.findPartners(ctx, storeID, userID, "sender_id", "receiver_id")
}

func (dao *ChatMessageDAO) findPartners(ctx context.Context, storeID, userID int, partnerCol, selfCol string) ([]models.User, error) {
	var users []models.User
	sub := dao.DB.Model(&models.ChatMessage{}).
		Select(partnerCol).
		Where("store_id = ? AND "+selfCol+" = ?", storeID, userID)
	err := dao.DB.WithContext(ctx).
		Where("id IN (?)", sub).
		Order("id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// FindLatestMessage returns nil, nil when the pair has never talked in the store.
func (dao *ChatMessageDAO) FindLatestMessage(ctx context.Context, storeID, user1, user2 int) (*models.ChatMessage, error) {
	var msg models.ChatMessage
	err := dao.DB.WithContext(ctx).
		Preload("Sender").
		Preload("Receiver").
		Preload("Store").
		Where(pairCondition, storeID, user1, user2, user2, user1).
		Order("sent_at DESC").
		Order("id DESC").
		First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (dao *ChatMessageDAO) CountUnreadMessages(ctx context.Context, receiverID, storeID int) (int64, error) {
	var count int64
	err := dao.DB.WithContext(ctx).
		Model(&models.ChatMessage{}).
		Where("receiver_id = ? AND store_id = ? AND is_read = ?", receiverID, storeID, false).
		Count(&count).Error
	return count, err
}

// MarkAllAsRead flags every unread message from sender to receiver in the
// store as read in one statement and reports how many rows changed.
func (dao *ChatMessageDAO) MarkAllAsRead(ctx context.Context, receiverID, senderID, storeID int) (int64, error) {
	res := dao.DB.WithContext(ctx).
		Model(&models.ChatMessage{}).
		Where("receiver_id = ? AND sender_id = ? AND store_id = ? AND is_read = ?", receiverID, senderID, storeID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
