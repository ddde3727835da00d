package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"cuahang/cuahang/services/broker"
	"cuahang/cuahang/sources/psql/dao"
	"cuahang/cuahang/sources/psql/models"
	"cuahang/cuahang/utils/apperr"
	"cuahang/cuahang/utils/logging"
	"cuahang/cuahang/utils/types"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

// Inbound frame types on the chat WebSocket.
const (
	FrameSendMessage = "chat.sendMessage"
	FrameTyping      = "chat.typing"
)

const (
	sendFailedPrefix   = "Không thể gửi tin nhắn: "
	typingFailedPrefix = "Không thể gửi trạng thái đang nhập: "
	readLimit          = 64 << 10
	writeTimeout       = 10 * time.Second
)

type ChatController struct {
	chatDAO  *dao.ChatMessageDAO
	userDAO  *dao.UserDAO
	storeDAO *dao.StoreDAO
	hub      *broker.Hub
	deliver  broker.Deliverer
	now      func() time.Time
}

// NewChatController wires the message store to a delivery backend. The hub
// holds this instance's live sessions; deliverer may be the hub itself or a
// relay that reaches other instances too.
func NewChatController(chatDAO *dao.ChatMessageDAO, userDAO *dao.UserDAO, storeDAO *dao.StoreDAO, hub *broker.Hub, deliverer broker.Deliverer) *ChatController {
	return &ChatController{
		chatDAO:  chatDAO,
		userDAO:  userDAO,
		storeDAO: storeDAO,
		hub:      hub,
		deliver:  deliverer,
		now:      time.Now,
	}
}

// SendOutcome is either a delivered message or the reason the send failed.
type SendOutcome struct {
	Message *types.ChatMessageDTO
	Reason  string
}

func (o SendOutcome) Delivered() bool {
	return o.Message != nil
}

func failed(format string, args ...any) SendOutcome {
	return SendOutcome{Reason: fmt.Sprintf(format, args...)}
}

// SendMessage resolves the participants and persists the message. It does
// not deliver anything; see HandleSend.
func (c *ChatController) SendMessage(ctx context.Context, authUserID int, req types.ChatMessageRequest) SendOutcome {
	if req.SenderID == 0 {
		req.SenderID = authUserID
	}
	if req.SenderID != authUserID {
		return failed("người gửi không hợp lệ")
	}

	sender, err := c.userDAO.GetUserByID(ctx, req.SenderID)
	if err != nil {
		return failed("không tải được người gửi: %v", err)
	}
	if sender == nil {
		return failed("không tìm thấy người gửi %d", req.SenderID)
	}
	receiver, err := c.userDAO.GetUserByID(ctx, req.ReceiverID)
	if err != nil {
		return failed("không tải được người nhận: %v", err)
	}
	if receiver == nil {
		return failed("không tìm thấy người nhận %d", req.ReceiverID)
	}
	store, err := c.storeDAO.GetStoreByID(ctx, req.StoreID)
	if err != nil {
		return failed("không tải được cửa hàng: %v", err)
	}
	if store == nil {
		return failed("không tìm thấy cửa hàng %d", req.StoreID)
	}

	msg := models.ChatMessage{
		SenderID:   sender.ID,
		Sender:     *sender,
		ReceiverID: receiver.ID,
		Receiver:   *receiver,
		StoreID:    store.ID,
		Store:      *store,
		Body:       req.Body,
		FileURL:    req.FileURL,
		SentAt:     c.now(),
		Read:       false,
	}
	if err := c.chatDAO.SaveMessage(ctx, &msg); err != nil {
		return failed("không lưu được tin nhắn: %v", err)
	}
	dto := toMessageDTO(msg)
	return SendOutcome{Message: &dto}
}

// HandleSend runs SendMessage and pushes the result: the message to the
// receiver and back to the sender on success, an error notice to the
// sender otherwise.
func (c *ChatController) HandleSend(ctx context.Context, authUserID int, req types.ChatMessageRequest) SendOutcome {
	outcome := c.SendMessage(ctx, authUserID, req)
	if outcome.Delivered() {
		msg := outcome.Message
		err := c.deliver.Deliver(ctx, msg.ReceiverID, broker.ChannelMessages, msg)
		if err == nil {
			err = c.deliver.Deliver(ctx, msg.SenderID, broker.ChannelMessages, msg)
		}
		if err == nil {
			return outcome
		}
		outcome = failed("không chuyển được tin nhắn: %v", err)
	}

	logging.ErrorLogger.Error("chat send failed",
		zap.Int("user_id", authUserID),
		zap.Int("receiver_id", req.ReceiverID),
		zap.Int("store_id", req.StoreID),
		zap.String("reason", outcome.Reason),
	)
	c.notifyError(ctx, authUserID, sendFailedPrefix+outcome.Reason)
	return outcome
}

// UserTyping relays a typing indicator verbatim to the receiver named by
// its receiverId field. A missing or malformed id is reported back to the
// caller on the errors channel.
func (c *ChatController) UserTyping(ctx context.Context, authUserID int, info map[string]any) error {
	receiverID, ok := parseUserID(info["receiverId"])
	if !ok {
		err := apperr.InvalidArg("receiverId không hợp lệ")
		c.notifyError(ctx, authUserID, typingFailedPrefix+err.Error())
		return err
	}
	if err := c.deliver.Deliver(ctx, receiverID, broker.ChannelTyping, info); err != nil {
		c.notifyError(ctx, authUserID, typingFailedPrefix+err.Error())
		return err
	}
	return nil
}

func (c *ChatController) notifyError(ctx context.Context, userID int, message string) {
	if err := c.deliver.Deliver(ctx, userID, broker.ChannelErrors, types.ChatError{Error: message}); err != nil {
		logging.ErrorLogger.Error("chat error notice not delivered", zap.Int("user_id", userID), zap.Error(err))
	}
}

// parseUserID accepts a positive integral JSON number or a numeric string.
func parseUserID(v any) (int, bool) {
	switch id := v.(type) {
	case float64:
		if id <= 0 || id != math.Trunc(id) || id > math.MaxInt32 {
			return 0, false
		}
		return int(id), true
	case int:
		return id, id > 0
	case json.Number:
		n, err := strconv.Atoi(id.String())
		return n, err == nil && n > 0
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(id))
		return n, err == nil && n > 0
	default:
		return 0, false
	}
}

type inboundFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ChatWebSocket serves one authenticated connection until it closes.
func (c *ChatController) ChatWebSocket(ctx context.Context, conn *websocket.Conn, userID int) {
	defer conn.Close(websocket.StatusInternalError, "internal error")
	conn.SetReadLimit(readLimit)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	session := c.hub.Register(userID)
	defer c.hub.Unregister(session)

	go func() {
		defer cancel()
		for frame := range session.Send() {
			writeCtx, writeCancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(writeCtx, websocket.MessageText, frame)
			writeCancel()
			if err != nil {
				logging.ErrorLogger.Error("websocket write error", zap.Int("user_id", userID), zap.Error(err))
				return
			}
		}
	}()

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || websocket.CloseStatus(err) == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			logging.ErrorLogger.Error("websocket read error", zap.Int("user_id", userID), zap.Error(err))
			return
		}
		if typ != websocket.MessageText {
			c.notifyError(ctx, userID, "unsupported data")
			continue
		}
		c.dispatchFrame(ctx, userID, data)
	}
}

func (c *ChatController) dispatchFrame(ctx context.Context, userID int, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			logging.ErrorLogger.Error("chat frame panic", zap.Int("user_id", userID), zap.Any("recover", r))
			c.notifyError(ctx, userID, fmt.Sprint(r))
		}
	}()

	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		c.notifyError(ctx, userID, "invalid json")
		return
	}
	switch frame.Type {
	case FrameSendMessage:
		var req types.ChatMessageRequest
		if err := json.Unmarshal(frame.Payload, &req); err != nil {
			c.notifyError(ctx, userID, sendFailedPrefix+"invalid payload")
			return
		}
		c.HandleSend(ctx, userID, req)
	case FrameTyping:
		// UseNumber keeps numeric fields exactly as the client sent them.
		var info map[string]any
		d := json.NewDecoder(bytes.NewReader(frame.Payload))
		d.UseNumber()
		if err := d.Decode(&info); err != nil || info == nil {
			c.notifyError(ctx, userID, typingFailedPrefix+"invalid payload")
			return
		}
		_ = c.UserTyping(ctx, userID, info)
	default:
		c.notifyError(ctx, userID, "unknown frame type "+strconv.Quote(frame.Type))
	}
}

// ---- REST side of the message store ----

func (c *ChatController) ListStores(ctx context.Context) ([]models.Store, error) {
	return c.storeDAO.GetAllStores(ctx)
}

func (c *ChatController) requireStore(ctx context.Context, storeID int) error {
	store, err := c.storeDAO.GetStoreByID(ctx, storeID)
	if err != nil {
		return err
	}
	if store == nil {
		return apperr.NotFound("store not found")
	}
	return nil
}

// Partners merges the users the caller wrote to and the users who wrote to
// the caller in a store, without duplicates, each with the latest message.
func (c *ChatController) Partners(ctx context.Context, userID, storeID int) ([]types.ChatPartner, error) {
	if err := c.requireStore(ctx, storeID); err != nil {
		return nil, err
	}
	receivers, err := c.chatDAO.FindChatPartnersAsReceiver(ctx, storeID, userID)
	if err != nil {
		return nil, err
	}
	senders, err := c.chatDAO.FindChatPartnersAsSender(ctx, storeID, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	partners := make([]types.ChatPartner, 0, len(receivers)+len(senders))
	for _, u := range append(receivers, senders...) {
		if seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		p := types.ChatPartner{
			UserID:      u.ID,
			Username:    u.Username,
			DisplayName: u.DisplayName(),
			ImageURL:    u.ImageURL,
		}
		latest, err := c.chatDAO.FindLatestMessage(ctx, storeID, userID, u.ID)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			dto := toMessageDTO(*latest)
			p.LatestMessage = &dto
		}
		partners = append(partners, p)
	}
	return partners, nil
}

// History opens a conversation: messages from the partner are marked read
// first, then the whole conversation is returned oldest first.
func (c *ChatController) History(ctx context.Context, userID, storeID, partnerID int) ([]types.ChatMessageDTO, error) {
	if err := c.requireStore(ctx, storeID); err != nil {
		return nil, err
	}
	if _, err := c.chatDAO.MarkAllAsRead(ctx, userID, partnerID, storeID); err != nil {
		return nil, err
	}
	msgs, err := c.chatDAO.FindChatHistory(ctx, storeID, userID, partnerID)
	if err != nil {
		return nil, err
	}
	out := make([]types.ChatMessageDTO, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageDTO(m))
	}
	return out, nil
}

func (c *ChatController) MarkRead(ctx context.Context, userID, storeID, partnerID int) (int64, error) {
	if err := c.requireStore(ctx, storeID); err != nil {
		return 0, err
	}
	return c.chatDAO.MarkAllAsRead(ctx, userID, partnerID, storeID)
}

func (c *ChatController) Unread(ctx context.Context, userID, storeID int) (types.UnreadCount, error) {
	if err := c.requireStore(ctx, storeID); err != nil {
		return types.UnreadCount{}, err
	}
	n, err := c.chatDAO.CountUnreadMessages(ctx, userID, storeID)
	if err != nil {
		return types.UnreadCount{}, err
	}
	return types.UnreadCount{StoreID: storeID, Unread: n}, nil
}

func toMessageDTO(m models.ChatMessage) types.ChatMessageDTO {
	return types.ChatMessageDTO{
		ID:             m.ID,
		SenderID:       m.SenderID,
		SenderName:     m.Sender.DisplayName(),
		SenderAvatar:   m.Sender.ImageURL,
		ReceiverID:     m.ReceiverID,
		ReceiverName:   m.Receiver.DisplayName(),
		ReceiverAvatar: m.Receiver.ImageURL,
		StoreID:        m.StoreID,
		StoreName:      m.Store.Name,
		Body:           m.Body,
		FileURL:        m.FileURL,
		SentAt:         m.SentAt,
		Read:           m.Read,
	}
}
