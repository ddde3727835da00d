package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"cuahang/cuahang/controllers"
	"cuahang/cuahang/services/broker"
	"cuahang/cuahang/sources/psql/dao"
	"cuahang/cuahang/sources/psql/models"
	"cuahang/cuahang/utils/types"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatEnv struct {
	server        *httptest.Server
	hub           *broker.Hub
	buyer, vendor models.User
	store         models.Store
}

func newChatEnv(t *testing.T) chatEnv {
	db := setupTestDB(t)
	buyer := seedUser(t, db, "buyer", models.RoleCustomer)
	vendor := seedUser(t, db, "vendor", models.RoleVendor)
	store := models.Store{OwnerID: vendor.ID, Name: "Shop"}
	require.NoError(t, db.Create(&store).Error)

	hub := broker.NewHub()
	ctrl := controllers.NewChatController(dao.NewChatMessageDAO(db), dao.NewUserDAO(db), dao.NewStoreDAO(db), hub, hub)
	r := chi.NewRouter()
	r.Mount("/chat", ChatRoutes(ctrl, testCfg))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return chatEnv{server: srv, hub: hub, buyer: buyer, vendor: vendor, store: store}
}

func (env chatEnv) dial(t *testing.T, ctx context.Context, u models.User) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/chat/ws?token=" + tokenFor(t, u)
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	require.Eventually(t, func() bool { return env.hub.Online(u.ID) > 0 }, 2*time.Second, 10*time.Millisecond)
	return conn
}

func readEnvelope(t *testing.T, ctx context.Context, conn *websocket.Conn) broker.Envelope {
	t.Helper()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var env broker.Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func TestChatWebSocket_SendReachesBothParties(t *testing.T) {
	env := newChatEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	vendorConn := env.dial(t, ctx, env.vendor)
	buyerConn := env.dial(t, ctx, env.buyer)

	frame := `{"type":"chat.sendMessage","payload":{"receiverId":` + strconv.Itoa(env.vendor.ID) +
		`,"storeId":` + strconv.Itoa(env.store.ID) + `,"body":"con hang khong?"}}`
	require.NoError(t, buyerConn.Write(ctx, websocket.MessageText, []byte(frame)))

	got := readEnvelope(t, ctx, vendorConn)
	echo := readEnvelope(t, ctx, buyerConn)
	assert.Equal(t, broker.ChannelMessages, got.Channel)
	assert.JSONEq(t, string(got.Payload), string(echo.Payload))

	var msg types.ChatMessageDTO
	require.NoError(t, json.Unmarshal(got.Payload, &msg))
	assert.Equal(t, env.buyer.ID, msg.SenderID)
	assert.Equal(t, "con hang khong?", msg.Body)
	assert.Equal(t, "Shop", msg.StoreName)
}

func TestChatWebSocket_FailureOnlyReachesSender(t *testing.T) {
	env := newChatEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	buyerConn := env.dial(t, ctx, env.buyer)
	frame := `{"type":"chat.sendMessage","payload":{"receiverId":9999,"storeId":` + strconv.Itoa(env.store.ID) + `,"body":"x"}}`
	require.NoError(t, buyerConn.Write(ctx, websocket.MessageText, []byte(frame)))

	got := readEnvelope(t, ctx, buyerConn)
	assert.Equal(t, broker.ChannelErrors, got.Channel)
	var notice types.ChatError
	require.NoError(t, json.Unmarshal(got.Payload, &notice))
	assert.True(t, strings.HasPrefix(notice.Error, "Không thể gửi tin nhắn: "), notice.Error)
}

func TestChatWebSocket_RequiresToken(t *testing.T) {
	env := newChatEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(env.server.URL, "http")+"/chat/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChatREST_PartnersAndUnread(t *testing.T) {
	env := newChatEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	vendorConn := env.dial(t, ctx, env.vendor)
	buyerConn := env.dial(t, ctx, env.buyer)
	frame := `{"type":"chat.sendMessage","payload":{"receiverId":` + strconv.Itoa(env.vendor.ID) +
		`,"storeId":` + strconv.Itoa(env.store.ID) + `,"body":"alo"}}`
	require.NoError(t, buyerConn.Write(ctx, websocket.MessageText, []byte(frame)))
	readEnvelope(t, ctx, vendorConn)

	base := "/chat/stores/" + strconv.Itoa(env.store.ID)
	handler := env.server.Config.Handler
	vendorToken := tokenFor(t, env.vendor)

	rec := do(t, handler, http.MethodGet, base+"/partners", vendorToken, "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var partners partnersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &partners))
	require.Len(t, partners.Partners, 1)
	assert.Equal(t, env.buyer.ID, partners.Partners[0].UserID)
	assert.EqualValues(t, 1, partners.Unread)

	rec = do(t, handler, http.MethodGet, base+"/history/"+strconv.Itoa(env.buyer.ID), vendorToken, "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, handler, http.MethodGet, base+"/unread", vendorToken, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var unread types.UnreadCount
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &unread))
	assert.Zero(t, unread.Unread)

	rec = do(t, handler, http.MethodGet, "/chat/stores/9999/unread", vendorToken, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatWebSocket_TypingRelayedVerbatim(t *testing.T) {
	env := newChatEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	vendorConn := env.dial(t, ctx, env.vendor)
	buyerConn := env.dial(t, ctx, env.buyer)

	payload := `{"clientSeq":12345678901234567,"isTyping":true,"receiverId":` + strconv.Itoa(env.vendor.ID) + `}`
	require.NoError(t, buyerConn.Write(ctx, websocket.MessageText, []byte(`{"type":"chat.typing","payload":`+payload+`}`)))

	got := readEnvelope(t, ctx, vendorConn)
	assert.Equal(t, broker.ChannelTyping, got.Channel)
	assert.Equal(t, payload, string(got.Payload))
}
