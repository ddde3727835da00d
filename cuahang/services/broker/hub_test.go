package broker

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEnvelope(t *testing.T, s *Session) Envelope {
	t.Helper()
	select {
	case frame := <-s.Send():
		var env Envelope
		require.NoError(t, json.Unmarshal(frame, &env))
		return env
	default:
		t.Fatalf("no frame queued for session %s", s.ID)
		return Envelope{}
	}
}

func TestHub_DeliverReachesEverySessionOfUser(t *testing.T) {
	h := NewHub()
	tab1 := h.Register(7)
	tab2 := h.Register(7)
	stranger := h.Register(8)

	err := h.Deliver(context.Background(), 7, ChannelMessages, map[string]string{"body": "xin chao"})
	require.NoError(t, err)

	for _, s := range []*Session{tab1, tab2} {
		env := readEnvelope(t, s)
		assert.Equal(t, ChannelMessages, env.Channel)
		assert.JSONEq(t, `{"body":"xin chao"}`, string(env.Payload))
	}
	assert.Empty(t, stranger.Send())
}

func TestHub_OfflineUserIsNotAnError(t *testing.T) {
	h := NewHub()
	require.NoError(t, h.Deliver(context.Background(), 42, ChannelTyping, map[string]any{"isTyping": true}))
	assert.Zero(t, h.DeliverRaw(42, []byte(`{}`)))
}

func TestHub_UnregisterClosesQueue(t *testing.T) {
	h := NewHub()
	s := h.Register(1)
	assert.Equal(t, 1, h.Online(1))

	h.Unregister(s)
	h.Unregister(s)
	assert.Zero(t, h.Online(1))

	_, open := <-s.Send()
	assert.False(t, open)
	assert.Zero(t, h.DeliverRaw(1, []byte(`{}`)))
}

func TestHub_FullQueueDropsFrame(t *testing.T) {
	h := NewHub()
	h.queueSize = 1
	s := h.Register(3)

	assert.Equal(t, 1, h.DeliverRaw(3, []byte(`1`)))
	assert.Equal(t, 0, h.DeliverRaw(3, []byte(`2`)))
	assert.Equal(t, []byte(`1`), <-s.Send())
}

func TestHub_ConcurrentDeliverAndUnregister(t *testing.T) {
	h := NewHub()
	sessions := make([]*Session, 10)
	for i := range sessions {
		sessions[i] = h.Register(5)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = h.Deliver(context.Background(), 5, ChannelMessages, i)
		}(i)
	}
	for _, s := range sessions {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			h.Unregister(s)
		}(s)
	}
	wg.Wait()
	assert.Zero(t, h.Online(5))
}

func TestUserFromTopic(t *testing.T) {
	id, ok := userFromTopic(topic(12))
	assert.True(t, ok)
	assert.Equal(t, 12, id)

	_, ok = userFromTopic("other:12")
	assert.False(t, ok)
	_, ok = userFromTopic(topicPrefix + "abc")
	assert.False(t, ok)
}
