package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub()

	a, err := hub.Register(10, nil)
	require.NoError(t, err)
	b, err := hub.Register(10, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, hub.Count())

	hub.UnregisterClient(a)
	assert.Equal(t, 1, hub.Count())
	hub.UnregisterClient(b)
	assert.Equal(t, 0, hub.Count())

	// A second unregister must not close the channel twice.
	hub.UnregisterClient(b)
}

func TestHub_PerUserLimit(t *testing.T) {
	hub := NewHub()
	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(3, nil)
		require.NoError(t, err)
	}
	_, err := hub.Register(3, nil)
	assert.ErrorIs(t, err, ErrUserFull)

	require.NoError(t, hub.Shutdown(context.Background()))
	_, err = hub.Register(4, nil)
	assert.ErrorIs(t, err, ErrServerFull)
}

func TestHub_ShutdownClosesSendChannels(t *testing.T) {
	hub := NewHub()
	a, err := hub.Register(1, nil)
	require.NoError(t, err)
	b, err := hub.Register(2, nil)
	require.NoError(t, err)
	a.TrySend([]byte("pending"))

	require.NoError(t, hub.Shutdown(context.Background()))
	assert.Equal(t, 0, hub.Count())

	// Queued messages still drain before the channel reports closed, which
	// is what tells WritePump to send the close frame.
	msg, ok := <-a.Send
	assert.True(t, ok)
	assert.Equal(t, []byte("pending"), msg)
	_, ok = <-a.Send
	assert.False(t, ok)
	_, ok = <-b.Send
	assert.False(t, ok)

	// The read pump unregisters after shutdown; nothing is closed twice.
	assert.NotPanics(t, func() {
		hub.UnregisterClient(a)
		hub.UnregisterClient(b)
		a.TrySend([]byte("late"))
	})
}

func TestHub_BroadcastTargetsUser(t *testing.T) {
	hub := NewHub()
	mine, _ := hub.Register(1, nil)
	other, _ := hub.Register(2, nil)

	hub.Broadcast(1, []byte("hello"))
	assert.Equal(t, []byte("hello"), <-mine.Send)
	assert.Empty(t, other.Send)

	hub.BroadcastAll([]byte("all"))
	assert.Equal(t, []byte("all"), <-mine.Send)
	assert.Equal(t, []byte("all"), <-other.Send)
}

func TestClient_TrySendDropsWhenFull(t *testing.T) {
	hub := NewHub()
	c, _ := hub.Register(1, nil)
	for i := 0; i < sendBuffer; i++ {
		c.TrySend([]byte("x"))
	}
	c.TrySend([]byte("overflow"))
	assert.Len(t, c.Send, sendBuffer)

	hub.UnregisterClient(c)
	assert.NotPanics(t, func() { c.TrySend([]byte("late")) })
}

func TestHub_StartWiringDeliversPublishedEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	n := NewNotifier(rdb)
	require.NoError(t, hub.StartWiring(ctx, n))

	c, err := hub.Register(7, nil)
	require.NoError(t, err)

	require.NoError(t, n.PublishUser(ctx, 7, Event{Type: EventFollowed, ActorID: 3}))

	var got []byte
	require.Eventually(t, func() bool {
		select {
		case got = <-c.Send:
			return true
		default:
			return false
		}
	}, testEventuallyTimeout, testPollInterval)

	var ev Event
	require.NoError(t, json.Unmarshal(got, &ev))
	assert.Equal(t, EventFollowed, ev.Type)
	assert.Equal(t, uint(3), ev.ActorID)
	assert.False(t, ev.At.IsZero())
}
