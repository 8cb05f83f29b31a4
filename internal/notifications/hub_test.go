package notifications

import (
	"context"
	"sync/atomic"
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

func TestHub_RoomIsolation(t *testing.T) {
	hub := NewHub()

	recipient, err := hub.Register(42, nil)
	assert.NoError(t, err)
	bystander, err := hub.Register(7, nil)
	assert.NoError(t, err)

	hub.Broadcast(42, `{"type":"new_notification"}`)

	select {
	case msg := <-recipient.Send:
		assert.JSONEq(t, `{"type":"new_notification"}`, string(msg))
	default:
		t.Fatal("recipient did not receive the event")
	}

	select {
	case msg := <-bystander.Send:
		t.Fatalf("bystander received an event meant for another user: %s", msg)
	default:
	}
}

func TestHub_BroadcastReachesEveryConnectionOfUser(t *testing.T) {
	hub := NewHub()

	first, err := hub.Register(5, nil)
	assert.NoError(t, err)
	second, err := hub.Register(5, nil)
	assert.NoError(t, err)

	hub.Broadcast(5, "hello")

	for _, c := range []*Client{first, second} {
		select {
		case msg := <-c.Send:
			assert.Equal(t, "hello", string(msg))
		default:
			t.Fatal("connection missed a room event")
		}
	}
}

func TestHub_BroadcastAll(t *testing.T) {
	hub := NewHub()

	a, err := hub.Register(1, nil)
	assert.NoError(t, err)
	b, err := hub.Register(2, nil)
	assert.NoError(t, err)

	hub.BroadcastAll("everyone")

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.Send:
			assert.Equal(t, "everyone", string(msg))
		default:
			t.Fatal("connection missed the broadcast")
		}
	}
}

func TestHub_PerUserConnectionLimit(t *testing.T) {
	hub := NewHub()

	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(9, nil)
		assert.NoError(t, err)
	}

	_, err := hub.Register(9, nil)
	assert.Error(t, err)
	assert.Equal(t, maxConnsPerUser, hub.ConnectionCount(9))
}

func TestHub_UnregisterRemovesRoomWhenEmpty(t *testing.T) {
	hub := NewHub()

	client, err := hub.Register(3, nil)
	assert.NoError(t, err)
	assert.True(t, hub.IsOnline(3))

	hub.UnregisterClient(client)
	assert.False(t, hub.IsOnline(3))

	// Unregistering twice is harmless
	hub.UnregisterClient(client)
	assert.Equal(t, 0, hub.ConnectionCount(3))
}

func TestHub_StartWiringRoutesRedisEvents(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	hub := NewHub()
	notifier := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, notifier))

	recipient, err := hub.Register(42, nil)
	require.NoError(t, err)
	bystander, err := hub.Register(7, nil)
	require.NoError(t, err)

	var delivered int32
	go func() {
		select {
		case <-recipient.Send:
			atomic.AddInt32(&delivered, 1)
		case <-time.After(testEventuallyTimeout):
		}
	}()

	require.NoError(t, notifier.PublishUser(context.Background(), 42, `{"type":"new_notification"}`))

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&delivered) == 1
	}, testEventuallyTimeout, testPollInterval)

	select {
	case msg := <-bystander.Send:
		t.Fatalf("bystander received an event for another user's room: %s", msg)
	default:
	}
}
