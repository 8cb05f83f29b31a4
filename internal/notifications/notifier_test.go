package notifications

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(t *testing.T) *Notifier {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewNotifier(rdb)
}

func TestNotifier_NilClientIsNoop(t *testing.T) {
	n := NewNotifier(nil)

	assert.NoError(t, n.PublishUser(context.Background(), 1, "payload"))
	assert.NoError(t, n.PublishBroadcast(context.Background(), "payload"))
	assert.NoError(t, n.StartPatternSubscriber(context.Background(), func(string, string) {
		t.Fatal("no subscription should exist without redis")
	}))
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	for _, id := range []uint{1, 100, 4096} {
		assert.Equal(t, fmt.Sprintf("notifications:user:%d", id), UserChannel(id))
	}
}

func TestNotifier_UserEventsReachSubscriber(t *testing.T) {
	n := newTestNotifier(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type event struct{ channel, payload string }
	got := make(chan event, 4)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(channel, payload string) {
		got <- event{channel, payload}
	}))

	require.NoError(t, n.PublishUser(context.Background(), 42, `{"type":"new_notification"}`))

	select {
	case ev := <-got:
		assert.Equal(t, UserChannel(42), ev.channel)
		assert.JSONEq(t, `{"type":"new_notification"}`, ev.payload)
	case <-time.After(time.Second):
		t.Fatal("published event never reached the subscriber")
	}
}

func TestNotifier_BroadcastChannel(t *testing.T) {
	n := newTestNotifier(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	channels := make(chan string, 1)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(channel, _ string) {
		channels <- channel
	}))

	require.NoError(t, n.PublishBroadcast(context.Background(), "maintenance"))

	select {
	case ch := <-channels:
		assert.Equal(t, BroadcastChannel, ch)
	case <-time.After(time.Second):
		t.Fatal("broadcast was not delivered to the pattern subscriber")
	}
}

func TestNotifier_SubscriberStopsOnCancel(t *testing.T) {
	n := newTestNotifier(t)
	ctx, cancel := context.WithCancel(context.Background())

	payloads := make(chan string, 4)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(_, payload string) {
		payloads <- payload
	}))

	require.NoError(t, n.PublishUser(context.Background(), 1, "before-cancel"))
	select {
	case p := <-payloads:
		require.Equal(t, "before-cancel", p)
	case <-time.After(time.Second):
		t.Fatal("pre-cancel event was not delivered")
	}

	cancel()
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, n.PublishUser(context.Background(), 1, "after-cancel"))
	assert.Never(t, func() bool {
		select {
		case p := <-payloads:
			return p == "after-cancel"
		default:
			return false
		}
	}, 200*time.Millisecond, 10*time.Millisecond)
}
