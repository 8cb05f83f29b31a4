package notifications

import (
	"context"
	"fmt"
	"runtime/debug"
	"strconv"

	"plume/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	userChannelPrefix  = "notifications:user:"
	userChannelPattern = userChannelPrefix + "*"

	// BroadcastChannel carries events addressed to every connected user.
	BroadcastChannel = "notifications:broadcast"
)

// UserChannel names the Redis channel carrying one user's events.
func UserChannel(userID uint) string {
	return userChannelPrefix + strconv.FormatUint(uint64(userID), 10)
}

// Notifier publishes realtime events through Redis pub/sub so that every
// process instance sees them, whichever instance holds the socket. A nil
// Redis client makes every method a no-op; callers then deliver through the
// local hub directly.
type Notifier struct {
	rdb *redis.Client
}

func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser addresses a payload to one user's room.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishBroadcast addresses a payload to every connected user.
func (n *Notifier) PublishBroadcast(ctx context.Context, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, BroadcastChannel, payload).Err()
}

// StartPatternSubscriber subscribes to all user rooms plus the broadcast
// channel and invokes onMessage for each event until ctx is cancelled. The
// callback runs on the subscriber goroutine; a panic in it is contained.
func (n *Notifier) StartPatternSubscriber(ctx context.Context, onMessage func(channel, payload string)) error {
	if n.rdb == nil {
		return nil
	}

	sub := n.rdb.PSubscribe(ctx, userChannelPattern, BroadcastChannel)
	go n.consume(ctx, sub, onMessage)
	return nil
}

func (n *Notifier) consume(ctx context.Context, sub *redis.PubSub, onMessage func(channel, payload string)) {
	defer func() { _ = sub.Close() }()

	events := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			dispatch(ctx, onMessage, msg.Channel, msg.Payload)
		}
	}
}

// dispatch isolates callback panics so one bad event cannot kill the
// subscription.
func dispatch(ctx context.Context, onMessage func(channel, payload string), channel, payload string) {
	defer func() {
		if r := recover(); r != nil {
			observability.LogAsyncOperationError(ctx, "notification dispatch",
				fmt.Errorf("panic: %v", r), map[string]interface{}{
					"channel": channel,
					"stack":   string(debug.Stack()),
				})
		}
	}()
	onMessage(channel, payload)
}
