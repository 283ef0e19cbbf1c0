package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var Rdb *redis.Client

func InitRedis(redisAddress string, redisUsername string, redisPassword string) {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     redisAddress,
		Username: redisUsername,
		Password: redisPassword,
		DB:       0,
	})
}

// DisplayFeed carries "something changed for this tenant's displays"
// signals between writers and directory subscriptions over Redis pub/sub.
// The payload is irrelevant; subscribers re-query the store on every
// signal and deliver a full snapshot.
type DisplayFeed struct {
	rdb *redis.Client
}

func NewDisplayFeed(rdb *redis.Client) *DisplayFeed {
	if rdb == nil {
		rdb = Rdb
	}
	return &DisplayFeed{rdb: rdb}
}

func channelFor(tenantID int) string {
	return fmt.Sprintf("displays.changed.%d", tenantID)
}

func (f *DisplayFeed) Publish(ctx context.Context, tenantID int) error {
	if err := f.rdb.Publish(ctx, channelFor(tenantID), "1").Err(); err != nil {
		log.Warn().Err(err).Int("tenant_id", tenantID).Msg("failed to publish display change")
		return err
	}
	return nil
}

// Subscribe opens a pub/sub listener for one tenant. The returned channel
// carries coalesced change signals and is closed when the listener dies;
// the returned stop function releases the listener.
func (f *DisplayFeed) Subscribe(ctx context.Context, tenantID int) (<-chan struct{}, func(), error) {
	pubsub := f.rdb.Subscribe(ctx, channelFor(tenantID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	signals := make(chan struct{}, 1)
	go func() {
		defer close(signals)
		for range pubsub.Channel() {
			select {
			case signals <- struct{}{}:
			default:
				// a signal is already pending; snapshots coalesce
			}
		}
	}()

	stop := func() { _ = pubsub.Close() }
	return signals, stop, nil
}
