// Package directory maintains the live, tenant-scoped view of displays.
// Reads flow store -> subscription -> snapshot -> caller; writes elsewhere
// publish a change signal and are re-observed through the same path.
package directory

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/roastkoff/controlposter/internal/errs"
	"github.com/roastkoff/controlposter/internal/model"
)

// Lister is the slice of the store the directory reads from.
type Lister interface {
	ListDisplays(ctx context.Context, tenantID int, groupID *int) ([]model.Display, error)
}

// Feed delivers change signals for a tenant's displays. The production
// implementation is Redis pub/sub; tests use an in-process feed.
type Feed interface {
	Subscribe(ctx context.Context, tenantID int) (<-chan struct{}, func(), error)
}

// Publisher is the write-side half of a Feed.
type Publisher interface {
	Publish(ctx context.Context, tenantID int) error
}

// Subscription is one live display-list stream. C delivers full snapshots,
// never diffs; it closes after Cancel or after a feed/store failure, in
// which case Err reports the cause.
type Subscription struct {
	C <-chan []model.Display

	cancelOnce sync.Once
	done       chan struct{}

	mu  sync.Mutex
	err error
}

// Cancel stops delivery and releases the underlying listener. Safe to call
// more than once and safe to call concurrently with delivery; no snapshot
// is sent after the subscription's channel closes.
func (s *Subscription) Cancel() {
	s.cancelOnce.Do(func() { close(s.done) })
}

// Err returns the terminal error, if any, once C has closed. A plain
// Cancel leaves it nil.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Subscription) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

type Directory struct {
	store Lister
	feed  Feed
}

func New(store Lister, feed Feed) *Directory {
	return &Directory{store: store, feed: feed}
}

// Observe opens a standing subscription over the tenant's displays,
// optionally narrowed to one group. The first snapshot is delivered
// without waiting for a change. Snapshots are ordered by group then name;
// when no group filter is given, ungrouped displays sort first.
//
// Each call owns its own listener (one subscription per call, not
// multicast). The component never retries a failed feed; that is the
// caller's decision.
func (d *Directory) Observe(ctx context.Context, tenantID int, groupID *int) (*Subscription, error) {
	signals, stopFeed, err := d.feed.Subscribe(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrSubscription, err)
	}

	out := make(chan []model.Display)
	sub := &Subscription{C: out, done: make(chan struct{})}

	go func() {
		defer close(out)
		defer stopFeed()

		deliver := func() bool {
			snapshot, err := d.store.ListDisplays(ctx, tenantID, groupID)
			if err != nil {
				log.Error().Err(err).Int("tenant_id", tenantID).Msg("display snapshot query failed")
				sub.setErr(fmt.Errorf("%w: %v", errs.ErrSubscription, err))
				return false
			}
			select {
			case out <- snapshot:
				return true
			case <-sub.done:
				return false
			case <-ctx.Done():
				return false
			}
		}

		if !deliver() {
			return
		}
		for {
			select {
			case <-sub.done:
				return
			case <-ctx.Done():
				return
			case _, ok := <-signals:
				if !ok {
					sub.setErr(errs.ErrSubscription)
					return
				}
				if !deliver() {
					return
				}
			}
		}
	}()

	return sub, nil
}
