package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roastkoff/controlposter/internal/db/dbtest"
	"github.com/roastkoff/controlposter/internal/errs"
	"github.com/roastkoff/controlposter/internal/model"
)

const recvWait = 2 * time.Second

// chanFeed is an in-process Feed so tests run without Redis. Publish
// pushes a coalesced signal the same way the Redis feed does.
type chanFeed struct {
	signals chan struct{}
}

func newChanFeed() *chanFeed {
	return &chanFeed{signals: make(chan struct{}, 1)}
}

func (f *chanFeed) Publish(ctx context.Context, tenantID int) error {
	select {
	case f.signals <- struct{}{}:
	default:
	}
	return nil
}

func (f *chanFeed) Subscribe(ctx context.Context, tenantID int) (<-chan struct{}, func(), error) {
	return f.signals, func() {}, nil
}

type failingFeed struct{}

func (failingFeed) Subscribe(ctx context.Context, tenantID int) (<-chan struct{}, func(), error) {
	return nil, nil, errors.New("connection refused")
}

func recv(t *testing.T, sub *Subscription) []model.Display {
	t.Helper()
	select {
	case snapshot, ok := <-sub.C:
		require.True(t, ok, "subscription closed unexpectedly: %v", sub.Err())
		return snapshot
	case <-time.After(recvWait):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func claim(t *testing.T, store *dbtest.Store, tenantID int, code, name string, groupID *int) int {
	t.Helper()
	ctx := context.Background()
	_, err := store.CreatePairingSession(ctx, code, nil)
	require.NoError(t, err)
	id, err := store.ClaimPairingSession(ctx, code, tenantID, groupID, name, nil)
	require.NoError(t, err)
	return id
}

func names(snapshot []model.Display) []string {
	out := make([]string, 0, len(snapshot))
	for _, d := range snapshot {
		out = append(out, d.Name)
	}
	return out
}

func TestObserveDeliversInitialSnapshotOrdered(t *testing.T) {
	store := dbtest.New()
	ctx := context.Background()

	g, err := store.CreateGroup(ctx, 1, "lobby")
	require.NoError(t, err)

	// insertion order deliberately scrambled
	claim(t, store, 1, "CODE01", "zeta", &g.ID)
	claim(t, store, 1, "CODE02", "beta", nil)
	claim(t, store, 1, "CODE03", "alpha", &g.ID)

	dir := New(store, newChanFeed())
	sub, err := dir.Observe(ctx, 1, nil)
	require.NoError(t, err)
	defer sub.Cancel()

	// ungrouped first, then by name within the group
	assert.Equal(t, []string{"beta", "alpha", "zeta"}, names(recv(t, sub)))
}

func TestObserveRedeliversOnChange(t *testing.T) {
	store := dbtest.New()
	feed := newChanFeed()
	ctx := context.Background()

	claim(t, store, 1, "CODE01", "beta", nil)

	dir := New(store, feed)
	sub, err := dir.Observe(ctx, 1, nil)
	require.NoError(t, err)
	defer sub.Cancel()

	assert.Equal(t, []string{"beta"}, names(recv(t, sub)))

	claim(t, store, 1, "CODE02", "alpha", nil)
	require.NoError(t, feed.Publish(ctx, 1))

	// the new display lands sorted into the full snapshot
	assert.Equal(t, []string{"alpha", "beta"}, names(recv(t, sub)))
}

func TestObserveGroupFilter(t *testing.T) {
	store := dbtest.New()
	ctx := context.Background()

	g, err := store.CreateGroup(ctx, 1, "lobby")
	require.NoError(t, err)
	claim(t, store, 1, "CODE01", "grouped", &g.ID)
	claim(t, store, 1, "CODE02", "ungrouped", nil)

	dir := New(store, newChanFeed())
	sub, err := dir.Observe(ctx, 1, &g.ID)
	require.NoError(t, err)
	defer sub.Cancel()

	assert.Equal(t, []string{"grouped"}, names(recv(t, sub)))
}

func TestObserveIsTenantScoped(t *testing.T) {
	store := dbtest.New()
	ctx := context.Background()

	claim(t, store, 1, "CODE01", "mine", nil)
	claim(t, store, 2, "CODE02", "theirs", nil)

	dir := New(store, newChanFeed())
	sub, err := dir.Observe(ctx, 1, nil)
	require.NoError(t, err)
	defer sub.Cancel()

	assert.Equal(t, []string{"mine"}, names(recv(t, sub)))
}

func TestCancelStopsDelivery(t *testing.T) {
	store := dbtest.New()
	feed := newChanFeed()
	ctx := context.Background()

	claim(t, store, 1, "CODE01", "only", nil)

	dir := New(store, feed)
	sub, err := dir.Observe(ctx, 1, nil)
	require.NoError(t, err)

	recv(t, sub)
	sub.Cancel()
	sub.Cancel() // idempotent

	select {
	case _, ok := <-sub.C:
		assert.False(t, ok, "no snapshot may arrive after cancel")
	case <-time.After(recvWait):
		t.Fatal("subscription channel did not close after cancel")
	}
	assert.NoError(t, sub.Err())
}

func TestContextCancelStopsDelivery(t *testing.T) {
	store := dbtest.New()
	ctx, cancel := context.WithCancel(context.Background())

	dir := New(store, newChanFeed())
	sub, err := dir.Observe(ctx, 1, nil)
	require.NoError(t, err)

	recv(t, sub)
	cancel()

	select {
	case _, ok := <-sub.C:
		assert.False(t, ok)
	case <-time.After(recvWait):
		t.Fatal("subscription channel did not close after context cancel")
	}
}

func TestFeedFailureSurfacesAsSubscriptionError(t *testing.T) {
	dir := New(dbtest.New(), failingFeed{})

	_, err := dir.Observe(context.Background(), 1, nil)
	assert.ErrorIs(t, err, errs.ErrSubscription)
}

func TestFeedClosingTerminatesSubscription(t *testing.T) {
	store := dbtest.New()
	feed := newChanFeed()

	dir := New(store, feed)
	sub, err := dir.Observe(context.Background(), 1, nil)
	require.NoError(t, err)

	recv(t, sub)
	close(feed.signals)

	select {
	case _, ok := <-sub.C:
		assert.False(t, ok)
	case <-time.After(recvWait):
		t.Fatal("subscription channel did not close after feed died")
	}
	assert.ErrorIs(t, sub.Err(), errs.ErrSubscription)
}
