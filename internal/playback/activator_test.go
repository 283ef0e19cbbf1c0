package playback

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roastkoff/controlposter/internal/db/dbtest"
	"github.com/roastkoff/controlposter/internal/errs"
)

const (
	testWait = 2 * time.Second
	testTick = 10 * time.Millisecond
)

type nopFeed struct{}

func (nopFeed) Publish(ctx context.Context, tenantID int) error { return nil }

type recordingNotifier struct {
	mu    sync.Mutex
	calls [][2]int
}

func (n *recordingNotifier) PlaylistChanged(displayID, playlistID int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, [2]int{displayID, playlistID})
}

func activeIDs(t *testing.T, store *dbtest.Store, tenantID int) []int {
	t.Helper()
	playlists, err := store.ListPlaylists(context.Background(), tenantID, nil)
	require.NoError(t, err)
	var out []int
	for _, p := range playlists {
		if p.Active {
			out = append(out, p.ID)
		}
	}
	return out
}

func TestSetActiveClearsSiblingsInScope(t *testing.T) {
	store := dbtest.New()
	act := NewActivator(store, nopFeed{}, nil)
	ctx := context.Background()

	group := 1
	a, err := store.CreatePlaylist(ctx, 1, &group, nil, "morning", true, false, 7000)
	require.NoError(t, err)
	b, err := store.CreatePlaylist(ctx, 1, &group, nil, "evening", true, false, 7000)
	require.NoError(t, err)

	require.NoError(t, act.SetActive(ctx, 1, a.ID, &group, nil, true))
	assert.Equal(t, []int{a.ID}, activeIDs(t, store, 1))

	require.NoError(t, act.SetActive(ctx, 1, b.ID, &group, nil, true))
	assert.Equal(t, []int{b.ID}, activeIDs(t, store, 1))
}

func TestSetActiveLeavesOtherScopesAlone(t *testing.T) {
	store := dbtest.New()
	act := NewActivator(store, nopFeed{}, nil)
	ctx := context.Background()

	g1, g2 := 1, 2
	a, err := store.CreatePlaylist(ctx, 1, &g1, nil, "lobby", true, false, 7000)
	require.NoError(t, err)
	b, err := store.CreatePlaylist(ctx, 1, &g2, nil, "cafe", true, false, 7000)
	require.NoError(t, err)

	require.NoError(t, act.SetActive(ctx, 1, a.ID, &g1, nil, true))
	require.NoError(t, act.SetActive(ctx, 1, b.ID, &g2, nil, true))

	assert.ElementsMatch(t, []int{a.ID, b.ID}, activeIDs(t, store, 1))
}

func TestConcurrentActivationsLeaveOneActive(t *testing.T) {
	store := dbtest.New()
	act := NewActivator(store, nopFeed{}, nil)
	ctx := context.Background()

	group := 1
	const n = 10
	ids := make([]int, 0, n)
	for i := 0; i < n; i++ {
		p, err := store.CreatePlaylist(ctx, 1, &group, nil, "p", true, false, 7000)
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			assert.NoError(t, act.SetActive(ctx, 1, id, &group, nil, true))
		}(id)
	}
	wg.Wait()

	active := activeIDs(t, store, 1)
	require.Len(t, active, 1)
	assert.Contains(t, ids, active[0])
}

func TestDeactivateOnlyTouchesTarget(t *testing.T) {
	store := dbtest.New()
	act := NewActivator(store, nopFeed{}, nil)
	ctx := context.Background()

	g1, g2 := 1, 2
	a, err := store.CreatePlaylist(ctx, 1, &g1, nil, "lobby", true, false, 7000)
	require.NoError(t, err)
	b, err := store.CreatePlaylist(ctx, 1, &g2, nil, "cafe", true, false, 7000)
	require.NoError(t, err)

	require.NoError(t, act.SetActive(ctx, 1, a.ID, &g1, nil, true))
	require.NoError(t, act.SetActive(ctx, 1, b.ID, &g2, nil, true))

	require.NoError(t, act.SetActive(ctx, 1, a.ID, &g1, nil, false))
	assert.Equal(t, []int{b.ID}, activeIDs(t, store, 1))
}

func TestSetActiveUnknownPlaylist(t *testing.T) {
	act := NewActivator(dbtest.New(), nopFeed{}, nil)

	err := act.SetActive(context.Background(), 1, 404, nil, nil, true)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSetActiveRejectsBadID(t *testing.T) {
	act := NewActivator(dbtest.New(), nopFeed{}, nil)

	err := act.SetActive(context.Background(), 1, 0, nil, nil, true)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestActivationForDisplayPointsDeviceAtPlaylist(t *testing.T) {
	store := dbtest.New()
	ctx := context.Background()

	device := "device-1"
	_, err := store.CreatePairingSession(ctx, "ABC234", &device)
	require.NoError(t, err)
	displayID, err := store.ClaimPairingSession(ctx, "ABC234", 1, nil, "Lobby TV", nil)
	require.NoError(t, err)

	p, err := store.CreatePlaylist(ctx, 1, nil, &displayID, "takeover", false, false, 5000)
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	act := NewActivator(store, nopFeed{}, notifier)
	require.NoError(t, act.SetActive(ctx, 1, p.ID, nil, &displayID, true))

	got, err := store.GetActivePlaylistForDisplay(ctx, displayID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	assert.Eventually(t, func() bool {
		notifier.mu.Lock()
		defer notifier.mu.Unlock()
		return len(notifier.calls) == 1 && notifier.calls[0] == [2]int{displayID, p.ID}
	}, testWait, testTick)

	display, err := store.GetDisplayByID(ctx, 1, displayID)
	require.NoError(t, err)
	require.NotNil(t, display.ActivePlaylistID)
	assert.Equal(t, p.ID, *display.ActivePlaylistID)
}
