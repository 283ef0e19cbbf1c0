// Package playback enforces the at-most-one-active-playlist rule for a
// (tenant, group, display) scope.
package playback

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/roastkoff/controlposter/internal/db"
	"github.com/roastkoff/controlposter/internal/directory"
	"github.com/roastkoff/controlposter/internal/errs"
)

const DefaultTimeout = 10 * time.Second

// DisplayNotifier is the optional push channel telling a device its
// playlist changed. *notify.Notifier satisfies it.
type DisplayNotifier interface {
	PlaylistChanged(displayID, playlistID int)
}

type Activator struct {
	store    db.Store
	feed     directory.Publisher
	notifier DisplayNotifier
	timeout  time.Duration
}

func NewActivator(store db.Store, feed directory.Publisher, notifier DisplayNotifier) *Activator {
	return &Activator{store: store, feed: feed, notifier: notifier, timeout: DefaultTimeout}
}

func (a *Activator) WithTimeout(d time.Duration) *Activator {
	a.timeout = d
	return a
}

// SetActive flips one playlist's active flag.
//
// Deactivation touches only the named playlist. Activation runs as a
// single store transaction that clears every active sibling in the scope
// before setting the target, so concurrent activations settle with at
// most one winner and no reader ever observes two active playlists in
// the same scope. Any failure leaves the prior state unchanged.
func (a *Activator) SetActive(ctx context.Context, tenantID, playlistID int, groupID, displayID *int, active bool) error {
	if playlistID <= 0 {
		return errs.Invalid("playlist id is required")
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if err := a.store.SetActivePlaylist(ctx, tenantID, playlistID, groupID, displayID, active); err != nil {
		return errs.FromContext(err)
	}

	log.Info().Int("playlist_id", playlistID).Int("tenant_id", tenantID).Bool("active", active).
		Msg("playlist activation updated")

	if active && displayID != nil && a.notifier != nil {
		// best effort; the device re-fetches state over the API anyway
		go a.notifier.PlaylistChanged(*displayID, playlistID)
	}
	if a.feed != nil {
		if err := a.feed.Publish(ctx, tenantID); err != nil {
			log.Warn().Err(err).Int("tenant_id", tenantID).Msg("failed to signal display change")
		}
	}
	return nil
}
