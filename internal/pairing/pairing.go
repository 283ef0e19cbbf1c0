// Package pairing turns a human-readable code into a provisioned display,
// exactly once.
package pairing

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/roastkoff/controlposter/internal/db"
	"github.com/roastkoff/controlposter/internal/directory"
	"github.com/roastkoff/controlposter/internal/errs"
	"github.com/roastkoff/controlposter/internal/model"
)

// DefaultTimeout bounds every store round trip so a stalled network call
// surfaces as errs.ErrTimeout instead of hanging the caller.
const DefaultTimeout = 10 * time.Second

type Service struct {
	store   db.Store
	feed    directory.Publisher
	timeout time.Duration
}

func NewService(store db.Store, feed directory.Publisher) *Service {
	return &Service{store: store, feed: feed, timeout: DefaultTimeout}
}

// WithTimeout overrides the per-operation deadline.
func (s *Service) WithTimeout(d time.Duration) *Service {
	s.timeout = d
	return s
}

// Claim validates a pairing code and provisions a display for the tenant.
//
// Validation happens before any store call. The store-side preconditions
// are checked inside one transaction: a missing session fails with
// ErrNotFound, a non-pending one with ErrAlreadyClaimed, and either way
// nothing is written. On success the new display starts offline with no
// active playlist, and the session is terminally claimed.
func (s *Service) Claim(ctx context.Context, tenantID int, code string, groupID *int, name string, location *string) (int, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, errs.Invalid("pairing code is required")
	}
	if strings.TrimSpace(name) == "" {
		return 0, errs.Invalid("display name is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if groupID != nil {
		if _, err := s.store.GetGroupByID(ctx, tenantID, *groupID); err != nil {
			return 0, err
		}
	}

	displayID, err := s.store.ClaimPairingSession(ctx, code, tenantID, groupID, name, location)
	if err != nil {
		return 0, errs.FromContext(err)
	}

	log.Info().Str("code", code).Int("display_id", displayID).Int("tenant_id", tenantID).
		Msg("pairing code claimed")

	if s.feed != nil {
		if err := s.feed.Publish(ctx, tenantID); err != nil {
			log.Warn().Err(err).Int("tenant_id", tenantID).Msg("failed to signal display change")
		}
	}
	return displayID, nil
}

// RequestCode registers a pending pairing session for an unprovisioned
// device and returns it. Retries the code draw a few times in case of a
// collision with an existing session.
func (s *Service) RequestCode(ctx context.Context, deviceID string) (model.PairingSession, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return model.PairingSession{}, errs.Invalid("device id is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		sess, err := s.store.CreatePairingSession(ctx, generatePairCode(), &deviceID)
		if err == nil {
			return sess, nil
		}
		lastErr = err
	}
	return model.PairingSession{}, errs.FromContext(lastErr)
}

// generatePairCode draws 6 characters from an alphabet without the
// ambiguous 0/O/1/I glyphs, since codes are typed off a TV screen.
func generatePairCode() string {
	const charset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	b := make([]byte, 6)
	for i := range b {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		b[i] = charset[n.Int64()]
	}
	return string(b)
}
