// Package dbtest provides an in-memory db.Store for tests that exercise
// the workflow and HTTP layers without a PostgreSQL instance. Semantics
// mirror the SQL implementation: claim is all-or-nothing, activation
// clears the scope atomically, and display listings come back ordered.
package dbtest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/roastkoff/controlposter/internal/db"
	"github.com/roastkoff/controlposter/internal/errs"
	"github.com/roastkoff/controlposter/internal/model"
)

type Store struct {
	mu sync.Mutex

	nextID    int
	tenants   map[int]model.Tenant
	users     map[int]model.User
	groups    map[int]model.Group
	displays  map[int]model.Display
	sessions  map[string]model.PairingSession
	playlists map[int]model.Playlist
	items     map[int][]model.PlaylistItem
}

var _ db.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		tenants:   make(map[int]model.Tenant),
		users:     make(map[int]model.User),
		groups:    make(map[int]model.Group),
		displays:  make(map[int]model.Display),
		sessions:  make(map[string]model.PairingSession),
		playlists: make(map[int]model.Playlist),
		items:     make(map[int][]model.PlaylistItem),
	}
}

func (s *Store) id() int {
	s.nextID++
	return s.nextID
}

// tenants / users

func (s *Store) CreateTenant(ctx context.Context, name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.tenants[id] = model.Tenant{ID: id, Name: name, CreatedAt: time.Now()}
	return id, nil
}

func (s *Store) CreateUser(ctx context.Context, tenantID int, email, hashedPassword string, name *string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.users[id] = model.User{
		ID:             id,
		TenantID:       tenantID,
		Email:          email,
		HashedPassword: hashedPassword,
		Name:           name,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	return id, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (s *Store) GetUserByID(ctx context.Context, id int) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	out := u
	return &out, nil
}

// pairing sessions

func (s *Store) CreatePairingSession(ctx context.Context, code string, deviceID *string) (model.PairingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[code]; exists {
		return model.PairingSession{}, errs.ErrOperationFailed
	}
	sess := model.PairingSession{
		Code:      code,
		Status:    model.PairingPending,
		DeviceID:  deviceID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.sessions[code] = sess
	return sess, nil
}

func (s *Store) GetPairingSession(ctx context.Context, code string) (model.PairingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[code]
	if !ok {
		return model.PairingSession{}, errs.ErrNotFound
	}
	return sess, nil
}

func (s *Store) ClaimPairingSession(ctx context.Context, code string, tenantID int, groupID *int, name string, location *string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[code]
	if !ok {
		return 0, errs.ErrNotFound
	}
	if sess.Status != model.PairingPending {
		return 0, errs.ErrAlreadyClaimed
	}

	id := s.id()
	s.displays[id] = model.Display{
		ID:        id,
		TenantID:  tenantID,
		GroupID:   groupID,
		DeviceID:  sess.DeviceID,
		Name:      name,
		Location:  location,
		Status:    model.DisplayOffline,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	sess.Status = model.PairingClaimed
	sess.TenantID = &tenantID
	sess.GroupID = groupID
	sess.DisplayID = &id
	sess.UpdatedAt = time.Now()
	s.sessions[code] = sess

	return id, nil
}

// groups

func (s *Store) CreateGroup(ctx context.Context, tenantID int, name string) (model.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	g := model.Group{ID: id, TenantID: tenantID, Name: name, CreatedAt: time.Now()}
	s.groups[id] = g
	return g, nil
}

func (s *Store) GetGroupByID(ctx context.Context, tenantID, id int) (model.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok || g.TenantID != tenantID {
		return model.Group{}, errs.ErrNotFound
	}
	return g, nil
}

func (s *Store) ListGroups(ctx context.Context, tenantID int) ([]model.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Group
	for _, g := range s.groups {
		if g.TenantID == tenantID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// displays

func (s *Store) GetDisplayByID(ctx context.Context, tenantID, id int) (model.Display, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.displays[id]
	if !ok || d.TenantID != tenantID {
		return model.Display{}, errs.ErrNotFound
	}
	return d, nil
}

func (s *Store) GetDisplayByDeviceID(ctx context.Context, deviceID string) (model.Display, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.displays {
		if d.DeviceID != nil && *d.DeviceID == deviceID {
			return d, nil
		}
	}
	return model.Display{}, errs.ErrNotFound
}

func (s *Store) ListDisplays(ctx context.Context, tenantID int, groupID *int) ([]model.Display, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Display
	for _, d := range s.displays {
		if d.TenantID != tenantID {
			continue
		}
		if groupID != nil && (d.GroupID == nil || *d.GroupID != *groupID) {
			continue
		}
		out = append(out, d)
	}
	// group ascending with ungrouped first, then name, then id
	sort.Slice(out, func(i, j int) bool {
		gi, gj := out[i].GroupID, out[j].GroupID
		switch {
		case gi == nil && gj != nil:
			return true
		case gi != nil && gj == nil:
			return false
		case gi != nil && gj != nil && *gi != *gj:
			return *gi < *gj
		}
		if c := strings.Compare(out[i].Name, out[j].Name); c != 0 {
			return c < 0
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateDisplay(ctx context.Context, tenantID, id int, name, location *string, groupID *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.displays[id]
	if !ok || d.TenantID != tenantID {
		return errs.ErrNotFound
	}
	if name != nil {
		d.Name = *name
	}
	if location != nil {
		d.Location = location
	}
	if groupID != nil {
		d.GroupID = groupID
	}
	d.UpdatedAt = time.Now()
	s.displays[id] = d
	return nil
}

func (s *Store) SetDisplayStatus(ctx context.Context, displayID int, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.displays[displayID]
	if !ok {
		return errs.ErrNotFound
	}
	d.Status = status
	d.UpdatedAt = time.Now()
	s.displays[displayID] = d
	return nil
}

// playlists

func (s *Store) CreatePlaylist(ctx context.Context, tenantID int, groupID, displayID *int, name string, loop, shuffle bool, defaultIntervalMs int) (model.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	p := model.Playlist{
		ID:                id,
		TenantID:          tenantID,
		GroupID:           groupID,
		DisplayID:         displayID,
		Name:              name,
		Loop:              loop,
		Shuffle:           shuffle,
		DefaultIntervalMs: defaultIntervalMs,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	s.playlists[id] = p
	return p, nil
}

func (s *Store) GetPlaylistByID(ctx context.Context, tenantID, id int) (model.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.playlists[id]
	if !ok || p.TenantID != tenantID {
		return model.Playlist{}, errs.ErrNotFound
	}
	return p, nil
}

func (s *Store) ListPlaylists(ctx context.Context, tenantID int, groupID *int) ([]model.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Playlist
	for _, p := range s.playlists {
		if p.TenantID != tenantID {
			continue
		}
		if groupID != nil && (p.GroupID == nil || *p.GroupID != *groupID) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) DeletePlaylist(ctx context.Context, tenantID, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.playlists[id]
	if !ok || p.TenantID != tenantID {
		return errs.ErrNotFound
	}
	delete(s.playlists, id)
	delete(s.items, id)
	return nil
}

func (s *Store) AddItemToPlaylist(ctx context.Context, playlistID int, name, mediaType string, durationMs int, fit string, mute bool, src string) (model.PlaylistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.playlists[playlistID]; !ok {
		return model.PlaylistItem{}, errs.ErrNotFound
	}
	it := model.PlaylistItem{
		ID:         s.id(),
		PlaylistID: playlistID,
		Position:   len(s.items[playlistID]) + 1,
		Name:       name,
		Type:       mediaType,
		DurationMs: durationMs,
		Fit:        fit,
		Mute:       mute,
		Src:        src,
		CreatedAt:  time.Now(),
	}
	s.items[playlistID] = append(s.items[playlistID], it)
	return it, nil
}

func (s *Store) ListPlaylistItems(ctx context.Context, playlistID int) ([]model.PlaylistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.PlaylistItem, len(s.items[playlistID]))
	copy(out, s.items[playlistID])
	return out, nil
}

func (s *Store) RemovePlaylistItem(ctx context.Context, playlistID, itemID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.items[playlistID]
	for i, it := range items {
		if it.ID == itemID {
			s.items[playlistID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return errs.ErrNotFound
}

func sameScope(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *Store) SetActivePlaylist(ctx context.Context, tenantID, playlistID int, groupID, displayID *int, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.playlists[playlistID]
	if !ok || target.TenantID != tenantID {
		return errs.ErrNotFound
	}

	if !active {
		target.Active = false
		target.UpdatedAt = time.Now()
		s.playlists[playlistID] = target
		return nil
	}

	for id, p := range s.playlists {
		if id == playlistID || p.TenantID != tenantID || !p.Active {
			continue
		}
		if sameScope(p.GroupID, groupID) && sameScope(p.DisplayID, displayID) {
			p.Active = false
			p.UpdatedAt = time.Now()
			s.playlists[id] = p
		}
	}

	target.Active = true
	target.UpdatedAt = time.Now()
	s.playlists[playlistID] = target

	if displayID != nil {
		if d, ok := s.displays[*displayID]; ok {
			d.ActivePlaylistID = &playlistID
			d.UpdatedAt = time.Now()
			s.displays[*displayID] = d
		}
	}
	return nil
}

func (s *Store) GetActivePlaylistForDisplay(ctx context.Context, displayID int) (model.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.displays[displayID]
	if !ok || d.ActivePlaylistID == nil {
		return model.Playlist{}, errs.ErrNotFound
	}
	p, ok := s.playlists[*d.ActivePlaylistID]
	if !ok || !p.Active {
		return model.Playlist{}, errs.ErrNotFound
	}
	return p, nil
}
