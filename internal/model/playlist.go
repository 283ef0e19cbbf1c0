package model

import "time"

// Playlist item media types and fit modes.
const (
	ItemImage = "image"
	ItemVideo = "video"

	FitCover   = "cover"
	FitContain = "contain"
	FitFill    = "fill"
)

// Playlist is an ordered set of media items scoped to a tenant and,
// optionally, a group and a single display. At most one playlist is
// active per (tenant, group, display) scope; a NULL DisplayID means the
// playlist is group-wide.
type Playlist struct {
	ID                int            `db:"id"                  json:"id"`
	TenantID          int            `db:"tenant_id"           json:"tenant_id"`
	GroupID           *int           `db:"group_id"            json:"group_id"`
	DisplayID         *int           `db:"display_id"          json:"display_id"`
	Name              string         `db:"name"                json:"name"`
	Loop              bool           `db:"loop"                json:"loop"`
	Shuffle           bool           `db:"shuffle"             json:"shuffle"`
	DefaultIntervalMs int            `db:"default_interval_ms" json:"default_interval_ms"`
	Active            bool           `db:"active"              json:"active"`
	CreatedAt         time.Time      `db:"created_at"          json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"          json:"updated_at"`
	Items             []PlaylistItem `db:"-"                   json:"items,omitempty"`
}

type PlaylistItem struct {
	ID         int       `db:"id"          json:"id"`
	PlaylistID int       `db:"playlist_id" json:"playlist_id"`
	Position   int       `db:"position"    json:"position"`
	Name       string    `db:"name"        json:"name"`
	Type       string    `db:"type"        json:"type"`
	DurationMs int       `db:"duration_ms" json:"duration_ms"`
	Fit        string    `db:"fit"         json:"fit"`
	Mute       bool      `db:"mute"        json:"mute"`
	Src        string    `db:"src"         json:"src"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
}
