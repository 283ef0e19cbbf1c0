package packets

import "time"

type GroupResponse struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// DisplayResponse mirrors model.Display but flattens times to RFC3339.
type DisplayResponse struct {
	ID               int     `json:"id"`
	GroupID          *int    `json:"group_id"`
	DeviceID         *string `json:"device_id"`
	Name             string  `json:"name"`
	Location         *string `json:"location"`
	Status           string  `json:"status"`
	ActivePlaylistID *int    `json:"active_playlist_id"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

type PlaylistItemResponse struct {
	ID         int       `json:"id"`
	Position   int       `json:"position"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	DurationMs int       `json:"duration_ms"`
	Fit        string    `json:"fit"`
	Mute       bool      `json:"mute"`
	Src        string    `json:"src"`
	CreatedAt  time.Time `json:"created_at"`
}

type PlaylistResponse struct {
	ID                int                    `json:"id"`
	GroupID           *int                   `json:"group_id"`
	DisplayID         *int                   `json:"display_id"`
	Name              string                 `json:"name"`
	Loop              bool                   `json:"loop"`
	Shuffle           bool                   `json:"shuffle"`
	DefaultIntervalMs int                    `json:"default_interval_ms"`
	Active            bool                   `json:"active"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
	Items             []PlaylistItemResponse `json:"items"`
}

// DashboardResponse groups the tenant's displays per group for the
// overview screen.
type DashboardResponse struct {
	GroupTotal int              `json:"group_total"`
	Groups     []DashboardGroup `json:"groups"`
}

type DashboardGroup struct {
	GroupID   int               `json:"group_id"`
	GroupName string            `json:"group_name"`
	Displays  []DisplayResponse `json:"displays"`
}
