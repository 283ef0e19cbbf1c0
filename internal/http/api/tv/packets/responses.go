package packets

// RESPONSES FOR /api/tv/*

type PairingCodeResponse struct {
	Code      string `json:"code"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

type PairingStatusResponse struct {
	Code      string `json:"code"`
	Status    string `json:"status"`
	DisplayID *int   `json:"display_id"`
}

type PlaylistItemResponse struct {
	Position   int    `json:"position"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	DurationMs int    `json:"duration_ms"`
	Fit        string `json:"fit"`
	Mute       bool   `json:"mute"`
	Src        string `json:"src"`
}

// PlaylistResponse is the device-facing view of the active playlist.
type PlaylistResponse struct {
	ID                int                    `json:"id"`
	Name              string                 `json:"name"`
	Loop              bool                   `json:"loop"`
	Shuffle           bool                   `json:"shuffle"`
	DefaultIntervalMs int                    `json:"default_interval_ms"`
	UpdatedAt         string                 `json:"updated_at"`
	Items             []PlaylistItemResponse `json:"items"`
}
