package packets

type CreateGroupRequest struct {
	Name string `json:"name" binding:"required"`
}

type ClaimDisplayRequest struct {
	Code     string  `json:"code" binding:"required"`
	GroupID  *int    `json:"group_id"`
	Name     string  `json:"name" binding:"required"`
	Location *string `json:"location"`
}

type UpdateDisplayRequest struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
	GroupID  *int    `json:"group_id"`
}

type CreatePlaylistRequest struct {
	Name              string `json:"name" binding:"required"`
	GroupID           *int   `json:"group_id"`
	DisplayID         *int   `json:"display_id"`
	Loop              bool   `json:"loop"`
	Shuffle           bool   `json:"shuffle"`
	DefaultIntervalMs int    `json:"default_interval_ms" binding:"required,min=1000"`
}

// AddPlaylistItemRequest rides alongside the uploaded media file in a
// multipart form. Items below one second are rejected before any write.
type AddPlaylistItemRequest struct {
	Name       string `form:"name" binding:"required"`
	Type       string `form:"type" binding:"required,oneof=image video"`
	DurationMs int    `form:"duration_ms" binding:"omitempty,min=1000"`
	Fit        string `form:"fit" binding:"omitempty,oneof=cover contain fill"`
	Mute       *bool  `form:"mute"`
}

type SetActivePlaylistRequest struct {
	GroupID   *int `json:"group_id"`
	DisplayID *int `json:"display_id"`
	Active    bool `json:"active"`
}
