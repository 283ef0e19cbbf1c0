package model

import "time"

// Display statuses, written by the device heartbeat.
const (
	DisplayOnline  = "online"
	DisplayOffline = "offline"
)

// Display represents a physical or virtual screen bound to a tenant.
// TenantID never changes after creation; GroupID stays NULL until the
// display is assigned to a group.
type Display struct {
	ID               int       `db:"id"                 json:"id"`
	TenantID         int       `db:"tenant_id"          json:"tenant_id"`
	GroupID          *int      `db:"group_id"           json:"group_id"`
	DeviceID         *string   `db:"device_id"          json:"device_id"`
	Name             string    `db:"name"               json:"name"`
	Location         *string   `db:"location"           json:"location"`
	Status           string    `db:"status"             json:"status"`
	ActivePlaylistID *int      `db:"active_playlist_id" json:"active_playlist_id"`
	CreatedAt        time.Time `db:"created_at"         json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"         json:"updated_at"`
}
