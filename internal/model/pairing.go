package model

import "time"

// Pairing session statuses. A session moves pending -> claimed exactly
// once; claimed is terminal.
const (
	PairingPending = "pending"
	PairingClaimed = "claimed"
	PairingExpired = "expired"
)

// PairingSession is a one-time code shown on an unprovisioned display.
// DisplayID, TenantID and GroupID stay NULL until the code is claimed.
type PairingSession struct {
	Code      string    `db:"code"       json:"code"`
	Status    string    `db:"status"     json:"status"`
	DeviceID  *string   `db:"device_id"  json:"device_id"`
	DisplayID *int      `db:"display_id" json:"display_id"`
	TenantID  *int      `db:"tenant_id"  json:"tenant_id"`
	GroupID   *int      `db:"group_id"   json:"group_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
