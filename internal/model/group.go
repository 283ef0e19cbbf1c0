package model

import "time"

// Group (aka branch) is a named collection of displays within a tenant,
// typically one physical location.
type Group struct {
	ID        int       `db:"id"         json:"id"`
	TenantID  int       `db:"tenant_id"  json:"tenant_id"`
	Name      string    `db:"name"       json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
