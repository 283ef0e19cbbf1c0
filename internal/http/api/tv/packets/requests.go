package packets

// REQUESTS FOR /api/tv/*

type RequestPairingCodeRequest struct {
	DeviceID string `json:"device_id" binding:"required"`
}

type HeartbeatRequest struct {
	DeviceID string `json:"device_id" binding:"required"`
	Status   string `json:"status" binding:"omitempty,oneof=online offline"`
}
