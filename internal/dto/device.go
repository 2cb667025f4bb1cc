package dto

import "time"

type PublishDeviceRequest struct {
	DeviceID    string `json:"deviceId"`
	IdentityKey string `json:"identityKey"`
	SigningKey  string `json:"signingKey"`
	DeviceName  string `json:"deviceName,omitempty"`
	DeviceType  string `json:"deviceType"`
}

type DeviceResponse struct {
	UserID      string    `json:"userId"`
	DeviceID    string    `json:"deviceId"`
	IdentityKey string    `json:"identityKey"`
	SigningKey  string    `json:"signingKey"`
	DeviceName  string    `json:"deviceName,omitempty"`
	DeviceType  string    `json:"deviceType"`
	LastSeenAt  time.Time `json:"lastSeenAt"`
}

type PairingCodeResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ClaimPairingRequest struct {
	Code string `json:"code"`
}
