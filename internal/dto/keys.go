package dto

type KeysForUsersRequest struct {
	UserIDs []string `json:"userIds"`
}

// UserKeys groups one participant's devices, most recently active first.
type UserKeys struct {
	UserID  string           `json:"userId"`
	Devices []DeviceResponse `json:"devices"`
}

type KeysResponse struct {
	Users []UserKeys `json:"users"`
}

// FlatKeysResponse is the ungrouped shape for callers doing direct fan-out.
type FlatKeysResponse struct {
	Devices []DeviceResponse `json:"devices"`
}
