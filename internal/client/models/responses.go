package models

// Response envelopes returned by the REST backend.

type MessageResponse struct {
	Message string `json:"message"`
}

type LoginResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    UserProfile `json:"user"`
}

type UserResponse struct {
	Message string      `json:"message"`
	User    UserProfile `json:"user"`
}

type AvailableResponse struct {
	Available bool `json:"available"`
}

type UploadResponse struct {
	Message string       `json:"message"`
	Data    UploadedFile `json:"data"`
}

type MediaResponse struct {
	Message string    `json:"message"`
	Media   MediaItem `json:"media"`
}

type CountResponse struct {
	Count int `json:"count"`
}
