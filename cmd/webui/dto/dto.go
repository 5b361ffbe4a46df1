package dto

// ChatRequestDTO is the browser-facing chat payload. It mirrors the
// backend contract; the gateway forwards it untouched apart from
// validation.
type ChatRequestDTO struct {
	SessionID  string `json:"session_id"`
	Message    string `json:"message" binding:"required"`
	TopN       int    `json:"top_n"`
	DeepSearch bool   `json:"deep_search"`
}

type ErrorResponseDTO struct {
	Error string `json:"error"`
}

type MessageResponseDTO struct {
	Message string `json:"message"`
}
