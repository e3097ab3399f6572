package dto

// CreateVideoRequest represents a video-publish initiation request
type CreateVideoRequest struct {
	ProviderID string       `json:"provider_id" binding:"required"`
	Content    VideoContent `json:"content" binding:"required"`
}

// VideoContent carries the media reference and caption for a new post
type VideoContent struct {
	VideoURL    string `json:"video_url" binding:"required"`
	Description string `json:"description"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}
