package tiktok

// TokenPayload is the token-exchange response. The whole payload is handed
// back to web/app callers as a cookie, so field names mirror the wire format.
type TokenPayload struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
	OpenID       string `json:"open_id,omitempty"`
}

// Profile is the subset of the TikTok user-info response this service uses.
type Profile struct {
	OpenID      string `json:"open_id"`
	UnionID     string `json:"union_id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// Video is one entry of the video-list response.
type Video struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	VideoDescription string `json:"video_description"`
	Duration         int64  `json:"duration"`
	CoverImageURL    string `json:"cover_image_url"`
	CreateTime       int64  `json:"create_time"`
}

// PublishRequest describes a video-publish initiation. It only starts a
// publish job; chunk transfer and status polling are out of scope.
type PublishRequest struct {
	PostInfo   PostInfo   `json:"post_info"`
	SourceInfo SourceInfo `json:"source_info"`
}

// PostInfo carries the post metadata for a publish initiation.
type PostInfo struct {
	Title                 string `json:"title"`
	PrivacyLevel          string `json:"privacy_level"`
	DisableDuet           bool   `json:"disable_duet"`
	DisableComment        bool   `json:"disable_comment"`
	DisableStitch         bool   `json:"disable_stitch"`
	VideoCoverTimestampMS int64  `json:"video_cover_timestamp_ms"`
}

// SourceInfo describes where the media bytes will come from.
type SourceInfo struct {
	Source          string `json:"source"`
	VideoSize       int64  `json:"video_size"`
	ChunkSize       int64  `json:"chunk_size"`
	TotalChunkCount int64  `json:"total_chunk_count"`
}

// PublishInit is the raw publish-initiation response returned to callers.
type PublishInit struct {
	Data  PublishData  `json:"data"`
	Error ResponseMeta `json:"error"`
}

// PublishData holds the publish job identifiers.
type PublishData struct {
	PublishID string `json:"publish_id"`
	UploadURL string `json:"upload_url,omitempty"`
}

// ResponseMeta is the error envelope TikTok attaches to every response.
type ResponseMeta struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	LogID   string `json:"log_id"`
}
