package domain

// Platform identifies the client surface that initiated a login, used to
// pick the post-callback redirect target.
type Platform string

const (
	PlatformWeb Platform = "web"
	PlatformApp Platform = "app"
)

// ParsePlatform maps a caller-supplied platform value to a known Platform,
// defaulting to web for empty or unrecognized values.
func ParsePlatform(v string) Platform {
	if Platform(v) == PlatformApp {
		return PlatformApp
	}
	return PlatformWeb
}

// OAuthState is the context carried through the external authorization
// redirect and recovered at callback. Created at login initiation, consumed
// exactly once at callback, never persisted.
type OAuthState struct {
	Identity string   `json:"email"`
	Platform Platform `json:"platform"`
}
