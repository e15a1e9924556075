package realtime

// Named realtime streams used across the platform.
const (
	// StreamActivity carries site activity events to every signed-in user.
	StreamActivity = "activity"
	// StreamActivityState carries per-user read and archive overlay changes.
	StreamActivityState = "activity.state"
)

// AllowedStreams returns the streams an authenticated user may subscribe to.
// The hub scopes per-user delivery on the overlay stream by connection identity.
func AllowedStreams() map[string]struct{} {
	return map[string]struct{}{
		StreamActivity:      {},
		StreamActivityState: {},
	}
}
