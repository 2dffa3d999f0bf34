package content

import "time"

// StaleThreshold is the age after which a section counts as stale on the
// dashboard.
const StaleThreshold = 180 * 24 * time.Hour

// IsStale reports whether a section last modified at updatedAt is stale at now.
func IsStale(updatedAt, now time.Time) bool {
	return updatedAt.Before(now.Add(-StaleThreshold))
}

// StaleCutoff returns the oldest non-stale modification time at now.
func StaleCutoff(now time.Time) time.Time {
	return now.Add(-StaleThreshold)
}
