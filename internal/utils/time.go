package utils

import "time"

// Now returns the current UTC time truncated to the millisecond precision
// mongo stores, so values round-trip unchanged.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
