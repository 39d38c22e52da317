// Package clock provides the engine time source.
package clock

import "time"

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = time.Now

// Now returns the current UTC time truncated to microseconds, the finest
// precision every request store round-trips.
func Now() time.Time { return NowFunc().UTC().Truncate(time.Microsecond) }
