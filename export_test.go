package chatstream

import "time"

// SetNow replaces the clock an Exchange uses for timestamps.
func SetNow(e *Exchange, now func() time.Time) {
	e.now = now
}
