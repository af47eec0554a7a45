package clock

import "time"

// Clock abstracts wall-clock time so cooldown math and pair ids are
// deterministic under test.
type Clock interface {
	Now() time.Time
}

// Real reads the system clock in UTC.
type Real struct{}

func (Real) Now() time.Time { return time.Now().UTC() }

// Seconds returns t as fractional seconds since the epoch, the format
// cooldown values are persisted in.
func Seconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
