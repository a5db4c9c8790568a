package service

import "time"

// Clock supplies wall-clock time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the local wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// isQuarterHour reports whether the tone should ring at t.
func isQuarterHour(t time.Time) bool { return t.Minute()%15 == 0 }

// minuteOf drops seconds and below. Zone offsets are whole minutes, so the
// absolute truncation matches the local clock and stays monotonic across DST.
func minuteOf(t time.Time) time.Time {
	return t.Truncate(time.Minute)
}

// nextQuarterHour returns the first quarter-hour boundary strictly after t.
func nextQuarterHour(t time.Time) time.Time {
	return minuteOf(t).Add(time.Duration(15-t.Minute()%15) * time.Minute)
}

// untilNextMinute is the per-minute evaluation cadence, capped so a clock
// step is noticed within maxSleep.
func untilNextMinute(now time.Time, maxSleep time.Duration) time.Duration {
	d := minuteOf(now).Add(time.Minute).Sub(now)
	if maxSleep > 0 && d > maxSleep {
		return maxSleep
	}
	return d
}
