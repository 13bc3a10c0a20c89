package domain

import (
	"fmt"
	"math"
	"time"
)

const (
	// DatetimeLayout is used for response timestamps
	DatetimeLayout = "2006-01-02T15:04:05.000Z07:00"

	day = 24 * time.Hour
)

// DateTimeLayout returns the datetime layout
func DateTimeLayout() string {
	return DatetimeLayout
}

// FormatTimestamp renders t in UTC with the datetime layout
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(DatetimeLayout)
}

// HumanizeDuration renders d in long form using its largest unit, e.g. "5 minutes", "1 hour", "2 days".
func HumanizeDuration(d time.Duration) string {
	abs := d
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= day:
		return plural(d, abs, day, "day")
	case abs >= time.Hour:
		return plural(d, abs, time.Hour, "hour")
	case abs >= time.Minute:
		return plural(d, abs, time.Minute, "minute")
	case abs >= time.Second:
		return plural(d, abs, time.Second, "second")
	}
	return fmt.Sprintf("%d ms", d.Milliseconds())
}

func plural(d, abs, unit time.Duration, name string) string {
	n := math.Round(float64(d) / float64(unit))
	if abs >= unit*3/2 {
		return fmt.Sprintf("%.0f %ss", n, name)
	}
	return fmt.Sprintf("%.0f %s", n, name)
}
