package timer

import "fmt"

// FormatDuration renders a clock-style elapsed time: H:MM:SS from one hour
// up, MM:SS below.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// HumanDuration renders the short form used in messages: H:MM from one hour
// up, otherwise whole minutes such as "1m".
func HumanDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// HoursFromSeconds converts seconds to hours rounded to two decimals, half
// away from zero. The rounding is done on integer hundredths so that values
// like 90s land on 0.03 instead of drifting with float error.
func HoursFromSeconds(seconds int64) float64 {
	if seconds <= 0 {
		return 0
	}
	hundredths := (seconds*100 + 1800) / 3600
	return float64(hundredths) / 100
}
