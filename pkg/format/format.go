// Package format renders distances, durations, and arrival estimates as the
// short human-readable strings shown in client apps.
package format

import (
	"fmt"
	"math"
	"time"
)

// Distance renders a distance in meters. Distances under one kilometer are
// shown in whole meters, everything else in kilometers with one decimal.
//
//	Distance(999.4) == "999 m"
//	Distance(1000)  == "1.0 km"
//	Distance(5200)  == "5.2 km"
func Distance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%d m", int(math.Round(meters)))
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

// Duration renders a duration in seconds as whole minutes, switching to an
// hours-and-minutes form at one hour. Seconds round to the nearest minute.
//
//	Duration(90)   == "2 min"
//	Duration(3600) == "1h 0m"
//	Duration(5400) == "1h 30m"
func Duration(seconds float64) string {
	minutes := int(math.Round(seconds / 60))
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// ETA renders an arrival estimate relative to now. Estimates in the past or
// under a minute away read "Arriving now", estimates within the hour read as
// minutes remaining, and anything further out as a clock time.
//
//	ETA(now.Add(-time.Minute), now)    == "Arriving now"
//	ETA(now.Add(20*time.Minute), now)  == "20 min"
//	ETA(now.Add(2*time.Hour), now)     == "2:00 PM"  (for a noon now)
func ETA(eta, now time.Time) string {
	minutes := int(math.Round(eta.Sub(now).Minutes()))
	if minutes <= 0 {
		return "Arriving now"
	}
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	return eta.Format("3:04 PM")
}
