package model

import "time"

// WIB is Western Indonesian Time, the agency's local zone.
var WIB = time.FixedZone("WIB", 7*60*60)

// NowWIB is the wall clock in WIB.
func NowWIB() time.Time {
	return time.Now().In(WIB)
}
