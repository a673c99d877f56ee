package models

// ValidationResult is the per-request answer to "can this location be served?".
// When Served is true, Area holds the matching area. Otherwise Nearest and DistanceKm
// describe the closest active area, or are empty when no area is active.
type ValidationResult struct {
	Served     bool
	Area       *ServiceArea
	Nearest    *ServiceArea
	DistanceKm float64
}
