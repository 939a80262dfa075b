package testutil

import "github.com/udisondev/toycar/internal/model"

// F returns a pointer to v, for building records with explicit coordinates.
func F(v float64) *float64 {
	return &v
}

// SampleRecords returns a small level: two regular prizes and one record
// with missing coordinates and a model hint.
func SampleRecords() []model.PlacementRecord {
	return []model.PlacementRecord{
		model.At(-10, 1.5, -10).WithRole("default"),
		model.At(-8, 2, -12).WithName("coin"),
		{Model: "gem", Type: "prize"},
	}
}
