package models

import "time"

// RoasDay is one day of marketing spend joined with order revenue.
// ROAS is nil when there was no spend that day.
type RoasDay struct {
	Date             time.Time `json:"date"`
	TotalRevenue     float64   `json:"totalRevenue"`
	TotalSpend       float64   `json:"totalSpend"`
	TotalImpressions int64     `json:"totalImpressions"`
	ROAS             *float64  `json:"roas"`
}

// RoasSummary holds the dashboard KPIs for a date range.
type RoasSummary struct {
	Start        *time.Time `json:"start,omitempty"`
	End          *time.Time `json:"end,omitempty"`
	TotalRevenue float64    `json:"totalRevenue"`
	TotalSpend   float64    `json:"totalSpend"`
	AverageROAS  *float64   `json:"averageRoas"`
	// Profitable is nil when no day in range has a ROAS.
	Profitable  *bool     `json:"profitable"`
	Days        []RoasDay `json:"days"`
	LowRoasDays []RoasDay `json:"lowRoasDays"`
}
