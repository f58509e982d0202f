package entities

// AppStats holds the aggregate counters shown on the admin dashboard.
type AppStats struct {
	TotalViews   int64   `json:"totalViews"`
	TotalUsers   int64   `json:"totalUsers"`
	TotalRevenue float64 `json:"totalRevenue"`
	ActiveBots   int64   `json:"activeBots"`
}

// DefaultAppStats is the stats record used before anything has been counted.
func DefaultAppStats() AppStats {
	return AppStats{
		TotalViews:   0,
		TotalUsers:   124,
		TotalRevenue: 0,
		ActiveBots:   0,
	}
}
