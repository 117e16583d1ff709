package model

// RecentCheckin is one row of the dashboard's recent-activity feed.
type RecentCheckin struct {
	Name        string `json:"name"`
	Department  string `json:"department,omitempty"`
	Station     string `json:"station"`
	CheckinTime string `json:"checkin_time"`
}

type DashboardStats struct {
	TotalParticipants int64           `json:"total_participants"`
	TotalCheckins     int64           `json:"total_checkins"`
	TotalDependents   int64           `json:"total_dependents"`
	TotalItems        int64           `json:"total_items"`
	PendingCheckins   int64           `json:"pending_checkins"`
	RecentCheckins    []RecentCheckin `json:"recent_checkins"`
}

type HourlyBucket struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

// DepartmentUnspecified is the bucket for participants with a blank department.
const DepartmentUnspecified = "unspecified"

type CheckinStatistics struct {
	DashboardStats
	DepartmentStats map[string]int64 `json:"department_stats"`
	HourlyCheckins  []HourlyBucket   `json:"hourly_checkins"`
}
