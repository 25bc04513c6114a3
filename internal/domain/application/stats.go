package application

import (
	"math"
	"time"
)

// Stats - сводка по заявкам пользователя.
type Stats struct {
	Total           int            `json:"total"`
	Active          int            `json:"active"`
	ThisWeek        int            `json:"this_week"`
	Last30Days      int            `json:"last_30_days"`
	Offers          int            `json:"offers"`
	Rejected        int            `json:"rejected"`
	ResponseRate    int            `json:"response_rate"`
	AvgResponseDays int            `json:"avg_response_days"`
	ByStatus        map[Status]int `json:"by_status"`
}

// ComputeStats aggregates non-archived applications relative to now.
func ComputeStats(apps []Application, now time.Time) Stats {
	stats := Stats{ByStatus: make(map[Status]int)}

	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, 0, -30)

	var responded, responseDays int

	for _, a := range apps {
		if a.Archived {
			continue
		}
		stats.Total++

		status := a.Status
		if status == "" {
			status = StatusApplied
		}
		stats.ByStatus[status]++

		if status.Active() {
			stats.Active++
		}
		switch status {
		case StatusOffer:
			stats.Offers++
		case StatusRejected:
			stats.Rejected++
		}

		if a.CreatedAt.After(weekAgo) {
			stats.ThisWeek++
		}
		if !a.CreatedAt.Before(monthAgo) {
			stats.Last30Days++
		}

		if status != StatusApplied {
			responded++
			if days := int(a.UpdatedAt.Sub(a.CreatedAt).Hours() / 24); days > 0 {
				responseDays += days
			}
		}
	}

	if stats.Total > 0 {
		stats.ResponseRate = int(math.Round(float64(responded) / float64(stats.Total) * 100))
	}
	if responded > 0 {
		stats.AvgResponseDays = int(math.Round(float64(responseDays) / float64(responded)))
	}

	return stats
}
