package service

import "github.com/uendelAraujoInfnet/baby-care-webapp/internal"

func CalculateDashboard(entries []internal.Entry) internal.Dashboard {
	var d internal.Dashboard
	for _, e := range entries {
		switch p := e.Payload.(type) {
		case internal.Diaper:
			d.DiaperCount++
		case internal.Feeding:
			d.FeedingCount++
		case internal.Sleep:
			d.SleepCount++
			d.TotalSleepMinutes += p.DurationMinutes
		}
	}
	return d
}
