package service

import (
	"time"

	"ajopay/internal/models"
)

// OverviewStats is the customer dashboard summary. All values are
// computed from real rows; empty accounts get zeros, never synthesized
// history.
type OverviewStats struct {
	BalanceKobo          int64            `json:"balance_kobo"`
	TotalContributedKobo int64            `json:"total_contributed_kobo"`
	TotalWithdrawnKobo   int64            `json:"total_withdrawn_kobo"`
	ThisWeekKobo         int64            `json:"this_week_kobo"`
	LastWeekKobo         int64            `json:"last_week_kobo"`
	WeeklyDeltaKobo      int64            `json:"weekly_delta_kobo"`
	StreakDays           int              `json:"streak_days"`
	Sparkline            []SparklinePoint `json:"sparkline"`
}

// SparklinePoint is one day's confirmed contribution total.
type SparklinePoint struct {
	Date       string `json:"date"` // YYYY-MM-DD
	AmountKobo int64  `json:"amount_kobo"`
}

const sparklineDays = 14

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// BuildOverview aggregates confirmed contributions into weekly deltas,
// a 14-day sparkline, and the current daily streak.
func BuildOverview(wallet *models.Wallet, contributions []models.Contribution, now time.Time) OverviewStats {
	stats := OverviewStats{}
	if wallet != nil {
		stats.BalanceKobo = wallet.BalanceKobo
		stats.TotalContributedKobo = wallet.TotalContributedKobo
		stats.TotalWithdrawnKobo = wallet.TotalWithdrawnKobo
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := today.AddDate(0, 0, -6)
	lastWeekStart := today.AddDate(0, 0, -13)

	byDay := make(map[string]int64)
	for _, c := range contributions {
		byDay[dayKey(c.ContributedAt)] += c.AmountKobo
		d := c.ContributedAt
		if !d.Before(weekStart) && d.Before(today.AddDate(0, 0, 1)) {
			stats.ThisWeekKobo += c.AmountKobo
		} else if !d.Before(lastWeekStart) && d.Before(weekStart) {
			stats.LastWeekKobo += c.AmountKobo
		}
	}
	stats.WeeklyDeltaKobo = stats.ThisWeekKobo - stats.LastWeekKobo

	stats.Sparkline = make([]SparklinePoint, 0, sparklineDays)
	for i := sparklineDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		stats.Sparkline = append(stats.Sparkline, SparklinePoint{
			Date:       dayKey(day),
			AmountKobo: byDay[dayKey(day)],
		})
	}

	stats.StreakDays = streak(byDay, today)
	return stats
}

// streak counts consecutive saved days ending today, or ending
// yesterday when today has no contribution yet.
func streak(byDay map[string]int64, today time.Time) int {
	start := today
	if byDay[dayKey(start)] == 0 {
		start = start.AddDate(0, 0, -1)
	}
	n := 0
	for d := start; byDay[dayKey(d)] > 0; d = d.AddDate(0, 0, -1) {
		n++
	}
	return n
}
