package client

import (
	"context"
	"hoteldesk/pkg/model"
	"hoteldesk/pkg/sample"
	"sort"

	"golang.org/x/sync/errgroup"
)

type DashboardClient struct {
	accessor
	analytics    *AnalyticsClient
	reservations *ReservationClient
}

// Stats builds the dashboard summary from the analytics endpoints and the
// reservation list, fetched concurrently. Any failure yields the static
// sample summary.
func (c *DashboardClient) Stats(ctx context.Context) (*model.DashboardStats, error) {
	var (
		occ          *model.OccupancyStats
		rev          *model.RevenueStats
		guests       *model.GuestStats
		reservations []model.Reservation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		occ, err = c.analytics.occupancy(gctx, model.AnalyticsRange{})
		return err
	})
	g.Go(func() (err error) {
		rev, err = c.analytics.revenue(gctx, model.AnalyticsRange{})
		return err
	})
	g.Go(func() (err error) {
		guests, err = c.analytics.guests(gctx, model.AnalyticsRange{})
		return err
	})
	g.Go(func() (err error) {
		reservations, err = c.reservations.fetch(gctx, ReservationsPath, nil)
		return err
	})

	if err := g.Wait(); err != nil {
		c.fallback("dashboard.stats", err)
		return sample.Dashboard(), nil
	}
	return BuildDashboard(occ, rev, guests, reservations), nil
}

// BuildDashboard folds analytics and reservations into the dashboard summary.
func BuildDashboard(occ *model.OccupancyStats, rev *model.RevenueStats, guests *model.GuestStats, reservations []model.Reservation) *model.DashboardStats {
	occHistory := make([]model.OccupancyHistory, 0, len(occ.TimeSeries))
	occRates := make([]float64, 0, len(occ.TimeSeries))
	for _, p := range occ.TimeSeries {
		occHistory = append(occHistory, model.OccupancyHistory{Date: p.Date, Rate: p.OccupancyRate})
		occRates = append(occRates, p.OccupancyRate)
	}

	daily := make([]float64, 0, len(rev.TimeSeries))
	for _, p := range rev.TimeSeries {
		daily = append(daily, p.Revenue)
	}

	guestCounts := make([]float64, 0, len(guests.TimeSeries))
	for _, p := range guests.TimeSeries {
		guestCounts = append(guestCounts, float64(p.UniqueGuests))
	}

	return &model.DashboardStats{
		Occupancy: model.OccupancySummary{
			Rate:    occ.OccupancyRate,
			Trend:   model.ComputeTrend(occRates),
			History: occHistory,
		},
		Revenue: model.RevenueSummary{
			Total:   rev.TotalRevenue,
			Trend:   model.ComputeTrend(daily),
			History: monthlyRevenue(rev.TimeSeries),
		},
		Reservations: model.CountSummary{
			Total: len(reservations),
			Trend: model.ComputeTrend(checkInsPerDay(reservations)),
		},
		Guests: model.CountSummary{
			Total: guests.TotalGuests,
			Trend: model.ComputeTrend(guestCounts),
		},
	}
}

// monthlyRevenue sums daily revenue per calendar month, oldest first, with
// short month names as labels.
func monthlyRevenue(points []model.RevenuePoint) []model.RevenueHistory {
	var out []model.RevenueHistory
	lastKey := ""
	for _, p := range points {
		day, err := model.ParseDay(p.Date)
		if err != nil {
			continue
		}
		key := day.Format("2006-01")
		if key != lastKey {
			out = append(out, model.RevenueHistory{Month: day.Month().String()[:3]})
			lastKey = key
		}
		out[len(out)-1].Amount += p.Revenue
	}
	return out
}

func checkInsPerDay(reservations []model.Reservation) []float64 {
	counts := map[string]int{}
	for _, r := range reservations {
		if _, err := model.ParseDay(r.CheckInDate); err == nil {
			counts[r.CheckInDate]++
		}
	}
	days := make([]string, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	sort.Strings(days)

	out := make([]float64, len(days))
	for i, d := range days {
		out[i] = float64(counts[d])
	}
	return out
}
