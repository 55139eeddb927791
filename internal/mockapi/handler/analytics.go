package handler

import (
	"hoteldesk/internal/mockapi/auth"
	"hoteldesk/pkg/model"
	"hoteldesk/pkg/sample"
	"math"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (h *Handler) OccupancyStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params, _ *auth.Claims) {
	rng, ok := h.analyticsRange(w, r)
	if !ok {
		return
	}

	stats := sample.Occupancy(h.now())
	kept := make([]model.OccupancyPoint, 0, len(stats.TimeSeries))
	for _, p := range stats.TimeSeries {
		if inRange(rng, p.Date) {
			kept = append(kept, p)
		}
	}
	stats.TimeSeries = groupOccupancy(kept, rng.GroupBy)
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) RevenueStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params, _ *auth.Claims) {
	rng, ok := h.analyticsRange(w, r)
	if !ok {
		return
	}

	stats := sample.Revenue(h.now())
	kept := make([]model.RevenuePoint, 0, len(stats.TimeSeries))
	var total float64
	for _, p := range stats.TimeSeries {
		if inRange(rng, p.Date) {
			kept = append(kept, p)
			total += p.Revenue
		}
	}
	if rng != (model.AnalyticsRange{GroupBy: rng.GroupBy}) {
		stats.TotalRevenue = total
		stats.AverageDailyRevenue = 0
		if len(kept) > 0 {
			stats.AverageDailyRevenue = math.Round(total/float64(len(kept))*100) / 100
		}
	}
	stats.TimeSeries = groupRevenue(kept, rng.GroupBy)
	h.writeJSON(w, http.StatusOK, stats)
}

// GuestStats keeps its monthly series; only the months touched by the range
// are returned.
func (h *Handler) GuestStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params, _ *auth.Claims) {
	rng, ok := h.analyticsRange(w, r)
	if !ok {
		return
	}

	stats := sample.Guests(h.now())
	monthly := model.AnalyticsRange{StartDate: monthOf(rng.StartDate), EndDate: monthOf(rng.EndDate)}
	kept := make([]model.GuestPoint, 0, len(stats.TimeSeries))
	for _, p := range stats.TimeSeries {
		if inRange(monthly, p.Date) {
			kept = append(kept, p)
		}
	}
	stats.TimeSeries = kept
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) SavedReports(w http.ResponseWriter, r *http.Request, _ httprouter.Params, claims *auth.Claims) {
	today := model.FormatDay(h.now())
	h.writeJSON(w, http.StatusOK, []model.Report{
		{
			"id":          1,
			"name":        "Monthly occupancy",
			"report_type": "occupancy",
			"created_by":  claims.UserID,
			"created_at":  today,
			"parameters":  map[string]any{"group_by": "day"},
		},
		{
			"id":          2,
			"name":        "Revenue by payment method",
			"report_type": "revenue",
			"created_by":  claims.UserID,
			"created_at":  today,
			"parameters":  map[string]any{"group_by": "month"},
		},
	})
}

func (h *Handler) ReportConfigurations(w http.ResponseWriter, r *http.Request, _ httprouter.Params, _ *auth.Claims) {
	h.writeJSON(w, http.StatusOK, []model.Report{
		{"id": 1, "name": "occupancy", "metrics": []string{"occupancy_rate", "occupied_rooms"}, "group_by": []string{"day", "week", "month"}},
		{"id": 2, "name": "revenue", "metrics": []string{"total_revenue", "average_daily_revenue"}, "group_by": []string{"day", "week", "month"}},
		{"id": 3, "name": "guest", "metrics": []string{"unique_guests", "avg_party_size", "avg_stay_length"}, "group_by": []string{"month"}},
	})
}

func (h *Handler) Dashboards(w http.ResponseWriter, r *http.Request, _ httprouter.Params, claims *auth.Claims) {
	h.writeJSON(w, http.StatusOK, []model.AnalyticsDashboard{defaultDashboard(claims)})
}

func (h *Handler) DefaultDashboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params, claims *auth.Claims) {
	h.writeJSON(w, http.StatusOK, defaultDashboard(claims))
}

func defaultDashboard(claims *auth.Claims) model.AnalyticsDashboard {
	return model.AnalyticsDashboard{
		"id":         1,
		"name":       "Front office",
		"owner":      claims.UserID,
		"is_default": true,
		"widgets": []map[string]any{
			{"type": "occupancy", "position": 0},
			{"type": "revenue", "position": 1},
			{"type": "arrivals", "position": 2},
		},
	}
}

// analyticsRange reads and validates the range query, writing a 400 when it
// is malformed.
func (h *Handler) analyticsRange(w http.ResponseWriter, r *http.Request) (model.AnalyticsRange, bool) {
	query := r.URL.Query()
	rng := model.AnalyticsRange{
		StartDate: query.Get("start_date"),
		EndDate:   query.Get("end_date"),
		GroupBy:   query.Get("group_by"),
	}
	if err := rng.Validate(); err != nil {
		h.writeError(w, r, err)
		return rng, false
	}
	return rng, true
}

// inRange compares ISO dates as strings, which orders them correctly for
// both day and month keys.
func inRange(rng model.AnalyticsRange, date string) bool {
	if rng.StartDate != "" && date < rng.StartDate {
		return false
	}
	if rng.EndDate != "" && date > rng.EndDate {
		return false
	}
	return true
}

func monthOf(day string) string {
	if len(day) < 7 {
		return day
	}
	return day[:7]
}

// bucketKey maps a day onto its group: the Monday of its week or its month.
func bucketKey(day, groupBy string) string {
	switch groupBy {
	case "week":
		t, err := model.ParseDay(day)
		if err != nil {
			return day
		}
		offset := (int(t.Weekday()) + 6) % 7
		return model.FormatDay(t.AddDate(0, 0, -offset))
	case "month":
		return monthOf(day)
	default:
		return day
	}
}

func groupOccupancy(points []model.OccupancyPoint, groupBy string) []model.OccupancyPoint {
	if groupBy == "" || groupBy == "day" {
		return points
	}
	var out []model.OccupancyPoint
	var counts []int
	for _, p := range points {
		key := bucketKey(p.Date, groupBy)
		if n := len(out); n > 0 && out[n-1].Date == key {
			out[n-1].OccupancyRate += p.OccupancyRate
			out[n-1].OccupiedRooms += p.OccupiedRooms
			counts[n-1]++
			continue
		}
		out = append(out, model.OccupancyPoint{Date: key, OccupancyRate: p.OccupancyRate, OccupiedRooms: p.OccupiedRooms})
		counts = append(counts, 1)
	}
	for i := range out {
		n := float64(counts[i])
		out[i].OccupancyRate = math.Round(out[i].OccupancyRate/n*100) / 100
		out[i].OccupiedRooms = math.Round(out[i].OccupiedRooms/n*100) / 100
	}
	return out
}

func groupRevenue(points []model.RevenuePoint, groupBy string) []model.RevenuePoint {
	if groupBy == "" || groupBy == "day" {
		return points
	}
	var out []model.RevenuePoint
	for _, p := range points {
		key := bucketKey(p.Date, groupBy)
		if n := len(out); n > 0 && out[n-1].Date == key {
			out[n-1].Revenue += p.Revenue
			continue
		}
		out = append(out, model.RevenuePoint{Date: key, Revenue: p.Revenue})
	}
	return out
}
