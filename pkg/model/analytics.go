package model

type OccupancyPoint struct {
	Date          string  `json:"date"`
	OccupancyRate float64 `json:"occupancy_rate"`
	OccupiedRooms float64 `json:"occupied_rooms"`
}

type OccupancyStats struct {
	OccupancyRate float64          `json:"occupancy_rate"`
	TotalRooms    int              `json:"total_rooms"`
	OccupiedRooms float64          `json:"occupied_rooms"`
	TimeSeries    []OccupancyPoint `json:"time_series"`
}

type RevenuePoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

type PaymentMethodStats struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

type RevenueStats struct {
	TotalRevenue        float64                       `json:"total_revenue"`
	AverageDailyRevenue float64                       `json:"average_daily_revenue"`
	PaymentMethods      map[string]PaymentMethodStats `json:"payment_methods"`
	TimeSeries          []RevenuePoint                `json:"time_series"`
}

type GuestPoint struct {
	Date          string  `json:"date"`
	UniqueGuests  int     `json:"unique_guests"`
	AvgPartySize  float64 `json:"avg_party_size"`
	AvgStayLength float64 `json:"avg_stay_length"`
}

type GuestDemographics struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
}

type GuestStats struct {
	TotalGuests       int               `json:"total_guests"`
	NewGuests         int               `json:"new_guests"`
	ReturningGuests   int               `json:"returning_guests"`
	AvgStayLength     float64           `json:"avg_stay_length"`
	AvgPartySize      float64           `json:"avg_party_size"`
	GuestDemographics GuestDemographics `json:"guest_demographics"`
	TimeSeries        []GuestPoint      `json:"time_series"`
}

// Report and AnalyticsDashboard are passed through as loosely typed documents;
// their layout is owned by the analytics service.
type Report map[string]any

type AnalyticsDashboard map[string]any

type AnalyticsRange struct {
	StartDate string `json:"start_date" validate:"omitempty,day"`
	EndDate   string `json:"end_date" validate:"omitempty,day"`
	GroupBy   string `json:"group_by" validate:"omitempty,oneof=day week month"`
}

func (r AnalyticsRange) Validate() error {
	if err := Validate(r); err != nil {
		return err
	}
	if r.StartDate != "" && r.EndDate != "" && r.EndDate < r.StartDate {
		return fieldError("end_date", "must not be before start_date")
	}
	return nil
}
