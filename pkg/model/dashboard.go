package model

import (
	"fmt"
	"math"
)

type TrendDirection string

const (
	TrendUp      TrendDirection = "up"
	TrendDown    TrendDirection = "down"
	TrendNeutral TrendDirection = "neutral"
)

type Trend struct {
	Direction TrendDirection `json:"direction"`
	Value     string         `json:"value"`
}

type OccupancyHistory struct {
	Date string  `json:"date"`
	Rate float64 `json:"rate"`
}

type RevenueHistory struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

type OccupancySummary struct {
	Rate    float64            `json:"rate"`
	Trend   Trend              `json:"trend"`
	History []OccupancyHistory `json:"history"`
}

type RevenueSummary struct {
	Total   float64          `json:"total"`
	Trend   Trend            `json:"trend"`
	History []RevenueHistory `json:"history"`
}

type CountSummary struct {
	Total int   `json:"total"`
	Trend Trend `json:"trend"`
}

type DashboardStats struct {
	Occupancy    OccupancySummary `json:"occupancy"`
	Revenue      RevenueSummary   `json:"revenue"`
	Reservations CountSummary     `json:"reservations"`
	Guests       CountSummary     `json:"guests"`
}

// ComputeTrend compares the mean of the second half of series with the mean
// of the first half. Changes under half a percent, or series too short to
// split, are neutral.
func ComputeTrend(series []float64) Trend {
	if len(series) < 2 {
		return Trend{Direction: TrendNeutral, Value: "0%"}
	}

	mid := len(series) / 2
	before := mean(series[:mid])
	after := mean(series[len(series)-mid:])
	if before == 0 {
		return Trend{Direction: TrendNeutral, Value: "0%"}
	}

	change := (after - before) / before * 100
	rounded := math.Round(math.Abs(change))
	switch {
	case math.Abs(change) < 0.5:
		return Trend{Direction: TrendNeutral, Value: "0%"}
	case change > 0:
		return Trend{Direction: TrendUp, Value: fmt.Sprintf("%.0f%%", rounded)}
	default:
		return Trend{Direction: TrendDown, Value: fmt.Sprintf("%.0f%%", rounded)}
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
