package client

import (
	"context"
	"hoteldesk/pkg/model"
	"hoteldesk/pkg/sample"
	"net/url"
)

const (
	ReservationsPath       = "/reservations/"
	RecentReservationsPath = "/reservations/recent/"
)

type ReservationClient struct {
	accessor
}

// List returns reservations matching the filter, or the sample list when the
// API cannot be read. Only an invalid filter is reported as an error.
func (c *ReservationClient) List(ctx context.Context, filter model.ReservationFilter) ([]model.Reservation, error) {
	filter = filter.Normalized()
	if err := model.Validate(filter); err != nil {
		return nil, err
	}

	list, err := c.fetch(ctx, ReservationsPath, filter.Query())
	if err != nil {
		c.fallback("reservations.list", err)
		return sample.Reservations(c.now()), nil
	}
	return list, nil
}

func (c *ReservationClient) Recent(ctx context.Context) ([]model.Reservation, error) {
	list, err := c.fetch(ctx, RecentReservationsPath, nil)
	if err != nil {
		c.fallback("reservations.recent", err)
		return sample.RecentReservations(c.now()), nil
	}
	return list, nil
}

// TodayArrivals lists reservations checking in today.
func (c *ReservationClient) TodayArrivals(ctx context.Context) ([]model.Reservation, error) {
	today := model.FormatDay(c.now())
	query := model.ReservationFilter{DateFilter: string(model.BucketToday)}.Query()

	list, err := c.fetch(ctx, ReservationsPath, query)
	if err != nil {
		c.fallback("reservations.arrivals", err)
		return sample.TodayArrivals(c.now()), nil
	}

	out := make([]model.Reservation, 0, len(list))
	for _, r := range list {
		if r.CheckInDate == today {
			out = append(out, r)
		}
	}
	return out, nil
}

func (c *ReservationClient) fetch(ctx context.Context, path string, query url.Values) ([]model.Reservation, error) {
	resp, err := c.gw.GET(ctx, path, query)
	if err != nil {
		return nil, err
	}
	return decodeList[model.Reservation](resp)
}
