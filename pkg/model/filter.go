package model

import (
	"hoteldesk/pkg/sanitizer"
	"net/url"
	"strings"
	"time"
)

// AllValues is the catch-all option the dashboard selects send for "no filter".
const AllValues = "all"

type DateBucket string

const (
	BucketToday     DateBucket = "today"
	BucketTomorrow  DateBucket = "tomorrow"
	BucketThisWeek  DateBucket = "this_week"
	BucketNextWeek  DateBucket = "next_week"
	BucketThisMonth DateBucket = "this_month"
	BucketLastMonth DateBucket = "last_month"
	BucketThisYear  DateBucket = "this_year"
)

// Contains reports whether day falls inside the bucket relative to now. Weeks
// run Monday through Sunday. An empty bucket contains every day.
func (b DateBucket) Contains(day, now time.Time) bool {
	d := StartOfDay(day)
	today := StartOfDay(now)

	switch b {
	case "":
		return true
	case BucketToday:
		return d.Equal(today)
	case BucketTomorrow:
		return d.Equal(today.AddDate(0, 0, 1))
	case BucketThisWeek:
		start := startOfWeek(today)
		return !d.Before(start) && d.Before(start.AddDate(0, 0, 7))
	case BucketNextWeek:
		start := startOfWeek(today).AddDate(0, 0, 7)
		return !d.Before(start) && d.Before(start.AddDate(0, 0, 7))
	case BucketThisMonth:
		return d.Year() == today.Year() && d.Month() == today.Month()
	case BucketLastMonth:
		prev := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()).AddDate(0, -1, 0)
		return d.Year() == prev.Year() && d.Month() == prev.Month()
	case BucketThisYear:
		return d.Year() == today.Year()
	default:
		return false
	}
}

func startOfWeek(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

type ReservationFilter struct {
	Status     string `json:"status" validate:"omitempty,oneof=pending confirmed checked_in checked_out cancelled no_show"`
	DateFilter string `json:"date_filter" validate:"omitempty,oneof=today tomorrow this_week next_week this_month"`
	Search     string `json:"search" validate:"omitempty,max=100"`
}

func (f ReservationFilter) Normalized() ReservationFilter {
	return ReservationFilter{
		Status:     normalizeOption(f.Status),
		DateFilter: normalizeOption(f.DateFilter),
		Search:     sanitizer.TrimAndNormalize(f.Search),
	}
}

func (f ReservationFilter) Query() url.Values {
	return buildQuery("status", f.Status, "date_filter", f.DateFilter, "search", f.Search)
}

type RoomFilter struct {
	Status   string `json:"status" validate:"omitempty,oneof=available occupied maintenance cleaning reserved"`
	RoomType string `json:"room_type" validate:"omitempty,max=50"`
	Search   string `json:"search" validate:"omitempty,max=100"`
}

func (f RoomFilter) Normalized() RoomFilter {
	return RoomFilter{
		Status:   normalizeOption(f.Status),
		RoomType: normalizeOption(f.RoomType),
		Search:   sanitizer.TrimAndNormalize(f.Search),
	}
}

func (f RoomFilter) Query() url.Values {
	return buildQuery("status", f.Status, "room_type", f.RoomType, "search", f.Search)
}

// Matches applies the room filter rules: exact status, case-insensitive
// substring on type, and search across room number and type.
func (f RoomFilter) Matches(room Room) bool {
	if f.Status != "" && string(room.Status) != f.Status {
		return false
	}
	roomType := strings.ToLower(room.Type)
	if f.RoomType != "" && !strings.Contains(roomType, strings.ToLower(f.RoomType)) {
		return false
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(room.Number), term) && !strings.Contains(roomType, term) {
			return false
		}
	}
	return true
}

func (f RoomFilter) Apply(rooms []Room) []Room {
	out := make([]Room, 0, len(rooms))
	for _, room := range rooms {
		if f.Matches(room) {
			out = append(out, room)
		}
	}
	return out
}

type InvoiceFilter struct {
	Status     string `json:"status" validate:"omitempty,oneof=draft pending paid overdue cancelled"`
	DateFilter string `json:"date_filter" validate:"omitempty,oneof=today this_week this_month last_month this_year"`
	Search     string `json:"search" validate:"omitempty,max=100"`
}

func (f InvoiceFilter) Normalized() InvoiceFilter {
	return InvoiceFilter{
		Status:     normalizeOption(f.Status),
		DateFilter: normalizeOption(f.DateFilter),
		Search:     sanitizer.TrimAndNormalize(f.Search),
	}
}

func (f InvoiceFilter) Query() url.Values {
	return buildQuery("status", f.Status, "date_filter", f.DateFilter, "search", f.Search)
}

type PaymentFilter struct {
	Status     string `json:"status" validate:"omitempty,oneof=completed processing failed refunded"`
	DateFilter string `json:"date_filter" validate:"omitempty,oneof=today this_week this_month last_month this_year"`
	Search     string `json:"search" validate:"omitempty,max=100"`
}

func (f PaymentFilter) Normalized() PaymentFilter {
	return PaymentFilter{
		Status:     normalizeOption(f.Status),
		DateFilter: normalizeOption(f.DateFilter),
		Search:     sanitizer.TrimAndNormalize(f.Search),
	}
}

func (f PaymentFilter) Query() url.Values {
	return buildQuery("status", f.Status, "date_filter", f.DateFilter, "search", f.Search)
}

func (r AnalyticsRange) Query() url.Values {
	return buildQuery("start_date", r.StartDate, "end_date", r.EndDate, "group_by", r.GroupBy)
}

func normalizeOption(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, AllValues) {
		return ""
	}
	return strings.ToLower(v)
}

// buildQuery takes key/value pairs and skips empty values.
func buildQuery(pairs ...string) url.Values {
	q := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			q.Set(pairs[i], pairs[i+1])
		}
	}
	return q
}
