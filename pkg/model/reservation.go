package model

import "time"

type ReservationStatus string

const (
	ReservationPending    ReservationStatus = "pending"
	ReservationConfirmed  ReservationStatus = "confirmed"
	ReservationCheckedIn  ReservationStatus = "checked_in"
	ReservationCheckedOut ReservationStatus = "checked_out"
	ReservationCancelled  ReservationStatus = "cancelled"
	ReservationNoShow     ReservationStatus = "no_show"
)

type Reservation struct {
	ID                int64             `json:"id"`
	ReservationNumber string            `json:"reservation_number"`
	GuestName         string            `json:"guest_name"`
	RoomNumber        *string           `json:"room_number"`
	RoomType          string            `json:"room_type,omitempty"`
	CheckInDate       string            `json:"check_in_date"`
	CheckOutDate      string            `json:"check_out_date"`
	Status            ReservationStatus `json:"status"`
	TotalAmount       float64           `json:"total_amount,omitempty"`
	Nights            int               `json:"nights,omitempty"`
}

// CurrentStays keeps guests who are checked in right now.
func CurrentStays(reservations []Reservation) []Reservation {
	return filterReservations(reservations, func(r Reservation) bool {
		return r.Status == ReservationCheckedIn
	})
}

// ArrivalsOn keeps confirmed or pending reservations checking in on day.
func ArrivalsOn(reservations []Reservation, day time.Time) []Reservation {
	want := FormatDay(day)
	return filterReservations(reservations, func(r Reservation) bool {
		return (r.Status == ReservationConfirmed || r.Status == ReservationPending) && r.CheckInDate == want
	})
}

// DeparturesOn keeps checked-in guests due to check out on day.
func DeparturesOn(reservations []Reservation, day time.Time) []Reservation {
	want := FormatDay(day)
	return filterReservations(reservations, func(r Reservation) bool {
		return r.Status == ReservationCheckedIn && r.CheckOutDate == want
	})
}

func filterReservations(in []Reservation, keep func(Reservation) bool) []Reservation {
	out := make([]Reservation, 0, len(in))
	for _, r := range in {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
